package commands

import (
	"context"

	gocommand "github.com/goliatone/go-command"
)

// ResizeChartsInput carries new container dimensions as CSS sizes.
type ResizeChartsInput struct {
	Target
	Width  string `json:"width,omitempty"`
	Height string `json:"height,omitempty"`
}

type resizeService interface {
	Resize(ctx context.Context, session, dashboardID, width, height string) error
}

// ResizeChartsCommand redraws charts after the viewport changed.
type ResizeChartsCommand struct {
	service resizeService
}

// NewResizeChartsCommand creates the command. Resizes are frequent and are not reported to telemetry.
func NewResizeChartsCommand(service resizeService) *ResizeChartsCommand {
	return &ResizeChartsCommand{service: service}
}

var _ gocommand.Commander[ResizeChartsInput] = (*ResizeChartsCommand)(nil)

func (c *ResizeChartsCommand) Execute(ctx context.Context, msg ResizeChartsInput) error {
	if c.service == nil {
		return missingService("resize")
	}
	if err := msg.validate("resize", false); err != nil {
		return err
	}
	if msg.Width == "" && msg.Height == "" {
		return missingField("resize", "width or height")
	}
	return c.service.Resize(ctx, msg.Session, msg.Dashboard, msg.Width, msg.Height)
}
