package commands

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"
	dashboard "github.com/goliatone/go-wastedash/components/dashboard"
)

// SetViewModeInput switches between the long-term and one-year views. Toggle
// flips the current mode and ignores Mode.
type SetViewModeInput struct {
	Target
	Mode   string `json:"mode,omitempty"`
	Toggle bool   `json:"toggle,omitempty"`
}

type viewModeService interface {
	SetViewMode(ctx context.Context, session, dashboardID string, mode dashboard.ViewMode) error
	ToggleViewMode(ctx context.Context, session, dashboardID string) error
}

// SetViewModeCommand wraps the view mode toggle.
type SetViewModeCommand struct {
	service   viewModeService
	telemetry Telemetry
}

// NewSetViewModeCommand creates the command.
func NewSetViewModeCommand(service viewModeService, telemetry Telemetry) *SetViewModeCommand {
	return &SetViewModeCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SetViewModeInput] = (*SetViewModeCommand)(nil)

// Execute toggles or sets the view mode.
func (c *SetViewModeCommand) Execute(ctx context.Context, msg SetViewModeInput) error {
	if c.service == nil {
		return missingService("view mode")
	}
	if err := msg.validate("view mode", true); err != nil {
		return err
	}
	payload := msg.payload()
	if msg.Toggle {
		if err := c.service.ToggleViewMode(ctx, msg.Session, msg.Dashboard); err != nil {
			return err
		}
		payload["toggle"] = true
		c.telemetry.Record(ctx, "dashboard.command.view_mode", payload)
		return nil
	}
	mode, err := dashboard.ParseViewMode(msg.Mode)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "invalid view mode").WithTextCode("INVALID_VIEW_MODE")
	}
	if err := c.service.SetViewMode(ctx, msg.Session, msg.Dashboard, mode); err != nil {
		return err
	}
	payload["mode"] = mode.String()
	c.telemetry.Record(ctx, "dashboard.command.view_mode", payload)
	return nil
}
