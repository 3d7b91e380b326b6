package commands

import (
	"context"

	gocommand "github.com/goliatone/go-command"
)

// RefreshDataInput re-fetches one dashboard, or the whole page when Dashboard is empty.
type RefreshDataInput struct {
	Target
}

type refreshService interface {
	Refresh(ctx context.Context, session, dashboardID string) error
}

// RefreshDataCommand triggers a data re-fetch without forcing transports to
// know about pages and dashboards.
type RefreshDataCommand struct {
	service   refreshService
	telemetry Telemetry
}

// NewRefreshDataCommand creates the command.
func NewRefreshDataCommand(service refreshService, telemetry Telemetry) *RefreshDataCommand {
	return &RefreshDataCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RefreshDataInput] = (*RefreshDataCommand)(nil)

// Execute refreshes the target. A failing fetch is returned after the
// dashboard switched to its placeholders.
func (c *RefreshDataCommand) Execute(ctx context.Context, msg RefreshDataInput) error {
	if c.service == nil {
		return missingService("refresh")
	}
	if err := msg.validate("refresh", false); err != nil {
		return err
	}
	if err := c.service.Refresh(ctx, msg.Session, msg.Dashboard); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "dashboard.command.refresh", msg.payload())
	return nil
}
