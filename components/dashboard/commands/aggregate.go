package commands

import (
	"context"

	gocommand "github.com/goliatone/go-command"
)

// SetAggregateInput mirrors the "show aggregate" checkbox.
type SetAggregateInput struct {
	Target
	Show bool `json:"show"`
}

type aggregateService interface {
	SetShowAggregate(ctx context.Context, session, dashboardID string, show bool) error
}

// SetAggregateCommand toggles the aggregate line of stacked and multi-line charts.
type SetAggregateCommand struct {
	service   aggregateService
	telemetry Telemetry
}

// NewSetAggregateCommand creates the command.
func NewSetAggregateCommand(service aggregateService, telemetry Telemetry) *SetAggregateCommand {
	return &SetAggregateCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SetAggregateInput] = (*SetAggregateCommand)(nil)

// Execute delegates to the dashboard service.
func (c *SetAggregateCommand) Execute(ctx context.Context, msg SetAggregateInput) error {
	if c.service == nil {
		return missingService("aggregate")
	}
	if err := msg.validate("aggregate", true); err != nil {
		return err
	}
	if err := c.service.SetShowAggregate(ctx, msg.Session, msg.Dashboard, msg.Show); err != nil {
		return err
	}
	payload := msg.payload()
	payload["show"] = msg.Show
	c.telemetry.Record(ctx, "dashboard.command.aggregate", payload)
	return nil
}
