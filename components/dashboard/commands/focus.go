package commands

import (
	"context"

	gocommand "github.com/goliatone/go-command"
)

// FocusPeriodInput points the composition chart at one period. An empty
// period returns to the latest record.
type FocusPeriodInput struct {
	Target
	Period string `json:"period"`
}

type focusService interface {
	FocusPeriod(ctx context.Context, session, dashboardID, period string) error
}

// FocusPeriodCommand wraps Service.FocusPeriod.
type FocusPeriodCommand struct {
	service   focusService
	telemetry Telemetry
}

// NewFocusPeriodCommand creates the command.
func NewFocusPeriodCommand(service focusService, telemetry Telemetry) *FocusPeriodCommand {
	return &FocusPeriodCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[FocusPeriodInput] = (*FocusPeriodCommand)(nil)

func (c *FocusPeriodCommand) Execute(ctx context.Context, msg FocusPeriodInput) error {
	if c.service == nil {
		return missingService("focus")
	}
	if err := msg.validate("focus", true); err != nil {
		return err
	}
	if err := c.service.FocusPeriod(ctx, msg.Session, msg.Dashboard, msg.Period); err != nil {
		return err
	}
	payload := msg.payload()
	payload["period"] = msg.Period
	c.telemetry.Record(ctx, "dashboard.command.focus", payload)
	return nil
}
