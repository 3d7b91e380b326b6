package commands

import (
	"context"

	gocommand "github.com/goliatone/go-command"
)

// SelectEntityInput selects an entity the way a list row or marker click does.
type SelectEntityInput struct {
	Target
	Entity string `json:"entity"`
}

type selectService interface {
	SelectEntity(ctx context.Context, session, dashboardID, entityID string) error
}

// SelectEntityCommand wraps Service.SelectEntity so transports can route
// clicks without linking against the service.
type SelectEntityCommand struct {
	service   selectService
	telemetry Telemetry
}

// NewSelectEntityCommand creates the command.
func NewSelectEntityCommand(service selectService, telemetry Telemetry) *SelectEntityCommand {
	return &SelectEntityCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SelectEntityInput] = (*SelectEntityCommand)(nil)

// Execute delegates to the dashboard service.
func (c *SelectEntityCommand) Execute(ctx context.Context, msg SelectEntityInput) error {
	if c.service == nil {
		return missingService("select")
	}
	if err := msg.validate("select", true); err != nil {
		return err
	}
	if msg.Entity == "" {
		return missingField("select", "entity")
	}
	if err := c.service.SelectEntity(ctx, msg.Session, msg.Dashboard, msg.Entity); err != nil {
		return err
	}
	payload := msg.payload()
	payload["entity"] = msg.Entity
	c.telemetry.Record(ctx, "dashboard.command.select", payload)
	return nil
}
