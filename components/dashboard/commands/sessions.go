package commands

import (
	"context"

	gocommand "github.com/goliatone/go-command"
)

// PruneSessionsInput triggers a sweep of idle viewer sessions.
type PruneSessionsInput struct{}

type pruneService interface {
	PruneSessions(ctx context.Context) int
}

// PruneSessionsCommand drops idle sessions; servers run it on a ticker.
type PruneSessionsCommand struct {
	service   pruneService
	telemetry Telemetry
}

// NewPruneSessionsCommand creates the command.
func NewPruneSessionsCommand(service pruneService, telemetry Telemetry) *PruneSessionsCommand {
	return &PruneSessionsCommand{service: service, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[PruneSessionsInput] = (*PruneSessionsCommand)(nil)

func (c *PruneSessionsCommand) Execute(ctx context.Context, _ PruneSessionsInput) error {
	if c.service == nil {
		return missingService("prune")
	}
	if dropped := c.service.PruneSessions(ctx); dropped > 0 {
		c.telemetry.Record(ctx, "dashboard.command.prune", map[string]any{"dropped": dropped})
	}
	return nil
}
