package commands

import (
	"context"

	dashboard "github.com/goliatone/go-wastedash/components/dashboard"
)

// Telemetry is the dashboard telemetry sink commands report to.
type Telemetry = dashboard.Telemetry

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}
