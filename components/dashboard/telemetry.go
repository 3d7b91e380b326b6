package dashboard

import (
	"context"
	"io"

	"github.com/sirupsen/logrus"
)

// Telemetry records dashboard events for observability.
type Telemetry interface {
	Record(ctx context.Context, event string, payload map[string]any)
}

type noopTelemetry struct{}

func (noopTelemetry) Record(context.Context, string, map[string]any) {}

func normalizeTelemetry(t Telemetry) Telemetry {
	if t == nil {
		return noopTelemetry{}
	}
	return t
}

// LogrusTelemetry writes telemetry events as structured log entries.
type LogrusTelemetry struct {
	Logger logrus.FieldLogger
	Level  logrus.Level
}

// NewLogrusTelemetry records events at info level on the given logger.
func NewLogrusTelemetry(logger logrus.FieldLogger) *LogrusTelemetry {
	return &LogrusTelemetry{Logger: normalizeLogger(logger), Level: logrus.InfoLevel}
}

// Record logs the event with the payload as fields.
func (t *LogrusTelemetry) Record(_ context.Context, event string, payload map[string]any) {
	entry := normalizeLogger(t.Logger).WithField("event", event)
	if len(payload) > 0 {
		entry = entry.WithFields(logrus.Fields(payload))
	}
	switch t.Level {
	case logrus.DebugLevel, logrus.TraceLevel:
		entry.Debug(event)
	case logrus.WarnLevel:
		entry.Warn(event)
	default:
		entry.Info(event)
	}
}

var discardLogger = func() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}()

func normalizeLogger(l logrus.FieldLogger) logrus.FieldLogger {
	if l == nil {
		return discardLogger
	}
	return l
}
