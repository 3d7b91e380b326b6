package commands

import (
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Target addresses one dashboard of one viewer session.
type Target struct {
	Session   string `json:"session"`
	Dashboard string `json:"dashboard"`
}

func (t Target) validate(command string, needDashboard bool) error {
	if strings.TrimSpace(t.Session) == "" {
		return missingField(command, "session")
	}
	if needDashboard && strings.TrimSpace(t.Dashboard) == "" {
		return missingField(command, "dashboard")
	}
	return nil
}

func (t Target) payload() map[string]any {
	return map[string]any{"session": t.Session, "dashboard": t.Dashboard}
}

func missingField(command, field string) error {
	return goerrors.New(command+" command requires "+field, goerrors.CategoryBadInput).
		WithTextCode("MISSING_FIELD").
		WithMetadata(map[string]any{"field": field})
}

func missingService(command string) error {
	return goerrors.New(command+" command requires service", goerrors.CategoryInternal)
}
