package dashboard

import (
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"
)

var (
	// CategoryDataUnavailable marks fetch failures and malformed data sets.
	CategoryDataUnavailable = goerrors.CategoryExternal.Extend("data_unavailable")
	// CategoryUnknownSelection marks references to entities or periods that are not loaded.
	CategoryUnknownSelection = goerrors.CategoryNotFound.Extend("selection")
	// CategoryDegenerateData marks charts with nothing drawable.
	CategoryDegenerateData = goerrors.CategoryValidation.Extend("degenerate")
	// CategoryContainer marks rendering surface binding errors.
	CategoryContainer = goerrors.CategoryBadInput.Extend("container")
)

var (
	ErrFetchInProgress = goerrors.New("dashboard: a fetch for this source is already running", goerrors.CategoryConflict).
				WithTextCode("FETCH_IN_PROGRESS")
	errMissingSource    = errors.New("dashboard: data source is required")
	errMissingSurface   = errors.New("dashboard: surface is required")
	errMissingDashboard = errors.New("dashboard: dashboard id is required")
)

// DataUnavailable wraps a load failure in the data-unavailable category.
func DataUnavailable(err error, source string) error {
	if err == nil {
		return nil
	}
	if goerrors.HasCategory(err, CategoryDataUnavailable) {
		return err
	}
	return goerrors.Wrap(err, CategoryDataUnavailable, fmt.Sprintf("dashboard: data unavailable from %s", source)).
		WithTextCode("DATA_UNAVAILABLE").
		WithMetadata(map[string]any{"source": source})
}

func unknownSelection(kind, id string) error {
	return goerrors.New(fmt.Sprintf("dashboard: unknown %s %q", kind, id), CategoryUnknownSelection).
		WithTextCode("UNKNOWN_SELECTION").
		WithMetadata(map[string]any{kind: id})
}

func containerError(msg, container string) error {
	return goerrors.New(fmt.Sprintf("dashboard: %s: %s", msg, container), CategoryContainer).
		WithMetadata(map[string]any{"container": container})
}

// IsDataUnavailable reports whether err belongs to the data-unavailable category.
func IsDataUnavailable(err error) bool {
	return goerrors.HasCategory(err, CategoryDataUnavailable)
}

// IsUnknownSelection reports whether err belongs to the unknown-selection category.
func IsUnknownSelection(err error) bool {
	return goerrors.HasCategory(err, CategoryUnknownSelection)
}

// IsDegenerate reports whether err belongs to the degenerate-data category.
func IsDegenerate(err error) bool {
	return goerrors.HasCategory(err, CategoryDegenerateData)
}
