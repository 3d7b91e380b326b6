package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"
	dashboard "github.com/goliatone/go-wastedash/components/dashboard"
)

// PageStateInput addresses a viewer session.
type PageStateInput struct {
	Session string `json:"session"`
}

type pageStateService interface {
	PageState(ctx context.Context, session string) (dashboard.PageState, error)
}

// PageStateQuery reads every dashboard of a session.
type PageStateQuery struct {
	service pageStateService
}

// NewPageStateQuery builds the query.
func NewPageStateQuery(service pageStateService) *PageStateQuery {
	return &PageStateQuery{service: service}
}

var _ gocommand.Querier[PageStateInput, dashboard.PageState] = (*PageStateQuery)(nil)

func (q *PageStateQuery) Query(ctx context.Context, input PageStateInput) (dashboard.PageState, error) {
	if input.Session == "" {
		return dashboard.PageState{}, goerrors.New("page state query requires session", goerrors.CategoryBadInput).
			WithTextCode("MISSING_FIELD")
	}
	return q.service.PageState(ctx, input.Session)
}
