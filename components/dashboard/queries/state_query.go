package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	goerrors "github.com/goliatone/go-errors"
	dashboard "github.com/goliatone/go-wastedash/components/dashboard"
)

// DashboardStateInput addresses one dashboard of a session.
type DashboardStateInput struct {
	Session   string `json:"session"`
	Dashboard string `json:"dashboard"`
}

type dashboardStateService interface {
	DashboardState(ctx context.Context, session, dashboardID string) (dashboard.DashboardState, error)
}

// DashboardStateQuery reads one dashboard snapshot.
type DashboardStateQuery struct {
	service dashboardStateService
}

// NewDashboardStateQuery builds the query.
func NewDashboardStateQuery(service dashboardStateService) *DashboardStateQuery {
	return &DashboardStateQuery{service: service}
}

var _ gocommand.Querier[DashboardStateInput, dashboard.DashboardState] = (*DashboardStateQuery)(nil)

// Query resolves the snapshot.
func (q *DashboardStateQuery) Query(ctx context.Context, input DashboardStateInput) (dashboard.DashboardState, error) {
	if input.Session == "" || input.Dashboard == "" {
		return dashboard.DashboardState{}, goerrors.New("dashboard state query requires session and dashboard", goerrors.CategoryBadInput).
			WithTextCode("MISSING_FIELD")
	}
	return q.service.DashboardState(ctx, input.Session, input.Dashboard)
}
