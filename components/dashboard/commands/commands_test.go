package commands

import (
	"context"
	"errors"
	"testing"

	goerrors "github.com/goliatone/go-errors"
	dashboard "github.com/goliatone/go-wastedash/components/dashboard"
)

type stubService struct {
	calls  []string
	mode   dashboard.ViewMode
	show   bool
	period string
	width  string
	height string
	pruned int
	err    error
}

func (s *stubService) SelectEntity(_ context.Context, session, dashboardID, entityID string) error {
	s.calls = append(s.calls, "select:"+session+"/"+dashboardID+"/"+entityID)
	return s.err
}

func (s *stubService) SetViewMode(_ context.Context, _, _ string, mode dashboard.ViewMode) error {
	s.calls = append(s.calls, "mode")
	s.mode = mode
	return s.err
}

func (s *stubService) ToggleViewMode(context.Context, string, string) error {
	s.calls = append(s.calls, "toggle")
	return s.err
}

func (s *stubService) SetShowAggregate(_ context.Context, _, _ string, show bool) error {
	s.calls = append(s.calls, "aggregate")
	s.show = show
	return s.err
}

func (s *stubService) FocusPeriod(_ context.Context, _, _ string, period string) error {
	s.calls = append(s.calls, "focus")
	s.period = period
	return s.err
}

func (s *stubService) Refresh(_ context.Context, _, dashboardID string) error {
	s.calls = append(s.calls, "refresh:"+dashboardID)
	return s.err
}

func (s *stubService) Resize(_ context.Context, _, _ string, width, height string) error {
	s.calls = append(s.calls, "resize")
	s.width, s.height = width, height
	return s.err
}

func (s *stubService) PruneSessions(context.Context) int {
	s.calls = append(s.calls, "prune")
	return s.pruned
}

type telemetryRecorder struct {
	events   []string
	payloads []map[string]any
}

func (t *telemetryRecorder) Record(_ context.Context, event string, payload map[string]any) {
	t.events = append(t.events, event)
	t.payloads = append(t.payloads, payload)
}

var countries = Target{Session: "s1", Dashboard: "countries"}

func TestSelectEntityCommand(t *testing.T) {
	svc := &stubService{}
	tel := &telemetryRecorder{}
	cmd := NewSelectEntityCommand(svc, tel)
	if err := cmd.Execute(context.Background(), SelectEntityInput{Target: countries, Entity: "ger"}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(svc.calls) != 1 || svc.calls[0] != "select:s1/countries/ger" {
		t.Fatalf("unexpected calls %v", svc.calls)
	}
	if len(tel.events) != 1 || tel.events[0] != "dashboard.command.select" {
		t.Fatalf("expected telemetry event, got %v", tel.events)
	}
	if tel.payloads[0]["entity"] != "ger" {
		t.Fatalf("expected entity in payload, got %v", tel.payloads[0])
	}
}

func TestSelectEntityCommandValidatesInput(t *testing.T) {
	svc := &stubService{}
	cmd := NewSelectEntityCommand(svc, nil)
	cases := []SelectEntityInput{
		{Target: Target{Dashboard: "countries"}, Entity: "ger"},
		{Target: Target{Session: "s1"}, Entity: "ger"},
		{Target: countries},
	}
	for _, input := range cases {
		err := cmd.Execute(context.Background(), input)
		if !goerrors.IsCategory(err, goerrors.CategoryBadInput) {
			t.Fatalf("expected bad input for %+v, got %v", input, err)
		}
	}
	if len(svc.calls) != 0 {
		t.Fatalf("service should not be called, got %v", svc.calls)
	}
}

func TestCommandsRequireService(t *testing.T) {
	ctx := context.Background()
	if err := NewSelectEntityCommand(nil, nil).Execute(ctx, SelectEntityInput{Target: countries, Entity: "ger"}); err == nil {
		t.Fatalf("expected select error")
	}
	if err := NewRefreshDataCommand(nil, nil).Execute(ctx, RefreshDataInput{Target: countries}); err == nil {
		t.Fatalf("expected refresh error")
	}
	if err := NewPruneSessionsCommand(nil, nil).Execute(ctx, PruneSessionsInput{}); err == nil {
		t.Fatalf("expected prune error")
	}
}

func TestSetViewModeCommand(t *testing.T) {
	svc := &stubService{}
	tel := &telemetryRecorder{}
	cmd := NewSetViewModeCommand(svc, tel)
	if err := cmd.Execute(context.Background(), SetViewModeInput{Target: countries, Mode: "one-year"}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if svc.mode != dashboard.OneYear {
		t.Fatalf("expected one-year mode, got %v", svc.mode)
	}
	if err := cmd.Execute(context.Background(), SetViewModeInput{Target: countries, Toggle: true, Mode: "bogus"}); err != nil {
		t.Fatalf("toggle: %v", err)
	}
	if svc.calls[len(svc.calls)-1] != "toggle" {
		t.Fatalf("expected toggle call, got %v", svc.calls)
	}
	if len(tel.events) != 2 {
		t.Fatalf("expected two telemetry events, got %v", tel.events)
	}
}

func TestSetViewModeCommandRejectsUnknownMode(t *testing.T) {
	svc := &stubService{}
	err := NewSetViewModeCommand(svc, nil).Execute(context.Background(), SetViewModeInput{Target: countries, Mode: "weekly"})
	if !goerrors.IsCategory(err, goerrors.CategoryBadInput) {
		t.Fatalf("expected bad input, got %v", err)
	}
	if len(svc.calls) != 0 {
		t.Fatalf("service should not be called, got %v", svc.calls)
	}
}

func TestSetAggregateAndFocusCommands(t *testing.T) {
	svc := &stubService{}
	ctx := context.Background()
	if err := NewSetAggregateCommand(svc, nil).Execute(ctx, SetAggregateInput{Target: countries, Show: true}); err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if !svc.show {
		t.Fatalf("expected show aggregate")
	}
	if err := NewFocusPeriodCommand(svc, nil).Execute(ctx, FocusPeriodInput{Target: countries, Period: "2015"}); err != nil {
		t.Fatalf("focus: %v", err)
	}
	if svc.period != "2015" {
		t.Fatalf("expected focused period 2015, got %q", svc.period)
	}
}

func TestRefreshDataCommandAllowsPageRefresh(t *testing.T) {
	svc := &stubService{}
	tel := &telemetryRecorder{}
	cmd := NewRefreshDataCommand(svc, tel)
	if err := cmd.Execute(context.Background(), RefreshDataInput{Target: Target{Session: "s1"}}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if svc.calls[0] != "refresh:" {
		t.Fatalf("expected page refresh, got %v", svc.calls)
	}
	if len(tel.events) != 1 {
		t.Fatalf("expected telemetry, got %v", tel.events)
	}
}

func TestRefreshDataCommandPropagatesFailure(t *testing.T) {
	failure := errors.New("source down")
	svc := &stubService{err: failure}
	tel := &telemetryRecorder{}
	err := NewRefreshDataCommand(svc, tel).Execute(context.Background(), RefreshDataInput{Target: countries})
	if !errors.Is(err, failure) {
		t.Fatalf("expected source failure, got %v", err)
	}
	if len(tel.events) != 0 {
		t.Fatalf("failed refresh should not record telemetry, got %v", tel.events)
	}
}

func TestResizeChartsCommand(t *testing.T) {
	svc := &stubService{}
	cmd := NewResizeChartsCommand(svc)
	if err := cmd.Execute(context.Background(), ResizeChartsInput{Target: Target{Session: "s1"}}); !goerrors.IsCategory(err, goerrors.CategoryBadInput) {
		t.Fatalf("expected bad input without dimensions, got %v", err)
	}
	if err := cmd.Execute(context.Background(), ResizeChartsInput{Target: Target{Session: "s1"}, Width: "640px"}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if svc.width != "640px" || svc.height != "" {
		t.Fatalf("unexpected size %q x %q", svc.width, svc.height)
	}
}

func TestPruneSessionsCommand(t *testing.T) {
	svc := &stubService{}
	tel := &telemetryRecorder{}
	cmd := NewPruneSessionsCommand(svc, tel)
	if err := cmd.Execute(context.Background(), PruneSessionsInput{}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(tel.events) != 0 {
		t.Fatalf("nothing pruned, expected no telemetry, got %v", tel.events)
	}
	svc.pruned = 3
	if err := cmd.Execute(context.Background(), PruneSessionsInput{}); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if len(tel.events) != 1 || tel.payloads[0]["dropped"] != 3 {
		t.Fatalf("expected prune telemetry, got %v %v", tel.events, tel.payloads)
	}
}

func TestCommandsAcceptDashboardService(t *testing.T) {
	svc := dashboard.NewService(dashboard.Options{})
	_ = NewSelectEntityCommand(svc, nil)
	_ = NewSetViewModeCommand(svc, nil)
	_ = NewSetAggregateCommand(svc, nil)
	_ = NewFocusPeriodCommand(svc, nil)
	_ = NewRefreshDataCommand(svc, nil)
	_ = NewResizeChartsCommand(svc)
	_ = NewPruneSessionsCommand(svc, nil)
}
