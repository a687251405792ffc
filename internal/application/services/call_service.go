package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/avatarctic/caller-crm/internal/application/query"
	"github.com/avatarctic/caller-crm/internal/core/domain/call"
	"github.com/avatarctic/caller-crm/internal/core/ports"
)

const EmptyCallsMessage = "No calls found"

type CallServiceConfig struct {
	VendorID      string
	CurrentCallID string
	PollInterval  time.Duration
}

type CallService struct {
	api    ports.CallAPI
	cache  *query.Cache
	cfg    CallServiceConfig
	logger *logrus.Logger
	now    func() time.Time
}

func NewCallService(api ports.CallAPI, cache *query.Cache, cfg CallServiceConfig, logger *logrus.Logger) *CallService {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	return &CallService{api: api, cache: cache, cfg: cfg, logger: logger, now: time.Now}
}

// SetClock replaces the clock used to compute live call durations.
func (s *CallService) SetClock(now func() time.Time) { s.now = now }

func (s *CallService) historyKey(customerID string) query.Key {
	return query.NewKey("calls", s.cfg.VendorID, customerID)
}

// LiveKey is the cache key of the current-call endpoint.
func (s *CallService) LiveKey() query.Key {
	return query.NewKey("current-call", s.cfg.CurrentCallID)
}

func (s *CallService) ListCalls(ctx context.Context, customerID string) *ports.CallHistoryView {
	calls, st := query.Get(ctx, s.cache, s.historyKey(customerID), func(ctx context.Context) ([]call.Call, error) {
		return s.api.ListCalls(ctx, s.cfg.VendorID, customerID)
	})
	view := &ports.CallHistoryView{LoadState: loadState(st), Calls: calls}
	if view.Calls == nil {
		view.Calls = []call.Call{}
	}
	if len(view.Calls) == 0 {
		view.EmptyMessage = EmptyCallsMessage
	}
	return view
}

func (s *CallService) fetchCurrent(ctx context.Context) (*call.CurrentCall, error) {
	return s.api.GetCurrentCall(ctx, s.cfg.CurrentCallID)
}

func (s *CallService) fetchCurrentAny(ctx context.Context) (any, error) {
	cc, err := s.fetchCurrent(ctx)
	if err != nil {
		return nil, err
	}
	return cc, nil
}

// LiveCalls reads the current call; data younger than the poll interval is reused.
func (s *CallService) LiveCalls(ctx context.Context) *ports.LiveCallsView {
	_, st := query.Get(ctx, s.cache, s.LiveKey(), s.fetchCurrent, query.WithStaleTime(s.cfg.PollInterval))
	return s.liveView(st)
}

func (s *CallService) liveView(st query.State) *ports.LiveCallsView {
	view := &ports.LiveCallsView{LoadState: loadState(st), Calls: []call.LiveCall{}}
	// a failed poll clears the list rather than showing a frozen call
	if st.Err != nil {
		return view
	}
	cc, _ := st.Data.(*call.CurrentCall)
	if live, ok := cc.ToLive(s.now()); ok {
		view.Calls = append(view.Calls, live)
	}
	return view
}

func (s *CallService) WatchLiveCalls(ctx context.Context, onUpdate func(*ports.LiveCallsView)) ports.Watch {
	return s.cache.Poll(ctx, s.LiveKey(), s.fetchCurrentAny, s.cfg.PollInterval, func(st query.State) {
		if st.Err != nil && s.logger != nil {
			s.logger.WithError(st.Err).WithField("call_id", s.cfg.CurrentCallID).Warn("live call poll failed")
		}
		onUpdate(s.liveView(st))
	})
}

var (
	_ ports.CallService = (*CallService)(nil)
	_ ports.Watch       = (*query.Poller)(nil)
)
