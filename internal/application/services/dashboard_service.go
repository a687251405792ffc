package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/avatarctic/caller-crm/internal/core/domain/contact"
	"github.com/avatarctic/caller-crm/internal/core/ports"
)

// DashboardService aggregates the widgets of the landing page. Each widget
// loads through its own screen service and degrades on its own.
type DashboardService struct {
	contacts ports.ContactService
	calls    ports.CallService
	agents   ports.AgentService
}

func NewDashboardService(contacts ports.ContactService, calls ports.CallService, agents ports.AgentService) *DashboardService {
	return &DashboardService{contacts: contacts, calls: calls, agents: agents}
}

func (s *DashboardService) Summary(ctx context.Context) *ports.DashboardView {
	view := &ports.DashboardView{}
	var g errgroup.Group
	g.Go(func() error {
		v := s.contacts.ListContacts(ctx, contact.Filter{})
		view.Contacts = ports.WidgetCount{LoadState: v.LoadState, Count: v.Total}
		return nil
	})
	g.Go(func() error {
		v := s.calls.ListCalls(ctx, "")
		view.Calls = ports.WidgetCount{LoadState: v.LoadState, Count: len(v.Calls)}
		return nil
	})
	g.Go(func() error {
		v := s.agents.ListAgents(ctx)
		view.Agents = ports.WidgetCount{LoadState: v.LoadState, Count: len(v.Agents)}
		return nil
	})
	g.Go(func() error {
		v := s.calls.LiveCalls(ctx)
		if len(v.Calls) > 0 {
			live := v.Calls[0]
			view.LiveCall = &live
		}
		return nil
	})
	_ = g.Wait()
	return view
}

var _ ports.DashboardService = (*DashboardService)(nil)
