package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	impl "github.com/avatarctic/caller-crm/internal/application/services"
	"github.com/avatarctic/caller-crm/internal/core/domain/agent"
	"github.com/avatarctic/caller-crm/internal/core/domain/call"
	"github.com/avatarctic/caller-crm/internal/core/domain/contact"
	"github.com/avatarctic/caller-crm/internal/core/ports"
	tmocks "github.com/avatarctic/caller-crm/test/mocks"
)

func TestDashboardSummary_WidgetsDegradeIndependently(t *testing.T) {
	contacts := &tmocks.ContactServiceMock{ListContactsFn: func(ctx context.Context, f contact.Filter) *ports.ContactListView {
		return &ports.ContactListView{LoadState: ports.LoadState{Status: "success"}, Total: 12}
	}}
	calls := &tmocks.CallServiceMock{
		ListCallsFn: func(ctx context.Context, customerID string) *ports.CallHistoryView {
			return &ports.CallHistoryView{LoadState: ports.LoadState{Status: "error", Error: "bad gateway"}, Calls: []call.Call{}}
		},
		LiveCallsFn: func(ctx context.Context) *ports.LiveCallsView {
			return &ports.LiveCallsView{Calls: []call.LiveCall{{ID: "CC002", Name: "Agent A7"}}}
		},
	}
	agents := &tmocks.AgentServiceMock{ListAgentsFn: func(ctx context.Context) *ports.AgentListView {
		return &ports.AgentListView{LoadState: ports.LoadState{Status: "success"}, Agents: []agent.Agent{{ID: "A1"}, {ID: "A2"}}}
	}}

	view := impl.NewDashboardService(contacts, calls, agents).Summary(context.Background())
	assert.Equal(t, 12, view.Contacts.Count)
	assert.Equal(t, "error", view.Calls.Status)
	assert.Equal(t, "bad gateway", view.Calls.Error)
	assert.Equal(t, 2, view.Agents.Count)
	require.NotNil(t, view.LiveCall)
	assert.Equal(t, "Agent A7", view.LiveCall.Name)
}
