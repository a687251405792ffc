package ports

import (
	"context"
	"time"

	"github.com/avatarctic/caller-crm/internal/core/domain/agent"
	"github.com/avatarctic/caller-crm/internal/core/domain/call"
	"github.com/avatarctic/caller-crm/internal/core/domain/contact"
)

// LoadState describes how a screen widget's data resolved.
type LoadState struct {
	Status    string     `json:"status"`
	Error     string     `json:"error,omitempty"`
	Stale     bool       `json:"stale,omitempty"`
	FetchedAt *time.Time `json:"fetchedAt,omitempty"`
}

type ContactListView struct {
	LoadState
	Contacts     []contact.Contact `json:"contacts"`
	Total        int               `json:"total"`
	EmptyMessage string            `json:"emptyMessage,omitempty"`
	Saving       bool              `json:"saving"`
}

type CallHistoryView struct {
	LoadState
	Calls        []call.Call `json:"calls"`
	EmptyMessage string      `json:"emptyMessage,omitempty"`
}

type LiveCallsView struct {
	LoadState
	Calls []call.LiveCall `json:"calls"`
}

type AgentListView struct {
	LoadState
	Agents []agent.Agent `json:"agents"`
}

type WidgetCount struct {
	LoadState
	Count int `json:"count"`
}

type DashboardView struct {
	Contacts WidgetCount    `json:"contacts"`
	Calls    WidgetCount    `json:"calls"`
	Agents   WidgetCount    `json:"agents"`
	LiveCall *call.LiveCall `json:"liveCall,omitempty"`
}

// MutationError reports a write that failed after validation passed.
// Message is safe to render next to the submit control.
type MutationError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *MutationError) Error() string { return e.Message }
func (e *MutationError) Unwrap() error { return e.Err }

// ContactService backs the contacts screen and contact modal.
type ContactService interface {
	ListContacts(ctx context.Context, filter contact.Filter) *ContactListView
	GetContact(ctx context.Context, id string) (*contact.Contact, error)
	CreateContact(ctx context.Context, form *contact.ContactForm) (*contact.Contact, error)
	UpdateContact(ctx context.Context, id string, form *contact.ContactForm) (*contact.Contact, error)
	DeleteContact(ctx context.Context, id string) error
}

// CallService backs the call history and live calls tabs.
type CallService interface {
	ListCalls(ctx context.Context, customerID string) *CallHistoryView
	LiveCalls(ctx context.Context) *LiveCallsView
	// WatchLiveCalls polls the current call until ctx is done, the watch is
	// stopped or the process shuts down.
	WatchLiveCalls(ctx context.Context, onUpdate func(*LiveCallsView)) Watch
}

// Watch is a running subscription. Done is closed once no further updates
// will be delivered.
type Watch interface {
	Stop()
	Done() <-chan struct{}
}

// AgentService backs the departments/agents screen.
type AgentService interface {
	ListAgents(ctx context.Context) *AgentListView
	CreateVendorUser(ctx context.Context, req *agent.CreateVendorUserRequest) error
}

type DashboardService interface {
	Summary(ctx context.Context) *DashboardView
}
