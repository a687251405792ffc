package ports

import (
	"context"

	"github.com/avatarctic/caller-crm/internal/core/domain/agent"
	"github.com/avatarctic/caller-crm/internal/core/domain/call"
	"github.com/avatarctic/caller-crm/internal/core/domain/contact"
)

// CustomerAPI is the customers resource of the remote CRM service.
type CustomerAPI interface {
	ListCustomers(ctx context.Context, vendorID string) ([]contact.Contact, error)
	CreateCustomer(ctx context.Context, payload *contact.WritePayload) (*contact.Contact, error)
	UpdateCustomer(ctx context.Context, id string, payload *contact.WritePayload) (*contact.Contact, error)
	DeleteCustomer(ctx context.Context, id string) error
}

// CallAPI covers call history and the current-call endpoint.
type CallAPI interface {
	ListCalls(ctx context.Context, vendorID, customerID string) ([]call.Call, error)
	// GetCurrentCall returns nil when no call is in progress.
	GetCurrentCall(ctx context.Context, callID string) (*call.CurrentCall, error)
}

// AgentAPI covers agents and multivendor user creation.
type AgentAPI interface {
	ListAgents(ctx context.Context, vendorID string) ([]agent.Agent, error)
	CreateVendorUser(ctx context.Context, req *agent.CreateVendorUserRequest) error
}

// CRMClient is the full remote surface consumed by the dashboard.
type CRMClient interface {
	CustomerAPI
	CallAPI
	AgentAPI
}
