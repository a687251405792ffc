package mocks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/avatarctic/caller-crm/internal/core/domain/agent"
	"github.com/avatarctic/caller-crm/internal/core/domain/call"
	"github.com/avatarctic/caller-crm/internal/core/domain/contact"
	"github.com/avatarctic/caller-crm/internal/core/ports"
)

// CRMClientMock is a lightweight mock for the remote CRM surface
type CRMClientMock struct {
	ListCustomersFn    func(ctx context.Context, vendorID string) ([]contact.Contact, error)
	CreateCustomerFn   func(ctx context.Context, payload *contact.WritePayload) (*contact.Contact, error)
	UpdateCustomerFn   func(ctx context.Context, id string, payload *contact.WritePayload) (*contact.Contact, error)
	DeleteCustomerFn   func(ctx context.Context, id string) error
	ListCallsFn        func(ctx context.Context, vendorID, customerID string) ([]call.Call, error)
	GetCurrentCallFn   func(ctx context.Context, callID string) (*call.CurrentCall, error)
	ListAgentsFn       func(ctx context.Context, vendorID string) ([]agent.Agent, error)
	CreateVendorUserFn func(ctx context.Context, req *agent.CreateVendorUserRequest) error
}

func (m *CRMClientMock) ListCustomers(ctx context.Context, vendorID string) ([]contact.Contact, error) {
	if m.ListCustomersFn != nil {
		return m.ListCustomersFn(ctx, vendorID)
	}
	return nil, nil
}
func (m *CRMClientMock) CreateCustomer(ctx context.Context, payload *contact.WritePayload) (*contact.Contact, error) {
	if m.CreateCustomerFn != nil {
		return m.CreateCustomerFn(ctx, payload)
	}
	return &contact.Contact{ID: "new", Name: payload.Name, Email: payload.Email, MobileNumber: payload.MobileNumber, Tags: payload.Tags}, nil
}
func (m *CRMClientMock) UpdateCustomer(ctx context.Context, id string, payload *contact.WritePayload) (*contact.Contact, error) {
	if m.UpdateCustomerFn != nil {
		return m.UpdateCustomerFn(ctx, id, payload)
	}
	return &contact.Contact{ID: id, Name: payload.Name, Email: payload.Email, MobileNumber: payload.MobileNumber, Tags: payload.Tags}, nil
}
func (m *CRMClientMock) DeleteCustomer(ctx context.Context, id string) error {
	if m.DeleteCustomerFn != nil {
		return m.DeleteCustomerFn(ctx, id)
	}
	return nil
}
func (m *CRMClientMock) ListCalls(ctx context.Context, vendorID, customerID string) ([]call.Call, error) {
	if m.ListCallsFn != nil {
		return m.ListCallsFn(ctx, vendorID, customerID)
	}
	return nil, nil
}
func (m *CRMClientMock) GetCurrentCall(ctx context.Context, callID string) (*call.CurrentCall, error) {
	if m.GetCurrentCallFn != nil {
		return m.GetCurrentCallFn(ctx, callID)
	}
	return nil, nil
}
func (m *CRMClientMock) ListAgents(ctx context.Context, vendorID string) ([]agent.Agent, error) {
	if m.ListAgentsFn != nil {
		return m.ListAgentsFn(ctx, vendorID)
	}
	return nil, nil
}
func (m *CRMClientMock) CreateVendorUser(ctx context.Context, req *agent.CreateVendorUserRequest) error {
	if m.CreateVendorUserFn != nil {
		return m.CreateVendorUserFn(ctx, req)
	}
	return nil
}

var _ ports.CRMClient = (*CRMClientMock)(nil)

// ContactServiceMock mocks ports.ContactService
type ContactServiceMock struct {
	ListContactsFn  func(ctx context.Context, filter contact.Filter) *ports.ContactListView
	GetContactFn    func(ctx context.Context, id string) (*contact.Contact, error)
	CreateContactFn func(ctx context.Context, form *contact.ContactForm) (*contact.Contact, error)
	UpdateContactFn func(ctx context.Context, id string, form *contact.ContactForm) (*contact.Contact, error)
	DeleteContactFn func(ctx context.Context, id string) error
}

func (m *ContactServiceMock) ListContacts(ctx context.Context, filter contact.Filter) *ports.ContactListView {
	if m.ListContactsFn != nil {
		return m.ListContactsFn(ctx, filter)
	}
	return &ports.ContactListView{Contacts: []contact.Contact{}}
}
func (m *ContactServiceMock) GetContact(ctx context.Context, id string) (*contact.Contact, error) {
	if m.GetContactFn != nil {
		return m.GetContactFn(ctx, id)
	}
	return nil, fmt.Errorf("not found")
}
func (m *ContactServiceMock) CreateContact(ctx context.Context, form *contact.ContactForm) (*contact.Contact, error) {
	if m.CreateContactFn != nil {
		return m.CreateContactFn(ctx, form)
	}
	return &contact.Contact{}, nil
}
func (m *ContactServiceMock) UpdateContact(ctx context.Context, id string, form *contact.ContactForm) (*contact.Contact, error) {
	if m.UpdateContactFn != nil {
		return m.UpdateContactFn(ctx, id, form)
	}
	return &contact.Contact{ID: id}, nil
}
func (m *ContactServiceMock) DeleteContact(ctx context.Context, id string) error {
	if m.DeleteContactFn != nil {
		return m.DeleteContactFn(ctx, id)
	}
	return nil
}

// CallServiceMock mocks ports.CallService
type CallServiceMock struct {
	ListCallsFn      func(ctx context.Context, customerID string) *ports.CallHistoryView
	LiveCallsFn      func(ctx context.Context) *ports.LiveCallsView
	WatchLiveCallsFn func(ctx context.Context, onUpdate func(*ports.LiveCallsView)) ports.Watch
}

func (m *CallServiceMock) ListCalls(ctx context.Context, customerID string) *ports.CallHistoryView {
	if m.ListCallsFn != nil {
		return m.ListCallsFn(ctx, customerID)
	}
	return &ports.CallHistoryView{Calls: []call.Call{}}
}
func (m *CallServiceMock) LiveCalls(ctx context.Context) *ports.LiveCallsView {
	if m.LiveCallsFn != nil {
		return m.LiveCallsFn(ctx)
	}
	return &ports.LiveCallsView{Calls: []call.LiveCall{}}
}
func (m *CallServiceMock) WatchLiveCalls(ctx context.Context, onUpdate func(*ports.LiveCallsView)) ports.Watch {
	if m.WatchLiveCallsFn != nil {
		return m.WatchLiveCallsFn(ctx, onUpdate)
	}
	return NewWatchMock(nil)
}

// WatchMock mocks ports.Watch. Done closes when Stop or Finish is called.
type WatchMock struct {
	StopFn func()
	done   chan struct{}
	once   sync.Once
}

func NewWatchMock(stopFn func()) *WatchMock {
	return &WatchMock{StopFn: stopFn, done: make(chan struct{})}
}

// Finish ends the watch without a Stop call, as a shutdown would.
func (m *WatchMock) Finish() { m.once.Do(func() { close(m.done) }) }

func (m *WatchMock) Stop() {
	if m.StopFn != nil {
		m.StopFn()
	}
	m.Finish()
}

func (m *WatchMock) Done() <-chan struct{} { return m.done }

// AgentServiceMock mocks ports.AgentService
type AgentServiceMock struct {
	ListAgentsFn       func(ctx context.Context) *ports.AgentListView
	CreateVendorUserFn func(ctx context.Context, req *agent.CreateVendorUserRequest) error
}

func (m *AgentServiceMock) ListAgents(ctx context.Context) *ports.AgentListView {
	if m.ListAgentsFn != nil {
		return m.ListAgentsFn(ctx)
	}
	return &ports.AgentListView{Agents: []agent.Agent{}}
}
func (m *AgentServiceMock) CreateVendorUser(ctx context.Context, req *agent.CreateVendorUserRequest) error {
	if m.CreateVendorUserFn != nil {
		return m.CreateVendorUserFn(ctx, req)
	}
	return nil
}

// DashboardServiceMock mocks ports.DashboardService
type DashboardServiceMock struct {
	SummaryFn func(ctx context.Context) *ports.DashboardView
}

func (m *DashboardServiceMock) Summary(ctx context.Context) *ports.DashboardView {
	if m.SummaryFn != nil {
		return m.SummaryFn(ctx)
	}
	return &ports.DashboardView{}
}

// RateLimiterServiceMock mocks ports.RateLimiterService
type RateLimiterServiceMock struct {
	AllowFn func(ctx context.Context, subject ports.RateLimitSubject) (bool, int, int, time.Time, error)
}

func (m *RateLimiterServiceMock) Allow(ctx context.Context, subject ports.RateLimitSubject) (bool, int, int, time.Time, error) {
	if m.AllowFn != nil {
		return m.AllowFn(ctx, subject)
	}
	return true, 99, 100, time.Now().Add(time.Minute), nil
}

// RateLimitRepositoryMock mocks ports.RateLimitRepository
type RateLimitRepositoryMock struct {
	IncrementWindowFn func(ctx context.Context, subject string, window time.Duration, keyPrefix string, ttl time.Duration) (int, time.Time, error)
}

func (m *RateLimitRepositoryMock) IncrementWindow(ctx context.Context, subject string, window time.Duration, keyPrefix string, ttl time.Duration) (int, time.Time, error) {
	if m.IncrementWindowFn != nil {
		return m.IncrementWindowFn(ctx, subject, window, keyPrefix, ttl)
	}
	return 1, time.Now().Truncate(window), nil
}

// MemoryCache is an in-memory ports.Cache for snapshot tests.
type MemoryCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemoryCache() *MemoryCache { return &MemoryCache{data: make(map[string][]byte)} }

func (m *MemoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok, nil
}
func (m *MemoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), value...)
	return nil
}
func (m *MemoryCache) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Keys returns the stored keys.
func (m *MemoryCache) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.data))
	for k := range m.data {
		out = append(out, k)
	}
	return out
}

// HealthCheckerMock mocks ports.HealthChecker
type HealthCheckerMock struct {
	NameValue string
	CheckFn   func(ctx context.Context) error
}

func (m *HealthCheckerMock) Name() string { return m.NameValue }
func (m *HealthCheckerMock) Check(ctx context.Context) error {
	if m.CheckFn != nil {
		return m.CheckFn(ctx)
	}
	return nil
}
