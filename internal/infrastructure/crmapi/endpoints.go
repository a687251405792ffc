package crmapi

import (
	"context"
	"errors"
	"net/url"

	"github.com/avatarctic/caller-crm/internal/core/domain/agent"
	"github.com/avatarctic/caller-crm/internal/core/domain/call"
	"github.com/avatarctic/caller-crm/internal/core/domain/contact"
	"github.com/avatarctic/caller-crm/internal/core/ports"
)

const (
	pathCustomers   = "customers"
	pathCall        = "call"
	pathCurrentCall = "current-call"
	pathAgent       = "agent"
	pathMultiVendor = "create_multivendor_users"
)

// record returns the path of one record in collection. The id must name a
// single segment; "." and ".." would resolve outside the collection.
func record(collection, id string) ([]string, error) {
	switch id {
	case "", ".", "..":
		return nil, &InvalidIDError{ID: id}
	}
	return []string{collection, id}, nil
}

func (c *Client) ListCustomers(ctx context.Context, vendorID string) ([]contact.Contact, error) {
	var out customerListResponse
	if err := c.Get(ctx, []string{pathCustomers}, url.Values{"vendorId": {vendorID}}, &out); err != nil {
		return nil, err
	}
	return *out.Customers, nil
}

// CreateCustomer returns the created record when the service echoes it, nil otherwise.
func (c *Client) CreateCustomer(ctx context.Context, payload *contact.WritePayload) (*contact.Contact, error) {
	body := *payload
	body.CreatedBy = payload.VendorID
	var out customerWriteResponse
	if err := c.Post(ctx, []string{pathCustomers}, nil, &body, &out); err != nil {
		return nil, c.committed(err)
	}
	return out.Customer, nil
}

func (c *Client) UpdateCustomer(ctx context.Context, id string, payload *contact.WritePayload) (*contact.Contact, error) {
	body := *payload
	body.UpdatedBy = payload.VendorID
	path, err := record(pathCustomers, id)
	if err != nil {
		return nil, err
	}
	var out customerWriteResponse
	if err := c.Put(ctx, path, nil, &body, &out); err != nil {
		return nil, c.committed(err)
	}
	return out.Customer, nil
}

func (c *Client) DeleteCustomer(ctx context.Context, id string) error {
	path, err := record(pathCustomers, id)
	if err != nil {
		return err
	}
	return c.Delete(ctx, path, nil, nil)
}

// committed drops a malformed echo from a 2xx write. The remote change has
// been applied, so the caller sees success without a record.
func (c *Client) committed(err error) error {
	if !errors.Is(err, ErrMalformedResponse) {
		return err
	}
	if c.logger != nil {
		c.logger.WithError(err).Warn("crm api write succeeded with malformed record")
	}
	return nil
}

func (c *Client) ListCalls(ctx context.Context, vendorID, customerID string) ([]call.Call, error) {
	q := url.Values{"vendorId": {vendorID}}
	if customerID != "" {
		q.Set("customerId", customerID)
	}
	var out callListResponse
	if err := c.Get(ctx, []string{pathCall}, q, &out); err != nil {
		return nil, err
	}
	return *out.Calls, nil
}

func (c *Client) GetCurrentCall(ctx context.Context, callID string) (*call.CurrentCall, error) {
	path, err := record(pathCurrentCall, callID)
	if err != nil {
		return nil, err
	}
	var out currentCallResponse
	if err := c.Get(ctx, path, nil, &out); err != nil {
		return nil, err
	}
	return out.CurrentCall, nil
}

func (c *Client) ListAgents(ctx context.Context, vendorID string) ([]agent.Agent, error) {
	var out agentListResponse
	if err := c.Get(ctx, []string{pathAgent}, url.Values{"vendorId": {vendorID}}, &out); err != nil {
		return nil, err
	}
	return *out.Agents, nil
}

func (c *Client) CreateVendorUser(ctx context.Context, req *agent.CreateVendorUserRequest) error {
	var out messageResponse
	return c.Post(ctx, []string{pathMultiVendor}, nil, req, &out)
}

var _ ports.CRMClient = (*Client)(nil)
