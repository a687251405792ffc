package crmapi

import (
	"errors"
	"fmt"

	"github.com/avatarctic/caller-crm/internal/core/domain/agent"
	"github.com/avatarctic/caller-crm/internal/core/domain/call"
	"github.com/avatarctic/caller-crm/internal/core/domain/contact"
)

// customerListResponse is GET /customers/.
type customerListResponse struct {
	Customers *[]contact.Contact `json:"customers"`
}

func (r *customerListResponse) Validate() error {
	if r.Customers == nil {
		return errors.New(`missing "customers"`)
	}
	for i, c := range *r.Customers {
		if c.ID == "" {
			return fmt.Errorf("customers[%d]: missing id", i)
		}
	}
	return nil
}

// customerWriteResponse is POST/PUT /customers/. The record is optional.
type customerWriteResponse struct {
	Customer *contact.Contact `json:"customer"`
	Message  string           `json:"message"`
}

func (r *customerWriteResponse) Validate() error {
	if r.Customer != nil && r.Customer.ID == "" {
		return errors.New("customer: missing id")
	}
	return nil
}

// callListResponse is GET /call/.
type callListResponse struct {
	Calls *[]call.Call `json:"calls"`
}

func (r *callListResponse) Validate() error {
	if r.Calls == nil {
		return errors.New(`missing "calls"`)
	}
	for i, c := range *r.Calls {
		if c.ID == "" {
			return fmt.Errorf("calls[%d]: missing id", i)
		}
	}
	return nil
}

// currentCallResponse is GET /current-call/<id>/. A null call means none in progress.
type currentCallResponse struct {
	CurrentCall *call.CurrentCall `json:"current_call"`
}

func (r *currentCallResponse) Validate() error {
	if r.CurrentCall == nil {
		return nil
	}
	if r.CurrentCall.Status == "" {
		return errors.New("current_call: missing status")
	}
	if r.CurrentCall.CreatedAt.IsZero() {
		return errors.New("current_call: missing created_at")
	}
	return nil
}

// agentListResponse is GET /agent/.
type agentListResponse struct {
	Agents *[]agent.Agent `json:"agents"`
}

func (r *agentListResponse) Validate() error {
	if r.Agents == nil {
		return errors.New(`missing "agents"`)
	}
	for i, a := range *r.Agents {
		if a.ID == "" {
			return fmt.Errorf("agents[%d]: missing id", i)
		}
	}
	return nil
}

type messageResponse struct {
	Message string `json:"message"`
}
