package agent

import (
	"net/mail"
	"regexp"
	"strings"

	"github.com/avatarctic/caller-crm/internal/core/domain/contact"
)

// Agent is a call-center user belonging to a vendor.
type Agent struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email,omitempty"`
	MobileNumber string `json:"mobileNumber,omitempty"`
	Role         Role   `json:"role,omitempty"`
	Department   string `json:"department,omitempty"`
	Status       string `json:"status,omitempty"`
	VendorID     string `json:"vendorId,omitempty"`
}

type Role string

const (
	RoleAgent   Role = "agent"
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAgent, RoleManager, RoleAdmin:
		return true
	}
	return false
}

// CreateVendorUserRequest creates a user under a multivendor account.
type CreateVendorUserRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	MobileNumber string `json:"mobileNumber"`
	Password     string `json:"password,omitempty"`
	Role         Role   `json:"role"`
	VendorID     string `json:"vendorId"`
}

var phonePattern = regexp.MustCompile(`^[0-9]{10}$`)

func (r *CreateVendorUserRequest) Validate() error {
	var errs contact.ValidationErrors
	if strings.TrimSpace(r.Name) == "" {
		errs = append(errs, contact.FieldError{Field: "name", Message: "Name is required"})
	}
	if addr, err := mail.ParseAddress(r.Email); err != nil || addr.Address != r.Email {
		errs = append(errs, contact.FieldError{Field: "email", Message: "Invalid email"})
	}
	if r.MobileNumber != "" && !phonePattern.MatchString(r.MobileNumber) {
		errs = append(errs, contact.FieldError{Field: "mobileNumber", Message: "Phone must be 10 digits"})
	}
	if r.Role == "" {
		r.Role = RoleAgent
	}
	if !r.Role.Valid() {
		errs = append(errs, contact.FieldError{Field: "role", Message: "Unknown role"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}
