package contact

import (
	"fmt"
	"net/mail"
	"regexp"
	"slices"
	"strings"
)

// Contact is a customer record as returned by the remote CRM service.
type Contact struct {
	ID           string        `json:"id"`
	Name         string        `json:"name"`
	Email        string        `json:"email"`
	MobileNumber string        `json:"mobileNumber"`
	Status       ContactStatus `json:"status,omitempty"`
	Tags         []string      `json:"tags"`
	VendorID     string        `json:"vendorId,omitempty"`
	LastContact  string        `json:"lastContact,omitempty"`
}

type ContactStatus string

const (
	ContactStatusActive   ContactStatus = "active"
	ContactStatusInactive ContactStatus = "inactive"
)

// HasAnyTag reports whether the contact carries at least one of tags.
// An empty selection matches every contact.
func (c *Contact) HasAnyTag(tags []string) bool {
	if len(tags) == 0 {
		return true
	}
	for _, t := range tags {
		if slices.Contains(c.Tags, t) {
			return true
		}
	}
	return false
}

// MatchesSearch is a case-insensitive match on name and email, and a plain
// substring match on the mobile number.
func (c *Contact) MatchesSearch(query string) bool {
	if query == "" {
		return true
	}
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(c.Name), q) ||
		strings.Contains(strings.ToLower(c.Email), q) ||
		strings.Contains(c.MobileNumber, query)
}

// Filter selects the contacts shown in the list panel.
type Filter struct {
	Search string
	Tags   []string
}

func (f Filter) Apply(contacts []Contact) []Contact {
	out := make([]Contact, 0, len(contacts))
	for i := range contacts {
		if contacts[i].MatchesSearch(f.Search) && contacts[i].HasAnyTag(f.Tags) {
			out = append(out, contacts[i])
		}
	}
	return out
}

// ContactForm is the add/edit form submitted by an agent.
type ContactForm struct {
	Name  string   `json:"name"`
	Email string   `json:"email"`
	Phone string   `json:"phone"`
	Tags  []string `json:"tags"`
}

// WritePayload is the body accepted by the customers endpoint on create and update.
type WritePayload struct {
	Name         string   `json:"name"`
	Email        string   `json:"email"`
	MobileNumber string   `json:"mobileNumber"`
	Tags         []string `json:"tags"`
	VendorID     string   `json:"vendorId"`
	CreatedBy    string   `json:"created_by,omitempty"`
	UpdatedBy    string   `json:"updated_by,omitempty"`
}

var phonePattern = regexp.MustCompile(`^[0-9]{10}$`)

// Validate checks the form before any request is issued.
func (f *ContactForm) Validate() error {
	var errs ValidationErrors
	if strings.TrimSpace(f.Name) == "" {
		errs = append(errs, FieldError{Field: "name", Message: "Name is required"})
	}
	email := strings.TrimSpace(f.Email)
	if email == "" {
		errs = append(errs, FieldError{Field: "email", Message: "Email is required"})
	} else if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		errs = append(errs, FieldError{Field: "email", Message: "Invalid email"})
	}
	phone := strings.TrimSpace(f.Phone)
	if phone == "" {
		errs = append(errs, FieldError{Field: "phone", Message: "Phone is required"})
	} else if !phonePattern.MatchString(phone) {
		errs = append(errs, FieldError{Field: "phone", Message: "Phone must be 10 digits"})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Payload builds the write body for vendorID. Blank tags are dropped.
func (f *ContactForm) Payload(vendorID string) WritePayload {
	tags := make([]string, 0, len(f.Tags))
	for _, t := range f.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return WritePayload{
		Name:         strings.TrimSpace(f.Name),
		Email:        strings.TrimSpace(f.Email),
		MobileNumber: strings.TrimSpace(f.Phone),
		Tags:         tags,
		VendorID:     vendorID,
	}
}

// FormFrom pre-populates the edit form from an existing contact.
func FormFrom(c *Contact) ContactForm {
	return ContactForm{
		Name:  c.Name,
		Email: c.Email,
		Phone: c.MobileNumber,
		Tags:  slices.Clone(c.Tags),
	}
}

// FieldError is a single failed form rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is returned when a form fails client-side checks.
type ValidationErrors []FieldError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, fe := range v {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fe.Field, fe.Message))
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}
