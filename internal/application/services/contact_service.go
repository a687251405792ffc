package services

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/avatarctic/caller-crm/internal/application/query"
	"github.com/avatarctic/caller-crm/internal/core/domain/contact"
	"github.com/avatarctic/caller-crm/internal/core/ports"
)

// EmptyContactsMessage is shown when the list panel has nothing to render.
const EmptyContactsMessage = "No Contacts There"

var ErrContactNotFound = errors.New("contact not found")

type contactUpdate struct {
	id      string
	payload *contact.WritePayload
}

type ContactService struct {
	api      ports.CustomerAPI
	cache    *query.Cache
	vendorID string
	logger   *logrus.Logger

	create *query.Mutation[*contact.WritePayload, *contact.Contact]
	update *query.Mutation[contactUpdate, *contact.Contact]
	remove *query.Mutation[string, struct{}]
}

func NewContactService(api ports.CustomerAPI, cache *query.Cache, vendorID string, logger *logrus.Logger) *ContactService {
	s := &ContactService{api: api, cache: cache, vendorID: vendorID, logger: logger}
	invalidateList := func(_ *contact.WritePayload) []query.Key { return []query.Key{s.ListKey()} }

	s.create = query.NewMutation("create_contact", cache, func(ctx context.Context, p *contact.WritePayload) (*contact.Contact, error) {
		return api.CreateCustomer(ctx, p)
	}, invalidateList, logger)
	s.update = query.NewMutation("update_contact", cache, func(ctx context.Context, u contactUpdate) (*contact.Contact, error) {
		return api.UpdateCustomer(ctx, u.id, u.payload)
	}, func(u contactUpdate) []query.Key { return invalidateList(u.payload) }, logger)
	s.remove = query.NewMutation("delete_contact", cache, func(ctx context.Context, id string) (struct{}, error) {
		return struct{}{}, api.DeleteCustomer(ctx, id)
	}, func(string) []query.Key { return []query.Key{s.ListKey()} }, logger)
	return s
}

// ListKey is the cache key of the vendor's contact list.
func (s *ContactService) ListKey() query.Key { return query.NewKey("customers", s.vendorID) }

func (s *ContactService) fetchContacts(ctx context.Context) ([]contact.Contact, error) {
	return s.api.ListCustomers(ctx, s.vendorID)
}

// ListContacts never fails: a failed load renders as an empty list with the error.
func (s *ContactService) ListContacts(ctx context.Context, filter contact.Filter) *ports.ContactListView {
	all, st := query.Get(ctx, s.cache, s.ListKey(), s.fetchContacts)
	view := &ports.ContactListView{
		LoadState: loadState(st),
		Contacts:  filter.Apply(all),
		Total:     len(all),
		Saving:    s.saving(),
	}
	if len(view.Contacts) == 0 {
		view.EmptyMessage = EmptyContactsMessage
	}
	return view
}

func (s *ContactService) saving() bool {
	for _, status := range []query.MutationStatus{statusOf(s.create), statusOf(s.update), statusOf(s.remove)} {
		if status == query.MutationPending {
			return true
		}
	}
	return false
}

func statusOf[V, T any](m *query.Mutation[V, T]) query.MutationStatus {
	st, _ := m.Status()
	return st
}

// GetContact looks the contact up in the cached list, loading it if needed.
func (s *ContactService) GetContact(ctx context.Context, id string) (*contact.Contact, error) {
	all, st := query.Get(ctx, s.cache, s.ListKey(), s.fetchContacts)
	if st.Err != nil && !st.HasData() {
		return nil, st.Err
	}
	for i := range all {
		if all[i].ID == id {
			c := all[i]
			return &c, nil
		}
	}
	return nil, ErrContactNotFound
}

func (s *ContactService) CreateContact(ctx context.Context, form *contact.ContactForm) (*contact.Contact, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	payload := form.Payload(s.vendorID)
	res := s.create.Mutate(ctx, &payload)
	if !res.OK() {
		return nil, mutationError(res.Err, res.Message)
	}
	if res.Data == nil {
		return fromPayload("", &payload), nil
	}
	return res.Data, nil
}

// fromPayload stands in for the record when the service does not echo it.
func fromPayload(id string, p *contact.WritePayload) *contact.Contact {
	return &contact.Contact{
		ID:           id,
		Name:         p.Name,
		Email:        p.Email,
		MobileNumber: p.MobileNumber,
		Tags:         p.Tags,
		VendorID:     p.VendorID,
	}
}

func (s *ContactService) UpdateContact(ctx context.Context, id string, form *contact.ContactForm) (*contact.Contact, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	payload := form.Payload(s.vendorID)
	res := s.update.Mutate(ctx, contactUpdate{id: id, payload: &payload})
	if !res.OK() {
		return nil, mutationError(res.Err, res.Message)
	}
	if res.Data == nil {
		return fromPayload(id, &payload), nil
	}
	return res.Data, nil
}

func (s *ContactService) DeleteContact(ctx context.Context, id string) error {
	res := s.remove.Mutate(ctx, id)
	if !res.OK() {
		return mutationError(res.Err, res.Message)
	}
	return nil
}

var _ ports.ContactService = (*ContactService)(nil)
