package services

import (
	"errors"
	"net/http"

	"github.com/avatarctic/caller-crm/internal/application/query"
	"github.com/avatarctic/caller-crm/internal/core/ports"
)

// loadState renders a query state for a screen widget.
func loadState(st query.State) ports.LoadState {
	ls := ports.LoadState{
		Status: string(st.Status),
		Error:  st.ErrorMessage(),
		Stale:  st.Stale,
	}
	if !st.FetchedAt.IsZero() {
		t := st.FetchedAt
		ls.FetchedAt = &t
	}
	return ls
}

// mutationError wraps a failed mutation for handlers. Errors that know their
// HTTP status keep it; anything else is treated as an upstream failure.
func mutationError(err error, message string) error {
	status := http.StatusBadGateway
	var hs interface{ HTTPStatus() int }
	if errors.As(err, &hs) {
		status = hs.HTTPStatus()
	}
	return &ports.MutationError{StatusCode: status, Message: message, Err: err}
}
