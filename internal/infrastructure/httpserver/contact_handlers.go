package httpserver

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/avatarctic/caller-crm/internal/core/domain/contact"
)

// listContacts supports ?search= and a comma separated ?tags= filter.
func (s *Server) listContacts(c echo.Context) error {
	filter := contact.Filter{Search: strings.TrimSpace(c.QueryParam("search"))}
	if raw := c.QueryParam("tags"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				filter.Tags = append(filter.Tags, t)
			}
		}
	}
	return c.JSON(http.StatusOK, s.contactSvc.ListContacts(c.Request().Context(), filter))
}

// contactID returns the decoded :id param. The router matches on the raw
// path when the request carries escapes, and leaves params encoded.
func contactID(c echo.Context) (string, error) {
	id := c.Param("id")
	if c.Request().URL.RawPath != "" {
		var err error
		if id, err = url.PathUnescape(id); err != nil {
			return "", echo.NewHTTPError(http.StatusBadRequest, "invalid contact id")
		}
	}
	return id, nil
}

// getContact returns the contact with its edit form pre-populated.
func (s *Server) getContact(c echo.Context) error {
	id, err := contactID(c)
	if err != nil {
		return err
	}
	found, err := s.contactSvc.GetContact(c.Request().Context(), id)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"contact": found,
		"form":    contact.FormFrom(found),
	})
}

func (s *Server) createContact(c echo.Context) error {
	var form contact.ContactForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	created, err := s.contactSvc.CreateContact(c.Request().Context(), &form)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusCreated, created)
}

func (s *Server) updateContact(c echo.Context) error {
	id, err := contactID(c)
	if err != nil {
		return err
	}

	var form contact.ContactForm
	if err := c.Bind(&form); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	updated, err := s.contactSvc.UpdateContact(c.Request().Context(), id, &form)
	if err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteContact(c echo.Context) error {
	id, err := contactID(c)
	if err != nil {
		return err
	}
	if err := s.contactSvc.DeleteContact(c.Request().Context(), id); err != nil {
		return s.respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
