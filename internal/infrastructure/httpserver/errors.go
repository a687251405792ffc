package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avatarctic/caller-crm/internal/application/services"
	"github.com/avatarctic/caller-crm/internal/core/domain/contact"
	"github.com/avatarctic/caller-crm/internal/core/ports"
)

// respondError maps service errors onto the JSON error shapes used by the dashboard.
func (s *Server) respondError(c echo.Context, err error) error {
	var verrs contact.ValidationErrors
	if errors.As(err, &verrs) {
		return c.JSON(http.StatusUnprocessableEntity, map[string]any{
			"error":  "validation failed",
			"fields": verrs,
		})
	}

	var merr *ports.MutationError
	if errors.As(err, &merr) {
		return c.JSON(merr.StatusCode, map[string]string{"error": merr.Message})
	}

	if errors.Is(err, services.ErrContactNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "contact not found")
	}

	s.logger.WithError(err).WithField("path", c.Path()).Error("request failed")
	return echo.NewHTTPError(http.StatusBadGateway, "Something went wrong. Please try again.")
}
