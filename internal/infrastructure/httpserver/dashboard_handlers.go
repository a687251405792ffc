package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/avatarctic/caller-crm/internal/application/query"
	"github.com/avatarctic/caller-crm/internal/infrastructure/httpserver/helpers"
)

func (s *Server) getDashboard(c echo.Context) error {
	return c.JSON(http.StatusOK, s.dashboardSvc.Summary(c.Request().Context()))
}

type invalidateRequest struct {
	Key []any `json:"key"`
}

// invalidateCache marks every entry under the given key prefix stale.
// An empty key invalidates the whole cache.
func (s *Server) invalidateCache(c echo.Context) error {
	vendorID, err := helpers.GetVendorIDFromContext(c)
	if err != nil {
		return err
	}

	var req invalidateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	prefix := query.NewKey(req.Key...)
	n := s.cache.InvalidatePrefix(prefix)
	s.logger.WithFields(logrus.Fields{"vendor_id": vendorID, "prefix": prefix.String(), "count": n}).Info("cache invalidated")
	return c.JSON(http.StatusOK, map[string]int{"invalidated": n})
}
