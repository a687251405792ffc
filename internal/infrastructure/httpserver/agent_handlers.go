package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avatarctic/caller-crm/internal/core/domain/agent"
)

func (s *Server) listAgents(c echo.Context) error {
	return c.JSON(http.StatusOK, s.agentSvc.ListAgents(c.Request().Context()))
}

func (s *Server) createVendorUser(c echo.Context) error {
	var req agent.CreateVendorUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := s.agentSvc.CreateVendorUser(c.Request().Context(), &req); err != nil {
		return s.respondError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"message": "User created"})
}
