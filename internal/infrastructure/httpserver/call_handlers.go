package httpserver

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/avatarctic/caller-crm/internal/core/ports"
)

// listCalls returns call history, optionally scoped with ?customerId=.
func (s *Server) listCalls(c echo.Context) error {
	return c.JSON(http.StatusOK, s.callSvc.ListCalls(c.Request().Context(), c.QueryParam("customerId")))
}

func (s *Server) getLiveCalls(c echo.Context) error {
	return c.JSON(http.StatusOK, s.callSvc.LiveCalls(c.Request().Context()))
}

// streamLiveCalls pushes a live-calls view as a server-sent event on every poll.
// The stream ends when the client leaves or the watch finishes on shutdown.
func (s *Server) streamLiveCalls(c echo.Context) error {
	ctx := c.Request().Context()
	res := c.Response()
	res.Header().Set(echo.HeaderContentType, "text/event-stream")
	res.Header().Set(echo.HeaderCacheControl, "no-cache")
	res.Header().Set(echo.HeaderConnection, "keep-alive")
	res.WriteHeader(http.StatusOK)
	res.Flush()

	// only the latest view matters; a slow client skips intermediate ones
	updates := make(chan *ports.LiveCallsView, 1)
	watch := s.callSvc.WatchLiveCalls(ctx, func(view *ports.LiveCallsView) {
		select {
		case <-updates:
		default:
		}
		select {
		case updates <- view:
		default:
		}
	})
	defer watch.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-watch.Done():
			return nil
		case view := <-updates:
			payload, err := json.Marshal(view)
			if err != nil {
				s.logger.WithError(err).Error("failed to encode live calls view")
				continue
			}
			if _, err := fmt.Fprintf(res, "event: live-calls\ndata: %s\n\n", payload); err != nil {
				return nil
			}
			res.Flush()
		}
	}
}
