package api

import (
	"net/http"

	"github.com/grade-assist/backend/internal/matcher"
	"github.com/grade-assist/backend/internal/report"
	"github.com/grade-assist/backend/internal/roster"
	"github.com/grade-assist/backend/internal/session"
	"github.com/grade-assist/backend/internal/storage"
	"github.com/labstack/echo/v4"
)

// Handler handles API requests.
type Handler struct {
	store   storage.Store
	runs    *session.Manager
	roster  *roster.Store
	reports *report.Archive // nil when the archive is disabled
	engine  *matcher.Engine
}

// NewHandler creates a new API handler.
func NewHandler(store storage.Store, runs *session.Manager, rosterStore *roster.Store, reports *report.Archive, engine *matcher.Engine) *Handler {
	return &Handler{
		store:   store,
		runs:    runs,
		roster:  rosterStore,
		reports: reports,
		engine:  engine,
	}
}

// HandleHealth returns server health status.
func (h *Handler) HandleHealth(c echo.Context) error {
	rosterCount, _, _ := h.roster.Info()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":      "ok",
		"rosterSize":  rosterCount,
		"matchFloor":  h.engine.Params().Floor,
		"archiveOpen": h.reports != nil,
	})
}
