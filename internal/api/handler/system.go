package handler

import (
	"net/http"

	"github.com/mcoot/rpgroster-go/internal/api/apierr"
	"github.com/mcoot/rpgroster-go/internal/api/response"
	"github.com/mcoot/rpgroster-go/internal/dependencies/clock"
)

// Version is reported by the service banner
const Version = "1.0.0"

// SystemHandler serves the banner, health check and fallback routes
type SystemHandler struct {
	clock  clock.Clock
	errors *apierr.Writer
}

// NewSystemHandler creates a new system handler
func NewSystemHandler(clock clock.Clock, errors *apierr.Writer) *SystemHandler {
	return &SystemHandler{clock: clock, errors: errors}
}

// Banner handles GET /
func (h *SystemHandler) Banner(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.Banner{
		Message: "RPG Roster API",
		Version: Version,
		Endpoints: map[string]string{
			"auth":        "/api/auth",
			"characters":  "/api/characters",
			"leaderboard": "/api/leaderboard",
			"metrics":     "/metrics",
		},
	})
}

// Health handles GET /health
func (h *SystemHandler) Health(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.OK("", response.Health{
		Status: "ok",
		Time:   h.clock.Now(),
	}))
}

// NotFound writes the 404 envelope for unknown routes and methods
func (h *SystemHandler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.errors.Write(w, r, apierr.NewNotFoundError())
}
