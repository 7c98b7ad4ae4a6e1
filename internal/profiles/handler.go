package profiles

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/agrocheck/pkg/auth"
	"github.com/JaimeStill/agrocheck/pkg/handlers"
	"github.com/JaimeStill/agrocheck/pkg/routes"
)

// Handler provides HTTP endpoints for the caller's profile.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "profiles"),
	}
}

// Routes returns the route group definition for profile endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/profile",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.Find},
			{Method: "PUT", Pattern: "", Handler: h.Update},
			{Method: "GET", Pattern: "/usage", Handler: h.Usage},
		},
	}
}

// Find returns the caller's profile, provisioning it on first access.
func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.FromContext(r.Context())

	p, err := h.sys.Ensure(r.Context(), claims.UserID, claims.Email)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, p)
}

// Update changes the caller's display name.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var cmd UpdateCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	p, err := h.sys.Update(r.Context(), auth.UserID(r.Context()), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, p)
}

// Usage returns the caller's quota consumption.
func (h *Handler) Usage(w http.ResponseWriter, r *http.Request) {
	claims, _ := auth.FromContext(r.Context())

	p, err := h.sys.Ensure(r.Context(), claims.UserID, claims.Email)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, p.Usage())
}
