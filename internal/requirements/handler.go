package requirements

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/agrocheck/pkg/handlers"
	"github.com/JaimeStill/agrocheck/pkg/routes"
)

// Handler provides HTTP endpoints for requirement administration.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "requirements"),
	}
}

// Routes returns the route group definition for requirement endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/requirements",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/resolve", Handler: h.Resolve},
			{Method: "PUT", Pattern: "", Handler: h.Upsert},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
			{Method: "GET", Pattern: "/doc-types", Handler: h.DocTypes},
			{Method: "PUT", Pattern: "/doc-types", Handler: h.UpsertDocType},
		},
	}
}

// List returns stored mappings, optionally narrowed by product and destination_country.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	reqs, err := h.sys.List(r.Context(), q.Get("product"), q.Get("destination_country"))
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, reqs)
}

// Resolve returns the effective requirement list for a product and destination.
func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	product, country := q.Get("product"), q.Get("destination_country")
	if product == "" || country == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrKeyRequired)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, h.sys.Resolve(r.Context(), product, country))
}

// Upsert creates or replaces a mapping.
func (h *Handler) Upsert(w http.ResponseWriter, r *http.Request) {
	var cmd UpsertCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	req, err := h.sys.Upsert(r.Context(), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, req)
}

// Delete removes a mapping by id.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	if err := h.sys.Delete(r.Context(), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DocTypes returns the registered document types.
func (h *Handler) DocTypes(w http.ResponseWriter, r *http.Request) {
	defs, err := h.sys.DocTypes(r.Context())
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, defs)
}

// UpsertDocType registers or updates a document type.
func (h *Handler) UpsertDocType(w http.ResponseWriter, r *http.Request) {
	var def DocTypeDef
	if err := json.NewDecoder(r.Body).Decode(&def); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	saved, err := h.sys.UpsertDocType(r.Context(), def)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, saved)
}
