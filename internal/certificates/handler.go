package certificates

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/JaimeStill/agrocheck/internal/lots"
	"github.com/JaimeStill/agrocheck/pkg/auth"
	"github.com/JaimeStill/agrocheck/pkg/handlers"
	"github.com/JaimeStill/agrocheck/pkg/routes"
)

// Handler provides HTTP endpoints for certificate downloads.
type Handler struct {
	sys    System
	lots   lots.System
	logger *slog.Logger
}

// Link is a short-lived certificate download link.
type Link struct {
	Path      string `json:"certificate_path"`
	URL       string `json:"url"`
	ExpiresIn int    `json:"expires_in"`
}

// NewHandler creates a Handler resolving lots through ls.
func NewHandler(sys System, ls lots.System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		lots:   ls,
		logger: logger.With("handler", "certificates"),
	}
}

// Routes returns the route group definition for certificate endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/certificates",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/{lot_id}", Handler: h.Link},
		},
	}
}

// Link returns a download link for the lot's stored certificate.
func (h *Handler) Link(w http.ResponseWriter, r *http.Request) {
	lotID, err := uuid.Parse(r.PathValue("lot_id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, lots.ErrInvalidID)
		return
	}

	lot, err := h.lots.Find(r.Context(), auth.UserID(r.Context()), lotID)
	if err != nil {
		if errors.Is(err, lots.ErrNotFound) {
			err = ErrLotNotFound
		}
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	if lot.CertificatePath == nil || *lot.CertificatePath == "" {
		handlers.RespondError(w, h.logger, http.StatusNotFound, ErrNotIssued)
		return
	}

	url, err := h.sys.SignedURL(r.Context(), *lot.CertificatePath)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, Link{
		Path:      *lot.CertificatePath,
		URL:       url,
		ExpiresIn: int(URLTTL.Seconds()),
	})
}
