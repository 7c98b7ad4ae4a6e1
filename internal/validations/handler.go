package validations

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/agrocheck/pkg/auth"
	"github.com/JaimeStill/agrocheck/pkg/handlers"
	"github.com/JaimeStill/agrocheck/pkg/routes"
)

// Handler provides HTTP endpoints for validation runs.
type Handler struct {
	sys    System
	logger *slog.Logger
}

// NewHandler creates a Handler with the given system and logger.
func NewHandler(sys System, logger *slog.Logger) *Handler {
	return &Handler{
		sys:    sys,
		logger: logger.With("handler", "validations"),
	}
}

// Routes returns the route group definition for validation endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/validations",
		Routes: []routes.Route{
			{Method: "POST", Pattern: "/docs", Handler: h.Documents},
			{Method: "GET", Pattern: "/docs", Handler: h.Documents},
			{Method: "POST", Pattern: "/photos", Handler: h.Photos},
			{Method: "GET", Pattern: "/photos", Handler: h.Photos},
			{Method: "POST", Pattern: "/chat", Handler: h.Chat},
			{Method: "POST", Pattern: "/{lot_id}/result", Handler: h.Result},
		},
	}
}

// Documents runs document validation for the lot named by lot_id in the
// query string or the JSON body.
func (h *Handler) Documents(w http.ResponseWriter, r *http.Request) {
	var body struct {
		LotID string `json:"lot_id"`
	}
	if err := decodeOptional(r, &body); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	raw := r.URL.Query().Get("lot_id")
	if raw == "" {
		raw = body.LotID
	}
	if raw == "" {
		h.respondError(w, ErrLotRequired)
		return
	}

	lotID, err := uuid.Parse(raw)
	if err != nil {
		h.respondError(w, ErrLotNotFound)
		return
	}

	report, err := h.sys.ValidateDocuments(r.Context(), auth.UserID(r.Context()), lotID)
	if err != nil {
		h.respondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, report)
}

// Photos runs photo inspection. The lot is named by lot_id or lot_code;
// paths restricts the run and may repeat or be comma separated in a query.
func (h *Handler) Photos(w http.ResponseWriter, r *http.Request) {
	var req PhotoRequest
	if err := decodeOptional(r, &req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	q := r.URL.Query()
	if v := q.Get("lot_id"); v != "" {
		req.LotID = v
	}
	if v := q.Get("lot_code"); v != "" {
		req.LotCode = v
	}
	for _, v := range q["paths"] {
		for p := range strings.SplitSeq(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				req.Paths = append(req.Paths, p)
			}
		}
	}

	report, err := h.sys.InspectPhotos(r.Context(), auth.UserID(r.Context()), req)
	if err != nil {
		h.respondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, report)
}

// Result records a manual decision for the lot in the path.
func (h *Handler) Result(w http.ResponseWriter, r *http.Request) {
	lotID, err := uuid.Parse(r.PathValue("lot_id"))
	if err != nil {
		h.respondError(w, ErrLotNotFound)
		return
	}

	var cmd ResultCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	report, err := h.sys.RecordResult(r.Context(), auth.UserID(r.Context()), lotID, cmd)
	if err != nil {
		h.respondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, report)
}

// Chat answers a question about a lot.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var cmd ChatCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	text, err := h.sys.Chat(r.Context(), auth.UserID(r.Context()), cmd)
	if err != nil {
		h.respondError(w, err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, ChatReply{OK: true, Text: text})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var qe *QuotaError
	if errors.As(err, &qe) {
		h.logger.Warn("request rejected", "status", http.StatusTooManyRequests, "error", err)
		handlers.RespondJSON(w, http.StatusTooManyRequests, QuotaResponse{
			OK:      false,
			Error:   qe.Error(),
			IAUsed:  qe.Used,
			IAQuota: qe.Quota,
		})
		return
	}
	handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
}

// decodeOptional decodes a JSON body when the request carries one.
func decodeOptional(r *http.Request, v any) error {
	if r.Method == http.MethodGet || r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return errors.New("invalid json body")
	}
	return nil
}
