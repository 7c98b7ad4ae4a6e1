package photos

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/JaimeStill/agrocheck/pkg/auth"
	"github.com/JaimeStill/agrocheck/pkg/formatting"
	"github.com/JaimeStill/agrocheck/pkg/handlers"
	"github.com/JaimeStill/agrocheck/pkg/routes"
)

// Handler provides HTTP endpoints for photo operations.
type Handler struct {
	sys           System
	logger        *slog.Logger
	maxUploadSize int64
}

// NewHandler creates a Handler with the given system, logger, and upload size limit.
func NewHandler(sys System, logger *slog.Logger, maxUploadSize int64) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "photos"),
		maxUploadSize: maxUploadSize,
	}
}

// Routes returns the route group definition for photo endpoints.
func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/photos",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "POST", Pattern: "", Handler: h.Upload},
			{Method: "GET", Pattern: "/reviews", Handler: h.Reviews},
		},
	}
}

// List returns the photos of the lot named by the lot_id query parameter.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	lotID, err := uuid.Parse(r.URL.Query().Get("lot_id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrLotRequired)
		return
	}

	photos, err := h.sys.ListByLot(r.Context(), auth.UserID(r.Context()), lotID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, photos)
}

// Reviews returns the inspection reviews of the lot named by lot_id.
func (h *Handler) Reviews(w http.ResponseWriter, r *http.Request) {
	lotID, err := uuid.Parse(r.URL.Query().Get("lot_id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrLotRequired)
		return
	}

	reviews, err := h.sys.Reviews(r.Context(), auth.UserID(r.Context()), lotID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, reviews)
}

// Upload processes a multipart form with a lot_id field and one or more
// image parts named files. Non-image parts are reported per file.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNoFiles)
			return
		}
		handlers.RespondErrorDetails(
			w, h.logger,
			http.StatusRequestEntityTooLarge, ErrFileTooLarge,
			"limit "+formatting.FormatBytes(h.maxUploadSize, 0),
		)
		return
	}

	lotID, err := uuid.Parse(r.FormValue("lot_id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrLotRequired)
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrNoFiles)
		return
	}

	var uploads []FileUpload
	var rejected []BatchResult

	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			rejected = append(rejected, BatchResult{Filename: fh.Filename, Error: err.Error()})
			continue
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			rejected = append(rejected, BatchResult{Filename: fh.Filename, Error: err.Error()})
			continue
		}

		contentType := http.DetectContentType(data)
		if declared := fh.Header.Get("Content-Type"); strings.HasPrefix(declared, "image/") {
			contentType = declared
		}
		if !strings.HasPrefix(contentType, "image/") {
			rejected = append(rejected, BatchResult{Filename: fh.Filename, Error: ErrNotImage.Error()})
			continue
		}

		uploads = append(uploads, FileUpload{Data: data, Filename: fh.Filename, ContentType: contentType})
	}

	results := rejected
	if len(uploads) > 0 {
		created, err := h.sys.Create(r.Context(), auth.UserID(r.Context()), lotID, uploads)
		if err != nil {
			handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
			return
		}
		results = append(created, rejected...)
	}

	status := http.StatusCreated
	if len(uploads) == 0 {
		status = http.StatusBadRequest
	}
	handlers.RespondJSON(w, status, results)
}
