package documents

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/JaimeStill/agrocheck/internal/validation"
	"github.com/JaimeStill/agrocheck/pkg/auth"
	"github.com/JaimeStill/agrocheck/pkg/formatting"
	"github.com/JaimeStill/agrocheck/pkg/handlers"
	"github.com/JaimeStill/agrocheck/pkg/pagination"
	"github.com/JaimeStill/agrocheck/pkg/routes"
)

const mimePDF = "application/pdf"

// Handler serves the caller's lot documents.
type Handler struct {
	sys           System
	logger        *slog.Logger
	pagination    pagination.Config
	maxUploadSize int64
}

// SearchRequest is the body accepted by POST /documents/search.
type SearchRequest struct {
	pagination.PageRequest
	Filters
}

func NewHandler(
	sys System,
	logger *slog.Logger,
	pagination pagination.Config,
	maxUploadSize int64,
) *Handler {
	return &Handler{
		sys:           sys,
		logger:        logger.With("handler", "documents"),
		pagination:    pagination,
		maxUploadSize: maxUploadSize,
	}
}

func (h *Handler) Routes() routes.Group {
	return routes.Group{
		Prefix: "/documents",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "", Handler: h.List},
			{Method: "GET", Pattern: "/{id}", Handler: h.Find},
			{Method: "POST", Pattern: "", Handler: h.Upload},
			{Method: "POST", Pattern: "/search", Handler: h.Search},
			{Method: "DELETE", Pattern: "/{id}", Handler: h.Delete},
		},
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	h.list(w, r, pagination.PageRequestFromQuery(q, h.pagination), FiltersFromQuery(q))
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}
	req.PageRequest.Normalize(h.pagination)
	h.list(w, r, req.PageRequest, req.Filters)
}

func (h *Handler) Find(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	doc, err := h.sys.Find(r.Context(), auth.UserID(r.Context()), id)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, doc)
}

// Upload stores one document from a multipart form carrying lot_id,
// doc_type and file. PDF uploads record their page count.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	cmd, err := h.parseUpload(r)
	switch {
	case errors.Is(err, ErrFileTooLarge):
		handlers.RespondErrorDetails(
			w, h.logger,
			http.StatusRequestEntityTooLarge, err,
			"limit "+formatting.FormatBytes(h.maxUploadSize, 0),
		)
		return
	case err != nil:
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	doc, err := h.sys.Create(r.Context(), auth.UserID(r.Context()), cmd)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	handlers.RespondJSON(w, http.StatusCreated, doc)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}

	if err := h.sys.Delete(r.Context(), auth.UserID(r.Context()), id); err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request, page pagination.PageRequest, filters Filters) {
	result, err := h.sys.List(r.Context(), auth.UserID(r.Context()), page, filters)
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusInternalServerError, err)
		return
	}
	handlers.RespondJSON(w, http.StatusOK, result)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrInvalidID)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) parseUpload(r *http.Request) (CreateCommand, error) {
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return CreateCommand{}, ErrInvalidFile
		}
		return CreateCommand{}, ErrFileTooLarge
	}

	lotID, err := uuid.Parse(r.FormValue("lot_id"))
	if err != nil {
		return CreateCommand{}, ErrInvalidID
	}

	docType := validation.DocType(strings.ToUpper(strings.TrimSpace(r.FormValue("doc_type"))))
	if !ValidDocType(docType) {
		return CreateCommand{}, ErrInvalidDocType
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return CreateCommand{}, ErrInvalidFile
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil || len(data) == 0 {
		return CreateCommand{}, ErrInvalidFile
	}

	contentType := DetectContentType(header.Header.Get("Content-Type"), data)
	return CreateCommand{
		LotID:       lotID,
		DocType:     docType,
		Data:        data,
		Filename:    header.Filename,
		ContentType: contentType,
		PageCount:   h.pageCount(data, contentType),
	}, nil
}

// pageCount returns nil for non-PDF content or unreadable PDFs.
func (h *Handler) pageCount(data []byte, contentType string) *int {
	if contentType != mimePDF {
		return nil
	}

	n, err := api.PageCount(bytes.NewReader(data), nil)
	if err != nil {
		h.logger.Warn("pdf page count unavailable", "error", err)
		return nil
	}
	return &n
}

// DetectContentType trusts a specific client-declared type and sniffs otherwise.
func DetectContentType(header string, data []byte) string {
	header = strings.TrimSpace(header)
	if header != "" && header != "application/octet-stream" {
		return header
	}
	return http.DetectContentType(data)
}
