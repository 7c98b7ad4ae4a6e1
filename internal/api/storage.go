package api

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path"
	"strconv"
	"time"

	"github.com/JaimeStill/agrocheck/pkg/auth"
	"github.com/JaimeStill/agrocheck/pkg/handlers"
	"github.com/JaimeStill/agrocheck/pkg/routes"
	"github.com/JaimeStill/agrocheck/pkg/storage"
)

type storageHandler struct {
	store  storage.System
	logger *slog.Logger
}

type signedURLResponse struct {
	OK        bool      `json:"ok"`
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expires_at"`
}

func newStorageHandler(store storage.System, logger *slog.Logger) *storageHandler {
	return &storageHandler{
		store:  store,
		logger: logger.With("handler", "storage"),
	}
}

func (h *storageHandler) routes() routes.Group {
	return routes.Group{
		Prefix: "/storage",
		Routes: []routes.Route{
			{Method: "GET", Pattern: "/url/{key...}", Handler: h.signedURL},
			{Method: "GET", Pattern: "/download/{key...}", Handler: h.download},
		},
	}
}

func (h *storageHandler) signedURL(w http.ResponseWriter, r *http.Request) {
	key, ok := h.ownedKey(w, r)
	if !ok {
		return
	}

	ttl := storage.MinSignedURLTTL
	if v := r.URL.Query().Get("ttl"); v != "" {
		seconds, err := strconv.Atoi(v)
		if err != nil {
			handlers.RespondError(w, h.logger, http.StatusBadRequest, fmt.Errorf("%w: %s", storage.ErrInvalidTTL, v))
			return
		}
		ttl = time.Duration(seconds) * time.Second
	}
	if err := storage.ValidateTTL(ttl); err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}

	url, err := h.store.SignedURL(r.Context(), key, ttl)
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusOK, signedURLResponse{
		OK:        true,
		Key:       key,
		URL:       url,
		ExpiresAt: time.Now().Add(ttl).UTC(),
	})
}

func (h *storageHandler) download(w http.ResponseWriter, r *http.Request) {
	key, ok := h.ownedKey(w, r)
	if !ok {
		return
	}

	result, err := h.store.Download(r.Context(), key)
	if err != nil {
		handlers.RespondError(w, h.logger, storage.MapHTTPStatus(err), err)
		return
	}
	defer result.Body.Close()

	w.Header().Set("Content-Type", result.ContentType)

	if result.ContentLength > 0 {
		w.Header().Set(
			"Content-Length",
			strconv.FormatInt(result.ContentLength, 10),
		)
	}
	w.Header().Set(
		"Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", path.Base(key)),
	)
	w.WriteHeader(http.StatusOK)
	io.Copy(w, result.Body)
}

// ownedKey resolves the key path value and rejects keys outside the caller's namespace.
func (h *storageHandler) ownedKey(w http.ResponseWriter, r *http.Request) (string, bool) {
	key := r.PathValue("key")
	if key == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, storage.ErrEmptyKey)
		return "", false
	}

	claims, ok := auth.FromContext(r.Context())
	if !ok {
		handlers.RespondError(w, h.logger, http.StatusUnauthorized, auth.ErrMissingToken)
		return "", false
	}
	if !storage.OwnedBy(key, claims.UserID.String()) {
		handlers.RespondError(w, h.logger, http.StatusForbidden, storage.ErrForbidden)
		return "", false
	}
	return key, true
}
