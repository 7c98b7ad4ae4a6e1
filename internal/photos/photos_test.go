package photos_test

import (
	"bytes"
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/agrocheck/internal/photos"
	"github.com/JaimeStill/agrocheck/pkg/auth"
)

type mockSystem struct {
	listByLotFn func(ctx context.Context, userID, lotID uuid.UUID) ([]photos.Photo, error)
	createFn    func(ctx context.Context, userID, lotID uuid.UUID, files []photos.FileUpload) ([]photos.BatchResult, error)
	reviewsFn   func(ctx context.Context, userID, lotID uuid.UUID) ([]photos.Review, error)
}

func (m *mockSystem) Handler(int64) *photos.Handler {
	return newTestHandler(m)
}

func (m *mockSystem) ListByLot(ctx context.Context, userID, lotID uuid.UUID) ([]photos.Photo, error) {
	return m.listByLotFn(ctx, userID, lotID)
}

func (m *mockSystem) Create(ctx context.Context, userID, lotID uuid.UUID, files []photos.FileUpload) ([]photos.BatchResult, error) {
	return m.createFn(ctx, userID, lotID, files)
}

func (m *mockSystem) Reviews(ctx context.Context, userID, lotID uuid.UUID) ([]photos.Review, error) {
	return m.reviewsFn(ctx, userID, lotID)
}

func newTestHandler(sys *mockSystem) *photos.Handler {
	return photos.NewHandler(sys, slog.New(slog.NewTextHandler(io.Discard, nil)), 10<<20)
}

func setupMux(h *photos.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	group := h.Routes()
	for _, route := range group.Routes {
		mux.HandleFunc(route.Method+" "+group.Prefix+route.Pattern, route.Handler)
	}
	return mux
}

var caller = uuid.New()

func asCaller(r *http.Request) *http.Request {
	return r.WithContext(auth.WithClaims(r.Context(), auth.Claims{UserID: caller}))
}

type part struct {
	filename    string
	contentType string
	data        []byte
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func uploadRequest(t *testing.T, lotID string, parts ...part) *http.Request {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if lotID != "" {
		mw.WriteField("lot_id", lotID)
	}
	for _, p := range parts {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="files"; filename="`+p.filename+`"`)
		h.Set("Content-Type", p.contentType)
		w, err := mw.CreatePart(h)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		w.Write(p.data)
	}
	mw.Close()

	req := httptest.NewRequest("POST", "/photos", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return asCaller(req)
}

func TestHandlerUpload(t *testing.T) {
	lot := uuid.New()

	t.Run("batch with rejected part", func(t *testing.T) {
		var got []photos.FileUpload
		sys := &mockSystem{
			createFn: func(_ context.Context, _, lotID uuid.UUID, files []photos.FileUpload) ([]photos.BatchResult, error) {
				got = files
				results := make([]photos.BatchResult, len(files))
				for i, f := range files {
					results[i] = photos.BatchResult{Filename: f.Filename, Photo: &photos.Photo{LotID: lotID, Filename: f.Filename}}
				}
				return results, nil
			},
		}

		req := uploadRequest(t, lot.String(),
			part{"palta-1.jpg", "image/jpeg", []byte{0xff, 0xd8, 0xff}},
			part{"palta-2.png", "application/octet-stream", pngHeader},
			part{"notes.txt", "text/plain", []byte("not an image")},
		)
		rec := httptest.NewRecorder()
		setupMux(newTestHandler(sys)).ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
		}
		if len(got) != 2 {
			t.Fatalf("uploads = %d, want 2", len(got))
		}
		if got[1].ContentType != "image/png" {
			t.Errorf("sniffed type = %s, want image/png", got[1].ContentType)
		}

		var results []photos.BatchResult
		if err := json.NewDecoder(rec.Body).Decode(&results); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(results) != 3 {
			t.Fatalf("results = %d, want 3", len(results))
		}
		if results[2].Filename != "notes.txt" || results[2].Error == "" {
			t.Errorf("rejected result = %+v", results[2])
		}
	})

	t.Run("no image parts", func(t *testing.T) {
		req := uploadRequest(t, lot.String(), part{"notes.txt", "text/plain", []byte("x")})
		rec := httptest.NewRecorder()
		setupMux(newTestHandler(&mockSystem{})).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("no files", func(t *testing.T) {
		rec := httptest.NewRecorder()
		setupMux(newTestHandler(&mockSystem{})).ServeHTTP(rec, uploadRequest(t, lot.String()))

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("missing lot", func(t *testing.T) {
		req := uploadRequest(t, "", part{"a.jpg", "image/jpeg", []byte{0xff, 0xd8}})
		rec := httptest.NewRecorder()
		setupMux(newTestHandler(&mockSystem{})).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})

	t.Run("foreign lot", func(t *testing.T) {
		sys := &mockSystem{
			createFn: func(context.Context, uuid.UUID, uuid.UUID, []photos.FileUpload) ([]photos.BatchResult, error) {
				return nil, photos.ErrLotNotFound
			},
		}
		req := uploadRequest(t, lot.String(), part{"a.jpg", "image/jpeg", []byte{0xff, 0xd8}})
		rec := httptest.NewRecorder()
		setupMux(newTestHandler(sys)).ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
	})
}

func TestHandlerList(t *testing.T) {
	lot := uuid.New()
	sys := &mockSystem{
		listByLotFn: func(_ context.Context, userID, lotID uuid.UUID) ([]photos.Photo, error) {
			if userID != caller || lotID != lot {
				t.Errorf("scope = (%s, %s)", userID, lotID)
			}
			return []photos.Photo{{FilePath: "photos/u/l/photo_1_a.jpg"}}, nil
		},
		reviewsFn: func(context.Context, uuid.UUID, uuid.UUID) ([]photos.Review, error) {
			return []photos.Review{{Ripeness: photos.RipenessRipe, ExportReady: true, Issues: []string{}}}, nil
		},
	}
	mux := setupMux(newTestHandler(sys))

	tests := []struct {
		path   string
		status int
	}{
		{"/photos?lot_id=" + lot.String(), http.StatusOK},
		{"/photos/reviews?lot_id=" + lot.String(), http.StatusOK},
		{"/photos", http.StatusBadRequest},
		{"/photos/reviews?lot_id=bad", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, asCaller(httptest.NewRequest("GET", tt.path, nil)))
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
}

type fakeExecutor struct {
	args [][]any
}

func (f *fakeExecutor) ExecContext(_ context.Context, _ string, args ...any) (sql.Result, error) {
	f.args = append(f.args, args)
	return driver.RowsAffected(1), nil
}

func TestRecordReviews(t *testing.T) {
	lot, user := uuid.New(), uuid.New()
	reviews := []photos.Review{
		{LotID: lot, UserID: user, PhotoPath: "photos/u/l/a.jpg", Ripeness: photos.RipenessRipe, Issues: []string{"golpes"}},
		{LotID: lot, UserID: user, PhotoPath: "photos/u/l/b.jpg", Ripeness: photos.RipenessUnknown},
	}

	exec := &fakeExecutor{}
	if err := photos.RecordReviews(context.Background(), exec, reviews); err != nil {
		t.Fatalf("record: %v", err)
	}
	if len(exec.args) != 2 {
		t.Fatalf("inserts = %d, want 2", len(exec.args))
	}

	if got := string(exec.args[0][8].([]byte)); got != `["golpes"]` {
		t.Errorf("issues = %s", got)
	}
	if got := string(exec.args[1][8].([]byte)); got != `[]` {
		t.Errorf("nil issues = %s, want []", got)
	}
}
