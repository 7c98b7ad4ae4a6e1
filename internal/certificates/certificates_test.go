package certificates_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/JaimeStill/agrocheck/internal/certificates"
	"github.com/JaimeStill/agrocheck/internal/lots"
	"github.com/JaimeStill/agrocheck/pkg/auth"
	"github.com/JaimeStill/agrocheck/pkg/storage"
)

var (
	testUser = uuid.MustParse("7f6c9e1a-0000-4000-8000-000000000001")
	testLot  = uuid.MustParse("7f6c9e1a-0000-4000-8000-0000000000aa")
)

type fakeStorage struct {
	storage.System
	uploads  map[string][]byte
	types    map[string]string
	deleted  []string
	uploadFn func(key string) error
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{uploads: map[string][]byte{}, types: map[string]string{}}
}

func (s *fakeStorage) Upload(_ context.Context, key string, r io.Reader, contentType string) error {
	if s.uploadFn != nil {
		if err := s.uploadFn(key); err != nil {
			return err
		}
	}
	data, _ := io.ReadAll(r)
	s.uploads[key] = data
	s.types[key] = contentType
	return nil
}

func (s *fakeStorage) Delete(_ context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *fakeStorage) SignedURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	return "https://blob.test/" + key + "?ttl=" + ttl.String(), nil
}

type fakeLots struct {
	lots.System
	findFn func(ctx context.Context, userID, id uuid.UUID) (*lots.Lot, error)
}

func (f *fakeLots) Find(ctx context.Context, userID, id uuid.UUID) (*lots.Lot, error) {
	return f.findFn(ctx, userID, id)
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleLot() lots.Lot {
	variety := "Hass"
	region := "La Libertad"
	return lots.Lot{
		ID:                 testLot,
		UserID:             testUser,
		Product:            "Palta",
		Variety:            &variety,
		LotCode:            "LOTE-001",
		OriginRegion:       &region,
		DestinationCountry: "NL",
		CertificateNumber:  17,
	}
}

func TestFromLot(t *testing.T) {
	issued := time.Date(2026, 9, 1, 15, 0, 0, 0, time.UTC)
	c := certificates.FromLot(sampleLot(), "Agro Export SAC", "  Documentación mínima OK.  ", issued)

	if c.Number != 17 || c.LotCode != "LOTE-001" || c.Variety != "Hass" {
		t.Errorf("certificate = %+v", c)
	}
	if c.Origin != "La Libertad, -" {
		t.Errorf("origin = %q", c.Origin)
	}
	if c.Observations != "Documentación mínima OK." {
		t.Errorf("observations = %q", c.Observations)
	}
	if !c.Approved {
		t.Error("certificate should be approved")
	}
	want := "AGROCHECK|" + testLot.String() + "|17|2026-09-01"
	if c.Verification != want {
		t.Errorf("verification = %q, want %q", c.Verification, want)
	}
}

func TestRender(t *testing.T) {
	tests := []struct {
		name string
		cert certificates.Certificate
	}{
		{"complete", certificates.FromLot(sampleLot(), "Agro Export SAC", "Sin observaciones críticas.", time.Now())},
		{"blank optional fields", certificates.Certificate{Product: "Mango", LotCode: "L-2", Destination: "US", IssuedAt: time.Now()}},
		{"long observations", certificates.FromLot(sampleLot(), "Agro", strings.Repeat("Observación extensa. ", 40), time.Now())},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := certificates.Render(tt.cert)
			if err != nil {
				t.Fatalf("Render() error: %v", err)
			}
			if !bytes.HasPrefix(data, []byte("%PDF-")) {
				t.Fatalf("output is not a pdf")
			}

			pages, err := api.PageCount(bytes.NewReader(data), nil)
			if err != nil {
				t.Fatalf("PageCount() error: %v", err)
			}
			if pages != 1 {
				t.Errorf("pages = %d, want 1", pages)
			}
		})
	}
}

func TestKey(t *testing.T) {
	at := time.UnixMilli(1767225600123)
	got := certificates.Key(testUser, testLot, at)
	want := "certs/" + testUser.String() + "/" + testLot.String() + "/cert_1767225600123.pdf"
	if got != want {
		t.Errorf("Key() = %q, want %q", got, want)
	}
	if !storage.OwnedBy(got, testUser.String()) {
		t.Error("key should be owned by the lot owner")
	}
}

func TestIssue(t *testing.T) {
	t.Run("stores rendered pdf", func(t *testing.T) {
		store := newFakeStorage()
		sys := certificates.New(store, discard())

		key, err := sys.Issue(context.Background(), sampleLot(), "Agro Export SAC", "")
		if err != nil {
			t.Fatalf("Issue() error: %v", err)
		}
		if !strings.HasPrefix(key, "certs/"+testUser.String()+"/"+testLot.String()+"/cert_") {
			t.Errorf("key = %q", key)
		}
		if store.types[key] != certificates.ContentType {
			t.Errorf("content type = %q", store.types[key])
		}
		if !bytes.HasPrefix(store.uploads[key], []byte("%PDF-")) {
			t.Error("uploaded content is not a pdf")
		}
	})

	t.Run("upload failure", func(t *testing.T) {
		store := newFakeStorage()
		store.uploadFn = func(string) error { return errors.New("quota") }
		sys := certificates.New(store, discard())

		_, err := sys.Issue(context.Background(), sampleLot(), "Agro", "")
		if !errors.Is(err, certificates.ErrUpload) {
			t.Errorf("error = %v, want ErrUpload", err)
		}
	})

	t.Run("signed url and discard", func(t *testing.T) {
		store := newFakeStorage()
		sys := certificates.New(store, discard())

		url, err := sys.SignedURL(context.Background(), "certs/u/l/cert_1.pdf")
		if err != nil {
			t.Fatalf("SignedURL() error: %v", err)
		}
		if !strings.HasSuffix(url, "ttl=1m0s") {
			t.Errorf("url = %q, want 60s ttl", url)
		}

		if err := sys.Discard(context.Background(), "certs/u/l/cert_1.pdf"); err != nil {
			t.Fatalf("Discard() error: %v", err)
		}
		if len(store.deleted) != 1 {
			t.Errorf("deleted = %v", store.deleted)
		}
	})
}

func TestHandlerLink(t *testing.T) {
	path := "certs/" + testUser.String() + "/" + testLot.String() + "/cert_1.pdf"

	newMux := func(find func(context.Context, uuid.UUID, uuid.UUID) (*lots.Lot, error)) http.Handler {
		sys := certificates.New(newFakeStorage(), discard())
		group := sys.Handler(&fakeLots{findFn: find}).Routes()
		mux := http.NewServeMux()
		for _, route := range group.Routes {
			mux.HandleFunc(route.Method+" "+group.Prefix+route.Pattern, route.Handler)
		}
		return mux
	}

	request := func(target string) *http.Request {
		req := httptest.NewRequest("GET", target, nil)
		return req.WithContext(auth.WithClaims(req.Context(), auth.Claims{UserID: testUser}))
	}

	t.Run("returns link", func(t *testing.T) {
		var scoped uuid.UUID
		mux := newMux(func(_ context.Context, userID, _ uuid.UUID) (*lots.Lot, error) {
			scoped = userID
			lot := sampleLot()
			lot.CertificatePath = &path
			return &lot, nil
		})

		rec := httptest.NewRecorder()
		mux.ServeHTTP(rec, request("/certificates/"+testLot.String()))

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", rec.Code)
		}
		if scoped != testUser {
			t.Errorf("lookup user = %s", scoped)
		}

		var link certificates.Link
		if err := json.NewDecoder(rec.Body).Decode(&link); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if link.Path != path || link.ExpiresIn != 60 || link.URL == "" {
			t.Errorf("link = %+v", link)
		}
	})

	tests := []struct {
		name   string
		target string
		find   func(context.Context, uuid.UUID, uuid.UUID) (*lots.Lot, error)
		want   int
	}{
		{"invalid id", "/certificates/abc", nil, http.StatusBadRequest},
		{"unknown lot", "/certificates/" + testLot.String(), func(context.Context, uuid.UUID, uuid.UUID) (*lots.Lot, error) {
			return nil, lots.ErrNotFound
		}, http.StatusNotFound},
		{"not issued", "/certificates/" + testLot.String(), func(context.Context, uuid.UUID, uuid.UUID) (*lots.Lot, error) {
			lot := sampleLot()
			return &lot, nil
		}, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newMux(tt.find).ServeHTTP(rec, request(tt.target))
			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}
