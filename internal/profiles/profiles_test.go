package profiles_test

import (
	"bytes"
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"

	"github.com/JaimeStill/agrocheck/internal/profiles"
	"github.com/JaimeStill/agrocheck/pkg/auth"
)

type mockSystem struct {
	findFn   func(ctx context.Context, userID uuid.UUID) (*profiles.Profile, error)
	ensureFn func(ctx context.Context, userID uuid.UUID, email string) (*profiles.Profile, error)
	updateFn func(ctx context.Context, userID uuid.UUID, cmd profiles.UpdateCommand) (*profiles.Profile, error)
}

func (m *mockSystem) Handler() *profiles.Handler {
	return newTestHandler(m)
}

func (m *mockSystem) Find(ctx context.Context, userID uuid.UUID) (*profiles.Profile, error) {
	return m.findFn(ctx, userID)
}

func (m *mockSystem) Ensure(ctx context.Context, userID uuid.UUID, email string) (*profiles.Profile, error) {
	return m.ensureFn(ctx, userID, email)
}

func (m *mockSystem) Update(ctx context.Context, userID uuid.UUID, cmd profiles.UpdateCommand) (*profiles.Profile, error) {
	return m.updateFn(ctx, userID, cmd)
}

func newTestHandler(sys *mockSystem) *profiles.Handler {
	return profiles.NewHandler(sys, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func setupMux(h *profiles.Handler) *http.ServeMux {
	mux := http.NewServeMux()
	group := h.Routes()
	for _, route := range group.Routes {
		mux.HandleFunc(route.Method+" "+group.Prefix+route.Pattern, route.Handler)
	}
	return mux
}

var claims = auth.Claims{UserID: uuid.New(), Email: "ana@fundo.pe"}

func withClaims(r *http.Request) *http.Request {
	return r.WithContext(auth.WithClaims(r.Context(), claims))
}

func TestHandlerFind(t *testing.T) {
	var gotEmail string
	sys := &mockSystem{
		ensureFn: func(_ context.Context, userID uuid.UUID, email string) (*profiles.Profile, error) {
			gotEmail = email
			return &profiles.Profile{ID: userID, Plan: "free", IAQuota: 30}, nil
		},
	}

	rec := httptest.NewRecorder()
	setupMux(newTestHandler(sys)).ServeHTTP(rec, withClaims(httptest.NewRequest("GET", "/profile", nil)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if gotEmail != claims.Email {
		t.Errorf("email = %q, want %q", gotEmail, claims.Email)
	}

	var p profiles.Profile
	if err := json.NewDecoder(rec.Body).Decode(&p); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.ID != claims.UserID || p.IAQuota != 30 {
		t.Errorf("profile = %+v", p)
	}
}

func TestHandlerUpdate(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{"updated", `{"full_name":"Fundo Los Olivos"}`, nil, http.StatusOK},
		{"blank name", `{"full_name":" "}`, profiles.ErrNameRequired, http.StatusBadRequest},
		{"malformed", `{`, nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sys := &mockSystem{
				updateFn: func(_ context.Context, userID uuid.UUID, cmd profiles.UpdateCommand) (*profiles.Profile, error) {
					if tt.err != nil {
						return nil, tt.err
					}
					return &profiles.Profile{ID: userID, FullName: &cmd.FullName}, nil
				},
			}

			rec := httptest.NewRecorder()
			req := withClaims(httptest.NewRequest("PUT", "/profile", bytes.NewReader([]byte(tt.body))))
			setupMux(newTestHandler(sys)).ServeHTTP(rec, req)

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
		})
	}
}

func TestHandlerUsage(t *testing.T) {
	sys := &mockSystem{
		ensureFn: func(_ context.Context, userID uuid.UUID, _ string) (*profiles.Profile, error) {
			return &profiles.Profile{ID: userID, Plan: "pro", IAUsed: 3, IAQuota: 12}, nil
		},
	}

	rec := httptest.NewRecorder()
	setupMux(newTestHandler(sys)).ServeHTTP(rec, withClaims(httptest.NewRequest("GET", "/profile/usage", nil)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var u profiles.Usage
	if err := json.NewDecoder(rec.Body).Decode(&u); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if u.Remaining != 9 || u.Percent != 25 {
		t.Errorf("usage = %+v", u)
	}
}

func TestProfileCanRun(t *testing.T) {
	tests := []struct {
		used, quota int
		want        bool
	}{
		{0, 1, true},
		{29, 30, true},
		{30, 30, false},
		{0, 0, false},
	}

	for _, tt := range tests {
		p := profiles.Profile{IAUsed: tt.used, IAQuota: tt.quota}
		if got := p.CanRun(); got != tt.want {
			t.Errorf("CanRun(%d/%d) = %v, want %v", tt.used, tt.quota, got, tt.want)
		}
	}
}

func TestProfileDisplayName(t *testing.T) {
	name := "Agro SAC"
	email := "ops@agro.pe"
	blank := "  "

	tests := []struct {
		name    string
		profile profiles.Profile
		want    string
	}{
		{"full name", profiles.Profile{FullName: &name, Email: &email}, name},
		{"email fallback", profiles.Profile{FullName: &blank, Email: &email}, email},
		{"default", profiles.Profile{}, profiles.DefaultDisplayName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.profile.DisplayName(); got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUsageCapsPercent(t *testing.T) {
	u := profiles.Profile{IAUsed: 40, IAQuota: 30}.Usage()
	if u.Percent != 100 || u.Remaining != 0 {
		t.Errorf("usage = %+v", u)
	}
}

type fakeExecutor struct {
	affected int64
	err      error
	args     []any
}

func (f *fakeExecutor) ExecContext(_ context.Context, _ string, args ...any) (sql.Result, error) {
	f.args = args
	if f.err != nil {
		return nil, f.err
	}
	return driver.RowsAffected(f.affected), nil
}

func TestConsumeRun(t *testing.T) {
	user := uuid.New()

	t.Run("counts run", func(t *testing.T) {
		exec := &fakeExecutor{affected: 1}
		if err := profiles.ConsumeRun(context.Background(), exec, user); err != nil {
			t.Fatalf("consume: %v", err)
		}
		if len(exec.args) != 1 || exec.args[0] != user {
			t.Errorf("args = %v", exec.args)
		}
	})

	t.Run("quota exhausted", func(t *testing.T) {
		err := profiles.ConsumeRun(context.Background(), &fakeExecutor{affected: 0}, user)
		if !errors.Is(err, profiles.ErrQuotaExceeded) {
			t.Errorf("error = %v, want ErrQuotaExceeded", err)
		}
		if profiles.MapHTTPStatus(err) != http.StatusTooManyRequests {
			t.Errorf("status = %d, want 429", profiles.MapHTTPStatus(err))
		}
	})

	t.Run("database error", func(t *testing.T) {
		boom := errors.New("connection refused")
		err := profiles.ConsumeRun(context.Background(), &fakeExecutor{err: boom}, user)
		if !errors.Is(err, boom) {
			t.Errorf("error = %v, want %v", err, boom)
		}
	})
}
