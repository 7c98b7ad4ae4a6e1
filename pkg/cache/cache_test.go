package cache_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/JaimeStill/agrocheck/pkg/cache"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newRedis(t *testing.T) (cache.System, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)

	cfg := &cache.Config{Address: s.Addr()}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	return cache.New(cfg, discard()), s
}

func TestRedisGetSet(t *testing.T) {
	c, s := newRedis(t)
	ctx := context.Background()

	if _, ok, err := c.Get(ctx, "missing"); err != nil || ok {
		t.Fatalf("Get(missing) = ok %v, err %v", ok, err)
	}

	if err := c.Set(ctx, "requirements:palta:US", []byte(`[1]`)); err != nil {
		t.Fatalf("Set: %v", err)
	}

	data, ok, err := c.Get(ctx, "requirements:palta:US")
	if err != nil || !ok {
		t.Fatalf("Get = ok %v, err %v", ok, err)
	}
	if string(data) != `[1]` {
		t.Errorf("data = %s", data)
	}

	if !s.Exists("agrocheck:requirements:palta:US") {
		t.Error("key not stored under configured prefix")
	}
	if ttl := s.TTL("agrocheck:requirements:palta:US"); ttl != 10*time.Minute {
		t.Errorf("ttl = %v, want 10m", ttl)
	}

	s.FastForward(11 * time.Minute)
	if _, ok, _ := c.Get(ctx, "requirements:palta:US"); ok {
		t.Error("value survived ttl")
	}
}

func TestRedisDeletePrefix(t *testing.T) {
	c, _ := newRedis(t)
	ctx := context.Background()

	for _, k := range []string{"requirements:palta:US", "requirements:mango:NL", "profile:1"} {
		if err := c.Set(ctx, k, []byte("x")); err != nil {
			t.Fatalf("Set %s: %v", k, err)
		}
	}

	if err := c.DeletePrefix(ctx, "requirements:"); err != nil {
		t.Fatalf("DeletePrefix: %v", err)
	}

	if _, ok, _ := c.Get(ctx, "requirements:palta:US"); ok {
		t.Error("requirements:palta:US not deleted")
	}
	if _, ok, _ := c.Get(ctx, "requirements:mango:NL"); ok {
		t.Error("requirements:mango:NL not deleted")
	}
	if _, ok, _ := c.Get(ctx, "profile:1"); !ok {
		t.Error("profile:1 should survive")
	}

	if err := c.Delete(ctx, "profile:1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := c.Get(ctx, "profile:1"); ok {
		t.Error("profile:1 not deleted")
	}
}

func TestJSONHelpers(t *testing.T) {
	c, _ := newRedis(t)
	ctx := context.Background()

	type entry struct {
		DocType  string `json:"doc_type"`
		Required bool   `json:"required"`
	}
	want := []entry{{"FACTURA", true}, {"PACKING_LIST", false}}

	if err := cache.SetJSON(ctx, c, "entries", want); err != nil {
		t.Fatalf("SetJSON: %v", err)
	}

	got, ok, err := cache.GetJSON[[]entry](ctx, c, "entries")
	if err != nil || !ok {
		t.Fatalf("GetJSON = ok %v, err %v", ok, err)
	}
	if len(got) != 2 || got[1] != want[1] {
		t.Errorf("got %+v", got)
	}
}

func TestNoop(t *testing.T) {
	cfg := &cache.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	c := cache.New(cfg, discard())
	ctx := context.Background()

	if err := c.Set(ctx, "k", []byte("v")); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, ok, err := c.Get(ctx, "k"); ok || err != nil {
		t.Errorf("noop Get = ok %v, err %v", ok, err)
	}
}

func TestConfigFinalize(t *testing.T) {
	t.Setenv("TEST_CACHE_ADDR", "redis:6379")
	t.Setenv("TEST_CACHE_DB", "3")

	cfg := &cache.Config{TTL: "1m"}
	env := &cache.Env{Address: "TEST_CACHE_ADDR", DB: "TEST_CACHE_DB"}
	if err := cfg.Finalize(env); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	if cfg.Address != "redis:6379" || cfg.DB != 3 {
		t.Errorf("env not applied: %+v", cfg)
	}
	if cfg.TTLDuration() != time.Minute {
		t.Errorf("ttl = %v", cfg.TTLDuration())
	}

	bad := &cache.Config{TTL: "soon"}
	if err := bad.Finalize(nil); err == nil {
		t.Error("expected invalid ttl error")
	}
}
