package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

// testBackend exercises the Backend contract shared by every driver.
func testBackend(t *testing.T, b Backend) {
	ctx := context.Background()

	t.Run("missing key", func(t *testing.T) {
		if _, err := b.Get(ctx, "nope"); !errors.Is(err, ErrNotFound) {
			t.Errorf("err = %v, want ErrNotFound", err)
		}
	})

	t.Run("set then get", func(t *testing.T) {
		if err := b.Set(ctx, "k", "v1", 0); err != nil {
			t.Fatal(err)
		}
		if err := b.Set(ctx, "k", "v2", 0); err != nil {
			t.Fatal(err)
		}
		got, err := b.Get(ctx, "k")
		if err != nil || got != "v2" {
			t.Errorf("Get = %q, %v; want v2", got, err)
		}
	})

	t.Run("consume blocks past limit", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			left, err := b.Consume(ctx, "rl", 3, time.Minute)
			if err != nil {
				t.Fatal(err)
			}
			if left != 0 {
				t.Fatalf("hit %d blocked for %v", i+1, left)
			}
		}
		left, err := b.Consume(ctx, "rl", 3, time.Minute)
		if err != nil {
			t.Fatal(err)
		}
		if left <= 0 || left > time.Minute {
			t.Errorf("4th hit blocked for %v, want (0, 1m]", left)
		}
	})
}

func TestMemoryBackend(t *testing.T) {
	testBackend(t, NewMemory())
}

func TestMemoryExpiry(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	m := NewMemory()
	m.now = func() time.Time { return now }

	_ = m.Set(ctx, "short", "x", time.Second)
	if _, err := m.Get(ctx, "short"); err != nil {
		t.Fatalf("Get before expiry: %v", err)
	}
	now = now.Add(2 * time.Second)
	if _, err := m.Get(ctx, "short"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after expiry: err = %v", err)
	}

	_, _ = m.Consume(ctx, "rl", 1, time.Minute)
	if left, _ := m.Consume(ctx, "rl", 1, time.Minute); left != time.Minute {
		t.Errorf("blocked for %v, want 1m", left)
	}
	now = now.Add(time.Minute)
	if left, _ := m.Consume(ctx, "rl", 1, time.Minute); left != 0 {
		t.Errorf("new window still blocked for %v", left)
	}
}

func TestSQLiteBackend(t *testing.T) {
	b, err := NewSQLite(filepath.Join(t.TempDir(), "data", "test.db"))
	if err != nil {
		t.Fatalf("NewSQLite: %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })
	testBackend(t, b)
}

func TestSQLiteMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	b, err := NewSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	_ = b.Set(context.Background(), "k", "v", 0)
	_ = b.Close()

	b, err = NewSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer b.Close()
	if got, err := b.Get(context.Background(), "k"); err != nil || got != "v" {
		t.Errorf("Get after reopen = %q, %v", got, err)
	}
}

func TestSQLiteExpiry(t *testing.T) {
	ctx := context.Background()
	b, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer b.Close()
	now := time.Unix(1_700_000_000, 0)
	b.now = func() time.Time { return now }

	_ = b.Set(ctx, "short", "x", time.Second)
	now = now.Add(time.Second)
	if _, err := b.Get(ctx, "short"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestRedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	b, err := NewRedis(context.Background(), "redis://"+mr.Addr())
	if err != nil {
		t.Fatalf("NewRedis: %v", err)
	}
	t.Cleanup(func() { _ = b.Close() })
	testBackend(t, b)

	mr.FastForward(time.Minute)
	if left, err := b.Consume(context.Background(), "rl", 3, time.Minute); err != nil || left != 0 {
		t.Errorf("after window: left = %v, err = %v", left, err)
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open(context.Background(), Options{Driver: "etcd"}); err == nil {
		t.Error("expected error for unknown driver")
	}
}
