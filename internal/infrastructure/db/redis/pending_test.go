package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func newTestStore(t *testing.T) (*PendingLoginStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewPendingLoginStore(client), mr
}

func TestPendingLoginStore_PutAndExists(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	ok, err := store.Exists(ctx, "u1")
	if err != nil {
		t.Fatalf("Exists returned error: %v", err)
	}
	if ok {
		t.Fatalf("marker should not exist before Put")
	}

	if err := store.Put(ctx, "u1"); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	ok, err = store.Exists(ctx, "u1")
	if err != nil {
		t.Fatalf("Exists returned error: %v", err)
	}
	if !ok {
		t.Fatalf("marker should exist after Put")
	}

	// Markers are per user.
	ok, err = store.Exists(ctx, "u2")
	if err != nil {
		t.Fatalf("Exists returned error: %v", err)
	}
	if ok {
		t.Fatalf("marker must be scoped to one user")
	}
}

func TestPendingLoginStore_Delete(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "u1"); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}
	if err := store.Delete(ctx, "u1"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}

	ok, err := store.Exists(ctx, "u1")
	if err != nil {
		t.Fatalf("Exists returned error: %v", err)
	}
	if ok {
		t.Fatalf("marker should be gone after Delete")
	}

	// Deleting an absent marker is not an error.
	if err := store.Delete(ctx, "u1"); err != nil {
		t.Fatalf("Delete of absent marker returned error: %v", err)
	}
}

func TestPendingLoginStore_ExpiresOnAbandonment(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	if err := store.Put(ctx, "u1"); err != nil {
		t.Fatalf("Put returned error: %v", err)
	}

	if ttl := mr.TTL("pending2fa:u1"); ttl != pendingTTL {
		t.Fatalf("expected TTL %v, got %v", pendingTTL, ttl)
	}

	mr.FastForward(pendingTTL + time.Second)

	ok, err := store.Exists(ctx, "u1")
	if err != nil {
		t.Fatalf("Exists returned error: %v", err)
	}
	if ok {
		t.Fatalf("abandoned marker should have expired")
	}
}
