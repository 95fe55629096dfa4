package revoke

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestStore_RevokeAndExpire(t *testing.T) {
	s, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer s.Close()

	rdb := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() {
		if err := rdb.Close(); err != nil {
			t.Fatalf("close redis: %v", err)
		}
	})

	store := NewStore(rdb)
	ctx := context.Background()

	revoked, err := store.IsRevoked(ctx, "token-1")
	if err != nil {
		t.Fatalf("first check: %v", err)
	}
	if revoked {
		t.Fatalf("expected fresh token not to be revoked")
	}

	if err := store.Revoke(ctx, "token-1", time.Minute); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	revoked, err = store.IsRevoked(ctx, "token-1")
	if err != nil {
		t.Fatalf("second check: %v", err)
	}
	if !revoked {
		t.Fatalf("expected token to be revoked")
	}

	s.FastForward(2 * time.Minute)
	revoked, err = store.IsRevoked(ctx, "token-1")
	if err != nil {
		t.Fatalf("third check: %v", err)
	}
	if revoked {
		t.Fatalf("expected revocation to expire with the token")
	}
}

func TestStore_NilClientIsNoop(t *testing.T) {
	store := NewStore(nil)
	if err := store.Revoke(context.Background(), "x", time.Minute); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	revoked, err := store.IsRevoked(context.Background(), "x")
	if err != nil || revoked {
		t.Fatalf("expected no-op, got revoked=%v err=%v", revoked, err)
	}
}
