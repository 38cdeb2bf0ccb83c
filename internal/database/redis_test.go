package database_test

import (
	"context"
	"testing"
	"time"

	"git.sr.ht/~jakintosh/inkwell/internal/database"
	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
)

func setupRedisStore(t *testing.T) (*database.RedisRotationStore, *miniredis.Miniredis) {
	t.Helper()
	mini, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mini.Close)

	client := goredis.NewClient(&goredis.Options{Addr: mini.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return database.NewRedisRotationStore(client), mini
}

func TestRedisRotation(t *testing.T) {
	t.Parallel()
	store, _ := setupRedisStore(t)
	rotationContract(t, store)
}

func TestRedisRotation_KeyExpires(t *testing.T) {
	t.Parallel()
	store, mini := setupRedisStore(t)
	ctx := context.Background()

	if err := store.RecordRefresh(ctx, "42", "a", time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("RecordRefresh failed: %v", err)
	}

	// key carries the refresh lifetime
	ttl := mini.TTL("inkwell:refresh:42")
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("TTL = %v, want within 1m", ttl)
	}

	// after expiry the chain is gone
	mini.FastForward(2 * time.Minute)
	ok, err := store.RotateRefresh(ctx, "42", "a", "b", time.Now().Add(time.Minute))
	if err != nil {
		t.Fatalf("RotateRefresh failed: %v", err)
	}
	if ok {
		t.Error("expired chain should not rotate")
	}
}

func TestRedisRotation_RotateRefreshesTTL(t *testing.T) {
	t.Parallel()
	store, mini := setupRedisStore(t)
	ctx := context.Background()

	if err := store.RecordRefresh(ctx, "42", "a", time.Now().Add(time.Minute)); err != nil {
		t.Fatalf("RecordRefresh failed: %v", err)
	}
	ok, err := store.RotateRefresh(ctx, "42", "a", "b", time.Now().Add(time.Hour))
	if err != nil || !ok {
		t.Fatalf("RotateRefresh failed: ok=%v err=%v", ok, err)
	}

	if got, _ := mini.Get("inkwell:refresh:42"); got != "b" {
		t.Errorf("stored id = %s, want b", got)
	}
	if ttl := mini.TTL("inkwell:refresh:42"); ttl <= time.Minute {
		t.Errorf("TTL = %v, want extended to about 1h", ttl)
	}
}
