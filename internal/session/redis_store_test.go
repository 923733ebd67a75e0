package session

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"

	"migrator/bot/internal/intake"
)

func setupTestRedis(t *testing.T) *RedisStore {
	t.Helper()
	s := miniredis.RunT(t)
	store, err := NewRedisStore("redis://" + s.Addr())
	if err != nil {
		t.Fatalf("failed to create redis store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNewRedisStore(t *testing.T) {
	store := setupTestRedis(t)
	if err := store.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func TestNewRedisStoreBadURL(t *testing.T) {
	if _, err := NewRedisStore("not a url"); err == nil {
		t.Fatal("expected error for malformed URL")
	}
}

func TestRedisStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := setupTestRedis(t)

	if _, ok, err := store.Get(ctx, "100"); ok || err != nil {
		t.Fatalf("empty store: ok=%v err=%v", ok, err)
	}

	sess := intake.Session{
		UserID:    "100",
		Username:  "ana",
		Step:      intake.StepKP,
		Language:  "es",
		ChannelID: "dm:100",
		OriginDM:  true,
		Nickname:  "Ana",
		Power:     1_500_000_000,
	}
	if err := store.Put(ctx, sess); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := store.Get(ctx, "100")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if got.Step != intake.StepKP || got.Power != 1_500_000_000 || got.Nickname != "Ana" {
		t.Errorf("got = %+v", got)
	}

	if err := store.Delete(ctx, "100"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := store.Get(ctx, "100"); ok {
		t.Error("session survived delete")
	}
}

func TestRedisStoreDeleteByChannel(t *testing.T) {
	ctx := context.Background()
	store := setupTestRedis(t)

	_ = store.Put(ctx, intake.Session{UserID: "100", ChannelID: "ticket-100"})
	_ = store.Put(ctx, intake.Session{UserID: "200", ChannelID: "ticket-200"})
	_ = store.Put(ctx, intake.Session{UserID: "300", ChannelID: "ticket-100"})

	purged, err := store.DeleteByChannel(ctx, "ticket-100")
	if err != nil {
		t.Fatalf("DeleteByChannel: %v", err)
	}
	if len(purged) != 2 {
		t.Fatalf("purged = %v", purged)
	}
	for _, userID := range purged {
		if userID != "100" && userID != "300" {
			t.Errorf("unexpected purge of %s", userID)
		}
	}
	if _, ok, _ := store.Get(ctx, "200"); !ok {
		t.Error("unrelated session purged")
	}
}
