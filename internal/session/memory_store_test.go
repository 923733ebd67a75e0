package session

import (
	"context"
	"testing"

	"migrator/bot/internal/intake"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if _, ok, err := s.Get(ctx, "100"); ok || err != nil {
		t.Fatalf("empty store: ok=%v err=%v", ok, err)
	}

	sess := intake.Session{UserID: "100", Step: intake.StepPower, Language: "es", ChannelID: "dm:100", OriginDM: true}
	if err := s.Put(ctx, sess); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, ok, err := s.Get(ctx, "100")
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if got.Step != intake.StepPower || got.Language != "es" {
		t.Errorf("got = %+v", got)
	}

	if err := s.Delete(ctx, "100"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok, _ := s.Get(ctx, "100"); ok {
		t.Error("session survived delete")
	}
}

func TestMemoryStoreDeleteByChannel(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_ = s.Put(ctx, intake.Session{UserID: "100", ChannelID: "ticket-100"})
	_ = s.Put(ctx, intake.Session{UserID: "200", ChannelID: "ticket-200"})

	purged, err := s.DeleteByChannel(ctx, "ticket-100")
	if err != nil {
		t.Fatalf("DeleteByChannel: %v", err)
	}
	if len(purged) != 1 || purged[0] != "100" {
		t.Errorf("purged = %v", purged)
	}
	if _, ok, _ := s.Get(ctx, "200"); !ok {
		t.Error("unrelated session purged")
	}
}
