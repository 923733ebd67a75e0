package ticket

import (
	"context"
	"testing"
	"time"

	"migrator/bot/internal/gateway/memory"
)

func TestOpenCreatesScopedChannel(t *testing.T) {
	gw := memory.New()
	m := NewManager(gw, "role-reviewers", time.Millisecond)

	id, err := m.Open(context.Background(), "100")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if !memory.IsTicketChannel(id) {
		t.Errorf("channel id = %q", id)
	}
	if _, err := gw.SendChannel(context.Background(), id, "hi"); err != nil {
		t.Errorf("new channel not usable: %v", err)
	}
}

func TestClosePostsNoticeThenDeletes(t *testing.T) {
	gw := memory.New()
	m := NewManager(gw, "", 5*time.Millisecond)

	id, err := m.Open(context.Background(), "100")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	m.Close(id, "closing soon")

	if got := gw.SentTo(id); len(got) != 1 || got[0] != "closing soon" {
		t.Fatalf("notice = %v", got)
	}
	if gw.ChannelDeleted(id) {
		t.Fatal("channel deleted before the delay")
	}

	deadline := time.Now().Add(time.Second)
	for !gw.ChannelDeleted(id) {
		if time.Now().After(deadline) {
			t.Fatal("channel never deleted")
		}
		time.Sleep(2 * time.Millisecond)
	}
}

func TestCloseOnMissingChannelIsSilent(t *testing.T) {
	gw := memory.New()
	m := NewManager(gw, "", time.Millisecond)

	// Never created; must not panic and must not schedule anything visible.
	m.Close("ticket-gone", "closing soon")

	if len(gw.Sent()) != 0 {
		t.Errorf("sent = %v", gw.Sent())
	}
}
