package notify

import (
	"context"
	"testing"

	"migrator/bot/internal/gateway"
	"migrator/bot/internal/gateway/memory"
)

func TestDeliverDMOriginPostsToSameChannel(t *testing.T) {
	gw := memory.New()
	gw.AddUser(gateway.User{ID: "u1"})
	dm := memory.DMChannelID("u1")
	gw.AddChannel(dm)

	d := NewDispatcher(gw)
	delivery := d.Deliver(context.Background(), "u1", dm, true, "hello")

	if !delivery.OK || !delivery.Direct {
		t.Fatalf("delivery = %+v", delivery)
	}
	if got := gw.SentTo(dm); len(got) != 1 || got[0] != "hello" {
		t.Errorf("sent = %v", got)
	}
}

func TestDeliverChannelOriginPrefersDM(t *testing.T) {
	gw := memory.New()
	gw.AddUser(gateway.User{ID: "u1"})
	gw.AddChannel("ticket-u1")

	d := NewDispatcher(gw)
	delivery := d.Deliver(context.Background(), "u1", "ticket-u1", false, "hello")

	if !delivery.OK || !delivery.Direct {
		t.Fatalf("delivery = %+v", delivery)
	}
	if got := gw.SentTo("ticket-u1"); len(got) != 0 {
		t.Errorf("ticket channel got %v, want nothing", got)
	}
	if got := gw.SentTo(memory.DMChannelID("u1")); len(got) != 1 {
		t.Errorf("dm got %v", got)
	}
}

func TestDeliverFallsBackWithMarker(t *testing.T) {
	gw := memory.New()
	gw.AddUser(gateway.User{ID: "u1"})
	gw.AddChannel("ticket-u1")
	gw.CloseDMs("u1")

	d := NewDispatcher(gw)
	delivery := d.Deliver(context.Background(), "u1", "ticket-u1", false, "hello")

	if !delivery.OK || delivery.Direct {
		t.Fatalf("delivery = %+v", delivery)
	}
	got := gw.SentTo("ticket-u1")
	if len(got) != 1 || got[0] != fallbackMarker+"hello" {
		t.Errorf("sent = %v", got)
	}
}

func TestDeliverTotalFailure(t *testing.T) {
	gw := memory.New()
	gw.AddUser(gateway.User{ID: "u1"})
	gw.CloseDMs("u1")
	// Origin channel never registered, so the fallback fails too.

	d := NewDispatcher(gw)
	delivery := d.Deliver(context.Background(), "u1", "ticket-u1", false, "hello")

	if delivery.OK {
		t.Fatalf("delivery = %+v, want failure", delivery)
	}
	if len(gw.Sent()) != 0 {
		t.Errorf("sent = %v, want nothing", gw.Sent())
	}
}
