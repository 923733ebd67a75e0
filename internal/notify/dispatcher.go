// Package notify delivers outcome messages to players with a fixed fallback
// order. Delivery failures never escape this package; the worst case is a
// logged line and an empty Delivery.
package notify

import (
	"context"
	"log"

	"migrator/bot/internal/gateway"
)

const fallbackMarker = "📬 "

// Delivery reports where a message ended up.
type Delivery struct {
	Ref    gateway.MessageRef
	Direct bool
	OK     bool
}

type Dispatcher struct {
	gw gateway.Client
}

func NewDispatcher(gw gateway.Client) *Dispatcher {
	return &Dispatcher{gw: gw}
}

// Deliver sends text to a user. Channel-origin flows are DMed first and fall
// back to the origin channel with a visible marker; DM-origin flows post
// straight back to the same direct channel.
func (d *Dispatcher) Deliver(ctx context.Context, userID, originChannelID string, originDM bool, text string) Delivery {
	if originDM {
		ref, err := d.gw.SendChannel(ctx, originChannelID, text)
		if err != nil {
			log.Printf("notify: dm channel %s for %s: %v", originChannelID, userID, err)
			return Delivery{}
		}
		return Delivery{Ref: ref, Direct: true, OK: true}
	}

	ref, err := d.gw.SendDirect(ctx, userID, text)
	if err == nil {
		return Delivery{Ref: ref, Direct: true, OK: true}
	}
	log.Printf("notify: dm to %s failed, falling back to channel %s: %v", userID, originChannelID, err)

	ref, err = d.gw.SendChannel(ctx, originChannelID, fallbackMarker+text)
	if err != nil {
		log.Printf("notify: channel fallback %s for %s: %v", originChannelID, userID, err)
		return Delivery{}
	}
	return Delivery{Ref: ref, OK: true}
}
