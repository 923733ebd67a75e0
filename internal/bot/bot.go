// Package bot runs the single-threaded event loop. Every inbound event is
// handled to completion before the next one; handlers schedule their own
// fire-and-forget I/O, the loop never waits on it.
package bot

import (
	"context"
	"log"
	"strings"

	"migrator/bot/internal/approval"
	"migrator/bot/internal/gateway"
	"migrator/bot/internal/intake"
)

type Bot struct {
	gw     gateway.Client
	intake *intake.Manager
	coord  *approval.Coordinator
}

func New(gw gateway.Client, intakeMgr *intake.Manager, coord *approval.Coordinator) *Bot {
	return &Bot{gw: gw, intake: intakeMgr, coord: coord}
}

// Run consumes gateway events until the context is cancelled or the event
// feed closes.
func (b *Bot) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-b.gw.Events():
			if !ok {
				return nil
			}
			b.handle(ctx, ev)
		}
	}
}

func (b *Bot) handle(ctx context.Context, ev gateway.Event) {
	switch ev := ev.(type) {
	case gateway.MessageCreated:
		b.handleMessage(ctx, ev.Message)
	case gateway.ReactionAdded:
		b.coord.HandleReaction(ctx, ev)
	case gateway.ChannelDeleted:
		b.intake.PurgeChannel(ctx, ev.ChannelID)
		b.coord.PurgeChannel(ctx, ev.ChannelID)
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg gateway.Message) {
	if msg.AuthorBot {
		return
	}

	content := strings.TrimSpace(msg.Content)

	// Bare !cancel aborts the author's own intake; with a target it is a
	// reviewer command and falls through to the coordinator.
	if content == "!cancel" {
		if !b.intake.Cancel(ctx, msg.AuthorID) {
			log.Printf("bot: !cancel from %s with no active session", msg.AuthorID)
		}
		return
	}

	if content == "!status" {
		if _, err := b.gw.SendChannel(ctx, msg.ChannelID, "🟢 Migration officer online."); err != nil {
			log.Printf("bot: status reply: %v", err)
		}
		return
	}

	if b.coord.HandleCommand(ctx, msg) {
		return
	}

	b.intake.HandleMessage(ctx, msg)
}
