// Package approval reconciles decisions arriving over three surfaces —
// reviewer commands, reviewer reactions on the approval message, and the
// owner's reaction on the confirmation prompt — against the pending-request
// store. Removal from the store is the linearization point: whichever event
// takes the record wins, every later event sees nothing and no-ops.
package approval

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"migrator/bot/internal/gateway"
	"migrator/bot/internal/intake"
	"migrator/bot/internal/notify"
	"migrator/bot/internal/report"
	"migrator/bot/internal/request"
	"migrator/bot/internal/roster"
)

// Reporter posts terminal decisions to the external sink.
type Reporter interface {
	Report(rec report.Record)
}

// TicketCloser tears down a workspace channel after a terminal outcome.
type TicketCloser interface {
	Close(channelID, notice string)
}

// Roster mirrors submissions and outcomes into the player record store.
type Roster interface {
	UpsertPlayer(ctx context.Context, p roster.Player) error
	SetMigration(ctx context.Context, playerID, status string) error
}

type Coordinator struct {
	gw                gateway.Client
	store             request.Store
	dispatcher        *notify.Dispatcher
	reporter          Reporter
	tickets           TicketCloser // nil disables workspace teardown
	roster            Roster       // nil disables roster mirroring
	reviewers         map[string]struct{}
	approvalChannelID string
}

func NewCoordinator(
	gw gateway.Client,
	store request.Store,
	dispatcher *notify.Dispatcher,
	reporter Reporter,
	tickets TicketCloser,
	players Roster,
	reviewerIDs []string,
	approvalChannelID string,
) *Coordinator {
	reviewers := make(map[string]struct{}, len(reviewerIDs))
	for _, id := range reviewerIDs {
		reviewers[id] = struct{}{}
	}
	return &Coordinator{
		gw:                gw,
		store:             store,
		dispatcher:        dispatcher,
		reporter:          reporter,
		tickets:           tickets,
		roster:            players,
		reviewers:         reviewers,
		approvalChannelID: approvalChannelID,
	}
}

func (c *Coordinator) isReviewer(userID string) bool {
	_, ok := c.reviewers[userID]
	return ok
}

// HasPending reports whether a user has an unresolved request.
func (c *Coordinator) HasPending(userID string) bool {
	_, ok := c.store.Get(context.Background(), userID)
	return ok
}

// Submit posts the reviewer notification for a completed intake and creates
// the pending record. A user with an outstanding request is rejected with
// request.ErrExists — never silently duplicated.
func (c *Coordinator) Submit(ctx context.Context, sub intake.Submission) error {
	if _, exists := c.store.Get(ctx, sub.UserID); exists {
		return request.ErrExists
	}

	summary := sub.Summary()
	content := summary + "\n\n" + usageFooter(sub.UserID) + "\n" + annotationPending
	ref, err := c.gw.SendChannel(ctx, c.approvalChannelID, content)
	if err != nil {
		return fmt.Errorf("post approval notification: %w", err)
	}
	c.seedReactions(ctx, ref)

	rec := request.Pending{
		UserID:            sub.UserID,
		Username:          sub.Username,
		ChannelID:         sub.ChannelID,
		OriginDM:          sub.OriginDM,
		Language:          sub.Language,
		Summary:           summary,
		Status:            request.StatusPending,
		ApprovalChannelID: ref.ChannelID,
		ApprovalMessageID: ref.MessageID,
		SubmittedAt:       sub.SubmittedAt,
	}
	if err := c.store.Create(ctx, rec); err != nil {
		c.annotate(ctx, rec, "⚠️ Superseded — not recorded")
		return err
	}

	if c.roster != nil {
		if err := c.roster.UpsertPlayer(ctx, playerFromSubmission(sub)); err != nil {
			log.Printf("approval: roster upsert for %s: %v", sub.UserID, err)
		}
	}
	return nil
}

// HandleCommand processes a reviewer command message. It reports whether the
// message was a command (handled or refused), so the caller can stop routing.
func (c *Coordinator) HandleCommand(ctx context.Context, msg gateway.Message) bool {
	cmd, ok := ParseCommand(msg.Content)
	if !ok {
		return false
	}
	if !c.isReviewer(msg.AuthorID) {
		c.reply(ctx, msg, "⛔ You are not authorized to use this command.")
		return true
	}
	userID, ok := ResolveUserRef(cmd.UserRef)
	if !ok {
		c.reply(ctx, msg, commandUsage)
		return true
	}

	switch cmd.Decision {
	case DecisionApprove:
		rec, ok := c.store.Get(ctx, userID)
		if !ok {
			c.reply(ctx, msg, fmt.Sprintf("⚠️ No pending migration request for <@%s>.", userID))
			return true
		}
		if rec.Status == request.StatusApproved {
			c.reply(ctx, msg, fmt.Sprintf("⏳ <@%s> is already awaiting confirmation.", userID))
			return true
		}
		if err := c.approve(ctx, rec); err != nil {
			c.reply(ctx, msg, fmt.Sprintf("⚠️ Could not reach <@%s>: %v", userID, err))
			return true
		}
		c.reply(ctx, msg, fmt.Sprintf("📬 Approval prompt sent to <@%s>.", userID))
	case DecisionDeny:
		rec, ok, err := c.store.Take(ctx, userID)
		if err != nil {
			log.Printf("approval: take %s: %v", userID, err)
			return true
		}
		if !ok {
			c.reply(ctx, msg, fmt.Sprintf("⚠️ No pending migration request for <@%s>.", userID))
			return true
		}
		c.finalize(ctx, rec, report.DecisionDenied)
		c.reply(ctx, msg, fmt.Sprintf("📬 Denial sent to <@%s>.", userID))
	case DecisionCancel:
		rec, ok, err := c.store.Take(ctx, userID)
		if err != nil {
			log.Printf("approval: take %s: %v", userID, err)
			return true
		}
		if !ok {
			c.reply(ctx, msg, fmt.Sprintf("⚠️ No pending migration request for <@%s>.", userID))
			return true
		}
		c.finalize(ctx, rec, report.DecisionCancelled)
		c.reply(ctx, msg, fmt.Sprintf("🗑️ Migration request for <@%s> has been cancelled.", userID))
	}
	return true
}

// HandleReaction routes a reaction-added event. Reactions matching nothing in
// the store are stale or unrelated and ignored, which makes the handler
// idempotent against duplicate and late events.
func (c *Coordinator) HandleReaction(ctx context.Context, ev gateway.ReactionAdded) {
	if rec, ok := c.store.GetByApproval(ctx, ev.Ref.MessageID); ok {
		// Only reviewers act on the approval message; the owner's own
		// reactions here carry no authority and are silently ignored.
		if !c.isReviewer(ev.UserID) {
			return
		}
		decision, ok := reviewerDecision(ev.Emoji)
		if !ok {
			return
		}
		switch decision {
		case DecisionApprove:
			if rec.Status == request.StatusApproved {
				return
			}
			if err := c.approve(ctx, rec); err != nil {
				log.Printf("approval: approve via reaction for %s: %v", rec.UserID, err)
			}
		case DecisionDeny:
			taken, ok, err := c.store.Take(ctx, rec.UserID)
			if err != nil {
				log.Printf("approval: take %s: %v", rec.UserID, err)
				return
			}
			if !ok {
				return
			}
			c.finalize(ctx, taken, report.DecisionDenied)
		}
		return
	}

	if rec, ok := c.store.GetByConfirmation(ctx, ev.Ref.MessageID); ok {
		// The confirmation prompt belongs to the request owner alone.
		if ev.UserID != rec.UserID || rec.Status != request.StatusApproved {
			return
		}
		decision, ok := confirmDecision(ev.Emoji)
		if !ok {
			return
		}
		taken, ok, err := c.store.Take(ctx, rec.UserID)
		if err != nil {
			log.Printf("approval: take %s: %v", rec.UserID, err)
			return
		}
		if !ok {
			return
		}
		if decision == DecisionConfirmMigrate {
			c.finalize(ctx, taken, report.DecisionMigrate)
		} else {
			c.finalize(ctx, taken, report.DecisionDoNotMigrate)
		}
	}
}

// PurgeChannel drops pending requests tied to a deleted channel so no
// orphaned state survives the workspace.
func (c *Coordinator) PurgeChannel(ctx context.Context, channelID string) {
	purged, err := c.store.DeleteByChannel(ctx, channelID)
	if err != nil {
		log.Printf("approval: purge channel %s: %v", channelID, err)
		return
	}
	for _, rec := range purged {
		log.Printf("approval: request for %s purged, channel %s deleted", rec.UserID, channelID)
		c.annotate(ctx, rec, annotationCancelled)
	}
}

// approve runs the first half of the two-step approval: deliver the
// confirmation prompt, then persist the approved status and the prompt's
// message id. The record stays in the store until the owner reacts.
func (c *Coordinator) approve(ctx context.Context, rec request.Pending) error {
	delivery := c.dispatcher.Deliver(ctx, rec.UserID, rec.ChannelID, rec.OriginDM, userText(rec.Language, "confirm_prompt"))
	if !delivery.OK {
		return errors.New("confirmation prompt undeliverable")
	}

	rec.Status = request.StatusApproved
	rec.ConfirmMessageID = delivery.Ref.MessageID
	rec.ConfirmChannelID = delivery.Ref.ChannelID
	if err := c.store.Put(ctx, rec); err != nil {
		return fmt.Errorf("persist approved status: %w", err)
	}

	c.seedReactions(ctx, delivery.Ref)
	c.annotate(ctx, rec, annotationAwaiting)
	return nil
}

// finalize performs the post-removal fan-out for a terminal decision. The
// record has already been taken from the store; nothing here can cause the
// decision to be processed twice, and no failure here is allowed to abort
// the remaining steps.
func (c *Coordinator) finalize(ctx context.Context, rec request.Pending, decision string) {
	var textKey, annotation string
	switch decision {
	case report.DecisionMigrate:
		textKey, annotation = "confirm_thanks", annotationMigrate
	case report.DecisionDoNotMigrate:
		textKey, annotation = "confirm_decline", annotationNoMigrate
	case report.DecisionDenied:
		textKey, annotation = "denied", annotationDenied
	case report.DecisionCancelled:
		textKey, annotation = "cancelled", annotationCancelled
	}

	c.dispatcher.Deliver(ctx, rec.UserID, rec.ChannelID, rec.OriginDM, userText(rec.Language, textKey))
	c.annotate(ctx, rec, annotation)

	c.reporter.Report(report.Record{
		UserID:    rec.UserID,
		Decision:  decision,
		Language:  rec.Language,
		Timestamp: time.Now().UTC(),
	})

	if c.roster != nil {
		if err := c.roster.SetMigration(ctx, rec.UserID, decision); err != nil {
			log.Printf("approval: roster status for %s: %v", rec.UserID, err)
		}
	}

	if !rec.OriginDM && c.tickets != nil {
		c.tickets.Close(rec.ChannelID, userText(rec.Language, "ticket_closing"))
	}
}

// annotate rewrites the approval message with the current status line.
// A missing message means the notification is gone; that is stale state,
// not an error.
func (c *Coordinator) annotate(ctx context.Context, rec request.Pending, line string) {
	ref := gateway.MessageRef{ChannelID: rec.ApprovalChannelID, MessageID: rec.ApprovalMessageID}
	content := rec.Summary + "\n\n" + line
	if err := c.gw.EditMessage(ctx, ref, content); err != nil && !errors.Is(err, gateway.ErrMessageMissing) {
		log.Printf("approval: annotate %s: %v", rec.ApprovalMessageID, err)
	}
}

func (c *Coordinator) seedReactions(ctx context.Context, ref gateway.MessageRef) {
	for _, emoji := range []string{emojiYes, emojiNo} {
		if err := c.gw.AddReaction(ctx, ref, emoji); err != nil {
			log.Printf("approval: seed reaction on %s: %v", ref.MessageID, err)
		}
	}
}

func (c *Coordinator) reply(ctx context.Context, msg gateway.Message, content string) {
	if _, err := c.gw.SendChannel(ctx, msg.ChannelID, content); err != nil {
		log.Printf("approval: reply in %s: %v", msg.ChannelID, err)
	}
}

func playerFromSubmission(sub intake.Submission) roster.Player {
	return roster.Player{
		ID:          sub.UserID,
		DiscordName: sub.Username,
		Nickname:    sub.Nickname,
		IngameID:    sub.IngameID,
		Kingdom:     sub.Kingdom,
		Power:       sub.Power,
		KP:          sub.KP,
		Deaths:      sub.Deaths,
		TotalPoints: sub.TotalPoints,
		CanMigrate:  "pending",
	}
}
