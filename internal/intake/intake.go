// Package intake runs the guided question flow that turns a player's messages
// into a migration request. One session per user, strictly forward steps,
// destroyed on completion, cancellation, or origin-channel loss.
package intake

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"migrator/bot/internal/gateway"
	"migrator/bot/internal/request"
)

// Session is the transient per-user intake state.
type Session struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Step      Step   `json:"step"`
	Language  string `json:"language"`
	ChannelID string `json:"channel_id"`
	OriginDM  bool   `json:"origin_dm"`

	Nickname   string `json:"nickname,omitempty"`
	IngameID   string `json:"ingame_id,omitempty"`
	Kingdom    string `json:"kingdom,omitempty"`
	Power      int64  `json:"power,omitempty"`
	KP         int64  `json:"kp,omitempty"`
	Deaths     int64  `json:"deaths,omitempty"`
	ProfileURL string `json:"profile_url,omitempty"`
	DeathsURL  string `json:"deaths_url,omitempty"`
}

// Submission is the completed request payload handed to the coordinator.
type Submission struct {
	UserID      string
	Username    string
	ChannelID   string
	OriginDM    bool
	Language    string
	Nickname    string
	IngameID    string
	Kingdom     string
	Power       int64
	KP          int64
	Deaths      int64
	TotalPoints int64
	ProfileURL  string
	DeathsURL   string
	SubmittedAt time.Time
}

// Summary renders the reviewer-facing block for the approval message.
func (s Submission) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "📝 Migration request from @%s (%s)\n", s.Username, s.UserID)
	fmt.Fprintf(&b, "🌐 Language: %s\n", s.Language)
	fmt.Fprintf(&b, "📛 Nickname: %s\n", s.Nickname)
	fmt.Fprintf(&b, "🆔 ID: %s\n", s.IngameID)
	fmt.Fprintf(&b, "🏰 Kingdom: %s\n", s.Kingdom)
	fmt.Fprintf(&b, "⚡ Power: %d\n", s.Power)
	fmt.Fprintf(&b, "🎯 Kill Points: %d\n", s.KP)
	fmt.Fprintf(&b, "💀 Deaths: %d\n", s.Deaths)
	fmt.Fprintf(&b, "🏅 Total Points: %d\n", s.TotalPoints)
	fmt.Fprintf(&b, "📸 %s", s.ProfileURL)
	if s.DeathsURL != "" {
		fmt.Fprintf(&b, "\n🪦 %s", s.DeathsURL)
	}
	return b.String()
}

// SessionStore holds in-flight sessions. The default backend is in-memory;
// a Redis backend lets sessions survive a restart.
type SessionStore interface {
	Get(ctx context.Context, userID string) (Session, bool, error)
	Put(ctx context.Context, s Session) error
	Delete(ctx context.Context, userID string) error
	// DeleteByChannel purges every session originating in the channel and
	// returns the affected user ids.
	DeleteByChannel(ctx context.Context, channelID string) ([]string, error)
}

// Coordinator receives completed submissions and knows which users already
// have a pending request.
type Coordinator interface {
	Submit(ctx context.Context, sub Submission) error
	HasPending(userID string) bool
}

// TicketOpener creates the scoped workspace channel for channel-origin flows.
type TicketOpener interface {
	Open(ctx context.Context, ownerUserID string) (string, error)
}

type Manager struct {
	gw                gateway.Client
	sessions          SessionStore
	coord             Coordinator
	tickets           TicketOpener // nil disables workspace channels
	requireSecondShot bool
}

func NewManager(gw gateway.Client, sessions SessionStore, coord Coordinator, tickets TicketOpener, requireSecondShot bool) *Manager {
	return &Manager{
		gw:                gw,
		sessions:          sessions,
		coord:             coord,
		tickets:           tickets,
		requireSecondShot: requireSecondShot,
	}
}

// HandleMessage advances (or starts) the author's intake session.
func (m *Manager) HandleMessage(ctx context.Context, msg gateway.Message) {
	sess, ok, err := m.sessions.Get(ctx, msg.AuthorID)
	if err != nil {
		log.Printf("intake: session lookup for %s: %v", msg.AuthorID, err)
		return
	}
	if !ok {
		m.start(ctx, msg)
		return
	}
	// A session is bound to its origin channel; chatter elsewhere is not
	// part of the flow.
	if msg.ChannelID != sess.ChannelID {
		return
	}
	m.advance(ctx, sess, msg)
}

func (m *Manager) start(ctx context.Context, msg gateway.Message) {
	lang := DetectLanguage(msg.Content)
	if m.coord.HasPending(msg.AuthorID) {
		m.send(ctx, msg.ChannelID, textFor(lang, "already_pending"))
		return
	}

	channelID := msg.ChannelID
	originDM := msg.DM
	if !msg.DM && m.tickets != nil {
		ticketID, err := m.tickets.Open(ctx, msg.AuthorID)
		if err != nil {
			log.Printf("intake: open ticket for %s: %v", msg.AuthorID, err)
		} else {
			m.send(ctx, msg.ChannelID, textFor(lang, "ticket_created"))
			channelID = ticketID
			originDM = false
		}
	}

	sess := Session{
		UserID:    msg.AuthorID,
		Username:  msg.AuthorName,
		Step:      StepNickname,
		Language:  lang,
		ChannelID: channelID,
		OriginDM:  originDM,
	}
	if err := m.sessions.Put(ctx, sess); err != nil {
		log.Printf("intake: save session for %s: %v", msg.AuthorID, err)
		return
	}
	m.send(ctx, channelID, promptFor(lang, StepNickname))
}

func (m *Manager) advance(ctx context.Context, sess Session, msg gateway.Message) {
	content := strings.TrimSpace(msg.Content)

	switch sess.Step {
	case StepNickname:
		sess.Nickname = content
		m.next(ctx, sess, StepIngameID)
	case StepIngameID:
		sess.IngameID = content
		m.next(ctx, sess, StepKingdom)
	case StepKingdom:
		sess.Kingdom = content
		m.next(ctx, sess, StepPower)
	case StepPower:
		sess.Power = ParseMagnitude(content)
		m.next(ctx, sess, StepKP)
	case StepKP:
		sess.KP = ParseMagnitude(content)
		m.next(ctx, sess, StepDeaths)
	case StepDeaths:
		sess.Deaths = ParseMagnitude(content)
		m.next(ctx, sess, StepScreenshot)
	case StepScreenshot:
		url, ok := firstImage(msg)
		if !ok {
			m.send(ctx, sess.ChannelID, textFor(sess.Language, "missing_image"))
			return
		}
		sess.ProfileURL = url
		if m.requireSecondShot {
			m.next(ctx, sess, StepSecondScreenshot)
			return
		}
		m.complete(ctx, sess)
	case StepSecondScreenshot:
		url, ok := firstImage(msg)
		if !ok {
			m.send(ctx, sess.ChannelID, textFor(sess.Language, "missing_image"))
			return
		}
		sess.DeathsURL = url
		m.complete(ctx, sess)
	default:
		log.Printf("intake: session for %s in unknown step %q, dropping", sess.UserID, sess.Step)
		_ = m.sessions.Delete(ctx, sess.UserID)
	}
}

func (m *Manager) next(ctx context.Context, sess Session, step Step) {
	sess.Step = step
	if err := m.sessions.Put(ctx, sess); err != nil {
		log.Printf("intake: save session for %s: %v", sess.UserID, err)
		return
	}
	m.send(ctx, sess.ChannelID, promptFor(sess.Language, step))
}

func (m *Manager) complete(ctx context.Context, sess Session) {
	if err := m.sessions.Delete(ctx, sess.UserID); err != nil {
		log.Printf("intake: delete session for %s: %v", sess.UserID, err)
	}

	sub := Submission{
		UserID:      sess.UserID,
		Username:    sess.Username,
		ChannelID:   sess.ChannelID,
		OriginDM:    sess.OriginDM,
		Language:    sess.Language,
		Nickname:    sess.Nickname,
		IngameID:    sess.IngameID,
		Kingdom:     sess.Kingdom,
		Power:       sess.Power,
		KP:          sess.KP,
		Deaths:      sess.Deaths,
		TotalPoints: Points(sess.Power, sess.KP, sess.Deaths),
		ProfileURL:  sess.ProfileURL,
		DeathsURL:   sess.DeathsURL,
		SubmittedAt: time.Now().UTC(),
	}

	m.send(ctx, sess.ChannelID, textFor(sess.Language, "confirm"))

	if err := m.coord.Submit(ctx, sub); err != nil {
		if errors.Is(err, request.ErrExists) {
			m.send(ctx, sess.ChannelID, textFor(sess.Language, "already_pending"))
			return
		}
		log.Printf("intake: submit request for %s: %v", sess.UserID, err)
		m.send(ctx, sess.ChannelID, textFor(sess.Language, "submit_failed"))
	}
}

// Cancel destroys the user's session, if any. Sessions never created a
// PendingRequest, so there is nothing else to undo.
func (m *Manager) Cancel(ctx context.Context, userID string) bool {
	sess, ok, err := m.sessions.Get(ctx, userID)
	if err != nil || !ok {
		return false
	}
	if err := m.sessions.Delete(ctx, userID); err != nil {
		log.Printf("intake: delete session for %s: %v", userID, err)
	}
	m.send(ctx, sess.ChannelID, textFor(sess.Language, "cancelled"))
	return true
}

// PurgeChannel drops every session tied to a deleted channel.
func (m *Manager) PurgeChannel(ctx context.Context, channelID string) {
	users, err := m.sessions.DeleteByChannel(ctx, channelID)
	if err != nil {
		log.Printf("intake: purge channel %s: %v", channelID, err)
		return
	}
	for _, userID := range users {
		log.Printf("intake: cancelled flow for %s, channel %s deleted", userID, channelID)
	}
}

func (m *Manager) send(ctx context.Context, channelID, content string) {
	if _, err := m.gw.SendChannel(ctx, channelID, content); err != nil {
		log.Printf("intake: send to %s: %v", channelID, err)
	}
}

func firstImage(msg gateway.Message) (string, bool) {
	for _, a := range msg.Attachments {
		if strings.HasPrefix(a.ContentType, "image/") {
			return a.URL, true
		}
	}
	return "", false
}
