// Package gateway defines the contract the bot requires from a chat platform.
// Concrete platform bindings register themselves as drivers, in the manner of
// database/sql; the core never imports a platform SDK.
package gateway

import (
	"context"
	"errors"
)

var (
	ErrUserNotFound   = errors.New("gateway: user not found")
	ErrUnreachable    = errors.New("gateway: user unreachable")
	ErrChannelMissing = errors.New("gateway: channel missing")
	ErrMessageMissing = errors.New("gateway: message missing")
)

type User struct {
	ID       string
	Username string
	Bot      bool
}

type Attachment struct {
	URL         string
	ContentType string
	Size        int64
}

// Message is an inbound chat message. DM reports whether the channel it
// arrived on is a direct channel with the author.
type Message struct {
	ID          string
	ChannelID   string
	AuthorID    string
	AuthorName  string
	AuthorBot   bool
	Content     string
	Attachments []Attachment
	DM          bool
}

// MessageRef locates a message the bot has sent or observed.
type MessageRef struct {
	ChannelID string
	MessageID string
}

// Client is the capability set the core consumes. Every method that can fail
// reports platform-level absence through the sentinel errors above; callers
// treat those as stale correlation targets, not hard failures.
type Client interface {
	FetchUser(ctx context.Context, userID string) (User, error)
	SendDirect(ctx context.Context, userID, content string) (MessageRef, error)
	SendChannel(ctx context.Context, channelID, content string) (MessageRef, error)
	EditMessage(ctx context.Context, ref MessageRef, content string) error
	AddReaction(ctx context.Context, ref MessageRef, emoji string) error
	CreateScopedChannel(ctx context.Context, ownerUserID, reviewerRoleID string) (string, error)
	DeleteChannel(ctx context.Context, channelID string) error
	Events() <-chan Event
	Close() error
}

// Event is one of MessageCreated, ReactionAdded, ChannelDeleted.
type Event interface {
	isEvent()
}

type MessageCreated struct {
	Message Message
}

type ReactionAdded struct {
	Ref    MessageRef
	Emoji  string
	UserID string
}

type ChannelDeleted struct {
	ChannelID string
}

func (MessageCreated) isEvent() {}
func (ReactionAdded) isEvent()  {}
func (ChannelDeleted) isEvent() {}
