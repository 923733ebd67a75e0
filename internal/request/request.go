// Package request owns the durable store of pending migration requests.
// The invariant it enforces: at most one pending request per user, and
// removal is atomic so a decision can never be processed twice.
package request

import (
	"context"
	"errors"
	"time"
)

type Status string

const (
	// StatusPending: submitted, awaiting a reviewer decision.
	StatusPending Status = "pending"
	// StatusApproved: reviewer approved, awaiting the user's confirmation
	// reaction. The record stays in the store until that arrives.
	StatusApproved Status = "approved"
)

// ErrExists is returned when a user who already has a pending request
// submits another one.
var ErrExists = errors.New("request: user already has a pending request")

// Pending is the durable record of an unresolved migration request.
type Pending struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
	// ChannelID is where the request originated: a DM channel or a ticket
	// workspace channel.
	ChannelID string `json:"channel_id"`
	OriginDM  bool   `json:"origin_dm"`
	Language  string `json:"language"`
	Summary   string `json:"summary"`
	Status    Status `json:"status"`
	// ConfirmMessageID is the confirmation prompt the owner's reaction is
	// matched against; set when a reviewer approves.
	ConfirmMessageID  string    `json:"confirm_message_id,omitempty"`
	ConfirmChannelID  string    `json:"confirm_channel_id,omitempty"`
	ApprovalChannelID string    `json:"approval_channel_id"`
	ApprovalMessageID string    `json:"approval_message_id"`
	SubmittedAt       time.Time `json:"submitted_at"`
}

// Store is the sole owner of Pending records. Take operations remove the
// record and persist in one step; that removal is the linearization point
// for terminal decisions, so duplicate or racing decision events observe an
// absent record and no-op.
type Store interface {
	// Create adds a record, rejecting a duplicate user with ErrExists.
	Create(ctx context.Context, rec Pending) error
	// Put overwrites an existing record (non-terminal mutation).
	Put(ctx context.Context, rec Pending) error
	Get(ctx context.Context, userID string) (Pending, bool)
	// GetByApproval finds the record whose reviewer notification is msgID.
	GetByApproval(ctx context.Context, msgID string) (Pending, bool)
	// GetByConfirmation finds the record whose confirmation prompt is msgID.
	GetByConfirmation(ctx context.Context, msgID string) (Pending, bool)
	// Take atomically removes and persists. ok is false if absent.
	Take(ctx context.Context, userID string) (Pending, bool, error)
	// DeleteByChannel purges records originating in a deleted channel.
	DeleteByChannel(ctx context.Context, channelID string) ([]Pending, error)
	All(ctx context.Context) []Pending
}
