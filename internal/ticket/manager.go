// Package ticket manages the per-user workspace channels requests run in.
package ticket

import (
	"context"
	"errors"
	"log"
	"time"

	"migrator/bot/internal/gateway"
)

type Manager struct {
	gw             gateway.Client
	reviewerRoleID string
	closeDelay     time.Duration
}

func NewManager(gw gateway.Client, reviewerRoleID string, closeDelay time.Duration) *Manager {
	return &Manager{gw: gw, reviewerRoleID: reviewerRoleID, closeDelay: closeDelay}
}

// Open creates a channel scoped to the owner and the reviewer role.
func (m *Manager) Open(ctx context.Context, ownerUserID string) (string, error) {
	return m.gw.CreateScopedChannel(ctx, ownerUserID, m.reviewerRoleID)
}

// Close posts a closing notice and deletes the channel after a short delay,
// so the notice renders before the channel disappears. A channel already
// deleted by someone else is not an error.
func (m *Manager) Close(channelID, notice string) {
	ctx := context.Background()
	if _, err := m.gw.SendChannel(ctx, channelID, notice); err != nil {
		if errors.Is(err, gateway.ErrChannelMissing) {
			return
		}
		log.Printf("ticket: closing notice for %s: %v", channelID, err)
	}
	time.AfterFunc(m.closeDelay, func() {
		if err := m.gw.DeleteChannel(context.Background(), channelID); err != nil &&
			!errors.Is(err, gateway.ErrChannelMissing) {
			log.Printf("ticket: delete channel %s: %v", channelID, err)
		}
	})
}
