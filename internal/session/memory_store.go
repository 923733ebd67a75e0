// Package session provides storage backends for in-flight intake sessions.
package session

import (
	"context"
	"sync"

	"migrator/bot/internal/intake"
)

// MemoryStore is the default session backend. Sessions are transient by
// design; losing them on restart only means the player starts intake over.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]intake.Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]intake.Session)}
}

func (s *MemoryStore) Get(ctx context.Context, userID string) (intake.Session, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	return sess, ok, nil
}

func (s *MemoryStore) Put(ctx context.Context, sess intake.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.UserID] = sess
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}

func (s *MemoryStore) DeleteByChannel(ctx context.Context, channelID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var purged []string
	for userID, sess := range s.sessions {
		if sess.ChannelID == channelID {
			delete(s.sessions, userID)
			purged = append(purged, userID)
		}
	}
	return purged, nil
}
