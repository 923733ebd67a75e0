package request

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// FileStore keeps all pending requests in one JSON file. Every mutation
// rewrites the whole file before returning — volume is tiny and a decision
// must be durable before it is acknowledged to the reviewer.
type FileStore struct {
	mu      sync.Mutex
	path    string
	records map[string]Pending
}

// OpenFileStore loads the full store into memory. A missing file is an
// empty store.
func OpenFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path, records: make(map[string]Pending)}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read requests file: %w", err)
	}
	if len(raw) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(raw, &s.records); err != nil {
		return nil, fmt.Errorf("parse requests file: %w", err)
	}
	return s, nil
}

func (s *FileStore) Create(ctx context.Context, rec Pending) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.records[rec.UserID]; exists {
		return ErrExists
	}
	s.records[rec.UserID] = rec
	return s.persistLocked()
}

func (s *FileStore) Put(ctx context.Context, rec Pending) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[rec.UserID] = rec
	return s.persistLocked()
}

func (s *FileStore) Get(ctx context.Context, userID string) (Pending, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[userID]
	return rec, ok
}

func (s *FileStore) GetByApproval(ctx context.Context, msgID string) (Pending, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.records {
		if rec.ApprovalMessageID == msgID {
			return rec, true
		}
	}
	return Pending{}, false
}

func (s *FileStore) GetByConfirmation(ctx context.Context, msgID string) (Pending, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.records {
		if rec.ConfirmMessageID != "" && rec.ConfirmMessageID == msgID {
			return rec, true
		}
	}
	return Pending{}, false
}

func (s *FileStore) Take(ctx context.Context, userID string) (Pending, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[userID]
	if !ok {
		return Pending{}, false, nil
	}
	delete(s.records, userID)
	if err := s.persistLocked(); err != nil {
		// Undo so a failed write does not lose the record in memory.
		s.records[userID] = rec
		return Pending{}, false, err
	}
	return rec, true, nil
}

func (s *FileStore) DeleteByChannel(ctx context.Context, channelID string) ([]Pending, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var purged []Pending
	for userID, rec := range s.records {
		if rec.ChannelID == channelID {
			delete(s.records, userID)
			purged = append(purged, rec)
		}
	}
	if len(purged) == 0 {
		return nil, nil
	}
	return purged, s.persistLocked()
}

func (s *FileStore) All(ctx context.Context) []Pending {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Pending, 0, len(s.records))
	for _, rec := range s.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.Before(out[j].SubmittedAt) })
	return out
}

// persistLocked writes the whole store to a temp file and renames it into
// place, so a crash mid-write leaves the previous snapshot intact.
func (s *FileStore) persistLocked() error {
	raw, err := json.MarshalIndent(s.records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal requests: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("write requests file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace requests file: %w", err)
	}
	return nil
}
