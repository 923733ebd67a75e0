package export

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"migrator/bot/internal/roster"
)

// RosterSource is the subset of the roster store the exporter reads.
type RosterSource interface {
	ListPlayers(ctx context.Context) ([]roster.Player, error)
	Stats(ctx context.Context) (roster.Stats, error)
}

// Service renders roster exports.
type Service struct {
	store RosterSource
}

func NewService(store RosterSource) *Service {
	return &Service{store: store}
}

type rosterView struct {
	GeneratedAt  string
	Players      []roster.Player
	Total        int
	AveragePower float64
	AverageKP    float64
}

// RosterPDF renders the full roster to a PDF document.
func (s *Service) RosterPDF(ctx context.Context) (*Result, error) {
	players, err := s.store.ListPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContentUnavailable, err)
	}
	stats, err := s.store.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContentUnavailable, err)
	}

	view := rosterView{
		GeneratedAt:  time.Now().UTC().Format("2006-01-02 15:04 UTC"),
		Players:      players,
		Total:        stats.TotalPlayers,
		AveragePower: stats.AveragePower,
		AverageKP:    stats.AverageKP,
	}

	var buf bytes.Buffer
	if err := rosterTemplate.Execute(&buf, view); err != nil {
		return nil, fmt.Errorf("render roster template: %w", err)
	}

	return exportPDF(buf.String(), "migration roster")
}
