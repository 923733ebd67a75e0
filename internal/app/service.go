package app

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"migrator/bot/internal/export"
	"migrator/bot/internal/intake"
	"migrator/bot/internal/request"
	"migrator/bot/internal/roster"
	"migrator/bot/internal/search"
	"migrator/bot/internal/shots"
)

var allowedMigrationStatus = map[string]struct{}{
	"pending":        {},
	"migrate":        {},
	"do-not-migrate": {},
	"denied":         {},
	"cancelled":      {},
}

// RosterStore is the roster surface the dashboard needs. *roster.PostgresStore
// satisfies it; tests substitute fakes.
type RosterStore interface {
	UpsertPlayer(ctx context.Context, p roster.Player) error
	GetPlayer(ctx context.Context, id string) (roster.Player, error)
	ListPlayers(ctx context.Context) ([]roster.Player, error)
	DeletePlayer(ctx context.Context, id string) (bool, error)
	SetMigration(ctx context.Context, playerID, status string) error
	ListScreenshots(ctx context.Context, playerID string) ([]roster.Screenshot, error)
	Stats(ctx context.Context) (roster.Stats, error)
	Ping(ctx context.Context) error
}

type requestStore interface {
	All(ctx context.Context) []request.Pending
}

// Service backs the dashboard API. The roster-dependent fields may be nil
// when no database is configured; the handlers degrade to 503 for those
// routes while intake and approval keep running.
type Service struct {
	players   RosterStore
	requests  requestStore
	search    *search.Service
	uploads   *shots.Service
	exporter  *export.Service
	adminHash string
}

func NewService(players RosterStore, requests requestStore, searchSvc *search.Service, uploads *shots.Service, exporter *export.Service, adminHash string) *Service {
	return &Service{
		players:   players,
		requests:  requests,
		search:    searchSvc,
		uploads:   uploads,
		exporter:  exporter,
		adminHash: adminHash,
	}
}

// Ping reports database readiness. With no database configured there is
// nothing to check.
func (s *Service) Ping(ctx context.Context) error {
	if s.players == nil {
		return nil
	}
	return s.players.Ping(ctx)
}

func (s *Service) RosterEnabled() bool {
	return s.players != nil
}

// CheckAdminToken verifies a dashboard admin token against the configured
// bcrypt hash. An empty hash disables admin routes entirely.
func (s *Service) CheckAdminToken(token string) error {
	if strings.TrimSpace(s.adminHash) == "" {
		return domainError(http.StatusServiceUnavailable, "ADMIN_UNAVAILABLE", "Admin access not configured", nil)
	}
	if token == "" {
		return domainError(http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.adminHash), []byte(token)); err != nil {
		return domainError(http.StatusUnauthorized, "UNAUTHORIZED", "Unauthorized", nil)
	}
	return nil
}

func (s *Service) requireRoster() error {
	if s.players == nil {
		return domainError(http.StatusServiceUnavailable, "ROSTER_UNAVAILABLE", "Roster database not configured", nil)
	}
	return nil
}

func (s *Service) ListPlayers(ctx context.Context) ([]roster.Player, error) {
	if err := s.requireRoster(); err != nil {
		return nil, err
	}
	players, err := s.players.ListPlayers(ctx)
	if err != nil {
		return nil, err
	}
	if players == nil {
		players = []roster.Player{}
	}
	return players, nil
}

func (s *Service) GetPlayer(ctx context.Context, id string) (roster.Player, error) {
	if err := s.requireRoster(); err != nil {
		return roster.Player{}, err
	}
	p, err := s.players.GetPlayer(ctx, id)
	if errors.Is(err, roster.ErrNotFound) {
		return roster.Player{}, domainError(http.StatusNotFound, "NOT_FOUND", "Player not found", nil)
	}
	return p, err
}

// UpsertPlayerInput is the dashboard payload for creating or editing a
// roster entry. TotalPoints is always recomputed server-side.
type UpsertPlayerInput struct {
	ID          string `json:"id"`
	DiscordName string `json:"discordName"`
	Nickname    string `json:"nickname"`
	IngameID    string `json:"ingameId"`
	Kingdom     string `json:"kingdom"`
	Power       int64  `json:"power"`
	KP          int64  `json:"kp"`
	Deaths      int64  `json:"deaths"`
	CanMigrate  string `json:"canMigrate"`
}

func (s *Service) UpsertPlayer(ctx context.Context, in UpsertPlayerInput) (roster.Player, error) {
	if err := s.requireRoster(); err != nil {
		return roster.Player{}, err
	}
	if strings.TrimSpace(in.ID) == "" {
		return roster.Player{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "id is required", nil)
	}
	if strings.TrimSpace(in.Nickname) == "" {
		return roster.Player{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "nickname is required", nil)
	}
	status := in.CanMigrate
	if status == "" {
		status = "pending"
	}
	if _, ok := allowedMigrationStatus[status]; !ok {
		return roster.Player{}, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid migration status", nil)
	}

	p := roster.Player{
		ID:          in.ID,
		DiscordName: in.DiscordName,
		Nickname:    in.Nickname,
		IngameID:    in.IngameID,
		Kingdom:     in.Kingdom,
		Power:       in.Power,
		KP:          in.KP,
		Deaths:      in.Deaths,
		TotalPoints: intake.Points(in.Power, in.KP, in.Deaths),
		CanMigrate:  status,
	}
	if err := s.players.UpsertPlayer(ctx, p); err != nil {
		return roster.Player{}, err
	}
	if s.search != nil {
		s.search.IndexPlayer(search.PlayerRecord{
			ID:          p.ID,
			Nickname:    p.Nickname,
			DiscordName: p.DiscordName,
			IngameID:    p.IngameID,
			Kingdom:     p.Kingdom,
			TotalPoints: p.TotalPoints,
			CanMigrate:  p.CanMigrate,
		})
	}
	return s.players.GetPlayer(ctx, p.ID)
}

func (s *Service) DeletePlayer(ctx context.Context, id string) error {
	if err := s.requireRoster(); err != nil {
		return err
	}
	deleted, err := s.players.DeletePlayer(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return domainError(http.StatusNotFound, "NOT_FOUND", "Player not found", nil)
	}
	if s.search != nil {
		s.search.DeletePlayer(id)
	}
	return nil
}

func (s *Service) SetMigration(ctx context.Context, id, status string) error {
	if err := s.requireRoster(); err != nil {
		return err
	}
	if _, ok := allowedMigrationStatus[status]; !ok {
		return domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "invalid migration status", nil)
	}
	err := s.players.SetMigration(ctx, id, status)
	if errors.Is(err, roster.ErrNotFound) {
		return domainError(http.StatusNotFound, "NOT_FOUND", "Player not found", nil)
	}
	return err
}

func (s *Service) Screenshots(ctx context.Context, playerID string) ([]roster.Screenshot, error) {
	if err := s.requireRoster(); err != nil {
		return nil, err
	}
	list, err := s.players.ListScreenshots(ctx, playerID)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []roster.Screenshot{}
	}
	return list, nil
}

func (s *Service) Stats(ctx context.Context) (roster.Stats, error) {
	if err := s.requireRoster(); err != nil {
		return roster.Stats{}, err
	}
	return s.players.Stats(ctx)
}

func (s *Service) SearchPlayers(q search.Query) (search.Response, error) {
	if s.search == nil {
		return search.Response{}, domainError(http.StatusServiceUnavailable, "SEARCH_UNAVAILABLE", "Search not configured", nil)
	}
	return s.search.Search(q), nil
}

// PendingRequests lists in-flight migration requests for the dashboard.
func (s *Service) PendingRequests(ctx context.Context) []request.Pending {
	if s.requests == nil {
		return []request.Pending{}
	}
	list := s.requests.All(ctx)
	if list == nil {
		list = []request.Pending{}
	}
	return list
}

func (s *Service) RosterPDF(ctx context.Context) (*export.Result, error) {
	if s.exporter == nil {
		return nil, domainError(http.StatusServiceUnavailable, "EXPORT_UNAVAILABLE", "Export not configured", nil)
	}
	res, err := s.exporter.RosterPDF(ctx)
	if errors.Is(err, export.ErrPDFDependencyMissing) {
		return nil, domainError(http.StatusNotImplemented, "PDF_UNAVAILABLE", "PDF rendering unavailable on this host", nil)
	}
	return res, err
}

func (s *Service) UploadScreenshot(ctx context.Context, playerID, originalName, contentType string, size int64, body io.Reader, description string) (roster.Screenshot, error) {
	if s.uploads == nil {
		return roster.Screenshot{}, domainError(http.StatusServiceUnavailable, "UPLOADS_UNAVAILABLE", "Uploads not configured", nil)
	}
	shot, err := s.uploads.Save(ctx, shots.Upload{
		PlayerID:     playerID,
		OriginalName: originalName,
		ContentType:  contentType,
		Size:         size,
		Description:  description,
		Body:         body,
	})
	switch {
	case errors.Is(err, shots.ErrBadType):
		return roster.Screenshot{}, domainError(http.StatusUnsupportedMediaType, "BAD_CONTENT_TYPE", "Only image uploads are accepted", nil)
	case errors.Is(err, shots.ErrTooLarge):
		return roster.Screenshot{}, domainError(http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "File exceeds the upload limit", nil)
	case errors.Is(err, roster.ErrNotFound):
		return roster.Screenshot{}, domainError(http.StatusNotFound, "NOT_FOUND", "Player not found", nil)
	}
	return shot, err
}
