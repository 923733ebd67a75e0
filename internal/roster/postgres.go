package roster

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNotFound is returned when a player id matches no row.
var ErrNotFound = errors.New("roster: player not found")

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStore) UpsertPlayer(ctx context.Context, p Player) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO players (id, discord_name, nickname, ingame_id, kingdom, power, kp, deaths, total_points, can_migrate)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			discord_name = EXCLUDED.discord_name,
			nickname     = EXCLUDED.nickname,
			ingame_id    = EXCLUDED.ingame_id,
			kingdom      = EXCLUDED.kingdom,
			power        = EXCLUDED.power,
			kp           = EXCLUDED.kp,
			deaths       = EXCLUDED.deaths,
			total_points = EXCLUDED.total_points,
			can_migrate  = EXCLUDED.can_migrate,
			updated_at   = NOW()
	`, p.ID, p.DiscordName, p.Nickname, p.IngameID, p.Kingdom, p.Power, p.KP, p.Deaths, p.TotalPoints, p.CanMigrate)
	if err != nil {
		return fmt.Errorf("upsert player: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetPlayer(ctx context.Context, id string) (Player, error) {
	var p Player
	err := s.db.QueryRowContext(ctx, `
		SELECT id, discord_name, nickname, ingame_id, kingdom, power, kp, deaths, total_points, can_migrate, created_at, updated_at
		FROM players WHERE id = $1
	`, id).Scan(&p.ID, &p.DiscordName, &p.Nickname, &p.IngameID, &p.Kingdom, &p.Power, &p.KP, &p.Deaths, &p.TotalPoints, &p.CanMigrate, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Player{}, ErrNotFound
	}
	if err != nil {
		return Player{}, fmt.Errorf("get player: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) ListPlayers(ctx context.Context) ([]Player, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, discord_name, nickname, ingame_id, kingdom, power, kp, deaths, total_points, can_migrate, created_at, updated_at
		FROM players ORDER BY total_points DESC, nickname
	`)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()

	var players []Player
	for rows.Next() {
		var p Player
		if err := rows.Scan(&p.ID, &p.DiscordName, &p.Nickname, &p.IngameID, &p.Kingdom, &p.Power, &p.KP, &p.Deaths, &p.TotalPoints, &p.CanMigrate, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (s *PostgresStore) DeletePlayer(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM players WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("delete player: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete player: %w", err)
	}
	return n > 0, nil
}

func (s *PostgresStore) SetMigration(ctx context.Context, playerID, status string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE players SET can_migrate = $2, updated_at = NOW() WHERE id = $1
	`, playerID, status)
	if err != nil {
		return fmt.Errorf("set migration status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set migration status: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) AddScreenshot(ctx context.Context, shot Screenshot) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO screenshots (id, player_id, filename, original_name, url, description, content_type, size)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, shot.ID, shot.PlayerID, shot.Filename, shot.OriginalName, shot.URL, shot.Description, shot.ContentType, shot.Size)
	if err != nil {
		return fmt.Errorf("add screenshot: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListScreenshots(ctx context.Context, playerID string) ([]Screenshot, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, player_id, filename, original_name, url, description, content_type, size, uploaded_at
		FROM screenshots WHERE player_id = $1 ORDER BY uploaded_at
	`, playerID)
	if err != nil {
		return nil, fmt.Errorf("list screenshots: %w", err)
	}
	defer rows.Close()

	var shots []Screenshot
	for rows.Next() {
		var shot Screenshot
		if err := rows.Scan(&shot.ID, &shot.PlayerID, &shot.Filename, &shot.OriginalName, &shot.URL, &shot.Description, &shot.ContentType, &shot.Size, &shot.UploadedAt); err != nil {
			return nil, fmt.Errorf("scan screenshot: %w", err)
		}
		shots = append(shots, shot)
	}
	return shots, rows.Err()
}

func (s *PostgresStore) Stats(ctx context.Context) (Stats, error) {
	var stats Stats
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
			COALESCE(AVG(power), 0),
			COALESCE(AVG(kp), 0),
			(SELECT COUNT(*) FROM screenshots)
		FROM players
	`).Scan(&stats.TotalPlayers, &stats.AveragePower, &stats.AverageKP, &stats.TotalScreenshots)
	if err != nil {
		return Stats{}, fmt.Errorf("roster stats: %w", err)
	}
	return stats, nil
}
