package search

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// PgFTS implements Searcher using PostgreSQL full-text search as a fallback.
type PgFTS struct {
	db *sql.DB
}

// NewPgFTS creates a PostgreSQL FTS searcher.
func NewPgFTS(db *sql.DB) *PgFTS {
	return &PgFTS{db: db}
}

// Healthy always returns true: if Postgres is down, the roster is down too.
func (p *PgFTS) Healthy() bool {
	return true
}

// Search queries the players table using plainto_tsquery and ts_rank,
// with ts_headline for snippets.
func (p *PgFTS) Search(q Query) ([]Result, int, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, 0, nil
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	tsQuery := "plainto_tsquery('simple', $1)"
	args := []any{q.Text}
	argN := 2

	where := "p.fts @@ " + tsQuery
	if q.FilterKingdom != "" {
		where += fmt.Sprintf(" AND p.kingdom = $%d", argN)
		args = append(args, q.FilterKingdom)
		argN++
	}
	if q.FilterMigration != "" {
		where += fmt.Sprintf(" AND p.can_migrate = $%d", argN)
		args = append(args, q.FilterMigration)
		argN++
	}

	countSQL := fmt.Sprintf(`SELECT count(*) FROM players p WHERE %s`, where)

	dataSQL := fmt.Sprintf(`
		SELECT p.id, p.nickname, p.discord_name, p.ingame_id, p.kingdom, p.total_points, p.can_migrate,
			ts_headline('simple', coalesce(p.discord_name, ''), %s, 'MaxFragments=1,MaxWords=30') AS snippet
		FROM players p
		WHERE %s
		ORDER BY ts_rank(p.fts, %s) DESC, p.total_points DESC
		LIMIT %d OFFSET %d`,
		tsQuery, where, tsQuery, limit, offset)

	ctx := context.Background()

	var total int
	if err := p.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("pgfts count: %w", err)
	}

	rows, err := p.db.QueryContext(ctx, dataSQL, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("pgfts query: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.ID, &r.Nickname, &r.DiscordName, &r.IngameID, &r.Kingdom, &r.TotalPoints, &r.CanMigrate, &r.Snippet); err != nil {
			return nil, 0, fmt.Errorf("pgfts scan: %w", err)
		}
		results = append(results, r)
	}

	return results, total, rows.Err()
}

// LoadAllRecords returns every player for full reindexing.
func (p *PgFTS) LoadAllRecords(ctx context.Context) ([]PlayerRecord, error) {
	rows, err := p.db.QueryContext(ctx, `
		SELECT id, nickname, discord_name, ingame_id, kingdom, total_points, can_migrate
		FROM players
	`)
	if err != nil {
		return nil, fmt.Errorf("load players: %w", err)
	}
	defer rows.Close()

	players := make([]PlayerRecord, 0)
	for rows.Next() {
		var rec PlayerRecord
		if err := rows.Scan(&rec.ID, &rec.Nickname, &rec.DiscordName, &rec.IngameID, &rec.Kingdom, &rec.TotalPoints, &rec.CanMigrate); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate players: %w", err)
	}
	return players, nil
}
