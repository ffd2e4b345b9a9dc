package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

// RaceResult is one finished race, as recorded and as served by /api/results.
type RaceResult struct {
	ID         int64     `json:"id"`
	TeamID     int       `json:"teamId"`
	TeamName   string    `json:"teamName"`
	Players    int       `json:"players"`
	DurationMs int64     `json:"durationMs"`
	FinishedAt time.Time `json:"finishedAt"`
}

// ResultStore appends finished races to a sqlite database. The live session
// is never persisted; this is history only.
type ResultStore struct {
	db *sql.DB
}

func Open(path string) (*ResultStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS race_results (
		id          INTEGER PRIMARY KEY AUTOINCREMENT,
		team_id     INTEGER NOT NULL,
		team_name   TEXT,
		players     INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		finished_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("create race_results table: %w", err)
	}

	log.Info().Str("path", path).Msg("result store opened")
	return &ResultStore{db: db}, nil
}

func (s *ResultStore) Close() error {
	return s.db.Close()
}

// SaveResult appends one finished race.
func (s *ResultStore) SaveResult(r RaceResult) error {
	query := `
	INSERT INTO race_results (team_id, team_name, players, duration_ms, finished_at)
	VALUES (?, ?, ?, ?, ?);
	`
	_, err := s.db.Exec(query, r.TeamID, r.TeamName, r.Players, r.DurationMs, r.FinishedAt)
	if err != nil {
		return fmt.Errorf("save race result: %w", err)
	}
	return nil
}

// RecentResults returns up to limit finished races, newest first.
func (s *ResultStore) RecentResults(limit int) ([]RaceResult, error) {
	rows, err := s.db.Query(`
	SELECT id, team_id, team_name, players, duration_ms, finished_at
	FROM race_results ORDER BY finished_at DESC, id DESC LIMIT ?;
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query race results: %w", err)
	}
	defer rows.Close()

	var out []RaceResult
	for rows.Next() {
		var r RaceResult
		if err := rows.Scan(&r.ID, &r.TeamID, &r.TeamName, &r.Players, &r.DurationMs, &r.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan race result: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
