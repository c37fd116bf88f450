package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/besuhoff/skyline-blaster-go/internal/config"
)

// SQLiteStore keeps the leaderboard in an embedded SQLite file
type SQLiteStore struct {
	conn *sql.DB
}

// OpenSQLite opens (or creates) the database at path
func OpenSQLite(path string) (*SQLiteStore, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	// one writer; stats arrive from several goroutines
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enabling WAL: %w", err)
	}

	store := &SQLiteStore{conn: conn}
	if err := store.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return store, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS leaderboard (
		name TEXT PRIMARY KEY,
		score INTEGER NOT NULL DEFAULT 0,
		kills INTEGER NOT NULL DEFAULT 0,
		buildings INTEGER NOT NULL DEFAULT 0,
		deaths INTEGER NOT NULL DEFAULT 0,
		updated_at INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_leaderboard_score ON leaderboard(score DESC);
	`
	if _, err := s.conn.Exec(schema); err != nil {
		return fmt.Errorf("migrating sqlite schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) RecordKill(ctx context.Context, shooter, victim string) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	for _, delta := range killDeltas(shooter, victim, config.KillScore) {
		if err := applyDelta(ctx, tx, delta); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) RecordBuildingDestroyed(ctx context.Context, shooter string) error {
	return applyDelta(ctx, s.conn, statDelta{name: shooter, score: config.BuildingScore, buildings: 1})
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

func applyDelta(ctx context.Context, db execer, delta statDelta) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO leaderboard (name, score, kills, buildings, deaths, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			score = score + excluded.score,
			kills = kills + excluded.kills,
			buildings = buildings + excluded.buildings,
			deaths = deaths + excluded.deaths,
			updated_at = excluded.updated_at`,
		delta.name, delta.score, delta.kills, delta.buildings, delta.deaths, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("updating leaderboard entry %q: %w", delta.name, err)
	}
	return nil
}

func (s *SQLiteStore) TopScores(ctx context.Context, limit int) ([]LeaderboardEntry, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT name, score, kills, buildings, deaths, updated_at
		FROM leaderboard
		ORDER BY score DESC, name ASC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying leaderboard: %w", err)
	}
	defer rows.Close()

	entries := []LeaderboardEntry{}
	for rows.Next() {
		var entry LeaderboardEntry
		var updated int64
		if err := rows.Scan(&entry.Name, &entry.Score, &entry.Kills, &entry.Buildings, &entry.Deaths, &updated); err != nil {
			return nil, fmt.Errorf("scanning leaderboard row: %w", err)
		}
		entry.UpdatedAt = time.Unix(updated, 0)
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (s *SQLiteStore) Close(context.Context) error {
	return s.conn.Close()
}
