package db

import (
	"context"
	"time"
)

// Leaderboard
type LeaderboardEntry struct {
	Name      string    `bson:"name" json:"name"`
	Score     int       `bson:"score" json:"score"`
	Kills     int       `bson:"kills" json:"kills"`
	Buildings int       `bson:"buildings" json:"buildings"`
	Deaths    int       `bson:"deaths" json:"deaths"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Recorder persists combat stats keyed by player name. Implementations must
// be safe for concurrent use.
type Recorder interface {
	// RecordKill credits the shooter and counts a death for the victim
	RecordKill(ctx context.Context, shooter, victim string) error
	// RecordBuildingDestroyed credits the shooter with a destroyed building
	RecordBuildingDestroyed(ctx context.Context, shooter string) error
	// TopScores returns at most limit entries by descending score
	TopScores(ctx context.Context, limit int) ([]LeaderboardEntry, error)
	Close(ctx context.Context) error
}

// statDelta is one upsert against a leaderboard row
type statDelta struct {
	name      string
	score     int
	kills     int
	buildings int
	deaths    int
}

func killDeltas(shooter, victim string, killScore int) []statDelta {
	return []statDelta{
		{name: shooter, score: killScore, kills: 1},
		{name: victim, deaths: 1},
	}
}

// NopRecorder discards stats. Used when no database is configured.
type NopRecorder struct{}

func (NopRecorder) RecordKill(context.Context, string, string) error {
	return nil
}

func (NopRecorder) RecordBuildingDestroyed(context.Context, string) error {
	return nil
}

func (NopRecorder) Close(context.Context) error {
	return nil
}

func (NopRecorder) TopScores(context.Context, int) ([]LeaderboardEntry, error) {
	return []LeaderboardEntry{}, nil
}
