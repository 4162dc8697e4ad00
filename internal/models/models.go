package models

import (
	"database/sql"
	"time"
)

// Player represents a registered human player
type Player struct {
	ID          int            `db:"id" json:"id"`
	DisplayName string         `db:"display_name" json:"display_name"`
	PINHash     sql.NullString `db:"pin_hash" json:"-"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	GamesPlayed int            `db:"games_played" json:"games_played"`
	GamesWon    int            `db:"games_won" json:"games_won"`
	BestScore   int            `db:"best_score" json:"best_score"`
	LastActive  sql.NullTime   `db:"last_active" json:"last_active,omitempty"`
}

// MatchResult is the final summary of one hosted match
type MatchResult struct {
	ID             int           `db:"id" json:"id"`
	SessionID      string        `db:"session_id" json:"session_id"`
	PlayerID       sql.NullInt64 `db:"player_id" json:"player_id,omitempty"`
	HumanScore     int           `db:"human_score" json:"human_score"`
	AIScore        int           `db:"ai_score" json:"ai_score"`
	ElapsedSeconds float64       `db:"elapsed_seconds" json:"elapsed_seconds"`
	Winner         string        `db:"winner" json:"winner"` // human, ai or draw
	Seed           int64         `db:"seed" json:"seed"`
	CreatedAt      time.Time     `db:"created_at" json:"created_at"`
}

// LeaderboardEntry is one row of the best-score table
type LeaderboardEntry struct {
	PlayerID    int    `db:"player_id" json:"player_id"`
	DisplayName string `db:"display_name" json:"display_name"`
	BestScore   int    `db:"best_score" json:"best_score"`
	GamesWon    int    `db:"games_won" json:"games_won"`
}
