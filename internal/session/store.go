package session

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strconv"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/playmatatu/brickduel/internal/game"
	"github.com/playmatatu/brickduel/internal/models"
)

const (
	leaderboardKey      = "leaderboard"
	leaderboardNamesKey = "leaderboard:names"
	leaderboardWinsKey  = "leaderboard:wins"
)

// Store persists results to postgres and mirrors best scores into a redis
// sorted set.
type Store struct {
	db  *sqlx.DB
	rdb *redis.Client // optional
}

func NewStore(db *sqlx.DB, rdb *redis.Client) *Store {
	return &Store{db: db, rdb: rdb}
}

// WinnerLabel is the value stored in match_results.winner.
func WinnerLabel(w *game.Side) string {
	if w == nil {
		return "draw"
	}
	return w.String()
}

// RecordResult inserts the match result and updates the player's totals.
func (st *Store) RecordResult(ctx context.Context, r Result) error {
	if st.db == nil {
		return fmt.Errorf("db is nil")
	}
	sum := r.Summary
	winner := WinnerLabel(sum.Winner)
	won := 0
	if winner == game.SideHuman.String() {
		won = 1
	}

	tx, err := st.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	playerID := sql.NullInt64{Int64: int64(r.PlayerID), Valid: r.PlayerID > 0}
	_, err = tx.ExecContext(ctx, `INSERT INTO match_results (session_id, player_id, human_score, ai_score, elapsed_seconds, winner, seed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())`,
		r.SessionID, playerID, sum.Score.Human, sum.Score.AI, sum.Elapsed, winner, int64(sum.Seed))
	if err != nil {
		return fmt.Errorf("insert match result: %w", err)
	}

	var player models.Player
	if playerID.Valid {
		err = tx.GetContext(ctx, &player, `UPDATE players
			SET games_played = games_played + 1,
			    games_won = games_won + $1,
			    best_score = GREATEST(best_score, $2),
			    last_active = NOW()
			WHERE id = $3
			RETURNING id, display_name, pin_hash, created_at, games_played, games_won, best_score, last_active`,
			won, sum.Score.Human, r.PlayerID)
		if err != nil {
			return fmt.Errorf("update player totals: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit result: %w", err)
	}
	log.Printf("[DB] recorded session %s: %d-%d winner=%s", r.SessionID, sum.Score.Human, sum.Score.AI, winner)

	if playerID.Valid {
		st.mirrorLeaderboard(ctx, player)
	}
	return nil
}

func (st *Store) mirrorLeaderboard(ctx context.Context, p models.Player) {
	if st.rdb == nil {
		return
	}
	member := strconv.Itoa(p.ID)
	pipe := st.rdb.TxPipeline()
	pipe.ZAdd(ctx, leaderboardKey, redis.Z{Score: float64(p.BestScore), Member: member})
	pipe.HSet(ctx, leaderboardNamesKey, member, p.DisplayName)
	pipe.HSet(ctx, leaderboardWinsKey, member, p.GamesWon)
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("[REDIS] failed to update leaderboard for player %d: %v", p.ID, err)
	}
}

// Leaderboard returns the top n players by best score. Redis is read first;
// postgres answers when redis is missing, empty or failing.
func (st *Store) Leaderboard(ctx context.Context, n int) ([]models.LeaderboardEntry, error) {
	if n <= 0 {
		n = 20
	}
	if entries, err := st.leaderboardFromRedis(ctx, n); err == nil && len(entries) > 0 {
		return entries, nil
	} else if err != nil {
		log.Printf("[REDIS] leaderboard read failed, using postgres: %v", err)
	}

	if st.db == nil {
		return nil, fmt.Errorf("db is nil")
	}
	entries := []models.LeaderboardEntry{}
	err := st.db.SelectContext(ctx, &entries, `SELECT id AS player_id, display_name, best_score, games_won
		FROM players WHERE games_played > 0
		ORDER BY best_score DESC, games_won DESC, id ASC
		LIMIT $1`, n)
	if err != nil {
		return nil, fmt.Errorf("load leaderboard: %w", err)
	}
	return entries, nil
}

func (st *Store) leaderboardFromRedis(ctx context.Context, n int) ([]models.LeaderboardEntry, error) {
	if st.rdb == nil {
		return nil, nil
	}
	top, err := st.rdb.ZRevRangeWithScores(ctx, leaderboardKey, 0, int64(n-1)).Result()
	if err != nil {
		return nil, err
	}
	if len(top) == 0 {
		return nil, nil
	}

	members := make([]string, len(top))
	for i, z := range top {
		members[i], _ = z.Member.(string)
	}
	names, err := st.rdb.HMGet(ctx, leaderboardNamesKey, members...).Result()
	if err != nil {
		return nil, err
	}
	wins, err := st.rdb.HMGet(ctx, leaderboardWinsKey, members...).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]models.LeaderboardEntry, 0, len(top))
	for i, z := range top {
		id, err := strconv.Atoi(members[i])
		if err != nil {
			continue
		}
		e := models.LeaderboardEntry{PlayerID: id, BestScore: int(z.Score)}
		if name, ok := names[i].(string); ok {
			e.DisplayName = name
		}
		if w, ok := wins[i].(string); ok {
			e.GamesWon, _ = strconv.Atoi(w)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
