package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Run outcomes.
const (
	OutcomeCompleted = "completed"
	OutcomeAbandoned = "abandoned"
)

// Run is one finished or abandoned level session.
type Run struct {
	ID        string
	User      string
	Title     string
	Backend   string // Generator that built the level
	Score     int
	Solved    int // Interactions answered correctly
	Total     int // Interactions in the level
	Outcome   string
	Duration  time.Duration
	CreatedAt time.Time
}

// UserStats contains aggregated statistics for one player.
type UserStats struct {
	User       string
	Runs       int
	Completed  int
	HighScore  int
	TotalScore int64
	LastPlayed time.Time
}

// SaveRun records a run and returns its ID. A new UUID is assigned when
// the run has none.
func (s *Store) SaveRun(r Run) (string, error) {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.Outcome == "" {
		r.Outcome = OutcomeCompleted
	}

	_, err := s.db.Exec(
		`INSERT INTO runs (run_id, user_name, title, backend, score, solved, total, outcome, duration_secs)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.User, r.Title, r.Backend, r.Score, r.Solved, r.Total, r.Outcome, int64(r.Duration/time.Second),
	)
	if err != nil {
		return "", fmt.Errorf("storage: cannot save run: %w", err)
	}
	return r.ID, nil
}

const runColumns = `run_id, user_name, title, backend, score, solved, total, outcome, duration_secs, created_at`

// TopRuns retrieves the best N runs across all players.
// Results are ordered by score descending, earlier runs first on ties.
func (s *Store) TopRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT `+runColumns+`
		 FROM runs
		 ORDER BY score DESC, seq ASC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	return scanRuns(rows)
}

// RunsByUser retrieves the most recent N runs of a player.
func (s *Store) RunsByUser(user string, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.Query(
		`SELECT `+runColumns+`
		 FROM runs
		 WHERE user_name = ?
		 ORDER BY seq DESC
		 LIMIT ?`,
		user, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot query runs: %w", err)
	}
	return scanRuns(rows)
}

func scanRuns(rows *sql.Rows) ([]Run, error) {
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var secs int64
		var createdAt any
		if err := rows.Scan(&r.ID, &r.User, &r.Title, &r.Backend, &r.Score, &r.Solved, &r.Total,
			&r.Outcome, &secs, &createdAt); err != nil {
			return nil, fmt.Errorf("storage: cannot scan row: %w", err)
		}
		r.Duration = time.Duration(secs) * time.Second
		r.CreatedAt = parseTime(createdAt)
		runs = append(runs, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("storage: row iteration error: %w", err)
	}
	return runs, nil
}

// HighScore returns the best score of a player, or 0 if they have no runs.
func (s *Store) HighScore(user string) (int, error) {
	var score sql.NullInt64
	err := s.db.QueryRow(
		"SELECT MAX(score) FROM runs WHERE user_name = ?",
		user,
	).Scan(&score)
	if err != nil {
		return 0, fmt.Errorf("storage: cannot get high score: %w", err)
	}
	if !score.Valid {
		return 0, nil
	}
	return int(score.Int64), nil
}

// Stats retrieves aggregated statistics for a player.
func (s *Store) Stats(user string) (*UserStats, error) {
	stats := &UserStats{User: user}

	var lastPlayed any
	err := s.db.QueryRow(
		`SELECT COUNT(*),
		        COALESCE(SUM(CASE WHEN outcome = ? THEN 1 ELSE 0 END), 0),
		        COALESCE(MAX(score), 0),
		        COALESCE(SUM(score), 0),
		        MAX(created_at)
		 FROM runs WHERE user_name = ?`,
		OutcomeCompleted, user,
	).Scan(&stats.Runs, &stats.Completed, &stats.HighScore, &stats.TotalScore, &lastPlayed)
	if err != nil {
		return nil, fmt.Errorf("storage: cannot get stats: %w", err)
	}
	stats.LastPlayed = parseTime(lastPlayed)

	return stats, nil
}

// ClearRuns deletes all runs of a player.
func (s *Store) ClearRuns(user string) error {
	_, err := s.db.Exec("DELETE FROM runs WHERE user_name = ?", user)
	if err != nil {
		return fmt.Errorf("storage: cannot clear runs: %w", err)
	}
	return nil
}
