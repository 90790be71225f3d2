package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Run is a persisted scoring-run header.
type Run struct {
	ID               string    `json:"id"`
	RunAt            time.Time `json:"run_at"`
	Source           string    `json:"source"`
	AccountCount     int       `json:"account_count"`
	OpportunityCount int       `json:"opportunity_count"`
	InsightCount     int       `json:"insight_count"`
	RejectedCount    int       `json:"rejected_count"`
}

// RunRepository stores scoring-run headers.
type RunRepository struct {
	*BaseRepository
}

// NewRunRepository creates a new run repository.
func NewRunRepository(db *sql.DB, log zerolog.Logger) *RunRepository {
	return &RunRepository{
		BaseRepository: NewBase(db, log.With().Str("repo", "runs").Logger()),
	}
}

// Insert persists a run header inside the given transaction.
func (r *RunRepository) Insert(tx *sql.Tx, run Run) error {
	_, err := tx.Exec(`
		INSERT INTO scoring_runs (id, run_at, source, account_count, opportunity_count, insight_count, rejected_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.RunAt, run.Source, run.AccountCount, run.OpportunityCount, run.InsightCount, run.RejectedCount,
	)
	if err != nil {
		return fmt.Errorf("failed to insert scoring run: %w", err)
	}
	return nil
}

// Latest returns the most recent run header, or sql.ErrNoRows when no run
// has been persisted yet.
func (r *RunRepository) Latest() (*Run, error) {
	var run Run
	err := r.DB().QueryRow(`
		SELECT id, run_at, source, account_count, opportunity_count, insight_count, rejected_count
		FROM scoring_runs ORDER BY run_at DESC, id DESC LIMIT 1`).
		Scan(&run.ID, &run.RunAt, &run.Source, &run.AccountCount, &run.OpportunityCount, &run.InsightCount, &run.RejectedCount)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// List returns run headers, newest first.
func (r *RunRepository) List(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.DB().Query(`
		SELECT id, run_at, source, account_count, opportunity_count, insight_count, rejected_count
		FROM scoring_runs ORDER BY run_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list scoring runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.RunAt, &run.Source, &run.AccountCount, &run.OpportunityCount, &run.InsightCount, &run.RejectedCount); err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
