package pipeline

import (
	"database/sql"
	"fmt"

	"github.com/ashburn-young/cokedemo/internal/database/repositories"
	"github.com/ashburn-young/cokedemo/internal/domain"
	"github.com/rs/zerolog"
)

// Repository stores ranked opportunities per scoring run.
type Repository struct {
	*repositories.BaseRepository
}

// NewRepository creates a new opportunity repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		BaseRepository: repositories.NewBase(db, log.With().Str("repo", "pipeline").Logger()),
	}
}

// SaveRun persists a run's opportunities in ranked order. The slice is
// expected to already be sorted by priority; rank is its position.
func (r *Repository) SaveRun(tx *sql.Tx, runID string, opportunities []domain.ScoredOpportunity) error {
	stmt, err := tx.Prepare(`
		INSERT INTO scored_opportunities (
			run_id, opportunity_id, account_id, opportunity_name, value,
			probability, stage, expected_close_date, priority_score, rank
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare opportunity insert: %w", err)
	}
	defer stmt.Close()

	for rank, opp := range opportunities {
		_, err := stmt.Exec(
			runID, opp.ID, opp.AccountID, opp.Name, opp.Value,
			opp.Probability, string(opp.Stage), opp.ExpectedCloseDate,
			opp.PriorityScore, rank+1,
		)
		if err != nil {
			return fmt.Errorf("failed to insert opportunity %s: %w", opp.ID, err)
		}
	}
	log := r.Log()
	log.Debug().Str("run_id", runID).Int("opportunities", len(opportunities)).Msg("Scored opportunities saved")
	return nil
}

// ListByRun returns a run's opportunities in ranked order.
func (r *Repository) ListByRun(runID string) ([]domain.ScoredOpportunity, error) {
	rows, err := r.DB().Query(`
		SELECT opportunity_id, account_id, opportunity_name, value, probability,
			stage, expected_close_date, priority_score
		FROM scored_opportunities WHERE run_id = ? ORDER BY rank`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query scored opportunities: %w", err)
	}
	defer rows.Close()

	var opportunities []domain.ScoredOpportunity
	for rows.Next() {
		var opp domain.ScoredOpportunity
		var stage string
		err := rows.Scan(
			&opp.ID, &opp.AccountID, &opp.Name, &opp.Value, &opp.Probability,
			&stage, &opp.ExpectedCloseDate, &opp.PriorityScore,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scored opportunity: %w", err)
		}
		opp.Stage = domain.PipelineStage(stage)
		opportunities = append(opportunities, opp)
	}
	return opportunities, rows.Err()
}
