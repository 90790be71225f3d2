package insights

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/ashburn-young/cokedemo/internal/database/repositories"
	"github.com/ashburn-young/cokedemo/internal/domain"
	"github.com/rs/zerolog"
)

// Repository stores ranked insights per scoring run.
type Repository struct {
	*repositories.BaseRepository
}

// NewRepository creates a new insight repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		BaseRepository: repositories.NewBase(db, log.With().Str("repo", "insights").Logger()),
	}
}

// SaveRun persists a run's insights in ranked order. Score inputs are
// serialized as JSON so the snapshot survives schema-free.
func (r *Repository) SaveRun(tx *sql.Tx, runID string, insights []domain.Insight) error {
	stmt, err := tx.Prepare(`
		INSERT INTO insights (run_id, subject_id, kind, priority, confidence, summary, score_inputs, rank)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insight insert: %w", err)
	}
	defer stmt.Close()

	for rank, ins := range insights {
		inputs, err := json.Marshal(ins.ScoreInputs)
		if err != nil {
			return fmt.Errorf("failed to encode score inputs for %s: %w", ins.SubjectID, err)
		}
		_, err = stmt.Exec(
			runID, ins.SubjectID, string(ins.Kind), ins.Priority.String(),
			ins.Confidence, ins.Summary, string(inputs), rank+1,
		)
		if err != nil {
			return fmt.Errorf("failed to insert insight %s/%s: %w", ins.SubjectID, ins.Kind, err)
		}
	}
	log := r.Log()
	log.Debug().Str("run_id", runID).Int("insights", len(insights)).Msg("Insights saved")
	return nil
}

// ListByRun returns a run's insights in ranked order.
func (r *Repository) ListByRun(runID string) ([]domain.Insight, error) {
	rows, err := r.DB().Query(`
		SELECT subject_id, kind, priority, confidence, summary, score_inputs
		FROM insights WHERE run_id = ? ORDER BY rank`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query insights: %w", err)
	}
	defer rows.Close()

	var insights []domain.Insight
	for rows.Next() {
		var ins domain.Insight
		var kind, priority, inputs string
		if err := rows.Scan(&ins.SubjectID, &kind, &priority, &ins.Confidence, &ins.Summary, &inputs); err != nil {
			return nil, fmt.Errorf("failed to scan insight: %w", err)
		}
		ins.Kind = domain.InsightKind(kind)
		ins.Priority = parsePriority(priority)
		if err := json.Unmarshal([]byte(inputs), &ins.ScoreInputs); err != nil {
			return nil, fmt.Errorf("failed to decode score inputs: %w", err)
		}
		insights = append(insights, ins)
	}
	return insights, rows.Err()
}

func parsePriority(s string) domain.AlertPriority {
	switch s {
	case "Critical":
		return domain.PriorityCritical
	case "High":
		return domain.PriorityHigh
	case "Medium":
		return domain.PriorityMedium
	default:
		return domain.PriorityLow
	}
}
