package accounts

import (
	"database/sql"
	"fmt"

	"github.com/ashburn-young/cokedemo/internal/database/repositories"
	"github.com/ashburn-young/cokedemo/internal/domain"
	"github.com/rs/zerolog"
)

// Repository stores scored accounts per scoring run.
type Repository struct {
	*repositories.BaseRepository
}

// NewRepository creates a new scored-account repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		BaseRepository: repositories.NewBase(db, log.With().Str("repo", "accounts").Logger()),
	}
}

// SaveRun persists every scored account of a run inside the transaction.
// The component snapshot is not persisted: it is re-derivable from the
// stored inputs, and the insights table already snapshots what alerts saw.
func (r *Repository) SaveRun(tx *sql.Tx, runID string, accounts []domain.ScoredAccount) error {
	stmt, err := tx.Prepare(`
		INSERT INTO scored_accounts (
			run_id, account_id, company_name, industry, region, assigned_rep,
			annual_revenue, payment_timeliness, communication_sentiment,
			order_volume_trend, product_adoption_rate, competitive_threat,
			expansion_potential, health_score, health_status, churn_risk_score,
			churn_priority
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare account insert: %w", err)
	}
	defer stmt.Close()

	for _, acc := range accounts {
		_, err := stmt.Exec(
			runID, acc.ID, acc.Name, acc.Industry, acc.Region, acc.AssignedRep,
			acc.AnnualRevenue, acc.PaymentTimeliness, acc.CommunicationSentiment,
			acc.OrderVolumeTrend, acc.ProductAdoptionRate, string(acc.CompetitiveThreat),
			string(acc.ExpansionPotential), acc.HealthScore, string(acc.HealthStatus),
			acc.ChurnRiskScore, acc.ChurnPriority.String(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert account %s: %w", acc.ID, err)
		}
	}
	log := r.Log()
	log.Debug().Str("run_id", runID).Int("accounts", len(accounts)).Msg("Scored accounts saved")
	return nil
}

// ListByRun returns the scored accounts of one run, ordered by account ID.
func (r *Repository) ListByRun(runID string) ([]domain.ScoredAccount, error) {
	rows, err := r.DB().Query(`
		SELECT account_id, company_name, industry, region, assigned_rep,
			annual_revenue, payment_timeliness, communication_sentiment,
			order_volume_trend, product_adoption_rate, competitive_threat,
			expansion_potential, health_score, health_status, churn_risk_score,
			churn_priority
		FROM scored_accounts WHERE run_id = ? ORDER BY account_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query scored accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.ScoredAccount
	for rows.Next() {
		acc, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		accounts = append(accounts, acc)
	}
	return accounts, rows.Err()
}

// GetByRun returns one scored account of a run, or sql.ErrNoRows.
func (r *Repository) GetByRun(runID, accountID string) (*domain.ScoredAccount, error) {
	rows, err := r.DB().Query(`
		SELECT account_id, company_name, industry, region, assigned_rep,
			annual_revenue, payment_timeliness, communication_sentiment,
			order_volume_trend, product_adoption_rate, competitive_threat,
			expansion_potential, health_score, health_status, churn_risk_score,
			churn_priority
		FROM scored_accounts WHERE run_id = ? AND account_id = ?`, runID, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to query scored account: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, sql.ErrNoRows
	}
	acc, err := scanAccount(rows)
	if err != nil {
		return nil, err
	}
	return &acc, nil
}

func scanAccount(rows *sql.Rows) (domain.ScoredAccount, error) {
	var acc domain.ScoredAccount
	var threat, expansion, status, priority string
	err := rows.Scan(
		&acc.ID, &acc.Name, &acc.Industry, &acc.Region, &acc.AssignedRep,
		&acc.AnnualRevenue, &acc.PaymentTimeliness, &acc.CommunicationSentiment,
		&acc.OrderVolumeTrend, &acc.ProductAdoptionRate, &threat,
		&expansion, &acc.HealthScore, &status, &acc.ChurnRiskScore, &priority,
	)
	if err != nil {
		return domain.ScoredAccount{}, fmt.Errorf("failed to scan scored account: %w", err)
	}
	acc.CompetitiveThreat = domain.ThreatLevel(threat)
	acc.ExpansionPotential = domain.ThreatLevel(expansion)
	acc.HealthStatus = domain.HealthStatus(status)
	acc.ChurnPriority = parsePriority(priority)
	return acc, nil
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
