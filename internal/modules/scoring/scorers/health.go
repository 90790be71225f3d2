package scorers

import (
	"fmt"

	"github.com/ashburn-young/cokedemo/internal/domain"
	"github.com/ashburn-young/cokedemo/internal/modules/scoring"
	"github.com/ashburn-young/cokedemo/pkg/numbers"
)

// HealthScorer computes account health and churn risk from the four
// relationship factors. It is a pure function of its input: same account,
// same scores, every pass.
type HealthScorer struct {
	cfg scoring.Config
}

// HealthScore is the result of scoring one account.
type HealthScore struct {
	Components map[string]float64 `json:"components"`
	Score      float64            `json:"score"`
	ChurnRisk  float64            `json:"churn_risk"`
}

// NewHealthScorer creates a new health scorer.
func NewHealthScorer(cfg scoring.Config) *HealthScorer {
	return &HealthScorer{cfg: cfg}
}

// Calculate computes the weighted health score and its churn-risk complement.
// Components:
// - Payment timeliness (30%): fraction of invoices paid on time
// - Communication sentiment (25%): aggregate sentiment, already in [0,100]
// - Order volume trend (25%): YoY trend mapped onto [0,100], 0pp -> 50
// - Product adoption (20%): share of relevant products in use
//
// Churn risk is modelled as the complement of health. The scorer is total
// over the validated domain; out-of-range input means the caller skipped
// validation and yields ErrPreconditionViolated.
func (s *HealthScorer) Calculate(acc domain.Account) (HealthScore, error) {
	if err := checkAccountDomain(acc); err != nil {
		return HealthScore{}, err
	}

	trend := normalizeTrend(acc.OrderVolumeTrend)

	w := s.cfg.Health
	score := w.PaymentTimeliness*acc.PaymentTimeliness +
		w.Sentiment*acc.CommunicationSentiment +
		w.VolumeTrend*trend +
		w.ProductAdoption*acc.ProductAdoptionRate
	score = numbers.ClampPercent(score)

	return HealthScore{
		Score:     numbers.Round2(score),
		ChurnRisk: numbers.Round2(numbers.ClampPercent(100 - score)),
		Components: map[string]float64{
			"payment_timeliness":      numbers.Round2(acc.PaymentTimeliness),
			"communication_sentiment": numbers.Round2(acc.CommunicationSentiment),
			"order_volume_trend":      numbers.Round2(trend),
			"product_adoption":        numbers.Round2(acc.ProductAdoptionRate),
		},
	}, nil
}

// normalizeTrend maps a signed YoY trend (percentage points) onto [0,100].
// A flat trend scores 50; the scale saturates at a +/-50pp swing.
func normalizeTrend(trend float64) float64 {
	return numbers.Clamp(50+trend, 0, 100)
}

// checkAccountDomain guards the scorer's precondition: every percentage
// factor in [0,100] and revenue non-negative.
func checkAccountDomain(acc domain.Account) error {
	checks := []struct {
		name  string
		value float64
	}{
		{"payment_timeliness", acc.PaymentTimeliness},
		{"communication_sentiment", acc.CommunicationSentiment},
		{"product_adoption_rate", acc.ProductAdoptionRate},
	}
	for _, c := range checks {
		if c.value < 0 || c.value > 100 {
			return fmt.Errorf("%w: account %s field %s=%v", scoring.ErrPreconditionViolated, acc.ID, c.name, c.value)
		}
	}
	if acc.AnnualRevenue < 0 {
		return fmt.Errorf("%w: account %s has negative annual_revenue", scoring.ErrPreconditionViolated, acc.ID)
	}
	return nil
}
