package scorers

import (
	"fmt"
	"time"

	"github.com/ashburn-young/cokedemo/internal/domain"
	"github.com/ashburn-young/cokedemo/internal/modules/scoring"
	"github.com/ashburn-young/cokedemo/pkg/numbers"
)

// PriorityScorer computes opportunity priority from deal value, close
// probability and close-date urgency.
type PriorityScorer struct {
	cfg scoring.Config
}

// PriorityScore is the result of scoring one opportunity.
type PriorityScore struct {
	Components map[string]float64 `json:"components"`
	Score      float64            `json:"score"`
}

// NewPriorityScorer creates a new opportunity priority scorer.
func NewPriorityScorer(cfg scoring.Config) *PriorityScorer {
	return &PriorityScorer{cfg: cfg}
}

// Calculate computes the weighted priority score.
// Components:
// - Value (45%): normalized against the batch's maximum deal value
// - Probability (35%): stage-derived close probability
// - Urgency (20%): 100 when due or overdue, decaying linearly to 0 at the
//   configured horizon
//
// batchMaxValue is the largest deal value in the scoring batch; a batch
// where every value is zero has no value signal, so the component scores 0.
// asOf anchors the urgency calculation so that reruns over the same batch
// are reproducible.
func (s *PriorityScorer) Calculate(opp domain.Opportunity, batchMaxValue float64, asOf time.Time) (PriorityScore, error) {
	if err := checkOpportunityDomain(opp); err != nil {
		return PriorityScore{}, err
	}

	valueNorm := 0.0
	if batchMaxValue > 0 {
		valueNorm = numbers.ClampPercent(100 * opp.Value / batchMaxValue)
	}

	urgency := s.urgency(opp.ExpectedCloseDate, asOf)

	w := s.cfg.Opportunity
	score := w.Value*valueNorm + w.Probability*opp.Probability + w.Urgency*urgency
	score = numbers.ClampPercent(score)

	return PriorityScore{
		Score: numbers.Round2(score),
		Components: map[string]float64{
			"value_norm":  numbers.Round2(valueNorm),
			"probability": numbers.Round2(opp.Probability),
			"urgency":     numbers.Round2(urgency),
		},
	}, nil
}

// urgency scores time-to-close: 100 when the close date is today or past,
// falling linearly to 0 at the horizon.
func (s *PriorityScorer) urgency(closeDate, asOf time.Time) float64 {
	days := closeDate.Sub(asOf).Hours() / 24
	return numbers.LinearDecay(days, float64(s.cfg.UrgencyHorizonDays))
}

// Less orders scored opportunities for ranking: higher priority first, ties
// broken by higher raw value, then earlier close date, then lexicographic
// opportunity ID. The order is total, so ranked output is reproducible.
func Less(a, b domain.ScoredOpportunity) bool {
	if a.PriorityScore != b.PriorityScore {
		return a.PriorityScore > b.PriorityScore
	}
	if a.Value != b.Value {
		return a.Value > b.Value
	}
	if !a.ExpectedCloseDate.Equal(b.ExpectedCloseDate) {
		return a.ExpectedCloseDate.Before(b.ExpectedCloseDate)
	}
	return a.ID < b.ID
}

// checkOpportunityDomain guards the scorer's precondition.
func checkOpportunityDomain(opp domain.Opportunity) error {
	if opp.Probability < 0 || opp.Probability > 100 {
		return fmt.Errorf("%w: opportunity %s probability=%v", scoring.ErrPreconditionViolated, opp.ID, opp.Probability)
	}
	if opp.Value < 0 {
		return fmt.Errorf("%w: opportunity %s has negative value", scoring.ErrPreconditionViolated, opp.ID)
	}
	if !opp.Stage.Valid() {
		return fmt.Errorf("%w: opportunity %s stage %q", scoring.ErrPreconditionViolated, opp.ID, opp.Stage)
	}
	return nil
}
