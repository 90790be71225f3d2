package insights

import (
	"github.com/ashburn-young/cokedemo/internal/domain"
	"github.com/ashburn-young/cokedemo/internal/modules/scoring"
)

// Classifier maps numeric scores onto status bands and alert priorities
// using the validated scoring configuration. All mappings are pure and total
// over [0, 100].
type Classifier struct {
	cfg scoring.Config
}

// NewClassifier creates a classifier over an already-validated configuration.
func NewClassifier(cfg scoring.Config) *Classifier {
	return &Classifier{cfg: cfg}
}

// HealthStatus returns the band a health score falls into.
func (c *Classifier) HealthStatus(score float64) domain.HealthStatus {
	return c.cfg.StatusFor(score)
}

// ChurnPriority returns the alert priority for a churn risk score.
// PriorityLow means no alert.
func (c *Classifier) ChurnPriority(risk float64) domain.AlertPriority {
	return c.cfg.ChurnPriorityFor(risk)
}

// OpportunityPriority maps an opportunity priority score to an alert
// priority. The second return is false when the score is below the alerting
// floor and no growth concern should be raised.
func (c *Classifier) OpportunityPriority(score float64) (domain.AlertPriority, bool) {
	a := c.cfg.Alerts
	switch {
	case score >= a.OpportunityCritical:
		return domain.PriorityCritical, true
	case score >= a.OpportunityHigh:
		return domain.PriorityHigh, true
	case score >= a.OpportunityMedium:
		return domain.PriorityMedium, true
	default:
		return domain.PriorityLow, false
	}
}

// SentimentPriority maps a sentiment score to an alert priority. The second
// return is false when sentiment is healthy enough to need no alert.
func (c *Classifier) SentimentPriority(sentiment float64) (domain.AlertPriority, bool) {
	a := c.cfg.Alerts
	switch {
	case sentiment < a.SentimentHigh:
		return domain.PriorityHigh, true
	case sentiment < a.SentimentMedium:
		return domain.PriorityMedium, true
	default:
		return domain.PriorityLow, false
	}
}

// belowGood reports whether a status sits under the Good band. Used by the
// competitive-threat concern, which only fires for struggling accounts.
func belowGood(status domain.HealthStatus) bool {
	switch status {
	case domain.HealthFair, domain.HealthPoor, domain.HealthCritical:
		return true
	}
	return false
}
