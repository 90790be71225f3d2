package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ashburn-young/cokedemo/internal/domain"
)

// weightTolerance is the allowed drift when checking that weights sum to 1.0.
const weightTolerance = 1e-9

// ErrPreconditionViolated signals that a scorer was invoked on an entity
// outside the validated domain. This is a caller contract breach, not a
// data-quality problem: it aborts the pass instead of joining the per-record
// error list.
var ErrPreconditionViolated = fmt.Errorf("precondition violated: scorer invoked on unvalidated input")

// ConfigurationError reports an invalid weight set or band table. It is
// raised once, before any scoring occurs, never mid-batch.
type ConfigurationError struct {
	Problems []string
}

func (e *ConfigurationError) Error() string {
	return "invalid scoring configuration: " + strings.Join(e.Problems, "; ")
}

// HealthWeights are the account health factor weights. They must sum to 1.0.
type HealthWeights struct {
	PaymentTimeliness float64 `toml:"payment_timeliness"`
	Sentiment         float64 `toml:"communication_sentiment"`
	VolumeTrend       float64 `toml:"order_volume_trend"`
	ProductAdoption   float64 `toml:"product_adoption"`
}

// OpportunityWeights are the opportunity priority factor weights. They must
// sum to 1.0.
type OpportunityWeights struct {
	Value       float64 `toml:"value"`
	Probability float64 `toml:"probability"`
	Urgency     float64 `toml:"urgency"`
}

// Band maps the half-open score interval [Min, Max) to a health status. The
// band whose Max is 100 also includes 100 itself, so the table covers the
// full [0, 100] range with no double membership.
type Band struct {
	Min    float64             `toml:"min"`
	Max    float64             `toml:"max"`
	Status domain.HealthStatus `toml:"status"`
}

// AlertThresholds control when classified scores turn into concerns.
type AlertThresholds struct {
	// Churn risk: risk > Critical is Critical, > High is High, > Medium is
	// Medium, anything at or below Medium stays Low (no alert).
	ChurnCritical float64 `toml:"churn_critical"`
	ChurnHigh     float64 `toml:"churn_high"`
	ChurnMedium   float64 `toml:"churn_medium"`

	// Sentiment below SentimentMedium raises a Medium alert, below
	// SentimentHigh a High one.
	SentimentMedium float64 `toml:"sentiment_medium"`
	SentimentHigh   float64 `toml:"sentiment_high"`

	// Opportunity priority score at or above each threshold raises a growth
	// concern of the matching severity.
	OpportunityMedium   float64 `toml:"opportunity_medium"`
	OpportunityHigh     float64 `toml:"opportunity_high"`
	OpportunityCritical float64 `toml:"opportunity_critical"`
}

// Config is the complete scoring configuration: factor weights, the health
// band table, alert thresholds, and the urgency horizon. Tests substitute
// alternate weight sets by constructing their own Config.
type Config struct {
	Health             HealthWeights      `toml:"health_weights"`
	Opportunity        OpportunityWeights `toml:"opportunity_weights"`
	HealthBands        []Band             `toml:"health_bands"`
	Alerts             AlertThresholds    `toml:"alerts"`
	UrgencyHorizonDays int                `toml:"urgency_horizon_days"`
}

// Default returns the documented default configuration: the 30/25/25/20
// health weights, the 45/35/20 opportunity weights, the standard band table,
// and a 180-day urgency horizon.
func Default() Config {
	return Config{
		Health: HealthWeights{
			PaymentTimeliness: 0.30,
			Sentiment:         0.25,
			VolumeTrend:       0.25,
			ProductAdoption:   0.20,
		},
		Opportunity: OpportunityWeights{
			Value:       0.45,
			Probability: 0.35,
			Urgency:     0.20,
		},
		HealthBands: []Band{
			{Min: 0, Max: 55, Status: domain.HealthCritical},
			{Min: 55, Max: 65, Status: domain.HealthPoor},
			{Min: 65, Max: 75, Status: domain.HealthFair},
			{Min: 75, Max: 85, Status: domain.HealthGood},
			{Min: 85, Max: 100, Status: domain.HealthExcellent},
		},
		Alerts: AlertThresholds{
			ChurnCritical:       80,
			ChurnHigh:           60,
			ChurnMedium:         40,
			SentimentMedium:     40,
			SentimentHigh:       25,
			OpportunityMedium:   60,
			OpportunityHigh:     80,
			OpportunityCritical: 90,
		},
		UrgencyHorizonDays: 180,
	}
}

// Validate checks the configuration and returns a *ConfigurationError
// accumulating every problem found. It must pass before any scoring occurs.
func (c Config) Validate() error {
	var problems []string

	healthSum := c.Health.PaymentTimeliness + c.Health.Sentiment +
		c.Health.VolumeTrend + c.Health.ProductAdoption
	if math.Abs(healthSum-1.0) > weightTolerance {
		problems = append(problems, fmt.Sprintf("health_weights: must sum to 1.0, got %v", healthSum))
	}
	healthWeights := []struct {
		name string
		w    float64
	}{
		{"payment_timeliness", c.Health.PaymentTimeliness},
		{"communication_sentiment", c.Health.Sentiment},
		{"order_volume_trend", c.Health.VolumeTrend},
		{"product_adoption", c.Health.ProductAdoption},
	}
	for _, hw := range healthWeights {
		if hw.w < 0 {
			problems = append(problems, fmt.Sprintf("health_weights.%s: must not be negative", hw.name))
		}
	}

	oppSum := c.Opportunity.Value + c.Opportunity.Probability + c.Opportunity.Urgency
	if math.Abs(oppSum-1.0) > weightTolerance {
		problems = append(problems, fmt.Sprintf("opportunity_weights: must sum to 1.0, got %v", oppSum))
	}
	oppWeights := []struct {
		name string
		w    float64
	}{
		{"value", c.Opportunity.Value},
		{"probability", c.Opportunity.Probability},
		{"urgency", c.Opportunity.Urgency},
	}
	for _, ow := range oppWeights {
		if ow.w < 0 {
			problems = append(problems, fmt.Sprintf("opportunity_weights.%s: must not be negative", ow.name))
		}
	}

	problems = append(problems, validateBands(c.HealthBands)...)

	if c.Alerts.ChurnCritical <= c.Alerts.ChurnHigh || c.Alerts.ChurnHigh <= c.Alerts.ChurnMedium {
		problems = append(problems, "alerts: churn thresholds must be strictly ordered critical > high > medium")
	}
	if c.Alerts.SentimentHigh >= c.Alerts.SentimentMedium {
		problems = append(problems, "alerts: sentiment_high must be below sentiment_medium")
	}
	if c.Alerts.OpportunityMedium >= c.Alerts.OpportunityHigh || c.Alerts.OpportunityHigh >= c.Alerts.OpportunityCritical {
		problems = append(problems, "alerts: opportunity thresholds must be strictly ordered medium < high < critical")
	}

	if c.UrgencyHorizonDays <= 0 {
		problems = append(problems, "urgency_horizon_days: must be greater than 0")
	}

	if len(problems) > 0 {
		return &ConfigurationError{Problems: problems}
	}
	return nil
}

// validateBands checks that the band table covers [0, 100] exactly, with no
// gaps and no overlaps.
func validateBands(bands []Band) []string {
	if len(bands) == 0 {
		return []string{"health_bands: at least one band is required"}
	}

	sorted := make([]Band, len(bands))
	copy(sorted, bands)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Min < sorted[j].Min })

	var problems []string
	if sorted[0].Min != 0 {
		problems = append(problems, fmt.Sprintf("health_bands: coverage must start at 0, got %v", sorted[0].Min))
	}
	for i, b := range sorted {
		if b.Max <= b.Min {
			problems = append(problems, fmt.Sprintf("health_bands[%s]: max must be greater than min", b.Status))
		}
		if b.Status == "" {
			problems = append(problems, fmt.Sprintf("health_bands[%d]: status is required", i))
		}
		if i > 0 && b.Min != sorted[i-1].Max {
			problems = append(problems, fmt.Sprintf("health_bands: gap or overlap between %v and %v", sorted[i-1].Max, b.Min))
		}
	}
	if last := sorted[len(sorted)-1]; last.Max != 100 {
		problems = append(problems, fmt.Sprintf("health_bands: coverage must end at 100, got %v", last.Max))
	}
	return problems
}

// StatusFor maps a health score in [0, 100] to its band. Scores outside the
// range snap into the nearest edge band, keeping the function total.
func (c Config) StatusFor(score float64) domain.HealthStatus {
	var lowest, highest Band
	for _, b := range c.HealthBands {
		if score >= b.Min && (score < b.Max || (b.Max == 100 && score <= 100)) {
			return b.Status
		}
		if b.Min == 0 {
			lowest = b
		}
		if b.Max == 100 {
			highest = b
		}
	}
	if score < 0 {
		return lowest.Status
	}
	return highest.Status
}

// ChurnPriorityFor maps a churn risk score to its alert priority.
func (c Config) ChurnPriorityFor(risk float64) domain.AlertPriority {
	switch {
	case risk > c.Alerts.ChurnCritical:
		return domain.PriorityCritical
	case risk > c.Alerts.ChurnHigh:
		return domain.PriorityHigh
	case risk > c.Alerts.ChurnMedium:
		return domain.PriorityMedium
	default:
		return domain.PriorityLow
	}
}
