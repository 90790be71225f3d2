// Package analytics builds executive roll-ups over a scoring run.
package analytics

import (
	"github.com/ashburn-young/cokedemo/internal/domain"
	"github.com/ashburn-young/cokedemo/pkg/numbers"
	"gonum.org/v1/gonum/stat"
)

// StatusCount is one health band's account count.
type StatusCount struct {
	Status domain.HealthStatus `json:"status"`
	Count  int                 `json:"count"`
}

// Summary is the executive roll-up of one scoring run.
type Summary struct {
	AccountCount     int           `json:"account_count"`
	AvgHealthScore   float64       `json:"avg_health_score"`
	HealthScoreStdev float64       `json:"health_score_stdev"`
	ByStatus         []StatusCount `json:"by_status"`

	AtRiskAccounts int     `json:"at_risk_accounts"`
	TotalRevenue   float64 `json:"total_revenue"`
	AtRiskRevenue  float64 `json:"at_risk_revenue"`
	// ExpectedRevenueLoss weights each at-risk account's revenue by its
	// churn risk.
	ExpectedRevenueLoss float64 `json:"expected_revenue_loss"`

	OpenOpportunities int     `json:"open_opportunities"`
	OpenPipelineValue float64 `json:"open_pipeline_value"`

	InsightCount       int `json:"insight_count"`
	CriticalInsights   int `json:"critical_insights"`
	HighInsights       int `json:"high_insights"`
	ActionableAccounts int `json:"actionable_accounts"`
}

// statuses in display order, best band first.
var statuses = []domain.HealthStatus{
	domain.HealthExcellent,
	domain.HealthGood,
	domain.HealthFair,
	domain.HealthPoor,
	domain.HealthCritical,
}

// BuildSummary rolls a scored run up into portfolio-level aggregates. An
// account counts as at-risk when its churn priority is High or worse.
func BuildSummary(accounts []domain.ScoredAccount, opportunities []domain.ScoredOpportunity, insights []domain.Insight) Summary {
	summary := Summary{AccountCount: len(accounts)}

	byStatus := make(map[domain.HealthStatus]int)
	scores := make([]float64, 0, len(accounts))
	for _, acc := range accounts {
		scores = append(scores, acc.HealthScore)
		byStatus[acc.HealthStatus]++
		summary.TotalRevenue += acc.AnnualRevenue
		if acc.ChurnPriority >= domain.PriorityHigh {
			summary.AtRiskAccounts++
			summary.AtRiskRevenue += acc.AnnualRevenue
			summary.ExpectedRevenueLoss += acc.AnnualRevenue * acc.ChurnRiskScore / 100
		}
	}
	for _, status := range statuses {
		if count := byStatus[status]; count > 0 {
			summary.ByStatus = append(summary.ByStatus, StatusCount{Status: status, Count: count})
		}
	}

	if len(scores) > 0 {
		summary.AvgHealthScore = numbers.Round2(stat.Mean(scores, nil))
	}
	if len(scores) > 1 {
		summary.HealthScoreStdev = numbers.Round2(stat.StdDev(scores, nil))
	}

	for _, opp := range opportunities {
		if opp.Stage.Terminal() {
			continue
		}
		summary.OpenOpportunities++
		summary.OpenPipelineValue += opp.Value
	}

	subjects := make(map[string]struct{})
	for _, ins := range insights {
		summary.InsightCount++
		switch ins.Priority {
		case domain.PriorityCritical:
			summary.CriticalInsights++
		case domain.PriorityHigh:
			summary.HighInsights++
		}
		subjects[ins.SubjectID] = struct{}{}
	}
	summary.ActionableAccounts = len(subjects)

	summary.TotalRevenue = numbers.Round2(summary.TotalRevenue)
	summary.AtRiskRevenue = numbers.Round2(summary.AtRiskRevenue)
	summary.ExpectedRevenueLoss = numbers.Round2(summary.ExpectedRevenueLoss)
	summary.OpenPipelineValue = numbers.Round2(summary.OpenPipelineValue)
	return summary
}
