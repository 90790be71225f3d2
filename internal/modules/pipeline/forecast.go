package pipeline

import (
	"github.com/ashburn-young/cokedemo/internal/domain"
	"github.com/ashburn-young/cokedemo/pkg/numbers"
)

// ForecastCategory buckets open deals by close probability.
type ForecastCategory string

const (
	CategoryCommit   ForecastCategory = "Commit"
	CategoryBestCase ForecastCategory = "BestCase"
	CategoryPipeline ForecastCategory = "Pipeline"
	CategoryUpside   ForecastCategory = "Upside"
)

// Categories lists forecast categories from most to least certain.
var Categories = []ForecastCategory{
	CategoryCommit,
	CategoryBestCase,
	CategoryPipeline,
	CategoryUpside,
}

// CategoryFor maps a close probability to its forecast category.
func CategoryFor(probability float64) ForecastCategory {
	switch {
	case probability >= 75:
		return CategoryCommit
	case probability >= 50:
		return CategoryBestCase
	case probability >= 25:
		return CategoryPipeline
	default:
		return CategoryUpside
	}
}

// CategorySummary aggregates one forecast category.
type CategorySummary struct {
	Category      ForecastCategory `json:"category"`
	DealCount     int              `json:"deal_count"`
	TotalValue    float64          `json:"total_value"`
	WeightedValue float64          `json:"weighted_value"`
}

// StageSummary aggregates one pipeline stage.
type StageSummary struct {
	Stage         domain.PipelineStage `json:"stage"`
	DealCount     int                  `json:"deal_count"`
	TotalValue    float64              `json:"total_value"`
	WeightedValue float64              `json:"weighted_value"`
}

// Forecast is a probability-weighted view of the open pipeline. Closed deals
// are excluded: won deals are revenue, lost deals are history.
type Forecast struct {
	OpenDeals     int               `json:"open_deals"`
	TotalValue    float64           `json:"total_value"`
	WeightedValue float64           `json:"weighted_value"`
	ByCategory    []CategorySummary `json:"by_category"`
	ByStage       []StageSummary    `json:"by_stage"`
}

// BuildForecast aggregates open opportunities into a forecast. Output order
// is fixed: categories from Commit down, stages in pipeline order.
func BuildForecast(opportunities []domain.ScoredOpportunity) Forecast {
	byCategory := make(map[ForecastCategory]*CategorySummary)
	byStage := make(map[domain.PipelineStage]*StageSummary)

	forecast := Forecast{}
	for _, opp := range opportunities {
		if opp.Stage.Terminal() {
			continue
		}
		weighted := opp.Value * opp.Probability / 100

		forecast.OpenDeals++
		forecast.TotalValue += opp.Value
		forecast.WeightedValue += weighted

		cat := CategoryFor(opp.Probability)
		if byCategory[cat] == nil {
			byCategory[cat] = &CategorySummary{Category: cat}
		}
		byCategory[cat].DealCount++
		byCategory[cat].TotalValue += opp.Value
		byCategory[cat].WeightedValue += weighted

		if byStage[opp.Stage] == nil {
			byStage[opp.Stage] = &StageSummary{Stage: opp.Stage}
		}
		byStage[opp.Stage].DealCount++
		byStage[opp.Stage].TotalValue += opp.Value
		byStage[opp.Stage].WeightedValue += weighted
	}

	forecast.TotalValue = numbers.Round2(forecast.TotalValue)
	forecast.WeightedValue = numbers.Round2(forecast.WeightedValue)

	for _, cat := range Categories {
		if summary := byCategory[cat]; summary != nil {
			summary.TotalValue = numbers.Round2(summary.TotalValue)
			summary.WeightedValue = numbers.Round2(summary.WeightedValue)
			forecast.ByCategory = append(forecast.ByCategory, *summary)
		}
	}
	for _, stage := range domain.Stages {
		if summary := byStage[stage]; summary != nil {
			summary.TotalValue = numbers.Round2(summary.TotalValue)
			summary.WeightedValue = numbers.Round2(summary.WeightedValue)
			forecast.ByStage = append(forecast.ByStage, *summary)
		}
	}
	return forecast
}
