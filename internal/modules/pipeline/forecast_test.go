package pipeline

import (
	"testing"
	"time"

	"github.com/ashburn-young/cokedemo/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func opp(id string, value, probability float64, stage domain.PipelineStage) domain.ScoredOpportunity {
	return domain.ScoredOpportunity{
		Opportunity: domain.Opportunity{
			ID:                id,
			AccountID:         "ACC-1",
			Value:             value,
			Probability:       probability,
			Stage:             stage,
			ExpectedCloseDate: time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
		},
	}
}

func TestCategoryFor(t *testing.T) {
	tests := []struct {
		probability float64
		want        ForecastCategory
	}{
		{90, CategoryCommit},
		{75, CategoryCommit},
		{74.9, CategoryBestCase},
		{50, CategoryBestCase},
		{49.9, CategoryPipeline},
		{25, CategoryPipeline},
		{24.9, CategoryUpside},
		{0, CategoryUpside},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, CategoryFor(tc.probability), "probability %v", tc.probability)
	}
}

func TestBuildForecast_WeightsAndBuckets(t *testing.T) {
	forecast := BuildForecast([]domain.ScoredOpportunity{
		opp("OPP-1", 100000, 80, domain.StageNegotiation),
		opp("OPP-2", 200000, 50, domain.StageProposal),
		opp("OPP-3", 50000, 10, domain.StageProspecting),
	})

	assert.Equal(t, 3, forecast.OpenDeals)
	assert.InDelta(t, 350000, forecast.TotalValue, 0.001)
	// 80000 + 100000 + 5000
	assert.InDelta(t, 185000, forecast.WeightedValue, 0.001)

	require.Len(t, forecast.ByCategory, 3)
	assert.Equal(t, CategoryCommit, forecast.ByCategory[0].Category)
	assert.InDelta(t, 80000, forecast.ByCategory[0].WeightedValue, 0.001)
	assert.Equal(t, CategoryBestCase, forecast.ByCategory[1].Category)
	assert.Equal(t, CategoryUpside, forecast.ByCategory[2].Category)

	require.Len(t, forecast.ByStage, 3)
	assert.Equal(t, domain.StageProspecting, forecast.ByStage[0].Stage)
	assert.Equal(t, domain.StageProposal, forecast.ByStage[1].Stage)
	assert.Equal(t, domain.StageNegotiation, forecast.ByStage[2].Stage)
}

func TestBuildForecast_ExcludesClosedDeals(t *testing.T) {
	forecast := BuildForecast([]domain.ScoredOpportunity{
		opp("OPP-OPEN", 100000, 60, domain.StageQualification),
		opp("OPP-WON", 500000, 100, domain.StageClosedWon),
		opp("OPP-LOST", 300000, 0, domain.StageClosedLost),
	})

	assert.Equal(t, 1, forecast.OpenDeals)
	assert.InDelta(t, 100000, forecast.TotalValue, 0.001)
	assert.InDelta(t, 60000, forecast.WeightedValue, 0.001)
	assert.Len(t, forecast.ByStage, 1)
}

func TestBuildForecast_Empty(t *testing.T) {
	forecast := BuildForecast(nil)
	assert.Equal(t, 0, forecast.OpenDeals)
	assert.Zero(t, forecast.TotalValue)
	assert.Empty(t, forecast.ByCategory)
	assert.Empty(t, forecast.ByStage)
}
