package scorers

import (
	"errors"
	"math"
	"sort"
	"testing"
	"time"

	"github.com/ashburn-young/cokedemo/internal/domain"
	"github.com/ashburn-young/cokedemo/internal/modules/scoring"
)

var asOf = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func opp(id string, value, probability float64, daysToClose int) domain.Opportunity {
	return domain.Opportunity{
		ID:                id,
		AccountID:         "ACC-0001",
		Value:             value,
		Probability:       probability,
		Stage:             domain.StageProposal,
		ExpectedCloseDate: asOf.AddDate(0, 0, daysToClose),
	}
}

func TestCalculatePriorityScore(t *testing.T) {
	scorer := NewPriorityScorer(scoring.Default())

	tests := []struct {
		name        string
		description string
		opportunity domain.Opportunity
		batchMax    float64
		wantScore   float64
	}{
		{
			name:        "Max value closing soon",
			opportunity: opp("OPP-001", 500000, 78, 5),
			batchMax:    500000,
			// value 100*0.45 + prob 78*0.35 + urgency 97.22*0.20
			wantScore:   91.74,
			description: "Batch-max value with near-term close should score at the top",
		},
		{
			name:        "Overdue deal has full urgency",
			opportunity: opp("OPP-002", 100000, 50, -10),
			batchMax:    500000,
			// value 20*0.45 + prob 50*0.35 + urgency 100*0.20
			wantScore:   46.5,
			description: "Past-due close dates score urgency 100, not negative",
		},
		{
			name:        "Far-future deal has zero urgency",
			opportunity: opp("OPP-003", 500000, 90, 365),
			batchMax:    500000,
			// value 100*0.45 + prob 90*0.35 + urgency 0
			wantScore:   76.5,
			description: "Deals past the 180-day horizon get no urgency boost",
		},
		{
			name:        "Zero-value batch has no value signal",
			opportunity: opp("OPP-004", 0, 60, 90),
			batchMax:    0,
			// value 0 + prob 60*0.35 + urgency 50*0.20
			wantScore:   31,
			description: "When every deal in the batch is worth 0 the value component is 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := scorer.Calculate(tt.opportunity, tt.batchMax, asOf)
			if err != nil {
				t.Fatalf("Calculate() error = %v\nDescription: %s", err, tt.description)
			}

			if math.Abs(got.Score-tt.wantScore) > 0.05 {
				t.Errorf("Score = %v, want ~%v\nDescription: %s", got.Score, tt.wantScore, tt.description)
			}
			if got.Score < 0 || got.Score > 100 {
				t.Errorf("Score %v out of range [0, 100]", got.Score)
			}
		})
	}
}

func TestMaxValueDealRanksFirst(t *testing.T) {
	scorer := NewPriorityScorer(scoring.Default())

	batch := []domain.Opportunity{
		opp("OPP-A", 120000, 90, 30),
		opp("OPP-B", 500000, 78, 5),
		opp("OPP-C", 80000, 95, 10),
		opp("OPP-D", 350000, 60, 60),
	}

	var scored []domain.ScoredOpportunity
	for _, o := range batch {
		result, err := scorer.Calculate(o, 500000, asOf)
		if err != nil {
			t.Fatalf("Calculate(%s) error = %v", o.ID, err)
		}
		scored = append(scored, domain.ScoredOpportunity{Opportunity: o, PriorityScore: result.Score, Components: result.Components})
	}

	sort.Slice(scored, func(i, j int) bool { return Less(scored[i], scored[j]) })

	if scored[0].ID != "OPP-B" {
		t.Errorf("top-ranked = %s (%v), want OPP-B (batch max value, closing in 5 days)", scored[0].ID, scored[0].PriorityScore)
	}
}

func TestLessTieBreaks(t *testing.T) {
	close1 := asOf.AddDate(0, 0, 30)
	close2 := asOf.AddDate(0, 0, 60)

	mk := func(id string, score, value float64, close time.Time) domain.ScoredOpportunity {
		return domain.ScoredOpportunity{
			Opportunity:   domain.Opportunity{ID: id, Value: value, ExpectedCloseDate: close},
			PriorityScore: score,
		}
	}

	tests := []struct {
		name      string
		a, b      domain.ScoredOpportunity
		wantAless bool
	}{
		{"higher score wins", mk("x", 80, 1, close1), mk("y", 70, 999, close1), true},
		{"equal score, higher value wins", mk("x", 80, 200, close1), mk("y", 80, 100, close1), true},
		{"equal score and value, earlier close wins", mk("x", 80, 100, close1), mk("y", 80, 100, close2), true},
		{"full tie falls back to ID", mk("a", 80, 100, close1), mk("b", 80, 100, close1), true},
		{"full tie reversed", mk("b", 80, 100, close1), mk("a", 80, 100, close1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Less(tt.a, tt.b); got != tt.wantAless {
				t.Errorf("Less(%s, %s) = %v, want %v", tt.a.ID, tt.b.ID, got, tt.wantAless)
			}
		})
	}
}

func TestCalculatePriorityScorePrecondition(t *testing.T) {
	scorer := NewPriorityScorer(scoring.Default())

	bad := opp("OPP-BAD", 1000, 120, 30)
	if _, err := scorer.Calculate(bad, 1000, asOf); !errors.Is(err, scoring.ErrPreconditionViolated) {
		t.Errorf("probability out of range: error = %v, want ErrPreconditionViolated", err)
	}

	badStage := opp("OPP-STG", 1000, 50, 30)
	badStage.Stage = "Daydreaming"
	if _, err := scorer.Calculate(badStage, 1000, asOf); !errors.Is(err, scoring.ErrPreconditionViolated) {
		t.Errorf("invalid stage: error = %v, want ErrPreconditionViolated", err)
	}
}
