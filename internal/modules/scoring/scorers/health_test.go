package scorers

import (
	"errors"
	"math"
	"testing"

	"github.com/ashburn-young/cokedemo/internal/domain"
	"github.com/ashburn-young/cokedemo/internal/modules/scoring"
)

func validAccount() domain.Account {
	return domain.Account{
		ID:                     "ACC-0001",
		Name:                   "Metro Restaurant Group Inc",
		AnnualRevenue:          850000,
		PaymentTimeliness:      94.2,
		CommunicationSentiment: 78.5,
		OrderVolumeTrend:       8.7,
		ProductAdoptionRate:    65,
	}
}

func TestCalculateHealthScore(t *testing.T) {
	scorer := NewHealthScorer(scoring.Default())

	tests := []struct {
		name        string
		description string
		account     domain.Account
		wantScore   float64
		wantRisk    float64
	}{
		{
			name:        "Healthy account",
			account:     validAccount(),
			wantScore:   75.56, // 0.30*94.2 + 0.25*78.5 + 0.25*58.7 + 0.20*65
			wantRisk:    24.44,
			description: "Strong payments and positive trend land in the Good band",
		},
		{
			name: "All factors at 100",
			account: domain.Account{
				ID:                     "ACC-MAX",
				PaymentTimeliness:      100,
				CommunicationSentiment: 100,
				OrderVolumeTrend:       50,
				ProductAdoptionRate:    100,
			},
			wantScore:   100,
			wantRisk:    0,
			description: "Perfect factors should score exactly 100",
		},
		{
			name: "All factors at 0 with collapsing volume",
			account: domain.Account{
				ID:               "ACC-MIN",
				OrderVolumeTrend: -50,
			},
			wantScore:   0,
			wantRisk:    100,
			description: "Zero factors and a -50pp trend should score exactly 0",
		},
		{
			name: "Flat trend maps to neutral 50",
			account: domain.Account{
				ID:                     "ACC-FLAT",
				PaymentTimeliness:      80,
				CommunicationSentiment: 80,
				OrderVolumeTrend:       0,
				ProductAdoptionRate:    80,
			},
			wantScore:   72.5, // 24 + 20 + 12.5 + 16
			wantRisk:    27.5,
			description: "A 0pp trend contributes the neutral midpoint",
		},
		{
			name: "Trend saturates beyond +50pp",
			account: domain.Account{
				ID:               "ACC-SAT",
				OrderVolumeTrend: 200,
			},
			wantScore:   25, // only the trend component, capped at 100
			wantRisk:    75,
			description: "Trend swings beyond +/-50pp are capped, not extrapolated",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := scorer.Calculate(tt.account)
			if err != nil {
				t.Fatalf("Calculate() error = %v\nDescription: %s", err, tt.description)
			}

			if math.Abs(got.Score-tt.wantScore) > 0.01 {
				t.Errorf("Score = %v, want %v\nDescription: %s", got.Score, tt.wantScore, tt.description)
			}
			if math.Abs(got.ChurnRisk-tt.wantRisk) > 0.01 {
				t.Errorf("ChurnRisk = %v, want %v", got.ChurnRisk, tt.wantRisk)
			}

			if got.Score < 0 || got.Score > 100 {
				t.Errorf("Score %v out of range [0, 100]", got.Score)
			}
			if got.ChurnRisk < 0 || got.ChurnRisk > 100 {
				t.Errorf("ChurnRisk %v out of range [0, 100]", got.ChurnRisk)
			}
		})
	}
}

func TestCalculateHealthScoreDeterminism(t *testing.T) {
	scorer := NewHealthScorer(scoring.Default())
	acc := validAccount()

	first, err := scorer.Calculate(acc)
	if err != nil {
		t.Fatalf("Calculate() error = %v", err)
	}

	for i := 0; i < 10; i++ {
		again, err := scorer.Calculate(acc)
		if err != nil {
			t.Fatalf("Calculate() error = %v", err)
		}
		if again.Score != first.Score || again.ChurnRisk != first.ChurnRisk {
			t.Fatalf("run %d: got (%v, %v), want (%v, %v)", i, again.Score, again.ChurnRisk, first.Score, first.ChurnRisk)
		}
	}
}

func TestCalculateHealthScoreMonotonicity(t *testing.T) {
	scorer := NewHealthScorer(scoring.Default())

	prev := -1.0
	for timeliness := 0.0; timeliness <= 100; timeliness += 5 {
		acc := validAccount()
		acc.PaymentTimeliness = timeliness

		got, err := scorer.Calculate(acc)
		if err != nil {
			t.Fatalf("Calculate() error = %v", err)
		}
		if got.Score < prev {
			t.Fatalf("health score decreased from %v to %v when payment_timeliness rose to %v", prev, got.Score, timeliness)
		}
		prev = got.Score
	}
}

func TestCalculateHealthScorePrecondition(t *testing.T) {
	scorer := NewHealthScorer(scoring.Default())

	tests := []struct {
		name    string
		mutate  func(*domain.Account)
	}{
		{"negative percentage", func(a *domain.Account) { a.PaymentTimeliness = -5 }},
		{"percentage above 100", func(a *domain.Account) { a.CommunicationSentiment = 140 }},
		{"negative revenue", func(a *domain.Account) { a.AnnualRevenue = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			acc := validAccount()
			tt.mutate(&acc)

			_, err := scorer.Calculate(acc)
			if !errors.Is(err, scoring.ErrPreconditionViolated) {
				t.Errorf("Calculate() error = %v, want ErrPreconditionViolated", err)
			}
		})
	}
}
