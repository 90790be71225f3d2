package insights

import (
	"reflect"
	"testing"

	"github.com/ashburn-young/cokedemo/internal/domain"
	"github.com/ashburn-young/cokedemo/internal/modules/scoring"
	"github.com/rs/zerolog"
)

func newTestEmitter() *Emitter {
	cls := NewClassifier(scoring.Default())
	return NewEmitter(cls, NewTemplateSummarizer(), zerolog.Nop())
}

func scoredAccount(id string, health, risk float64, priority domain.AlertPriority) domain.ScoredAccount {
	return domain.ScoredAccount{
		Account: domain.Account{
			ID:                     id,
			CommunicationSentiment: 70,
		},
		HealthScore:    health,
		HealthStatus:   scoring.Default().StatusFor(health),
		ChurnRiskScore: risk,
		ChurnPriority:  priority,
		Components: map[string]float64{
			"communication_sentiment": 70,
		},
	}
}

func TestEmit_ChurnRiskAlert(t *testing.T) {
	e := newTestEmitter()

	acc := scoredAccount("ACC-RISK", 13, 87, domain.PriorityCritical)
	insights := e.Emit([]domain.ScoredAccount{acc}, nil)

	if len(insights) != 1 {
		t.Fatalf("got %d insights, want 1", len(insights))
	}
	got := insights[0]
	if got.Kind != domain.KindChurnRisk {
		t.Errorf("Kind = %s, want ChurnRisk", got.Kind)
	}
	if got.Priority != domain.PriorityCritical {
		t.Errorf("Priority = %s, want Critical", got.Priority)
	}
	if got.Confidence != 0.87 {
		t.Errorf("Confidence = %v, want 0.87", got.Confidence)
	}
	if got.ScoreInputs["churn_risk_score"] != 87 {
		t.Errorf("score_inputs missing churn_risk_score snapshot: %v", got.ScoreInputs)
	}
	if got.Summary == "" {
		t.Error("expected a narrative summary")
	}
}

func TestEmit_LowRiskEmitsNothing(t *testing.T) {
	e := newTestEmitter()

	acc := scoredAccount("ACC-FINE", 85, 15, domain.PriorityLow)
	insights := e.Emit([]domain.ScoredAccount{acc}, nil)

	if len(insights) != 0 {
		t.Fatalf("healthy account produced %d insights, want 0", len(insights))
	}
}

func TestEmit_MergesConcernsPerSubject(t *testing.T) {
	e := newTestEmitter()

	// High churn risk AND poor sentiment: one merged recommendation, not two
	// alerts about the same account.
	acc := scoredAccount("ACC-MULTI", 25, 75, domain.PriorityHigh)
	acc.CommunicationSentiment = 20
	acc.Components["communication_sentiment"] = 20

	insights := e.Emit([]domain.ScoredAccount{acc}, nil)

	if len(insights) != 1 {
		t.Fatalf("got %d insights, want 1 merged insight", len(insights))
	}
	got := insights[0]
	if got.Kind != domain.KindActionRecommendation {
		t.Errorf("Kind = %s, want ActionRecommendation", got.Kind)
	}
	if got.Priority != domain.PriorityHigh {
		t.Errorf("Priority = %s, want High (max of merged concerns)", got.Priority)
	}
	// Union of snapshots: churn inputs and sentiment both present.
	if _, ok := got.ScoreInputs["churn_risk_score"]; !ok {
		t.Error("merged score_inputs missing churn_risk_score")
	}
	if got.ScoreInputs["communication_sentiment"] != 20 {
		t.Errorf("merged score_inputs sentiment = %v, want 20", got.ScoreInputs["communication_sentiment"])
	}
}

func TestEmit_GrowthOpportunity(t *testing.T) {
	e := newTestEmitter()

	open := domain.ScoredOpportunity{
		Opportunity:   domain.Opportunity{ID: "OPP-HOT", Stage: domain.StageNegotiation},
		PriorityScore: 91,
		Components:    map[string]float64{"urgency": 97},
	}
	closed := domain.ScoredOpportunity{
		Opportunity:   domain.Opportunity{ID: "OPP-WON", Stage: domain.StageClosedWon},
		PriorityScore: 95,
	}
	quiet := domain.ScoredOpportunity{
		Opportunity:   domain.Opportunity{ID: "OPP-COLD", Stage: domain.StageProspecting},
		PriorityScore: 30,
	}

	insights := e.Emit(nil, []domain.ScoredOpportunity{open, closed, quiet})

	if len(insights) != 1 {
		t.Fatalf("got %d insights, want 1 (closed and low-score deals never alert)", len(insights))
	}
	got := insights[0]
	if got.SubjectID != "OPP-HOT" || got.Kind != domain.KindGrowthOpportunity {
		t.Errorf("got %s/%s, want OPP-HOT/GrowthOpportunity", got.SubjectID, got.Kind)
	}
	if got.Priority != domain.PriorityCritical {
		t.Errorf("Priority = %s, want Critical for score >= 90", got.Priority)
	}
}

func TestEmit_AccountAndOpportunitySharingAnIDNeverMerge(t *testing.T) {
	e := newTestEmitter()

	acc := scoredAccount("X-1", 13, 87, domain.PriorityCritical)
	opp := domain.ScoredOpportunity{
		Opportunity:   domain.Opportunity{ID: "X-1", Stage: domain.StageNegotiation},
		PriorityScore: 91,
		Components:    map[string]float64{"urgency": 97},
	}

	insights := e.Emit([]domain.ScoredAccount{acc}, []domain.ScoredOpportunity{opp})

	if len(insights) != 2 {
		t.Fatalf("got %d insights, want 2 separate insights for distinct entities", len(insights))
	}
	kinds := map[domain.InsightKind]bool{}
	for _, ins := range insights {
		if ins.SubjectID != "X-1" {
			t.Errorf("SubjectID = %s, want X-1", ins.SubjectID)
		}
		if ins.Kind == domain.KindActionRecommendation {
			t.Error("cross-entity concerns must not merge into an ActionRecommendation")
		}
		kinds[ins.Kind] = true
	}
	if !kinds[domain.KindChurnRisk] || !kinds[domain.KindGrowthOpportunity] {
		t.Errorf("got kinds %v, want ChurnRisk and GrowthOpportunity", kinds)
	}
}

func TestEmit_RankingOrder(t *testing.T) {
	e := newTestEmitter()

	accounts := []domain.ScoredAccount{
		scoredAccount("B", 35, 65, domain.PriorityHigh),
		scoredAccount("A", 35, 65, domain.PriorityHigh),
		scoredAccount("C", 10, 90, domain.PriorityCritical),
		scoredAccount("D", 50, 50, domain.PriorityMedium),
	}

	insights := e.Emit(accounts, nil)

	var order []string
	for _, ins := range insights {
		order = append(order, ins.SubjectID)
	}
	// Critical first; equal priority+confidence ties resolve by subject ID.
	want := []string{"C", "A", "B", "D"}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("ranking order = %v, want %v", order, want)
	}
}

func TestEmit_RankingIsStable(t *testing.T) {
	e := newTestEmitter()

	accounts := []domain.ScoredAccount{
		scoredAccount("ACC-1", 30, 70, domain.PriorityHigh),
		scoredAccount("ACC-2", 12, 88, domain.PriorityCritical),
		scoredAccount("ACC-3", 45, 55, domain.PriorityMedium),
	}

	insights := e.Emit(accounts, nil)
	resorted := make([]domain.Insight, len(insights))
	copy(resorted, insights)
	SortInsights(resorted)

	if !reflect.DeepEqual(insights, resorted) {
		t.Error("re-sorting an already-ranked insight list changed the order")
	}
}

func TestEmit_Deterministic(t *testing.T) {
	e := newTestEmitter()

	accounts := []domain.ScoredAccount{
		scoredAccount("ACC-1", 30, 70, domain.PriorityHigh),
		scoredAccount("ACC-2", 12, 88, domain.PriorityCritical),
	}
	opportunities := []domain.ScoredOpportunity{
		{
			Opportunity:   domain.Opportunity{ID: "OPP-1", Stage: domain.StageProposal},
			PriorityScore: 82,
			Components:    map[string]float64{"probability": 65},
		},
	}

	first := e.Emit(accounts, opportunities)
	for i := 0; i < 5; i++ {
		again := e.Emit(accounts, opportunities)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d: insights differ from first pass", i)
		}
	}
}
