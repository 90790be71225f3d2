package insights

import (
	"fmt"

	"github.com/ashburn-young/cokedemo/internal/domain"
)

// Summarizer produces narrative text for an insight. The scoring path stays
// deterministic, so any model-backed implementation lives behind this
// interface and is swapped in by the caller; the engine never calls a model
// itself.
type Summarizer interface {
	Summarize(insight domain.Insight) string
}

// TemplateSummarizer is the default deterministic implementation. Same
// insight, same sentence.
type TemplateSummarizer struct{}

// NewTemplateSummarizer creates the default summarizer.
func NewTemplateSummarizer() *TemplateSummarizer {
	return &TemplateSummarizer{}
}

// Summarize renders a fixed template for the insight kind.
func (s *TemplateSummarizer) Summarize(insight domain.Insight) string {
	switch insight.Kind {
	case domain.KindChurnRisk:
		return fmt.Sprintf("Account %s shows %s churn risk (%.0f/100); schedule retention outreach.",
			insight.SubjectID, insight.Priority, insight.ScoreInputs["churn_risk_score"])
	case domain.KindSentimentAlert:
		return fmt.Sprintf("Communication sentiment for account %s has dropped to %.0f/100; review recent interactions.",
			insight.SubjectID, insight.ScoreInputs["communication_sentiment"])
	case domain.KindCompetitiveThreat:
		return fmt.Sprintf("Account %s faces high competitive pressure while health is %.0f/100; prepare a defense plan.",
			insight.SubjectID, insight.ScoreInputs["health_score"])
	case domain.KindGrowthOpportunity:
		return fmt.Sprintf("Opportunity %s scores %.0f/100 on priority; advance it ahead of lower-ranked deals.",
			insight.SubjectID, insight.ScoreInputs["priority_score"])
	case domain.KindActionRecommendation:
		return fmt.Sprintf("Account %s raises multiple concerns this pass; coordinate a single action plan with the assigned rep.",
			insight.SubjectID)
	default:
		return fmt.Sprintf("Review %s.", insight.SubjectID)
	}
}
