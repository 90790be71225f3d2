package insights

import (
	"sort"

	"github.com/ashburn-young/cokedemo/internal/domain"
	"github.com/ashburn-young/cokedemo/pkg/numbers"
	"github.com/rs/zerolog"
)

// Emitter turns classified entities into a ranked, deduplicated insight
// list. It emits at most one insight per (subject, kind) per pass; when
// several concerns target the same subject they merge into a single
// ActionRecommendation instead of stacking alerts on one account.
type Emitter struct {
	classifier *Classifier
	summarizer Summarizer
	log        zerolog.Logger
}

// NewEmitter creates a new insight emitter. summarizer may be nil, in which
// case insights carry no narrative summary.
func NewEmitter(classifier *Classifier, summarizer Summarizer, log zerolog.Logger) *Emitter {
	return &Emitter{
		classifier: classifier,
		summarizer: summarizer,
		log:        log.With().Str("module", "insights").Logger(),
	}
}

// subjectKey identifies a merge subject. Account and opportunity IDs live in
// separate namespaces: a deal sharing its owner's ID must not merge with it.
type subjectKey struct {
	entity string
	id     string
}

// Emit generates the pass's insights. Output is deterministic: unchanged
// input produces an identical slice, in identical order.
func (e *Emitter) Emit(accounts []domain.ScoredAccount, opportunities []domain.ScoredOpportunity) []domain.Insight {
	bySubject := make(map[subjectKey][]domain.Insight)
	var subjects []subjectKey

	add := func(entity string, ins domain.Insight) {
		key := subjectKey{entity: entity, id: ins.SubjectID}
		if _, ok := bySubject[key]; !ok {
			subjects = append(subjects, key)
		}
		bySubject[key] = append(bySubject[key], ins)
	}

	for _, acc := range accounts {
		for _, concern := range e.accountConcerns(acc) {
			add("account", concern)
		}
	}
	for _, opp := range opportunities {
		if concern, ok := e.opportunityConcern(opp); ok {
			add("opportunity", concern)
		}
	}

	insights := make([]domain.Insight, 0, len(subjects))
	for _, subject := range subjects {
		insights = append(insights, mergeConcerns(bySubject[subject]))
	}

	if e.summarizer != nil {
		for i := range insights {
			insights[i].Summary = e.summarizer.Summarize(insights[i])
		}
	}

	SortInsights(insights)

	e.log.Debug().
		Int("subjects", len(subjects)).
		Int("insights", len(insights)).
		Msg("Insights emitted")

	return insights
}

// accountConcerns collects every concern a scored account raises.
func (e *Emitter) accountConcerns(acc domain.ScoredAccount) []domain.Insight {
	var concerns []domain.Insight

	inputs := func(extra map[string]float64) map[string]float64 {
		snapshot := map[string]float64{
			"health_score":     acc.HealthScore,
			"churn_risk_score": acc.ChurnRiskScore,
		}
		for k, v := range acc.Components {
			snapshot[k] = v
		}
		for k, v := range extra {
			snapshot[k] = v
		}
		return snapshot
	}

	if acc.ChurnPriority > domain.PriorityLow {
		concerns = append(concerns, domain.Insight{
			SubjectID:   acc.ID,
			Kind:        domain.KindChurnRisk,
			Priority:    acc.ChurnPriority,
			Confidence:  numbers.Round3(acc.ChurnRiskScore / 100),
			ScoreInputs: inputs(nil),
		})
	}

	if priority, ok := e.classifier.SentimentPriority(acc.CommunicationSentiment); ok {
		concerns = append(concerns, domain.Insight{
			SubjectID:   acc.ID,
			Kind:        domain.KindSentimentAlert,
			Priority:    priority,
			Confidence:  numbers.Round3((100 - acc.CommunicationSentiment) / 100),
			ScoreInputs: inputs(nil),
		})
	}

	if acc.CompetitiveThreat == domain.ThreatHigh && belowGood(acc.HealthStatus) {
		priority := domain.PriorityMedium
		if acc.HealthStatus == domain.HealthPoor || acc.HealthStatus == domain.HealthCritical {
			priority = domain.PriorityHigh
		}
		concerns = append(concerns, domain.Insight{
			SubjectID: acc.ID,
			Kind:      domain.KindCompetitiveThreat,
			Priority:  priority,
			// Flag-derived, not scored: confidence is fixed below scored concerns.
			Confidence:  0.6,
			ScoreInputs: inputs(nil),
		})
	}

	return concerns
}

// opportunityConcern raises a growth concern for open opportunities whose
// priority score clears the alerting floor. Closed deals never alert.
func (e *Emitter) opportunityConcern(opp domain.ScoredOpportunity) (domain.Insight, bool) {
	if opp.Stage.Terminal() {
		return domain.Insight{}, false
	}

	priority, ok := e.classifier.OpportunityPriority(opp.PriorityScore)
	if !ok {
		return domain.Insight{}, false
	}

	snapshot := map[string]float64{"priority_score": opp.PriorityScore}
	for k, v := range opp.Components {
		snapshot[k] = v
	}

	return domain.Insight{
		SubjectID:   opp.ID,
		Kind:        domain.KindGrowthOpportunity,
		Priority:    priority,
		Confidence:  numbers.Round3(opp.PriorityScore / 100),
		ScoreInputs: snapshot,
	}, true
}

// mergeConcerns collapses multiple concerns about one subject into a single
// ActionRecommendation carrying the maximum priority and confidence and the
// union of score inputs. A single concern passes through unchanged.
func mergeConcerns(concerns []domain.Insight) domain.Insight {
	if len(concerns) == 1 {
		return concerns[0]
	}

	merged := domain.Insight{
		SubjectID:   concerns[0].SubjectID,
		Kind:        domain.KindActionRecommendation,
		ScoreInputs: make(map[string]float64),
	}
	for _, c := range concerns {
		if c.Priority > merged.Priority {
			merged.Priority = c.Priority
		}
		if c.Confidence > merged.Confidence {
			merged.Confidence = c.Confidence
		}
		for k, v := range c.ScoreInputs {
			merged.ScoreInputs[k] = v
		}
	}
	return merged
}

// SortInsights orders insights by priority descending, confidence
// descending, then subject ID ascending. The comparator is a total order, so
// sorting an already-sorted list is a no-op.
func SortInsights(insights []domain.Insight) {
	sort.Slice(insights, func(i, j int) bool {
		a, b := insights[i], insights[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		return a.SubjectID < b.SubjectID
	})
}
