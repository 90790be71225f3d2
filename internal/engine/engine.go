package engine

import (
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/ashburn-young/cokedemo/internal/domain"
	"github.com/ashburn-young/cokedemo/internal/modules/ingest"
	"github.com/ashburn-young/cokedemo/internal/modules/insights"
	"github.com/ashburn-young/cokedemo/internal/modules/scoring"
	"github.com/ashburn-young/cokedemo/internal/modules/scoring/scorers"
	"github.com/rs/zerolog"
)

// Batch is one scoring pass input: raw CRM records plus the reference time
// for urgency calculations. AsOf is part of the input on purpose, so a rerun
// over the same batch is reproducible.
type Batch struct {
	AsOf          time.Time
	Accounts      []ingest.RawAccount
	Opportunities []ingest.RawOpportunity
}

// Result is one scoring pass output. Per-record validation failures ride
// alongside the scored entities; they never abort the pass.
type Result struct {
	Accounts      []domain.ScoredAccount
	Opportunities []domain.ScoredOpportunity
	Insights      []domain.Insight
	Errors        []ingest.RecordError
}

// Engine runs the validate -> score -> classify -> emit pipeline. It holds
// no mutable state between runs: every pass is a pure function of its batch
// and the configuration the engine was built with.
type Engine struct {
	cfg        scoring.Config
	validator  *ingest.Validator
	health     *scorers.HealthScorer
	priority   *scorers.PriorityScorer
	classifier *insights.Classifier
	emitter    *insights.Emitter
	workers    int
	log        zerolog.Logger
}

// New creates an engine after validating the configuration. An invalid
// weight set or band table fails here, before any batch is accepted.
func New(cfg scoring.Config, summarizer insights.Summarizer, log zerolog.Logger) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	classifier := insights.NewClassifier(cfg)
	return &Engine{
		cfg:        cfg,
		validator:  ingest.NewValidator(),
		health:     scorers.NewHealthScorer(cfg),
		priority:   scorers.NewPriorityScorer(cfg),
		classifier: classifier,
		emitter:    insights.NewEmitter(classifier, summarizer, log),
		workers:    runtime.NumCPU(),
		log:        log.With().Str("module", "engine").Logger(),
	}, nil
}

// Run executes one scoring pass. Scoring is parallel and unordered; the
// ranked output order is re-established before anything is returned, so
// parallelism never leaks into the result.
func (e *Engine) Run(batch Batch) (*Result, error) {
	started := time.Now()

	validated := e.validator.ValidateBatch(batch.Accounts, batch.Opportunities)

	asOf := batch.AsOf
	if asOf.IsZero() {
		asOf = started.UTC()
	}

	scoredAccounts, err := e.scoreAccounts(validated.Accounts)
	if err != nil {
		return nil, err
	}

	scoredOpportunities, err := e.scoreOpportunities(validated.Opportunities, asOf)
	if err != nil {
		return nil, err
	}

	result := &Result{
		Accounts:      scoredAccounts,
		Opportunities: scoredOpportunities,
		Insights:      e.emitter.Emit(scoredAccounts, scoredOpportunities),
		Errors:        validated.Errors,
	}

	e.log.Info().
		Int("accounts", len(result.Accounts)).
		Int("opportunities", len(result.Opportunities)).
		Int("insights", len(result.Insights)).
		Int("rejected_records", len(result.Errors)).
		Dur("duration_ms", time.Since(started)).
		Msg("Scoring pass complete")

	return result, nil
}

// scoreAccounts scores each account independently across a worker pool.
// Workers write to their own index, so no locking is needed; output order is
// fixed afterwards by sorting on account ID.
func (e *Engine) scoreAccounts(accounts []domain.Account) ([]domain.ScoredAccount, error) {
	if len(accounts) == 0 {
		return nil, nil
	}

	scored := make([]domain.ScoredAccount, len(accounts))
	errs := make([]error, len(accounts))

	var wg sync.WaitGroup
	jobs := make(chan int)
	for w := 0; w < e.workerCount(len(accounts)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				acc := accounts[i]
				hs, err := e.health.Calculate(acc)
				if err != nil {
					errs[i] = err
					continue
				}
				scored[i] = domain.ScoredAccount{
					Account:        acc,
					HealthScore:    hs.Score,
					HealthStatus:   e.classifier.HealthStatus(hs.Score),
					ChurnRiskScore: hs.ChurnRisk,
					ChurnPriority:  e.classifier.ChurnPriority(hs.ChurnRisk),
					Components:     hs.Components,
				}
			}
		}()
	}
	for i := range accounts {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("account scoring: %w", err)
		}
	}

	sort.Slice(scored, func(i, j int) bool { return scored[i].ID < scored[j].ID })
	return scored, nil
}

// scoreOpportunities scores deals against the batch's maximum value and
// ranks them by the priority comparator.
func (e *Engine) scoreOpportunities(opportunities []domain.Opportunity, asOf time.Time) ([]domain.ScoredOpportunity, error) {
	if len(opportunities) == 0 {
		return nil, nil
	}

	batchMax := 0.0
	for _, opp := range opportunities {
		if opp.Value > batchMax {
			batchMax = opp.Value
		}
	}

	scored := make([]domain.ScoredOpportunity, len(opportunities))
	errs := make([]error, len(opportunities))

	var wg sync.WaitGroup
	jobs := make(chan int)
	for w := 0; w < e.workerCount(len(opportunities)); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				opp := opportunities[i]
				ps, err := e.priority.Calculate(opp, batchMax, asOf)
				if err != nil {
					errs[i] = err
					continue
				}
				scored[i] = domain.ScoredOpportunity{
					Opportunity:   opp,
					PriorityScore: ps.Score,
					Components:    ps.Components,
				}
			}
		}()
	}
	for i := range opportunities {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("opportunity scoring: %w", err)
		}
	}

	sort.Slice(scored, func(i, j int) bool { return scorers.Less(scored[i], scored[j]) })
	return scored, nil
}

func (e *Engine) workerCount(n int) int {
	if n < e.workers {
		return n
	}
	return e.workers
}
