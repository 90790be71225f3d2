// Package services holds orchestration that spans modules.
package services

import (
	"fmt"
	"time"

	"github.com/ashburn-young/cokedemo/internal/database"
	"github.com/ashburn-young/cokedemo/internal/database/repositories"
	"github.com/ashburn-young/cokedemo/internal/engine"
	"github.com/ashburn-young/cokedemo/internal/events"
	"github.com/ashburn-young/cokedemo/internal/modules/accounts"
	"github.com/ashburn-young/cokedemo/internal/modules/insights"
	"github.com/ashburn-young/cokedemo/internal/modules/pipeline"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RunService executes a scoring pass and persists the whole run atomically.
// It is the single write path: the scheduled feed refresh and ad-hoc API
// runs both land here.
type RunService struct {
	engine      *engine.Engine
	db          *database.DB
	runRepo     *repositories.RunRepository
	accountRepo *accounts.Repository
	oppRepo     *pipeline.Repository
	insightRepo *insights.Repository
	events      *events.Manager
	log         zerolog.Logger
}

// NewRunService creates a run service.
func NewRunService(
	eng *engine.Engine,
	db *database.DB,
	runRepo *repositories.RunRepository,
	accountRepo *accounts.Repository,
	oppRepo *pipeline.Repository,
	insightRepo *insights.Repository,
	eventManager *events.Manager,
	log zerolog.Logger,
) *RunService {
	return &RunService{
		engine:      eng,
		db:          db,
		runRepo:     runRepo,
		accountRepo: accountRepo,
		oppRepo:     oppRepo,
		insightRepo: insightRepo,
		events:      eventManager,
		log:         log.With().Str("service", "runs").Logger(),
	}
}

// Execute scores a batch and persists the result under a fresh run ID. The
// run ID is the only non-deterministic output of a pass.
func (s *RunService) Execute(batch engine.Batch, source string) (*repositories.Run, *engine.Result, error) {
	asOf := batch.AsOf
	if asOf.IsZero() {
		asOf = time.Now().UTC()
		batch.AsOf = asOf
	}

	s.events.Emit(events.ScoringRunStarted, source, map[string]interface{}{
		"as_of": asOf.Format(time.RFC3339),
	})

	result, err := s.engine.Run(batch)
	if err != nil {
		s.events.EmitError(source, err, map[string]interface{}{"as_of": asOf.Format(time.RFC3339)})
		return nil, nil, fmt.Errorf("scoring pass failed: %w", err)
	}

	if len(result.Errors) > 0 {
		s.events.Emit(events.RecordsRejected, source, map[string]interface{}{
			"rejected": len(result.Errors),
		})
	}

	run := repositories.Run{
		ID:               uuid.NewString(),
		RunAt:            asOf,
		Source:           source,
		AccountCount:     len(result.Accounts),
		OpportunityCount: len(result.Opportunities),
		InsightCount:     len(result.Insights),
		RejectedCount:    len(result.Errors),
	}

	if err := s.persist(run, result); err != nil {
		s.events.EmitError(source, err, map[string]interface{}{"run_id": run.ID})
		return nil, nil, err
	}

	s.events.Emit(events.ScoringRunCompleted, source, map[string]interface{}{
		"run_id":        run.ID,
		"accounts":      run.AccountCount,
		"opportunities": run.OpportunityCount,
		"insights":      run.InsightCount,
		"rejected":      run.RejectedCount,
	})

	return &run, result, nil
}

// persist writes the whole run in one transaction, so readers never observe
// a half-written run.
func (s *RunService) persist(run repositories.Run, result *engine.Result) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := s.runRepo.Insert(tx, run); err != nil {
		return err
	}
	if err := s.accountRepo.SaveRun(tx, run.ID, result.Accounts); err != nil {
		return err
	}
	if err := s.oppRepo.SaveRun(tx, run.ID, result.Opportunities); err != nil {
		return err
	}
	if err := s.insightRepo.SaveRun(tx, run.ID, result.Insights); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run %s: %w", run.ID, err)
	}
	return nil
}
