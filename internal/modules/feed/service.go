package feed

import (
	"time"

	"github.com/ashburn-young/cokedemo/internal/database/repositories"
	"github.com/ashburn-young/cokedemo/internal/engine"
	"github.com/ashburn-young/cokedemo/internal/events"
	"github.com/ashburn-young/cokedemo/internal/services"
	"github.com/rs/zerolog"
)

// Service refreshes the CRM feed: it generates a seeded batch and hands it
// to the run service for scoring and persistence.
type Service struct {
	generator *Generator
	runs      *services.RunService
	events    *events.Manager
	log       zerolog.Logger
}

// NewService creates a feed service.
func NewService(generator *Generator, runs *services.RunService, eventManager *events.Manager, log zerolog.Logger) *Service {
	return &Service{
		generator: generator,
		runs:      runs,
		events:    eventManager,
		log:       log.With().Str("service", "feed").Logger(),
	}
}

// Refresh generates a fresh batch and runs a full scoring pass over it.
func (s *Service) Refresh(asOf time.Time) (*repositories.Run, error) {
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}

	rawAccounts, rawOpportunities := s.generator.Generate(asOf)

	run, _, err := s.runs.Execute(engine.Batch{
		AsOf:          asOf,
		Accounts:      rawAccounts,
		Opportunities: rawOpportunities,
	}, "feed")
	if err != nil {
		return nil, err
	}

	s.events.Emit(events.FeedRefreshed, "feed", map[string]interface{}{
		"run_id":        run.ID,
		"accounts":      run.AccountCount,
		"opportunities": run.OpportunityCount,
	})

	s.log.Info().
		Str("run_id", run.ID).
		Int("accounts", run.AccountCount).
		Int("opportunities", run.OpportunityCount).
		Int("insights", run.InsightCount).
		Int("rejected", run.RejectedCount).
		Msg("Feed refreshed")

	return run, nil
}
