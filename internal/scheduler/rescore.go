package scheduler

import (
	"time"

	"github.com/ashburn-young/cokedemo/internal/modules/feed"
	"github.com/rs/zerolog"
)

// RescoreJob refreshes the CRM feed and runs a full scoring pass on a
// schedule, so the served run never goes stale.
type RescoreJob struct {
	service *feed.Service
	log     zerolog.Logger
}

// NewRescoreJob creates a new rescore job.
func NewRescoreJob(service *feed.Service, log zerolog.Logger) *RescoreJob {
	return &RescoreJob{
		service: service,
		log:     log.With().Str("job", "rescore").Logger(),
	}
}

// Name returns the job name
func (j *RescoreJob) Name() string {
	return "rescore"
}

// Run refreshes the feed once.
func (j *RescoreJob) Run() error {
	run, err := j.service.Refresh(time.Now().UTC())
	if err != nil {
		return err
	}

	j.log.Info().Str("run_id", run.ID).Msg("Scheduled rescore complete")
	return nil
}
