// Package scheduler runs the periodic content resync.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

var specParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// ValidateSpec reports whether spec is a cron expression or descriptor
// such as "@every 10m".
func ValidateSpec(spec string) error {
	if _, err := specParser.Parse(spec); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", spec, err)
	}
	return nil
}

// Job is one resync run.
type Job func(ctx context.Context) error

// Scheduler triggers a Job on a cron schedule. Overlapping runs are skipped.
type Scheduler struct {
	cron   *cron.Cron
	spec   string
	job    Job
	logger *slog.Logger
}

// New creates a scheduler for job on spec.
func New(spec string, job Job, logger *slog.Logger) (*Scheduler, error) {
	if err := ValidateSpec(spec); err != nil {
		return nil, err
	}
	return &Scheduler{
		cron:   cron.New(cron.WithParser(specParser), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		spec:   spec,
		job:    job,
		logger: logger,
	}, nil
}

// Run schedules the job and blocks until ctx is cancelled, then waits for a
// running job to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		if err := s.job(ctx); err != nil {
			s.logger.Error("scheduler: resync failed", slog.String("error", err.Error()))
			return
		}
		s.logger.Debug("scheduler: resync done")
	})
	if err != nil {
		return fmt.Errorf("scheduler: add job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("scheduler: started", slog.String("spec", s.spec))

	<-ctx.Done()
	stopped := s.cron.Stop()
	<-stopped.Done()
	s.logger.Info("scheduler: stopped")
	return nil
}
