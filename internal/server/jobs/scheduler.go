// Package jobs runs the server's periodic maintenance tasks on a gocron
// scheduler.
package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/studyvault/internal/common"
	"github.com/dmitrijs2005/studyvault/internal/logging"
	"github.com/go-co-op/gocron/v2"
)

// Task is one run of a periodic job.
type Task func(ctx context.Context) error

// Scheduler runs named tasks at fixed intervals. A task never overlaps with
// itself; a run that is due while the previous one is still going is
// rescheduled.
type Scheduler struct {
	cron   gocron.Scheduler
	logger logging.Logger

	mu   sync.Mutex
	jobs map[string]gocron.Job
}

func NewScheduler(logger logging.Logger) (*Scheduler, error) {
	cron, err := gocron.NewScheduler(gocron.WithLocation(time.UTC))
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	return &Scheduler{cron: cron, logger: logger, jobs: make(map[string]gocron.Job)}, nil
}

// Register adds task under name, to run every interval with ctx. Task
// errors are logged and do not stop the schedule.
func (s *Scheduler) Register(ctx context.Context, name string, every time.Duration, task Task) error {
	if every <= 0 {
		return fmt.Errorf("%w: job %s: interval %s", common.ErrInvalidInput, name, every)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[name]; ok {
		return fmt.Errorf("%w: job %s", common.ErrAlreadyExists, name)
	}

	log := s.logger.With("job", name)
	job, err := s.cron.NewJob(
		gocron.DurationJob(every),
		gocron.NewTask(func() {
			start := time.Now()
			if err := task(ctx); err != nil {
				log.Error(ctx, "job failed", "error", err)
				return
			}
			log.Debug(ctx, "job done", "took", time.Since(start))
		}),
		gocron.WithName(name),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("register job %s: %w", name, err)
	}

	s.jobs[name] = job
	log.Info(ctx, "job registered", "every", every.String())
	return nil
}

// RunNow triggers an immediate run of the named job.
func (s *Scheduler) RunNow(name string) error {
	s.mu.Lock()
	job, ok := s.jobs[name]
	s.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: job %s", common.ErrNotFound, name)
	}
	return job.RunNow()
}

// Start begins running registered jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop waits for running jobs to finish and stops the scheduler.
func (s *Scheduler) Stop() error {
	return s.cron.Shutdown()
}
