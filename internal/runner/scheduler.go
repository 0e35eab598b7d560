package runner

import (
	"context"
	"fmt"
	"log"

	"github.com/robfig/cron/v3"
)

// Scheduler fires batches on a cron spec ("@every 1h" by default) and runs
// one immediately on start so a fresh deployment does not wait a full
// interval for its first digest.
type Scheduler struct {
	cron   *cron.Cron
	runner *Runner
	spec   string
}

func NewScheduler(r *Runner, spec string) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		runner: r,
		spec:   spec,
	}
}

func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		if err := s.runner.RunOnce(ctx); err != nil {
			log.Printf("Scheduler: batch failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("runner: invalid schedule %q: %w", s.spec, err)
	}

	s.cron.Start()
	log.Printf("Scheduler: started with spec %q", s.spec)

	go func() {
		if err := s.runner.RunOnce(ctx); err != nil {
			log.Printf("Scheduler: initial batch failed: %v", err)
		}
	}()

	return nil
}

func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Printf("Scheduler: stopped")
}
