package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// Scheduler triggers harvest cycles on a cron expression, complementing the
// request-driven trigger.
type Scheduler struct {
	cron      *cron.Cron
	harvester *Harvester
	logger    *slog.Logger
}

// NewScheduler wires the cron driver with the harvester.
func NewScheduler(harvester *Harvester, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cron:      cron.New(),
		harvester: harvester,
		logger:    logger,
	}
}

// Start registers the harvest job and begins the cron loop.
func (s *Scheduler) Start(spec string) error {
	if spec == "" {
		return nil
	}

	_, err := s.cron.AddFunc(spec, func() {
		result, err := s.harvester.RunCycle(context.Background())
		if err != nil {
			s.logger.Error("scheduled harvest failed", "error", err)
			return
		}
		s.logger.Info("scheduled harvest", "triggered", result.Triggered, "reason", result.Reason)
	})
	if err != nil {
		return fmt.Errorf("add cron job %q: %w", spec, err)
	}

	s.cron.Start()
	return nil
}

// Stop halts the cron loop, letting an in-flight cycle finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}
