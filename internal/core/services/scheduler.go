package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/custodia-labs/jobscout/internal/core/domain"
	"github.com/custodia-labs/jobscout/internal/core/ports/driving"
)

// DefaultScanSchedule is the cadence used when none is configured.
const DefaultScanSchedule = "@every 30m"

// Scheduler runs cron-driven batch scans. Scheduled scans always use
// trigger=scheduled and respect backoff windows, so a failing source cannot
// be hammered by the cadence.
type Scheduler struct {
	schedule string
	scans    driving.ScanOrchestrator
	log      *zap.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	running bool
}

// NewScheduler creates a scheduler. An empty schedule selects the default.
func NewScheduler(schedule string, scans driving.ScanOrchestrator, log *zap.Logger) *Scheduler {
	if schedule == "" {
		schedule = DefaultScanSchedule
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Scheduler{
		schedule: schedule,
		scans:    scans,
		log:      log,
	}
}

// Start registers the scan job and starts the cron loop. It returns
// immediately; Stop shuts the loop down and waits for a running scan.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	c := cron.New()
	if _, err := c.AddFunc(s.schedule, func() { s.runScheduledScan(ctx) }); err != nil {
		return fmt.Errorf("register scan schedule %q: %w", s.schedule, err)
	}
	c.Start()

	s.cron = c
	s.running = true
	s.log.Info("scheduler started", zap.String("schedule", s.schedule))
	return nil
}

// Stop shuts down the cron loop and waits for any in-flight scan.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	<-s.cron.Stop().Done()
	s.running = false
	s.log.Info("scheduler stopped")
}

// runScheduledScan performs one scheduled batch scan over enabled sources.
func (s *Scheduler) runScheduledScan(ctx context.Context) {
	result, err := s.scans.ScanBatch(ctx, true, domain.TriggerScheduled, true)
	if err != nil {
		s.log.Warn("scheduled batch scan failed", zap.Error(err))
		return
	}
	s.log.Info("scheduled batch scan finished",
		zap.Int("requested", result.Requested),
		zap.Int("succeeded", result.Succeeded),
		zap.Int("failed", result.Failed),
		zap.Int("skipped", result.Skipped))
}
