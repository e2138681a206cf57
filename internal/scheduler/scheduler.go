package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/mamadbah2/fms/internal/config"
	"github.com/mamadbah2/fms/internal/domain/models"
)

// Advancer moves the simulated clock forward by one day.
type Advancer interface {
	AdvanceOneDay(ctx context.Context) (time.Time, error)
}

// SummarySender delivers the pasture summary for the current simulated date.
type SummarySender interface {
	SendPastureSummary(ctx context.Context) error
}

// Scheduler manages scheduled tasks.
type Scheduler struct {
	cron     *cron.Cron
	advancer Advancer
	summary  SummarySender
	cfg      config.Config
	logger   *zap.Logger
}

// NewScheduler creates a new scheduler instance. Jobs whose collaborator is
// nil are not registered.
func NewScheduler(cfg config.Config, advancer Advancer, summary SummarySender, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		cron:     cron.New(cron.WithLocation(cfg.Location())),
		advancer: advancer,
		summary:  summary,
		cfg:      cfg,
		logger:   logger,
	}
}

// Register adds the configured jobs without starting the cron loop.
func (s *Scheduler) Register() error {
	if s.advancer != nil && s.cfg.Simulation.AutoAdvanceCron != "" {
		if _, err := s.cron.AddFunc(s.cfg.Simulation.AutoAdvanceCron, s.advanceDay); err != nil {
			return fmt.Errorf("schedule auto advance: %w", err)
		}
		s.logger.Info("auto advance scheduled", zap.String("spec", s.cfg.Simulation.AutoAdvanceCron))
	}

	if s.summary != nil {
		if _, err := s.cron.AddFunc(s.cfg.Reporting.CronSchedule, s.sendSummary); err != nil {
			return fmt.Errorf("schedule pasture summary: %w", err)
		}
		s.logger.Info("pasture summary scheduled", zap.String("spec", s.cfg.Reporting.CronSchedule))
	}

	return nil
}

// Jobs returns the number of registered jobs.
func (s *Scheduler) Jobs() int {
	return len(s.cron.Entries())
}

// Start registers the jobs and starts the scheduler.
func (s *Scheduler) Start() error {
	s.logger.Info("starting scheduler")
	if err := s.Register(); err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop stops the scheduler and waits for running jobs.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	<-s.cron.Stop().Done()
}

func (s *Scheduler) advanceDay() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	date, err := s.advancer.AdvanceOneDay(ctx)
	if err != nil {
		s.logger.Error("scheduled advance failed", zap.Error(err))
		return
	}
	s.logger.Info("simulated date advanced", zap.String("curr_date", date.Format(models.DateLayout)))
}

func (s *Scheduler) sendSummary() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if err := s.summary.SendPastureSummary(ctx); err != nil {
		s.logger.Error("failed to send pasture summary", zap.Error(err))
		return
	}
	s.logger.Info("pasture summary sent")
}
