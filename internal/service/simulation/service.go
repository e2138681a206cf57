package simulation

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/fms/internal/domain/models"
)

// ErrUpdateFailed marks a simulation step that did not commit. The
// underlying persistence error stays in the chain.
var ErrUpdateFailed = errors.New("update failed")

// Tx is the transactional view of the store used by a single step.
type Tx interface {
	CurrentDate(ctx context.Context) (time.Time, error)
	PaddockStates(ctx context.Context) ([]models.PaddockState, error)
	ApplyPaddockUpdates(ctx context.Context, updates []models.PaddockUpdate) error
	SetCurrentDate(ctx context.Context, date time.Time) error
}

// Store runs fn atomically: either every write made through tx commits or
// none does.
type Store interface {
	RunInTx(ctx context.Context, fn func(tx Tx) error) error
}

// ReportBuilder produces the pasture report for a committed date.
type ReportBuilder interface {
	PastureReport(ctx context.Context, date time.Time) (models.PastureReport, error)
}

// Observer is told about every committed day.
type Observer interface {
	DayAdvanced(ctx context.Context, report models.PastureReport) error
}

// Service advances the simulated clock.
type Service struct {
	store     Store
	reports   ReportBuilder
	observers []Observer
	logger    *zap.Logger
	mu        sync.Mutex
}

// NewService wires a simulation service over the given store.
func NewService(store Store, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, logger: logger}
}

// Observe registers observers notified after each committed step. Reports are
// only built when at least one observer is registered.
func (s *Service) Observe(reports ReportBuilder, observers ...Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = reports
	s.observers = append(s.observers, observers...)
}

// AdvanceOneDay moves the simulated date forward by one day and updates the
// pasture on every paddock. It returns the new date.
func (s *Service) AdvanceOneDay(ctx context.Context) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var next time.Time
	var paddocks int

	err := s.store.RunInTx(ctx, func(tx Tx) error {
		current, err := tx.CurrentDate(ctx)
		if err != nil {
			return fmt.Errorf("read current date: %w", err)
		}

		states, err := tx.PaddockStates(ctx)
		if err != nil {
			return fmt.Errorf("read paddock states: %w", err)
		}

		date, updates := Step(current, states)

		if err := tx.ApplyPaddockUpdates(ctx, updates); err != nil {
			return fmt.Errorf("write paddock pasture: %w", err)
		}
		if err := tx.SetCurrentDate(ctx, date); err != nil {
			return fmt.Errorf("write current date: %w", err)
		}

		next = date
		paddocks = len(updates)
		return nil
	})
	if err != nil {
		s.logger.Error("simulation step failed", zap.Error(err))
		return time.Time{}, fmt.Errorf("%w: %w", ErrUpdateFailed, err)
	}

	s.logger.Info("simulated date advanced",
		zap.String("date", next.Format(models.DateLayout)),
		zap.Int("paddocks", paddocks))

	s.notify(ctx, next)
	return next, nil
}

func (s *Service) notify(ctx context.Context, date time.Time) {
	if s.reports == nil || len(s.observers) == 0 {
		return
	}

	report, err := s.reports.PastureReport(ctx, date)
	if err != nil {
		s.logger.Warn("failed to build pasture report", zap.Error(err))
		return
	}

	for _, o := range s.observers {
		if err := o.DayAdvanced(ctx, report); err != nil {
			s.logger.Warn("pasture observer failed",
				zap.String("observer", fmt.Sprintf("%T", o)),
				zap.Error(err))
		}
	}
}
