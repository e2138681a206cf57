package sheets

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/fms/internal/domain/models"
)

const pastureRange = "Pasture!A:F"

// Ledger appends one row per paddock per simulated day to the Pasture sheet:
// date, paddock id, name, area, dm/ha, total dm.
type Ledger struct {
	repo   Repository
	logger *zap.Logger
}

// NewLedger wraps a sheets repository.
func NewLedger(repo Repository, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{repo: repo, logger: logger}
}

// DayAdvanced records the report's paddocks.
func (l *Ledger) DayAdvanced(ctx context.Context, report models.PastureReport) error {
	date := report.Date.Format(models.DateLayout)
	rows := make([][]interface{}, 0, len(report.Paddocks))
	for _, p := range report.Paddocks {
		rows = append(rows, []interface{}{date, p.PaddockID, p.Name, p.Area, p.DMPerHa, p.TotalDM})
	}

	if err := l.repo.AppendRows(ctx, pastureRange, rows); err != nil {
		return fmt.Errorf("append pasture ledger: %w", err)
	}
	l.logger.Debug("pasture ledger appended", zap.String("date", date), zap.Int("rows", len(rows)))
	return nil
}

// History reads back the ledger rows of one paddock between start and end
// inclusive. Rows that do not parse are skipped.
func (l *Ledger) History(ctx context.Context, paddockID uint, start, end time.Time) ([]models.PaddockPasture, error) {
	rows, err := l.repo.ReadRange(ctx, pastureRange)
	if err != nil {
		return nil, fmt.Errorf("load pasture ledger: %w", err)
	}

	var out []models.PaddockPasture
	for _, row := range rows {
		if len(row) < 6 {
			continue
		}

		date, err := time.Parse(models.DateLayout, fmt.Sprint(row[0]))
		if err != nil || date.Before(start) || date.After(end) {
			continue
		}

		id, err := strconv.ParseUint(fmt.Sprint(row[1]), 10, 64)
		if err != nil || uint(id) != paddockID {
			continue
		}

		nums := make([]float64, 3)
		ok := true
		for i := range nums {
			v, err := strconv.ParseFloat(fmt.Sprint(row[3+i]), 64)
			if err != nil {
				l.logger.Debug("skip ledger row with invalid number", zap.Any("value", row[3+i]), zap.Error(err))
				ok = false
				break
			}
			nums[i] = v
		}
		if !ok {
			continue
		}

		out = append(out, models.PaddockPasture{
			PaddockID: paddockID,
			Name:      fmt.Sprint(row[2]),
			Area:      nums[0],
			DMPerHa:   nums[1],
			TotalDM:   nums[2],
		})
	}
	return out, nil
}
