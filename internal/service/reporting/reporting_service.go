package reporting

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/mamadbah2/fms/internal/domain/models"
)

const (
	paddockSheet = "Paddocks"
	mobSheet     = "Mobs"
)

// Repository is the read model needed to build reports.
type Repository interface {
	CurrentDate(ctx context.Context) (time.Time, error)
	ListPaddocks(ctx context.Context) ([]models.PaddockView, error)
	ListMobs(ctx context.Context) ([]models.MobSummary, error)
}

// Service builds pasture summaries and spreadsheet exports.
type Service struct {
	repo   Repository
	clock  clockwork.Clock
	logger *zap.Logger
}

// NewService wires a new reporting service instance.
func NewService(repository Repository, clock clockwork.Clock, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Service{repo: repository, clock: clock, logger: logger}
}

// PastureReport snapshots every paddock's pasture for the given simulated
// date.
func (s *Service) PastureReport(ctx context.Context, date time.Time) (models.PastureReport, error) {
	paddocks, err := s.repo.ListPaddocks(ctx)
	if err != nil {
		return models.PastureReport{}, fmt.Errorf("load paddocks: %w", err)
	}

	report := models.PastureReport{
		Date:      date,
		Paddocks:  make([]models.PaddockPasture, 0, len(paddocks)),
		CreatedAt: s.clock.Now().UTC(),
	}
	for _, p := range paddocks {
		report.Paddocks = append(report.Paddocks, models.PaddockPasture{
			PaddockID:  p.ID,
			Name:       p.Name,
			Area:       p.Area,
			DMPerHa:    p.DMPerHa,
			TotalDM:    p.TotalDM,
			StockCount: p.StockCount,
		})
		report.TotalDM += p.TotalDM
	}

	return report, nil
}

// CurrentReport builds the pasture report for the current simulated date.
func (s *Service) CurrentReport(ctx context.Context) (models.PastureReport, error) {
	date, err := s.repo.CurrentDate(ctx)
	if err != nil {
		return models.PastureReport{}, fmt.Errorf("load current date: %w", err)
	}
	return s.PastureReport(ctx, date)
}

// FormatSummary renders a short plain-text pasture summary suitable for a
// chat message.
func FormatSummary(report models.PastureReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Pasture summary %s\n", report.Date.Format(models.DateLayout))

	if len(report.Paddocks) == 0 {
		b.WriteString("No paddocks recorded.")
		return b.String()
	}

	var bare []string
	for _, p := range report.Paddocks {
		fmt.Fprintf(&b, "- %s: %.0f kg DM/ha (%d stock)\n", p.Name, math.Round(p.DMPerHa), p.StockCount)
		if p.DMPerHa == 0 {
			bare = append(bare, p.Name)
		}
	}
	fmt.Fprintf(&b, "Total: %.0f kg DM", math.Round(report.TotalDM))
	if len(bare) > 0 {
		fmt.Fprintf(&b, "\nEaten out: %s", strings.Join(bare, ", "))
	}
	return b.String()
}

// WriteWorkbook exports paddocks and mobs to an xlsx workbook.
func (s *Service) WriteWorkbook(ctx context.Context, w io.Writer) error {
	date, err := s.repo.CurrentDate(ctx)
	if err != nil {
		return fmt.Errorf("load current date: %w", err)
	}
	paddocks, err := s.repo.ListPaddocks(ctx)
	if err != nil {
		return fmt.Errorf("load paddocks: %w", err)
	}
	mobs, err := s.repo.ListMobs(ctx)
	if err != nil {
		return fmt.Errorf("load mobs: %w", err)
	}

	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			s.logger.Debug("close workbook", zap.Error(err))
		}
	}()

	if err := f.SetSheetName("Sheet1", paddockSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	rows := [][]any{
		{"Date", date.Format(models.DateLayout)},
		{"ID", "Name", "Area (ha)", "DM/ha (kg)", "Total DM (kg)", "Mob", "Stock"},
	}
	for _, p := range paddocks {
		rows = append(rows, []any{p.ID, p.Name, p.Area, p.DMPerHa, p.TotalDM, p.MobName, p.StockCount})
	}
	if err := writeRows(f, paddockSheet, rows); err != nil {
		return err
	}

	if _, err := f.NewSheet(mobSheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", mobSheet, err)
	}
	rows = [][]any{{"ID", "Name", "Paddock", "Stock", "Avg weight (kg)"}}
	for _, m := range mobs {
		rows = append(rows, []any{m.ID, m.Name, m.Paddock, m.NumStock, m.AvgWeight})
	}
	if err := writeRows(f, mobSheet, rows); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}

	s.logger.Debug("workbook exported", zap.Int("paddocks", len(paddocks)), zap.Int("mobs", len(mobs)))
	return nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
