package sqlstore

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mamadbah2/fms/internal/domain/models"
	"github.com/mamadbah2/fms/internal/service/simulation"
)

//go:embed reset.sql
var resetScript string

// Store is the relational store behind paddocks, mobs, stock and the
// simulated clock.
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
	// SQLite allows a single writer; writes queue here instead of failing
	// with SQLITE_BUSY.
	writeMu sync.Mutex
}

// Open connects to the SQLite database at path and migrates the schema.
func Open(path string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}

	if err := db.Exec(`PRAGMA foreign_keys = ON`).Error; err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := db.AutoMigrate(
		&models.Paddock{},
		&models.Mob{},
		&models.Stock{},
		&models.CurrentDate{},
	); err != nil {
		return nil, fmt.Errorf("automigrate: %w", err)
	}

	logger.Debug("sqlite store ready", zap.String("path", path))
	return &Store{db: db, logger: logger}, nil
}

// Close releases the underlying connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Version reports the SQLite library version.
func (s *Store) Version(ctx context.Context) (string, error) {
	var version string
	if err := s.db.WithContext(ctx).Raw(`SELECT sqlite_version()`).Scan(&version).Error; err != nil {
		return "", fmt.Errorf("query sqlite version: %w", err)
	}
	return version, nil
}

// Bootstrap prepares a fresh database. When seed is set and the clock has
// never been initialised, the reset snapshot is loaded; otherwise a missing
// clock starts at start.
func (s *Store) Bootstrap(ctx context.Context, start time.Time, seed bool) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.CurrentDate{}).Count(&count).Error; err != nil {
		return fmt.Errorf("count clock rows: %w", err)
	}
	if count > 0 {
		return nil
	}

	if seed {
		s.logger.Info("seeding empty database from reset snapshot")
		_, err := s.Reset(ctx)
		return err
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	row := models.CurrentDate{ID: 1, Date: start}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("initialise clock: %w", err)
	}
	return nil
}

// Reset replaces all farm data with the embedded snapshot in one transaction
// and returns the restored simulated date.
func (s *Store) Reset(ctx context.Context) (time.Time, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var restored time.Time
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, stmt := range strings.Split(resetScript, ";") {
			if strings.TrimSpace(stmt) == "" {
				continue
			}
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("exec reset statement: %w", err)
			}
		}
		date, err := (&txStore{db: tx}).CurrentDate(ctx)
		if err != nil {
			return err
		}
		restored = date
		return nil
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("reset farm data: %w", err)
	}

	s.logger.Info("farm data reset", zap.String("date", restored.Format(models.DateLayout)))
	return restored, nil
}

// CurrentDate reads the simulated clock.
func (s *Store) CurrentDate(ctx context.Context) (time.Time, error) {
	return (&txStore{db: s.db.WithContext(ctx)}).CurrentDate(ctx)
}

// RunInTx runs fn inside a database transaction. The transaction commits
// only when fn returns nil.
func (s *Store) RunInTx(ctx context.Context, fn func(tx simulation.Tx) error) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&txStore{db: tx})
	})
}

// txStore implements simulation.Tx over a gorm transaction.
type txStore struct {
	db *gorm.DB
}

func (t *txStore) CurrentDate(ctx context.Context) (time.Time, error) {
	var row models.CurrentDate
	err := t.db.WithContext(ctx).Order("id").First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return time.Time{}, fmt.Errorf("simulated clock: %w", models.ErrNotFound)
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("read simulated clock: %w", err)
	}
	return row.Date.UTC(), nil
}

func (t *txStore) SetCurrentDate(ctx context.Context, date time.Time) error {
	res := t.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Model(&models.CurrentDate{}).
		Update("curr_date", date.UTC())
	if res.Error != nil {
		return fmt.Errorf("update simulated clock: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("simulated clock: %w", models.ErrNotFound)
	}
	return nil
}

const paddockStatesQuery = `
SELECT p.id, p.area, p.dm_per_ha, COUNT(s.id) AS stock_count
FROM paddocks p
LEFT JOIN mobs m ON m.paddock_id = p.id
LEFT JOIN stock s ON s.mob_id = m.id
GROUP BY p.id, p.area, p.dm_per_ha
ORDER BY p.id`

func (t *txStore) PaddockStates(ctx context.Context) ([]models.PaddockState, error) {
	var states []models.PaddockState
	if err := t.db.WithContext(ctx).Raw(paddockStatesQuery).Scan(&states).Error; err != nil {
		return nil, fmt.Errorf("query paddock states: %w", err)
	}
	return states, nil
}

func (t *txStore) ApplyPaddockUpdates(ctx context.Context, updates []models.PaddockUpdate) error {
	for _, u := range updates {
		err := t.db.WithContext(ctx).
			Model(&models.Paddock{}).
			Where("id = ?", u.ID).
			Updates(map[string]any{"dm_per_ha": u.DMPerHa, "total_dm": u.TotalDM}).Error
		if err != nil {
			return fmt.Errorf("update paddock %d: %w", u.ID, err)
		}
	}
	return nil
}
