package sqlstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mamadbah2/fms/internal/domain/models"
)

const paddockViewsQuery = `
SELECT p.id, p.name, p.area, p.dm_per_ha, p.total_dm,
       m.id AS mob_id, COALESCE(m.name, '') AS mob_name, COUNT(s.id) AS stock_count
FROM paddocks p
LEFT JOIN mobs m ON m.paddock_id = p.id
LEFT JOIN stock s ON s.mob_id = m.id
GROUP BY p.id, p.name, p.area, p.dm_per_ha, p.total_dm, m.id, m.name
ORDER BY p.name`

const mobSummariesQuery = `
SELECT m.id, m.name, COALESCE(p.name, '') AS paddock,
       COUNT(s.id) AS num_stock, COALESCE(AVG(s.weight), 0) AS avg_weight
FROM mobs m
LEFT JOIN paddocks p ON p.id = m.paddock_id
LEFT JOIN stock s ON s.mob_id = m.id
GROUP BY m.id, m.name, p.name
ORDER BY m.name`

// ListPaddocks returns every paddock with its occupying mob, ordered by name.
func (s *Store) ListPaddocks(ctx context.Context) ([]models.PaddockView, error) {
	var views []models.PaddockView
	if err := s.db.WithContext(ctx).Raw(paddockViewsQuery).Scan(&views).Error; err != nil {
		return nil, fmt.Errorf("query paddocks: %w", err)
	}
	return views, nil
}

// GetPaddock loads a single paddock.
func (s *Store) GetPaddock(ctx context.Context, id uint) (models.Paddock, error) {
	var p models.Paddock
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return models.Paddock{}, notFound(err, "paddock %d", id)
	}
	return p, nil
}

// CreatePaddock inserts a paddock. TotalDM is derived from area and pasture.
func (s *Store) CreatePaddock(ctx context.Context, p models.Paddock) (models.Paddock, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	p.ID = 0
	p.Recompute()
	if err := s.db.WithContext(ctx).Create(&p).Error; err != nil {
		return models.Paddock{}, fmt.Errorf("insert paddock: %w", err)
	}
	return p, nil
}

// UpdatePaddock replaces a paddock's name, area and pasture.
func (s *Store) UpdatePaddock(ctx context.Context, p models.Paddock) (models.Paddock, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	p.Recompute()
	res := s.db.WithContext(ctx).
		Model(&models.Paddock{}).
		Where("id = ?", p.ID).
		Updates(map[string]any{
			"name":      p.Name,
			"area":      p.Area,
			"dm_per_ha": p.DMPerHa,
			"total_dm":  p.TotalDM,
		})
	if res.Error != nil {
		return models.Paddock{}, fmt.Errorf("update paddock %d: %w", p.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return models.Paddock{}, fmt.Errorf("paddock %d: %w", p.ID, models.ErrNotFound)
	}
	return p, nil
}

// UpdatePaddockAreas changes several paddock areas in one transaction,
// keeping each TotalDM consistent.
func (s *Store) UpdatePaddockAreas(ctx context.Context, areas map[uint]float64) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for id, area := range areas {
			var p models.Paddock
			if err := tx.First(&p, id).Error; err != nil {
				return notFound(err, "paddock %d", id)
			}
			p.Area = area
			p.Recompute()
			err := tx.Model(&models.Paddock{}).
				Where("id = ?", id).
				Updates(map[string]any{"area": p.Area, "total_dm": p.TotalDM}).Error
			if err != nil {
				return fmt.Errorf("update paddock %d area: %w", id, err)
			}
		}
		return nil
	})
}

// ListMobs summarises every mob.
func (s *Store) ListMobs(ctx context.Context) ([]models.MobSummary, error) {
	var mobs []models.MobSummary
	if err := s.db.WithContext(ctx).Raw(mobSummariesQuery).Scan(&mobs).Error; err != nil {
		return nil, fmt.Errorf("query mobs: %w", err)
	}
	return mobs, nil
}

// ListStock returns every animal ordered by mob then id.
func (s *Store) ListStock(ctx context.Context) ([]models.Stock, error) {
	var stock []models.Stock
	if err := s.db.WithContext(ctx).Order("mob_id, id").Find(&stock).Error; err != nil {
		return nil, fmt.Errorf("query stock: %w", err)
	}
	return stock, nil
}

// MoveMob puts a mob into another paddock. Moving into an occupied paddock
// fails with models.ErrPaddockOccupied.
func (s *Store) MoveMob(ctx context.Context, mobID, paddockID uint) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var mob models.Mob
		if err := tx.First(&mob, mobID).Error; err != nil {
			return notFound(err, "mob %d", mobID)
		}

		var paddock models.Paddock
		if err := tx.First(&paddock, paddockID).Error; err != nil {
			return notFound(err, "paddock %d", paddockID)
		}

		if mob.PaddockID != nil && *mob.PaddockID == paddockID {
			return nil
		}

		var occupants int64
		if err := tx.Model(&models.Mob{}).Where("paddock_id = ?", paddockID).Count(&occupants).Error; err != nil {
			return fmt.Errorf("count occupants of paddock %d: %w", paddockID, err)
		}
		if occupants > 0 {
			return fmt.Errorf("paddock %d: %w", paddockID, models.ErrPaddockOccupied)
		}

		if err := tx.Model(&models.Mob{}).Where("id = ?", mobID).Update("paddock_id", paddockID).Error; err != nil {
			return fmt.Errorf("move mob %d: %w", mobID, err)
		}
		return nil
	})
}

// GetAnimal loads a single animal.
func (s *Store) GetAnimal(ctx context.Context, id uint) (models.Stock, error) {
	var animal models.Stock
	if err := s.db.WithContext(ctx).First(&animal, id).Error; err != nil {
		return models.Stock{}, notFound(err, "animal %d", id)
	}
	animal.DOB = animal.DOB.UTC()
	return animal, nil
}

// UpdateAnimal changes an animal's weight and date of birth.
func (s *Store) UpdateAnimal(ctx context.Context, id uint, weight float64, dob time.Time) (models.Stock, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	res := s.db.WithContext(ctx).
		Model(&models.Stock{}).
		Where("id = ?", id).
		Updates(map[string]any{"weight": weight, "dob": dob.UTC()})
	if res.Error != nil {
		return models.Stock{}, fmt.Errorf("update animal %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return models.Stock{}, fmt.Errorf("animal %d: %w", id, models.ErrNotFound)
	}

	var animal models.Stock
	if err := s.db.WithContext(ctx).First(&animal, id).Error; err != nil {
		return models.Stock{}, notFound(err, "animal %d", id)
	}
	animal.DOB = animal.DOB.UTC()
	return animal, nil
}

func notFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf(format+": %w", append(args, models.ErrNotFound)...)
	}
	return fmt.Errorf("load "+format+": %w", append(args, err)...)
}
