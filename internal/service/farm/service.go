package farm

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/mamadbah2/fms/internal/domain/models"
)

// Repository is the persistence surface the farm service needs.
type Repository interface {
	CurrentDate(ctx context.Context) (time.Time, error)
	ListPaddocks(ctx context.Context) ([]models.PaddockView, error)
	GetPaddock(ctx context.Context, id uint) (models.Paddock, error)
	CreatePaddock(ctx context.Context, p models.Paddock) (models.Paddock, error)
	UpdatePaddock(ctx context.Context, p models.Paddock) (models.Paddock, error)
	UpdatePaddockAreas(ctx context.Context, areas map[uint]float64) error
	ListMobs(ctx context.Context) ([]models.MobSummary, error)
	ListStock(ctx context.Context) ([]models.Stock, error)
	MoveMob(ctx context.Context, mobID, paddockID uint) error
	GetAnimal(ctx context.Context, id uint) (models.Stock, error)
	UpdateAnimal(ctx context.Context, id uint, weight float64, dob time.Time) (models.Stock, error)
	Reset(ctx context.Context) (time.Time, error)
	Version(ctx context.Context) (string, error)
}

// Service implements the record-keeping operations on paddocks, mobs and
// stock.
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService wires a farm service instance.
func NewService(repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger}
}

// CurrentDate returns the simulated date.
func (s *Service) CurrentDate(ctx context.Context) (time.Time, error) {
	return s.repo.CurrentDate(ctx)
}

// ListPaddocks returns all paddocks with their occupying mob.
func (s *Service) ListPaddocks(ctx context.Context) ([]models.PaddockView, error) {
	return s.repo.ListPaddocks(ctx)
}

// GetPaddock returns one paddock.
func (s *Service) GetPaddock(ctx context.Context, id uint) (models.Paddock, error) {
	return s.repo.GetPaddock(ctx, id)
}

// CreatePaddock validates and stores a new paddock.
func (s *Service) CreatePaddock(ctx context.Context, in models.PaddockInput) (models.Paddock, error) {
	p, err := buildPaddock(in)
	if err != nil {
		return models.Paddock{}, err
	}

	created, err := s.repo.CreatePaddock(ctx, p)
	if err != nil {
		return models.Paddock{}, err
	}

	s.logger.Info("paddock created", zap.Uint("paddock_id", created.ID), zap.String("name", created.Name))
	return created, nil
}

// UpdatePaddock replaces a paddock's editable fields.
func (s *Service) UpdatePaddock(ctx context.Context, id uint, in models.PaddockInput) (models.Paddock, error) {
	p, err := buildPaddock(in)
	if err != nil {
		return models.Paddock{}, err
	}
	p.ID = id

	updated, err := s.repo.UpdatePaddock(ctx, p)
	if err != nil {
		return models.Paddock{}, err
	}

	s.logger.Info("paddock updated", zap.Uint("paddock_id", id))
	return updated, nil
}

// UpdatePaddockAreas changes the area of several paddocks at once.
func (s *Service) UpdatePaddockAreas(ctx context.Context, areas map[uint]float64) error {
	if len(areas) == 0 {
		return fmt.Errorf("no areas supplied: %w", models.ErrInvalidArguments)
	}
	for id, area := range areas {
		if !validArea(area) {
			return fmt.Errorf("paddock %d area %v: %w", id, area, models.ErrInvalidArguments)
		}
	}

	if err := s.repo.UpdatePaddockAreas(ctx, areas); err != nil {
		return err
	}

	s.logger.Info("paddock areas updated", zap.Int("paddocks", len(areas)))
	return nil
}

// ListMobs summarises every mob.
func (s *Service) ListMobs(ctx context.Context) ([]models.MobSummary, error) {
	return s.repo.ListMobs(ctx)
}

// ListStock groups animals by mob, with ages taken on the simulated date.
func (s *Service) ListStock(ctx context.Context) ([]models.MobStock, error) {
	on, err := s.repo.CurrentDate(ctx)
	if err != nil {
		return nil, err
	}

	mobs, err := s.repo.ListMobs(ctx)
	if err != nil {
		return nil, err
	}

	stock, err := s.repo.ListStock(ctx)
	if err != nil {
		return nil, err
	}

	byMob := make(map[uint][]models.AnimalView, len(mobs))
	for _, animal := range stock {
		byMob[animal.MobID] = append(byMob[animal.MobID], models.NewAnimalView(animal, on))
	}

	out := make([]models.MobStock, 0, len(mobs))
	for _, m := range mobs {
		animals := byMob[m.ID]
		if animals == nil {
			animals = []models.AnimalView{}
		}
		out = append(out, models.MobStock{MobSummary: m, Animals: animals})
	}
	return out, nil
}

// MoveMob moves a mob into a paddock that holds no other mob.
func (s *Service) MoveMob(ctx context.Context, mobID, paddockID uint) error {
	if mobID == 0 || paddockID == 0 {
		return fmt.Errorf("mob and paddock are required: %w", models.ErrInvalidArguments)
	}

	if err := s.repo.MoveMob(ctx, mobID, paddockID); err != nil {
		s.logger.Warn("mob move rejected",
			zap.Uint("mob_id", mobID),
			zap.Uint("paddock_id", paddockID),
			zap.Error(err))
		return err
	}

	s.logger.Info("mob moved", zap.Uint("mob_id", mobID), zap.Uint("paddock_id", paddockID))
	return nil
}

// GetAnimal returns an animal with its age on the simulated date.
func (s *Service) GetAnimal(ctx context.Context, id uint) (models.AnimalView, error) {
	on, err := s.repo.CurrentDate(ctx)
	if err != nil {
		return models.AnimalView{}, err
	}

	animal, err := s.repo.GetAnimal(ctx, id)
	if err != nil {
		return models.AnimalView{}, err
	}

	return models.NewAnimalView(animal, on), nil
}

// UpdateAnimal changes an animal's weight and date of birth. The date of
// birth cannot lie after the simulated date.
func (s *Service) UpdateAnimal(ctx context.Context, id uint, in models.AnimalInput) (models.AnimalView, error) {
	if in.Weight <= 0 || math.IsNaN(in.Weight) || math.IsInf(in.Weight, 0) {
		return models.AnimalView{}, fmt.Errorf("weight %v: %w", in.Weight, models.ErrInvalidArguments)
	}

	dob, err := time.Parse(models.DateLayout, strings.TrimSpace(in.DOB))
	if err != nil {
		return models.AnimalView{}, fmt.Errorf("dob %q: %w", in.DOB, models.ErrInvalidArguments)
	}

	on, err := s.repo.CurrentDate(ctx)
	if err != nil {
		return models.AnimalView{}, err
	}
	if dob.After(on) {
		return models.AnimalView{}, fmt.Errorf("dob %s after %s: %w", dob.Format(models.DateLayout), on.Format(models.DateLayout), models.ErrInvalidArguments)
	}

	animal, err := s.repo.UpdateAnimal(ctx, id, in.Weight, dob)
	if err != nil {
		return models.AnimalView{}, err
	}

	s.logger.Info("animal updated", zap.Uint("animal_id", id))
	return models.NewAnimalView(animal, on), nil
}

// Reset restores the farm snapshot and returns the restored simulated date.
func (s *Service) Reset(ctx context.Context) (time.Time, error) {
	return s.repo.Reset(ctx)
}

// DatabaseVersion reports the backing database version.
func (s *Service) DatabaseVersion(ctx context.Context) (string, error) {
	return s.repo.Version(ctx)
}

func buildPaddock(in models.PaddockInput) (models.Paddock, error) {
	name := strings.TrimSpace(in.Name)
	switch {
	case name == "":
		return models.Paddock{}, fmt.Errorf("paddock name is required: %w", models.ErrInvalidArguments)
	case !validArea(in.Area):
		return models.Paddock{}, fmt.Errorf("area %v: %w", in.Area, models.ErrInvalidArguments)
	case in.DMPerHa < 0 || math.IsNaN(in.DMPerHa) || math.IsInf(in.DMPerHa, 0):
		return models.Paddock{}, fmt.Errorf("dm_per_ha %v: %w", in.DMPerHa, models.ErrInvalidArguments)
	}

	p := models.Paddock{Name: name, Area: in.Area, DMPerHa: in.DMPerHa}
	p.Recompute()
	return p, nil
}

func validArea(area float64) bool {
	return area > 0 && !math.IsInf(area, 0)
}
