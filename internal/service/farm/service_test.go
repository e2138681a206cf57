package farm

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/fms/internal/domain/models"
	"github.com/mamadbah2/fms/internal/repository/sqlstore"
	"github.com/mamadbah2/fms/internal/service/simulation"
)

func newService(t *testing.T) (*Service, *sqlstore.Store) {
	t.Helper()
	store, err := sqlstore.Open(filepath.Join(t.TempDir(), "farm.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Bootstrap(context.Background(), time.Date(2024, 10, 29, 0, 0, 0, 0, time.UTC), true))
	return NewService(store, nil), store
}

func TestCreatePaddock_Validation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	bad := []models.PaddockInput{
		{Name: "", Area: 1, DMPerHa: 1},
		{Name: "   ", Area: 1, DMPerHa: 1},
		{Name: "Flat", Area: 0, DMPerHa: 1},
		{Name: "Flat", Area: -2, DMPerHa: 1},
		{Name: "Flat", Area: 2, DMPerHa: -1},
	}
	for _, in := range bad {
		_, err := svc.CreatePaddock(ctx, in)
		assert.ErrorIs(t, err, models.ErrInvalidArguments, "%+v", in)
	}

	p, err := svc.CreatePaddock(ctx, models.PaddockInput{Name: " Orchard ", Area: 2.5, DMPerHa: 1800})
	require.NoError(t, err)
	assert.Equal(t, "Orchard", p.Name)
	assert.Equal(t, 4500.0, p.TotalDM)

	all, err := svc.ListPaddocks(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 9)
}

func TestUpdatePaddock(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	p, err := svc.UpdatePaddock(ctx, 2, models.PaddockInput{Name: "Creek Flats", Area: 8, DMPerHa: 1500})
	require.NoError(t, err)
	assert.Equal(t, 12000.0, p.TotalDM)

	got, err := svc.GetPaddock(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "Creek Flats", got.Name)

	_, err = svc.UpdatePaddock(ctx, 404, models.PaddockInput{Name: "X", Area: 1})
	assert.ErrorIs(t, err, models.ErrNotFound)

	assert.ErrorIs(t, svc.UpdatePaddockAreas(ctx, nil), models.ErrInvalidArguments)
	assert.ErrorIs(t, svc.UpdatePaddockAreas(ctx, map[uint]float64{2: 0}), models.ErrInvalidArguments)
	require.NoError(t, svc.UpdatePaddockAreas(ctx, map[uint]float64{2: 4}))

	got, err = svc.GetPaddock(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 6000.0, got.TotalDM)
}

func TestMoveMob(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	assert.ErrorIs(t, svc.MoveMob(ctx, 0, 2), models.ErrInvalidArguments)
	assert.ErrorIs(t, svc.MoveMob(ctx, 2, 1), models.ErrPaddockOccupied)
	require.NoError(t, svc.MoveMob(ctx, 2, 6))

	mobs, err := svc.ListMobs(ctx)
	require.NoError(t, err)
	found := false
	for _, m := range mobs {
		if m.ID == 2 {
			found = true
			assert.Equal(t, "Swamp", m.Paddock)
		}
	}
	assert.True(t, found)
}

func TestListStock_AgesUseSimulatedDate(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	// One day short of a year old on the seed date.
	_, err := svc.UpdateAnimal(ctx, 1, models.AnimalInput{Weight: 300, DOB: "2023-10-30"})
	require.NoError(t, err)

	view, err := svc.GetAnimal(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 0, view.Age)
	assert.Equal(t, "2023-10-30", view.DOB)

	_, err = simulation.NewService(store, nil).AdvanceOneDay(ctx)
	require.NoError(t, err)

	view, err = svc.GetAnimal(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, view.Age)

	mobs, err := svc.ListStock(ctx)
	require.NoError(t, err)
	require.Len(t, mobs, 5)
	total := 0
	for _, m := range mobs {
		assert.Len(t, m.Animals, m.NumStock, m.Name)
		total += len(m.Animals)
	}
	assert.Equal(t, 30, total)
}

func TestUpdateAnimal_Validation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	cases := []models.AnimalInput{
		{Weight: 0, DOB: "2022-01-01"},
		{Weight: -5, DOB: "2022-01-01"},
		{Weight: 300, DOB: "01/01/2022"},
		{Weight: 300, DOB: "2024-10-30"},
	}
	for _, in := range cases {
		_, err := svc.UpdateAnimal(ctx, 1, in)
		assert.ErrorIs(t, err, models.ErrInvalidArguments, "%+v", in)
	}

	_, err := svc.UpdateAnimal(ctx, 999, models.AnimalInput{Weight: 300, DOB: "2022-01-01"})
	assert.ErrorIs(t, err, models.ErrNotFound)

	v, err := svc.UpdateAnimal(ctx, 1, models.AnimalInput{Weight: 410.5, DOB: "2024-10-29"})
	require.NoError(t, err)
	assert.Equal(t, 410.5, v.Weight)
	assert.Equal(t, 0, v.Age)
}

func TestResetAndVersion(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	require.NoError(t, svc.MoveMob(ctx, 2, 6))
	date, err := svc.Reset(ctx)
	require.NoError(t, err)
	assert.Equal(t, "2024-10-29", date.Format(models.DateLayout))

	current, err := svc.CurrentDate(ctx)
	require.NoError(t, err)
	assert.Equal(t, date, current)

	v, err := svc.DatabaseVersion(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, v)
}
