package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/parking-spot-reservation/internal/model"
	"github.com/iliyamo/parking-spot-reservation/internal/service"
	"github.com/iliyamo/parking-spot-reservation/internal/store"
)

func intp(v int) *int { return &v }

func strp(v string) *string { return &v }

func floatp(v float64) *float64 { return &v }

func TestCreateLotSpawnsSpotPool(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	lot := env.mustCreateLot(t, "Central", 40, 5)

	assert.Equal(t, 5, lot.SpotCount)
	assert.Equal(t, 5, lot.AvailableSpots)

	spots, err := env.lots.LotSpots(ctx, lot.ID)
	require.NoError(t, err)
	require.Len(t, spots, 5)
	for _, sp := range spots {
		assert.Equal(t, model.SpotAvailable, sp.Status)
		assert.Equal(t, lot.ID, sp.LotID)
	}
}

func TestCreateLotValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.lots.CreateLot(ctx, &model.Lot{Name: "", Address: "x", Price: 10}, 3)
	assert.ErrorIs(t, err, service.ErrMissingField)

	_, err = env.lots.CreateLot(ctx, &model.Lot{Name: "A", Address: "x", Price: -1}, 3)
	assert.ErrorIs(t, err, service.ErrInvalidPrice)

	_, err = env.lots.CreateLot(ctx, &model.Lot{Name: "A", Address: "x", Price: 10}, -3)
	assert.ErrorIs(t, err, service.ErrInvalidSpotCount)
}

func TestUpdateLotMetadata(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	lot := env.mustCreateLot(t, "Central", 40, 2)

	out, err := env.lots.UpdateLot(ctx, lot.ID, service.LotUpdate{
		Name:  strp("Central East"),
		Price: floatp(55),
	})
	require.NoError(t, err)
	assert.Equal(t, "Central East", out.Name)
	assert.Equal(t, 55.0, out.Price)
	assert.Equal(t, 2, out.SpotCount, "spot pool untouched")
	assert.Equal(t, lot.Address, out.Address)
}

func TestResizeGrowsPool(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	lot := env.mustCreateLot(t, "Central", 40, 3)

	out, err := env.lots.UpdateLot(ctx, lot.ID, service.LotUpdate{SpotCount: intp(5)})
	require.NoError(t, err)
	assert.Equal(t, 5, out.SpotCount)

	spots, err := env.store.SpotsByLot(ctx, lot.ID)
	require.NoError(t, err)
	require.Len(t, spots, 5)
	for _, sp := range spots {
		assert.Equal(t, model.SpotAvailable, sp.Status)
	}
}

func TestResizeRespectsOccupancy(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	lot := env.mustCreateLot(t, "Central", 40, 5)

	// two users occupy two spots
	_, err := env.allocator.Allocate(ctx, lot.ID, 1)
	require.NoError(t, err)
	_, err = env.allocator.Allocate(ctx, lot.ID, 2)
	require.NoError(t, err)

	// shrinking to 3 removes two of the three free spots
	out, err := env.lots.UpdateLot(ctx, lot.ID, service.LotUpdate{SpotCount: intp(3)})
	require.NoError(t, err)
	assert.Equal(t, 3, out.SpotCount)

	// shrinking below occupancy fails whole and changes nothing
	_, err = env.lots.UpdateLot(ctx, lot.ID, service.LotUpdate{SpotCount: intp(1)})
	assert.ErrorIs(t, err, store.ErrCapacityConflict)

	spots, err := env.store.SpotsByLot(ctx, lot.ID)
	require.NoError(t, err)
	assert.Len(t, spots, 3)

	got, err := env.lots.GetLot(ctx, lot.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, got.SpotCount)
}

func TestShrinkRemovesNewestSpotsFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	lot := env.mustCreateLot(t, "Central", 40, 3)

	spots, err := env.store.SpotsByLot(ctx, lot.ID)
	require.NoError(t, err)
	require.Len(t, spots, 3)

	// occupy the earliest spot so it cannot be removed anyway
	res, err := env.allocator.Allocate(ctx, lot.ID, 1)
	require.NoError(t, err)
	require.Equal(t, spots[0].ID, res.SpotID)

	_, err = env.lots.UpdateLot(ctx, lot.ID, service.LotUpdate{SpotCount: intp(2)})
	require.NoError(t, err)

	left, err := env.store.SpotsByLot(ctx, lot.ID)
	require.NoError(t, err)
	require.Len(t, left, 2)
	assert.Equal(t, spots[0].ID, left[0].ID)
	assert.Equal(t, spots[1].ID, left[1].ID, "newest spot removed, older ones kept")
}

func TestDeleteLotRequiresVacancy(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	lot := env.mustCreateLot(t, "Central", 40, 2)

	res, err := env.allocator.Allocate(ctx, lot.ID, 1)
	require.NoError(t, err)

	err = env.lots.DeleteLot(ctx, lot.ID)
	assert.ErrorIs(t, err, store.ErrLotOccupied)

	_, err = env.ledger.Release(ctx, res.ID, 1)
	require.NoError(t, err)

	require.NoError(t, env.lots.DeleteLot(ctx, lot.ID))

	_, err = env.lots.GetLot(ctx, lot.ID)
	assert.ErrorIs(t, err, store.ErrLotNotFound)
}

func TestAvailableLotsFilter(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	full := env.mustCreateLot(t, "Full", 40, 1)
	open := env.mustCreateLot(t, "Open", 40, 2)
	env.mustCreateLot(t, "Empty", 40, 0)

	_, err := env.allocator.Allocate(ctx, full.ID, 1)
	require.NoError(t, err)

	avail, err := env.lots.AvailableLots(ctx)
	require.NoError(t, err)
	require.Len(t, avail, 1)
	assert.Equal(t, open.ID, avail[0].ID)

	all, err := env.lots.ListLots(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestLotSpotsUnknownLot(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.lots.LotSpots(context.Background(), 99)
	assert.ErrorIs(t, err, store.ErrLotNotFound)
}
