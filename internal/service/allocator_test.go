package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/parking-spot-reservation/internal/cache"
	"github.com/iliyamo/parking-spot-reservation/internal/config"
	"github.com/iliyamo/parking-spot-reservation/internal/model"
	"github.com/iliyamo/parking-spot-reservation/internal/service"
	"github.com/iliyamo/parking-spot-reservation/internal/store"
	"github.com/iliyamo/parking-spot-reservation/internal/store/memory"
)

type testEnv struct {
	store     *memory.Store
	allocator *service.SpotAllocator
	ledger    *service.ReservationLedger
	lots      *service.LotCapacityManager
}

// newTestEnv wires the services against the in-memory store with caching and
// event publishing disabled.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	st := memory.New()
	cs := cache.NewStore(nil)
	inv := cache.NewInvalidator(cs)
	var ttl config.CacheConfig
	return &testEnv{
		store:     st,
		allocator: service.NewSpotAllocator(st, inv, nil),
		ledger:    service.NewReservationLedger(st, cs, ttl, inv, nil),
		lots:      service.NewLotCapacityManager(st, cs, ttl, inv),
	}
}

func (e *testEnv) mustCreateLot(t *testing.T, name string, price float64, spots int) *model.Lot {
	t.Helper()
	lot, err := e.lots.CreateLot(context.Background(), &model.Lot{
		Name:    name,
		Address: "12 Harbor Rd",
		PinCode: "560001",
		Price:   price,
	}, spots)
	require.NoError(t, err)
	return lot
}

func TestAllocateClaimsEarliestSpot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	lot := env.mustCreateLot(t, "Central", 40, 3)

	spots, err := env.store.SpotsByLot(ctx, lot.ID)
	require.NoError(t, err)
	require.Len(t, spots, 3)

	res, err := env.allocator.Allocate(ctx, lot.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, spots[0].ID, res.SpotID, "earliest-created spot claimed first")
	assert.Equal(t, lot.ID, res.LotID)
	assert.Equal(t, model.ReservationActive, res.Status)
	assert.Equal(t, 40.0, res.PricePerHour)
	assert.Nil(t, res.EndedAt)

	// next user gets the next spot in creation order
	res2, err := env.allocator.Allocate(ctx, lot.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, spots[1].ID, res2.SpotID)
}

func TestAllocateRejectsSecondActiveBooking(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	lot := env.mustCreateLot(t, "Central", 40, 3)

	_, err := env.allocator.Allocate(ctx, lot.ID, 1)
	require.NoError(t, err)

	_, err = env.allocator.Allocate(ctx, lot.ID, 1)
	assert.ErrorIs(t, err, store.ErrActiveBookingExists)

	// still exactly one occupied spot
	lots, err := env.store.ListLots(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, lots[0].AvailableSpots)
}

func TestAllocateUnknownLot(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.allocator.Allocate(context.Background(), 42, 1)
	assert.ErrorIs(t, err, store.ErrLotNotFound)
}

func TestAllocateFullLot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	lot := env.mustCreateLot(t, "Tiny", 25, 1)

	_, err := env.allocator.Allocate(ctx, lot.ID, 1)
	require.NoError(t, err)

	_, err = env.allocator.Allocate(ctx, lot.ID, 2)
	assert.ErrorIs(t, err, store.ErrNoAvailableSpot)
}

func TestAllocateEmptyLot(t *testing.T) {
	env := newTestEnv(t)
	lot := env.mustCreateLot(t, "Planned", 25, 0)

	_, err := env.allocator.Allocate(context.Background(), lot.ID, 1)
	assert.ErrorIs(t, err, store.ErrNoAvailableSpot)
}

func TestStoreRefusesSecondOpenReservation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	lotA := env.mustCreateLot(t, "North", 30, 1)
	lotB := env.mustCreateLot(t, "South", 30, 1)

	_, err := env.allocator.Allocate(ctx, lotA.ID, 1)
	require.NoError(t, err)

	// Insert directly, skipping the allocator's active-booking pre-check.
	// The lot row lock of lotB cannot see the open reservation in lotA; the
	// store's own one-open-reservation guard must still refuse the insert.
	err = env.store.Atomically(ctx, func(tx store.Tx) error {
		spot, err := tx.FirstAvailableSpotForUpdate(ctx, lotB.ID)
		if err != nil {
			return err
		}
		if err := tx.UpdateSpotStatus(ctx, spot.ID, model.SpotOccupied); err != nil {
			return err
		}
		return tx.InsertReservation(ctx, &model.Reservation{
			SpotID:       spot.ID,
			UserID:       1,
			LotID:        lotB.ID,
			StartedAt:    time.Now().UTC(),
			PricePerHour: 30,
			Status:       model.ReservationActive,
		})
	})
	assert.ErrorIs(t, err, store.ErrActiveBookingExists)

	// the failed transaction rolled back whole: lotB's spot is still free
	spots, err := env.store.SpotsByLot(ctx, lotB.ID)
	require.NoError(t, err)
	require.Len(t, spots, 1)
	assert.Equal(t, model.SpotAvailable, spots[0].Status)
}

func TestAllocateConcurrentLastSpot(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	lot := env.mustCreateLot(t, "Contested", 30, 1)

	const callers = 16
	errs := make([]error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.allocator.Allocate(ctx, lot.ID, uint64(i+1))
		}(i)
	}
	wg.Wait()

	won := 0
	for _, err := range errs {
		if err == nil {
			won++
			continue
		}
		assert.True(t,
			errors.Is(err, store.ErrNoAvailableSpot),
			"losers must see no-available-spot, got %v", err)
	}
	assert.Equal(t, 1, won, "exactly one caller claims the last spot")

	spots, err := env.store.SpotsByLot(ctx, lot.ID)
	require.NoError(t, err)
	require.Len(t, spots, 1)
	assert.Equal(t, model.SpotOccupied, spots[0].Status)

	stats, err := env.store.DashboardStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.ActiveReservations, "one open reservation per claimed spot")
}
