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

func TestReleaseBillsSnapshottedPrice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	lot := env.mustCreateLot(t, "Central", 50, 2)

	res, err := env.allocator.Allocate(ctx, lot.ID, 1)
	require.NoError(t, err)

	// repricing the lot must not affect the booking already open
	newPrice := 120.0
	_, err = env.lots.UpdateLot(ctx, lot.ID, service.LotUpdate{Price: &newPrice})
	require.NoError(t, err)

	out, err := env.ledger.Release(ctx, res.ID, 1)
	require.NoError(t, err)
	require.NotNil(t, out.EndedAt)
	assert.Equal(t, model.ReservationCompleted, out.Status)
	// sub-hour stay bills the one-hour floor at the price agreed at booking
	assert.Equal(t, 50.0, out.Cost)
}

func TestReleaseTwiceFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	lot := env.mustCreateLot(t, "Central", 50, 1)

	res, err := env.allocator.Allocate(ctx, lot.ID, 1)
	require.NoError(t, err)

	first, err := env.ledger.Release(ctx, res.ID, 1)
	require.NoError(t, err)

	_, err = env.ledger.Release(ctx, res.ID, 1)
	assert.ErrorIs(t, err, store.ErrAlreadyReleased)

	// the stored reservation keeps the original closing values
	history, err := env.ledger.History(ctx, 1)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, first.Cost, history[0].Cost)
	require.NotNil(t, history[0].EndedAt)
	assert.True(t, first.EndedAt.Equal(*history[0].EndedAt))
}

func TestReleaseForeignReservationMasked(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	lot := env.mustCreateLot(t, "Central", 50, 2)

	res, err := env.allocator.Allocate(ctx, lot.ID, 1)
	require.NoError(t, err)

	_, err = env.ledger.Release(ctx, res.ID, 2)
	assert.ErrorIs(t, err, store.ErrReservationNotFound,
		"another user's reservation reads as missing, not forbidden")

	// untouched: owner can still release
	_, err = env.ledger.Release(ctx, res.ID, 1)
	assert.NoError(t, err)
}

func TestReleaseFreesSpotForReuse(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	lot := env.mustCreateLot(t, "Tiny", 25, 1)

	res, err := env.allocator.Allocate(ctx, lot.ID, 1)
	require.NoError(t, err)
	_, err = env.ledger.Release(ctx, res.ID, 1)
	require.NoError(t, err)

	res2, err := env.allocator.Allocate(ctx, lot.ID, 2)
	require.NoError(t, err)
	assert.Equal(t, res.SpotID, res2.SpotID, "freed spot is claimable again")
}

func TestActiveBookingNilWhenNone(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	lot := env.mustCreateLot(t, "Central", 50, 1)

	active, err := env.ledger.ActiveBooking(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, active)

	res, err := env.allocator.Allocate(ctx, lot.ID, 1)
	require.NoError(t, err)

	active, err = env.ledger.ActiveBooking(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, res.ID, active.ID)
}

func TestHistoryNewestFirst(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	lot := env.mustCreateLot(t, "Central", 50, 1)

	first, err := env.allocator.Allocate(ctx, lot.ID, 1)
	require.NoError(t, err)
	_, err = env.ledger.Release(ctx, first.ID, 1)
	require.NoError(t, err)

	second, err := env.allocator.Allocate(ctx, lot.ID, 1)
	require.NoError(t, err)

	history, err := env.ledger.History(ctx, 1)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, second.ID, history[0].ID)
	assert.Equal(t, first.ID, history[1].ID)
}

func TestUserStats(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	lot := env.mustCreateLot(t, "Central", 50, 2)

	first, err := env.allocator.Allocate(ctx, lot.ID, 1)
	require.NoError(t, err)
	closed, err := env.ledger.Release(ctx, first.ID, 1)
	require.NoError(t, err)

	_, err = env.allocator.Allocate(ctx, lot.ID, 1)
	require.NoError(t, err)

	st, err := env.ledger.Stats(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, st.TotalBookings)
	assert.Equal(t, 1, st.ActiveBookings)
	assert.Equal(t, closed.Cost, st.TotalSpent, "open bookings do not accrue spend")
	assert.Equal(t, 2, st.MonthlyBookings)
}

func TestDashboardAndActivity(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.store.AddUser("asha", "user")
	env.store.AddUser("meera", "user")

	lotA := env.mustCreateLot(t, "North", 30, 2)
	env.mustCreateLot(t, "South", 45, 3)

	res, err := env.allocator.Allocate(ctx, lotA.ID, 1)
	require.NoError(t, err)

	stats, err := env.ledger.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalLots)
	assert.Equal(t, 5, stats.TotalSpots)
	assert.Equal(t, 1, stats.OccupiedSpots)
	assert.Equal(t, 4, stats.AvailableSpots)
	assert.Equal(t, 2, stats.TotalUsers)
	assert.Equal(t, 1, stats.ActiveReservations)

	activity, err := env.ledger.RecentActivity(ctx, 0)
	require.NoError(t, err)
	require.Len(t, activity, 1)
	assert.Equal(t, res.ID, activity[0].ReservationID)
	assert.Equal(t, "asha", activity[0].Username)
	assert.Equal(t, model.ReservationActive, activity[0].Status)
}

func TestUserListingCounters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	asha := env.store.AddUser("asha", "user")
	meera := env.store.AddUser("meera", "user")

	lot := env.mustCreateLot(t, "Central", 50, 2)

	// asha: one completed, one open; meera: no bookings
	first, err := env.allocator.Allocate(ctx, lot.ID, asha)
	require.NoError(t, err)
	closed, err := env.ledger.Release(ctx, first.ID, asha)
	require.NoError(t, err)
	_, err = env.allocator.Allocate(ctx, lot.ID, asha)
	require.NoError(t, err)

	users, err := env.ledger.Users(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)

	assert.Equal(t, asha, users[0].ID)
	assert.Equal(t, "asha", users[0].Username)
	assert.Equal(t, 2, users[0].TotalBookings)
	assert.Equal(t, 1, users[0].ActiveBookings)
	assert.Equal(t, closed.Cost, users[0].TotalSpent)

	assert.Equal(t, meera, users[1].ID)
	assert.Equal(t, 0, users[1].TotalBookings)
	assert.Equal(t, 0.0, users[1].TotalSpent)
}
