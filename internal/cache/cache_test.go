package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

// A nil redis client must disable caching without panics; this is the
// degraded mode the server runs in when redis is unreachable at startup.
func TestNilClientDisablesCache(t *testing.T) {
	ctx := context.Background()
	s := NewStore(nil)

	assert.False(t, s.Enabled())

	var dest []string
	assert.False(t, s.Get(ctx, KeyAllLots, &dest))

	s.Set(ctx, KeyAllLots, []string{"x"}, 0)
	s.Delete(ctx, KeyAllLots)

	inv := NewInvalidator(s)
	inv.BookingChanged(ctx, 1, 2)
	inv.LotChanged(ctx, 1)
}

func TestKeyFormats(t *testing.T) {
	assert.Equal(t, "lot_7_spots", KeyLotSpots(7))
	assert.Equal(t, "user_9_stats", KeyUserStats(9))
	assert.Equal(t, "user_9_bookings", KeyUserBookings(9))
}
