package cache

import "context"

// Invalidator is the key policy shared by every mutation in the engine. It
// is only called after a committed transaction; failed operations invalidate
// nothing.
type Invalidator struct {
	store *Store
}

// NewInvalidator returns an Invalidator over the given cache store.
func NewInvalidator(s *Store) *Invalidator { return &Invalidator{store: s} }

// BookingChanged drops every key derived from spot occupancy after an
// allocate or release in the given lot by the given user.
func (i *Invalidator) BookingChanged(ctx context.Context, lotID, userID uint64) {
	i.store.Delete(ctx,
		KeyAvailableLots,
		KeyDashboardStats,
		KeyLotSpots(lotID),
		KeyUserStats(userID),
		KeyUserBookings(userID),
	)
}

// LotChanged drops every key derived from the lot pool after a lot is
// created, resized, repriced or deleted.
func (i *Invalidator) LotChanged(ctx context.Context, lotID uint64) {
	i.store.Delete(ctx,
		KeyAllLots,
		KeyAvailableLots,
		KeyDashboardStats,
		KeyLotSpots(lotID),
	)
}
