package service

import (
	"context"
	"time"

	"github.com/iliyamo/parking-spot-reservation/internal/cache"
	"github.com/iliyamo/parking-spot-reservation/internal/model"
	"github.com/iliyamo/parking-spot-reservation/internal/store"
)

// SpotAllocator atomically pairs a new reservation with an available spot.
// The claim runs in one store transaction under the lot's row lock: when N
// callers race for the last spot, exactly one commits and the rest observe
// ErrNoAvailableSpot, never a double assignment.
type SpotAllocator struct {
	store store.Store
	inv   *cache.Invalidator
	pub   EventPublisher
}

// NewSpotAllocator constructs a SpotAllocator. pub may be nil when no broker
// is configured.
func NewSpotAllocator(st store.Store, inv *cache.Invalidator, pub EventPublisher) *SpotAllocator {
	return &SpotAllocator{store: st, inv: inv, pub: pub}
}

// Allocate claims the earliest-created available spot in the lot for the
// user and opens a reservation snapshotting the lot's current hourly price.
// It fails with store.ErrLotNotFound, store.ErrActiveBookingExists or
// store.ErrNoAvailableSpot; on any failure nothing is persisted, so the
// caller may simply retry.
func (a *SpotAllocator) Allocate(ctx context.Context, lotID, userID uint64) (*model.Reservation, error) {
	var res *model.Reservation
	err := a.store.Atomically(ctx, func(tx store.Tx) error {
		lot, err := tx.LotForUpdate(ctx, lotID)
		if err != nil {
			return err
		}
		active, err := tx.ActiveReservationByUser(ctx, userID)
		if err != nil {
			return err
		}
		if active != nil {
			return store.ErrActiveBookingExists
		}
		spot, err := tx.FirstAvailableSpotForUpdate(ctx, lotID)
		if err != nil {
			return err
		}
		if err := tx.UpdateSpotStatus(ctx, spot.ID, model.SpotOccupied); err != nil {
			return err
		}
		r := &model.Reservation{
			SpotID:       spot.ID,
			UserID:       userID,
			LotID:        lot.ID,
			LotName:      lot.Name,
			Address:      lot.Address,
			StartedAt:    time.Now().UTC(),
			PricePerHour: lot.Price,
			Status:       model.ReservationActive,
		}
		if err := tx.InsertReservation(ctx, r); err != nil {
			return err
		}
		res = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	a.inv.BookingChanged(ctx, lotID, userID)
	if a.pub != nil {
		a.pub.BookingOpened(ctx, res)
	}
	return res, nil
}
