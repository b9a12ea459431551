package service

import (
	"context"
	"time"

	"github.com/iliyamo/parking-spot-reservation/internal/billing"
	"github.com/iliyamo/parking-spot-reservation/internal/cache"
	"github.com/iliyamo/parking-spot-reservation/internal/config"
	"github.com/iliyamo/parking-spot-reservation/internal/model"
	"github.com/iliyamo/parking-spot-reservation/internal/store"
)

// ReservationLedger owns the reservation lifecycle after allocation: closing
// reservations with their billed cost, and the read-only query surface
// (active booking, history, per-user and dashboard aggregates) consumed by
// handlers, exports and notifications.
type ReservationLedger struct {
	store store.Store
	cache *cache.Store
	ttl   config.CacheConfig
	inv   *cache.Invalidator
	pub   EventPublisher
}

// NewReservationLedger constructs a ReservationLedger. pub may be nil.
func NewReservationLedger(st store.Store, cs *cache.Store, ttl config.CacheConfig, inv *cache.Invalidator, pub EventPublisher) *ReservationLedger {
	return &ReservationLedger{store: st, cache: cs, ttl: ttl, inv: inv, pub: pub}
}

// Release closes the user's reservation: it stamps the leaving time, bills
// the stay using the hourly price snapshotted at booking time, and frees the
// spot — all in one transaction, so a concurrent allocate can never observe
// a freed spot with a still-open reservation or the reverse. A reservation
// owned by another user reads as store.ErrReservationNotFound; releasing
// twice fails with store.ErrAlreadyReleased and changes nothing.
func (l *ReservationLedger) Release(ctx context.Context, reservationID, userID uint64) (*model.Reservation, error) {
	var res *model.Reservation
	err := l.store.Atomically(ctx, func(tx store.Tx) error {
		r, err := tx.ReservationForUpdate(ctx, reservationID)
		if err != nil {
			return err
		}
		if r.UserID != userID {
			// ownership mismatch masked as not-found
			return store.ErrReservationNotFound
		}
		if r.EndedAt != nil {
			return store.ErrAlreadyReleased
		}
		now := time.Now().UTC()
		cost := billing.Cost(r.StartedAt, &now, r.PricePerHour)
		if err := tx.CloseReservation(ctx, r.ID, now, cost); err != nil {
			return err
		}
		if err := tx.UpdateSpotStatus(ctx, r.SpotID, model.SpotAvailable); err != nil {
			return err
		}
		r.EndedAt = &now
		r.Cost = cost
		r.Status = model.ReservationCompleted
		res = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	l.inv.BookingChanged(ctx, res.LotID, userID)
	if l.pub != nil {
		l.pub.BookingClosed(ctx, res)
	}
	return res, nil
}

// ActiveBooking returns the user's open reservation, or nil when the user
// has none. Never cached: the caller is usually about to act on it.
func (l *ReservationLedger) ActiveBooking(ctx context.Context, userID uint64) (*model.Reservation, error) {
	return l.store.ActiveReservationByUser(ctx, userID)
}

// History returns the user's reservations, newest first.
func (l *ReservationLedger) History(ctx context.Context, userID uint64) ([]*model.Reservation, error) {
	key := cache.KeyUserBookings(userID)
	var cached []*model.Reservation
	if l.cache.Get(ctx, key, &cached) {
		return cached, nil
	}
	out, err := l.store.ReservationsByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	l.cache.Set(ctx, key, out, l.ttl.History)
	return out, nil
}

// Stats aggregates the user's bookings; the monthly counter covers the
// current calendar month in UTC.
func (l *ReservationLedger) Stats(ctx context.Context, userID uint64) (*model.UserStats, error) {
	key := cache.KeyUserStats(userID)
	var cached model.UserStats
	if l.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}
	now := time.Now().UTC()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	st, err := l.store.UserStats(ctx, userID, monthStart)
	if err != nil {
		return nil, err
	}
	l.cache.Set(ctx, key, st, l.ttl.UserStats)
	return st, nil
}

// Dashboard returns the system-wide occupancy aggregates for the admin
// dashboard.
func (l *ReservationLedger) Dashboard(ctx context.Context) (*model.DashboardStats, error) {
	var cached model.DashboardStats
	if l.cache.Get(ctx, cache.KeyDashboardStats, &cached) {
		return &cached, nil
	}
	st, err := l.store.DashboardStats(ctx)
	if err != nil {
		return nil, err
	}
	l.cache.Set(ctx, cache.KeyDashboardStats, st, l.ttl.Dashboard)
	return st, nil
}

// RecentActivity returns the latest bookings across all users.
func (l *ReservationLedger) RecentActivity(ctx context.Context, limit int) ([]*model.ActivityEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	return l.store.RecentReservations(ctx, limit)
}

// Users returns every account with its booking counters, for the admin user
// listing. Uncached: admins read it rarely and expect it current.
func (l *ReservationLedger) Users(ctx context.Context) ([]*model.UserSummary, error) {
	return l.store.ListUsers(ctx)
}
