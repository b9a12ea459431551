package store

import (
	"context"
	"time"

	"github.com/iliyamo/parking-spot-reservation/internal/model"
)

// Tx is the transactional read-modify-write surface used by the reservation
// engine. Every method runs inside the transaction opened by Atomically;
// implementations must guarantee that a lot locked via LotForUpdate cannot
// see conflicting spot or reservation writes from another transaction until
// commit. Returning an error from any method aborts the whole transaction.
type Tx interface {
	// LotForUpdate loads a lot and takes a row lock on it, serializing all
	// allocation and capacity mutations on the same lot. Returns
	// ErrLotNotFound when the lot does not exist.
	LotForUpdate(ctx context.Context, lotID uint64) (*model.Lot, error)

	// ActiveReservationByUser returns the user's open reservation, or nil
	// when the user has none.
	ActiveReservationByUser(ctx context.Context, userID uint64) (*model.Reservation, error)

	// FirstAvailableSpotForUpdate selects the earliest-created available
	// spot in the lot and locks it. Returns ErrNoAvailableSpot when every
	// spot is occupied.
	FirstAvailableSpotForUpdate(ctx context.Context, lotID uint64) (*model.Spot, error)

	// UpdateSpotStatus flips a spot between available and occupied.
	UpdateSpotStatus(ctx context.Context, spotID uint64, status string) error

	// InsertReservation persists a new open reservation and fills in its ID.
	// Returns ErrActiveBookingExists when the user already holds an open
	// reservation: the store enforces the one-open-reservation invariant
	// itself, so it holds even when two claims race on different lots.
	InsertReservation(ctx context.Context, r *model.Reservation) error

	// ReservationForUpdate loads a reservation (with its lot denormalized)
	// and locks it. Returns ErrReservationNotFound when absent.
	ReservationForUpdate(ctx context.Context, id uint64) (*model.Reservation, error)

	// CloseReservation sets the end timestamp and billed cost. The caller
	// flips the owned spot back to available in the same transaction.
	CloseReservation(ctx context.Context, id uint64, endedAt time.Time, cost float64) error

	// InsertLot persists a new lot and fills in its ID and timestamps.
	InsertLot(ctx context.Context, l *model.Lot) error

	// InsertSpots appends n available spots to the lot.
	InsertSpots(ctx context.Context, lotID uint64, n int) error

	// SpotCounts returns the total and occupied spot counts for a lot.
	SpotCounts(ctx context.Context, lotID uint64) (total, occupied int, err error)

	// DeleteAvailableSpots removes up to n available spots from the lot,
	// most recently created first, and returns how many were removed.
	DeleteAvailableSpots(ctx context.Context, lotID uint64, n int) (int, error)

	// UpdateLot persists lot metadata, price and declared spot count.
	UpdateLot(ctx context.Context, l *model.Lot) error

	// DeleteLot removes the lot and all of its spots.
	DeleteLot(ctx context.Context, lotID uint64) error
}

// Store is the durable store handed to the engine as an explicit dependency.
// Atomically is the only way to mutate; the read queries below run outside
// any transaction and may observe any committed state.
type Store interface {
	// Atomically runs fn inside a single transaction. If fn returns an
	// error the transaction is rolled back in full and the error returned
	// unchanged; partial state is never observable.
	Atomically(ctx context.Context, fn func(Tx) error) error

	GetLot(ctx context.Context, lotID uint64) (*model.Lot, error)
	// ListLots returns all lots with AvailableSpots populated.
	ListLots(ctx context.Context) ([]*model.Lot, error)
	SpotsByLot(ctx context.Context, lotID uint64) ([]*model.Spot, error)
	// ActiveReservationByUser returns nil without error when the user has
	// no open reservation.
	ActiveReservationByUser(ctx context.Context, userID uint64) (*model.Reservation, error)
	// ReservationsByUser returns the user's history, newest first.
	ReservationsByUser(ctx context.Context, userID uint64) ([]*model.Reservation, error)
	// UserStats aggregates the user's bookings; monthStart bounds the
	// monthly counter.
	UserStats(ctx context.Context, userID uint64, monthStart time.Time) (*model.UserStats, error)
	DashboardStats(ctx context.Context) (*model.DashboardStats, error)
	RecentReservations(ctx context.Context, limit int) ([]*model.ActivityEntry, error)
	// ListUsers returns every account with its booking counters, for the
	// admin user listing.
	ListUsers(ctx context.Context) ([]*model.UserSummary, error)
}
