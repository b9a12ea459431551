// Package mysql implements the engine store on MySQL. Mutations run inside
// InnoDB transactions; per-lot serialization is achieved by locking the lot
// row with SELECT ... FOR UPDATE before touching its spots, so two concurrent
// claims on the same lot can never hand out the same spot.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/parking-spot-reservation/internal/billing"
	"github.com/iliyamo/parking-spot-reservation/internal/model"
	"github.com/iliyamo/parking-spot-reservation/internal/store"
)

// Store wraps a *sql.DB and satisfies store.Store.
type Store struct {
	db *sql.DB
}

// New returns a Store bound to the given database handle.
func New(db *sql.DB) *Store { return &Store{db: db} }

// DB exposes the underlying handle for collaborators that manage their own
// tables (users, refresh tokens).
func (s *Store) DB() *sql.DB { return s.db }

// Atomically runs fn inside a single transaction and commits only when fn
// succeeds. Any error from fn or from commit leaves the database untouched.
func (s *Store) Atomically(ctx context.Context, fn func(store.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(&sqlTx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetLot loads a single lot without its derived availability count.
func (s *Store) GetLot(ctx context.Context, lotID uint64) (*model.Lot, error) {
	const q = `SELECT id, name, address, pin_code, price, spot_count, created_at, updated_at
	           FROM parking_lots WHERE id = ?`
	var l model.Lot
	err := s.db.QueryRowContext(ctx, q, lotID).Scan(
		&l.ID, &l.Name, &l.Address, &l.PinCode, &l.Price, &l.SpotCount, &l.CreatedAt, &l.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrLotNotFound
	}
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// ListLots returns every lot with its current available spot count.
func (s *Store) ListLots(ctx context.Context) ([]*model.Lot, error) {
	const q = `SELECT l.id, l.name, l.address, l.pin_code, l.price, l.spot_count,
	                  (SELECT COUNT(*) FROM parking_spots p WHERE p.lot_id = l.id AND p.status = 'A'),
	                  l.created_at, l.updated_at
	           FROM parking_lots l
	           ORDER BY l.id`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	lots := make([]*model.Lot, 0)
	for rows.Next() {
		l := new(model.Lot)
		if err := rows.Scan(&l.ID, &l.Name, &l.Address, &l.PinCode, &l.Price, &l.SpotCount,
			&l.AvailableSpots, &l.CreatedAt, &l.UpdatedAt); err != nil {
			return nil, err
		}
		lots = append(lots, l)
	}
	return lots, rows.Err()
}

// SpotsByLot lists a lot's spots in insertion order.
func (s *Store) SpotsByLot(ctx context.Context, lotID uint64) ([]*model.Spot, error) {
	const q = `SELECT id, lot_id, status, created_at FROM parking_spots WHERE lot_id = ? ORDER BY id`
	rows, err := s.db.QueryContext(ctx, q, lotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	spots := make([]*model.Spot, 0)
	for rows.Next() {
		sp := new(model.Spot)
		if err := rows.Scan(&sp.ID, &sp.LotID, &sp.Status, &sp.CreatedAt); err != nil {
			return nil, err
		}
		spots = append(spots, sp)
	}
	return spots, rows.Err()
}

const reservationSelect = `SELECT r.id, r.spot_id, r.user_id, p.lot_id, l.name, l.address,
	       r.started_at, r.ended_at, r.price_per_hour, r.cost, r.created_at
	FROM reservations r
	JOIN parking_spots p ON p.id = r.spot_id
	JOIN parking_lots l ON l.id = p.lot_id`

func scanReservation(sc interface{ Scan(...any) error }) (*model.Reservation, error) {
	var r model.Reservation
	var ended sql.NullTime
	if err := sc.Scan(&r.ID, &r.SpotID, &r.UserID, &r.LotID, &r.LotName, &r.Address,
		&r.StartedAt, &ended, &r.PricePerHour, &r.Cost, &r.CreatedAt); err != nil {
		return nil, err
	}
	if ended.Valid {
		t := ended.Time
		r.EndedAt = &t
		r.Status = model.ReservationCompleted
	} else {
		r.Status = model.ReservationActive
	}
	return &r, nil
}

// ActiveReservationByUser returns the user's open reservation or nil.
func (s *Store) ActiveReservationByUser(ctx context.Context, userID uint64) (*model.Reservation, error) {
	q := reservationSelect + ` WHERE r.user_id = ? AND r.ended_at IS NULL LIMIT 1`
	r, err := scanReservation(s.db.QueryRowContext(ctx, q, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return r, err
}

// ReservationsByUser returns the user's full history, newest first.
func (s *Store) ReservationsByUser(ctx context.Context, userID uint64) ([]*model.Reservation, error) {
	q := reservationSelect + ` WHERE r.user_id = ? ORDER BY r.started_at DESC, r.id DESC`
	rows, err := s.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*model.Reservation, 0)
	for rows.Next() {
		r, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// UserStats aggregates booking counts and spend for one user.
func (s *Store) UserStats(ctx context.Context, userID uint64, monthStart time.Time) (*model.UserStats, error) {
	const q = `SELECT COUNT(*),
	                  COALESCE(SUM(ended_at IS NULL), 0),
	                  COALESCE(SUM(cost), 0),
	                  COALESCE(SUM(started_at >= ?), 0)
	           FROM reservations WHERE user_id = ?`
	var st model.UserStats
	err := s.db.QueryRowContext(ctx, q, monthStart, userID).Scan(
		&st.TotalBookings, &st.ActiveBookings, &st.TotalSpent, &st.MonthlyBookings,
	)
	if err != nil {
		return nil, err
	}
	st.TotalSpent = billing.Round2(st.TotalSpent)
	return &st, nil
}

// DashboardStats computes system-wide occupancy counts on demand.
func (s *Store) DashboardStats(ctx context.Context) (*model.DashboardStats, error) {
	const q = `SELECT
	    (SELECT COUNT(*) FROM parking_lots),
	    (SELECT COUNT(*) FROM parking_spots),
	    (SELECT COUNT(*) FROM parking_spots WHERE status = 'O'),
	    (SELECT COUNT(*) FROM parking_spots WHERE status = 'A'),
	    (SELECT COUNT(*) FROM users WHERE role = 'user'),
	    (SELECT COUNT(*) FROM reservations WHERE ended_at IS NULL)`
	var st model.DashboardStats
	err := s.db.QueryRowContext(ctx, q).Scan(
		&st.TotalLots, &st.TotalSpots, &st.OccupiedSpots, &st.AvailableSpots,
		&st.TotalUsers, &st.ActiveReservations,
	)
	if err != nil {
		return nil, err
	}
	return &st, nil
}

// ListUsers returns every account with its booking counters.
func (s *Store) ListUsers(ctx context.Context) ([]*model.UserSummary, error) {
	const q = `SELECT u.id, u.username, u.email, u.role,
	                  COUNT(r.id),
	                  COALESCE(SUM(r.ended_at IS NULL), 0),
	                  COALESCE(SUM(r.cost), 0)
	           FROM users u
	           LEFT JOIN reservations r ON r.user_id = u.id
	           GROUP BY u.id, u.username, u.email, u.role
	           ORDER BY u.id`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*model.UserSummary, 0)
	for rows.Next() {
		var u model.UserSummary
		if err := rows.Scan(&u.ID, &u.Username, &u.Email, &u.Role,
			&u.TotalBookings, &u.ActiveBookings, &u.TotalSpent); err != nil {
			return nil, err
		}
		u.TotalSpent = billing.Round2(u.TotalSpent)
		out = append(out, &u)
	}
	return out, rows.Err()
}

// RecentReservations returns the latest bookings across all users for the
// admin activity feed.
func (s *Store) RecentReservations(ctx context.Context, limit int) ([]*model.ActivityEntry, error) {
	const q = `SELECT r.id, u.username, l.name, r.spot_id, r.started_at, r.ended_at, r.cost
	           FROM reservations r
	           JOIN users u ON u.id = r.user_id
	           JOIN parking_spots p ON p.id = r.spot_id
	           JOIN parking_lots l ON l.id = p.lot_id
	           ORDER BY r.started_at DESC, r.id DESC
	           LIMIT ?`
	rows, err := s.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*model.ActivityEntry, 0)
	for rows.Next() {
		var e model.ActivityEntry
		var ended sql.NullTime
		if err := rows.Scan(&e.ReservationID, &e.Username, &e.LotName, &e.SpotID,
			&e.StartedAt, &ended, &e.Cost); err != nil {
			return nil, err
		}
		if ended.Valid {
			t := ended.Time
			e.EndedAt = &t
			e.Status = model.ReservationCompleted
		} else {
			e.Status = model.ReservationActive
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
