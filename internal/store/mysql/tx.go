package mysql

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/parking-spot-reservation/internal/model"
	"github.com/iliyamo/parking-spot-reservation/internal/store"
)

// sqlTx implements store.Tx over an open *sql.Tx. Lifetime and rollback are
// owned by Store.Atomically.
type sqlTx struct {
	tx *sql.Tx
}

// LotForUpdate takes the lot row lock that serializes every allocation and
// capacity mutation on this lot.
func (t *sqlTx) LotForUpdate(ctx context.Context, lotID uint64) (*model.Lot, error) {
	const q = `SELECT id, name, address, pin_code, price, spot_count, created_at, updated_at
	           FROM parking_lots WHERE id = ? FOR UPDATE`
	var l model.Lot
	err := t.tx.QueryRowContext(ctx, q, lotID).Scan(
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

func (t *sqlTx) ActiveReservationByUser(ctx context.Context, userID uint64) (*model.Reservation, error) {
	q := reservationSelect + ` WHERE r.user_id = ? AND r.ended_at IS NULL LIMIT 1 FOR UPDATE`
	r, err := scanReservation(t.tx.QueryRowContext(ctx, q, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return r, err
}

// FirstAvailableSpotForUpdate picks the earliest-created available spot.
// Insertion order equals primary key order (AUTO_INCREMENT), which keeps the
// tie-break deterministic.
func (t *sqlTx) FirstAvailableSpotForUpdate(ctx context.Context, lotID uint64) (*model.Spot, error) {
	const q = `SELECT id, lot_id, status, created_at FROM parking_spots
	           WHERE lot_id = ? AND status = 'A'
	           ORDER BY id LIMIT 1 FOR UPDATE`
	var sp model.Spot
	err := t.tx.QueryRowContext(ctx, q, lotID).Scan(&sp.ID, &sp.LotID, &sp.Status, &sp.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNoAvailableSpot
	}
	if err != nil {
		return nil, err
	}
	return &sp, nil
}

func (t *sqlTx) UpdateSpotStatus(ctx context.Context, spotID uint64, status string) error {
	_, err := t.tx.ExecContext(ctx, `UPDATE parking_spots SET status = ? WHERE id = ?`, status, spotID)
	return err
}

func (t *sqlTx) InsertReservation(ctx context.Context, r *model.Reservation) error {
	const q = `INSERT INTO reservations (spot_id, user_id, started_at, price_per_hour, cost)
	           VALUES (?, ?, ?, ?, 0)`
	res, err := t.tx.ExecContext(ctx, q, r.SpotID, r.UserID, r.StartedAt.UTC(), r.PricePerHour)
	if err != nil {
		// 1062: the unique one-open-reservation index fired. The lot row
		// lock does not serialize the same user racing two different lots;
		// the index does.
		if strings.Contains(err.Error(), "1062") {
			return store.ErrActiveBookingExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	r.ID = uint64(id)
	return nil
}

func (t *sqlTx) ReservationForUpdate(ctx context.Context, id uint64) (*model.Reservation, error) {
	q := reservationSelect + ` WHERE r.id = ? FOR UPDATE`
	r, err := scanReservation(t.tx.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrReservationNotFound
	}
	return r, err
}

func (t *sqlTx) CloseReservation(ctx context.Context, id uint64, endedAt time.Time, cost float64) error {
	const q = `UPDATE reservations SET ended_at = ?, cost = ? WHERE id = ? AND ended_at IS NULL`
	res, err := t.tx.ExecContext(ctx, q, endedAt.UTC(), cost, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrAlreadyReleased
	}
	return nil
}

func (t *sqlTx) InsertLot(ctx context.Context, l *model.Lot) error {
	const q = `INSERT INTO parking_lots (name, address, pin_code, price, spot_count)
	           VALUES (?, ?, ?, ?, ?)`
	res, err := t.tx.ExecContext(ctx, q, l.Name, l.Address, l.PinCode, l.Price, l.SpotCount)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	l.ID = uint64(id)
	// Read back DB-assigned timestamps.
	const sel = `SELECT created_at, updated_at FROM parking_lots WHERE id = ?`
	return t.tx.QueryRowContext(ctx, sel, l.ID).Scan(&l.CreatedAt, &l.UpdatedAt)
}

func (t *sqlTx) InsertSpots(ctx context.Context, lotID uint64, n int) error {
	if n <= 0 {
		return nil
	}
	query := `INSERT INTO parking_spots (lot_id, status) VALUES ` +
		strings.TrimSuffix(strings.Repeat("(?, 'A'),", n), ",")
	args := make([]interface{}, 0, n)
	for i := 0; i < n; i++ {
		args = append(args, lotID)
	}
	_, err := t.tx.ExecContext(ctx, query, args...)
	return err
}

func (t *sqlTx) SpotCounts(ctx context.Context, lotID uint64) (int, int, error) {
	const q = `SELECT COUNT(*), COALESCE(SUM(status = 'O'), 0) FROM parking_spots WHERE lot_id = ?`
	var total, occupied int
	if err := t.tx.QueryRowContext(ctx, q, lotID).Scan(&total, &occupied); err != nil {
		return 0, 0, err
	}
	return total, occupied, nil
}

// DeleteAvailableSpots removes available spots newest-first. The lot row lock
// held by the caller keeps the count stable between SpotCounts and here.
func (t *sqlTx) DeleteAvailableSpots(ctx context.Context, lotID uint64, n int) (int, error) {
	if n <= 0 {
		return 0, nil
	}
	const q = `DELETE FROM parking_spots WHERE lot_id = ? AND status = 'A' ORDER BY id DESC LIMIT ?`
	res, err := t.tx.ExecContext(ctx, q, lotID, n)
	if err != nil {
		return 0, err
	}
	removed, err := res.RowsAffected()
	return int(removed), err
}

func (t *sqlTx) UpdateLot(ctx context.Context, l *model.Lot) error {
	const q = `UPDATE parking_lots
	           SET name = ?, address = ?, pin_code = ?, price = ?, spot_count = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	_, err := t.tx.ExecContext(ctx, q, l.Name, l.Address, l.PinCode, l.Price, l.SpotCount, l.ID)
	return err
}

func (t *sqlTx) DeleteLot(ctx context.Context, lotID uint64) error {
	if _, err := t.tx.ExecContext(ctx, `DELETE FROM parking_spots WHERE lot_id = ?`, lotID); err != nil {
		return err
	}
	_, err := t.tx.ExecContext(ctx, `DELETE FROM parking_lots WHERE id = ?`, lotID)
	return err
}
