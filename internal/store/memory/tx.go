package memory

import (
	"context"
	"fmt"
	"time"

	"github.com/iliyamo/parking-spot-reservation/internal/model"
	"github.com/iliyamo/parking-spot-reservation/internal/store"
)

// memTx implements store.Tx. The store mutex is already held by Atomically,
// so methods mutate the live maps directly; rollback is the snapshot restore.
type memTx struct {
	s *Store
}

func (t *memTx) LotForUpdate(_ context.Context, lotID uint64) (*model.Lot, error) {
	l, ok := t.s.lots[lotID]
	if !ok {
		return nil, store.ErrLotNotFound
	}
	return l, nil
}

func (t *memTx) ActiveReservationByUser(_ context.Context, userID uint64) (*model.Reservation, error) {
	return t.s.activeReservation(userID), nil
}

func (t *memTx) FirstAvailableSpotForUpdate(_ context.Context, lotID uint64) (*model.Spot, error) {
	for _, id := range t.s.sortedSpotIDs(lotID) {
		if sp := t.s.spots[id]; sp.Status == model.SpotAvailable {
			return sp, nil
		}
	}
	return nil, store.ErrNoAvailableSpot
}

func (t *memTx) UpdateSpotStatus(_ context.Context, spotID uint64, status string) error {
	sp, ok := t.s.spots[spotID]
	if !ok {
		return fmt.Errorf("spot %d not found", spotID)
	}
	sp.Status = status
	return nil
}

func (t *memTx) InsertReservation(_ context.Context, r *model.Reservation) error {
	// mirror the unique one-open-reservation index
	if t.s.activeReservation(r.UserID) != nil {
		return store.ErrActiveBookingExists
	}
	t.s.resSeq++
	r.ID = t.s.resSeq
	r.CreatedAt = time.Now().UTC()
	c := *r
	t.s.reservations[r.ID] = &c
	return nil
}

func (t *memTx) ReservationForUpdate(_ context.Context, id uint64) (*model.Reservation, error) {
	r, ok := t.s.reservations[id]
	if !ok {
		return nil, store.ErrReservationNotFound
	}
	c := *r
	return &c, nil
}

func (t *memTx) CloseReservation(_ context.Context, id uint64, endedAt time.Time, cost float64) error {
	r, ok := t.s.reservations[id]
	if !ok {
		return store.ErrReservationNotFound
	}
	if r.EndedAt != nil {
		return store.ErrAlreadyReleased
	}
	e := endedAt
	r.EndedAt = &e
	r.Cost = cost
	r.Status = model.ReservationCompleted
	return nil
}

func (t *memTx) InsertLot(_ context.Context, l *model.Lot) error {
	t.s.lotSeq++
	l.ID = t.s.lotSeq
	now := time.Now().UTC()
	l.CreatedAt = now
	l.UpdatedAt = now
	c := *l
	t.s.lots[l.ID] = &c
	return nil
}

func (t *memTx) InsertSpots(_ context.Context, lotID uint64, n int) error {
	now := time.Now().UTC()
	for i := 0; i < n; i++ {
		t.s.spotSeq++
		t.s.spots[t.s.spotSeq] = &model.Spot{
			ID:        t.s.spotSeq,
			LotID:     lotID,
			Status:    model.SpotAvailable,
			CreatedAt: now,
		}
	}
	return nil
}

func (t *memTx) SpotCounts(_ context.Context, lotID uint64) (int, int, error) {
	total, occupied := 0, 0
	for _, sp := range t.s.spots {
		if sp.LotID != lotID {
			continue
		}
		total++
		if sp.Status == model.SpotOccupied {
			occupied++
		}
	}
	return total, occupied, nil
}

func (t *memTx) DeleteAvailableSpots(_ context.Context, lotID uint64, n int) (int, error) {
	ids := t.s.sortedSpotIDs(lotID)
	removed := 0
	// newest first
	for i := len(ids) - 1; i >= 0 && removed < n; i-- {
		sp := t.s.spots[ids[i]]
		if sp.Status != model.SpotAvailable {
			continue
		}
		t.deleteSpot(ids[i])
		removed++
	}
	return removed, nil
}

func (t *memTx) UpdateLot(_ context.Context, l *model.Lot) error {
	cur, ok := t.s.lots[l.ID]
	if !ok {
		return store.ErrLotNotFound
	}
	created := cur.CreatedAt
	c := *l
	c.CreatedAt = created
	c.UpdatedAt = time.Now().UTC()
	t.s.lots[l.ID] = &c
	return nil
}

func (t *memTx) DeleteLot(_ context.Context, lotID uint64) error {
	for _, id := range t.s.sortedSpotIDs(lotID) {
		t.deleteSpot(id)
	}
	delete(t.s.lots, lotID)
	return nil
}

// deleteSpot cascades to reservations referencing the spot, mirroring the
// foreign key behaviour of the MySQL schema.
func (t *memTx) deleteSpot(spotID uint64) {
	delete(t.s.spots, spotID)
	for id, r := range t.s.reservations {
		if r.SpotID == spotID {
			delete(t.s.reservations, id)
		}
	}
}
