// Package memory provides an in-process store.Store used by unit tests. One
// mutex stands in for the database's transaction isolation: Atomically holds
// it for the whole critical section, and a snapshot taken at entry is
// restored when the callback fails, matching the full-rollback guarantee of
// the MySQL store.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/parking-spot-reservation/internal/billing"
	"github.com/iliyamo/parking-spot-reservation/internal/model"
	"github.com/iliyamo/parking-spot-reservation/internal/store"
)

// User is the minimal identity record the engine's aggregate queries need.
type User struct {
	ID       uint64
	Username string
	Role     string
}

// Store keeps all records in maps keyed by ID. IDs come from per-table
// sequences so insertion order equals ID order, like AUTO_INCREMENT.
type Store struct {
	mu           sync.Mutex
	lots         map[uint64]*model.Lot
	spots        map[uint64]*model.Spot
	reservations map[uint64]*model.Reservation
	users        map[uint64]*User

	lotSeq, spotSeq, resSeq, userSeq uint64
}

// New returns an empty in-memory store.
func New() *Store {
	return &Store{
		lots:         make(map[uint64]*model.Lot),
		spots:        make(map[uint64]*model.Spot),
		reservations: make(map[uint64]*model.Reservation),
		users:        make(map[uint64]*User),
	}
}

// AddUser registers a user and returns its ID.
func (s *Store) AddUser(username, role string) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.userSeq++
	s.users[s.userSeq] = &User{ID: s.userSeq, Username: username, Role: role}
	return s.userSeq
}

type snapshot struct {
	lots         map[uint64]*model.Lot
	spots        map[uint64]*model.Spot
	reservations map[uint64]*model.Reservation
	lotSeq, spotSeq, resSeq uint64
}

func (s *Store) snapshot() snapshot {
	snap := snapshot{
		lots:         make(map[uint64]*model.Lot, len(s.lots)),
		spots:        make(map[uint64]*model.Spot, len(s.spots)),
		reservations: make(map[uint64]*model.Reservation, len(s.reservations)),
		lotSeq:       s.lotSeq,
		spotSeq:      s.spotSeq,
		resSeq:       s.resSeq,
	}
	for id, l := range s.lots {
		c := *l
		snap.lots[id] = &c
	}
	for id, sp := range s.spots {
		c := *sp
		snap.spots[id] = &c
	}
	for id, r := range s.reservations {
		c := *r
		snap.reservations[id] = &c
	}
	return snap
}

func (s *Store) restore(snap snapshot) {
	s.lots = snap.lots
	s.spots = snap.spots
	s.reservations = snap.reservations
	s.lotSeq = snap.lotSeq
	s.spotSeq = snap.spotSeq
	s.resSeq = snap.resSeq
}

// Atomically serializes the callback against all other store access and
// rolls back every change when it fails.
func (s *Store) Atomically(_ context.Context, fn func(store.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.snapshot()
	if err := fn(&memTx{s: s}); err != nil {
		s.restore(snap)
		return err
	}
	return nil
}

func (s *Store) sortedSpotIDs(lotID uint64) []uint64 {
	ids := make([]uint64, 0)
	for id, sp := range s.spots {
		if sp.LotID == lotID {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s *Store) activeReservation(userID uint64) *model.Reservation {
	var found *model.Reservation
	for _, r := range s.reservations {
		if r.UserID == userID && r.EndedAt == nil {
			if found == nil || r.ID < found.ID {
				found = r
			}
		}
	}
	return found
}

// GetLot implements store.Store.
func (s *Store) GetLot(_ context.Context, lotID uint64) (*model.Lot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.lots[lotID]
	if !ok {
		return nil, store.ErrLotNotFound
	}
	c := *l
	return &c, nil
}

// ListLots implements store.Store.
func (s *Store) ListLots(_ context.Context) ([]*model.Lot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]uint64, 0, len(s.lots))
	for id := range s.lots {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]*model.Lot, 0, len(ids))
	for _, id := range ids {
		c := *s.lots[id]
		c.AvailableSpots = 0
		for _, sp := range s.spots {
			if sp.LotID == id && sp.Status == model.SpotAvailable {
				c.AvailableSpots++
			}
		}
		out = append(out, &c)
	}
	return out, nil
}

// SpotsByLot implements store.Store.
func (s *Store) SpotsByLot(_ context.Context, lotID uint64) ([]*model.Spot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Spot, 0)
	for _, id := range s.sortedSpotIDs(lotID) {
		c := *s.spots[id]
		out = append(out, &c)
	}
	return out, nil
}

// ActiveReservationByUser implements store.Store.
func (s *Store) ActiveReservationByUser(_ context.Context, userID uint64) (*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := s.activeReservation(userID)
	if r == nil {
		return nil, nil
	}
	c := *r
	return &c, nil
}

// ReservationsByUser implements store.Store.
func (s *Store) ReservationsByUser(_ context.Context, userID uint64) ([]*model.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.Reservation, 0)
	for _, r := range s.reservations {
		if r.UserID == userID {
			c := *r
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.After(out[j].StartedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// UserStats implements store.Store.
func (s *Store) UserStats(_ context.Context, userID uint64, monthStart time.Time) (*model.UserStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var st model.UserStats
	for _, r := range s.reservations {
		if r.UserID != userID {
			continue
		}
		st.TotalBookings++
		if r.EndedAt == nil {
			st.ActiveBookings++
		}
		st.TotalSpent += r.Cost
		if !r.StartedAt.Before(monthStart) {
			st.MonthlyBookings++
		}
	}
	st.TotalSpent = billing.Round2(st.TotalSpent)
	return &st, nil
}

// DashboardStats implements store.Store.
func (s *Store) DashboardStats(_ context.Context) (*model.DashboardStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var st model.DashboardStats
	st.TotalLots = len(s.lots)
	for _, sp := range s.spots {
		st.TotalSpots++
		if sp.Status == model.SpotOccupied {
			st.OccupiedSpots++
		} else {
			st.AvailableSpots++
		}
	}
	for _, u := range s.users {
		if u.Role == "user" {
			st.TotalUsers++
		}
	}
	for _, r := range s.reservations {
		if r.EndedAt == nil {
			st.ActiveReservations++
		}
	}
	return &st, nil
}

// ListUsers implements store.Store.
func (s *Store) ListUsers(_ context.Context) ([]*model.UserSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]uint64, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]*model.UserSummary, 0, len(ids))
	for _, id := range ids {
		u := s.users[id]
		sum := &model.UserSummary{ID: u.ID, Username: u.Username, Role: u.Role}
		for _, r := range s.reservations {
			if r.UserID != u.ID {
				continue
			}
			sum.TotalBookings++
			if r.EndedAt == nil {
				sum.ActiveBookings++
			}
			sum.TotalSpent += r.Cost
		}
		sum.TotalSpent = billing.Round2(sum.TotalSpent)
		out = append(out, sum)
	}
	return out, nil
}

// RecentReservations implements store.Store.
func (s *Store) RecentReservations(_ context.Context, limit int) ([]*model.ActivityEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := make([]*model.Reservation, 0, len(s.reservations))
	for _, r := range s.reservations {
		all = append(all, r)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].StartedAt.Equal(all[j].StartedAt) {
			return all[i].StartedAt.After(all[j].StartedAt)
		}
		return all[i].ID > all[j].ID
	})
	if limit > 0 && len(all) > limit {
		all = all[:limit]
	}
	out := make([]*model.ActivityEntry, 0, len(all))
	for _, r := range all {
		e := &model.ActivityEntry{
			ReservationID: r.ID,
			LotName:       r.LotName,
			SpotID:        r.SpotID,
			StartedAt:     r.StartedAt,
			EndedAt:       r.EndedAt,
			Cost:          r.Cost,
			Status:        model.ReservationActive,
		}
		if r.EndedAt != nil {
			e.Status = model.ReservationCompleted
		}
		if u, ok := s.users[r.UserID]; ok {
			e.Username = u.Username
		}
		out = append(out, e)
	}
	return out, nil
}
