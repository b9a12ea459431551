package service

import (
	"context"
	"strings"

	"github.com/iliyamo/parking-spot-reservation/internal/cache"
	"github.com/iliyamo/parking-spot-reservation/internal/config"
	"github.com/iliyamo/parking-spot-reservation/internal/model"
	"github.com/iliyamo/parking-spot-reservation/internal/store"
)

// LotCapacityManager creates, resizes and deletes lots and their spot pools.
// Every mutation runs under the lot's row lock so occupancy observed inside
// the transaction cannot change before commit, keeping the invariant that a
// lot's declared spot count equals its actual spot rows.
type LotCapacityManager struct {
	store store.Store
	cache *cache.Store
	ttl   config.CacheConfig
	inv   *cache.Invalidator
}

// NewLotCapacityManager constructs a LotCapacityManager.
func NewLotCapacityManager(st store.Store, cs *cache.Store, ttl config.CacheConfig, inv *cache.Invalidator) *LotCapacityManager {
	return &LotCapacityManager{store: st, cache: cs, ttl: ttl, inv: inv}
}

// LotUpdate carries the optional fields of an UpdateLot call; nil fields are
// left unchanged.
type LotUpdate struct {
	Name      *string
	Address   *string
	PinCode   *string
	Price     *float64
	SpotCount *int
}

// CreateLot persists a new lot and exactly spotCount available spots in one
// transaction.
func (m *LotCapacityManager) CreateLot(ctx context.Context, lot *model.Lot, spotCount int) (*model.Lot, error) {
	if strings.TrimSpace(lot.Name) == "" || strings.TrimSpace(lot.Address) == "" {
		return nil, ErrMissingField
	}
	if lot.Price < 0 {
		return nil, ErrInvalidPrice
	}
	if spotCount < 0 {
		return nil, ErrInvalidSpotCount
	}
	err := m.store.Atomically(ctx, func(tx store.Tx) error {
		lot.SpotCount = spotCount
		if err := tx.InsertLot(ctx, lot); err != nil {
			return err
		}
		return tx.InsertSpots(ctx, lot.ID, spotCount)
	})
	if err != nil {
		return nil, err
	}
	lot.AvailableSpots = spotCount
	m.inv.LotChanged(ctx, lot.ID)
	return lot, nil
}

// UpdateLot applies metadata changes and resizes the spot pool. Growth
// appends available spots; shrinking removes only available spots, newest
// first, and fails whole with store.ErrCapacityConflict when fewer available
// spots exist than the requested reduction.
func (m *LotCapacityManager) UpdateLot(ctx context.Context, lotID uint64, upd LotUpdate) (*model.Lot, error) {
	if upd.Price != nil && *upd.Price < 0 {
		return nil, ErrInvalidPrice
	}
	if upd.SpotCount != nil && *upd.SpotCount < 0 {
		return nil, ErrInvalidSpotCount
	}
	var out *model.Lot
	err := m.store.Atomically(ctx, func(tx store.Tx) error {
		lot, err := tx.LotForUpdate(ctx, lotID)
		if err != nil {
			return err
		}
		if upd.Name != nil {
			lot.Name = *upd.Name
		}
		if upd.Address != nil {
			lot.Address = *upd.Address
		}
		if upd.PinCode != nil {
			lot.PinCode = *upd.PinCode
		}
		if upd.Price != nil {
			lot.Price = *upd.Price
		}
		if upd.SpotCount != nil {
			newCount := *upd.SpotCount
			total, occupied, err := tx.SpotCounts(ctx, lotID)
			if err != nil {
				return err
			}
			switch {
			case newCount > total:
				if err := tx.InsertSpots(ctx, lotID, newCount-total); err != nil {
					return err
				}
			case newCount < total:
				if newCount < occupied {
					return store.ErrCapacityConflict
				}
				removed, err := tx.DeleteAvailableSpots(ctx, lotID, total-newCount)
				if err != nil {
					return err
				}
				if removed != total-newCount {
					return store.ErrCapacityConflict
				}
			}
			lot.SpotCount = newCount
		}
		if err := tx.UpdateLot(ctx, lot); err != nil {
			return err
		}
		out = lot
		return nil
	})
	if err != nil {
		return nil, err
	}
	m.inv.LotChanged(ctx, lotID)
	return out, nil
}

// DeleteLot removes the lot and all of its spots. It fails with
// store.ErrLotOccupied while any spot is occupied.
func (m *LotCapacityManager) DeleteLot(ctx context.Context, lotID uint64) error {
	err := m.store.Atomically(ctx, func(tx store.Tx) error {
		if _, err := tx.LotForUpdate(ctx, lotID); err != nil {
			return err
		}
		_, occupied, err := tx.SpotCounts(ctx, lotID)
		if err != nil {
			return err
		}
		if occupied > 0 {
			return store.ErrLotOccupied
		}
		return tx.DeleteLot(ctx, lotID)
	})
	if err != nil {
		return err
	}
	m.inv.LotChanged(ctx, lotID)
	return nil
}

// GetLot loads one lot.
func (m *LotCapacityManager) GetLot(ctx context.Context, lotID uint64) (*model.Lot, error) {
	return m.store.GetLot(ctx, lotID)
}

// ListLots returns all lots with availability counts, for the admin listing.
func (m *LotCapacityManager) ListLots(ctx context.Context) ([]*model.Lot, error) {
	var cached []*model.Lot
	if m.cache.Get(ctx, cache.KeyAllLots, &cached) {
		return cached, nil
	}
	lots, err := m.store.ListLots(ctx)
	if err != nil {
		return nil, err
	}
	m.cache.Set(ctx, cache.KeyAllLots, lots, m.ttl.LotList)
	return lots, nil
}

// AvailableLots returns the lots that currently have at least one available
// spot. Cached briefly: availability goes stale fast.
func (m *LotCapacityManager) AvailableLots(ctx context.Context) ([]*model.Lot, error) {
	var cached []*model.Lot
	if m.cache.Get(ctx, cache.KeyAvailableLots, &cached) {
		return cached, nil
	}
	lots, err := m.store.ListLots(ctx)
	if err != nil {
		return nil, err
	}
	avail := make([]*model.Lot, 0, len(lots))
	for _, l := range lots {
		if l.AvailableSpots > 0 {
			avail = append(avail, l)
		}
	}
	m.cache.Set(ctx, cache.KeyAvailableLots, avail, m.ttl.Availability)
	return avail, nil
}

// LotSpots returns a lot's spots in insertion order.
func (m *LotCapacityManager) LotSpots(ctx context.Context, lotID uint64) ([]*model.Spot, error) {
	if _, err := m.store.GetLot(ctx, lotID); err != nil {
		return nil, err
	}
	key := cache.KeyLotSpots(lotID)
	var cached []*model.Spot
	if m.cache.Get(ctx, key, &cached) {
		return cached, nil
	}
	spots, err := m.store.SpotsByLot(ctx, lotID)
	if err != nil {
		return nil, err
	}
	m.cache.Set(ctx, key, spots, m.ttl.SpotList)
	return spots, nil
}
