// Package service implements the spot allocation and reservation lifecycle
// engine. Services receive their store, cache and publisher as explicit
// constructor dependencies; there are no ambient singletons, so tests run
// them against the in-memory store.
package service

import (
	"context"
	"errors"

	"github.com/iliyamo/parking-spot-reservation/internal/model"
)

// EventPublisher receives booking lifecycle notifications after a mutation
// has committed. Implementations must be best-effort: delivery failures are
// their problem to log, never the caller's.
type EventPublisher interface {
	BookingOpened(ctx context.Context, r *model.Reservation)
	BookingClosed(ctx context.Context, r *model.Reservation)
}

// Validation errors surfaced for malformed input before any transaction is
// opened.
var (
	ErrInvalidSpotCount = errors.New("spot count must be a non-negative integer")
	ErrInvalidPrice     = errors.New("price must be non-negative")
	ErrMissingField     = errors.New("required field missing")
)
