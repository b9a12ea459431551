// Package store defines the persistence contract for the reservation engine
// along with the sentinel errors shared by every implementation. Higher
// layers compare against these values with errors.Is to distinguish expected
// conflicts from internal failures; anything else coming out of a store is
// treated as internal and has already been rolled back.
package store

import "errors"

// ErrLotNotFound is returned when a referenced parking lot does not exist.
var ErrLotNotFound = errors.New("parking lot not found")

// ErrReservationNotFound is returned when a reservation does not exist or
// belongs to another user. Ownership mismatches are deliberately reported as
// not-found so non-owners cannot probe for existence.
var ErrReservationNotFound = errors.New("reservation not found")

// ErrActiveBookingExists is returned when a user who already holds an open
// reservation tries to book another spot.
var ErrActiveBookingExists = errors.New("user already has an active booking")

// ErrNoAvailableSpot is returned when a lot has no available spot at the
// moment of the atomic claim attempt.
var ErrNoAvailableSpot = errors.New("no available spot in this lot")

// ErrAlreadyReleased is returned when releasing a reservation that has
// already been closed.
var ErrAlreadyReleased = errors.New("reservation already released")

// ErrCapacityConflict is returned when a lot shrink would have to remove
// occupied spots. The resize is rejected whole; no partial shrink happens.
var ErrCapacityConflict = errors.New("cannot reduce spots, some spots are occupied")

// ErrLotOccupied is returned when deleting a lot that still has occupied
// spots.
var ErrLotOccupied = errors.New("lot has occupied spots")
