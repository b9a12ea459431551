package model

import "time"

// Reservation statuses exposed over the API. A reservation is active while
// EndedAt is null and completed once it has been released.
const (
	ReservationActive    = "active"
	ReservationCompleted = "completed"
)

// Reservation is a user's claim on one spot for a time span. PricePerHour is
// snapshotted from the lot when the spot is claimed and is the only price
// ever used to bill the reservation. Cost stays 0 until release. LotID,
// LotName and Address are denormalized from the owning lot for display.
type Reservation struct {
	ID           uint64     `json:"id"`
	SpotID       uint64     `json:"spot_id"`
	UserID       uint64     `json:"user_id"`
	LotID        uint64     `json:"lot_id"`
	LotName      string     `json:"lot_name,omitempty"`
	Address      string     `json:"address,omitempty"`
	StartedAt    time.Time  `json:"parking_timestamp"`
	EndedAt      *time.Time `json:"leaving_timestamp"`
	PricePerHour float64    `json:"price_per_hour"`
	Cost         float64    `json:"parking_cost"`
	Status       string     `json:"status"`
	CreatedAt    time.Time  `json:"created_at"`
}
