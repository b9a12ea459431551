// Package queue defines booking lifecycle messages exchanged over the
// message broker, plus the publisher and background consumer. Downstream
// consumers (notification dispatch, reporting) get enough information to act
// without querying the primary database.
package queue

// Event names carried in BookingEvent.Event.
const (
	EventBookingOpened = "booking.opened"
	EventBookingClosed = "booking.closed"
)

// BookingEvent is published after a reservation is opened or closed.
type BookingEvent struct {
	Event         string  `json:"event"`
	ReservationID uint64  `json:"reservation_id"`
	UserID        uint64  `json:"user_id"`
	LotID         uint64  `json:"lot_id"`
	LotName       string  `json:"lot_name"`
	SpotID        uint64  `json:"spot_id"`
	StartedAt     string  `json:"started_at"`
	EndedAt       string  `json:"ended_at,omitempty"`
	PricePerHour  float64 `json:"price_per_hour"`
	Cost          float64 `json:"cost"`
	OccurredAt    string  `json:"occurred_at"`
}
