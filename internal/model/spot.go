package model

import "time"

// Spot statuses as stored in the parking_spots table.
const (
	SpotAvailable = "A"
	SpotOccupied  = "O"
)

// Spot is one bookable unit inside a lot. A spot belongs to exactly one lot
// for its whole life.
type Spot struct {
	ID        uint64    `json:"id"`
	LotID     uint64    `json:"lot_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}
