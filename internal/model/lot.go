package model // model holds the domain records shared across layers

import "time"

// Lot is a managed parking location with a fixed hourly price and a pool of
// spots. SpotCount always equals the number of spot rows owned by the lot;
// AvailableSpots is derived and only populated by listing queries.
type Lot struct {
	ID             uint64    `json:"id"`
	Name           string    `json:"name"`
	Address        string    `json:"address"`
	PinCode        string    `json:"pin_code"`
	Price          float64   `json:"price"`
	SpotCount      int       `json:"spot_count"`
	AvailableSpots int       `json:"available_spots"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
