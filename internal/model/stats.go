package model

import "time"

// UserStats aggregates a user's booking activity for their dashboard.
type UserStats struct {
	TotalBookings   int     `json:"totalBookings"`
	ActiveBookings  int     `json:"activeBookings"`
	TotalSpent      float64 `json:"totalSpent"`
	MonthlyBookings int     `json:"monthlyBookings"`
}

// DashboardStats aggregates system-wide occupancy for the admin dashboard.
// All counts are computed on demand from source-of-truth rows; there are no
// redundant counters that could drift.
type DashboardStats struct {
	TotalLots          int `json:"totalLots"`
	TotalSpots         int `json:"totalSpots"`
	OccupiedSpots      int `json:"occupiedSpots"`
	AvailableSpots     int `json:"availableSpots"`
	TotalUsers         int `json:"totalUsers"`
	ActiveReservations int `json:"activeReservations"`
}

// UserSummary is one row in the admin user listing: the account plus its
// booking counters.
type UserSummary struct {
	ID             uint64  `json:"id"`
	Username       string  `json:"username"`
	Email          string  `json:"email,omitempty"`
	Role           string  `json:"role"`
	TotalBookings  int     `json:"totalBookings"`
	ActiveBookings int     `json:"activeBookings"`
	TotalSpent     float64 `json:"totalSpent"`
}

// ActivityEntry is one row in the admin recent-activity feed.
type ActivityEntry struct {
	ReservationID uint64     `json:"id"`
	Username      string     `json:"username"`
	LotName       string     `json:"lot_name"`
	SpotID        uint64     `json:"spot_id"`
	Status        string     `json:"status"`
	StartedAt     time.Time  `json:"parking_timestamp"`
	EndedAt       *time.Time `json:"leaving_timestamp"`
	Cost          float64    `json:"cost"`
}
