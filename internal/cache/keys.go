package cache

import "fmt"

// Cache key names. Mutations invalidate by deleting these keys; the next
// read recomputes from the durable store (delete-on-write, never
// update-on-write).
const (
	// KeyDashboardStats holds the admin dashboard aggregate counts.
	KeyDashboardStats = "dashboard_stats"
	// KeyAllLots holds the full lot listing for admins.
	KeyAllLots = "lots_all"
	// KeyAvailableLots holds the lots-with-free-spots listing for users.
	KeyAvailableLots = "lots_available"
)

// KeyLotSpots names the per-lot spot listing.
func KeyLotSpots(lotID uint64) string { return fmt.Sprintf("lot_%d_spots", lotID) }

// KeyUserStats names a user's aggregate booking stats.
func KeyUserStats(userID uint64) string { return fmt.Sprintf("user_%d_stats", userID) }

// KeyUserBookings names a user's reservation history.
func KeyUserBookings(userID uint64) string { return fmt.Sprintf("user_%d_bookings", userID) }
