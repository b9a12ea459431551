// Package router registers the HTTP routes and binds the auth middleware to
// the user and admin route groups.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-spot-reservation/internal/handler"
	"github.com/iliyamo/parking-spot-reservation/internal/middleware"
)

// RegisterRoutes registers routes that need no authentication.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication endpoints. Token issuance lives
// under /v1/auth; /v1/me and /v1/auth/logout run behind JWTAuth.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	g.POST("/logout", a.Logout, middleware.JWTAuth(jwtSecret))

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole("admin", "user"))
	auth.GET("/me", a.Me)
}

// RegisterBooking registers the user-facing booking surface under /v1/user.
// Admins keep their own dashboard; booking endpoints are for the "user" role.
func RegisterBooking(e *echo.Echo, b *handler.BookingHandler, jwtSecret string) {
	g := e.Group("/v1/user")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("user"))

	g.GET("/lots", b.GetAvailableLots)
	g.POST("/bookings", b.BookParking)
	g.POST("/bookings/:id/release", b.ReleaseParking)
	g.GET("/bookings/active", b.GetActiveBooking)
	g.GET("/bookings", b.GetBookings)
	g.GET("/bookings/export", b.ExportCSV)
	g.GET("/stats", b.GetStats)
}

// RegisterAdmin registers lot administration under /v1/admin, restricted to
// the "admin" role.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole("admin"))

	g.GET("/stats", a.GetStats)
	g.GET("/activity", a.GetRecentActivity)
	g.GET("/users", a.GetUsers)
	g.GET("/lots", a.GetLots)
	g.POST("/lots", a.CreateLot)
	g.GET("/lots/:id", a.GetLot)
	g.PUT("/lots/:id", a.UpdateLot)
	g.DELETE("/lots/:id", a.DeleteLot)
	g.GET("/lots/:id/spots", a.GetLotSpots)
}
