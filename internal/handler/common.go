// Package handler defines the HTTP surface. Handlers bind and validate
// request bodies, delegate to the services, and translate sentinel errors to
// status codes; none of them touch the database directly.
package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-spot-reservation/internal/service"
	"github.com/iliyamo/parking-spot-reservation/internal/store"
)

// getUserID extracts the authenticated user's id from the context. JWT
// numeric claims decode as float64, so several representations are accepted.
func getUserID(c echo.Context) (uint64, error) {
	switch t := c.Get("user_id").(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// pathID parses a numeric path parameter.
func pathID(c echo.Context, name string) (uint64, error) {
	return strconv.ParseUint(c.Param(name), 10, 64)
}

// writeServiceError maps engine sentinels to HTTP responses: missing
// resources read as 404, state conflicts as 409, bad input as 400 and
// anything else as 500.
func writeServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, store.ErrLotNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "lot not found"})
	case errors.Is(err, store.ErrReservationNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "reservation not found"})
	case errors.Is(err, store.ErrActiveBookingExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "an active booking already exists"})
	case errors.Is(err, store.ErrNoAvailableSpot):
		return c.JSON(http.StatusConflict, echo.Map{"error": "no available spot in this lot"})
	case errors.Is(err, store.ErrAlreadyReleased):
		return c.JSON(http.StatusConflict, echo.Map{"error": "reservation already released"})
	case errors.Is(err, store.ErrCapacityConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "occupied spots exceed requested capacity"})
	case errors.Is(err, store.ErrLotOccupied):
		return c.JSON(http.StatusConflict, echo.Map{"error": "lot has occupied spots"})
	case errors.Is(err, service.ErrInvalidSpotCount),
		errors.Is(err, service.ErrInvalidPrice),
		errors.Is(err, service.ErrMissingField):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
