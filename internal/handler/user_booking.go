package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-spot-reservation/internal/service"
)

// BookingHandler serves the user-facing booking surface: browsing available
// lots, opening and releasing a booking, history, stats and CSV export.
type BookingHandler struct {
	Allocator *service.SpotAllocator
	Ledger    *service.ReservationLedger
	Lots      *service.LotCapacityManager
}

func NewBookingHandler(a *service.SpotAllocator, l *service.ReservationLedger, m *service.LotCapacityManager) *BookingHandler {
	return &BookingHandler{Allocator: a, Ledger: l, Lots: m}
}

type bookReq struct {
	LotID uint64 `json:"lot_id"`
}

// GetAvailableLots lists lots with at least one free spot.
func (h *BookingHandler) GetAvailableLots(c echo.Context) error {
	lots, err := h.Lots.AvailableLots(c.Request().Context())
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, lots)
}

// BookParking opens a reservation on the earliest available spot in the
// requested lot.
func (h *BookingHandler) BookParking(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req bookReq
	if err := c.Bind(&req); err != nil || req.LotID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "lot_id required"})
	}
	res, err := h.Allocator.Allocate(c.Request().Context(), req.LotID, uid)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// ReleaseParking closes a reservation, returning it with the billed cost.
func (h *BookingHandler) ReleaseParking(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid reservation id"})
	}
	res, err := h.Ledger.Release(c.Request().Context(), id, uid)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// GetActiveBooking returns the user's open reservation, or JSON null when
// there is none.
func (h *BookingHandler) GetActiveBooking(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	res, err := h.Ledger.ActiveBooking(c.Request().Context(), uid)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// GetBookings returns the user's reservation history, newest first.
func (h *BookingHandler) GetBookings(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	out, err := h.Ledger.History(c.Request().Context(), uid)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// GetStats returns the user's booking aggregates.
func (h *BookingHandler) GetStats(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	st, err := h.Ledger.Stats(c.Request().Context(), uid)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

// ExportCSV streams the user's booking history as a CSV attachment.
func (h *BookingHandler) ExportCSV(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	history, err := h.Ledger.History(c.Request().Context(), uid)
	if err != nil {
		return writeServiceError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=bookings_%d.csv", uid))
	c.Response().WriteHeader(http.StatusOK)

	w := csv.NewWriter(c.Response())
	if err := w.Write([]string{
		"reservation_id", "lot_name", "address", "spot_id",
		"parking_timestamp", "leaving_timestamp", "price_per_hour", "cost", "status",
	}); err != nil {
		return err
	}
	for _, r := range history {
		ended := ""
		if r.EndedAt != nil {
			ended = r.EndedAt.UTC().Format(time.RFC3339)
		}
		rec := []string{
			strconv.FormatUint(r.ID, 10),
			r.LotName,
			r.Address,
			strconv.FormatUint(r.SpotID, 10),
			r.StartedAt.UTC().Format(time.RFC3339),
			ended,
			strconv.FormatFloat(r.PricePerHour, 'f', 2, 64),
			strconv.FormatFloat(r.Cost, 'f', 2, 64),
			r.Status,
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
