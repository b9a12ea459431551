package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/parking-spot-reservation/internal/model"
	"github.com/iliyamo/parking-spot-reservation/internal/service"
)

// AdminHandler serves lot administration: the dashboard, lot CRUD with
// capacity resizing, and per-lot spot listings.
type AdminHandler struct {
	Lots   *service.LotCapacityManager
	Ledger *service.ReservationLedger
}

func NewAdminHandler(m *service.LotCapacityManager, l *service.ReservationLedger) *AdminHandler {
	return &AdminHandler{Lots: m, Ledger: l}
}

type createLotReq struct {
	Name      string  `json:"name"`
	Address   string  `json:"address"`
	PinCode   string  `json:"pin_code"`
	Price     float64 `json:"price"`
	SpotCount int     `json:"spot_count"`
}

type updateLotReq struct {
	Name      *string  `json:"name"`
	Address   *string  `json:"address"`
	PinCode   *string  `json:"pin_code"`
	Price     *float64 `json:"price"`
	SpotCount *int     `json:"spot_count"`
}

// GetStats returns system-wide occupancy aggregates.
func (h *AdminHandler) GetStats(c echo.Context) error {
	st, err := h.Ledger.Dashboard(c.Request().Context())
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, st)
}

// GetRecentActivity returns the latest bookings across all users. The limit
// query parameter defaults to 10.
func (h *AdminHandler) GetRecentActivity(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid limit"})
		}
		limit = n
	}
	out, err := h.Ledger.RecentActivity(c.Request().Context(), limit)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// GetUsers lists every account with its booking counters.
func (h *AdminHandler) GetUsers(c echo.Context) error {
	users, err := h.Ledger.Users(c.Request().Context())
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

// GetLots lists every lot with its availability count.
func (h *AdminHandler) GetLots(c echo.Context) error {
	lots, err := h.Lots.ListLots(c.Request().Context())
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, lots)
}

// GetLot returns a single lot.
func (h *AdminHandler) GetLot(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid lot id"})
	}
	lot, err := h.Lots.GetLot(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, lot)
}

// CreateLot creates a lot together with its spot pool.
func (h *AdminHandler) CreateLot(c echo.Context) error {
	var req createLotReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	lot := &model.Lot{
		Name:    req.Name,
		Address: req.Address,
		PinCode: req.PinCode,
		Price:   req.Price,
	}
	out, err := h.Lots.CreateLot(c.Request().Context(), lot, req.SpotCount)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusCreated, out)
}

// UpdateLot applies metadata changes and resizes the spot pool.
func (h *AdminHandler) UpdateLot(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid lot id"})
	}
	var req updateLotReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	out, err := h.Lots.UpdateLot(c.Request().Context(), id, service.LotUpdate{
		Name:      req.Name,
		Address:   req.Address,
		PinCode:   req.PinCode,
		Price:     req.Price,
		SpotCount: req.SpotCount,
	})
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// DeleteLot removes a fully vacant lot.
func (h *AdminHandler) DeleteLot(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid lot id"})
	}
	if err := h.Lots.DeleteLot(c.Request().Context(), id); err != nil {
		return writeServiceError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetLotSpots lists a lot's spots with their statuses.
func (h *AdminHandler) GetLotSpots(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid lot id"})
	}
	spots, err := h.Lots.LotSpots(c.Request().Context(), id)
	if err != nil {
		return writeServiceError(c, err)
	}
	return c.JSON(http.StatusOK, spots)
}
