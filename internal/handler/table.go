package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/snooker-house-api/internal/model"
	"github.com/iliyamo/snooker-house-api/internal/repository"
)

// TableHandler serves table CRUD for owners.  Tables are created under
// a venue; reads and writes on an existing table resolve ownership
// through the venue join in the repository.
type TableHandler struct {
	Tables *repository.TableRepo
	Venues *repository.VenueRepo
}

func NewTableHandler(t *repository.TableRepo, v *repository.VenueRepo) *TableHandler {
	return &TableHandler{Tables: t, Venues: v}
}

type tableReq struct {
	Number        uint32   `json:"number"`
	Name          string   `json:"name"`
	Status        string   `json:"status"`
	PricingMethod string   `json:"pricing_method"`
	MinuteRate    *float64 `json:"minute_rate"`
	FrameRate     *float64 `json:"frame_rate"`
	KittiRate     *float64 `json:"kitti_rate"`
}

func validTableStatus(s string) bool {
	switch s {
	case model.TableStatusActive, model.TableStatusMaintenance, model.TableStatusInactive:
		return true
	}
	return false
}

func validPricingMethod(m string) bool {
	return m == model.PricingPerMinute || m == model.PricingFrameKitti
}

// Create adds a table to a venue the caller owns.
func (h *TableHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	venueID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid venue id"})
	}
	var req tableReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Number == 0 || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "number and name required"})
	}
	if req.Status == "" {
		req.Status = model.TableStatusActive
	}
	if !validTableStatus(req.Status) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}
	if req.PricingMethod == "" {
		req.PricingMethod = model.PricingPerMinute
	}
	if !validPricingMethod(req.PricingMethod) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid pricing_method"})
	}

	t := model.Table{
		VenueID:       venueID,
		Number:        req.Number,
		Name:          req.Name,
		Status:        req.Status,
		PricingMethod: req.PricingMethod,
	}
	if req.MinuteRate != nil {
		t.MinuteRate = *req.MinuteRate
	}
	if req.FrameRate != nil {
		t.FrameRate = *req.FrameRate
	}
	if req.KittiRate != nil {
		t.KittiRate = *req.KittiRate
	}
	if t.MinuteRate < 0 || t.FrameRate < 0 || t.KittiRate < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rates must be non-negative"})
	}

	ctx := c.Request().Context()
	if err := h.Venues.Owns(ctx, venueID, userID); err != nil {
		return respondRepoError(c, err)
	}
	id, err := h.Tables.Create(ctx, &t)
	if err != nil {
		return respondRepoError(c, err)
	}
	fresh, err := h.Tables.GetByID(ctx, id)
	if err != nil {
		return respondRepoError(c, err)
	}
	return c.JSON(http.StatusCreated, fresh)
}

// ListByVenue returns every table of one of the caller's venues.
func (h *TableHandler) ListByVenue(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	venueID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid venue id"})
	}
	ctx := c.Request().Context()
	if err := h.Venues.Owns(ctx, venueID, userID); err != nil {
		return respondRepoError(c, err)
	}
	tables, err := h.Tables.ListByVenue(ctx, venueID)
	if err != nil {
		return respondRepoError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"tables": tables})
}

// Get returns one table the caller owns.
func (h *TableHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
	}
	t, err := h.Tables.GetOwned(c.Request().Context(), id, userID)
	if err != nil {
		return respondRepoError(c, err)
	}
	return c.JSON(http.StatusOK, t)
}

// Update changes a table's configuration.  Rate edits never affect
// sessions already in progress; they carry their own snapshot.
func (h *TableHandler) Update(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
	}
	var req tableReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx := c.Request().Context()
	cur, err := h.Tables.GetOwned(ctx, id, userID)
	if err != nil {
		return respondRepoError(c, err)
	}
	if req.Number != 0 {
		cur.Number = req.Number
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		cur.Name = name
	}
	if req.Status != "" {
		if !validTableStatus(req.Status) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
		}
		cur.Status = req.Status
	}
	if req.PricingMethod != "" {
		if !validPricingMethod(req.PricingMethod) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid pricing_method"})
		}
		cur.PricingMethod = req.PricingMethod
	}
	if req.MinuteRate != nil {
		cur.MinuteRate = *req.MinuteRate
	}
	if req.FrameRate != nil {
		cur.FrameRate = *req.FrameRate
	}
	if req.KittiRate != nil {
		cur.KittiRate = *req.KittiRate
	}
	if cur.MinuteRate < 0 || cur.FrameRate < 0 || cur.KittiRate < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "rates must be non-negative"})
	}
	if err := h.Tables.Update(ctx, &cur, userID); err != nil {
		return respondRepoError(c, err)
	}
	fresh, err := h.Tables.GetByID(ctx, id)
	if err != nil {
		return respondRepoError(c, err)
	}
	return c.JSON(http.StatusOK, fresh)
}

// Delete removes an unoccupied table with no session history.
func (h *TableHandler) Delete(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid table id"})
	}
	if err := h.Tables.Delete(c.Request().Context(), id, userID); err != nil {
		return respondRepoError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
