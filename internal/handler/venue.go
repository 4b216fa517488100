package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/snooker-house-api/internal/repository"
)

// VenueHandler serves venue CRUD for owners.
type VenueHandler struct {
	Venues *repository.VenueRepo
}

func NewVenueHandler(v *repository.VenueRepo) *VenueHandler { return &VenueHandler{Venues: v} }

type venueReq struct {
	Name     string  `json:"name"`
	Address  *string `json:"address"`
	Phone    *string `json:"phone"`
	IsActive *bool   `json:"is_active"`
}

// Create registers a new venue owned by the caller.
func (h *VenueHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req venueReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	ctx := c.Request().Context()
	id, err := h.Venues.Create(ctx, userID, req.Name, req.Address, req.Phone)
	if err != nil {
		return respondRepoError(c, err)
	}
	v, err := h.Venues.GetByID(ctx, id)
	if err != nil {
		return respondRepoError(c, err)
	}
	return c.JSON(http.StatusCreated, v)
}

// List returns the caller's venues.
func (h *VenueHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	venues, err := h.Venues.ListByOwner(c.Request().Context(), userID)
	if err != nil {
		return respondRepoError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"venues": venues})
}

// Get returns one venue if the caller owns it.
func (h *VenueHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid venue id"})
	}
	ctx := c.Request().Context()
	if err := h.Venues.Owns(ctx, id, userID); err != nil {
		return respondRepoError(c, err)
	}
	v, err := h.Venues.GetByID(ctx, id)
	if err != nil {
		return respondRepoError(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

// Update modifies venue details.
func (h *VenueHandler) Update(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid venue id"})
	}
	var req venueReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx := c.Request().Context()
	cur, err := h.Venues.GetByID(ctx, id)
	if err != nil {
		return respondRepoError(c, err)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = cur.Name
	}
	address, phone := cur.Address, cur.Phone
	if req.Address != nil {
		address = req.Address
	}
	if req.Phone != nil {
		phone = req.Phone
	}
	isActive := cur.IsActive
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	if err := h.Venues.Update(ctx, id, userID, name, address, phone, isActive); err != nil {
		return respondRepoError(c, err)
	}
	v, err := h.Venues.GetByID(ctx, id)
	if err != nil {
		return respondRepoError(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

// Delete removes a venue with no recorded history.
func (h *VenueHandler) Delete(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid venue id"})
	}
	if err := h.Venues.Delete(c.Request().Context(), id, userID); err != nil {
		return respondRepoError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
