package handler

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/snooker-house-api/internal/model"
	"github.com/iliyamo/snooker-house-api/internal/repository"
)

// ProductHandler serves inventory CRUD and stock adjustments.
type ProductHandler struct {
	Products *repository.ProductRepo
	Venues   *repository.VenueRepo
}

func NewProductHandler(p *repository.ProductRepo, v *repository.VenueRepo) *ProductHandler {
	return &ProductHandler{Products: p, Venues: v}
}

type productReq struct {
	Name         string   `json:"name"`
	Barcode      *string  `json:"barcode"`
	Category     string   `json:"category"`
	CostPrice    *float64 `json:"cost_price"`
	SellingPrice *float64 `json:"selling_price"`
	CurrentStock *uint32  `json:"current_stock"`
	MinStock     *uint32  `json:"min_stock"`
	Unit         string   `json:"unit"`
	Status       string   `json:"status"`
}

// Create adds a product to a venue the caller owns.
func (h *ProductHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	venueID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid venue id"})
	}
	var req productReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name required"})
	}
	if req.CostPrice == nil || req.SellingPrice == nil || *req.CostPrice < 0 || *req.SellingPrice < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "cost_price and selling_price required"})
	}
	if req.Status == "" {
		req.Status = model.ProductStatusActive
	}
	if req.Status != model.ProductStatusActive && req.Status != model.ProductStatusInactive {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
	}
	if req.Unit == "" {
		req.Unit = "pcs"
	}

	p := model.Product{
		VenueID:      venueID,
		Name:         req.Name,
		Barcode:      req.Barcode,
		Category:     strings.TrimSpace(req.Category),
		CostPrice:    *req.CostPrice,
		SellingPrice: *req.SellingPrice,
		Unit:         req.Unit,
		Status:       req.Status,
	}
	if req.CurrentStock != nil {
		p.CurrentStock = *req.CurrentStock
	}
	if req.MinStock != nil {
		p.MinStock = *req.MinStock
	}

	ctx := c.Request().Context()
	if err := h.Venues.Owns(ctx, venueID, userID); err != nil {
		return respondRepoError(c, err)
	}
	id, err := h.Products.Create(ctx, &p)
	if err != nil {
		return respondRepoError(c, err)
	}
	fresh, err := h.Products.GetByID(ctx, id)
	if err != nil {
		return respondRepoError(c, err)
	}
	return c.JSON(http.StatusCreated, fresh)
}

// ListByVenue returns a venue's products with optional category and
// status filters.
func (h *ProductHandler) ListByVenue(c echo.Context) error {
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
	products, err := h.Products.ListByVenue(ctx, venueID, c.QueryParam("category"), c.QueryParam("status"))
	if err != nil {
		return respondRepoError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"products": products})
}

// Get returns one product the caller owns.
func (h *ProductHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}
	p, err := h.Products.GetOwned(c.Request().Context(), id, userID)
	if err != nil {
		return respondRepoError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

// Update edits product details.  Price edits never rewrite item
// snapshots already recorded on sessions or sales.
func (h *ProductHandler) Update(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}
	var req productReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	ctx := c.Request().Context()
	cur, err := h.Products.GetOwned(ctx, id, userID)
	if err != nil {
		return respondRepoError(c, err)
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		cur.Name = name
	}
	if req.Barcode != nil {
		cur.Barcode = req.Barcode
	}
	if cat := strings.TrimSpace(req.Category); cat != "" {
		cur.Category = cat
	}
	if req.CostPrice != nil {
		if *req.CostPrice < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "cost_price must be non-negative"})
		}
		cur.CostPrice = *req.CostPrice
	}
	if req.SellingPrice != nil {
		if *req.SellingPrice < 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "selling_price must be non-negative"})
		}
		cur.SellingPrice = *req.SellingPrice
	}
	if req.MinStock != nil {
		cur.MinStock = *req.MinStock
	}
	if req.Unit != "" {
		cur.Unit = req.Unit
	}
	if req.Status != "" {
		if req.Status != model.ProductStatusActive && req.Status != model.ProductStatusInactive {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid status"})
		}
		cur.Status = req.Status
	}
	if err := h.Products.Update(ctx, &cur, userID); err != nil {
		return respondRepoError(c, err)
	}
	fresh, err := h.Products.GetByID(ctx, id)
	if err != nil {
		return respondRepoError(c, err)
	}
	return c.JSON(http.StatusOK, fresh)
}

// Delete removes a product that has never been sold.
func (h *ProductHandler) Delete(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}
	if err := h.Products.Delete(c.Request().Context(), id, userID); err != nil {
		return respondRepoError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type stockReq struct {
	Quantity  uint32 `json:"quantity"`
	Operation string `json:"operation"` // add | subtract | set
}

// UpdateStock adjusts a product's stock. subtract clamps at zero.
func (h *ProductHandler) UpdateStock(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}
	var req stockReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	switch req.Operation {
	case model.StockOpAdd, model.StockOpSubtract, model.StockOpSet:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "operation must be add, subtract or set"})
	}
	p, err := h.Products.UpdateStock(c.Request().Context(), id, userID, req.Quantity, req.Operation)
	if err != nil {
		return respondRepoError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}
