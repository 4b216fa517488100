package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/snooker-house-api/internal/model"
	"github.com/iliyamo/snooker-house-api/internal/repository"
)

// SaleHandler serves counter sales that happen outside any table
// session.
type SaleHandler struct {
	Sales *repository.SaleRepo
}

func NewSaleHandler(s *repository.SaleRepo) *SaleHandler { return &SaleHandler{Sales: s} }

type saleLineReq struct {
	ProductID uint64 `json:"product_id"`
	Quantity  uint32 `json:"quantity"`
}

type saleReq struct {
	Method        string        `json:"method"` // cash | card | mobile | credit
	CustomerName  *string       `json:"customer_name"`
	CustomerPhone *string       `json:"customer_phone"`
	Items         []saleLineReq `json:"items"`
}

// Create records a counter sale for a venue the caller owns.
func (h *SaleHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	venueID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid venue id"})
	}
	var req saleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if !model.ValidSaleMethod(req.Method) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payment method"})
	}
	if len(req.Items) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "items required"})
	}
	lines := make([]repository.SaleLine, 0, len(req.Items))
	for _, it := range req.Items {
		if it.ProductID == 0 || it.Quantity == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "each item needs product_id and quantity"})
		}
		lines = append(lines, repository.SaleLine{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	s, err := h.Sales.Create(c.Request().Context(), venueID, userID, req.Method, req.CustomerName, req.CustomerPhone, lines)
	if err != nil {
		return respondRepoError(c, err)
	}
	return c.JSON(http.StatusCreated, s)
}

// ListByVenue returns a venue's sales with optional method and date
// filters.
func (h *SaleHandler) ListByVenue(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	venueID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid venue id"})
	}
	f := repository.SaleFilter{Method: c.QueryParam("method")}
	f.DateFrom, f.DateTo = queryDateRange(c)
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			f.Limit = n
		}
	}
	if v := c.QueryParam("skip"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			f.Skip = n
		}
	}
	sales, err := h.Sales.ListByVenue(c.Request().Context(), venueID, userID, f)
	if err != nil {
		return respondRepoError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"sales": sales, "count": len(sales)})
}

// Get returns one sale with its item snapshots.
func (h *SaleHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid sale id"})
	}
	s, err := h.Sales.Get(c.Request().Context(), id, userID)
	if err != nil {
		return respondRepoError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

// Cancel voids a sale and restores the stock of every line.
func (h *SaleHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid sale id"})
	}
	s, err := h.Sales.Cancel(c.Request().Context(), id, userID)
	if err != nil {
		return respondRepoError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}
