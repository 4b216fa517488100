package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/snooker-house-api/internal/repository"
)

// AnalyticsHandler serves the venue reporting endpoints.  All reports
// are ownership-scoped and read-only; the router layers the Redis
// response cache on top of these routes.
type AnalyticsHandler struct {
	Analytics *repository.AnalyticsRepo
}

func NewAnalyticsHandler(a *repository.AnalyticsRepo) *AnalyticsHandler {
	return &AnalyticsHandler{Analytics: a}
}

// dateRange reads from/to query params (YYYY-MM-DD), defaulting to the
// last 30 days.  The returned upper bound is the midnight after "to";
// the analytics queries compare with a strict < so the whole of "to"
// is covered and nothing later.
func dateRange(c echo.Context) (time.Time, time.Time) {
	now := time.Now().UTC()
	from := now.AddDate(0, 0, -30).Truncate(24 * time.Hour)
	to := now
	if v := c.QueryParam("from"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			from = t
		}
	}
	if v := c.QueryParam("to"); v != "" {
		if t, err := time.Parse("2006-01-02", v); err == nil {
			to = t.Add(24 * time.Hour)
		}
	}
	return from, to
}

// Revenue returns daily revenue totals plus a payment-method
// breakdown over the requested range.
func (h *AnalyticsHandler) Revenue(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	venueID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid venue id"})
	}
	from, to := dateRange(c)
	byDay, byMethod, err := h.Analytics.Revenue(c.Request().Context(), venueID, userID, from, to)
	if err != nil {
		return respondRepoError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"from":      from.Format("2006-01-02"),
		"to":        to.Format("2006-01-02"),
		"daily":     byDay,
		"by_method": byMethod,
	})
}

// Sessions returns daily session counts split by status.
func (h *AnalyticsHandler) Sessions(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	venueID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid venue id"})
	}
	from, to := dateRange(c)
	counts, err := h.Analytics.SessionCounts(c.Request().Context(), venueID, userID, from, to)
	if err != nil {
		return respondRepoError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"daily": counts})
}

// TopCustomers ranks named customers by total spend.
func (h *AnalyticsHandler) TopCustomers(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	venueID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid venue id"})
	}
	from, to := dateRange(c)
	limit := 10
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	customers, err := h.Analytics.TopCustomers(c.Request().Context(), venueID, userID, from, to, limit)
	if err != nil {
		return respondRepoError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"customers": customers})
}

// LowStock lists products at or below their alert threshold.
func (h *AnalyticsHandler) LowStock(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	venueID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid venue id"})
	}
	products, err := h.Analytics.LowStock(c.Request().Context(), venueID, userID)
	if err != nil {
		return respondRepoError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"products": products})
}

// PeakHours returns a histogram of session starts by hour of day.
func (h *AnalyticsHandler) PeakHours(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	venueID, err := pathID(c, "id")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid venue id"})
	}
	from, to := dateRange(c)
	hours, err := h.Analytics.PeakHours(c.Request().Context(), venueID, userID, from, to)
	if err != nil {
		return respondRepoError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"hours": hours})
}
