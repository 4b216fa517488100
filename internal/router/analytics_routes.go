package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/snooker-house-api/internal/handler"
	"github.com/iliyamo/snooker-house-api/internal/middleware"
	"github.com/iliyamo/snooker-house-api/internal/model"
)

// RegisterAnalyticsRoutes registers the reporting endpoints. The
// response cache middleware sits closest to the handlers so cached
// hits still pass JWT and role checks.
func RegisterAnalyticsRoutes(e *echo.Echo, jwtSecret string, limiter, cache echo.MiddlewareFunc, a *handler.AnalyticsHandler) {
	g := e.Group("/v1/venues/:id/analytics",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleOwner, model.RoleStaff),
		limiter,
		cache)

	g.GET("/revenue", a.Revenue)
	g.GET("/sessions", a.Sessions)
	g.GET("/top-customers", a.TopCustomers)
	g.GET("/low-stock", a.LowStock)
	g.GET("/peak-hours", a.PeakHours)
}
