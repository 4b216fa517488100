package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/snooker-house-api/internal/handler"
	"github.com/iliyamo/snooker-house-api/internal/middleware"
	"github.com/iliyamo/snooker-house-api/internal/model"
)

// RegisterVenueRoutes registers venue, table, product and sale
// management endpoints. Everything here requires a valid access token
// with the OWNER or STAFF role; per-resource ownership is enforced in
// the repositories, where every query joins through the venue's
// owner_id.
func RegisterVenueRoutes(e *echo.Echo, jwtSecret string, limiter echo.MiddlewareFunc,
	v *handler.VenueHandler, t *handler.TableHandler, p *handler.ProductHandler, s *handler.SaleHandler) {

	g := e.Group("/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleOwner, model.RoleStaff),
		limiter)

	// Venues.
	g.POST("/venues", v.Create)
	g.GET("/venues", v.List)
	g.GET("/venues/:id", v.Get)
	g.PUT("/venues/:id", v.Update)
	g.DELETE("/venues/:id", v.Delete)

	// Tables, created under a venue, addressed directly afterwards.
	g.POST("/venues/:id/tables", t.Create)
	g.GET("/venues/:id/tables", t.ListByVenue)
	g.GET("/tables/:id", t.Get)
	g.PUT("/tables/:id", t.Update)
	g.DELETE("/tables/:id", t.Delete)

	// Products and stock.
	g.POST("/venues/:id/products", p.Create)
	g.GET("/venues/:id/products", p.ListByVenue)
	g.GET("/products/:id", p.Get)
	g.PUT("/products/:id", p.Update)
	g.DELETE("/products/:id", p.Delete)
	g.PATCH("/products/:id/stock", p.UpdateStock)

	// Counter sales.
	g.POST("/venues/:id/sales", s.Create)
	g.GET("/venues/:id/sales", s.ListByVenue)
	g.GET("/sales/:id", s.Get)
	g.DELETE("/sales/:id", s.Cancel)
}
