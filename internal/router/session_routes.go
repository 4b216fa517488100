package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/snooker-house-api/internal/handler"
	"github.com/iliyamo/snooker-house-api/internal/middleware"
	"github.com/iliyamo/snooker-house-api/internal/model"
)

// RegisterSessionRoutes registers the table-session lifecycle
// endpoints: starting a game, selling items into it, pause/resume,
// payments, settlement and cancellation.
func RegisterSessionRoutes(e *echo.Echo, jwtSecret string, limiter echo.MiddlewareFunc, s *handler.SessionHandler) {
	g := e.Group("/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleOwner, model.RoleStaff),
		limiter)

	g.POST("/tables/:id/sessions/start", s.Start)

	// my-sessions must be registered before /sessions/:id so the
	// literal segment wins over the parameter.
	g.GET("/sessions/my-sessions", s.List)
	g.GET("/sessions/:id", s.Get)
	g.GET("/sessions/:id/cost", s.Cost)

	g.POST("/sessions/:id/items", s.AddItem)
	g.DELETE("/sessions/:id/items/:itemId", s.RemoveItem)

	// PUT carries an action field: pause, resume, update_frames_kittis
	// or add_notes.
	g.PUT("/sessions/:id", s.Update)

	g.POST("/sessions/:id/payments", s.RecordPayment)
	g.POST("/sessions/:id/confirm-payment", s.ConfirmPayment)
	g.POST("/sessions/:id/end", s.End)
	g.DELETE("/sessions/:id", s.Cancel)
}
