package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // the Echo web framework that handles routing

	"github.com/iliyamo/snooker-house-api/internal/handler"    // handlers implementing the business logic
	"github.com/iliyamo/snooker-house-api/internal/middleware" // JWT authentication and role enforcement
)

// RegisterRoutes registers routes that do not require authentication.
// Currently it exposes only a health check used by load balancers and
// monitoring systems to verify that the service is up.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication-related routes.
// Unauthenticated token operations live under /v1/auth; the
// account endpoints (profile, device management) require a valid
// access token and live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	// Token issuance and exchange. The rate limiter sits in front of
	// these so credential stuffing and token grinding are throttled
	// per client.
	g := e.Group("/v1/auth", limiter)
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// refresh rotates the refresh token; refresh-access only issues a
	// new access token and leaves the refresh token untouched.
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout accepts a JSON body with the refresh_token to invalidate;
	// it does not require an access token so an expired client can
	// still terminate its session.
	g.POST("/logout", a.Logout)

	// Account endpoints behind JWT authentication.
	auth := e.Group("/v1", middleware.JWTAuth(jwtSecret), limiter)
	auth.GET("/me", a.Me)
	auth.GET("/auth/devices", a.Devices)
	auth.DELETE("/auth/devices/:id", a.RevokeDevice)
}
