package router // package router wires handlers, middleware and route groups

import (
	"github.com/labstack/echo/v4"

	"github.com/ideaforge/ideaforge/internal/handler"
	"github.com/ideaforge/ideaforge/internal/middleware"
	"github.com/ideaforge/ideaforge/internal/model"
)

// Handlers collects every handler the router mounts.
type Handlers struct {
	Auth      *handler.AuthHandler
	Ideas     *handler.IdeaHandler
	Docs      *handler.DocumentHandler
	Credits   *handler.CreditHandler
	Export    *handler.ExportHandler
	RateLimit echo.MiddlewareFunc // applied to AI generation routes; may be nil
}

// Register mounts all routes. Unauthenticated operations live under
// /v1/auth plus the health check; everything else sits behind the JWT
// middleware under /v1.
func Register(e *echo.Echo, h Handlers, jwtSecret string) {
	e.GET("/healthz", handler.Health)

	pub := e.Group("/v1/auth")
	pub.POST("/register", h.Auth.Register)
	pub.POST("/login", h.Auth.Login)
	pub.POST("/refresh", h.Auth.Refresh)
	pub.POST("/refresh-access", h.Auth.RefreshAccess)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(model.RoleUser, model.RoleAdmin))

	auth.POST("/auth/logout", h.Auth.Logout)
	auth.GET("/me", h.Auth.Me)

	auth.POST("/ideas", h.Ideas.Create)
	auth.GET("/ideas", h.Ideas.List)
	auth.GET("/ideas/:id", h.Ideas.Get)

	// Generation endpoints call the AI provider and spend credits, so
	// they carry the rate limiter on top of the credit gate.
	gen := auth.Group("")
	if h.RateLimit != nil {
		gen.Use(h.RateLimit)
	}
	gen.POST("/ideas/:id/documents/:type/generate", h.Docs.Generate)
	gen.POST("/ideas/:id/documents/:type/regenerate", h.Docs.Regenerate)

	auth.GET("/ideas/:id/documents/:type", h.Docs.Latest)
	auth.PUT("/ideas/:id/documents/:type", h.Docs.Update)
	auth.GET("/ideas/:id/documents/:type/versions", h.Docs.Versions)
	auth.POST("/ideas/:id/documents/:type/restore", h.Docs.Restore)

	auth.POST("/ideas/:id/export", h.Export.Export)

	auth.GET("/credits", h.Credits.Balance)
	auth.GET("/credits/transactions", h.Credits.History)

	admin := e.Group("/v1/admin")
	admin.Use(middleware.JWTAuth(jwtSecret))
	admin.Use(middleware.RequireRole(model.RoleAdmin))
	admin.POST("/credits/grant", h.Credits.Grant)
}
