// Package router wires the HTTP surface onto an Echo instance.
package router

import (
	"github.com/labstack/echo/v4"

	"videohalls/internal/handler"
	"videohalls/internal/middleware"
)

// Handlers groups everything the router needs to register the full surface.
type Handlers struct {
	Auth   *handler.AuthHandler
	Halls  *handler.HallHandler
	Videos *handler.VideoHandler
	Search *handler.SearchHandler
}

// Register mounts all routes. pageCache is applied to the public
// database-backed pages only; protected routes go through JWTAuth, which
// redirects unauthenticated requests to /login.
func Register(e *echo.Echo, h Handlers, jwtSecret string, pageCache echo.MiddlewareFunc) {
	e.GET("/healthz", handler.Health)

	// Public pages.
	e.GET("/", h.Halls.Home, pageCache)
	e.GET("/halls/:id", h.Halls.DetailHall, pageCache)

	// Account endpoints.
	e.POST("/signup", h.Auth.SignUp)
	e.GET("/login", h.Auth.LoginForm)
	e.POST("/login", h.Auth.Login)
	e.POST("/logout", h.Auth.Logout)
	e.POST("/auth/refresh", h.Auth.Refresh)

	// Everything below requires a session.
	auth := e.Group("", middleware.JWTAuth(jwtSecret))
	auth.GET("/dashboard", h.Halls.Dashboard)
	auth.GET("/me", h.Auth.Me)
	auth.GET("/search", h.Search.SearchVideos)

	auth.POST("/halls/create", h.Halls.CreateHall)
	auth.POST("/halls/:id/update", h.Halls.UpdateHall)
	auth.POST("/halls/:id/delete", h.Halls.DeleteHall)

	auth.GET("/halls/:id/add_video", h.Videos.AddVideoForm)
	auth.POST("/halls/:id/add_video", h.Videos.AddVideo)
	auth.POST("/videos/:id/delete", h.Videos.DeleteVideo)
}
