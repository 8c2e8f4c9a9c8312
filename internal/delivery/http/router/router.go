// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"pacta/internal/delivery/http/middleware"
	"pacta/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	AuthHandler         *handler.AuthHandler
	SessionMiddleware   *middleware.SessionMiddleware
	CSRFMiddleware      *middleware.CSRFMiddleware
	RateLimitMiddleware *middleware.RateLimitMiddleware
}

// router holds the handlers and route-level guards to be registered.
type router struct {
	authHandler *handler.AuthHandler
	session     *middleware.SessionMiddleware
	csrf        *middleware.CSRFMiddleware
	rateLimit   *middleware.RateLimitMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		authHandler: params.AuthHandler,
		session:     params.SessionMiddleware,
		csrf:        params.CSRFMiddleware,
		rateLimit:   params.RateLimitMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application. Guards are
// an explicit ordered pipeline per route group: anti-forgery check first,
// then the rate limit, then the handler.
func (r *router) RegisterRoutes(e *echo.Echo) {
	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	// Every route sees the hydrated session; hydration never rejects.
	e.Use(r.session.Hydrate)

	authGroup := e.Group("/auth")
	{
		authGroup.GET("/csrf", r.authHandler.CSRFToken)
		authGroup.GET("/session", r.authHandler.Session)

		guarded := authGroup.Group("", r.csrf.Verify, r.rateLimit.Limit)
		guarded.POST("/register", r.authHandler.Register)
		guarded.POST("/login", r.authHandler.Login)
		guarded.POST("/refresh", r.authHandler.Refresh)
		guarded.POST("/logout", r.authHandler.Logout)
	}

	// User routes that require authentication
	userGroup := e.Group("/user")
	userGroup.Use(r.session.RequireAuth)
	{
		userGroup.GET("/profile", r.authHandler.Profile)
	}
}
