package router

import (
	"github.com/labstack/echo/v4"

	"furiousrepair/internal/adapter/api/handler"
	"furiousrepair/internal/adapter/api/middleware"
	"furiousrepair/internal/infrastructure/ratelimit"
)

type Handlers struct {
	Auth     *handler.AuthHandler
	User     *handler.UserHandler
	Issue    *handler.IssueHandler
	Chat     *handler.ChatHandler
	Repairer *handler.RepairerHandler
	Health   *handler.HealthHandler
}

func Setup(e *echo.Echo, h Handlers, authMiddleware *middleware.AuthMiddleware, limiter *ratelimit.RateLimiter) {
	SetupHealthRouter(e, h.Health)
	SetupAuthRouter(e, h.Auth, authMiddleware, limiter)
	SetupUserRouter(e, h, authMiddleware)
	SetupRepairerRouter(e, h, authMiddleware)
}
