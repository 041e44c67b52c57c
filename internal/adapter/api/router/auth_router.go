package router

import (
	"github.com/labstack/echo/v4"

	"furiousrepair/internal/adapter/api/handler"
	"furiousrepair/internal/adapter/api/middleware"
	"furiousrepair/internal/infrastructure/ratelimit"
)

func SetupAuthRouter(e *echo.Echo, authHandler *handler.AuthHandler, authMiddleware *middleware.AuthMiddleware, limiter *ratelimit.RateLimiter) {
	auth := e.Group("/api/auth")

	// Credential endpoints are throttled per client IP
	credentials := auth.Group("", middleware.RateLimit(limiter, ratelimit.ActionAuth))
	credentials.POST("/signup", authHandler.Signup)
	credentials.POST("/signin", authHandler.Signin)
	credentials.POST("/repairer/signup", authHandler.RepairerSignup)
	credentials.POST("/repairer/signin", authHandler.RepairerSignin)

	auth.POST("/signout", authHandler.Signout)
	auth.GET("/me", authHandler.Me, authMiddleware.Authenticate)
}
