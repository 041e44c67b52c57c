package router

import (
	"github.com/labstack/echo/v4"

	"furiousrepair/internal/adapter/api/middleware"
	"furiousrepair/internal/domain/entity"
)

func SetupUserRouter(e *echo.Echo, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	users := e.Group("/api/users")
	users.Use(authMiddleware.Authenticate)
	users.Use(middleware.RequireRole(entity.RoleUser))

	users.GET("/profile", h.User.GetProfile)
	users.PUT("/profile", h.User.UpdateProfile)

	users.POST("/issue", h.Issue.ReportIssue)
	users.GET("/issues", h.Issue.ListIssues)
	users.GET("/issues/:id", h.Issue.GetIssue)
	users.GET("/issues/:id/user-location", h.Issue.IssueLocation)

	users.GET("/issues/:id/chat", h.Chat.GetChat)
	users.POST("/issues/:id/chat/message", h.Chat.SendMessage)
}
