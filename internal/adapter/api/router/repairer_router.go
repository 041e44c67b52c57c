package router

import (
	"github.com/labstack/echo/v4"

	"furiousrepair/internal/adapter/api/middleware"
	"furiousrepair/internal/domain/entity"
)

func SetupRepairerRouter(e *echo.Echo, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	public := e.Group("/api/repairer")
	public.GET("/all-shops", h.Repairer.AllShops)
	public.GET("/shop-location/:id", h.Repairer.ShopLocationByID, authMiddleware.Authenticate)

	repairer := e.Group("/api/repairer")
	repairer.Use(authMiddleware.Authenticate)
	repairer.Use(middleware.RequireRole(entity.RoleRepairer))

	repairer.GET("/me", h.Repairer.Me)
	repairer.GET("/shop-location", h.Repairer.ShopLocation)

	repairer.GET("/issues", h.Repairer.MatchingIssues)
	repairer.POST("/issues/:id/claim", h.Repairer.ClaimIssue)

	repairer.GET("/claimed", h.Repairer.ClaimedIssues)
	repairer.GET("/claimed/:id", h.Repairer.ClaimedIssue)
	repairer.GET("/claimed/:id/user-location", h.Issue.IssueLocation)
	repairer.GET("/claimed/:id/chat", h.Chat.GetChat)
	repairer.POST("/claimed/:id/chat/message", h.Chat.SendMessage)
}
