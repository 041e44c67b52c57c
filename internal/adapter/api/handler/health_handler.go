package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"furiousrepair/pkg/clock"
)

type HealthHandler struct {
	storageDriver string
	clock         clock.Clock
}

func NewHealthHandler(storageDriver string, clk clock.Clock) *HealthHandler {
	return &HealthHandler{
		storageDriver: storageDriver,
		clock:         clk,
	}
}

func (h *HealthHandler) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"message": "Furious Repair API is running!",
	})
}

func (h *HealthHandler) CheckHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":  "Server is running",
		"storage": h.storageDriver,
		"time":    h.clock.Now().Format(time.RFC3339),
	})
}
