package handler

import (
	"github.com/labstack/echo/v4"

	"furiousrepair/internal/usecase"
	"furiousrepair/pkg/response"
)

// ChatHandler serves the issue chat for both route groups; the caller's role
// decides which issues are reachable and who the sender is.
type ChatHandler struct {
	chatUseCase *usecase.ChatUseCase
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
	}
}

type sendMessageRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

func (h *ChatHandler) GetChat(c echo.Context) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return response.Error(c, err)
	}

	chat, err := h.chatUseCase.OpenChat(c.Request().Context(), principal, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]interface{}{"chat": chat})
}

func (h *ChatHandler) SendMessage(c echo.Context) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req sendMessageRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	chat, err := h.chatUseCase.SendMessage(c.Request().Context(), principal, c.Param("id"), req.Message)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]interface{}{"chat": chat})
}
