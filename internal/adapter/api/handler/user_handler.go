package handler

import (
	"github.com/labstack/echo/v4"

	"furiousrepair/internal/usecase"
	"furiousrepair/pkg/response"
)

type UserHandler struct {
	profileUseCase *usecase.ProfileUseCase
}

func NewUserHandler(profileUseCase *usecase.ProfileUseCase) *UserHandler {
	return &UserHandler{
		profileUseCase: profileUseCase,
	}
}

type updateProfileRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Email string `json:"email" validate:"required,email"`
}

type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (h *UserHandler) GetProfile(c echo.Context) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return response.Error(c, err)
	}

	user, err := h.profileUseCase.GetProfile(c.Request().Context(), principal.SubjectID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]interface{}{"user": user})
}

func (h *UserHandler) UpdateProfile(c echo.Context) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req updateProfileRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	user, err := h.profileUseCase.UpdateProfile(c.Request().Context(), principal.SubjectID, usecase.UpdateProfileInput{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"message": "Profile updated successfully",
		"user":    userResponse{ID: user.ID, Name: user.Name, Email: user.Email},
	})
}
