package handler

import (
	"github.com/labstack/echo/v4"

	"furiousrepair/internal/adapter/api/middleware"
	"furiousrepair/internal/usecase"
	"furiousrepair/pkg/logger"
	"furiousrepair/pkg/response"
)

type AuthHandler struct {
	authUseCase    *usecase.AuthUseCase
	authMiddleware *middleware.AuthMiddleware
}

func NewAuthHandler(authUseCase *usecase.AuthUseCase, authMiddleware *middleware.AuthMiddleware) *AuthHandler {
	return &AuthHandler{
		authUseCase:    authUseCase,
		authMiddleware: authMiddleware,
	}
}

type signupRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type signinRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type repairerSignupRequest struct {
	Name      string      `json:"name" validate:"required,max=100"`
	Email     string      `json:"email" validate:"required,email"`
	Password  string      `json:"password" validate:"required,min=6,max=72"`
	Phone     string      `json:"phone" validate:"max=30"`
	Expertise []string    `json:"expertise" validate:"max=50,dive,max=100"`
	City      string      `json:"city" validate:"max=100"`
	State     string      `json:"state" validate:"max=100"`
	Pin       string      `json:"pin" validate:"max=20"`
	Geoloc    *geoRequest `json:"geoloc"`
}

func (h *AuthHandler) Signup(c echo.Context) error {
	var req signupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	result, err := h.authUseCase.SignupUser(c.Request().Context(), usecase.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return response.Error(c, err)
	}
	if err := h.authMiddleware.IssueCookie(c, result.Session); err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, map[string]interface{}{
		"message": "User created successfully",
		"user":    result.Identity,
	})
}

func (h *AuthHandler) Signin(c echo.Context) error {
	var req signinRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	result, err := h.authUseCase.SigninUser(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return response.Error(c, err)
	}
	if err := h.authMiddleware.IssueCookie(c, result.Session); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"message": "Sign in successful",
		"user":    result.Identity,
	})
}

func (h *AuthHandler) RepairerSignup(c echo.Context) error {
	var req repairerSignupRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	result, err := h.authUseCase.SignupRepairer(c.Request().Context(), usecase.RepairerSignupInput{
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
		Phone:     req.Phone,
		Expertise: req.Expertise,
		Location:  toLocation(req.City, req.State, req.Pin, req.Geoloc),
	})
	if err != nil {
		return response.Error(c, err)
	}
	if err := h.authMiddleware.IssueCookie(c, result.Session); err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, map[string]interface{}{"user": result.Identity})
}

func (h *AuthHandler) RepairerSignin(c echo.Context) error {
	var req signinRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}

	result, err := h.authUseCase.SigninRepairer(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return response.Error(c, err)
	}
	if err := h.authMiddleware.IssueCookie(c, result.Session); err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{"user": result.Identity})
}

// Signout always clears the cookie, even when the session is already gone.
func (h *AuthHandler) Signout(c echo.Context) error {
	token := h.authMiddleware.SessionToken(c)
	h.authMiddleware.ClearCookie(c)
	if token != "" {
		if err := h.authUseCase.Signout(c.Request().Context(), token); err != nil {
			logger.Error("Signout: failed to delete session: %v", err)
			return response.Error(c, err)
		}
	}
	return response.Message(c, "Signed out successfully")
}

func (h *AuthHandler) Me(c echo.Context) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return response.Error(c, err)
	}

	identity, err := h.authUseCase.Me(c.Request().Context(), principal)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]interface{}{"user": identity})
}
