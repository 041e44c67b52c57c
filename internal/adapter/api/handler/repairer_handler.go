package handler

import (
	"github.com/labstack/echo/v4"

	"furiousrepair/internal/usecase"
	"furiousrepair/pkg/response"
)

type RepairerHandler struct {
	matchingUseCase *usecase.MatchingUseCase
	claimUseCase    *usecase.ClaimUseCase
	profileUseCase  *usecase.ProfileUseCase
}

func NewRepairerHandler(
	matchingUseCase *usecase.MatchingUseCase,
	claimUseCase *usecase.ClaimUseCase,
	profileUseCase *usecase.ProfileUseCase,
) *RepairerHandler {
	return &RepairerHandler{
		matchingUseCase: matchingUseCase,
		claimUseCase:    claimUseCase,
		profileUseCase:  profileUseCase,
	}
}

type repairerMeResponse struct {
	IsRepairer bool     `json:"isRepairer"`
	Expertise  []string `json:"expertise"`
	Name       string   `json:"name"`
	Email      string   `json:"email"`
}

// MatchingIssues lists pending issues the caller's expertise covers.
func (h *RepairerHandler) MatchingIssues(c echo.Context) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return response.Error(c, err)
	}

	issues, err := h.matchingUseCase.MatchingForRepairer(c.Request().Context(), principal.SubjectID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]interface{}{"issues": issues})
}

func (h *RepairerHandler) ClaimIssue(c echo.Context) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return response.Error(c, err)
	}

	issue, err := h.claimUseCase.Claim(c.Request().Context(), principal, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]interface{}{
		"message": "Issue claimed",
		"issue":   issue,
	})
}

func (h *RepairerHandler) ClaimedIssues(c echo.Context) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return response.Error(c, err)
	}

	issues, err := h.claimUseCase.ClaimedIssues(c.Request().Context(), principal.SubjectID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]interface{}{"issues": issues})
}

func (h *RepairerHandler) ClaimedIssue(c echo.Context) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return response.Error(c, err)
	}

	issue, err := h.claimUseCase.ClaimedIssue(c.Request().Context(), principal.SubjectID, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]interface{}{"issue": issue})
}

func (h *RepairerHandler) Me(c echo.Context) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return response.Error(c, err)
	}

	repairer, err := h.profileUseCase.GetRepairer(c.Request().Context(), principal.SubjectID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, repairerMeResponse{
		IsRepairer: true,
		Expertise:  repairer.Expertise,
		Name:       repairer.Name,
		Email:      repairer.Email,
	})
}

func (h *RepairerHandler) ShopLocation(c echo.Context) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return response.Error(c, err)
	}
	return h.shopLocation(c, principal.SubjectID)
}

func (h *RepairerHandler) ShopLocationByID(c echo.Context) error {
	return h.shopLocation(c, c.Param("id"))
}

func (h *RepairerHandler) AllShops(c echo.Context) error {
	shops, err := h.profileUseCase.AllShops(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]interface{}{"shops": shops})
}

func (h *RepairerHandler) shopLocation(c echo.Context, repairerID string) error {
	geo, err := h.profileUseCase.ShopLocation(c.Request().Context(), repairerID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]interface{}{
		"location": coordinatesResponse{Lat: geo.Lat, Lng: geo.Long},
	})
}
