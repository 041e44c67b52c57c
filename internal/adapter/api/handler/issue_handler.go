package handler

import (
	"github.com/labstack/echo/v4"

	"furiousrepair/internal/usecase"
	"furiousrepair/pkg/errors"
	"furiousrepair/pkg/response"
)

type IssueHandler struct {
	issueUseCase *usecase.IssueUseCase
}

func NewIssueHandler(issueUseCase *usecase.IssueUseCase) *IssueHandler {
	return &IssueHandler{
		issueUseCase: issueUseCase,
	}
}

type reportIssueRequest struct {
	DeviceType     string      `json:"deviceType" validate:"max=100"`
	VehicleType    string      `json:"vehicleType" validate:"max=100"`
	Description    string      `json:"description" validate:"required,max=2000"`
	EstimatedPrice string      `json:"estimatedPrice" validate:"max=100"`
	Date           string      `json:"date"`
	City           string      `json:"city" validate:"max=100"`
	State          string      `json:"state" validate:"max=100"`
	Pin            string      `json:"pin" validate:"max=20"`
	Geoloc         *geoRequest `json:"geoloc"`
}

type issueLocationResponse struct {
	Location coordinatesResponse `json:"location"`
	City     string              `json:"city"`
	State    string              `json:"state"`
	Pin      string              `json:"pin"`
}

func (h *IssueHandler) ReportIssue(c echo.Context) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return response.Error(c, err)
	}

	var req reportIssueRequest
	if err := bindAndValidate(c, &req); err != nil {
		return response.Error(c, err)
	}
	reported, err := parseDate(req.Date)
	if err != nil {
		return response.Error(c, err)
	}

	issue, err := h.issueUseCase.ReportIssue(c.Request().Context(), principal.SubjectID, usecase.ReportIssueInput{
		DeviceType:     req.DeviceType,
		VehicleType:    req.VehicleType,
		Description:    req.Description,
		EstimatedPrice: req.EstimatedPrice,
		Location:       toLocation(req.City, req.State, req.Pin, req.Geoloc),
		DateReported:   reported,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, map[string]interface{}{
		"message": "Issue created",
		"issue":   issue,
	})
}

func (h *IssueHandler) ListIssues(c echo.Context) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return response.Error(c, err)
	}

	issues, err := h.issueUseCase.ListMine(c.Request().Context(), principal.SubjectID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]interface{}{"issues": issues})
}

func (h *IssueHandler) GetIssue(c echo.Context) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return response.Error(c, err)
	}

	issue, err := h.issueUseCase.GetMine(c.Request().Context(), principal.SubjectID, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]interface{}{"issue": issue})
}

// IssueLocation serves both the owning user and the claiming repairer.
func (h *IssueHandler) IssueLocation(c echo.Context) error {
	principal, err := currentPrincipal(c)
	if err != nil {
		return response.Error(c, err)
	}

	location, err := h.issueUseCase.IssueLocation(c.Request().Context(), principal, c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	if location.Geo == nil {
		return response.Error(c, errors.NotFound("Location", nil))
	}

	return response.Success(c, issueLocationResponse{
		Location: coordinatesResponse{Lat: location.Geo.Lat, Lng: location.Geo.Long},
		City:     location.City,
		State:    location.State,
		Pin:      location.Pin,
	})
}
