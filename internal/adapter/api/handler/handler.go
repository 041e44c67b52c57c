package handler

import (
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"furiousrepair/internal/adapter/api/middleware"
	"furiousrepair/internal/domain/entity"
	"furiousrepair/pkg/errors"
)

type geoRequest struct {
	Lat  *float64 `json:"lat" validate:"omitempty,latitude"`
	Long *float64 `json:"long" validate:"omitempty,longitude"`
}

type coordinatesResponse struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

func bindAndValidate(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return errors.BadRequest("Invalid request body", err)
	}
	return c.Validate(req)
}

func currentPrincipal(c echo.Context) (entity.Principal, error) {
	principal, ok := middleware.GetPrincipal(c)
	if !ok {
		return entity.Principal{}, errors.Unauthorized("Unauthorized", nil)
	}
	return principal, nil
}

func toLocation(city, state, pin string, geo *geoRequest) entity.Location {
	loc := entity.Location{
		City:  strings.TrimSpace(city),
		State: strings.TrimSpace(state),
		Pin:   strings.TrimSpace(pin),
	}
	if geo != nil && geo.Lat != nil && geo.Long != nil {
		loc.Geo = &entity.GeoPoint{Lat: *geo.Lat, Long: *geo.Long}
	}
	return loc
}

// parseDate accepts RFC 3339 timestamps and plain yyyy-mm-dd dates.
func parseDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, errors.Validation("date must be an RFC 3339 timestamp or yyyy-mm-dd")
}
