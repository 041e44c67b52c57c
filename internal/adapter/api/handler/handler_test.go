package handler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"furiousrepair/pkg/errors"
)

func TestParseDate(t *testing.T) {
	got, err := parseDate("2024-05-30")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2024, 5, 30, 0, 0, 0, 0, time.UTC)))

	got, err = parseDate("2024-05-30T10:15:00+05:30")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2024, 5, 30, 4, 45, 0, 0, time.UTC)))
	assert.Equal(t, time.UTC, got.Location())

	got, err = parseDate("  ")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = parseDate("30/05/2024")
	assert.True(t, errors.Is(err, errors.CodeValidation))
}

func TestToLocationNeedsBothCoordinates(t *testing.T) {
	lat, long := 18.52, 73.85

	loc := toLocation(" Pune ", "MH", "411001", &geoRequest{Lat: &lat, Long: &long})
	assert.Equal(t, "Pune", loc.City)
	require.NotNil(t, loc.Geo)
	assert.Equal(t, 73.85, loc.Geo.Long)

	assert.Nil(t, toLocation("Pune", "", "", &geoRequest{Lat: &lat}).Geo)
	assert.Nil(t, toLocation("Pune", "", "", nil).Geo)
}
