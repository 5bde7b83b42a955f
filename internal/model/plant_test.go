package model

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlantRecord_HasCoordinates(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name     string
		lat, lon float64
		want     bool
	}{
		{"valid", 12.9, 77.6, true},
		{"zero zero", 0, 0, true},
		{"lat north pole", 90, 0, true},
		{"lat south pole", -90, 0, true},
		{"lon antimeridian", 0, 180, true},
		{"lat too big", 90.1, 0, false},
		{"lat too small", -91, 0, false},
		{"lon too big", 0, 180.5, false},
		{"lon too small", 0, -181, false},
		{"lat NaN", math.NaN(), 77.6, false},
		{"lon Inf", 12.9, math.Inf(1), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			r := PlantRecord{ImageName: "x.jpg", Latitude: tc.lat, Longitude: tc.lon}
			assert.Equal(t, tc.want, r.HasCoordinates())
		})
	}
}

func TestPlantRecord_Validate(t *testing.T) {
	t.Parallel()

	valid := PlantRecord{ImageName: "plant1.jpg", Latitude: 12.9, Longitude: 77.6}
	require.NoError(t, valid.Validate())

	noName := PlantRecord{Latitude: 12.9, Longitude: 77.6}
	assert.Error(t, noName.Validate())

	badLat := PlantRecord{ImageName: "plant1.jpg", Latitude: 99, Longitude: 77.6}
	assert.Error(t, badLat.Validate())
}

func TestPlantRecord_Merge_ServerFieldsWin(t *testing.T) {
	t.Parallel()

	local := PlantRecord{
		ImageName: "plant1.jpg",
		ImageURL:  "https://cdn/x/plant1.jpg",
		Latitude:  12.9,
		Longitude: 77.6,
		Timestamp: "2026-08-30T10:00:00Z",
	}
	server := PlantRecord{
		Latitude:  13.0,
		Longitude: 77.7,
		Timestamp: "2026-08-30T10:00:05Z",
	}

	got := local.Merge(server)

	assert.Equal(t, "plant1.jpg", got.ImageName) // local survives when server omits
	assert.Equal(t, "https://cdn/x/plant1.jpg", got.ImageURL)
	assert.InDelta(t, 13.0, got.Latitude, 1e-9) // server wins on conflict
	assert.InDelta(t, 77.7, got.Longitude, 1e-9)
	assert.Equal(t, "2026-08-30T10:00:05Z", got.Timestamp)
}

func TestPlantRecord_Merge_EmptyServer(t *testing.T) {
	t.Parallel()

	local := PlantRecord{ImageName: "a.jpg", ImageURL: "u", Latitude: 1, Longitude: 2, Timestamp: "2026-01-01T00:00:00Z"}
	got := local.Merge(PlantRecord{})
	assert.Equal(t, local, got)
}

func TestPlantRecord_CaptureTime(t *testing.T) {
	t.Parallel()

	r := PlantRecord{Timestamp: "2026-08-30T10:00:00Z"}
	assert.Equal(t, time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC), r.CaptureTime())

	assert.True(t, PlantRecord{}.CaptureTime().IsZero())
	assert.True(t, PlantRecord{Timestamp: "not-a-time"}.CaptureTime().IsZero())
}

func TestFileStatus_Terminal(t *testing.T) {
	t.Parallel()

	assert.False(t, StatusPending.Terminal())
	assert.False(t, StatusProcessing.Terminal())
	assert.True(t, StatusSuccess.Terminal())
	assert.True(t, StatusFailed.Terminal())
}
