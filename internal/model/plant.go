package model

import (
	"math"
	"time"

	"github.com/rotisserie/eris"
)

// PlantRecord is one geo-tagged crop image and its extracted location.
// Records are keyed by ImageName within a collection; a later save with the
// same name replaces the earlier record in place.
type PlantRecord struct {
	ImageName string  `json:"imageName"`
	ImageURL  string  `json:"imageUrl"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp string  `json:"timestamp,omitempty"` // RFC 3339, capture time
}

// Validate checks the record invariants: a non-empty image name and finite
// coordinates within WGS84 bounds.
func (r PlantRecord) Validate() error {
	if r.ImageName == "" {
		return eris.New("plant record: image name is required")
	}
	if !r.HasCoordinates() {
		return eris.Errorf("plant record %q: coordinates out of range (%f, %f)", r.ImageName, r.Latitude, r.Longitude)
	}
	return nil
}

// HasCoordinates reports whether the record carries a finite latitude in
// [-90,90] and longitude in [-180,180]. Records without valid coordinates
// are excluded from map rendering.
func (r PlantRecord) HasCoordinates() bool {
	if math.IsNaN(r.Latitude) || math.IsInf(r.Latitude, 0) {
		return false
	}
	if math.IsNaN(r.Longitude) || math.IsInf(r.Longitude, 0) {
		return false
	}
	return r.Latitude >= -90 && r.Latitude <= 90 &&
		r.Longitude >= -180 && r.Longitude <= 180
}

// CaptureTime parses the record timestamp. The zero time is returned for
// records saved without one.
func (r PlantRecord) CaptureTime() time.Time {
	if r.Timestamp == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, r.Timestamp)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Merge overlays srv onto r, with srv's non-zero fields taking precedence.
// Used when the persistence collaborator echoes back an enriched record.
func (r PlantRecord) Merge(srv PlantRecord) PlantRecord {
	out := r
	if srv.ImageName != "" {
		out.ImageName = srv.ImageName
	}
	if srv.ImageURL != "" {
		out.ImageURL = srv.ImageURL
	}
	if srv.Latitude != 0 || srv.Longitude != 0 {
		out.Latitude = srv.Latitude
		out.Longitude = srv.Longitude
	}
	if srv.Timestamp != "" {
		out.Timestamp = srv.Timestamp
	}
	return out
}
