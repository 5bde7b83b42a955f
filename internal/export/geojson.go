package export

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"

	"github.com/agrisight/plantmap-cli/internal/model"
)

// FeatureCollection builds a GeoJSON FeatureCollection of Point features
// from the collection. Records without valid coordinates are excluded, the
// same rule the map view applies.
func FeatureCollection(records []model.PlantRecord) *geojson.FeatureCollection {
	fc := &geojson.FeatureCollection{Features: []*geojson.Feature{}}
	for _, r := range records {
		if !r.HasCoordinates() {
			continue
		}
		fc.Features = append(fc.Features, &geojson.Feature{
			ID:       r.ImageName,
			Geometry: geom.NewPointFlat(geom.XY, []float64{r.Longitude, r.Latitude}),
			Properties: map[string]any{
				"imageName": r.ImageName,
				"imageUrl":  r.ImageURL,
				"timestamp": r.Timestamp,
			},
		})
	}
	return fc
}

// WriteGeoJSON writes the collection as a GeoJSON file for map tooling.
// A collection with no mappable records is rejected.
func WriteGeoJSON(records []model.PlantRecord, outputPath string) error {
	if len(records) == 0 {
		return ErrNoRecords
	}

	fc := FeatureCollection(records)
	if len(fc.Features) == 0 {
		return eris.New("export: no records with valid coordinates")
	}

	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return eris.Wrap(err, "export: marshal geojson")
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return eris.Wrap(err, "export: write geojson file")
	}
	return nil
}
