// Package export renders the plant collection for use outside the
// dashboard: CSV and XLSX for spreadsheets, GeoJSON for map tooling.
package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rotisserie/eris"

	"github.com/agrisight/plantmap-cli/internal/model"
)

// ErrNoRecords rejects exports of an empty collection: the user gets a
// message instead of an empty file.
var ErrNoRecords = eris.New("export: no records to export")

// csvColumns defines the ordered CSV output columns.
var csvColumns = []string{
	"ImageName",
	"Latitude",
	"Longitude",
	"Date",
	"ImageUrl",
}

// WriteCSV writes the collection as a CSV file, one row per record.
func WriteCSV(records []model.PlantRecord, outputPath string) error {
	if len(records) == 0 {
		return ErrNoRecords
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return eris.Wrap(err, "export: create csv file")
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(csvColumns); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	for _, r := range records {
		if err := w.Write(buildRow(r)); err != nil {
			return eris.Wrap(err, "export: write csv row")
		}
	}
	return nil
}

// buildRow maps a record to a CSV row in csvColumns order.
func buildRow(r model.PlantRecord) []string {
	return []string{
		r.ImageName,
		strconv.FormatFloat(r.Latitude, 'f', -1, 64),
		strconv.FormatFloat(r.Longitude, 'f', -1, 64),
		formatDate(r),
		r.ImageURL,
	}
}

// formatDate renders the capture date for spreadsheet display.
func formatDate(r model.PlantRecord) string {
	t := r.CaptureTime()
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

// TimestampedName returns a default output file name carrying the export
// time, e.g. "farm-plants-20260831-154210.csv".
func TimestampedName(ext string) string {
	return fmt.Sprintf("farm-plants-%s.%s", time.Now().Format("20060102-150405"), ext)
}
