package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/agrisight/plantmap-cli/internal/model"
)

// WriteXLSX writes the collection as a single-sheet XLSX workbook with the
// same columns as the CSV export.
func WriteXLSX(records []model.PlantRecord, outputPath string) error {
	if len(records) == 0 {
		return ErrNoRecords
	}

	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Plants")
	if err != nil {
		return eris.Wrap(err, "export: add xlsx sheet")
	}

	header := sheet.AddRow()
	for _, col := range csvColumns {
		header.AddCell().SetString(col)
	}

	for _, r := range records {
		row := sheet.AddRow()
		row.AddCell().SetString(r.ImageName)
		row.AddCell().SetFloat(r.Latitude)
		row.AddCell().SetFloat(r.Longitude)
		row.AddCell().SetString(formatDate(r))
		row.AddCell().SetString(r.ImageURL)
	}

	if err := f.Save(outputPath); err != nil {
		return eris.Wrap(err, "export: save xlsx file")
	}
	return nil
}
