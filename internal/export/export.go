// Package export renders a result grid as CSV, JSON, or XLSX. Every format
// shares the same layout: one row per prompt, one column per document, in
// the order the documents were processed.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/planfill-cli/internal/model"
)

// Formats accepted by WriteFile and the fill command.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
	FormatXLSX = "xlsx"
)

// WriteCSV writes the grid to w as CSV: a "Prompt" header followed by one
// column per document, one row per prompt.
func WriteCSV(w io.Writer, grid *model.Grid) error {
	cw := csv.NewWriter(w)

	header := append([]string{"Prompt"}, grid.Files...)
	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}

	for _, row := range grid.Rows {
		record := make([]string, 0, len(grid.Files)+1)
		record = append(record, row.PromptText)
		for _, f := range grid.Files {
			record = append(record, row.Values[f])
		}
		if err := cw.Write(record); err != nil {
			return eris.Wrap(err, "export: write csv row")
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush csv")
}

// WriteJSON writes the grid to w in the wire shape consumed by the
// userscript clients: {"fileNames": [...], "rows": [...]}.
func WriteJSON(w io.Writer, grid *model.Grid) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return eris.Wrap(enc.Encode(grid), "export: encode json")
}

// WriteXLSX writes the grid to w as a workbook with a single "Results"
// sheet laid out like the CSV.
func WriteXLSX(w io.Writer, grid *model.Grid) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet("Results")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	header.AddCell().SetString("Prompt")
	for _, name := range grid.Files {
		header.AddCell().SetString(name)
	}

	for _, row := range grid.Rows {
		r := sheet.AddRow()
		r.AddCell().SetString(row.PromptText)
		for _, f := range grid.Files {
			r.AddCell().SetString(row.Values[f])
		}
	}

	return eris.Wrap(f.Write(w), "export: write xlsx")
}

// WriteFile renders the grid to path in the given format.
func WriteFile(path, format string, grid *model.Grid) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrap(err, "export: create file")
	}
	defer f.Close()

	switch format {
	case FormatCSV:
		return WriteCSV(f, grid)
	case FormatJSON:
		return WriteJSON(f, grid)
	case FormatXLSX:
		return WriteXLSX(f, grid)
	default:
		return eris.Errorf("export: unknown format %q", format)
	}
}
