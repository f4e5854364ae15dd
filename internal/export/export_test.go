package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/planfill-cli/internal/model"
)

func testGrid() *model.Grid {
	return &model.Grid{
		Files: []string{"planA.xml", "planB.xml"},
		Rows: []model.Row{
			{
				PromptKey:  "AutoEnroll",
				PromptText: "Does the plan use automatic enrollment?",
				Values:     map[string]string{"planA.xml": "Yes", "planB.xml": "No"},
			},
			{
				PromptKey:  "Vesting",
				PromptText: "What is the vesting schedule?",
				Values:     map[string]string{"planA.xml": "20% per year for 5 years", "planB.xml": model.ValueNotAvailable},
			},
			{
				PromptKey:  "LoanLimit",
				PromptText: "What is the participant loan limit?",
				Values:     map[string]string{"planA.xml": model.ValueProcessingError},
			},
		},
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, testGrid()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, []string{"Prompt", "planA.xml", "planB.xml"}, records[0])
	assert.Equal(t, []string{"Does the plan use automatic enrollment?", "Yes", "No"}, records[1])
	assert.Equal(t, []string{"What is the vesting schedule?", "20% per year for 5 years", "N/A"}, records[2])

	// A file absent from a row's value map renders as an empty cell.
	assert.Equal(t, []string{"What is the participant loan limit?", "Processing Error", ""}, records[3])
}

func TestWriteCSV_EmptyGrid(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, &model.Grid{}))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, []string{"Prompt"}, records[0])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, testGrid()))

	var got model.Grid
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, []string{"planA.xml", "planB.xml"}, got.Files)
	require.Len(t, got.Rows, 3)
	assert.Equal(t, "AutoEnroll", got.Rows[0].PromptKey)
	assert.Equal(t, "Yes", got.Rows[0].Values["planA.xml"])

	// Wire field names, not Go field names.
	assert.Contains(t, buf.String(), `"fileNames"`)
	assert.Contains(t, buf.String(), `"promptText"`)
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, testGrid()))

	f, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)

	sheet, ok := f.Sheet["Results"]
	require.True(t, ok, "workbook should have a Results sheet")
	require.Len(t, sheet.Rows, 4)

	assert.Equal(t, "Prompt", sheet.Rows[0].Cells[0].String())
	assert.Equal(t, "planA.xml", sheet.Rows[0].Cells[1].String())
	assert.Equal(t, "planB.xml", sheet.Rows[0].Cells[2].String())
	assert.Equal(t, "Does the plan use automatic enrollment?", sheet.Rows[1].Cells[0].String())
	assert.Equal(t, "Yes", sheet.Rows[1].Cells[1].String())
	assert.Equal(t, "N/A", sheet.Rows[2].Cells[2].String())
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()

	for _, format := range []string{FormatCSV, FormatJSON, FormatXLSX} {
		path := filepath.Join(dir, "out."+format)
		require.NoError(t, WriteFile(path, format, testGrid()))

		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.Positive(t, info.Size(), "format %s should write bytes", format)
	}
}

func TestWriteFile_UnknownFormat(t *testing.T) {
	err := WriteFile(filepath.Join(t.TempDir(), "out.bin"), "parquet", testGrid())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}
