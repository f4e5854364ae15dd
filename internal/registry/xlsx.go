package registry

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/planfill-cli/internal/model"
)

// optionsSheetName is the sheet the data-points workbook keeps its
// prompt/options columns on.
const optionsSheetName = "Plan Express Data Points"

// ParseMapXLSX reads the prompt map from the first sheet of a map workbook.
// A blank prompt cell continues the previous prompt (merged cells), the
// last non-empty linkname cell wins, and the first non-empty quick text is
// kept.
func ParseMapXLSX(path string) ([]model.MapEntry, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "registry: open map workbook")
	}
	if len(f.Sheets) == 0 || len(f.Sheets[0].Rows) == 0 {
		return nil, eris.New("registry: map workbook is empty")
	}
	sheet := f.Sheets[0]

	header := rowToStrings(sheet.Rows[0])
	iPrompt := indexOf(header, "Prompt")
	iQuick := indexOf(header, "Quick Text Data Point")
	iLink := indexOf(header, "Proposed LinkName")
	if iPrompt < 0 || iQuick < 0 || iLink < 0 {
		return nil, eris.Errorf("registry: unexpected map workbook header %v", header)
	}

	var (
		entries []*model.MapEntry
		byText  = make(map[string]*model.MapEntry)
		current string
	)
	for _, row := range sheet.Rows[1:] {
		cells := rowToStrings(row)
		if allBlank(cells) {
			continue
		}
		prompt := NormalizeText(cellAt(cells, iPrompt))
		if prompt != "" {
			current = prompt
		} else if current == "" {
			continue
		}

		entry, ok := byText[current]
		if !ok {
			entry = &model.MapEntry{Prompt: current}
			byText[current] = entry
			entries = append(entries, entry)
		}
		if link := strings.TrimSpace(cellAt(cells, iLink)); link != "" {
			entry.Linknames = link
		}
		if quick := strings.TrimSpace(cellAt(cells, iQuick)); quick != "" && entry.Quick == "" {
			entry.Quick = quick
		}
	}
	if len(entries) == 0 {
		return nil, eris.New("registry: map workbook has no usable rows")
	}

	out := make([]model.MapEntry, len(entries))
	for i, e := range entries {
		out[i] = *e
	}
	return out, nil
}

// ParseOptionsXLSX reads the allowed-options mapping from a data-points
// workbook. The named sheet is preferred, falling back to the first sheet.
// The PROMPT header is matched exactly first and by substring as a
// fallback; Options Allowed must match exactly.
func ParseOptionsXLSX(path string) (map[string]string, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, eris.Wrap(err, "registry: open data points workbook")
	}
	sheet, ok := f.Sheet[optionsSheetName]
	if !ok {
		if len(f.Sheets) == 0 {
			return nil, eris.New("registry: data points workbook is empty")
		}
		sheet = f.Sheets[0]
	}
	if len(sheet.Rows) == 0 {
		return nil, eris.New("registry: data points sheet is empty")
	}

	header := rowToStrings(sheet.Rows[0])
	iPrompt := indexOf(header, "PROMPT")
	if iPrompt < 0 {
		for i, h := range header {
			if strings.Contains(strings.TrimSpace(h), "PROMPT") {
				iPrompt = i
				break
			}
		}
	}
	iOptions := indexOf(header, "Options Allowed")
	if iPrompt < 0 || iOptions < 0 {
		return nil, eris.Errorf("registry: data points sheet missing PROMPT or Options Allowed, got header %v", header)
	}

	out := make(map[string]string)
	for _, row := range sheet.Rows[1:] {
		cells := rowToStrings(row)
		prompt := strings.TrimSpace(cellAt(cells, iPrompt))
		if prompt == "" {
			continue
		}
		out[prompt] = strings.TrimSpace(cellAt(cells, iOptions))
	}
	return out, nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}

// indexOf finds a header cell by exact match after trimming.
func indexOf(header []string, want string) int {
	for i, h := range header {
		if strings.TrimSpace(h) == want {
			return i
		}
	}
	return -1
}

func allBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
