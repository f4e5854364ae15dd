package registry

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/planfill-cli/internal/model"
)

// Column headers accepted in map and data-points CSV files. Matching is
// case-insensitive after trimming.
var (
	mapLinkHeaders   = []string{"Proposed LinkName", "Proposed Linkname", "LinkNames", "Linknames"}
	mapQuickHeaders  = []string{"Quick", "Quick Text"}
	optPromptHeaders = []string{"PROMPT", "Prompt"}
	optValueHeaders  = []string{"Options Allowed", "Options"}
)

// ParseMapCSV reads prompt-map rows from a CSV export. The Prompt column is
// required; linkname and quick columns are matched against their known
// header spellings. Rows without a prompt are skipped.
func ParseMapCSV(r io.Reader) ([]model.MapEntry, error) {
	records, err := readCSV(r)
	if err != nil {
		return nil, eris.Wrap(err, "registry: read map csv")
	}
	if len(records) == 0 {
		return nil, eris.New("registry: map csv is empty")
	}

	header := records[0]
	iPrompt := findColumn(header, "Prompt")
	if iPrompt < 0 {
		return nil, eris.Errorf("registry: map csv missing Prompt column, got header %v", header)
	}
	iLink := findColumn(header, mapLinkHeaders...)
	iQuick := findColumn(header, mapQuickHeaders...)

	var entries []model.MapEntry
	for _, rec := range records[1:] {
		prompt := strings.TrimSpace(cellAt(rec, iPrompt))
		if prompt == "" {
			continue
		}
		entries = append(entries, model.MapEntry{
			Prompt:    prompt,
			Linknames: strings.TrimSpace(cellAt(rec, iLink)),
			Quick:     strings.TrimSpace(cellAt(rec, iQuick)),
		})
	}
	if len(entries) == 0 {
		return nil, eris.New("registry: map csv has no usable rows")
	}
	return entries, nil
}

// ParseOptionsCSV reads the data-points CSV into a prompt-to-options
// mapping. Both the PROMPT and Options Allowed columns must be present.
func ParseOptionsCSV(r io.Reader) (map[string]string, error) {
	records, err := readCSV(r)
	if err != nil {
		return nil, eris.Wrap(err, "registry: read data points csv")
	}
	if len(records) == 0 {
		return nil, eris.New("registry: data points csv is empty")
	}

	header := records[0]
	iPrompt := findColumn(header, optPromptHeaders...)
	iOptions := findColumn(header, optValueHeaders...)
	if iPrompt < 0 || iOptions < 0 {
		return nil, eris.Errorf("registry: data points csv missing PROMPT or Options Allowed column, got header %v", header)
	}

	out := make(map[string]string)
	for _, rec := range records[1:] {
		prompt := strings.TrimSpace(cellAt(rec, iPrompt))
		if prompt == "" {
			continue
		}
		out[prompt] = strings.TrimSpace(cellAt(rec, iOptions))
	}
	return out, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(skipBOM(r))
	reader.FieldsPerRecord = -1 // allow variable fields
	return reader.ReadAll()
}

// skipBOM drops a UTF-8 byte order mark so exports from spreadsheet tools
// parse cleanly.
func skipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if lead, err := br.Peek(3); err == nil && bytes.Equal(lead, []byte{0xEF, 0xBB, 0xBF}) {
		_, _ = br.Discard(3)
	}
	return br
}

// findColumn returns the index of the first header cell matching any
// candidate, comparing case-insensitively after trimming, or -1.
func findColumn(header []string, candidates ...string) int {
	for i, h := range header {
		h = strings.TrimSpace(h)
		for _, cand := range candidates {
			if strings.EqualFold(h, cand) {
				return i
			}
		}
	}
	return -1
}

func cellAt(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return rec[i]
}
