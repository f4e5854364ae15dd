package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/planfill-cli/internal/model"
)

func TestCompile(t *testing.T) {
	t.Parallel()

	t.Run("keys derive from the first candidate", func(t *testing.T) {
		t.Parallel()

		b := Compile([]model.MapEntry{
			{Prompt: "Safe harbor?", Linknames: "YesSafeHarbor, NoSafeHarbor"},
			{Prompt: "Match rate", Linknames: "401(k) Match!, Other"},
		}, nil)
		require.Len(t, b.Prompts, 2)
		assert.Equal(t, "YesSafeHarbor", b.Prompts[0].Key)
		assert.Equal(t, "401kMatch", b.Prompts[1].Key)
	})

	t.Run("position fallback when no candidate is usable", func(t *testing.T) {
		t.Parallel()

		b := Compile([]model.MapEntry{
			{Prompt: "First"},
			{Prompt: "Second", Linknames: "!!!"},
		}, nil)
		require.Len(t, b.Prompts, 2)
		assert.Equal(t, "prompt_1", b.Prompts[0].Key)
		assert.Equal(t, "prompt_2", b.Prompts[1].Key)
	})

	t.Run("collisions get a counter suffix", func(t *testing.T) {
		t.Parallel()

		b := Compile([]model.MapEntry{
			{Prompt: "Match schedule?", Linknames: "VestMain"},
			{Prompt: "Non-elective schedule?", Linknames: "VestMain, Extra"},
			{Prompt: "QACA schedule?", Linknames: "VestMain"},
		}, nil)
		require.Len(t, b.Prompts, 3)
		assert.Equal(t, "VestMain", b.Prompts[0].Key)
		assert.Equal(t, "VestMain_2", b.Prompts[1].Key)
		assert.Equal(t, "VestMain_3", b.Prompts[2].Key)
	})

	t.Run("prompt text is normalized and empties are dropped", func(t *testing.T) {
		t.Parallel()

		b := Compile([]model.MapEntry{
			{Prompt: "  Eligibility   age:  ", Linknames: "EligAge"},
			{Prompt: "   "},
		}, nil)
		require.Len(t, b.Prompts, 1)
		assert.Equal(t, "Eligibility age", b.Prompts[0].Text)
	})

	t.Run("options index by normalized prompt text", func(t *testing.T) {
		t.Parallel()

		b := Compile(
			[]model.MapEntry{{Prompt: "Vesting schedule:", Linknames: "VestMain"}},
			map[string]string{"  Vesting   schedule: ": "Immediate\\n2-20"},
		)
		require.Len(t, b.Prompts, 1)
		assert.Equal(t, `Immediate\n2-20`, b.OptionsFor(b.Prompts[0]))
	})

	t.Run("prompts without options resolve to empty", func(t *testing.T) {
		t.Parallel()

		b := Compile([]model.MapEntry{{Prompt: "Safe harbor?", Linknames: "SH"}}, nil)
		assert.Empty(t, b.OptionsFor(b.Prompts[0]))
	})

	t.Run("quick text is trimmed", func(t *testing.T) {
		t.Parallel()

		b := Compile([]model.MapEntry{
			{Prompt: "Contribution type?", Linknames: "SHMatchMain", Quick: "  Safe Harbor, Match  "},
		}, nil)
		assert.Equal(t, "Safe Harbor, Match", b.Prompts[0].Quick)
	})
}

func TestLoaderLayering(t *testing.T) {
	t.Parallel()

	writeCSV := func(t *testing.T, name, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	t.Run("explicit paths win", func(t *testing.T) {
		t.Parallel()

		store := t.TempDir()
		require.NoError(t, SaveUserMap(store, []model.MapEntry{{Prompt: "From store", Linknames: "StoreLink"}}))
		require.NoError(t, SaveUserOptions(store, map[string]string{"From store": "A\\nB"}))

		l := Loader{
			MapPath:     writeCSV(t, "map.csv", "Prompt,LinkNames\nFrom file,FileLink\n"),
			OptionsPath: writeCSV(t, "points.csv", "PROMPT,Options Allowed\nFrom file,X\\nY\n"),
			StoreDir:    store,
		}
		b, err := l.Load()
		require.NoError(t, err)
		require.Len(t, b.Prompts, 1)
		assert.Equal(t, "From file", b.Prompts[0].Text)
		assert.Equal(t, `X\nY`, b.OptionsFor(b.Prompts[0]))
	})

	t.Run("user store beats packaged defaults", func(t *testing.T) {
		t.Parallel()

		store := t.TempDir()
		require.NoError(t, SaveUserMap(store, []model.MapEntry{
			{Prompt: "Imported prompt", Linknames: "ImportedLink"},
		}))

		b, err := Loader{StoreDir: store}.Load()
		require.NoError(t, err)
		require.Len(t, b.Prompts, 1)
		assert.Equal(t, "ImportedLink", b.Prompts[0].Key)
	})

	t.Run("packaged defaults apply last", func(t *testing.T) {
		t.Parallel()

		b, err := Loader{StoreDir: t.TempDir()}.Load()
		require.NoError(t, err)
		require.NotEmpty(t, b.Prompts)
		assert.Equal(t, "Is the plan a safe harbor plan?", b.Prompts[0].Text)
		assert.Equal(t, "YesSafeHarbor", b.Prompts[0].Key)

		var vest *model.Prompt
		for i := range b.Prompts {
			if b.Prompts[i].Text == "What is the vesting schedule for Match?" {
				vest = &b.Prompts[i]
			}
		}
		require.NotNil(t, vest)
		assert.Contains(t, b.OptionsFor(*vest), "Cliff 3")
	})

	t.Run("unreadable user map falls through", func(t *testing.T) {
		t.Parallel()

		store := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(store, mapFile), []byte("{broken"), 0o644))

		b, err := Loader{StoreDir: store}.Load()
		require.NoError(t, err)
		assert.Equal(t, "Is the plan a safe harbor plan?", b.Prompts[0].Text)
	})

	t.Run("unsupported map format", func(t *testing.T) {
		t.Parallel()

		_, err := Loader{MapPath: writeCSV(t, "map.txt", "Prompt\nX\n")}.Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported map format")
	})

	t.Run("xlsx paths route to the workbook parsers", func(t *testing.T) {
		t.Parallel()

		mapPath := createTestXLSX(t, map[string][][]string{
			"Sheet1": {
				{"Prompt", "Quick Text Data Point", "Proposed LinkName"},
				{"Workbook prompt", "", "WorkbookLink"},
			},
		})
		optPath := createTestXLSX(t, map[string][][]string{
			optionsSheetName: {
				{"PROMPT", "Options Allowed"},
				{"Workbook prompt", "One\\nTwo"},
			},
		})

		b, err := Loader{MapPath: mapPath, OptionsPath: optPath}.Load()
		require.NoError(t, err)
		require.Len(t, b.Prompts, 1)
		assert.Equal(t, "WorkbookLink", b.Prompts[0].Key)
		assert.Equal(t, `One\nTwo`, b.OptionsFor(b.Prompts[0]))
	})
}

func TestDetectKind(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		want WorkbookKind
	}{
		{"Prompt Map v3.xlsx", KindMap},
		{"/tmp/uploads/client map.xlsx", KindMap},
		{"TPA Data Points.xlsx", KindOptions},
		{"tpa_export.xlsx", KindOptions},
		{"Plan Express Data Points.xlsx", KindOptions},
		{"map of data points.xlsx", KindMap},
		{"results.xlsx", KindUnknown},
		{"", KindUnknown},
	}
	for _, tc := range cases {
		if got := DetectKind(tc.name); got != tc.want {
			t.Errorf("DetectKind(%q) = %d, want %d", tc.name, got, tc.want)
		}
	}
}
