package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDirSource(t *testing.T) {
	t.Parallel()

	t.Run("reads xml files in name order", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "b.xml"), []byte("<B/>"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a.xml"), []byte("<A/>"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0o644))

		docs, err := DirSource{Dir: dir}.Documents(context.Background())
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, "a.xml", docs[0].Name)
		assert.Equal(t, []byte("<A/>"), docs[0].Content)
		assert.Equal(t, "b.xml", docs[1].Name)
		assert.Equal(t, []byte("<B/>"), docs[1].Content)
	})

	t.Run("read failure travels on the document", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "good.xml"), []byte("<A/>"), 0o644))
		// A directory with an .xml name cannot be read as a file.
		require.NoError(t, os.Mkdir(filepath.Join(dir, "broken.xml"), 0o755))

		docs, err := DirSource{Dir: dir}.Documents(context.Background())
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, "broken.xml", docs[0].Name)
		assert.Error(t, docs[0].Err)
		assert.Nil(t, docs[0].Content)
		assert.Equal(t, "good.xml", docs[1].Name)
		assert.NoError(t, docs[1].Err)
	})

	t.Run("empty directory", func(t *testing.T) {
		t.Parallel()

		docs, err := DirSource{Dir: t.TempDir()}.Documents(context.Background())
		require.NoError(t, err)
		assert.Empty(t, docs)
	})

	t.Run("bounded concurrency", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		for _, name := range []string{"1.xml", "2.xml", "3.xml"} {
			require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("<A/>"), 0o644))
		}
		docs, err := DirSource{Dir: dir, Concurrency: 1}.Documents(context.Background())
		require.NoError(t, err)
		assert.Len(t, docs, 3)
	})

	t.Run("canceled context", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := DirSource{Dir: t.TempDir()}.Documents(ctx)
		require.Error(t, err)
	})
}

func TestFileSource(t *testing.T) {
	t.Parallel()

	t.Run("keeps the order given", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "z.xml"), []byte("<Z/>"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "a.xml"), []byte("<A/>"), 0o644))

		src := FileSource{Paths: []string{
			filepath.Join(dir, "z.xml"),
			filepath.Join(dir, "a.xml"),
		}}
		docs, err := src.Documents(context.Background())
		require.NoError(t, err)
		require.Len(t, docs, 2)
		assert.Equal(t, "z.xml", docs[0].Name)
		assert.Equal(t, "a.xml", docs[1].Name)
	})

	t.Run("missing file travels on the document", func(t *testing.T) {
		t.Parallel()

		docs, err := FileSource{Paths: []string{"/nonexistent/plan.xml"}}.Documents(context.Background())
		require.NoError(t, err)
		require.Len(t, docs, 1)
		assert.Equal(t, "plan.xml", docs[0].Name)
		assert.Error(t, docs[0].Err)
	})
}

func TestMemSource(t *testing.T) {
	t.Parallel()

	var src MemSource
	src.Add("plan_a.xml", []byte("<A/>"))
	src.Add("", []byte("<B/>"))
	src.Add("   ", []byte("<C/>"))

	docs, err := src.Documents(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 3)
	assert.Equal(t, "plan_a.xml", docs[0].Name)
	assert.Equal(t, "file_2.xml", docs[1].Name)
	assert.Equal(t, "file_3.xml", docs[2].Name)
	assert.Equal(t, 3, src.Len())
}

func TestDocs(t *testing.T) {
	t.Parallel()

	src := Docs{{Name: "a.xml"}, {Name: "b.xml"}}
	docs, err := src.Documents(context.Background())
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}
