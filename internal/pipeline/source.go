package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/sync/errgroup"
)

// Document is one named plan document queued for extraction. A read
// failure travels with the document and surfaces at the processing
// boundary, so one unreadable file never aborts a run.
type Document struct {
	Name    string
	Content []byte
	Err     error
}

// Source enumerates the documents a run processes.
type Source interface {
	Documents(ctx context.Context) ([]Document, error)
}

const defaultReadConcurrency = 8

// DirSource reads every *.xml file directly under Dir, in name order.
// Contents are prefetched concurrently up to Concurrency readers.
type DirSource struct {
	Dir         string
	Concurrency int
}

func (s DirSource) Documents(ctx context.Context) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "pipeline: enumerate documents")
	}
	paths, err := filepath.Glob(filepath.Join(s.Dir, "*.xml"))
	if err != nil {
		return nil, eris.Wrapf(err, "pipeline: scan %s", s.Dir)
	}
	sort.Strings(paths)
	return readFiles(paths, s.Concurrency), nil
}

// FileSource reads an explicit list of files, in the order given.
type FileSource struct {
	Paths       []string
	Concurrency int
}

func (s FileSource) Documents(ctx context.Context) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrap(err, "pipeline: enumerate documents")
	}
	return readFiles(s.Paths, s.Concurrency), nil
}

// readFiles prefetches file contents with bounded concurrency. A read
// failure stays on its document.
func readFiles(paths []string, limit int) []Document {
	if limit <= 0 {
		limit = defaultReadConcurrency
	}

	docs := make([]Document, len(paths))
	var g errgroup.Group
	g.SetLimit(limit)
	for i, path := range paths {
		g.Go(func() error {
			data, readErr := os.ReadFile(path)
			docs[i] = Document{Name: filepath.Base(path), Content: data}
			if readErr != nil {
				docs[i].Content = nil
				docs[i].Err = eris.Wrapf(readErr, "pipeline: read %s", path)
			}
			return nil
		})
	}
	_ = g.Wait()
	return docs
}

// Docs is a pre-enumerated Source, for callers that inspect the document
// list before starting extraction.
type Docs []Document

func (d Docs) Documents(context.Context) ([]Document, error) {
	return d, nil
}

// MemSource serves documents already held in memory, as HTTP uploads or
// test fixtures arrive.
type MemSource struct {
	docs []Document
}

// Add appends a document. Blank names fall back to file_N.xml so every
// grid column has a label.
func (s *MemSource) Add(name string, content []byte) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = fmt.Sprintf("file_%d.xml", len(s.docs)+1)
	}
	s.docs = append(s.docs, Document{Name: name, Content: content})
}

// Len returns the number of documents added so far.
func (s *MemSource) Len() int { return len(s.docs) }

func (s *MemSource) Documents(_ context.Context) ([]Document, error) {
	return s.docs, nil
}
