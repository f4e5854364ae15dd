// Package pipeline orchestrates a run: it pulls plan documents from a
// source, parses each into a flag set, and resolves every configured
// prompt against it, producing the answer grid.
package pipeline

import (
	"bytes"
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/planfill-cli/internal/model"
	"github.com/sells-group/planfill-cli/internal/planxml"
	"github.com/sells-group/planfill-cli/internal/registry"
	"github.com/sells-group/planfill-cli/internal/resolve"
	"github.com/sells-group/planfill-cli/internal/scorer"
	"github.com/sells-group/planfill-cli/internal/vesting"
)

// Extractor answers every configured prompt against each document in a
// run.
type Extractor struct {
	bundle   *registry.Bundle
	tables   *vesting.Tables
	progress ProgressFunc
}

// New creates an Extractor over compiled configuration and vesting
// tables. progress may be nil.
func New(bundle *registry.Bundle, tables *vesting.Tables, progress ProgressFunc) *Extractor {
	return &Extractor{bundle: bundle, tables: tables, progress: progress}
}

// Run processes every document from the source, strictly in order, and
// returns the completed grid. A document-level failure marks that
// document's column and processing continues; Run itself fails only when
// the source cannot enumerate or the context ends.
func (e *Extractor) Run(ctx context.Context, src Source) (*model.Grid, error) {
	docs, err := src.Documents(ctx)
	if err != nil {
		return nil, err
	}
	log := zap.L().With(
		zap.Int("documents", len(docs)),
		zap.Int("prompts", len(e.bundle.Prompts)),
	)
	log.Info("pipeline: starting extraction")

	grid := &model.Grid{Files: make([]string, 0, len(docs))}
	for _, p := range e.bundle.Prompts {
		grid.Rows = append(grid.Rows, model.Row{
			PromptKey:  p.Key,
			PromptText: p.Text,
			Values:     make(map[string]string, len(docs)),
		})
	}

	if len(docs) == 0 {
		e.report(Progress{Completed: 0, Total: 0})
		log.Info("pipeline: nothing to process")
		return grid, nil
	}

	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrap(err, "pipeline: extraction canceled")
		}
		grid.Files = append(grid.Files, doc.Name)
		e.processDocument(doc, grid)
		e.report(Progress{Completed: i + 1, Total: len(docs)})
	}

	log.Info("pipeline: extraction complete", zap.Int("misses", grid.MissCount()))
	return grid, nil
}

func (e *Extractor) report(p Progress) {
	if e.progress != nil {
		e.progress(p)
	}
}

// processDocument fills one grid column. A document that cannot be read
// or parsed answers every prompt with the error sentinel.
func (e *Extractor) processDocument(doc Document, grid *model.Grid) {
	flags, err := e.parse(doc)
	if err != nil {
		zap.L().Error("pipeline: document failed",
			zap.String("document", doc.Name),
			zap.Error(err),
		)
		for i := range grid.Rows {
			grid.Rows[i].Values[doc.Name] = model.ValueProcessingError
		}
		return
	}
	for i, p := range e.bundle.Prompts {
		grid.Rows[i].Values[doc.Name] = e.answer(p, flags)
	}
	zap.L().Debug("pipeline: document processed",
		zap.String("document", doc.Name),
		zap.Int("flags", len(flags)),
	)
}

func (e *Extractor) parse(doc Document) (model.FlagSet, error) {
	if doc.Err != nil {
		return nil, doc.Err
	}
	return planxml.Parse(bytes.NewReader(doc.Content))
}

// answer resolves one prompt against one document: candidates first, then
// vesting schedules, then the options matcher, then the quick-text label.
func (e *Extractor) answer(p model.Prompt, flags model.FlagSet) string {
	if v, ok := resolve.Resolve(p, flags); ok {
		return v
	}

	var lines []string
	if raw := e.bundle.OptionsFor(p); raw != "" {
		lines = scorer.SplitOptions(raw)
	}

	if vesting.IsVestingPrompt(p.Text) {
		if v, ok := e.tables.Resolve(flags, p.Quick, lines); ok {
			return v
		}
	}

	if len(lines) > 0 {
		if v, ok := scorer.Match(p.Candidates, flags, lines); ok {
			return v
		}
	}

	// Quick text applies only when the document selected something at all.
	if flags.AnySelected() {
		if v, ok := resolve.QuickLabel(p.Quick); ok {
			return v
		}
	}
	return model.ValueNotAvailable
}
