package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/planfill-cli/internal/export"
	"github.com/sells-group/planfill-cli/internal/model"
	"github.com/sells-group/planfill-cli/internal/pipeline"
	"github.com/sells-group/planfill-cli/internal/registry"
	"github.com/sells-group/planfill-cli/internal/store"
)

var (
	fillDir     string
	fillXMLs    []string
	fillMap     string
	fillOptions string
	fillOut     string
	fillFormat  string
)

var fillCmd = &cobra.Command{
	Use:   "fill",
	Short: "Answer every configured prompt against a batch of plan documents",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if fillFormat != "" {
			cfg.Fill.Format = fillFormat
		}
		if err := cfg.Validate("fill"); err != nil {
			return err
		}

		if fillDir != "" && len(fillXMLs) > 0 {
			return eris.New("--dir and --xml are mutually exclusive")
		}
		dir := fillDir
		if dir == "" && len(fillXMLs) == 0 {
			dir = cfg.Fill.InputDir
		}
		if dir == "" && len(fillXMLs) == 0 {
			return eris.New("no input: pass --dir or --xml")
		}

		// Resolve inputs
		mapPath, optionsPath := fillMap, fillOptions
		if dir != "" {
			mapPath, optionsPath = detectWorkbooks(dir, mapPath, optionsPath)
		}
		bundle, tables, err := loadInputs(mapPath, optionsPath)
		if err != nil {
			return err
		}

		src, input := fillSource(dir)
		docs, err := src.Documents(ctx)
		if err != nil {
			return err
		}
		if len(docs) == 0 {
			zap.L().Warn("fill: no plan documents found", zap.String("input", input))
		}

		// Init store
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		run, err := st.CreateRun(ctx, model.Run{
			Source:        model.RunSourceCLI,
			Input:         input,
			MapSource:     bundle.MapSource,
			OptionsSource: bundle.OptionsSource,
			Documents:     len(docs),
			Prompts:       len(bundle.Prompts),
		})
		if err != nil {
			return err
		}

		grid, err := pipeline.New(bundle, tables, logProgress).Run(ctx, pipeline.Docs(docs))
		if err != nil {
			recordFailure(ctx, st, run.ID, err)
			return eris.Wrap(err, "fill run")
		}

		out := outputPath()
		if err := export.WriteFile(out, cfg.Fill.Format, grid); err != nil {
			recordFailure(ctx, st, run.ID, err)
			return err
		}

		if err := st.CompleteRun(ctx, run.ID, grid.MissCount(), out); err != nil {
			return err
		}

		zap.L().Info("fill: run complete",
			zap.String("run_id", run.ID),
			zap.Int("documents", len(docs)),
			zap.Int("prompts", len(bundle.Prompts)),
			zap.Int("misses", grid.MissCount()),
			zap.String("output", out),
		)
		return nil
	},
}

// fillSource picks the document source: an explicit --xml list keeps its
// order, a directory is scanned for *.xml. The second return is the input
// label recorded on the run.
func fillSource(dir string) (pipeline.Source, string) {
	if len(fillXMLs) > 0 {
		return pipeline.FileSource{Paths: fillXMLs, Concurrency: cfg.Fill.ReadConcurrency},
			fmt.Sprintf("%d files", len(fillXMLs))
	}
	return pipeline.DirSource{Dir: dir, Concurrency: cfg.Fill.ReadConcurrency}, dir
}

// detectWorkbooks scans dir for map and data-points workbooks by filename.
// Explicit paths always win; detection only fills the blanks.
func detectWorkbooks(dir, mapPath, optionsPath string) (string, string) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.xlsx"))
	if err != nil {
		return mapPath, optionsPath
	}
	for _, p := range paths {
		switch registry.DetectKind(p) {
		case registry.KindMap:
			if mapPath == "" {
				mapPath = p
				zap.L().Info("fill: detected map workbook", zap.String("path", p))
			}
		case registry.KindOptions:
			if optionsPath == "" {
				optionsPath = p
				zap.L().Info("fill: detected data points workbook", zap.String("path", p))
			}
		}
	}
	return mapPath, optionsPath
}

func outputPath() string {
	if fillOut != "" {
		return fillOut
	}
	if cfg.Fill.Output != "" {
		return cfg.Fill.Output
	}
	return "plan_answers." + cfg.Fill.Format
}

func logProgress(p pipeline.Progress) {
	zap.L().Info("fill: progress",
		zap.Int("completed", p.Completed),
		zap.Int("total", p.Total),
		zap.String("percent", fmt.Sprintf("%.0f%%", 100*p.Fraction())),
	)
}

func recordFailure(ctx context.Context, st store.Store, runID string, cause error) {
	if err := st.FailRun(ctx, runID, cause.Error()); err != nil {
		zap.L().Error("fill: record failure", zap.String("run_id", runID), zap.Error(err))
	}
}

func init() {
	fillCmd.Flags().StringVar(&fillDir, "dir", "", "directory of plan XML files (map workbooks auto-detected)")
	fillCmd.Flags().StringSliceVar(&fillXMLs, "xml", nil, "plan XML file (repeatable)")
	fillCmd.Flags().StringVar(&fillMap, "map", "", "prompt map file, csv or xlsx")
	fillCmd.Flags().StringVar(&fillOptions, "options", "", "allowed data points file, csv or xlsx")
	fillCmd.Flags().StringVar(&fillOut, "out", "", "output path (default plan_answers.<format>)")
	fillCmd.Flags().StringVar(&fillFormat, "format", "", "output format: csv, json, or xlsx")
	rootCmd.AddCommand(fillCmd)
}
