package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/planfill-cli/internal/registry"
)

var (
	mappingImportMap     string
	mappingImportOptions string
	mappingShowJSON      bool
)

var mappingCmd = &cobra.Command{
	Use:   "mapping",
	Short: "Manage the prompt map and allowed data points",
}

var mappingImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a prompt map (and optionally data points) into the user store",
	RunE: func(cmd *cobra.Command, _ []string) error {
		dir, err := userStoreDir()
		if err != nil {
			return err
		}

		entries, err := registry.LoadMapFile(mappingImportMap)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return eris.New("prompt map is empty")
		}
		if err := registry.SaveUserMap(dir, entries); err != nil {
			return err
		}

		options := 0
		if mappingImportOptions != "" {
			opts, err := registry.LoadOptionsFile(mappingImportOptions)
			if err != nil {
				return err
			}
			if err := registry.SaveUserOptions(dir, opts); err != nil {
				return err
			}
			options = len(opts)
		}

		zap.L().Info("mapping: import complete",
			zap.String("store_dir", dir),
			zap.Int("entries", len(entries)),
			zap.Int("options", options),
		)
		return nil
	},
}

var mappingShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the resolved prompt map and the layer each input came from",
	RunE: func(cmd *cobra.Command, _ []string) error {
		loader := registry.Loader{
			MapPath:     cfg.Registry.MapPath,
			OptionsPath: cfg.Registry.OptionsPath,
			StoreDir:    cfg.Registry.StoreDir,
		}
		bundle, err := loader.Load()
		if err != nil {
			return err
		}

		if mappingShowJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(mappingView(bundle))
		}

		fmt.Fprint(os.Stdout, formatMapping(bundle))
		return nil
	},
}

// promptView is the JSON shape of one resolved prompt in mapping show.
type promptView struct {
	Key        string   `json:"key"`
	Prompt     string   `json:"prompt"`
	Candidates []string `json:"candidates,omitempty"`
	Quick      string   `json:"quick,omitempty"`
	Options    string   `json:"options,omitempty"`
}

type mappingSummary struct {
	MapSource     string       `json:"map_source"`
	OptionsSource string       `json:"options_source"`
	Prompts       []promptView `json:"prompts"`
}

func mappingView(b *registry.Bundle) mappingSummary {
	out := mappingSummary{
		MapSource:     b.MapSource,
		OptionsSource: b.OptionsSource,
		Prompts:       make([]promptView, 0, len(b.Prompts)),
	}
	for _, p := range b.Prompts {
		out.Prompts = append(out.Prompts, promptView{
			Key:        p.Key,
			Prompt:     p.Text,
			Candidates: p.Candidates,
			Quick:      p.Quick,
			Options:    b.OptionsFor(p),
		})
	}
	return out
}

func formatMapping(b *registry.Bundle) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Map source:     %s\n", b.MapSource)
	fmt.Fprintf(&sb, "Options source: %s\n", b.OptionsSource)
	fmt.Fprintf(&sb, "Prompts:        %d\n", len(b.Prompts))
	fmt.Fprintf(&sb, "Options:        %d\n\n", len(b.Options))

	w := tabwriter.NewWriter(&sb, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tPROMPT\tCANDIDATES\tQUICK\tOPTIONS")
	for _, p := range b.Prompts {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			p.Key,
			truncateText(p.Text, 60),
			len(p.Candidates),
			yesNo(p.Quick != ""),
			yesNo(b.OptionsFor(p) != ""),
		)
	}
	_ = w.Flush()
	return sb.String()
}

// userStoreDir resolves the writable user store, preferring the configured
// directory.
func userStoreDir() (string, error) {
	if cfg.Registry.StoreDir != "" {
		return cfg.Registry.StoreDir, nil
	}
	return registry.DefaultStoreDir()
}

func truncateText(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func init() {
	mappingImportCmd.Flags().StringVar(&mappingImportMap, "map", "", "prompt map file, csv or xlsx (required)")
	mappingImportCmd.Flags().StringVar(&mappingImportOptions, "options", "", "allowed data points file, csv or xlsx")
	_ = mappingImportCmd.MarkFlagRequired("map")

	mappingShowCmd.Flags().BoolVar(&mappingShowJSON, "json", false, "print the resolved bundle as JSON")

	mappingCmd.AddCommand(mappingImportCmd)
	mappingCmd.AddCommand(mappingShowCmd)
	rootCmd.AddCommand(mappingCmd)
}
