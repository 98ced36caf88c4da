package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/iksnae/halumem/internal"
	"github.com/iksnae/halumem/internal/export"
	"github.com/spf13/cobra"
)

var (
	format    string
	outputDir string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export [scenario...]",
	Short: "Export scenario transcripts to file",
	Long: `Play scenarios to completion on a virtual clock and export their
transcripts in one of several formats (jsonl, md, yaml, json).

No real time passes, so exports are instant and identical across runs.
With no arguments every registered scenario is exported.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		keys := args
		if len(keys) == 0 {
			for _, info := range internal.ListScenarios() {
				keys = append(keys, info.Key)
			}
		}

		// Resolve every key up front so a typo fails before any file is written
		variants := make(map[string]internal.Variant, len(keys))
		for _, key := range keys {
			v, err := internal.ScenarioVariant(key)
			if err != nil {
				return fmt.Errorf("%w (use 'halumem list' to see available scenarios)", err)
			}
			variants[key] = v
		}

		exporter, err := export.NewExporter(format)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(outputDir, 0755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}

		steps := make([]internal.ProgressStep, 0, len(keys))
		for _, key := range keys {
			key := key
			steps = append(steps, internal.ProgressStep{
				Message: fmt.Sprintf("Exporting %s", key),
				Fn: func() error {
					return exportScenario(exporter, key, cfg.PlayerOptions(variants[key]))
				},
			})
		}

		if err := internal.ShowProgressWithSteps(cmd.Context(), steps); err != nil {
			return err
		}

		internal.PrintSuccess(cmd.OutOrStdout(), fmt.Sprintf("Export complete: %d scenario(s) exported to %s", len(keys), outputDir))
		return nil
	},
}

func exportScenario(exporter export.Exporter, key string, opts internal.PlayerOptions) error {
	transcript, err := internal.RecordScenario(key, opts)
	if err != nil {
		return err
	}
	transcript.ID = key

	path := filepath.Join(outputDir, fmt.Sprintf("%s.%s", key, exporter.Extension()))
	file, err := os.Create(path)
	if err != nil {
		return &internal.ExportError{Format: exporter.Extension(), Path: path, Err: err}
	}

	if err := exporter.Export(transcript, file); err != nil {
		_ = file.Close()
		return &internal.ExportError{Format: exporter.Extension(), Path: path, Err: err}
	}

	if err := file.Close(); err != nil {
		return &internal.ExportError{Format: exporter.Extension(), Path: path, Err: err}
	}
	internal.LogDebug("Wrote %s", path)
	return nil
}

func init() {
	rootCmd.AddCommand(exportCmd)
	exportCmd.Flags().StringVarP(&format, "format", "f", "jsonl", "Export format (jsonl, md, yaml, json)")
	exportCmd.Flags().StringVarP(&outputDir, "out", "o", "./exports", "Output directory")
}
