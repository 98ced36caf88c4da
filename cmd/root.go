package cmd

import (
	"fmt"
	"os"

	"github.com/iksnae/halumem/internal"
	"github.com/spf13/cobra"
)

var (
	verbose bool
	cfg     internal.Config
	version string = "dev"
	commit  string = "unknown"
	date    string = "unknown"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "halumem",
	Short: "Replay scripted memory-hallucination scenarios",
	Long: `Replay scripted scenarios that show how an AI memory system fails.

Two demos are available:
  • chat      a conversation where the memory system fabricates, confuses,
              contradicts or ignores facts
  • pipeline  the extract, store, update and retrieve operations behind it,
              succeeding or cascading into failure

Quick Start:
  halumem list                        # List all scenarios
  halumem play fabrication            # Watch a scenario unfold
  halumem export --format md          # Export transcripts as Markdown

Playback timing is read from HALUMEM_CHAT_INTERVAL, HALUMEM_PIPELINE_INTERVAL
and HALUMEM_SETTLE_DELAY.`,
	Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := internal.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if err := loaded.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		cfg = loaded

		if verbose {
			internal.SetVerbose(true)
			return nil
		}
		level, _ := internal.ParseLogLevel(cfg.LogLevel)
		internal.SetLogLevel(level)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	// Set version template to ensure --version flag works
	rootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)
}
