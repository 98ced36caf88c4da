package cmd

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/halumem/internal"
	"github.com/spf13/cobra"
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39"))

	sectionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("62")).
			Bold(true).
			Underline(true)
)

// healthcheckCmd represents the healthcheck command
var healthcheckCmd = &cobra.Command{
	Use:   "healthcheck",
	Short: "Check that scenarios play and history is accessible",
	Long: `Check the health of halumem by verifying:
  • Every registered scenario is well formed
  • Every scenario plays to completion on a virtual clock
  • Playback configuration
  • History database accessibility

Run with --verbose for detailed diagnostic information.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, sectionStyle.Render("halumem Health Check"))
		fmt.Fprintln(out)

		// Step 1: Registry
		fmt.Fprintln(out, infoStyle.Render("Step 1: Validating scenario registry..."))
		if err := internal.ValidateRegistry(); err != nil {
			fmt.Fprintln(out, errorStyle.Render("✗ Registry is invalid:"), err)
			return fmt.Errorf("health check failed: %w", err)
		}
		infos := internal.ListScenarios()
		fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✓ %d scenario(s) registered", len(infos))))
		fmt.Fprintln(out)

		// Step 2: Headless playback
		fmt.Fprintln(out, infoStyle.Render("Step 2: Playing every scenario on a virtual clock..."))
		for _, info := range infos {
			transcript, err := internal.RecordScenario(info.Key, cfg.PlayerOptions(info.Variant))
			if err != nil {
				fmt.Fprintln(out, errorStyle.Render(fmt.Sprintf("✗ %s failed to play:", info.Key)), err)
				return fmt.Errorf("health check failed: %w", err)
			}
			if transcript.Metadata.EntryCount != info.Steps {
				fmt.Fprintln(out, errorStyle.Render(fmt.Sprintf("✗ %s revealed %d of %d steps", info.Key, transcript.Metadata.EntryCount, info.Steps)))
				return fmt.Errorf("health check failed: %s incomplete", info.Key)
			}
			if verbose {
				fmt.Fprintf(out, "   %s: %d entries, %d failure(s)\n", info.Key, transcript.Metadata.EntryCount, transcript.Metadata.FailureCount)
			}
		}
		fmt.Fprintln(out, successStyle.Render("✓ All scenarios play to completion"))
		fmt.Fprintln(out)

		// Step 3: Configuration
		fmt.Fprintln(out, infoStyle.Render("Step 3: Checking configuration..."))
		fmt.Fprintln(out, successStyle.Render("✓ Configuration is valid"))
		if verbose {
			fmt.Fprintf(out, "   Chat interval: %s\n", cfg.ChatInterval)
			fmt.Fprintf(out, "   Pipeline interval: %s\n", cfg.PipelineInterval)
			fmt.Fprintf(out, "   Settle delay: %s\n", cfg.SettleDelay)
			fmt.Fprintf(out, "   History database: %s\n", cfg.HistoryPath)
		}
		fmt.Fprintln(out)

		// Step 4: History
		fmt.Fprintln(out, infoStyle.Render("Step 4: Checking history database..."))
		if err := checkHistory(out); err != nil {
			return fmt.Errorf("health check failed: %w", err)
		}
		fmt.Fprintln(out)

		fmt.Fprintln(out, successStyle.Render("✓ Health check passed!"))
		return nil
	},
}

// checkHistory inspects the history database without creating it
func checkHistory(out io.Writer) error {
	if cfg.NoHistory {
		fmt.Fprintln(out, warningStyle.Render("⚠ History recording is disabled (HALUMEM_NO_HISTORY)"))
		return nil
	}

	if _, err := os.Stat(cfg.HistoryPath); errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintln(out, warningStyle.Render("⚠ History database not created yet"))
		if verbose {
			fmt.Fprintf(out, "   Expected: %s\n", cfg.HistoryPath)
			fmt.Fprintln(out, "   It is created by the first 'halumem play'")
		}
		return nil
	}

	db, err := internal.OpenDatabaseReadOnly(cfg.HistoryPath)
	if err != nil {
		fmt.Fprintln(out, errorStyle.Render("✗ Failed to open history database:"), err)
		return err
	}
	defer db.Close()

	var runs int
	if err := db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&runs); err != nil {
		fmt.Fprintln(out, errorStyle.Render("✗ History database is unreadable:"), err)
		return err
	}
	fmt.Fprintln(out, successStyle.Render(fmt.Sprintf("✓ History database holds %d run(s)", runs)))
	return nil
}

func init() {
	rootCmd.AddCommand(healthcheckCmd)
}
