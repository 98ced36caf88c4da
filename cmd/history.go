package cmd

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/iksnae/halumem/internal"
	"github.com/iksnae/halumem/internal/export"
	"github.com/spf13/cobra"
)

var (
	historyLimit  int
	historyRunID  string
	historyFormat string
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded playback runs",
	Long: `List runs recorded by 'halumem play', newest first.

Use --id to print the transcript of one run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := internal.OpenHistory(cfg.HistoryPath)
		if err != nil {
			return err
		}
		defer store.Close()

		out := cmd.OutOrStdout()
		if historyRunID != "" {
			rec, err := store.Get(cmd.Context(), historyRunID)
			if errors.Is(err, internal.ErrRunNotFound) {
				return fmt.Errorf("%w (use 'halumem history' to see recorded runs)", err)
			}
			if err != nil {
				return err
			}
			transcript, err := rec.DecodeTranscript()
			if err != nil {
				return err
			}
			exporter, err := export.NewExporter(historyFormat)
			if err != nil {
				return err
			}
			return exporter.Export(transcript, out)
		}

		runs, err := store.List(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		displayRuns(out, runs)
		return nil
	},
}

func displayRuns(out io.Writer, runs []internal.RunRecord) {
	if len(runs) == 0 {
		fmt.Fprintln(out, headerStyle.Render("No recorded runs"))
		return
	}

	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("Found %d run(s)", len(runs))))
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	_, _ = fmt.Fprintln(w, titleStyle.Render("ID")+"\t"+titleStyle.Render("Scenario")+"\t"+titleStyle.Render("Outcome")+"\t"+titleStyle.Render("Started")+"\t"+titleStyle.Render("Duration")+"\t"+titleStyle.Render("Entries")+"\t"+titleStyle.Render("Failures")+"\t")
	_, _ = fmt.Fprintln(w, strings.Repeat("─", 90))

	for _, r := range runs {
		// Show short ID (first 8 chars) for readability
		shortID := r.ID
		if len(shortID) > 8 {
			shortID = shortID[:8]
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t\n",
			idStyle.Render(shortID),
			r.Scenario,
			r.Outcome,
			dateStyle.Render(formatStarted(r.StartedAt, time.Now())),
			r.Duration().Round(100*time.Millisecond),
			countStyle.Render(strconv.Itoa(r.Entries)),
			failureCountStyle.Render(strconv.Itoa(r.Failures)))
	}
	_ = w.Flush()
}

func formatStarted(t, now time.Time) string {
	diff := now.Sub(t)
	switch {
	case diff < 24*time.Hour:
		return t.Format("Today 15:04")
	case diff < 7*24*time.Hour:
		return t.Format("Mon 15:04")
	case diff < 365*24*time.Hour:
		return t.Format("Jan 02 15:04")
	default:
		return t.Format("2006-01-02")
	}
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of runs to list (0 for all)")
	historyCmd.Flags().StringVar(&historyRunID, "id", "", "Print the transcript of one run")
	historyCmd.Flags().StringVarP(&historyFormat, "format", "f", "md", "Transcript format for --id (jsonl, md, yaml, json)")
}
