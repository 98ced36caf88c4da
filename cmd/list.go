package cmd

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/halumem/internal"
	"github.com/spf13/cobra"
)

var (
	listVariant string
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	failureCountStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("196")).
				Bold(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List available scenarios",
	Long:  `List every registered chat and pipeline scenario with its step and failure counts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		infos := internal.ListScenarios()
		if listVariant != "" {
			v := internal.Variant(listVariant)
			if v != internal.VariantChat && v != internal.VariantPipeline {
				return fmt.Errorf("unknown variant: %s (supported: chat, pipeline)", listVariant)
			}
			filtered := infos[:0:0]
			for _, info := range infos {
				if info.Variant == v {
					filtered = append(filtered, info)
				}
			}
			infos = filtered
		}

		displayScenarios(cmd.OutOrStdout(), infos)
		return nil
	},
}

func displayScenarios(out io.Writer, infos []internal.ScenarioInfo) {
	if len(infos) == 0 {
		fmt.Fprintln(out, headerStyle.Render("No scenarios found"))
		return
	}

	fmt.Fprintln(out, headerStyle.Render(fmt.Sprintf("Found %d scenario(s)", len(infos))))
	fmt.Fprintln(out)

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)

	_, _ = fmt.Fprintln(w, titleStyle.Render("Key")+"\t"+titleStyle.Render("Demo")+"\t"+titleStyle.Render("Title")+"\t"+titleStyle.Render("Steps")+"\t"+titleStyle.Render("Failures")+"\t")
	_, _ = fmt.Fprintln(w, strings.Repeat("─", 72))

	for _, info := range infos {
		title := info.Title
		if len(title) > 40 {
			title = title[:37] + "..."
		}

		failures := countStyle.Render("0")
		if info.Failures > 0 {
			failures = failureCountStyle.Render(strconv.Itoa(info.Failures))
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t\n",
			idStyle.Render(info.Key),
			dateStyle.Render(string(info.Variant)),
			title,
			countStyle.Render(strconv.Itoa(info.Steps)),
			failures)
	}

	_ = w.Flush()
	fmt.Fprintln(out)
	fmt.Fprintln(out, idStyle.Render("Tip: run ")+
		lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Render("halumem play "+infos[0].Key)+
		idStyle.Render(" to watch a scenario"))
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringVar(&listVariant, "variant", "", "Only list scenarios of one demo (chat, pipeline)")
}
