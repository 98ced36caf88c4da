package cmd

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/halumem/internal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	showRaw bool
)

var (
	stepIndexStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))

	classificationStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("196")).
				Bold(true)

	memoryFactStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			Italic(true)
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <scenario>",
	Short: "Show the script of a scenario",
	Long:  `Print every step of a scenario without playing it.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		variant, err := internal.ScenarioVariant(key)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		switch variant {
		case internal.VariantChat:
			scenario, err := internal.ChatScenario(key)
			if err != nil {
				return err
			}
			if showRaw {
				return writeYAML(out, scenario)
			}
			showChatScript(out, scenario)
		case internal.VariantPipeline:
			scenario, err := internal.PipelineScenario(key)
			if err != nil {
				return err
			}
			if showRaw {
				return writeYAML(out, scenario)
			}
			showPipelineScript(out, scenario)
		}
		return nil
	},
}

func showChatScript(out io.Writer, s *internal.Scenario[internal.ChatStep]) {
	fmt.Fprintln(out, internal.RenderHeader(s.Title, s.Summary))
	fmt.Fprintln(out)

	for i, step := range s.Steps {
		speaker := "User"
		if step.Role == internal.RoleSystem {
			speaker = "Memory System"
		}
		line := fmt.Sprintf("%s %s: %s", stepIndexStyle.Render(fmt.Sprintf("%2d.", i+1)), speaker, step.Text)
		if step.Classification.IsFailure() {
			line += "  " + classificationStyle.Render(string(step.Classification))
		}
		fmt.Fprintln(out, line)
		if step.Memory != "" {
			fmt.Fprintln(out, "    "+memoryFactStyle.Render("stores: "+step.Memory))
		}
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, internal.RenderExplanation(s.Explanation))
}

func showPipelineScript(out io.Writer, s *internal.Scenario[internal.PipelineStep]) {
	fmt.Fprintln(out, internal.RenderHeader(s.Title, s.Summary))
	fmt.Fprintln(out)

	for i, step := range s.Steps {
		line := fmt.Sprintf("%s %-8s %s -> %s", stepIndexStyle.Render(fmt.Sprintf("%2d.", i+1)), step.Kind, step.Input, step.Output)
		if step.Classification.IsFailure() {
			detail := step.Detail
			if detail == "" {
				detail = step.Classification.Describe()
			}
			line += "  " + classificationStyle.Render(detail)
		}
		fmt.Fprintln(out, line)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, internal.RenderOperationGuide())
	if s.Explanation != "" {
		fmt.Fprintln(out)
		fmt.Fprintln(out, internal.RenderExplanation(s.Explanation))
	}
}

func writeYAML(out io.Writer, v any) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode scenario: %w", err)
	}
	return enc.Close()
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().BoolVar(&showRaw, "raw", false, "Print the scenario as YAML")
}
