package internal

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			Padding(0, 1)

	metaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))

	actorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true)

	systemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135")).
			Bold(true)

	contentStyle = lipgloss.NewStyle().
			Padding(0, 2)

	memoryStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true).
			Padding(0, 2)

	badgeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1).
			Width(60)

	explanationStyle = lipgloss.NewStyle().
				Border(lipgloss.NormalBorder(), false, false, false, true).
				BorderForeground(lipgloss.Color("214")).
				Padding(0, 1)
)

var statusColors = map[OperationStatus]lipgloss.Color{
	StatusPending:    lipgloss.Color("240"),
	StatusProcessing: lipgloss.Color("214"),
	StatusSuccess:    lipgloss.Color("42"),
	StatusError:      lipgloss.Color("196"),
}

var memoryColors = map[MemoryStatus]lipgloss.Color{
	MemoryActive:     lipgloss.Color("42"),
	MemoryOutdated:   lipgloss.Color("243"),
	MemoryConflicted: lipgloss.Color("214"),
}

// RenderHeader renders a scenario title with its summary below
func RenderHeader(title, summary string) string {
	out := headerStyle.Render(title)
	if summary != "" {
		out += "\n" + metaStyle.Render(summary)
	}
	return out
}

// RenderChatMessage renders one chat line with its stored memory and
// failure badge
func RenderChatMessage(m ChatMessage) string {
	var b strings.Builder

	label := actorStyle.Render("User")
	if m.Speaker == RoleSystem {
		label = systemStyle.Render("Memory System")
	}
	b.WriteString(label)
	b.WriteString(metaStyle.Render(fmt.Sprintf("  +%s", m.Offset)))
	if m.Classification.IsFailure() {
		b.WriteString("  ")
		b.WriteString(badgeStyle.Render(strings.ToUpper(string(m.Classification))))
	}
	b.WriteString("\n")
	b.WriteString(contentStyle.Render(m.Text))

	if m.MemoryFact != "" {
		b.WriteString("\n")
		b.WriteString(memoryStyle.Render("Stored: " + m.MemoryFact))
	}
	return b.String()
}

// RenderOperation renders a pipeline card
func RenderOperation(op Operation) string {
	status := lipgloss.NewStyle().
		Foreground(statusColors[op.Status]).
		Bold(true).
		Render(strings.ToUpper(string(op.Status)))

	lines := []string{fmt.Sprintf("%s  %s", strings.ToUpper(string(op.Kind)), status)}
	if op.Input != "" {
		lines = append(lines, "in:  "+op.Input)
	}
	if op.Output != "" {
		lines = append(lines, "out: "+op.Output)
	}
	if op.ErrorDetail != "" {
		lines = append(lines, badgeStyle.Render(op.ErrorDetail))
	}

	return cardStyle.
		BorderForeground(statusColors[op.Status]).
		Render(strings.Join(lines, "\n"))
}

// RenderMemoryBank renders the derived memory bank
func RenderMemoryBank(memories []MemoryEntry) string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("Memory Bank"))
	b.WriteString("\n")

	if len(memories) == 0 {
		b.WriteString(metaStyle.Render("  (empty)"))
		return b.String()
	}

	for _, m := range memories {
		mark := "✓"
		if !m.Correct {
			mark = "✗"
		}
		status := lipgloss.NewStyle().Foreground(memoryColors[m.Status]).Render(string(m.Status))
		fmt.Fprintf(&b, "  %s %s [%s]\n", mark, m.Fact, status)
	}
	return strings.TrimRight(b.String(), "\n")
}

// RenderPipelineBoard renders every card of a pipeline board with a tally
func RenderPipelineBoard(board []Operation) string {
	cards := make([]string, 0, len(board)+1)
	cards = append(cards, headerStyle.Render("Pipeline"))
	for _, op := range board {
		cards = append(cards, RenderOperation(op))
	}
	cards = append(cards, metaStyle.Render(fmt.Sprintf("%d succeeded, %d failed, %d pending",
		CountStatus(board, StatusSuccess), CountStatus(board, StatusError), CountStatus(board, StatusPending))))
	return lipgloss.JoinVertical(lipgloss.Left, cards...)
}

// RenderExplanation renders the closing "What happened?" panel
func RenderExplanation(text string) string {
	if text == "" {
		return ""
	}
	return explanationStyle.Render(headerStyle.Render("What happened?") + "\n" + text)
}

// RenderOperationGuide describes each memory operation kind
func RenderOperationGuide() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render("How Memory Operations Work"))
	for _, k := range []StepKind{StepExtract, StepStore, StepUpdate, StepRetrieve} {
		fmt.Fprintf(&b, "\n  %-9s %s", strings.ToUpper(string(k)), k.Describe())
	}
	return b.String()
}
