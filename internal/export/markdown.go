package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/iksnae/halumem/internal"
)

// MarkdownExporter exports transcripts in Markdown format
type MarkdownExporter struct{}

// Export exports a transcript to Markdown format
func (e *MarkdownExporter) Export(t *internal.Transcript, w io.Writer) error {
	// Header
	_, _ = fmt.Fprintf(w, "# %s\n\n", t.Title)

	if t.Metadata.Summary != "" {
		_, _ = fmt.Fprintf(w, "%s\n\n", escapeMarkdown(t.Metadata.Summary))
	}
	_, _ = fmt.Fprintf(w, "**Scenario:** %s  \n", t.Scenario)
	_, _ = fmt.Fprintf(w, "**Variant:** %s  \n", t.Variant)
	_, _ = fmt.Fprintf(w, "**Outcome:** %s  \n", t.Metadata.Outcome)
	_, _ = fmt.Fprintf(w, "**Entries:** %d  \n", t.Metadata.EntryCount)
	_, _ = fmt.Fprintf(w, "**Failures:** %d\n\n", t.Metadata.FailureCount)
	_, _ = fmt.Fprintf(w, "---\n\n")

	switch t.Variant {
	case internal.VariantChat:
		writeMessages(w, t)
	case internal.VariantPipeline:
		writeOperations(w, t)
	}

	if t.Metadata.Explanation != "" {
		_, _ = fmt.Fprintf(w, "## What happened?\n\n%s\n", escapeMarkdown(t.Metadata.Explanation))
	}

	return nil
}

func writeMessages(w io.Writer, t *internal.Transcript) {
	_, _ = fmt.Fprintf(w, "## Conversation\n\n")
	for i, msg := range t.Messages {
		speaker := "User"
		if msg.Speaker == internal.RoleSystem {
			speaker = "Memory System"
		}
		badge := ""
		if msg.Classification.IsFailure() {
			badge = fmt.Sprintf(" `%s`", msg.Classification)
		}

		_, _ = fmt.Fprintf(w, "**%s:** (+%s)%s\n\n%s\n\n", speaker, msg.Offset, badge, escapeMarkdown(msg.Text))
		if msg.MemoryFact != "" {
			_, _ = fmt.Fprintf(w, "> Stored: %s\n\n", escapeMarkdown(msg.MemoryFact))
		}

		if i < len(t.Messages)-1 {
			_, _ = fmt.Fprintf(w, "---\n\n")
		}
	}

	_, _ = fmt.Fprintf(w, "## Memory Bank\n\n")
	if len(t.Memories) == 0 {
		_, _ = fmt.Fprintf(w, "_No memories stored._\n\n")
		return
	}
	for _, m := range t.Memories {
		mark := "x"
		if !m.Correct {
			mark = " "
		}
		_, _ = fmt.Fprintf(w, "- [%s] %s (%s)\n", mark, escapeMarkdown(m.Fact), m.Status)
	}
	_, _ = fmt.Fprintln(w)
}

func writeOperations(w io.Writer, t *internal.Transcript) {
	_, _ = fmt.Fprintf(w, "## Operations\n\n")
	_, _ = fmt.Fprintf(w, "| # | Kind | Status | Input | Output | Detail |\n")
	_, _ = fmt.Fprintf(w, "|---|------|--------|-------|--------|--------|\n")
	for i, op := range t.Operations {
		_, _ = fmt.Fprintf(w, "| %d | %s | %s | %s | %s | %s |\n",
			i+1, op.Kind, op.Status, escapeCell(op.Input), escapeCell(op.Output), escapeCell(op.ErrorDetail))
	}
	_, _ = fmt.Fprintln(w)
}

// escapeMarkdown escapes markdown special characters
func escapeMarkdown(text string) string {
	// Basic escaping - preserve code blocks
	lines := strings.Split(text, "\n")
	var result []string
	inCodeBlock := false

	for _, line := range lines {
		if strings.HasPrefix(line, "```") {
			inCodeBlock = !inCodeBlock
			result = append(result, line)
		} else if inCodeBlock {
			result = append(result, line)
		} else {
			line = strings.ReplaceAll(line, "**", "\\*\\*")
			line = strings.ReplaceAll(line, "__", "\\_\\_")
			result = append(result, line)
		}
	}

	return strings.Join(result, "\n")
}

// escapeCell keeps a value on one table row
func escapeCell(text string) string {
	text = strings.ReplaceAll(text, "|", "\\|")
	return strings.ReplaceAll(text, "\n", " ")
}

// Extension returns the file extension for this format
func (e *MarkdownExporter) Extension() string {
	return "md"
}
