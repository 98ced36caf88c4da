package export

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/iksnae/halumem/internal"
)

// JSONLExporter exports transcripts in JSONL format (one entry per line)
type JSONLExporter struct{}

// Export writes one line per revealed message or operation, then one line
// per derived memory
func (e *JSONLExporter) Export(t *internal.Transcript, w io.Writer) error {
	enc := json.NewEncoder(w)

	for _, msg := range t.Messages {
		obj := map[string]interface{}{
			"type":      "message",
			"scenario":  t.Scenario,
			"id":        msg.ID,
			"speaker":   msg.Speaker,
			"text":      msg.Text,
			"offset_ms": msg.Offset.Milliseconds(),
		}
		if msg.MemoryFact != "" {
			obj["memory_fact"] = msg.MemoryFact
		}
		if msg.Classification.IsFailure() {
			obj["classification"] = msg.Classification
		}
		if err := enc.Encode(obj); err != nil {
			return fmt.Errorf("failed to encode message: %w", err)
		}
	}

	for _, op := range t.Operations {
		obj := map[string]interface{}{
			"type":      "operation",
			"scenario":  t.Scenario,
			"id":        op.ID,
			"kind":      op.Kind,
			"status":    op.Status,
			"offset_ms": op.Offset.Milliseconds(),
		}
		if op.Input != "" {
			obj["input"] = op.Input
		}
		if op.Output != "" {
			obj["output"] = op.Output
		}
		if op.ErrorDetail != "" {
			obj["error_detail"] = op.ErrorDetail
		}
		if err := enc.Encode(obj); err != nil {
			return fmt.Errorf("failed to encode operation: %w", err)
		}
	}

	for _, m := range t.Memories {
		obj := map[string]interface{}{
			"type":     "memory",
			"scenario": t.Scenario,
			"id":       m.ID,
			"fact":     m.Fact,
			"correct":  m.Correct,
			"status":   m.Status,
		}
		if err := enc.Encode(obj); err != nil {
			return fmt.Errorf("failed to encode memory: %w", err)
		}
	}

	return nil
}

// Extension returns the file extension for this format
func (e *JSONLExporter) Extension() string {
	return "jsonl"
}
