package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/iksnae/halumem/internal"
)

func TestJSONExporter_Export(t *testing.T) {
	tests := []struct {
		name       string
		transcript *internal.Transcript
	}{
		{
			name:       "chat transcript",
			transcript: internal.CreateTestChatTranscript("test1"),
		},
		{
			name:       "pipeline transcript",
			transcript: internal.CreateTestPipelineTranscript("test2"),
		},
		{
			name:       "empty transcript",
			transcript: internal.CreateTestTranscriptWithMessages("test3", nil),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			exporter := &JSONExporter{}

			if err := exporter.Export(tt.transcript, &buf); err != nil {
				t.Fatalf("JSONExporter.Export() error = %v", err)
			}

			output := buf.String()
			var decoded internal.Transcript
			if err := json.Unmarshal([]byte(output), &decoded); err != nil {
				t.Fatalf("Output is not valid JSON: %v\nOutput: %s", err, output)
			}
			if decoded.ID != tt.transcript.ID {
				t.Errorf("decoded ID = %q, want %q", decoded.ID, tt.transcript.ID)
			}
			if len(decoded.Messages) != len(tt.transcript.Messages) || len(decoded.Operations) != len(tt.transcript.Operations) {
				t.Errorf("decoded entries differ: %d/%d messages, %d/%d operations",
					len(decoded.Messages), len(tt.transcript.Messages), len(decoded.Operations), len(tt.transcript.Operations))
			}

			// Verify it's pretty-printed (contains indentation)
			if !strings.Contains(output, "\n  ") {
				t.Errorf("Output should be pretty-printed with indentation")
			}
		})
	}
}

func TestJSONExporter_Extension(t *testing.T) {
	exporter := &JSONExporter{}
	if got := exporter.Extension(); got != "json" {
		t.Errorf("JSONExporter.Extension() = %v, want json", got)
	}
}
