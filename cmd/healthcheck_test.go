package cmd

import (
	"strings"
	"testing"
)

func TestHealthcheckCommand(t *testing.T) {
	tests := []struct {
		name     string
		setup    func(t *testing.T)
		args     []string
		contains []string
	}{
		{
			name:  "fresh install",
			setup: func(t *testing.T) { setupTestEnv(t) },
			args:  []string{"healthcheck"},
			contains: []string{
				"✓ 6 scenario(s) registered",
				"✓ All scenarios play to completion",
				"History database not created yet",
				"Health check passed",
			},
		},
		{
			name: "history recorded",
			setup: func(t *testing.T) {
				setupTestEnv(t)
				if _, err := executeCommand(t, "play", "omission"); err != nil {
					t.Fatal(err)
				}
			},
			args:     []string{"healthcheck"},
			contains: []string{"History database holds 1 run(s)", "Health check passed"},
		},
		{
			name: "history disabled",
			setup: func(t *testing.T) {
				setupTestEnv(t)
				t.Setenv("HALUMEM_NO_HISTORY", "1")
			},
			args:     []string{"healthcheck"},
			contains: []string{"History recording is disabled"},
		},
		{
			name:     "verbose details",
			setup:    func(t *testing.T) { setupTestEnv(t) },
			args:     []string{"healthcheck", "--verbose"},
			contains: []string{"fabrication: 4 entries, 2 failure(s)", "Chat interval: 5ms", "Settle delay: 2ms"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup(t)

			out, err := executeCommand(t, tt.args...)
			if err != nil {
				t.Fatalf("healthcheck error = %v\n%s", err, out)
			}
			for _, want := range tt.contains {
				if !strings.Contains(out, want) {
					t.Errorf("output missing %q:\n%s", want, out)
				}
			}
		})
	}
}

func TestHealthcheckCommand_Help(t *testing.T) {
	setupTestEnv(t)

	out, err := executeCommand(t, "healthcheck", "--help")
	if err != nil {
		t.Fatalf("healthcheck --help failed: %v", err)
	}
	if !strings.Contains(out, "History database accessibility") {
		t.Errorf("unexpected help output:\n%s", out)
	}
}
