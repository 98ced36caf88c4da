package cmd

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
)

// setupTestEnv points configuration at a temporary home with fast playback
// and returns the history database path
func setupTestEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "history.db")
	t.Setenv("HOME", dir)
	t.Setenv("HALUMEM_HISTORY_DB", dbPath)
	t.Setenv("HALUMEM_CHAT_INTERVAL", "5ms")
	t.Setenv("HALUMEM_PIPELINE_INTERVAL", "30ms")
	t.Setenv("HALUMEM_SETTLE_DELAY", "2ms")
	t.Setenv("HALUMEM_NO_HISTORY", "")
	t.Setenv("HALUMEM_LOG_LEVEL", "error")
	return dbPath
}

// resetFlags restores every flag to its default so tests sharing rootCmd do
// not leak state
func resetFlags() {
	verbose = false
	listVariant = ""
	showRaw = false
	playRepeat = 1
	playSpeed = 1
	playNoHistory = false
	format = "jsonl"
	outputDir = "./exports"
	historyLimit = 20
	historyRunID = ""
	historyFormat = "md"

	var reset func(c *cobra.Command)
	reset = func(c *cobra.Command) {
		for _, name := range []string{"help", "version"} {
			if f := c.Flags().Lookup(name); f != nil {
				_ = f.Value.Set("false")
				f.Changed = false
			}
		}
		for _, sub := range c.Commands() {
			reset(sub)
		}
	}
	reset(rootCmd)
}

// executeCommand runs the root command with args and returns its combined
// output
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	return out.String(), err
}
