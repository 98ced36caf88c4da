package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iksnae/halumem/internal"
	"github.com/spf13/cobra"
)

var (
	playRepeat    int
	playSpeed     float64
	playNoHistory bool
)

// playView adapts one demo's entries to the terminal and to transcripts
type playView[E internal.Entry] struct {
	render     func(internal.Event[E]) string
	summary    func(entries []E) string
	transcript func(entries []E, outcome string) *internal.Transcript
}

type runResult struct {
	transcript *internal.Transcript
	startedAt  time.Time
	finishedAt time.Time
}

var playCmd = &cobra.Command{
	Use:   "play <scenario>",
	Short: "Play a scenario in real time",
	Long: `Play a scenario step by step, printing each message or operation as it
is revealed. Press Ctrl-C to stop; the player is reset and the partial run is
recorded with outcome "reset".`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := args[0]
		if playRepeat < 1 {
			return fmt.Errorf("--repeat must be at least 1, got %d", playRepeat)
		}
		variant, err := internal.ScenarioVariant(key)
		if err != nil {
			return err
		}
		scaled, err := cfg.Scaled(playSpeed)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		out := cmd.OutOrStdout()
		var results []runResult
		switch variant {
		case internal.VariantChat:
			results, err = playChat(ctx, out, key, scaled.PlayerOptions(variant))
		case internal.VariantPipeline:
			results, err = playPipeline(ctx, out, key, scaled.PlayerOptions(variant))
		}
		if err != nil {
			return err
		}

		if !playNoHistory && !cfg.NoHistory {
			recordRuns(cmd.Context(), cmd.ErrOrStderr(), results)
		}
		return nil
	},
}

func playChat(ctx context.Context, out io.Writer, key string, opts internal.PlayerOptions) ([]runResult, error) {
	scenario, err := internal.ChatScenario(key)
	if err != nil {
		return nil, err
	}
	p, err := internal.NewChatPlayer(opts)
	if err != nil {
		return nil, err
	}

	fmt.Fprintln(out, internal.RenderHeader(scenario.Title, scenario.Summary))
	fmt.Fprintln(out)

	return playRuns(ctx, out, p, key, playRepeat, playView[internal.ChatMessage]{
		render: func(ev internal.Event[internal.ChatMessage]) string {
			if ev.Type != internal.EventRevealed {
				return ""
			}
			return internal.RenderChatMessage(ev.Entry) + "\n"
		},
		summary: func(entries []internal.ChatMessage) string {
			return internal.RenderMemoryBank(internal.DeriveMemories(entries)) + "\n\n" +
				internal.RenderExplanation(scenario.Explanation)
		},
		transcript: func(entries []internal.ChatMessage, outcome string) *internal.Transcript {
			return internal.NewChatTranscript(scenario, entries, outcome)
		},
	})
}

func playPipeline(ctx context.Context, out io.Writer, key string, opts internal.PlayerOptions) ([]runResult, error) {
	scenario, err := internal.PipelineScenario(key)
	if err != nil {
		return nil, err
	}
	p, err := internal.NewPipelinePlayer(opts)
	if err != nil {
		return nil, err
	}

	fmt.Fprintln(out, internal.RenderHeader(scenario.Title, scenario.Summary))
	fmt.Fprintln(out)

	return playRuns(ctx, out, p, key, playRepeat, playView[internal.Operation]{
		render: func(ev internal.Event[internal.Operation]) string {
			switch ev.Type {
			case internal.EventRevealed:
				return fmt.Sprintf("[%d/%d] %s: %s", ev.Cursor, ev.Total, ev.Entry.Kind, ev.Entry.Input)
			case internal.EventSettled:
				return internal.RenderOperation(ev.Entry)
			}
			return ""
		},
		summary: func(entries []internal.Operation) string {
			return internal.RenderPipelineBoard(internal.PipelineBoard(scenario.Steps, entries)) + "\n\n" +
				internal.RenderExplanation(scenario.Explanation)
		},
		transcript: func(entries []internal.Operation, outcome string) *internal.Transcript {
			return internal.NewPipelineTranscript(scenario, entries, outcome)
		},
	})
}

// playRuns launches key, then replays it until repeat runs have finished or
// ctx is cancelled. A cancelled run resets the player and ends playback.
func playRuns[S any, E internal.Entry](ctx context.Context, out io.Writer, p *internal.Player[S, E], key string, repeat int, view playView[E]) ([]runResult, error) {
	events := make(chan internal.Event[E], 64)
	unsubscribe := p.Subscribe(func(ev internal.Event[E]) {
		select {
		case events <- ev:
		default:
			internal.LogWarn("Dropped %s event for %s", ev.Type, ev.Scenario)
		}
	})
	defer unsubscribe()

	var results []runResult
	for i := 0; i < repeat; i++ {
		if i > 0 {
			fmt.Fprintf(out, "\n--- replay %d/%d ---\n\n", i+1, repeat)
		}

		startedAt := time.Now()
		var err error
		if i == 0 {
			err = p.Launch(key)
		} else {
			err = p.Replay()
		}
		if err != nil {
			return results, err
		}

		outcome := awaitRun[E](ctx, out, events, view.render)
		state := p.Snapshot()
		entries := state.Entries
		results = append(results, runResult{
			transcript: view.transcript(entries, outcome),
			startedAt:  startedAt,
			finishedAt: time.Now(),
		})

		if outcome == internal.OutcomeReset {
			p.Reset()
			fmt.Fprintln(out)
			internal.PrintWarning(out, fmt.Sprintf("Playback interrupted after %d of %d steps; player reset", state.Cursor, state.Total))
			return results, nil
		}

		fmt.Fprintln(out)
		fmt.Fprintln(out, view.summary(entries))
		drainEvents[E](events)
	}
	return results, nil
}

// awaitRun renders events until the run finishes or ctx is cancelled and
// returns the run outcome
func awaitRun[E internal.Entry](ctx context.Context, out io.Writer, events <-chan internal.Event[E], render func(internal.Event[E]) string) string {
	for {
		select {
		case ev := <-events:
			if ev.Type == internal.EventFinished {
				return internal.OutcomeCompleted
			}
			if line := render(ev); line != "" {
				fmt.Fprintln(out, line)
			}
		case <-ctx.Done():
			return internal.OutcomeReset
		}
	}
}

// drainEvents discards events left over from a finished run
func drainEvents[E internal.Entry](events <-chan internal.Event[E]) {
	for {
		select {
		case <-events:
		default:
			return
		}
	}
}

func recordRuns(ctx context.Context, errOut io.Writer, results []runResult) {
	if len(results) == 0 {
		return
	}

	store, err := internal.OpenHistory(cfg.HistoryPath)
	if err != nil {
		internal.PrintWarning(errOut, fmt.Sprintf("History not recorded: %v", err))
		return
	}
	defer store.Close()

	for _, r := range results {
		rec, err := store.Record(ctx, r.transcript, r.startedAt, r.finishedAt)
		if err != nil {
			internal.PrintWarning(errOut, fmt.Sprintf("History not recorded: %v", err))
			return
		}
		internal.LogDebug("Recorded %s run %s", rec.Outcome, rec.ID)
	}
}

func init() {
	rootCmd.AddCommand(playCmd)
	playCmd.Flags().IntVar(&playRepeat, "repeat", 1, "Number of times to play the scenario")
	playCmd.Flags().Float64Var(&playSpeed, "speed", 1, "Playback speed multiplier")
	playCmd.Flags().BoolVar(&playNoHistory, "no-history", false, "Do not record the run in the history database")
}
