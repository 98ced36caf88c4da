package internal

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"
)

const (
	testChatInterval     = 2 * time.Second
	testPipelineInterval = 2500 * time.Millisecond
	testSettleDelay      = time.Second
)

func newTestChatPlayer(t *testing.T, clock Clock) *ChatPlayer {
	t.Helper()
	p, err := NewChatPlayer(PlayerOptions{Interval: testChatInterval, Clock: clock})
	if err != nil {
		t.Fatalf("NewChatPlayer() error = %v", err)
	}
	return p
}

func newTestPipelinePlayer(t *testing.T, clock Clock) *PipelinePlayer {
	t.Helper()
	p, err := NewPipelinePlayer(PlayerOptions{Interval: testPipelineInterval, SettleDelay: testSettleDelay, Clock: clock})
	if err != nil {
		t.Fatalf("NewPipelinePlayer() error = %v", err)
	}
	return p
}

// drain fires every pending timer until the clock is idle
func drain(clock *ManualClock) {
	for clock.Step() {
	}
}

func TestNewPlayer_Validation(t *testing.T) {
	tests := []struct {
		name    string
		catalog Catalog[PipelineStep]
		script  Script[PipelineStep, Operation]
		opts    PlayerOptions
	}{
		{
			name:   "nil catalog",
			script: PipelineScript,
			opts:   PlayerOptions{Interval: time.Second, SettleDelay: time.Second},
		},
		{
			name:    "nil reveal",
			catalog: PipelineScenario,
			opts:    PlayerOptions{Interval: time.Second},
		},
		{
			name:    "zero interval",
			catalog: PipelineScenario,
			script:  PipelineScript,
			opts:    PlayerOptions{SettleDelay: time.Second},
		},
		{
			name:    "settle without delay",
			catalog: PipelineScenario,
			script:  PipelineScript,
			opts:    PlayerOptions{Interval: time.Second},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewPlayer(tt.catalog, tt.script, tt.opts); err == nil {
				t.Error("NewPlayer() should reject the options")
			}
		})
	}
}

func TestPlayer_FullPlaybackMatchesScript(t *testing.T) {
	for _, info := range ListScenarios() {
		t.Run(info.Key, func(t *testing.T) {
			clock := NewManualClock(testEpoch)

			switch info.Variant {
			case VariantChat:
				p := newTestChatPlayer(t, clock)
				if err := p.Launch(info.Key); err != nil {
					t.Fatalf("Launch() error = %v", err)
				}
				drain(clock)

				scenario, _ := ChatScenario(info.Key)
				state := p.Snapshot()
				if len(state.Entries) != len(scenario.Steps) {
					t.Fatalf("got %d entries, want %d", len(state.Entries), len(scenario.Steps))
				}
				for i, msg := range state.Entries {
					if msg.Text != scenario.Steps[i].Text || msg.Speaker != scenario.Steps[i].Role {
						t.Errorf("entry %d = %+v, want step %+v", i, msg, scenario.Steps[i])
					}
				}
				if state.Running || state.Phase != PhaseFinished {
					t.Errorf("state after playback = %s running=%v, want finished", state.Phase, state.Running)
				}

			case VariantPipeline:
				p := newTestPipelinePlayer(t, clock)
				if err := p.Launch(info.Key); err != nil {
					t.Fatalf("Launch() error = %v", err)
				}
				drain(clock)

				scenario, _ := PipelineScenario(info.Key)
				state := p.Snapshot()
				if len(state.Entries) != len(scenario.Steps) {
					t.Fatalf("got %d entries, want %d", len(state.Entries), len(scenario.Steps))
				}
				for i, op := range state.Entries {
					if op.Kind != scenario.Steps[i].Kind || op.Input != scenario.Steps[i].Input {
						t.Errorf("entry %d = %+v, want step %+v", i, op, scenario.Steps[i])
					}
					if op.Status == StatusProcessing || op.Status == StatusPending {
						t.Errorf("entry %d left in status %q", i, op.Status)
					}
				}
				if state.Phase != PhaseFinished {
					t.Errorf("Phase = %s, want finished", state.Phase)
				}
			}
		})
	}
}

func TestPlayer_TickTiming(t *testing.T) {
	clock := NewManualClock(testEpoch)
	p := newTestChatPlayer(t, clock)

	if err := p.Launch("fabrication"); err != nil {
		t.Fatal(err)
	}
	if got := p.Snapshot(); got.Cursor != 0 || len(got.Entries) != 0 || !got.Running {
		t.Fatalf("state right after launch = %+v, want running with no entries", got)
	}

	clock.Advance(testChatInterval - time.Millisecond)
	if n := len(p.Snapshot().Entries); n != 0 {
		t.Fatalf("entries before first interval = %d, want 0", n)
	}

	clock.Advance(time.Millisecond)
	if n := len(p.Snapshot().Entries); n != 1 {
		t.Fatalf("entries after first interval = %d, want 1", n)
	}

	clock.Advance(3 * testChatInterval)
	state := p.Snapshot()
	if len(state.Entries) != 4 || !state.Running {
		t.Fatalf("after last reveal: entries=%d running=%v, want 4 and still running", len(state.Entries), state.Running)
	}

	// the terminal tick comes one interval after the last reveal
	clock.Advance(testChatInterval)
	if p.Running() {
		t.Error("player should stop one interval after the last reveal")
	}
	if clock.Pending() != 0 {
		t.Errorf("finished player left %d timers scheduled", clock.Pending())
	}

	for i, msg := range state.Entries {
		wantOffset := time.Duration(i+1) * testChatInterval
		if msg.Offset != wantOffset {
			t.Errorf("entry %d offset = %s, want %s", i, msg.Offset, wantOffset)
		}
	}
}

func TestPlayer_ResetIsIdempotent(t *testing.T) {
	clock := NewManualClock(testEpoch)
	p := newTestChatPlayer(t, clock)

	if err := p.Launch("conflict"); err != nil {
		t.Fatal(err)
	}
	clock.Advance(2 * testChatInterval)

	p.Reset()
	once := p.Snapshot()
	p.Reset()
	twice := p.Snapshot()

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("second Reset changed state: %+v vs %+v", once, twice)
	}
	if once.Phase != PhaseIdle || once.Scenario != "" || len(once.Entries) != 0 || once.Running {
		t.Errorf("state after reset = %+v, want idle and empty", once)
	}
}

func TestPlayer_ResetWithoutSession(t *testing.T) {
	p := newTestChatPlayer(t, NewManualClock(testEpoch))
	p.Reset()
	if p.Phase() != PhaseIdle {
		t.Errorf("Phase() = %s, want idle", p.Phase())
	}
}

func TestPlayer_ResetBeforeFirstTick(t *testing.T) {
	clock := NewManualClock(testEpoch)
	p := newTestChatPlayer(t, clock)

	if err := p.Launch("fabrication"); err != nil {
		t.Fatal(err)
	}
	p.Reset()

	clock.Advance(time.Minute)

	if n := len(p.Snapshot().Entries); n != 0 {
		t.Errorf("entries after reset = %d, want 0", n)
	}
	if clock.Pending() != 0 {
		t.Errorf("reset left %d timers scheduled", clock.Pending())
	}
}

func TestPlayer_LaunchWhileRunningIsIgnored(t *testing.T) {
	clock := NewManualClock(testEpoch)
	p := newTestChatPlayer(t, clock)

	if err := p.Launch("fabrication"); err != nil {
		t.Fatal(err)
	}
	clock.Advance(2 * testChatInterval)
	before := p.Snapshot()

	if err := p.Launch("omission"); err != nil {
		t.Errorf("Launch() while running error = %v, want nil", err)
	}
	after := p.Snapshot()

	if !reflect.DeepEqual(before, after) {
		t.Errorf("Launch() while running changed state:\nbefore %+v\nafter  %+v", before, after)
	}

	drain(clock)
	if got := p.Snapshot(); got.Scenario != "fabrication" || len(got.Entries) != 4 {
		t.Errorf("ignored launch disturbed playback: %+v", got)
	}
}

func TestPlayer_LaunchUnknownScenario(t *testing.T) {
	clock := NewManualClock(testEpoch)
	p := newTestChatPlayer(t, clock)

	if err := p.Launch("error"); err != nil {
		t.Fatal(err)
	}
	clock.Advance(testChatInterval)
	before := p.Snapshot()

	err := p.Launch("success")
	if !errors.Is(err, ErrUnknownScenario) {
		t.Fatalf("Launch(success) on chat player error = %v, want ErrUnknownScenario", err)
	}
	if after := p.Snapshot(); !reflect.DeepEqual(before, after) {
		t.Error("failed launch should not change state")
	}
}

func TestPlayer_ResetBetweenRevealAndSettle(t *testing.T) {
	clock := NewManualClock(testEpoch)
	p := newTestPipelinePlayer(t, clock)

	if err := p.Launch("failure"); err != nil {
		t.Fatal(err)
	}
	clock.Advance(testPipelineInterval)

	state := p.Snapshot()
	if len(state.Entries) != 1 || state.Entries[0].Status != StatusProcessing {
		t.Fatalf("after first reveal = %+v, want one processing entry", state.Entries)
	}

	p.Reset()
	clock.Advance(testSettleDelay * 10)

	if n := len(p.Snapshot().Entries); n != 0 {
		t.Errorf("entries after reset = %d, want 0", n)
	}
	if clock.Pending() != 0 {
		t.Errorf("reset left %d timers scheduled", clock.Pending())
	}
}

func TestPlayer_RelaunchCancelsPendingSettle(t *testing.T) {
	clock := NewManualClock(testEpoch)
	p, err := NewPipelinePlayer(PlayerOptions{Interval: time.Second, SettleDelay: 3 * time.Second, Clock: clock})
	if err != nil {
		t.Fatal(err)
	}

	if err := p.Launch("failure"); err != nil {
		t.Fatal(err)
	}
	// 4 reveals at 1-4s; the settles of steps 3 and 4 are still due
	clock.Advance(5 * time.Second)
	p.Reset()
	if err := p.Launch("success"); err != nil {
		t.Fatal(err)
	}
	clock.Advance(time.Second)

	state := p.Snapshot()
	if len(state.Entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(state.Entries))
	}
	if state.Entries[0].Status != StatusProcessing || state.Entries[0].ErrorDetail != "" {
		t.Errorf("stale settle leaked into new session: %+v", state.Entries[0])
	}

	drain(clock)
	if ops := p.Snapshot().Entries; CountStatus(ops, StatusSuccess) != 4 {
		t.Errorf("new session = %+v, want 4 successful operations", ops)
	}
}

func TestPlayer_FinishWaitsForSettles(t *testing.T) {
	clock := NewManualClock(testEpoch)
	p, err := NewPipelinePlayer(PlayerOptions{Interval: time.Second, SettleDelay: 3 * time.Second, Clock: clock})
	if err != nil {
		t.Fatal(err)
	}

	var got []EventType
	defer p.Subscribe(func(ev Event[Operation]) {
		got = append(got, ev.Type)
	})()

	if err := p.Launch("success"); err != nil {
		t.Fatal(err)
	}
	// terminal tick at 5s; the last settle is due at 7s
	clock.Advance(5 * time.Second)
	state := p.Snapshot()
	if !state.Running || state.Phase != PhaseRunning {
		t.Fatalf("player finished with settles outstanding: %+v", state)
	}
	if n := CountStatus(state.Entries, StatusProcessing); n != 2 {
		t.Errorf("processing entries at 5s = %d, want 2", n)
	}

	clock.Advance(2 * time.Second)
	state = p.Snapshot()
	if state.Running || state.Phase != PhaseFinished {
		t.Fatalf("player should finish with its last settle: %+v", state)
	}
	if n := CountStatus(state.Entries, StatusSuccess); n != 4 {
		t.Errorf("successful entries = %d, want 4", n)
	}
	if clock.Pending() != 0 {
		t.Errorf("finished player left %d timers scheduled", clock.Pending())
	}
	if len(got) < 2 || got[len(got)-2] != EventSettled || got[len(got)-1] != EventFinished {
		t.Errorf("events = %v, want the last settle followed by finished", got)
	}
}

func TestPlayer_RealClockOffsetsAreNominal(t *testing.T) {
	p, err := NewChatPlayer(PlayerOptions{Interval: 3 * time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}

	var runs [][]ChatMessage
	for i := 0; i < 2; i++ {
		if i == 0 {
			err = p.Launch("conflict")
		} else {
			err = p.Replay()
		}
		if err != nil {
			t.Fatal(err)
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = p.Wait(ctx)
		cancel()
		if err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
		runs = append(runs, p.Snapshot().Entries)
	}

	if !reflect.DeepEqual(runs[0], runs[1]) {
		t.Errorf("replays differ:\n%+v\n%+v", runs[0], runs[1])
	}
	for i, msg := range runs[0] {
		if want := time.Duration(i+1) * 3 * time.Millisecond; msg.Offset != want {
			t.Errorf("entry %d offset = %s, want %s", i, msg.Offset, want)
		}
	}
}

func TestPlayer_SettleTargetsOwnEntry(t *testing.T) {
	clock := NewManualClock(testEpoch)
	// settle slower than the interval so later steps reveal first
	p, err := NewPipelinePlayer(PlayerOptions{Interval: time.Second, SettleDelay: 1500 * time.Millisecond, Clock: clock})
	if err != nil {
		t.Fatal(err)
	}

	if err := p.Launch("failure"); err != nil {
		t.Fatal(err)
	}
	clock.Advance(2500 * time.Millisecond)

	state := p.Snapshot()
	if len(state.Entries) != 2 {
		t.Fatalf("entries = %d, want 2", len(state.Entries))
	}
	first, second := state.Entries[0], state.Entries[1]
	if first.Status != StatusError || first.ErrorDetail != "Fabrication: Inverted preference" {
		t.Errorf("first entry = %+v, want settled with its own detail", first)
	}
	if second.Status != StatusProcessing || second.Output != "" {
		t.Errorf("second entry = %+v, want still processing", second)
	}

	drain(clock)
	for i, op := range p.Snapshot().Entries {
		if op.Status != StatusError {
			t.Errorf("entry %d status = %q, want error", i, op.Status)
		}
	}
}

func TestPlayer_FabricationScenario(t *testing.T) {
	clock := NewManualClock(testEpoch)
	p := newTestChatPlayer(t, clock)

	if err := p.Launch("fabrication"); err != nil {
		t.Fatal(err)
	}
	drain(clock)

	messages := p.Snapshot().Entries
	if len(messages) != 4 {
		t.Fatalf("messages = %d, want 4", len(messages))
	}
	if n := CountClassified(messages, ClassificationFabrication); n != 2 {
		t.Errorf("fabrication messages = %d, want 2", n)
	}

	memories := DeriveMemories(messages)
	incorrect := 0
	for _, m := range memories {
		if !m.Correct {
			incorrect++
		}
	}
	if len(memories) != 1 || incorrect != 1 {
		t.Errorf("memories = %+v, want exactly 1 incorrect fact", memories)
	}
}

func TestPlayer_SuccessFlow(t *testing.T) {
	clock := NewManualClock(testEpoch)
	p := newTestPipelinePlayer(t, clock)

	if err := p.Launch("success"); err != nil {
		t.Fatal(err)
	}
	drain(clock)

	ops := p.Snapshot().Entries
	if len(ops) != 4 {
		t.Fatalf("operations = %d, want 4", len(ops))
	}
	if n := CountStatus(ops, StatusSuccess); n != 4 {
		t.Errorf("success operations = %d, want 4", n)
	}
	if n := CountStatus(ops, StatusError); n != 0 {
		t.Errorf("error operations = %d, want 0", n)
	}
	for _, op := range ops {
		if op.Output == "" {
			t.Errorf("operation %s has no output after settling", op.ID)
		}
	}
}

func TestPlayer_ReplayIsDeterministic(t *testing.T) {
	clock := NewManualClock(testEpoch)
	p := newTestPipelinePlayer(t, clock)

	if err := p.Launch("failure"); err != nil {
		t.Fatal(err)
	}
	drain(clock)
	first, err := json.Marshal(p.Snapshot().Entries)
	if err != nil {
		t.Fatal(err)
	}

	if err := p.Replay(); err != nil {
		t.Fatalf("Replay() error = %v", err)
	}
	if n := len(p.Snapshot().Entries); n != 0 {
		t.Errorf("Replay() should clear the sink, found %d entries", n)
	}
	drain(clock)
	second, err := json.Marshal(p.Snapshot().Entries)
	if err != nil {
		t.Fatal(err)
	}

	if string(first) != string(second) {
		t.Errorf("replay differs:\nfirst  %s\nsecond %s", first, second)
	}
}

func TestPlayer_ReplayInvalidTransitions(t *testing.T) {
	clock := NewManualClock(testEpoch)
	p := newTestChatPlayer(t, clock)

	err := p.Replay()
	var transition *InvalidTransitionError
	if !errors.As(err, &transition) || transition.Phase != PhaseIdle {
		t.Errorf("Replay() when idle error = %v, want InvalidTransitionError(idle)", err)
	}

	if err := p.Launch("omission"); err != nil {
		t.Fatal(err)
	}
	clock.Advance(testChatInterval)
	before := p.Snapshot()

	err = p.Replay()
	if !errors.As(err, &transition) || transition.Phase != PhaseRunning {
		t.Errorf("Replay() while running error = %v, want InvalidTransitionError(running)", err)
	}
	if after := p.Snapshot(); !reflect.DeepEqual(before, after) {
		t.Error("rejected replay should not change state")
	}

	drain(clock)
	p.Reset()
	if err := p.Replay(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Replay() after reset error = %v, want ErrInvalidTransition", err)
	}
}

func TestPlayer_Events(t *testing.T) {
	clock := NewManualClock(testEpoch)
	p := newTestPipelinePlayer(t, clock)

	var got []EventType
	unsubscribe := p.Subscribe(func(ev Event[Operation]) {
		got = append(got, ev.Type)
	})

	if err := p.Launch("success"); err != nil {
		t.Fatal(err)
	}
	drain(clock)

	want := []EventType{
		EventLaunched,
		EventRevealed, EventSettled,
		EventRevealed, EventSettled,
		EventRevealed, EventSettled,
		EventRevealed, EventSettled,
		EventFinished,
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("events = %v, want %v", got, want)
	}

	unsubscribe()
	unsubscribe()
	got = nil
	p.Reset()
	if len(got) != 0 {
		t.Errorf("unsubscribed handler received %v", got)
	}
}

func TestPlayer_SettledEventCarriesEntry(t *testing.T) {
	clock := NewManualClock(testEpoch)
	p := newTestPipelinePlayer(t, clock)

	var settled []Operation
	defer p.Subscribe(func(ev Event[Operation]) {
		if ev.Type == EventSettled {
			settled = append(settled, ev.Entry)
		}
	})()

	if err := p.Launch("failure"); err != nil {
		t.Fatal(err)
	}
	drain(clock)

	if len(settled) != 4 {
		t.Fatalf("settled events = %d, want 4", len(settled))
	}
	if settled[1].ID != "failure-02" || settled[1].ErrorDetail != ClassificationError.Describe() {
		t.Errorf("second settled entry = %+v, want derived error detail", settled[1])
	}
}

func TestPlayer_Wait(t *testing.T) {
	clock := NewManualClock(testEpoch)
	p := newTestChatPlayer(t, clock)

	if err := p.Wait(context.Background()); err != nil {
		t.Errorf("Wait() on idle player error = %v", err)
	}

	if err := p.Launch("error"); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := p.Wait(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Wait() with cancelled context error = %v, want context.Canceled", err)
	}

	drain(clock)
	if err := p.Wait(context.Background()); err != nil {
		t.Errorf("Wait() after finish error = %v", err)
	}
}

func TestPlayer_WaitUnblocksOnReset(t *testing.T) {
	p := newTestChatPlayer(t, NewManualClock(testEpoch))
	if err := p.Launch("error"); err != nil {
		t.Fatal(err)
	}

	errc := make(chan error, 1)
	go func() { errc <- p.Wait(context.Background()) }()
	p.Reset()

	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("Wait() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Wait() did not return after Reset")
	}
}

// leakyClock never cancels anything, modelling a callback that already
// started when Stop was called
type leakyClock struct {
	now     time.Time
	pending []func()
}

type leakyTimer struct{}

func (leakyTimer) Stop() bool { return false }

func (c *leakyClock) Now() time.Time { return c.now }

func (c *leakyClock) AfterFunc(d time.Duration, f func()) Timer {
	c.pending = append(c.pending, f)
	return leakyTimer{}
}

func (c *leakyClock) fireAll() {
	fns := c.pending
	c.pending = nil
	for _, f := range fns {
		f()
	}
}

func TestPlayer_StaleCallbacksAreDropped(t *testing.T) {
	clock := &leakyClock{now: testEpoch}
	p := newTestPipelinePlayer(t, clock)

	if err := p.Launch("success"); err != nil {
		t.Fatal(err)
	}
	clock.fireAll() // first reveal, schedules tick + settle

	p.Reset()
	clock.fireAll() // both callbacks belong to the reset session

	state := p.Snapshot()
	if len(state.Entries) != 0 || state.Phase != PhaseIdle {
		t.Errorf("stale callbacks resurrected state: %+v", state)
	}
}

func TestPlayer_RealClockPlayback(t *testing.T) {
	p, err := NewPipelinePlayer(PlayerOptions{Interval: 5 * time.Millisecond, SettleDelay: 2 * time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}

	if err := p.Launch("success"); err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := p.Wait(ctx); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	// settle callbacks run on their own goroutines; give the last one a
	// moment to land
	deadline := time.Now().Add(2 * time.Second)
	ops := p.Snapshot().Entries
	for CountStatus(ops, StatusSuccess) != 4 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
		ops = p.Snapshot().Entries
	}
	if len(ops) != 4 || CountStatus(ops, StatusSuccess) != 4 {
		t.Errorf("real clock playback = %+v, want 4 successful operations", ops)
	}
}
