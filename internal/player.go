package internal

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Phase is the lifecycle state of a Player
type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseRunning  Phase = "running"
	PhaseFinished Phase = "finished"
)

// StepRef identifies the step being revealed
type StepRef struct {
	Scenario string
	Index    int
	ID       string
	Offset   time.Duration // nominal position in the schedule
}

// Script turns scenario steps into sink entries
type Script[S any, E Entry] struct {
	// Reveal builds the entry appended when a step activates
	Reveal func(ref StepRef, step S) E
	// Settle, when set, is applied to the revealed entry after the settle
	// delay
	Settle func(step S, entry E) E
}

// Catalog looks up a scenario by key
type Catalog[S any] func(key string) (*Scenario[S], error)

// PlayerOptions configures a Player
type PlayerOptions struct {
	Interval    time.Duration // between reveals
	SettleDelay time.Duration // between a reveal and its settle transition
	Clock       Clock         // defaults to RealClock
}

// EventType names a player notification
type EventType string

const (
	EventLaunched EventType = "launched"
	EventRevealed EventType = "revealed"
	EventSettled  EventType = "settled"
	EventFinished EventType = "finished"
	EventReset    EventType = "reset"
)

// Event is delivered to subscribers after each state change
type Event[E Entry] struct {
	Type     EventType
	Scenario string
	Cursor   int
	Total    int
	Entry    E // set for revealed and settled events
}

// PlaybackState is a read-only view of the current session
type PlaybackState[E Entry] struct {
	Scenario string
	Phase    Phase
	Running  bool
	Cursor   int
	Total    int
	Entries  []E
}

// Player steps through a scenario on a fixed interval, appending one entry
// per tick to its sink. Launch, Replay and Reset form the control surface;
// Reset and Launch cancel every outstanding timer before touching state.
type Player[S any, E Entry] struct {
	catalog     Catalog[S]
	script      Script[S, E]
	clock       Clock
	interval    time.Duration
	settleDelay time.Duration

	mu       sync.Mutex
	key      string
	steps    []S
	cursor   int
	running  bool
	draining bool // every step revealed, waiting on outstanding settles
	gen      uint64
	tick     Timer
	settles  map[string]Timer
	sink     *Sink[E]
	done     chan struct{}

	// emitMu keeps event delivery in state-change order
	emitMu  sync.Mutex
	subMu   sync.Mutex
	subs    []subscription[E]
	nextSub int
}

type subscription[E Entry] struct {
	id int
	fn func(Event[E])
}

// NewPlayer creates an idle player
func NewPlayer[S any, E Entry](catalog Catalog[S], script Script[S, E], opts PlayerOptions) (*Player[S, E], error) {
	if catalog == nil {
		return nil, fmt.Errorf("player requires a scenario catalog")
	}
	if script.Reveal == nil {
		return nil, fmt.Errorf("player requires a reveal function")
	}
	if opts.Interval <= 0 {
		return nil, fmt.Errorf("interval must be positive, got %s", opts.Interval)
	}
	if script.Settle != nil && opts.SettleDelay <= 0 {
		return nil, fmt.Errorf("settle delay must be positive, got %s", opts.SettleDelay)
	}
	if opts.Clock == nil {
		opts.Clock = RealClock()
	}

	done := make(chan struct{})
	close(done)

	return &Player[S, E]{
		catalog:     catalog,
		script:      script,
		clock:       opts.Clock,
		interval:    opts.Interval,
		settleDelay: opts.SettleDelay,
		settles:     make(map[string]Timer),
		sink:        NewSink[E](),
		done:        done,
	}, nil
}

// Launch starts playing the scenario registered under key. An unknown key
// returns an UnknownScenarioError and leaves the player untouched. Launch
// while a session is running is ignored.
func (p *Player[S, E]) Launch(key string) error {
	scenario, err := p.catalog(key)
	if err != nil {
		return err
	}

	p.mu.Lock()
	if p.running {
		current := p.key
		p.mu.Unlock()
		LogDebug("Ignoring launch of %q: %q is still playing", key, current)
		return nil
	}

	p.cancelTimersLocked()
	p.sink.Clear()
	p.gen++
	p.key = scenario.Key
	p.steps = scenario.Steps
	p.cursor = 0
	p.running = true
	p.draining = false
	p.done = make(chan struct{})
	p.scheduleTickLocked(p.gen)
	ev := Event[E]{Type: EventLaunched, Scenario: p.key, Total: len(p.steps)}
	p.mu.Unlock()

	LogDebug("Launched scenario %q (%d steps, every %s)", ev.Scenario, ev.Total, p.interval)
	p.emit(ev)
	return nil
}

// Replay relaunches the last scenario. It fails with an
// InvalidTransitionError while a session is running or when nothing was
// launched since the last reset.
func (p *Player[S, E]) Replay() error {
	p.mu.Lock()
	phase := p.phaseLocked()
	key := p.key
	p.mu.Unlock()

	if phase != PhaseFinished {
		return &InvalidTransitionError{Op: "replay", Phase: phase}
	}
	return p.Launch(key)
}

// Reset cancels every pending timer, clears the sink and returns the player
// to idle. It is safe to call at any time, any number of times.
func (p *Player[S, E]) Reset() {
	p.mu.Lock()
	p.cancelTimersLocked()
	p.gen++
	p.sink.Clear()
	prev := p.key
	p.key = ""
	p.steps = nil
	p.cursor = 0
	p.draining = false
	if p.running {
		p.running = false
		close(p.done)
	}
	p.mu.Unlock()

	if prev != "" {
		LogDebug("Reset scenario %q", prev)
	}
	p.emit(Event[E]{Type: EventReset, Scenario: prev})
}

// Snapshot returns the current session state
func (p *Player[S, E]) Snapshot() PlaybackState[E] {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PlaybackState[E]{
		Scenario: p.key,
		Phase:    p.phaseLocked(),
		Running:  p.running,
		Cursor:   p.cursor,
		Total:    len(p.steps),
		Entries:  p.sink.Entries(),
	}
}

// Running reports whether a session is playing
func (p *Player[S, E]) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Phase returns the lifecycle state
func (p *Player[S, E]) Phase() Phase {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.phaseLocked()
}

// Wait blocks until the current session finishes or is reset
func (p *Player[S, E]) Wait(ctx context.Context) error {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Subscribe registers fn for every subsequent event and returns a func that
// removes it. fn runs on the goroutine that changed the state and must not
// call back into the player.
func (p *Player[S, E]) Subscribe(fn func(Event[E])) (unsubscribe func()) {
	p.subMu.Lock()
	p.nextSub++
	id := p.nextSub
	p.subs = append(p.subs, subscription[E]{id: id, fn: fn})
	p.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			p.subMu.Lock()
			defer p.subMu.Unlock()
			for i, s := range p.subs {
				if s.id == id {
					p.subs = append(p.subs[:i], p.subs[i+1:]...)
					return
				}
			}
		})
	}
}

func (p *Player[S, E]) phaseLocked() Phase {
	switch {
	case p.running:
		return PhaseRunning
	case p.key != "":
		return PhaseFinished
	default:
		return PhaseIdle
	}
}

func (p *Player[S, E]) scheduleTickLocked(gen uint64) {
	p.tick = p.clock.AfterFunc(p.interval, func() { p.onTick(gen) })
}

func (p *Player[S, E]) cancelTimersLocked() {
	if p.tick != nil {
		p.tick.Stop()
		p.tick = nil
	}
	for id, t := range p.settles {
		t.Stop()
		delete(p.settles, id)
	}
}

func (p *Player[S, E]) onTick(gen uint64) {
	p.mu.Lock()
	if gen != p.gen || !p.running {
		p.mu.Unlock()
		LogDebug("Dropping stale tick")
		return
	}

	if p.cursor >= len(p.steps) {
		p.tick = nil
		if len(p.settles) > 0 {
			// the last settle finishes the session
			p.draining = true
			key, pending := p.key, len(p.settles)
			p.mu.Unlock()
			LogDebug("Scenario %q waiting on %d settle(s)", key, pending)
			return
		}
		ev := p.finishLocked()
		p.mu.Unlock()

		LogDebug("Scenario %q finished", ev.Scenario)
		p.emit(ev)
		return
	}

	step := p.steps[p.cursor]
	ref := StepRef{
		Scenario: p.key,
		Index:    p.cursor,
		ID:       fmt.Sprintf("%s-%02d", p.key, p.cursor+1),
		Offset:   time.Duration(p.cursor+1) * p.interval,
	}
	entry := p.script.Reveal(ref, step)
	p.sink.Append(entry)

	if p.script.Settle != nil {
		id := entry.EntryID()
		p.settles[id] = p.clock.AfterFunc(p.settleDelay, func() { p.onSettle(gen, id, step) })
	}

	p.cursor++
	p.scheduleTickLocked(gen)
	ev := Event[E]{Type: EventRevealed, Scenario: p.key, Cursor: p.cursor, Total: len(p.steps), Entry: entry}
	p.mu.Unlock()

	p.emit(ev)
}

// onSettle applies the delayed transition to the entry captured at reveal
// time, never to whichever step is current
func (p *Player[S, E]) onSettle(gen uint64, id string, step S) {
	p.mu.Lock()
	if gen != p.gen {
		p.mu.Unlock()
		LogDebug("Dropping stale settle for %s", id)
		return
	}
	delete(p.settles, id)

	var events []Event[E]
	if entry, ok := p.sink.Update(id, func(e E) E { return p.script.Settle(step, e) }); ok {
		events = append(events, Event[E]{Type: EventSettled, Scenario: p.key, Cursor: p.cursor, Total: len(p.steps), Entry: entry})
	}
	var finished *Event[E]
	if p.draining && len(p.settles) == 0 {
		fin := p.finishLocked()
		finished = &fin
	}
	p.mu.Unlock()

	for _, ev := range events {
		p.emit(ev)
	}
	if finished != nil {
		LogDebug("Scenario %q finished", finished.Scenario)
		p.emit(*finished)
	}
}

// finishLocked ends the running session and returns its finished event
func (p *Player[S, E]) finishLocked() Event[E] {
	p.running = false
	p.draining = false
	close(p.done)
	return Event[E]{Type: EventFinished, Scenario: p.key, Cursor: p.cursor, Total: len(p.steps)}
}

func (p *Player[S, E]) emit(ev Event[E]) {
	p.emitMu.Lock()
	defer p.emitMu.Unlock()

	p.subMu.Lock()
	subs := make([]subscription[E], len(p.subs))
	copy(subs, p.subs)
	p.subMu.Unlock()

	for _, s := range subs {
		s.fn(ev)
	}
}
