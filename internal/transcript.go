package internal

import (
	"fmt"
	"time"
)

// Transcript is the exportable record of one playback run
type Transcript struct {
	ID         string        `json:"id" yaml:"id"`
	Scenario   string        `json:"scenario" yaml:"scenario"`
	Variant    Variant       `json:"variant" yaml:"variant"`
	Title      string        `json:"title" yaml:"title"`
	Messages   []ChatMessage `json:"messages,omitempty" yaml:"messages,omitempty"`
	Memories   []MemoryEntry `json:"memories,omitempty" yaml:"memories,omitempty"`
	Operations []Operation   `json:"operations,omitempty" yaml:"operations,omitempty"`
	Metadata   Metadata      `json:"metadata" yaml:"metadata"`
}

// Metadata contains additional run information
type Metadata struct {
	Summary      string `json:"summary,omitempty" yaml:"summary,omitempty"`
	Explanation  string `json:"explanation,omitempty" yaml:"explanation,omitempty"`
	Outcome      string `json:"outcome" yaml:"outcome"` // "completed", "reset"
	RecordedAt   string `json:"recorded_at,omitempty" yaml:"recorded_at,omitempty"`
	EntryCount   int    `json:"entry_count" yaml:"entry_count"`
	FailureCount int    `json:"failure_count" yaml:"failure_count"`
}

const (
	OutcomeCompleted = "completed"
	OutcomeReset     = "reset"
)

// NewChatTranscript builds a transcript from revealed chat messages
func NewChatTranscript(scenario *Scenario[ChatStep], messages []ChatMessage, outcome string) *Transcript {
	failures := 0
	for _, msg := range messages {
		if msg.Classification.IsFailure() {
			failures++
		}
	}
	return &Transcript{
		Scenario: scenario.Key,
		Variant:  VariantChat,
		Title:    scenario.Title,
		Messages: messages,
		Memories: DeriveMemories(messages),
		Metadata: Metadata{
			Summary:      scenario.Summary,
			Explanation:  scenario.Explanation,
			Outcome:      outcome,
			EntryCount:   len(messages),
			FailureCount: failures,
		},
	}
}

// NewPipelineTranscript builds a transcript from revealed operations
func NewPipelineTranscript(scenario *Scenario[PipelineStep], ops []Operation, outcome string) *Transcript {
	return &Transcript{
		Scenario:   scenario.Key,
		Variant:    VariantPipeline,
		Title:      scenario.Title,
		Operations: ops,
		Metadata: Metadata{
			Summary:      scenario.Summary,
			Explanation:  scenario.Explanation,
			Outcome:      outcome,
			EntryCount:   len(ops),
			FailureCount: CountStatus(ops, StatusError),
		},
	}
}

// RecordScenario plays key to completion on a virtual clock and returns its
// transcript. No wall-clock time passes.
func RecordScenario(key string, opts PlayerOptions) (*Transcript, error) {
	variant, err := ScenarioVariant(key)
	if err != nil {
		return nil, err
	}

	clock := NewManualClock(time.Unix(0, 0).UTC())
	opts.Clock = clock

	switch variant {
	case VariantChat:
		scenario, err := ChatScenario(key)
		if err != nil {
			return nil, err
		}
		p, err := NewChatPlayer(opts)
		if err != nil {
			return nil, err
		}
		if err := p.Launch(key); err != nil {
			return nil, err
		}
		for clock.Step() {
		}
		return NewChatTranscript(scenario, p.Snapshot().Entries, OutcomeCompleted), nil

	case VariantPipeline:
		scenario, err := PipelineScenario(key)
		if err != nil {
			return nil, err
		}
		p, err := NewPipelinePlayer(opts)
		if err != nil {
			return nil, err
		}
		if err := p.Launch(key); err != nil {
			return nil, err
		}
		for clock.Step() {
		}
		return NewPipelineTranscript(scenario, p.Snapshot().Entries, OutcomeCompleted), nil

	default:
		return nil, fmt.Errorf("unsupported variant %q", variant)
	}
}
