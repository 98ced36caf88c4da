package internal

import (
	"fmt"
	"slices"
	"time"
)

// Variant names which demo a scenario belongs to
type Variant string

const (
	VariantChat     Variant = "chat"
	VariantPipeline Variant = "pipeline"
)

// Classification tags the simulated failure mode a step represents.
// The zero value means the step succeeds.
type Classification string

const (
	ClassificationNone        Classification = ""
	ClassificationFabrication Classification = "fabrication"
	ClassificationError       Classification = "error"
	ClassificationConflict    Classification = "conflict"
	ClassificationOmission    Classification = "omission"
)

// Classifications lists every failure classification in display order
var Classifications = []Classification{
	ClassificationFabrication,
	ClassificationError,
	ClassificationConflict,
	ClassificationOmission,
}

// IsFailure reports whether the classification marks a simulated failure
func (c Classification) IsFailure() bool {
	return c != ClassificationNone
}

// Valid reports whether c belongs to the closed classification set
func (c Classification) Valid() bool {
	return c == ClassificationNone || slices.Contains(Classifications, c)
}

// Describe returns the human-readable meaning of a classification
func (c Classification) Describe() string {
	switch c {
	case ClassificationNone:
		return ""
	case ClassificationFabrication:
		return "Fabrication: created a memory that never happened"
	case ClassificationError:
		return "Error: stored or retrieved wrong details"
	case ClassificationConflict:
		return "Conflict: contradictory memories kept active"
	case ClassificationOmission:
		return "Omission: failed to use stored information"
	default:
		return fmt.Sprintf("Unknown failure (%s)", string(c))
	}
}

// Role is who speaks in a chat step
type Role string

const (
	RoleActor  Role = "actor"
	RoleSystem Role = "system"
)

// StepKind is the memory operation a pipeline step performs
type StepKind string

const (
	StepExtract  StepKind = "extract"
	StepStore    StepKind = "store"
	StepUpdate   StepKind = "update"
	StepRetrieve StepKind = "retrieve"
)

// Describe explains what the operation does
func (k StepKind) Describe() string {
	switch k {
	case StepExtract:
		return "Identify and pull out key information from user conversations."
	case StepStore:
		return "Save extracted information as structured memory points with metadata."
	case StepUpdate:
		return "Modify existing memories when new, contradictory information arrives."
	case StepRetrieve:
		return "Fetch relevant memories to provide context for responses."
	default:
		return ""
	}
}

// OperationStatus is the lifecycle of one pipeline card
type OperationStatus string

const (
	StatusPending    OperationStatus = "pending"
	StatusProcessing OperationStatus = "processing"
	StatusSuccess    OperationStatus = "success"
	StatusError      OperationStatus = "error"
)

// MemoryStatus is the state of a derived memory-bank fact
type MemoryStatus string

const (
	MemoryActive     MemoryStatus = "active"
	MemoryOutdated   MemoryStatus = "outdated"
	MemoryConflicted MemoryStatus = "conflicted"
)

// ChatStep is one scripted line of the chat demo
type ChatStep struct {
	Role           Role           `json:"role" yaml:"role"`
	Text           string         `json:"text" yaml:"text"`
	Memory         string         `json:"memory,omitempty" yaml:"memory,omitempty"`
	Classification Classification `json:"classification,omitempty" yaml:"classification,omitempty"`
}

// PipelineStep is one scripted memory operation of the pipeline demo
type PipelineStep struct {
	Kind           StepKind       `json:"kind" yaml:"kind"`
	Input          string         `json:"input" yaml:"input"`
	Output         string         `json:"output" yaml:"output"`
	Classification Classification `json:"classification,omitempty" yaml:"classification,omitempty"`
	Detail         string         `json:"detail,omitempty" yaml:"detail,omitempty"`
}

// Scenario is a named, ordered script of steps
type Scenario[S any] struct {
	Key         string `json:"key" yaml:"key"`
	Title       string `json:"title" yaml:"title"`
	Summary     string `json:"summary" yaml:"summary"`
	Explanation string `json:"explanation,omitempty" yaml:"explanation,omitempty"`
	Steps       []S    `json:"steps" yaml:"steps"`
}

// clone returns a copy whose steps can be handed out without exposing the
// registered script
func (s *Scenario[S]) clone() *Scenario[S] {
	c := *s
	c.Steps = slices.Clone(s.Steps)
	return &c
}

// ChatMessage is a revealed chat line
type ChatMessage struct {
	ID             string         `json:"id" yaml:"id"`
	Speaker        Role           `json:"speaker" yaml:"speaker"`
	Text           string         `json:"text" yaml:"text"`
	MemoryFact     string         `json:"memory_fact,omitempty" yaml:"memory_fact,omitempty"`
	Classification Classification `json:"classification,omitempty" yaml:"classification,omitempty"`
	Offset         time.Duration  `json:"offset" yaml:"offset"`
}

// EntryID implements Entry
func (m ChatMessage) EntryID() string { return m.ID }

// Operation is a revealed pipeline card
type Operation struct {
	ID          string          `json:"id" yaml:"id"`
	Kind        StepKind        `json:"kind" yaml:"kind"`
	Status      OperationStatus `json:"status" yaml:"status"`
	Input       string          `json:"input,omitempty" yaml:"input,omitempty"`
	Output      string          `json:"output,omitempty" yaml:"output,omitempty"`
	ErrorDetail string          `json:"error_detail,omitempty" yaml:"error_detail,omitempty"`
	Offset      time.Duration   `json:"offset" yaml:"offset"`
}

// EntryID implements Entry
func (o Operation) EntryID() string { return o.ID }

// MemoryEntry is one fact of the derived memory bank
type MemoryEntry struct {
	ID      string        `json:"id" yaml:"id"`
	Fact    string        `json:"fact" yaml:"fact"`
	Correct bool          `json:"correct" yaml:"correct"`
	Status  MemoryStatus  `json:"status" yaml:"status"`
	Offset  time.Duration `json:"offset" yaml:"offset"`
}
