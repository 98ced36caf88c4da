package internal

import (
	"errors"
	"fmt"
)

var (
	// ErrUnknownScenario is matched by every UnknownScenarioError
	ErrUnknownScenario = errors.New("unknown scenario")

	// ErrInvalidTransition is matched by every InvalidTransitionError
	ErrInvalidTransition = errors.New("invalid transition")

	// ErrRunNotFound is returned when a history lookup has no match
	ErrRunNotFound = errors.New("run not found")
)

// UnknownScenarioError is returned when a scenario key is not registered
type UnknownScenarioError struct {
	Key     string
	Variant Variant // empty when every registry was searched
}

func (e *UnknownScenarioError) Error() string {
	if e.Variant == "" {
		return fmt.Sprintf("unknown scenario: %q", e.Key)
	}
	return fmt.Sprintf("unknown %s scenario: %q", e.Variant, e.Key)
}

func (e *UnknownScenarioError) Is(target error) bool {
	return target == ErrUnknownScenario
}

// InvalidTransitionError is returned when a control operation is not
// allowed in the player's current phase
type InvalidTransitionError struct {
	Op    string // "replay"
	Phase Phase
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: cannot %s while %s", e.Op, e.Phase)
}

func (e *InvalidTransitionError) Is(target error) bool {
	return target == ErrInvalidTransition
}

// StorageError represents errors accessing the history database
type StorageError struct {
	Path string
	Op   string // "open", "migrate", "insert", "query"
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ExportError represents errors during export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
