package internal

import (
	"strings"
	"testing"
)

func TestClassification(t *testing.T) {
	tests := []struct {
		name        string
		c           Classification
		wantFailure bool
		wantValid   bool
		wantPrefix  string
	}{
		{name: "none", c: ClassificationNone, wantFailure: false, wantValid: true, wantPrefix: ""},
		{name: "fabrication", c: ClassificationFabrication, wantFailure: true, wantValid: true, wantPrefix: "Fabrication"},
		{name: "error", c: ClassificationError, wantFailure: true, wantValid: true, wantPrefix: "Error"},
		{name: "conflict", c: ClassificationConflict, wantFailure: true, wantValid: true, wantPrefix: "Conflict"},
		{name: "omission", c: ClassificationOmission, wantFailure: true, wantValid: true, wantPrefix: "Omission"},
		{name: "unknown", c: Classification("drift"), wantFailure: true, wantValid: false, wantPrefix: "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.c.IsFailure(); got != tt.wantFailure {
				t.Errorf("IsFailure() = %v, want %v", got, tt.wantFailure)
			}
			if got := tt.c.Valid(); got != tt.wantValid {
				t.Errorf("Valid() = %v, want %v", got, tt.wantValid)
			}
			if got := tt.c.Describe(); !strings.HasPrefix(got, tt.wantPrefix) {
				t.Errorf("Describe() = %q, want prefix %q", got, tt.wantPrefix)
			}
		})
	}
}

func TestStepKindDescribe(t *testing.T) {
	for _, kind := range []StepKind{StepExtract, StepStore, StepUpdate, StepRetrieve} {
		if kind.Describe() == "" {
			t.Errorf("%s.Describe() should not be empty", kind)
		}
	}
	if StepKind("index").Describe() != "" {
		t.Error("unknown kind should have no description")
	}
}

func TestScenarioClone(t *testing.T) {
	original := &Scenario[ChatStep]{
		Key:   "k",
		Steps: []ChatStep{{Role: RoleActor, Text: "hello"}},
	}

	c := original.clone()
	c.Steps[0].Text = "changed"

	if original.Steps[0].Text != "hello" {
		t.Error("clone() should not share the steps slice with the original")
	}
}
