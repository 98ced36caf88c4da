package internal

import "time"

// CreateTestChatTranscript creates a chat transcript with sample data
func CreateTestChatTranscript(id string) *Transcript {
	messages := []ChatMessage{
		{ID: id + "-01", Speaker: RoleActor, Text: "I moved to Lisbon last spring.", Offset: 2 * time.Second},
		{ID: id + "-02", Speaker: RoleSystem, Text: "Noted, you live in Lisbon.", MemoryFact: "User lives in Lisbon", Offset: 4 * time.Second},
		{ID: id + "-03", Speaker: RoleActor, Text: "Where do I live?", Offset: 6 * time.Second},
		{ID: id + "-04", Speaker: RoleSystem, Text: "You live in Madrid.", MemoryFact: "User lives in Madrid", Classification: ClassificationError, Offset: 8 * time.Second},
	}
	scenario := &Scenario[ChatStep]{
		Key:         id,
		Title:       "Test Conversation",
		Summary:     "A short test conversation",
		Explanation: "The system recalled the wrong city.",
	}
	t := NewChatTranscript(scenario, messages, OutcomeCompleted)
	t.ID = "run-" + id
	return t
}

// CreateTestPipelineTranscript creates a pipeline transcript with one
// failed operation
func CreateTestPipelineTranscript(id string) *Transcript {
	ops := []Operation{
		{ID: id + "-01", Kind: StepExtract, Status: StatusSuccess, Input: "I adopted a dog", Output: "pet: dog", Offset: 2500 * time.Millisecond},
		{ID: id + "-02", Kind: StepStore, Status: StatusError, Input: "pet: dog", Output: "pet: cat", ErrorDetail: "Fabrication: Inverted preference", Offset: 5 * time.Second},
	}
	scenario := &Scenario[PipelineStep]{
		Key:     id,
		Title:   "Test Pipeline",
		Summary: "A short test pipeline",
	}
	t := NewPipelineTranscript(scenario, ops, OutcomeCompleted)
	t.ID = "run-" + id
	return t
}

// CreateTestTranscriptWithMessages creates a chat transcript with custom
// messages
func CreateTestTranscriptWithMessages(id string, messages []ChatMessage) *Transcript {
	scenario := &Scenario[ChatStep]{Key: id, Title: "Custom " + id}
	t := NewChatTranscript(scenario, messages, OutcomeCompleted)
	t.ID = "run-" + id
	return t
}
