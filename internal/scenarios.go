package internal

import "fmt"

// chatScenarios are the scripts of the chat demo, in display order
var chatScenarios = []*Scenario[ChatStep]{
	{
		Key:         "fabrication",
		Title:       "Fabrication Demo",
		Summary:     "Creating memories that never happened",
		Explanation: "The AI created a false memory that was never mentioned. The user said they liked parrots, but the system stored the opposite.",
		Steps: []ChatStep{
			{Role: RoleActor, Text: "I recently started liking parrots. They're amazing birds!"},
			{Role: RoleSystem, Text: "I understand you dislike parrots. I'll remember that.", Memory: "User dislikes parrots", Classification: ClassificationFabrication},
			{Role: RoleActor, Text: "Wait, what? I said I like them!"},
			{Role: RoleSystem, Text: "I apologize for the confusion. Based on my memory, you mentioned you dislike parrots.", Classification: ClassificationFabrication},
		},
	},
	{
		Key:         "error",
		Title:       "Error Demo",
		Summary:     "Wrong details in retrieved memories",
		Explanation: "The AI retrieved the memory but got key details wrong. It confused 'Joseph' with 'Mark', corrupting the stored information.",
		Steps: []ChatStep{
			{Role: RoleActor, Text: "My friend Joseph just got promoted to senior engineer."},
			{Role: RoleSystem, Text: "That's great news about Mark's promotion!", Memory: "Friend Mark promoted", Classification: ClassificationError},
			{Role: RoleActor, Text: "It's Joseph, not Mark."},
			{Role: RoleSystem, Text: "You're right, I apologize. Mark is now a senior engineer according to my notes.", Classification: ClassificationError},
		},
	},
	{
		Key:         "conflict",
		Title:       "Conflict Demo",
		Summary:     "Contradictory memories kept side by side",
		Explanation: "The AI failed to update old memories, resulting in contradictory information coexisting in the memory bank.",
		Steps: []ChatStep{
			{Role: RoleActor, Text: "I'm feeling much better now after recovering from the flu."},
			{Role: RoleSystem, Text: "Glad to hear your health has improved!", Memory: "Health: Good | Health: Poor", Classification: ClassificationConflict},
			{Role: RoleActor, Text: "How's my health status?"},
			{Role: RoleSystem, Text: "According to my records, you're both in good health and poor health. There seems to be conflicting information.", Classification: ClassificationConflict},
		},
	},
	{
		Key:         "omission",
		Title:       "Omission Demo",
		Summary:     "Forgetting crucial information",
		Explanation: "The AI completely failed to retrieve crucial information that was previously stored, showing immediate memory loss.",
		Steps: []ChatStep{
			{Role: RoleActor, Text: "I got promoted to Senior Research Scientist yesterday!"},
			{Role: RoleSystem, Text: "Congratulations on your promotion!", Memory: "Promotion recorded"},
			{Role: RoleActor, Text: "What's my current job title?"},
			{Role: RoleSystem, Text: "I don't have information about your current job title. Could you tell me what you do?", Classification: ClassificationOmission},
		},
	},
}

// pipelineScenarios are the scripts of the operation pipeline demo
var pipelineScenarios = []*Scenario[PipelineStep]{
	{
		Key:         "success",
		Title:       "Successful Flow",
		Summary:     "Every memory operation does its job",
		Explanation: "Each stage hands correct data to the next: the extracted facts are stored, updated on promotion and retrieved intact.",
		Steps: []PipelineStep{
			{Kind: StepExtract, Input: `User: "I work at OpenAI as an engineer"`, Output: "Extracted: workplace=OpenAI, role=engineer"},
			{Kind: StepStore, Input: "workplace=OpenAI, role=engineer", Output: "Stored with ID: mem_001"},
			{Kind: StepUpdate, Input: `User: "Got promoted to senior engineer"`, Output: "Updated: role=senior engineer"},
			{Kind: StepRetrieve, Input: `Query: "What is my job?"`, Output: "Retrieved: senior engineer at OpenAI"},
		},
	},
	{
		Key:         "failure",
		Title:       "Failure Cascade",
		Summary:     "One bad extraction poisons every later stage",
		Explanation: "A single inverted extraction is stored as fact, blocks the later update and surfaces as a hallucinated answer: errors compound down the pipeline.",
		Steps: []PipelineStep{
			{Kind: StepExtract, Input: `User: "I love science fiction books"`, Output: "Extracted: dislikes=science fiction", Classification: ClassificationFabrication, Detail: "Fabrication: Inverted preference"},
			{Kind: StepStore, Input: "dislikes=science fiction", Output: "Stored incorrect data", Classification: ClassificationError},
			{Kind: StepUpdate, Input: `User: "Just finished reading Dune"`, Output: "Failed to update: conflicting memory", Classification: ClassificationOmission, Detail: "Update omission: 74% failure rate"},
			{Kind: StepRetrieve, Input: `Query: "Book preferences?"`, Output: "Retrieved: User dislikes sci-fi", Classification: ClassificationFabrication, Detail: "Hallucinated response"},
		},
	},
}

// ScenarioInfo summarizes a registered scenario for listings
type ScenarioInfo struct {
	Key      string  `json:"key" yaml:"key"`
	Variant  Variant `json:"variant" yaml:"variant"`
	Title    string  `json:"title" yaml:"title"`
	Summary  string  `json:"summary" yaml:"summary"`
	Steps    int     `json:"steps" yaml:"steps"`
	Failures int     `json:"failures" yaml:"failures"`
}

// ChatScenario returns a copy of the chat scenario registered under key
func ChatScenario(key string) (*Scenario[ChatStep], error) {
	for _, s := range chatScenarios {
		if s.Key == key {
			return s.clone(), nil
		}
	}
	return nil, &UnknownScenarioError{Key: key, Variant: VariantChat}
}

// PipelineScenario returns a copy of the pipeline scenario registered under key
func PipelineScenario(key string) (*Scenario[PipelineStep], error) {
	for _, s := range pipelineScenarios {
		if s.Key == key {
			return s.clone(), nil
		}
	}
	return nil, &UnknownScenarioError{Key: key, Variant: VariantPipeline}
}

// ScenarioVariant resolves which demo owns key
func ScenarioVariant(key string) (Variant, error) {
	if _, err := ChatScenario(key); err == nil {
		return VariantChat, nil
	}
	if _, err := PipelineScenario(key); err == nil {
		return VariantPipeline, nil
	}
	return "", &UnknownScenarioError{Key: key}
}

// ListScenarios returns every registered scenario, chat demos first
func ListScenarios() []ScenarioInfo {
	infos := make([]ScenarioInfo, 0, len(chatScenarios)+len(pipelineScenarios))
	for _, s := range chatScenarios {
		failures := 0
		for _, step := range s.Steps {
			if step.Classification.IsFailure() {
				failures++
			}
		}
		infos = append(infos, ScenarioInfo{Key: s.Key, Variant: VariantChat, Title: s.Title, Summary: s.Summary, Steps: len(s.Steps), Failures: failures})
	}
	for _, s := range pipelineScenarios {
		failures := 0
		for _, step := range s.Steps {
			if step.Classification.IsFailure() {
				failures++
			}
		}
		infos = append(infos, ScenarioInfo{Key: s.Key, Variant: VariantPipeline, Title: s.Title, Summary: s.Summary, Steps: len(s.Steps), Failures: failures})
	}
	return infos
}

// ValidateRegistry checks the invariants every registered script must hold:
// unique keys across demos, non-empty steps and known enum values
func ValidateRegistry() error {
	seen := make(map[string]Variant)
	claim := func(key string, v Variant) error {
		if key == "" {
			return fmt.Errorf("%s scenario with empty key", v)
		}
		if owner, ok := seen[key]; ok {
			return fmt.Errorf("scenario key %q registered by both %s and %s", key, owner, v)
		}
		seen[key] = v
		return nil
	}

	for _, s := range chatScenarios {
		if err := claim(s.Key, VariantChat); err != nil {
			return err
		}
		if len(s.Steps) == 0 {
			return fmt.Errorf("chat scenario %q has no steps", s.Key)
		}
		for i, step := range s.Steps {
			if step.Role != RoleActor && step.Role != RoleSystem {
				return fmt.Errorf("chat scenario %q step %d: unknown role %q", s.Key, i+1, step.Role)
			}
			if !step.Classification.Valid() {
				return fmt.Errorf("chat scenario %q step %d: unknown classification %q", s.Key, i+1, step.Classification)
			}
		}
	}

	for _, s := range pipelineScenarios {
		if err := claim(s.Key, VariantPipeline); err != nil {
			return err
		}
		if len(s.Steps) == 0 {
			return fmt.Errorf("pipeline scenario %q has no steps", s.Key)
		}
		for i, step := range s.Steps {
			if step.Kind.Describe() == "" {
				return fmt.Errorf("pipeline scenario %q step %d: unknown kind %q", s.Key, i+1, step.Kind)
			}
			if !step.Classification.Valid() {
				return fmt.Errorf("pipeline scenario %q step %d: unknown classification %q", s.Key, i+1, step.Classification)
			}
		}
	}
	return nil
}
