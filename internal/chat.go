package internal

import "strings"

// ChatPlayer replays the chat demo
type ChatPlayer = Player[ChatStep, ChatMessage]

// ChatScript reveals a chat step as a fully formed message. The chat demo
// has no delayed transition.
var ChatScript = Script[ChatStep, ChatMessage]{
	Reveal: func(ref StepRef, step ChatStep) ChatMessage {
		return ChatMessage{
			ID:             ref.ID,
			Speaker:        step.Role,
			Text:           step.Text,
			MemoryFact:     step.Memory,
			Classification: step.Classification,
			Offset:         ref.Offset,
		}
	},
}

// NewChatPlayer creates a player over the registered chat scenarios
func NewChatPlayer(opts PlayerOptions) (*ChatPlayer, error) {
	return NewPlayer[ChatStep, ChatMessage](ChatScenario, ChatScript, opts)
}

// DeriveMemories builds the memory bank from revealed messages. Only system
// messages that carry a memory fact store something; a classified message
// stores an incorrect fact.
func DeriveMemories(messages []ChatMessage) []MemoryEntry {
	var memories []MemoryEntry
	for _, msg := range messages {
		if msg.Speaker != RoleSystem || strings.TrimSpace(msg.MemoryFact) == "" {
			continue
		}

		status := MemoryActive
		switch msg.Classification {
		case ClassificationConflict:
			status = MemoryConflicted
		case ClassificationOmission:
			status = MemoryOutdated
		}

		memories = append(memories, MemoryEntry{
			ID:      "mem-" + msg.ID,
			Fact:    msg.MemoryFact,
			Correct: !msg.Classification.IsFailure(),
			Status:  status,
			Offset:  msg.Offset,
		})
	}
	return memories
}

// CountClassified returns how many messages carry classification c
func CountClassified(messages []ChatMessage, c Classification) int {
	n := 0
	for _, msg := range messages {
		if msg.Classification == c {
			n++
		}
	}
	return n
}
