package resolver

import "telegram-dare-bot/internal/ai"

// DefaultTranscriptLimit bounds classifier history at 64 exchange messages.
// A long-running session would otherwise grow the transcript without limit.
const DefaultTranscriptLimit = 64

// transcript is an append-only classifier history with a bounded tail. The
// seeding system prompt is always retained; only the oldest user/assistant
// exchanges are evicted once the cap is reached.
type transcript struct {
	system   ai.Message
	messages []ai.Message
	limit    int
}

func newTranscript(systemPrompt string, limit int) *transcript {
	if limit < 2 {
		limit = DefaultTranscriptLimit
	}
	return &transcript{
		system: ai.Message{Role: ai.RoleSystem, Content: systemPrompt},
		limit:  limit,
	}
}

func (t *transcript) append(role, content string) {
	t.messages = append(t.messages, ai.Message{Role: role, Content: content})
	if len(t.messages) > t.limit {
		t.messages = t.messages[len(t.messages)-t.limit:]
	}
}

// snapshot returns the system prompt followed by the retained exchanges.
func (t *transcript) snapshot() []ai.Message {
	out := make([]ai.Message, 0, len(t.messages)+1)
	out = append(out, t.system)
	out = append(out, t.messages...)
	return out
}
