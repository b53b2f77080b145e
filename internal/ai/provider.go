// Package ai defines the completion-oracle boundary. The rest of the
// application only sees Provider; the hosted service behind it is treated
// as an untrusted black box whose replies are validated by the caller.
package ai

import "context"

// Message roles, mirroring the chat-completion wire format.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one entry in a completion request transcript.
type Message struct {
	Role    string
	Content string
}

// Options tunes a single completion call.
type Options struct {
	Temperature float64
	MaxTokens   int64
}

// Provider produces one completion for a transcript of messages. A call may
// block for a full network round-trip; implementations honor ctx. Errors are
// never retried by callers — one failed call fails one inbound message.
type Provider interface {
	Complete(ctx context.Context, msgs []Message, opts Options) (string, error)
}
