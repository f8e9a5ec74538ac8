package llm

import (
	"context"
	"errors"
)

// Chat message roles.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is a role-tagged chat message.
type Message struct {
	Role    string
	Content string
}

// Client abstracts the hosted chat-completion service. Complete runs one
// synchronous text exchange; DescribeImage sends a single page image with a
// transcription instruction and returns the free-text completion.
type Client interface {
	Complete(ctx context.Context, messages []Message) (string, error)
	DescribeImage(ctx context.Context, instruction string, png []byte) (string, error)
}

// ErrNotConfigured is returned when no provider credentials are present.
var ErrNotConfigured = errors.New("LLM client not configured")
