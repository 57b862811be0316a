// Package llm provides the language-model invocation capability the triage
// agents consume. Callers pass role-tagged messages and get generated text
// back; every call site must expect failure or malformed output and carry
// its own deterministic fallback.
package llm

import (
	"context"
	"errors"
)

// Message roles.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// ErrUnavailable indicates the language-model backend is unreachable or the
// circuit breaker is open.
var ErrUnavailable = errors.New("llm backend unavailable")

// ErrEmptyResponse indicates the backend returned no usable content.
var ErrEmptyResponse = errors.New("llm returned empty response")

// Message is one role-tagged message of a completion request.
type Message struct {
	Role    string
	Content string
}

// System builds a system-role message.
func System(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// User builds a user-role message.
func User(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// Client is the narrow interface agents depend on.
type Client interface {
	// Complete sends the messages to the backend and returns the generated
	// text. The returned error wraps ErrUnavailable when the backend cannot
	// be reached.
	Complete(ctx context.Context, messages []Message) (string, error)
}
