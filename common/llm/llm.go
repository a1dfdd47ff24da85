package llm

import (
	"context"
	"errors"
	"strings"

	"github.com/invopop/jsonschema"
)

// Error kinds returned by Client implementations. Callers match them with errors.Is.
var (
	// ErrUpstream means the provider answered with a non-success status or an unusable body.
	ErrUpstream = errors.New("llm provider error")
	// ErrNetwork means the provider could not be reached or did not answer in time.
	ErrNetwork = errors.New("llm provider unreachable")
)

// Client sends chat completions to an OpenAI-compatible endpoint.
type Client interface {
	Complete(ctx context.Context, req Request) (*Response, error)
	Model() string
}

// Request contains the messages and tools for a single completion.
type Request struct {
	Messages []Message
	Tools    []Tool
}

// Message represents a conversation message.
type Message struct {
	Role    string // Only "user" is supported
	Content string
}

// Tool defines a function the LLM can call.
type Tool struct {
	Name        string
	Description string
	Parameters  any // JSON Schema for parameters
}

// ToolCall represents a tool invocation requested by the LLM.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string // JSON-encoded arguments
}

// Response contains the provider's answer.
type Response struct {
	Content          string
	ToolCalls        []ToolCall
	FinishReason     string
	PromptTokens     int
	CompletionTokens int
}

// UserMessage builds a user-role message.
func UserMessage(content string) Message {
	return Message{Role: "user", Content: content}
}

// FindToolCall returns the first tool call with the given name.
func (r *Response) FindToolCall(name string) (ToolCall, bool) {
	for _, tc := range r.ToolCalls {
		if tc.Name == name {
			return tc, true
		}
	}
	return ToolCall{}, false
}

// GenerateSchema reflects a JSON schema for T without $ref indirection,
// which is the shape function-calling endpoints accept.
func GenerateSchema[T any]() any {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

// StripCodeFence removes a surrounding ```json ... ``` markdown fence that some
// models wrap around JSON answers.
func StripCodeFence(input string) string {
	clean := strings.TrimSpace(input)

	if strings.HasPrefix(clean, "```json") {
		clean = strings.TrimPrefix(clean, "```json")
	} else if strings.HasPrefix(clean, "```") {
		clean = strings.TrimPrefix(clean, "```")
	}
	clean = strings.TrimLeft(clean, "\r\n")
	clean = strings.TrimSuffix(clean, "```")

	return strings.TrimSpace(clean)
}
