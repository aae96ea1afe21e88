// Package llm defines the language model contract used by the extraction
// pipeline and an OpenAI-compatible implementation built on langchaingo.
package llm

import (
	"context"
)

// Role is the author of a chat message
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Attachment is binary content sent alongside a message, e.g. a PDF
type Attachment struct {
	Filename string
	MIMEType string
	Data     []byte
}

// ToolCall is a function invocation requested by the model
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// Message is one turn of a conversation
type Message struct {
	Role        Role
	Text        string
	Attachments []Attachment
	// ToolCalls is set on assistant messages that requested tools
	ToolCalls []ToolCall
	// ToolCallID and ToolName are set on tool result messages
	ToolCallID string
	ToolName   string
}

// Tool describes a function the model may call
type Tool struct {
	Name        string
	Description string
	// Parameters is a JSON schema object
	Parameters map[string]any
}

// Request is a single completion request
type Request struct {
	Messages    []Message
	Tools       []Tool
	JSON        bool
	Temperature float64
}

// ResponseKind tags what a completion returned
type ResponseKind int

const (
	// ResponseText is a direct text (or JSON) answer
	ResponseText ResponseKind = iota
	// ResponseToolCall asks the caller to run one or more tools
	ResponseToolCall
)

// Response is the tagged result of a completion
type Response struct {
	Kind      ResponseKind
	Text      string
	ToolCalls []ToolCall
}

// Model completes chat requests
type Model interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}

// Embedder turns text into vectors. The method set matches langchaingo's
// embeddings.Embedder so its implementations can be used directly.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// System builds a system message
func System(text string) Message {
	return Message{Role: RoleSystem, Text: text}
}

// User builds a user message
func User(text string, attachments ...Attachment) Message {
	return Message{Role: RoleUser, Text: text, Attachments: attachments}
}

// CompleteText sends a single user prompt with an optional system prompt and
// returns the text of the answer
func CompleteText(ctx context.Context, m Model, system, prompt string, json bool) (string, error) {
	msgs := make([]Message, 0, 2)
	if system != "" {
		msgs = append(msgs, System(system))
	}
	msgs = append(msgs, User(prompt))
	resp, err := m.Complete(ctx, Request{Messages: msgs, JSON: json})
	if err != nil {
		return "", err
	}
	return resp.Text, nil
}
