package ai

import "context"

// Message represents a single chat message for LLM requests.
type Message struct {
	Role    string
	Content string
}

// Tool declares a function the model may call. Parameters is a JSON schema object.
type Tool struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// ToolCall is a function invocation requested by the model. Arguments holds raw JSON.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

// ChatRequest defines the input to an LLM chat completion.
type ChatRequest struct {
	Model       string
	Messages    []Message
	Tools       []Tool
	Temperature *float64
	MaxTokens   *int
}

// ChatResponse is a normalized response from an LLM.
type ChatResponse struct {
	Content   string
	Model     string
	ToolCalls []ToolCall
}

// Provider defines the LLM interface used by the server.
type Provider interface {
	CreateChatCompletion(ctx context.Context, req ChatRequest) (ChatResponse, error)
}
