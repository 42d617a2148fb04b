// Package assistant turns one user message into one assistant reply.
package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"chatbox/pkg/ai"
	"chatbox/pkg/booking"
	"chatbox/pkg/history"
)

const (
	// DefaultHistoryLimit is how many stored turns are replayed to the model.
	DefaultHistoryLimit = 5

	// EmptyReply is sent when the model returns neither text nor a tool call.
	EmptyReply = "Sorry, I don't have an answer for that yet."

	roleSystem    = "system"
	roleUser      = "user"
	roleAssistant = "assistant"
)

// HistoryStore is the subset of history.Store the assistant needs.
type HistoryStore interface {
	Save(ctx context.Context, userID, role, content string) (history.Entry, error)
	Recent(ctx context.Context, userID string, limit int) ([]history.Entry, error)
}

// ToolDispatcher declares and executes tools.
type ToolDispatcher interface {
	Tools() []ai.Tool
	Dispatch(ctx context.Context, call ai.ToolCall) (string, error)
}

// Assistant answers chat messages with an LLM backed by stored history and tools.
type Assistant struct {
	provider ai.Provider
	history  HistoryStore
	tools    ToolDispatcher
	limit    int
	now      func() time.Time
}

// Option configures an Assistant.
type Option func(*Assistant)

// WithClock overrides the clock used for the date in the system prompt.
func WithClock(now func() time.Time) Option {
	return func(a *Assistant) { a.now = now }
}

// WithHistoryLimit sets how many stored turns are replayed. Zero replays none;
// negative values are ignored.
func WithHistoryLimit(n int) Option {
	return func(a *Assistant) {
		if n >= 0 {
			a.limit = n
		}
	}
}

// New creates an assistant.
func New(provider ai.Provider, store HistoryStore, tools ToolDispatcher, opts ...Option) *Assistant {
	a := &Assistant{
		provider: provider,
		history:  store,
		tools:    tools,
		limit:    DefaultHistoryLimit,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Reply records message for userID, asks the model, and records the answer.
// The recent history is read before message is stored so it is not sent twice.
func (a *Assistant) Reply(ctx context.Context, userID, message string) (string, error) {
	var recent []history.Entry
	if a.limit > 0 {
		var err error
		recent, err = a.history.Recent(ctx, userID, a.limit)
		if err != nil {
			return "", fmt.Errorf("load history: %w", err)
		}
	}
	if _, err := a.history.Save(ctx, userID, roleUser, message); err != nil {
		return "", fmt.Errorf("save user message: %w", err)
	}

	req := ai.ChatRequest{
		Messages: buildMessages(a.now(), recent, message),
	}
	if a.tools != nil {
		req.Tools = a.tools.Tools()
	}

	slog.Debug("assistant_request",
		"user_id", userID,
		"message_count", len(req.Messages),
		"history_messages", len(recent),
		"tools", len(req.Tools),
	)

	resp, err := a.provider.CreateChatCompletion(ctx, req)
	if err != nil {
		slog.Error("assistant_provider_error", "user_id", userID, "error", err)
		return "", fmt.Errorf("chat completion: %w", err)
	}

	reply := a.answer(ctx, userID, resp)

	if _, err := a.history.Save(ctx, userID, roleAssistant, reply); err != nil {
		return "", fmt.Errorf("save assistant message: %w", err)
	}

	slog.Info("assistant_reply",
		"user_id", userID,
		"model", resp.Model,
		"tool_calls", len(resp.ToolCalls),
		"reply_len", len(reply),
	)
	return reply, nil
}

// answer picks the reply text. Tool results replace the model's text.
func (a *Assistant) answer(ctx context.Context, userID string, resp ai.ChatResponse) string {
	if len(resp.ToolCalls) == 0 || a.tools == nil {
		if strings.TrimSpace(resp.Content) == "" {
			return EmptyReply
		}
		return resp.Content
	}

	results := make([]string, 0, len(resp.ToolCalls))
	for _, call := range resp.ToolCalls {
		out, err := a.tools.Dispatch(ctx, call)
		if err != nil {
			slog.Warn("assistant_tool_error", "user_id", userID, "tool", call.Name, "error", err)
			out = toolError(err)
		}
		results = append(results, out)
	}
	return strings.Join(results, "\n")
}

func toolError(err error) string {
	msg := err.Error()
	if errors.Is(err, booking.ErrUnknownTool) {
		msg = "Invalid function name."
	}
	out, _ := json.Marshal(map[string]string{"error": msg})
	return string(out)
}

// buildMessages assembles system prompt, replayed history, then the new message.
func buildMessages(now time.Time, recent []history.Entry, message string) []ai.Message {
	msgs := make([]ai.Message, 0, len(recent)+2)
	msgs = append(msgs, ai.Message{Role: roleSystem, Content: systemPrompt(now)})
	for _, e := range recent {
		role := e.Role
		if role != roleAssistant {
			role = roleUser
		}
		msgs = append(msgs, ai.Message{Role: role, Content: e.Content})
	}
	msgs = append(msgs, ai.Message{Role: roleUser, Content: message})
	return msgs
}

func systemPrompt(now time.Time) string {
	today := now.Format("2006-01-02")
	return fmt.Sprintf(`Today is %[1]s. You are a coach ticket booking consultant.
When the customer says "today", it means %[1]s.
Be friendly and help with routes, fares, departure times and bookings.
If information needed to call a tool is missing, ask for it clearly.
Do not call yourself a chatbot. Speak as a person who may still be learning the job.`, today)
}
