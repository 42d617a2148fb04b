package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"chatbox/pkg/ai"
	"chatbox/pkg/booking"
	"chatbox/pkg/history"
)

type stubProvider struct {
	resp ai.ChatResponse
	err  error
	reqs []ai.ChatRequest
}

func (s *stubProvider) CreateChatCompletion(ctx context.Context, req ai.ChatRequest) (ai.ChatResponse, error) {
	s.reqs = append(s.reqs, req)
	return s.resp, s.err
}

var fixedNow = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

func newTestAssistant(t *testing.T, p ai.Provider) (*Assistant, *history.Store) {
	t.Helper()
	store, err := history.Open(filepath.Join(t.TempDir(), "chat.db"))
	if err != nil {
		t.Fatalf("history.Open() error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	a := New(p, store, booking.NewDispatcher(booking.NewFakeDesk()), WithClock(func() time.Time { return fixedNow }))
	return a, store
}

func TestReply_TextAnswer(t *testing.T) {
	p := &stubProvider{resp: ai.ChatResponse{Content: "Hello! Where are you headed?"}}
	a, store := newTestAssistant(t, p)

	reply, err := a.Reply(context.Background(), "ann-1", "hi")
	if err != nil {
		t.Fatalf("Reply() error: %v", err)
	}
	if reply != "Hello! Where are you headed?" {
		t.Errorf("Unexpected reply %q", reply)
	}

	if len(p.reqs) != 1 {
		t.Fatalf("Expected one provider call, got %d", len(p.reqs))
	}
	req := p.reqs[0]
	if len(req.Messages) != 2 {
		t.Fatalf("Expected system + user messages, got %+v", req.Messages)
	}
	if req.Messages[0].Role != "system" || !strings.Contains(req.Messages[0].Content, "Today is 2026-10-19") {
		t.Errorf("Expected dated system prompt, got %+v", req.Messages[0])
	}
	if req.Messages[1].Role != "user" || req.Messages[1].Content != "hi" {
		t.Errorf("Expected user message last, got %+v", req.Messages[1])
	}
	if len(req.Tools) != 3 {
		t.Errorf("Expected 3 booking tools, got %d", len(req.Tools))
	}

	stored, _ := store.Recent(context.Background(), "ann-1", 10)
	if len(stored) != 2 || stored[0].Role != "user" || stored[1].Role != "assistant" {
		t.Fatalf("Expected user then assistant stored, got %+v", stored)
	}
	if stored[1].Content != reply {
		t.Errorf("Expected stored reply %q, got %q", reply, stored[1].Content)
	}
}

func TestReply_ReplaysRecentHistory(t *testing.T) {
	p := &stubProvider{resp: ai.ChatResponse{Content: "ok"}}
	a, store := newTestAssistant(t, p)
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		if _, err := a.Reply(ctx, "ann-1", "turn"); err != nil {
			t.Fatalf("Reply() error: %v", err)
		}
	}
	if _, err := store.Save(ctx, "bob-2", "user", "not for ann"); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	if _, err := a.Reply(ctx, "ann-1", "latest"); err != nil {
		t.Fatalf("Reply() error: %v", err)
	}
	req := p.reqs[len(p.reqs)-1]
	// system + 5 replayed + new message
	if len(req.Messages) != 7 {
		t.Fatalf("Expected 7 messages, got %d", len(req.Messages))
	}
	if req.Messages[1].Role != "assistant" {
		t.Errorf("Expected oldest replayed turn to be assistant, got %q", req.Messages[1].Role)
	}
	if last := req.Messages[6]; last.Content != "latest" || last.Role != "user" {
		t.Errorf("Expected new message last, got %+v", last)
	}
	for _, m := range req.Messages {
		if m.Content == "not for ann" || (m.Content == "latest" && m != req.Messages[6]) {
			t.Errorf("Unexpected replayed message %+v", m)
		}
	}
}

func TestReply_HistoryLimitOption(t *testing.T) {
	p := &stubProvider{resp: ai.ChatResponse{Content: "ok"}}
	store, err := history.Open(filepath.Join(t.TempDir(), "chat.db"))
	if err != nil {
		t.Fatalf("history.Open() error: %v", err)
	}
	defer store.Close()

	a := New(p, store, nil, WithHistoryLimit(2), WithHistoryLimit(-1))
	ctx := context.Background()
	_, _ = a.Reply(ctx, "ann-1", "one")
	_, _ = a.Reply(ctx, "ann-1", "two")

	req := p.reqs[len(p.reqs)-1]
	if len(req.Messages) != 4 {
		t.Fatalf("Expected system + 2 replayed + new, got %d", len(req.Messages))
	}
	if len(req.Tools) != 0 {
		t.Errorf("Expected no tools without a dispatcher, got %d", len(req.Tools))
	}
}

func TestReply_ZeroHistoryLimitReplaysNothing(t *testing.T) {
	p := &stubProvider{resp: ai.ChatResponse{Content: "ok"}}
	store, err := history.Open(filepath.Join(t.TempDir(), "chat.db"))
	if err != nil {
		t.Fatalf("history.Open() error: %v", err)
	}
	defer store.Close()

	a := New(p, store, nil, WithHistoryLimit(0))
	ctx := context.Background()
	_, _ = a.Reply(ctx, "ann-1", "one")
	_, _ = a.Reply(ctx, "ann-1", "two")

	req := p.reqs[len(p.reqs)-1]
	if len(req.Messages) != 2 {
		t.Fatalf("Expected system + new message only, got %+v", req.Messages)
	}
	if req.Messages[1].Content != "two" {
		t.Errorf("Expected the new message last, got %q", req.Messages[1].Content)
	}
	stored, _ := store.Recent(ctx, "ann-1", 10)
	if len(stored) != 4 {
		t.Errorf("Expected turns still stored, got %d", len(stored))
	}
}

func TestReply_ToolCallResultBecomesReply(t *testing.T) {
	p := &stubProvider{resp: ai.ChatResponse{ToolCalls: []ai.ToolCall{{
		ID:        "call-1",
		Name:      "book_ticket",
		Arguments: `{"route":"Hanoi - Haiphong","time":"08:00","seats":2}`,
	}}}}
	a, store := newTestAssistant(t, p)

	reply, err := a.Reply(context.Background(), "ann-1", "book 2 seats at 8")
	if err != nil {
		t.Fatalf("Reply() error: %v", err)
	}

	var got booking.Booking
	if err := json.Unmarshal([]byte(reply), &got); err != nil {
		t.Fatalf("Expected JSON booking reply, got %q: %v", reply, err)
	}
	if got.TicketID != "ABC12345" || got.TotalPrice != 300000 {
		t.Errorf("Unexpected booking %+v", got)
	}

	stored, _ := store.Recent(context.Background(), "ann-1", 10)
	if len(stored) != 2 || stored[1].Content != reply {
		t.Errorf("Expected tool result stored as assistant turn, got %+v", stored)
	}
}

func TestReply_UnknownToolReportsError(t *testing.T) {
	p := &stubProvider{resp: ai.ChatResponse{ToolCalls: []ai.ToolCall{{Name: "refund_everything", Arguments: "{}"}}}}
	a, _ := newTestAssistant(t, p)

	reply, err := a.Reply(context.Background(), "ann-1", "refund")
	if err != nil {
		t.Fatalf("Reply() error: %v", err)
	}
	if reply != `{"error":"Invalid function name."}` {
		t.Errorf("Unexpected reply %q", reply)
	}
}

func TestReply_EmptyAnswer(t *testing.T) {
	a, _ := newTestAssistant(t, &stubProvider{})

	reply, err := a.Reply(context.Background(), "ann-1", "hi")
	if err != nil {
		t.Fatalf("Reply() error: %v", err)
	}
	if reply != EmptyReply {
		t.Errorf("Expected EmptyReply, got %q", reply)
	}
}

func TestReply_ProviderError(t *testing.T) {
	providerErr := errors.New("rate limited")
	a, store := newTestAssistant(t, &stubProvider{err: providerErr})

	_, err := a.Reply(context.Background(), "ann-1", "hi")
	if !errors.Is(err, providerErr) {
		t.Fatalf("Expected wrapped provider error, got %v", err)
	}

	stored, _ := store.Recent(context.Background(), "ann-1", 10)
	if len(stored) != 1 || stored[0].Role != "user" {
		t.Errorf("Expected only the user turn stored, got %+v", stored)
	}
}

type failingStore struct{}

func (f *failingStore) Save(ctx context.Context, userID, role, content string) (history.Entry, error) {
	return history.Entry{}, errors.New("disk full")
}

func (f *failingStore) Recent(ctx context.Context, userID string, limit int) ([]history.Entry, error) {
	return nil, nil
}

func TestReply_SaveFailureAbortsTurn(t *testing.T) {
	p := &stubProvider{resp: ai.ChatResponse{Content: "unused"}}
	a := New(p, &failingStore{}, nil)

	if _, err := a.Reply(context.Background(), "ann-1", "hi"); err == nil {
		t.Fatal("Expected save failure to be returned")
	}
	if len(p.reqs) != 0 {
		t.Error("Expected provider not to be called after a failed save")
	}
}
