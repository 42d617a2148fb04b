package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"chatbox/pkg/ai"
)

// ErrUnknownTool is returned when the model calls a tool nobody registered.
var ErrUnknownTool = errors.New("unknown tool")

// Handler is a single callable tool.
type Handler interface {
	Name() string
	Description() string
	Parameters() map[string]any
	Execute(ctx context.Context, args json.RawMessage) (any, error)
}

// Dispatcher routes tool calls to their handlers.
type Dispatcher struct {
	handlers map[string]Handler
	order    []string
}

// NewDispatcher creates a dispatcher with the desk tools registered.
func NewDispatcher(desk Desk) *Dispatcher {
	d := &Dispatcher{
		handlers: make(map[string]Handler),
	}

	d.Register(&ticketInfoHandler{desk: desk})
	d.Register(&bookTicketHandler{desk: desk})
	d.Register(&cancelTicketHandler{desk: desk})

	return d
}

// Register adds a handler. Re-registering a name replaces the handler.
func (d *Dispatcher) Register(h Handler) {
	if _, exists := d.handlers[h.Name()]; !exists {
		d.order = append(d.order, h.Name())
	}
	d.handlers[h.Name()] = h
}

// Tools returns the declarations of every registered handler in registration order.
func (d *Dispatcher) Tools() []ai.Tool {
	tools := make([]ai.Tool, 0, len(d.order))
	for _, name := range d.order {
		h := d.handlers[name]
		tools = append(tools, ai.Tool{
			Name:        h.Name(),
			Description: h.Description(),
			Parameters:  h.Parameters(),
		})
	}
	return tools
}

// Dispatch executes call and returns its result encoded as JSON.
func (d *Dispatcher) Dispatch(ctx context.Context, call ai.ToolCall) (string, error) {
	h, ok := d.handlers[call.Name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTool, call.Name)
	}

	args := json.RawMessage(strings.TrimSpace(call.Arguments))
	if len(args) == 0 {
		args = json.RawMessage("{}")
	}

	result, err := h.Execute(ctx, args)
	if err != nil {
		return "", fmt.Errorf("%s: %w", call.Name, err)
	}

	out, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("encode %s result: %w", call.Name, err)
	}
	slog.Debug("tool_dispatched", "tool", call.Name, "call_id", call.ID)
	return string(out), nil
}

func decodeArgs(args json.RawMessage, v any) error {
	if err := json.Unmarshal(args, v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidArguments, err)
	}
	return nil
}

func stringProp(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

type ticketInfoHandler struct{ desk Desk }

func (h *ticketInfoHandler) Name() string { return "get_ticket_info" }

func (h *ticketInfoHandler) Description() string {
	return "Look up coach tickets for a specific route."
}

func (h *ticketInfoHandler) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"route": stringProp("Route to look up, for example: Hanoi - Haiphong"),
			"date":  stringProp("Departure date, formatted YYYY-MM-DD"),
			"time":  stringProp("Departure time, for example: 08:00"),
		},
		"required": []string{"route", "date", "time"},
	}
}

func (h *ticketInfoHandler) Execute(ctx context.Context, args json.RawMessage) (any, error) {
	var in struct {
		Route string `json:"route"`
		Date  string `json:"date"`
		Time  string `json:"time"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return nil, err
	}
	return h.desk.GetTicketInfo(ctx, in.Route, in.Date, in.Time)
}

type bookTicketHandler struct{ desk Desk }

func (h *bookTicketHandler) Name() string { return "book_ticket" }

func (h *bookTicketHandler) Description() string { return "Book tickets for a customer." }

func (h *bookTicketHandler) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"route": stringProp("Route to book"),
			"time":  stringProp("Departure time, for example: 08:00"),
			"seats": map[string]any{"type": "integer", "description": "Number of seats to book"},
		},
		"required": []string{"route", "time", "seats"},
	}
}

func (h *bookTicketHandler) Execute(ctx context.Context, args json.RawMessage) (any, error) {
	var in struct {
		Route string `json:"route"`
		Time  string `json:"time"`
		Seats int    `json:"seats"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return nil, err
	}
	return h.desk.BookTicket(ctx, in.Route, in.Time, in.Seats)
}

type cancelTicketHandler struct{ desk Desk }

func (h *cancelTicketHandler) Name() string { return "cancel_ticket" }

func (h *cancelTicketHandler) Description() string { return "Cancel a booked ticket." }

func (h *cancelTicketHandler) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"ticket_id": stringProp("Identifier of the ticket to cancel"),
		},
		"required": []string{"ticket_id"},
	}
}

func (h *cancelTicketHandler) Execute(ctx context.Context, args json.RawMessage) (any, error) {
	var in struct {
		TicketID string `json:"ticket_id"`
	}
	if err := decodeArgs(args, &in); err != nil {
		return nil, err
	}
	return h.desk.CancelTicket(ctx, in.TicketID)
}
