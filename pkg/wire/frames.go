// Package wire defines the JSON frames exchanged over a chat connection.
package wire

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotObject is returned for frames that are valid JSON but not an object,
// such as null, arrays or bare strings.
var ErrNotObject = errors.New("frame is not a JSON object")

// Role tags a chat message with its author.
type Role string

const (
	RoleAssistant Role = "assistant"
	RoleUser      Role = "user"
)

// Outbound is the client → server frame.
type Outbound struct {
	Message string `json:"message"`
}

// Inbound is the server → client frame.
type Inbound struct {
	Content string `json:"content"`
	Role    Role   `json:"role"`
}

// Message is one rendered unit of conversation.
type Message struct {
	Content string
	Role    Role
}

// Incoming reports whether the message renders as an incoming bubble.
// Only the assistant role does; every other role, known or not, renders outgoing.
func (m Message) Incoming() bool {
	return m.Role == RoleAssistant
}

// Message converts the frame into a chat message.
func (f Inbound) Message() Message {
	return Message{Content: f.Content, Role: f.Role}
}

// EncodeOutbound serializes an outbound frame.
func EncodeOutbound(f Outbound) ([]byte, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encode outbound frame: %w", err)
	}
	return data, nil
}

// DecodeOutbound parses an outbound frame, as the server receives it.
func DecodeOutbound(data []byte) (Outbound, error) {
	var f Outbound
	if err := requireObject(data); err != nil {
		return Outbound{}, fmt.Errorf("decode outbound frame: %w", err)
	}
	if err := json.Unmarshal(data, &f); err != nil {
		return Outbound{}, fmt.Errorf("decode outbound frame: %w", err)
	}
	return f, nil
}

// EncodeInbound serializes an inbound frame, as the server sends it.
func EncodeInbound(f Inbound) ([]byte, error) {
	data, err := json.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("encode inbound frame: %w", err)
	}
	return data, nil
}

// DecodeInbound parses an inbound frame.
func DecodeInbound(data []byte) (Inbound, error) {
	var f Inbound
	if err := requireObject(data); err != nil {
		return Inbound{}, fmt.Errorf("decode inbound frame: %w", err)
	}
	if err := json.Unmarshal(data, &f); err != nil {
		return Inbound{}, fmt.Errorf("decode inbound frame: %w", err)
	}
	return f, nil
}

func requireObject(data []byte) error {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return ErrNotObject
	}
	return nil
}
