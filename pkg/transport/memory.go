package transport

import (
	"context"
	"sync"

	"chatbox/pkg/wire"
)

// MemoryChannel is an in-process Channel. Frames pushed with Deliver are
// returned by Receive in order; frames passed to Send are recorded.
type MemoryChannel struct {
	mu     sync.Mutex
	sent   []wire.Outbound
	events chan memoryEvent
	closed chan struct{}
	once   sync.Once
}

type memoryEvent struct {
	frame wire.Inbound
	err   error
}

// NewMemoryChannel returns an open channel buffering up to 64 undelivered frames.
func NewMemoryChannel() *MemoryChannel {
	return &MemoryChannel{
		events: make(chan memoryEvent, 64),
		closed: make(chan struct{}),
	}
}

// Send records frame.
func (m *MemoryChannel) Send(ctx context.Context, frame wire.Outbound) error {
	select {
	case <-m.closed:
		return ErrClosed
	default:
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, frame)
	return nil
}

// Receive returns the next delivered frame or error.
func (m *MemoryChannel) Receive(ctx context.Context) (wire.Inbound, error) {
	select {
	case ev := <-m.events:
		return ev.frame, ev.err
	case <-m.closed:
		return wire.Inbound{}, ErrClosed
	case <-ctx.Done():
		return wire.Inbound{}, ctx.Err()
	}
}

// Close unblocks pending receives. Closing twice is a no-op.
func (m *MemoryChannel) Close() error {
	m.once.Do(func() { close(m.closed) })
	return nil
}

// Deliver queues an inbound frame.
func (m *MemoryChannel) Deliver(frame wire.Inbound) {
	m.events <- memoryEvent{frame: frame}
}

// Fail queues an error to be returned by the next Receive.
func (m *MemoryChannel) Fail(err error) {
	m.events <- memoryEvent{err: err}
}

// Sent returns a copy of the frames sent so far.
func (m *MemoryChannel) Sent() []wire.Outbound {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]wire.Outbound, len(m.sent))
	copy(out, m.sent)
	return out
}

// IsClosed reports whether Close was called.
func (m *MemoryChannel) IsClosed() bool {
	select {
	case <-m.closed:
		return true
	default:
		return false
	}
}

// MemoryDialer hands out a fixed channel and records dialed identifiers.
type MemoryDialer struct {
	Channel *MemoryChannel
	Err     error

	mu     sync.Mutex
	dialed []string
}

// NewMemoryDialer returns a dialer serving ch.
func NewMemoryDialer(ch *MemoryChannel) *MemoryDialer {
	return &MemoryDialer{Channel: ch}
}

// Dial records userID and returns the configured channel or error.
func (d *MemoryDialer) Dial(ctx context.Context, userID string) (Channel, error) {
	d.mu.Lock()
	d.dialed = append(d.dialed, userID)
	d.mu.Unlock()
	if d.Err != nil {
		return nil, d.Err
	}
	return d.Channel, nil
}

// Dialed returns the identifiers passed to Dial.
func (d *MemoryDialer) Dialed() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.dialed...)
}

var (
	_ Channel = (*MemoryChannel)(nil)
	_ Dialer  = (*MemoryDialer)(nil)
)
