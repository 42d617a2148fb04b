package transport

import (
	"context"
	"errors"
	"testing"
	"time"

	"chatbox/pkg/wire"
)

func TestMemoryChannel_DeliverOrder(t *testing.T) {
	ch := NewMemoryChannel()
	ch.Deliver(wire.Inbound{Content: "one", Role: wire.RoleAssistant})
	ch.Deliver(wire.Inbound{Content: "two", Role: wire.RoleUser})

	ctx := context.Background()
	for _, want := range []string{"one", "two"} {
		got, err := ch.Receive(ctx)
		if err != nil {
			t.Fatalf("Receive() error: %v", err)
		}
		if got.Content != want {
			t.Errorf("Expected %q, got %q", want, got.Content)
		}
	}
}

func TestMemoryChannel_CloseUnblocksReceive(t *testing.T) {
	ch := NewMemoryChannel()
	done := make(chan error, 1)
	go func() {
		_, err := ch.Receive(context.Background())
		done <- err
	}()

	ch.Close()
	select {
	case err := <-done:
		if !errors.Is(err, ErrClosed) {
			t.Errorf("Expected ErrClosed, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Receive did not unblock after Close")
	}

	if err := ch.Send(context.Background(), wire.Outbound{Message: "x"}); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed on Send, got %v", err)
	}
}

func TestMemoryDialer_RecordsIdentifiers(t *testing.T) {
	d := NewMemoryDialer(NewMemoryChannel())
	if _, err := d.Dial(context.Background(), "a-1"); err != nil {
		t.Fatalf("Dial() error: %v", err)
	}

	d.Err = errors.New("refused")
	if _, err := d.Dial(context.Background(), "b-2"); err == nil {
		t.Error("Expected configured dial error")
	}

	dialed := d.Dialed()
	if len(dialed) != 2 || dialed[0] != "a-1" || dialed[1] != "b-2" {
		t.Errorf("Unexpected dialed identifiers: %v", dialed)
	}
}
