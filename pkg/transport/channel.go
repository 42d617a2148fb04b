// Package transport carries chat frames between the client and a chat server.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"

	"chatbox/pkg/wire"
)

var (
	// ErrClosed is returned once the channel has been closed by either side.
	ErrClosed = errors.New("channel closed")
	// ErrMalformedFrame wraps inbound payloads that could not be decoded.
	// The channel stays usable after such an error.
	ErrMalformedFrame = errors.New("malformed frame")
)

// Channel is one bidirectional chat connection.
type Channel interface {
	Send(ctx context.Context, frame wire.Outbound) error
	Receive(ctx context.Context) (wire.Inbound, error)
	Close() error
}

// Dialer opens a Channel for a user identifier.
type Dialer interface {
	Dial(ctx context.Context, userID string) (Channel, error)
}

// ChatURL builds ws://<host>:<port>/ws/<userID>.
func ChatURL(host string, port int, userID string) string {
	u := url.URL{
		Scheme: "ws",
		Host:   net.JoinHostPort(host, strconv.Itoa(port)),
		Path:   "/ws/" + userID,
	}
	return u.String()
}

func malformed(err error) error {
	return fmt.Errorf("%w: %v", ErrMalformedFrame, err)
}
