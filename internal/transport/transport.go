// Package transport provides the listening endpoints the daemon accepts
// companion connections on: Bluetooth RFCOMM on linux, and plain TCP for
// development and tests.
package transport

import (
	"context"
	"errors"
	"io"
	"time"
)

const (
	KindRFCOMM = "rfcomm"
	KindTCP    = "tcp"
)

var (
	// ErrClosed is returned by Accept after the endpoint has been closed.
	ErrClosed = errors.New("endpoint closed")
	// ErrFault marks failures of the channel itself (accept or read). They
	// stop the server.
	ErrFault = errors.New("transport fault")
)

// Conn is one accepted client connection.
type Conn interface {
	io.ReadWriteCloser
	// Peer identifies the remote side; opaque to callers.
	Peer() string
	SetReadDeadline(t time.Time) error
}

// Endpoint is a listening channel. Accept blocks until a peer connects or
// the endpoint is closed.
type Endpoint interface {
	Accept() (Conn, error)
	Close() error
	Kind() string
	// Channel is the assigned RFCOMM channel or TCP port.
	Channel() int
	Addr() string
}

// Opener creates a fresh endpoint each time it is called.
type Opener interface {
	Open(ctx context.Context) (Endpoint, error)
	Kind() string
}
