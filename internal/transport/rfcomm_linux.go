//go:build linux

package transport

import (
	"context"
	"errors"
	"fmt"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// RFCOMMOpener binds a Bluetooth RFCOMM stream socket on the local adapter.
// Channel 0 lets the kernel pick the first free channel when listening.
type RFCOMMOpener struct {
	Channel int
	Backlog int
}

func (o RFCOMMOpener) Kind() string { return KindRFCOMM }

func (o RFCOMMOpener) Open(ctx context.Context) (Endpoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if o.Channel < 0 || o.Channel > 30 {
		return nil, fmt.Errorf("rfcomm channel %d out of range 0-30", o.Channel)
	}
	backlog := o.Backlog
	if backlog <= 0 {
		backlog = 1
	}

	fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, unix.BTPROTO_RFCOMM)
	if err != nil {
		return nil, fmt.Errorf("create rfcomm socket: %w", err)
	}
	if err := unix.Bind(fd, &unix.SockaddrRFCOMM{Channel: uint8(o.Channel)}); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("bind rfcomm channel %d: %w", o.Channel, err)
	}
	if err := unix.Listen(fd, backlog); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("listen rfcomm: %w", err)
	}
	sa, err := unix.Getsockname(fd)
	if err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("getsockname rfcomm: %w", err)
	}
	local, ok := sa.(*unix.SockaddrRFCOMM)
	if !ok {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("unexpected rfcomm local address %T", sa)
	}

	// A non-blocking fd handed to os.NewFile is registered with the runtime
	// poller, so Close unblocks a pending Accept.
	f := os.NewFile(uintptr(fd), "rfcomm-listener")
	raw, err := f.SyscallConn()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("rfcomm raw conn: %w", err)
	}
	return &rfcommEndpoint{file: f, raw: raw, channel: int(local.Channel)}, nil
}

type rfcommEndpoint struct {
	file    *os.File
	raw     syscall.RawConn
	channel int
}

func (e *rfcommEndpoint) Accept() (Conn, error) {
	var (
		nfd  int
		sa   unix.Sockaddr
		aerr error
	)
	err := e.raw.Read(func(fd uintptr) bool {
		nfd, sa, aerr = unix.Accept4(int(fd), unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
		return !errors.Is(aerr, unix.EAGAIN)
	})
	if err != nil {
		if errors.Is(err, os.ErrClosed) {
			return nil, ErrClosed
		}
		return nil, fmt.Errorf("accept rfcomm: %w", err)
	}
	if aerr != nil {
		return nil, fmt.Errorf("accept rfcomm: %w", aerr)
	}
	peer := "unknown"
	if rc, ok := sa.(*unix.SockaddrRFCOMM); ok {
		peer = FormatBDAddr(rc.Addr)
	}
	return &rfcommConn{File: os.NewFile(uintptr(nfd), "rfcomm-"+peer), peer: peer}, nil
}

func (e *rfcommEndpoint) Close() error { return e.file.Close() }
func (e *rfcommEndpoint) Kind() string { return KindRFCOMM }
func (e *rfcommEndpoint) Channel() int { return e.channel }
func (e *rfcommEndpoint) Addr() string { return fmt.Sprintf("rfcomm:%d", e.channel) }

type rfcommConn struct {
	*os.File
	peer string
}

func (c *rfcommConn) Peer() string { return c.peer }
