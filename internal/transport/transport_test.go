package transport

import (
	"context"
	"errors"
	"io"
	"net"
	"testing"
	"time"
)

func TestFormatBDAddr(t *testing.T) {
	got := FormatBDAddr([6]uint8{0xFF, 0xEE, 0xDD, 0xCC, 0xBB, 0xAA})
	if got != "AA:BB:CC:DD:EE:FF" {
		t.Fatalf("got %q", got)
	}
}

func TestTCPEndpoint_AcceptReadClose(t *testing.T) {
	ep, err := TCPOpener{Address: "127.0.0.1:0"}.Open(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer ep.Close()

	if ep.Kind() != KindTCP || ep.Channel() == 0 {
		t.Fatalf("unexpected endpoint kind=%s channel=%d", ep.Kind(), ep.Channel())
	}

	go func() {
		c, err := net.Dial("tcp", ep.Addr())
		if err != nil {
			return
		}
		_, _ = c.Write([]byte("go"))
		_ = c.Close()
	}()

	conn, err := ep.Accept()
	if err != nil {
		t.Fatalf("accept: %v", err)
	}
	defer conn.Close()
	if conn.Peer() == "" {
		t.Fatalf("empty peer")
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	b, err := io.ReadAll(conn)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(b) != "go" {
		t.Fatalf("got %q", b)
	}
}

func TestTCPEndpoint_AcceptAfterClose(t *testing.T) {
	ep, err := TCPOpener{Address: "127.0.0.1:0"}.Open(context.Background())
	if err != nil {
		t.Fatalf("open: %v", err)
	}

	errc := make(chan error, 1)
	go func() {
		_, err := ep.Accept()
		errc <- err
	}()
	time.Sleep(20 * time.Millisecond)
	_ = ep.Close()

	select {
	case err := <-errc:
		if !errors.Is(err, ErrClosed) {
			t.Fatalf("expected ErrClosed, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("accept did not unblock after close")
	}
}
