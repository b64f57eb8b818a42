package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// TCPOpener listens on a TCP address such as ":7300" or "127.0.0.1:0".
type TCPOpener struct {
	Address string
}

func (o TCPOpener) Kind() string { return KindTCP }

func (o TCPOpener) Open(ctx context.Context) (Endpoint, error) {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", o.Address)
	if err != nil {
		return nil, fmt.Errorf("listen tcp %s: %w", o.Address, err)
	}
	return &tcpEndpoint{ln: ln}, nil
}

type tcpEndpoint struct {
	ln net.Listener
}

func (e *tcpEndpoint) Accept() (Conn, error) {
	c, err := e.ln.Accept()
	if err != nil {
		if errors.Is(err, net.ErrClosed) {
			return nil, ErrClosed
		}
		return nil, fmt.Errorf("accept tcp: %w", err)
	}
	return &tcpConn{Conn: c}, nil
}

func (e *tcpEndpoint) Close() error { return e.ln.Close() }
func (e *tcpEndpoint) Kind() string { return KindTCP }
func (e *tcpEndpoint) Addr() string { return e.ln.Addr().String() }

func (e *tcpEndpoint) Channel() int {
	if a, ok := e.ln.Addr().(*net.TCPAddr); ok {
		return a.Port
	}
	return 0
}

type tcpConn struct {
	net.Conn
}

func (c *tcpConn) Peer() string { return c.RemoteAddr().String() }
