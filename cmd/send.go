package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"github.com/spf13/cobra"

	"pressbot/internal/models"
	"pressbot/internal/protocol"
)

// sendResult is what a companion learns from one connection.
type sendResult struct {
	Status protocol.Status
	// Acked is false when the server closed without a status frame.
	Acked bool
}

func sendCmd() *cobra.Command {
	var addr string
	var timeout time.Duration

	c := &cobra.Command{
		Use:   "send <press|reset|payload>",
		Short: "Send one command frame to a TCP endpoint, like a companion would",
		Long: "The names press and reset are encoded to their wire words. " +
			"Anything else is sent verbatim, which is useful to check rejection.",
		Example: "  pressbot send press --addr 127.0.0.1:7300\n" +
			"  pressbot send go --addr raspberrypi.local:7300 --timeout 30s",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			res, err := sendFrame(ctx, addr, framePayload(args[0]))
			if err != nil {
				return err
			}
			if !res.Acked {
				fmt.Fprintln(cmd.OutOrStdout(), "sent; server closed without status")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "status: %s\n", res.Status)
			if res.Status != protocol.StatusExecuted {
				return fmt.Errorf("command %q %s", args[0], res.Status)
			}
			return nil
		},
	}
	c.Flags().StringVarP(&addr, "addr", "a", "127.0.0.1:7300", "Server address host:port")
	c.Flags().DurationVarP(&timeout, "timeout", "t", 20*time.Second, "Give up after this long (a reset takes about 15s)")
	return c
}

// framePayload maps a command name to its wire word.
func framePayload(arg string) []byte {
	var cmd models.Command
	switch arg {
	case models.CommandPress.String():
		cmd = models.CommandPress
	case models.CommandReset.String():
		cmd = models.CommandReset
	default:
		return []byte(arg)
	}
	b, _ := protocol.Encode(cmd)
	return b
}

// sendFrame writes payload as a single frame and waits for the server to
// close the connection, returning the status byte if one arrives first.
func sendFrame(ctx context.Context, addr string, payload []byte) (sendResult, error) {
	if len(payload) == 0 {
		return sendResult{}, errors.New("empty payload")
	}
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return sendResult{}, fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetDeadline(deadline); err != nil {
			return sendResult{}, err
		}
	}
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	if _, err := conn.Write(payload); err != nil {
		return sendResult{}, fmt.Errorf("write: %w", err)
	}

	var b [1]byte
	n, err := conn.Read(b[:])
	switch {
	case n == 1:
		return sendResult{Status: protocol.Status(b[0]), Acked: true}, nil
	case err == nil || errors.Is(err, io.EOF):
		return sendResult{}, nil
	case errors.Is(err, os.ErrDeadlineExceeded):
		return sendResult{}, fmt.Errorf("waiting for %s: %w", addr, context.DeadlineExceeded)
	case ctx.Err() != nil:
		return sendResult{}, fmt.Errorf("waiting for %s: %w", addr, ctx.Err())
	default:
		return sendResult{}, fmt.Errorf("read: %w", err)
	}
}
