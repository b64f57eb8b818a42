// Package session runs one accepted connection: read a single payload,
// parse it, dispatch it, close.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"time"

	"pressbot/internal/logger"
	"pressbot/internal/models"
	"pressbot/internal/protocol"
	"pressbot/internal/transport"
)

// State is the position of a session in its lifecycle.
type State int

const (
	AwaitingData State = iota
	Dispatching
	Closed
	ClosedError
)

func (s State) String() string {
	switch s {
	case AwaitingData:
		return "awaiting_data"
	case Dispatching:
		return "dispatching"
	case Closed:
		return "closed"
	default:
		return "closed_error"
	}
}

// Dispatch executes a recognized command. It may block for the whole pulse.
type Dispatch func(ctx context.Context, cmd models.Command) error

// Result describes how a session ended.
type Result struct {
	Peer       string
	Command    models.Command
	Outcome    models.Outcome
	State      State
	Err        error
	StartedAt  time.Time
	FinishedAt time.Time
}

// Config tunes session behaviour.
type Config struct {
	Parser *protocol.Parser
	// ReadTimeout bounds the wait for the payload. Zero waits indefinitely,
	// so a silent peer holds the server until it disconnects.
	ReadTimeout time.Duration
	// Ack writes a one-byte status frame before closing.
	Ack bool
}

// Runner executes sessions with a fixed configuration.
type Runner struct {
	parser      *protocol.Parser
	readTimeout time.Duration
	ack         bool
	log         *logger.Logger
	now         func() time.Time
}

func NewRunner(cfg Config, log *logger.Logger) *Runner {
	parser := cfg.Parser
	if parser == nil {
		parser = protocol.NewParser(protocol.Options{})
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Runner{
		parser:      parser,
		readTimeout: cfg.ReadTimeout,
		ack:         cfg.Ack,
		log:         log,
		now:         time.Now,
	}
}

// Run handles exactly one command on conn and always closes it before
// returning. Result.Err is non-nil only for the ClosedError state.
func (r *Runner) Run(ctx context.Context, conn transport.Conn, dispatch Dispatch) (res Result) {
	res = Result{Peer: conn.Peer(), StartedAt: r.now(), State: AwaitingData}

	// closing the connection is the only way to interrupt a blocked read
	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer func() {
		stop()
		if r.ack && res.Outcome != models.OutcomeCanceled && res.Outcome != models.OutcomePeerClosed {
			if _, err := conn.Write([]byte{byte(protocol.StatusFor(res.Outcome))}); err != nil {
				r.log.Debugw("session_ack_failed", "peer", res.Peer, "err", err)
			}
		}
		if err := conn.Close(); err != nil && !errors.Is(err, os.ErrClosed) && !errors.Is(err, net.ErrClosed) {
			r.log.Debugw("session_close_failed", "peer", res.Peer, "err", err)
		}
		res.FinishedAt = r.now()
		r.log.Infow("session_closed",
			"peer", res.Peer, "command", res.Command.String(), "outcome", res.Outcome, "state", res.State.String())
	}()

	payload, err := r.read(conn)
	switch {
	case ctx.Err() != nil:
		return r.finish(res, models.OutcomeCanceled, ctx.Err())
	case errors.Is(err, os.ErrDeadlineExceeded):
		r.log.Warnw("session_read_timeout", "peer", res.Peer, "timeout", r.readTimeout)
		return r.finish(res, models.OutcomeTimedOut, nil)
	case err != nil:
		return r.finish(res, models.OutcomeTransportError, fmt.Errorf("%w: read from %s: %w", transport.ErrFault, res.Peer, err))
	case len(payload) == 0:
		r.log.Infow("session_peer_closed", "peer", res.Peer)
		return r.finish(res, models.OutcomePeerClosed, nil)
	}

	r.log.Infow("session_data_received", "peer", res.Peer, "bytes", len(payload), "data", preview(payload))
	res.Command = r.parser.Parse(payload)
	if !res.Command.Known() {
		r.log.Infow("session_command_dropped", "peer", res.Peer, "bytes", len(payload))
		return r.finish(res, models.OutcomeRejected, nil)
	}

	res.State = Dispatching
	if err := dispatch(ctx, res.Command); err != nil {
		if ctx.Err() != nil {
			return r.finish(res, models.OutcomeCanceled, ctx.Err())
		}
		return r.finish(res, models.OutcomeTransportError, fmt.Errorf("dispatch %s: %w", res.Command, err))
	}
	return r.finish(res, models.OutcomeExecuted, nil)
}

// read performs a single bounded read. A zero-byte read or EOF before any
// data means the peer closed first.
func (r *Runner) read(conn transport.Conn) ([]byte, error) {
	if r.readTimeout > 0 {
		if err := conn.SetReadDeadline(r.now().Add(r.readTimeout)); err != nil {
			return nil, err
		}
	}
	r.log.Debugw("session_waiting_for_data")
	buf := make([]byte, protocol.ReadBufferSize)
	n, err := conn.Read(buf)
	if n > 0 {
		return buf[:n], nil
	}
	if err == nil || errors.Is(err, io.EOF) {
		return nil, nil
	}
	return nil, err
}

func (r *Runner) finish(res Result, outcome models.Outcome, err error) Result {
	res.Outcome = outcome
	res.Err = err
	res.State = Closed
	if outcome == models.OutcomeTransportError || outcome == models.OutcomeCanceled {
		res.State = ClosedError
	}
	return res
}

// preview keeps log lines short for oversized frames.
func preview(b []byte) string {
	const limit = 16
	if len(b) > limit {
		return fmt.Sprintf("%q...", b[:limit])
	}
	return fmt.Sprintf("%q", b)
}
