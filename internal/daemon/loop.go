// Package daemon owns the listening endpoint lifecycle: open, advertise,
// accept one connection at a time, hand it to a session, and tear down.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"pressbot/internal/advertise"
	"pressbot/internal/device"
	"pressbot/internal/logger"
	"pressbot/internal/models"
	"pressbot/internal/session"
	"pressbot/internal/transport"
)

// ListenMode decides whether the endpoint survives across sessions.
type ListenMode string

const (
	// ModePersistent keeps one endpoint open across sessions.
	ModePersistent ListenMode = "persistent"
	// ModePerSession closes and reopens (and re-advertises) the endpoint
	// after every session.
	ModePerSession ListenMode = "per_session"
)

const (
	journalTimeout = 2 * time.Second
	// a cancelled sleep returns at once, so this only bounds a stuck driver
	releaseTimeout = 2 * time.Second
)

// Journal stores session outcomes. Failures are logged and never stop the loop.
type Journal interface {
	Append(ctx context.Context, rec models.SessionRecord) error
}

// Options wires collaborators into a Loop.
type Options struct {
	Opener       transport.Opener
	Advertiser   advertise.Advertiser
	Policy       advertise.Policy
	Backoff      time.Duration
	Clock        device.Clock
	Actuator     *device.Actuator
	Runner       *session.Runner
	Journal      Journal
	Log          *logger.Logger
	Mode         ListenMode
	ServiceName  string
	StartupPress bool
}

// Loop is the server state machine:
// Stopped -> Listening -> Accepting <-> Accepting -> Stopped(fatal).
type Loop struct {
	opener       transport.Opener
	adv          advertise.Advertiser
	registrar    *advertise.Registrar
	actuator     *device.Actuator
	runner       *session.Runner
	journal      Journal
	log          *logger.Logger
	mode         ListenMode
	name         string
	startupPress bool

	mu    sync.Mutex
	state models.ServerState
}

func New(opts Options) *Loop {
	log := opts.Log
	if log == nil {
		log = logger.Nop()
	}
	adv := opts.Advertiser
	if adv == nil {
		adv = advertise.Noop{}
	}
	policy := opts.Policy
	if policy == "" {
		policy = advertise.PolicyRetry
	}
	mode := opts.Mode
	if mode == "" {
		mode = ModePersistent
	}
	runner := opts.Runner
	if runner == nil {
		runner = session.NewRunner(session.Config{}, log)
	}
	var sleeper advertise.Sleeper
	if opts.Clock != nil {
		sleeper = opts.Clock
	}
	return &Loop{
		opener: opts.Opener,
		adv:    adv,
		registrar: &advertise.Registrar{
			Adv:     adv,
			Policy:  policy,
			Backoff: opts.Backoff,
			Clock:   sleeper,
			Log:     log,
		},
		actuator:     opts.Actuator,
		runner:       runner,
		journal:      opts.Journal,
		log:          log,
		mode:         mode,
		name:         opts.ServiceName,
		startupPress: opts.StartupPress,
		state:        models.ServerState{Transport: opts.Opener.Kind()},
	}
}

// Snapshot returns a copy of the current server state.
func (l *Loop) Snapshot() models.ServerState {
	l.mu.Lock()
	st := l.state
	l.mu.Unlock()
	st.ActuatorLevel = l.actuator.Level(l.actuator.ActuatorLine())
	st.IndicatorLevel = l.actuator.Level(l.actuator.IndicatorLine())
	return st
}

// Run serves until a transport fault or cancellation. A fault is returned
// wrapped in transport.ErrFault; cancellation returns ctx.Err(). Both lines
// are forced low and the advertisement withdrawn on every exit path.
func (l *Loop) Run(ctx context.Context) (err error) {
	l.update(func(s *models.ServerState) { s.IsRunning = true })
	defer func() {
		l.teardown()
		switch {
		case err == nil:
		case ctx.Err() != nil && errors.Is(err, ctx.Err()):
			l.log.Warnw("server_stopped_by_operator", "reason", err)
		default:
			l.log.Errorw("server_stopped", "err", err)
		}
	}()

	if l.startupPress {
		l.log.Infow("actuator_startup_press")
		if err := l.dispatch(ctx, models.CommandPress); err != nil {
			return err
		}
	}

	for {
		ep, err := l.listen(ctx)
		if err != nil {
			return err
		}
		err = l.serve(ctx, ep)
		if cerr := ep.Close(); cerr != nil {
			l.log.Warnw("server_endpoint_close_failed", "err", cerr)
		}
		l.update(func(s *models.ServerState) { s.Advertised = false })
		if err != nil {
			return err
		}
		l.log.Infow("server_endpoint_recycled", "mode", l.mode)
	}
}

// listen opens a fresh endpoint, raises the indicator and registers the
// endpoint for discovery.
func (l *Loop) listen(ctx context.Context) (*ownedEndpoint, error) {
	l.log.Infow("server_opening_endpoint", "transport", l.opener.Kind())
	raw, err := l.opener.Open(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: open endpoint: %w", transport.ErrFault, err)
	}
	ep := &ownedEndpoint{Endpoint: raw}
	l.log.Infow("server_endpoint_open", "addr", ep.Addr(), "channel", ep.Channel())

	if err := l.actuator.Set(l.actuator.IndicatorLine(), models.High); err != nil {
		_ = ep.Close()
		return nil, err
	}
	l.update(func(s *models.ServerState) {
		s.Generation++
		s.Address = ep.Addr()
		s.HasEverConnected = false
		s.Advertised = false
	})

	rec := advertise.NewRecord(l.name, ep.Kind(), ep.Channel())
	ok, err := l.registrar.Register(ctx, rec)
	if err != nil {
		_ = ep.Close()
		return nil, err
	}
	l.update(func(s *models.ServerState) { s.Advertised = ok })
	return ep, nil
}

// serve accepts connections on ep until a fatal condition. It returns nil
// only in per-session mode, asking Run for a fresh endpoint.
func (l *Loop) serve(ctx context.Context, ep *ownedEndpoint) error {
	stop := context.AfterFunc(ctx, func() { _ = ep.Close() })
	defer stop()

	for {
		l.log.Infow("server_waiting_for_connection", "addr", ep.Addr())
		conn, err := ep.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("%w: accept: %w", transport.ErrFault, err)
		}
		l.log.Infow("server_connection_accepted", "peer", conn.Peer())

		if err := l.markConnected(); err != nil {
			_ = conn.Close()
			return err
		}

		res := l.runner.Run(ctx, conn, l.dispatch)
		l.record(ctx, ep.Kind(), res)

		if res.State == session.ClosedError {
			return res.Err
		}
		if l.mode == ModePerSession {
			return nil
		}
	}
}

// markConnected lowers the indicator on the first connection of an endpoint.
func (l *Loop) markConnected() error {
	l.mu.Lock()
	first := !l.state.HasEverConnected
	l.state.HasEverConnected = true
	l.mu.Unlock()
	if !first {
		return nil
	}
	return l.actuator.Set(l.actuator.IndicatorLine(), models.Low)
}

func (l *Loop) dispatch(ctx context.Context, cmd models.Command) error {
	l.log.Infow("actuator_execute", "command", cmd.String())
	return l.actuator.Execute(ctx, cmd)
}

func (l *Loop) record(ctx context.Context, kind string, res session.Result) {
	l.update(func(s *models.ServerState) {
		s.Sessions++
		s.LastOutcome = res.Outcome
	})
	if l.journal == nil {
		return
	}
	rec := models.SessionRecord{
		ID:         uuid.NewString(),
		StartedAt:  res.StartedAt,
		FinishedAt: res.FinishedAt,
		Peer:       res.Peer,
		Transport:  kind,
		Command:    res.Command.String(),
		Outcome:    res.Outcome,
		Source:     models.SourceWireless,
	}
	if res.Err != nil {
		rec.Error = res.Err.Error()
	}
	jctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), journalTimeout)
	defer cancel()
	if err := l.journal.Append(jctx, rec); err != nil {
		l.log.Warnw("journal_append_failed", "err", err, "session_id", rec.ID)
	}
}

// teardown stops the actuator first, so an operator command still in flight
// is cut short before the lines are forced low.
func (l *Loop) teardown() {
	actx, acancel := context.WithTimeout(context.Background(), releaseTimeout)
	defer acancel()
	if err := l.actuator.Shutdown(actx); err != nil {
		l.log.Errorw("actuator_force_low_failed", "err", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), journalTimeout)
	defer cancel()
	if err := l.adv.Unregister(ctx); err != nil {
		l.log.Warnw("advertise_unregister_failed", "err", err)
	}
	l.update(func(s *models.ServerState) {
		s.IsRunning = false
		s.Advertised = false
	})
	l.log.Infow("server_teardown_complete")
}

func (l *Loop) update(fn func(s *models.ServerState)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn(&l.state)
	l.state.UpdatedAt = time.Now().UTC()
}

// ownedEndpoint closes the underlying endpoint at most once, whichever of
// cancellation or the loop gets there first.
type ownedEndpoint struct {
	transport.Endpoint
	once sync.Once
	err  error
}

func (e *ownedEndpoint) Close() error {
	e.once.Do(func() { e.err = e.Endpoint.Close() })
	return e.err
}
