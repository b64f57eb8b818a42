package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"pressbot/internal/device"
	"pressbot/internal/logger"
	"pressbot/internal/models"
	"pressbot/internal/transport"
)

const (
	transportHTTP = "http"
	journalWait   = 2 * time.Second
)

// Trigger is implemented by device.Actuator.
type Trigger interface {
	TryExecute(ctx context.Context, cmd models.Command) error
}

// Appender stores session records.
type Appender interface {
	Append(ctx context.Context, rec models.SessionRecord) error
}

type ControlService struct {
	trigger Trigger
	journal Appender
	log     *logger.Logger
	onFault func(error)
	now     func() time.Time
}

type ControlOption func(*ControlService)

// WithFaultHandler sets the callback that receives pin-drive failures. A
// failed drive leaves the line in an unknown state, so the handler is
// expected to stop the daemon.
func WithFaultHandler(fn func(error)) ControlOption {
	return func(s *ControlService) { s.onFault = fn }
}

func NewControlService(trigger Trigger, journal Appender, log *logger.Logger, opts ...ControlOption) *ControlService {
	if log == nil {
		log = logger.Nop()
	}
	s := &ControlService{trigger: trigger, journal: journal, log: log, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

var errNoActuator = errors.New("actuator not attached")

// Trigger runs cmd on behalf of an operator. It never waits behind a
// wireless command: a busy line returns device.ErrBusy. The attempt is
// journaled whatever the result.
func (s *ControlService) Trigger(ctx context.Context, operatorID int, cmd models.Command) (models.SessionRecord, error) {
	rec := models.SessionRecord{
		ID:        uuid.NewString(),
		StartedAt: s.now().UTC(),
		Peer:      fmt.Sprintf("operator:%d", operatorID),
		Transport: transportHTTP,
		Command:   cmd.String(),
		Source:    models.SourceOperator,
	}
	if !cmd.Known() {
		return rec, fmt.Errorf("%w: %s", device.ErrUnknownCommand, cmd)
	}
	if s.trigger == nil {
		return rec, errNoActuator
	}

	s.log.Infow("actuator_manual_trigger", "operator_id", operatorID, "command", cmd.String())
	err := s.trigger.TryExecute(ctx, cmd)
	rec.FinishedAt = s.now().UTC()

	switch {
	case err == nil:
		rec.Outcome = models.OutcomeExecuted
	case errors.Is(err, device.ErrBusy):
		rec.Outcome = models.OutcomeRejected
	case errors.Is(err, device.ErrDrive):
		rec.Outcome = models.OutcomeTransportError
	case ctx.Err() != nil, errors.Is(err, device.ErrStopped):
		rec.Outcome = models.OutcomeCanceled
	default:
		rec.Outcome = models.OutcomeTransportError
	}
	if err != nil {
		rec.Error = err.Error()
		s.log.Warnw("actuator_manual_trigger_failed", "operator_id", operatorID, "outcome", rec.Outcome, "err", err)
	}

	s.append(ctx, rec)
	if errors.Is(err, device.ErrDrive) && s.onFault != nil {
		s.log.Errorw("actuator_manual_trigger_fault", "operator_id", operatorID, "err", err)
		s.onFault(fmt.Errorf("%w: manual %s: %w", transport.ErrFault, cmd, err))
	}
	return rec, err
}

func (s *ControlService) append(ctx context.Context, rec models.SessionRecord) {
	if s.journal == nil {
		return
	}
	jctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), journalWait)
	defer cancel()
	if err := s.journal.Append(jctx, rec); err != nil {
		s.log.Warnw("journal_append_failed", "err", err, "session_id", rec.ID)
	}
}
