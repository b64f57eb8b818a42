package device

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"pressbot/internal/models"
)

// Default pulse profile. The remote device reads timing, not just level:
// two long holds separated by a short release put it into reset mode.
const (
	DefaultPressDuration = 1000 * time.Millisecond
	DefaultResetHold     = 7000 * time.Millisecond
	DefaultResetGap      = 500 * time.Millisecond
)

var (
	// ErrBusy is returned by TryExecute when an operation is already in flight.
	ErrBusy = errors.New("actuator line busy")
	// ErrDrive wraps failures of the pin-drive primitive.
	ErrDrive = errors.New("pin drive failed")
	// ErrUnknownCommand is returned for commands that have no actuation.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrStopped is returned for commands issued after Shutdown.
	ErrStopped = errors.New("actuator stopped")
)

// Driver sets the physical level of a pin.
type Driver interface {
	Drive(pin int, level models.Level) error
	Close() error
}

// Profile holds the pulse durations applied to the actuator line.
type Profile struct {
	Press     time.Duration
	ResetHold time.Duration
	ResetGap  time.Duration
}

// DefaultProfile returns the press/reset timings of the target hardware.
func DefaultProfile() Profile {
	return Profile{
		Press:     DefaultPressDuration,
		ResetHold: DefaultResetHold,
		ResetGap:  DefaultResetGap,
	}
}

// Line is one logical output. At most one timed operation runs on a line at
// any time; slot is the one-entry semaphore guarding that.
type Line struct {
	Name string
	Pin  int

	level models.Level
	slot  chan struct{}
}

func newLine(name string, pin int) *Line {
	return &Line{Name: name, Pin: pin, slot: make(chan struct{}, 1)}
}

// Actuator drives the actuator (button relay) and indicator (ready LED) lines.
type Actuator struct {
	driver    Driver
	clock     Clock
	profile   Profile
	actuator  *Line
	indicator *Line

	mu sync.Mutex // guards line levels

	// scope is cancelled by Shutdown and bounds every timed operation.
	scope context.Context
	stop  context.CancelFunc
}

// Config wires pins and timing into an Actuator.
type Config struct {
	ActuatorPin  int
	IndicatorPin int
	Profile      Profile
	Clock        Clock
}

// NewActuator returns an Actuator with both lines assumed low.
func NewActuator(driver Driver, cfg Config) *Actuator {
	clock := cfg.Clock
	if clock == nil {
		clock = RealClock{}
	}
	profile := cfg.Profile
	if profile == (Profile{}) {
		profile = DefaultProfile()
	}
	scope, stop := context.WithCancel(context.Background())
	return &Actuator{
		driver:    driver,
		clock:     clock,
		profile:   profile,
		actuator:  newLine("actuator", cfg.ActuatorPin),
		indicator: newLine("indicator", cfg.IndicatorPin),
		scope:     scope,
		stop:      stop,
	}
}

func (a *Actuator) ActuatorLine() *Line  { return a.actuator }
func (a *Actuator) IndicatorLine() *Line { return a.indicator }
func (a *Actuator) Profile() Profile     { return a.profile }

// Level returns the last level driven on line.
func (a *Actuator) Level(line *Line) models.Level {
	a.mu.Lock()
	defer a.mu.Unlock()
	return line.level
}

// Set drives line to level with no automatic return.
func (a *Actuator) Set(line *Line, level models.Level) error {
	return a.drive(line, level)
}

// Pulse drives line high for d, then low. The line is low on return on every
// path, including cancellation during the hold.
func (a *Actuator) Pulse(ctx context.Context, line *Line, d time.Duration) error {
	if err := a.drive(line, models.High); err != nil {
		_ = a.drive(line, models.Low)
		return err
	}
	slept := a.clock.Sleep(ctx, d)
	if err := a.drive(line, models.Low); err != nil {
		return err
	}
	return slept
}

// ResetSequence performs High(hold) Low(gap) High(hold) Low on line.
// Cancellation aborts the remaining steps and leaves the line low.
func (a *Actuator) ResetSequence(ctx context.Context, line *Line) error {
	if err := a.Pulse(ctx, line, a.profile.ResetHold); err != nil {
		return err
	}
	if err := a.clock.Sleep(ctx, a.profile.ResetGap); err != nil {
		return err
	}
	return a.Pulse(ctx, line, a.profile.ResetHold)
}

// Execute runs cmd on the actuator line, waiting for any in-flight
// operation to finish first.
func (a *Actuator) Execute(ctx context.Context, cmd models.Command) error {
	select {
	case a.actuator.slot <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-a.actuator.slot }()
	return a.scoped(ctx, cmd)
}

// TryExecute runs cmd only if the actuator line is idle, otherwise it
// returns ErrBusy without touching the line.
func (a *Actuator) TryExecute(ctx context.Context, cmd models.Command) error {
	select {
	case a.actuator.slot <- struct{}{}:
	default:
		return ErrBusy
	}
	defer func() { <-a.actuator.slot }()
	return a.scoped(ctx, cmd)
}

// scoped runs cmd under ctx, cut short by Shutdown. The caller holds the slot.
func (a *Actuator) scoped(ctx context.Context, cmd models.Command) error {
	if a.scope.Err() != nil {
		return ErrStopped
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	unhook := context.AfterFunc(a.scope, cancel)
	defer unhook()
	err := a.run(ctx, cmd)
	if err != nil && a.scope.Err() != nil && !errors.Is(err, ErrDrive) {
		return fmt.Errorf("%w: %w", ErrStopped, err)
	}
	return err
}

func (a *Actuator) run(ctx context.Context, cmd models.Command) error {
	switch cmd {
	case models.CommandPress:
		return a.Pulse(ctx, a.actuator, a.profile.Press)
	case models.CommandReset:
		return a.ResetSequence(ctx, a.actuator)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownCommand, cmd)
	}
}

// Shutdown cancels the operation in flight, waits for it to release the
// actuator line and drives both lines low. Later Execute and TryExecute calls
// return ErrStopped. It returns early with ctx's error if the line is not
// released in time, after forcing the lines low anyway.
func (a *Actuator) Shutdown(ctx context.Context) error {
	a.stop()
	select {
	case a.actuator.slot <- struct{}{}:
		defer func() { <-a.actuator.slot }()
		return a.ForceLow()
	case <-ctx.Done():
		return errors.Join(ctx.Err(), a.ForceLow())
	}
}

// ForceLow drives both lines low without waiting for the actuator line.
func (a *Actuator) ForceLow() error {
	return errors.Join(
		a.drive(a.actuator, models.Low),
		a.drive(a.indicator, models.Low),
	)
}

// Close stops the actuator, forces both lines low and releases the driver.
func (a *Actuator) Close() error {
	a.stop()
	return errors.Join(a.ForceLow(), a.driver.Close())
}

func (a *Actuator) drive(line *Line, level models.Level) error {
	if err := a.driver.Drive(line.Pin, level); err != nil {
		return fmt.Errorf("%w: %s pin %d %s: %w", ErrDrive, line.Name, line.Pin, level, err)
	}
	a.mu.Lock()
	line.level = level
	a.mu.Unlock()
	return nil
}
