package device

import (
	"sync"
	"time"

	"pressbot/internal/models"
)

// Transition is one recorded level change.
type Transition struct {
	Pin   int
	Level models.Level
	At    time.Time
}

// SimDriver keeps pin levels in memory and records every transition.
// It runs the daemon on machines without GPIO and backs the tests.
type SimDriver struct {
	clock Clock

	mu          sync.Mutex
	levels      map[int]models.Level
	transitions []Transition
	failPin     map[int]error
}

// NewSimDriver returns a driver stamping transitions with clock.
func NewSimDriver(clock Clock) *SimDriver {
	if clock == nil {
		clock = RealClock{}
	}
	return &SimDriver{
		clock:   clock,
		levels:  make(map[int]models.Level),
		failPin: make(map[int]error),
	}
}

func (d *SimDriver) Drive(pin int, level models.Level) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.failPin[pin]; err != nil {
		return err
	}
	d.levels[pin] = level
	d.transitions = append(d.transitions, Transition{Pin: pin, Level: level, At: d.clock.Now()})
	return nil
}

func (d *SimDriver) Close() error { return nil }

// FailPin makes every subsequent Drive on pin return err. A nil err clears it.
func (d *SimDriver) FailPin(pin int, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err == nil {
		delete(d.failPin, pin)
		return
	}
	d.failPin[pin] = err
}

// Level returns the current level of pin.
func (d *SimDriver) Level(pin int) models.Level {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.levels[pin]
}

// Transitions returns the recorded transitions of pin in order.
func (d *SimDriver) Transitions(pin int) []Transition {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []Transition
	for _, t := range d.transitions {
		if t.Pin == pin {
			out = append(out, t)
		}
	}
	return out
}
