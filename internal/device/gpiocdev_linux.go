//go:build linux

package device

import (
	"errors"
	"fmt"
	"sync"

	"github.com/warthog618/go-gpiocdev"

	"pressbot/internal/models"
)

const consumerName = "pressbot"

// ChipDriver drives output lines of a GPIO character device such as gpiochip0.
type ChipDriver struct {
	chip *gpiocdev.Chip

	mu    sync.Mutex // guards lines, which is nil once closed
	lines map[int]*gpiocdev.Line
}

var errChipClosed = errors.New("gpio chip closed")

// NewChipDriver requests pins as outputs, initially low, on the named chip.
func NewChipDriver(chipName string, pins []int, activeLow bool) (*ChipDriver, error) {
	chip, err := gpiocdev.NewChip(chipName, gpiocdev.WithConsumer(consumerName))
	if err != nil {
		return nil, fmt.Errorf("open gpio chip %q: %w", chipName, err)
	}
	d := &ChipDriver{chip: chip, lines: make(map[int]*gpiocdev.Line, len(pins))}
	for _, pin := range pins {
		opts := []gpiocdev.LineReqOption{gpiocdev.AsOutput(0)}
		if activeLow {
			opts = append(opts, gpiocdev.AsActiveLow)
		}
		line, err := chip.RequestLine(pin, opts...)
		if err != nil {
			_ = d.Close()
			return nil, fmt.Errorf("request gpio line %d on %q: %w", pin, chipName, err)
		}
		d.lines[pin] = line
	}
	return d, nil
}

func (d *ChipDriver) Drive(pin int, level models.Level) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.lines == nil {
		return errChipClosed
	}
	line, ok := d.lines[pin]
	if !ok {
		return fmt.Errorf("gpio line %d not requested", pin)
	}
	v := 0
	if level == models.High {
		v = 1
	}
	return line.SetValue(v)
}

// Close drives every requested line low and releases the chip.
func (d *ChipDriver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.lines == nil {
		return nil
	}
	var errs []error
	for pin, line := range d.lines {
		if err := line.SetValue(0); err != nil {
			errs = append(errs, fmt.Errorf("release line %d: %w", pin, err))
		}
		if err := line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close line %d: %w", pin, err))
		}
	}
	d.lines = nil
	if d.chip != nil {
		if err := d.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}
	return errors.Join(errs...)
}
