//go:build !linux

package device

import (
	"errors"

	"pressbot/internal/models"
)

var errNoGPIO = errors.New("gpio character devices are only available on linux")

// ChipDriver is unavailable outside linux; use the sim driver instead.
type ChipDriver struct{}

func NewChipDriver(chipName string, pins []int, activeLow bool) (*ChipDriver, error) {
	return nil, errNoGPIO
}

func (d *ChipDriver) Drive(pin int, level models.Level) error { return errNoGPIO }
func (d *ChipDriver) Close() error                            { return nil }
