package models

import "fmt"

// Command is a typed command decoded from one wireless frame.
type Command int

const (
	CommandUnknown Command = iota
	CommandPress
	CommandReset
)

func (c Command) String() string {
	switch c {
	case CommandPress:
		return "press"
	case CommandReset:
		return "reset"
	default:
		return "unknown"
	}
}

// Known reports whether c maps to an actuation.
func (c Command) Known() bool {
	return c == CommandPress || c == CommandReset
}

// Level is the logical level of an output line. High means asserted.
type Level int

const (
	Low Level = iota
	High
)

func (l Level) String() string {
	if l == High {
		return "high"
	}
	return "low"
}

func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

func (l *Level) UnmarshalText(b []byte) error {
	switch string(b) {
	case "high":
		*l = High
	case "low":
		*l = Low
	default:
		return fmt.Errorf("invalid level %q", b)
	}
	return nil
}
