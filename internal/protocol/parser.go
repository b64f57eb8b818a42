// Package protocol decodes the single-frame command protocol spoken over the
// wireless channel: one connection carries one short ASCII command.
package protocol

import (
	"bytes"

	"pressbot/internal/models"
)

const (
	// MaxCommandLen bounds accepted payloads; longer frames are dropped before
	// any comparison.
	MaxCommandLen = 10
	// ReadBufferSize caps a single read from the connection. It is a buffer
	// size, not a framing length.
	ReadBufferSize = 1024
)

var vocabulary = map[string]models.Command{
	"go":    models.CommandPress,
	"reset": models.CommandReset,
}

// Options relax matching. The zero value matches exactly and case-sensitively.
type Options struct {
	TrimSpace       bool
	CaseInsensitive bool
}

// Parser maps payloads to commands.
type Parser struct {
	opts Options
}

func NewParser(opts Options) *Parser {
	return &Parser{opts: opts}
}

// Parse returns the command for payload, or CommandUnknown.
func (p *Parser) Parse(payload []byte) models.Command {
	if len(payload) == 0 || len(payload) > MaxCommandLen {
		return models.CommandUnknown
	}
	if p.opts.TrimSpace {
		payload = bytes.TrimSpace(payload)
	}
	if p.opts.CaseInsensitive {
		payload = bytes.ToLower(payload)
	}
	if cmd, ok := vocabulary[string(payload)]; ok {
		return cmd
	}
	return models.CommandUnknown
}

// Parse matches payload with the exact, case-sensitive default rules.
func Parse(payload []byte) models.Command {
	return (&Parser{}).Parse(payload)
}

// Encode returns the wire form of a known command.
func Encode(cmd models.Command) ([]byte, bool) {
	for word, c := range vocabulary {
		if c == cmd {
			return []byte(word), true
		}
	}
	return nil, false
}
