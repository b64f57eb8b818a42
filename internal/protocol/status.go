package protocol

import "pressbot/internal/models"

// Status is the optional one-byte frame written back before the server
// closes a connection.
type Status byte

const (
	StatusExecuted Status = 0x00
	StatusRejected Status = 0x01
	StatusFailed   Status = 0x02
)

// StatusFor maps a session outcome to its status frame.
func StatusFor(o models.Outcome) Status {
	switch o {
	case models.OutcomeExecuted:
		return StatusExecuted
	case models.OutcomeRejected:
		return StatusRejected
	default:
		return StatusFailed
	}
}

func (s Status) String() string {
	switch s {
	case StatusExecuted:
		return "executed"
	case StatusRejected:
		return "rejected"
	case StatusFailed:
		return "failed"
	default:
		return "invalid"
	}
}
