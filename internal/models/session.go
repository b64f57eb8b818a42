package models

import (
	"strings"
	"time"
)

// Outcome is how a single session ended.
type Outcome string

const (
	OutcomeExecuted       Outcome = "COMMAND_EXECUTED"
	OutcomeRejected       Outcome = "REJECTED"
	OutcomePeerClosed     Outcome = "PEER_CLOSED"
	OutcomeTransportError Outcome = "TRANSPORT_ERROR"
	OutcomeTimedOut       Outcome = "TIMED_OUT"
	OutcomeCanceled       Outcome = "CANCELED"
)

// Fatal reports whether the outcome must stop the server loop.
func (o Outcome) Fatal() bool {
	return o == OutcomeTransportError
}

// Session sources.
const (
	SourceWireless = "wireless"
	SourceOperator = "operator"
)

// SessionRecord is a single journal entry describing one accepted connection.
type SessionRecord struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Peer       string    `json:"peer"`
	Transport  string    `json:"transport"`         // rfcomm | tcp
	Command    string    `json:"command"`           // press | reset | unknown
	Outcome    Outcome   `json:"outcome"`           // COMMAND_EXECUTED | REJECTED | PEER_CLOSED | TRANSPORT_ERROR | TIMED_OUT | CANCELED
	Error      string    `json:"error,omitempty"`   // transport or drive failure text
	Source     string    `json:"source,omitempty"`  // wireless | operator
}

// Operator is an account allowed to use the status API.
type Operator struct {
	ID           int    `json:"id"`
	Username     string `json:"username"`
	PasswordHash string `json:"-"`
}

var outcomes = map[Outcome]struct{}{
	OutcomeExecuted:       {},
	OutcomeRejected:       {},
	OutcomePeerClosed:     {},
	OutcomeTransportError: {},
	OutcomeTimedOut:       {},
	OutcomeCanceled:       {},
}

// ParseOutcome accepts an outcome name in any case.
func ParseOutcome(s string) (Outcome, bool) {
	o := Outcome(strings.ToUpper(strings.TrimSpace(s)))
	_, ok := outcomes[o]
	return o, ok
}
