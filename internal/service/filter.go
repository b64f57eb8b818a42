package service

import "time"

// JournalFilter narrows session history by time range, outcome and source.
type JournalFilter struct {
	From    time.Time // inclusive; zero means no lower bound
	To      time.Time // inclusive; zero means no upper bound
	Outcome string    // "", or any models.Outcome name in any case
	Source  string    // "", "wireless", "operator"
	Limit   int       // 0 means defaultJournalLimit
}

const (
	defaultJournalLimit = 100
	maxJournalLimit     = 1000
)
