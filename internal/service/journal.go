package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pressbot/internal/models"
	"pressbot/internal/repository"
)

type JournalService struct {
	sessions repository.Sessions
}

func NewJournalService(sessions repository.Sessions) *JournalService {
	return &JournalService{sessions: sessions}
}

var (
	errInvalidTimeRange = errors.New("invalid time range: from must be <= to")
	errInvalidOutcome   = errors.New("invalid outcome")
	errInvalidSource    = errors.New("invalid source: must be wireless or operator")
)

// normalizeToUTC returns t in UTC, preserving zero time values.
func normalizeToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// normalizeFilter validates f and maps it onto a repository query.
func normalizeFilter(f JournalFilter) (repository.SessionFilter, error) {
	out := repository.SessionFilter{
		From: normalizeToUTC(f.From),
		To:   normalizeToUTC(f.To),
	}
	if !out.From.IsZero() && !out.To.IsZero() && out.From.After(out.To) {
		return repository.SessionFilter{}, errInvalidTimeRange
	}

	if strings.TrimSpace(f.Outcome) != "" {
		o, ok := models.ParseOutcome(f.Outcome)
		if !ok {
			return repository.SessionFilter{}, fmt.Errorf("%w: %q", errInvalidOutcome, f.Outcome)
		}
		out.Outcome = o
	}

	switch src := strings.ToLower(strings.TrimSpace(f.Source)); src {
	case "", models.SourceWireless, models.SourceOperator:
		out.Source = src
	default:
		return repository.SessionFilter{}, errInvalidSource
	}

	switch {
	case f.Limit <= 0:
		out.Limit = defaultJournalLimit
	case f.Limit > maxJournalLimit:
		out.Limit = maxJournalLimit
	default:
		out.Limit = f.Limit
	}
	return out, nil
}

func (s *JournalService) List(ctx context.Context, f JournalFilter) ([]models.SessionRecord, error) {
	q, err := normalizeFilter(f)
	if err != nil {
		return nil, err
	}
	return s.sessions.List(ctx, q)
}

// Append stores one session record.
func (s *JournalService) Append(ctx context.Context, rec models.SessionRecord) error {
	return s.sessions.Append(ctx, rec)
}

// IsInvalidFilter reports whether err came from filter validation.
func IsInvalidFilter(err error) bool {
	return errors.Is(err, errInvalidTimeRange) || errors.Is(err, errInvalidOutcome) || errors.Is(err, errInvalidSource)
}
