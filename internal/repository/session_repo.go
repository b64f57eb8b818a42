package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"pressbot/internal/models"
)

// timeLayout is fixed width so stored timestamps compare lexically.
const timeLayout = "2006-01-02 15:04:05.000"

const (
	insertSessionSQL = `INSERT INTO sessions (id, started_at, finished_at, peer, transport, command, outcome, error, source) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	selectSessionSQL = `SELECT id, started_at, finished_at, peer, transport, command, outcome, error, source FROM sessions`
)

type SessionSQLite struct {
	db *sql.DB
}

func NewSessionSQLite(db *sql.DB) *SessionSQLite { return &SessionSQLite{db: db} }

var _ Sessions = (*SessionSQLite)(nil)

// Append inserts a session record. A missing ID or start time is filled in.
func (r *SessionSQLite) Append(ctx context.Context, rec models.SessionRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.StartedAt.IsZero() {
		rec.StartedAt = time.Now()
	}
	if rec.FinishedAt.IsZero() {
		rec.FinishedAt = rec.StartedAt
	}

	_, err := r.db.ExecContext(ctx, insertSessionSQL,
		rec.ID,
		formatTime(rec.StartedAt),
		formatTime(rec.FinishedAt),
		rec.Peer,
		rec.Transport,
		rec.Command,
		string(rec.Outcome),
		rec.Error,
		rec.Source,
	)
	if err != nil {
		return fmt.Errorf("insert session %s: %w", rec.ID, err)
	}
	return nil
}

// List returns sessions started within [From, To], newest first.
func (r *SessionSQLite) List(ctx context.Context, f SessionFilter) ([]models.SessionRecord, error) {
	q, args := buildSessionQuery(f)

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	out := make([]models.SessionRecord, 0, 32)
	for rows.Next() {
		var (
			rec               models.SessionRecord
			started, finished string
			outcome           string
		)
		if err := rows.Scan(&rec.ID, &started, &finished, &rec.Peer, &rec.Transport,
			&rec.Command, &outcome, &rec.Error, &rec.Source); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		if rec.StartedAt, err = parseTime(started); err != nil {
			return nil, fmt.Errorf("session %s started_at: %w", rec.ID, err)
		}
		if rec.FinishedAt, err = parseTime(finished); err != nil {
			return nil, fmt.Errorf("session %s finished_at: %w", rec.ID, err)
		}
		rec.Outcome = models.Outcome(outcome)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return out, nil
}

func buildSessionQuery(f SessionFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	if !f.From.IsZero() {
		conds = append(conds, "started_at >= ?")
		args = append(args, formatTime(f.From))
	}
	if !f.To.IsZero() {
		conds = append(conds, "started_at <= ?")
		args = append(args, formatTime(f.To))
	}
	if o := strings.ToUpper(strings.TrimSpace(string(f.Outcome))); o != "" {
		conds = append(conds, "outcome = ?")
		args = append(args, o)
	}
	if s := strings.TrimSpace(f.Source); s != "" {
		conds = append(conds, "source = ?")
		args = append(args, s)
	}

	q := selectSessionSQL
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY started_at DESC"
	if f.Limit > 0 {
		q += " LIMIT ?"
		args = append(args, f.Limit)
	}
	return q, args
}

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) (time.Time, error) {
	return time.ParseInLocation(timeLayout, s, time.UTC)
}
