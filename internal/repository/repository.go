package repository

import (
	"context"
	"database/sql"
	"time"

	"pressbot/internal/models"
)

type Operators interface {
	Create(ctx context.Context, username, hash string) (int, error)
	GetByUsername(ctx context.Context, username string) (*models.Operator, error)
}

// SessionFilter narrows a journal listing. Zero fields match everything.
type SessionFilter struct {
	From    time.Time
	To      time.Time
	Outcome models.Outcome
	Source  string
	Limit   int
}

type Sessions interface {
	Append(ctx context.Context, rec models.SessionRecord) error
	List(ctx context.Context, f SessionFilter) ([]models.SessionRecord, error)
}

type Repository struct {
	Sessions  Sessions
	Operators Operators
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Sessions:  NewSessionSQLite(db),
		Operators: NewOperatorRepository(db),
	}
}
