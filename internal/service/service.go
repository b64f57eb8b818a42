package service

import (
	"context"

	"pressbot/internal/logger"
	"pressbot/internal/models"
	"pressbot/internal/repository"
)

type Authorization interface {
	AddOperator(ctx context.Context, username, password string) (int, error)
	GenerateToken(ctx context.Context, username, password string) (string, error)
	ParseToken(accessToken string) (int, error)
}

// Control exposes the operator's manual trigger.
type Control interface {
	Trigger(ctx context.Context, operatorID int, cmd models.Command) (models.SessionRecord, error)
}

// Monitoring exposes the live server state.
type Monitoring interface {
	GetState(ctx context.Context) (models.ServerState, error)
}

// Journal exposes the append-only session history.
type Journal interface {
	Append(ctx context.Context, rec models.SessionRecord) error
	List(ctx context.Context, f JournalFilter) ([]models.SessionRecord, error)
}

// Service aggregates all sub-services.
type Service struct {
	Control
	Monitoring
	Journal
	Authorization
}

// Deps are the runtime collaborators that do not live in the repository.
type Deps struct {
	Trigger Trigger
	State   StateSource
	Auth    AuthConfig
	Log     *logger.Logger
	// OnFault receives pin-drive failures of manual triggers.
	OnFault func(error)
}

func NewService(repos *repository.Repository, deps Deps) *Service {
	journal := NewJournalService(repos.Sessions)
	return &Service{
		Control:       NewControlService(deps.Trigger, journal, deps.Log, WithFaultHandler(deps.OnFault)),
		Monitoring:    NewMonitoringService(deps.State),
		Journal:       journal,
		Authorization: NewAuthService(repos.Operators, deps.Auth),
	}
}
