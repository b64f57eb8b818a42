package service

import (
	"context"
	"errors"

	"pressbot/internal/models"
)

// StateSource is implemented by the server loop.
type StateSource interface {
	Snapshot() models.ServerState
}

var ErrNoStateSource = errors.New("server loop not attached")

type MonitoringService struct {
	source StateSource
}

func NewMonitoringService(source StateSource) *MonitoringService {
	return &MonitoringService{source: source}
}

// GetState returns the live server snapshot with timestamps in UTC.
func (s *MonitoringService) GetState(ctx context.Context) (models.ServerState, error) {
	if s.source == nil {
		return models.ServerState{}, ErrNoStateSource
	}
	if err := ctx.Err(); err != nil {
		return models.ServerState{}, err
	}
	st := s.source.Snapshot()
	st.UpdatedAt = normalizeToUTC(st.UpdatedAt)
	return st, nil
}
