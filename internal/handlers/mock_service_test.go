package handlers

import (
	"context"
	"net/http"

	"pressbot/internal/models"
	"pressbot/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	addID         int
	addErr        error
	genTokenToken string
	genTokenErr   error
	parseID       int
	parseErr      error

	lastAddUsername string
	lastGenUsername string
	lastGenPassword string
	lastParseToken  string
}

func (m *mockAuth) AddOperator(ctx context.Context, username, password string) (int, error) {
	m.lastAddUsername = username
	return m.addID, m.addErr
}
func (m *mockAuth) GenerateToken(ctx context.Context, username, password string) (string, error) {
	m.lastGenUsername = username
	m.lastGenPassword = password
	return m.genTokenToken, m.genTokenErr
}
func (m *mockAuth) ParseToken(token string) (int, error) {
	m.lastParseToken = token
	return m.parseID, m.parseErr
}

type mockControl struct {
	rec          models.SessionRecord
	err          error
	lastOperator int
	lastCommand  models.Command
	calls        int
}

func (m *mockControl) Trigger(ctx context.Context, operatorID int, cmd models.Command) (models.SessionRecord, error) {
	m.calls++
	m.lastOperator = operatorID
	m.lastCommand = cmd
	return m.rec, m.err
}

type mockMonitoring struct {
	state models.ServerState
	err   error
}

func (m *mockMonitoring) GetState(ctx context.Context) (models.ServerState, error) {
	return m.state, m.err
}

type mockJournal struct {
	resp       []models.SessionRecord
	err        error
	lastFilter service.JournalFilter
	calls      int
}

func (m *mockJournal) Append(ctx context.Context, rec models.SessionRecord) error { return nil }

func (m *mockJournal) List(ctx context.Context, f service.JournalFilter) ([]models.SessionRecord, error) {
	m.calls++
	m.lastFilter = f
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}

func withAuth(req *http.Request, token string) *http.Request {
	for k, vv := range authHeader(token) {
		for _, v := range vv {
			req.Header.Add(k, v)
		}
	}
	return req
}
