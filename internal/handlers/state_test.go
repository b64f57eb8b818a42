package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"pressbot/internal/device"
	"pressbot/internal/models"
	"pressbot/internal/service"
)

func TestHealth(t *testing.T) {
	r := newTestRouter(&service.Service{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("health status=%d", w.Code)
	}
}

func TestStateHandler(t *testing.T) {
	auth := &mockAuth{parseID: 7}
	mon := &mockMonitoring{state: models.ServerState{
		IsRunning:      true,
		Transport:      "rfcomm",
		Address:        "rfcomm:4",
		Generation:     1,
		IndicatorLevel: models.High,
	}}
	r := newTestRouter(&service.Service{Authorization: auth, Monitoring: mon})

	// requires auth → 401 without header
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/state", nil))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without auth, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, withAuth(httptest.NewRequest(http.MethodGet, "/api/v1/state", nil), "valid"))
	if w.Code != http.StatusOK {
		t.Fatalf("state status=%d, body=%s", w.Code, w.Body.String())
	}
	var st models.ServerState
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("unmarshal state: %v", err)
	}
	if !st.IsRunning || st.Address != "rfcomm:4" || st.IndicatorLevel != models.High {
		t.Fatalf("unexpected state: %+v", st)
	}

	mon.err = errors.New("detached")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, withAuth(httptest.NewRequest(http.MethodGet, "/api/v1/state", nil), "valid"))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestActuatorHandlers(t *testing.T) {
	tests := []struct {
		name     string
		path     string
		err      error
		wantCode int
		wantCmd  models.Command
	}{
		{"press ok", "/api/v1/actuator/press", nil, http.StatusOK, models.CommandPress},
		{"reset ok", "/api/v1/actuator/reset", nil, http.StatusOK, models.CommandReset},
		{"busy", "/api/v1/actuator/press", device.ErrBusy, http.StatusConflict, models.CommandPress},
		{"drive failure", "/api/v1/actuator/reset", fmt.Errorf("%w: pin 17", device.ErrDrive), http.StatusInternalServerError, models.CommandReset},
		{"shutting down", "/api/v1/actuator/reset", fmt.Errorf("%w: %w", device.ErrStopped, context.Canceled), http.StatusServiceUnavailable, models.CommandReset},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctl := &mockControl{
				rec: models.SessionRecord{ID: "r1", Command: tt.wantCmd.String(), Outcome: models.OutcomeExecuted},
				err: tt.err,
			}
			r := newTestRouter(&service.Service{Authorization: &mockAuth{parseID: 5}, Control: ctl})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, withAuth(httptest.NewRequest(http.MethodPost, tt.path, nil), "valid"))
			if w.Code != tt.wantCode {
				t.Fatalf("status=%d, want %d, body=%s", w.Code, tt.wantCode, w.Body.String())
			}
			if ctl.calls != 1 || ctl.lastCommand != tt.wantCmd || ctl.lastOperator != 5 {
				t.Fatalf("unexpected trigger call: calls=%d cmd=%s operator=%d", ctl.calls, ctl.lastCommand, ctl.lastOperator)
			}
		})
	}
}

func TestActuatorHandlers_RequireAuth(t *testing.T) {
	ctl := &mockControl{}
	r := newTestRouter(&service.Service{Authorization: &mockAuth{parseErr: errors.New("expired")}, Control: ctl})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, withAuth(httptest.NewRequest(http.MethodPost, "/api/v1/actuator/press", nil), "stale"))
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if ctl.calls != 0 {
		t.Fatalf("actuator must not be triggered without a valid token")
	}
}
