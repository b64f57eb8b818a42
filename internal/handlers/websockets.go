package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"pressbot/internal/models"
)

const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	maxMsgSize       = 1 << 12 // 4 KB
	defaultInterval  = 2 * time.Second
	maxInterval      = 10 * time.Second
	maxIntervalMilli = 10_000
)

// Frame types pushed on /ws.
const (
	frameState = "state"
	frameError = "error"
)

type wsFrame struct {
	Type  string              `json:"type"`
	Data  *models.ServerState `json:"data,omitempty"`
	Error string              `json:"error,omitempty"`
}

// The stream is read-only and served on the operator LAN.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// @Summary      State stream
// @Description  Upgrades to a WebSocket. Sends the current state at once, then a new "state" frame whenever it changes, polled every interval (?interval=2s or ?interval_ms=2000, max 10s).
// @Tags         state
// @Router       /ws [get]
func (h *Handler) wsConnect(c *gin.Context) {
	interval := h.parseInterval(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Errorw("ws_upgrade_failed", "err", err)
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	go h.drain(conn, done)

	s := &stateStream{h: h, conn: conn}
	s.run(c.Request.Context(), interval, done)
}

// stateStream pushes a snapshot only when it differs from the last one sent.
type stateStream struct {
	h    *Handler
	conn *websocket.Conn
	last *models.ServerState
}

func (s *stateStream) run(ctx context.Context, interval time.Duration, done <-chan struct{}) {
	poll := time.NewTicker(interval)
	ping := time.NewTicker(pingPeriod)
	defer poll.Stop()
	defer ping.Stop()

	if err := s.push(ctx); err != nil {
		s.h.log.Infow("ws_write_failed_initial", "err", err)
		return
	}
	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ping.C:
			_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				s.h.log.Infow("ws_ping_failed", "err", err)
				return
			}
		case <-poll.C:
			if err := s.push(ctx); err != nil {
				s.h.log.Infow("ws_write_failed", "err", err)
				return
			}
		}
	}
}

// push writes the current state if it changed. A failed snapshot is reported
// to the client as an error frame and ends the stream.
func (s *stateStream) push(ctx context.Context) error {
	st, err := s.h.services.Monitoring.GetState(ctx)
	if err != nil {
		s.h.log.Errorw("ws_get_state_failed", "err", err)
		_ = s.write(wsFrame{Type: frameError, Error: "state unavailable"})
		return err
	}
	if s.last != nil && sameState(*s.last, st) {
		return nil
	}
	s.last = &st
	return s.write(wsFrame{Type: frameState, Data: &st})
}

func (s *stateStream) write(f wsFrame) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(f)
}

// sameState ignores UpdatedAt, which moves on every internal update.
func sameState(a, b models.ServerState) bool {
	a.UpdatedAt, b.UpdatedAt = time.Time{}, time.Time{}
	return a == b
}

// parseInterval reads ?interval=2s or ?interval_ms=2000 with bounds.
func (h *Handler) parseInterval(c *gin.Context) time.Duration {
	interval := defaultInterval
	if h.stateEvery > 0 && h.stateEvery <= maxInterval {
		interval = h.stateEvery
	}

	if s := c.Query("interval"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d > 0 && d <= maxInterval {
			return d
		}
	}
	if ms := c.Query("interval_ms"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v > 0 && v <= maxIntervalMilli {
			return time.Duration(v) * time.Millisecond
		}
	}
	return interval
}

// drain consumes client frames so control messages are processed and a
// closed socket is noticed.
func (h *Handler) drain(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			h.log.Debugw("ws_read_closed", "err", err)
			return
		}
	}
}
