package handlers

import (
	"errors"
	"net/http"

	"pressbot/internal/device"
	"pressbot/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	statusOK = "ok"

	errGetState     = "failed to load state"
	errActuatorBusy    = "actuator is busy"
	errActuatorStopped = "actuator is shutting down"
	errActuator        = "actuator command failed"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Get server state
// @Description  Live snapshot of the listening loop and both output lines.
// @Tags         state
// @Produce      json
// @Success      200  {object}  models.ServerState
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/state [get]
// @Security     BearerAuth
func (h *Handler) getState(c *gin.Context) {
	st, err := h.services.Monitoring.GetState(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetState, "state_get_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Press
// @Description  Pulses the actuator once. Rejected with 409 while a wireless command is running.
// @Tags         actuator
// @Produce      json
// @Success      200  {object}  models.SessionRecord
// @Failure      401  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/actuator/press [post]
// @Security     BearerAuth
func (h *Handler) pressActuator(c *gin.Context) {
	h.trigger(c, models.CommandPress)
}

// @Summary      Reset
// @Description  Runs the long double-press reset sequence. Blocks for the whole sequence.
// @Tags         actuator
// @Produce      json
// @Success      200  {object}  models.SessionRecord
// @Failure      401  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/actuator/reset [post]
// @Security     BearerAuth
func (h *Handler) resetActuator(c *gin.Context) {
	h.trigger(c, models.CommandReset)
}

func (h *Handler) trigger(c *gin.Context, cmd models.Command) {
	rec, err := h.services.Control.Trigger(c.Request.Context(), operatorID(c), cmd)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, rec)
	case errors.Is(err, device.ErrBusy):
		c.JSON(http.StatusConflict, gin.H{"error": errActuatorBusy, "session": rec})
	case errors.Is(err, device.ErrStopped):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": errActuatorStopped, "session": rec})
	default:
		h.logAndJSONError(c, http.StatusInternalServerError, errActuator, "actuator_trigger_failed", err, "command", cmd.String())
	}
}
