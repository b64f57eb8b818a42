package models

import "time"

// ServerState is a point-in-time copy of the server loop state.
type ServerState struct {
	IsRunning        bool      `json:"is_running"`
	HasEverConnected bool      `json:"has_ever_connected"`
	Transport        string    `json:"transport"`
	Address          string    `json:"address,omitempty"`   // endpoint address, e.g. "rfcomm:3" or "0.0.0.0:7300"
	Generation       int       `json:"generation"`          // number of endpoints opened since startup
	Advertised       bool      `json:"advertised"`          // current endpoint is registered for discovery
	Sessions         int       `json:"sessions"`            // sessions accepted since startup
	LastOutcome      Outcome   `json:"last_outcome,omitempty"`
	ActuatorLevel    Level     `json:"actuator_level"`
	IndicatorLevel   Level     `json:"indicator_level"`
	UpdatedAt        time.Time `json:"updated_at"`
}
