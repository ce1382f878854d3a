package httpapi

import (
	"net/http"

	"pm25map/internal/utils"
)

// ConnectionChecker reports the state of an optional downstream connection.
type ConnectionChecker interface {
	IsConnected() bool
}

type healthchecker interface {
	handleHealthz(w http.ResponseWriter, r *http.Request)
}

type healthcheckerImpl struct {
	mqtt ConnectionChecker
}

func NewHealthchecker(mqtt ConnectionChecker) healthchecker {
	return &healthcheckerImpl{mqtt: mqtt}
}

// handleHealthz always reports ok; MQTT is optional, so its state is
// informational only.
func (h *healthcheckerImpl) handleHealthz(w http.ResponseWriter, r *http.Request) {
	mqttState := "disabled"
	if h.mqtt != nil {
		mqttState = "disconnected"
		if h.mqtt.IsConnected() {
			mqttState = "connected"
		}
	}
	utils.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok", "mqtt": mqttState})
}

func registerHealthcheck(mux *http.ServeMux, mqtt ConnectionChecker) {
	healthchecker := NewHealthchecker(mqtt)
	mux.HandleFunc("GET /healthz", healthchecker.handleHealthz)
}
