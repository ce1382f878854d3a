package mapbridge

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"

	"pm25map/internal/mapview"
)

// Handler upgrades page connections and gives each one its own map view,
// attached to the hub for as long as the connection lives.
type Handler struct {
	hub      *mapview.Hub
	opts     mapview.Options
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

func NewHandler(hub *mapview.Hub, opts mapview.Options, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		hub:    hub,
		opts:   opts,
		logger: logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 16 * 1024,
		},
	}
}

func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("GET /ws/map", h)
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.logger.Warn("map websocket upgrade failed", "error", err)
		return
	}
	defer func() {
		if err := conn.Close(); err != nil {
			h.logger.Debug("close map websocket", "error", err)
		}
	}()

	session := NewSession(conn, h.logger)
	view := mapview.New(session, h.opts, h.logger)
	defer func() {
		h.hub.Detach(view)
		if err := view.Close(); err != nil {
			h.logger.Debug("close map view", "error", err)
		}
	}()

	if err := view.Init(); err != nil {
		h.logger.Error("map init failed", "error", err)
		return
	}
	h.hub.Attach(view)
	h.logger.Info("map view attached", "views", h.hub.Len())

	if err := session.Serve(r.Context()); err != nil {
		h.logger.Warn("map session ended", "error", err)
		return
	}
	h.logger.Info("map session closed")
}
