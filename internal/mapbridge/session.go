package mapbridge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	geojson "github.com/paulmach/go.geojson"

	"pm25map/internal/mapview"
)

const writeTimeout = 5 * time.Second

var ErrRemoved = errors.New("map removed")

// command is one instruction for the page's map shim.
type command struct {
	Op      string                     `json:"op"`
	ID      string                     `json:"id,omitempty"`
	Options *mapview.Options           `json:"options,omitempty"`
	Layer   *mapview.Layer             `json:"layer,omitempty"`
	Data    *geojson.FeatureCollection `json:"data,omitempty"`
}

// event is a lifecycle notification reported by the page.
type event struct {
	Event string `json:"event"`
}

type listener struct {
	fn   func()
	once bool
}

// Session is a mapview.Engine whose map lives in a browser page connected
// over a websocket.
type Session struct {
	conn   *websocket.Conn
	logger *slog.Logger

	writeMu sync.Mutex

	mu        sync.Mutex
	listeners map[mapview.Event][]listener
	removed   bool
}

func NewSession(conn *websocket.Conn, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "map-session")
	if conn != nil {
		logger = logger.With("remote", conn.RemoteAddr().String())
	}
	return &Session{
		conn:      conn,
		logger:    logger,
		listeners: make(map[mapview.Event][]listener),
	}
}

func (s *Session) Create(opts mapview.Options) error {
	return s.send(command{Op: "create", Options: &opts})
}

func (s *Session) AddSource(id string, data *geojson.FeatureCollection) error {
	return s.send(command{Op: "addSource", ID: id, Data: data})
}

func (s *Session) AddLayer(layer mapview.Layer) error {
	return s.send(command{Op: "addLayer", Layer: &layer})
}

func (s *Session) SetSourceData(id string, data *geojson.FeatureCollection) error {
	return s.send(command{Op: "setData", ID: id, Data: data})
}

func (s *Session) On(ev mapview.Event, fn func()) {
	s.addListener(ev, listener{fn: fn})
}

func (s *Session) Once(ev mapview.Event, fn func()) {
	s.addListener(ev, listener{fn: fn, once: true})
}

// Remove tells the page to tear down its map and drops every listener.
func (s *Session) Remove() error {
	err := s.send(command{Op: "remove"})

	s.mu.Lock()
	s.removed = true
	s.listeners = make(map[mapview.Event][]listener)
	s.mu.Unlock()

	return err
}

// Serve reads lifecycle events until the socket closes or ctx is done.
func (s *Session) Serve(ctx context.Context) error {
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = s.conn.Close()
		case <-done:
		}
	}()

	for {
		var ev event
		if err := s.conn.ReadJSON(&ev); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return fmt.Errorf("read map event: %w", err)
		}

		switch mapview.Event(ev.Event) {
		case mapview.EventLoad, mapview.EventIdle:
			s.dispatch(mapview.Event(ev.Event))
		default:
			s.logger.Warn("ignoring unknown map event", "event", ev.Event)
		}
	}
}

func (s *Session) addListener(ev mapview.Event, l listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.removed {
		return
	}
	s.listeners[ev] = append(s.listeners[ev], l)
}

// dispatch calls listeners in registration order without holding s.mu, so a
// listener may register new ones. Once listeners are dropped before any
// listener runs.
func (s *Session) dispatch(ev mapview.Event) {
	s.mu.Lock()
	ls := s.listeners[ev]
	keep := make([]listener, 0, len(ls))
	for _, l := range ls {
		if !l.once {
			keep = append(keep, l)
		}
	}
	s.listeners[ev] = keep
	s.mu.Unlock()

	s.logger.Debug("map event", "event", string(ev), "listeners", len(ls))
	for _, l := range ls {
		l.fn()
	}
}

func (s *Session) send(cmd command) error {
	s.mu.Lock()
	removed := s.removed
	s.mu.Unlock()
	if removed {
		return ErrRemoved
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if err := s.conn.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	if err := s.conn.WriteJSON(cmd); err != nil {
		return fmt.Errorf("send %s: %w", cmd.Op, err)
	}
	return nil
}
