package mapview

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	geojson "github.com/paulmach/go.geojson"

	"pm25map/internal/forecast"
)

var (
	ErrAlreadyInitialized = errors.New("map view already initialized")
	ErrClosed             = errors.New("map view closed")
)

// View owns one map instance and reconciles two independent streams: the
// engine's readiness events and published point collections. Data that
// arrives before the map is Ready is held and written exactly once, on the
// idle event that completes readiness.
type View struct {
	engine Engine
	opts   Options
	logger *slog.Logger

	mu          sync.Mutex
	initialized bool
	closed      bool
	readiness   Readiness
	pending     *forecast.PointCollection
	armed       bool
}

func New(engine Engine, opts Options, logger *slog.Logger) *View {
	if logger == nil {
		logger = slog.Default()
	}
	return &View{
		engine: engine,
		opts:   opts,
		logger: logger.With("component", "map-view"),
	}
}

// Init creates the map. It runs once per View; lifecycle listeners are
// registered before creation so an engine that loads synchronously is
// still observed.
func (v *View) Init() error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return ErrClosed
	}
	if v.initialized {
		v.mu.Unlock()
		return ErrAlreadyInitialized
	}
	v.initialized = true
	v.mu.Unlock()

	v.engine.On(EventLoad, v.handleLoad)
	v.engine.On(EventIdle, v.handleIdle)

	if err := v.engine.Create(v.opts); err != nil {
		return fmt.Errorf("create map: %w", err)
	}
	v.logger.Debug("map created", "style", v.opts.Style, "center", v.opts.Center, "zoom", v.opts.Zoom)
	return nil
}

// Update shows pc, replacing whatever collection was shown before. Before
// the map is Ready only the newest pending collection is kept.
func (v *View) Update(pc forecast.PointCollection) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed {
		return
	}
	if v.readiness == Ready {
		// Supersedes anything an idle flush has not written yet.
		v.pending = nil
		v.apply(pc)
		return
	}

	v.pending = &pc
	if !v.armed {
		v.armed = true
		v.engine.Once(EventIdle, v.flushPending)
	}
	v.logger.Debug("deferred map update until idle", "readiness", v.readiness.String(), "points", pc.Len())
}

func (v *View) Readiness() Readiness {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.readiness
}

// Close releases the map. It is safe to call more than once.
func (v *View) Close() error {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil
	}
	v.closed = true
	v.pending = nil
	v.readiness = Uninitialized
	initialized := v.initialized
	v.mu.Unlock()

	if !initialized {
		return nil
	}
	if err := v.engine.Remove(); err != nil {
		return fmt.Errorf("remove map: %w", err)
	}
	v.logger.Debug("map removed")
	return nil
}

func (v *View) handleLoad() {
	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed || v.readiness != Uninitialized {
		return
	}
	if err := v.engine.AddSource(SourceID, geojson.NewFeatureCollection()); err != nil {
		v.logger.Error("failed to add source", "source", SourceID, "error", err)
		return
	}
	if err := v.engine.AddLayer(PointLayer()); err != nil {
		v.logger.Error("failed to add layer", "layer", LayerID, "error", err)
		return
	}
	v.readiness = StyleLoading
	v.logger.Debug("map style loaded", "readiness", v.readiness.String())
}

func (v *View) handleIdle() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.markReadyLocked()
}

// flushPending is the one-shot idle listener armed by Update.
func (v *View) flushPending() {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.armed = false
	if v.closed || v.pending == nil {
		return
	}
	v.markReadyLocked()
	if v.readiness != Ready {
		// idle before load: wait for the next one.
		v.armed = true
		v.engine.Once(EventIdle, v.flushPending)
		return
	}

	pc := *v.pending
	v.pending = nil
	v.apply(pc)
}

func (v *View) markReadyLocked() {
	if v.readiness == StyleLoading {
		v.readiness = Ready
		v.logger.Debug("map ready")
	}
}

func (v *View) apply(pc forecast.PointCollection) {
	if err := v.engine.SetSourceData(SourceID, pc.FeatureCollection()); err != nil {
		v.logger.Error("failed to update map data", "source", SourceID, "error", err)
		return
	}
	v.logger.Debug("map data updated", "points", pc.Len())
}
