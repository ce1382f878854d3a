package mapview

import (
	"errors"
	"sync"

	geojson "github.com/paulmach/go.geojson"
)

type listener struct {
	fn   func()
	once bool
}

// fakeEngine records commands and lets tests fire lifecycle events.
type fakeEngine struct {
	mu        sync.Mutex
	created   int
	removed   int
	sources   map[string]*geojson.FeatureCollection
	layers    []Layer
	setData   []*geojson.FeatureCollection
	listeners map[Event][]listener
	createErr error
}

func newFakeEngine() *fakeEngine {
	return &fakeEngine{
		sources:   make(map[string]*geojson.FeatureCollection),
		listeners: make(map[Event][]listener),
	}
}

func (e *fakeEngine) Create(Options) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.created++
	return e.createErr
}

func (e *fakeEngine) AddSource(id string, data *geojson.FeatureCollection) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.sources[id]; ok {
		return errors.New("source exists")
	}
	e.sources[id] = data
	return nil
}

func (e *fakeEngine) AddLayer(layer Layer) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.sources[layer.Source]; !ok {
		return errors.New("unknown source")
	}
	e.layers = append(e.layers, layer)
	return nil
}

func (e *fakeEngine) SetSourceData(id string, data *geojson.FeatureCollection) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.sources[id]; !ok {
		return errors.New("unknown source")
	}
	e.sources[id] = data
	e.setData = append(e.setData, data)
	return nil
}

func (e *fakeEngine) On(ev Event, fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners[ev] = append(e.listeners[ev], listener{fn: fn})
}

func (e *fakeEngine) Once(ev Event, fn func()) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.listeners[ev] = append(e.listeners[ev], listener{fn: fn, once: true})
}

func (e *fakeEngine) Remove() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.removed++
	e.listeners = make(map[Event][]listener)
	return nil
}

func (e *fakeEngine) fire(ev Event) {
	e.mu.Lock()
	ls := e.listeners[ev]
	keep := ls[:0:0]
	for _, l := range ls {
		if !l.once {
			keep = append(keep, l)
		}
	}
	e.listeners[ev] = keep
	e.mu.Unlock()

	for _, l := range ls {
		l.fn()
	}
}

func (e *fakeEngine) writes() []*geojson.FeatureCollection {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*geojson.FeatureCollection, len(e.setData))
	copy(out, e.setData)
	return out
}

func (e *fakeEngine) displayed() *geojson.FeatureCollection {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sources[SourceID]
}

func (e *fakeEngine) onceCount(ev Event) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for _, l := range e.listeners[ev] {
		if l.once {
			n++
		}
	}
	return n
}
