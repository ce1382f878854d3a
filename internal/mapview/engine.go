package mapview

import geojson "github.com/paulmach/go.geojson"

// Event is a map lifecycle event.
type Event string

const (
	// EventLoad fires once the map style has loaded.
	EventLoad Event = "load"
	// EventIdle fires when every resource for the current view has loaded.
	EventIdle Event = "idle"
)

// Engine is the rendering capability a View drives. Implementations must
// call listeners in registration order, remove a Once listener before
// invoking it, and allow listeners to register further listeners.
type Engine interface {
	Create(opts Options) error
	AddSource(id string, data *geojson.FeatureCollection) error
	AddLayer(layer Layer) error
	SetSourceData(id string, data *geojson.FeatureCollection) error
	On(event Event, fn func())
	Once(event Event, fn func())
	Remove() error
}

const (
	DefaultStyle = "mapbox://styles/mapbox/dark-v11"
	DefaultZoom  = 9

	SourceID = "forecast-points"
	LayerID  = "point-layer"
)

// DefaultCenter is Delhi as [longitude, latitude].
var DefaultCenter = [2]float64{77.1025, 28.7041}

// Options configures map creation. AccessToken is the map provider
// credential.
type Options struct {
	AccessToken string     `json:"accessToken"`
	Style       string     `json:"style"`
	Center      [2]float64 `json:"center"`
	Zoom        float64    `json:"zoom"`
}

func DefaultOptions(accessToken string) Options {
	return Options{
		AccessToken: accessToken,
		Style:       DefaultStyle,
		Center:      DefaultCenter,
		Zoom:        DefaultZoom,
	}
}

// Layer is a styled rendering layer bound to a source.
type Layer struct {
	ID     string         `json:"id"`
	Type   string         `json:"type"`
	Source string         `json:"source"`
	Paint  map[string]any `json:"paint"`
}

// PointLayer is the circle layer for forecast points, coloured by each
// feature's "color" property.
func PointLayer() Layer {
	return Layer{
		ID:     LayerID,
		Type:   "circle",
		Source: SourceID,
		Paint: map[string]any{
			"circle-radius":       10,
			"circle-color":        []any{"get", "color"},
			"circle-opacity":      0.8,
			"circle-stroke-width": 1,
			"circle-stroke-color": "#fff",
		},
	}
}
