package forecast

import (
	"fmt"

	geojson "github.com/paulmach/go.geojson"
)

// ColoredPoint is a ForecastPoint annotated with its severity colour.
type ColoredPoint struct {
	ForecastPoint
	Color string
}

// PointCollection is the ordered result of one backend response. It is never
// modified after construction; a new response produces a new collection.
type PointCollection struct {
	points []ColoredPoint
}

func NewPointCollection(points []ForecastPoint) PointCollection {
	out := make([]ColoredPoint, len(points))
	for i, p := range points {
		out[i] = ColoredPoint{ForecastPoint: p, Color: ColorFor(p.PM25)}
	}
	return PointCollection{points: out}
}

func (c PointCollection) Len() int {
	return len(c.points)
}

// Points returns a copy of the collection's points in backend order.
func (c PointCollection) Points() []ColoredPoint {
	out := make([]ColoredPoint, len(c.points))
	copy(out, c.points)
	return out
}

// FeatureCollection converts the collection to GeoJSON: one Point feature per
// forecast point with coordinates [lon, lat] and pm25/timestamp/color
// properties.
func (c PointCollection) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, p := range c.points {
		f := geojson.NewPointFeature([]float64{p.Longitude, p.Latitude})
		f.SetProperty("pm25", p.PM25)
		f.SetProperty("timestamp", p.Timestamp)
		f.SetProperty("color", p.Color)
		fc.AddFeature(f)
	}
	return fc
}

func (c PointCollection) MarshalGeoJSON() ([]byte, error) {
	b, err := c.FeatureCollection().MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal feature collection: %w", err)
	}
	return b, nil
}
