package httpapi

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humago"
)

// NewMux builds the root mux with the health check and static assets.
// mqtt may be nil when MQTT publishing is disabled.
func NewMux(staticDir string, mqtt ConnectionChecker) *http.ServeMux {
	mux := http.NewServeMux()
	registerHealthcheck(mux, mqtt)
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(staticDir))))
	return mux
}

// NewAPI mounts a huma API (with OpenAPI docs at /docs) on mux.
func NewAPI(mux *http.ServeMux, version string) huma.API {
	config := huma.DefaultConfig("PM2.5 Forecast Map API", version)
	config.Info.Description = "Requests multi-day PM2.5 forecasts and serves the current point collection as GeoJSON"
	return humago.New(mux, config)
}
