package controller

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"pm25map/internal/forecast"
)

// ForecastService is the slice of forecast.Controller the web layer needs.
type ForecastService interface {
	RequestForecast(ctx context.Context) error
	State() forecast.State
	Current() (forecast.PointCollection, bool)
	Days() int
}

type ForecastController interface {
	RegisterRoutes(mux *http.ServeMux)
	RegisterAPI(api huma.API)
}

type forecastControllerImpl struct {
	service ForecastService
	// baseCtx outlives individual HTMX requests; page-triggered forecasts
	// run under it.
	baseCtx context.Context
	logger  *slog.Logger
}

func NewForecastController(baseCtx context.Context, service ForecastService, logger *slog.Logger) ForecastController {
	if logger == nil {
		logger = slog.Default()
	}
	return &forecastControllerImpl{
		service: service,
		baseCtx: baseCtx,
		logger:  logger.With("component", "forecast-web"),
	}
}

func (c *forecastControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /", c.handlePage)
	mux.HandleFunc("POST /forecast", c.handleTrigger)
	mux.HandleFunc("GET /forecast/controls", c.handleControls)
}
