package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"pm25map/internal/config"
	"pm25map/internal/forecast"
	"pm25map/internal/httpapi"
	"pm25map/internal/mapbridge"
	"pm25map/internal/mapview"
	forecastweb "pm25map/internal/modules/forecast/controller"
	forecastviews "pm25map/internal/modules/forecast/views"
	"pm25map/internal/mqtt"
)

func Run(ctx context.Context, cfg config.Config, version string) error {
	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"staticDir", cfg.StaticDir,
		"forecastURL", cfg.ForecastURL,
		"forecastDays", cfg.ForecastDays,
		"forecastTimeout", cfg.ForecastTimeout,
		"mapStyle", cfg.MapStyle,
		"mapboxTokenSet", cfg.MapboxToken != "",
		"mqttBroker", cfg.MQTTBroker,
		"mqttPort", cfg.MQTTPort,
		"mqttTopic", cfg.MQTTTopic,
	)

	if cfg.MapboxToken == "" {
		slog.Warn("MAPBOX_TOKEN is empty; the map will not render tiles")
	}

	if err := forecastviews.LoadTemplates(); err != nil {
		return err
	}

	client := forecast.NewClient(cfg.ForecastURL)
	controller := forecast.NewController(client,
		forecast.WithLogger(slog.Default()),
		forecast.WithDays(cfg.ForecastDays),
		forecast.WithTimeout(cfg.ForecastTimeout),
	)

	hub := mapview.NewHub()
	unsubscribe := controller.Subscribe(hub.Publish)
	defer unsubscribe()

	var publisher *mqtt.Publisher
	var mqttStatus httpapi.ConnectionChecker
	if cfg.MQTTEnabled() {
		publisher = mqtt.NewPublisher(cfg, slog.Default())
		mqttStatus = publisher

		// Short timeout so a missing broker does not block startup.
		connectCtx, connectCancel := context.WithTimeout(ctx, 5*time.Second)
		err := publisher.Connect(connectCtx)
		connectCancel()
		if err != nil {
			slog.Warn("mqtt connection failed (continuing without mqtt)", "error", err)
		}

		unsubscribeMQTT := controller.Subscribe(func(pc forecast.PointCollection) {
			if err := publisher.PublishCollection(pc); err != nil {
				slog.Warn("mqtt publish skipped", "error", err)
			}
		})
		defer unsubscribeMQTT()
	}

	mux := httpapi.NewMux(cfg.StaticDir, mqttStatus)
	api := httpapi.NewAPI(mux, version)

	web := forecastweb.NewForecastController(ctx, controller, slog.Default())
	web.RegisterRoutes(mux)
	web.RegisterAPI(api)

	mapOpts := mapview.Options{
		AccessToken: cfg.MapboxToken,
		Style:       cfg.MapStyle,
		Center:      [2]float64{cfg.MapCenterLon, cfg.MapCenterLat},
		Zoom:        cfg.MapZoom,
	}
	mapbridge.NewHandler(hub, mapOpts, slog.Default()).RegisterRoutes(mux)

	srv := httpapi.NewServer(cfg, mux, ctx)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if publisher != nil {
		slog.Info("mqtt disconnecting")
		publisher.Disconnect()
	}

	slog.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err := <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}
