package config

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	// StaticDir is the absolute path to the directory served at /static/.
	// Set via STATIC_DIR (relative paths are resolved against the process working directory at startup).
	StaticDir string

	ForecastURL     string
	ForecastDays    int
	ForecastTimeout time.Duration

	MapboxToken  string
	MapStyle     string
	MapCenterLon float64
	MapCenterLat float64
	MapZoom      float64

	// MQTTBroker empty disables publishing forecasts over MQTT.
	MQTTBroker   string
	MQTTPort     int
	MQTTClientID string
	MQTTTopic    string
}

var defaults = map[string]string{
	"APP_ENV":          "dev",
	"LOG_LEVEL":        "info",
	"HTTP_ADDR":        ":8080",
	"STATIC_DIR":       "static",
	"FORECAST_API_URL": "http://localhost:8000/api/v1/forecast",
	"FORECAST_DAYS":    "5",
	"FORECAST_TIMEOUT": "30s",
	"MAPBOX_TOKEN":     "",
	"MAP_STYLE":        "mapbox://styles/mapbox/dark-v11",
	"MAP_CENTER_LON":   "77.1025",
	"MAP_CENTER_LAT":   "28.7041",
	"MAP_ZOOM":         "9",
	"MQTT_BROKER":      "",
	"MQTT_PORT":        "1883",
	"MQTT_CLIENT_ID":   "pm25map-server",
	"MQTT_TOPIC":       "forecast/pm25/points",
}

// LoadFromEnv reads configuration from the environment. When CONFIG_FILE is
// set, that file supplies values for any variable left unset.
func LoadFromEnv() (Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if path := strings.TrimSpace(v.GetString("CONFIG_FILE")); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read CONFIG_FILE %q: %w", path, err)
		}
	}

	get := func(key string) string {
		s := strings.TrimSpace(v.GetString(key))
		if s == "" {
			return defaults[key]
		}
		return s
	}

	appEnv := get("APP_ENV")
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	level, err := parseLogLevel(get("LOG_LEVEL"))
	if err != nil {
		return Config{}, err
	}

	staticDir, err := filepath.Abs(get("STATIC_DIR"))
	if err != nil {
		return Config{}, fmt.Errorf("STATIC_DIR %q: %w", get("STATIC_DIR"), err)
	}

	forecastDays, err := strconv.Atoi(get("FORECAST_DAYS"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid FORECAST_DAYS %q: %w", get("FORECAST_DAYS"), err)
	}
	if forecastDays <= 0 {
		return Config{}, fmt.Errorf("FORECAST_DAYS must be positive, got %d", forecastDays)
	}

	forecastTimeout, err := time.ParseDuration(get("FORECAST_TIMEOUT"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid FORECAST_TIMEOUT %q: %w", get("FORECAST_TIMEOUT"), err)
	}
	if forecastTimeout < 0 {
		return Config{}, fmt.Errorf("FORECAST_TIMEOUT must not be negative, got %v", forecastTimeout)
	}

	lon, err := parseFloatInRange("MAP_CENTER_LON", get("MAP_CENTER_LON"), -180, 180)
	if err != nil {
		return Config{}, err
	}
	lat, err := parseFloatInRange("MAP_CENTER_LAT", get("MAP_CENTER_LAT"), -90, 90)
	if err != nil {
		return Config{}, err
	}
	zoom, err := parseFloatInRange("MAP_ZOOM", get("MAP_ZOOM"), 0, 24)
	if err != nil {
		return Config{}, err
	}

	mqttPort, err := strconv.Atoi(get("MQTT_PORT"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid MQTT_PORT %q: %w", get("MQTT_PORT"), err)
	}
	if mqttPort <= 0 || mqttPort > 65535 {
		return Config{}, fmt.Errorf("MQTT_PORT out of range: %d", mqttPort)
	}

	return Config{
		AppEnv:          appEnv,
		LogLevel:        level,
		HTTPAddr:        get("HTTP_ADDR"),
		StaticDir:       staticDir,
		ForecastURL:     get("FORECAST_API_URL"),
		ForecastDays:    forecastDays,
		ForecastTimeout: forecastTimeout,
		MapboxToken:     get("MAPBOX_TOKEN"),
		MapStyle:        get("MAP_STYLE"),
		MapCenterLon:    lon,
		MapCenterLat:    lat,
		MapZoom:         zoom,
		MQTTBroker:      get("MQTT_BROKER"),
		MQTTPort:        mqttPort,
		MQTTClientID:    get("MQTT_CLIENT_ID"),
		MQTTTopic:       get("MQTT_TOPIC"),
	}, nil
}

// MQTTEnabled reports whether a broker is configured.
func (c Config) MQTTEnabled() bool {
	return c.MQTTBroker != ""
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}

var errOutOfRange = errors.New("out of range")

func parseFloatInRange(name, s string, min, max float64) (float64, error) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	if f < min || f > max {
		return 0, fmt.Errorf("invalid %s %v: %w [%v, %v]", name, f, errOutOfRange, min, max)
	}
	return f, nil
}
