package controller

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"pm25map/internal/forecast"
)

const geoJSONContentType = "application/geo+json"

type StatusBody struct {
	Status  string `json:"status" doc:"Request lifecycle state" enum:"idle,loading,succeeded,failed"`
	Loading bool   `json:"loading"`
	Message string `json:"message,omitempty" doc:"User-facing failure message"`
	Points  int    `json:"points" doc:"Number of points in the current collection"`
}

type StatusOutput struct {
	Body StatusBody
}

type PointsOutput struct {
	ContentType string `header:"Content-Type"`
	Body        []byte
}

func (c *forecastControllerImpl) RegisterAPI(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "get-forecast-status",
		Method:      http.MethodGet,
		Path:        "/api/v1/forecast/status",
		Summary:     "Forecast request status",
		Description: "Current lifecycle state of the forecast request and the size of the displayed collection",
		Tags:        []string{"forecast"},
	}, c.handleStatus)

	huma.Register(api, huma.Operation{
		OperationID: "get-forecast-points",
		Method:      http.MethodGet,
		Path:        "/api/v1/forecast/points",
		Summary:     "Current forecast points",
		Description: "GeoJSON FeatureCollection of the current coloured forecast points; empty before the first success",
		Tags:        []string{"forecast"},
	}, c.handlePoints)

	huma.Register(api, huma.Operation{
		OperationID:   "refresh-forecast",
		Method:        http.MethodPost,
		Path:          "/api/v1/forecast/refresh",
		Summary:       "Request a new forecast",
		Description:   "Fetches a new multi-day forecast from the backend and publishes it to every open map",
		Tags:          []string{"forecast"},
		DefaultStatus: http.StatusOK,
		Errors:        []int{http.StatusConflict, http.StatusBadGateway},
	}, c.handleRefresh)
}

func (c *forecastControllerImpl) statusBody() StatusBody {
	s := c.service.State()
	body := StatusBody{
		Status:  s.Status.String(),
		Loading: s.Loading,
		Message: s.Message,
	}
	if pc, ok := c.service.Current(); ok {
		body.Points = pc.Len()
	}
	return body
}

func (c *forecastControllerImpl) handleStatus(ctx context.Context, input *struct{}) (*StatusOutput, error) {
	return &StatusOutput{Body: c.statusBody()}, nil
}

func (c *forecastControllerImpl) handlePoints(ctx context.Context, input *struct{}) (*PointsOutput, error) {
	pc, _ := c.service.Current()
	b, err := pc.MarshalGeoJSON()
	if err != nil {
		c.logger.Error("points: marshal failed", "error", err)
		return nil, huma.Error500InternalServerError("failed to encode points")
	}
	return &PointsOutput{ContentType: geoJSONContentType, Body: b}, nil
}

// handleRefresh waits for the forecast, but the outbound request is shared by
// every open page, so a caller that disconnects must not cancel it.
func (c *forecastControllerImpl) handleRefresh(ctx context.Context, input *struct{}) (*StatusOutput, error) {
	err := c.service.RequestForecast(context.WithoutCancel(ctx))
	switch {
	case errors.Is(err, forecast.ErrRequestInFlight):
		return nil, huma.Error409Conflict("a forecast request is already in flight")
	case err != nil:
		return nil, huma.Error502BadGateway(forecast.FailureMessage)
	}
	return &StatusOutput{Body: c.statusBody()}, nil
}
