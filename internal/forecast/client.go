package forecast

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// DefaultEndpoint is the local forecast backend.
const DefaultEndpoint = "http://localhost:8000/api/v1/forecast"

var (
	ErrNetwork          = errors.New("forecast backend unreachable")
	ErrNonSuccessStatus = errors.New("forecast backend returned non-success status")
	ErrBodyParse        = errors.New("forecast response malformed")
)

// record mirrors one entry of the backend's "forecast" array. Pointer fields
// let the decoder tell a missing value from a zero one.
type record struct {
	Lon           *float64 `json:"lon"`
	Lat           *float64 `json:"lat"`
	PredictedPM25 *float64 `json:"predicted_pm25"`
	Timestamp     *string  `json:"timestamp"`
}

type response struct {
	Forecast []record `json:"forecast"`
}

type Client struct {
	httpClient *http.Client
	endpoint   string
}

func NewClient(endpoint string) *Client {
	return NewClientWithHTTPClient(endpoint, &http.Client{})
}

func NewClientWithHTTPClient(endpoint string, httpClient *http.Client) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		httpClient: httpClient,
		endpoint:   endpoint,
	}
}

// Forecast posts the date window to the backend and returns its points in
// response order.
func (c *Client) Forecast(ctx context.Context, req Request) ([]ForecastPoint, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: status %d: %s", ErrNonSuccessStatus, resp.StatusCode, string(body))
	}

	var apiResp response
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBodyParse, err)
	}
	if apiResp.Forecast == nil {
		return nil, fmt.Errorf("%w: missing forecast field", ErrBodyParse)
	}

	points := make([]ForecastPoint, 0, len(apiResp.Forecast))
	for i, r := range apiResp.Forecast {
		if r.Lon == nil || r.Lat == nil || r.PredictedPM25 == nil || r.Timestamp == nil {
			return nil, fmt.Errorf("%w: record %d is incomplete", ErrBodyParse, i)
		}
		points = append(points, ForecastPoint{
			Latitude:  *r.Lat,
			Longitude: *r.Lon,
			PM25:      *r.PredictedPM25,
			Timestamp: *r.Timestamp,
		})
	}
	return points, nil
}
