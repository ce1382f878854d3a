package forecast

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClient_Forecast(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantErr    error
		wantPoints int
	}{
		{
			name:   "success",
			status: http.StatusOK,
			body: `{"forecast":[
				{"lon":77.1025,"lat":28.7041,"predicted_pm25":88.5,"timestamp":"2024-06-10T00:00:00"},
				{"lon":77.1025,"lat":28.7041,"predicted_pm25":91.2,"timestamp":"2024-06-10T01:00:00"}
			]}`,
			wantPoints: 2,
		},
		{
			name:       "empty forecast is success",
			status:     http.StatusOK,
			body:       `{"forecast":[]}`,
			wantPoints: 0,
		},
		{
			name:    "non success status",
			status:  http.StatusInternalServerError,
			body:    `{"detail":"boom"}`,
			wantErr: ErrNonSuccessStatus,
		},
		{
			name:    "not json",
			status:  http.StatusOK,
			body:    `<html>oops</html>`,
			wantErr: ErrBodyParse,
		},
		{
			name:    "missing forecast field",
			status:  http.StatusOK,
			body:    `{"predictions":[]}`,
			wantErr: ErrBodyParse,
		},
		{
			name:    "forecast is an error object",
			status:  http.StatusOK,
			body:    `{"forecast":{"error":"Model not loaded."}}`,
			wantErr: ErrBodyParse,
		},
		{
			name:    "record missing pm25",
			status:  http.StatusOK,
			body:    `{"forecast":[{"lon":77.1,"lat":28.7,"timestamp":"2024-06-10T00:00:00"}]}`,
			wantErr: ErrBodyParse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			points, err := NewClient(srv.URL).Forecast(context.Background(), Request{StartDate: "2024-06-10", EndDate: "2024-06-15"})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Forecast() error = %v; want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Forecast() error = %v; want nil", err)
			}
			if len(points) != tt.wantPoints {
				t.Errorf("len(points) = %d; want %d", len(points), tt.wantPoints)
			}
		})
	}
}

func TestClient_Forecast_requestShape(t *testing.T) {
	var (
		gotMethod      string
		gotContentType string
		gotBody        Request
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotContentType = r.Header.Get("Content-Type")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decode request body: %v", err)
		}
		_, _ = w.Write([]byte(`{"forecast":[{"lon":77.1025,"lat":28.7041,"predicted_pm25":12,"timestamp":"2024-06-10T00:00:00"}]}`))
	}))
	defer srv.Close()

	points, err := NewClient(srv.URL).Forecast(context.Background(), Request{StartDate: "2024-02-28", EndDate: "2024-03-04"})
	if err != nil {
		t.Fatalf("Forecast() error = %v", err)
	}

	if gotMethod != http.MethodPost {
		t.Errorf("method = %q; want POST", gotMethod)
	}
	if gotContentType != "application/json" {
		t.Errorf("Content-Type = %q; want application/json", gotContentType)
	}
	if gotBody.StartDate != "2024-02-28" || gotBody.EndDate != "2024-03-04" {
		t.Errorf("body = %+v; want start 2024-02-28 end 2024-03-04", gotBody)
	}

	want := ForecastPoint{Latitude: 28.7041, Longitude: 77.1025, PM25: 12, Timestamp: "2024-06-10T00:00:00"}
	if points[0] != want {
		t.Errorf("points[0] = %+v; want %+v", points[0], want)
	}
}

func TestClient_Forecast_networkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(url).Forecast(context.Background(), Request{})
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("Forecast() error = %v; want ErrNetwork", err)
	}
}

func TestClient_Forecast_nonSuccessIncludesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Forecast(context.Background(), Request{})
	if err == nil || !strings.Contains(err.Error(), "502") {
		t.Fatalf("Forecast() error = %v; want message containing status 502", err)
	}
}

func TestNewClient_defaultEndpoint(t *testing.T) {
	c := NewClient("")
	if c.endpoint != DefaultEndpoint {
		t.Errorf("endpoint = %q; want %q", c.endpoint, DefaultEndpoint)
	}
}
