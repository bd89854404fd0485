package weatherapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"notion-reminder-service/internal/domain"
	"notion-reminder-service/internal/domain/model"
	"notion-reminder-service/internal/domain/ports/adapter"
)

var _ adapter.WeatherProvider = (*Client)(nil)

// Client talks to the data.gov.sg real-time weather API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	clock      clockwork.Clock
	loc        *time.Location
	log        *zerolog.Logger
}

func NewClient(baseURL string, timeout time.Duration, clock clockwork.Clock, loc *time.Location, logger *zerolog.Logger) *Client {
	l := logger.With().Str("component", "WeatherAPI").Logger()
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		clock:      clock,
		loc:        loc,
		log:        &l,
	}
}

// ---- wire types ----

type rainfallResponse struct {
	Code     int          `json:"code"`
	ErrorMsg string       `json:"errorMsg"`
	Data     rainfallData `json:"data"`
}

type rainfallData struct {
	Stations    []stationPayload `json:"stations"`
	Readings    []readingPayload `json:"readings"`
	ReadingType string           `json:"readingType"`
	ReadingUnit string           `json:"readingUnit"`
}

type stationPayload struct {
	ID       string `json:"id"`
	DeviceID string `json:"deviceId"`
	Name     string `json:"name"`
	Location struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"location"`
}

type readingPayload struct {
	Timestamp string `json:"timestamp"`
	Data      []struct {
		StationID string  `json:"stationId"`
		Value     float64 `json:"value"`
	} `json:"data"`
}

type forecastResponse struct {
	Code     int    `json:"code"`
	ErrorMsg string `json:"errorMsg"`
	Data     struct {
		Items []struct {
			Timestamp   string `json:"timestamp"`
			ValidPeriod struct {
				Start string `json:"start"`
				End   string `json:"end"`
				Text  string `json:"text"`
			} `json:"valid_period"`
			Forecasts []struct {
				Area     string `json:"area"`
				Forecast string `json:"forecast"`
			} `json:"forecasts"`
		} `json:"items"`
	} `json:"data"`
}

// FetchRainfall returns the station directory and the current reading batch.
// The provider's own reading timestamp is surfaced verbatim; the ingestion
// pipeline needs it for the slot-consistency check.
func (c *Client) FetchRainfall(ctx context.Context) (*adapter.RainfallObservations, error) {
	var payload rainfallResponse
	if err := c.get(ctx, "rainfall", &payload); err != nil {
		return nil, err
	}
	if payload.Code != 0 {
		return nil, fmt.Errorf("rainfall feed: provider error %d: %s", payload.Code, payload.ErrorMsg)
	}
	if len(payload.Data.Readings) == 0 || len(payload.Data.Readings[0].Data) == 0 {
		return nil, domain.ErrEmptyReadingBatch
	}

	obs := &adapter.RainfallObservations{
		Timestamp: payload.Data.Readings[0].Timestamp,
	}
	for _, s := range payload.Data.Stations {
		obs.Stations = append(obs.Stations, &model.RainfallStation{
			ID:        s.ID,
			DeviceID:  s.DeviceID,
			Name:      s.Name,
			Latitude:  s.Location.Latitude,
			Longitude: s.Location.Longitude,
		})
	}
	for _, r := range payload.Data.Readings[0].Data {
		obs.Readings = append(obs.Readings, adapter.StationReading{
			StationID: r.StationID,
			Value:     r.Value,
		})
	}
	return obs, nil
}

// FetchTwoHourForecast returns the current area forecast window.
func (c *Client) FetchTwoHourForecast(ctx context.Context) (*model.ForecastWindow, error) {
	var payload forecastResponse
	if err := c.get(ctx, "two-hr-forecast", &payload); err != nil {
		return nil, err
	}
	if payload.Code != 0 {
		return nil, fmt.Errorf("forecast feed: provider error %d: %s", payload.Code, payload.ErrorMsg)
	}
	if len(payload.Data.Items) == 0 {
		return nil, fmt.Errorf("forecast feed: %w", domain.ErrNotFound)
	}

	item := payload.Data.Items[0]
	window := &model.ForecastWindow{
		ValidFrom: item.ValidPeriod.Start,
		ValidTo:   item.ValidPeriod.End,
		ValidText: item.ValidPeriod.Text,
	}
	for _, f := range item.Forecasts {
		window.Forecasts = append(window.Forecasts, model.AreaForecast{Area: f.Area, Forecast: f.Forecast})
	}
	return window, nil
}

func (c *Client) get(ctx context.Context, endpoint string, out interface{}) error {
	now := c.clock.Now().In(c.loc)
	q := url.Values{"date": {now.Format("2006-01-02T15:04:05")}}
	fullURL := fmt.Sprintf("%s/%s?%s", c.baseURL, endpoint, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%s: status %d: %s", endpoint, resp.StatusCode, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}
