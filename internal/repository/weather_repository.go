package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/fakhrymubarak/weather-tracker/internal/cache"
	"github.com/fakhrymubarak/weather-tracker/internal/config"
	"github.com/fakhrymubarak/weather-tracker/internal/model"
)

// Custom error types
var (
	ErrPincodeNotFound   = errors.New("pincode not found")
	ErrAPIKeyMissing     = errors.New("API key missing")
	ErrExternalAPI       = errors.New("external API error")
	ErrMalformedResponse = errors.New("malformed API response")
)

// WeatherRepository defines the interface for weather data access
type WeatherRepository interface {
	// FetchCurrent returns the current conditions for a pincode along with
	// the raw response payload for archival.
	FetchCurrent(ctx context.Context, pincode string) (*model.Observation, []byte, error)
}

// weatherRepository implements WeatherRepository
type weatherRepository struct {
	cfg        config.Settings
	payloads   *cache.Cache
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker
}

// NewWeatherRepository creates a new weather repository instance
func NewWeatherRepository(cfg config.Settings, payloads *cache.Cache, httpClient ...*http.Client) WeatherRepository {
	client := &http.Client{Timeout: cfg.HTTPTimeout}
	if len(httpClient) > 0 && httpClient[0] != nil {
		client = httpClient[0]
	}
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openweathermap",
		MaxRequests: 3,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})
	return &weatherRepository{
		cfg:        cfg,
		payloads:   payloads,
		httpClient: client,
		breaker:    breaker,
	}
}

// FetchCurrent retrieves weather data, checking cache first, then the external API
func (r *weatherRepository) FetchCurrent(ctx context.Context, pincode string) (*model.Observation, []byte, error) {
	if raw, ok := r.payloads.Get(ctx, pincode); ok {
		if obs, err := decodeObservation(pincode, raw); err == nil {
			obs.Cached = true
			return obs, raw, nil
		}
		// An undecodable cache entry is treated as a miss.
	}

	raw, err := r.fetchFromExternalAPI(ctx, pincode)
	if err != nil {
		return nil, nil, err
	}

	obs, err := decodeObservation(pincode, raw)
	if err != nil {
		return nil, nil, err
	}

	r.payloads.Put(ctx, pincode, raw)

	return obs, raw, nil
}

// fetchFromExternalAPI retrieves the raw payload from the OpenWeatherMap API.
// The call goes through a circuit breaker; an open breaker reports as
// ErrExternalAPI. There are no retries.
func (r *weatherRepository) fetchFromExternalAPI(ctx context.Context, pincode string) ([]byte, error) {
	if r.cfg.APIKey == "" {
		return nil, ErrAPIKeyMissing
	}

	url := fmt.Sprintf("%s?zip=%s,%s&appid=%s&units=metric",
		r.cfg.APIURL, pincode, r.cfg.CountryCode, r.cfg.APIKey)

	body, err := r.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrExternalAPI, err)
		}
		resp, err := r.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrExternalAPI, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			if resp.StatusCode == http.StatusNotFound {
				return nil, ErrPincodeNotFound
			}
			return nil, fmt.Errorf("%w: status %d", ErrExternalAPI, resp.StatusCode)
		}

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrExternalAPI, err)
		}
		return raw, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, fmt.Errorf("%w: %v", ErrExternalAPI, err)
		}
		return nil, err
	}

	return body.([]byte), nil
}

// decodeObservation maps a raw OpenWeatherMap payload into an Observation.
// A payload missing the name or conditions is ErrMalformedResponse.
func decodeObservation(pincode string, raw []byte) (*model.Observation, error) {
	var data model.OpenWeatherMapResponse
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if data.Name == "" || len(data.Weather) == 0 {
		return nil, ErrMalformedResponse
	}

	return &model.Observation{
		Pincode:      pincode,
		Location:     data.Name,
		TemperatureC: data.Main.Temp,
		Humidity:     data.Main.Humidity,
		Description:  data.Weather[0].Description,
		WindSpeed:    data.Wind.Speed,
		Cached:       false,
	}, nil
}
