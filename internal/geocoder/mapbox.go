package geocoder

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/genricoloni/photoframe/internal/metrics"
	"go.uber.org/zap"
)

const _maxResponseSize = 1 * 1024 * 1024 // 1 MB

// ErrEmptyResponse is returned when the lookup succeeded but matched no place
var ErrEmptyResponse = errors.New("empty response")

type mapboxResponse struct {
	Features []struct {
		PlaceName string `json:"place_name"`
	} `json:"features"`
}

// MapboxGeocoder resolves coordinates through a templated reverse geocoding endpoint.
// The template may contain {lat}, {lon}, {lang} and {token}.
type MapboxGeocoder struct {
	logger   *zap.Logger
	client   *http.Client
	template string
	language string
	token    string
}

// NewMapboxGeocoder creates a geocoder for the given endpoint template
func NewMapboxGeocoder(logger *zap.Logger, template, language, token string) *MapboxGeocoder {
	return &MapboxGeocoder{
		logger:   logger,
		template: template,
		language: language,
		token:    token,
		client: &http.Client{
			Timeout: 10 * time.Second, // the worker waits on this call
		},
	}
}

// URL renders the endpoint for one lookup
func (g *MapboxGeocoder) URL(lat, lon float32) string {
	return strings.NewReplacer(
		"{lat}", formatCoord(lat),
		"{lon}", formatCoord(lon),
		"{lang}", url.QueryEscape(g.language),
		"{token}", url.QueryEscape(g.token),
	).Replace(g.template)
}

// ReverseGeocode returns the place name of the first feature.
// It never panics; every failure comes back as an error.
func (g *MapboxGeocoder) ReverseGeocode(ctx context.Context, lat, lon float32) (string, error) {
	place, err := g.lookup(ctx, lat, lon)
	switch {
	case err == nil:
		metrics.GeocodeRequests.WithLabelValues("ok").Inc()
	case errors.Is(err, ErrEmptyResponse):
		metrics.GeocodeRequests.WithLabelValues("empty").Inc()
	default:
		metrics.GeocodeRequests.WithLabelValues("error").Inc()
	}
	return place, err
}

func (g *MapboxGeocoder) lookup(ctx context.Context, lat, lon float32) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.URL(lat, lon), nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "photoframe/1.0")

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("network error: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var body mapboxResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, _maxResponseSize)).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	if len(body.Features) == 0 {
		return "", ErrEmptyResponse
	}

	place := body.Features[0].PlaceName
	g.logger.Debug("Location resolved",
		zap.Float32("lat", lat),
		zap.Float32("lon", lon),
		zap.String("place", place))
	return place, nil
}

func formatCoord(v float32) string {
	return strconv.FormatFloat(float64(v), 'f', -1, 32)
}
