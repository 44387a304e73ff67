package geocoder

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestMapboxGeocoder_ReverseGeocode(t *testing.T) {
	tests := []struct {
		name          string
		statusCode    int
		responseBody  string
		ctxFunc       func() (context.Context, context.CancelFunc)
		expectedPlace string
		expectedErr   error
		errContains   string
	}{
		{
			name:          "Success - First Feature",
			statusCode:    http.StatusOK,
			responseBody:  `{"features":[{"place_name":"Cluj-Napoca, Cluj, România"},{"place_name":"Floresti"}]}`,
			expectedPlace: "Cluj-Napoca, Cluj, România",
		},
		{
			name:         "Error - Empty Feature List",
			statusCode:   http.StatusOK,
			responseBody: `{"type":"FeatureCollection","features":[]}`,
			expectedErr:  ErrEmptyResponse,
		},
		{
			name:         "Error - Missing Features",
			statusCode:   http.StatusOK,
			responseBody: `{}`,
			expectedErr:  ErrEmptyResponse,
		},
		{
			name:        "Error - Unauthorized",
			statusCode:  http.StatusUnauthorized,
			errContains: "unexpected status code: 401",
		},
		{
			name:         "Error - Malformed JSON",
			statusCode:   http.StatusOK,
			responseBody: `{"features":[`,
			errContains:  "failed to decode response",
		},
		{
			name: "Error - Context Cancelled",
			ctxFunc: func() (context.Context, context.CancelFunc) {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx, cancel
			},
			errContains: "context canceled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/places/23.59,46.77.json" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}
				if got := r.URL.Query().Get("access_token"); got != "pk.test" {
					t.Errorf("unexpected token %q", got)
				}
				if got := r.URL.Query().Get("language"); got != "ro" {
					t.Errorf("unexpected language %q", got)
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.responseBody))
			}))
			defer server.Close()

			ctx, cancel := context.WithCancel(context.Background())
			if tt.ctxFunc != nil {
				ctx, cancel = tt.ctxFunc()
			}
			defer cancel()

			template := server.URL + "/places/{lon},{lat}.json?types=place&language={lang}&access_token={token}"
			g := NewMapboxGeocoder(zap.NewNop(), template, "ro", "pk.test")

			place, err := g.ReverseGeocode(ctx, 46.77, 23.59)

			switch {
			case tt.expectedErr != nil:
				if !errors.Is(err, tt.expectedErr) {
					t.Fatalf("expected %v, got %v", tt.expectedErr, err)
				}
			case tt.errContains != "":
				if err == nil || !strings.Contains(err.Error(), tt.errContains) {
					t.Fatalf("expected error containing %q, got %v", tt.errContains, err)
				}
			default:
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if place != tt.expectedPlace {
					t.Errorf("expected %q, got %q", tt.expectedPlace, place)
				}
			}
		})
	}
}

func TestMapboxGeocoder_URL(t *testing.T) {
	g := NewMapboxGeocoder(zap.NewNop(), "https://geo.test/{lon},{lat}.json?language={lang}&access_token={token}", "en", "a b&c")

	got := g.URL(-33.8688, 151.2093)
	want := "https://geo.test/151.2093,-33.8688.json?language=en&access_token=a+b%26c"
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}

func TestMapboxGeocoder_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	endpoint := server.URL
	server.Close()

	g := NewMapboxGeocoder(zap.NewNop(), endpoint+"/{lon},{lat}", "ro", "t")
	if _, err := g.ReverseGeocode(context.Background(), 1, 2); err == nil || !strings.Contains(err.Error(), "network error") {
		t.Errorf("expected network error, got %v", err)
	}
}
