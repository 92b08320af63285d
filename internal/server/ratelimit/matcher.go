package ratelimit

import (
	"net/http"
	"strings"
	"time"
)

// EndpointConfig is the limit for one method and path. A Path ending in "/"
// matches every path under it, and all of those paths share one bucket.
type EndpointConfig struct {
	Path   string
	Method string
	Limit  int // Requests per Window; <= 0 means unlimited
	Window time.Duration
	Burst  int // Defaults to Limit
}

func (e EndpointConfig) burst() int {
	if e.Burst > 0 {
		return e.Burst
	}
	return e.Limit
}

func (e EndpointConfig) refillRate() float64 {
	window := e.Window
	if window <= 0 {
		window = time.Minute
	}
	return float64(e.Limit) / window.Seconds()
}

// key groups requests into a bucket. Prefix endpoints share one bucket.
func (e EndpointConfig) key(path string) string {
	if e.Path != "" {
		return e.Path
	}
	return path
}

// DefaultEndpoints returns the per-endpoint limits for the matching API.
// Stateless ranking carries its own candidate pool and is the most expensive call.
func DefaultEndpoints() []EndpointConfig {
	return []EndpointConfig{
		{Path: "/v1/rank", Method: http.MethodPost, Limit: 60, Window: time.Minute, Burst: 10},
		{Path: "/v1/matches", Method: http.MethodGet, Limit: 120, Window: time.Minute, Burst: 20},
		{Path: "/v1/matches/", Method: http.MethodPost, Limit: 300, Window: time.Minute, Burst: 30},
		{Path: "/v1/preferences", Method: http.MethodPut, Limit: 30, Window: time.Minute, Burst: 5},
	}
}

// MatchEndpoint returns the configuration for method and path, or nil when
// the default limit applies. Health and metrics are never limited.
func MatchEndpoint(path, method string, configs []EndpointConfig) *EndpointConfig {
	if method == http.MethodGet && (path == "/health" || path == "/metrics") {
		return &EndpointConfig{Limit: 0}
	}

	for i := range configs {
		if configs[i].Method == method && configs[i].Path == path {
			return &configs[i]
		}
	}
	for i := range configs {
		c := &configs[i]
		if c.Method == method && strings.HasSuffix(c.Path, "/") && strings.HasPrefix(path, c.Path) {
			return c
		}
	}
	return nil
}
