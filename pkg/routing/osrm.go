package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/Sahilcoder4/greenroute-repo/pkg/core"
	"github.com/Sahilcoder4/greenroute-repo/pkg/emissions"
	"github.com/Sahilcoder4/greenroute-repo/pkg/geo"
	"github.com/Sahilcoder4/greenroute-repo/pkg/monitoring"
	"github.com/Sahilcoder4/greenroute-repo/pkg/tracing"
)

const (
	DefaultOSRMBaseURL = "https://router.project-osrm.org"

	defaultRouteCacheSize = 256
)

// OSRMOptions configures the OSRM client
type OSRMOptions struct {
	BaseURL   string
	Profile   string // "driving" for road freight
	CacheSize int
	Retry     core.RetryOptions
}

func DefaultOSRMOptions() OSRMOptions {
	return OSRMOptions{
		BaseURL:   DefaultOSRMBaseURL,
		Profile:   "driving",
		CacheSize: defaultRouteCacheSize,
		Retry:     core.DefaultRetryOptions,
	}
}

type osrmRoute struct {
	Distance float64 `json:"distance"` // metres
	Duration float64 `json:"duration"` // seconds
	Geometry string  `json:"geometry"` // polyline6
}

type osrmRouteResponse struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Routes  []osrmRoute `json:"routes"`
}

type osrmNearestResponse struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Waypoints []struct {
		Location []float64 `json:"location"` // lon, lat
	} `json:"waypoints"`
}

// OSRMClient fetches driving routes from an OSRM server and caches them by
// coordinates and options.
type OSRMClient struct {
	opts   OSRMOptions
	client *core.Client
	cache  *lru.Cache[string, []Route]
}

func NewOSRMClient(client *core.Client, opts OSRMOptions) (*OSRMClient, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultOSRMBaseURL
	}
	if opts.Profile == "" {
		opts.Profile = "driving"
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = defaultRouteCacheSize
	}
	cache, err := lru.New[string, []Route](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create route cache: %w", err)
	}
	return &OSRMClient{opts: opts, client: client, cache: cache}, nil
}

func coordString(points []geo.Location) string {
	parts := make([]string, len(points))
	for i, p := range points {
		// OSRM expects lon,lat
		parts[i] = fmt.Sprintf("%.6f,%.6f", p.Longitude, p.Latitude)
	}
	return strings.Join(parts, ";")
}

// Routes returns the primary route followed by any alternatives the server found
func (c *OSRMClient) Routes(ctx context.Context, from, to geo.Location, alternatives bool) ([]Route, error) {
	coords := coordString([]geo.Location{from, to})
	key := fmt.Sprintf("%s|%s|%v", coords, c.opts.Profile, alternatives)

	if cached, ok := c.cache.Get(key); ok {
		monitoring.RecordCacheHit(tracing.CacheTypeRoute)
		return cached, nil
	}
	monitoring.RecordCacheMiss(tracing.CacheTypeRoute)

	q := url.Values{}
	q.Set("overview", "full")
	q.Set("geometries", "polyline6")
	q.Set("steps", "false")
	q.Set("alternatives", fmt.Sprintf("%v", alternatives))
	reqURL := fmt.Sprintf("%s/route/v1/%s/%s?%s",
		strings.TrimRight(c.opts.BaseURL, "/"), c.opts.Profile, coords, q.Encode())

	var body osrmRouteResponse
	if err := c.getJSON(ctx, "route", reqURL, &body); err != nil {
		return nil, err
	}
	if body.Code != "Ok" {
		return nil, fmt.Errorf("OSRM error %s: %s", body.Code, body.Message)
	}
	if len(body.Routes) == 0 {
		return nil, fmt.Errorf("OSRM returned no routes")
	}

	routes := make([]Route, 0, len(body.Routes))
	for _, r := range body.Routes {
		points, err := core.DecodePolylinePrecision(r.Geometry, core.Precision6)
		if err != nil {
			return nil, fmt.Errorf("decode route geometry: %w", err)
		}
		routes = append(routes, Route{
			Coordinates: points,
			DistanceKm:  emissions.Round2(r.Distance / 1000),
			DurationMin: emissions.Round2(r.Duration / 60),
		})
	}

	c.cache.Add(key, routes)
	monitoring.UpdateCacheSize(tracing.CacheTypeRoute, c.cache.Len())
	return routes, nil
}

// Snap moves a point onto the nearest routable road
func (c *OSRMClient) Snap(ctx context.Context, p geo.Location) (geo.Location, error) {
	reqURL := fmt.Sprintf("%s/nearest/v1/%s/%s?number=1",
		strings.TrimRight(c.opts.BaseURL, "/"), c.opts.Profile, coordString([]geo.Location{p}))

	var body osrmNearestResponse
	if err := c.getJSON(ctx, "nearest", reqURL, &body); err != nil {
		return p, err
	}
	if body.Code != "Ok" || len(body.Waypoints) == 0 || len(body.Waypoints[0].Location) != 2 {
		return p, fmt.Errorf("OSRM nearest returned %s: %s", body.Code, body.Message)
	}
	loc := body.Waypoints[0].Location
	return geo.Location{Latitude: loc[1], Longitude: loc[0]}, nil
}

// Ping checks that the server answers a trivial nearest query
func (c *OSRMClient) Ping(ctx context.Context) error {
	_, err := c.Snap(ctx, geo.Location{})
	return err
}

func (c *OSRMClient) getJSON(ctx context.Context, operation, reqURL string, out any) error {
	resp, err := c.client.Do(ctx, tracing.ServiceOSRM, operation, func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	}, c.opts.Retry)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		slog.Default().Warn("failed to decode OSRM response", "operation", operation, "error", err)
		return core.NewError(core.ErrParseError, fmt.Sprintf("invalid OSRM %s response: %v", operation, err))
	}
	return nil
}
