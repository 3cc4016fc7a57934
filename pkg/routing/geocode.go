package routing

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/Sahilcoder4/greenroute-repo/pkg/core"
	"github.com/Sahilcoder4/greenroute-repo/pkg/emissions"
	"github.com/Sahilcoder4/greenroute-repo/pkg/geo"
	"github.com/Sahilcoder4/greenroute-repo/pkg/monitoring"
	"github.com/Sahilcoder4/greenroute-repo/pkg/tracing"
)

const DefaultNominatimBaseURL = "https://nominatim.openstreetmap.org"

// Geocoder resolves a free-text place name to a coordinate
type Geocoder interface {
	Geocode(ctx context.Context, place string) (geo.Location, error)
}

// NominatimOptions configures the Nominatim geocoder
type NominatimOptions struct {
	BaseURL      string
	CountryCodes string // comma separated ISO 3166-1 alpha-2, empty for worldwide
	CacheSize    int
	CacheTTL     time.Duration
	Retry        core.RetryOptions
}

func DefaultNominatimOptions() NominatimOptions {
	return NominatimOptions{
		BaseURL:   DefaultNominatimBaseURL,
		CacheSize: 512,
		CacheTTL:  24 * time.Hour,
		Retry:     core.DefaultRetryOptions,
	}
}

type nominatimPlace struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// NominatimGeocoder looks places up with the Nominatim search API
type NominatimGeocoder struct {
	opts   NominatimOptions
	client *core.Client
	cache  *expirable.LRU[string, geo.Location]
}

func NewNominatimGeocoder(client *core.Client, opts NominatimOptions) *NominatimGeocoder {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultNominatimBaseURL
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = 512
	}
	return &NominatimGeocoder{
		opts:   opts,
		client: client,
		cache:  expirable.NewLRU[string, geo.Location](opts.CacheSize, nil, opts.CacheTTL),
	}
}

func (g *NominatimGeocoder) Geocode(ctx context.Context, place string) (geo.Location, error) {
	key := emissions.Normalize(place)
	if key == "" {
		return geo.Location{}, core.NewValidationError(core.ErrMissingParameter, "place name is required")
	}
	if loc, ok := g.cache.Get(key); ok {
		monitoring.RecordCacheHit(tracing.CacheTypeGeocode)
		return loc, nil
	}
	monitoring.RecordCacheMiss(tracing.CacheTypeGeocode)

	q := url.Values{}
	q.Set("format", "json")
	q.Set("limit", "1")
	q.Set("q", place)
	if g.opts.CountryCodes != "" {
		q.Set("countrycodes", g.opts.CountryCodes)
	}
	reqURL := strings.TrimRight(g.opts.BaseURL, "/") + "/search?" + q.Encode()

	resp, err := g.client.Do(ctx, tracing.ServiceNominatim, "search", func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		return req, nil
	}, g.opts.Retry)
	if err != nil {
		return geo.Location{}, err
	}
	defer resp.Body.Close()

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return geo.Location{}, core.NewError(core.ErrParseError, fmt.Sprintf("invalid geocoder response: %v", err))
	}
	if len(places) == 0 {
		return geo.Location{}, core.NewError(core.ErrInvalidInput, fmt.Sprintf("could not geocode %q", place)).
			WithQuery(place).
			WithGuidance("Try another city or a more specific place name.")
	}

	lat, errLat := strconv.ParseFloat(places[0].Lat, 64)
	lon, errLon := strconv.ParseFloat(places[0].Lon, 64)
	if errLat != nil || errLon != nil {
		return geo.Location{}, core.NewError(core.ErrParseError, fmt.Sprintf("invalid coordinates for %q", place))
	}
	loc := geo.Location{Latitude: lat, Longitude: lon}
	if err := loc.Validate(); err != nil {
		return geo.Location{}, err
	}

	g.cache.Add(key, loc)
	monitoring.UpdateCacheSize(tracing.CacheTypeGeocode, g.cache.Len())
	return loc, nil
}

// Ping checks the Nominatim status endpoint
func (g *NominatimGeocoder) Ping(ctx context.Context) error {
	reqURL := strings.TrimRight(g.opts.BaseURL, "/") + "/status?format=json"
	resp, err := g.client.Do(ctx, tracing.ServiceNominatim, "status", func(ctx context.Context) (*http.Request, error) {
		return http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	}, core.NoRetry)
	if err != nil {
		return err
	}
	return resp.Body.Close()
}
