package tools

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"go.opentelemetry.io/otel/attribute"

	"github.com/Sahilcoder4/greenroute-repo/pkg/core"
	"github.com/Sahilcoder4/greenroute-repo/pkg/geo"
	"github.com/Sahilcoder4/greenroute-repo/pkg/report"
	"github.com/Sahilcoder4/greenroute-repo/pkg/routing"
	"github.com/Sahilcoder4/greenroute-repo/pkg/tracing"
	"github.com/Sahilcoder4/greenroute-repo/pkg/trip"
)

// ErrRouterUnavailable is returned by EstimateTrip when no router is configured
var ErrRouterUnavailable = errors.New("routing is not configured")

// RouteInfo describes one route of a plan; the geometry is an encoded polyline
type RouteInfo struct {
	DistanceKm  float64 `json:"distance_km"`
	DurationMin float64 `json:"duration_min,omitempty"`
	Points      int     `json:"points"`
	Polyline    string  `json:"polyline,omitempty"`
}

// RouteOutput is the tool view of a routing plan
type RouteOutput struct {
	Start     geo.Location `json:"start"`
	End       geo.Location `json:"end"`
	Baseline  RouteInfo    `json:"baseline"`
	Optimized *RouteInfo   `json:"optimized,omitempty"`
	Note      string       `json:"note"`
	Outcome   string       `json:"outcome"`
	Degraded  bool         `json:"degraded"`
}

func routeInfo(r routing.Route) RouteInfo {
	info := RouteInfo{
		DistanceKm:  r.DistanceKm,
		DurationMin: r.DurationMin,
		Points:      len(r.Coordinates),
	}
	if len(r.Coordinates) > 0 {
		info.Polyline = core.EncodePolyline(r.Coordinates)
	}
	return info
}

func newRouteOutput(p routing.Plan) RouteOutput {
	out := RouteOutput{
		Start:    p.Start,
		End:      p.End,
		Baseline: routeInfo(p.Baseline),
		Note:     p.Note,
		Outcome:  p.Outcome,
		Degraded: p.Degraded(),
	}
	if p.Optimized != nil {
		opt := routeInfo(*p.Optimized)
		out.Optimized = &opt
	}
	return out
}

// PlanRouteTool returns a tool definition for route planning
func PlanRouteTool() mcp.Tool {
	return mcp.NewTool("plan_route",
		mcp.WithDescription("Geocode two places and plan a road route between them. Trips of 100 km or more also get an alternative route. Routing failures return a degraded straight-line plan with a note."),
		mcp.WithString("start",
			mcp.Required(),
			mcp.Description("Start place, e.g. a city name"),
		),
		mcp.WithString("end",
			mcp.Required(),
			mcp.Description("Destination place"),
		),
	)
}

// HandlePlanRoute plans a route between two places
func (r *Registry) HandlePlanRoute(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := slog.Default().With("tool", "plan_route")

	values, result, err := ValidateRequiredStrings(req, "plan_route", logger, "start", "end")
	if err != nil {
		return result, nil
	}
	if r.deps.Router == nil {
		return routerUnavailable(), nil
	}

	plan := r.deps.Router.Route(ctx, values[0], values[1])
	return jsonResult(logger, newRouteOutput(plan)), nil
}

func routerUnavailable() *mcp.CallToolResult {
	return toToolError(ErrRouterUnavailable, nil).ToMCPResult()
}

// Marker is a sampled point styled for map renderers
type Marker struct {
	Lat    float64 `json:"lat"`
	Lon    float64 `json:"lon"`
	Color  string  `json:"color"`
	Weight float64 `json:"weight"`
}

// EstimateTripOutput is the full estimate of a routed trip
type EstimateTripOutput struct {
	Route      RouteOutput            `json:"route"`
	Trip       trip.TripResult        `json:"trip"`
	Markers    []Marker               `json:"markers"`
	Comparison *trip.ComparisonResult `json:"fuel_comparison,omitempty"`
	Savings    *SavingsOutput         `json:"savings,omitempty"`
	Summary    []string               `json:"summary"`
}

// EstimateTripEmissionsTool returns a tool definition for trip estimation
func EstimateTripEmissionsTool() mcp.Tool {
	return mcp.NewTool("estimate_trip_emissions",
		mcp.WithDescription("Route a freight trip between two places, attribute WTT, TTW and WTW emissions to sampled route points, compare alternative fuels and report the saving of the optimized route against the baseline"),
		mcp.WithString("start",
			mcp.Required(),
			mcp.Description("Start place"),
		),
		mcp.WithString("end",
			mcp.Required(),
			mcp.Description("Destination place"),
		),
		mcp.WithString("vehicle_type",
			mcp.Required(),
			mcp.Description("Free-text vehicle label, e.g. 'HGV diesel 40t'"),
		),
		mcp.WithString("fuel",
			mcp.Required(),
			mcp.Description("Fuel, e.g. 'diesel'"),
		),
		mcp.WithString("region",
			mcp.Required(),
			mcp.Description("Region of the reference table"),
		),
		mcp.WithNumber("load_tons",
			mcp.Required(),
			mcp.Description("Payload in metric tonnes"),
		),
		mcp.WithArray("compare_fuels",
			mcp.Description("Alternative fuels to estimate, defaults to diesel, petrol, cng, lng and electric"),
			mcp.Items(map[string]any{"type": "string"}),
		),
	)
}

// HandleEstimateTripEmissions routes, segments, aggregates and compares a trip
func (r *Registry) HandleEstimateTripEmissions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := slog.Default().With("tool", "estimate_trip_emissions")

	values, result, err := ValidateRequiredStrings(req, "estimate_trip_emissions", logger,
		"start", "end", "vehicle_type", "fuel", "region")
	if err != nil {
		return result, nil
	}
	load, result, err := ValidateQuantity(req, "load_tons", core.ValidateLoad, logger)
	if err != nil {
		return result, nil
	}
	if r.deps.Router == nil {
		return routerUnavailable(), nil
	}

	params := EmissionParameters{VehicleType: values[2], Fuel: values[3], Region: values[4], LoadTons: load}
	out, err := r.EstimateTrip(ctx, values[0], values[1], params, parseStringList(req, "compare_fuels"))
	if err != nil {
		logToolError(logger, "trip estimation failed", err)
		return r.toolError(err), nil
	}
	return jsonResult(logger, out), nil
}

// EstimateTrip routes start to end and estimates the selected route.
// Factors are resolved before routing so an unknown vehicle never costs an
// upstream request.
func (r *Registry) EstimateTrip(ctx context.Context, start, end string, p EmissionParameters, candidates []string) (EstimateTripOutput, error) {
	if r.deps.Router == nil {
		return EstimateTripOutput{}, ErrRouterUnavailable
	}
	if _, _, err := r.resolveRow(ctx, p); err != nil {
		return EstimateTripOutput{}, err
	}

	plan := r.deps.Router.Route(ctx, start, end)
	if plan.Degraded() {
		r.logger.Warn("routing degraded", "start", start, "end", end, "note", plan.Note)
	}
	return r.estimateTrip(ctx, plan, p, candidates)
}

func (r *Registry) estimateTrip(ctx context.Context, plan routing.Plan, p EmissionParameters, candidates []string) (EstimateTripOutput, error) {
	selected := plan.Selected()
	seg := trip.Segment(selected.Coordinates, selected.DistanceKm)
	tracing.SetAttributes(ctx, attribute.Int(tracing.AttrSegments, seg.Len()))
	q := trip.TripQuery{
		VehicleType:     p.VehicleType,
		Fuel:            p.Fuel,
		Region:          p.Region,
		LoadTons:        p.LoadTons,
		TotalDistanceKm: selected.DistanceKm,
	}

	res, err := r.aggregator.Aggregate(seg, q)
	if err != nil {
		return EstimateTripOutput{}, err
	}

	cmp, err := r.compareFuels(ctx, trip.ComparisonQuery{
		VehicleType:       p.VehicleType,
		Region:            p.Region,
		LoadTons:          p.LoadTons,
		SegmentDistanceKm: seg.SegmentDistanceKm,
		SegmentCount:      seg.Len(),
		BaseFuel:          p.Fuel,
		CandidateFuels:    candidates,
	})
	if err != nil {
		return EstimateTripOutput{}, err
	}

	out := EstimateTripOutput{
		Route:      newRouteOutput(plan),
		Trip:       res,
		Markers:    make([]Marker, 0, len(res.Segments)),
		Comparison: &cmp,
		Summary:    report.Summary(res),
	}
	for _, s := range res.Segments {
		out.Markers = append(out.Markers, Marker{
			Lat:    s.Lat,
			Lon:    s.Lon,
			Color:  report.MarkerColor(s.CumulativeWTW),
			Weight: report.HeatWeight(s),
		})
	}

	// baseline emissions are recomputed over the baseline geometry
	if plan.Optimized != nil {
		baseQuery := q
		baseQuery.TotalDistanceKm = plan.Baseline.DistanceKm
		baseSeg := trip.Segment(plan.Baseline.Coordinates, plan.Baseline.DistanceKm)
		baseline, err := r.aggregator.BaselineTotal(baseSeg, baseQuery)
		if err != nil {
			return EstimateTripOutput{}, err
		}
		savings := NewSavingsOutput(baseline, res.TotalWTW)
		out.Savings = &savings
	}
	return out, nil
}
