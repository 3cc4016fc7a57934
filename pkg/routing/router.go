// Package routing turns a pair of place names into a baseline road route and,
// for longer trips, an alternative route to compare against.
package routing

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sahilcoder4/greenroute-repo/pkg/coords"
	"github.com/Sahilcoder4/greenroute-repo/pkg/geo"
	"github.com/Sahilcoder4/greenroute-repo/pkg/monitoring"
	"github.com/Sahilcoder4/greenroute-repo/pkg/tracing"
)

// OptimizeMinDistanceKm is the baseline length from which alternatives are requested
const OptimizeMinDistanceKm = 100.0

// Plan notes
const (
	NoteOptimized     = "Optimized route applied (shorter alternative used)"
	NoteNoAlternative = "No alternative route found. Using baseline."
	NoteShortTrip     = "Optimization skipped: trip is short or limited."
)

// Plan outcomes, as recorded in metrics
const (
	OutcomeOptimized = "optimized"
	OutcomeBaseline  = "baseline"
	OutcomeShort     = "short"
	OutcomeDegraded  = "degraded"
)

// Route is a road polyline and its length
type Route struct {
	Coordinates []geo.Location `json:"coordinates"`
	DistanceKm  float64        `json:"distance_km"`
	DurationMin float64        `json:"duration_min,omitempty"`
}

// Plan is the result of routing between two places. A degraded plan carries
// a straight two-point baseline with zero distance and a note explaining why.
type Plan struct {
	Baseline  Route        `json:"baseline"`
	Optimized *Route       `json:"optimized,omitempty"`
	Start     geo.Location `json:"start"`
	End       geo.Location `json:"end"`
	Note      string       `json:"note"`
	Outcome   string       `json:"outcome"`
}

// Selected returns the optimized route when there is one, else the baseline
func (p Plan) Selected() Route {
	if p.Optimized != nil {
		return *p.Optimized
	}
	return p.Baseline
}

// Degraded reports whether routing failed and the baseline is a placeholder
func (p Plan) Degraded() bool {
	return p.Outcome == OutcomeDegraded
}

// Router plans a trip between two free-text places. It never fails: upstream
// problems produce a degraded plan.
type Router interface {
	Route(ctx context.Context, start, end string) Plan
}

// RouteSource fetches road routes between two points
type RouteSource interface {
	Routes(ctx context.Context, from, to geo.Location, alternatives bool) ([]Route, error)
}

// Snapper moves a point onto the road network
type Snapper interface {
	Snap(ctx context.Context, p geo.Location) (geo.Location, error)
}

// Planner implements Router on top of a geocoder and a route source
type Planner struct {
	geocoder Geocoder
	routes   RouteSource
	snapper  Snapper
	logger   *slog.Logger
}

// NewPlanner creates a planner. snapper may be nil to skip snapping.
func NewPlanner(geocoder Geocoder, routes RouteSource, snapper Snapper, logger *slog.Logger) *Planner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Planner{geocoder: geocoder, routes: routes, snapper: snapper, logger: logger.With("component", "router")}
}

func (p *Planner) Route(ctx context.Context, start, end string) Plan {
	ctx, span := tracing.StartSpan(ctx, "routing.plan",
		trace.WithAttributes(attribute.String("route.start", start), attribute.String("route.end", end)))
	defer span.End()

	plan := p.plan(ctx, start, end)

	span.SetAttributes(
		attribute.String("route.outcome", plan.Outcome),
		attribute.Float64(tracing.AttrDistanceKm, plan.Baseline.DistanceKm),
	)
	monitoring.RecordRoutePlan(plan.Outcome)
	p.logger.Info("route planned",
		"start", start,
		"end", end,
		"outcome", plan.Outcome,
		"baseline_km", plan.Baseline.DistanceKm,
		"note", plan.Note)
	return plan
}

func (p *Planner) plan(ctx context.Context, start, end string) Plan {
	from, err := p.locate(ctx, start)
	if err != nil {
		return Plan{Note: fmt.Sprintf("Geocoding failed: %v", err), Outcome: OutcomeDegraded}
	}
	to, err := p.locate(ctx, end)
	if err != nil {
		return Plan{Start: from, Note: fmt.Sprintf("Geocoding failed: %v", err), Outcome: OutcomeDegraded}
	}

	plan := Plan{Start: from, End: to}

	routes, err := p.routes.Routes(ctx, from, to, false)
	if err != nil {
		tracing.RecordError(ctx, err)
		return fallback(plan, err)
	}
	plan.Baseline = routes[0]

	if plan.Baseline.DistanceKm < OptimizeMinDistanceKm {
		plan.Note = NoteShortTrip
		plan.Outcome = OutcomeShort
		return plan
	}

	alts, err := p.routes.Routes(ctx, from, to, true)
	if err != nil {
		tracing.RecordError(ctx, err)
		return fallback(plan, err)
	}
	if len(alts) >= 2 {
		optimized := alts[1]
		plan.Optimized = &optimized
		plan.Note = NoteOptimized
		plan.Outcome = OutcomeOptimized
		return plan
	}

	plan.Note = NoteNoAlternative
	plan.Outcome = OutcomeBaseline
	return plan
}

func fallback(plan Plan, err error) Plan {
	plan.Baseline = Route{Coordinates: []geo.Location{plan.Start, plan.End}}
	plan.Optimized = nil
	plan.Note = fmt.Sprintf("Routing failed: %v. Using fallback baseline.", err)
	plan.Outcome = OutcomeDegraded
	return plan
}

// locate resolves a place and snaps it to the road network, keeping the raw
// coordinate when snapping fails. Places written as coordinates skip the
// geocoder; a string that only looks like one is geocoded as text.
func (p *Planner) locate(ctx context.Context, place string) (geo.Location, error) {
	loc, notation, err := coords.Parse(place)
	if err != nil {
		if notation != coords.NotationNone {
			p.logger.Debug("coordinate rejected, geocoding as text", "place", place, "error", err)
		}
		loc, err = p.geocoder.Geocode(ctx, place)
		if err != nil {
			return geo.Location{}, err
		}
	}
	if p.snapper == nil {
		return loc, nil
	}
	snapped, err := p.snapper.Snap(ctx, loc)
	if err != nil {
		p.logger.Warn("snapping failed, using raw coordinates", "place", place, "error", err)
		return loc, nil
	}
	return snapped, nil
}
