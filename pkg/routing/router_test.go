package routing

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Sahilcoder4/greenroute-repo/pkg/geo"
)

type fakeGeocoder map[string]geo.Location

func (f fakeGeocoder) Geocode(_ context.Context, place string) (geo.Location, error) {
	if loc, ok := f[place]; ok {
		return loc, nil
	}
	return geo.Location{}, errors.New("not found")
}

type fakeRoutes struct {
	baseline     []Route
	alternatives []Route
	err          error
	altErr       error
	calls        []bool
}

func (f *fakeRoutes) Routes(_ context.Context, _, _ geo.Location, alternatives bool) ([]Route, error) {
	f.calls = append(f.calls, alternatives)
	if alternatives {
		return f.alternatives, f.altErr
	}
	return f.baseline, f.err
}

type fakeSnapper struct{ err error }

func (f fakeSnapper) Snap(_ context.Context, p geo.Location) (geo.Location, error) {
	if f.err != nil {
		return geo.Location{}, f.err
	}
	return geo.Location{Latitude: p.Latitude + 0.001, Longitude: p.Longitude}, nil
}

var places = fakeGeocoder{
	"Pune":   {Latitude: 18.52, Longitude: 73.85},
	"Mumbai": {Latitude: 19.07, Longitude: 72.87},
}

func route(km float64) Route {
	return Route{Coordinates: []geo.Location{{}, {Latitude: 1}}, DistanceKm: km}
}

func TestPlanOptimized(t *testing.T) {
	src := &fakeRoutes{
		baseline:     []Route{route(150)},
		alternatives: []Route{route(150), route(143.5)},
	}
	plan := NewPlanner(places, src, nil, nil).Route(context.Background(), "Pune", "Mumbai")

	if plan.Optimized == nil || plan.Optimized.DistanceKm != 143.5 {
		t.Fatalf("expected optimized route, got %+v", plan.Optimized)
	}
	if plan.Note != NoteOptimized || plan.Outcome != OutcomeOptimized {
		t.Errorf("unexpected note %q", plan.Note)
	}
	if plan.Selected().DistanceKm != 143.5 {
		t.Error("Selected should prefer the optimized route")
	}
	if plan.Start != places["Pune"] || plan.End != places["Mumbai"] {
		t.Errorf("unexpected endpoints %+v %+v", plan.Start, plan.End)
	}
}

func TestPlanNoAlternative(t *testing.T) {
	src := &fakeRoutes{baseline: []Route{route(100)}, alternatives: []Route{route(100)}}
	plan := NewPlanner(places, src, nil, nil).Route(context.Background(), "Pune", "Mumbai")

	if plan.Optimized != nil || plan.Note != NoteNoAlternative {
		t.Errorf("unexpected plan %+v", plan)
	}
	if plan.Selected().DistanceKm != 100 {
		t.Error("Selected should fall back to baseline")
	}
}

func TestPlanShortTrip(t *testing.T) {
	src := &fakeRoutes{baseline: []Route{route(99.99)}}
	plan := NewPlanner(places, src, nil, nil).Route(context.Background(), "Pune", "Mumbai")

	if plan.Note != NoteShortTrip || plan.Optimized != nil {
		t.Errorf("unexpected plan %+v", plan)
	}
	if len(src.calls) != 1 {
		t.Errorf("alternatives should not be requested for short trips, got calls %v", src.calls)
	}
}

func TestPlanRoutingFailure(t *testing.T) {
	src := &fakeRoutes{err: errors.New("upstream 503")}
	plan := NewPlanner(places, src, nil, nil).Route(context.Background(), "Pune", "Mumbai")

	if !plan.Degraded() {
		t.Fatal("expected degraded plan")
	}
	if plan.Baseline.DistanceKm != 0 || len(plan.Baseline.Coordinates) != 2 {
		t.Errorf("expected two-point zero-distance baseline, got %+v", plan.Baseline)
	}
	if plan.Baseline.Coordinates[0] != plan.Start || plan.Baseline.Coordinates[1] != plan.End {
		t.Error("fallback baseline should join the geocoded endpoints")
	}
	if plan.Note != "Routing failed: upstream 503. Using fallback baseline." {
		t.Errorf("unexpected note %q", plan.Note)
	}
}

func TestPlanAlternativeFailure(t *testing.T) {
	src := &fakeRoutes{baseline: []Route{route(300)}, altErr: errors.New("timeout")}
	plan := NewPlanner(places, src, nil, nil).Route(context.Background(), "Pune", "Mumbai")

	if !plan.Degraded() || plan.Baseline.DistanceKm != 0 {
		t.Errorf("expected fallback baseline, got %+v", plan)
	}
}

func TestPlanGeocodeFailure(t *testing.T) {
	src := &fakeRoutes{}
	plan := NewPlanner(places, src, nil, nil).Route(context.Background(), "Pune", "Atlantis")

	if !plan.Degraded() || !strings.HasPrefix(plan.Note, "Geocoding failed") {
		t.Errorf("unexpected plan %+v", plan)
	}
	if len(src.calls) != 0 {
		t.Error("routing should not be attempted without both endpoints")
	}
	if plan.Baseline.DistanceKm != 0 || len(plan.Baseline.Coordinates) != 0 || plan.Optimized != nil {
		t.Errorf("expected an empty baseline, got %+v", plan.Baseline)
	}
	if plan.Start != places["Pune"] {
		t.Errorf("located start should be kept, got %+v", plan.Start)
	}
}

func TestPlanSnapping(t *testing.T) {
	src := &fakeRoutes{baseline: []Route{route(10)}}

	plan := NewPlanner(places, src, fakeSnapper{}, nil).Route(context.Background(), "Pune", "Mumbai")
	if plan.Start.Latitude != places["Pune"].Latitude+0.001 {
		t.Errorf("expected snapped start, got %+v", plan.Start)
	}

	plan = NewPlanner(places, src, fakeSnapper{err: errors.New("no road")}, nil).Route(context.Background(), "Pune", "Mumbai")
	if plan.Start != places["Pune"] {
		t.Errorf("snapping failure should keep raw coordinates, got %+v", plan.Start)
	}
}

func TestPlanCoordinatePlacesSkipGeocoder(t *testing.T) {
	src := &fakeRoutes{baseline: []Route{route(40)}}
	// an empty geocoder fails every lookup
	plan := NewPlanner(fakeGeocoder{}, src, nil, nil).Route(context.Background(), "18.52, 73.85", "Mumbai")

	if !plan.Degraded() {
		t.Fatalf("expected degraded plan for unknown destination, got %q", plan.Outcome)
	}

	plan = NewPlanner(places, src, nil, nil).Route(context.Background(), "18.52, 73.85", `19°4'12"N 72°52'12"E`)
	if plan.Degraded() {
		t.Fatalf("unexpected degraded plan: %s", plan.Note)
	}
	if plan.Start != places["Pune"] {
		t.Errorf("start = %+v", plan.Start)
	}
	if plan.End.Latitude < 19.06 || plan.End.Latitude > 19.08 {
		t.Errorf("end = %+v", plan.End)
	}
}
