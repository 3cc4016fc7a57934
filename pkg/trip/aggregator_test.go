package trip

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/Sahilcoder4/greenroute-repo/pkg/emissions"
)

func ptr(v float64) *float64 { return &v }

func testResolver() *emissions.Resolver {
	return emissions.NewResolver(emissions.NewTable([]emissions.Row{
		{Region: "North America", VehicleClass: "Rigid Truck (12t)", Fuel: "Diesel", WTT: 50, TTW: 800},
		{Region: "North America", VehicleClass: "Rigid Truck (12t)", Fuel: "CNG", WTT: 90, TTW: 600, WTW: ptr(690)},
		{Region: "North America", VehicleClass: "Rigid Truck (12t)", Fuel: "Electric", WTT: 120, TTW: 0},
	}))
}

func TestAggregate(t *testing.T) {
	agg := NewAggregator(testResolver())
	seg := Segment(line(25), 100)

	res, err := agg.Aggregate(seg, TripQuery{
		VehicleType: "Rigid truck", Fuel: "diesel", Region: "north america",
		LoadTons: 10, TotalDistanceKm: 100,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Segments) != 4 {
		t.Fatalf("expected 4 segments, got %d", len(res.Segments))
	}

	// 850 g/tkm * 25 km * 10 t = 212.5 kg per segment
	for i, s := range res.Segments {
		if s.WTW != 212.5 {
			t.Errorf("segment %d WTW = %v", i, s.WTW)
		}
		if s.DistanceKm != 25 || s.LoadTons != 10 {
			t.Errorf("segment %d carries wrong inputs: %+v", i, s)
		}
	}
	if res.TotalWTW != 850 || res.TotalWTW != res.Segments[3].CumulativeWTW {
		t.Errorf("total WTW = %v, last cumulative = %v", res.TotalWTW, res.Segments[3].CumulativeWTW)
	}
	if res.TotalWTT != 50 || res.TotalTTW != 800 {
		t.Errorf("totals WTT=%v TTW=%v", res.TotalWTT, res.TotalTTW)
	}
}

func TestAggregateCumulativeMonotonic(t *testing.T) {
	agg := NewAggregator(testResolver())
	seg := Segment(line(137), 412.7)

	res, err := agg.Aggregate(seg, TripQuery{VehicleType: "rigid", Fuel: "cng", Region: "north america", LoadTons: 7.3})
	if err != nil {
		t.Fatal(err)
	}
	prev := 0.0
	for i, s := range res.Segments {
		if s.CumulativeWTW < prev {
			t.Fatalf("cumulative decreased at %d: %v < %v", i, s.CumulativeWTW, prev)
		}
		prev = s.CumulativeWTW
	}
}

func TestAggregateNoMatch(t *testing.T) {
	agg := NewAggregator(testResolver())
	_, err := agg.Aggregate(Segment(line(3), 10), TripQuery{VehicleType: "van", Fuel: "diesel", Region: "north america", LoadTons: 1})
	if !emissions.IsNoMatch(err) {
		t.Fatalf("expected NoMatchError, got %v", err)
	}
}

func TestBaselineTotal(t *testing.T) {
	agg := NewAggregator(testResolver())
	total, err := agg.BaselineTotal(Segment(line(25), 100), TripQuery{VehicleType: "rigid", Fuel: "diesel", Region: "north america", LoadTons: 10})
	if err != nil {
		t.Fatal(err)
	}
	if total != 850 {
		t.Errorf("expected 850, got %v", total)
	}
}

func TestCompareFuels(t *testing.T) {
	agg := NewAggregator(testResolver())

	res, err := agg.CompareFuels(context.Background(), ComparisonQuery{
		VehicleType:       "rigid truck",
		Region:            "North America",
		LoadTons:          10,
		SegmentDistanceKm: 25,
		SegmentCount:      4,
		BaseFuel:          "Diesel",
	})
	if err != nil {
		t.Fatal(err)
	}

	var fuels []string
	for _, e := range res.Estimates {
		fuels = append(fuels, e.Fuel)
	}
	if strings.Join(fuels, ",") != "petrol,cng,lng,electric" {
		t.Fatalf("unexpected candidate order %v", fuels)
	}

	if v, ok := res.Get("CNG"); !ok || v != 690 {
		t.Errorf("cng = %v, %v", v, ok)
	}
	if v, ok := res.Get("electric"); !ok || v != 120 {
		t.Errorf("electric = %v, %v", v, ok)
	}
	for _, missing := range []string{"petrol", "lng"} {
		if _, ok := res.Get(missing); ok {
			t.Errorf("%s should be not available", missing)
		}
	}
	if res.Estimates[0].Status != StatusNotAvailable {
		t.Errorf("petrol status = %s", res.Estimates[0].Status)
	}
	if _, ok := res.Get("diesel"); ok {
		t.Error("base fuel should not be compared")
	}
}

type failingResolver struct {
	inner FactorResolver
	fuel  string
}

var errBackend = errors.New("backend down")

func (f failingResolver) Resolve(v, fuel, r string) (emissions.ResolvedFactors, error) {
	if fuel == f.fuel {
		return emissions.ResolvedFactors{}, errBackend
	}
	return f.inner.Resolve(v, fuel, r)
}

func TestCompareFuelsAbortsOnUnexpectedError(t *testing.T) {
	agg := NewAggregator(failingResolver{inner: testResolver(), fuel: "lng"})
	_, err := agg.CompareFuels(context.Background(), ComparisonQuery{
		VehicleType: "rigid", Region: "north america", LoadTons: 1, SegmentDistanceKm: 1, SegmentCount: 1,
	})
	if !errors.Is(err, errBackend) {
		t.Fatalf("expected backend error, got %v", err)
	}
}

func TestCompareFuelsCustomCandidates(t *testing.T) {
	agg := NewAggregator(testResolver())
	res, err := agg.CompareFuels(context.Background(), ComparisonQuery{
		VehicleType: "rigid", Region: "north america", LoadTons: 2, SegmentDistanceKm: 10, SegmentCount: 3,
		CandidateFuels: []string{"diesel", "hydrogen"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Estimates) != 2 {
		t.Fatalf("expected 2 estimates, got %d", len(res.Estimates))
	}
	// 850 * 10 * 2 / 1000 = 17 per segment
	if v, ok := res.Get("diesel"); !ok || v != 51 {
		t.Errorf("diesel = %v, %v", v, ok)
	}
	if res.Estimates[1].Available() {
		t.Error("hydrogen should be not available")
	}
}

func TestCompareFuelsCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	agg := NewAggregator(testResolver())
	_, err := agg.CompareFuels(ctx, ComparisonQuery{VehicleType: "rigid", Region: "north america", SegmentCount: 1})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
