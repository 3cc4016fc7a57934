package trip

import (
	"context"

	"github.com/Sahilcoder4/greenroute-repo/pkg/emissions"
	"golang.org/x/sync/errgroup"
)

// maxConcurrentCandidates bounds the comparison fan-out
const maxConcurrentCandidates = 4

// DefaultComparisonFuels is the candidate list used when none is supplied
var DefaultComparisonFuels = []string{"diesel", "petrol", "cng", "lng", "electric"}

// EstimateStatus tells whether a candidate fuel could be estimated
type EstimateStatus string

const (
	StatusAvailable    EstimateStatus = "available"
	StatusNotAvailable EstimateStatus = "not_available"
)

// FuelEstimate is the outcome for one candidate fuel
type FuelEstimate struct {
	Fuel     string         `json:"fuel"`
	Status   EstimateStatus `json:"status"`
	TotalWTW float64        `json:"total_wtw_kg"`
}

// Available reports whether the estimate carries a value
func (e FuelEstimate) Available() bool {
	return e.Status == StatusAvailable
}

// ComparisonResult holds candidate estimates in candidate order
type ComparisonResult struct {
	Estimates []FuelEstimate `json:"estimates"`
}

// Get returns the total WTW for fuel, if it was available
func (c ComparisonResult) Get(fuel string) (float64, bool) {
	fuel = emissions.Normalize(fuel)
	for _, e := range c.Estimates {
		if emissions.Normalize(e.Fuel) == fuel {
			return e.TotalWTW, e.Available()
		}
	}
	return 0, false
}

// ComparisonQuery is the input to CompareFuels
type ComparisonQuery struct {
	VehicleType       string   `json:"vehicle_type"`
	Region            string   `json:"region"`
	LoadTons          float64  `json:"load_tons"`
	SegmentDistanceKm float64  `json:"segment_distance_km"`
	SegmentCount      int      `json:"segment_count"`
	BaseFuel          string   `json:"base_fuel"`
	CandidateFuels    []string `json:"candidate_fuels"`
}

// CompareFuels estimates the trip total for each candidate fuel over the same
// segmentation. A candidate without a reference row is reported as not
// available and does not affect the others; any other failure aborts.
// Candidates equal to the base fuel are skipped.
func (a *Aggregator) CompareFuels(ctx context.Context, q ComparisonQuery) (ComparisonResult, error) {
	candidates := q.CandidateFuels
	if len(candidates) == 0 {
		candidates = DefaultComparisonFuels
	}

	base := emissions.Normalize(q.BaseFuel)
	fuels := make([]string, 0, len(candidates))
	for _, f := range candidates {
		if base != "" && emissions.Normalize(f) == base {
			continue
		}
		fuels = append(fuels, f)
	}

	estimates := make([]FuelEstimate, len(fuels))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentCandidates)

	for i, fuel := range fuels {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			est, err := a.estimateFuel(fuel, q)
			if err != nil {
				return err
			}
			estimates[i] = est
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return ComparisonResult{}, err
	}
	return ComparisonResult{Estimates: estimates}, nil
}

func (a *Aggregator) estimateFuel(fuel string, q ComparisonQuery) (FuelEstimate, error) {
	factors, err := a.Resolver.Resolve(q.VehicleType, fuel, q.Region)
	if err != nil {
		if emissions.IsNoMatch(err) {
			return FuelEstimate{Fuel: fuel, Status: StatusNotAvailable}, nil
		}
		return FuelEstimate{}, err
	}

	var total float64
	for i := 0; i < q.SegmentCount; i++ {
		total += emissions.Compute(factors, q.SegmentDistanceKm, q.LoadTons).WTW
	}
	return FuelEstimate{
		Fuel:     fuel,
		Status:   StatusAvailable,
		TotalWTW: emissions.Round2(total),
	}, nil
}
