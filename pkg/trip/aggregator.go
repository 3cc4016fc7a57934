package trip

import (
	"github.com/Sahilcoder4/greenroute-repo/pkg/emissions"
)

// FactorResolver resolves emission factors for a lookup triple
type FactorResolver interface {
	Resolve(vehicleType, fuel, region string) (emissions.ResolvedFactors, error)
}

// TripQuery describes the movement being estimated
type TripQuery struct {
	VehicleType     string  `json:"vehicle_type"`
	Fuel            string  `json:"fuel"`
	Region          string  `json:"region"`
	LoadTons        float64 `json:"load_tons"`
	TotalDistanceKm float64 `json:"total_distance_km"`
}

// SegmentEmission is the emission attributed to one sampled point
type SegmentEmission struct {
	Index         int     `json:"index"`
	Lat           float64 `json:"lat"`
	Lon           float64 `json:"lon"`
	DistanceKm    float64 `json:"distance_km"`
	LoadTons      float64 `json:"load_tons"`
	WTT           float64 `json:"wtt_kg"`
	TTW           float64 `json:"ttw_kg"`
	WTW           float64 `json:"wtw_kg"`
	CumulativeWTW float64 `json:"cumulative_wtw_kg"`
}

// TripResult is the per-segment breakdown of a trip plus its totals
type TripResult struct {
	Vehicle           string            `json:"vehicle"`
	Fuel              string            `json:"fuel"`
	Region            string            `json:"region"`
	LoadTons          float64           `json:"load_tons"`
	TotalDistanceKm   float64           `json:"total_distance_km"`
	SegmentDistanceKm float64           `json:"segment_distance_km"`
	Segments          []SegmentEmission `json:"segments"`
	TotalWTT          float64           `json:"total_wtt_kg"`
	TotalTTW          float64           `json:"total_ttw_kg"`
	TotalWTW          float64           `json:"total_wtw_kg"`
}

// Aggregator attributes emissions to route segments
type Aggregator struct {
	Resolver FactorResolver
}

// NewAggregator creates an aggregator backed by resolver
func NewAggregator(resolver FactorResolver) *Aggregator {
	return &Aggregator{Resolver: resolver}
}

// Aggregate resolves factors once and computes the emission of every sampled
// point. The running WTW total is rounded at each step so TotalWTW equals the
// final segment's cumulative value.
func (a *Aggregator) Aggregate(seg Segmentation, q TripQuery) (TripResult, error) {
	factors, err := a.Resolver.Resolve(q.VehicleType, q.Fuel, q.Region)
	if err != nil {
		return TripResult{}, err
	}

	result := TripResult{
		Vehicle:           q.VehicleType,
		Fuel:              q.Fuel,
		Region:            q.Region,
		LoadTons:          q.LoadTons,
		TotalDistanceKm:   q.TotalDistanceKm,
		SegmentDistanceKm: seg.SegmentDistanceKm,
		Segments:          make([]SegmentEmission, 0, len(seg.Points)),
	}

	var cumulative, wtt, ttw float64
	for i, p := range seg.Points {
		e := emissions.Compute(factors, seg.SegmentDistanceKm, q.LoadTons)
		cumulative = emissions.Round2(cumulative + e.WTW)
		wtt += e.WTT
		ttw += e.TTW

		result.Segments = append(result.Segments, SegmentEmission{
			Index:         i,
			Lat:           p.Latitude,
			Lon:           p.Longitude,
			DistanceKm:    seg.SegmentDistanceKm,
			LoadTons:      q.LoadTons,
			WTT:           e.WTT,
			TTW:           e.TTW,
			WTW:           e.WTW,
			CumulativeWTW: cumulative,
		})
	}

	result.TotalWTT = emissions.Round2(wtt)
	result.TotalTTW = emissions.Round2(ttw)
	result.TotalWTW = cumulative
	return result, nil
}

// BaselineTotal recomputes the WTW total of a trip over seg, as used for the
// baseline side of a savings figure.
func (a *Aggregator) BaselineTotal(seg Segmentation, q TripQuery) (float64, error) {
	res, err := a.Aggregate(seg, q)
	if err != nil {
		return 0, err
	}
	return res.TotalWTW, nil
}
