package trip

import (
	"github.com/Sahilcoder4/greenroute-repo/pkg/emissions"
	"github.com/Sahilcoder4/greenroute-repo/pkg/geo"
)

// SampleStride is the distance, in polyline indices, between sampled points
const SampleStride = 10

// Segmentation is a sampled route with a uniform per-point distance
type Segmentation struct {
	Points            []geo.Location `json:"points"`
	SegmentDistanceKm float64        `json:"segment_distance_km"`
}

// Len returns the number of sampled points
func (s Segmentation) Len() int {
	return len(s.Points)
}

// Segment samples every SampleStride-th coordinate and always appends the
// final coordinate, even when it was already sampled. Total distance is
// divided evenly over the sampled points.
//
// An empty polyline yields an empty segmentation.
func Segment(coords []geo.Location, totalDistanceKm float64) Segmentation {
	if len(coords) == 0 {
		return Segmentation{}
	}

	points := make([]geo.Location, 0, (len(coords)+SampleStride-1)/SampleStride+1)
	for i := 0; i < len(coords); i += SampleStride {
		points = append(points, coords[i])
	}
	points = append(points, coords[len(coords)-1])

	return Segmentation{
		Points:            points,
		SegmentDistanceKm: emissions.Round2(totalDistanceKm / float64(len(points))),
	}
}
