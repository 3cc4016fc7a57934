// Package report renders trip results for people and spreadsheets.
package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/Sahilcoder4/greenroute-repo/pkg/trip"
)

// MarkerThresholdKg is the cumulative WTW at which map markers turn red
const MarkerThresholdKg = 300.0

const (
	MarkerGreen = "green"
	MarkerRed   = "red"
)

// Columns of the per-segment trip sheet
var Columns = []string{
	"Point",
	"Latitude",
	"Longitude",
	"Vehicle",
	"Fuel",
	"Region",
	"Load (tons)",
	"Segment Distance (km)",
	"WTT (kg)",
	"TTW (kg)",
	"WTW (kg)",
	"Cumulative WTW (kg)",
	"Marker",
}

// MarkerColor classifies a cumulative emission for map renderers
func MarkerColor(cumulativeKg float64) string {
	if cumulativeKg < MarkerThresholdKg {
		return MarkerGreen
	}
	return MarkerRed
}

// HeatWeight is the heatmap intensity of a segment, its cumulative WTW
func HeatWeight(s trip.SegmentEmission) float64 {
	return s.CumulativeWTW
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// segmentRecords returns one record per segment, aligned with Columns
func segmentRecords(r trip.TripResult) [][]string {
	records := make([][]string, 0, len(r.Segments))
	for _, s := range r.Segments {
		records = append(records, []string{
			strconv.Itoa(s.Index + 1),
			formatFloat(s.Lat),
			formatFloat(s.Lon),
			r.Vehicle,
			r.Fuel,
			r.Region,
			formatFloat(s.LoadTons),
			formatFloat(s.DistanceKm),
			formatFloat(s.WTT),
			formatFloat(s.TTW),
			formatFloat(s.WTW),
			formatFloat(s.CumulativeWTW),
			MarkerColor(s.CumulativeWTW),
		})
	}
	return records
}

// WriteCSV writes one row per segment, headed by Columns
func WriteCSV(w io.Writer, r trip.TripResult) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	if err := cw.WriteAll(segmentRecords(r)); err != nil {
		return fmt.Errorf("write segments: %w", err)
	}
	return nil
}
