package report

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Sahilcoder4/greenroute-repo/pkg/trip"
)

var printer = message.NewPrinter(language.English)

// FormatKg formats a mass with thousand separators and two decimals
func FormatKg(v float64) string {
	return printer.Sprintf("%.2f kg", v)
}

// Summary renders the headline figures of a trip, one per line
func Summary(r trip.TripResult) []string {
	return []string{
		printer.Sprintf("Vehicle: %s, Fuel: %s, Region: %s", r.Vehicle, r.Fuel, r.Region),
		printer.Sprintf("Load: %.2f t, Distance: %.2f km over %d segments", r.LoadTons, r.TotalDistanceKm, len(r.Segments)),
		"WTT: " + FormatKg(r.TotalWTT),
		"TTW: " + FormatKg(r.TotalTTW),
		"WTW: " + FormatKg(r.TotalWTW),
	}
}

// ComparisonSummary renders one line per candidate fuel
func ComparisonSummary(c trip.ComparisonResult) []string {
	lines := make([]string, 0, len(c.Estimates))
	for _, e := range c.Estimates {
		if !e.Available() {
			lines = append(lines, printer.Sprintf("%s: not available", e.Fuel))
			continue
		}
		lines = append(lines, printer.Sprintf("%s: %s", e.Fuel, FormatKg(e.TotalWTW)))
	}
	return lines
}
