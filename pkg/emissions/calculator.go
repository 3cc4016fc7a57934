package emissions

import "math"

// Emission is an absolute emission in kg CO2e
type Emission struct {
	WTT float64 `json:"wtt_kg"`
	TTW float64 `json:"ttw_kg"`
	WTW float64 `json:"wtw_kg"`
}

// Round2 rounds half away from zero to two decimals. Every total in the
// engine is a sum of values rounded with this function.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Compute converts per tonne-km factors into kg CO2e for a movement.
// Inputs are not validated here; zero or negative values flow through.
func Compute(f ResolvedFactors, distanceKm, loadTons float64) Emission {
	return Emission{
		WTT: toKg(f.WTT, distanceKm, loadTons),
		TTW: toKg(f.TTW, distanceKm, loadTons),
		WTW: toKg(f.WTW, distanceKm, loadTons),
	}
}

func toKg(factor, distanceKm, loadTons float64) float64 {
	grams := factor * distanceKm * loadTons
	return Round2(grams / 1000)
}
