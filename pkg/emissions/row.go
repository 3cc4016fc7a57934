package emissions

import "strings"

// Row is one normalized reference entry. Factors are in g CO2e per tonne-km.
type Row struct {
	Region       string `json:"region"`
	VehicleClass string `json:"vehicle_class"`
	Fuel         string `json:"fuel"`

	// Informational only
	FuelIntensityMassPerTonKm   *float64 `json:"fuel_intensity_kg_per_tkm,omitempty"`
	FuelIntensityVolumePerTonKm *float64 `json:"fuel_intensity_l_per_tkm,omitempty"`

	WTT float64  `json:"wtt"`
	TTW float64  `json:"ttw"`
	WTW *float64 `json:"wtw,omitempty"`
}

// Factors derives the resolved factors for this row, filling WTW from WTT+TTW when absent
func (r Row) Factors() ResolvedFactors {
	wtw := r.WTT + r.TTW
	if r.WTW != nil {
		wtw = *r.WTW
	}
	return ResolvedFactors{WTT: r.WTT, TTW: r.TTW, WTW: wtw}
}

// ResolvedFactors are per tonne-km factors in g CO2e; WTW is always populated
type ResolvedFactors struct {
	WTT float64 `json:"wtt_g_per_tkm"`
	TTW float64 `json:"ttw_g_per_tkm"`
	WTW float64 `json:"wtw_g_per_tkm"`
}

// Normalize case-folds and trims a lookup key
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func normalizeRow(r Row) Row {
	r.Region = Normalize(r.Region)
	r.VehicleClass = Normalize(r.VehicleClass)
	r.Fuel = Normalize(r.Fuel)
	return r
}
