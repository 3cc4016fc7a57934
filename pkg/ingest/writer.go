package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/Sahilcoder4/greenroute-repo/pkg/emissions"
)

// WriteCSV renders records in the reference table source format. The
// digitized tables carry neither region nor fuel, so both are supplied by
// the caller and stamped on every row. Missing numbers are written empty.
func WriteCSV(w io.Writer, records []Record, region, fuel string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(emissions.RequiredColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for _, r := range records {
		row := []string{
			region,
			r.VehicleType,
			fuel,
			formatOptional(r.FuelIntensityMassPerTonKm),
			formatOptional(r.FuelIntensityVolumePerTonKm),
			formatOptional(r.WTT),
			formatOptional(r.TTW),
			formatOptional(r.WTW),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write record %q: %w", r.VehicleType, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

func formatOptional(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}
