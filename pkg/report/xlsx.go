package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/Sahilcoder4/greenroute-repo/pkg/trip"
)

const (
	TripSheet       = "Trip"
	ComparisonSheet = "Fuel comparison"
)

var comparisonColumns = []string{"Fuel", "Status", "Total WTW (kg)"}

// WriteXLSX writes the trip sheet and, when comparison is non-nil, a fuel
// comparison sheet. Numeric cells are stored as numbers.
func WriteXLSX(w io.Writer, r trip.TripResult, comparison *trip.ComparisonResult) error {
	f := excelize.NewFile()
	defer f.Close()

	// NewFile starts with "Sheet1"
	if err := f.SetSheetName("Sheet1", TripSheet); err != nil {
		return fmt.Errorf("xlsx rename sheet: %w", err)
	}
	if err := writeHeader(f, TripSheet, Columns); err != nil {
		return err
	}
	for i, s := range r.Segments {
		row := []any{
			s.Index + 1, s.Lat, s.Lon,
			r.Vehicle, r.Fuel, r.Region,
			s.LoadTons, s.DistanceKm,
			s.WTT, s.TTW, s.WTW, s.CumulativeWTW,
			MarkerColor(s.CumulativeWTW),
		}
		if err := writeRow(f, TripSheet, i+2, row); err != nil {
			return err
		}
	}
	_ = f.SetColWidth(TripSheet, "A", "C", 12)
	_ = f.SetColWidth(TripSheet, "D", "F", 18)
	_ = f.SetColWidth(TripSheet, "G", "L", 16)

	if comparison != nil {
		if _, err := f.NewSheet(ComparisonSheet); err != nil {
			return fmt.Errorf("xlsx new sheet: %w", err)
		}
		if err := writeHeader(f, ComparisonSheet, comparisonColumns); err != nil {
			return err
		}
		for i, e := range comparison.Estimates {
			row := []any{e.Fuel, string(e.Status), ""}
			if e.Available() {
				row[2] = e.TotalWTW
			}
			if err := writeRow(f, ComparisonSheet, i+2, row); err != nil {
				return err
			}
		}
		_ = f.SetColWidth(ComparisonSheet, "A", "C", 18)
	}

	idx, _ := f.GetSheetIndex(TripSheet)
	f.SetActiveSheet(idx)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx write: %w", err)
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, headers []string) error {
	row := make([]any, len(headers))
	for i, h := range headers {
		row[i] = h
	}
	return writeRow(f, sheet, 1, row)
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("xlsx cell name: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("xlsx write row %d: %w", row, err)
	}
	return nil
}
