package emissions

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Reference table column headers
const (
	ColumnRegion              = "Region"
	ColumnVehicleType         = "Vehicle Type"
	ColumnFuel                = "Fuel"
	ColumnFuelIntensityMass   = "Fuel Intensity (kg/t-km)"
	ColumnFuelIntensityVolume = "Fuel Intensity (l/t-km)"
	ColumnWTT                 = "WTT (g CO2e/t-km)"
	ColumnTTW                 = "TTW (g CO2e/t-km)"
	ColumnWTW                 = "WTW (g CO2e/t-km)"
)

// RequiredColumns lists every header a reference table source must carry
var RequiredColumns = []string{
	ColumnRegion,
	ColumnVehicleType,
	ColumnFuel,
	ColumnFuelIntensityMass,
	ColumnFuelIntensityVolume,
	ColumnWTT,
	ColumnTTW,
	ColumnWTW,
}

// Table is an immutable, normalized set of emission factor rows in source order.
// It is safe for concurrent use because nothing mutates it after construction.
type Table struct {
	rows []Row
}

// NewTable builds a table from in-memory rows, normalizing the lookup keys
func NewTable(rows []Row) *Table {
	normalized := make([]Row, len(rows))
	for i, r := range rows {
		normalized[i] = normalizeRow(r)
	}
	return &Table{rows: normalized}
}

// LoadTableFile reads a delimited reference table from disk
func LoadTableFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IngestionError{Source: path, Reason: "cannot open source", Err: err}
	}
	defer f.Close()

	t, err := loadTable(f, path)
	if err != nil {
		return nil, err
	}
	return t, nil
}

// LoadTable reads a delimited reference table with a header row
func LoadTable(r io.Reader) (*Table, error) {
	return loadTable(r, "")
}

func loadTable(r io.Reader, source string) (*Table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, &IngestionError{Source: source, Reason: "empty source"}
		}
		return nil, &IngestionError{Source: source, Line: 1, Reason: "unreadable header", Err: err}
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}

	var missing []string
	for _, col := range RequiredColumns {
		if _, ok := index[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &IngestionError{
			Source: source,
			Line:   1,
			Reason: fmt.Sprintf("missing required columns: %s", strings.Join(missing, ", ")),
		}
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var line int
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				line = perr.Line
			}
			return nil, &IngestionError{Source: source, Line: line, Reason: "malformed record", Err: err}
		}
		line, _ := reader.FieldPos(0)
		if blankRecord(record) {
			continue
		}

		cell := func(col string) string {
			i := index[col]
			if i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		row := Row{
			Region:       cell(ColumnRegion),
			VehicleClass: cell(ColumnVehicleType),
			Fuel:         cell(ColumnFuel),
		}

		if row.WTT, err = parseRequired(cell(ColumnWTT)); err != nil {
			return nil, &IngestionError{Source: source, Line: line, Reason: "invalid " + ColumnWTT, Err: err}
		}
		if row.TTW, err = parseRequired(cell(ColumnTTW)); err != nil {
			return nil, &IngestionError{Source: source, Line: line, Reason: "invalid " + ColumnTTW, Err: err}
		}
		if row.WTW, err = parseOptional(cell(ColumnWTW)); err != nil {
			return nil, &IngestionError{Source: source, Line: line, Reason: "invalid " + ColumnWTW, Err: err}
		}
		if row.FuelIntensityMassPerTonKm, err = parseOptional(cell(ColumnFuelIntensityMass)); err != nil {
			return nil, &IngestionError{Source: source, Line: line, Reason: "invalid " + ColumnFuelIntensityMass, Err: err}
		}
		if row.FuelIntensityVolumePerTonKm, err = parseOptional(cell(ColumnFuelIntensityVolume)); err != nil {
			return nil, &IngestionError{Source: source, Line: line, Reason: "invalid " + ColumnFuelIntensityVolume, Err: err}
		}

		rows = append(rows, normalizeRow(row))
	}

	return &Table{rows: rows}, nil
}

func blankRecord(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func isNullCell(s string) bool {
	switch strings.ToLower(s) {
	case "", "nan", "null", "none", "n/a":
		return true
	}
	return false
}

func parseRequired(s string) (float64, error) {
	if isNullCell(s) {
		return 0, errors.New("value is required")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, fmt.Errorf("negative factor %v", v)
	}
	return v, nil
}

func parseOptional(s string) (*float64, error) {
	if isNullCell(s) {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Rows returns a copy of the table rows in source order
func (t *Table) Rows() []Row {
	out := make([]Row, len(t.rows))
	copy(out, t.rows)
	return out
}

// Len returns the number of rows
func (t *Table) Len() int {
	return len(t.rows)
}

// DistinctVehicleClasses returns the sorted set of vehicle classes
func (t *Table) DistinctVehicleClasses() []string {
	return t.distinct(func(r Row) string { return r.VehicleClass })
}

// Regions returns the sorted set of regions
func (t *Table) Regions() []string {
	return t.distinct(func(r Row) string { return r.Region })
}

// FuelsFor returns the fuels listed for an exact vehicle class, in first-seen order
func (t *Table) FuelsFor(vehicleClass string) []string {
	vc := Normalize(vehicleClass)
	seen := make(map[string]bool)
	var fuels []string
	for _, r := range t.rows {
		if r.VehicleClass != vc || r.Fuel == "" || seen[r.Fuel] {
			continue
		}
		seen[r.Fuel] = true
		fuels = append(fuels, r.Fuel)
	}
	return fuels
}

func (t *Table) distinct(key func(Row) string) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range t.rows {
		k := key(r)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
