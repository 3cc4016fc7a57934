// Package ingest converts digitized emission factor tables into the reference
// table source format.
package ingest

import (
	"strconv"
	"strings"
)

// HeaderMarkers are the substrings that identify a vehicle category line
var HeaderMarkers = []string{"Van", "Truck", "MGV", "HGV", "Carrier"}

// fieldCount is the number of numeric columns following a vehicle header
const fieldCount = 5

// Record is one vehicle category recovered from a digitized table.
// Numeric fields are nil when the stream ended before they were seen.
type Record struct {
	VehicleType                 string   `json:"vehicle_type"`
	FuelIntensityMassPerTonKm   *float64 `json:"fuel_intensity_kg_per_tkm"`
	FuelIntensityVolumePerTonKm *float64 `json:"fuel_intensity_l_per_tkm"`
	WTT                         *float64 `json:"wtt"`
	TTW                         *float64 `json:"ttw"`
	WTW                         *float64 `json:"wtw"`
}

// Complete reports whether all numeric fields were filled
func (r Record) Complete() bool {
	return r.FuelIntensityMassPerTonKm != nil &&
		r.FuelIntensityVolumePerTonKm != nil &&
		r.WTT != nil && r.TTW != nil && r.WTW != nil
}

// Loadable reports whether the record can become a reference row. WTW and
// the fuel intensities are optional there; WTW is derived from WTT and TTW.
func (r Record) Loadable() bool {
	return r.WTT != nil && r.TTW != nil
}

func (r *Record) field(i int) **float64 {
	switch i {
	case 0:
		return &r.FuelIntensityMassPerTonKm
	case 1:
		return &r.FuelIntensityVolumePerTonKm
	case 2:
		return &r.WTT
	case 3:
		return &r.TTW
	default:
		return &r.WTW
	}
}

type parseState int

const (
	awaitingHeader parseState = iota
	fillingFields
	complete
)

func (s parseState) String() string {
	switch s {
	case awaitingHeader:
		return "awaiting_header"
	case fillingFields:
		return "filling_fields"
	case complete:
		return "complete"
	}
	return "unknown"
}

// parser accumulates records line by line
type parser struct {
	state   parseState
	current Record
	next    int
	records []Record
}

// Parse recovers vehicle records from flattened document lines.
//
// A header line starts a new record. Each numeric line fills the next of the
// five factor fields in order; numbers beyond the fifth are ignored until the
// next header. Numbers seen before any header open a record with an empty
// vehicle type. Everything else is skipped.
func Parse(lines []string) []Record {
	p := &parser{}
	for _, line := range lines {
		p.feed(line)
	}
	p.flush()
	return p.records
}

func (p *parser) feed(line string) {
	if isHeader(line) {
		p.flush()
		p.current = Record{VehicleType: strings.TrimSpace(line)}
		p.next = 0
		p.state = fillingFields
		return
	}

	v, ok := parseNumber(line)
	if !ok {
		return
	}

	switch p.state {
	case awaitingHeader:
		p.current = Record{}
		p.next = 0
		p.state = fillingFields
		fallthrough
	case fillingFields:
		val := v
		*p.current.field(p.next) = &val
		p.next++
		if p.next == fieldCount {
			p.state = complete
		}
	case complete:
	}
}

func (p *parser) flush() {
	if p.state != awaitingHeader {
		p.records = append(p.records, p.current)
	}
	p.current = Record{}
	p.next = 0
	p.state = awaitingHeader
}

func isHeader(line string) bool {
	for _, m := range HeaderMarkers {
		if strings.Contains(line, m) {
			return true
		}
	}
	return false
}

// parseNumber accepts digits with at most one decimal point and at least one digit
func parseNumber(line string) (float64, bool) {
	s := strings.TrimSpace(line)
	digits, dots := 0, 0
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
			digits++
		case c == '.':
			dots++
		default:
			return 0, false
		}
	}
	if digits == 0 || dots > 1 {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
