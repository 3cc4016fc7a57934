// Package coords recognizes trip endpoints written as coordinates instead of
// place names. Depots and yards are often known only by position, and a
// coordinate needs no geocoder round trip.
//
// Accepted notations:
//   - decimal degrees, latitude first: "53.5461, 9.9661"
//   - degrees minutes seconds: 53°32'46"N 9°57'58"E
//   - MGRS: "32UNE6598431776"
package coords

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/akhenakh/mgrs"

	"github.com/Sahilcoder4/greenroute-repo/pkg/geo"
)

// Notation is the way a coordinate was written
type Notation int

const (
	NotationNone Notation = iota
	NotationDecimal
	NotationDMS
	NotationMGRS
)

func (n Notation) String() string {
	switch n {
	case NotationDecimal:
		return "decimal"
	case NotationDMS:
		return "dms"
	case NotationMGRS:
		return "mgrs"
	default:
		return "none"
	}
}

var (
	// zone, latitude band (no I or O), 100 km square, easting+northing digits
	mgrsPattern = regexp.MustCompile(`(?i)^(\d{1,2})([C-HJ-NP-X])([A-HJ-NP-Z]{2})(\d{2,10})$`)

	dmsPattern = regexp.MustCompile(`(?i)^(\d+)[°d\s]+(\d+)[′'m\s]+(\d+(?:\.\d+)?)[″"s]?\s*([NS])[\s,]+(\d+)[°d\s]+(\d+)[′'m\s]+(\d+(?:\.\d+)?)[″"s]?\s*([EW])$`)

	decimalPattern = regexp.MustCompile(`^(-?\d+(?:\.\d+)?)\s*[,\s]\s*(-?\d+(?:\.\d+)?)$`)
)

// Detect reports the notation a string is written in, without converting it
func Detect(s string) Notation {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return NotationNone
	case mgrsPattern.MatchString(s):
		return NotationMGRS
	case dmsPattern.MatchString(s):
		return NotationDMS
	case decimalPattern.MatchString(s):
		return NotationDecimal
	}
	return NotationNone
}

// Parse converts a coordinate string to a location. It fails for strings in
// no known notation and for positions outside WGS84 ranges.
func Parse(s string) (geo.Location, Notation, error) {
	s = strings.TrimSpace(s)

	var (
		loc geo.Location
		err error
	)
	n := Detect(s)
	switch n {
	case NotationMGRS:
		loc, err = parseMGRS(s)
	case NotationDMS:
		loc, err = parseDMS(dmsPattern.FindStringSubmatch(s))
	case NotationDecimal:
		loc, err = parseDecimal(decimalPattern.FindStringSubmatch(s))
	default:
		return geo.Location{}, NotationNone, fmt.Errorf("not a coordinate: %q", s)
	}
	if err != nil {
		return geo.Location{}, n, err
	}
	if err := loc.Validate(); err != nil {
		return geo.Location{}, n, err
	}
	return loc, n, nil
}

func parseMGRS(s string) (geo.Location, error) {
	lat, lon, err := mgrs.MGRSToLatLng(strings.ToUpper(s))
	if err != nil {
		return geo.Location{}, fmt.Errorf("mgrs %q: %w", s, err)
	}
	return geo.Location{Latitude: lat, Longitude: lon}, nil
}

// parseDMS takes the submatches of dmsPattern
func parseDMS(m []string) (geo.Location, error) {
	lat, err := dmsToDecimal(m[1], m[2], m[3], 90)
	if err != nil {
		return geo.Location{}, fmt.Errorf("latitude: %w", err)
	}
	lon, err := dmsToDecimal(m[5], m[6], m[7], 180)
	if err != nil {
		return geo.Location{}, fmt.Errorf("longitude: %w", err)
	}
	if strings.EqualFold(m[4], "S") {
		lat = -lat
	}
	if strings.EqualFold(m[8], "W") {
		lon = -lon
	}
	return geo.Location{Latitude: lat, Longitude: lon}, nil
}

func dmsToDecimal(deg, min, sec string, maxDeg float64) (float64, error) {
	d, _ := strconv.ParseFloat(deg, 64)
	m, _ := strconv.ParseFloat(min, 64)
	s, _ := strconv.ParseFloat(sec, 64)
	if d > maxDeg || m >= 60 || s >= 60 {
		return 0, fmt.Errorf("%s°%s'%s\" is out of range", deg, min, sec)
	}
	return d + m/60 + s/3600, nil
}

// parseDecimal takes the submatches of decimalPattern
func parseDecimal(m []string) (geo.Location, error) {
	lat, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return geo.Location{}, fmt.Errorf("latitude %q: %w", m[1], err)
	}
	lon, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return geo.Location{}, fmt.Errorf("longitude %q: %w", m[2], err)
	}
	return geo.Location{Latitude: lat, Longitude: lon}, nil
}
