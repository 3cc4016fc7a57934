package core

import (
	"errors"
	"math"

	"github.com/Sahilcoder4/greenroute-repo/pkg/geo"
)

// Polyline precisions used by OSRM ("polyline" and "polyline6" geometries)
const (
	Precision5 = 5
	Precision6 = 6
)

var errPolylineTruncated = errors.New("invalid polyline: unexpected end of string")

// EncodePolyline encodes points with the Google polyline algorithm at 1e-5 precision
func EncodePolyline(points []geo.Location) string {
	return EncodePolylinePrecision(points, Precision5)
}

// EncodePolylinePrecision encodes points with the given number of decimal digits
func EncodePolylinePrecision(points []geo.Location, precision int) string {
	if len(points) == 0 {
		return ""
	}
	factor := math.Pow10(precision)
	out := make([]byte, 0, len(points)*12)

	prevLat, prevLon := 0, 0
	for _, p := range points {
		lat := int(math.Round(p.Latitude * factor))
		lon := int(math.Round(p.Longitude * factor))
		out = appendSigned(out, lat-prevLat)
		out = appendSigned(out, lon-prevLon)
		prevLat, prevLon = lat, lon
	}
	return string(out)
}

// DecodePolyline decodes a 1e-5 precision polyline
func DecodePolyline(polyline string) ([]geo.Location, error) {
	return DecodePolylinePrecision(polyline, Precision5)
}

// DecodePolylinePrecision decodes a polyline encoded with the given number of decimal digits
func DecodePolylinePrecision(polyline string, precision int) ([]geo.Location, error) {
	points := make([]geo.Location, 0, len(polyline)/8+1)
	factor := math.Pow10(precision)

	lat, lon := 0, 0
	for i := 0; i < len(polyline); {
		var dLat, dLon int
		var err error
		if dLat, i, err = readSigned(polyline, i); err != nil {
			return nil, err
		}
		if i >= len(polyline) {
			return nil, errPolylineTruncated
		}
		if dLon, i, err = readSigned(polyline, i); err != nil {
			return nil, err
		}
		lat += dLat
		lon += dLon
		points = append(points, geo.Location{
			Latitude:  float64(lat) / factor,
			Longitude: float64(lon) / factor,
		})
	}
	return points, nil
}

func readSigned(s string, i int) (int, int, error) {
	result, shift := 0, 0
	for {
		if i >= len(s) {
			return 0, 0, errPolylineTruncated
		}
		b := int(s[i]) - 63
		i++
		result |= (b & 0x1f) << shift
		shift += 5
		if b < 0x20 {
			break
		}
	}
	return (result >> 1) ^ -(result & 1), i, nil
}

func appendSigned(buf []byte, v int) []byte {
	s := v << 1
	if v < 0 {
		s = ^s
	}
	for s >= 0x20 {
		buf = append(buf, byte((0x20|(s&0x1f))+63))
		s >>= 5
	}
	return append(buf, byte(s+63))
}
