package coords

import (
	"math"
	"testing"

	"github.com/akhenakh/mgrs"
)

func near(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestDetect(t *testing.T) {
	tests := []struct {
		input string
		want  Notation
	}{
		{"53.5461, 9.9661", NotationDecimal},
		{"-33.8688 151.2093", NotationDecimal},
		{`40°42'46"N 74°0'22"W`, NotationDMS},
		{"19d51m22sN 99d49m0sE", NotationDMS},
		{"18SUJ2337506519", NotationMGRS},
		{"18suj2337506519", NotationMGRS},
		{"Hamburg", NotationNone},
		{"Port of Rotterdam, Maasvlakte", NotationNone},
		{"20457", NotationNone},
		{"", NotationNone},
	}
	for _, tt := range tests {
		if got := Detect(tt.input); got != tt.want {
			t.Errorf("Detect(%q) = %s, want %s", tt.input, got, tt.want)
		}
	}
}

func TestParseDecimal(t *testing.T) {
	loc, n, err := Parse(" 53.5461,9.9661 ")
	if err != nil {
		t.Fatal(err)
	}
	if n != NotationDecimal || loc.Latitude != 53.5461 || loc.Longitude != 9.9661 {
		t.Errorf("got %+v (%s)", loc, n)
	}
}

func TestParseDMS(t *testing.T) {
	tests := []struct {
		input            string
		wantLat, wantLon float64
	}{
		{`19°51'22"N 99°49'0"E`, 19.856111, 99.816667},
		{`33°51'25"S 151°12'55"E`, -33.857, 151.215},
		{`40°42'46"N 74°0'22"W`, 40.713, -74.006},
		{`38°53'23.5"N 77°2'6.5"W`, 38.8899, -77.0351},
	}
	for _, tt := range tests {
		loc, n, err := Parse(tt.input)
		if err != nil {
			t.Errorf("Parse(%q): %v", tt.input, err)
			continue
		}
		if n != NotationDMS {
			t.Errorf("Parse(%q) notation = %s", tt.input, n)
		}
		if !near(loc.Latitude, tt.wantLat, 0.001) || !near(loc.Longitude, tt.wantLon, 0.001) {
			t.Errorf("Parse(%q) = %+v, want %v,%v", tt.input, loc, tt.wantLat, tt.wantLon)
		}
	}
}

func TestParseMGRSMatchesLibrary(t *testing.T) {
	// Hamburg container terminal
	ref, err := mgrs.LatLngToMGRS(53.5461, 9.9661, 5)
	if err != nil {
		t.Fatal(err)
	}

	loc, n, err := Parse(ref)
	if err != nil {
		t.Fatalf("Parse(%q): %v", ref, err)
	}
	if n != NotationMGRS {
		t.Errorf("notation = %s", n)
	}
	if !near(loc.Latitude, 53.5461, 0.0001) || !near(loc.Longitude, 9.9661, 0.0001) {
		t.Errorf("Parse(%q) = %+v", ref, loc)
	}
}

func TestParseRejects(t *testing.T) {
	for _, input := range []string{
		"Hamburg",
		"91.0, 10.0",
		"45.0, 181.0",
		`91°0'0"N 0°0'0"E`,
		`45°60'0"N 90°0'0"E`,
	} {
		if _, _, err := Parse(input); err == nil {
			t.Errorf("Parse(%q) expected error", input)
		}
	}
}
