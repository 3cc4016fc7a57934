package ingest

import (
	"bytes"
	"strings"
	"testing"

	"github.com/Sahilcoder4/greenroute-repo/pkg/emissions"
)

func TestWriteCSVRoundTrip(t *testing.T) {
	records := Parse([]string{
		"Rigid Truck 12t", "0.021", "0.025", "50", "800",
		"Van", "0.05", "0.06", "30", "150", "180",
	})

	var buf bytes.Buffer
	if err := WriteCSV(&buf, records, "North America", "Diesel"); err != nil {
		t.Fatal(err)
	}

	table, err := emissions.LoadTable(&buf)
	if err != nil {
		t.Fatalf("written table should load: %v", err)
	}
	if table.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", table.Len())
	}

	f, err := emissions.NewResolver(table).Resolve("rigid", "diesel", "north america")
	if err != nil {
		t.Fatal(err)
	}
	if f.WTW != 850 {
		t.Errorf("expected derived WTW 850, got %v", f.WTW)
	}
}

func TestWriteCSVEmptyFields(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, []Record{{VehicleType: "HGV"}}, "Europe", "LNG"); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one row, got %d lines", len(lines))
	}
	if lines[1] != "Europe,HGV,LNG,,,,," {
		t.Errorf("unexpected row %q", lines[1])
	}
}
