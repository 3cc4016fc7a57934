package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sahilcoder4/greenroute-repo/pkg/app"
	"github.com/Sahilcoder4/greenroute-repo/pkg/cli"
	"github.com/Sahilcoder4/greenroute-repo/pkg/emissions"
)

const tableCSV = `Region,Vehicle Type,Fuel,Fuel Intensity (kg/t-km),Fuel Intensity (l/t-km),WTT (g CO2e/t-km),TTW (g CO2e/t-km),WTW (g CO2e/t-km)
North America,Rigid Truck (12t),Diesel,0.27,0.32,50,800,
North America,Rigid Truck (12t),CNG,,,90,600,690
North America,Rigid Truck (12t),Electric,,,120,0,
Europe,Van (3.5t),Electric,,,35,0,
`

// writeTable writes the fixture table and isolates the run from the environment
func writeTable(t *testing.T) string {
	t.Helper()
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GREENROUTE_TABLE__PATH", "")

	path := filepath.Join(t.TempDir(), "table.csv")
	require.NoError(t, os.WriteFile(path, []byte(tableCSV), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := cli.NewRootCmd("test")
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--no-color"}, args...))
	err = cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestEstimate(t *testing.T) {
	table := writeTable(t)

	stdout, stderr, err := execute(t, "estimate", "--table", table,
		"--vehicle", "rigid truck", "--fuel", "diesel", "--region", "north america",
		"--load", "10", "--distance", "100")
	require.NoError(t, err)

	assert.Contains(t, stderr, "matched rigid truck (12t) / diesel / north america")
	assert.Contains(t, stdout, "50.00 kg")
	assert.Contains(t, stdout, "800.00 kg")
	assert.Contains(t, stdout, "850.00 kg")
}

func TestEstimateJSON(t *testing.T) {
	table := writeTable(t)

	stdout, _, err := execute(t, "estimate", "--table", table, "--json",
		"--vehicle", "van", "--fuel", "electric", "--region", "europe",
		"--load", "2", "--distance", "50")
	require.NoError(t, err)

	var out struct {
		Matched   emissions.Row             `json:"matched"`
		Factors   emissions.ResolvedFactors `json:"factors"`
		Emissions emissions.Emission        `json:"emissions"`
	}
	require.NoError(t, json.Unmarshal([]byte(stdout), &out))
	assert.Equal(t, "van (3.5t)", out.Matched.VehicleClass)
	assert.Equal(t, 35.0, out.Factors.WTW, "WTW is derived from WTT+TTW")
	assert.Equal(t, 3.5, out.Emissions.WTW)
}

func TestEstimateNoMatch(t *testing.T) {
	table := writeTable(t)

	_, _, err := execute(t, "estimate", "--table", table,
		"--vehicle", "van", "--fuel", "diesel", "--region", "north america",
		"--load", "1", "--distance", "1")
	require.Error(t, err)
	assert.True(t, emissions.IsNoMatch(err), "got %v", err)
}

func TestEstimateRejectsInvalidQuantities(t *testing.T) {
	tests := []struct {
		name     string
		load     string
		distance string
		want     string
	}{
		{"negative load", "-1", "10", "load_tons"},
		{"load in kilograms", "20000", "10", "metric tonnes"},
		{"negative distance", "1", "-10", "distance_km"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// validation runs before the table is needed
			_, _, err := execute(t, "estimate",
				"--vehicle", "van", "--fuel", "diesel", "--region", "europe",
				"--load", tt.load, "--distance", tt.distance)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestCompare(t *testing.T) {
	table := writeTable(t)

	stdout, _, err := execute(t, "compare", "--table", table,
		"--vehicle", "rigid truck", "--region", "north america",
		"--load", "10", "--distance", "100",
		"--base", "diesel", "--fuels", "diesel,cng,lng,electric")
	require.NoError(t, err)

	assert.Contains(t, stdout, "690.00 kg")
	assert.Contains(t, stdout, "120.00 kg")
	assert.Contains(t, stdout, "not_available")
	assert.NotContains(t, stdout, "850.00 kg", "base fuel is not compared")
}

func TestCatalogCommands(t *testing.T) {
	table := writeTable(t)

	stdout, _, err := execute(t, "classes", "--table", table)
	require.NoError(t, err)
	assert.Contains(t, stdout, "rigid truck (12t)")
	assert.Contains(t, stdout, "van (3.5t)")

	stdout, _, err = execute(t, "regions", "--table", table)
	require.NoError(t, err)
	assert.Contains(t, stdout, "europe")
	assert.Contains(t, stdout, "north america")

	stdout, _, err = execute(t, "fuels", "Rigid Truck (12t)", "--table", table)
	require.NoError(t, err)
	assert.Contains(t, stdout, "cng")
	assert.NotContains(t, stdout, "van")

	_, _, err = execute(t, "fuels", "bus", "--table", table)
	assert.ErrorContains(t, err, "no fuels listed")
}

func TestMissingTable(t *testing.T) {
	t.Setenv("GREENROUTE_TABLE__PATH", "")

	_, _, err := execute(t, "classes")
	assert.ErrorIs(t, err, app.ErrNoTable)
}

func TestIngestText(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "lines.txt")
	output := filepath.Join(dir, "table.csv")
	lines := []string{
		"GLEC default factors",
		"Rigid Truck 12t", "0.021", "0.025", "12.5", "70.1", "82.6",
		"HGV 40t", "0.03", "0.04",
	}
	require.NoError(t, os.WriteFile(input, []byte(strings.Join(lines, "\n")+"\n"), 0o600))

	_, stderr, err := execute(t, "ingest", input, "-o", output, "--region", "Europe", "--fuel", "Diesel")
	require.NoError(t, err)
	assert.Contains(t, stderr, `skipping record "HGV 40t" without WTT and TTW`)
	assert.Contains(t, stderr, "parsed 2 records, 1 written")

	loaded, err := emissions.LoadTableFile(output)
	require.NoError(t, err)
	require.Equal(t, 1, loaded.Len())

	row := loaded.Rows()[0]
	assert.Equal(t, "europe", row.Region)
	assert.Equal(t, "rigid truck 12t", row.VehicleClass)
	assert.Equal(t, 82.6, row.Factors().WTW)
}

func TestIngestKeepsRecordWithoutWTW(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "lines.txt")
	output := filepath.Join(dir, "table.csv")
	lines := []string{"Rigid Truck 12t", "0.021", "0.025", "50", "800"}
	require.NoError(t, os.WriteFile(input, []byte(strings.Join(lines, "\n")+"\n"), 0o600))

	_, stderr, err := execute(t, "ingest", input, "-o", output, "--region", "North America", "--fuel", "Diesel")
	require.NoError(t, err)
	assert.NotContains(t, stderr, "skipping")
	assert.Contains(t, stderr, "parsed 1 records, 1 written")

	loaded, err := emissions.LoadTableFile(output)
	require.NoError(t, err)
	require.Equal(t, 1, loaded.Len())
	assert.Nil(t, loaded.Rows()[0].WTW)

	f, err := emissions.NewResolver(loaded).Resolve("rigid", "diesel", "north america")
	require.NoError(t, err)
	assert.Equal(t, 850.0, f.WTW)
}

const digitizedDocument = `{
  "pages": [{"blocks": [
    {"lines": [
      {"words": [{"value": "Van"}, {"value": "<"}, {"value": "3.5t"}]},
      {"words": [{"value": "0.05"}]},
      {"words": [{"value": "0.06"}]}
    ]},
    {"lines": [
      {"words": [{"value": "30"}]},
      {"words": [{"value": "150"}]},
      {"words": [{"value": "180"}]}
    ]}
  ]}]
}`

func TestIngestDocument(t *testing.T) {
	input := filepath.Join(t.TempDir(), "export.json")
	require.NoError(t, os.WriteFile(input, []byte(digitizedDocument), 0o600))

	stdout, _, err := execute(t, "ingest", input, "--region", "Europe", "--fuel", "Petrol")
	require.NoError(t, err)

	loaded, err := emissions.LoadTable(strings.NewReader(stdout))
	require.NoError(t, err)
	require.Equal(t, 1, loaded.Len())
	assert.Equal(t, "van < 3.5t", loaded.Rows()[0].VehicleClass)
	assert.Equal(t, "petrol", loaded.Rows()[0].Fuel)
}

func TestIngestErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"pages": [{"blocks": "x"}]}`), 0o600))

	_, _, err := execute(t, "ingest", bad, "--fuel", "Diesel")
	assert.ErrorContains(t, err, `required flag(s) "region" not set`)

	_, _, err = execute(t, "ingest", bad, "--region", "Europe", "--fuel", "Diesel")
	assert.ErrorContains(t, err, "does not match schema")

	_, _, err = execute(t, "ingest", filepath.Join(dir, "missing.txt"), "--region", "Europe", "--fuel", "Diesel")
	assert.ErrorContains(t, err, "open input")

	text := filepath.Join(dir, "lines.txt")
	require.NoError(t, os.WriteFile(text, []byte("Van\n1\n2\n3\n4\n5\n"), 0o600))
	_, _, err = execute(t, "ingest", text, "-o", filepath.Join(dir, "no-such-dir", "out.csv"), "--region", "Europe", "--fuel", "Diesel")
	assert.ErrorContains(t, err, "create")
}

func TestTripValidatesBeforeRouting(t *testing.T) {
	_, _, err := execute(t, "trip",
		"--from", "Hamburg", "--to", "Berlin",
		"--vehicle", "van", "--fuel", "diesel", "--region", "europe",
		"--load", "-5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load_tons")
}

func TestVersion(t *testing.T) {
	stdout, _, err := execute(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "test")
}
