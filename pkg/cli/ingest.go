package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Sahilcoder4/greenroute-repo/pkg/ingest"
)

func newIngestCmd() *cobra.Command {
	var output, region, fuel string

	cmd := &cobra.Command{
		Use:   "ingest <file>",
		Short: "Convert a digitized emission table into reference table CSV",
		Long: `Reads a digitized GLEC factor table and writes the reference table CSV.

The input is either a digitizer JSON export (.json) or a plain text file with
one recognized line per row. The digitized tables carry neither region nor
fuel, so both are given as flags and stamped on every row. A record needs its
WTT and TTW numbers to become a reference row; missing fuel intensities and
WTW are left empty and WTW is derived on load. Records cut off before TTW are
reported and left out.`,
		Example: `  glecctl ingest glec-na-diesel.json --region "North America" --fuel Diesel -o table.csv`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd, args[0], output, region, fuel)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "-", "output CSV path, - for stdout")
	cmd.Flags().StringVar(&region, "region", "", "region stamped on every row")
	cmd.Flags().StringVar(&fuel, "fuel", "", "fuel stamped on every row")
	_ = cmd.MarkFlagRequired("region")
	_ = cmd.MarkFlagRequired("fuel")
	return cmd
}

func runIngest(cmd *cobra.Command, input, output, region, fuel string) error {
	lines, err := readDigitizedLines(input)
	if err != nil {
		return err
	}

	records := ingest.Parse(lines)
	loadable := make([]ingest.Record, 0, len(records))
	for _, r := range records {
		if !r.Loadable() {
			warning(cmd).Printfln("skipping record %q without WTT and TTW", r.VehicleType)
			continue
		}
		loadable = append(loadable, r)
	}

	if output == "-" {
		if err := ingest.WriteCSV(cmd.OutOrStdout(), loadable, region, fuel); err != nil {
			return err
		}
	} else {
		err := writeFile(output, func(f *os.File) error { return ingest.WriteCSV(f, loadable, region, fuel) })
		if err != nil {
			return err
		}
	}

	info(cmd).Printfln("parsed %d records, %d written", len(records), len(loadable))
	return nil
}

// readDigitizedLines flattens a digitizer JSON export, or reads a text file
// line by line
func readDigitizedLines(path string) ([]string, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	if strings.EqualFold(filepath.Ext(path), ".json") {
		doc, err := ingest.DecodeDocument(f)
		if err != nil {
			return nil, err
		}
		return ingest.FlattenDocument(doc), nil
	}

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return lines, nil
}
