package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Sahilcoder4/greenroute-repo/pkg/core"
	"github.com/Sahilcoder4/greenroute-repo/pkg/report"
	"github.com/Sahilcoder4/greenroute-repo/pkg/tools"
)

type tripFlags struct {
	from, to string
	vehicle  string
	fuel     string
	region   string
	loadTons float64
	fuels    []string
	csvPath  string
	xlsxPath string
}

func newTripCmd(opts *options) *cobra.Command {
	var tf tripFlags

	cmd := &cobra.Command{
		Use:   "trip",
		Short: "Route a trip and estimate its emissions per segment",
		Long: `Geocodes both places, routes between them and attributes emissions to
sampled route points. Trips of 100 km or more are checked against an
alternative route and the saving is reported. Routing problems do not fail
the command; the estimate then covers a zero-length placeholder route.`,
		Example: `  glecctl trip --from Hamburg --to Berlin --vehicle "articulated truck" --fuel diesel --region europe --load 20 --xlsx trip.xlsx`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTrip(cmd, opts, tf)
		},
	}

	f := cmd.Flags()
	f.StringVar(&tf.from, "from", "", "start place")
	f.StringVar(&tf.to, "to", "", "destination place")
	f.StringVar(&tf.vehicle, "vehicle", "", "free-text vehicle label")
	f.StringVar(&tf.fuel, "fuel", "", "fuel")
	f.StringVar(&tf.region, "region", "", "region of the reference table")
	f.Float64Var(&tf.loadTons, "load", 0, "payload in metric tonnes")
	f.StringSliceVar(&tf.fuels, "fuels", nil, "fuels to compare against")
	f.StringVar(&tf.csvPath, "csv", "", "write the segment sheet as CSV")
	f.StringVar(&tf.xlsxPath, "xlsx", "", "write the segment and comparison sheets as XLSX")
	for _, name := range []string{"from", "to", "vehicle", "fuel", "region", "load"} {
		_ = cmd.MarkFlagRequired(name)
	}
	return cmd
}

func runTrip(cmd *cobra.Command, opts *options, tf tripFlags) error {
	if err := core.ValidateLoad(tf.loadTons); err != nil {
		return err
	}
	svc, logger, err := opts.services(cmd)
	if err != nil {
		return err
	}

	info(cmd).Printfln("routing %s to %s", tf.from, tf.to)
	out, err := svc.Registry(logger).EstimateTrip(cmd.Context(), tf.from, tf.to, tools.EmissionParameters{
		VehicleType: tf.vehicle,
		Fuel:        tf.fuel,
		Region:      tf.region,
		LoadTons:    tf.loadTons,
	}, tf.fuels)
	if err != nil {
		return err
	}

	if out.Route.Degraded {
		warning(cmd).Println(out.Route.Note)
	} else {
		info(cmd).Println(out.Route.Note)
	}

	w := cmd.OutOrStdout()
	for _, line := range out.Summary {
		fmt.Fprintln(w, line)
	}
	if out.Savings != nil {
		if out.Savings.Applicable && out.Savings.SavingsPercent != nil {
			fmt.Fprintf(w, "Savings vs baseline: %.2f%%\n", *out.Savings.SavingsPercent)
		} else {
			fmt.Fprintln(w, "Savings vs baseline: not applicable")
		}
	}
	if out.Comparison != nil && len(out.Comparison.Estimates) > 0 {
		if err := renderComparison(cmd, *out.Comparison); err != nil {
			return err
		}
	}

	if tf.csvPath != "" {
		if err := writeFile(tf.csvPath, func(f *os.File) error { return report.WriteCSV(f, out.Trip) }); err != nil {
			return err
		}
		info(cmd).Printfln("wrote %s", tf.csvPath)
	}
	if tf.xlsxPath != "" {
		if err := writeFile(tf.xlsxPath, func(f *os.File) error { return report.WriteXLSX(f, out.Trip, out.Comparison) }); err != nil {
			return err
		}
		info(cmd).Printfln("wrote %s", tf.xlsxPath)
	}
	return nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
