package cli

import (
	"encoding/json"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/Sahilcoder4/greenroute-repo/pkg/core"
	"github.com/Sahilcoder4/greenroute-repo/pkg/emissions"
	"github.com/Sahilcoder4/greenroute-repo/pkg/report"
	"github.com/Sahilcoder4/greenroute-repo/pkg/trip"
)

// movementFlags describe a single freight movement
type movementFlags struct {
	vehicle    string
	fuel       string
	region     string
	loadTons   float64
	distanceKm float64
}

func (m *movementFlags) bind(cmd *cobra.Command, withFuel bool) {
	f := cmd.Flags()
	f.StringVar(&m.vehicle, "vehicle", "", "free-text vehicle label, e.g. \"rigid truck 12t\"")
	f.StringVar(&m.region, "region", "", "region of the reference table")
	f.Float64Var(&m.loadTons, "load", 0, "payload in metric tonnes")
	f.Float64Var(&m.distanceKm, "distance", 0, "distance in km")
	_ = cmd.MarkFlagRequired("vehicle")
	_ = cmd.MarkFlagRequired("region")
	_ = cmd.MarkFlagRequired("load")
	_ = cmd.MarkFlagRequired("distance")
	if withFuel {
		f.StringVar(&m.fuel, "fuel", "", "fuel, e.g. diesel")
		_ = cmd.MarkFlagRequired("fuel")
	}
}

func (m *movementFlags) validate() error {
	if err := core.ValidateLoad(m.loadTons); err != nil {
		return err
	}
	return core.ValidateDistance(m.distanceKm)
}

type estimateOutput struct {
	Matched   emissions.Row             `json:"matched"`
	Factors   emissions.ResolvedFactors `json:"factors"`
	Emissions emissions.Emission        `json:"emissions"`
}

func newEstimateCmd(opts *options) *cobra.Command {
	var m movementFlags
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "estimate",
		Short: "Estimate WTT, TTW and WTW emissions of one movement",
		Example: `  glecctl estimate --vehicle "rigid truck" --fuel diesel --region "north america" --load 10 --distance 100`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := m.validate(); err != nil {
				return err
			}
			svc, _, err := opts.services(cmd)
			if err != nil {
				return err
			}

			row, factors, err := svc.Resolver.ResolveRow(m.vehicle, m.fuel, m.region)
			if err != nil {
				return err
			}
			e := emissions.Compute(factors, m.distanceKm, m.loadTons)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(estimateOutput{Matched: row, Factors: factors, Emissions: e})
			}

			info(cmd).Printfln("matched %s / %s / %s", row.VehicleClass, row.Fuel, row.Region)
			return renderTable(cmd.OutOrStdout(), pterm.TableData{
				{"Scope", "Factor (g CO2e/t-km)", "Emission"},
				{"WTT", fmt.Sprint(factors.WTT), report.FormatKg(e.WTT)},
				{"TTW", fmt.Sprint(factors.TTW), report.FormatKg(e.TTW)},
				{"WTW", fmt.Sprint(factors.WTW), report.FormatKg(e.WTW)},
			})
		},
	}
	m.bind(cmd, true)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func newCompareCmd(opts *options) *cobra.Command {
	var m movementFlags
	var base string
	var fuels []string

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare the WTW emission of one movement across fuels",
		Example: `  glecctl compare --vehicle "rigid truck" --region "north america" --load 10 --distance 100 --base diesel`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := m.validate(); err != nil {
				return err
			}
			svc, _, err := opts.services(cmd)
			if err != nil {
				return err
			}

			res, err := svc.Aggregator.CompareFuels(cmd.Context(), trip.ComparisonQuery{
				VehicleType:       m.vehicle,
				Region:            m.region,
				LoadTons:          m.loadTons,
				SegmentDistanceKm: m.distanceKm,
				SegmentCount:      1,
				BaseFuel:          base,
				CandidateFuels:    fuels,
			})
			if err != nil {
				return err
			}
			return renderComparison(cmd, res)
		},
	}
	m.bind(cmd, false)
	cmd.Flags().StringVar(&base, "base", "", "fuel to leave out of the comparison")
	cmd.Flags().StringSliceVar(&fuels, "fuels", nil, "candidate fuels (default diesel,petrol,cng,lng,electric)")
	return cmd
}

func renderComparison(cmd *cobra.Command, res trip.ComparisonResult) error {
	data := pterm.TableData{{"Fuel", "Status", "Total WTW"}}
	for _, e := range res.Estimates {
		total := "-"
		if e.Available() {
			total = report.FormatKg(e.TotalWTW)
		}
		data = append(data, []string{e.Fuel, string(e.Status), total})
	}
	return renderTable(cmd.OutOrStdout(), data)
}
