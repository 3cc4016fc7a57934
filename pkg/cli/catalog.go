package cli

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

func newClassesCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "classes",
		Short: "List the vehicle classes of the reference table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, _, err := opts.services(cmd)
			if err != nil {
				return err
			}
			return renderList(cmd, "Vehicle class", svc.Table.DistinctVehicleClasses())
		},
	}
}

func newRegionsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "regions",
		Short: "List the regions of the reference table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, _, err := opts.services(cmd)
			if err != nil {
				return err
			}
			return renderList(cmd, "Region", svc.Table.Regions())
		},
	}
}

func newFuelsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "fuels <vehicle class>",
		Short: "List the fuels available for an exact vehicle class",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, _, err := opts.services(cmd)
			if err != nil {
				return err
			}
			fuels := svc.Table.FuelsFor(args[0])
			if len(fuels) == 0 {
				return fmt.Errorf("no fuels listed for vehicle class %q, see glecctl classes", args[0])
			}
			return renderList(cmd, "Fuel", fuels)
		},
	}
}

func renderList(cmd *cobra.Command, header string, items []string) error {
	data := pterm.TableData{{header}}
	for _, item := range items {
		data = append(data, []string{item})
	}
	return renderTable(cmd.OutOrStdout(), data)
}
