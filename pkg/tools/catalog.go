package tools

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Sahilcoder4/greenroute-repo/pkg/core"
	"github.com/Sahilcoder4/greenroute-repo/pkg/emissions"
	"github.com/Sahilcoder4/greenroute-repo/pkg/monitoring"
	"github.com/Sahilcoder4/greenroute-repo/pkg/tracing"
)

// ListOutput is a named list of table values
type ListOutput struct {
	VehicleClass string   `json:"vehicle_class,omitempty"`
	Items        []string `json:"items"`
	Count        int      `json:"count"`
}

func newListOutput(items []string) ListOutput {
	if items == nil {
		items = []string{}
	}
	return ListOutput{Items: items, Count: len(items)}
}

// ListVehicleClassesTool returns a tool definition for listing vehicle classes
func ListVehicleClassesTool() mcp.Tool {
	return mcp.NewTool("list_vehicle_classes",
		mcp.WithDescription("List the distinct vehicle classes of the emission reference table, sorted"),
	)
}

// HandleListVehicleClasses lists the distinct vehicle classes
func (r *Registry) HandleListVehicleClasses(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := slog.Default().With("tool", "list_vehicle_classes")
	return jsonResult(logger, newListOutput(r.deps.Resolver.Table().DistinctVehicleClasses())), nil
}

// ListFuelsTool returns a tool definition for listing the fuels of a class
func ListFuelsTool() mcp.Tool {
	return mcp.NewTool("list_fuels",
		mcp.WithDescription("List the fuels the reference table has for an exact vehicle class"),
		mcp.WithString("vehicle_class",
			mcp.Required(),
			mcp.Description("Vehicle class as returned by list_vehicle_classes"),
		),
	)
}

// HandleListFuels lists fuels for a vehicle class in table order
func (r *Registry) HandleListFuels(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := slog.Default().With("tool", "list_fuels")

	class, err := core.RequireString(req, "vehicle_class")
	if err != nil {
		logger.Error("missing vehicle class")
		return core.AsToolError(err).ToMCPResult(), nil
	}

	out := newListOutput(r.deps.Resolver.Table().FuelsFor(class))
	out.VehicleClass = emissions.Normalize(class)
	return jsonResult(logger, out), nil
}

// ListRegionsTool returns a tool definition for listing regions
func ListRegionsTool() mcp.Tool {
	return mcp.NewTool("list_regions",
		mcp.WithDescription("List the regions covered by the emission reference table, sorted"),
	)
}

// HandleListRegions lists the distinct regions
func (r *Registry) HandleListRegions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := slog.Default().With("tool", "list_regions")
	return jsonResult(logger, newListOutput(r.deps.Resolver.Table().Regions())), nil
}

// ResolveFactorsOutput is the matched row and its factors
type ResolveFactorsOutput struct {
	VehicleType  string                    `json:"vehicle_type"`
	Fuel         string                    `json:"fuel"`
	Region       string                    `json:"region"`
	MatchedClass string                    `json:"matched_class"`
	Factors      emissions.ResolvedFactors `json:"factors"`
	WTWDerived   bool                      `json:"wtw_derived"`
}

// ResolveEmissionFactorsTool returns a tool definition for factor resolution
func ResolveEmissionFactorsTool() mcp.Tool {
	return mcp.NewTool("resolve_emission_factors",
		mcp.WithDescription("Resolve the emission factors (g CO2e per tonne-km) for a vehicle, fuel and region. The vehicle is matched on the first word of its label."),
		mcp.WithString("vehicle_type",
			mcp.Required(),
			mcp.Description("Free-text vehicle label, e.g. 'HGV diesel 40t'"),
		),
		mcp.WithString("fuel",
			mcp.Required(),
			mcp.Description("Fuel, matched exactly (case-insensitive)"),
		),
		mcp.WithString("region",
			mcp.Required(),
			mcp.Description("Region, matched exactly (case-insensitive)"),
		),
	)
}

// HandleResolveEmissionFactors resolves the factors for a lookup triple
func (r *Registry) HandleResolveEmissionFactors(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := slog.Default().With("tool", "resolve_emission_factors")

	params, result, err := ValidateEmissionParameters(req, "resolve_emission_factors", false, logger)
	if err != nil {
		return result, nil
	}

	row, factors, err := r.resolveRow(ctx, params)
	if err != nil {
		logToolError(logger, "factor resolution failed", err)
		return r.toolError(err), nil
	}

	return jsonResult(logger, ResolveFactorsOutput{
		VehicleType:  params.VehicleType,
		Fuel:         params.Fuel,
		Region:       params.Region,
		MatchedClass: row.VehicleClass,
		Factors:      factors,
		WTWDerived:   row.WTW == nil,
	}), nil
}

// resolveRow resolves a triple and records the outcome in traces and metrics
func (r *Registry) resolveRow(ctx context.Context, p EmissionParameters) (emissions.Row, emissions.ResolvedFactors, error) {
	tracing.SetAttributes(ctx, tracing.TripAttributes(p.VehicleType, p.Fuel, p.Region, p.DistanceKm, p.LoadTons)...)

	row, factors, err := r.deps.Resolver.ResolveRow(p.VehicleType, p.Fuel, p.Region)
	switch {
	case err == nil:
		monitoring.RecordFactorResolution(monitoring.OutcomeMatched)
	case emissions.IsNoMatch(err):
		monitoring.RecordFactorResolution(monitoring.OutcomeNoMatch)
	}
	return row, factors, err
}
