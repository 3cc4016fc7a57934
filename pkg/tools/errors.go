// Package tools exposes the GreenRoute emission engine as MCP tools.
package tools

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Sahilcoder4/greenroute-repo/pkg/advisor"
	"github.com/Sahilcoder4/greenroute-repo/pkg/core"
	"github.com/Sahilcoder4/greenroute-repo/pkg/emissions"
	"github.com/Sahilcoder4/greenroute-repo/pkg/trip"
)

// Common error guidance messages
const (
	GuidanceNoMatch        = "Use list_vehicle_classes, list_fuels and list_regions to find a combination the reference table covers."
	GuidanceSavings        = "Savings are only defined when the baseline trip has non-zero emissions."
	GuidanceAdvisorMissing = "Configure an advisor API key to enable this tool."
	GuidanceGeneral        = "Please try again later or modify your request parameters."
)

// ErrorResponse returns a plain error result
func ErrorResponse(message string) *mcp.CallToolResult {
	return mcp.NewToolResultError(message)
}

// toolError converts a domain or collaborator error to a structured result
func (r *Registry) toolError(err error) *mcp.CallToolResult {
	return toToolError(err, r.deps.Resolver).ToMCPResult()
}

func toToolError(err error, resolver *emissions.Resolver) *core.ToolError {
	var noMatch *emissions.NoMatchError
	var ingest *emissions.IngestionError
	switch {
	case errors.As(err, &noMatch):
		te := core.NewError(core.ErrNoMatch, noMatch.Error()).
			WithQuery(fmt.Sprintf("%s / %s / %s", noMatch.VehicleType, noMatch.Fuel, noMatch.Region)).
			WithGuidance(GuidanceNoMatch)
		if resolver != nil {
			te = te.WithSuggestions(suggestVehicleClasses(resolver.Table(), noMatch.VehicleType)...)
		}
		return te
	case errors.Is(err, trip.ErrDivisionUndefined):
		return core.NewError(core.ErrNotApplicable, "savings not applicable: baseline emissions are zero").
			WithGuidance(GuidanceSavings)
	case errors.Is(err, ErrRouterUnavailable):
		return core.NewError(core.ErrServiceUnavailable, err.Error()).
			WithGuidance("Use calculate_emissions with a known distance instead.")
	case errors.Is(err, advisor.ErrNotConfigured):
		return core.NewError(core.ErrServiceUnavailable, err.Error()).
			WithGuidance(GuidanceAdvisorMissing)
	case errors.As(err, &ingest):
		return core.NewError(core.ErrParseError, ingest.Error())
	}
	te := core.AsToolError(err)
	if te.Code == string(core.ErrInternalError) && te.Guidance == "" {
		te = te.WithGuidance(GuidanceGeneral)
	}
	return te
}

// suggestVehicleClasses lists table classes containing the query's first
// token, or every class when none does
func suggestVehicleClasses(table *emissions.Table, vehicleType string) []string {
	const maxSuggestions = 5

	all := table.DistinctVehicleClasses()
	token := emissions.FirstToken(vehicleType)
	var out []string
	for _, c := range all {
		if token != "" && strings.Contains(c, token) {
			out = append(out, c)
		}
	}
	if len(out) == 0 {
		out = all
	}
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}

// logToolError logs err at a level matching its cause
func logToolError(logger *slog.Logger, msg string, err error) {
	if te := core.AsToolError(err); te.Code == string(core.ErrInternalError) {
		logger.Error(msg, "error", err)
		return
	}
	logger.Warn(msg, "error", err)
}

// GetToolUsageExample returns an example JSON snippet for using a specific tool
// This is helpful for providing guidance when parameter validation fails
func GetToolUsageExample(toolName string) string {
	examples := map[string]string{
		"resolve_emission_factors": `{
  "vehicle_type": "HGV diesel 40t",
  "fuel": "diesel",
  "region": "europe"
}`,
		"calculate_emissions": `{
  "vehicle_type": "HGV diesel 40t",
  "fuel": "diesel",
  "region": "europe",
  "distance_km": 100,
  "load_tons": 10
}`,
		"plan_route": `{
  "start": "Hamburg",
  "end": "Munich"
}`,
		"estimate_trip_emissions": `{
  "start": "Hamburg",
  "end": "Munich",
  "vehicle_type": "HGV diesel 40t",
  "fuel": "diesel",
  "region": "europe",
  "load_tons": 10
}`,
		"compare_fuels": `{
  "vehicle_type": "HGV diesel 40t",
  "region": "europe",
  "distance_km": 750,
  "load_tons": 10,
  "base_fuel": "diesel",
  "candidate_fuels": ["cng", "lng", "electric"]
}`,
		"calculate_savings": `{
  "baseline_wtw_kg": 1000,
  "optimized_wtw_kg": 750
}`,
		"parse_emission_table": `{
  "lines": ["HGV 40t", "0.025", "0.031", "5.0", "80.0", "85.0"],
  "region": "europe",
  "fuel": "diesel"
}`,
	}

	if example, ok := examples[toolName]; ok {
		return example
	}
	return "{}"
}

func invalidTrip() error {
	return core.NewValidationError(core.ErrInvalidInput, "trip has no segments").
		WithGuidance("Pass the trip object returned by estimate_trip_emissions.")
}

func unsupportedFormat(format string) error {
	return core.NewValidationError(core.ErrInvalidParameter, fmt.Sprintf("unsupported format %q", format)).
		WithSuggestions("csv", "summary")
}
