package tools

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Sahilcoder4/greenroute-repo/pkg/core"
	"github.com/Sahilcoder4/greenroute-repo/pkg/emissions"
	"github.com/Sahilcoder4/greenroute-repo/pkg/monitoring"
	"github.com/Sahilcoder4/greenroute-repo/pkg/trip"
)

// CalculateEmissionsOutput is the emission of a single movement
type CalculateEmissionsOutput struct {
	VehicleType  string                    `json:"vehicle_type"`
	Fuel         string                    `json:"fuel"`
	Region       string                    `json:"region"`
	DistanceKm   float64                   `json:"distance_km"`
	LoadTons     float64                   `json:"load_tons"`
	MatchedClass string                    `json:"matched_class"`
	Factors      emissions.ResolvedFactors `json:"factors"`
	Emissions    emissions.Emission        `json:"emissions"`
}

// CalculateEmissionsTool returns a tool definition for emission calculation
func CalculateEmissionsTool() mcp.Tool {
	return mcp.NewTool("calculate_emissions",
		mcp.WithDescription("Calculate the WTT, TTW and WTW emissions in kg CO2e of moving a load over a distance"),
		mcp.WithString("vehicle_type",
			mcp.Required(),
			mcp.Description("Free-text vehicle label, e.g. 'HGV diesel 40t'"),
		),
		mcp.WithString("fuel",
			mcp.Required(),
			mcp.Description("Fuel, e.g. 'diesel'"),
		),
		mcp.WithString("region",
			mcp.Required(),
			mcp.Description("Region of the reference table"),
		),
		mcp.WithNumber("distance_km",
			mcp.Required(),
			mcp.Description("Distance in kilometres"),
		),
		mcp.WithNumber("load_tons",
			mcp.Required(),
			mcp.Description("Payload in metric tonnes"),
		),
	)
}

// HandleCalculateEmissions resolves factors and computes the emission of one movement
func (r *Registry) HandleCalculateEmissions(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := slog.Default().With("tool", "calculate_emissions")

	params, result, err := ValidateEmissionParameters(req, "calculate_emissions", true, logger)
	if err != nil {
		return result, nil
	}

	row, factors, err := r.resolveRow(ctx, params)
	if err != nil {
		logToolError(logger, "factor resolution failed", err)
		return r.toolError(err), nil
	}

	return jsonResult(logger, CalculateEmissionsOutput{
		VehicleType:  params.VehicleType,
		Fuel:         params.Fuel,
		Region:       params.Region,
		DistanceKm:   params.DistanceKm,
		LoadTons:     params.LoadTons,
		MatchedClass: row.VehicleClass,
		Factors:      factors,
		Emissions:    emissions.Compute(factors, params.DistanceKm, params.LoadTons),
	}), nil
}

// CompareFuelsOutput reports each candidate fuel for the same movement
type CompareFuelsOutput struct {
	VehicleType string              `json:"vehicle_type"`
	Region      string              `json:"region"`
	DistanceKm  float64             `json:"distance_km"`
	LoadTons    float64             `json:"load_tons"`
	BaseFuel    string              `json:"base_fuel,omitempty"`
	BaseWTW     *float64            `json:"base_total_wtw_kg,omitempty"`
	Estimates   []trip.FuelEstimate `json:"estimates"`
}

// CompareFuelsTool returns a tool definition for fuel comparison
func CompareFuelsTool() mcp.Tool {
	return mcp.NewTool("compare_fuels",
		mcp.WithDescription("Estimate the WTW emissions of the same movement under alternative fuels. Fuels without reference data are reported as not_available."),
		mcp.WithString("vehicle_type",
			mcp.Required(),
			mcp.Description("Free-text vehicle label"),
		),
		mcp.WithString("region",
			mcp.Required(),
			mcp.Description("Region of the reference table"),
		),
		mcp.WithNumber("distance_km",
			mcp.Required(),
			mcp.Description("Distance in kilometres"),
		),
		mcp.WithNumber("load_tons",
			mcp.Required(),
			mcp.Description("Payload in metric tonnes"),
		),
		mcp.WithString("base_fuel",
			mcp.Description("Current fuel; excluded from the candidates and reported as the reference total"),
		),
		mcp.WithArray("candidate_fuels",
			mcp.Description("Fuels to compare, defaults to diesel, petrol, cng, lng and electric"),
			mcp.Items(map[string]any{"type": "string"}),
		),
	)
}

// HandleCompareFuels estimates one movement under each candidate fuel
func (r *Registry) HandleCompareFuels(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := slog.Default().With("tool", "compare_fuels")

	values, result, err := ValidateRequiredStrings(req, "compare_fuels", logger, "vehicle_type", "region")
	if err != nil {
		return result, nil
	}
	distance, result, err := ValidateQuantity(req, "distance_km", core.ValidateDistance, logger)
	if err != nil {
		return result, nil
	}
	load, result, err := ValidateQuantity(req, "load_tons", core.ValidateLoad, logger)
	if err != nil {
		return result, nil
	}
	baseFuel := mcp.ParseString(req, "base_fuel", "")

	cmp, err := r.compareFuels(ctx, trip.ComparisonQuery{
		VehicleType:       values[0],
		Region:            values[1],
		LoadTons:          load,
		SegmentDistanceKm: distance,
		SegmentCount:      1,
		BaseFuel:          baseFuel,
		CandidateFuels:    parseStringList(req, "candidate_fuels"),
	})
	if err != nil {
		logToolError(logger, "fuel comparison failed", err)
		return r.toolError(err), nil
	}

	out := CompareFuelsOutput{
		VehicleType: values[0],
		Region:      values[1],
		DistanceKm:  distance,
		LoadTons:    load,
		BaseFuel:    baseFuel,
		Estimates:   cmp.Estimates,
	}
	if baseFuel != "" {
		if factors, err := r.deps.Resolver.Resolve(values[0], baseFuel, values[1]); err == nil {
			wtw := emissions.Compute(factors, distance, load).WTW
			out.BaseWTW = &wtw
		}
	}
	return jsonResult(logger, out), nil
}

// compareFuels runs a comparison and records each candidate's outcome
func (r *Registry) compareFuels(ctx context.Context, q trip.ComparisonQuery) (trip.ComparisonResult, error) {
	cmp, err := r.aggregator.CompareFuels(ctx, q)
	if err != nil {
		return trip.ComparisonResult{}, err
	}
	for _, e := range cmp.Estimates {
		monitoring.RecordFuelComparison(emissions.Normalize(e.Fuel), string(e.Status))
	}
	return cmp, nil
}

// SavingsOutput is the outcome of a savings calculation. Applicable is false
// when the baseline is zero.
type SavingsOutput struct {
	BaselineWTW    float64  `json:"baseline_wtw_kg"`
	OptimizedWTW   float64  `json:"optimized_wtw_kg"`
	SavingsPercent *float64 `json:"savings_percent,omitempty"`
	Applicable     bool     `json:"applicable"`
	Note           string   `json:"note,omitempty"`
}

// NewSavingsOutput computes the savings figure, reporting a zero baseline as
// not applicable rather than failing
func NewSavingsOutput(baseline, optimized float64) SavingsOutput {
	out := SavingsOutput{BaselineWTW: baseline, OptimizedWTW: optimized}
	pct, err := trip.Savings(baseline, optimized)
	if err != nil {
		out.Note = "savings not applicable: baseline emissions are zero"
		return out
	}
	out.SavingsPercent = &pct
	out.Applicable = true
	out.Note = fmt.Sprintf("Optimization saved %v%% CO2 vs baseline.", pct)
	return out
}

// CalculateSavingsTool returns a tool definition for savings calculation
func CalculateSavingsTool() mcp.Tool {
	return mcp.NewTool("calculate_savings",
		mcp.WithDescription("Calculate the percentage WTW saving of an optimized trip against a baseline trip"),
		mcp.WithNumber("baseline_wtw_kg",
			mcp.Required(),
			mcp.Description("Baseline trip WTW in kg"),
		),
		mcp.WithNumber("optimized_wtw_kg",
			mcp.Required(),
			mcp.Description("Optimized trip WTW in kg"),
		),
	)
}

// HandleCalculateSavings computes the savings percentage, failing with
// NOT_APPLICABLE for a zero baseline
func HandleCalculateSavings(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := slog.Default().With("tool", "calculate_savings")

	baseline, result, err := ValidateQuantity(req, "baseline_wtw_kg", nil, logger)
	if err != nil {
		return result, nil
	}
	optimized, result, err := ValidateQuantity(req, "optimized_wtw_kg", nil, logger)
	if err != nil {
		return result, nil
	}

	if _, err := trip.Savings(baseline, optimized); err != nil {
		logger.Warn("savings not applicable", "baseline_wtw_kg", baseline)
		return toToolError(err, nil).ToMCPResult(), nil
	}
	return jsonResult(logger, NewSavingsOutput(baseline, optimized)), nil
}
