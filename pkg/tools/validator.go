package tools

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Sahilcoder4/greenroute-repo/pkg/core"
)

// EmissionParameters are the common inputs of the factor and emission tools
type EmissionParameters struct {
	VehicleType string
	Fuel        string
	Region      string
	DistanceKm  float64
	LoadTons    float64
}

// ValidateRequiredStrings checks that every key is present and non-blank and
// returns the trimmed values in key order
func ValidateRequiredStrings(req mcp.CallToolRequest, toolName string, logger *slog.Logger, keys ...string) ([]string, *mcp.CallToolResult, error) {
	values := make([]string, len(keys))
	var missing []string
	for i, key := range keys {
		values[i] = strings.TrimSpace(mcp.ParseString(req, key, ""))
		if values[i] == "" {
			missing = append(missing, key)
		}
	}

	if len(missing) > 0 {
		logger.Error("missing required parameters", "missing", strings.Join(missing, ", "))
		result := core.NewError(core.ErrMissingParameter,
			fmt.Sprintf("Missing required parameters: %s", strings.Join(missing, ", "))).
			WithGuidance(fmt.Sprintf("Example: %s", GetToolUsageExample(toolName))).
			ToMCPResult()
		return nil, result, fmt.Errorf("missing parameters")
	}
	return values, nil, nil
}

// ValidateQuantity parses a required numeric argument and applies check
func ValidateQuantity(req mcp.CallToolRequest, key string, check func(float64) error, logger *slog.Logger) (float64, *mcp.CallToolResult, error) {
	raw := strings.TrimSpace(mcp.ParseString(req, key, ""))
	if raw == "" {
		logger.Error("missing required parameter", "parameter", key)
		return 0, core.NewValidationError(core.ErrMissingParameter, fmt.Sprintf("%s is required", key)).
			WithQuery(key).
			ToMCPResult(), fmt.Errorf("missing %s", key)
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		logger.Error("invalid number", "parameter", key, "input", raw, "error", err)
		return 0, core.NewError(core.ErrInvalidParameter, fmt.Sprintf("Invalid %s value: %s", key, raw)).
			WithGuidance("Example: 100 (numeric, no quotes)").
			ToMCPResult(), fmt.Errorf("invalid %s", key)
	}

	if check != nil {
		if err := check(v); err != nil {
			logger.Error("parameter validation failed", "parameter", key, "value", v, "error", err)
			return 0, core.AsToolError(err).ToMCPResult(), err
		}
	}
	return v, nil, nil
}

// ValidateEmissionParameters validates vehicle_type, fuel, region and, when
// withDistance is set, distance_km and load_tons
func ValidateEmissionParameters(req mcp.CallToolRequest, toolName string, withDistance bool, logger *slog.Logger) (EmissionParameters, *mcp.CallToolResult, error) {
	values, result, err := ValidateRequiredStrings(req, toolName, logger, "vehicle_type", "fuel", "region")
	if err != nil {
		return EmissionParameters{}, result, err
	}
	params := EmissionParameters{VehicleType: values[0], Fuel: values[1], Region: values[2]}
	if !withDistance {
		return params, nil, nil
	}

	if params.DistanceKm, result, err = ValidateQuantity(req, "distance_km", core.ValidateDistance, logger); err != nil {
		return EmissionParameters{}, result, err
	}
	if params.LoadTons, result, err = ValidateQuantity(req, "load_tons", core.ValidateLoad, logger); err != nil {
		return EmissionParameters{}, result, err
	}
	return params, nil, nil
}

// parseStringList reads an optional array of strings, dropping blanks
func parseStringList(req mcp.CallToolRequest, key string) []string {
	args := req.GetArguments()
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok && strings.TrimSpace(s) != "" {
			out = append(out, strings.TrimSpace(s))
		}
	}
	return out
}
