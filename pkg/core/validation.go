package core

import (
	"fmt"
	"math"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// Upper bounds that catch unit mistakes (metres for km, kg for tonnes)
const (
	MaxDistanceKm = 40000.0
	MaxLoadTons   = 1000.0
)

// RequireString returns the trimmed string argument or a MISSING_PARAMETER error
func RequireString(req mcp.CallToolRequest, key string) (string, error) {
	v := strings.TrimSpace(mcp.ParseString(req, key, ""))
	if v == "" {
		return "", NewValidationError(ErrMissingParameter, fmt.Sprintf("%s is required", key)).
			WithQuery(key)
	}
	return v, nil
}

// ValidateDistance rejects negative, non-finite or implausibly large distances
func ValidateDistance(km float64) error {
	if math.IsNaN(km) || math.IsInf(km, 0) || km < 0 {
		return NewValidationError(ErrInvalidParameter,
			fmt.Sprintf("distance_km must be a non-negative number, got %v", km))
	}
	if km > MaxDistanceKm {
		return NewError(ErrInvalidParameter,
			fmt.Sprintf("distance_km must be at most %.0f, got %v", MaxDistanceKm, km)).
			WithGuidance("Distances are in kilometres, not metres.")
	}
	return nil
}

// ValidateLoad rejects negative, non-finite or implausibly large loads
func ValidateLoad(tons float64) error {
	if math.IsNaN(tons) || math.IsInf(tons, 0) || tons < 0 {
		return NewValidationError(ErrInvalidParameter,
			fmt.Sprintf("load_tons must be a non-negative number, got %v", tons))
	}
	if tons > MaxLoadTons {
		return NewError(ErrInvalidParameter,
			fmt.Sprintf("load_tons must be at most %.0f, got %v", MaxLoadTons, tons)).
			WithGuidance("Loads are in metric tonnes, not kilograms.")
	}
	return nil
}
