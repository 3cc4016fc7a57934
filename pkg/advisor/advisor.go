// Package advisor answers free-text questions about a trip's emissions using
// an OpenAI-compatible chat completions endpoint.
package advisor

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Sahilcoder4/greenroute-repo/pkg/trip"
)

// ErrNotConfigured is returned when no API key is available
var ErrNotConfigured = errors.New("advisor is not configured: no API key")

// SystemPrompt frames the model for every question
const SystemPrompt = "You are a CO₂ emissions expert for logistics. " +
	"Explain TTW, WTT, WTW and suggest how to reduce emissions."

// Advisor answers a question given a short description of the trip
type Advisor interface {
	Ask(ctx context.Context, question, contextSummary string) (string, error)
}

// BuildPrompt renders the user message sent to the model
func BuildPrompt(question, contextSummary string) string {
	var b strings.Builder
	b.WriteString(SystemPrompt)
	b.WriteString("\n\nTrip Info:\n")
	b.WriteString(contextSummary)
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	return b.String()
}

// TripContext summarizes a trip result in one line for the advisor
func TripContext(r trip.TripResult) string {
	return fmt.Sprintf("Vehicle: %s, Fuel: %s, Load: %s tons, Distance: %s km, Total CO₂: %s kg",
		r.Vehicle, r.Fuel, num(r.LoadTons), num(r.TotalDistanceKm), num(r.TotalWTW))
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
