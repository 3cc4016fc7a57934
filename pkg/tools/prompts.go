package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Sahilcoder4/greenroute-repo/pkg/advisor"
)

// EmissionsAdvisorSystemPrompt guides a client model through the GreenRoute tools
func EmissionsAdvisorSystemPrompt() string {
	return advisor.SystemPrompt + `

Emission scopes:
- WTT (well-to-tank): producing and delivering the fuel or electricity.
- TTW (tank-to-wheel): burning the fuel in the vehicle.
- WTW (well-to-wheel): WTT plus TTW, the figure to compare options on.

Factors are grams CO2e per tonne-km; results are kilograms:
emission_kg = factor * distance_km * load_tons / 1000.

Workflow:
1. Call list_vehicle_classes, list_fuels and list_regions to find a covered combination.
2. Call estimate_trip_emissions with start and end places for a routed trip,
   or calculate_emissions when the distance is already known.
3. Use fuel_comparison and savings from the result to suggest reductions:
   lower-carbon fuels, shorter routes, fuller loads.
4. Report fuels marked not_available as lacking reference data, never as zero.`
}

// EmissionsAdvisorPrompt returns the prompt definition
func EmissionsAdvisorPrompt() mcp.Prompt {
	return mcp.NewPrompt("emissions_advisor_system",
		mcp.WithPromptDescription("System prompt for explaining and reducing freight emissions with the GreenRoute tools"),
	)
}

// HandleEmissionsAdvisorPrompt serves the advisor system prompt
func HandleEmissionsAdvisorPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	return mcp.NewGetPromptResult(
		"Emissions Advisor Instructions",
		[]mcp.PromptMessage{
			mcp.NewPromptMessage(
				mcp.RoleAssistant,
				mcp.NewTextContent(EmissionsAdvisorSystemPrompt()),
			),
		},
	), nil
}
