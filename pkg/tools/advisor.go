package tools

import (
	"context"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Sahilcoder4/greenroute-repo/pkg/advisor"
	"github.com/Sahilcoder4/greenroute-repo/pkg/core"
	"github.com/Sahilcoder4/greenroute-repo/pkg/trip"
)

// AskAdvisorInput is a question with an optional trip to ground it
type AskAdvisorInput struct {
	Question string           `json:"question"`
	Context  string           `json:"context,omitempty"`
	Trip     *trip.TripResult `json:"trip,omitempty"`
}

// AskAdvisorOutput is the advisor's answer and the context it was given
type AskAdvisorOutput struct {
	Question string `json:"question"`
	Context  string `json:"context"`
	Answer   string `json:"answer"`
}

// AskEmissionsAdvisorTool returns a tool definition for the emissions advisor
func AskEmissionsAdvisorTool() mcp.Tool {
	return mcp.NewTool("ask_emissions_advisor",
		mcp.WithDescription("Ask a logistics CO2 expert to explain WTT, TTW and WTW for a trip and suggest how to reduce emissions"),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("The question to ask"),
		),
		mcp.WithString("context",
			mcp.Description("One-line trip description, e.g. 'Vehicle: HGV, Fuel: diesel, Load: 10 tons, Distance: 750 km, Total CO2: 6375 kg'"),
		),
		mcp.WithObject("trip",
			mcp.Description("Trip object from estimate_trip_emissions; used to build the context when context is empty"),
		),
	)
}

// HandleAskEmissionsAdvisor forwards a question to the configured advisor
func (r *Registry) HandleAskEmissionsAdvisor(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return withParsedInput("ask_emissions_advisor", r.toolError, func(ctx context.Context, input AskAdvisorInput, logger *slog.Logger) (any, error) {
		question := strings.TrimSpace(input.Question)
		if question == "" {
			return nil, core.NewValidationError(core.ErrMissingParameter, "question is required").WithQuery("question")
		}
		if r.deps.Advisor == nil {
			return nil, advisor.ErrNotConfigured
		}

		summary := strings.TrimSpace(input.Context)
		if summary == "" && input.Trip != nil {
			summary = advisor.TripContext(*input.Trip)
		}

		answer, err := r.deps.Advisor.Ask(ctx, question, summary)
		if err != nil {
			return nil, err
		}
		return AskAdvisorOutput{Question: question, Context: summary, Answer: answer}, nil
	})(ctx, req)
}
