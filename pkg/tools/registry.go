package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sahilcoder4/greenroute-repo/pkg/advisor"
	"github.com/Sahilcoder4/greenroute-repo/pkg/emissions"
	"github.com/Sahilcoder4/greenroute-repo/pkg/monitoring"
	"github.com/Sahilcoder4/greenroute-repo/pkg/routing"
	"github.com/Sahilcoder4/greenroute-repo/pkg/tracing"
	"github.com/Sahilcoder4/greenroute-repo/pkg/trip"
)

// Dependencies are the collaborators the tools run against. Router and
// Advisor may be nil; the tools that need them then report the service as
// unavailable.
type Dependencies struct {
	Resolver *emissions.Resolver
	Router   routing.Router
	Advisor  advisor.Advisor
}

// Registry contains all tool definitions and handlers
type Registry struct {
	logger     *slog.Logger
	deps       Dependencies
	aggregator *trip.Aggregator
}

// NewRegistry creates a new tool registry
func NewRegistry(logger *slog.Logger, deps Dependencies) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		logger:     logger,
		deps:       deps,
		aggregator: trip.NewAggregator(deps.Resolver),
	}
}

// ToolDefinition represents a GreenRoute MCP tool definition.
type ToolDefinition struct {
	Name        string
	Description string
	Tool        mcp.Tool
	Handler     func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)
}

// GetToolDefinitions returns the list of all available tools.
func (r *Registry) GetToolDefinitions() []ToolDefinition {
	defs := []ToolDefinition{
		// Version and capability tools
		{
			Name:        "get_version",
			Description: "Get the version information for this GreenRoute server",
			Tool:        GetVersionTool(),
			Handler:     r.HandleGetVersion,
		},

		// Reference table tools
		{
			Name:        "list_vehicle_classes",
			Description: "List the vehicle classes in the emission reference table",
			Tool:        ListVehicleClassesTool(),
			Handler:     r.HandleListVehicleClasses,
		},
		{
			Name:        "list_fuels",
			Description: "List the fuels available for a vehicle class. Parameters: vehicle_class (string)",
			Tool:        ListFuelsTool(),
			Handler:     r.HandleListFuels,
		},
		{
			Name:        "list_regions",
			Description: "List the regions covered by the emission reference table",
			Tool:        ListRegionsTool(),
			Handler:     r.HandleListRegions,
		},
		{
			Name:        "resolve_emission_factors",
			Description: "Resolve WTT, TTW and WTW factors in g CO2e per tonne-km. Parameters: vehicle_type, fuel, region (strings)",
			Tool:        ResolveEmissionFactorsTool(),
			Handler:     r.HandleResolveEmissionFactors,
		},

		// Emission tools
		{
			Name:        "calculate_emissions",
			Description: "Calculate WTT, TTW and WTW emissions in kg for a movement. Parameters: vehicle_type, fuel, region (strings), distance_km, load_tons (numbers)",
			Tool:        CalculateEmissionsTool(),
			Handler:     r.HandleCalculateEmissions,
		},
		{
			Name:        "compare_fuels",
			Description: "Estimate the same movement under alternative fuels. Parameters: vehicle_type, region (strings), distance_km, load_tons (numbers), base_fuel (string), candidate_fuels (array)",
			Tool:        CompareFuelsTool(),
			Handler:     r.HandleCompareFuels,
		},
		{
			Name:        "calculate_savings",
			Description: "Percentage WTW saving of an optimized trip against a baseline. Parameters: baseline_wtw_kg, optimized_wtw_kg (numbers)",
			Tool:        CalculateSavingsTool(),
			Handler:     HandleCalculateSavings,
		},

		// Trip tools
		{
			Name:        "plan_route",
			Description: "Plan a road route between two places, with an alternative for longer trips. Parameters: start, end (strings)",
			Tool:        PlanRouteTool(),
			Handler:     r.HandlePlanRoute,
		},
		{
			Name:        "estimate_trip_emissions",
			Description: "Route a trip, attribute emissions to route segments, compare fuels and report savings. Parameters: start, end, vehicle_type, fuel, region (strings), load_tons (number)",
			Tool:        EstimateTripEmissionsTool(),
			Handler:     r.HandleEstimateTripEmissions,
		},
		{
			Name:        "export_trip_report",
			Description: "Render a trip result as CSV or a text summary. Parameters: trip (object from estimate_trip_emissions), format (string: csv, summary)",
			Tool:        ExportTripReportTool(),
			Handler:     HandleExportTripReport,
		},

		// Advisor
		{
			Name:        "ask_emissions_advisor",
			Description: "Ask a logistics CO2 expert about a trip. Parameters: question (string), context (string) or trip (object)",
			Tool:        AskEmissionsAdvisorTool(),
			Handler:     r.HandleAskEmissionsAdvisor,
		},

		// Ingestion
		{
			Name:        "parse_emission_table",
			Description: "Turn OCR text lines of an emission factor table into records and reference CSV. Parameters: lines (array), region, fuel (strings)",
			Tool:        ParseEmissionTableTool(),
			Handler:     HandleParseEmissionTable,
		},
	}

	return defs
}

// TracedToolDefinitions returns the tool definitions with every handler
// wrapped in tracing and request metrics, as served to clients.
func (r *Registry) TracedToolDefinitions() []ToolDefinition {
	defs := r.GetToolDefinitions()
	for i := range defs {
		defs[i].Handler = r.wrapWithTracing(defs[i].Name, defs[i].Handler)
	}
	return defs
}

// RegisterTools registers all tools with the MCP server.
func (r *Registry) RegisterTools(mcpServer *server.MCPServer) {
	for _, def := range r.TracedToolDefinitions() {
		r.logger.Info("registering tool", "name", def.Name)
		mcpServer.AddTool(def.Tool, def.Handler)
	}
}

// wrapWithTracing wraps a tool handler with OpenTelemetry tracing and request metrics
func (r *Registry) wrapWithTracing(toolName string, handler func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)) func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		spanName := fmt.Sprintf("mcp.tool.%s", toolName)
		ctx, span := tracing.StartSpan(ctx, spanName,
			trace.WithAttributes(
				attribute.String(tracing.AttrMCPToolName, toolName),
			),
		)
		defer span.End()

		startTime := time.Now()

		result, err := handler(ctx, req)

		duration := time.Since(startTime)
		durationMs := duration.Milliseconds()

		// Error results count as failures even though the handler returned nil
		status := tracing.StatusSuccess
		switch {
		case err != nil:
			status = tracing.StatusError
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		case result != nil && result.IsError:
			status = tracing.StatusError
			span.SetStatus(codes.Error, "tool returned an error result")
		default:
			span.SetStatus(codes.Ok, "")
		}
		monitoring.RecordToolRequest(toolName, duration, status == tracing.StatusSuccess)

		resultSize := 0
		if result != nil && result.Content != nil {
			if data, marshalErr := json.Marshal(result.Content); marshalErr == nil {
				resultSize = len(data)
			}
		}

		span.SetAttributes(tracing.MCPToolAttributes(toolName, status, durationMs, resultSize)...)

		r.logger.Debug("tool execution traced",
			"tool", toolName,
			"duration_ms", durationMs,
			"status", status,
			"result_size", resultSize,
		)

		return result, err
	}
}

// RegisterPrompts registers all prompts with the MCP server.
func (r *Registry) RegisterPrompts(mcpServer *server.MCPServer) {
	r.logger.Info("registering advisor prompts")
	mcpServer.AddPrompt(EmissionsAdvisorPrompt(), HandleEmissionsAdvisorPrompt)
}

// GetToolNames returns a list of all tool names.
func (r *Registry) GetToolNames() []string {
	defs := r.GetToolDefinitions()
	names := make([]string, len(defs))
	for i, def := range defs {
		names[i] = def.Name
	}
	return names
}

// RegisterAll registers all tools and prompts with the MCP server.
func (r *Registry) RegisterAll(mcpServer *server.MCPServer) {
	r.RegisterTools(mcpServer)
	r.RegisterPrompts(mcpServer)
}
