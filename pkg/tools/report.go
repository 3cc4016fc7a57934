package tools

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Sahilcoder4/greenroute-repo/pkg/report"
	"github.com/Sahilcoder4/greenroute-repo/pkg/trip"
)

// ExportTripReportInput is a trip result as returned by estimate_trip_emissions
type ExportTripReportInput struct {
	Trip       trip.TripResult        `json:"trip"`
	Comparison *trip.ComparisonResult `json:"fuel_comparison,omitempty"`
	Format     string                 `json:"format,omitempty"`
}

// ExportTripReportTool returns a tool definition for report export
func ExportTripReportTool() mcp.Tool {
	return mcp.NewTool("export_trip_report",
		mcp.WithDescription("Render a trip result as per-segment CSV or as a human-readable summary"),
		mcp.WithObject("trip",
			mcp.Required(),
			mcp.Description("The trip object returned by estimate_trip_emissions"),
		),
		mcp.WithObject("fuel_comparison",
			mcp.Description("Optional fuel comparison to include in the summary"),
		),
		mcp.WithString("format",
			mcp.Description("csv (default) or summary"),
			mcp.Enum("csv", "summary"),
			mcp.DefaultString("csv"),
		),
	)
}

// HandleExportTripReport renders a trip result as text
func HandleExportTripReport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return WithParsedInput("export_trip_report", func(ctx context.Context, input ExportTripReportInput, logger *slog.Logger) (any, error) {
		if len(input.Trip.Segments) == 0 {
			return nil, invalidTrip()
		}

		switch strings.ToLower(input.Format) {
		case "", "csv":
			var buf bytes.Buffer
			if err := report.WriteCSV(&buf, input.Trip); err != nil {
				return nil, fmt.Errorf("render csv: %w", err)
			}
			return ReportOutput{Format: "csv", Content: buf.String()}, nil
		case "summary":
			lines := report.Summary(input.Trip)
			if input.Comparison != nil {
				lines = append(lines, report.ComparisonSummary(*input.Comparison)...)
			}
			return ReportOutput{Format: "summary", Content: strings.Join(lines, "\n")}, nil
		default:
			return nil, unsupportedFormat(input.Format)
		}
	})(ctx, req)
}

// ReportOutput carries a rendered report
type ReportOutput struct {
	Format  string `json:"format"`
	Content string `json:"content"`
}
