package tools

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Sahilcoder4/greenroute-repo/pkg/core"
	"github.com/Sahilcoder4/greenroute-repo/pkg/ingest"
)

// ParseEmissionTableInput holds OCR text lines and the labels for the output rows
type ParseEmissionTableInput struct {
	Lines  []string `json:"lines"`
	Region string   `json:"region"`
	Fuel   string   `json:"fuel"`
}

// ParseEmissionTableOutput is the parsed records and their reference CSV form
type ParseEmissionTableOutput struct {
	Records  []ingest.Record `json:"records"`
	Complete int             `json:"complete"`
	Loadable int             `json:"loadable"`
	CSV      string          `json:"csv,omitempty"`
}

// ParseEmissionTableTool returns a tool definition for OCR table parsing
func ParseEmissionTableTool() mcp.Tool {
	return mcp.NewTool("parse_emission_table",
		mcp.WithDescription("Parse OCR text lines of an emission factor table into vehicle records. A line containing Van, Truck, MGV, HGV or Carrier starts a record; the next five numeric lines fill its fuel intensities and WTT, TTW and WTW factors."),
		mcp.WithArray("lines",
			mcp.Required(),
			mcp.Description("OCR text lines in reading order"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		mcp.WithString("region",
			mcp.Description("Region label for the CSV of records carrying WTT and TTW; CSV is omitted when region or fuel is empty"),
		),
		mcp.WithString("fuel",
			mcp.Description("Fuel label for the CSV rows"),
		),
	)
}

// HandleParseEmissionTable parses OCR lines into records
func HandleParseEmissionTable(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return WithParsedInput("parse_emission_table", func(ctx context.Context, input ParseEmissionTableInput, logger *slog.Logger) (any, error) {
		if len(input.Lines) == 0 {
			return nil, core.NewValidationError(core.ErrMissingParameter, "lines is required").WithQuery("lines")
		}

		records := ingest.Parse(input.Lines)
		out := ParseEmissionTableOutput{Records: records}
		if out.Records == nil {
			out.Records = []ingest.Record{}
		}
		var loadable []ingest.Record
		for _, rec := range records {
			if rec.Complete() {
				out.Complete++
			}
			if rec.Loadable() {
				loadable = append(loadable, rec)
			}
		}
		out.Loadable = len(loadable)

		// rows without WTT or TTW would fail the reference table load
		if input.Region != "" && input.Fuel != "" {
			var buf bytes.Buffer
			if err := ingest.WriteCSV(&buf, loadable, input.Region, input.Fuel); err != nil {
				return nil, fmt.Errorf("render csv: %w", err)
			}
			out.CSV = buf.String()
		}

		logger.Info("parsed emission table", "lines", len(input.Lines), "records", len(records), "loadable", out.Loadable)
		return out, nil
	})(ctx, req)
}
