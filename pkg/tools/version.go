package tools

import (
	"context"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Sahilcoder4/greenroute-repo/pkg/version"
)

// VersionInfo represents version information for the service
type VersionInfo struct {
	version.Info
	TableRows int `json:"table_rows"`
}

// GetVersionTool returns a tool definition for retrieving version information
func GetVersionTool() mcp.Tool {
	return mcp.NewTool("get_version",
		mcp.WithDescription("Get the version and build information of the GreenRoute service"),
	)
}

// HandleGetVersion reports build metadata and the size of the loaded reference table
func (r *Registry) HandleGetVersion(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	logger := slog.Default().With("tool", "get_version")

	info := VersionInfo{Info: version.Get()}
	if r.deps.Resolver != nil {
		info.TableRows = r.deps.Resolver.Table().Len()
	}
	return jsonResult(logger, info), nil
}
