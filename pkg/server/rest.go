package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Sahilcoder4/greenroute-repo/pkg/core"
	"github.com/Sahilcoder4/greenroute-repo/pkg/tools"
)

// APIPrefix is where the REST bridge mounts the tools, one POST per tool name
const APIPrefix = "/api/tools/"

type toolFunc func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)

// Handler exposes the registry's tools as plain JSON endpoints for clients
// that do not speak MCP.
type Handler struct {
	logger *slog.Logger
	names  []string
	tools  map[string]toolFunc
	mux    *http.ServeMux
}

// NewHandler builds a REST handler over every tool in registry. Calls are
// traced and counted like MCP tool calls.
func NewHandler(registry *tools.Registry, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		logger: logger,
		tools:  make(map[string]toolFunc),
		mux:    http.NewServeMux(),
	}
	for _, def := range registry.TracedToolDefinitions() {
		h.names = append(h.names, def.Name)
		h.tools[def.Name] = def.Handler
	}

	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET "+APIPrefix[:len(APIPrefix)-1], h.handleList)
	h.mux.HandleFunc("POST "+APIPrefix+"{name}", h.handleTool)
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"tools": h.names})
}

func (h *Handler) handleTool(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	fn, ok := h.tools[name]
	if !ok {
		writeJSON(w, http.StatusNotFound, core.NewError(core.ErrInvalidParameter, "unknown tool "+name).
			WithGuidance("GET "+APIPrefix[:len(APIPrefix)-1]+" lists the available tools."))
		return
	}

	args := map[string]any{}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, core.NewError(core.ErrInvalidInput, "request body too large"))
			return
		}
		writeJSON(w, http.StatusBadRequest, core.NewError(core.ErrInvalidInput, "could not read request body"))
		return
	}
	if len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, &args); err != nil {
			writeJSON(w, http.StatusBadRequest, core.NewError(core.ErrInvalidInput, "request body must be a JSON object"))
			return
		}
	}

	var req mcp.CallToolRequest
	req.Params.Name = name
	req.Params.Arguments = args

	result, err := fn(r.Context(), req)
	if err != nil {
		h.logger.Error("tool failed", "tool", name, "request_id", RequestID(r.Context()), "error", err)
		writeJSON(w, http.StatusInternalServerError, core.NewError(core.ErrInternalError, "tool failed"))
		return
	}
	writeResult(w, result)
}

// writeResult relays the tool's JSON text content; error results map to 400
func writeResult(w http.ResponseWriter, result *mcp.CallToolResult) {
	status := http.StatusOK
	if result.IsError {
		status = http.StatusBadRequest
	}
	for _, c := range result.Content {
		if text, ok := c.(mcp.TextContent); ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(status)
			_, _ = io.WriteString(w, text.Text)
			return
		}
	}
	writeJSON(w, status, map[string]any{})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func generateRequestID() string {
	return uuid.NewString()
}
