package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
)

func TestToolErrorResult(t *testing.T) {
	err := NewError(ErrNoMatch, "no match found").
		WithQuery("van/diesel/europe").
		WithSuggestions("van (3.5t)").
		WithGuidance("Use list_vehicle_classes")

	res := err.ToMCPResult()
	if !res.IsError {
		t.Fatal("expected error result")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}

	var decoded ToolError
	if err := json.Unmarshal([]byte(text.Text), &decoded); err != nil {
		t.Fatal(err)
	}
	if decoded.Code != "NO_MATCH" || decoded.Query != "van/diesel/europe" || len(decoded.Suggestions) != 1 {
		t.Errorf("unexpected body %+v", decoded)
	}
}

func TestAsToolError(t *testing.T) {
	te := NewError(ErrRateLimit, "slow down")
	if got := AsToolError(fmt.Errorf("wrapped: %w", te)); got != te {
		t.Errorf("expected wrapped ToolError to be unwrapped, got %v", got)
	}
	if got := AsToolError(errors.New("boom")); got.Code != string(ErrInternalError) {
		t.Errorf("expected INTERNAL_ERROR, got %s", got.Code)
	}
}

func TestServiceErrorCodes(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorCode
	}{
		{http.StatusTooManyRequests, ErrRateLimit},
		{http.StatusGatewayTimeout, ErrServiceTimeout},
		{http.StatusBadRequest, ErrInvalidInput},
		{http.StatusBadGateway, ErrServiceUnavailable},
	}
	for _, tt := range tests {
		if got := ServiceError("OSRM", tt.status, "x"); got.Code != string(tt.want) {
			t.Errorf("status %d: got %s, want %s", tt.status, got.Code, tt.want)
		}
	}
}
