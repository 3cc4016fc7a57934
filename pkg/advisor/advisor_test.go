package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Sahilcoder4/greenroute-repo/pkg/core"
	"github.com/Sahilcoder4/greenroute-repo/pkg/trip"
)

func TestTripContext(t *testing.T) {
	r := trip.TripResult{
		Vehicle:         "hgv 40t",
		Fuel:            "diesel",
		LoadTons:        10,
		TotalDistanceKm: 152.4,
		TotalWTW:        1295.4,
	}
	want := "Vehicle: hgv 40t, Fuel: diesel, Load: 10 tons, Distance: 152.4 km, Total CO₂: 1295.4 kg"
	if got := TripContext(r); got != want {
		t.Errorf("TripContext() = %q, want %q", got, want)
	}
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt("How do I cut WTT?", "Vehicle: van")
	if !strings.HasPrefix(p, SystemPrompt) {
		t.Error("prompt should start with the system framing")
	}
	if !strings.Contains(p, "Trip Info:\nVehicle: van\n\nQuestion: How do I cut WTT?") {
		t.Errorf("unexpected prompt %q", p)
	}
}

func TestAsk(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Errorf("missing bearer token")
		}
		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
			return
		}
		if req.Model != "test-model" || len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("unexpected request %+v", req)
		}
		if !strings.Contains(req.Messages[1].Content, "Question: why?") {
			t.Errorf("question missing from user message")
		}
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  Switch to HVO.  "}}]}`))
	}))
	defer srv.Close()

	c := NewChatClient(Config{APIKey: "sk-test", BaseURL: srv.URL + "/v1/", Model: "test-model"}, nil, nil)
	got, err := c.Ask(context.Background(), "why?", "Vehicle: van")
	if err != nil {
		t.Fatal(err)
	}
	if got != "Switch to HVO." {
		t.Errorf("Ask() = %q", got)
	}
}

func TestAskUpstreamError(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewChatClient(Config{APIKey: "sk-test", BaseURL: srv.URL}, nil, nil)
	_, err := c.Ask(context.Background(), "why?", "")
	if err == nil {
		t.Fatal("expected error")
	}
	if te := core.AsToolError(err); te.Code != string(core.ErrServiceUnavailable) {
		t.Errorf("expected SERVICE_UNAVAILABLE, got %s", te.Code)
	}
	if calls != 1 {
		t.Errorf("advisor must not retry, got %d calls", calls)
	}
}

func TestAskNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewChatClient(Config{APIKey: "sk-test", BaseURL: srv.URL}, nil, nil)
	if _, err := c.Ask(context.Background(), "why?", ""); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestAskNotConfigured(t *testing.T) {
	t.Setenv(APIKeyEnv, "")
	c := NewChatClient(Config{}, nil, nil)
	if c.Configured() {
		t.Fatal("client without key should not be configured")
	}
	if _, err := c.Ask(context.Background(), "why?", ""); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestAskEmptyQuestion(t *testing.T) {
	c := NewChatClient(Config{APIKey: "sk-test", BaseURL: "http://127.0.0.1:0"}, nil, nil)
	if _, err := c.Ask(context.Background(), "   ", ""); err == nil {
		t.Fatal("expected validation error")
	}
}
