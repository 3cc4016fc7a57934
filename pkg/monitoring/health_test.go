package monitoring

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHealthWithoutTable(t *testing.T) {
	hc := NewHealthChecker("greenroute")
	defer hc.Shutdown()

	if got := hc.GetHealth().Status; got != StatusUnhealthy {
		t.Errorf("expected unhealthy without a table, got %s", got)
	}

	rec := httptest.NewRecorder()
	hc.HealthHandler()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}

func TestHealthDegradedUpstream(t *testing.T) {
	hc := NewHealthChecker("greenroute")
	defer hc.Shutdown()

	hc.SetTableRows(10)
	hc.UpdateConnection("osrm", 20*time.Millisecond, nil)
	if got := hc.GetHealth().Status; got != StatusHealthy {
		t.Fatalf("expected healthy, got %s", got)
	}

	hc.UpdateConnection("nominatim", time.Second, errors.New("timeout"))
	health := hc.GetHealth()
	if health.Status != StatusDegraded {
		t.Errorf("expected degraded, got %s", health.Status)
	}
	if health.Connections["nominatim"].LastError != "timeout" {
		t.Errorf("expected last error recorded, got %+v", health.Connections["nominatim"])
	}

	rec := httptest.NewRecorder()
	hc.ReadinessHandler()(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("degraded service should still be ready, got %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["ready"] != true {
		t.Errorf("unexpected readiness body %v", body)
	}
}

func TestWatchProbes(t *testing.T) {
	hc := NewHealthChecker("greenroute")
	defer hc.Shutdown()

	done := make(chan struct{}, 1)
	hc.Watch("llm", time.Hour, func(ctx context.Context) error {
		select {
		case done <- struct{}{}:
		default:
		}
		return nil
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("probe did not run")
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if c, ok := hc.GetHealth().Connections["llm"]; ok && c.Status == "connected" {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("probe result not recorded")
}
