package api_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/chroniclehq/chronicle/internal/api"
)

func TestLiveness(t *testing.T) {
	r := newTestRouter()
	h := api.NewHealthHandler(nil, nil, testLogger(), "test-version")
	r.GET("/health", h.Liveness)

	w := doRequest(r, http.MethodGet, "/health", "")

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp struct {
		Status        string  `json:"status"`
		Version       string  `json:"version"`
		Database      string  `json:"database"`
		UptimeSeconds float64 `json:"uptime_seconds"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" || resp.Version != "test-version" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.Database != "not_configured" {
		t.Errorf("database = %q, want not_configured without a pool", resp.Database)
	}
}
