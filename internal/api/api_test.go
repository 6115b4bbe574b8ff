package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/windfleet/windfleet/internal/alerts"
	"github.com/windfleet/windfleet/internal/api"
	"github.com/windfleet/windfleet/internal/config"
	"github.com/windfleet/windfleet/internal/store"
	"github.com/windfleet/windfleet/pkg/types"
)

// --- test helpers -----------------------------------------------------------

func newStore(snaps ...*types.FleetSnapshot) *store.Store {
	st := store.New(10)
	for _, s := range snaps {
		st.Put(s)
	}
	return st
}

func snap(runID string) *types.FleetSnapshot {
	return &types.FleetSnapshot{
		RunID:                runID,
		EvaluatedAt:          time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC),
		PredictionDate:       time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		RepairThreshold:      0.4,
		CostPerDistance:      5.0,
		AvgTransportCost:     125,
		TotalRepairCost:      360000,
		TotalOpportunityCost: 42000,
		WorthyCount:          2,
		Assets: []types.AssetSnapshot{
			{ID: "WT-01", PriorityScore: 0.92, Worthy: true, TotalRepairCost: 240000},
			{ID: "WT-02", PriorityScore: 0.55, Worthy: true, TotalRepairCost: 100000},
			{ID: "WT-03", PriorityScore: 0.10, TotalRepairCost: 20000},
		},
		Route: []types.RouteLeg{
			{AssetID: "WT-01", PriorityScore: 0.92},
			{AssetID: "WT-02", PriorityScore: 0.55, Distance: 5, TransportCost: 25},
		},
		Anomalies: []string{"WT-03/SH3A: missing installation date"},
	}
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(v); err != nil {
		t.Fatalf("decode JSON: %v (body: %s)", err, rr.Body.String())
	}
}

// --- /api/v1/summary --------------------------------------------------------

func TestSummary_EmptyStore(t *testing.T) {
	h := api.New(newStore(), nil)
	rr := get(t, h, "/api/v1/summary")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want 404", rr.Code)
	}
}

func TestSummary_LatestRun(t *testing.T) {
	h := api.New(newStore(snap("run-1"), snap("run-2")), nil)
	rr := get(t, h, "/api/v1/summary")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}

	var resp map[string]interface{}
	decode(t, rr, &resp)
	if resp["run_id"] != "run-2" {
		t.Errorf("run_id: got %v, want run-2 (latest)", resp["run_id"])
	}
	if resp["asset_count"].(float64) != 3 {
		t.Errorf("asset_count: got %v, want 3", resp["asset_count"])
	}
	if resp["worthy_count"].(float64) != 2 {
		t.Errorf("worthy_count: got %v, want 2", resp["worthy_count"])
	}
	if resp["route_stops"].(float64) != 2 {
		t.Errorf("route_stops: got %v, want 2", resp["route_stops"])
	}
	if resp["total_repair_cost"].(float64) != 360000 {
		t.Errorf("total_repair_cost: got %v, want 360000", resp["total_repair_cost"])
	}
	if resp["anomaly_count"].(float64) != 1 {
		t.Errorf("anomaly_count: got %v, want 1", resp["anomaly_count"])
	}
}

// --- /api/v1/assets ---------------------------------------------------------

func TestListAssets_EmptyStore(t *testing.T) {
	h := api.New(newStore(), nil)
	rr := get(t, h, "/api/v1/assets")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	var out []types.AssetSnapshot
	decode(t, rr, &out)
	if len(out) != 0 {
		t.Errorf("assets: got %d, want 0", len(out))
	}
}

func TestListAssets_ReturnsAll(t *testing.T) {
	h := api.New(newStore(snap("run-1")), nil)
	rr := get(t, h, "/api/v1/assets")

	var out []types.AssetSnapshot
	decode(t, rr, &out)
	if len(out) != 3 {
		t.Fatalf("assets: got %d, want 3", len(out))
	}
	if out[0].ID != "WT-01" || !out[0].Worthy {
		t.Errorf("first asset: got %+v", out[0])
	}
}

func TestGetAsset_Found(t *testing.T) {
	h := api.New(newStore(snap("run-1")), nil)
	rr := get(t, h, "/api/v1/assets/WT-02")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	var a types.AssetSnapshot
	decode(t, rr, &a)
	if a.ID != "WT-02" || a.PriorityScore != 0.55 {
		t.Errorf("asset: got %+v", a)
	}
}

func TestGetAsset_NotFound(t *testing.T) {
	h := api.New(newStore(snap("run-1")), nil)
	if rr := get(t, h, "/api/v1/assets/WT-99"); rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rr.Code)
	}
}

func TestGetAsset_BareSlashListsAll(t *testing.T) {
	h := api.New(newStore(snap("run-1")), nil)
	rr := get(t, h, "/api/v1/assets/")
	var out []types.AssetSnapshot
	decode(t, rr, &out)
	if len(out) != 3 {
		t.Errorf("assets: got %d, want 3", len(out))
	}
}

// --- /api/v1/route ----------------------------------------------------------

func TestRoute_ReturnsLegs(t *testing.T) {
	h := api.New(newStore(snap("run-1")), nil)
	rr := get(t, h, "/api/v1/route")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}

	var resp api.RouteResponse
	decode(t, rr, &resp)
	if resp.RunID != "run-1" {
		t.Errorf("run_id: got %q, want run-1", resp.RunID)
	}
	if len(resp.Legs) != 2 {
		t.Fatalf("legs: got %d, want 2", len(resp.Legs))
	}
	if resp.Legs[0].AssetID != "WT-01" || resp.Legs[0].TransportCost != 0 {
		t.Errorf("first leg: got %+v", resp.Legs[0])
	}
	if resp.Legs[1].TransportCost != 25 {
		t.Errorf("second leg transport cost: got %v, want 25", resp.Legs[1].TransportCost)
	}
}

func TestRoute_EmptyStore(t *testing.T) {
	h := api.New(newStore(), nil)
	if rr := get(t, h, "/api/v1/route"); rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rr.Code)
	}
}

// --- /api/v1/runs -----------------------------------------------------------

func TestListRuns_NewestFirst(t *testing.T) {
	h := api.New(newStore(snap("run-1"), snap("run-2")), nil)
	rr := get(t, h, "/api/v1/runs")

	var out []api.RunResponse
	decode(t, rr, &out)
	if len(out) != 2 {
		t.Fatalf("runs: got %d, want 2", len(out))
	}
	if out[0].RunID != "run-2" || out[1].RunID != "run-1" {
		t.Errorf("order: got [%s, %s], want [run-2, run-1]", out[0].RunID, out[1].RunID)
	}
}

func TestGetRun_ByID(t *testing.T) {
	h := api.New(newStore(snap("run-1"), snap("run-2")), nil)
	rr := get(t, h, "/api/v1/runs/run-1")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	var s types.FleetSnapshot
	decode(t, rr, &s)
	if s.RunID != "run-1" {
		t.Errorf("run_id: got %q, want run-1", s.RunID)
	}
}

func TestGetRun_LatestAlias(t *testing.T) {
	h := api.New(newStore(snap("run-1"), snap("run-2")), nil)
	rr := get(t, h, "/api/v1/runs/latest")
	var s types.FleetSnapshot
	decode(t, rr, &s)
	if s.RunID != "run-2" {
		t.Errorf("run_id: got %q, want run-2", s.RunID)
	}
}

func TestGetRun_NotFound(t *testing.T) {
	h := api.New(newStore(snap("run-1")), nil)
	if rr := get(t, h, "/api/v1/runs/nope"); rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want 404", rr.Code)
	}
}

// --- /api/v1/alerts ---------------------------------------------------------

func TestAlerts_NilEngine(t *testing.T) {
	h := api.New(newStore(snap("run-1")), nil)
	rr := get(t, h, "/api/v1/alerts")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	var out []interface{}
	decode(t, rr, &out)
	if len(out) != 0 {
		t.Errorf("alerts: got %d, want 0", len(out))
	}
}

func TestAlerts_FiringAlertVisible(t *testing.T) {
	eng := alerts.New(config.AlertsConfig{
		Rules: []config.AlertRule{
			{Name: "backlog", Condition: "worthy_count > 1", Severity: "warning"},
		},
	})
	s := snap("run-1")
	eng.Evaluate(s)

	h := api.New(newStore(s), eng)
	rr := get(t, h, "/api/v1/alerts")

	var out []map[string]interface{}
	decode(t, rr, &out)
	if len(out) != 1 {
		t.Fatalf("alerts: got %d, want 1", len(out))
	}
	if out[0]["rule_name"] != "backlog" || out[0]["state"] != "firing" {
		t.Errorf("alert: got %+v", out[0])
	}
}

// --- /metrics ---------------------------------------------------------------

func TestMetrics_ExposesFleetGauges(t *testing.T) {
	h := api.New(newStore(snap("run-1")), nil)
	rr := get(t, h, "/metrics")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}

	body := rr.Body.String()
	for _, want := range []string{
		"windfleet_runs_retained 1",
		"windfleet_assets 3",
		"windfleet_worthy_assets 2",
		"windfleet_total_repair_cost 360000",
		`windfleet_asset_priority_score{asset_id="WT-01"} 0.92`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("metrics output missing %q\nbody:\n%s", want, body)
		}
	}
}

func TestMetrics_EmptyStore(t *testing.T) {
	h := api.New(newStore(), nil)
	rr := get(t, h, "/metrics")
	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "windfleet_runs_retained 0") {
		t.Errorf("metrics output missing run counter:\n%s", body)
	}
	if strings.Contains(body, "windfleet_worthy_assets") {
		t.Error("snapshot gauges exposed before first evaluation")
	}
}

// --- method checks ----------------------------------------------------------

func TestMethodNotAllowed(t *testing.T) {
	h := api.New(newStore(snap("run-1")), nil)
	for _, path := range []string{
		"/api/v1/summary", "/api/v1/assets", "/api/v1/route",
		"/api/v1/runs", "/api/v1/alerts", "/metrics",
	} {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, path, nil))
		if rr.Code != http.StatusMethodNotAllowed {
			t.Errorf("POST %s: got %d, want 405", path, rr.Code)
		}
	}
}

// --- auth middleware --------------------------------------------------------

func TestMiddleware_DisabledPassesThrough(t *testing.T) {
	h := api.Middleware(config.AuthConfig{Mode: "none"},
		api.New(newStore(snap("run-1")), nil))
	if rr := get(t, h, "/api/v1/summary"); rr.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rr.Code)
	}
}

func TestMiddleware_RejectsMissingOrWrongKey(t *testing.T) {
	t.Setenv("WF_API_KEY", "sekrit")
	h := api.Middleware(
		config.AuthConfig{Mode: "apikey", KeyEnv: "WF_API_KEY"},
		api.New(newStore(snap("run-1")), nil))

	if rr := get(t, h, "/api/v1/summary"); rr.Code != http.StatusUnauthorized {
		t.Errorf("no key: got %d, want 401", rr.Code)
	}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/summary", nil)
	req.Header.Set("X-API-Key", "wrong")
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Errorf("wrong key: got %d, want 401", rr.Code)
	}
}

func TestMiddleware_AcceptsCorrectKey(t *testing.T) {
	t.Setenv("WF_API_KEY", "sekrit")
	h := api.Middleware(
		config.AuthConfig{Mode: "apikey", KeyEnv: "WF_API_KEY"},
		api.New(newStore(snap("run-1")), nil))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/summary", nil)
	req.Header.Set("X-API-Key", "sekrit")
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rr.Code)
	}
}

func TestMiddleware_MetricsExempt(t *testing.T) {
	t.Setenv("WF_API_KEY", "sekrit")
	h := api.Middleware(
		config.AuthConfig{Mode: "apikey", KeyEnv: "WF_API_KEY"},
		api.New(newStore(snap("run-1")), nil))

	if rr := get(t, h, "/metrics"); rr.Code != http.StatusOK {
		t.Errorf("status: got %d, want 200", rr.Code)
	}
}
