package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/windfleet/windfleet/internal/alerts"
	"github.com/windfleet/windfleet/internal/store"
	"github.com/windfleet/windfleet/pkg/types"
)

// Handler is the HTTP handler for all /api/v1/* endpoints plus /metrics.
// It reads evaluation snapshots from the run store and returns JSON responses.
type Handler struct {
	store  *store.Store
	alerts *alerts.Engine // may be nil when alerting is disabled
	mux    *http.ServeMux
}

// New creates a Handler wired to the given run store and registers all routes.
// eng may be nil; /api/v1/alerts then returns an empty list.
func New(st *store.Store, eng *alerts.Engine) http.Handler {
	h := &Handler{store: st, alerts: eng, mux: http.NewServeMux()}

	h.mux.HandleFunc("/api/v1/summary", h.summary)
	h.mux.HandleFunc("/api/v1/assets", h.listAssets)
	h.mux.HandleFunc("/api/v1/assets/", h.getAsset) // subtree — extracts {id}
	h.mux.HandleFunc("/api/v1/route", h.route)
	h.mux.HandleFunc("/api/v1/runs", h.listRuns)
	h.mux.HandleFunc("/api/v1/runs/", h.getRun) // subtree — extracts {id}
	h.mux.HandleFunc("/api/v1/alerts", h.listAlerts)
	h.mux.HandleFunc("/metrics", h.metrics)

	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// --- route handlers ---------------------------------------------------------

// summary returns GET /api/v1/summary — fleet totals for the latest run.
func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	snap := h.store.Latest()
	if snap == nil {
		jsonErr(w, http.StatusNotFound, "no evaluation has completed yet")
		return
	}
	jsonResp(w, http.StatusOK, toSummary(snap))
}

// listAssets returns GET /api/v1/assets — all assets from the latest run.
func (h *Handler) listAssets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	snap := h.store.Latest()
	if snap == nil {
		jsonResp(w, http.StatusOK, []types.AssetSnapshot{})
		return
	}
	out := snap.Assets
	if out == nil {
		out = []types.AssetSnapshot{}
	}
	jsonResp(w, http.StatusOK, out)
}

// getAsset returns GET /api/v1/assets/{id} — one asset from the latest run.
func (h *Handler) getAsset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/v1/assets/")
	if id == "" {
		// Redirect bare /api/v1/assets/ to the list handler.
		h.listAssets(w, r)
		return
	}

	snap := h.store.Latest()
	if snap == nil {
		jsonErr(w, http.StatusNotFound, "asset not found")
		return
	}
	a := snap.Asset(id)
	if a == nil {
		jsonErr(w, http.StatusNotFound, "asset not found")
		return
	}
	jsonResp(w, http.StatusOK, a)
}

// route returns GET /api/v1/route — the visiting order from the latest run.
func (h *Handler) route(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	snap := h.store.Latest()
	if snap == nil {
		jsonErr(w, http.StatusNotFound, "no evaluation has completed yet")
		return
	}
	legs := snap.Route
	if legs == nil {
		legs = []types.RouteLeg{}
	}
	jsonResp(w, http.StatusOK, RouteResponse{RunID: snap.RunID, Legs: legs})
}

// listRuns returns GET /api/v1/runs — retained run history, newest first.
func (h *Handler) listRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	entries := h.store.List()
	out := make([]RunResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, RunResponse{
			RunID:       e.Snapshot.RunID,
			EvaluatedAt: e.Snapshot.EvaluatedAt.UTC().Format(time.RFC3339),
			AssetCount:  len(e.Snapshot.Assets),
			WorthyCount: e.Snapshot.WorthyCount,
			RouteStops:  len(e.Snapshot.Route),
		})
	}
	jsonResp(w, http.StatusOK, out)
}

// getRun returns GET /api/v1/runs/{id} — one full run snapshot. The id
// "latest" is an alias for the most recent run.
func (h *Handler) getRun(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/v1/runs/")
	if id == "" {
		h.listRuns(w, r)
		return
	}

	var snap *types.FleetSnapshot
	if id == "latest" {
		snap = h.store.Latest()
	} else if s, ok := h.store.Get(id); ok {
		snap = s
	}
	if snap == nil {
		jsonErr(w, http.StatusNotFound, "run not found")
		return
	}
	jsonResp(w, http.StatusOK, snap)
}

// listAlerts returns GET /api/v1/alerts — firing and recently resolved alerts.
func (h *Handler) listAlerts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if h.alerts == nil {
		jsonResp(w, http.StatusOK, []struct{}{})
		return
	}
	out := h.alerts.Active()
	if out == nil {
		jsonResp(w, http.StatusOK, []struct{}{})
		return
	}
	jsonResp(w, http.StatusOK, out)
}

// --- helpers ----------------------------------------------------------------

func jsonResp(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v) //nolint:errcheck
}

func jsonErr(w http.ResponseWriter, code int, msg string) {
	jsonResp(w, code, errorResponse{Error: msg})
}

// toSummary maps a snapshot to its summary representation.
func toSummary(snap *types.FleetSnapshot) SummaryResponse {
	return SummaryResponse{
		RunID:                snap.RunID,
		EvaluatedAt:          snap.EvaluatedAt.UTC().Format(time.RFC3339),
		PredictionDate:       snap.PredictionDate.UTC().Format(time.RFC3339),
		AssetCount:           len(snap.Assets),
		WorthyCount:          snap.WorthyCount,
		RouteStops:           len(snap.Route),
		TotalRepairCost:      snap.TotalRepairCost,
		TotalOpportunityCost: snap.TotalOpportunityCost,
		RepairThreshold:      snap.RepairThreshold,
		AvgTransportCost:     snap.AvgTransportCost,
		AnomalyCount:         len(snap.Anomalies),
	}
}
