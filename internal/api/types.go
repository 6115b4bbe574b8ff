package api

import "github.com/windfleet/windfleet/pkg/types"

// SummaryResponse is the payload for GET /api/v1/summary.
type SummaryResponse struct {
	RunID                string  `json:"run_id"`
	EvaluatedAt          string  `json:"evaluated_at"`     // RFC3339
	PredictionDate       string  `json:"prediction_date"`  // RFC3339
	AssetCount           int     `json:"asset_count"`
	WorthyCount          int     `json:"worthy_count"`
	RouteStops           int     `json:"route_stops"`
	TotalRepairCost      float64 `json:"total_repair_cost"`
	TotalOpportunityCost float64 `json:"total_opportunity_cost"`
	RepairThreshold      float64 `json:"repair_threshold"`
	AvgTransportCost     float64 `json:"avg_transport_cost"`
	AnomalyCount         int     `json:"anomaly_count"`
}

// RunResponse is one entry in GET /api/v1/runs.
type RunResponse struct {
	RunID       string `json:"run_id"`
	EvaluatedAt string `json:"evaluated_at"` // RFC3339
	AssetCount  int    `json:"asset_count"`
	WorthyCount int    `json:"worthy_count"`
	RouteStops  int    `json:"route_stops"`
}

// RouteResponse is the payload for GET /api/v1/route.
type RouteResponse struct {
	RunID string           `json:"run_id"`
	Legs  []types.RouteLeg `json:"legs"`
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
