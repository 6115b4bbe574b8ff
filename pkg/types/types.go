package types

import "time"

// Criticality tiers for a component. Informational for reporting and
// alert routing; the cost model itself is driven by the numeric fields.
const (
	CriticalityCritical  = "critical"
	CriticalityImportant = "important"
	CriticalityRoutine   = "routine"
)

// ComponentRecord is one wearable part as delivered by the data loader.
// All monetary fields are non-negative; PowerImpact is in [0, 1].
type ComponentRecord struct {
	// Name is the component type, e.g. "Blade" or "Motor".
	Name string

	// SerialNumber is unique within the owning asset.
	SerialNumber string

	// LifetimeYears is the rated lifetime. One year counts as 365 days.
	LifetimeYears float64

	// InstallDate is the calendar date the component entered service.
	// A zero value is a data-integrity anomaly — the health model falls
	// back to the full rated lifetime and reports the record.
	InstallDate time.Time

	// ReplacementCost is the full cost of replacing the component.
	ReplacementCost float64

	// SalvageValue is what a worn component still recovers at replacement.
	SalvageValue float64

	// Criticality is one of the Criticality* constants.
	Criticality string

	// PowerImpact is the fraction of asset output lost if this component
	// fails: 0 = no effect, 1 = full outage.
	PowerImpact float64

	// RepairHours is the expected hands-on repair duration.
	RepairHours float64
}

// AssetRecord is one physical installation as delivered by the data loader.
type AssetRecord struct {
	ID string

	// Latitude / Longitude are planar coordinates in any consistent 2D
	// system; distances between assets are Euclidean, not geodesic.
	Latitude  float64
	Longitude float64

	// PowerRating is the asset's rated output in kW.
	PowerRating float64

	// EnergyPrice is the current sale price per kWh.
	EnergyPrice float64

	// Cluster is an informational grouping label.
	Cluster string

	Components []ComponentRecord
}

// ComponentSnapshot is the derived state of one component after an
// evaluation pass.
type ComponentSnapshot struct {
	SerialNumber       string  `json:"serial_number"`
	Name               string  `json:"name"`
	Criticality        string  `json:"criticality"`
	RemainingDays      float64 `json:"remaining_days"`
	HealthScore        float64 `json:"health_score"`
	FailureProbability float64 `json:"failure_probability"`
	RepairCost         float64 `json:"repair_cost"`
	OpportunityCost    float64 `json:"opportunity_cost"`
}

// AssetSnapshot is the derived state of one asset after an evaluation pass.
type AssetSnapshot struct {
	ID                   string              `json:"id"`
	Latitude             float64             `json:"latitude"`
	Longitude            float64             `json:"longitude"`
	Cluster              string              `json:"cluster,omitempty"`
	PowerRating          float64             `json:"power_rating"`
	EnergyPrice          float64             `json:"energy_price"`
	TotalRepairCost      float64             `json:"total_repair_cost"`
	TotalOpportunityCost float64             `json:"total_opportunity_cost"`
	PriorityScore        float64             `json:"priority_score"`
	Worthy               bool                `json:"worthy"`
	OperationCost        float64             `json:"operation_cost"`
	Components           []ComponentSnapshot `json:"components"`
}

// RouteLeg is one stop in the optimized visiting order. Distance and
// TransportCost are measured from the previous stop (zero for the first).
type RouteLeg struct {
	AssetID       string  `json:"asset_id"`
	PriorityScore float64 `json:"priority_score"`
	Distance      float64 `json:"distance"`
	TransportCost float64 `json:"transport_cost"`
}

// FleetSnapshot is the immutable result of one full evaluation pass.
// The serving surface only ever reads completed snapshots, so readers
// cannot observe a half-recomputed session.
type FleetSnapshot struct {
	RunID          string    `json:"run_id"`
	EvaluatedAt    time.Time `json:"evaluated_at"`
	PredictionDate time.Time `json:"prediction_date"`

	// Configuration in effect for this pass.
	RepairThreshold  float64 `json:"repair_threshold"`
	CostPerDistance  float64 `json:"cost_per_distance_unit"`
	AvgTransportCost float64 `json:"avg_transport_cost"`

	TotalRepairCost      float64 `json:"total_repair_cost"`
	TotalOpportunityCost float64 `json:"total_opportunity_cost"`
	WorthyCount          int     `json:"worthy_count"`

	Assets []AssetSnapshot `json:"assets"`
	Route  []RouteLeg      `json:"route"`

	// Anomalies lists per-record data-integrity problems encountered
	// during the pass. The affected components fell back to documented
	// defaults; nothing here aborted the evaluation.
	Anomalies []string `json:"anomalies,omitempty"`
}

// Asset returns the snapshot for the given asset ID, or nil.
func (s *FleetSnapshot) Asset(id string) *AssetSnapshot {
	for i := range s.Assets {
		if s.Assets[i].ID == id {
			return &s.Assets[i]
		}
	}
	return nil
}
