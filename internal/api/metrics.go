package api

import (
	"net/http"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"

	"github.com/windfleet/windfleet/pkg/types"
)

// metrics returns GET /metrics — fleet gauges in Prometheus text format.
// Before the first evaluation completes only the run counter is exposed.
func (h *Handler) metrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		jsonErr(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	families := []*dto.MetricFamily{
		gauge("windfleet_runs_retained",
			"Number of evaluation runs held in the in-memory history.",
			float64(h.store.Count()), nil),
	}

	if snap := h.store.Latest(); snap != nil {
		families = append(families, snapshotFamilies(snap)...)
	}

	format := expfmt.NewFormat(expfmt.TypeTextPlain)
	w.Header().Set("Content-Type", string(format))
	enc := expfmt.NewEncoder(w, format)
	for _, fam := range families {
		if err := enc.Encode(fam); err != nil {
			return
		}
	}
}

// snapshotFamilies builds the gauge families derived from one snapshot.
func snapshotFamilies(snap *types.FleetSnapshot) []*dto.MetricFamily {
	fams := []*dto.MetricFamily{
		gauge("windfleet_assets",
			"Number of assets in the latest evaluation.",
			float64(len(snap.Assets)), nil),
		gauge("windfleet_worthy_assets",
			"Assets at or above the repair threshold in the latest evaluation.",
			float64(snap.WorthyCount), nil),
		gauge("windfleet_route_stops",
			"Stops in the optimized route of the latest evaluation.",
			float64(len(snap.Route)), nil),
		gauge("windfleet_total_repair_cost",
			"Fleet-wide expected repair cost in the latest evaluation.",
			snap.TotalRepairCost, nil),
		gauge("windfleet_total_opportunity_cost",
			"Fleet-wide opportunity cost in the latest evaluation.",
			snap.TotalOpportunityCost, nil),
		gauge("windfleet_repair_threshold",
			"Priority score cutoff in effect for the latest evaluation.",
			snap.RepairThreshold, nil),
		gauge("windfleet_avg_transport_cost",
			"Average pairwise transport cost used in the latest evaluation.",
			snap.AvgTransportCost, nil),
		gauge("windfleet_anomalies",
			"Data integrity anomalies reported by the latest evaluation.",
			float64(len(snap.Anomalies)), nil),
	}

	// Per-asset priority scores, labeled by asset ID.
	scores := &dto.MetricFamily{
		Name: proto.String("windfleet_asset_priority_score"),
		Help: proto.String("Benefit to cost priority score per asset."),
		Type: dto.MetricType_GAUGE.Enum(),
	}
	for i := range snap.Assets {
		a := &snap.Assets[i]
		scores.Metric = append(scores.Metric, &dto.Metric{
			Label: []*dto.LabelPair{{
				Name:  proto.String("asset_id"),
				Value: proto.String(a.ID),
			}},
			Gauge: &dto.Gauge{Value: proto.Float64(a.PriorityScore)},
		})
	}
	return append(fams, scores)
}

// gauge builds a single-sample gauge family.
func gauge(name, help string, value float64, labels []*dto.LabelPair) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name: proto.String(name),
		Help: proto.String(help),
		Type: dto.MetricType_GAUGE.Enum(),
		Metric: []*dto.Metric{{
			Label: labels,
			Gauge: &dto.Gauge{Value: proto.Float64(value)},
		}},
	}
}
