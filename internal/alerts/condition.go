package alerts

import (
	"strconv"
	"strings"

	"github.com/windfleet/windfleet/pkg/types"
)

// match is one subject a condition fired on: the whole fleet or one asset.
type match struct {
	subjectID string // "fleet" or an asset ID
	value     float64
}

// evalCondition evaluates a rule condition string against a FleetSnapshot.
//
// Supported expressions (field operator value):
//
// Fleet-scoped — evaluated once per run:
//
//	worthy_count > 10
//	total_repair_cost > 2000000
//	total_opportunity_cost > 50000
//	avg_transport_cost > 400
//	asset_count > 100
//
// Asset-scoped — evaluated per asset, firing once per matching asset:
//
//	priority_score >= 0.8
//	repair_cost > 500000
//	opportunity_cost > 10000
//	min_health_score < 0.2
//	max_failure_probability > 0.9
//
// Returns nil if the expression cannot be parsed or the field is unknown.
func evalCondition(cond string, snap *types.FleetSnapshot) []match {
	parts := strings.Fields(cond)
	if len(parts) != 3 {
		return nil
	}
	field, op, rhs := parts[0], parts[1], parts[2]

	threshold, err := strconv.ParseFloat(rhs, 64)
	if err != nil {
		return nil
	}

	if v, ok := fleetField(field, snap); ok {
		if compareFloat(v, op, threshold) {
			return []match{{subjectID: "fleet", value: v}}
		}
		return nil
	}

	var out []match
	for i := range snap.Assets {
		a := &snap.Assets[i]
		v, ok := assetField(field, a)
		if !ok {
			return nil
		}
		if compareFloat(v, op, threshold) {
			out = append(out, match{subjectID: a.ID, value: v})
		}
	}
	return out
}

// fleetField maps a fleet-scoped field name to its value in the snapshot.
func fleetField(field string, snap *types.FleetSnapshot) (float64, bool) {
	switch field {
	case "worthy_count":
		return float64(snap.WorthyCount), true
	case "total_repair_cost":
		return snap.TotalRepairCost, true
	case "total_opportunity_cost":
		return snap.TotalOpportunityCost, true
	case "avg_transport_cost":
		return snap.AvgTransportCost, true
	case "asset_count":
		return float64(len(snap.Assets)), true
	default:
		return 0, false
	}
}

// assetField maps an asset-scoped field name to its value for one asset.
func assetField(field string, a *types.AssetSnapshot) (float64, bool) {
	switch field {
	case "priority_score":
		return a.PriorityScore, true
	case "repair_cost":
		return a.TotalRepairCost, true
	case "opportunity_cost":
		return a.TotalOpportunityCost, true
	case "min_health_score":
		low := 1.0
		for _, c := range a.Components {
			if c.HealthScore < low {
				low = c.HealthScore
			}
		}
		return low, true
	case "max_failure_probability":
		high := 0.0
		for _, c := range a.Components {
			if c.FailureProbability > high {
				high = c.FailureProbability
			}
		}
		return high, true
	default:
		return 0, false
	}
}

// compareFloat applies a comparison operator to two float64 values.
func compareFloat(v float64, op string, threshold float64) bool {
	switch op {
	case ">":
		return v > threshold
	case ">=":
		return v >= threshold
	case "<":
		return v < threshold
	case "<=":
		return v <= threshold
	case "==":
		return v == threshold
	default:
		return false
	}
}
