package alerts

import (
	"testing"

	"github.com/windfleet/windfleet/pkg/types"
)

func testSnapshot() *types.FleetSnapshot {
	return &types.FleetSnapshot{
		TotalRepairCost:      2500000,
		TotalOpportunityCost: 60000,
		AvgTransportCost:     450,
		WorthyCount:          12,
		Assets: []types.AssetSnapshot{
			{
				ID:                   "WT-01",
				PriorityScore:        0.92,
				TotalRepairCost:      600000,
				TotalOpportunityCost: 15000,
				Components: []types.ComponentSnapshot{
					{SerialNumber: "BL1A", HealthScore: 0.15, FailureProbability: 0.98},
					{SerialNumber: "MO1A", HealthScore: 0.60, FailureProbability: 0.64},
				},
			},
			{
				ID:                   "WT-02",
				PriorityScore:        0.31,
				TotalRepairCost:      120000,
				TotalOpportunityCost: 2000,
				Components: []types.ComponentSnapshot{
					{SerialNumber: "BL2A", HealthScore: 0.80, FailureProbability: 0.36},
				},
			},
		},
	}
}

func TestEvalConditionFleetScoped(t *testing.T) {
	snap := testSnapshot()

	tests := []struct {
		cond    string
		fires   bool
		wantVal float64
	}{
		{"worthy_count > 10", true, 12},
		{"worthy_count > 12", false, 0},
		{"total_repair_cost >= 2500000", true, 2500000},
		{"total_opportunity_cost > 100000", false, 0},
		{"avg_transport_cost > 400", true, 450},
		{"asset_count == 2", true, 2},
		{"asset_count < 2", false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.cond, func(t *testing.T) {
			got := evalCondition(tt.cond, snap)
			if tt.fires {
				if len(got) != 1 {
					t.Fatalf("expected 1 match, got %d", len(got))
				}
				if got[0].subjectID != "fleet" {
					t.Errorf("subjectID = %q, want fleet", got[0].subjectID)
				}
				if got[0].value != tt.wantVal {
					t.Errorf("value = %v, want %v", got[0].value, tt.wantVal)
				}
			} else if len(got) != 0 {
				t.Errorf("expected no matches, got %d", len(got))
			}
		})
	}
}

func TestEvalConditionAssetScoped(t *testing.T) {
	snap := testSnapshot()

	tests := []struct {
		cond string
		want []string
	}{
		{"priority_score >= 0.8", []string{"WT-01"}},
		{"priority_score > 0.1", []string{"WT-01", "WT-02"}},
		{"repair_cost > 500000", []string{"WT-01"}},
		{"opportunity_cost > 1000000", nil},
		{"min_health_score < 0.2", []string{"WT-01"}},
		{"max_failure_probability > 0.9", []string{"WT-01"}},
	}

	for _, tt := range tests {
		t.Run(tt.cond, func(t *testing.T) {
			got := evalCondition(tt.cond, snap)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d matches, want %d", len(got), len(tt.want))
			}
			for i, m := range got {
				if m.subjectID != tt.want[i] {
					t.Errorf("match %d = %q, want %q", i, m.subjectID, tt.want[i])
				}
			}
		})
	}
}

func TestEvalConditionMalformed(t *testing.T) {
	snap := testSnapshot()

	for _, cond := range []string{
		"",
		"worthy_count >",
		"worthy_count > ten",
		"unknown_field > 1",
		"priority_score ~= 0.5",
	} {
		if got := evalCondition(cond, snap); got != nil {
			t.Errorf("evalCondition(%q) = %v, want nil", cond, got)
		}
	}
}
