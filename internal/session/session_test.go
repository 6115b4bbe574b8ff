package session

import (
	"errors"
	"testing"
	"time"

	"github.com/windfleet/windfleet/internal/costs"
	"github.com/windfleet/windfleet/internal/fleet"
)

var evalDate = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

// fixedClock returns a func() time.Time that always returns t.
func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func testModel() costs.Model {
	return costs.Model{CostPerDistanceUnit: 5.0, CrewCostPerDay: 2000, VesselCostPerDay: 3000}
}

// wornAsset returns an asset at (lat, lon) with one half-worn 20-year blade.
func wornAsset(id string, lat, lon float64) *fleet.Asset {
	a := &fleet.Asset{ID: id, Latitude: lat, Longitude: lon, PowerRating: 3000, EnergyPrice: 0.08}
	a.Attach(&fleet.Component{
		Name:            "Blade",
		SerialNumber:    id + "-BL",
		LifetimeYears:   20,
		InstallDate:     evalDate.AddDate(0, 0, -3650),
		ReplacementCost: 200000,
		SalvageValue:    20000,
		PowerImpact:     0.33,
		RepairHours:     36,
	})
	return a
}

// freshAsset returns an asset with one brand-new component: zero repair
// cost, so its priority score is zero.
func freshAsset(id string, lat, lon float64) *fleet.Asset {
	a := &fleet.Asset{ID: id, Latitude: lat, Longitude: lon, PowerRating: 3000, EnergyPrice: 0.08}
	a.Attach(&fleet.Component{
		Name:            "Blade",
		SerialNumber:    id + "-BL",
		LifetimeYears:   20,
		InstallDate:     evalDate,
		ReplacementCost: 200000,
		SalvageValue:    20000,
		PowerImpact:     0.33,
		RepairHours:     36,
	})
	return a
}

func newSession(t *testing.T, assets ...*fleet.Asset) *Session {
	t.Helper()
	s, err := New(testModel(), 0.4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	s.now = fixedClock(evalDate)
	s.SetAssets(assets)
	return s
}

func TestNew_RejectsInvalidTunables(t *testing.T) {
	tests := []struct {
		name      string
		model     costs.Model
		threshold float64
	}{
		{"zero threshold", testModel(), 0},
		{"negative threshold", testModel(), -1},
		{"zero cost rate", costs.Model{}, 0.5},
		{"negative crew rate", costs.Model{CostPerDistanceUnit: 5, CrewCostPerDay: -1}, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.model, tt.threshold); err == nil {
				t.Error("New: expected error, got nil")
			}
		})
	}
}

func TestStateMachine_OrderEnforced(t *testing.T) {
	s := newSession(t, wornAsset("a", 0, 0))

	if _, err := s.FilterWorthy(); !errors.Is(err, ErrNotScored) {
		t.Errorf("FilterWorthy before scoring: got %v, want ErrNotScored", err)
	}
	if _, err := s.OptimizeRoute(); !errors.Is(err, ErrNotFiltered) {
		t.Errorf("OptimizeRoute before filtering: got %v, want ErrNotFiltered", err)
	}
	if _, err := s.Summary(); !errors.Is(err, ErrNotScored) {
		t.Errorf("Summary before scoring: got %v, want ErrNotScored", err)
	}

	s.RecomputeAll()
	if err := s.ScoreAll(0); err != nil {
		t.Fatalf("ScoreAll: %v", err)
	}
	if s.State() != StateScored {
		t.Errorf("state after ScoreAll: got %v, want scored", s.State())
	}
	if _, err := s.FilterWorthy(); err != nil {
		t.Fatalf("FilterWorthy: %v", err)
	}
	if s.State() != StateFiltered {
		t.Errorf("state after FilterWorthy: got %v, want filtered", s.State())
	}
	if _, err := s.OptimizeRoute(); err != nil {
		t.Fatalf("OptimizeRoute: %v", err)
	}
	if s.State() != StateRouted {
		t.Errorf("state after OptimizeRoute: got %v, want routed", s.State())
	}
}

func TestConfigChange_ResetsToUnscored(t *testing.T) {
	s := newSession(t, wornAsset("a", 0, 0), wornAsset("b", 3, 4))

	score := func() {
		t.Helper()
		s.RecomputeAll()
		if err := s.ScoreAll(0); err != nil {
			t.Fatalf("ScoreAll: %v", err)
		}
	}

	resets := []struct {
		name  string
		apply func()
	}{
		{"threshold", func() { _ = s.SetThreshold(0.9) }},
		{"cost rate", func() { _ = s.SetCostRate(7.5) }},
		{"prediction date", func() { _ = s.SetPredictionDate(evalDate.AddDate(1, 0, 0)) }},
		{"clear prediction date", s.ClearPredictionDate},
		{"operation rates", func() { _ = s.SetOperationRates(1000, 1000) }},
		{"asset set", func() { s.SetAssets([]*fleet.Asset{wornAsset("c", 1, 1)}) }},
	}
	for _, tt := range resets {
		score()
		tt.apply()
		if s.State() != StateUnscored {
			t.Errorf("%s change: state %v, want unscored", tt.name, s.State())
		}
		if _, err := s.FilterWorthy(); !errors.Is(err, ErrNotScored) {
			t.Errorf("%s change: stale filter served (err %v)", tt.name, err)
		}
	}
}

func TestSetters_RejectInvalidAndKeepPrior(t *testing.T) {
	s := newSession(t, wornAsset("a", 0, 0))

	if err := s.SetThreshold(-0.1); err == nil {
		t.Error("SetThreshold(-0.1): expected error")
	}
	if s.Threshold() != 0.4 {
		t.Errorf("threshold mutated by rejected value: %v", s.Threshold())
	}
	if err := s.SetCostRate(0); err == nil {
		t.Error("SetCostRate(0): expected error")
	}
	if err := s.SetPredictionDate(time.Time{}); err == nil {
		t.Error("SetPredictionDate(zero): expected error")
	}
	if err := s.SetOperationRates(-1, 0); err == nil {
		t.Error("SetOperationRates(-1, 0): expected error")
	}
}

func TestEvaluate_FullPass(t *testing.T) {
	s := newSession(t,
		wornAsset("a", 0, 0),
		wornAsset("b", 3, 4),
		freshAsset("c", 10, 0),
	)

	snap, err := s.Evaluate()
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}

	if snap.RunID == "" {
		t.Error("RunID not set")
	}
	if len(snap.Assets) != 3 {
		t.Fatalf("Assets: got %d, want 3", len(snap.Assets))
	}
	// Worn assets have score ≈ 0.5 (> 0.4 threshold); the fresh one scores 0.
	if snap.WorthyCount != 2 {
		t.Errorf("WorthyCount: got %d, want 2", snap.WorthyCount)
	}
	if len(snap.Route) != 2 {
		t.Fatalf("Route: got %d legs, want 2", len(snap.Route))
	}
	if snap.Route[0].Distance != 0 {
		t.Errorf("first leg distance: got %v, want 0", snap.Route[0].Distance)
	}
	// a → b distance is 5, transport cost 25 at rate 5.
	if snap.Route[1].Distance != 5 || snap.Route[1].TransportCost != 25 {
		t.Errorf("second leg: got distance %v cost %v, want 5 and 25",
			snap.Route[1].Distance, snap.Route[1].TransportCost)
	}

	fresh := snap.Asset("c")
	if fresh == nil || fresh.Worthy {
		t.Error("fresh asset should be present and not worthy")
	}
	if fresh.PriorityScore != 0 {
		t.Errorf("fresh asset priority: got %v, want 0", fresh.PriorityScore)
	}

	// Per-asset operation cost: 36 h → 2 days at 5000/day.
	if got := snap.Assets[0].OperationCost; got != 10000 {
		t.Errorf("OperationCost: got %v, want 10000", got)
	}
}

func TestEvaluate_EmptyFleet(t *testing.T) {
	s := newSession(t)

	snap, err := s.Evaluate()
	if err != nil {
		t.Fatalf("Evaluate on empty fleet: %v", err)
	}
	if len(snap.Assets) != 0 || len(snap.Route) != 0 || snap.WorthyCount != 0 {
		t.Errorf("empty fleet snapshot not empty: %+v", snap)
	}
}

func TestEvaluate_NoWorthyAssets_EmptyRoute(t *testing.T) {
	s := newSession(t, freshAsset("a", 0, 0), freshAsset("b", 3, 4))

	snap, err := s.Evaluate()
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if snap.WorthyCount != 0 || len(snap.Route) != 0 {
		t.Errorf("expected no worthy assets and empty route, got %d / %d legs",
			snap.WorthyCount, len(snap.Route))
	}
}

func TestEvaluate_AnomaliesSurfaced(t *testing.T) {
	bad := wornAsset("a", 0, 0)
	bad.Attach(&fleet.Component{Name: "Shaft", SerialNumber: "a-SH", LifetimeYears: 25})

	s := newSession(t, bad)
	snap, err := s.Evaluate()
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if len(snap.Anomalies) != 1 {
		t.Fatalf("Anomalies: got %d, want 1 (%v)", len(snap.Anomalies), snap.Anomalies)
	}
}

func TestPredictionDate_AdvancesWear(t *testing.T) {
	s := newSession(t, wornAsset("a", 0, 0))

	s.RecomputeAll()
	if err := s.ScoreAll(0); err != nil {
		t.Fatalf("ScoreAll: %v", err)
	}
	now := s.assets[0].Components[0].HealthScore

	// Five years further on, the same blade is more worn.
	if err := s.SetPredictionDate(evalDate.AddDate(5, 0, 0)); err != nil {
		t.Fatalf("SetPredictionDate: %v", err)
	}
	s.RecomputeAll()
	if err := s.ScoreAll(0); err != nil {
		t.Fatalf("ScoreAll: %v", err)
	}
	future := s.assets[0].Components[0].HealthScore

	if future >= now {
		t.Errorf("health did not degrade under future prediction date: now %v future %v", now, future)
	}
}

func TestSummary(t *testing.T) {
	s := newSession(t, wornAsset("a", 0, 0), wornAsset("b", 3, 4), freshAsset("c", 10, 0))
	s.RecomputeAll()
	if err := s.ScoreAll(0); err != nil {
		t.Fatalf("ScoreAll: %v", err)
	}

	sum, err := s.Summary()
	if err != nil {
		t.Fatalf("Summary: %v", err)
	}
	if sum.TotalAssets != 3 || sum.WorthyAssets != 2 {
		t.Errorf("counts: got %d/%d, want 3/2", sum.TotalAssets, sum.WorthyAssets)
	}
	if sum.Threshold != 0.4 {
		t.Errorf("Threshold: got %v, want 0.4", sum.Threshold)
	}
	if sum.TotalRepairCost <= 0 || sum.TotalOpportunityCost <= 0 {
		t.Errorf("totals not aggregated: %+v", sum)
	}
}

func TestScoreAll_ExternalOverride(t *testing.T) {
	s := newSession(t, wornAsset("a", 0, 0), wornAsset("b", 3, 4))
	s.RecomputeAll()

	if err := s.ScoreAll(-5); err == nil {
		t.Error("ScoreAll(-5): expected error")
	}
	if err := s.ScoreAll(1000); err != nil {
		t.Fatalf("ScoreAll(1000): %v", err)
	}

	a := s.assets[0]
	want := (a.TotalOpportunityCost + 0.5*a.TotalRepairCost) / (a.TotalRepairCost + 1000)
	if a.PriorityScore != want {
		t.Errorf("PriorityScore with override: got %v, want %v", a.PriorityScore, want)
	}
}
