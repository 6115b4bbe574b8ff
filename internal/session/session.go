package session

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/windfleet/windfleet/internal/costs"
	"github.com/windfleet/windfleet/internal/fleet"
	"github.com/windfleet/windfleet/internal/matrix"
	"github.com/windfleet/windfleet/internal/planner"
	"github.com/windfleet/windfleet/pkg/types"
)

// State is the session's position in the evaluation pipeline.
type State int

const (
	StateUnscored State = iota
	StateScored
	StateFiltered
	StateRouted
)

func (s State) String() string {
	switch s {
	case StateUnscored:
		return "unscored"
	case StateScored:
		return "scored"
	case StateFiltered:
		return "filtered"
	case StateRouted:
		return "routed"
	default:
		return "unknown"
	}
}

// Errors returned when a query outruns the state machine.
var (
	ErrNotScored   = errors.New("session: scores are stale — run ScoreAll first")
	ErrNotFiltered = errors.New("session: worthy set is stale — run FilterWorthy first")
)

// Summary is the aggregate view exposed to reporting collaborators.
type Summary struct {
	TotalAssets          int     `json:"total_assets"`
	WorthyAssets         int     `json:"worthy_assets"`
	TotalRepairCost      float64 `json:"total_repair_cost"`
	TotalOpportunityCost float64 `json:"total_opportunity_cost"`
	Threshold            float64 `json:"threshold"`
}

// Session holds process-scoped evaluation state for one analysis run.
type Session struct {
	assets []*fleet.Asset

	model          costs.Model
	threshold      float64
	predictionDate time.Time // zero means "evaluate at now"

	m                *matrix.Matrix
	avgTransportCost float64
	worthy           []*fleet.Asset
	route            []*fleet.Asset
	anomalies        []string

	state State
	now   func() time.Time // injectable for deterministic tests
}

// New creates a Session with the given cost model and repair threshold.
// The threshold has no canonical default — it must be supplied, and it must
// be positive, as must the model's transport rate.
func New(model costs.Model, threshold float64) (*Session, error) {
	if threshold <= 0 {
		return nil, fmt.Errorf("session: repair threshold must be positive, got %v", threshold)
	}
	if model.CostPerDistanceUnit <= 0 {
		return nil, fmt.Errorf("session: cost per distance unit must be positive, got %v", model.CostPerDistanceUnit)
	}
	if model.CrewCostPerDay < 0 || model.VesselCostPerDay < 0 {
		return nil, errors.New("session: crew and vessel day rates must be non-negative")
	}
	return &Session{
		model:     model,
		threshold: threshold,
		now:       time.Now,
	}, nil
}

// State returns the session's current pipeline state.
func (s *Session) State() State { return s.state }

// Threshold returns the repair threshold in effect.
func (s *Session) Threshold() float64 { return s.threshold }

// Assets returns the asset collection in input order.
func (s *Session) Assets() []*fleet.Asset { return s.assets }

// EffectiveDate is the date wear is evaluated at: the prediction date if one
// is set, otherwise now.
func (s *Session) EffectiveDate() time.Time {
	if !s.predictionDate.IsZero() {
		return s.predictionDate
	}
	return s.now()
}

// SetAssets replaces the asset collection and resets the session to Unscored.
// The cost matrix is dropped; it must be rebuilt before the next scoring pass.
func (s *Session) SetAssets(assets []*fleet.Asset) {
	s.assets = assets
	s.m = nil
	s.reset()
}

// SetPredictionDate overrides "now" to simulate future (or past) wear.
// A zero date is rejected; use ClearPredictionDate to return to the clock.
func (s *Session) SetPredictionDate(t time.Time) error {
	if t.IsZero() {
		return errors.New("session: prediction date must not be zero")
	}
	s.predictionDate = t
	s.reset()
	return nil
}

// ClearPredictionDate returns the session to evaluating at the current time.
func (s *Session) ClearPredictionDate() {
	s.predictionDate = time.Time{}
	s.reset()
}

// SetThreshold replaces the repair threshold. Non-positive values are
// rejected and the prior threshold stays in effect.
func (s *Session) SetThreshold(ratio float64) error {
	if ratio <= 0 {
		return fmt.Errorf("session: repair threshold must be positive, got %v", ratio)
	}
	s.threshold = ratio
	s.reset()
	return nil
}

// SetCostRate replaces the cost-per-distance-unit rate. Non-positive rates
// are rejected and the prior rate stays in effect. The cost matrix is
// dropped since every cell depends on the rate.
func (s *Session) SetCostRate(rate float64) error {
	if rate <= 0 {
		return fmt.Errorf("session: cost per distance unit must be positive, got %v", rate)
	}
	s.model.CostPerDistanceUnit = rate
	s.m = nil
	s.reset()
	return nil
}

// SetOperationRates replaces the crew and vessel day rates.
func (s *Session) SetOperationRates(crew, vessel float64) error {
	if crew < 0 || vessel < 0 {
		return errors.New("session: crew and vessel day rates must be non-negative")
	}
	s.model.CrewCostPerDay = crew
	s.model.VesselCostPerDay = vessel
	s.reset()
	return nil
}

// reset drops all downstream results and returns the machine to Unscored.
func (s *Session) reset() {
	s.state = StateUnscored
	s.worthy = nil
	s.route = nil
	s.anomalies = nil
	s.avgTransportCost = 0
}

// RecomputeAll refreshes every component and asset as of the effective
// date. Data-integrity anomalies are logged, remembered for the next
// snapshot and returned; a bad component never stops the rest of the fleet.
func (s *Session) RecomputeAll() []error {
	date := s.EffectiveDate()
	s.reset()

	var errs []error
	for _, a := range s.assets {
		for _, err := range a.Recompute(date) {
			errs = append(errs, err)
			s.anomalies = append(s.anomalies, err.Error())
			slog.Warn("session: data integrity anomaly", "err", err)
		}
	}
	return errs
}

// RebuildCostMatrix recomputes the pairwise distance and transport-cost
// tables with the current rate. Always a full O(N²) rebuild.
func (s *Session) RebuildCostMatrix() {
	s.m = matrix.Build(s.assets, s.model.CostPerDistanceUnit)
}

// Matrix returns the current cost matrix, or nil if not built.
func (s *Session) Matrix() *matrix.Matrix { return s.m }

// ScoreAll computes every asset's priority score and moves the session to
// Scored. avgTransportCost estimates the travel cost of reaching one more
// asset; pass 0 to derive it from the cost matrix (mean pairwise transport
// cost), or a positive override to supply an external estimate.
func (s *Session) ScoreAll(avgTransportCost float64) error {
	if avgTransportCost < 0 {
		return fmt.Errorf("session: avg transport cost must be non-negative, got %v", avgTransportCost)
	}
	if s.m == nil {
		s.RebuildCostMatrix()
	}

	avg := avgTransportCost
	if avg == 0 {
		avg = s.m.MeanTransportCost()
	}
	for _, a := range s.assets {
		a.ComputePriority(avg)
	}

	s.avgTransportCost = avg
	s.state = StateScored
	s.worthy = nil
	s.route = nil
	return nil
}

// FilterWorthy selects the assets whose priority score clears the threshold
// and moves the session to Filtered. Requires a current scoring pass.
func (s *Session) FilterWorthy() ([]*fleet.Asset, error) {
	if s.state < StateScored {
		return nil, ErrNotScored
	}
	s.worthy = planner.FilterWorthy(s.assets, s.threshold)
	s.route = nil
	s.state = StateFiltered
	return s.worthy, nil
}

// OptimizeRoute orders the worthy assets into a visiting sequence and moves
// the session to Routed. Requires a current filter pass. An empty worthy
// set yields an empty route, not an error.
func (s *Session) OptimizeRoute() ([]*fleet.Asset, error) {
	if s.state < StateFiltered {
		return nil, ErrNotFiltered
	}
	s.route = planner.OptimizeRoute(s.worthy, s.m)
	s.state = StateRouted
	return s.route, nil
}

// Summary returns aggregate counts and totals for reporting. Requires at
// least a scoring pass so the totals are never stale.
func (s *Session) Summary() (Summary, error) {
	if s.state < StateScored {
		return Summary{}, ErrNotScored
	}

	out := Summary{
		TotalAssets: len(s.assets),
		Threshold:   s.threshold,
	}
	for _, a := range s.assets {
		out.TotalRepairCost += a.TotalRepairCost
		out.TotalOpportunityCost += a.TotalOpportunityCost
		if a.MeetsThreshold(s.threshold) {
			out.WorthyAssets++
		}
	}
	return out, nil
}

// Evaluate runs the full pipeline — recompute, matrix rebuild, scoring,
// filtering, routing — and returns an immutable snapshot of the results.
// This is the one entry point the serving loop uses.
func (s *Session) Evaluate() (*types.FleetSnapshot, error) {
	date := s.EffectiveDate()
	s.RecomputeAll()
	s.RebuildCostMatrix()
	if err := s.ScoreAll(0); err != nil {
		return nil, err
	}
	if _, err := s.FilterWorthy(); err != nil {
		return nil, err
	}
	if _, err := s.OptimizeRoute(); err != nil {
		return nil, err
	}
	return s.snapshot(date), nil
}

// snapshot freezes the session's current results into a FleetSnapshot.
func (s *Session) snapshot(date time.Time) *types.FleetSnapshot {
	snap := &types.FleetSnapshot{
		RunID:            uuid.NewString(),
		EvaluatedAt:      s.now(),
		PredictionDate:   date,
		RepairThreshold:  s.threshold,
		CostPerDistance:  s.model.CostPerDistanceUnit,
		AvgTransportCost: s.avgTransportCost,
		WorthyCount:      len(s.worthy),
		Anomalies:        append([]string(nil), s.anomalies...),
	}

	worthy := make(map[string]bool, len(s.worthy))
	for _, a := range s.worthy {
		worthy[a.ID] = true
	}

	snap.Assets = make([]types.AssetSnapshot, 0, len(s.assets))
	for _, a := range s.assets {
		as := types.AssetSnapshot{
			ID:                   a.ID,
			Latitude:             a.Latitude,
			Longitude:            a.Longitude,
			Cluster:              a.Cluster,
			PowerRating:          a.PowerRating,
			EnergyPrice:          a.EnergyPrice,
			TotalRepairCost:      a.TotalRepairCost,
			TotalOpportunityCost: a.TotalOpportunityCost,
			PriorityScore:        a.PriorityScore,
			Worthy:               worthy[a.ID],
			OperationCost:        a.OperationCost(s.model),
		}
		for _, c := range a.Components {
			as.Components = append(as.Components, types.ComponentSnapshot{
				SerialNumber:       c.SerialNumber,
				Name:               c.Name,
				Criticality:        c.Criticality,
				RemainingDays:      c.RemainingDays,
				HealthScore:        c.HealthScore,
				FailureProbability: c.FailureProbability,
				RepairCost:         c.RepairCost,
				OpportunityCost:    c.OpportunityCost,
			})
		}
		snap.TotalRepairCost += a.TotalRepairCost
		snap.TotalOpportunityCost += a.TotalOpportunityCost
		snap.Assets = append(snap.Assets, as)
	}

	snap.Route = make([]types.RouteLeg, 0, len(s.route))
	prev := -1
	for _, a := range s.route {
		idx := s.m.IndexOf(a.ID)
		leg := types.RouteLeg{AssetID: a.ID, PriorityScore: a.PriorityScore}
		if prev >= 0 {
			leg.Distance = s.m.Distance(prev, idx)
			leg.TransportCost = s.m.TransportCost(prev, idx)
		}
		snap.Route = append(snap.Route, leg)
		prev = idx
	}
	return snap
}
