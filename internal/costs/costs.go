// Package costs translates component wear and asset economics into money.
//
// All functions are pure; the tunable rates live in an explicit Model value
// rather than package-level state so a session can carry its own calibration.
package costs

import (
	"math"

	"github.com/windfleet/windfleet/internal/health"
)

// DefaultCostPerDistanceUnit is the transport cost rate applied when the
// config file does not override it, in currency units per distance unit.
const DefaultCostPerDistanceUnit = 5.0

// Model holds the tunable cost rates for one evaluation session.
type Model struct {
	// CostPerDistanceUnit converts travel distance to transport cost.
	CostPerDistanceUnit float64

	// CrewCostPerDay and VesselCostPerDay are charged in whole-day
	// increments for on-site work; partial days round up.
	CrewCostPerDay   float64
	VesselCostPerDay float64
}

// DefaultModel returns a Model with the default transport rate and zero
// crew/vessel rates (those are site-specific and come from config).
func DefaultModel() Model {
	return Model{CostPerDistanceUnit: DefaultCostPerDistanceUnit}
}

// TransportCost is the cost of travelling the given distance.
func (m Model) TransportCost(distance float64) float64 {
	return distance * m.CostPerDistanceUnit
}

// OperationCost is the crew plus vessel cost of a repair lasting repairHours,
// charged in whole-day increments.
func (m Model) OperationCost(repairHours float64) float64 {
	if repairHours <= 0 {
		return 0
	}
	days := math.Ceil(repairHours / 24)
	return (m.CrewCostPerDay + m.VesselCostPerDay) * days
}

// RepairCost is the expected repair spend for a component given its health.
//
// The first term is expected-value replacement spend; the second is the
// straight-line depreciation loss not yet recoverable via salvage. A
// component with no rated lifetime costs its full replacement value.
func RepairCost(replacementCost, salvageValue, lifetimeYears float64, h health.Result) float64 {
	if lifetimeYears*health.DaysPerYear <= 0 {
		return replacementCost
	}
	return replacementCost*h.FailureProbability +
		(replacementCost-salvageValue)*(1-h.Score)
}

// OpportunityCost is the expected lost revenue from a component's failure
// risk: power lost × expected downtime × probability × energy price.
// powerRating and energyPrice come from the owning asset's context; callers
// with no owning asset pass zeroes and get zero back.
func OpportunityCost(powerRating, powerImpact, repairHours, energyPrice float64, h health.Result) float64 {
	if h.FailureProbability <= 0 {
		return 0
	}
	return powerRating * powerImpact * repairHours * h.FailureProbability * energyPrice
}
