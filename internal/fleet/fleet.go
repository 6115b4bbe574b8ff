package fleet

import (
	"fmt"
	"math"
	"time"

	"github.com/windfleet/windfleet/internal/costs"
	"github.com/windfleet/windfleet/internal/health"
	"github.com/windfleet/windfleet/pkg/types"
)

// IntegrityError reports a component or asset record with a missing or
// out-of-range field. The affected record fell back to a documented default
// and stayed in the fleet; the error exists so callers can surface it.
type IntegrityError struct {
	AssetID string
	Serial  string // empty for asset-level problems
	Field   string
	Reason  string
}

func (e *IntegrityError) Error() string {
	if e.Serial == "" {
		return fmt.Sprintf("asset %s: %s: %s", e.AssetID, e.Field, e.Reason)
	}
	return fmt.Sprintf("asset %s component %s: %s: %s", e.AssetID, e.Serial, e.Field, e.Reason)
}

// Component is one wearable part owned by exactly one Asset.
// Derived fields are a pure function of the static fields, the evaluation
// date and the owner's power/price context; Recompute refreshes them.
type Component struct {
	Name            string
	SerialNumber    string
	LifetimeYears   float64
	InstallDate     time.Time
	ReplacementCost float64
	SalvageValue    float64
	Criticality     string
	PowerImpact     float64
	RepairHours     float64

	// Derived — valid as of the owner's last Recompute.
	RemainingDays      float64
	HealthScore        float64
	FailureProbability float64
	RepairCost         float64
	OpportunityCost    float64

	owner *Asset // non-owning back-reference, set by Attach
}

// Owner returns the asset this component is attached to, or nil.
func (c *Component) Owner() *Asset { return c.owner }

// Recompute refreshes the component's derived fields as of evalDate.
// It returns an IntegrityError when the install date is missing; the
// component then uses its full rated lifetime as the fallback.
func (c *Component) Recompute(evalDate time.Time) error {
	h, err := health.Evaluate(c.LifetimeYears, c.InstallDate, evalDate)

	c.RemainingDays = h.RemainingDays
	c.HealthScore = h.Score
	c.FailureProbability = h.FailureProbability
	c.RepairCost = costs.RepairCost(c.ReplacementCost, c.SalvageValue, c.LifetimeYears, h)

	if c.owner != nil {
		c.OpportunityCost = costs.OpportunityCost(
			c.owner.PowerRating, c.PowerImpact, c.RepairHours, c.owner.EnergyPrice, h)
	} else {
		c.OpportunityCost = 0
	}

	if err != nil {
		var assetID string
		if c.owner != nil {
			assetID = c.owner.ID
		}
		return &IntegrityError{
			AssetID: assetID,
			Serial:  c.SerialNumber,
			Field:   "installation_date",
			Reason:  "missing — assuming full rated lifetime",
		}
	}
	return nil
}

// Asset is one physical installation owning a set of Components.
type Asset struct {
	ID          string
	Latitude    float64
	Longitude   float64
	PowerRating float64
	EnergyPrice float64
	Cluster     string

	Components []*Component

	// Derived — valid as of the last Recompute / ComputePriority.
	TotalRepairCost      float64
	TotalOpportunityCost float64
	PriorityScore        float64
}

// Attach adds c to the asset and back-links it to its new owner.
// The asset's totals become stale; the next Recompute refreshes them.
func (a *Asset) Attach(c *Component) {
	c.owner = a
	a.Components = append(a.Components, c)
	a.TotalRepairCost = 0
	a.TotalOpportunityCost = 0
	a.PriorityScore = 0
}

// Recompute refreshes every owned component as of evalDate and then rolls
// the component costs up into the asset totals. Component-level integrity
// anomalies are collected and returned; they never abort the rollup.
func (a *Asset) Recompute(evalDate time.Time) []error {
	var errs []error
	var repair, opportunity float64

	for _, c := range a.Components {
		if err := c.Recompute(evalDate); err != nil {
			errs = append(errs, err)
		}
		repair += c.RepairCost
		opportunity += c.OpportunityCost
	}

	a.TotalRepairCost = repair
	a.TotalOpportunityCost = opportunity
	return errs
}

// ComputePriority sets and returns the asset's repair-priority score: the
// benefit/cost ratio of visiting it. Repair spend counts at half weight on
// the benefit side as a proxy for depreciation avoided, since part of it is
// recoverable via salvage.
func (a *Asset) ComputePriority(avgTransportCost float64) float64 {
	benefit := a.TotalOpportunityCost + 0.5*a.TotalRepairCost
	cost := a.TotalRepairCost + avgTransportCost

	if cost <= 0 {
		a.PriorityScore = 0
		return 0
	}
	a.PriorityScore = benefit / cost
	return a.PriorityScore
}

// MeetsThreshold reports whether the asset's current priority score clears
// the configured benefit-to-cost ratio.
func (a *Asset) MeetsThreshold(ratio float64) bool {
	return a.PriorityScore >= ratio
}

// OperationCost estimates the whole-day crew and vessel cost of repairing
// every component on this asset in one visit.
func (a *Asset) OperationCost(m costs.Model) float64 {
	var hours float64
	for _, c := range a.Components {
		hours += c.RepairHours
	}
	return m.OperationCost(hours)
}

// New builds an Asset from an ingested record, attaching all components.
// Out-of-range values are clamped to their documented defaults and reported
// as IntegrityErrors; a bad field never rejects the whole record.
func New(rec types.AssetRecord) (*Asset, []error) {
	a := &Asset{
		ID:          rec.ID,
		Latitude:    rec.Latitude,
		Longitude:   rec.Longitude,
		PowerRating: rec.PowerRating,
		EnergyPrice: rec.EnergyPrice,
		Cluster:     rec.Cluster,
	}

	var errs []error
	clamp := func(serial, field string, v *float64, lo, hi float64) {
		// hi < 0 is the sentinel for "no upper bound".
		switch {
		case math.IsNaN(*v) || math.IsInf(*v, 0):
			errs = append(errs, &IntegrityError{
				AssetID: rec.ID,
				Serial:  serial,
				Field:   field,
				Reason:  fmt.Sprintf("not a finite number (%v) — reset to %v", *v, lo),
			})
			*v = lo
		case *v < lo:
			errs = append(errs, &IntegrityError{
				AssetID: rec.ID,
				Serial:  serial,
				Field:   field,
				Reason:  fmt.Sprintf("out of range (%v) — clamped", *v),
			})
			*v = lo
		case hi >= 0 && *v > hi:
			errs = append(errs, &IntegrityError{
				AssetID: rec.ID,
				Serial:  serial,
				Field:   field,
				Reason:  fmt.Sprintf("out of range (%v) — clamped", *v),
			})
			*v = hi
		}
	}

	clamp("", "power_rating", &a.PowerRating, 0, -1)
	clamp("", "energy_price", &a.EnergyPrice, 0, -1)

	for _, cr := range rec.Components {
		c := &Component{
			Name:            cr.Name,
			SerialNumber:    cr.SerialNumber,
			LifetimeYears:   cr.LifetimeYears,
			InstallDate:     cr.InstallDate,
			ReplacementCost: cr.ReplacementCost,
			SalvageValue:    cr.SalvageValue,
			Criticality:     cr.Criticality,
			PowerImpact:     cr.PowerImpact,
			RepairHours:     cr.RepairHours,
		}
		clamp(c.SerialNumber, "replacement_cost", &c.ReplacementCost, 0, -1)
		clamp(c.SerialNumber, "salvage_value", &c.SalvageValue, 0, -1)
		clamp(c.SerialNumber, "power_impact", &c.PowerImpact, 0, 1)
		clamp(c.SerialNumber, "repair_hours", &c.RepairHours, 0, -1)
		a.Attach(c)
	}

	return a, errs
}
