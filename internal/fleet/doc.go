// Package fleet holds the asset/component data model and the per-asset
// cost aggregation.
//
// Ownership is strictly Asset → Components: every component belongs to
// exactly one asset and carries a non-owning back-reference for power/price
// context. Derived fields (health, costs, totals, priority score) are
// recomputed in full by Recompute; they are never mutated piecemeal.
package fleet
