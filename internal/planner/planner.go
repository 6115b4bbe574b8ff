// Package planner selects which assets are worth a maintenance visit and
// orders them into a route.
//
// The optimizer is a priority-weighted greedy heuristic, not an exact TSP
// solver: each step takes the best priority per unit of marginal travel cost
// from the current position. It does not guarantee a globally minimal-cost
// tour.
package planner

import (
	"github.com/windfleet/windfleet/internal/fleet"
	"github.com/windfleet/windfleet/internal/matrix"
)

// FilterWorthy returns the assets whose priority score meets or exceeds
// threshold, preserving input order. Scores must already be current; the
// filter itself never recomputes or mutates anything.
func FilterWorthy(assets []*fleet.Asset, threshold float64) []*fleet.Asset {
	worthy := make([]*fleet.Asset, 0, len(assets))
	for _, a := range assets {
		if a.MeetsThreshold(threshold) {
			worthy = append(worthy, a)
		}
	}
	return worthy
}

// OptimizeRoute orders worthy into a visiting sequence.
//
// The route starts at the globally highest-priority asset and repeatedly
// moves to the unvisited asset maximizing priority / max(transport cost
// from the current position, 1). Ties keep the earlier asset in input
// order. The result is a permutation of worthy; an empty input yields an
// empty route. O(K²) for K worthy assets.
func OptimizeRoute(worthy []*fleet.Asset, m *matrix.Matrix) []*fleet.Asset {
	if len(worthy) == 0 {
		return nil
	}

	start := 0
	for i, a := range worthy {
		if a.PriorityScore > worthy[start].PriorityScore {
			start = i
		}
	}

	route := make([]*fleet.Asset, 0, len(worthy))
	visited := make([]bool, len(worthy))

	current := start
	route = append(route, worthy[start])
	visited[start] = true

	for len(route) < len(worthy) {
		next := -1
		var bestValue float64

		for i, a := range worthy {
			if visited[i] {
				continue
			}
			tc := m.TransportCost(m.IndexOf(worthy[current].ID), m.IndexOf(a.ID))
			if tc < 1 {
				tc = 1
			}
			value := a.PriorityScore / tc
			if next == -1 || value > bestValue {
				next = i
				bestValue = value
			}
		}

		route = append(route, worthy[next])
		visited[next] = true
		current = next
	}
	return route
}
