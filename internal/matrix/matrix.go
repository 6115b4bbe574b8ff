// Package matrix precomputes pairwise travel distances and transport costs
// over the asset fleet.
//
// Distance is the planar Euclidean norm between coordinate pairs — a known
// approximation, not geodesic. The build is O(N²) and is always done from
// scratch: the matrix is rebuilt, never patched, whenever the asset set or
// the distance-to-cost rate changes.
package matrix

import (
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/windfleet/windfleet/internal/fleet"
)

// Matrix holds the symmetric pairwise distance and transport-cost tables
// for a fixed asset ordering. The diagonal is zero.
type Matrix struct {
	ids   []string
	index map[string]int
	dist  *mat.SymDense
	cost  *mat.SymDense
	rate  float64
}

// Build computes the pairwise tables for assets at the given transport rate
// (currency per distance unit). The asset order is preserved; indices into
// the matrix match indices into the input slice.
func Build(assets []*fleet.Asset, costPerDistanceUnit float64) *Matrix {
	n := len(assets)
	m := &Matrix{
		ids:   make([]string, n),
		index: make(map[string]int, n),
		rate:  costPerDistanceUnit,
	}
	if n > 0 {
		m.dist = mat.NewSymDense(n, nil)
		m.cost = mat.NewSymDense(n, nil)
	}

	for i, a := range assets {
		m.ids[i] = a.ID
		m.index[a.ID] = i
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := math.Hypot(
				assets[i].Latitude-assets[j].Latitude,
				assets[i].Longitude-assets[j].Longitude,
			)
			m.dist.SetSym(i, j, d)
			m.cost.SetSym(i, j, d*costPerDistanceUnit)
		}
	}
	return m
}

// Len returns the number of assets covered.
func (m *Matrix) Len() int { return len(m.ids) }

// Rate returns the cost-per-distance-unit the matrix was built with.
func (m *Matrix) Rate() float64 { return m.rate }

// Distance returns the Euclidean distance between assets i and j.
func (m *Matrix) Distance(i, j int) float64 { return m.dist.At(i, j) }

// TransportCost returns the travel cost between assets i and j.
func (m *Matrix) TransportCost(i, j int) float64 { return m.cost.At(i, j) }

// IndexOf returns the matrix index for the given asset ID, or -1.
func (m *Matrix) IndexOf(id string) int {
	if i, ok := m.index[id]; ok {
		return i
	}
	return -1
}

// MeanTransportCost returns the mean off-diagonal transport cost — the
// session's default estimate of what reaching one more asset costs.
// Zero for fleets of fewer than two assets.
func (m *Matrix) MeanTransportCost() float64 {
	n := m.Len()
	if n < 2 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			sum += m.cost.At(i, j)
		}
	}
	pairs := float64(n*(n-1)) / 2
	return sum / pairs
}
