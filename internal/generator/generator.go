// Package generator synthesizes demo fleets in the loader's CSV layout.
//
// Every asset gets the canonical turbine component set — three blades, a
// motor, a shaft and a casing — installed on one random date within the
// last five years. Output is deterministic for a fixed seed.
package generator

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"time"

	"github.com/windfleet/windfleet/internal/loader"
	"github.com/windfleet/windfleet/pkg/types"
)

// template describes one component slot in the canonical set.
type template struct {
	name            string
	serialPrefix    string
	count           int
	lifetimeYears   float64
	replacementCost float64
	salvageValue    float64
	criticality     string
	powerImpact     float64
	repairHours     float64
}

var templates = []template{
	{"Blade", "BL", 3, 20, 200000, 20000, types.CriticalityImportant, 0.33, 36},
	{"Motor", "MT", 1, 15, 150000, 15000, types.CriticalityCritical, 1.0, 48},
	{"Shaft", "SH", 1, 25, 80000, 8000, types.CriticalityCritical, 1.0, 24},
	{"Casing", "CS", 1, 30, 50000, 5000, types.CriticalityRoutine, 0.1, 12},
}

// Options controls fleet synthesis.
type Options struct {
	// N is the number of assets to generate.
	N int

	// Seed drives the random source; a fixed seed reproduces the fleet.
	Seed int64

	// Extent is the side length of the square coordinate plane assets are
	// scattered over. Defaults to 100.
	Extent float64

	// Now anchors install dates (within five years before Now).
	// Defaults to the current time.
	Now time.Time
}

// Generate synthesizes opts.N asset records.
func Generate(opts Options) []types.AssetRecord {
	if opts.Extent <= 0 {
		opts.Extent = 100
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	rng := rand.New(rand.NewSource(opts.Seed))

	recs := make([]types.AssetRecord, 0, opts.N)
	for i := 0; i < opts.N; i++ {
		lat := rng.Float64() * opts.Extent
		lon := rng.Float64() * opts.Extent
		installed := opts.Now.AddDate(0, 0, -rng.Intn(5*365+1))
		installed = time.Date(installed.Year(), installed.Month(), installed.Day(), 0, 0, 0, 0, time.UTC)

		rec := types.AssetRecord{
			ID:          fmt.Sprintf("WT-%03d", i+1),
			Latitude:    lat,
			Longitude:   lon,
			PowerRating: 2000 + rng.Float64()*3000,
			EnergyPrice: 0.05 + rng.Float64()*0.07,
			Cluster:     clusterOf(lat, lon, opts.Extent),
		}
		for _, tpl := range templates {
			for n := 0; n < tpl.count; n++ {
				serial := fmt.Sprintf("%s%d", tpl.serialPrefix, i+1)
				if tpl.count > 1 {
					serial += string(rune('A' + n))
				}
				rec.Components = append(rec.Components, types.ComponentRecord{
					Name:            tpl.name,
					SerialNumber:    serial,
					LifetimeYears:   tpl.lifetimeYears,
					InstallDate:     installed,
					ReplacementCost: tpl.replacementCost,
					SalvageValue:    tpl.salvageValue,
					Criticality:     tpl.criticality,
					PowerImpact:     tpl.powerImpact,
					RepairHours:     tpl.repairHours,
				})
			}
		}
		recs = append(recs, rec)
	}
	return recs
}

// clusterOf labels an asset by the quadrant of the plane it falls in.
func clusterOf(lat, lon, extent float64) string {
	half := extent / 2
	switch {
	case lat < half && lon < half:
		return "southwest"
	case lat < half:
		return "southeast"
	case lon < half:
		return "northwest"
	default:
		return "northeast"
	}
}

// CSVWriter streams asset records in the loader's column layout.
type CSVWriter struct {
	cw *csv.Writer
}

// NewCSVWriter wraps w and writes the header row.
func NewCSVWriter(w io.Writer) (*CSVWriter, error) {
	cw := csv.NewWriter(w)
	if err := cw.Write(loader.Header); err != nil {
		return nil, fmt.Errorf("generator: write header: %w", err)
	}
	return &CSVWriter{cw: cw}, nil
}

// WriteAsset appends one row per component of rec.
func (w *CSVWriter) WriteAsset(rec types.AssetRecord) error {
	for _, c := range rec.Components {
		row := []string{
			rec.ID,
			formatFloat(rec.Latitude),
			formatFloat(rec.Longitude),
			formatFloat(rec.PowerRating),
			formatFloat(rec.EnergyPrice),
			rec.Cluster,
			c.Name,
			formatFloat(c.LifetimeYears),
			c.SerialNumber,
			c.InstallDate.Format("2006-01-02"),
			formatFloat(c.ReplacementCost),
			formatFloat(c.SalvageValue),
			c.Criticality,
			formatFloat(c.PowerImpact),
			formatFloat(c.RepairHours),
		}
		if err := w.cw.Write(row); err != nil {
			return fmt.Errorf("generator: write asset %s: %w", rec.ID, err)
		}
	}
	return nil
}

// Flush writes any buffered rows to the underlying writer.
func (w *CSVWriter) Flush() error {
	w.cw.Flush()
	return w.cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
