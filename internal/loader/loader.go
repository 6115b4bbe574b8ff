// Package loader ingests fleet CSV files into the asset data model.
//
// The layout is one row per component, with the owning asset's fields
// repeated on every row; all rows sharing an asset_id form one asset, in
// first-appearance order, whether or not they are adjacent in the file.
// A malformed row is reported with its line number and skipped — one bad
// record never rejects the rest of the file.
package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"time"

	"github.com/windfleet/windfleet/internal/fleet"
	"github.com/windfleet/windfleet/pkg/types"
)

// Header is the expected CSV column order.
var Header = []string{
	"asset_id", "latitude", "longitude", "power_rating", "energy_price", "cluster",
	"component", "lifetime_years", "serial_number", "installation_date",
	"replacement_cost", "salvage_value", "criticality", "power_impact", "repair_hours",
}

// dateLayout matches the installation_date column.
const dateLayout = "2006-01-02"

// LoadFile reads the fleet CSV at path. See Load.
func LoadFile(path string) ([]*fleet.Asset, []error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("loader: open %s: %w", path, err)
	}
	defer f.Close()
	return Load(f)
}

// Load reads fleet CSV data from r and returns the assembled assets in file
// order. The second return value collects per-record problems (parse
// failures, out-of-range values); these are warnings, not failures — the
// affected row or field fell back to its documented default or was skipped.
func Load(r io.Reader) ([]*fleet.Asset, []error, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(Header)

	if _, err := cr.Read(); err != nil {
		if err == io.EOF {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("loader: read header: %w", err)
	}

	var (
		order   []*types.AssetRecord
		byID    = make(map[string]*types.AssetRecord)
		recErrs []error
		line    = 1
	)

	for {
		line++
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			recErrs = append(recErrs, fmt.Errorf("loader: line %d: %w", line, err))
			continue
		}

		rec, comp, err := parseRow(row)
		if err != nil {
			recErrs = append(recErrs, fmt.Errorf("loader: line %d: %w", line, err))
			slog.Warn("loader: skipping malformed row", "line", line, "err", err)
			continue
		}

		// Rows for the same asset need not be consecutive; all of them
		// fold into one record keyed by ID. The first row's asset-level
		// fields win — later rows only contribute their component.
		cur, ok := byID[rec.ID]
		if !ok {
			cur = &rec
			byID[rec.ID] = cur
			order = append(order, cur)
		}
		cur.Components = append(cur.Components, comp)
	}

	assets := make([]*fleet.Asset, 0, len(order))
	for _, rec := range order {
		a, errs := fleet.New(*rec)
		recErrs = append(recErrs, errs...)
		assets = append(assets, a)
	}

	return assets, recErrs, nil
}

// parseRow splits one CSV row into its asset-level and component-level parts.
func parseRow(row []string) (types.AssetRecord, types.ComponentRecord, error) {
	var (
		rec  types.AssetRecord
		comp types.ComponentRecord
		err  error
	)

	rec.ID = row[0]
	if rec.ID == "" {
		return rec, comp, fmt.Errorf("asset_id is empty")
	}
	rec.Cluster = row[5]
	comp.Name = row[6]
	comp.SerialNumber = row[8]
	if comp.SerialNumber == "" {
		return rec, comp, fmt.Errorf("serial_number is empty")
	}
	comp.Criticality = row[12]

	floats := []struct {
		field string
		raw   string
		dst   *float64
	}{
		{"latitude", row[1], &rec.Latitude},
		{"longitude", row[2], &rec.Longitude},
		{"power_rating", row[3], &rec.PowerRating},
		{"energy_price", row[4], &rec.EnergyPrice},
		{"lifetime_years", row[7], &comp.LifetimeYears},
		{"replacement_cost", row[10], &comp.ReplacementCost},
		{"salvage_value", row[11], &comp.SalvageValue},
		{"power_impact", row[13], &comp.PowerImpact},
		{"repair_hours", row[14], &comp.RepairHours},
	}
	for _, f := range floats {
		if *f.dst, err = strconv.ParseFloat(f.raw, 64); err != nil {
			return rec, comp, fmt.Errorf("%s %q: not a number", f.field, f.raw)
		}
		// ParseFloat accepts "NaN" and "Inf"; neither is a usable value.
		if math.IsNaN(*f.dst) || math.IsInf(*f.dst, 0) {
			return rec, comp, fmt.Errorf("%s %q: not a finite number", f.field, f.raw)
		}
	}

	// An empty install date is tolerated here: the health model reports it
	// as a data-integrity anomaly and falls back to the full lifetime.
	if row[9] != "" {
		if comp.InstallDate, err = time.Parse(dateLayout, row[9]); err != nil {
			return rec, comp, fmt.Errorf("installation_date %q: want YYYY-MM-DD", row[9])
		}
	}

	return rec, comp, nil
}
