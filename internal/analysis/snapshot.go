// Package analysis aggregates retail order rows into the immutable summaries
// behind the dashboard charts: mean profit by category, order counts by
// region and quantity ordered by month.
package analysis

import (
	"time"

	"github.com/google/uuid"

	"github.com/julian-george/dali-datascience-app/internal/dataset"
	"github.com/julian-george/dali-datascience-app/internal/geo"
)

// Options controls an aggregation pass.
type Options struct {
	// Name labels the snapshot, usually the dataset source.
	Name string
	// EpochYear is the year whose January is month index 1.
	EpochYear int
	// Zips resolves postal codes to counties; nil leaves county counts empty.
	Zips *geo.ZipIndex
	// States and Counties are the map features circles are joined onto.
	States   []geo.Feature
	Counties []geo.Feature
	Circles  CircleOptions
}

// DefaultOptions returns the standard dashboard settings.
func DefaultOptions() Options {
	return Options{
		EpochYear: DefaultEpochYear,
		Circles:   CircleOptions{MinRadius: 2, MaxRadius: 25},
	}
}

// Snapshot is the result of one aggregation pass. It is never mutated after
// Aggregate returns, so it can be shared freely between goroutines.
type Snapshot struct {
	ID            string
	Name          string
	CreatedAt     time.Time
	EpochYear     int
	Categories    *CategoryTree
	Locations     *LocationCounts
	StateCircles  []GeoCircle
	CountyCircles []GeoCircle
	Timeline      *TimeSeries
	Diagnostics   Diagnostics
}

// Aggregate runs every aggregator over rows.
func Aggregate(rows []dataset.Row, opt Options) *Snapshot {
	if opt.EpochYear == 0 {
		opt.EpochYear = DefaultEpochYear
	}
	diag := Diagnostics{Rows: len(rows)}
	cats := AggregateCategories(rows, &diag)
	locs := CountLocations(rows, opt.Zips, &diag)
	ts := AggregateTimeline(rows, opt.EpochYear, &diag)
	return &Snapshot{
		ID:            uuid.NewString(),
		Name:          opt.Name,
		CreatedAt:     time.Now().UTC(),
		EpochYear:     opt.EpochYear,
		Categories:    cats,
		Locations:     locs,
		StateCircles:  StateCircles(opt.States, locs, opt.Circles),
		CountyCircles: CountyCircles(opt.Counties, locs, opt.Circles),
		Timeline:      ts,
		Diagnostics:   diag,
	}
}
