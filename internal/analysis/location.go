package analysis

import (
	"fmt"

	"github.com/paulmach/orb"

	"github.com/julian-george/dali-datascience-app/internal/dataset"
	"github.com/julian-george/dali-datascience-app/internal/geo"
	"github.com/julian-george/dali-datascience-app/internal/scale"
)

// LocationCounts holds order counts by state name and by county FIPS code.
// Regions without orders are absent and read as 0.
type LocationCounts struct {
	states   map[string]int
	counties map[geo.FIPS]int
	maxState int
	maxCnty  int
}

// CountLocations counts rows per State and per county resolved through zips.
// Postal codes that do not resolve are dropped. diag may be nil.
func CountLocations(rows []dataset.Row, zips *geo.ZipIndex, diag *Diagnostics) *LocationCounts {
	lc := &LocationCounts{states: map[string]int{}, counties: map[geo.FIPS]int{}}
	for _, row := range rows {
		if st := row.Get(dataset.FieldState); st != "" {
			lc.states[st]++
			if n := lc.states[st]; n > lc.maxState {
				lc.maxState = n
			}
		}
		fips, ok := zips.Lookup(row.Get(dataset.FieldPostalCode))
		if !ok {
			diag.note(issueUnmappedZip)
			continue
		}
		lc.counties[fips]++
		if n := lc.counties[fips]; n > lc.maxCnty {
			lc.maxCnty = n
		}
	}
	return lc
}

// State returns the order count of a state.
func (lc *LocationCounts) State(name string) int {
	if lc == nil {
		return 0
	}
	return lc.states[name]
}

// County returns the order count of a county.
func (lc *LocationCounts) County(f geo.FIPS) int {
	if lc == nil {
		return 0
	}
	return lc.counties[f]
}

// MaxState is the largest state count, 0 when there are none.
func (lc *LocationCounts) MaxState() int {
	if lc == nil {
		return 0
	}
	return lc.maxState
}

// MaxCounty is the largest county count, 0 when there are none.
func (lc *LocationCounts) MaxCounty() int {
	if lc == nil {
		return 0
	}
	return lc.maxCnty
}

// StateTotal sums the state counts.
func (lc *LocationCounts) StateTotal() int {
	if lc == nil {
		return 0
	}
	n := 0
	for _, c := range lc.states {
		n += c
	}
	return n
}

// CountyTotal sums the county counts.
func (lc *LocationCounts) CountyTotal() int {
	if lc == nil {
		return 0
	}
	n := 0
	for _, c := range lc.counties {
		n += c
	}
	return n
}

// StateCounts returns a copy of the per-state counts.
func (lc *LocationCounts) StateCounts() map[string]int {
	out := map[string]int{}
	if lc == nil {
		return out
	}
	for k, v := range lc.states {
		out[k] = v
	}
	return out
}

// GeoCircle is one bubble on the map, positioned at its region's centroid.
type GeoCircle struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	NumOrders   int       `json:"numOrders"`
	Centroid    orb.Point `json:"centroid"`
	HasCentroid bool      `json:"hasCentroid"`
	Radius      float64   `json:"radius"`
}

// Visible reports whether the circle should be drawn.
func (c GeoCircle) Visible() bool { return c.NumOrders > 0 && c.HasCentroid }

// Label is the hover text of the circle.
func (c GeoCircle) Label() string { return fmt.Sprintf("%s - %d", c.Title, c.NumOrders) }

// CircleOptions bounds circle radii.
type CircleOptions struct {
	MinRadius float64
	MaxRadius float64
}

// StateCircles builds one circle per state feature, keyed by feature name.
func StateCircles(features []geo.Feature, lc *LocationCounts, opt CircleOptions) []GeoCircle {
	sc := scale.NewSqrt(float64(lc.MaxState()), opt.MinRadius, opt.MaxRadius)
	out := make([]GeoCircle, 0, len(features))
	for _, f := range features {
		n := lc.State(f.Name)
		out = append(out, GeoCircle{
			ID:          f.Name,
			Title:       f.Name,
			NumOrders:   n,
			Centroid:    f.Centroid,
			HasCentroid: f.HasCentroid,
			Radius:      sc.Radius(float64(n)),
		})
	}
	return out
}

// CountyCircles builds one circle per county feature, keyed by its FIPS id.
func CountyCircles(features []geo.Feature, lc *LocationCounts, opt CircleOptions) []GeoCircle {
	sc := scale.NewSqrt(float64(lc.MaxCounty()), opt.MinRadius, opt.MaxRadius)
	out := make([]GeoCircle, 0, len(features))
	for _, f := range features {
		n := 0
		if f.HasFIPS {
			n = lc.County(f.FIPS)
		}
		out = append(out, GeoCircle{
			ID:          f.ID,
			Title:       f.Name,
			NumOrders:   n,
			Centroid:    f.Centroid,
			HasCentroid: f.HasCentroid,
			Radius:      sc.Radius(float64(n)),
		})
	}
	return out
}
