package analysis

import (
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/julian-george/dali-datascience-app/internal/dataset"
)

// DefaultEpochYear is the year whose January is month index 1.
const DefaultEpochYear = 2013

const dateLayout = "1/2/2006"

var shortMonths = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sept", "Oct", "Nov", "Dec"}

// MonthIndex numbers months from the epoch: (year-epoch)*12 + month, month 1-based.
func MonthIndex(t time.Time, epoch int) int {
	return (t.Year()-epoch)*12 + int(t.Month())
}

// TickLabel renders a month index as an axis label such as "Apr 14".
// The month name is taken at index mod 12 and the year at floor(index/12),
// so labels sit one month after the month the index was computed from.
func TickLabel(monthIndex, epoch int) string {
	m := monthIndex % 12
	if m < 0 {
		m += 12
	}
	year := int(math.Floor(float64(monthIndex)/12)) + epoch
	yy := strconv.Itoa(year)
	if len(yy) > 2 {
		yy = yy[2:]
	}
	return shortMonths[m] + " " + yy
}

// MonthPoint is the quantity ordered in one month.
type MonthPoint struct {
	Month    int `json:"month"`
	Quantity int `json:"quantity"`
}

// TimeSeries holds summed quantities per category per month index.
type TimeSeries struct {
	order []string
	byCat map[string]map[int]int
	lo    int
	hi    int
}

// AggregateTimeline sums Quantity per category per month. The purchase date is
// Order Date, falling back to Ship Date. Rows without a category or a valid
// date are skipped; an empty Quantity counts as 1. diag may be nil.
func AggregateTimeline(rows []dataset.Row, epoch int, diag *Diagnostics) *TimeSeries {
	ts := &TimeSeries{byCat: map[string]map[int]int{}}
	first := true
	for _, row := range rows {
		cat := row.Get(dataset.FieldCategory)
		if cat == "" {
			continue
		}
		raw := row.Get(dataset.FieldOrderDate)
		if raw == "" {
			raw = row.Get(dataset.FieldShipDate)
		}
		if raw == "" {
			diag.note(issueUndated)
			continue
		}
		d, err := time.Parse(dateLayout, raw)
		if err != nil {
			diag.note(issueBadDate)
			continue
		}
		// Quantities are whole item counts; fractional values such as "2.5"
		// are treated as malformed and skip the row.
		qty, ok := parseQuantity(row.Get(dataset.FieldQuantity))
		if !ok {
			diag.note(issueBadQuantity)
			continue
		}

		m := MonthIndex(d, epoch)
		series, seen := ts.byCat[cat]
		if !seen {
			series = map[int]int{}
			ts.byCat[cat] = series
			ts.order = append(ts.order, cat)
		}
		series[m] += qty
		if first || m < ts.lo {
			ts.lo = m
		}
		if first || m > ts.hi {
			ts.hi = m
		}
		first = false
	}
	return ts
}

func parseQuantity(s string) (int, bool) {
	if s == "" {
		return 1, true
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}

// Categories returns the series names in order of first appearance.
func (ts *TimeSeries) Categories() []string {
	if ts == nil {
		return nil
	}
	return append([]string(nil), ts.order...)
}

// Value returns the quantity of category in month m.
func (ts *TimeSeries) Value(category string, m int) int {
	if ts == nil {
		return 0
	}
	return ts.byCat[category][m]
}

// Points returns the months of category that have data, in ascending order.
func (ts *TimeSeries) Points(category string) []MonthPoint {
	if ts == nil {
		return nil
	}
	series := ts.byCat[category]
	out := make([]MonthPoint, 0, len(series))
	for m, q := range series {
		out = append(out, MonthPoint{Month: m, Quantity: q})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Month < out[j].Month })
	return out
}

// MonthRange returns the first and last month index present in any series.
func (ts *TimeSeries) MonthRange() (lo, hi int, ok bool) {
	if ts == nil || len(ts.order) == 0 {
		return 0, 0, false
	}
	return ts.lo, ts.hi, true
}
