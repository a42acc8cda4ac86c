package analysis

import (
	"math"
	"strconv"

	"github.com/julian-george/dali-datascience-app/internal/dataset"
)

// CategoryStat is the mean profit of a group. Mean is 0 when no row in the
// group carried a numeric profit. SampleSize counts every row in the group.
type CategoryStat struct {
	Mean       float64 `json:"mean"`
	SampleSize int     `json:"sampleSize"`
}

// CategoryTree holds per-category and per-(category, sub-category) stats in
// order of first appearance. It is immutable once built.
type CategoryTree struct {
	order    []string
	stats    map[string]CategoryStat
	subOrder map[string][]string
	subStats map[string]map[string]CategoryStat
}

type meanAcc struct {
	sum  float64
	n    int
	size int
}

func (a *meanAcc) add(v float64, ok bool) {
	a.size++
	if ok {
		a.sum += v
		a.n++
	}
}

func (a *meanAcc) stat() CategoryStat {
	s := CategoryStat{SampleSize: a.size}
	if a.n > 0 {
		s.Mean = a.sum / float64(a.n)
	}
	return s
}

// AggregateCategories groups rows by Category and Sub-Category. Rows with a
// blank category are ignored; rows with a blank sub-category only count
// toward their category. diag may be nil.
func AggregateCategories(rows []dataset.Row, diag *Diagnostics) *CategoryTree {
	var order []string
	accs := map[string]*meanAcc{}
	subOrder := map[string][]string{}
	subAccs := map[string]map[string]*meanAcc{}

	for _, row := range rows {
		cat := row.Get(dataset.FieldCategory)
		if cat == "" {
			diag.note(issueBlankCategory)
			continue
		}
		profit, ok := parseProfit(row.Get(dataset.FieldProfit))
		if !ok {
			diag.note(issueNonNumericProfit)
		}

		acc, seen := accs[cat]
		if !seen {
			acc = &meanAcc{}
			accs[cat] = acc
			order = append(order, cat)
			subAccs[cat] = map[string]*meanAcc{}
		}
		acc.add(profit, ok)

		sub := row.Get(dataset.FieldSubCategory)
		if sub == "" {
			continue
		}
		sacc, seen := subAccs[cat][sub]
		if !seen {
			sacc = &meanAcc{}
			subAccs[cat][sub] = sacc
			subOrder[cat] = append(subOrder[cat], sub)
		}
		sacc.add(profit, ok)
	}

	t := &CategoryTree{
		order:    order,
		stats:    make(map[string]CategoryStat, len(order)),
		subOrder: subOrder,
		subStats: make(map[string]map[string]CategoryStat, len(order)),
	}
	for _, cat := range order {
		t.stats[cat] = accs[cat].stat()
		m := make(map[string]CategoryStat, len(subAccs[cat]))
		for sub, a := range subAccs[cat] {
			m[sub] = a.stat()
		}
		t.subStats[cat] = m
	}
	return t
}

// parseProfit reads a decimal profit. Blank values and text that is not a
// finite number do not contribute to the mean.
func parseProfit(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Categories returns the categories in order of first appearance.
func (t *CategoryTree) Categories() []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.order...)
}

// Len is the number of categories.
func (t *CategoryTree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.order)
}

// Has reports whether category is a key of the tree.
func (t *CategoryTree) Has(category string) bool {
	if t == nil {
		return false
	}
	_, ok := t.stats[category]
	return ok
}

// Stat returns the stats of a category.
func (t *CategoryTree) Stat(category string) (CategoryStat, bool) {
	if t == nil {
		return CategoryStat{}, false
	}
	s, ok := t.stats[category]
	return s, ok
}

// SubCategories returns the sub-categories of category in order of first appearance.
func (t *CategoryTree) SubCategories(category string) []string {
	if t == nil {
		return nil
	}
	return append([]string(nil), t.subOrder[category]...)
}

// SubStat returns the stats of a (category, sub-category) pair.
func (t *CategoryTree) SubStat(category, sub string) (CategoryStat, bool) {
	if t == nil {
		return CategoryStat{}, false
	}
	s, ok := t.subStats[category][sub]
	return s, ok
}
