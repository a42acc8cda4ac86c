package analysis

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ReportOptions trims the Markdown report.
type ReportOptions struct {
	// TopRegions limits the state list; 0 means all.
	TopRegions int
}

// Markdown renders the snapshot as a compact text report.
func (s *Snapshot) Markdown(opt ReportOptions) string {
	p := message.NewPrinter(language.English)
	var b strings.Builder

	b.WriteString("[DATASET SUMMARY]\n")
	if s.Name != "" {
		b.WriteString(fmt.Sprintf("Source: %s\n", s.Name))
	}
	d := s.Diagnostics
	b.WriteString(p.Sprintf("Rows: %d\n", d.Rows))
	if d.BlankCategory > 0 {
		b.WriteString(p.Sprintf("Skipped (no category): %d\n", d.BlankCategory))
	}
	if d.NonNumericProfit > 0 {
		b.WriteString(p.Sprintf("Non-numeric profit: %d\n", d.NonNumericProfit))
	}
	if d.UnmappedZip > 0 {
		b.WriteString(p.Sprintf("Unmapped postal codes: %d\n", d.UnmappedZip))
	}
	if n := d.Undated + d.BadDate + d.BadQuantity; n > 0 {
		b.WriteString(p.Sprintf("Excluded from timeline: %d\n", n))
	}

	b.WriteString("\n[MEAN PROFIT BY CATEGORY]\n")
	for _, cat := range s.Categories.Categories() {
		st, _ := s.Categories.Stat(cat)
		b.WriteString(p.Sprintf("- %s: mean %.2f (n=%d)\n", safeName(cat), st.Mean, st.SampleSize))
		for _, sub := range s.Categories.SubCategories(cat) {
			ss, _ := s.Categories.SubStat(cat, sub)
			b.WriteString(p.Sprintf("  • %s: mean %.2f (n=%d)\n", safeName(sub), ss.Mean, ss.SampleSize))
		}
	}

	states := s.Locations.StateCounts()
	if len(states) > 0 {
		b.WriteString("\n[ORDERS BY STATE]\n")
		names := make([]string, 0, len(states))
		for k := range states {
			names = append(names, k)
		}
		sort.Slice(names, func(i, j int) bool {
			if states[names[i]] != states[names[j]] {
				return states[names[i]] > states[names[j]]
			}
			return names[i] < names[j]
		})
		if opt.TopRegions > 0 && len(names) > opt.TopRegions {
			names = names[:opt.TopRegions]
		}
		for _, n := range names {
			b.WriteString(p.Sprintf("- %s: %d\n", safeVal(n), states[n]))
		}
		b.WriteString(p.Sprintf("Counties with orders: %d (total %d)\n", countVisible(s.CountyCircles), s.Locations.CountyTotal()))
	}

	if lo, hi, ok := s.Timeline.MonthRange(); ok {
		b.WriteString("\n[QUANTITY BY MONTH]\n")
		b.WriteString(fmt.Sprintf("Range: %s .. %s\n", TickLabel(lo, s.EpochYear), TickLabel(hi, s.EpochYear)))
		for _, cat := range s.Timeline.Categories() {
			pts := s.Timeline.Points(cat)
			total, peak := 0, MonthPoint{}
			for _, pt := range pts {
				total += pt.Quantity
				if pt.Quantity > peak.Quantity {
					peak = pt
				}
			}
			b.WriteString(p.Sprintf("- %s: %d items over %d months, peak %d at %s\n",
				safeName(cat), total, len(pts), peak.Quantity, TickLabel(peak.Month, s.EpochYear)))
		}
	}
	return b.String()
}

func countVisible(cs []GeoCircle) int {
	n := 0
	for _, c := range cs {
		if c.Visible() {
			n++
		}
	}
	return n
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return safeVal(s)
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
