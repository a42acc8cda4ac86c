package dashboard

import (
	"math"

	"github.com/julian-george/dali-datascience-app/internal/analysis"
	"github.com/julian-george/dali-datascience-app/internal/scale"
)

// SeriesStyle is how one category's line is drawn.
type SeriesStyle struct {
	Title       string `json:"title"`
	Color       string `json:"color"`
	StrokeWidth int    `json:"strokeWidth"`
}

// DefaultStyles are the line styles of the three Superstore categories.
func DefaultStyles() map[string]SeriesStyle {
	return map[string]SeriesStyle{
		"Furniture":       {Title: "Furniture", Color: "orange", StrokeWidth: 6},
		"Technology":      {Title: "Technology", Color: "blue", StrokeWidth: 6},
		"Office Supplies": {Title: "Office Supplies", Color: "purple", StrokeWidth: 6},
	}
}

// Layout is the pixel geometry and styling the frame is computed for.
type Layout struct {
	Width      float64
	Height     float64
	BarPadding float64
	TickCount  int
	Styles     map[string]SeriesStyle
}

// DefaultLayout matches the dashboard's default chart size.
func DefaultLayout() Layout {
	return Layout{Width: 1080, Height: 640, BarPadding: 0.1, TickCount: 8, Styles: DefaultStyles()}
}

// Bar is a positioned bar. Negative means hang below the zero line.
type Bar struct {
	Label  string  `json:"label"`
	Mean   float64 `json:"mean"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Line is one styled series of the timeline chart.
type Line struct {
	Category string                `json:"category"`
	Style    SeriesStyle           `json:"style"`
	Points   []analysis.MonthPoint `json:"points"`
}

// Tick is a labelled month on the timeline axis.
type Tick struct {
	Month int    `json:"month"`
	Label string `json:"label"`
}

// Frame is everything a renderer needs at one instant. Frames are immutable;
// every change publishes a new one.
type Frame struct {
	Version      uint64               `json:"version"`
	SnapshotID   string               `json:"snapshotId"`
	Drill        DrillState           `json:"drill"`
	Mode         Mode                 `json:"mode"`
	View         []ViewItem           `json:"view"`
	Bars         []Bar                `json:"bars"`
	ProfitDomain [2]float64           `json:"profitDomain"`
	Circles      []analysis.GeoCircle `json:"circles"`
	Lines        []Line               `json:"lines"`
	Legend       []SeriesStyle        `json:"legend"`
	Ticks        []Tick               `json:"ticks"`

	Snapshot *analysis.Snapshot `json:"-"`
}

func buildBars(view []ViewItem, l Layout) ([]Bar, [2]float64) {
	means := make([]float64, len(view))
	labels := make([]string, len(view))
	for i, v := range view {
		means[i], labels[i] = v.Mean, v.Label
	}
	lo, hi := scale.ProfitDomain(means)
	x := scale.NewBand(labels, 0, l.Width, l.BarPadding)
	y := scale.NewLinear([2]float64{lo, hi}, [2]float64{l.Height, 0})
	zero := y.Map(0)

	bars := make([]Bar, 0, len(view))
	for _, v := range view {
		pos, _ := x.Position(v.Label)
		top := y.Map(v.Mean)
		bars = append(bars, Bar{
			Label:  v.Label,
			Mean:   v.Mean,
			X:      pos,
			Y:      math.Min(top, zero),
			Width:  x.Bandwidth(),
			Height: math.Abs(zero - top),
		})
	}
	return bars, [2]float64{lo, hi}
}

func buildLines(ts *analysis.TimeSeries, l Layout) ([]Line, []SeriesStyle) {
	var lines []Line
	for _, cat := range ts.Categories() {
		style, ok := l.Styles[cat]
		if !ok {
			continue
		}
		lines = append(lines, Line{Category: cat, Style: style, Points: ts.Points(cat)})
	}
	legend := make([]SeriesStyle, 0, len(lines))
	for _, ln := range lines {
		legend = append(legend, ln.Style)
	}
	return lines, legend
}

func buildTicks(ts *analysis.TimeSeries, epoch, count int) []Tick {
	lo, hi, ok := ts.MonthRange()
	if !ok {
		return nil
	}
	if count < 2 {
		count = 2
	}
	step := int(math.Ceil(float64(hi-lo) / float64(count-1)))
	if step < 1 {
		step = 1
	}
	var ticks []Tick
	for m := lo; m <= hi; m += step {
		ticks = append(ticks, Tick{Month: m, Label: analysis.TickLabel(m, epoch)})
	}
	return ticks
}
