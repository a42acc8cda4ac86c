// Package dashboard keeps the interactive state of the three charts and
// publishes it to renderers as immutable frames.
package dashboard

import (
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/julian-george/dali-datascience-app/internal/analysis"
	"github.com/julian-george/dali-datascience-app/internal/metrics"
)

// Dashboard serialises state changes and publishes each result as a new
// Frame. Readers never lock and never see a partially updated frame.
type Dashboard struct {
	mu      sync.Mutex
	current atomic.Pointer[Frame]
	layout  Layout
	log     *logrus.Entry
	metrics *metrics.Recorder
}

// Option configures a Dashboard.
type Option func(*Dashboard)

// WithLogger scopes log output.
func WithLogger(l *logrus.Entry) Option {
	return func(d *Dashboard) { d.log = l }
}

// WithMetrics records transitions on r.
func WithMetrics(r *metrics.Recorder) Option {
	return func(d *Dashboard) { d.metrics = r }
}

// New returns a dashboard showing an empty dataset in the given map mode.
func New(layout Layout, mode Mode, opts ...Option) *Dashboard {
	if m, ok := ParseMode(string(mode)); ok {
		mode = m
	} else {
		mode = DefaultMode
	}
	d := &Dashboard{layout: layout, log: logrus.NewEntry(logrus.StandardLogger())}
	for _, o := range opts {
		o(d)
	}
	d.log = d.log.WithField("component", "dashboard")
	d.current.Store(d.build(analysis.Aggregate(nil, analysis.DefaultOptions()), Root(), mode, 0))
	return d
}

// Frame returns the latest published frame.
func (d *Dashboard) Frame() *Frame { return d.current.Load() }

// CurrentView is the bar list of the latest frame.
func (d *Dashboard) CurrentView() []ViewItem { return d.Frame().View }

// Load replaces the dataset snapshot. The drill state returns to the root;
// the map mode is kept.
func (d *Dashboard) Load(snap *analysis.Snapshot) *Frame {
	if snap == nil {
		snap = analysis.Aggregate(nil, analysis.DefaultOptions())
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	prev := d.current.Load()
	next := d.build(snap, Root(), prev.Mode, prev.Version+1)
	d.current.Store(next)
	d.log.WithFields(logrus.Fields{
		"snapshot":   snap.ID,
		"categories": snap.Categories.Len(),
		"version":    next.Version,
	}).Info("dataset loaded")
	return next
}

// DrillInto shows the sub-categories of category. Unknown categories and
// requests made below the root leave the frame unchanged and return false.
func (d *Dashboard) DrillInto(category string) (*Frame, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	prev := d.current.Load()
	s, ok := DrillInto(prev.Drill, prev.Snapshot.Categories, category)
	d.metrics.Transition("drill_into", ok)
	if !ok {
		d.log.WithFields(logrus.Fields{"category": category, "level": prev.Drill.Level.String()}).Debug("drill into ignored")
		return prev, false
	}
	next := d.withDrill(prev, s)
	d.current.Store(next)
	return next, true
}

// DrillOut returns to the category list. It returns false at the root.
func (d *Dashboard) DrillOut() (*Frame, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	prev := d.current.Load()
	s, ok := DrillOut(prev.Drill)
	d.metrics.Transition("drill_out", ok)
	if !ok {
		return prev, false
	}
	next := d.withDrill(prev, s)
	d.current.Store(next)
	return next, true
}

// SetMode switches the exposed circle list. Setting the current mode is a
// no-op that still reports true; an invalid mode reports false.
func (d *Dashboard) SetMode(m Mode) (*Frame, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	prev := d.current.Load()
	nm, ok := ParseMode(string(m))
	if !ok {
		d.metrics.Transition("set_mode", false)
		return prev, false
	}
	m = nm
	d.metrics.Transition("set_mode", true)
	if m == prev.Mode {
		return prev, true
	}
	next := *prev
	next.Version++
	next.Mode = m
	next.Circles = m.Circles(prev.Snapshot)
	d.current.Store(&next)
	return &next, true
}

func (d *Dashboard) withDrill(prev *Frame, s DrillState) *Frame {
	next := *prev
	next.Version++
	next.Drill = s
	next.View = CurrentView(s, prev.Snapshot.Categories)
	next.Bars, next.ProfitDomain = buildBars(next.View, d.layout)
	return &next
}

func (d *Dashboard) build(snap *analysis.Snapshot, s DrillState, m Mode, version uint64) *Frame {
	f := &Frame{
		Version:    version,
		SnapshotID: snap.ID,
		Drill:      s,
		Mode:       m,
		Circles:    m.Circles(snap),
		Snapshot:   snap,
	}
	f.View = CurrentView(s, snap.Categories)
	f.Bars, f.ProfitDomain = buildBars(f.View, d.layout)
	f.Lines, f.Legend = buildLines(snap.Timeline, d.layout)
	f.Ticks = buildTicks(snap.Timeline, snap.EpochYear, d.layout.TickCount)
	return f
}
