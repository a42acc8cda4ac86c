package cmd

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/julian-george/dali-datascience-app/internal/analysis"
	cfgpkg "github.com/julian-george/dali-datascience-app/internal/config"
	"github.com/julian-george/dali-datascience-app/internal/dashboard"
	"github.com/julian-george/dali-datascience-app/internal/dataset"
	"github.com/julian-george/dali-datascience-app/internal/geo"
	"github.com/julian-george/dali-datascience-app/internal/metrics"
)

// pipeline turns a dataset source into snapshots, holding the static lookup
// tables between passes.
type pipeline struct {
	source  string
	sheet   string
	cfg     *cfgpkg.Global
	fetcher *dataset.Fetcher
	metrics *metrics.Recorder
	log     *logrus.Entry
	load    func(ctx context.Context, source string, opt dataset.LoadOptions) ([]dataset.Row, error)

	mu     sync.Mutex
	tables analysis.Options

	// publishMu is held from reading the source until the frame is swapped.
	publishMu sync.Mutex
}

func newPipeline(source, sheet string, c *cfgpkg.Global, rec *metrics.Recorder) (*pipeline, error) {
	p := &pipeline{
		source:  source,
		sheet:   sheet,
		cfg:     c,
		metrics: rec,
		log:     log.Component("pipeline").WithField("source", source),
		load:    dataset.Load,
	}
	p.fetcher = dataset.NewFetcher(dataset.RetryPolicy{
		Timeout:     c.HTTPTimeout(),
		MaxAttempts: c.RetryMaxAttempts,
		BaseDelay:   time.Duration(c.RetryBaseDelayMs) * time.Millisecond,
		MaxDelay:    time.Duration(c.RetryMaxDelayMs) * time.Millisecond,
	}, log.Entry)
	if err := p.loadTables(); err != nil {
		return nil, err
	}
	return p, nil
}

// loadTables (re)reads the ZIP index and geometry named by the config.
func (p *pipeline) loadTables() error {
	opt := analysis.DefaultOptions()
	opt.Name = p.source
	opt.EpochYear = p.cfg.EpochYear
	opt.Circles = analysis.CircleOptions{MinRadius: p.cfg.MinBubbleRadius, MaxRadius: p.cfg.MaxBubbleRadius}

	if path := p.cfg.ZipFipsPath; path != "" {
		idx, err := geo.LoadZipIndex(path)
		if err != nil {
			return fmt.Errorf("zip index: %w", err)
		}
		opt.Zips = idx
		p.log.WithField("zips", idx.Len()).Debug("zip index loaded")
	} else {
		p.log.Warn("no zipfips table configured; county counts will be empty")
	}
	if path := p.cfg.StatesPath; path != "" {
		feats, err := geo.LoadFeatures(path)
		if err != nil {
			return fmt.Errorf("state features: %w", err)
		}
		opt.States = feats
	}
	if path := p.cfg.CountiesPath; path != "" {
		feats, err := geo.LoadFeatures(path)
		if err != nil {
			return fmt.Errorf("county features: %w", err)
		}
		opt.Counties = feats
	}

	p.mu.Lock()
	p.tables = opt
	p.mu.Unlock()
	return nil
}

// tablePaths lists the configured lookup files.
func (p *pipeline) tablePaths() []string {
	var out []string
	for _, path := range []string{p.cfg.ZipFipsPath, p.cfg.StatesPath, p.cfg.CountiesPath} {
		if path != "" {
			out = append(out, path)
		}
	}
	return out
}

// snapshot reads the dataset and aggregates it.
func (p *pipeline) snapshot(ctx context.Context) (*analysis.Snapshot, error) {
	rows, err := p.load(ctx, p.source, dataset.LoadOptions{Sheet: p.sheet, Fetcher: p.fetcher})
	if err != nil {
		p.metrics.Reload(false)
		return nil, fmt.Errorf("load %s: %w", p.source, err)
	}

	p.mu.Lock()
	opt := p.tables
	p.mu.Unlock()

	start := time.Now()
	snap := analysis.Aggregate(rows, opt)
	took := time.Since(start)

	d := snap.Diagnostics
	p.metrics.Reload(true)
	p.metrics.Snapshot(d.Rows, d.Counts(), took)
	p.log.WithFields(d.Fields()).WithField("took", took.String()).Info("dataset aggregated")
	return snap, nil
}

// reload aggregates the source and publishes it on dash. Passes run one at a
// time, so frames are published in the order the source was read.
func (p *pipeline) reload(ctx context.Context, dash *dashboard.Dashboard) error {
	p.publishMu.Lock()
	defer p.publishMu.Unlock()
	snap, err := p.snapshot(ctx)
	if err != nil {
		return err
	}
	dash.Load(snap)
	return nil
}
