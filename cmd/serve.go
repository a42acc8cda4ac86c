package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/robfig/cron"
	"github.com/spf13/cobra"

	"github.com/julian-george/dali-datascience-app/internal/dashboard"
	"github.com/julian-george/dali-datascience-app/internal/dataset"
	"github.com/julian-george/dali-datascience-app/internal/metrics"
	"github.com/julian-george/dali-datascience-app/internal/server"
	"github.com/julian-george/dali-datascience-app/internal/watch"
)

var (
	srvAddr      string
	srvRefresh   string
	srvSheetName string
	srvNoWatch   bool
)

var serveCmd = &cobra.Command{
	Use:   "serve <source>",
	Short: "Serve the interactive dashboard state over HTTP",
	Long: `Load a dataset and serve bars, map circles and monthly lines as JSON.
Local files are re-aggregated when they change on disk; --refresh re-reads the
source on a cron schedule (e.g. "@every 15m").`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentConfig()
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("addr") {
			c.ListenAddr = srvAddr
		}
		if cmd.Flags().Changed("refresh") {
			c.RefreshSchedule = srvRefresh
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		rec := metrics.New()
		p, err := newPipeline(args[0], srvSheetName, c, rec)
		if err != nil {
			return err
		}
		dash := dashboard.New(c.Layout(), c.Mode(),
			dashboard.WithLogger(log.Component("dashboard")),
			dashboard.WithMetrics(rec),
		)
		reload := func(ctx context.Context) error { return p.reload(ctx, dash) }
		if err := reload(ctx); err != nil {
			return err
		}

		if c.RefreshSchedule != "" {
			sched := cron.New()
			if err := sched.AddFunc(c.RefreshSchedule, func() {
				if err := reload(ctx); err != nil {
					log.WithError(err).Error("scheduled refresh failed")
				}
			}); err != nil {
				return fmt.Errorf("invalid refresh schedule %q: %w", c.RefreshSchedule, err)
			}
			sched.Start()
			defer sched.Stop()
			log.WithField("schedule", c.RefreshSchedule).Info("scheduled refresh enabled")
		}

		if !srvNoWatch && !dataset.IsRemote(args[0]) {
			w, err := watch.New(append([]string{args[0]}, p.tablePaths()...), 500*time.Millisecond, log.Entry)
			if err != nil {
				return err
			}
			defer w.Close()
			source, _ := filepath.Abs(args[0])
			go func() {
				_ = w.Run(ctx, func(path string) {
					if path != source {
						if err := p.loadTables(); err != nil {
							log.WithError(err).WithField("file", path).Error("lookup table reload failed")
							return
						}
					}
					if err := reload(ctx); err != nil {
						log.WithError(err).WithField("file", path).Error("reload after change failed")
					}
				})
			}()
		}

		h := server.New(dash, log, rec, reload)
		return server.Serve(ctx, c.ListenAddr, h.Routes(), log)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&srvAddr, "addr", "", "listen address (overrides config listen_addr)")
	serveCmd.Flags().StringVar(&srvRefresh, "refresh", "", "cron schedule for re-reading the source (overrides config refresh_schedule)")
	serveCmd.Flags().StringVar(&srvSheetName, "sheet-name", "", "XLSX: sheet name to read (first sheet if omitted)")
	serveCmd.Flags().BoolVar(&srvNoWatch, "no-watch", false, "do not reload local files when they change")
}
