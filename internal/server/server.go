// Package server exposes the dashboard over a JSON HTTP API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"github.com/julian-george/dali-datascience-app/internal/analysis"
	"github.com/julian-george/dali-datascience-app/internal/dashboard"
	"github.com/julian-george/dali-datascience-app/internal/logger"
	"github.com/julian-george/dali-datascience-app/internal/metrics"
)

// ReloadFunc re-reads the dataset and publishes a new snapshot.
type ReloadFunc func(ctx context.Context) error

// Handler serves the dashboard API.
type Handler struct {
	dash     *dashboard.Dashboard
	log      *logger.Logger
	metrics  *metrics.Recorder
	reload   ReloadFunc
	validate *validator.Validate
}

// New returns a handler. rec and reload may be nil.
func New(dash *dashboard.Dashboard, log *logger.Logger, rec *metrics.Recorder, reload ReloadFunc) *Handler {
	return &Handler{
		dash:     dash,
		log:      log,
		metrics:  rec,
		reload:   reload,
		validate: validator.New(),
	}
}

// Routes builds the router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.observe)

	r.Get("/healthz", h.health)
	r.Method(http.MethodGet, "/metrics", h.metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/snapshot", h.snapshot)
		r.Post("/reload", h.reloadDataset)
		r.Get("/bars", h.bars)
		r.Post("/bars/drill", h.drillInto)
		r.Post("/bars/out", h.drillOut)
		r.Get("/map", h.circles)
		r.Put("/map/mode", h.setMode)
		r.Get("/trend", h.trend)
	})
	return r
}

// Serve runs an http.Server on addr until ctx is cancelled.
func Serve(ctx context.Context, addr string, handler http.Handler, log *logger.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.WithField("addr", addr).Info("listening")
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

func (h *Handler) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		h.metrics.Request(route, status)
		h.log.WithRequest(r).WithField("status", status).WithField("took", time.Since(start).String()).Debug("request")
	})
}

type errorResponse struct {
	Error string `json:"error"`
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	h.log.WithRequest(r).WithError(err).Warn("request failed")
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Error: err.Error()})
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{"status": "ok", "snapshotId": h.dash.Frame().SnapshotID})
}

type snapshotResponse struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	CreatedAt   time.Time            `json:"createdAt"`
	EpochYear   int                  `json:"epochYear"`
	Version     uint64               `json:"version"`
	Drill       dashboard.DrillState `json:"drill"`
	Mode        dashboard.Mode       `json:"mode"`
	Diagnostics analysis.Diagnostics `json:"diagnostics"`
}

func (h *Handler) snapshot(w http.ResponseWriter, r *http.Request) {
	f := h.dash.Frame()
	s := f.Snapshot
	render.JSON(w, r, snapshotResponse{
		ID:          s.ID,
		Name:        s.Name,
		CreatedAt:   s.CreatedAt,
		EpochYear:   s.EpochYear,
		Version:     f.Version,
		Drill:       f.Drill,
		Mode:        f.Mode,
		Diagnostics: s.Diagnostics,
	})
}

func (h *Handler) reloadDataset(w http.ResponseWriter, r *http.Request) {
	if h.reload == nil {
		h.fail(w, r, http.StatusNotImplemented, errors.New("reload is not configured"))
		return
	}
	if err := h.reload(r.Context()); err != nil {
		h.fail(w, r, http.StatusBadGateway, err)
		return
	}
	h.snapshot(w, r)
}
