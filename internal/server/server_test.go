package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julian-george/dali-datascience-app/internal/analysis"
	"github.com/julian-george/dali-datascience-app/internal/dashboard"
	"github.com/julian-george/dali-datascience-app/internal/dataset"
	"github.com/julian-george/dali-datascience-app/internal/geo"
	"github.com/julian-george/dali-datascience-app/internal/logger"
	"github.com/julian-george/dali-datascience-app/internal/metrics"
)

func testSnapshot() *analysis.Snapshot {
	rows := []dataset.Row{
		{"Category": "Technology", "Sub-Category": "Phones", "Profit": "10", "State": "CA", "Order Date": "3/15/2014", "Quantity": "5"},
		{"Category": "Technology", "Sub-Category": "Phones", "Profit": "30", "State": "CA", "Order Date": "3/20/2014"},
		{"Category": "Furniture", "Sub-Category": "Chairs", "Profit": "-2", "State": "NY", "Order Date": "5/1/2014", "Quantity": "2"},
	}
	opt := analysis.DefaultOptions()
	opt.Name = "test"
	opt.States = []geo.Feature{{Name: "CA", HasCentroid: true}, {Name: "NY", HasCentroid: true}, {Name: "TX", HasCentroid: true}}
	return analysis.Aggregate(rows, opt)
}

func newTestServer(t *testing.T, reload ReloadFunc) (*httptest.Server, *dashboard.Dashboard) {
	t.Helper()
	dash := dashboard.New(dashboard.DefaultLayout(), dashboard.DefaultMode)
	dash.Load(testSnapshot())
	h := New(dash, logger.NewWithOutput(io.Discard, "error", "text"), metrics.New(), reload)
	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)
	return srv, dash
}

func do(t *testing.T, method, url, body string, out any) int {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if out != nil {
		require.NoError(t, json.Unmarshal(b, out), "body: %s", string(b))
	}
	return resp.StatusCode
}

func TestBarsDrillRoundTrip(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	var root barsResponse
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, srv.URL+"/api/bars", "", &root))
	require.Len(t, root.View, 2)
	assert.Equal(t, "Technology", root.View[0].Label)
	assert.Equal(t, 20.0, root.View[0].Mean)
	assert.Equal(t, "Mean Profit", root.YAxis)

	var drilled barsResponse
	require.Equal(t, http.StatusOK, do(t, http.MethodPost, srv.URL+"/api/bars/drill", `{"category":"Technology"}`, &drilled))
	assert.True(t, drilled.Applied)
	assert.Equal(t, []dashboard.ViewItem{{Label: "Phones", Mean: 20}}, drilled.View)

	var stale barsResponse
	require.Equal(t, http.StatusOK, do(t, http.MethodPost, srv.URL+"/api/bars/drill", `{"category":"Furniture"}`, &stale))
	assert.False(t, stale.Applied)
	assert.Equal(t, drilled.Version, stale.Version)

	var back barsResponse
	require.Equal(t, http.StatusOK, do(t, http.MethodPost, srv.URL+"/api/bars/out", "", &back))
	assert.True(t, back.Applied)
	assert.Equal(t, root.View, back.View)
	assert.Equal(t, root.Bars, back.Bars)
}

func TestDrillBadRequests(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	var e errorResponse
	assert.Equal(t, http.StatusBadRequest, do(t, http.MethodPost, srv.URL+"/api/bars/drill", `{`, &e))
	assert.Equal(t, http.StatusBadRequest, do(t, http.MethodPost, srv.URL+"/api/bars/drill", `{}`, &e))
	assert.NotEmpty(t, e.Error)

	var unknown barsResponse
	assert.Equal(t, http.StatusOK, do(t, http.MethodPost, srv.URL+"/api/bars/drill", `{"category":"Garden"}`, &unknown))
	assert.False(t, unknown.Applied)
	assert.Equal(t, dashboard.LevelRoot, unknown.Drill.Level)
}

func TestMapMode(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	var initial mapResponse
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, srv.URL+"/api/map", "", &initial))
	assert.Equal(t, dashboard.ModeCounty, initial.Mode)
	assert.Empty(t, initial.Circles)

	var state mapResponse
	require.Equal(t, http.StatusOK, do(t, http.MethodPut, srv.URL+"/api/map/mode", `{"mode":"state"}`, &state))
	assert.True(t, state.Applied)
	assert.Equal(t, dashboard.ModeState, state.Mode)
	require.Len(t, state.Circles, 3)
	ca, ny, tx := state.Circles[0], state.Circles[1], state.Circles[2]
	assert.Greater(t, ca.Radius, ny.Radius)
	assert.Equal(t, "CA - 2", ca.Label)
	assert.True(t, ca.Visible)
	assert.False(t, tx.Visible)

	var bad mapResponse
	require.Equal(t, http.StatusOK, do(t, http.MethodPut, srv.URL+"/api/map/mode", `{"mode":"globe"}`, &bad))
	assert.False(t, bad.Applied)
	assert.Equal(t, dashboard.ModeState, bad.Mode)
}

func TestTrendAndSnapshot(t *testing.T) {
	srv, _ := newTestServer(t, nil)

	var tr trendResponse
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, srv.URL+"/api/trend", "", &tr))
	require.Len(t, tr.Lines, 2)
	assert.Equal(t, "Technology", tr.Lines[0].Category)
	assert.Equal(t, []analysis.MonthPoint{{Month: 15, Quantity: 6}}, tr.Lines[0].Points)
	assert.Equal(t, "Quantity ordered", tr.YAxis)
	require.NotEmpty(t, tr.Ticks)
	assert.Equal(t, "Apr 14", tr.Ticks[0].Label)

	var snap map[string]any
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, srv.URL+"/api/snapshot", "", &snap))
	assert.Equal(t, "test", snap["name"])
	assert.Equal(t, "ROOT", snap["drill"].(map[string]any)["level"])
}

func TestReload(t *testing.T) {
	calls := 0
	var dash *dashboard.Dashboard
	reload := func(ctx context.Context) error {
		calls++
		if calls > 1 {
			return errors.New("upstream unavailable")
		}
		dash.Load(testSnapshot())
		return nil
	}
	srv, d := newTestServer(t, reload)
	dash = d
	d.DrillInto("Technology")

	var snap snapshotResponse
	require.Equal(t, http.StatusOK, do(t, http.MethodPost, srv.URL+"/api/reload", "", &snap))
	assert.Equal(t, dashboard.LevelRoot, d.Frame().Drill.Level)

	var e errorResponse
	assert.Equal(t, http.StatusBadGateway, do(t, http.MethodPost, srv.URL+"/api/reload", "", &e))
	assert.Contains(t, e.Error, "upstream unavailable")
}

func TestReloadNotConfigured(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	var e errorResponse
	assert.Equal(t, http.StatusNotImplemented, do(t, http.MethodPost, srv.URL+"/api/reload", "", &e))
}

func TestHealthAndMetrics(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	var health map[string]any
	require.Equal(t, http.StatusOK, do(t, http.MethodGet, srv.URL+"/healthz", "", &health))
	assert.Equal(t, "ok", health["status"])

	do(t, http.MethodGet, srv.URL+"/api/bars", "", nil)
	resp, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, err = buf.ReadFrom(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `datavis_http_requests_total{code="200",route="/api/bars"}`)
}
