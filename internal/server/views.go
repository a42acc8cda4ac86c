package server

import (
	"errors"
	"net/http"

	"github.com/go-chi/render"

	"github.com/julian-george/dali-datascience-app/internal/analysis"
	"github.com/julian-george/dali-datascience-app/internal/dashboard"
)

type barsResponse struct {
	Version      uint64               `json:"version"`
	Applied      bool                 `json:"applied"`
	Drill        dashboard.DrillState `json:"drill"`
	Title        string               `json:"title"`
	YAxis        string               `json:"yAxis"`
	ProfitDomain [2]float64           `json:"profitDomain"`
	View         []dashboard.ViewItem `json:"view"`
	Bars         []dashboard.Bar      `json:"bars"`
}

func barsOf(f *dashboard.Frame, applied bool) barsResponse {
	title := "Mean Profit by Category"
	if f.Drill.Level == dashboard.LevelCategory {
		title = "Mean Profit by Sub-Category: " + f.Drill.Selected
	}
	return barsResponse{
		Version:      f.Version,
		Applied:      applied,
		Drill:        f.Drill,
		Title:        title,
		YAxis:        "Mean Profit",
		ProfitDomain: f.ProfitDomain,
		View:         f.View,
		Bars:         f.Bars,
	}
}

func (h *Handler) bars(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, barsOf(h.dash.Frame(), true))
}

type drillRequest struct {
	Category string `json:"category" validate:"required"`
}

func (h *Handler) drillInto(w http.ResponseWriter, r *http.Request) {
	var req drillRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.fail(w, r, http.StatusBadRequest, errors.New("invalid JSON body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.fail(w, r, http.StatusBadRequest, err)
		return
	}
	f, ok := h.dash.DrillInto(req.Category)
	render.JSON(w, r, barsOf(f, ok))
}

func (h *Handler) drillOut(w http.ResponseWriter, r *http.Request) {
	f, ok := h.dash.DrillOut()
	render.JSON(w, r, barsOf(f, ok))
}

type circle struct {
	analysis.GeoCircle
	Visible bool   `json:"visible"`
	Label   string `json:"label"`
}

type mapResponse struct {
	Version uint64         `json:"version"`
	Applied bool           `json:"applied"`
	Title   string         `json:"title"`
	Mode    dashboard.Mode `json:"mode"`
	Circles []circle       `json:"circles"`
}

func mapOf(f *dashboard.Frame, applied bool) mapResponse {
	cs := make([]circle, 0, len(f.Circles))
	for _, c := range f.Circles {
		cs = append(cs, circle{GeoCircle: c, Visible: c.Visible(), Label: c.Label()})
	}
	return mapResponse{
		Version: f.Version,
		Applied: applied,
		Title:   "Number of Purchases By County and State",
		Mode:    f.Mode,
		Circles: cs,
	}
}

func (h *Handler) circles(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, mapOf(h.dash.Frame(), true))
}

type modeRequest struct {
	Mode string `json:"mode" validate:"required"`
}

func (h *Handler) setMode(w http.ResponseWriter, r *http.Request) {
	var req modeRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.fail(w, r, http.StatusBadRequest, errors.New("invalid JSON body"))
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.fail(w, r, http.StatusBadRequest, err)
		return
	}
	m, ok := dashboard.ParseMode(req.Mode)
	if !ok {
		render.JSON(w, r, mapOf(h.dash.Frame(), false))
		return
	}
	f, applied := h.dash.SetMode(m)
	render.JSON(w, r, mapOf(f, applied))
}

type trendResponse struct {
	Version uint64                  `json:"version"`
	Title   string                  `json:"title"`
	XAxis   string                  `json:"xAxis"`
	YAxis   string                  `json:"yAxis"`
	Lines   []dashboard.Line        `json:"lines"`
	Legend  []dashboard.SeriesStyle `json:"legend"`
	Ticks   []dashboard.Tick        `json:"ticks"`
}

func (h *Handler) trend(w http.ResponseWriter, r *http.Request) {
	f := h.dash.Frame()
	render.JSON(w, r, trendResponse{
		Version: f.Version,
		Title:   "Quantity of Items Purchased by Month",
		XAxis:   "Month",
		YAxis:   "Quantity ordered",
		Lines:   f.Lines,
		Legend:  f.Legend,
		Ticks:   f.Ticks,
	})
}
