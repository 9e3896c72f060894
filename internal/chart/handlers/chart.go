package handlers

import (
	"bytes"
	"log/slog"
	"net/http"

	"birthchart-server/internal/chart"
	"birthchart-server/internal/geocode"
	"birthchart-server/internal/render"
	"birthchart-server/internal/shared/errors"
	"birthchart-server/internal/shared/response"
)

type ChartHandler struct {
	service   *chart.Service
	imageSize int
}

func NewChartHandler(service *chart.Service, imageSize int) *ChartHandler {
	return &ChartHandler{service: service, imageSize: imageSize}
}

type chartResponse struct {
	Chart       chart.EntryMap    `json:"chart"`
	Aspects     []chart.Aspect    `json:"aspects"`
	HouseSystem chart.HouseSystem `json:"house_system"`
	Houses      []string          `json:"houses"`
	Cusps       []float64         `json:"cusps,omitempty"`
	CuspSystem  string            `json:"cusp_system,omitempty"`
	Location    geocode.Location  `json:"location"`
	JulianDay   float64           `json:"julian_day"`
}

func newChartResponse(result *chart.Result) chartResponse {
	aspects := result.Aspects
	if aspects == nil {
		aspects = []chart.Aspect{}
	}
	c := result.Chart
	return chartResponse{
		Chart:       chart.EntryMap(c.Entries),
		Aspects:     aspects,
		HouseSystem: c.HouseSystem,
		Houses:      c.Houses,
		Cusps:       c.Cusps,
		CuspSystem:  c.CuspSystem,
		Location:    c.Location,
		JulianDay:   c.JulianDay,
	}
}

func (h *ChartHandler) compute(r *http.Request) (*chart.Result, error) {
	if r.Method != http.MethodGet {
		return nil, errors.MethodNotAllowed(r.Method)
	}

	params, err := parseChartQuery(r.URL.Query())
	if err != nil {
		return nil, err
	}

	req, err := params.request(r.Context())
	if err != nil {
		return nil, err
	}

	return h.service.Compute(r.Context(), req)
}

func (h *ChartHandler) BirthChart(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "birth_chart")

	result, err := h.compute(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, newChartResponse(result))
}

func (h *ChartHandler) ChartImage(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "chart_image")

	result, err := h.compute(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	var buf bytes.Buffer
	if err := render.EncodePNG(&buf, result, render.Options{Size: h.imageSize}); err != nil {
		response.Error(w, r, logger, errors.WrapInternal("failed to render chart", err))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
