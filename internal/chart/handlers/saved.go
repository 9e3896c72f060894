package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"birthchart-server/internal/chart"
	"birthchart-server/internal/middleware"
	"birthchart-server/internal/shared/errors"
	"birthchart-server/internal/shared/response"
	"birthchart-server/internal/shared/validation"
)

type SavedChartHandler struct {
	service *chart.Service
}

func NewSavedChartHandler(service *chart.Service) *SavedChartHandler {
	return &SavedChartHandler{service: service}
}

type saveChartRequest struct {
	Label string `json:"label" validate:"required,max=120"`
	chartParams
}

type savedChartResponse struct {
	ID          int               `json:"id"`
	Label       string            `json:"label"`
	Moment      chart.Moment      `json:"moment"`
	City        string            `json:"city"`
	HouseSystem chart.HouseSystem `json:"house_system"`
	CreatedAt   time.Time         `json:"created_at"`
	Result      *chartResponse    `json:"result,omitempty"`
}

func newSavedChartResponse(sc *chart.SavedChart, result *chart.Result) savedChartResponse {
	resp := savedChartResponse{
		ID:          sc.ID,
		Label:       sc.Label,
		Moment:      sc.Moment,
		City:        sc.City,
		HouseSystem: sc.HouseSystem,
		CreatedAt:   sc.CreatedAt,
	}
	if result != nil {
		r := newChartResponse(result)
		resp.Result = &r
	}
	return resp
}

func userID(r *http.Request) (int, error) {
	claims := middleware.GetUserFromContext(r)
	if claims == nil {
		return 0, errors.Unauthorized("no user claims found in context")
	}
	return claims.UserID, nil
}

func chartID(r *http.Request) (int, error) {
	raw := r.PathValue("id")
	if raw == "" {
		return 0, errors.Validation("chart ID is required")
	}
	id, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.WrapValidation("invalid chart ID format", err)
	}
	return id, nil
}

// Collection serves GET (list) and POST (save) on /api/charts.
func (h *SavedChartHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.list(w, r)
	case http.MethodPost:
		h.create(w, r)
	default:
		response.Error(w, r, slog.With("handler", "saved_charts"), errors.MethodNotAllowed(r.Method))
	}
}

// Item serves GET and DELETE on /api/charts/{id}.
func (h *SavedChartHandler) Item(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodDelete:
		h.delete(w, r)
	default:
		response.Error(w, r, slog.With("handler", "saved_chart"), errors.MethodNotAllowed(r.Method))
	}
}

func (h *SavedChartHandler) create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := slog.With("handler", "create_saved_chart")

	uid, err := userID(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	var body saveChartRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16)).Decode(&body); err != nil {
		response.Error(w, r, logger, errors.WrapValidation("invalid JSON body", err))
		return
	}
	if err := validation.Struct(ctx, &body); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	req, err := body.chartParams.request(ctx)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	sc, result, err := h.service.Save(ctx, uid, body.Label, req)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	logger.Info("Chart saved", "user_id", uid, "chart_id", sc.ID)
	response.Success(w, http.StatusCreated, newSavedChartResponse(sc, result))
}

func (h *SavedChartHandler) list(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "list_saved_charts")

	uid, err := userID(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	charts, err := h.service.ListSaved(r.Context(), uid)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	out := make([]savedChartResponse, 0, len(charts))
	for i := range charts {
		out = append(out, newSavedChartResponse(&charts[i], nil))
	}

	response.Success(w, http.StatusOK, out)
}

func (h *SavedChartHandler) get(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "get_saved_chart")

	uid, err := userID(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}
	id, err := chartID(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	sc, result, err := h.service.GetSaved(r.Context(), uid, id)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	response.Success(w, http.StatusOK, newSavedChartResponse(sc, result))
}

func (h *SavedChartHandler) delete(w http.ResponseWriter, r *http.Request) {
	logger := slog.With("handler", "delete_saved_chart")

	uid, err := userID(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}
	id, err := chartID(r)
	if err != nil {
		response.Error(w, r, logger, err)
		return
	}

	if err := h.service.DeleteSaved(r.Context(), uid, id); err != nil {
		response.Error(w, r, logger, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
