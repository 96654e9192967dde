package charts

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/aristath/divscout/internal/modules/dividends"
	"github.com/aristath/divscout/internal/utils"
)

// HistorySource provides payout histories to chart.
type HistorySource interface {
	History(ctx context.Context, symbol string) ([]dividends.Observation, error)
}

// Handlers serves rendered charts and their underlying series.
type Handlers struct {
	service *Service
	history HistorySource
	log     zerolog.Logger
}

// NewHandlers creates a new chart handlers instance
func NewHandlers(service *Service, history HistorySource, log zerolog.Logger) *Handlers {
	return &Handlers{
		service: service,
		history: history,
		log:     log.With().Str("handler", "charts").Logger(),
	}
}

// RegisterRoutes mounts the chart endpoints under /api.
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Get("/charts/{symbol}", h.HandleGetChart)
	r.Get("/charts/{symbol}/data", h.HandleGetSeries)
}

func (h *Handlers) loadHistory(w http.ResponseWriter, r *http.Request) (string, []dividends.Observation, bool) {
	symbol := utils.SanitizeSymbol(chi.URLParam(r, "symbol"))
	if !utils.ValidSymbol(symbol) {
		utils.WriteError(w, r, http.StatusBadRequest, "Invalid stock symbol", h.log)
		return "", nil, false
	}

	history, err := h.history.History(r.Context(), symbol)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to get dividend history")
		utils.WriteError(w, r, http.StatusBadGateway, "Failed to fetch dividend data", h.log)
		return "", nil, false
	}
	return symbol, history, true
}

// HandleGetChart renders the dividend chart as PNG
// GET /api/charts/{symbol}
func (h *Handlers) HandleGetChart(w http.ResponseWriter, r *http.Request) {
	symbol, history, ok := h.loadHistory(w, r)
	if !ok {
		return
	}

	png, err := h.service.Render(symbol, history)
	if errors.Is(err, ErrNoData) {
		utils.WriteError(w, r, http.StatusNotFound, "No dividend data for "+symbol, h.log)
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to render chart")
		utils.WriteError(w, r, http.StatusInternalServerError, "Failed to render chart", h.log)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(png)))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		h.log.Debug().Err(err).Msg("Failed to write chart")
	}
}

// HandleGetSeries returns the chart points as data
// GET /api/charts/{symbol}/data
func (h *Handlers) HandleGetSeries(w http.ResponseWriter, r *http.Request) {
	symbol, history, ok := h.loadHistory(w, r)
	if !ok {
		return
	}
	if len(history) == 0 {
		utils.WriteError(w, r, http.StatusNotFound, "No dividend data for "+symbol, h.log)
		return
	}

	utils.WriteResponse(w, r, http.StatusOK, BuildSeries(symbol, history), h.log)
}
