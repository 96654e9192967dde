package dividends

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/aristath/divscout/internal/utils"
)

// maxRankingSymbols caps ad-hoc ranking requests.
const maxRankingSymbols = 50

// Handlers exposes the dividend service over HTTP.
type Handlers struct {
	service *Service
	log     zerolog.Logger
}

// NewHandlers creates a new dividend handlers instance
func NewHandlers(service *Service, log zerolog.Logger) *Handlers {
	return &Handlers{
		service: service,
		log:     log.With().Str("handler", "dividends").Logger(),
	}
}

// RegisterRoutes mounts the dividend and ranking endpoints under /api.
func (h *Handlers) RegisterRoutes(r chi.Router) {
	r.Route("/dividends/{symbol}", func(r chi.Router) {
		r.Get("/", h.HandleGetReport)
		r.Get("/history", h.HandleGetHistory)
		r.Get("/risk", h.HandleGetRisk)
		r.Get("/projection", h.HandleGetProjection)
	})

	r.Route("/rankings", func(r chi.Router) {
		r.Get("/", h.HandleRankSymbols)
		r.Get("/sectors", h.HandleRankSectors)
		r.Get("/stream", h.HandleStreamRankings)
	})
}

// symbolParam reads and validates the {symbol} path parameter, writing a 400
// when it is unusable.
func (h *Handlers) symbolParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	symbol := utils.SanitizeSymbol(chi.URLParam(r, "symbol"))
	if !utils.ValidSymbol(symbol) {
		utils.WriteError(w, r, http.StatusBadRequest, "Invalid stock symbol", h.log)
		return "", false
	}
	return symbol, true
}

// HandleGetReport returns the full analysis for one symbol
// GET /api/dividends/{symbol}
func (h *Handlers) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	symbol, ok := h.symbolParam(w, r)
	if !ok {
		return
	}

	report, err := h.service.AnalyzeStock(r.Context(), symbol)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to analyze stock")
		utils.WriteError(w, r, http.StatusBadGateway, "Failed to fetch dividend data", h.log)
		return
	}

	utils.WriteResponse(w, r, http.StatusOK, report, h.log)
}

// HandleGetHistory returns the raw payout history
// GET /api/dividends/{symbol}/history
func (h *Handlers) HandleGetHistory(w http.ResponseWriter, r *http.Request) {
	symbol, ok := h.symbolParam(w, r)
	if !ok {
		return
	}

	history, err := h.service.History(r.Context(), symbol)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to get dividend history")
		utils.WriteError(w, r, http.StatusBadGateway, "Failed to fetch dividend data", h.log)
		return
	}
	if history == nil {
		history = []Observation{}
	}

	utils.WriteResponse(w, r, http.StatusOK, map[string]interface{}{
		"symbol":  symbol,
		"history": history,
	}, h.log)
}

// HandleGetRisk classifies the symbol's dividend trend
// GET /api/dividends/{symbol}/risk
func (h *Handlers) HandleGetRisk(w http.ResponseWriter, r *http.Request) {
	symbol, ok := h.symbolParam(w, r)
	if !ok {
		return
	}

	risk, err := h.service.AssessRisk(r.Context(), symbol)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to assess risk")
		utils.WriteError(w, r, http.StatusBadGateway, "Failed to fetch dividend data", h.log)
		return
	}

	utils.WriteResponse(w, r, http.StatusOK, map[string]interface{}{
		"symbol":     symbol,
		"risk_level": risk,
	}, h.log)
}

// HandleGetProjection predicts the next payouts
// GET /api/dividends/{symbol}/projection?horizon=N
func (h *Handlers) HandleGetProjection(w http.ResponseWriter, r *http.Request) {
	symbol, ok := h.symbolParam(w, r)
	if !ok {
		return
	}

	horizon := h.service.Horizon()
	if raw := r.URL.Query().Get("horizon"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			utils.WriteError(w, r, http.StatusBadRequest, "Invalid horizon", h.log)
			return
		}
		horizon = parsed
	}

	projection, err := h.service.ProjectGrowth(r.Context(), symbol, horizon)
	switch {
	case errors.Is(err, ErrInvalidHorizon):
		utils.WriteError(w, r, http.StatusBadRequest, err.Error(), h.log)
		return
	case errors.Is(err, ErrInsufficientData):
		utils.WriteError(w, r, http.StatusUnprocessableEntity, "Insufficient dividend history for a projection", h.log)
		return
	case err != nil:
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to project dividends")
		utils.WriteError(w, r, http.StatusBadGateway, "Failed to fetch dividend data", h.log)
		return
	}

	utils.WriteResponse(w, r, http.StatusOK, map[string]interface{}{
		"symbol":     symbol,
		"horizon":    horizon,
		"projection": projection,
	}, h.log)
}

// HandleRankSymbols ranks an ad-hoc list by yield
// GET /api/rankings?symbols=KO,PEP,T
func (h *Handlers) HandleRankSymbols(w http.ResponseWriter, r *http.Request) {
	symbols := utils.ParseSymbols(r.URL.Query().Get("symbols"))
	if len(symbols) == 0 {
		utils.WriteError(w, r, http.StatusBadRequest, "symbols query parameter is required", h.log)
		return
	}
	if len(symbols) > maxRankingSymbols {
		utils.WriteError(w, r, http.StatusBadRequest, "Too many symbols", h.log)
		return
	}
	for _, s := range symbols {
		if !utils.ValidSymbol(s) {
			utils.WriteError(w, r, http.StatusBadRequest, "Invalid stock symbol: "+s, h.log)
			return
		}
	}

	ranked, err := h.service.RankSymbols(r.Context(), symbols)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to rank symbols")
		utils.WriteError(w, r, http.StatusBadGateway, "Failed to rank symbols", h.log)
		return
	}

	utils.WriteResponse(w, r, http.StatusOK, ranked, h.log)
}

// HandleRankSectors ranks every configured sector
// GET /api/rankings/sectors
func (h *Handlers) HandleRankSectors(w http.ResponseWriter, r *http.Request) {
	ranking, err := h.service.RankSectors(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to rank sectors")
		utils.WriteError(w, r, http.StatusBadGateway, "Failed to rank sectors", h.log)
		return
	}

	utils.WriteResponse(w, r, http.StatusOK, ranking, h.log)
}

// sectorMessage is one frame of the ranking stream.
type sectorMessage struct {
	Type    string        `json:"type"`
	Sector  string        `json:"sector,omitempty"`
	Records []YieldRecord `json:"records"`
	Error   string        `json:"error,omitempty"`
}

// HandleStreamRankings pushes sector rankings over a websocket as each sector
// completes, then a final "done" frame.
// GET /api/rankings/stream
func (h *Handlers) HandleStreamRankings(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{InsecureSkipVerify: true})
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to accept websocket")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "stream aborted")

	// Reading is only needed to notice the client going away.
	ctx := conn.CloseRead(r.Context())

	write := func(msg sectorMessage) error {
		writeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		return wsjson.Write(writeCtx, conn, msg)
	}

	err = h.service.StreamSectorRankings(ctx, func(sector string, records []YieldRecord) error {
		return write(sectorMessage{Type: "sector", Sector: sector, Records: records})
	})
	if err != nil {
		if ctx.Err() != nil {
			h.log.Debug().Msg("Ranking stream client disconnected")
			return
		}
		h.log.Error().Err(err).Msg("Ranking stream failed")
		_ = write(sectorMessage{Type: "error", Error: "Failed to rank sectors"})
		conn.Close(websocket.StatusInternalError, "ranking failed")
		return
	}

	if err := write(sectorMessage{Type: "done"}); err != nil {
		return
	}
	conn.Close(websocket.StatusNormalClosure, "")
}
