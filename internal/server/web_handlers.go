package server

import (
	"fmt"
	"html/template"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/aristath/divscout/internal/modules/dividends"
	"github.com/aristath/divscout/internal/utils"
	"github.com/aristath/divscout/pkg/embedded"
)

// WebHandlers renders the HTML analyzer page.
type WebHandlers struct {
	service *dividends.Service
	tmpl    *template.Template
	log     zerolog.Logger
}

type sectorView struct {
	Name    string
	Records []dividends.YieldRecord
}

type pageData struct {
	Symbol       string
	Error        string
	Report       *dividends.StockReport
	Sectors      []sectorView
	RankingError string
}

var templateFuncs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
	"riskClass": func(r dividends.RiskLevel) string {
		switch r {
		case dividends.RiskLow:
			return "low"
		case dividends.RiskMedium:
			return "medium"
		case dividends.RiskHigh:
			return "high"
		default:
			return "unknown"
		}
	},
}

// NewWebHandlers parses the embedded page template.
func NewWebHandlers(service *dividends.Service, log zerolog.Logger) (*WebHandlers, error) {
	tmpl, err := template.New("index.html").Funcs(templateFuncs).ParseFS(embedded.Files, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse page template: %w", err)
	}

	return &WebHandlers{
		service: service,
		tmpl:    tmpl,
		log:     log.With().Str("handler", "web").Logger(),
	}, nil
}

// HandleIndex renders the sector rankings and, on POST, the analysis of the
// submitted stock_symbol.
// GET, POST /
func (h *WebHandlers) HandleIndex(w http.ResponseWriter, r *http.Request) {
	var data pageData
	status := http.StatusOK

	if r.Method == http.MethodPost {
		status = h.analyze(r, &data)
	}

	ranking, err := h.service.RankSectors(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to rank sectors")
		data.RankingError = "Sector rankings are unavailable right now."
	}
	for _, name := range dividends.SortedSectors(ranking) {
		data.Sectors = append(data.Sectors, sectorView{Name: name, Records: ranking[name]})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.tmpl.Execute(w, data); err != nil {
		h.log.Error().Err(err).Msg("Failed to render page")
	}
}

// analyze fills in the report for the submitted symbol and returns the page status.
func (h *WebHandlers) analyze(r *http.Request, data *pageData) int {
	if err := r.ParseForm(); err != nil {
		data.Error = "Could not read the submitted form."
		return http.StatusBadRequest
	}

	symbol := utils.SanitizeSymbol(r.PostFormValue("stock_symbol"))
	data.Symbol = symbol
	if !utils.ValidSymbol(symbol) {
		data.Error = "Please enter a valid stock symbol."
		return http.StatusBadRequest
	}

	report, err := h.service.AnalyzeStock(r.Context(), symbol)
	if err != nil {
		h.log.Error().Err(err).Str("symbol", symbol).Msg("Failed to analyze stock")
		data.Error = fmt.Sprintf("Could not fetch dividend data for %s.", symbol)
		return http.StatusBadGateway
	}
	data.Report = report
	return http.StatusOK
}
