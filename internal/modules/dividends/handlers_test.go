package dividends

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

func newTestRouter(sectors SectorSource) http.Handler {
	svc := newTestService(newTestProvider(), sectors, &fakeCharts{})
	h := NewHandlers(svc, zerolog.New(nil).Level(zerolog.Disabled))

	r := chi.NewRouter()
	r.Route("/api", h.RegisterRoutes)
	return r
}

func doGet(t *testing.T, handler http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleGetReport(t *testing.T) {
	router := newTestRouter(fakeSectors{})

	rec := doGet(t, router, "/api/dividends/ko")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "KO", body["symbol"])
	assert.Equal(t, "Low", body["risk_level"])
	assert.Equal(t, "/static/charts/KO_dividends.png", body["chart_url"])

	record := body["record"].(map[string]interface{})
	assert.Equal(t, "KO", record["stock"])
	assert.Equal(t, 3.1, record["dividend_yield_pct"])
}

func TestHandleGetReport_Msgpack(t *testing.T) {
	router := newTestRouter(fakeSectors{})

	req := httptest.NewRequest(http.MethodGet, "/api/dividends/PEP", nil)
	req.Header.Set("Accept", "application/msgpack")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/msgpack", rec.Header().Get("Content-Type"))

	var report StockReport
	require.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "PEP", report.Symbol)
	assert.Equal(t, RiskLow, report.Risk)
}

func TestHandleGetReport_InvalidSymbol(t *testing.T) {
	router := newTestRouter(fakeSectors{})

	rec := doGet(t, router, "/api/dividends/"+strings.Repeat("A", 20))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGetHistory(t *testing.T) {
	router := newTestRouter(fakeSectors{})

	rec := doGet(t, router, "/api/dividends/NODV/history")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"symbol":"NODV","history":[]}`, rec.Body.String())
}

func TestHandleGetRisk(t *testing.T) {
	router := newTestRouter(fakeSectors{})

	tests := []struct {
		symbol string
		want   string
	}{
		{"KO", "Low"},
		{"T", "Medium"},
		{"NEW", "Insufficient data"},
	}

	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			rec := doGet(t, router, "/api/dividends/"+tt.symbol+"/risk")
			require.Equal(t, http.StatusOK, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.want, body["risk_level"])
		})
	}
}

func TestHandleGetProjection(t *testing.T) {
	router := newTestRouter(fakeSectors{})

	tests := []struct {
		name   string
		target string
		status int
	}{
		{"default horizon", "/api/dividends/PEP/projection", http.StatusOK},
		{"explicit horizon", "/api/dividends/PEP/projection?horizon=2", http.StatusOK},
		{"non-numeric horizon", "/api/dividends/PEP/projection?horizon=abc", http.StatusBadRequest},
		{"zero horizon", "/api/dividends/PEP/projection?horizon=0", http.StatusBadRequest},
		{"short history", "/api/dividends/NEW/projection", http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doGet(t, router, tt.target)
			assert.Equal(t, tt.status, rec.Code)
		})
	}

	rec := doGet(t, router, "/api/dividends/PEP/projection?horizon=2")
	var body struct {
		Horizon    int       `json:"horizon"`
		Projection []float64 `json:"projection"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Horizon)
	assert.Equal(t, []float64{1, 1}, body.Projection)
}

func TestHandleRankSymbols(t *testing.T) {
	router := newTestRouter(fakeSectors{})

	rec := doGet(t, router, "/api/rankings?symbols=ko,t,pep")
	require.Equal(t, http.StatusOK, rec.Code)

	var records []YieldRecord
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &records))
	assert.Equal(t, []string{"T", "KO", "PEP"}, symbols(records))

	rec = doGet(t, router, "/api/rankings")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doGet(t, router, "/api/rankings?symbols=KO,bad%20one")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleRankSectors(t *testing.T) {
	router := newTestRouter(fakeSectors{
		"Consumer": {"PEP", "KO"},
		"Empty":    {"NODV"},
	})

	rec := doGet(t, router, "/api/rankings/sectors")
	require.Equal(t, http.StatusOK, rec.Code)

	var ranking SectorRanking
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ranking))
	assert.Equal(t, []string{"KO", "PEP"}, symbols(ranking["Consumer"]))
	assert.NotNil(t, ranking["Empty"])
	assert.Empty(t, ranking["Empty"])
}

func TestHandleStreamRankings(t *testing.T) {
	srv := httptest.NewServer(newTestRouter(fakeSectors{
		"Telecom":  {"T"},
		"Consumer": {"PEP", "KO"},
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/rankings/stream"
	conn, _, err := websocket.Dial(ctx, url, nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	var frames []sectorMessage
	for {
		var msg sectorMessage
		require.NoError(t, wsjson.Read(ctx, conn, &msg))
		frames = append(frames, msg)
		if msg.Type == "done" || msg.Type == "error" {
			break
		}
	}

	require.Len(t, frames, 3)
	assert.Equal(t, "Consumer", frames[0].Sector)
	assert.Equal(t, []string{"KO", "PEP"}, symbols(frames[0].Records))
	assert.Equal(t, "Telecom", frames[1].Sector)
	assert.Equal(t, "done", frames[2].Type)
}
