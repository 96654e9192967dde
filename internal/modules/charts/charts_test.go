package charts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/divscout/internal/events"
	"github.com/aristath/divscout/internal/modules/dividends"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

func quarterly(amounts ...float64) []dividends.Observation {
	start := time.Date(2019, time.March, 1, 0, 0, 0, 0, time.UTC)
	history := make([]dividends.Observation, len(amounts))
	for i, a := range amounts {
		history[i] = dividends.Observation{Date: start.AddDate(0, 3*i, 0), Amount: a}
	}
	return history
}

func testLogger() zerolog.Logger {
	return zerolog.New(nil).Level(zerolog.Disabled)
}

func TestRenderer_Render(t *testing.T) {
	r := NewRenderer()

	tests := []struct {
		name    string
		history []dividends.Observation
	}{
		{"single payout", quarterly(0.5)},
		{"shorter than average window", quarterly(0.5, 0.52, 0.54)},
		{"with trend line", quarterly(0.40, 0.41, 0.42, 0.44, 0.46, 0.485, 0.5)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			png, err := r.Render("KO", tt.history)
			require.NoError(t, err)
			assert.True(t, bytes.HasPrefix(png, pngMagic))
		})
	}
}

func TestRenderer_RenderEmpty(t *testing.T) {
	_, err := NewRenderer().Render("KO", nil)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestBuildSeries(t *testing.T) {
	series := BuildSeries("KO", quarterly(1, 2, 3, 4, 5))

	assert.Equal(t, "KO", series.Symbol)
	require.Len(t, series.Payouts, 5)
	assert.Equal(t, ChartDataPoint{Time: "2019-03-01", Value: 1}, series.Payouts[0])

	require.Len(t, series.Trend, 2)
	assert.Equal(t, ChartDataPoint{Time: "2019-12-01", Value: 2.5}, series.Trend[0])
	assert.Equal(t, ChartDataPoint{Time: "2020-03-01", Value: 3.5}, series.Trend[1])
}

func TestBuildSeries_ShortHistory(t *testing.T) {
	series := BuildSeries("KO", quarterly(1, 2))
	assert.Len(t, series.Payouts, 2)
	assert.NotNil(t, series.Trend)
	assert.Empty(t, series.Trend)
}

func TestLocalStore_Save(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "charts")
	store := NewLocalStore(dir, "/static/charts/")

	url, err := store.Save(context.Background(), FileName("KO"), []byte("png"))
	require.NoError(t, err)
	assert.Equal(t, "/static/charts/KO_dividends.png", url)

	data, err := os.ReadFile(filepath.Join(dir, "KO_dividends.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), data)

	// Overwrites in place.
	_, err = store.Save(context.Background(), FileName("KO"), []byte("new"))
	require.NoError(t, err)
	data, err = os.ReadFile(filepath.Join(dir, "KO_dividends.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("new"), data)
}

type failingStore struct{}

func (failingStore) Save(context.Context, string, []byte) (string, error) {
	return "", errors.New("disk full")
}

func TestService_Publish(t *testing.T) {
	dir := t.TempDir()
	em := events.NewManager(testLogger())
	var published []events.Event
	em.Subscribe(func(e events.Event) { published = append(published, e) })

	svc := NewService(NewRenderer(), NewLocalStore(dir, "/static/charts"), em, testLogger())

	url, err := svc.Publish(context.Background(), "PEP", quarterly(1.0, 1.0, 1.05, 1.05, 1.1))
	require.NoError(t, err)
	assert.Equal(t, "/static/charts/PEP_dividends.png", url)

	data, err := os.ReadFile(filepath.Join(dir, "PEP_dividends.png"))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, pngMagic))

	require.Len(t, published, 1)
	assert.Equal(t, events.ChartPublished, published[0].Type)
	assert.Equal(t, url, published[0].Data["url"])
}

func TestService_Publish_StoreFailure(t *testing.T) {
	em := events.NewManager(testLogger())
	var published []events.Event
	em.Subscribe(func(e events.Event) { published = append(published, e) })

	svc := NewService(NewRenderer(), failingStore{}, em, testLogger())

	_, err := svc.Publish(context.Background(), "PEP", quarterly(1.0))
	require.Error(t, err)
	require.Len(t, published, 1)
	assert.Equal(t, events.ErrorOccurred, published[0].Type)
}

func TestService_Publish_NoData(t *testing.T) {
	svc := NewService(NewRenderer(), NewLocalStore(t.TempDir(), "/static/charts"), nil, testLogger())

	_, err := svc.Publish(context.Background(), "PEP", nil)
	assert.ErrorIs(t, err, ErrNoData)
}

type fakeHistory map[string][]dividends.Observation

func (f fakeHistory) History(_ context.Context, symbol string) ([]dividends.Observation, error) {
	return f[symbol], nil
}

func newChartRouter() http.Handler {
	svc := NewService(NewRenderer(), failingStore{}, nil, testLogger())
	h := NewHandlers(svc, fakeHistory{"KO": quarterly(0.4, 0.41, 0.42, 0.44, 0.46)}, testLogger())

	r := chi.NewRouter()
	r.Route("/api", h.RegisterRoutes)
	return r
}

func TestHandleGetChart(t *testing.T) {
	router := newChartRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/charts/ko", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), pngMagic))

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/charts/NONE", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/charts/"+"A%20B", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGetSeries(t *testing.T) {
	router := newChartRouter()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/charts/KO/data", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var series Series
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &series))
	assert.Len(t, series.Payouts, 5)
	assert.Len(t, series.Trend, 2)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/charts/NONE/data", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
