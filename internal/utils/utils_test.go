package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestParseCSV(t *testing.T) {
	assert.Nil(t, ParseCSV(""))
	assert.Nil(t, ParseCSV(" , ,"))
	assert.Equal(t, []string{"KO", "pep"}, ParseCSV(" KO , pep ,"))
}

func TestParseSymbols(t *testing.T) {
	assert.Equal(t, []string{"KO", "PEP", "BRK-B"}, ParseSymbols("ko, PEP, ko,brk-b"))
	assert.Nil(t, ParseSymbols(""))
}

func TestNormalizeSymbols(t *testing.T) {
	assert.Equal(t, []string{"AAPL", "MSFT"}, NormalizeSymbols([]string{" aapl", "MSFT", "", "Aapl"}))
}

func TestTimer_Stop(t *testing.T) {
	timer := NewTimer("rank", zerolog.New(nil).Level(zerolog.Disabled))
	assert.GreaterOrEqual(t, timer.Stop().Nanoseconds(), int64(0))
}

func TestWriteResponse_JSONByDefault(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	WriteResponse(rec, req, http.StatusCreated, map[string]int{"count": 3}, zerolog.Nop())

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 3, body["count"])
}

func TestWriteResponse_Msgpack(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept", "application/msgpack")
	rec := httptest.NewRecorder()

	WriteResponse(rec, req, http.StatusOK, map[string]string{"stock": "KO"}, zerolog.Nop())

	assert.Equal(t, MsgpackContentType, rec.Header().Get("Content-Type"))
	var body map[string]string
	require.NoError(t, msgpack.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "KO", body["stock"])
}

func TestWriteError(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	WriteError(rec, req, http.StatusNotFound, "no dividend data", zerolog.Nop())

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"no dividend data"}`, rec.Body.String())
}

func TestSanitizeSymbol(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"ko", "KO"},
		{"  brk.b ", "BRK.B"},
		{`<a href="http://x">t</a>`, "T"},
		{"<b>pep</b>", "PEP"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeSymbol(tt.in))
		})
	}
}

func TestValidSymbol(t *testing.T) {
	valid := []string{"KO", "BRK.B", "^GSPC", "EURUSD=X", "RDS-A", "7203.T"}
	for _, s := range valid {
		assert.True(t, ValidSymbol(s), s)
	}

	invalid := []string{"", "ko", "A B", "ABCDEFGHIJKLMNOP", "KO;DROP", "<b>"}
	for _, s := range invalid {
		assert.False(t, ValidSymbol(s), s)
	}
}
