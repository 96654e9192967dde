// Package dividends classifies dividend trend risk, ranks stocks by yield and
// projects future payouts from a stock's dividend history.
package dividends

import (
	"errors"
	"time"
)

// Minimum number of payouts needed before a history says anything about its trend.
const MinHistoryLength = 5

var (
	// ErrInsufficientData is returned when a history has fewer than MinHistoryLength payouts.
	ErrInsufficientData = errors.New("insufficient dividend data")
	// ErrInvalidHorizon is returned when a projection horizon is below one.
	ErrInvalidHorizon = errors.New("projection horizon must be at least 1")
)

// Observation is a single dividend payout.
type Observation struct {
	Date   time.Time `json:"date" msgpack:"date"`
	Amount float64   `json:"amount" msgpack:"amount"`
}

// Amounts returns the payout amounts of a history in order.
func Amounts(history []Observation) []float64 {
	out := make([]float64, len(history))
	for i, o := range history {
		out[i] = o.Amount
	}
	return out
}

// YieldRecord is a stock's latest dividend and its provider-supplied yield.
type YieldRecord struct {
	Symbol         string  `json:"stock" msgpack:"stock"`
	LatestDividend float64 `json:"latest_dividend" msgpack:"latest_dividend"`
	YieldPercent   float64 `json:"dividend_yield_pct" msgpack:"dividend_yield_pct"`
}

// SectorRanking maps a sector name to its records sorted by descending yield.
// Every requested sector is present, possibly with an empty slice.
type SectorRanking map[string][]YieldRecord

// RiskLevel is the outcome of ClassifyRisk.
type RiskLevel string

const (
	RiskLow              RiskLevel = "Low"
	RiskMedium           RiskLevel = "Medium"
	RiskHigh             RiskLevel = "High"
	RiskInsufficientData RiskLevel = "Insufficient data"
)

// Known reports whether the level is one of Low, Medium or High.
func (r RiskLevel) Known() bool {
	return r == RiskLow || r == RiskMedium || r == RiskHigh
}

// Stats summarises a payout history.
type Stats struct {
	Count     int        `json:"count" msgpack:"count"`
	Mean      float64    `json:"mean" msgpack:"mean"`
	StdDev    float64    `json:"std_dev" msgpack:"std_dev"`
	First     float64    `json:"first" msgpack:"first"`
	Last      float64    `json:"last" msgpack:"last"`
	FirstDate *time.Time `json:"first_date,omitempty" msgpack:"first_date,omitempty"`
	LastDate  *time.Time `json:"last_date,omitempty" msgpack:"last_date,omitempty"`
}

// StockReport is everything the presentation layer shows for one symbol.
// Record is nil when the provider has no dividend history or no yield.
type StockReport struct {
	Symbol     string        `json:"symbol" msgpack:"symbol"`
	Name       string        `json:"name,omitempty" msgpack:"name,omitempty"`
	Record     *YieldRecord  `json:"record,omitempty" msgpack:"record,omitempty"`
	Risk       RiskLevel     `json:"risk_level" msgpack:"risk_level"`
	History    []Observation `json:"history" msgpack:"history"`
	Stats      Stats         `json:"stats" msgpack:"stats"`
	Projection []float64     `json:"projection,omitempty" msgpack:"projection,omitempty"`
	ChartURL   string        `json:"chart_url,omitempty" msgpack:"chart_url,omitempty"`
}
