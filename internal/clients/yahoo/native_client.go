package yahoo

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/wnjoon/go-yfinance/pkg/ticker"
)

// Profile is the descriptive part of a quote.
type Profile struct {
	Symbol   string `json:"symbol"`
	Name     string `json:"name"`
	Industry string `json:"industry,omitempty"`
}

// NativeClient reads quote fundamentals through go-yfinance.
type NativeClient struct {
	log zerolog.Logger
}

// NewNativeClient creates a new native Yahoo Finance client
func NewNativeClient(log zerolog.Logger) *NativeClient {
	return &NativeClient{
		log: log.With().Str("client", "yahoo-native").Logger(),
	}
}

// GetDividendYield returns the dividend yield as a fraction, or nil when the
// quote carries none.
func (c *NativeClient) GetDividendYield(symbol string) (*float64, error) {
	t, err := ticker.New(symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to create ticker: %w", err)
	}
	defer t.Close()

	info, err := t.Info()
	if err != nil {
		return nil, fmt.Errorf("failed to get info: %w", err)
	}

	if info.DividendYield > 0 {
		dividendYield := info.DividendYield
		return &dividendYield, nil
	}

	c.log.Debug().Str("symbol", symbol).Msg("Quote has no dividend yield")
	return nil, nil
}

// GetProfile returns the company name and industry for a symbol.
func (c *NativeClient) GetProfile(symbol string) (*Profile, error) {
	t, err := ticker.New(symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to create ticker: %w", err)
	}
	defer t.Close()

	info, err := t.Info()
	if err != nil {
		return nil, fmt.Errorf("failed to get info: %w", err)
	}

	name := info.LongName
	if name == "" {
		name = info.ShortName
	}
	if name == "" {
		name = symbol
	}

	return &Profile{
		Symbol:   symbol,
		Name:     name,
		Industry: info.Industry,
	}, nil
}
