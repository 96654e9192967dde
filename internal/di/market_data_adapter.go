package di

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/aristath/divscout/internal/clients/yahoo"
	"github.com/aristath/divscout/internal/modules/dividends"
)

// DividendFeed is the HTTP side of the Yahoo client.
type DividendFeed interface {
	GetDividends(ctx context.Context, symbol string) ([]yahoo.Dividend, error)
	GetDividendYield(ctx context.Context, symbol string) (*float64, error)
	Wait(ctx context.Context) error
}

// QuoteSource is the go-yfinance side of the Yahoo client.
type QuoteSource interface {
	GetDividendYield(symbol string) (*float64, error)
	GetProfile(symbol string) (*yahoo.Profile, error)
}

// MarketDataAdapter adapts the Yahoo clients to dividends.MarketDataProvider.
// Yields come from the quote source when available, falling back to the
// HTTP feed; Yahoo reports them as fractions and they are scaled to percent.
type MarketDataAdapter struct {
	feed   DividendFeed
	quotes QuoteSource // optional
	log    zerolog.Logger
}

// NewMarketDataAdapter creates a new market data adapter. quotes may be nil.
func NewMarketDataAdapter(feed DividendFeed, quotes QuoteSource, log zerolog.Logger) *MarketDataAdapter {
	return &MarketDataAdapter{
		feed:   feed,
		quotes: quotes,
		log:    log.With().Str("adapter", "market_data").Logger(),
	}
}

// FetchDividendHistory returns payouts oldest first, empty when there are none.
func (a *MarketDataAdapter) FetchDividendHistory(ctx context.Context, symbol string) ([]dividends.Observation, error) {
	payouts, err := a.feed.GetDividends(ctx, symbol)
	if err != nil {
		return nil, err
	}

	history := make([]dividends.Observation, len(payouts))
	for i, p := range payouts {
		history[i] = dividends.Observation{Date: p.Date, Amount: p.Amount}
	}
	return history, nil
}

// FetchYieldPercent returns the dividend yield in percent, or nil if unknown.
func (a *MarketDataAdapter) FetchYieldPercent(ctx context.Context, symbol string) (*float64, error) {
	if a.quotes != nil {
		if err := a.feed.Wait(ctx); err != nil {
			return nil, err
		}
		fraction, err := a.quotes.GetDividendYield(symbol)
		if err == nil {
			return toPercent(fraction), nil
		}
		a.log.Debug().Err(err).Str("symbol", symbol).Msg("Quote lookup failed, falling back to summary endpoint")
	}

	fraction, err := a.feed.GetDividendYield(ctx, symbol)
	if err != nil {
		return nil, err
	}
	return toPercent(fraction), nil
}

// CompanyName returns the quote's long or short name.
func (a *MarketDataAdapter) CompanyName(ctx context.Context, symbol string) (string, error) {
	if a.quotes == nil {
		return "", nil
	}
	if err := a.feed.Wait(ctx); err != nil {
		return "", err
	}
	profile, err := a.quotes.GetProfile(symbol)
	if err != nil {
		return "", err
	}
	return profile.Name, nil
}

func toPercent(fraction *float64) *float64 {
	if fraction == nil {
		return nil
	}
	pct := *fraction * 100
	return &pct
}
