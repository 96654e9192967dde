package dividends

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/aristath/divscout/internal/events"
	"github.com/aristath/divscout/internal/utils"
	"github.com/aristath/divscout/pkg/formulas"
)

// MarketDataProvider sources raw dividend data for a symbol.
type MarketDataProvider interface {
	// FetchDividendHistory returns payouts in ascending date order; empty when
	// the symbol has never paid.
	FetchDividendHistory(ctx context.Context, symbol string) ([]Observation, error)
	// FetchYieldPercent returns the dividend yield as a percentage, or nil when
	// the provider has none.
	FetchYieldPercent(ctx context.Context, symbol string) (*float64, error)
}

// NameResolver is implemented by providers that can look up a company name.
type NameResolver interface {
	CompanyName(ctx context.Context, symbol string) (string, error)
}

// ChartPublisher renders a history to a trend chart and returns where it can be viewed.
type ChartPublisher interface {
	Publish(ctx context.Context, symbol string, history []Observation) (string, error)
}

// SectorSource supplies the sector -> symbols universe used for sector rankings.
type SectorSource interface {
	SectorMap() (map[string][]string, error)
}

// ServiceConfig tunes the dividend service.
type ServiceConfig struct {
	Horizon     int // Payouts projected per report
	Concurrency int // Parallel provider lookups during sector rankings
}

// Service combines the market-data provider with the risk, ranking and
// projection rules.
type Service struct {
	provider  MarketDataProvider
	sectors   SectorSource
	charts    ChartPublisher
	projector Projector
	events    *events.Manager
	cfg       ServiceConfig
	log       zerolog.Logger
}

// NewService creates a new dividend service. charts and eventManager may be nil.
func NewService(
	provider MarketDataProvider,
	sectors SectorSource,
	charts ChartPublisher,
	eventManager *events.Manager,
	cfg ServiceConfig,
	log zerolog.Logger,
) *Service {
	if cfg.Horizon < 1 {
		cfg.Horizon = 5
	}
	if cfg.Concurrency < 1 {
		cfg.Concurrency = 4
	}

	return &Service{
		provider:  provider,
		sectors:   sectors,
		charts:    charts,
		projector: LinearProjector{},
		events:    eventManager,
		cfg:       cfg,
		log:       log.With().Str("service", "dividends").Logger(),
	}
}

// WithProjector swaps the forecasting strategy.
func (s *Service) WithProjector(p Projector) *Service {
	s.projector = p
	return s
}

// Horizon is the number of payouts projected per report.
func (s *Service) Horizon() int {
	return s.cfg.Horizon
}

// GetYieldRecord returns the symbol's latest dividend and yield, or nil when
// either is unavailable.
func (s *Service) GetYieldRecord(ctx context.Context, symbol string) (*YieldRecord, error) {
	history, err := s.provider.FetchDividendHistory(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dividend history for %s: %w", symbol, err)
	}
	return s.yieldRecord(ctx, symbol, history)
}

func (s *Service) yieldRecord(ctx context.Context, symbol string, history []Observation) (*YieldRecord, error) {
	if len(history) == 0 {
		s.log.Debug().Str("symbol", symbol).Msg("No dividend history")
		return nil, nil
	}

	yield, err := s.provider.FetchYieldPercent(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dividend yield for %s: %w", symbol, err)
	}
	if yield == nil || *yield < 0 {
		s.log.Debug().Str("symbol", symbol).Msg("No dividend yield")
		return nil, nil
	}

	return &YieldRecord{
		Symbol:         symbol,
		LatestDividend: history[len(history)-1].Amount,
		YieldPercent:   formulas.Round2(*yield),
	}, nil
}

// AnalyzeStock builds the full report for one symbol. The chart is only
// published when a yield record exists; a publishing failure leaves ChartURL empty.
func (s *Service) AnalyzeStock(ctx context.Context, symbol string) (*StockReport, error) {
	history, err := s.provider.FetchDividendHistory(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dividend history for %s: %w", symbol, err)
	}

	record, err := s.yieldRecord(ctx, symbol, history)
	if err != nil {
		return nil, err
	}

	report := &StockReport{
		Symbol:  symbol,
		Record:  record,
		Risk:    ClassifyRisk(history),
		History: history,
		Stats:   ComputeStats(history),
	}
	if report.History == nil {
		report.History = []Observation{}
	}

	if names, ok := s.provider.(NameResolver); ok && record != nil {
		if name, err := names.CompanyName(ctx, symbol); err == nil {
			report.Name = name
		} else {
			s.log.Debug().Err(err).Str("symbol", symbol).Msg("Company name unavailable")
		}
	}

	if projection, err := s.projector.Project(history, s.cfg.Horizon); err == nil {
		report.Projection = projection
	}

	if record != nil && s.charts != nil {
		url, err := s.charts.Publish(ctx, symbol, history)
		if err != nil {
			s.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to publish dividend chart")
		} else {
			report.ChartURL = url
		}
	}

	s.emit(events.StockAnalyzed, map[string]interface{}{
		"symbol":     symbol,
		"risk_level": string(report.Risk),
		"payouts":    len(history),
		"has_yield":  record != nil,
	})

	return report, nil
}

// AssessRisk classifies the symbol's dividend trend.
func (s *Service) AssessRisk(ctx context.Context, symbol string) (RiskLevel, error) {
	history, err := s.provider.FetchDividendHistory(ctx, symbol)
	if err != nil {
		return "", fmt.Errorf("failed to fetch dividend history for %s: %w", symbol, err)
	}
	return ClassifyRisk(history), nil
}

// ProjectGrowth predicts the next horizon payouts for the symbol.
// Returns ErrInsufficientData for short histories.
func (s *Service) ProjectGrowth(ctx context.Context, symbol string, horizon int) ([]float64, error) {
	history, err := s.provider.FetchDividendHistory(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dividend history for %s: %w", symbol, err)
	}
	return s.projector.Project(history, horizon)
}

// History returns the symbol's payouts in ascending order.
func (s *Service) History(ctx context.Context, symbol string) ([]Observation, error) {
	history, err := s.provider.FetchDividendHistory(ctx, symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dividend history for %s: %w", symbol, err)
	}
	return history, nil
}

// RankSymbols ranks a plain symbol list by yield only. A symbol without a
// yield ranks with 0% instead of being dropped.
func (s *Service) RankSymbols(ctx context.Context, symbols []string) ([]YieldRecord, error) {
	records := make([]YieldRecord, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i, symbol := range symbols {
		i, symbol := i, symbol
		g.Go(func() error {
			records[i] = YieldRecord{Symbol: symbol}
			yield, err := s.provider.FetchYieldPercent(gctx, symbol)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				s.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to fetch yield, ranking at 0%")
				return nil
			}
			if yield != nil && *yield > 0 {
				records[i].YieldPercent = formulas.Round2(*yield)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return Rank(records), nil
}

// RankSectors ranks every sector of the configured universe.
func (s *Service) RankSectors(ctx context.Context) (SectorRanking, error) {
	timer := utils.NewTimer("rank_sectors", s.log)
	defer timer.Stop()

	sectors, err := s.sectors.SectorMap()
	if err != nil {
		return nil, fmt.Errorf("failed to load sectors: %w", err)
	}

	records, err := s.prefetchRecords(ctx, allSymbols(sectors))
	if err != nil {
		return nil, err
	}

	ranking := RankBySector(sectors, MapLookup(records))
	for sector, ranked := range ranking {
		if len(ranked) == 0 {
			s.log.Warn().Str("sector", sector).Msg("No valid dividend data for sector")
		}
	}

	return ranking, nil
}

// StreamSectorRankings ranks sectors one at a time in name order, handing each
// result to fn as soon as it is ready. An error from fn stops the stream.
func (s *Service) StreamSectorRankings(ctx context.Context, fn func(sector string, records []YieldRecord) error) error {
	sectors, err := s.sectors.SectorMap()
	if err != nil {
		return fmt.Errorf("failed to load sectors: %w", err)
	}

	for _, sector := range SortedSectors(sectors) {
		records, err := s.prefetchRecords(ctx, sectors[sector])
		if err != nil {
			return err
		}
		ranking := RankBySector(map[string][]string{sector: sectors[sector]}, MapLookup(records))
		if err := fn(sector, ranking[sector]); err != nil {
			return err
		}
	}

	return nil
}

// prefetchRecords resolves yield records concurrently. Symbols whose lookup
// fails are logged and left out.
func (s *Service) prefetchRecords(ctx context.Context, symbols []string) (map[string]YieldRecord, error) {
	var mu sync.Mutex
	records := make(map[string]YieldRecord, len(symbols))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for _, symbol := range symbols {
		symbol := symbol
		g.Go(func() error {
			record, err := s.GetYieldRecord(gctx, symbol)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				s.log.Warn().Err(err).Str("symbol", symbol).Msg("Skipping symbol without usable dividend data")
				return nil
			}
			if record == nil {
				return nil
			}
			mu.Lock()
			records[symbol] = *record
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return records, nil
}

func (s *Service) emit(eventType events.EventType, data map[string]interface{}) {
	if s.events != nil {
		s.events.Emit(eventType, "dividends", data)
	}
}

// SortedSectors returns the sector names of a universe or ranking in name order.
func SortedSectors[V any](sectors map[string]V) []string {
	names := make([]string, 0, len(sectors))
	for name := range sectors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func allSymbols(sectors map[string][]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, name := range SortedSectors(sectors) {
		for _, symbol := range sectors[name] {
			if _, ok := seen[symbol]; ok {
				continue
			}
			seen[symbol] = struct{}{}
			out = append(out, symbol)
		}
	}
	return out
}
