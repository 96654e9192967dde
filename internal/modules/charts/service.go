// Package charts renders dividend history charts and publishes them to a store.
package charts

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/aristath/divscout/internal/events"
	"github.com/aristath/divscout/internal/modules/dividends"
)

// Service renders charts and publishes them to the configured store.
type Service struct {
	renderer *Renderer
	store    Store
	events   *events.Manager
	log      zerolog.Logger
}

// NewService creates a new charts service
func NewService(renderer *Renderer, store Store, eventManager *events.Manager, log zerolog.Logger) *Service {
	return &Service{
		renderer: renderer,
		store:    store,
		events:   eventManager,
		log:      log.With().Str("service", "charts").Logger(),
	}
}

// Render returns the PNG chart for a history without storing it.
func (s *Service) Render(symbol string, history []dividends.Observation) ([]byte, error) {
	return s.renderer.Render(symbol, history)
}

// Publish renders the chart, stores it and returns its URL.
func (s *Service) Publish(ctx context.Context, symbol string, history []dividends.Observation) (string, error) {
	png, err := s.renderer.Render(symbol, history)
	if err != nil {
		return "", err
	}

	url, err := s.store.Save(ctx, FileName(symbol), png)
	if err != nil {
		if s.events != nil {
			s.events.EmitError("charts", err, map[string]interface{}{"symbol": symbol})
		}
		return "", fmt.Errorf("failed to store chart for %s: %w", symbol, err)
	}

	s.log.Info().Str("symbol", symbol).Str("url", url).Msg("Published dividend chart")
	if s.events != nil {
		s.events.Emit(events.ChartPublished, "charts", map[string]interface{}{
			"symbol": symbol,
			"url":    url,
			"bytes":  len(png),
		})
	}

	return url, nil
}
