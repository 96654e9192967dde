// Package main ranks a fixed list of dividend payers by yield from the terminal,
// then projects and charts symbols chosen interactively.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/aristath/divscout/internal/config"
	"github.com/aristath/divscout/internal/di"
	"github.com/aristath/divscout/internal/modules/charts"
	"github.com/aristath/divscout/internal/modules/dividends"
	"github.com/aristath/divscout/internal/utils"
	"github.com/aristath/divscout/pkg/logger"
)

type options struct {
	project string
	chart   string
	outDir  string
}

func main() {
	var opts options
	flag.StringVar(&opts.project, "project", "", "symbol to project (skips the prompt)")
	flag.StringVar(&opts.chart, "chart", "", "symbol to chart (skips the prompt)")
	flag.StringVar(&opts.outDir, "out", ".", "directory to write chart images to")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "divfinder:", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: true})
	logger.SetGlobalLogger(log)

	market, _, _, err := di.NewMarketData(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create market data client")
	}

	service := dividends.NewService(market, nil, nil, nil, dividends.ServiceConfig{
		Horizon:     cfg.ProjectionHorizon,
		Concurrency: cfg.RankingConcurrency,
	}, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cli := &finder{
		service:  service,
		renderer: charts.NewRenderer(),
		in:       bufio.NewScanner(os.Stdin),
		out:      os.Stdout,
		log:      log,
	}
	if err := cli.run(ctx, cfg.DivfinderSymbols, opts); err != nil {
		log.Fatal().Err(err).Msg("divfinder failed")
	}
}

type finder struct {
	service  *dividends.Service
	renderer *charts.Renderer
	in       *bufio.Scanner
	out      io.Writer
	log      zerolog.Logger
}

func (f *finder) run(ctx context.Context, symbols []string, opts options) error {
	ranked, err := f.service.RankSymbols(ctx, symbols)
	if err != nil {
		return fmt.Errorf("failed to rank symbols: %w", err)
	}

	fmt.Fprintln(f.out, "Top dividend stocks by yield:")
	fmt.Fprintf(f.out, "%-8s %8s\n", "Stock", "Yield")
	for _, r := range ranked {
		fmt.Fprintf(f.out, "%-8s %7.2f%%\n", r.Symbol, r.YieldPercent)
	}
	fmt.Fprintln(f.out)

	symbol := f.symbol(opts.project, "Enter a stock symbol to project dividend growth: ")
	if symbol != "" {
		f.printProjection(ctx, symbol)
	}

	symbol = f.symbol(opts.chart, "Enter a stock symbol to chart its dividend trend: ")
	if symbol != "" {
		if err := f.writeChart(ctx, symbol, opts.outDir); err != nil {
			return err
		}
	}

	return nil
}

// symbol returns the flag value when set, otherwise prompts for one line.
// An empty or invalid answer skips the step.
func (f *finder) symbol(flagValue, prompt string) string {
	raw := flagValue
	if raw == "" {
		fmt.Fprint(f.out, prompt)
		if !f.in.Scan() {
			fmt.Fprintln(f.out)
			return ""
		}
		raw = f.in.Text()
	}

	symbol := utils.SanitizeSymbol(strings.TrimSpace(raw))
	if symbol == "" {
		return ""
	}
	if !utils.ValidSymbol(symbol) {
		fmt.Fprintf(f.out, "%q is not a valid stock symbol.\n", raw)
		return ""
	}
	return symbol
}

func (f *finder) printProjection(ctx context.Context, symbol string) {
	projection, err := f.service.ProjectGrowth(ctx, symbol, f.service.Horizon())
	if err != nil {
		f.log.Debug().Err(err).Str("symbol", symbol).Msg("Projection unavailable")
		fmt.Fprintf(f.out, "Not enough dividend history to project %s.\n", symbol)
		return
	}

	fmt.Fprintf(f.out, "Projected dividends for %s:\n", symbol)
	for i, v := range projection {
		fmt.Fprintf(f.out, "Year %d: $%.2f\n", i+1, v)
	}
}

func (f *finder) writeChart(ctx context.Context, symbol, outDir string) error {
	history, err := f.service.History(ctx, symbol)
	if err != nil {
		return err
	}

	png, err := f.renderer.Render(symbol, history)
	if err != nil {
		fmt.Fprintf(f.out, "No dividend data to chart for %s.\n", symbol)
		return nil
	}

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(outDir, charts.FileName(symbol))
	if err := os.WriteFile(path, png, 0644); err != nil {
		return fmt.Errorf("failed to write chart: %w", err)
	}

	fmt.Fprintf(f.out, "Chart saved to %s\n", path)
	return nil
}
