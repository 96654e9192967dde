package charts

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/aristath/divscout/internal/modules/dividends"
	"github.com/aristath/divscout/pkg/formulas"
)

// ErrNoData is returned when asked to chart an empty history.
var ErrNoData = errors.New("no dividend history to chart")

// SMAPeriod is the number of payouts averaged by the trend overlay.
const SMAPeriod = 4

var (
	payoutColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	trendColor  = color.RGBA{R: 255, G: 127, B: 14, A: 255}
)

// ChartDataPoint represents a single point on a chart
type ChartDataPoint struct {
	Time  string  `json:"time"` // YYYY-MM-DD format
	Value float64 `json:"value"`
}

// Series is the data behind a dividend chart.
type Series struct {
	Symbol  string           `json:"symbol"`
	Payouts []ChartDataPoint `json:"payouts"`
	Trend   []ChartDataPoint `json:"trend"` // SMAPeriod-payout moving average, empty for short histories
}

// BuildSeries converts a payout history into chart points.
func BuildSeries(symbol string, history []dividends.Observation) Series {
	series := Series{
		Symbol:  symbol,
		Payouts: make([]ChartDataPoint, len(history)),
		Trend:   []ChartDataPoint{},
	}
	for i, o := range history {
		series.Payouts[i] = ChartDataPoint{Time: o.Date.Format("2006-01-02"), Value: o.Amount}
	}

	sma := formulas.MovingAverage(dividends.Amounts(history), SMAPeriod)
	offset := len(history) - len(sma)
	for i, v := range sma {
		series.Trend = append(series.Trend, ChartDataPoint{
			Time:  series.Payouts[offset+i].Time,
			Value: formulas.Round2(v),
		})
	}

	return series
}

// Renderer draws dividend history charts as PNG images.
type Renderer struct {
	Width  vg.Length
	Height vg.Length
}

// NewRenderer returns a renderer producing 6x4 inch images.
func NewRenderer() *Renderer {
	return &Renderer{Width: 6 * vg.Inch, Height: 4 * vg.Inch}
}

// Render plots payouts against time with a moving-average trend line.
func (r *Renderer) Render(symbol string, history []dividends.Observation) ([]byte, error) {
	if len(history) == 0 {
		return nil, ErrNoData
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Dividend Trend for %s", symbol)
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Dividend Amount ($)"
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006"}
	p.Y.Min = 0
	p.Add(plotter.NewGrid())

	payouts := make(plotter.XYs, len(history))
	for i, o := range history {
		payouts[i].X = unixSeconds(o.Date)
		payouts[i].Y = o.Amount
	}

	line, points, err := plotter.NewLinePoints(payouts)
	if err != nil {
		return nil, fmt.Errorf("failed to build payout line: %w", err)
	}
	line.Color = payoutColor
	points.Color = payoutColor
	points.Radius = vg.Points(2)
	p.Add(line, points)
	p.Legend.Add("Dividend", line, points)

	if sma := formulas.MovingAverage(dividends.Amounts(history), SMAPeriod); len(sma) > 0 {
		offset := len(history) - len(sma)
		trend := make(plotter.XYs, len(sma))
		for i, v := range sma {
			trend[i].X = unixSeconds(history[offset+i].Date)
			trend[i].Y = v
		}

		trendLine, err := plotter.NewLine(trend)
		if err != nil {
			return nil, fmt.Errorf("failed to build trend line: %w", err)
		}
		trendLine.Color = trendColor
		trendLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(trendLine)
		p.Legend.Add(fmt.Sprintf("%d-payout average", SMAPeriod), trendLine)
	}
	p.Legend.Top = true
	p.Legend.Left = true

	w, err := p.WriterTo(r.Width, r.Height, "png")
	if err != nil {
		return nil, fmt.Errorf("failed to create png writer: %w", err)
	}

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func unixSeconds(t time.Time) float64 {
	return float64(t.Unix())
}
