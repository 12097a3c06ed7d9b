package chart

import (
	"bytes"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/jtrask/folio/internal/core"
)

// Options controls chart rendering
type Options struct {
	Width  int
	Height int
	Title  string
}

// DefaultOptions returns the standard portfolio chart dimensions
func DefaultOptions() Options {
	return Options{
		Width:  900,
		Height: 450,
		Title:  "Portfolio Value + Cash vs Total Invested (Daily)",
	}
}

// Render draws the daily valuation curve against the invested-capital step
// function and returns raw PNG bytes. Needs at least two samples to draw a
// line.
func Render(samples []core.DailySample, opts Options) ([]byte, error) {
	if len(samples) < 2 {
		return nil, core.WrapError(core.ErrNoData,
			fmt.Errorf("need at least 2 samples, got %d", len(samples)))
	}

	xValues := make([]time.Time, len(samples))
	investedY := make([]float64, len(samples))
	valueY := make([]float64, len(samples))
	for i, s := range samples {
		xValues[i] = s.Date
		investedY[i] = s.TotalInvested
		valueY[i] = s.TotalValue
	}

	investedSeries := chart.TimeSeries{
		Name: "Total Invested",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("2563eb"), // blue
			StrokeWidth: 1.5,
		},
		XValues: xValues,
		YValues: investedY,
	}

	valueSeries := chart.TimeSeries{
		Name: "Total Money",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("16a34a"), // green
			StrokeWidth: 2.5,
		},
		XValues: xValues,
		YValues: valueY,
	}

	graph := chart.Chart{
		Title:  opts.Title,
		Width:  opts.Width,
		Height: opts.Height,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 06")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("$%.0f", f)
				}
				return ""
			},
		},
		Series: []chart.Series{
			valueSeries,
			investedSeries,
		},
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, core.WrapError(core.ErrChartFailed, err)
	}

	return buf.Bytes(), nil
}
