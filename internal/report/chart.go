package report

import (
	"errors"
	"fmt"
	"io"

	"github.com/wcharczuk/go-chart/v2"

	"expenses/internal/core"
)

// ErrNothingToChart is returned when no category has any spend.
var ErrNothingToChart = errors.New("no category spending to chart")

// WriteChart renders per-category spend as a PNG bar chart. Categories over
// their budget are drawn in red.
func WriteChart(w io.Writer, r core.Report) error {
	bars := make([]chart.Value, 0, len(r.Categories))
	hasSpend := false
	for _, c := range r.Categories {
		if c.Spent.Cents != 0 {
			hasSpend = true
		}
		color := chart.ColorBlue
		if c.Remaining.Cents < 0 {
			color = chart.ColorRed
		}
		bars = append(bars, chart.Value{
			Label: c.Name,
			Value: c.Spent.Dollars(),
			Style: chart.Style{
				StrokeColor: color,
				FillColor:   color,
				FontSize:    10,
				FontColor:   chart.ColorBlack,
			},
		})
	}
	if !hasSpend {
		return ErrNothingToChart
	}

	graph := chart.BarChart{
		Title: fmt.Sprintf("Spending by category, %s", r.AsOf.Format("January 2006")),
		TitleStyle: chart.Style{
			FontSize:  14,
			FontColor: chart.ColorBlack,
		},
		Width:    1200,
		Height:   600,
		BarWidth: 60,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    50,
				Left:   50,
				Right:  50,
				Bottom: 50,
			},
			FillColor: chart.ColorWhite,
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				return fmt.Sprintf("$%.0f", v.(float64))
			},
			Style: chart.Style{
				FontSize:  12,
				FontColor: chart.ColorBlack,
			},
		},
		Bars: bars,
	}

	if err := graph.Render(chart.PNG, w); err != nil {
		return fmt.Errorf("render spending chart: %w", err)
	}
	return nil
}
