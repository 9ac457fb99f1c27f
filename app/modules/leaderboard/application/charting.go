package leaderboardservice

import (
	"bytes"
	"time"

	leaderboarddb "github.com/Black-And-White-Club/envsim/app/modules/leaderboard/infrastructure/repositories"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// ChartPalette holds the colors used by rendered charts.
type ChartPalette struct {
	Background  drawing.Color
	PrimaryLine drawing.Color
	AccentLine  drawing.Color
	TextColor   drawing.Color
}

// DefaultPalette is a dark green theme.
var DefaultPalette = ChartPalette{
	Background:  drawing.ColorFromHex("0f1f17"),
	PrimaryLine: drawing.ColorFromHex("3fb37f"),
	AccentLine:  drawing.ColorFromHex("e0c35a"),
	TextColor:   drawing.ColorFromHex("e6efe9"),
}

// GenerateRankHistoryChart produces a PNG line chart of a user's rank over
// time, with rank 1 at the top. Fewer than two points render a placeholder.
func GenerateRankHistoryChart(history []leaderboarddb.RankPoint, palette ChartPalette) ([]byte, error) {
	if len(history) < 2 {
		return renderNoDataPlaceholder(palette)
	}

	xValues := make([]time.Time, len(history))
	yValues := make([]float64, len(history))
	worst := 1
	for i, p := range history {
		xValues[i] = p.TakenAt
		yValues[i] = float64(p.Rank)
		if p.Rank > worst {
			worst = p.Rank
		}
	}

	mainSeries := chart.TimeSeries{
		Name:    "Rank",
		XValues: xValues,
		YValues: yValues,
		Style: chart.Style{
			StrokeColor: palette.PrimaryLine,
			StrokeWidth: 2,
			DotWidth:    4,
			DotColor:    palette.AccentLine,
		},
	}

	graph := chart.Chart{
		Width:  800,
		Height: 400,
		Background: chart.Style{
			FillColor: palette.Background,
		},
		Canvas: chart.Style{
			FillColor: palette.Background,
		},
		XAxis: chart.XAxis{
			Name:           "Date",
			ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01-02"),
			Style: chart.Style{
				FontColor: palette.TextColor,
			},
		},
		YAxis: chart.YAxis{
			Name: "Rank",
			Style: chart.Style{
				FontColor: palette.TextColor,
			},
			// Fixed bounds keep a flat history renderable.
			Range: &chart.ContinuousRange{
				Min:        0,
				Max:        float64(worst + 1),
				Descending: true,
			},
		},
		Series: []chart.Series{mainSeries},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func renderNoDataPlaceholder(palette ChartPalette) ([]byte, error) {
	const (
		width  = 400
		height = 200
		msg    = "Not enough rank history yet"
	)

	graph := chart.Chart{
		Width:  width,
		Height: height,
		Background: chart.Style{
			FillColor: palette.Background,
		},
		Canvas: chart.Style{
			FillColor: palette.Background,
		},
		Elements: []chart.Renderable{
			func(r chart.Renderer, cb chart.Box, _ chart.Style) {
				r.SetFontColor(palette.TextColor)
				r.SetFontSize(12.0)
				tb := r.MeasureText(msg)
				x := (cb.Width() - tb.Width()) / 2
				y := (cb.Height() + tb.Height()) / 2
				r.Text(msg, x, y)
			},
		},
	}
	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
