package export

import (
	"bytes"
	"fmt"

	"github.com/wcharczuk/go-chart/v2"

	"github.com/Dosada05/card-league/standings"
)

// RenderWinsChart draws total wins per team, in ranking order, as a PNG.
func RenderWinsChart(res *standings.Result) ([]byte, error) {
	if res.Empty() {
		return nil, ErrNoResults
	}

	bars := make([]chart.Value, 0, len(res.Teams))
	for _, team := range res.Teams {
		bars = append(bars, chart.Value{
			Label: fmt.Sprintf("#%d %s", team.TeamNumber, team.Name),
			Value: float64(res.Matrix.Totals(team.ID).Wins),
		})
	}

	width := 120 * len(bars)
	if width < 640 {
		width = 640
	}
	graph := chart.BarChart{
		Title:    "Wins",
		Width:    width,
		Height:   400,
		BarWidth: 60,
		Background: chart.Style{
			Padding: chart.Box{Top: 40},
		},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: float64(max(res.NumRounds, 1))},
		},
		Bars: bars,
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("failed to render wins chart: %w", err)
	}
	return buf.Bytes(), nil
}
