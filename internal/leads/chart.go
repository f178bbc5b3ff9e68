package leads

import (
	"bytes"

	chart "github.com/wcharczuk/go-chart/v2"
)

// RenderStatusChart draws one bar per status as a PNG.
func RenderStatusChart(st Stats) ([]byte, error) {
	bars := make([]chart.Value, 0, len(Statuses))
	maxVal := 0
	for _, s := range Statuses {
		v := st.ByStatus[s]
		if v > maxVal {
			maxVal = v
		}
		bars = append(bars, chart.Value{Value: float64(v), Label: s.Label()})
	}
	// go-chart rejects an empty range
	yMax := float64(maxVal)
	if yMax <= 0 {
		yMax = 1
	}
	graph := chart.BarChart{
		Title:    "Demandes par statut",
		Width:    800,
		Height:   480,
		BarWidth: 80,
		Background: chart.Style{Padding: chart.Box{
			Top:    50,
			Left:   16,
			Right:  16,
			Bottom: 0,
		}},
		YAxis: chart.YAxis{Range: &chart.ContinuousRange{Min: 0, Max: yMax}},
		Bars:  bars,
	}
	buf := bytes.NewBuffer(nil)
	if err := graph.Render(chart.PNG, buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
