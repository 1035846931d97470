package export

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"strings"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/bwierzbo/bumpsetcut-core/internal/ballistics"
	"github.com/bwierzbo/bumpsetcut-core/internal/track"
)

// ReportEntry pairs a track with its gate decision for the report.
type ReportEntry struct {
	Track    track.Track
	Decision ballistics.GateDecision
}

// WriteReport renders an HTML session report to w: a trajectory
// scatter, per-track confidence bars, and a decision table.
func WriteReport(w io.Writer, title string, entries []ReportEntry) error {
	page := components.NewPage()
	page.AddCharts(trajectoryScatter(title, entries), confidenceBars(entries))

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return fmt.Errorf("render report charts: %w", err)
	}

	// The decision table is plain HTML injected before the closing
	// body tag of the rendered page.
	doc := strings.Replace(buf.String(), "</body>", decisionTable(entries)+"</body>", 1)
	if _, err := io.WriteString(w, doc); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func trajectoryScatter(title string, entries []ReportEntry) *charts.Scatter {
	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "900px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: title, Subtitle: fmt.Sprintf("tracks=%d", len(entries))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Min: 0, Max: 1, Name: "x"}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: 1, Name: "y (flipped)"}),
	)

	for _, e := range entries {
		data := make([]opts.ScatterData, 0, len(e.Track.History))
		for _, s := range e.Track.History {
			// Image y grows down; flip so the chart reads like the frame.
			data = append(data, opts.ScatterData{Value: []interface{}{s.P.X, 1 - s.P.Y}})
		}
		name := e.Track.ID
		if e.Decision.Accept {
			name += " (accepted)"
		}
		scatter.AddSeries(name, data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 5}))
	}
	return scatter
}

func confidenceBars(entries []ReportEntry) *charts.Bar {
	x := make([]string, 0, len(entries))
	y := make([]opts.BarData, 0, len(entries))
	for _, e := range entries {
		x = append(x, e.Track.ID)
		y = append(y, opts.BarData{Value: e.Decision.Confidence})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "900px", Height: "400px"}),
		charts.WithTitleOpts(opts.Title{Title: "Gate confidence per track"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithYAxisOpts(opts.YAxis{Min: 0, Max: 1}),
	)
	bar.SetXAxis(x).
		AddSeries("confidence", y,
			charts.WithLabelOpts(opts.Label{Show: opts.Bool(true), Position: "top"}),
		)
	return bar
}

func decisionTable(entries []ReportEntry) string {
	var b strings.Builder
	b.WriteString(`<div style="margin:24px"><h3>Gate decisions</h3><table border="1" cellpadding="4" cellspacing="0">`)
	b.WriteString("<tr><th>track</th><th>samples</th><th>duration (s)</th><th>last seen</th><th>accepted</th><th>confidence</th><th>reason</th><th>movement</th></tr>")
	for _, e := range entries {
		movement := "-"
		if e.Decision.Classification != nil {
			movement = string(e.Decision.Classification.Type)
		}
		lastSeen := "-"
		if s, ok := e.Track.LastSample(); ok {
			lastSeen = fmt.Sprintf("(%.3f, %.3f) @ %.2fs", s.P.X, s.P.Y, s.T)
		}
		fmt.Fprintf(&b, "<tr><td>%s</td><td>%d</td><td>%.2f</td><td>%s</td><td>%t</td><td>%.3f</td><td>%s</td><td>%s</td></tr>",
			html.EscapeString(e.Track.ID), len(e.Track.History), e.Track.Duration(), lastSeen,
			e.Decision.Accept, e.Decision.Confidence,
			html.EscapeString(e.Decision.Reason), html.EscapeString(movement))
	}
	b.WriteString("</table></div>")
	return b.String()
}
