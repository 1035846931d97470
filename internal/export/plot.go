// Package export renders tracked trajectories for offline review:
// static PNGs via gonum/plot and an HTML report via go-echarts.
package export

import (
	"fmt"
	"image/color"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/bwierzbo/bumpsetcut-core/internal/track"
)

// PlotTrack renders two PNGs for one track under dir: the (x, y)
// path and the vertical position over time. File names are derived
// from the track ID.
func PlotTrack(dir string, tr track.Track) error {
	if len(tr.History) == 0 {
		return fmt.Errorf("track %s has no samples to plot", tr.ID)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create plot dir: %w", err)
	}

	pathPts := make(plotter.XYs, len(tr.History))
	vertPts := make(plotter.XYs, len(tr.History))
	for i, s := range tr.History {
		pathPts[i] = plotter.XY{X: s.P.X, Y: s.P.Y}
		vertPts[i] = plotter.XY{X: s.T - tr.FirstT, Y: s.P.Y}
	}

	pathFile := filepath.Join(dir, fmt.Sprintf("%s_path.png", tr.ID))
	if err := savePlot(pathFile, fmt.Sprintf("Track %s path", tr.ID), "x (frame frac)", "y (frame frac)", pathPts, true); err != nil {
		return err
	}

	vertFile := filepath.Join(dir, fmt.Sprintf("%s_vertical.png", tr.ID))
	return savePlot(vertFile, fmt.Sprintf("Track %s vertical", tr.ID), "t (s)", "y (frame frac)", vertPts, true)
}

// savePlot writes one line-plus-scatter PNG. Image coordinates grow
// downward, so inverted flips the y axis to read like the frame.
func savePlot(file, title, xLabel, yLabel string, pts plotter.XYs, inverted bool) error {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	if inverted {
		p.Y.Scale = invertedScale{}
	}

	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("build line for %s: %w", file, err)
	}
	line.Width = vg.Points(1)
	line.Color = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	p.Add(line)

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return fmt.Errorf("build scatter for %s: %w", file, err)
	}
	scatter.Radius = vg.Points(1.5)
	scatter.Color = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	p.Add(scatter)

	if err := p.Save(8*vg.Inch, 6*vg.Inch, file); err != nil {
		return fmt.Errorf("save %s: %w", file, err)
	}
	return nil
}

// invertedScale maps the axis so larger values plot lower.
type invertedScale struct{}

func (invertedScale) Normalize(min, max, x float64) float64 {
	if max == min {
		return 0.5
	}
	return (max - x) / (max - min)
}
