package report

import (
	"bytes"
	"fmt"
	"image/color"

	"github.com/user/idf_analyzer_go/internal/analysis"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

var (
	currentColor = color.RGBA{R: 214, G: 39, B: 40, A: 255}  // red
	voltageColor = color.RGBA{R: 31, G: 119, B: 180, A: 255} // blue
)

// PlotOptions sets the rendered chart size.
type PlotOptions struct {
	Width  vg.Length
	Height vg.Length
}

// DefaultPlotOptions matches the page width used by BuildRunPDF.
var DefaultPlotOptions = PlotOptions{Width: vg.Points(800), Height: vg.Points(500)}

// PlotTitle is the heading used for a run's chart and report page.
func PlotTitle(technique, title string) string {
	return technique + ": " + title
}

// CreateRunPlot draws current (mA) and potential (V) against time as two
// vertically aligned panels sharing the time axis, and returns PNG bytes.
func CreateRunPlot(scanID string, s *analysis.RunSeries, title, technique string, opts PlotOptions) ([]byte, error) {
	if s == nil || s.Len() == 0 {
		return nil, fmt.Errorf("no samples to plot for scan %s", scanID)
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		opts = DefaultPlotOptions
	}

	currentPts := make(plotter.XYs, s.Len())
	voltagePts := make(plotter.XYs, s.Len())
	for i := range s.Time {
		currentPts[i] = plotter.XY{X: s.Time[i], Y: s.Current[i] * 1.0e3} // mA
		voltagePts[i] = plotter.XY{X: s.Time[i], Y: s.Voltage[i]}
	}

	top, err := newPanel(currentPts, "Current / mA", currentColor)
	if err != nil {
		return nil, fmt.Errorf("failed to create current panel for %s: %v", scanID, err)
	}
	top.Title.Text = PlotTitle(technique, title)

	bottom, err := newPanel(voltagePts, "Potential / V", voltageColor)
	if err != nil {
		return nil, fmt.Errorf("failed to create potential panel for %s: %v", scanID, err)
	}
	bottom.X.Label.Text = "Time / s"

	// Both panels span the same time range so the x axes line up.
	bottom.X.Min, bottom.X.Max = top.X.Min, top.X.Max

	img := vgimg.New(opts.Width, opts.Height)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      2,
		Cols:      1,
		PadTop:    vg.Points(6),
		PadBottom: vg.Points(6),
		PadLeft:   vg.Points(6),
		PadRight:  vg.Points(12),
		PadY:      vg.Points(8),
	}
	panels := [][]*plot.Plot{{top}, {bottom}}
	canvases := plot.Align(panels, tiles, dc)
	for row := range panels {
		panels[row][0].Draw(canvases[row][0])
	}

	buf := new(bytes.Buffer)
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(buf); err != nil {
		return nil, fmt.Errorf("failed to write plot to buffer: %v", err)
	}
	return buf.Bytes(), nil
}

func newPanel(pts plotter.XYs, yLabel string, c color.Color) (*plot.Plot, error) {
	p := plot.New()
	p.Y.Label.Text = yLabel
	p.Y.Label.TextStyle.Color = c
	p.Y.Tick.Label.Color = c
	p.Add(plotter.NewGrid())

	line, err := plotter.NewLine(pts)
	if err != nil {
		return nil, err
	}
	line.Color = c
	line.LineStyle.Width = vg.Points(1.5)
	p.Add(line)
	return p, nil
}
