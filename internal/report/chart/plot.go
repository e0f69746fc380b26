package chart

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	_ "gonum.org/v1/plot/vg/vgimg"
)

// TickFormat renders x axis ticks as month/day.
const TickFormat = "01/02"

// PlotOptions configures the gonum/plot renderer.
type PlotOptions struct {
	Dir        string
	WidthInch  float64
	HeightInch float64
	Format     string
}

// PlotRenderer draws charts with gonum/plot and saves each one as an image in
// Dir. Files are numbered in render order.
type PlotRenderer struct {
	dir    string
	width  vg.Length
	height vg.Length
	format string
	seq    int
}

// NewPlotRenderer initializes a PlotRenderer, creating Dir if needed.
func NewPlotRenderer(opts PlotOptions) (*PlotRenderer, error) {
	dir := strings.TrimSpace(opts.Dir)
	if dir == "" {
		return nil, errors.New("chart: output directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("chart: ensure output directory: %w", err)
	}
	width, height := opts.WidthInch, opts.HeightInch
	if width <= 0 {
		width = 14
	}
	if height <= 0 {
		height = 6
	}
	format := strings.TrimPrefix(strings.ToLower(strings.TrimSpace(opts.Format)), ".")
	if format == "" {
		format = "png"
	}
	return &PlotRenderer{
		dir:    dir,
		width:  vg.Length(width) * vg.Inch,
		height: vg.Length(height) * vg.Inch,
		format: format,
	}, nil
}

// Render draws c and returns the path of the written file.
func (r *PlotRenderer) Render(c Chart) (string, error) {
	p, err := build(c)
	if err != nil {
		return "", err
	}
	r.seq++
	path := filepath.Join(r.dir, fmt.Sprintf("%02d-%s.%s", r.seq, Slug(c.Title), r.format))
	if err := p.Save(r.width, r.height, path); err != nil {
		return "", fmt.Errorf("chart: save %s: %w", path, err)
	}
	return path, nil
}

func build(c Chart) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = c.Title
	p.X.Label.Text = c.XLabel
	p.Y.Label.Text = c.YLabel
	p.X.Tick.Marker = plot.TimeTicks{Format: TickFormat}
	p.Add(plotter.NewGrid())
	p.Legend.Top = true

	for i, line := range c.Lines {
		if len(line.Points) == 0 {
			continue
		}
		xys := toXYs(line.Points)
		l, err := plotter.NewLine(xys)
		if err != nil {
			return nil, fmt.Errorf("chart: line %q: %w", line.Name, err)
		}
		l.LineStyle.Color = plotutil.Color(i)
		l.LineStyle.Dashes = []vg.Length{vg.Points(6), vg.Points(3)}

		s, err := plotter.NewScatter(xys)
		if err != nil {
			return nil, fmt.Errorf("chart: markers %q: %w", line.Name, err)
		}
		s.GlyphStyle.Color = plotutil.Color(i)
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		s.GlyphStyle.Radius = vg.Points(2)

		p.Add(l, s)
		p.Legend.Add(line.Name, l, s)
	}

	if len(c.Annotations) > 0 {
		xys := make(plotter.XYs, len(c.Annotations))
		texts := make([]string, len(c.Annotations))
		for i, a := range c.Annotations {
			xys[i].X = float64(a.Date.Unix())
			xys[i].Y = a.Value
			texts[i] = a.Text
		}
		labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: texts})
		if err != nil {
			return nil, fmt.Errorf("chart: annotations: %w", err)
		}
		p.Add(labels)
	}

	if !c.XMin.IsZero() {
		p.X.Min = float64(c.XMin.Unix())
	}
	if !c.XMax.IsZero() {
		p.X.Max = float64(c.XMax.Unix())
	}
	return p, nil
}

func toXYs(points []Point) plotter.XYs {
	xys := make(plotter.XYs, len(points))
	for i, pt := range points {
		xys[i].X = float64(pt.Date.Unix())
		xys[i].Y = pt.Value
	}
	return xys
}
