package chart

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"github.com/gosimple/slug"
	"go.uber.org/zap"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
)

var ErrNoData = errors.New("no data to plot")

// Supported image formats
const (
	FormatPNG = "png"
	FormatSVG = "svg"
)

// Size is a chart size in inches
type Size struct {
	Width, Height vg.Length
}

var (
	sizeWide    = Size{Width: 12 * vg.Inch, Height: 6 * vg.Inch}
	sizeDefault = Size{Width: 10 * vg.Inch, Height: 6 * vg.Inch}
	sizeSmall   = Size{Width: 10 * vg.Inch, Height: 5 * vg.Inch}
	sizeHeatmap = Size{Width: 14 * vg.Inch, Height: 8 * vg.Inch}
)

// Renderer writes chart images into a directory
type Renderer struct {
	dir    string
	format string
	log    *zap.SugaredLogger
}

// NewRenderer creates the output directory if needed
func NewRenderer(dir, format string, log *zap.SugaredLogger) (*Renderer, error) {
	if format != FormatPNG && format != FormatSVG {
		return nil, fmt.Errorf("unsupported chart format %q", format)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create chart directory: %w", err)
	}
	return &Renderer{dir: dir, format: format, log: log.Named("chart")}, nil
}

// Bar is one labelled bar
type Bar struct {
	Label string
	Value float64
}

// BarChart renders a single-series bar chart and returns the written path
func (r *Renderer) BarChart(title, yLabel string, bars []Bar, fill color.Color, size Size) (string, error) {
	if len(bars) == 0 {
		return "", ErrNoData
	}

	p := newPlot(title, yLabel)

	values := make(plotter.Values, len(bars))
	labels := make([]string, len(bars))
	for i, b := range bars {
		values[i] = b.Value
		labels[i] = b.Label
	}

	chart, err := plotter.NewBarChart(values, barWidth(size, len(bars), 1))
	if err != nil {
		return "", fmt.Errorf("failed to build bar chart: %w", err)
	}
	chart.Color = fill
	chart.LineStyle.Width = 0

	p.Add(chart)
	p.NominalX(labels...)
	rotateXLabels(p)

	return r.save(p, title, size)
}

// Series is one named group of values aligned with a shared label axis
type Series struct {
	Name   string
	Values []float64
}

// GroupedBarChart renders one bar per series next to each label
func (r *Renderer) GroupedBarChart(title, yLabel string, labels []string, series []Series, size Size) (string, error) {
	if len(labels) == 0 || len(series) == 0 {
		return "", ErrNoData
	}

	p := newPlot(title, yLabel)
	p.Legend.Top = true

	width := barWidth(size, len(labels), len(series))
	for i, s := range series {
		chart, err := plotter.NewBarChart(plotter.Values(s.Values), width)
		if err != nil {
			return "", fmt.Errorf("failed to build bars for %s: %w", s.Name, err)
		}
		chart.Color = plotutil.Color(i)
		chart.LineStyle.Width = 0
		chart.Offset = vg.Length(float64(i)-float64(len(series)-1)/2) * width

		p.Add(chart)
		p.Legend.Add(s.Name, chart)
	}
	p.NominalX(labels...)
	rotateXLabels(p)

	return r.save(p, title, size)
}

func newPlot(title, yLabel string) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = yLabel
	p.Y.Min = 0
	p.Add(plotter.NewGrid())
	return p
}

// barWidth fits groups*perGroup bars into the plot width
func barWidth(size Size, groups, perGroup int) vg.Length {
	usable := size.Width * 0.8
	w := usable / vg.Length(groups*perGroup+groups)
	return vg.Length(math.Min(float64(w), float64(vg.Points(40))))
}

func rotateXLabels(p *plot.Plot) {
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = text.XRight
	p.X.Tick.Label.YAlign = text.YCenter
}

func (r *Renderer) save(p *plot.Plot, title string, size Size) (string, error) {
	path := filepath.Join(r.dir, slug.Make(title)+"."+r.format)
	if err := p.Save(size.Width, size.Height, path); err != nil {
		return "", fmt.Errorf("failed to save %s: %w", path, err)
	}
	r.log.Debugf("Wrote %s", path)
	return path, nil
}
