package chart

import (
	"fmt"
	"strconv"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"

	"owcs-analyzer/internal/stats"
)

// matrixGrid adapts a team/map matrix to plotter.GridXYZ. Columns are maps,
// rows are teams.
type matrixGrid struct {
	m stats.MapMatrix
}

func (g matrixGrid) Dims() (c, r int)   { return len(g.m.Maps), len(g.m.Teams) }
func (g matrixGrid) Z(c, r int) float64 { return g.m.Values[r][c] }
func (g matrixGrid) X(c int) float64    { return float64(c) }
func (g matrixGrid) Y(r int) float64    { return float64(r) }

// Heatmap renders the team/map win rate matrix with every cell annotated
func (r *Renderer) Heatmap(title string, m stats.MapMatrix, size Size) (string, error) {
	if len(m.Teams) == 0 || len(m.Maps) == 0 {
		return "", ErrNoData
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Map"
	p.Y.Label.Text = "Team"

	colors := moreland.SmoothBlueRed()
	colors.SetMin(0)
	colors.SetMax(1)

	heat := plotter.NewHeatMap(matrixGrid{m: m}, colors.Palette(64))
	heat.Min = 0
	heat.Max = 1
	p.Add(heat)

	var points plotter.XYs
	var labels []string
	for row := range m.Teams {
		for col := range m.Maps {
			points = append(points, plotter.XY{X: float64(col), Y: float64(row)})
			labels = append(labels, strconv.FormatFloat(m.Values[row][col], 'f', 2, 64))
		}
	}
	annotations, err := plotter.NewLabels(plotter.XYLabels{XYs: points, Labels: labels})
	if err != nil {
		return "", fmt.Errorf("failed to build heatmap labels: %w", err)
	}
	for i := range annotations.TextStyle {
		annotations.TextStyle[i].XAlign = text.XCenter
		annotations.TextStyle[i].YAlign = text.YCenter
	}
	p.Add(annotations)

	p.NominalX(m.Maps...)
	p.NominalY(m.Teams...)
	rotateXLabels(p)

	return r.save(p, title, size)
}
