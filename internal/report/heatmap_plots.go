package report

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"

	"github.com/user/accuracy_plotter_go/internal/analysis"
)

// levelGridXYZ adapts a LevelGrid to plotter.GridXYZ. Cells are laid out on
// index positions so unevenly spaced keys still get equal width.
type levelGridXYZ struct {
	grid analysis.LevelGrid
}

func (g levelGridXYZ) Dims() (c, r int)   { return len(g.grid.Keys), len(g.grid.Levels) }
func (g levelGridXYZ) Z(c, r int) float64 { return g.grid.Means[r][c] }
func (g levelGridXYZ) X(c int) float64    { return float64(c) }
func (g levelGridXYZ) Y(r int) float64    { return float64(r) }

// NewLevelHeatmap builds a level x key heatmap of mean accuracy, each cell
// annotated with its value.
func NewLevelHeatmap(dataset string, grid analysis.LevelGrid) (*plot.Plot, error) {
	if len(grid.Levels) == 0 || len(grid.Keys) == 0 {
		return nil, fmt.Errorf("no level data to plot heatmap for %s", grid.MethodID)
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("%s: mean accuracy by %s (%s)", grid.Label, grid.LevelColumn, dataset)
	p.X.Label.Text = grid.KeyColumn
	p.Y.Label.Text = grid.LevelColumn

	xTicks := make([]plot.Tick, len(grid.Keys))
	for i, k := range grid.Keys {
		xTicks[i] = plot.Tick{Value: float64(i), Label: analysis.FormatLevel(k)}
	}
	p.X.Tick.Marker = plot.ConstantTicks(xTicks)
	p.X.Min = -0.5
	p.X.Max = float64(len(grid.Keys)) - 0.5

	yTicks := make([]plot.Tick, len(grid.Levels))
	for i, l := range grid.Levels {
		yTicks[i] = plot.Tick{Value: float64(i), Label: analysis.FormatLevel(l)}
	}
	p.Y.Tick.Marker = plot.ConstantTicks(yTicks)
	p.Y.Min = -0.5
	p.Y.Max = float64(len(grid.Levels)) - 0.5

	pal := palette.Heat(12, 1)
	hm := plotter.NewHeatMap(levelGridXYZ{grid: grid}, pal)
	hm.Min = 0
	hm.Max = 100
	hm.Underflow = pal.Colors()[0]
	hm.Overflow = pal.Colors()[len(pal.Colors())-1]
	hm.NaN = color.Gray{Y: 200} // Light gray for combinations without rows
	p.Add(hm)

	var labels plotter.XYLabels
	for r, row := range grid.Means {
		for c, v := range row {
			if math.IsNaN(v) {
				continue
			}
			labels.XYs = append(labels.XYs, plotter.XY{X: float64(c), Y: float64(r)})
			labels.Labels = append(labels.Labels, fmt.Sprintf("%.1f", v))
		}
	}
	if len(labels.XYs) > 0 {
		l, err := plotter.NewLabels(labels)
		if err != nil {
			return nil, fmt.Errorf("failed to create heatmap labels: %w", err)
		}
		for i := range l.TextStyle {
			l.TextStyle[i].XAlign = text.XCenter
			l.TextStyle[i].YAlign = text.YCenter
		}
		p.Add(l)
	}
	return p, nil
}

// CreateLevelHeatmap renders NewLevelHeatmap as PNG bytes.
func CreateLevelHeatmap(dataset string, grid analysis.LevelGrid) ([]byte, error) {
	p, err := NewLevelHeatmap(dataset, grid)
	if err != nil {
		return nil, err
	}
	return renderPlot(p, vg.Points(800), vg.Points(400), "png")
}
