package report

import (
	"bytes"
	"fmt"
	"image/color"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/user/accuracy_plotter_go/internal/analysis"
)

// Accuracy axis layout shared by every chart.
const (
	accuracyMin      = -5.0
	accuracyMax      = 105.0
	accuracyTickStep = 10.0
	thresholdStep    = 0.1
)

// SupportedFormats lists the image formats charts can be written in.
var SupportedFormats = []string{"png", "pdf", "svg"}

// ChartOptions controls the rendered size and format of a chart.
type ChartOptions struct {
	Format string
	Width  vg.Length
	Height vg.Length
}

// DefaultChartOptions returns a 12x7 inch PNG.
func DefaultChartOptions() ChartOptions {
	return ChartOptions{Format: "png", Width: 12 * vg.Inch, Height: 7 * vg.Inch}
}

// IsSupportedFormat reports whether format can be rendered.
func IsSupportedFormat(format string) bool {
	for _, f := range SupportedFormats {
		if strings.EqualFold(f, format) {
			return true
		}
	}
	return false
}

// baselineColors are used in order for series without levels.
var baselineColors = []color.Color{
	color.RGBA{R: 255, A: 255}, // Red
	color.RGBA{B: 255, A: 255}, // Blue
	color.RGBA{G: 128, B: 128, A: 255},
	color.RGBA{R: 128, B: 128, A: 255},
}

// starGlyph draws a cross over a plus, the closest thing to a star marker.
type starGlyph struct{}

func (starGlyph) DrawGlyph(c *draw.Canvas, sty draw.GlyphStyle, pt vg.Point) {
	draw.CrossGlyph{}.DrawGlyph(c, sty, pt)
	draw.PlusGlyph{}.DrawGlyph(c, sty, pt)
}

// xMapping converts series keys to plot x coordinates.
type xMapping struct {
	mixed  bool
	lo, hi float64
}

func (m xMapping) threshold(t float64) float64 {
	if !m.mixed {
		return t
	}
	return m.lo + t*(m.hi-m.lo)
}

// neuronRange returns the extent of every neuron-indexed key.
func neuronRange(data *analysis.DatasetAnalysis) (lo, hi float64, ok bool) {
	for _, s := range data.Series {
		if s.ThresholdIndexed {
			continue
		}
		for _, p := range s.Points {
			if !ok {
				lo, hi, ok = p.Key, p.Key, true
				continue
			}
			if p.Key < lo {
				lo = p.Key
			}
			if p.Key > hi {
				hi = p.Key
			}
		}
	}
	if ok && lo == hi {
		lo, hi = lo-1, hi+1
	}
	return lo, hi, ok
}

// NewAccuracyPlot builds the comparison chart for one dataset.
// Empty series are left out; a dataset with no points yields an empty chart.
func NewAccuracyPlot(data *analysis.DatasetAnalysis) (*plot.Plot, error) {
	if data == nil {
		return nil, fmt.Errorf("no dataset analysis to plot")
	}

	p := plot.New()
	p.Title.Text = fmt.Sprintf("Accuracy for dataset %q", data.Dataset)
	p.Y.Label.Text = "Accuracy, %"
	p.Y.Min = accuracyMin
	p.Y.Max = accuracyMax
	p.Y.Tick.Marker = plot.ConstantTicks(generateTicks(0, 100, accuracyTickStep, "%.0f"))
	p.Add(plotter.NewGrid())

	hasNeurons := data.HasNeuronSeries()
	hasThreshold := data.HasThresholdSeries()

	mapping := xMapping{}
	switch {
	case hasNeurons && hasThreshold:
		lo, hi, _ := neuronRange(data)
		mapping = xMapping{mixed: true, lo: lo, hi: hi}
		p.X.Label.Text = "Neurons / Threshold"
		p.X.Min = lo
		p.X.Max = hi
		p.X.Tick.Marker = dualTicks{Lo: lo, Hi: hi, Step: thresholdStep}
	case hasThreshold:
		p.X.Label.Text = "Threshold"
		p.X.Min = 0
		p.X.Max = 1
		p.X.Tick.Marker = plot.ConstantTicks(generateTicks(0, 1, thresholdStep, "%.1f"))
	default:
		p.X.Label.Text = "Neurons"
	}

	baselineIdx, leveledIdx := 0, 0
	for _, s := range data.Series {
		if s.IsEmpty() {
			continue
		}
		pts := make(plotter.XYs, len(s.Points))
		for i, pt := range s.Points {
			x := pt.Key
			if s.ThresholdIndexed {
				x = mapping.threshold(pt.Key)
			}
			pts[i] = plotter.XY{X: x, Y: pt.Mean}
		}

		line, points, err := plotter.NewLinePoints(pts)
		if err != nil {
			return nil, fmt.Errorf("failed to create line for %s: %w", s.Label, err)
		}
		line.LineStyle.Width = vg.Points(1.5)

		if s.Leveled {
			c := plotutil.Color(leveledIdx)
			line.Color = c
			points.Color = c
			points.Shape = starGlyph{}
			points.Radius = vg.Points(3.5)
			leveledIdx++
		} else {
			c := baselineColors[baselineIdx%len(baselineColors)]
			line.Color = c
			line.Dashes = []vg.Length{vg.Points(6), vg.Points(3)}
			points.Color = c
			points.Shape = draw.CircleGlyph{}
			points.Radius = vg.Points(2)
			baselineIdx++
		}

		p.Add(line, points)
		p.Legend.Add(s.Label, line, points)
	}

	p.Legend.Top = true
	p.Legend.XOffs = -vg.Points(10)
	return p, nil
}

// CreateAccuracyPlot renders the dataset chart in opts.Format.
func CreateAccuracyPlot(data *analysis.DatasetAnalysis, opts ChartOptions) ([]byte, error) {
	if !IsSupportedFormat(opts.Format) {
		return nil, fmt.Errorf("unsupported chart format %q (want one of %s)", opts.Format, strings.Join(SupportedFormats, ", "))
	}
	p, err := NewAccuracyPlot(data)
	if err != nil {
		return nil, err
	}
	return renderPlot(p, opts.Width, opts.Height, strings.ToLower(opts.Format))
}

func renderPlot(p *plot.Plot, width, height vg.Length, format string) ([]byte, error) {
	writer, err := p.WriterTo(width, height, format)
	if err != nil {
		return nil, fmt.Errorf("failed to create plot writer: %w", err)
	}
	buf := new(bytes.Buffer)
	if _, err := writer.WriteTo(buf); err != nil {
		return nil, fmt.Errorf("failed to write plot to buffer: %w", err)
	}
	return buf.Bytes(), nil
}
