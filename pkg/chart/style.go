package chart

import (
	"image/color"
	"math"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"
	xfont "golang.org/x/image/font"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/matzehuels/surveyplot/pkg/errors"
	"github.com/matzehuels/surveyplot/pkg/palette"
)

// Style carries the per-render presentation options shared by all builders.
// Empty axis labels keep the builder's defaults; non-empty ones are drawn
// bold.
type Style struct {
	Title  string
	XLabel string
	YLabel string
	Colors palette.Selection
}

// Font sizes in points.
const (
	titleSize  = 12
	tickSize   = 10
	labelSize  = 10
	customSize = 12
	legendSize = 8.33
)

var (
	sansFont = font.Font{Typeface: "Liberation", Variant: "Sans"}
	boldFont = font.Font{Typeface: "Liberation", Variant: "Sans", Weight: xfont.WeightBold}
)

// newPlot returns a plot with the shared theme applied: sans fonts, a
// centered title and black axis text.
func newPlot(title string, pad vg.Length) *plot.Plot {
	p := plot.New()
	p.Title.Text = title
	p.Title.Padding = pad
	p.Title.TextStyle.Font = font.From(sansFont, titleSize)

	for _, ax := range []*plot.Axis{&p.X, &p.Y} {
		ax.Tick.Label.Font = font.From(sansFont, tickSize)
		ax.Label.TextStyle.Font = font.From(sansFont, labelSize)
		ax.Label.Padding = vg.Points(4)
	}
	p.Legend.TextStyle.Font = font.From(sansFont, legendSize)
	return p
}

// setAxisLabels applies the default axis labels, replaced by bold custom
// labels where the style provides one.
func setAxisLabels(p *plot.Plot, s Style, defX, defY string) {
	set := func(ax *plot.Axis, custom, def string) {
		switch {
		case custom != "":
			ax.Label.Text = custom
			ax.Label.TextStyle.Font = font.From(boldFont, customSize)
		case def != "":
			ax.Label.Text = def
		}
	}
	set(&p.X, s.XLabel, defX)
	set(&p.Y, s.YLabel, defY)
}

// labelStyle returns a text style for segment labels.
func labelStyle(c color.Color, xa text.XAlignment) text.Style {
	return text.Style{
		Color:   c,
		Font:    font.From(sansFont, labelSize),
		XAlign:  xa,
		YAlign:  draw.YCenter,
		Handler: plot.DefaultTextHandler,
	}
}

// unpadded hides a plotter's glyph boxes and data range so that labels
// near the axis limits never shrink the data area.
type unpadded struct{ plot.Plotter }

// newLabels builds a label plotter for texts placed at xys.
func newLabels(xys plotter.XYs, texts []string, styles []text.Style) (plot.Plotter, error) {
	l, err := plotter.NewLabels(plotter.XYLabels{XYs: xys, Labels: texts})
	if err != nil {
		return nil, err
	}
	copy(l.TextStyle, styles)
	return unpadded{l}, nil
}

// fitBars returns a hook that sets the width of bars to frac of one
// category slot on the y axis, measured on the actual data canvas.
func fitBars(frac float64, bars ...*plotter.BarChart) func(*plot.Plot, draw.Canvas) {
	return func(p *plot.Plot, c draw.Canvas) {
		da := p.DataCanvas(c)
		span := p.Y.Max - p.Y.Min
		if span <= 0 {
			return
		}
		w := (da.Max.Y - da.Min.Y) * vg.Length(frac/span)
		if w <= 0 {
			return
		}
		for _, b := range bars {
			b.Width = w
		}
	}
}

// shares returns each value as a percentage of the total. A zero total
// yields all zeros.
func shares(values []float64) []float64 {
	out := make([]float64, len(values))
	total := floats.Sum(values)
	if total == 0 {
		return out
	}
	floats.ScaleTo(out, 100/total, values)
	return out
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatPercent(pct float64) string {
	return strconv.FormatFloat(pct, 'f', 0, 64) + "%"
}

// labelText renders "<value> \n<percent>%".
func labelText(v, pct float64) string {
	return formatValue(v) + " \n" + formatPercent(pct)
}

// checkValues validates one series against the category count.
func checkValues(kind Kind, name string, n int, values []float64) error {
	if len(values) != n {
		return errors.New(errors.ErrCodeRender,
			"%s chart: %q has %d values for %d categories", kind, name, len(values), n)
	}
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return errors.New(errors.ErrCodeRender, "%s chart: %q value %d is not a finite number", kind, name, i+1)
		}
	}
	return nil
}

// checkNonNegative rejects negative values for charts built from shares of
// a total, where a negative share has no segment to draw.
func checkNonNegative(kind Kind, name string, values []float64) error {
	for i, v := range values {
		if v < 0 {
			return errors.New(errors.ErrCodeRender, "%s chart: %q value %d is negative: %s", kind, name, i+1, formatValue(v))
		}
	}
	return nil
}

func checkCategories(kind Kind, categories []string) error {
	if len(categories) == 0 {
		return errors.New(errors.ErrCodeRender, "%s chart: no categories selected", kind)
	}
	return nil
}

// toColors converts resolved palette colors for gonum.
func toColors(cs []colorful.Color) []color.Color {
	out := make([]color.Color, len(cs))
	for i, c := range cs {
		out[i] = c
	}
	return out
}
