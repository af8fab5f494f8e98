package chart

import (
	"image/color"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/matzehuels/surveyplot/pkg/errors"
	"github.com/matzehuels/surveyplot/pkg/palette"
)

const (
	hbarWidth     = 12 * vg.Inch
	hbarHeight    = 6 * vg.Inch
	hbarBarHeight = 0.5
	hbarTitlePad  = vg.Length(30)
	hbarTickCount = 6
	hbarHeadroom  = 1.1

	// Default axis labels.
	DefaultCountLabel    = "Anzahl"
	DefaultCategoryLabel = "Kategorien"
)

// HorizontalBar builds a bar chart with one horizontal bar per category,
// categories reading top to bottom in input order. All bars share a single
// color: the selected color as given, or the first color of the reversed
// palette sample. Labels show the value and its share of the grand total.
func HorizontalBar(categories []string, values []float64, style Style) (*Figure, error) {
	if err := checkCategories(KindHorizontalBar, categories); err != nil {
		return nil, err
	}
	if err := checkValues(KindHorizontalBar, "values", len(categories), values); err != nil {
		return nil, err
	}

	fill, err := barColor(len(categories), style.Colors)
	if err != nil {
		return nil, err
	}

	b, err := plotter.NewBarChart(plotter.Values(values), vg.Points(1))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "%s chart", KindHorizontalBar)
	}
	b.Horizontal = true
	b.Color = fill
	b.LineStyle.Width = 0

	p := newPlot(style.Title, hbarTitlePad)
	fig := &Figure{Kind: KindHorizontalBar, Width: hbarWidth, Height: hbarHeight, plot: p}

	pct := shares(values)
	xys := make(plotter.XYs, len(values))
	texts := make([]string, len(values))
	styles := make([]text.Style, len(values))
	for i, v := range values {
		x := v * 0.05
		if v == 0 {
			x = 0.1
		}
		xys[i] = plotter.XY{X: x, Y: float64(i)}
		texts[i] = labelText(v, pct[i])
		styles[i] = labelStyle(color.Black, draw.XLeft)
		fig.Labels = append(fig.Labels, Label{
			Category:  categories[i],
			Value:     v,
			Percent:   pct[i],
			Text:      texts[i],
			TextColor: color.Black,
		})
	}
	labels, err := newLabels(xys, texts, styles)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "%s chart labels", KindHorizontalBar)
	}
	p.Add(b, labels)

	p.NominalY(categories...)
	p.Y.Scale = plot.InvertedScale{Normalizer: plot.LinearScale{}}
	p.Y.Min, p.Y.Max = -0.5, float64(len(categories))-0.5

	// Negative counts draw left of zero; the ticks still span 0..1.1·max.
	top := math.Max(floats.Max(values), 0)
	ticks := countTicks(top)
	p.X.Tick.Marker = ticks
	p.X.Min = math.Min(0, floats.Min(values)*1.05)
	p.X.Max = math.Max(ticks[len(ticks)-1].Value, top*1.05)
	if p.X.Max == 0 {
		p.X.Max = 1
	}
	setAxisLabels(p, style, DefaultCountLabel, DefaultCategoryLabel)

	fig.before = append(fig.before, fitBars(hbarBarHeight, b))
	return fig, nil
}

// barColor picks the single bar color of the horizontal chart.
func barColor(n int, sel palette.Selection) (color.Color, error) {
	if strings.TrimSpace(sel.Palette) == "" && strings.TrimSpace(sel.Color) != "" {
		c, err := palette.ParseColor(sel.Color)
		if err != nil {
			return nil, err
		}
		return c, nil
	}
	cs, err := palette.Resolve(n, sel)
	if err != nil {
		return nil, err
	}
	return palette.Reverse(cs)[0], nil
}

// countTicks returns evenly spaced ticks from 0 to 1.1 times the largest
// bar value, truncated to integers.
func countTicks(top float64) plot.ConstantTicks {
	vals := floats.Span(make([]float64, hbarTickCount), 0, top*hbarHeadroom)
	ticks := make(plot.ConstantTicks, len(vals))
	for i, v := range vals {
		n := int(v)
		ticks[i] = plot.Tick{Value: float64(n), Label: strconv.Itoa(n)}
	}
	return ticks
}
