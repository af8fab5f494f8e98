package chart

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/matzehuels/surveyplot/pkg/dataset"
	"github.com/matzehuels/surveyplot/pkg/errors"
	"github.com/matzehuels/surveyplot/pkg/palette"
)

const (
	stackedWidth     = 9.4 * vg.Inch
	stackedHeight    = 5 * vg.Inch
	stackedBarHeight = 0.7
	stackedTitlePad  = vg.Length(30)
)

// Stacked builds a stacked percentage bar chart. Each row is drawn as one
// bar from top to bottom in the given order and split into one segment per
// category, sized by the category's share of the row total. A row whose
// total is zero gets 0% everywhere.
func Stacked(categories []string, rows []dataset.Series, style Style) (*Figure, error) {
	if err := checkCategories(KindStacked, categories); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New(errors.ErrCodeRender, "%s chart: no series to plot", KindStacked)
	}
	for _, r := range rows {
		if err := checkValues(KindStacked, r.Name, len(categories), r.Values); err != nil {
			return nil, err
		}
		if err := checkNonNegative(KindStacked, r.Name, r.Values); err != nil {
			return nil, err
		}
	}

	resolved, err := palette.Resolve(len(categories), style.Colors)
	if err != nil {
		return nil, err
	}
	colors := toColors(resolved)

	// pct[i][j]: share of category j in row i; start[i][j]: its left edge.
	pct := make([][]float64, len(rows))
	start := make([][]float64, len(rows))
	for i, r := range rows {
		pct[i] = shares(r.Values)
		cum := floats.CumSum(make([]float64, len(pct[i])), pct[i])
		start[i] = make([]float64, len(cum))
		floats.SubTo(start[i], cum, pct[i])
	}

	p := newPlot(style.Title, stackedTitlePad)
	fig := &Figure{Kind: KindStacked, Width: stackedWidth, Height: stackedHeight, plot: p}

	var (
		bars    []*plotter.BarChart
		entries []legendEntry
		xys     plotter.XYs
		texts   []string
		styles  []text.Style
	)
	for j, name := range categories {
		vals := make(plotter.Values, len(rows))
		for i := range rows {
			vals[i] = pct[i][j]
		}
		b, err := plotter.NewBarChart(vals, vg.Points(1))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeRender, err, "%s chart: category %q", KindStacked, name)
		}
		b.Horizontal = true
		b.Color = colors[j]
		b.LineStyle.Width = 0
		if j > 0 {
			b.StackOn(bars[j-1])
		}
		bars = append(bars, b)
		entries = append(entries, legendEntry{name: name, thumb: swatch{color: colors[j]}})

		tc := palette.TextColor(colors[j])
		for i, r := range rows {
			v := r.Values[j]
			fig.Labels = append(fig.Labels, Label{
				Row:       r.Name,
				Category:  name,
				Value:     v,
				Percent:   pct[i][j],
				Text:      labelText(v, pct[i][j]),
				TextColor: tc,
			})
			xys = append(xys, plotter.XY{X: start[i][j] + pct[i][j]/2, Y: float64(i)})
			texts = append(texts, labelText(v, pct[i][j]))
			styles = append(styles, labelStyle(tc, draw.XCenter))
		}
	}

	for _, b := range bars {
		p.Add(b)
	}
	labels, err := newLabels(xys, texts, styles)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeRender, err, "%s chart labels", KindStacked)
	}
	p.Add(labels)

	names := make([]string, len(rows))
	for i, r := range rows {
		names[i] = r.Name
	}
	p.NominalY(names...)
	p.Y.Scale = plot.InvertedScale{Normalizer: plot.LinearScale{}}
	p.Y.Min, p.Y.Max = -0.5, float64(len(rows))-0.5
	p.X.Min, p.X.Max = 0, 100
	p.X.Tick.Marker = percentTicks()
	setAxisLabels(p, style, "", "")

	legend := newLegendRow(entries)
	if room := legend.Height() + 2*legendGap; p.Title.Text == "" {
		fig.top = room
	} else if room > p.Title.Padding {
		p.Title.Padding = room
	}

	fig.before = append(fig.before, fitBars(stackedBarHeight, bars...))
	fig.after = append(fig.after, legend.drawAbove)
	return fig, nil
}

// percentTicks marks 0..100 in steps of 20 without tick labels.
func percentTicks() plot.ConstantTicks {
	ticks := make(plot.ConstantTicks, 0, 6)
	for v := 0.0; v <= 100; v += 20 {
		ticks = append(ticks, plot.Tick{Value: v})
	}
	return ticks
}
