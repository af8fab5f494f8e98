package chart

import (
	"image/color"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/matzehuels/surveyplot/pkg/palette"
)

const (
	donutWidth    = 8 * vg.Inch
	donutHeight   = 6 * vg.Inch
	donutTitlePad = vg.Length(20)
	donutRing     = 0.3  // ring width as a fraction of the radius
	donutLabelAt  = 0.85 // label distance as a fraction of the radius
)

// Donut builds a donut chart of values. A white synthetic slice equal to
// the sum of all values is appended, so the real slices fill the upper half
// of the ring and the visible view is cropped to that half. Slice labels
// show the value and its share of the real total; the synthetic slice has
// no label and no legend entry.
func Donut(labels []string, values []float64, style Style) (*Figure, error) {
	if err := checkCategories(KindDonut, labels); err != nil {
		return nil, err
	}
	if err := checkValues(KindDonut, "values", len(labels), values); err != nil {
		return nil, err
	}
	if err := checkNonNegative(KindDonut, "values", values); err != nil {
		return nil, err
	}

	resolved, err := palette.Resolve(len(labels), style.Colors)
	if err != nil {
		return nil, err
	}
	// Palette samples run dark to light from the first slice; single-color
	// shades keep their darkest-first order.
	if strings.TrimSpace(style.Colors.Palette) != "" || strings.TrimSpace(style.Colors.Color) == "" {
		resolved = palette.Reverse(resolved)
	}
	colors := toColors(resolved)

	total := floats.Sum(values)
	pct := shares(values)

	p := newPlot(style.Title, donutTitlePad)
	fig := &Figure{Kind: KindDonut, Width: donutWidth, Height: donutHeight, plot: p}

	d := &donut{
		textStyle: labelStyle(color.Black, draw.XCenter),
		edge:      draw.LineStyle{Color: color.White, Width: vg.Points(1)},
	}
	legend := newLegend()
	legend.TextStyle.Font = font.From(sansFont, labelSize)
	for i, v := range values {
		txt := labelText(v, pct[i])
		d.slices = append(d.slices, wedge{value: v, color: colors[i], text: txt})
		legend.Add(labels[i], swatch{color: colors[i]})
		fig.Labels = append(fig.Labels, Label{
			Category:  labels[i],
			Value:     v,
			Percent:   pct[i],
			Text:      txt,
			TextColor: color.Black,
		})
	}

	// The center slice mirrors the real total.
	center := Label{Value: total, TextColor: color.Black, Synthetic: true}
	if total > 0 {
		center.Percent = 50
	}
	d.slices = append(d.slices, wedge{value: total, color: color.White, synthetic: true})
	fig.Labels = append(fig.Labels, center)

	p.Add(d)
	p.HideAxes()
	p.X.Min, p.X.Max = -1, 1
	p.Y.Min, p.Y.Max = 0, 1
	setAxisLabels(p, style, "", "")

	fig.after = append(fig.after, func(p *plot.Plot, c draw.Canvas) {
		drawCentered(&legend, p, c)
	})
	return fig, nil
}

type wedge struct {
	value     float64
	color     color.Color
	text      string
	synthetic bool
}

// donut draws wedges counter-clockwise from angle 0 around the bottom
// center of the data area.
type donut struct {
	slices    []wedge
	textStyle text.Style
	edge      draw.LineStyle
}

func (d *donut) Plot(c draw.Canvas, _ *plot.Plot) {
	var sum float64
	for _, s := range d.slices {
		sum += s.value
	}
	if sum <= 0 {
		return
	}

	w := c.Max.X - c.Min.X
	h := c.Max.Y - c.Min.Y
	r := vg.Length(math.Min(float64(w)/2.2, float64(h)/1.05))
	if r <= 0 {
		return
	}
	o := vg.Point{X: c.Min.X + w/2, Y: c.Min.Y}

	angle := 0.0
	for _, s := range d.slices {
		sweep := 2 * math.Pi * s.value / sum
		if sweep > 0 {
			pts := ringSegment(o, r*(1-donutRing), r, angle, angle+sweep)
			c.FillPolygon(s.color, c.ClipPolygonXY(pts))
			c.StrokeLines(d.edge, c.ClipLinesXY(append(pts, pts[0]))...)
		}
		if !s.synthetic {
			mid := angle + sweep/2
			at := vg.Point{
				X: o.X + r*donutLabelAt*vg.Length(math.Cos(mid)),
				Y: o.Y + r*donutLabelAt*vg.Length(math.Sin(mid)),
			}
			c.FillText(d.textStyle, at, s.text)
		}
		angle += sweep
	}
}

// ringSegment returns the outline of the ring section between the inner and
// outer radius spanning angles a0 to a1, sampled about once per degree.
func ringSegment(o vg.Point, inner, outer vg.Length, a0, a1 float64) []vg.Point {
	steps := int(math.Ceil((a1 - a0) * 180 / math.Pi))
	if steps < 2 {
		steps = 2
	}
	pts := make([]vg.Point, 0, 2*(steps+1))
	for i := 0; i <= steps; i++ {
		a := a0 + (a1-a0)*float64(i)/float64(steps)
		pts = append(pts, vg.Point{X: o.X + outer*vg.Length(math.Cos(a)), Y: o.Y + outer*vg.Length(math.Sin(a))})
	}
	for i := steps; i >= 0; i-- {
		a := a0 + (a1-a0)*float64(i)/float64(steps)
		pts = append(pts, vg.Point{X: o.X + inner*vg.Length(math.Cos(a)), Y: o.Y + inner*vg.Length(math.Sin(a))})
	}
	return pts
}
