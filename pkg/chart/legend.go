package chart

import (
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

const (
	legendGap    = vg.Length(4)  // between the data area and the legend row
	legendColGap = vg.Length(10) // between legend columns
	legendThumb  = vg.Length(14)
)

// swatch is a filled legend thumbnail.
type swatch struct{ color color.Color }

func (s swatch) Thumbnail(c *draw.Canvas) {
	pts := []vg.Point{
		{X: c.Min.X, Y: c.Min.Y},
		{X: c.Min.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Max.Y},
		{X: c.Max.X, Y: c.Min.Y},
	}
	c.FillPolygon(s.color, c.ClipPolygonY(pts))
}

type legendEntry struct {
	name  string
	thumb plot.Thumbnailer
}

func newLegend() plot.Legend {
	l := plot.NewLegend()
	l.TextStyle.Font = font.From(sansFont, legendSize)
	l.ThumbnailWidth = legendThumb
	l.Left = true
	l.Top = true
	return l
}

// legendRow lays entries out in a single row, one column per entry.
type legendRow struct {
	cells []plot.Legend
}

func newLegendRow(entries []legendEntry) *legendRow {
	r := &legendRow{cells: make([]plot.Legend, len(entries))}
	for i, e := range entries {
		r.cells[i] = newLegend()
		r.cells[i].Add(e.name, e.thumb)
	}
	return r
}

// Height returns the height of the row.
func (r *legendRow) Height() vg.Length {
	var h vg.Length
	for i := range r.cells {
		if ch := r.cells[i].Rectangle(draw.Canvas{}).Size().Y; ch > h {
			h = ch
		}
	}
	return h
}

// drawAbove draws the row just above the plot's data area, starting at
// its left edge.
func (r *legendRow) drawAbove(p *plot.Plot, c draw.Canvas) {
	da := p.DataCanvas(c)
	h := r.Height()
	x := da.Min.X
	y := da.Max.Y + legendGap
	for i := range r.cells {
		w := r.cells[i].Rectangle(draw.Canvas{}).Size().X
		cell := draw.Canvas{
			Canvas:    c.Canvas,
			Rectangle: vg.Rectangle{Min: vg.Point{X: x, Y: y}, Max: vg.Point{X: x + w, Y: y + h}},
		}
		r.cells[i].Draw(cell)
		x += w + legendColGap
	}
}

// drawCentered draws l in the middle of the plot's data area.
func drawCentered(l *plot.Legend, p *plot.Plot, c draw.Canvas) {
	da := p.DataCanvas(c)
	size := l.Rectangle(da).Size()
	mid := da.Center()
	box := draw.Canvas{
		Canvas: c.Canvas,
		Rectangle: vg.Rectangle{
			Min: vg.Point{X: mid.X - size.X/2, Y: mid.Y - size.Y/2},
			Max: vg.Point{X: mid.X + size.X/2, Y: mid.Y + size.Y/2},
		},
	}
	l.Draw(box)
}
