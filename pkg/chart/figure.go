package chart

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/matzehuels/surveyplot/pkg/errors"
)

// Kind identifies the builder that produced a figure.
type Kind string

// Figure kinds.
const (
	KindStacked       Kind = "stacked"
	KindHorizontalBar Kind = "hbar"
	KindDonut         Kind = "donut"
)

// Label is the text drawn on one bar segment or slice.
type Label struct {
	Row       string      // Series name for stacked charts, empty otherwise
	Category  string      // Category the segment belongs to
	Value     float64     // Raw value
	Percent   float64     // Share in percent, 0 when the total is 0
	Text      string      // "<value> \n<percent>%"
	TextColor color.Color // Color the text is drawn in
	Synthetic bool        // Set on the donut's center slice; its text is never drawn
}

// Figure is a built chart ready to be drawn onto any vg canvas.
type Figure struct {
	Kind   Kind
	Width  vg.Length
	Height vg.Length
	Labels []Label

	plot   *plot.Plot
	top    vg.Length // space kept free above the plot when there is no title
	before []func(*plot.Plot, draw.Canvas)
	after  []func(*plot.Plot, draw.Canvas)
	closed bool
}

// Size returns the figure size in inches.
func (f *Figure) Size() (w, h float64) {
	return float64(f.Width / vg.Inch), float64(f.Height / vg.Inch)
}

// Draw renders the figure onto c. It fails after [Figure.Close].
func (f *Figure) Draw(c draw.Canvas) (err error) {
	if f == nil || f.closed || f.plot == nil {
		return errors.New(errors.ErrCodeRender, "figure is closed")
	}
	defer func() {
		if r := recover(); r != nil {
			err = errors.New(errors.ErrCodeRender, "draw %s chart: %v", f.Kind, r)
		}
	}()

	c.SetColor(color.White)
	c.Fill(c.Rectangle.Path())

	pc := c
	if f.top > 0 {
		pc = draw.Crop(c, 0, 0, 0, -f.top)
	}
	for _, fn := range f.before {
		fn(f.plot, pc)
	}
	f.plot.Draw(pc)
	for _, fn := range f.after {
		fn(f.plot, pc)
	}
	return nil
}

// Close releases the plot and its plotters. Close is idempotent.
func (f *Figure) Close() error {
	if f == nil {
		return nil
	}
	f.plot = nil
	f.before = nil
	f.after = nil
	f.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (f *Figure) Closed() bool {
	return f == nil || f.closed
}

// String describes the figure for logs.
func (f *Figure) String() string {
	w, h := f.Size()
	return fmt.Sprintf("%s chart %.1fx%.1fin, %d labels", f.Kind, w, h, len(f.Labels))
}
