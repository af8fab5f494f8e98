// Package chart builds the three survey charts on top of gonum/plot.
//
// # Builders
//
//   - [Stacked]: one horizontal bar per series, split into category
//     segments by their share of the row total
//   - [HorizontalBar]: one bar per category, drawn in a single color
//   - [Donut]: a half ring of category slices, balanced by a white
//     synthetic slice of equal total
//
// Each builder validates its input, computes the derived numbers
// (percentages, stack offsets, colors) and returns a [Figure]. The
// computed per-segment text is exposed as [Figure.Labels] so callers and
// tests can inspect it without rasterizing anything.
//
// # Figure Lifecycle
//
// A Figure is created per render call and owned by the caller, who must
// call [Figure.Close] when done. Drawing a closed figure fails. Figures are
// not safe for concurrent use.
//
// Encoding a figure into png, jpg, pdf or svg is done by the export package,
// which draws the figure onto a vgimg, vgpdf or vgsvg canvas.
package chart
