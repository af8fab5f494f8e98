package export

import (
	"context"
	"io"
	"strings"
	"time"

	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
	"gonum.org/v1/plot/vg/vgpdf"
	"gonum.org/v1/plot/vg/vgsvg"

	"github.com/matzehuels/surveyplot/pkg/chart"
	"github.com/matzehuels/surveyplot/pkg/errors"
	"github.com/matzehuels/surveyplot/pkg/observability"
)

// Format is an export file format.
type Format string

// Supported formats.
const (
	PNG Format = "png"
	JPG Format = "jpg"
	PDF Format = "pdf"
	SVG Format = "svg"
)

// DefaultDPI is the export resolution used when none is given.
const DefaultDPI = 300

// Formats returns the supported formats in display order.
func Formats() []Format {
	return []Format{PNG, JPG, PDF, SVG}
}

// ParseFormat parses a format name or file extension. "jpeg" is accepted
// for jpg.
func ParseFormat(s string) (Format, error) {
	f := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))
	switch f {
	case "png":
		return PNG, nil
	case "jpg", "jpeg":
		return JPG, nil
	case "pdf":
		return PDF, nil
	case "svg":
		return SVG, nil
	}
	return "", errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be png, jpg, pdf or svg)", s)
}

// ParseFormats parses a comma-separated list of formats, dropping
// duplicates.
func ParseFormats(s string) ([]Format, error) {
	var out []Format
	seen := make(map[Format]bool)
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		f, err := ParseFormat(part)
		if err != nil {
			return nil, err
		}
		if !seen[f] {
			seen[f] = true
			out = append(out, f)
		}
	}
	if len(out) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidFormat, "no format given")
	}
	return out, nil
}

// Raster reports whether the format is resolution dependent.
func (f Format) Raster() bool {
	return f == PNG || f == JPG
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case PNG:
		return "image/png"
	case JPG:
		return "image/jpeg"
	case PDF:
		return "application/pdf"
	case SVG:
		return "image/svg+xml"
	}
	return "application/octet-stream"
}

// canvas is a drawable vg canvas that can serialize itself.
type canvas interface {
	vg.CanvasSizer
	io.WriterTo
}

func newCanvas(f Format, w, h vg.Length, dpi int) (canvas, error) {
	switch f {
	case PNG:
		return vgimg.PngCanvas{Canvas: vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(dpi))}, nil
	case JPG:
		return vgimg.JpegCanvas{Canvas: vgimg.NewWith(vgimg.UseWH(w, h), vgimg.UseDPI(dpi))}, nil
	case PDF:
		return vgpdf.New(w, h), nil
	case SVG:
		return vgsvg.New(w, h), nil
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q", f)
}

// Encode draws fig in the given format and writes it to w. It returns the
// number of bytes written.
func Encode(ctx context.Context, w io.Writer, fig *chart.Figure, format Format, dpi int) (n int64, err error) {
	hooks := observability.Pipeline()
	hooks.OnEncodeStart(ctx, string(format), dpi)
	start := time.Now()
	defer func() { hooks.OnEncodeComplete(ctx, string(format), n, time.Since(start), err) }()

	if fig == nil || fig.Closed() {
		return 0, errors.New(errors.ErrCodeRender, "no figure to export")
	}
	if err := errors.ValidateDPI(dpi); err != nil {
		return 0, err
	}
	if fig.Width <= 0 || fig.Height <= 0 {
		return 0, errors.New(errors.ErrCodeRender, "figure has no size")
	}

	c, err := newCanvas(format, fig.Width, fig.Height, dpi)
	if err != nil {
		return 0, err
	}
	if err := fig.Draw(draw.New(c)); err != nil {
		return 0, err
	}
	n, err = c.WriteTo(w)
	if err != nil {
		return n, errors.Wrap(errors.ErrCodeExport, err, "encode %s", format)
	}
	return n, nil
}
