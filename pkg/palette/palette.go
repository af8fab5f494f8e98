package palette

import (
	"image/color"
	"math"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"gonum.org/v1/gonum/floats"

	"github.com/matzehuels/surveyplot/pkg/errors"
)

// Sampling window of continuous palettes.
const (
	SampleLow  = 0.15
	SampleHigh = 0.85
)

// DefaultPalette is used when neither a palette nor a color is selected.
const DefaultPalette = "RdYlGn_r"

// reverseSuffix selects the reversed variant of any palette.
const reverseSuffix = "_r"

// Palette is a continuous map from [0, 1] to colors, defined by evenly
// spaced stops and interpolated linearly in sRGB.
type Palette struct {
	Name  string
	stops []colorful.Color
}

var registry = map[string][]string{
	"viridis": {
		"#440154", "#482475", "#414487", "#355f8d", "#2a788e", "#21918c",
		"#22a884", "#44bf70", "#7ad151", "#bddf26", "#fde725",
	},
	"plasma": {
		"#0d0887", "#41049d", "#6a00a8", "#8f0da4", "#b12a90", "#cc4778",
		"#e16462", "#f2844b", "#fca636", "#fcce25", "#f0f921",
	},
	"RdYlGn": {
		"#a50026", "#d73027", "#f46d43", "#fdae61", "#fee08b", "#ffffbf",
		"#d9ef8b", "#a6d96a", "#66bd63", "#1a9850", "#006837",
	},
	"Blues": {
		"#f7fbff", "#deebf7", "#c6dbef", "#9ecae1", "#6baed6",
		"#4292c6", "#2171b5", "#08519c", "#08306b",
	},
}

// Names returns the base palette names in sorted order. Every name is also
// available with the "_r" suffix.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup returns the palette called name. Matching is case-insensitive and
// a trailing "_r" reverses the palette.
func Lookup(name string) (Palette, error) {
	base, reversed := strings.CutSuffix(strings.TrimSpace(name), reverseSuffix)
	for key, hexes := range registry {
		if !strings.EqualFold(key, base) {
			continue
		}
		p := Palette{Name: key, stops: make([]colorful.Color, len(hexes))}
		for i, h := range hexes {
			c, err := colorful.Hex(h)
			if err != nil {
				return Palette{}, errors.Wrap(errors.ErrCodeInternal, err, "palette %s stop %d", key, i)
			}
			p.stops[i] = c
		}
		if reversed {
			p = p.Reversed()
		}
		return p, nil
	}
	return Palette{}, errors.New(errors.ErrCodeInvalidPalette,
		"unknown palette: %q (must be one of: %s, optionally with _r)", name, strings.Join(Names(), ", "))
}

// Reversed returns the palette traversed from 1 to 0.
func (p Palette) Reversed() Palette {
	name, isReversed := strings.CutSuffix(p.Name, reverseSuffix)
	if !isReversed {
		name = p.Name + reverseSuffix
	}
	out := Palette{Name: name, stops: make([]colorful.Color, len(p.stops))}
	for i, c := range p.stops {
		out.stops[len(p.stops)-1-i] = c
	}
	return out
}

// At returns the color at position t, clamped to [0, 1].
func (p Palette) At(t float64) colorful.Color {
	switch len(p.stops) {
	case 0:
		return colorful.Color{}
	case 1:
		return p.stops[0]
	}
	t = math.Max(0, math.Min(1, t))
	pos := t * float64(len(p.stops)-1)
	i := int(math.Floor(pos))
	if i >= len(p.stops)-1 {
		return p.stops[len(p.stops)-1]
	}
	return p.stops[i].BlendRgb(p.stops[i+1], pos-float64(i)).Clamped()
}

// Sample returns n colors taken at evenly spaced points of
// [SampleLow, SampleHigh]. A single sample sits at SampleLow.
func (p Palette) Sample(n int) []colorful.Color {
	if n <= 0 {
		return nil
	}
	ts := []float64{SampleLow}
	if n > 1 {
		ts = floats.Span(make([]float64, n), SampleLow, SampleHigh)
	}
	out := make([]colorful.Color, n)
	for i, t := range ts {
		out[i] = p.At(t)
	}
	return out
}

// Shades returns n variants of base, channel-scaled by 0.5 + i/n and
// clamped at 1: the first shade is the darkest. Channels are quantized to
// 8 bits.
func Shades(base colorful.Color, n int) []colorful.Color {
	out := make([]colorful.Color, n)
	for i := range out {
		f := 0.5 + 1.0*float64(i)/float64(n)
		out[i] = colorful.Color{
			R: quantize(math.Min(1, base.R*f)),
			G: quantize(math.Min(1, base.G*f)),
			B: quantize(math.Min(1, base.B*f)),
		}
	}
	return out
}

func quantize(v float64) float64 {
	return math.RoundToEven(v*255) / 255
}

// Reverse returns cs in reverse order without modifying it.
func Reverse(cs []colorful.Color) []colorful.Color {
	out := make([]colorful.Color, len(cs))
	for i, c := range cs {
		out[len(cs)-1-i] = c
	}
	return out
}

// Luminance returns the perceived brightness 0.299R + 0.587G + 0.114B of c
// in [0, 1].
func Luminance(c color.Color) float64 {
	r, g, b, a := c.RGBA()
	if a == 0 {
		return 1
	}
	// Undo alpha premultiplication.
	rf := float64(r) / float64(a)
	gf := float64(g) / float64(a)
	bf := float64(b) / float64(a)
	return 0.299*rf + 0.587*gf + 0.114*bf
}

// TextColor returns white for fills darker than 0.5 luminance, black
// otherwise.
func TextColor(fill color.Color) color.Color {
	if Luminance(fill) < 0.5 {
		return color.White
	}
	return color.Black
}
