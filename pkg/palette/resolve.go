package palette

import (
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/matzehuels/surveyplot/pkg/errors"
)

// Selection is the user's color choice for one render. Palette wins over
// Color; an empty selection means the default palette.
type Selection struct {
	Color   string `json:"color,omitempty" toml:"color"`
	Palette string `json:"palette,omitempty" toml:"palette"`
}

// IsZero reports whether nothing was selected.
func (s Selection) IsZero() bool {
	return strings.TrimSpace(s.Color) == "" && strings.TrimSpace(s.Palette) == ""
}

// Resolve produces n colors for sel:
//
//   - palette set: n samples of the palette
//   - color set: n shades of the color, darkest first
//   - neither: n samples of [DefaultPalette]
//
// The result is deterministic for a given n and selection.
func Resolve(n int, sel Selection) ([]colorful.Color, error) {
	if n < 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "color count cannot be negative: %d", n)
	}

	if name := strings.TrimSpace(sel.Palette); name != "" {
		p, err := Lookup(name)
		if err != nil {
			return nil, err
		}
		return p.Sample(n), nil
	}

	if strings.TrimSpace(sel.Color) != "" {
		base, err := ParseColor(sel.Color)
		if err != nil {
			return nil, err
		}
		return Shades(base, n), nil
	}

	p, err := Lookup(DefaultPalette)
	if err != nil {
		return nil, err
	}
	return p.Sample(n), nil
}

// ParseColor parses "#rrggbb", "rrggbb" or "#rgb".
func ParseColor(s string) (colorful.Color, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	c, err := colorful.Hex(strings.ToLower(s))
	if err != nil {
		return colorful.Color{}, errors.Wrap(errors.ErrCodeInvalidColor, err, "invalid color: %q (must be a hex color like #1f77b4)", s)
	}
	return c, nil
}
