package palette

import (
	"strings"

	"github.com/matzehuels/surveyplot/pkg/errors"
)

// Scheme is one of the color schemes offered by the web form.
type Scheme string

// Schemes, named as shown to users.
const (
	SchemeStandard Scheme = "Standard"
	SchemeBlau     Scheme = "Blau"
	SchemeRot      Scheme = "Rot"
	SchemeGruen    Scheme = "Grün"
	SchemeSpektrum Scheme = "Spektrum"
)

// Colors behind the single-hue schemes.
const (
	Blue  = "#1f77b4"
	Red   = "#d62728"
	Green = "#2ca02c"
)

// SpectrumPalette backs [SchemeSpektrum].
const SpectrumPalette = "viridis"

var schemeAliases = map[string]Scheme{
	"standard": SchemeStandard,
	"default":  SchemeStandard,
	"blau":     SchemeBlau,
	"blue":     SchemeBlau,
	"rot":      SchemeRot,
	"red":      SchemeRot,
	"grün":     SchemeGruen,
	"gruen":    SchemeGruen,
	"green":    SchemeGruen,
	"spektrum": SchemeSpektrum,
	"spectrum": SchemeSpektrum,
}

// Schemes returns every scheme in display order.
func Schemes() []Scheme {
	return []Scheme{SchemeStandard, SchemeBlau, SchemeRot, SchemeGruen, SchemeSpektrum}
}

// ParseScheme accepts display names and their English or ASCII spellings.
// The empty string is [SchemeStandard].
func ParseScheme(s string) (Scheme, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return SchemeStandard, nil
	}
	if sc, ok := schemeAliases[key]; ok {
		return sc, nil
	}
	return "", errors.New(errors.ErrCodeInvalidScheme,
		"invalid color scheme: %q (must be one of: Standard, Blau, Rot, Grün, Spektrum)", s)
}

// Selection returns the color choice behind the scheme.
func (s Scheme) Selection() Selection {
	switch s {
	case SchemeBlau:
		return Selection{Color: Blue}
	case SchemeRot:
		return Selection{Color: Red}
	case SchemeGruen:
		return Selection{Color: Green}
	case SchemeSpektrum:
		return Selection{Palette: SpectrumPalette}
	default:
		return Selection{}
	}
}
