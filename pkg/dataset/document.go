package dataset

import (
	"path/filepath"
	"strings"

	"github.com/matzehuels/surveyplot/pkg/errors"
)

// DefaultBaseName is used when a document carries no filename.
const DefaultBaseName = "plot"

// Document is one uploaded survey. It is read once per request and never
// modified by the renderers.
type Document struct {
	Title         string   `json:"title"`
	CategoryNames []string `json:"category_names"`
	Results       Results  `json:"results"`
	Filename      string   `json:"filename,omitempty"`
}

// Validate checks the structural requirements of a document. Length
// mismatches between results and categories are not checked here; they
// are governed by the [MismatchPolicy] at filter time and by the builders.
func (d *Document) Validate() error {
	if len(d.CategoryNames) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "document has no category_names")
	}
	seen := make(map[string]bool, len(d.CategoryNames))
	for i, name := range d.CategoryNames {
		if strings.TrimSpace(name) == "" {
			return errors.New(errors.ErrCodeInvalidInput, "category %d has an empty name", i)
		}
		if seen[name] {
			return errors.New(errors.ErrCodeInvalidInput, "duplicate category name: %q", name)
		}
		seen[name] = true
	}
	if d.Results.Shape == ShapeNone {
		return errors.New(errors.ErrCodeInvalidInput, "document has no results")
	}
	if len(d.Results.Series) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "results contain no series")
	}
	return nil
}

// BaseName returns the stem of the document's filename, or
// [DefaultBaseName] when none is set.
//
//	"bar_chart.png" -> "bar_chart"
func (d *Document) BaseName() string {
	name := filepath.Base(strings.TrimSpace(d.Filename))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return DefaultBaseName
	}
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	if stem == "" {
		return DefaultBaseName
	}
	return stem
}

// TitleOr returns override when it is non-blank, otherwise the document title.
func (d *Document) TitleOr(override string) string {
	if strings.TrimSpace(override) != "" {
		return override
	}
	return d.Title
}
