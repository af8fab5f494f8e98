package dataset

import (
	"strings"

	"github.com/matzehuels/surveyplot/pkg/errors"
)

// MismatchPolicy decides what happens to a series whose length differs
// from the number of categories.
type MismatchPolicy string

const (
	// PolicyPassthrough keeps mismatched series unfiltered, at their
	// original length. Builders report the mismatch if they cannot draw it.
	PolicyPassthrough MismatchPolicy = "passthrough"

	// PolicyReject fails the filter with a LENGTH_MISMATCH error.
	PolicyReject MismatchPolicy = "reject"
)

// DefaultMismatchPolicy is applied when no policy is configured.
const DefaultMismatchPolicy = PolicyPassthrough

// ParseMismatchPolicy converts a configuration string into a policy.
// The empty string yields [DefaultMismatchPolicy].
func ParseMismatchPolicy(s string) (MismatchPolicy, error) {
	switch MismatchPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return DefaultMismatchPolicy, nil
	case PolicyPassthrough:
		return PolicyPassthrough, nil
	case PolicyReject:
		return PolicyReject, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput,
		"invalid mismatch policy: %q (must be passthrough or reject)", s)
}

// Selection is the outcome of [Filter].
type Selection struct {
	// Categories are the selected category names in document order.
	Categories []string

	// Results has the same shape as the input, with every matching series
	// narrowed to Indices.
	Results Results

	// Indices are the positions of Categories in the full category list.
	Indices []int

	// Mismatched names the series left at their original length.
	Mismatched []string
}

// Filter narrows results to the selected categories.
//
// Selected names that do not occur in categories are ignored. An empty
// selection keeps every category. The input slices are never modified.
func Filter(categories []string, results Results, selected []string, policy MismatchPolicy) (*Selection, error) {
	if policy == "" {
		policy = DefaultMismatchPolicy
	}

	indices := selectIndices(categories, selected)
	sel := &Selection{
		Categories: make([]string, len(indices)),
		Results:    Results{Shape: results.Shape, Series: make([]Series, 0, len(results.Series))},
		Indices:    indices,
	}
	for i, idx := range indices {
		sel.Categories[i] = categories[idx]
	}

	for _, s := range results.Series {
		if len(s.Values) != len(categories) {
			if policy == PolicyReject {
				return nil, errors.New(errors.ErrCodeLengthMismatch,
					"series %q has %d values for %d categories", seriesLabel(s), len(s.Values), len(categories))
			}
			sel.Mismatched = append(sel.Mismatched, seriesLabel(s))
			sel.Results.Series = append(sel.Results.Series, Series{
				Name:   s.Name,
				Values: append([]float64(nil), s.Values...),
			})
			continue
		}

		values := make([]float64, len(indices))
		for i, idx := range indices {
			values[i] = s.Values[idx]
		}
		sel.Results.Series = append(sel.Results.Series, Series{Name: s.Name, Values: values})
	}
	return sel, nil
}

func selectIndices(categories, selected []string) []int {
	indices := make([]int, 0, len(categories))
	if len(selected) == 0 {
		for i := range categories {
			indices = append(indices, i)
		}
		return indices
	}

	want := make(map[string]bool, len(selected))
	for _, s := range selected {
		want[s] = true
	}
	for i, c := range categories {
		if want[c] {
			indices = append(indices, i)
		}
	}
	return indices
}

func seriesLabel(s Series) string {
	if s.Name == "" {
		return KeyedName
	}
	return s.Name
}

// PieCompatible reports whether results can be drawn as a donut chart:
// only a single flat series qualifies.
func PieCompatible(r Results) bool {
	return r.Shape == ShapeFlat || r.Shape == ShapeKeyed
}

// FlatRowName labels the single row a flat list becomes in a stacked chart.
const FlatRowName = "Werte"

// StackRows returns the rows of a stacked chart. A flat list becomes one
// row named [FlatRowName]; keyed results keep their "results" name.
func StackRows(r Results) []Series {
	rows := make([]Series, len(r.Series))
	copy(rows, r.Series)
	if r.Shape == ShapeFlat && len(rows) == 1 {
		rows[0].Name = FlatRowName
	}
	return rows
}

// SingleSeries returns the values of a single-series chart. For
// multi-series results the first series is used.
func SingleSeries(r Results) ([]float64, error) {
	if len(r.Series) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "results contain no series")
	}
	return r.Series[0].Values, nil
}
