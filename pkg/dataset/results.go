package dataset

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Shape identifies which of the three results forms a document uses.
type Shape int

const (
	// ShapeNone is the zero value: no results were decoded.
	ShapeNone Shape = iota
	// ShapeFlat is a bare list of numbers.
	ShapeFlat
	// ShapeKeyed is {"results": [...]}.
	ShapeKeyed
	// ShapeMulti maps series names to lists.
	ShapeMulti
)

// KeyedName is the only key of a [ShapeKeyed] results object.
const KeyedName = "results"

// String returns the shape's name.
func (s Shape) String() string {
	switch s {
	case ShapeFlat:
		return "flat"
	case ShapeKeyed:
		return "keyed"
	case ShapeMulti:
		return "multi"
	default:
		return "none"
	}
}

// Series is one named sequence of values aligned to the category list.
// The series of a flat list has an empty name.
type Series struct {
	Name   string
	Values []float64
}

// Results holds the decoded results block in document order.
type Results struct {
	Shape  Shape
	Series []Series
}

// Flat builds flat results from values.
func Flat(values ...float64) Results {
	return Results{Shape: ShapeFlat, Series: []Series{{Values: values}}}
}

// Keyed builds {"results": values}.
func Keyed(values ...float64) Results {
	return Results{Shape: ShapeKeyed, Series: []Series{{Name: KeyedName, Values: values}}}
}

// Multi builds multi-series results in the given order.
func Multi(series ...Series) Results {
	return Results{Shape: ShapeMulti, Series: series}
}

// Clone returns a deep copy of r.
func (r Results) Clone() Results {
	out := Results{Shape: r.Shape, Series: make([]Series, len(r.Series))}
	for i, s := range r.Series {
		out.Series[i] = Series{Name: s.Name, Values: append([]float64(nil), s.Values...)}
	}
	return out
}

// UnmarshalJSON decodes any of the three results forms, keeping the key
// order of object forms.
func (r *Results) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = Results{}
		return nil
	}

	switch data[0] {
	case '[':
		var values []float64
		if err := json.Unmarshal(data, &values); err != nil {
			return fmt.Errorf("results: %w", err)
		}
		*r = Flat(values...)
		return nil
	case '{':
		series, err := decodeSeries(data)
		if err != nil {
			return fmt.Errorf("results: %w", err)
		}
		if len(series) == 1 && series[0].Name == KeyedName {
			*r = Results{Shape: ShapeKeyed, Series: series}
			return nil
		}
		*r = Results{Shape: ShapeMulti, Series: series}
		return nil
	default:
		return fmt.Errorf("results: must be a list of numbers or an object of lists")
	}
}

func decodeSeries(data []byte) ([]Series, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}

	var series []Series
	seen := make(map[string]bool)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}
		if seen[name] {
			return nil, fmt.Errorf("duplicate series %q", name)
		}
		seen[name] = true

		var values []float64
		if err := dec.Decode(&values); err != nil {
			return nil, fmt.Errorf("series %q: %w", name, err)
		}
		series = append(series, Series{Name: name, Values: values})
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return series, nil
}

// MarshalJSON writes r back in its original form.
func (r Results) MarshalJSON() ([]byte, error) {
	switch r.Shape {
	case ShapeNone:
		return []byte("null"), nil
	case ShapeFlat:
		var values []float64
		if len(r.Series) > 0 {
			values = r.Series[0].Values
		}
		return marshalValues(values)
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, s := range r.Series {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(s.Name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		values, err := marshalValues(s.Values)
		if err != nil {
			return nil, err
		}
		buf.Write(values)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalValues(values []float64) ([]byte, error) {
	if values == nil {
		values = []float64{}
	}
	return json.Marshal(values)
}
