package dataset

import (
	"encoding/json"
	"testing"

	"github.com/matzehuels/surveyplot/pkg/errors"
)

func TestDocumentValidate(t *testing.T) {
	tests := []struct {
		name    string
		doc     Document
		wantErr bool
	}{
		{
			name: "valid",
			doc:  Document{Title: "t", CategoryNames: []string{"A", "B"}, Results: Flat(1, 2)},
		},
		{
			name: "length mismatch is not a document error",
			doc:  Document{CategoryNames: []string{"A", "B"}, Results: Flat(1)},
		},
		{
			name:    "no categories",
			doc:     Document{Results: Flat(1)},
			wantErr: true,
		},
		{
			name:    "duplicate categories",
			doc:     Document{CategoryNames: []string{"A", "A"}, Results: Flat(1, 2)},
			wantErr: true,
		},
		{
			name:    "blank category",
			doc:     Document{CategoryNames: []string{"A", " "}, Results: Flat(1, 2)},
			wantErr: true,
		},
		{
			name:    "no results",
			doc:     Document{CategoryNames: []string{"A"}},
			wantErr: true,
		},
		{
			name:    "empty multi",
			doc:     Document{CategoryNames: []string{"A"}, Results: Multi()},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.doc.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && errors.GetKind(err) != errors.KindInput {
				t.Errorf("Validate() kind = %v, want %v", errors.GetKind(err), errors.KindInput)
			}
		})
	}
}

func TestDocumentBaseName(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"bar_chart.png", "bar_chart"},
		{"report", "report"},
		{"dir/survey.json", "survey"},
		{"", "plot"},
		{".png", "plot"},
	}
	for _, tt := range tests {
		d := Document{Filename: tt.filename}
		if got := d.BaseName(); got != tt.want {
			t.Errorf("BaseName(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}

func TestDocumentTitleOr(t *testing.T) {
	d := Document{Title: "Original"}
	if got := d.TitleOr(""); got != "Original" {
		t.Errorf("TitleOr(\"\") = %q", got)
	}
	if got := d.TitleOr("  "); got != "Original" {
		t.Errorf("TitleOr(blank) = %q", got)
	}
	if got := d.TitleOr("Custom"); got != "Custom" {
		t.Errorf("TitleOr(Custom) = %q", got)
	}
}

func TestDocumentDecode(t *testing.T) {
	input := `{
	  "title": "Softwarenutzung",
	  "category_names": ["CAD", "Moodle"],
	  "results": {"results": [5, 9]},
	  "filename": "horizontal_bar_chart.png"
	}`
	var d Document
	if err := json.Unmarshal([]byte(input), &d); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if err := d.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if d.Results.Shape != ShapeKeyed {
		t.Errorf("Shape = %v, want keyed", d.Results.Shape)
	}
	if d.BaseName() != "horizontal_bar_chart" {
		t.Errorf("BaseName = %q", d.BaseName())
	}
}
