package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/surveyplot/pkg/dataset"
	"github.com/matzehuels/surveyplot/pkg/errors"
	"github.com/matzehuels/surveyplot/pkg/export"
	surveyio "github.com/matzehuels/surveyplot/pkg/io"
	"github.com/matzehuels/surveyplot/pkg/observability"
	"github.com/matzehuels/surveyplot/pkg/pipeline"
)

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func TestRender(t *testing.T) {
	c := newTestCLI(t)
	samples := t.TempDir()
	if _, err := writeSamples(samples, false); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		want []string
	}{
		{
			name: "stacked in two formats",
			args: []string{"stacked.json", "--format", "png,svg", "--dpi", "72"},
			want: []string{"bar_chart.png", "bar_chart.svg"},
		},
		{
			name: "horizontal with name",
			args: []string{"horizontal.json", "--type", "hbar", "--name", "software", "--format", "jpg", "--dpi", "72"},
			want: []string{"software.jpg"},
		},
		{
			name: "pie with selection",
			args: []string{"pie.json", "--type", "pie", "--select", "Ja,Nein", "--scheme", "Spektrum", "--format", "pdf"},
			want: []string{"pie_chart.pdf"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := t.TempDir()
			args := append([]string{"render", filepath.Join(samples, tt.args[0])}, tt.args[1:]...)
			args = append(args, "--out", out, "--no-timestamp")
			if _, err := execute(t, c, args...); err != nil {
				t.Fatalf("render: %v", err)
			}
			if diff := cmp.Diff(tt.want, listDir(t, out)); diff != "" {
				t.Errorf("files mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRenderErrors(t *testing.T) {
	c := newTestCLI(t)
	samples := t.TempDir()
	if _, err := writeSamples(samples, false); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		code errors.Code
	}{
		{"pie on multiple series", []string{"stacked.json", "--type", "pie"}, errors.ErrCodeIncompatibleShape},
		{"dpi out of range", []string{"stacked.json", "--dpi", "1200"}, errors.ErrCodeInvalidDPI},
		{"unknown format", []string{"stacked.json", "--format", "gif"}, errors.ErrCodeInvalidFormat},
		{"unknown type", []string{"stacked.json", "--type", "radar"}, errors.ErrCodeInvalidPlotType},
		{"missing file", []string{"nope.json"}, errors.ErrCodeMissingUpload},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := t.TempDir()
			args := append([]string{"render", filepath.Join(samples, tt.args[0])}, tt.args[1:]...)
			args = append(args, "--out", out)
			_, err := execute(t, c, args...)
			if !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want code %s", err, tt.code)
			}
			if got := listDir(t, out); len(got) != 0 {
				t.Errorf("files written: %v", got)
			}
		})
	}
}

func TestRenderOptsApply(t *testing.T) {
	base := pipeline.Options{
		Scheme: "Standard",
		Export: export.Options{Format: export.PNG, DPI: 300, Timestamp: true},
	}
	tests := []struct {
		name string
		ro   renderOpts
		want pipeline.Options
	}{
		{
			name: "no flags keeps defaults",
			want: base,
		},
		{
			name: "overrides",
			ro: renderOpts{
				plotType:    "hbar",
				selected:    []string{" a ", "", "b"},
				title:       "T",
				scheme:      "Blau",
				dpi:         150,
				name:        "x",
				noTimestamp: true,
				mismatch:    "reject",
			},
			want: pipeline.Options{
				PlotType:       pipeline.PlotHorizontalBar,
				Selected:       []string{"a", "b"},
				MismatchPolicy: dataset.MismatchPolicy("reject"),
				Title:          "T",
				Scheme:         "Blau",
				Export:         export.Options{Format: export.PNG, DPI: 150, Name: "x"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := base.Clone()
			tt.ro.apply(&got)
			if diff := cmp.Diff(tt.want, got, cmp.AllowUnexported(pipeline.Options{})); diff != "" {
				t.Errorf("apply mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRenderStep(t *testing.T) {
	pie := pipeline.Options{PlotType: pipeline.PlotPie, Export: export.Options{Format: export.PNG, DPI: 300}}
	vector := pie.Clone()
	vector.Export.Format = export.SVG

	tests := []struct {
		name string
		opts pipeline.Options
		i, n int
		want string
	}{
		{"single raster", pie, 0, 1, "Rendering Pie Chart as png at 300 dpi"},
		{"vector omits dpi", vector, 1, 3, "Rendering Pie Chart as svg (2/3)"},
		{"raster of many", pie, 2, 3, "Rendering Pie Chart as png at 300 dpi (3/3)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := renderStep(tt.opts, tt.i, tt.n); got != tt.want {
				t.Errorf("renderStep() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExportFormats(t *testing.T) {
	dir := t.TempDir()
	runner := pipeline.NewRunner(export.NewWriter(dir), nil)
	doc := surveyio.Samples()[2].Document

	opts := pipeline.Options{
		PlotType: pipeline.PlotPie,
		Export:   export.Options{Name: "survey", DPI: 72},
	}
	s := newSpinnerWithContext(context.Background(), "Rendering...")
	results, err := exportFormats(context.Background(), runner, doc, opts, []export.Format{export.PNG, export.PDF, export.SVG}, s)
	if err != nil {
		t.Fatalf("exportFormats: %v", err)
	}

	var names []string
	for _, res := range results {
		names = append(names, res.Name)
	}
	if diff := cmp.Diff([]string{"survey.png", "survey.pdf", "survey.svg"}, names); diff != "" {
		t.Errorf("names mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(names, listDir(t, dir)); diff != "" {
		t.Errorf("export folder mismatch (-want +got):\n%s", diff)
	}
	if want := "Rendering Pie Chart as svg (3/3)"; s.message != want {
		t.Errorf("spinner message = %q, want %q", s.message, want)
	}
}

func TestExportFormatsStopsAtFailure(t *testing.T) {
	dir := t.TempDir()
	runner := pipeline.NewRunner(export.NewWriter(dir), nil)
	doc := surveyio.Samples()[0].Document

	// The multi-series sample cannot be drawn as a pie.
	opts := pipeline.Options{PlotType: pipeline.PlotPie, Export: export.Options{Name: "survey"}}
	s := newSpinnerWithContext(context.Background(), "Rendering...")
	results, err := exportFormats(context.Background(), runner, doc, opts, []export.Format{export.SVG, export.PDF}, s)
	if !errors.Is(err, errors.ErrCodeIncompatibleShape) {
		t.Errorf("error = %v, want %s", err, errors.ErrCodeIncompatibleShape)
	}
	if len(results) != 0 {
		t.Errorf("results = %v, want none", results)
	}
}

func TestRenderLogsThroughCLILogger(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	t.Cleanup(observability.Reset)

	var buf bytes.Buffer
	c := New(&buf, LogDebug)
	samples := t.TempDir()
	if _, err := writeSamples(samples, false); err != nil {
		t.Fatal(err)
	}

	out := t.TempDir()
	if _, err := execute(t, c, "render", filepath.Join(samples, "pie.json"), "--type", "pie", "--format", "svg", "--out", out); err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, want := range []string{"loaded survey", "exported chart", "exported figure"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("log is missing %q:\n%s", want, buf.String())
		}
	}
}
