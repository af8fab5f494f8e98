// Package pipeline turns an uploaded survey document into a rendered chart.
//
// This package implements the complete filter → build → encode pipeline used
// by the CLI and the web form. Both entry points share the same defaults and
// validation so a chart rendered from the command line matches the preview
// shown in the browser.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Filter: Narrow the results to the selected categories ([dataset.Filter])
//  2. Build: Check shape compatibility and construct a [chart.Figure]
//  3. Encode: Write the figure as a preview image or into the export folder
//
// The figure built in stage 2 is always closed once stage 3 is done; callers
// that use [Runner.Build] directly own the figure and must close it.
//
// # Usage
//
// Create a Runner and export a chart:
//
//	runner := pipeline.NewRunner(export.NewWriter("exports"), logger)
//	opts := pipeline.Options{
//	    PlotType: pipeline.PlotStacked,
//	    Selected: []string{"Vollständig digital", "Überwiegend digital"},
//	    Scheme:   "Blau",
//	    Export:   export.DefaultOptions(),
//	}
//	res, err := runner.Export(ctx, doc, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(res.Message())
//
// Render a preview into any writer:
//
//	err := runner.Preview(ctx, doc, opts, w)
package pipeline

import (
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/surveyplot/pkg/chart"
	"github.com/matzehuels/surveyplot/pkg/dataset"
	"github.com/matzehuels/surveyplot/pkg/errors"
	"github.com/matzehuels/surveyplot/pkg/export"
	"github.com/matzehuels/surveyplot/pkg/palette"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and Web Form
// =============================================================================

const (
	// DefaultPlotType is the chart drawn when no type is selected.
	DefaultPlotType = PlotStacked

	// DefaultPreviewDPI is the resolution of the preview image shown in the
	// web form. Exports use export.DefaultDPI instead.
	DefaultPreviewDPI = 100
)

// PlotType identifies one of the three chart builders.
type PlotType string

// Plot types.
const (
	PlotStacked       PlotType = "stacked"
	PlotHorizontalBar PlotType = "hbar"
	PlotPie           PlotType = "pie"
)

// Display names, as offered by the web form.
const (
	NameStacked       = "Percented Bar Chart"
	NameHorizontalBar = "Horizontal Bar Chart"
	NamePie           = "Pie Chart"
)

// IncompatibleMessage is shown when a pie chart is requested for results
// with several series.
const IncompatibleMessage = "Diese Daten sind nicht mit einem Pie Chart kompatibel. Bitte wählen Sie ein anderes Diagramm."

var plotTypeAliases = map[string]PlotType{
	"stacked":              PlotStacked,
	"percent":              PlotStacked,
	"percented bar chart":  PlotStacked,
	"hbar":                 PlotHorizontalBar,
	"horizontal":           PlotHorizontalBar,
	"horizontal bar chart": PlotHorizontalBar,
	"pie":                  PlotPie,
	"donut":                PlotPie,
	"pie chart":            PlotPie,
}

// PlotTypes returns every plot type in display order.
func PlotTypes() []PlotType {
	return []PlotType{PlotStacked, PlotHorizontalBar, PlotPie}
}

// ParsePlotType accepts short names ("stacked", "hbar", "pie") and display
// names ("Pie Chart"), case-insensitively.
func ParsePlotType(s string) (PlotType, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return DefaultPlotType, nil
	}
	if pt, ok := plotTypeAliases[key]; ok {
		return pt, nil
	}
	return "", errors.New(errors.ErrCodeInvalidPlotType,
		"invalid plot type: %q (must be one of: stacked, hbar, pie)", s)
}

// DisplayName returns the name shown in the web form.
func (p PlotType) DisplayName() string {
	switch p {
	case PlotHorizontalBar:
		return NameHorizontalBar
	case PlotPie:
		return NamePie
	default:
		return NameStacked
	}
}

// =============================================================================
// Options - Per-Request Configuration
// =============================================================================

// Options contains all configuration for one render.
// This struct supports JSON serialization so form state can be echoed back.
type Options struct {
	// Data options
	PlotType       PlotType               `json:"plot_type"`
	Selected       []string               `json:"selected,omitempty"` // Empty selects every category
	MismatchPolicy dataset.MismatchPolicy `json:"mismatch_policy,omitempty"`

	// Style options
	Title   string `json:"title,omitempty"` // Falls back to the document title
	XLabel  string `json:"xlabel,omitempty"`
	YLabel  string `json:"ylabel,omitempty"`
	Scheme  string `json:"scheme,omitempty"`
	Color   string `json:"color,omitempty"`   // Overrides Scheme
	Palette string `json:"palette,omitempty"` // Overrides Scheme and Color

	// Output options
	Export     export.Options `json:"export"`                // Name defaults to the document's file name
	PreviewDPI int            `json:"preview_dpi,omitempty"` // Resolution of Runner.Preview

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// ValidateAndSetDefaults checks every field and applies defaults.
// This method is idempotent - calling it multiple times has the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	pt, err := ParsePlotType(string(o.PlotType))
	if err != nil {
		return err
	}
	o.PlotType = pt

	policy, err := dataset.ParseMismatchPolicy(string(o.MismatchPolicy))
	if err != nil {
		return err
	}
	o.MismatchPolicy = policy

	if _, err := o.Colors(); err != nil {
		return err
	}

	if err := o.validateExport(); err != nil {
		return err
	}
	if o.PreviewDPI == 0 {
		o.PreviewDPI = DefaultPreviewDPI
	}
	if err := errors.ValidateDPI(o.PreviewDPI); err != nil {
		return err
	}

	// Logger default
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}

// Clone returns a copy that has not been validated yet. The selection is
// copied, the logger is shared.
func (o Options) Clone() Options {
	o.Selected = append([]string(nil), o.Selected...)
	o.validated = false
	return o
}

// validateExport applies the export format and DPI defaults. The base name
// stays empty so the runner can fall back to the document's file name.
func (o *Options) validateExport() error {
	exp := o.Export
	if err := exp.ValidateAndSetDefaults(); err != nil {
		return err
	}
	o.Export.Format = exp.Format
	o.Export.DPI = exp.DPI
	o.Export.Name = strings.TrimSpace(o.Export.Name)
	return nil
}

// Colors combines Scheme, Color and Palette into a single color choice.
// An explicit palette or color wins over the scheme.
func (o *Options) Colors() (palette.Selection, error) {
	if o.Palette != "" || o.Color != "" {
		sel := palette.Selection{Color: o.Color, Palette: o.Palette}
		if _, err := palette.Resolve(1, sel); err != nil {
			return palette.Selection{}, err
		}
		return sel, nil
	}
	scheme, err := palette.ParseScheme(o.Scheme)
	if err != nil {
		return palette.Selection{}, err
	}
	return scheme.Selection(), nil
}

// Style returns the chart style for doc.
func (o *Options) Style(doc *dataset.Document) (chart.Style, error) {
	colors, err := o.Colors()
	if err != nil {
		return chart.Style{}, err
	}
	return chart.Style{
		Title:  doc.TitleOr(o.Title),
		XLabel: strings.TrimSpace(o.XLabel),
		YLabel: strings.TrimSpace(o.YLabel),
		Colors: colors,
	}, nil
}

// ExportOptions returns the export options for doc, naming the file after
// the document when no name was given.
func (o *Options) ExportOptions(doc *dataset.Document) export.Options {
	exp := o.Export
	if exp.Name == "" {
		exp.Name = doc.BaseName()
	}
	return exp
}
