package server

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/matzehuels/surveyplot/pkg/dataset"
	"github.com/matzehuels/surveyplot/pkg/errors"
	"github.com/matzehuels/surveyplot/pkg/export"
	"github.com/matzehuels/surveyplot/pkg/palette"
	"github.com/matzehuels/surveyplot/pkg/pipeline"
	"github.com/matzehuels/surveyplot/pkg/upload"
)

// Form field names.
const (
	fieldUpload    = "upload"
	fieldFile      = "file"
	fieldType      = "type"
	fieldCategory  = "category"
	fieldTitle     = "title"
	fieldXLabel    = "xlabel"
	fieldYLabel    = "ylabel"
	fieldScheme    = "scheme"
	fieldFormat    = "format"
	fieldDPI       = "dpi"
	fieldName      = "name"
	fieldTimestamp = "timestamp"

	// fieldOptions marks a post of the options form, so an absent
	// timestamp checkbox reads as unchecked.
	fieldOptions = "options"
)

// Status lines.
const (
	msgUploadFirst = "Bitte eine JSON-Datei hochladen"
	msgNoFile      = "Keine Datei ausgewählt"
	msgExpired     = "Die hochgeladene Datei ist abgelaufen. Bitte laden Sie sie erneut hoch."
	msgLoaded      = "Bitte wählen Sie einen Diagrammtyp oder passen Sie die Parameter an."
	msgPlotted     = "Plot erfolgreich generiert!"
)

// Banner titles.
const (
	titleInfo    = "Info:"
	titleError   = "Error:"
	titleFailure = "⚠️ Fehler:"
	titleLoaded  = "✅ Datei geladen!"
	titleDone    = "✅"
)

type choice struct {
	Value    string
	Label    string
	Selected bool
}

type category struct {
	Name    string
	Checked bool
}

type banner struct {
	Title  string
	Text   string
	Detail string
}

type exportLink struct {
	Name     string
	URL      string
	Size     string
	Modified string
}

type formValues struct {
	Title     string
	XLabel    string
	YLabel    string
	Name      string
	DPI       int
	Timestamp bool
}

// page is the data of the form template.
type page struct {
	UploadID   string
	UploadName string

	PlotTypes  []choice
	Categories []category
	Schemes    []choice
	Formats    []choice
	Form       formValues

	MinDPI    int
	MaxDPI    int
	SweepDays int

	PreviewURL string
	Error      *banner
	Notice     *banner
	Info       *banner
	Exports    []exportLink
}

// parseOptions reads the form values over the configured defaults. The
// options are returned even when a value is invalid, so the form can be
// shown again as it was submitted.
func (s *Server) parseOptions(v url.Values) (pipeline.Options, error) {
	opts := s.cfg.Defaults.Clone()
	opts.Logger = nil

	if t := v.Get(fieldType); t != "" {
		opts.PlotType = pipeline.PlotType(t)
	}
	opts.Selected = v[fieldCategory]
	opts.Title = v.Get(fieldTitle)
	opts.XLabel = v.Get(fieldXLabel)
	opts.YLabel = v.Get(fieldYLabel)
	if sc := v.Get(fieldScheme); sc != "" {
		opts.Scheme = sc
	}

	if f := v.Get(fieldFormat); f != "" {
		opts.Export.Format = export.Format(f)
	}
	opts.Export.Name = strings.TrimSpace(v.Get(fieldName))
	if v.Get(fieldOptions) != "" {
		opts.Export.Timestamp = v.Get(fieldTimestamp) != ""
	}
	if d := strings.TrimSpace(v.Get(fieldDPI)); d != "" {
		dpi, err := strconv.Atoi(d)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidDPI, "invalid dpi: %q", d)
		}
		opts.Export.DPI = dpi
	}
	return opts, nil
}

// previewURL encodes the render options of opts for the preview route.
func previewURL(id string, opts pipeline.Options) string {
	q := url.Values{}
	q.Set(fieldType, string(opts.PlotType))
	for _, c := range opts.Selected {
		q.Add(fieldCategory, c)
	}
	for field, v := range map[string]string{
		fieldTitle:  opts.Title,
		fieldXLabel: opts.XLabel,
		fieldYLabel: opts.YLabel,
		fieldScheme: opts.Scheme,
	} {
		if v != "" {
			q.Set(field, v)
		}
	}
	return "/preview/" + url.PathEscape(id) + ".png?" + q.Encode()
}

// newPage fills the form from opts. u and doc may be nil.
func (s *Server) newPage(opts pipeline.Options, u *upload.Upload, doc *dataset.Document) *page {
	p := &page{
		MinDPI:    errors.MinDPI,
		MaxDPI:    errors.MaxDPI,
		SweepDays: s.cfg.SweepDays,
		Form: formValues{
			Title:     opts.Title,
			XLabel:    opts.XLabel,
			YLabel:    opts.YLabel,
			Name:      opts.Export.Name,
			DPI:       opts.Export.DPI,
			Timestamp: opts.Export.Timestamp,
		},
	}
	if u != nil {
		p.UploadID = u.ID
		p.UploadName = u.Name
	}

	plotType, _ := pipeline.ParsePlotType(string(opts.PlotType))
	for _, pt := range pipeline.PlotTypes() {
		p.PlotTypes = append(p.PlotTypes, choice{Value: string(pt), Label: pt.DisplayName(), Selected: pt == plotType})
	}

	scheme, _ := palette.ParseScheme(opts.Scheme)
	for _, sc := range palette.Schemes() {
		p.Schemes = append(p.Schemes, choice{Value: string(sc), Label: string(sc), Selected: sc == scheme})
	}

	format, _ := export.ParseFormat(string(opts.Export.Format))
	for _, f := range export.Formats() {
		p.Formats = append(p.Formats, choice{Value: string(f), Label: string(f), Selected: f == format})
	}

	if doc != nil {
		selected := make(map[string]bool, len(opts.Selected))
		for _, c := range opts.Selected {
			selected[c] = true
		}
		for _, name := range doc.CategoryNames {
			p.Categories = append(p.Categories, category{Name: name, Checked: selected[name]})
		}
	}

	entries, err := s.runner.Writer.List()
	if err != nil {
		s.logger.Warn("list exports", "error", err)
	}
	for _, e := range entries {
		p.Exports = append(p.Exports, exportLink{
			Name:     e.Name,
			URL:      "/exports/" + url.PathEscape(e.Name),
			Size:     formatSize(e.Size),
			Modified: e.ModTime.Format("02.01.2006 15:04"),
		})
	}
	return p
}

func formatSize(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%d B", n)
}
