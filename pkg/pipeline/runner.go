package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/surveyplot/pkg/chart"
	"github.com/matzehuels/surveyplot/pkg/dataset"
	"github.com/matzehuels/surveyplot/pkg/errors"
	"github.com/matzehuels/surveyplot/pkg/export"
	"github.com/matzehuels/surveyplot/pkg/observability"
)

// Runner encapsulates pipeline execution against one export folder.
// Both CLI and web form use this to avoid duplicating the render logic.
//
// The Runner is stateless except for the writer and logger - it doesn't
// keep figures between calls. Multiple goroutines can safely use the same
// Runner with different options; writes into the export folder are
// serialized by the writer.
type Runner struct {
	Writer *export.Writer
	Logger *log.Logger
}

// NewRunner creates a runner writing into w.
// If logger is nil, log.Default() is used.
func NewRunner(w *export.Writer, logger *log.Logger) *Runner {
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Writer: w,
		Logger: logger,
	}
}

// Build filters the document, checks that its shape fits the plot type and
// constructs the figure. The caller owns the figure and must close it.
func (r *Runner) Build(ctx context.Context, doc *dataset.Document, opts Options) (fig *chart.Figure, err error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, errors.New(errors.ErrCodeMissingUpload, "no data loaded")
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	hooks := observability.Pipeline()
	hooks.OnBuildStart(ctx, string(opts.PlotType), len(doc.CategoryNames))
	start := time.Now()
	defer func() { hooks.OnBuildComplete(ctx, string(opts.PlotType), time.Since(start), err) }()

	sel, err := dataset.Filter(doc.CategoryNames, doc.Results, opts.Selected, opts.MismatchPolicy)
	if err != nil {
		return nil, err
	}
	if len(sel.Mismatched) > 0 {
		opts.Logger.Warn("series length differs from categories",
			"series", sel.Mismatched,
			"categories", len(doc.CategoryNames))
	}

	style, err := opts.Style(doc)
	if err != nil {
		return nil, err
	}

	fig, err = build(opts.PlotType, sel, style)
	if err != nil {
		return nil, err
	}

	opts.Logger.Debug("built figure",
		"type", opts.PlotType,
		"categories", len(sel.Categories),
		"labels", len(fig.Labels),
		"duration", time.Since(start))
	return fig, nil
}

// build dispatches to the chart builder for pt.
func build(pt PlotType, sel *dataset.Selection, style chart.Style) (*chart.Figure, error) {
	switch pt {
	case PlotStacked:
		return chart.Stacked(sel.Categories, dataset.StackRows(sel.Results), style)

	case PlotHorizontalBar:
		values, err := dataset.SingleSeries(sel.Results)
		if err != nil {
			return nil, err
		}
		return chart.HorizontalBar(sel.Categories, values, style)

	case PlotPie:
		if !dataset.PieCompatible(sel.Results) {
			return nil, errors.New(errors.ErrCodeIncompatibleShape, IncompatibleMessage)
		}
		values, err := dataset.SingleSeries(sel.Results)
		if err != nil {
			return nil, err
		}
		return chart.Donut(sel.Categories, values, style)
	}
	return nil, errors.New(errors.ErrCodeInvalidPlotType, "invalid plot type: %q", pt)
}

// Preview renders the chart as png at opts.PreviewDPI into w.
func (r *Runner) Preview(ctx context.Context, doc *dataset.Document, opts Options, w io.Writer) error {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	fig, err := r.Build(ctx, doc, opts)
	if err != nil {
		return err
	}
	defer fig.Close()

	n, err := export.Encode(ctx, w, fig, export.PNG, opts.PreviewDPI)
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	opts.Logger.Debug("rendered preview", "type", opts.PlotType, "bytes", n)
	return nil
}

// Export renders the chart and writes it into the export folder.
func (r *Runner) Export(ctx context.Context, doc *dataset.Document, opts Options) (export.Result, error) {
	if r.Writer == nil {
		return export.Result{}, errors.New(errors.ErrCodeInternal, "no export folder configured")
	}
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return export.Result{}, err
	}

	fig, err := r.Build(ctx, doc, opts)
	if err != nil {
		return export.Result{}, err
	}
	defer fig.Close()

	res, err := r.Writer.Write(ctx, fig, opts.ExportOptions(doc))
	if err != nil {
		return export.Result{}, fmt.Errorf("export: %w", err)
	}
	opts.Logger.Info("exported chart",
		"type", opts.PlotType,
		"path", res.Path,
		"format", res.Format,
		"dpi", res.DPI)
	return res, nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
