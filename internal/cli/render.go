package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/surveyplot/pkg/dataset"
	"github.com/matzehuels/surveyplot/pkg/export"
	surveyio "github.com/matzehuels/surveyplot/pkg/io"
	"github.com/matzehuels/surveyplot/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command.
// Empty values fall back to the config file.
type renderOpts struct {
	plotType    string   // stacked, hbar or pie
	selected    []string // categories to keep
	title       string   // overrides the document title
	xlabel      string
	ylabel      string
	scheme      string // Standard, Blau, Rot, Grün, Spektrum
	palette     string // named palette, overrides scheme
	color       string // base color, overrides scheme
	formats     string // comma-separated export formats
	dpi         int
	name        string // base file name without extension
	noTimestamp bool
	out         string // export directory
	mismatch    string // passthrough or reject
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [file]",
		Short: "Render a survey file into the export folder",
		Long: `Render a survey JSON file as a chart and write it into the export folder.

Several formats can be written at once:

  surveyplot render survey.json --type pie --format png,svg --dpi 600`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.plotType, "type", "t", "", "chart type: stacked (default), hbar, pie")
	cmd.Flags().StringSliceVarP(&opts.selected, "select", "s", nil, "categories to plot (default all); quote names containing commas")
	cmd.Flags().StringVar(&opts.title, "title", "", "chart title (default from the file)")
	cmd.Flags().StringVar(&opts.xlabel, "xlabel", "", "x axis label")
	cmd.Flags().StringVar(&opts.ylabel, "ylabel", "", "y axis label")
	cmd.Flags().StringVar(&opts.scheme, "scheme", "", "color scheme: Standard, Blau, Rot, Grün, Spektrum")
	cmd.Flags().StringVar(&opts.palette, "palette", "", "named palette, e.g. viridis or Blues")
	cmd.Flags().StringVar(&opts.color, "color", "", "base color as #rrggbb")
	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): png, jpg, pdf, svg (comma-separated)")
	cmd.Flags().IntVar(&opts.dpi, "dpi", 0, "resolution of raster formats (72-600)")
	cmd.Flags().StringVarP(&opts.name, "name", "n", "", "file name without extension (default from the file)")
	cmd.Flags().BoolVar(&opts.noTimestamp, "no-timestamp", false, "do not append a timestamp to the file name")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "export directory")
	cmd.Flags().StringVar(&opts.mismatch, "mismatch", "", "series length mismatch: passthrough, reject")

	_ = cmd.RegisterFlagCompletionFunc("type", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		types := pipeline.PlotTypes()
		out := make([]string, len(types))
		for i, t := range types {
			out[i] = string(t) + "\t" + t.DisplayName()
		}
		return out, cobra.ShellCompDirectiveNoFileComp
	})

	return cmd
}

func (c *CLI) runRender(ctx context.Context, input string, ro renderOpts) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	opts := defaultOptions(cfg)
	opts.Logger = c.Logger
	ro.apply(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	formats := []export.Format{opts.Export.Format}
	if ro.formats != "" {
		if formats, err = export.ParseFormats(ro.formats); err != nil {
			return err
		}
	}

	doc, err := surveyio.ImportJSON(input)
	if err != nil {
		return err
	}
	c.Logger.Debug("loaded survey", "file", input, "categories", len(doc.CategoryNames), "series", len(doc.Results.Series))

	dir := ro.out
	if dir == "" {
		dir = cfg.Export.Dir
	}
	runner := c.newRunner(dir)

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %s...", opts.PlotType.DisplayName()))
	spinner.Start()
	results, err := exportFormats(ctx, runner, doc, opts, formats, spinner)
	spinner.Stop()
	if err != nil {
		if len(results) > 0 {
			printWarning("Stopped after %d of %d formats", len(results), len(formats))
			for _, res := range results {
				printResult(res)
			}
		}
		return err
	}

	printSuccess("%s", results[len(results)-1].Message())
	for _, res := range results {
		printResult(res)
	}
	prog.done(fmt.Sprintf("Rendered %d file(s)", len(results)))
	return nil
}

// exportFormats writes one file per format, naming the current step on the
// spinner. It stops at the first failure and returns the files written so far.
func exportFormats(ctx context.Context, runner *pipeline.Runner, doc *dataset.Document, opts pipeline.Options, formats []export.Format, s *Spinner) ([]export.Result, error) {
	results := make([]export.Result, 0, len(formats))
	for i, f := range formats {
		o := opts.Clone()
		o.Export.Format = f
		s.SetMessage(renderStep(o, i, len(formats)))
		res, err := runner.Export(ctx, doc, o)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

// renderStep describes the i-th of n exports, e.g.
// "Rendering Pie Chart as png at 300 dpi (1/2)".
func renderStep(opts pipeline.Options, i, n int) string {
	f := opts.Export.Format
	msg := fmt.Sprintf("Rendering %s as %s", opts.PlotType.DisplayName(), f)
	if f.Raster() {
		msg += fmt.Sprintf(" at %d dpi", opts.Export.DPI)
	}
	if n > 1 {
		msg += fmt.Sprintf(" (%d/%d)", i+1, n)
	}
	return msg
}

// apply copies the flags that were set onto opts.
func (ro renderOpts) apply(opts *pipeline.Options) {
	if ro.plotType != "" {
		opts.PlotType = pipeline.PlotType(ro.plotType)
	}
	for _, s := range ro.selected {
		if s = strings.TrimSpace(s); s != "" {
			opts.Selected = append(opts.Selected, s)
		}
	}
	opts.Title = ro.title
	opts.XLabel = ro.xlabel
	opts.YLabel = ro.ylabel
	if ro.scheme != "" {
		opts.Scheme = ro.scheme
	}
	opts.Palette = ro.palette
	opts.Color = ro.color
	if ro.mismatch != "" {
		opts.MismatchPolicy = dataset.MismatchPolicy(ro.mismatch)
	}
	if ro.dpi != 0 {
		opts.Export.DPI = ro.dpi
	}
	opts.Export.Name = ro.name
	if ro.noTimestamp {
		opts.Export.Timestamp = false
	}
}
