// Package pkg provides the core libraries for surveyplot.
//
// # Overview
//
// Surveyplot turns the results of a questionnaire into one of three charts:
// a stacked percent bar chart, a horizontal bar chart or a donut chart. The
// pkg directory is organized into four areas:
//
//  1. Data: [dataset] (documents, result shapes, filtering) and [io]
//  2. Drawing: [palette] (colors) and [chart] (figures)
//  3. Output: [export] (encoding, file naming, retention)
//  4. Orchestration: [pipeline], [server], [upload] and [config]
//
// # Architecture
//
// The typical data flow through surveyplot:
//
//	JSON file or upload
//	         ↓
//	    [io] package (decode + validate)
//	         ↓
//	    [dataset] package (category selection + shape checks)
//	         ↓
//	    [chart] package (figure)
//	         ↓
//	    [export] package (png/jpg/pdf/svg in the export folder)
//
// # Quick Start
//
// Render a survey file into the export folder:
//
//	import (
//	    "context"
//	    surveyio "github.com/matzehuels/surveyplot/pkg/io"
//	    "github.com/matzehuels/surveyplot/pkg/export"
//	    "github.com/matzehuels/surveyplot/pkg/pipeline"
//	)
//
//	// 1. Load the survey
//	doc, _ := surveyio.ImportJSON("survey.json")
//
//	// 2. Create a runner writing into ./exports
//	runner := pipeline.NewRunner(export.NewWriter("exports"), nil)
//
//	// 3. Render and export
//	res, _ := runner.Export(context.Background(), doc, pipeline.Options{
//	    PlotType: pipeline.PlotPie,
//	    Export:   export.Options{Format: export.SVG},
//	})
//	fmt.Println(res.Message())
//
// # Main Packages
//
// [dataset] - Survey documents and their results, which are flat, keyed or
// multi-series. Filtering by category and the shape checks of each chart
// type live here.
//
// [chart] - Figure construction on top of gonum/plot: percent stacking,
// horizontal bars, donut wedges, value labels and the shared theme.
//
// [palette] - Color schemes (Standard, Blau, Rot, Grün, Spektrum), named
// palettes and single base colors.
//
// [export] - Encoding figures as png, jpg, pdf or svg at a given DPI,
// file naming with an optional timestamp, and sweeping or purging the
// export folder.
//
// [pipeline] - Options and the Runner used by the CLI and the web form.
// Ensures consistent behavior across both entry points.
//
// [server] - The web form: upload, preview, export, download, cleanup.
//
// [upload] - Staging of uploaded files with memory, file and Redis backends.
//
// [config] - TOML configuration shared by the CLI and the server.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...            # All tests
//	go test ./pkg/chart/...      # Specific package
//	go test -run Example ./...   # Examples only
//
// [dataset]: https://pkg.go.dev/github.com/matzehuels/surveyplot/pkg/dataset
// [io]: https://pkg.go.dev/github.com/matzehuels/surveyplot/pkg/io
// [palette]: https://pkg.go.dev/github.com/matzehuels/surveyplot/pkg/palette
// [chart]: https://pkg.go.dev/github.com/matzehuels/surveyplot/pkg/chart
// [export]: https://pkg.go.dev/github.com/matzehuels/surveyplot/pkg/export
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/surveyplot/pkg/pipeline
// [server]: https://pkg.go.dev/github.com/matzehuels/surveyplot/pkg/server
// [upload]: https://pkg.go.dev/github.com/matzehuels/surveyplot/pkg/upload
// [config]: https://pkg.go.dev/github.com/matzehuels/surveyplot/pkg/config
package pkg
