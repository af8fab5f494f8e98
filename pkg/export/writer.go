package export

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/surveyplot/pkg/chart"
	"github.com/matzehuels/surveyplot/pkg/dataset"
	"github.com/matzehuels/surveyplot/pkg/errors"
	"github.com/matzehuels/surveyplot/pkg/observability"
)

// TimestampLayout is the suffix appended to file names when timestamps are
// enabled.
const TimestampLayout = "20060102_150405"

// Options configures one export.
type Options struct {
	Format    Format `json:"format" toml:"format"`
	DPI       int    `json:"dpi" toml:"dpi"`
	Name      string `json:"name,omitempty" toml:"-"`    // Base name without extension
	Timestamp bool   `json:"timestamp" toml:"timestamp"` // Append _YYYYmmdd_HHMMSS
}

// DefaultOptions returns png at [DefaultDPI] with a timestamp suffix.
func DefaultOptions() Options {
	return Options{Format: PNG, DPI: DefaultDPI, Timestamp: true}
}

// ValidateAndSetDefaults normalizes the format, fills in the default DPI
// and base name, and validates all fields.
func (o *Options) ValidateAndSetDefaults() error {
	if o.Format == "" {
		o.Format = PNG
	}
	f, err := ParseFormat(string(o.Format))
	if err != nil {
		return err
	}
	o.Format = f

	if o.DPI == 0 {
		o.DPI = DefaultDPI
	}
	if err := errors.ValidateDPI(o.DPI); err != nil {
		return err
	}

	o.Name = strings.TrimSpace(o.Name)
	if o.Name == "" {
		o.Name = dataset.DefaultBaseName
	}
	return errors.ValidateExportName(o.Name)
}

// Filename builds "{name}[_{timestamp}].{format}".
func Filename(name string, f Format, timestamp bool, t time.Time) string {
	if timestamp {
		return fmt.Sprintf("%s_%s.%s", name, t.Format(TimestampLayout), f)
	}
	return fmt.Sprintf("%s.%s", name, f)
}

// Result describes a written export.
type Result struct {
	Path   string `json:"path"`
	Name   string `json:"name"`
	Format Format `json:"format"`
	DPI    int    `json:"dpi"`
	Bytes  int64  `json:"bytes"`
}

// Message is the status line shown to the user after a successful export.
func (r Result) Message() string {
	return fmt.Sprintf("Export erfolgreich! Die Datei wurde gespeichert als: %s", r.Name)
}

// Writer writes figures into a single export directory.
type Writer struct {
	dir    string
	now    func() time.Time
	logger *log.Logger

	mu sync.Mutex
}

// Option configures a Writer.
type Option func(*Writer)

// WithClock sets the time source used for timestamps and retention.
func WithClock(now func() time.Time) Option { return func(w *Writer) { w.now = now } }

// WithLogger sets the logger. The default discards output.
func WithLogger(l *log.Logger) Option { return func(w *Writer) { w.logger = l } }

// NewWriter returns a Writer for dir. The directory is created on first
// write.
func NewWriter(dir string, opts ...Option) *Writer {
	w := &Writer{
		dir: dir,
		now: time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return w
}

// Dir returns the export directory.
func (w *Writer) Dir() string {
	return w.dir
}

// Write encodes fig into the export directory. The file is written under a
// temporary name and renamed into place; an existing file of the same name
// is replaced.
func (w *Writer) Write(ctx context.Context, fig *chart.Figure, opts Options) (res Result, err error) {
	defer func() { observability.Export().OnExport(ctx, res.Path, string(opts.Format), res.Bytes, err) }()

	if err := opts.ValidateAndSetDefaults(); err != nil {
		return Result{}, err
	}
	name := Filename(opts.Name, opts.Format, opts.Timestamp, w.now())
	path := filepath.Join(w.dir, name)

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return Result{}, errors.Wrap(errors.ErrCodeExport, err, "create export folder")
	}

	n, err := w.writeFile(ctx, path, fig, opts)
	if err != nil {
		return Result{}, err
	}
	if _, err := os.Stat(path); err != nil {
		return Result{}, errors.Wrap(errors.ErrCodeExport, err, "export failed: %s was not created", name)
	}

	w.logger.Info("exported figure", "path", path, "format", opts.Format, "dpi", opts.DPI, "bytes", n)
	return Result{Path: path, Name: name, Format: opts.Format, DPI: opts.DPI, Bytes: n}, nil
}

func (w *Writer) writeFile(ctx context.Context, path string, fig *chart.Figure, opts Options) (int64, error) {
	tmp, err := os.CreateTemp(w.dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return 0, errors.Wrap(errors.ErrCodeExport, err, "create temp file")
	}
	tmpPath := tmp.Name()
	ok := false
	defer func() {
		if !ok {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	buf := bufio.NewWriter(tmp)
	n, err := Encode(ctx, buf, fig, opts.Format, opts.DPI)
	if err != nil {
		return 0, err
	}
	if err := buf.Flush(); err != nil {
		return 0, errors.Wrap(errors.ErrCodeExport, err, "write %s", filepath.Base(path))
	}
	if err := tmp.Close(); err != nil {
		return 0, errors.Wrap(errors.ErrCodeExport, err, "write %s", filepath.Base(path))
	}
	if err := os.Chmod(tmpPath, 0644); err != nil {
		return 0, errors.Wrap(errors.ErrCodeExport, err, "write %s", filepath.Base(path))
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return 0, errors.Wrap(errors.ErrCodeExport, err, "write %s", filepath.Base(path))
	}
	ok = true
	return n, nil
}

// Open opens an exported file by its base name.
func (w *Writer) Open(name string) (*os.File, os.FileInfo, error) {
	if err := errors.ValidateExportName(name); err != nil {
		return nil, nil, err
	}
	f, err := os.Open(filepath.Join(w.dir, name))
	if os.IsNotExist(err) {
		return nil, nil, errors.New(errors.ErrCodeFileNotFound, "export not found: %s", name)
	}
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeExport, err, "open %s", name)
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, nil, errors.Wrap(errors.ErrCodeExport, err, "stat %s", name)
	}
	if !info.Mode().IsRegular() {
		_ = f.Close()
		return nil, nil, errors.New(errors.ErrCodeFileNotFound, "export not found: %s", name)
	}
	return f, info, nil
}
