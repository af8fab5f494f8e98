package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks implements every hook family by writing debug-level records to a
// charmbracelet logger. Failures are logged at warn level.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that log to logger, or to log.Default() if nil.
func NewLogHooks(logger *log.Logger) *LogHooks {
	if logger == nil {
		logger = log.Default()
	}
	return &LogHooks{logger: logger.WithPrefix("hooks")}
}

func (h *LogHooks) done(msg string, err error, kv ...any) {
	if err != nil {
		h.logger.Warn(msg, append(kv, "err", err)...)
		return
	}
	h.logger.Debug(msg, kv...)
}

func (h *LogHooks) OnBuildStart(_ context.Context, plotType string, categories int) {
	h.logger.Debug("build start", "type", plotType, "categories", categories)
}

func (h *LogHooks) OnBuildComplete(_ context.Context, plotType string, d time.Duration, err error) {
	h.done("build complete", err, "type", plotType, "duration", d)
}

func (h *LogHooks) OnEncodeStart(_ context.Context, format string, dpi int) {
	h.logger.Debug("encode start", "format", format, "dpi", dpi)
}

func (h *LogHooks) OnEncodeComplete(_ context.Context, format string, size int64, d time.Duration, err error) {
	h.done("encode complete", err, "format", format, "bytes", size, "duration", d)
}

func (h *LogHooks) OnExport(_ context.Context, path, format string, size int64, err error) {
	h.done("export", err, "path", path, "format", format, "bytes", size)
}

func (h *LogHooks) OnSweep(_ context.Context, olderThan time.Duration, deleted int, err error) {
	h.done("sweep", err, "older_than", olderThan, "deleted", deleted)
}

func (h *LogHooks) OnPurge(_ context.Context, deleted int, err error) {
	h.done("purge", err, "deleted", deleted)
}

func (h *LogHooks) OnUploadHit(_ context.Context, backend string) {
	h.logger.Debug("upload hit", "backend", backend)
}

func (h *LogHooks) OnUploadMiss(_ context.Context, backend string) {
	h.logger.Debug("upload miss", "backend", backend)
}

func (h *LogHooks) OnUploadStore(_ context.Context, backend string, size int) {
	h.logger.Debug("upload stored", "backend", backend, "bytes", size)
}

func (h *LogHooks) OnRequest(_ context.Context, method, path string) {
	h.logger.Debug("request", "method", method, "path", path)
}

func (h *LogHooks) OnResponse(_ context.Context, method, path string, status int, d time.Duration) {
	h.logger.Debug("response", "method", method, "path", path, "status", status, "duration", d)
}

func (h *LogHooks) OnError(_ context.Context, method, path string, err error) {
	h.logger.Warn("request failed", "method", method, "path", path, "err", err)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ ExportHooks   = (*LogHooks)(nil)
	_ UploadHooks   = (*LogHooks)(nil)
	_ HTTPHooks     = (*LogHooks)(nil)
)
