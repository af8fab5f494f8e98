// Package observability provides hooks for metrics, tracing, and logging.
//
// Libraries emit events through small hook interfaces and never depend on a
// particular backend. The binary registers implementations at startup; until
// then every hook is a no-op.
//
// # Hook Families
//
//   - [PipelineHooks]: chart builds and figure encoding
//   - [ExportHooks]: files written to the export folder and retention runs
//   - [UploadHooks]: upload staging lookups and writes
//   - [HTTPHooks]: requests served by the web form
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    logger := log.Default()
//	    observability.SetPipelineHooks(observability.NewLogHooks(logger))
//	    observability.SetExportHooks(observability.NewLogHooks(logger))
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Pipeline().OnBuildStart(ctx, "stacked", len(categories))
//	// ... build figure ...
//	observability.Pipeline().OnBuildComplete(ctx, "stacked", time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Pipeline Hooks
// =============================================================================

// PipelineHooks receives events from the render pipeline.
type PipelineHooks interface {
	// Build events
	OnBuildStart(ctx context.Context, plotType string, categories int)
	OnBuildComplete(ctx context.Context, plotType string, duration time.Duration, err error)

	// Encode events
	OnEncodeStart(ctx context.Context, format string, dpi int)
	OnEncodeComplete(ctx context.Context, format string, size int64, duration time.Duration, err error)
}

// =============================================================================
// Export Hooks
// =============================================================================

// ExportHooks receives events about the export folder.
type ExportHooks interface {
	// OnExport records a file written (or failed to be written) to the folder.
	OnExport(ctx context.Context, path, format string, size int64, err error)

	// OnSweep records a retention run that removed files older than a threshold.
	OnSweep(ctx context.Context, olderThan time.Duration, deleted int, err error)

	// OnPurge records a run that removed every file.
	OnPurge(ctx context.Context, deleted int, err error)
}

// =============================================================================
// Upload Hooks
// =============================================================================

// UploadHooks receives events from upload stores.
type UploadHooks interface {
	// OnUploadHit records a successful lookup.
	OnUploadHit(ctx context.Context, backend string)

	// OnUploadMiss records a lookup of a missing or expired upload.
	OnUploadMiss(ctx context.Context, backend string)

	// OnUploadStore records a write.
	OnUploadStore(ctx context.Context, backend string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from the HTTP server.
type HTTPHooks interface {
	// OnRequest records an incoming request.
	OnRequest(ctx context.Context, method, path string)

	// OnResponse records a completed response.
	OnResponse(ctx context.Context, method, path string, statusCode int, duration time.Duration)

	// OnError records a request that ended in an error shown to the user.
	OnError(ctx context.Context, method, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopPipelineHooks is a no-op implementation of PipelineHooks.
type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnBuildStart(context.Context, string, int)                             {}
func (NoopPipelineHooks) OnBuildComplete(context.Context, string, time.Duration, error)         {}
func (NoopPipelineHooks) OnEncodeStart(context.Context, string, int)                            {}
func (NoopPipelineHooks) OnEncodeComplete(context.Context, string, int64, time.Duration, error) {}

// NoopExportHooks is a no-op implementation of ExportHooks.
type NoopExportHooks struct{}

func (NoopExportHooks) OnExport(context.Context, string, string, int64, error) {}
func (NoopExportHooks) OnSweep(context.Context, time.Duration, int, error)     {}
func (NoopExportHooks) OnPurge(context.Context, int, error)                    {}

// NoopUploadHooks is a no-op implementation of UploadHooks.
type NoopUploadHooks struct{}

func (NoopUploadHooks) OnUploadHit(context.Context, string)        {}
func (NoopUploadHooks) OnUploadMiss(context.Context, string)       {}
func (NoopUploadHooks) OnUploadStore(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	pipelineHooks PipelineHooks = NoopPipelineHooks{}
	exportHooks   ExportHooks   = NoopExportHooks{}
	uploadHooks   UploadHooks   = NoopUploadHooks{}
	httpHooks     HTTPHooks     = NoopHTTPHooks{}
	hooksMu       sync.RWMutex
)

// SetPipelineHooks registers custom pipeline hooks.
// This should be called once at application startup before any rendering.
func SetPipelineHooks(h PipelineHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		pipelineHooks = h
	}
}

// SetExportHooks registers custom export hooks.
func SetExportHooks(h ExportHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		exportHooks = h
	}
}

// SetUploadHooks registers custom upload hooks.
func SetUploadHooks(h UploadHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		uploadHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before serving.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Pipeline returns the registered pipeline hooks.
func Pipeline() PipelineHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return pipelineHooks
}

// Export returns the registered export hooks.
func Export() ExportHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return exportHooks
}

// Upload returns the registered upload hooks.
func Upload() UploadHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return uploadHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	pipelineHooks = NoopPipelineHooks{}
	exportHooks = NoopExportHooks{}
	uploadHooks = NoopUploadHooks{}
	httpHooks = NoopHTTPHooks{}
}
