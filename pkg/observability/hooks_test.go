package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Pipeline hooks
	p := NoopPipelineHooks{}
	p.OnBuildStart(ctx, "stacked", 4)
	p.OnBuildComplete(ctx, "stacked", time.Second, nil)
	p.OnEncodeStart(ctx, "png", 300)
	p.OnEncodeComplete(ctx, "png", 2048, time.Second, nil)

	// Export hooks
	e := NoopExportHooks{}
	e.OnExport(ctx, "/tmp/exports/plot.png", "png", 2048, nil)
	e.OnSweep(ctx, 7*24*time.Hour, 3, nil)
	e.OnPurge(ctx, 5, nil)

	// Upload hooks
	u := NoopUploadHooks{}
	u.OnUploadHit(ctx, "memory")
	u.OnUploadMiss(ctx, "redis")
	u.OnUploadStore(ctx, "file", 512)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "POST", "/plot")
	h.OnResponse(ctx, "POST", "/plot", 200, time.Second)
	h.OnError(ctx, "POST", "/plot", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Export().(NoopExportHooks); !ok {
		t.Error("Export() should return NoopExportHooks by default")
	}
	if _, ok := Upload().(NoopUploadHooks); !ok {
		t.Error("Upload() should return NoopUploadHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	// Set custom hooks
	hooks := NewLogHooks(nil)
	SetPipelineHooks(hooks)
	SetExportHooks(hooks)
	SetUploadHooks(hooks)
	SetHTTPHooks(hooks)
	if Pipeline() != PipelineHooks(hooks) {
		t.Error("SetPipelineHooks should set custom hooks")
	}
	if Export() != ExportHooks(hooks) {
		t.Error("SetExportHooks should set custom hooks")
	}
	if Upload() != UploadHooks(hooks) {
		t.Error("SetUploadHooks should set custom hooks")
	}
	if HTTP() != HTTPHooks(hooks) {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Export().(NoopExportHooks); !ok {
		t.Error("Reset() should restore NoopExportHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := NewLogHooks(nil)
	SetExportHooks(custom)

	// Setting nil should be ignored
	SetExportHooks(nil)

	if Export() != ExportHooks(custom) {
		t.Error("SetExportHooks(nil) should be ignored")
	}

	Reset()
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	h := NewLogHooks(logger)
	ctx := context.Background()

	h.OnExport(ctx, "exports/report.svg", "svg", 1234, nil)
	h.OnSweep(ctx, time.Hour, 0, errors.New("permission denied"))

	out := buf.String()
	for _, want := range []string{"export", "report.svg", "bytes=1234", "WARN", "permission denied"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestLogHooks_InfoLevelHidesDebug(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.InfoLevel})
	h := NewLogHooks(logger)

	h.OnBuildStart(context.Background(), "pie", 2)

	if buf.Len() != 0 {
		t.Errorf("expected no output at info level, got %q", buf.String())
	}
}
