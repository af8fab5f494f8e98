package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/surveyplot/pkg/dataset"
	"github.com/matzehuels/surveyplot/pkg/export"
	surveyio "github.com/matzehuels/surveyplot/pkg/io"
	"github.com/matzehuels/surveyplot/pkg/pipeline"
	"github.com/matzehuels/surveyplot/pkg/upload"
)

var fixedNow = time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

func multiDoc() *dataset.Document {
	return &dataset.Document{
		Title:         "Digitalisierung",
		CategoryNames: []string{"digital", "gemischt", "analog"},
		Results: dataset.Multi(
			dataset.Series{Name: "derzeit", Values: []float64{4, 7, 9}},
			dataset.Series{Name: "kuenftig", Values: []float64{7, 7, 6}},
		),
		Filename: "bar_chart.png",
	}
}

func flatDoc() *dataset.Document {
	return &dataset.Document{
		Title:         "Tools",
		CategoryNames: []string{"Nein", "Ja"},
		Results:       dataset.Flat(9, 21),
	}
}

type testServer struct {
	*Server
	dir   string
	store *upload.MemoryStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dir := t.TempDir()
	logger := log.NewWithOptions(&bytes.Buffer{}, log.Options{})
	w := export.NewWriter(dir, export.WithClock(func() time.Time { return fixedNow }), export.WithLogger(logger))
	store, err := upload.NewMemoryStore(8)
	if err != nil {
		t.Fatalf("NewMemoryStore: %v", err)
	}
	s, err := New(Config{}, pipeline.NewRunner(w, logger), store, logger)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return &testServer{Server: s, dir: dir, store: store}
}

// stage stores doc as an upload and returns its id.
func (ts *testServer) stage(t *testing.T, doc *dataset.Document) string {
	t.Helper()
	var buf bytes.Buffer
	if err := surveyio.WriteJSON(doc, &buf); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	u := upload.New("survey.json", buf.Bytes(), time.Hour)
	if err := ts.store.Set(context.Background(), u); err != nil {
		t.Fatalf("Set: %v", err)
	}
	return u.ID
}

func (ts *testServer) post(t *testing.T, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	ts.Handler().ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	ts.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func (ts *testServer) files(t *testing.T) []string {
	t.Helper()
	entries, err := os.ReadDir(ts.dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func mustContain(t *testing.T, body string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(body, w) {
			t.Errorf("body does not contain %q", w)
		}
	}
}

func TestIndex(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.get(t, "/")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	mustContain(t, rec.Body.String(), msgUploadFirst, pipeline.NameStacked, `value="300"`)
}

func TestUpload(t *testing.T) {
	ts := newTestServer(t)

	var data bytes.Buffer
	if err := surveyio.WriteJSON(multiDoc(), &data); err != nil {
		t.Fatal(err)
	}
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile(fieldFile, "survey.json")
	if err != nil {
		t.Fatal(err)
	}
	fw.Write(data.Bytes())
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	ts.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	page := rec.Body.String()
	mustContain(t, page, "Datei geladen", `value="digital"`, `value="gemischt"`, `value="analog"`, "survey.json")

	m := regexp.MustCompile(`name="upload" value="([0-9a-f-]{36})"`).FindStringSubmatch(page)
	if m == nil {
		t.Fatal("upload id not in page")
	}
	if _, err := ts.store.Get(context.Background(), m[1]); err != nil {
		t.Errorf("staged upload: %v", err)
	}
}

func TestUploadErrors(t *testing.T) {
	tests := []struct {
		name string
		file string
		data string
		want int
	}{
		{"no file", "", "", http.StatusBadRequest},
		{"invalid json", "bad.json", "{", http.StatusBadRequest},
		{"missing categories", "empty.json", `{"results": [1, 2]}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			var body bytes.Buffer
			mw := multipart.NewWriter(&body)
			if tt.file != "" {
				fw, _ := mw.CreateFormFile(fieldFile, tt.file)
				fw.Write([]byte(tt.data))
			} else {
				mw.WriteField("other", "x")
			}
			mw.Close()

			req := httptest.NewRequest(http.MethodPost, "/upload", &body)
			req.Header.Set("Content-Type", mw.FormDataContentType())
			rec := httptest.NewRecorder()
			ts.Handler().ServeHTTP(rec, req)

			if rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
			mustContain(t, rec.Body.String(), titleError)
			if ts.store.Len() != 0 {
				t.Errorf("store has %d uploads", ts.store.Len())
			}
		})
	}
}

func TestPlot(t *testing.T) {
	ts := newTestServer(t)
	id := ts.stage(t, multiDoc())

	rec := ts.post(t, "/plot", url.Values{
		fieldUpload:   {id},
		fieldType:     {"stacked"},
		fieldCategory: {"digital", "analog"},
		fieldTitle:    {"Stand"},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	page := rec.Body.String()
	mustContain(t, page, msgPlotted, "/preview/"+id+".png", `value="Stand"`)
	if strings.Contains(page, `value="gemischt" checked`) {
		t.Error("unselected category is checked")
	}
	if got := ts.files(t); len(got) != 0 {
		t.Errorf("plot wrote files: %v", got)
	}
}

func TestPlotErrors(t *testing.T) {
	tests := []struct {
		name   string
		doc    *dataset.Document
		form   url.Values
		status int
		want   string
	}{
		{
			name:   "pie on multiple series",
			doc:    multiDoc(),
			form:   url.Values{fieldType: {"pie"}},
			status: http.StatusBadRequest,
			want:   pipeline.IncompatibleMessage,
		},
		{
			name:   "unknown plot type",
			doc:    multiDoc(),
			form:   url.Values{fieldType: {"radar"}},
			status: http.StatusBadRequest,
			want:   "radar",
		},
		{
			name:   "no upload",
			form:   url.Values{fieldType: {"stacked"}},
			status: http.StatusBadRequest,
			want:   msgNoFile,
		},
		{
			name:   "expired upload",
			form:   url.Values{fieldUpload: {"7d444840-9dc0-11d1-b245-5ffdce74fad2"}},
			status: http.StatusNotFound,
			want:   "abgelaufen",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			if tt.doc != nil {
				tt.form.Set(fieldUpload, ts.stage(t, tt.doc))
			}
			rec := ts.post(t, "/plot", tt.form)
			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			mustContain(t, rec.Body.String(), titleError, tt.want)
		})
	}
}

func TestPreview(t *testing.T) {
	ts := newTestServer(t)
	id := ts.stage(t, flatDoc())

	rec := ts.get(t, "/preview/"+id+".png?type=pie&scheme=Blau")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if got := rec.Header().Get("Content-Type"); got != "image/png" {
		t.Errorf("Content-Type = %q", got)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), pngMagic) {
		t.Error("preview is not a png")
	}

	if rec := ts.get(t, "/preview/"+id+".png?type=radar"); rec.Code != http.StatusBadRequest {
		t.Errorf("invalid type: status = %d", rec.Code)
	}
	if rec := ts.get(t, "/preview/not-an-id.png"); rec.Code != http.StatusNotFound {
		t.Errorf("unknown upload: status = %d", rec.Code)
	}
}

func exportForm(id string) url.Values {
	return url.Values{
		fieldUpload:    {id},
		fieldType:      {"hbar"},
		fieldFormat:    {"png"},
		fieldDPI:       {"72"},
		fieldName:      {"report"},
		fieldOptions:   {"1"},
		fieldTimestamp: {"1"},
	}
}

func TestExport(t *testing.T) {
	ts := newTestServer(t)
	id := ts.stage(t, flatDoc())

	rec := ts.post(t, "/export", exportForm(id))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	name := "report_20240309_140507.png"
	mustContain(t, rec.Body.String(), "Export erfolgreich", name, "/exports/"+name)
	if diff := cmp.Diff([]string{name}, ts.files(t)); diff != "" {
		t.Errorf("files mismatch (-want +got):\n%s", diff)
	}

	// Unchecking the timestamp drops it from the name.
	form := exportForm(id)
	form.Del(fieldTimestamp)
	if rec := ts.post(t, "/export", form); rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if diff := cmp.Diff([]string{"report.png", name}, ts.files(t)); diff != "" {
		t.Errorf("files mismatch (-want +got):\n%s", diff)
	}
}

func TestExportErrors(t *testing.T) {
	tests := []struct {
		name  string
		field string
		value string
	}{
		{"dpi too low", fieldDPI, "50"},
		{"dpi not a number", fieldDPI, "viel"},
		{"bad format", fieldFormat, "gif"},
		{"path in name", fieldName, "../x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			form := exportForm(ts.stage(t, flatDoc()))
			form.Set(tt.field, tt.value)

			rec := ts.post(t, "/export", form)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			mustContain(t, rec.Body.String(), "Fehler:")
			if got := ts.files(t); len(got) != 0 {
				t.Errorf("files written: %v", got)
			}
		})
	}
}

func TestDownload(t *testing.T) {
	ts := newTestServer(t)
	id := ts.stage(t, flatDoc())

	rec := ts.post(t, "/download", exportForm(id))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	if got, want := rec.Header().Get("Content-Disposition"), `attachment; filename="report_20240309_140507.png"`; got != want {
		t.Errorf("Content-Disposition = %q, want %q", got, want)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), pngMagic) {
		t.Error("download is not a png")
	}
	if got := ts.files(t); len(got) != 1 {
		t.Errorf("files = %v, want the downloaded export", got)
	}
}

func TestExportFile(t *testing.T) {
	ts := newTestServer(t)
	if err := os.WriteFile(filepath.Join(ts.dir, "a.svg"), []byte("<svg/>"), 0o644); err != nil {
		t.Fatal(err)
	}

	rec := ts.get(t, "/exports/a.svg")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "image/svg+xml" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := rec.Body.String(); got != "<svg/>" {
		t.Errorf("body = %q", got)
	}

	if rec := ts.get(t, "/exports/missing.png"); rec.Code != http.StatusNotFound {
		t.Errorf("missing: status = %d", rec.Code)
	}
}

func TestRetention(t *testing.T) {
	ts := newTestServer(t)
	old := fixedNow.Add(-10 * 24 * time.Hour)
	for name, mod := range map[string]time.Time{"old.png": old, "new.png": fixedNow} {
		path := filepath.Join(ts.dir, name)
		if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := os.Chtimes(path, mod, mod); err != nil {
			t.Fatal(err)
		}
	}

	rec := ts.post(t, "/exports/sweep", url.Values{})
	if rec.Code != http.StatusOK {
		t.Fatalf("sweep status = %d", rec.Code)
	}
	mustContain(t, rec.Body.String(), "1 alte Dateien wurden gelöscht")
	if diff := cmp.Diff([]string{"new.png"}, ts.files(t)); diff != "" {
		t.Errorf("after sweep (-want +got):\n%s", diff)
	}

	rec = ts.post(t, "/exports/sweep", url.Values{})
	mustContain(t, rec.Body.String(), "keine alten Dateien")

	rec = ts.post(t, "/exports/purge", url.Values{})
	mustContain(t, rec.Body.String(), "Alle 1 Dateien")
	if got := ts.files(t); len(got) != 0 {
		t.Errorf("after purge: %v", got)
	}

	rec = ts.post(t, "/exports/purge", url.Values{})
	mustContain(t, rec.Body.String(), "bereits leer")
}

func TestRetentionKeepsForm(t *testing.T) {
	ts := newTestServer(t)
	id := ts.stage(t, multiDoc())

	rec := ts.post(t, "/exports/purge", url.Values{
		fieldUpload:   {id},
		fieldCategory: {"analog"},
	})
	mustContain(t, rec.Body.String(), `value="`+id+`"`, `value="analog" checked`)
}

func TestSweepOnStartup(t *testing.T) {
	ts := newTestServer(t)
	path := filepath.Join(ts.dir, "ancient.pdf")
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	old := fixedNow.Add(-31 * 24 * time.Hour)
	if err := os.Chtimes(path, old, old); err != nil {
		t.Fatal(err)
	}

	res, err := ts.SweepOnStartup(context.Background())
	if err != nil {
		t.Fatalf("SweepOnStartup: %v", err)
	}
	if diff := cmp.Diff([]string{"ancient.pdf"}, res.Deleted); diff != "" {
		t.Errorf("deleted mismatch (-want +got):\n%s", diff)
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.get(t, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var got health
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Status != "ok" || got.Exports != ts.dir {
		t.Errorf("health = %+v", got)
	}
}

func TestNewRequiresDependencies(t *testing.T) {
	w := export.NewWriter(t.TempDir())
	store, err := upload.NewMemoryStore(1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := New(Config{}, nil, store, nil); err == nil {
		t.Error("nil runner accepted")
	}
	if _, err := New(Config{}, pipeline.NewRunner(w, nil), nil, nil); err == nil {
		t.Error("nil store accepted")
	}
}

func TestStatusFor(t *testing.T) {
	ts := newTestServer(t)
	id := ts.stage(t, flatDoc())
	tests := []struct {
		name string
		form url.Values
		want int
	}{
		{"ok", url.Values{fieldUpload: {id}, fieldType: {"pie"}}, http.StatusOK},
		{"bad scheme", url.Values{fieldUpload: {id}, fieldScheme: {"Neon"}}, http.StatusBadRequest},
		{"bad dpi", url.Values{fieldUpload: {id}, fieldDPI: {"9000"}}, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := ts.post(t, "/plot", tt.form); rec.Code != tt.want {
				t.Errorf("status = %d, want %d", rec.Code, tt.want)
			}
		})
	}
}

func TestListenAndServeShutsDown(t *testing.T) {
	logger := log.NewWithOptions(&bytes.Buffer{}, log.Options{})
	store, err := upload.NewMemoryStore(1)
	if err != nil {
		t.Fatal(err)
	}
	w := export.NewWriter(t.TempDir())
	s, err := New(Config{Addr: "127.0.0.1:0"}, pipeline.NewRunner(w, logger), store, logger)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe() = %v, want nil after cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
