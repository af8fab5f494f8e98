package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/surveyplot/pkg/buildinfo"
	"github.com/matzehuels/surveyplot/pkg/dataset"
	"github.com/matzehuels/surveyplot/pkg/errors"
	"github.com/matzehuels/surveyplot/pkg/export"
	surveyio "github.com/matzehuels/surveyplot/pkg/io"
	"github.com/matzehuels/surveyplot/pkg/observability"
	"github.com/matzehuels/surveyplot/pkg/upload"
)

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	p := s.newPage(s.cfg.Defaults.Clone(), nil, nil)
	p.Info = &banner{Title: titleInfo, Text: msgUploadFirst}
	s.render(w, r, http.StatusOK, p)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	p := s.newPage(s.cfg.Defaults.Clone(), nil, nil)

	u, doc, err := s.receive(r)
	if err != nil {
		s.fail(w, r, p, titleError, err)
		return
	}
	if err := s.uploads.Set(r.Context(), u); err != nil {
		s.fail(w, r, p, titleError, errors.Wrap(errors.ErrCodeInternal, err, "store upload"))
		return
	}

	p = s.newPage(s.cfg.Defaults.Clone(), u, doc)
	p.Notice = &banner{Title: titleLoaded, Text: msgLoaded}
	s.render(w, r, http.StatusOK, p)
}

// receive reads and validates the uploaded file.
func (s *Server) receive(r *http.Request) (*upload.Upload, *dataset.Document, error) {
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeMissingUpload, err, msgNoFile)
	}
	file, hdr, err := r.FormFile(fieldFile)
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeMissingUpload, err, msgNoFile)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read upload")
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		return nil, nil, errors.New(errors.ErrCodeInvalidInput, "file too large (max %d bytes)", s.cfg.MaxUploadBytes)
	}

	doc, err := surveyio.ReadJSON(bytes.NewReader(data))
	if err != nil {
		return nil, nil, err
	}
	return upload.New(hdr.Filename, data, s.cfg.UploadTTL), doc, nil
}

// load returns the staged upload named by id.
func (s *Server) load(r *http.Request, id string) (*upload.Upload, *dataset.Document, error) {
	if id == "" {
		return nil, nil, errors.New(errors.ErrCodeMissingUpload, msgNoFile)
	}
	u, err := s.uploads.Get(r.Context(), id)
	if err == upload.ErrNotFound || err == upload.ErrInvalidID {
		return nil, nil, errors.New(errors.ErrCodeUploadNotFound, msgExpired)
	}
	if err != nil {
		return nil, nil, errors.Wrap(errors.ErrCodeInternal, err, "load upload")
	}
	doc, err := u.Document()
	if err != nil {
		return nil, nil, err
	}
	return u, doc, nil
}

func (s *Server) handlePlot(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.fail(w, r, s.newPage(s.cfg.Defaults.Clone(), nil, nil), titleError,
			errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid form"))
		return
	}
	opts, optsErr := s.parseOptions(r.PostForm)
	u, doc, err := s.load(r, r.PostForm.Get(fieldUpload))
	p := s.newPage(opts, u, doc)
	if err != nil {
		s.fail(w, r, p, titleError, err)
		return
	}
	if optsErr != nil {
		s.fail(w, r, p, titleError, optsErr)
		return
	}

	fig, err := s.runner.Build(r.Context(), doc, opts)
	if err != nil {
		s.fail(w, r, p, titleError, err)
		return
	}
	fig.Close()

	p.PreviewURL = previewURL(u.ID, opts)
	p.Notice = &banner{Text: msgPlotted}
	s.render(w, r, http.StatusOK, p)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	u, doc, err := s.load(r, chi.URLParam(r, "id"))
	if err != nil {
		s.failPlain(w, r, err)
		return
	}
	opts, err := s.parseOptions(r.URL.Query())
	if err != nil {
		s.failPlain(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := s.runner.Preview(r.Context(), doc, opts, &buf); err != nil {
		s.failPlain(w, r, err)
		return
	}

	w.Header().Set("Content-Type", export.PNG.ContentType())
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("Cache-Control", "no-store")
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Debug("write preview", "upload", u.ID, "error", err)
	}
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	p, res, ok := s.export(w, r)
	if !ok {
		return
	}
	p.Notice = &banner{Title: titleDone, Text: res.Message(), Detail: res.Path}
	s.render(w, r, http.StatusOK, p)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	_, res, ok := s.export(w, r)
	if !ok {
		return
	}
	s.serveExport(w, r, res.Name)
}

// export writes the chart described by the posted form. On failure the form
// is rendered with an error and ok is false.
func (s *Server) export(w http.ResponseWriter, r *http.Request) (p *page, res export.Result, ok bool) {
	if err := r.ParseForm(); err != nil {
		s.fail(w, r, s.newPage(s.cfg.Defaults.Clone(), nil, nil), titleFailure,
			errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid form"))
		return nil, res, false
	}
	opts, err := s.parseOptions(r.PostForm)
	u, doc, loadErr := s.load(r, r.PostForm.Get(fieldUpload))
	if loadErr != nil {
		err = loadErr
	}
	if err == nil {
		res, err = s.runner.Export(r.Context(), doc, opts)
	}
	// The page is built after the export so the listing includes it.
	p = s.newPage(opts, u, doc)
	if err != nil {
		s.fail(w, r, p, titleFailure, err)
		return nil, res, false
	}
	p.PreviewURL = previewURL(u.ID, opts)
	return p, res, true
}

func (s *Server) handleExportFile(w http.ResponseWriter, r *http.Request) {
	s.serveExport(w, r, chi.URLParam(r, "name"))
}

// serveExport sends an exported file as attachment.
func (s *Server) serveExport(w http.ResponseWriter, r *http.Request, name string) {
	f, info, err := s.runner.Writer.Open(name)
	if err != nil {
		s.failPlain(w, r, err)
		return
	}
	defer f.Close()

	format, err := export.ParseFormat(strings.TrimPrefix(filepath.Ext(name), "."))
	if err == nil {
		w.Header().Set("Content-Type", format.ContentType())
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	http.ServeContent(w, r, name, info.ModTime(), f)
}

func (s *Server) handleSweep(w http.ResponseWriter, r *http.Request) {
	res, err := s.runner.Writer.Sweep(r.Context(), export.Days(s.cfg.SweepDays))
	s.retentionPage(w, r, res, err)
}

func (s *Server) handlePurge(w http.ResponseWriter, r *http.Request) {
	res, err := s.runner.Writer.Purge(r.Context())
	s.retentionPage(w, r, res, err)
}

// retentionPage shows the outcome of a sweep or purge, keeping the form as
// it was posted.
func (s *Server) retentionPage(w http.ResponseWriter, r *http.Request, res export.SweepResult, err error) {
	_ = r.ParseForm()
	opts, _ := s.parseOptions(r.PostForm)
	u, doc, loadErr := s.load(r, r.PostForm.Get(fieldUpload))
	if loadErr != nil {
		u, doc = nil, nil
	}
	p := s.newPage(opts, u, doc)
	if err != nil {
		s.fail(w, r, p, titleFailure, err)
		return
	}
	if len(res.Deleted) == 0 {
		p.Info = &banner{Title: titleInfo, Text: res.Message}
	} else {
		p.Notice = &banner{Title: titleDone, Text: res.Message}
	}
	s.render(w, r, http.StatusOK, p)
}

type health struct {
	Status  string         `json:"status"`
	Build   buildinfo.Info `json:"build"`
	Exports string         `json:"exports"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(health{
		Status:  "ok",
		Build:   buildinfo.Get(),
		Exports: s.runner.Writer.Dir(),
	}); err != nil {
		s.logger.Debug("write health", "error", err)
	}
}

// =============================================================================
// Responses
// =============================================================================

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, p *page) {
	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, p); err != nil {
		s.logger.Error("render form", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// fail renders the form with an error banner.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, p *page, title string, err error) {
	observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)
	p.Error = &banner{Title: title, Text: errors.UserMessage(err)}
	p.Notice, p.Info = nil, nil
	s.render(w, r, statusFor(err), p)
}

// failPlain answers non-form routes with a text error.
func (s *Server) failPlain(w http.ResponseWriter, r *http.Request, err error) {
	observability.HTTP().OnError(r.Context(), r.Method, r.URL.Path, err)
	http.Error(w, errors.UserMessage(err), statusFor(err))
}

// statusFor maps an error to its HTTP status.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeNotFound, errors.ErrCodeUploadNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	}
	switch errors.GetKind(err) {
	case errors.KindInput, errors.KindShape:
		return http.StatusBadRequest
	case errors.KindRender:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}
