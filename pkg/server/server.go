// Package server implements the surveyplot web form.
//
// The form uploads a survey document once, then re-renders it while the
// user changes the chart type, the category selection and the styling
// options. Charts can be written into the export folder or downloaded, and
// the export folder can be cleaned up from the same page.
//
// # Routes
//
//	GET  /                  empty form
//	POST /upload            stage a JSON file and list its categories
//	POST /plot              validate the options and show the preview
//	GET  /preview/{id}.png  preview image for a staged upload
//	POST /export            write the chart into the export folder
//	POST /download          write the chart and send it as attachment
//	GET  /exports/{name}    download an exported file
//	POST /exports/sweep     delete exports older than the sweep threshold
//	POST /exports/purge     delete every export
//	GET  /healthz           liveness and build information
//
// The server keeps no per-user state besides staged uploads: every form
// post carries the complete set of options.
package server

import (
	"context"
	"embed"
	"fmt"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/safehtml/template"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/surveyplot/pkg/errors"
	"github.com/matzehuels/surveyplot/pkg/export"
	"github.com/matzehuels/surveyplot/pkg/pipeline"
	"github.com/matzehuels/surveyplot/pkg/upload"
)

//go:embed templates/form.html
var templateFS embed.FS

// Default values.
const (
	DefaultAddr           = ":8080"
	DefaultMaxUploadBytes = 10 << 20
	shutdownTimeout       = 10 * time.Second
)

// Config configures a Server.
type Config struct {
	Addr           string
	MaxUploadBytes int64
	UploadTTL      time.Duration

	// SweepDays is the threshold of the sweep button, StartupDays the one
	// applied by SweepOnStartup.
	SweepDays   int
	StartupDays int

	// Defaults preselects the form. Its PreviewDPI sets the preview size.
	Defaults pipeline.Options
}

// Server serves the web form.
type Server struct {
	cfg     Config
	runner  *pipeline.Runner
	uploads upload.Store
	logger  *log.Logger
	tmpl    *template.Template
	router  chi.Router
}

// New creates a server rendering through runner and staging uploads in
// store. If logger is nil, log.Default() is used.
func New(cfg Config, runner *pipeline.Runner, store upload.Store, logger *log.Logger) (*Server, error) {
	if runner == nil || runner.Writer == nil {
		return nil, errors.New(errors.ErrCodeInternal, "server: runner with export writer required")
	}
	if store == nil {
		return nil, errors.New(errors.ErrCodeInternal, "server: upload store required")
	}
	if logger == nil {
		logger = log.Default()
	}
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if cfg.UploadTTL <= 0 {
		cfg.UploadTTL = upload.DefaultTTL
	}
	if cfg.SweepDays == 0 {
		cfg.SweepDays = export.SweepDays
	}
	if cfg.StartupDays == 0 {
		cfg.StartupDays = export.StartupDays
	}
	if cfg.Defaults.Export.Format == "" {
		cfg.Defaults.Export = export.DefaultOptions()
	}
	if err := cfg.Defaults.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("server defaults: %w", err)
	}

	tmpl, err := template.New("form.html").ParseFS(template.TrustedFSFromEmbed(templateFS), "templates/form.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	s := &Server{
		cfg:     cfg,
		runner:  runner,
		uploads: store,
		logger:  logger,
		tmpl:    tmpl,
	}
	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.logRequests)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestSize(s.cfg.MaxUploadBytes + 1<<20))

	r.Get("/", s.handleIndex)
	r.Post("/upload", s.handleUpload)
	r.Post("/plot", s.handlePlot)
	r.Get("/preview/{id}.png", s.handlePreview)
	r.Post("/export", s.handleExport)
	r.Post("/download", s.handleDownload)
	r.Route("/exports", func(r chi.Router) {
		r.Get("/{name}", s.handleExportFile)
		r.Post("/sweep", s.handleSweep)
		r.Post("/purge", s.handlePurge)
	})
	r.Get("/healthz", s.handleHealth)
	return r
}

// Handler returns the HTTP handler of the form.
func (s *Server) Handler() http.Handler {
	return s.router
}

// SweepOnStartup deletes exports older than the startup threshold.
func (s *Server) SweepOnStartup(ctx context.Context) (export.SweepResult, error) {
	res, err := s.runner.Writer.Sweep(ctx, export.Days(s.cfg.StartupDays))
	if err != nil {
		return res, err
	}
	s.logger.Info("startup sweep", "dir", s.runner.Writer.Dir(), "days", s.cfg.StartupDays, "deleted", len(res.Deleted))
	return res, nil
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
// Expired uploads are cleaned up every UploadTTL while serving.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          s.logger.StandardLog(log.StandardLogOptions{ForceLevel: log.ErrorLevel}),
	}

	errg, ctx := errgroup.WithContext(ctx)
	errg.Go(func() error {
		s.logger.Info("serving web form", "addr", s.cfg.Addr, "exports", s.runner.Writer.Dir())
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	errg.Go(func() error {
		s.cleanupUploads(ctx)
		return nil
	})
	errg.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.logger.Info("shutting down")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})
	return errg.Wait()
}

func (s *Server) cleanupUploads(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.UploadTTL)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.uploads.Cleanup(ctx); err != nil {
				s.logger.Warn("upload cleanup failed", "error", err)
			}
		}
	}
}

// Close releases the upload store.
func (s *Server) Close() error {
	return s.uploads.Close()
}
