// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package server exposes the conversion service over HTTP. It parses
// multipart uploads into conversion requests and writes results back as
// file downloads.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/docverse/pkg/types"
)

// ServiceName is reported by the health endpoints.
const ServiceName = "docverse"

// Converter is what the server needs from the conversion service.
type Converter interface {
	Run(ctx context.Context, log logrus.FieldLogger, req types.ConversionRequest) (types.ConversionResult, error)
	EncryptionStatus(file types.InputFile) (bool, error)
}

// Server routes HTTP requests to a Converter.
type Server struct {
	cfg  types.ServerConfig
	conv Converter
	log  logrus.FieldLogger
}

// New returns a Server. Zero values in cfg fall back to defaults.
func New(cfg types.ServerConfig, conv Converter, log logrus.FieldLogger) *Server {
	if cfg.Addr == "" {
		cfg.Addr = ":4000"
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 50 << 20
	}
	if len(cfg.CORSOrigins) == 0 {
		cfg.CORSOrigins = []string{"*"}
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Server{cfg: cfg, conv: conv, log: log}
}

// Handler returns the routed handler with CORS and request logging applied.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	r.HandleFunc("/convert/{format:word|excel|powerpoint}-to-pdf", s.handleOfficeToPDF).Methods(http.MethodPost)
	r.HandleFunc("/convert/pdf-to-{format:word|excel|powerpoint}", s.handlePDFToOffice).Methods(http.MethodPost)
	r.HandleFunc("/compress-pdf", s.handleCompress).Methods(http.MethodPost)
	r.HandleFunc("/ocr-searchable-pdf", s.handleOCR).Methods(http.MethodPost)
	r.HandleFunc("/merge-pdf", s.handleMerge).Methods(http.MethodPost)
	r.HandleFunc("/jobs/merge-pdf", s.handleMerge).Methods(http.MethodPost)
	r.HandleFunc("/unlock-pdf", s.handleUnlock).Methods(http.MethodPost)
	r.HandleFunc("/pdf-encryption-status", s.handleEncryptionStatus).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	c := cors.New(cors.Options{
		AllowedOrigins: s.cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"Content-Disposition", "Content-Length", EngineHeader},
	})
	// Wrapping the router rather than r.Use also covers 404 and 405, which
	// mux answers without running route middleware.
	return c.Handler(s.withRequestLog(r))
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully,
// letting in-flight conversions finish within the shutdown timeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.WithField("addr", s.cfg.Addr).Info("server listening")
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down server")
	sctx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	return nil
}
