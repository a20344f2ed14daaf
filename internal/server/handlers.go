// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/pdiddy/docverse/internal/cloud"
	"github.com/pdiddy/docverse/internal/convert"
	"github.com/pdiddy/docverse/internal/pdfdoc"
	"github.com/pdiddy/docverse/pkg/types"
)

// EngineHeader names the engine that produced a download.
const EngineHeader = "X-Conversion-Engine"

// multipartMemory is how much of a form is held in memory before parts
// spill to temporary files.
const multipartMemory = 32 << 20

const msgProcessingFailed = "Processing failed. Please try again."

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": ServiceName,
		"message": "docverse document conversion API",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "service": ServiceName})
}

func (s *Server) handleOfficeToPDF(w http.ResponseWriter, r *http.Request) {
	s.convert(w, r, func(req *types.ConversionRequest, _ *multipart.Form) error {
		req.Operation = types.OpOfficeToPDF
		req.Format = types.OfficeFormat(mux.Vars(r)["format"])
		return nil
	})
}

func (s *Server) handlePDFToOffice(w http.ResponseWriter, r *http.Request) {
	s.convert(w, r, func(req *types.ConversionRequest, _ *multipart.Form) error {
		req.Operation = types.OpPDFToOffice
		req.Format = types.OfficeFormat(mux.Vars(r)["format"])
		return nil
	})
}

func (s *Server) handleCompress(w http.ResponseWriter, r *http.Request) {
	s.convert(w, r, func(req *types.ConversionRequest, form *multipart.Form) error {
		req.Operation = types.OpCompress
		req.Quality = types.QualityTier(strings.ToLower(formValue(form, "quality")))
		if v := formValue(form, "dpi"); v != "" {
			dpi, err := strconv.Atoi(v)
			if err != nil {
				return &convert.InputError{Msg: fmt.Sprintf("invalid dpi %q", v)}
			}
			req.DPI = dpi
		}
		return nil
	})
}

func (s *Server) handleOCR(w http.ResponseWriter, r *http.Request) {
	s.convert(w, r, func(req *types.ConversionRequest, form *multipart.Form) error {
		req.Operation = types.OpOCR
		req.Language = formValue(form, "language")
		return nil
	})
}

func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request) {
	s.convert(w, r, func(req *types.ConversionRequest, _ *multipart.Form) error {
		req.Operation = types.OpMerge
		return nil
	})
}

func (s *Server) handleUnlock(w http.ResponseWriter, r *http.Request) {
	s.convert(w, r, func(req *types.ConversionRequest, form *multipart.Form) error {
		req.Operation = types.OpUnlock
		req.Password = formValue(form, "password")
		return nil
	})
}

func (s *Server) handleEncryptionStatus(w http.ResponseWriter, r *http.Request) {
	log := s.loggerFrom(r.Context())
	form, err := s.parseForm(w, r)
	if err != nil {
		s.writeFailure(w, log, err)
		return
	}
	defer form.RemoveAll()

	files, err := readFiles(form)
	if err != nil {
		s.writeFailure(w, log, err)
		return
	}
	var file types.InputFile
	if len(files) > 0 {
		file = files[0]
	}
	enc, err := s.conv.EncryptionStatus(file)
	if err != nil {
		s.writeFailure(w, log, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"encrypted": enc})
}

// convert parses the upload, lets build fill in the operation and its
// parameters, runs it and writes the result.
func (s *Server) convert(w http.ResponseWriter, r *http.Request, build func(*types.ConversionRequest, *multipart.Form) error) {
	log := s.loggerFrom(r.Context())
	form, err := s.parseForm(w, r)
	if err != nil {
		s.writeFailure(w, log, err)
		return
	}
	defer form.RemoveAll()

	files, err := readFiles(form)
	if err != nil {
		s.writeFailure(w, log, err)
		return
	}
	req := types.ConversionRequest{Files: files}
	if err := build(&req, form); err != nil {
		s.writeFailure(w, log, err)
		return
	}

	res, err := s.conv.Run(r.Context(), log, req)
	if err != nil {
		s.writeFailure(w, log, err)
		return
	}
	writeResult(w, res)
}

var errTooLarge = errors.New("upload too large")

func (s *Server) parseForm(w http.ResponseWriter, r *http.Request) (*multipart.Form, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, fmt.Errorf("%w: limit is %d bytes", errTooLarge, tooLarge.Limit)
		}
		return nil, &convert.InputError{Msg: "invalid multipart form", Err: err}
	}
	return r.MultipartForm, nil
}

// readFiles collects uploads from the "files" field, then "file", in the
// order the client sent them.
func readFiles(form *multipart.Form) ([]types.InputFile, error) {
	headers := form.File["files"]
	if len(headers) == 0 {
		headers = form.File["file"]
	}
	files := make([]types.InputFile, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("opening upload %q: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("reading upload %q: %w", fh.Filename, err)
		}
		files = append(files, types.InputFile{
			Name:     fh.Filename,
			MIMEType: fh.Header.Get("Content-Type"),
			Data:     data,
		})
	}
	return files, nil
}

func formValue(form *multipart.Form, key string) string {
	if v := form.Value[key]; len(v) > 0 {
		return strings.TrimSpace(v[0])
	}
	return ""
}

// writeResult streams a conversion result back as a file download.
func writeResult(w http.ResponseWriter, res types.ConversionResult) {
	h := w.Header()
	ct := res.ContentType
	if ct == "" {
		ct = "application/octet-stream"
	}
	h.Set("Content-Type", ct)
	h.Set("Content-Disposition", contentDisposition(res.Filename))
	h.Set("Content-Length", strconv.Itoa(len(res.Data)))
	if res.Engine != "" {
		h.Set(EngineHeader, string(res.Engine))
	}
	w.WriteHeader(http.StatusOK)
	w.Write(res.Data)
}

func contentDisposition(name string) string {
	if name == "" {
		name = "download"
	}
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": name}); v != "" {
		return v
	}
	return `attachment; filename="download"`
}

// writeFailure maps err to a status code. Details of internal failures are
// logged, never returned. Input errors send only their message; the cause
// behind it goes to the log.
func (s *Server) writeFailure(w http.ResponseWriter, log logrus.FieldLogger, err error) {
	var ie *convert.InputError
	switch {
	case errors.Is(err, errTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, "File too large")
	case errors.Is(err, pdfdoc.ErrWrongPassword):
		writeError(w, http.StatusBadRequest, "Incorrect password")
	case errors.As(err, &ie):
		if ie.Err != nil {
			log.WithError(ie.Err).WithField("reason", ie.Msg).Info("input rejected")
		}
		writeError(w, http.StatusBadRequest, ie.Msg)
	case errors.Is(err, cloud.ErrNotConfigured):
		writeError(w, http.StatusServiceUnavailable, "Cloud engine is not configured")
	default:
		log.WithError(err).Warn("conversion failed")
		writeError(w, http.StatusInternalServerError, msgProcessingFailed)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
