// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert implements the document operations of the service. Each
// operation validates its input, provisions a scoped workspace and lets the
// engine policy choose between the cloud and the local engine.
package convert

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/docverse/internal/cloud"
	"github.com/pdiddy/docverse/internal/engine"
	"github.com/pdiddy/docverse/internal/workspace"
	"github.com/pdiddy/docverse/pkg/types"
)

// LocalTools is the local engine: external executables run against files
// inside a workspace.
type LocalTools interface {
	OfficeConvert(ctx context.Context, input, outDir, profileDir, target string) (string, error)
	Distill(ctx context.Context, input, output, preset string, dpi int) error
	Rasterize(ctx context.Context, input, prefix string, dpi int) ([]string, error)
	Recognize(ctx context.Context, image, outBase, lang string) (string, error)
}

// InputError reports a request the service refuses to process. It is
// detected before any engine runs where possible.
type InputError struct {
	Msg string
	Err error
}

func (e *InputError) Error() string {
	if e.Err != nil {
		return e.Msg + ": " + e.Err.Error()
	}
	return e.Msg
}

func (e *InputError) Unwrap() error { return e.Err }

func inputErrorf(format string, args ...any) error {
	return &InputError{Msg: fmt.Sprintf(format, args...)}
}

// IsInputError reports whether err is, or wraps, an *InputError.
func IsInputError(err error) bool {
	var ie *InputError
	return errors.As(err, &ie)
}

// Service runs conversions. It is safe for concurrent use; nothing is shared
// between calls except the read-only configuration.
type Service struct {
	cfg    types.Config
	ws     *workspace.Manager
	tools  LocalTools
	cloud  cloud.Runner
	policy *engine.Policy
}

// New returns a Service. cl may be nil, in which case only the local engine
// is ever used.
func New(cfg types.Config, ws *workspace.Manager, tools LocalTools, cl cloud.Runner) *Service {
	return &Service{
		cfg:    cfg,
		ws:     ws,
		tools:  tools,
		cloud:  cl,
		policy: engine.NewPolicy(cfg.Cloud),
	}
}

// WithMode returns a copy of s whose policy applies mode.
func (s *Service) WithMode(mode engine.Mode) *Service {
	cp := *s
	cp.policy = s.policy.WithMode(mode)
	return &cp
}

// Run dispatches req to the operation it names.
func (s *Service) Run(ctx context.Context, log logrus.FieldLogger, req types.ConversionRequest) (types.ConversionResult, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	log = log.WithField("operation", req.Operation)

	switch req.Operation {
	case types.OpOfficeToPDF:
		return s.OfficeToPDF(ctx, log, req)
	case types.OpPDFToOffice:
		return s.PDFToOffice(ctx, log, req)
	case types.OpCompress:
		return s.Compress(ctx, log, req)
	case types.OpOCR:
		return s.OCR(ctx, log, req)
	case types.OpMerge:
		return s.Merge(ctx, log, req)
	case types.OpUnlock:
		return s.Unlock(ctx, log, req)
	default:
		return types.ConversionResult{}, inputErrorf("unknown operation %q", req.Operation)
	}
}

// cloudCandidate adapts a cloud job to an engine candidate. finish turns the
// downloaded bytes into a result and may reject them. A nil runner yields a
// nil candidate, which the policy skips.
func (s *Service) cloudCandidate(log logrus.FieldLogger, job cloud.Job, finish func([]byte) (types.ConversionResult, error)) engine.Candidate {
	if s.cloud == nil {
		return nil
	}
	return func(ctx context.Context) (types.ConversionResult, error) {
		data, err := s.cloud.Run(ctx, log, job)
		if err != nil {
			return types.ConversionResult{}, err
		}
		return finish(data)
	}
}

// first returns the first uploaded file, the only one single-file
// operations look at.
func first(files []types.InputFile) (types.InputFile, error) {
	if len(files) == 0 {
		return types.InputFile{}, inputErrorf("no file uploaded")
	}
	if len(files[0].Data) == 0 {
		return types.InputFile{}, inputErrorf("uploaded file %q is empty", files[0].Name)
	}
	return files[0], nil
}

func pdfResult(filename string, data []byte) types.ConversionResult {
	return types.ConversionResult{Data: data, Filename: filename, ContentType: types.ContentTypePDF}
}
