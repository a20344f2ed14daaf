// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/docverse/internal/pdfdoc"
	"github.com/pdiddy/docverse/pkg/types"
)

// Merge concatenates the uploaded PDFs in upload order. It has a single
// in-process implementation and never consults the engine policy.
func (s *Service) Merge(_ context.Context, log logrus.FieldLogger, req types.ConversionRequest) (types.ConversionResult, error) {
	if len(req.Files) < 2 {
		return types.ConversionResult{}, inputErrorf("merge needs at least two PDF files, got %d", len(req.Files))
	}
	docs := make([][]byte, len(req.Files))
	for i, f := range req.Files {
		if err := requirePDF(f); err != nil {
			return types.ConversionResult{}, err
		}
		docs[i] = f.Data
	}

	data, err := pdfdoc.Merge(docs)
	if err != nil {
		return types.ConversionResult{}, mergeInputError(err)
	}
	log.WithField("files", len(docs)).Info("merge done")

	res := pdfResult(OutputName(types.OpMerge, "", types.InputFile{}), data)
	res.Engine = types.EngineLocal
	return res, nil
}

// mergeInputError turns a per-input merge failure into an InputError naming
// the input position. An encrypted input is a request error here, not a
// password error: merge takes no password.
func mergeInputError(err error) error {
	var ie *pdfdoc.InputError
	if !errors.As(err, &ie) {
		return err
	}
	switch {
	case errors.Is(ie.Err, pdfdoc.ErrWrongPassword):
		return &InputError{Msg: fmt.Sprintf("input %d is encrypted; encrypted PDFs cannot be merged", ie.Input)}
	case errors.Is(ie.Err, pdfdoc.ErrUnreadable):
		return &InputError{Msg: fmt.Sprintf("input %d is not a readable PDF", ie.Input), Err: err}
	}
	return err
}

// Unlock removes password protection from the first uploaded PDF.
func (s *Service) Unlock(_ context.Context, log logrus.FieldLogger, req types.ConversionRequest) (types.ConversionResult, error) {
	file, err := first(req.Files)
	if err != nil {
		return types.ConversionResult{}, err
	}
	if err := requirePDF(file); err != nil {
		return types.ConversionResult{}, err
	}
	if req.Password == "" {
		return types.ConversionResult{}, inputErrorf("password is required")
	}

	data, err := pdfdoc.Unlock(file.Data, req.Password)
	switch {
	case errors.Is(err, pdfdoc.ErrWrongPassword):
		return types.ConversionResult{}, err
	case errors.Is(err, pdfdoc.ErrNotEncrypted):
		return types.ConversionResult{}, &InputError{Msg: "document is not password protected", Err: err}
	case errors.Is(err, pdfdoc.ErrUnreadable):
		return types.ConversionResult{}, &InputError{Msg: "document is not a readable PDF", Err: err}
	case err != nil:
		return types.ConversionResult{}, err
	}
	log.Info("unlock done")

	res := pdfResult(OutputName(types.OpUnlock, "", file), data)
	res.Engine = types.EngineLocal
	return res, nil
}

// EncryptionStatus reports whether file is password protected.
func (s *Service) EncryptionStatus(file types.InputFile) (bool, error) {
	if len(file.Data) == 0 {
		return false, inputErrorf("no file uploaded")
	}
	if err := requirePDF(file); err != nil {
		return false, err
	}
	enc, err := pdfdoc.Encrypted(file.Data)
	if err != nil {
		return false, &InputError{Msg: "document is not a readable PDF", Err: err}
	}
	return enc, nil
}
