// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/docverse/internal/cloud"
	"github.com/pdiddy/docverse/internal/workspace"
	"github.com/pdiddy/docverse/pkg/types"
)

// OfficeToPDF converts the first uploaded office document of family
// req.Format to PDF.
func (s *Service) OfficeToPDF(ctx context.Context, log logrus.FieldLogger, req types.ConversionRequest) (types.ConversionResult, error) {
	if !req.Format.Valid() {
		return types.ConversionResult{}, inputErrorf("unknown office format %q", req.Format)
	}
	file, err := first(req.Files)
	if err != nil {
		return types.ConversionResult{}, err
	}

	name := file.Name
	if name == "" {
		name = req.Format.DefaultInputName()
	}
	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		ext = sniffedExtension(file.Data)
		name += ext
	}
	if isPDF(file.Data) || !req.Format.AcceptsInput(name) {
		return types.ConversionResult{}, inputErrorf("%q is not a %s document", file.Name, req.Format)
	}
	filename := OutputName(types.OpOfficeToPDF, req.Format, file)

	var res types.ConversionResult
	err = s.ws.Do(func(ws *workspace.Workspace) error {
		in, err := ws.WriteFile("input"+ext, file.Data)
		if err != nil {
			return err
		}
		remote := s.cloudCandidate(log, cloud.CreatePDFJob(in, mediaType(file.Data)), func(data []byte) (types.ConversionResult, error) {
			if err := checkPDF(data); err != nil {
				return types.ConversionResult{}, err
			}
			return pdfResult(filename, data), nil
		})
		local := func(ctx context.Context) (types.ConversionResult, error) {
			data, err := s.soffice(ctx, ws, in, "pdf")
			if err != nil {
				return types.ConversionResult{}, err
			}
			return pdfResult(filename, data), nil
		}
		res, err = s.policy.Run(ctx, log, types.OpOfficeToPDF, remote, local)
		return err
	})
	return res, err
}

// PDFToOffice converts the first uploaded PDF to the OOXML format of
// family req.Format.
func (s *Service) PDFToOffice(ctx context.Context, log logrus.FieldLogger, req types.ConversionRequest) (types.ConversionResult, error) {
	if !req.Format.Valid() {
		return types.ConversionResult{}, inputErrorf("unknown office format %q", req.Format)
	}
	file, err := first(req.Files)
	if err != nil {
		return types.ConversionResult{}, err
	}
	if err := requirePDF(file); err != nil {
		return types.ConversionResult{}, err
	}

	target := req.Format.Extension()
	out := types.ConversionResult{
		Filename:    OutputName(types.OpPDFToOffice, req.Format, file),
		ContentType: req.Format.ContentType(),
	}

	var res types.ConversionResult
	err = s.ws.Do(func(ws *workspace.Workspace) error {
		in, err := ws.WriteFile("input.pdf", file.Data)
		if err != nil {
			return err
		}
		remote := s.cloudCandidate(log, cloud.ExportPDFJob(in, target), func(data []byte) (types.ConversionResult, error) {
			r := out
			r.Data = data
			return r, nil
		})
		local := func(ctx context.Context) (types.ConversionResult, error) {
			data, err := s.soffice(ctx, ws, in, target)
			if err != nil {
				return types.ConversionResult{}, err
			}
			r := out
			r.Data = data
			return r, nil
		}
		res, err = s.policy.Run(ctx, log, types.OpPDFToOffice, remote, local)
		return err
	})
	return res, err
}

// soffice runs LibreOffice inside ws with a private profile directory and
// returns the converted bytes.
func (s *Service) soffice(ctx context.Context, ws *workspace.Workspace, in, target string) ([]byte, error) {
	outDir, err := ws.Subdir("out")
	if err != nil {
		return nil, err
	}
	path, err := s.tools.OfficeConvert(ctx, in, outDir, ws.Path("lo-profile"), target)
	if err != nil {
		return nil, err
	}
	return ws.ReadFile(path)
}
