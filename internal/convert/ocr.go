// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"

	"github.com/pdiddy/docverse/internal/cloud"
	"github.com/pdiddy/docverse/internal/engine"
	"github.com/pdiddy/docverse/internal/pdfdoc"
	"github.com/pdiddy/docverse/internal/workspace"
	"github.com/pdiddy/docverse/pkg/types"
)

// ocrLanguage is one supported recognition language as each engine names it.
type ocrLanguage struct {
	tesseract string
	locale    string
}

var ocrLanguages = map[string]ocrLanguage{
	"en": {"eng", "en-US"},
	"es": {"spa", "es-ES"},
	"fr": {"fra", "fr-FR"},
	"de": {"deu", "de-DE"},
	"it": {"ita", "it-IT"},
	"pt": {"por", "pt-BR"},
	"zh": {"chi_sim", "zh-CN"},
	"ja": {"jpn", "ja-JP"},
	"ko": {"kor", "ko-KR"},
	"ar": {"ara", "ar-SA"},
}

// lookupLanguage maps a caller's language code to both engines' names.
// Region subtags and three-letter codes are reduced to the base language;
// anything unknown falls back to English.
func lookupLanguage(code string) ocrLanguage {
	code = strings.TrimSpace(code)
	for _, l := range ocrLanguages {
		if code == l.tesseract {
			return l
		}
	}
	if tag, err := language.Parse(code); err == nil {
		base, _ := tag.Base()
		if l, ok := ocrLanguages[base.String()]; ok {
			return l
		}
	}
	return ocrLanguages["en"]
}

// ocrInput is one uploaded file written into the workspace.
type ocrInput struct {
	path  string
	isPDF bool
}

// OCR turns every uploaded PDF or image into one searchable PDF. Pages keep
// the order of the uploads and, within a PDF, the order of its pages.
func (s *Service) OCR(ctx context.Context, log logrus.FieldLogger, req types.ConversionRequest) (types.ConversionResult, error) {
	if len(req.Files) == 0 {
		return types.ConversionResult{}, inputErrorf("no file uploaded")
	}
	exts := make([]string, len(req.Files))
	for i, f := range req.Files {
		switch {
		case isPDF(f.Data):
			exts[i] = ".pdf"
		case imageExtension(f.Data) != "":
			exts[i] = imageExtension(f.Data)
		default:
			return types.ConversionResult{}, inputErrorf("%q is neither a PDF nor a PNG, JPEG or TIFF image", f.Name)
		}
	}

	code := req.Language
	if code == "" {
		code = s.cfg.OCR.DefaultLanguage
	}
	lang := lookupLanguage(code)
	log = log.WithField("language", lang.tesseract)
	filename := OutputName(types.OpOCR, "", req.Files[0])

	var res types.ConversionResult
	err := s.ws.Do(func(ws *workspace.Workspace) error {
		inputs := make([]ocrInput, len(req.Files))
		for i, f := range req.Files {
			p, err := ws.WriteFile(fmt.Sprintf("input-%03d%s", i+1, exts[i]), f.Data)
			if err != nil {
				return err
			}
			inputs[i] = ocrInput{path: p, isPDF: exts[i] == ".pdf"}
		}

		local := func(ctx context.Context) (types.ConversionResult, error) {
			data, err := s.localOCR(ctx, ws, inputs, lang.tesseract)
			if err != nil {
				return types.ConversionResult{}, err
			}
			return pdfResult(filename, data), nil
		}
		var err error
		res, err = s.policy.Run(ctx, log, types.OpOCR, s.cloudOCR(log, inputs, lang.locale, filename), local)
		return err
	})
	return res, err
}

// cloudOCR submits each PDF as its own job and concatenates the results.
// The cloud engine takes PDFs only, so a request with images has no cloud
// candidate.
func (s *Service) cloudOCR(log logrus.FieldLogger, inputs []ocrInput, locale, filename string) engine.Candidate {
	if s.cloud == nil {
		return nil
	}
	for _, in := range inputs {
		if !in.isPDF {
			return nil
		}
	}
	return func(ctx context.Context) (types.ConversionResult, error) {
		docs := make([][]byte, len(inputs))
		for i, in := range inputs {
			data, err := s.cloud.Run(ctx, log, cloud.OCRJob(in.path, locale))
			if err != nil {
				return types.ConversionResult{}, err
			}
			if err := checkPDF(data); err != nil {
				return types.ConversionResult{}, err
			}
			docs[i] = data
		}
		data, err := concat(docs)
		if err != nil {
			return types.ConversionResult{}, err
		}
		return pdfResult(filename, data), nil
	}
}

// localOCR rasterizes PDFs, recognizes every page image with bounded
// parallelism and merges the per-page PDFs. Results are stored by page
// index, so completion order does not affect output order. Any failing page
// fails the whole call.
func (s *Service) localOCR(ctx context.Context, ws *workspace.Workspace, inputs []ocrInput, lang string) ([]byte, error) {
	var images []string
	for i, in := range inputs {
		if !in.isPDF {
			images = append(images, in.path)
			continue
		}
		pages, err := s.tools.Rasterize(ctx, in.path, ws.Path(fmt.Sprintf("page-%03d", i+1)), s.ocrDPI())
		if err != nil {
			return nil, fmt.Errorf("rasterizing input %d: %w", i+1, err)
		}
		images = append(images, pages...)
	}

	pdfs := make([]string, len(images))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.ocrWorkers())
	for i, img := range images {
		g.Go(func() error {
			out, err := s.tools.Recognize(gctx, img, strings.TrimSuffix(img, filepath.Ext(img))+"-ocr", lang)
			if err != nil {
				return fmt.Errorf("recognizing page %d: %w", i+1, err)
			}
			pdfs[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	docs := make([][]byte, len(pdfs))
	for i, p := range pdfs {
		data, err := ws.ReadFile(p)
		if err != nil {
			return nil, err
		}
		docs[i] = data
	}
	return concat(docs)
}

// concat joins documents page by page. A single document is returned as is.
func concat(docs [][]byte) ([]byte, error) {
	switch len(docs) {
	case 0:
		return nil, errors.New("no pages recognized")
	case 1:
		return docs[0], nil
	}
	return pdfdoc.Merge(docs)
}

func (s *Service) ocrDPI() int {
	if s.cfg.OCR.DPI > 0 {
		return s.cfg.OCR.DPI
	}
	return 120
}

func (s *Service) ocrWorkers() int {
	if s.cfg.OCR.Workers > 0 {
		return s.cfg.OCR.Workers
	}
	return runtime.NumCPU()
}
