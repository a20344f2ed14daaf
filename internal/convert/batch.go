// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/docverse/pkg/types"
)

// BatchResult holds the outcome of a batch run.
type BatchResult struct {
	Converted int
	Skipped   int
	Failed    int
}

// Total returns the total number of files processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any file failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// PerFile reports whether op converts each input independently, as opposed
// to combining all inputs into one output.
func PerFile(op types.Operation) bool {
	switch op {
	case types.OpMerge, types.OpOCR:
		return false
	}
	return true
}

// OutputName returns the filename op produces for file. Merge ignores file.
func OutputName(op types.Operation, format types.OfficeFormat, file types.InputFile) string {
	base := file.BaseName("document")
	switch op {
	case types.OpOfficeToPDF:
		fallback := types.InputFile{Name: format.DefaultInputName()}.BaseName("document")
		return file.BaseName(fallback) + ".pdf"
	case types.OpPDFToOffice:
		return base + "." + format.Extension()
	case types.OpCompress:
		return base + "-compressed.pdf"
	case types.OpOCR:
		return base + "-ocr.pdf"
	case types.OpUnlock:
		return base + "-unlocked.pdf"
	case types.OpMerge:
		return "merged.pdf"
	}
	return base
}

// RunBatch runs req once per input file and writes each result into outDir
// under the name the operation chose. Existing outputs are skipped before
// any engine runs unless force is set. Progress is printed to w; a failing
// file does not stop the batch.
func (s *Service) RunBatch(ctx context.Context, log logrus.FieldLogger, req types.ConversionRequest, outDir string, force bool, w io.Writer) BatchResult {
	var result BatchResult
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		fmt.Fprintf(w, "failed:  %s (%v)\n", outDir, err)
		result.Failed = len(req.Files)
		return result
	}

	for _, f := range req.Files {
		out := filepath.Join(outDir, OutputName(req.Operation, req.Format, f))
		if _, err := os.Stat(out); err == nil && !force {
			fmt.Fprintf(w, "skipped: %s (%s already exists)\n", f.Name, out)
			result.Skipped++
			continue
		}

		one := req
		one.Files = []types.InputFile{f}
		res, err := s.Run(ctx, log, one)
		if err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", f.Name, err)
			result.Failed++
			continue
		}
		if err := os.WriteFile(out, res.Data, 0o644); err != nil {
			fmt.Fprintf(w, "failed:  %s (%v)\n", f.Name, err)
			result.Failed++
			continue
		}
		fmt.Fprintf(w, "converted: %s -> %s (%s)\n", f.Name, out, res.Engine)
		result.Converted++
	}

	fmt.Fprintf(w, "\nBatch summary: %d converted, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Skipped, result.Failed, result.Total())
	return result
}
