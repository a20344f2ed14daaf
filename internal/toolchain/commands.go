// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package toolchain

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// OfficeConvert runs LibreOffice headless to convert input into target
// ("pdf", "docx", "xlsx", "pptx"), writing into outDir. profileDir holds a
// throwaway user installation so concurrent runs do not share a lock file.
// It returns the path of the converted file.
func (t *Toolchain) OfficeConvert(ctx context.Context, input, outDir, profileDir, target string) (string, error) {
	args := []string{
		"-env:UserInstallation=file://" + filepath.ToSlash(profileDir),
		"--headless",
	}
	if strings.EqualFold(filepath.Ext(input), ".pdf") && target == "docx" {
		args = append(args, "--infilter=writer_pdf_import")
	}
	args = append(args, "--convert-to", target, "--outdir", outDir, input)

	if err := t.Run(ctx, Soffice, outDir, args...); err != nil {
		return "", err
	}

	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	out := filepath.Join(outDir, base+"."+target)
	if nonEmpty(out) {
		return out, nil
	}
	// LibreOffice occasionally renames the output; take whatever it wrote.
	matches, _ := filepath.Glob(filepath.Join(outDir, "*."+target))
	for _, m := range matches {
		if m != input && nonEmpty(m) {
			return m, nil
		}
	}
	return "", fmt.Errorf("%w: %s to %s", ErrNoOutput, Soffice, target)
}

// Distill rewrites a PDF through Ghostscript's pdfwrite device with the
// given PDFSETTINGS preset, downsampling color, gray and mono images to dpi.
func (t *Toolchain) Distill(ctx context.Context, input, output, preset string, dpi int) error {
	res := strconv.Itoa(dpi)
	args := []string{
		"-sDEVICE=pdfwrite",
		"-dCompatibilityLevel=1.4",
		"-dPDFSETTINGS=" + preset,
		"-dDownsampleColorImages=true",
		"-dColorImageDownsampleType=/Bicubic",
		"-dColorImageResolution=" + res,
		"-dDownsampleGrayImages=true",
		"-dGrayImageDownsampleType=/Bicubic",
		"-dGrayImageResolution=" + res,
		"-dDownsampleMonoImages=true",
		"-dMonoImageDownsampleType=/Subsample",
		"-dMonoImageResolution=" + res,
		"-dNOPAUSE",
		"-dQUIET",
		"-dBATCH",
		"-sOutputFile=" + output,
		input,
	}
	if err := t.Run(ctx, Ghostscript, filepath.Dir(output), args...); err != nil {
		return err
	}
	if !nonEmpty(output) {
		return fmt.Errorf("%w: %s", ErrNoOutput, Ghostscript)
	}
	return nil
}

// Rasterize renders every page of a PDF to JPEG at dpi. Images are written as
// prefix-N.jpg and returned in page order.
func (t *Toolchain) Rasterize(ctx context.Context, input, prefix string, dpi int) ([]string, error) {
	args := []string{"-jpeg", "-r", strconv.Itoa(dpi), input, prefix}
	if err := t.Run(ctx, Pdftoppm, filepath.Dir(prefix), args...); err != nil {
		return nil, err
	}
	pages, err := pageImages(prefix)
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoOutput, Pdftoppm)
	}
	return pages, nil
}

// pageImages collects prefix-N.jpg files sorted by N. pdftoppm zero-pads N
// to the width of the page count, so a plain lexical sort is not enough.
func pageImages(prefix string) ([]string, error) {
	matches, err := filepath.Glob(prefix + "-*.jpg")
	if err != nil {
		return nil, fmt.Errorf("listing page images: %w", err)
	}
	type page struct {
		n    int
		path string
	}
	pages := make([]page, 0, len(matches))
	for _, m := range matches {
		num := strings.TrimSuffix(strings.TrimPrefix(m, prefix+"-"), ".jpg")
		n, err := strconv.Atoi(num)
		if err != nil {
			continue
		}
		pages = append(pages, page{n: n, path: m})
	}
	sort.Slice(pages, func(i, j int) bool { return pages[i].n < pages[j].n })

	out := make([]string, len(pages))
	for i, p := range pages {
		out[i] = p.path
	}
	return out, nil
}

// Recognize runs Tesseract on one image and writes a searchable PDF with an
// embedded text layer to outBase + ".pdf", which it returns.
func (t *Toolchain) Recognize(ctx context.Context, image, outBase, lang string) (string, error) {
	args := []string{image, outBase, "-l", lang, "pdf"}
	if err := t.Run(ctx, Tesseract, filepath.Dir(outBase), args...); err != nil {
		return "", err
	}
	out := outBase + ".pdf"
	if !nonEmpty(out) {
		return "", fmt.Errorf("%w: %s", ErrNoOutput, Tesseract)
	}
	return out, nil
}

func nonEmpty(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir() && info.Size() > 0
}
