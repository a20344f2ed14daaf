// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/docverse/internal/cloud"
	"github.com/pdiddy/docverse/internal/workspace"
	"github.com/pdiddy/docverse/pkg/types"
)

// DPI bounds accepted from callers.
const (
	minDPI = 36
	maxDPI = 1200
)

// tier is what a quality tier means to each engine.
type tier struct {
	preset string
	dpi    int
	level  cloud.CompressionLevel
}

var tiers = map[types.QualityTier]tier{
	types.QualityLow:    {preset: "/screen", dpi: 72, level: cloud.CompressionHigh},
	types.QualityMedium: {preset: "/ebook", dpi: 150, level: cloud.CompressionMedium},
	types.QualityHigh:   {preset: "/printer", dpi: 300, level: cloud.CompressionLow},
}

// PickSmaller returns processed only when it is strictly smaller than
// original, and original otherwise.
func PickSmaller(original, processed []byte) []byte {
	if len(processed) < len(original) {
		return processed
	}
	return original
}

// Compress shrinks the first uploaded PDF. The result is never larger than
// the input: whichever engine runs, its output is compared with the original
// and discarded if it did not get smaller.
func (s *Service) Compress(ctx context.Context, log logrus.FieldLogger, req types.ConversionRequest) (types.ConversionResult, error) {
	file, err := first(req.Files)
	if err != nil {
		return types.ConversionResult{}, err
	}
	if err := requirePDF(file); err != nil {
		return types.ConversionResult{}, err
	}

	quality := req.Quality
	if quality == "" {
		quality = s.cfg.Compress.DefaultQuality
	}
	if quality == "" {
		quality = types.QualityMedium
	}
	t, ok := tiers[quality]
	if !ok {
		return types.ConversionResult{}, inputErrorf("unknown quality %q (want low, medium or high)", quality)
	}
	dpi := t.dpi
	if req.DPI != 0 {
		if req.DPI < minDPI || req.DPI > maxDPI {
			return types.ConversionResult{}, inputErrorf("dpi %d out of range %d-%d", req.DPI, minDPI, maxDPI)
		}
		dpi = req.DPI
	}

	filename := OutputName(types.OpCompress, "", file)
	keep := func(processed []byte) types.ConversionResult {
		chosen := PickSmaller(file.Data, processed)
		log.WithFields(logrus.Fields{
			"original":  len(file.Data),
			"processed": len(processed),
			"kept":      len(chosen),
		}).Debug("compression compared")
		return pdfResult(filename, chosen)
	}

	var res types.ConversionResult
	err = s.ws.Do(func(ws *workspace.Workspace) error {
		in, err := ws.WriteFile("input.pdf", file.Data)
		if err != nil {
			return err
		}
		remote := s.cloudCandidate(log, cloud.CompressPDFJob(in, t.level), func(data []byte) (types.ConversionResult, error) {
			if err := checkPDF(data); err != nil {
				return types.ConversionResult{}, err
			}
			return keep(data), nil
		})
		local := func(ctx context.Context) (types.ConversionResult, error) {
			out := ws.Path("output.pdf")
			if err := s.tools.Distill(ctx, in, out, t.preset, dpi); err != nil {
				return types.ConversionResult{}, err
			}
			data, err := ws.ReadFile(out)
			if err != nil {
				return types.ConversionResult{}, err
			}
			return keep(data), nil
		}
		res, err = s.policy.Run(ctx, log, types.OpCompress, remote, local)
		return err
	})
	return res, err
}
