// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"errors"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/pdiddy/docverse/pkg/types"
)

// ocrImageTypes are the raster formats recognized without rasterizing.
var ocrImageTypes = []string{"image/png", "image/jpeg", "image/tiff"}

func isPDF(data []byte) bool {
	return mimetype.Detect(data).Is(types.ContentTypePDF)
}

// requirePDF rejects files whose content is not a PDF, whatever their name.
func requirePDF(f types.InputFile) error {
	if !isPDF(f.Data) {
		return inputErrorf("%q is not a PDF document", f.Name)
	}
	return nil
}

// imageExtension returns the extension (with dot) of a supported OCR image,
// or "" when data is not one.
func imageExtension(data []byte) string {
	m := mimetype.Detect(data)
	for _, t := range ocrImageTypes {
		if m.Is(t) {
			return m.Extension()
		}
	}
	return ""
}

// mediaType returns the sniffed media type of data without parameters.
func mediaType(data []byte) string {
	t, _, _ := strings.Cut(mimetype.Detect(data).String(), ";")
	return strings.TrimSpace(t)
}

// sniffedExtension is used when an upload has no usable file extension.
func sniffedExtension(data []byte) string {
	return mimetype.Detect(data).Extension()
}

var errNotPDF = errors.New("engine returned something other than a PDF")

// checkPDF rejects an engine output that is not a PDF, so a malformed
// result counts as an engine failure.
func checkPDF(data []byte) error {
	if !isPDF(data) {
		return errNotPDF
	}
	return nil
}
