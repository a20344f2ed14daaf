// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"path/filepath"
	"strings"
)

// Operation names the conversion capability a caller asks for,
// independently of which engine ends up performing it.
type Operation string

const (
	OpOfficeToPDF Operation = "office-to-pdf"
	OpPDFToOffice Operation = "pdf-to-office"
	OpCompress    Operation = "compress"
	OpOCR         Operation = "ocr"
	OpMerge       Operation = "merge"
	OpUnlock      Operation = "unlock"
)

// Operations lists the operations accepted by the CLI, in display order.
var Operations = []Operation{OpOfficeToPDF, OpPDFToOffice, OpCompress, OpOCR, OpMerge, OpUnlock}

// EngineChoice identifies which engine produced a result.
type EngineChoice string

const (
	EngineCloud EngineChoice = "cloud"
	EngineLocal EngineChoice = "local"
)

// ContentTypePDF is the media type of every PDF the service emits.
const ContentTypePDF = "application/pdf"

// OfficeFormat is a family of office documents.
type OfficeFormat string

const (
	FormatWord       OfficeFormat = "word"
	FormatExcel      OfficeFormat = "excel"
	FormatPowerPoint OfficeFormat = "powerpoint"
)

var officeFormats = map[OfficeFormat]struct {
	ext         string
	contentType string
	inputs      []string
}{
	FormatWord: {
		ext:         "docx",
		contentType: "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		inputs:      []string{".doc", ".docx", ".odt", ".rtf", ".txt"},
	},
	FormatExcel: {
		ext:         "xlsx",
		contentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		inputs:      []string{".xls", ".xlsx", ".ods", ".csv"},
	},
	FormatPowerPoint: {
		ext:         "pptx",
		contentType: "application/vnd.openxmlformats-officedocument.presentationml.presentation",
		inputs:      []string{".ppt", ".pptx", ".odp"},
	},
}

// Valid reports whether f is a known format family.
func (f OfficeFormat) Valid() bool {
	_, ok := officeFormats[f]
	return ok
}

// Extension returns the OOXML extension (without dot) written for f.
func (f OfficeFormat) Extension() string { return officeFormats[f].ext }

// ContentType returns the OOXML media type for f.
func (f OfficeFormat) ContentType() string { return officeFormats[f].contentType }

// AcceptsInput reports whether a file with the given name can be converted
// from format family f.
func (f OfficeFormat) AcceptsInput(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range officeFormats[f].inputs {
		if e == ext {
			return true
		}
	}
	return false
}

// DefaultInputName is used when an upload carries no filename.
func (f OfficeFormat) DefaultInputName() string {
	switch f {
	case FormatExcel:
		return "spreadsheet.xlsx"
	case FormatPowerPoint:
		return "presentation.pptx"
	default:
		return "document.docx"
	}
}

// QualityTier selects how aggressively compression trades quality for size.
type QualityTier string

const (
	QualityLow    QualityTier = "low"
	QualityMedium QualityTier = "medium"
	QualityHigh   QualityTier = "high"
)

// Valid reports whether q is a known tier.
func (q QualityTier) Valid() bool {
	switch q {
	case QualityLow, QualityMedium, QualityHigh:
		return true
	}
	return false
}

// InputFile is one uploaded file held in memory.
type InputFile struct {
	Name     string
	MIMEType string
	Data     []byte
}

// BaseName returns the filename without directory or extension, or fallback
// when the name is empty.
func (f InputFile) BaseName(fallback string) string {
	name := filepath.Base(f.Name)
	if f.Name == "" || name == "." || name == string(filepath.Separator) {
		return fallback
	}
	if ext := filepath.Ext(name); ext != "" && len(ext) < len(name) {
		name = strings.TrimSuffix(name, ext)
	}
	return name
}

// ConversionRequest is everything one call needs: the ordered input files,
// the operation and its parameters. It lives for a single request.
type ConversionRequest struct {
	Operation Operation
	Files     []InputFile

	// Format is the office family for office-to-pdf and pdf-to-office.
	Format OfficeFormat

	// Language is the UI language code for OCR (e.g. "en", "pt-BR").
	Language string

	// Quality and DPI tune compression. DPI of zero means the tier default.
	Quality QualityTier
	DPI     int

	// Password unlocks an encrypted PDF.
	Password string
}

// ConversionResult is the output of one call, ready to be written to a
// response body.
type ConversionResult struct {
	Data        []byte
	Filename    string
	ContentType string
	Engine      EngineChoice
}
