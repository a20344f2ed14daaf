// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cloud

// CompressionLevel is the API's compression strength.
type CompressionLevel string

const (
	CompressionHigh   CompressionLevel = "HIGH"
	CompressionMedium CompressionLevel = "MEDIUM"
	CompressionLow    CompressionLevel = "LOW"
)

// CreatePDFJob converts an office document to PDF.
func CreatePDFJob(inputPath, mediaType string) Job {
	return Job{Kind: JobCreatePDF, InputPath: inputPath, MediaType: mediaType}
}

// ExportPDFJob converts a PDF to targetFormat ("docx", "xlsx", "pptx").
func ExportPDFJob(inputPath, targetFormat string) Job {
	return Job{
		Kind:      JobExportPDF,
		InputPath: inputPath,
		MediaType: "application/pdf",
		Params:    map[string]any{"targetFormat": targetFormat},
	}
}

// CompressPDFJob shrinks a PDF at the given level.
func CompressPDFJob(inputPath string, level CompressionLevel) Job {
	return Job{
		Kind:      JobCompressPDF,
		InputPath: inputPath,
		MediaType: "application/pdf",
		Params:    map[string]any{"compressionLevel": string(level)},
	}
}

// OCRJob adds a text layer to a PDF. locale is an API locale such as "en-US".
func OCRJob(inputPath, locale string) Job {
	return Job{
		Kind:      JobOCR,
		InputPath: inputPath,
		MediaType: "application/pdf",
		Params: map[string]any{
			"ocrLang": locale,
			"ocrType": "searchable_image_exact",
		},
	}
}
