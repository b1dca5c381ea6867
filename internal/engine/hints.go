// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package engine

import "github.com/pdiddy/docconvert/pkg/types"

var hints = map[string]string{
	BinTesseract: "Tesseract OCR is required to process scanned documents: install tesseract or set engines.tesseract",
	BinPdftoppm:  "poppler (pdftoppm) is required to rasterize scanned documents: install poppler-utils or set engines.pdftoppm",
	BinPdftotext: "poppler (pdftotext) is required to sample document text: install poppler-utils or set engines.pdftotext",
	BinPdf2docx:  "pdf2docx is required for PDF to DOCX conversion: run `pip install pdf2docx` or set engines.pdf2docx",
	BinSoffice:   "LibreOffice is required for this conversion (is it installed?): install LibreOffice or set engines.soffice",
}

// Missing returns the EnvironmentError for an engine that could not be
// resolved, with its remediation hint.
func Missing(name string) *types.EnvironmentError {
	return Failed(name, nil)
}

// Failed returns the EnvironmentError for an engine that is configured but
// could not run.
func Failed(name string, err error) *types.EnvironmentError {
	return &types.EnvironmentError{Engine: name, Hint: hints[name], Err: err}
}
