// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/pdiddy/docconvert/pkg/types"
)

// PDFWriter converts a word-processor document to PDF.
// *LibreOfficeConverter implements it.
type PDFWriter interface {
	ToPDF(ctx context.Context, docPath, pdfPath string) error
}

// WordToPDF converts the DOCX at in into a PDF at out. Like
// Dispatcher.Convert it reports every failure in the outcome.
func WordToPDF(ctx context.Context, w PDFWriter, in, out string) types.ConversionOutcome {
	start := time.Now()
	o := types.ConversionOutcome{Input: in, Output: out}

	if _, err := os.Stat(in); errors.Is(err, os.ErrNotExist) {
		o = failed(o, fmt.Errorf("DOCX file does not exist: %s", in))
		o.Duration = time.Since(start)
		return o
	}
	if err := ensureDir(out); err != nil {
		o = failed(o, err)
		o.Duration = time.Since(start)
		return o
	}

	var envErr *types.EnvironmentError
	if err := w.ToPDF(ctx, in, out); errors.As(err, &envErr) {
		o = failed(o, err)
	} else if err != nil {
		o = failed(o, fmt.Errorf("office conversion failed, is LibreOffice installed?: %w", err))
	} else {
		o.Status = types.StatusOK
		o.Method = types.MethodOffice
		o.Message = msgSucceeded
	}
	o.Duration = time.Since(start)
	return o
}

// PDFOutputPath returns the PDF path for a document input.
func PDFOutputPath(in, outDir string) string {
	return outputPath(in, outDir, ".pdf")
}
