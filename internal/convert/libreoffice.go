// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/docconvert/internal/engine"
	"github.com/pdiddy/docconvert/pkg/types"
)

// LibreOfficeConverter converts through a headless soffice. The same type
// serves PDF to DOCX (with the writer PDF import filter) and DOCX to PDF.
type LibreOfficeConverter struct {
	bin    string
	runner engine.Runner
	logger *slog.Logger
}

// NewLibreOfficeConverter returns a converter for the resolved soffice binary.
func NewLibreOfficeConverter(bin string, runner engine.Runner, logger *slog.Logger) *LibreOfficeConverter {
	if logger == nil {
		logger = slog.Default()
	}
	return &LibreOfficeConverter{bin: bin, runner: runner, logger: logger}
}

// Convert implements Converter for PDF to DOCX.
func (l *LibreOfficeConverter) Convert(ctx context.Context, pdfPath, docxPath string) error {
	return l.convert(ctx, pdfPath, docxPath, "docx", "--infilter=writer_pdf_import")
}

// ToPDF converts a word-processor document to PDF.
func (l *LibreOfficeConverter) ToPDF(ctx context.Context, docPath, pdfPath string) error {
	return l.convert(ctx, docPath, pdfPath, "pdf")
}

// convert runs soffice into a private directory next to out and renames the
// result, since soffice always names its output after the input stem. Each
// call gets its own user profile so concurrent instances do not collide.
func (l *LibreOfficeConverter) convert(ctx context.Context, in, out, format string, extra ...string) error {
	if l.bin == "" {
		return engine.Missing(engine.BinSoffice)
	}
	work, err := os.MkdirTemp(filepath.Dir(out), ".docconvert-soffice-*")
	if err != nil {
		return fmt.Errorf("creating soffice work directory: %w", err)
	}
	defer func() {
		if rerr := os.RemoveAll(work); rerr != nil {
			l.logger.Warn("removing soffice work directory", "dir", work, "error", rerr)
		}
	}()

	profile, err := filepath.Abs(filepath.Join(work, "profile"))
	if err != nil {
		return fmt.Errorf("resolving soffice profile: %w", err)
	}
	args := []string{"-env:UserInstallation=" + fileURL(profile), "--headless"}
	args = append(args, extra...)
	args = append(args, "--convert-to", format, "--outdir", work, in)

	_, stderr, err := l.runner.Run(ctx, l.bin, args...)
	if err != nil {
		return &types.ConversionError{Stage: "soffice", Err: withStderr(err, stderr)}
	}

	produced := filepath.Join(work, strings.TrimSuffix(filepath.Base(in), filepath.Ext(in))+"."+format)
	if err := requireOutput("soffice", produced); err != nil {
		return err
	}
	if err := os.Rename(produced, out); err != nil {
		return fmt.Errorf("moving soffice output to %s: %w", out, err)
	}
	return nil
}

func fileURL(path string) string {
	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return "file://" + p
}
