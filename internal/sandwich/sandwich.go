// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package sandwich rebuilds scanned PDFs as hybrid documents: every page is
// rasterized, straightened, and OCR'd into the original image overlaid with
// an invisible, positioned text layer. Pages are processed strictly in
// order; the hybrid has exactly one page per source page.
package sandwich

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/pdiddy/docconvert/internal/engine"
	"github.com/pdiddy/docconvert/pkg/types"
)

const (
	// DefaultDPI is the rasterization resolution.
	DefaultDPI = 300

	hybridSuffix = "_temp_ocr_"
)

// DefaultLanguages are recognized together, not as a fallback chain.
var DefaultLanguages = []string{"spa", "eng"}

// PageCorrector straightens a page image file in place.
type PageCorrector interface {
	Correct(ctx context.Context, path string) int
}

// Hybrid is the file-backed intermediate document. It must be released
// once the structural converter has consumed it.
type Hybrid struct {
	Path  string
	Pages int
}

// Release deletes the hybrid file. Releasing twice is harmless.
func (h *Hybrid) Release() error {
	if err := os.Remove(h.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing hybrid %s: %w", h.Path, err)
	}
	return nil
}

// HybridPath returns a fresh temporary path next to src. The random part
// keeps concurrent conversions of the same source apart.
func HybridPath(src string) string {
	stem := strings.TrimSuffix(filepath.Base(src), filepath.Ext(src))
	id := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return filepath.Join(filepath.Dir(src), stem+hybridSuffix+id+".pdf")
}

// IsHybridPath reports whether path was produced by HybridPath.
func IsHybridPath(path string) bool {
	return strings.Contains(filepath.Base(path), hybridSuffix)
}

// Builder assembles hybrid documents.
type Builder struct {
	tesseract  string
	dpi        int
	rasterizer Rasterizer
	corrector  PageCorrector
	recognizer Recognizer
	assembler  Assembler
	countPages func(path string) (int, error)
	scratchDir string
	logger     *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder)

// WithPageCounter replaces the pdfcpu page counter.
func WithPageCounter(f func(path string) (int, error)) Option {
	return func(b *Builder) { b.countPages = f }
}

// WithScratchDir sets the parent directory for rasterized pages (default
// os.TempDir()).
func WithScratchDir(dir string) Option {
	return func(b *Builder) { b.scratchDir = dir }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(b *Builder) { b.logger = l }
}

// NewBuilder creates a Builder. tesseract is the resolved OCR engine path;
// an empty value makes every Build fail with a configuration error.
func NewBuilder(tesseract string, dpi int, r Rasterizer, c PageCorrector, rec Recognizer, a Assembler, opts ...Option) *Builder {
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	b := &Builder{
		tesseract:  tesseract,
		dpi:        dpi,
		rasterizer: r,
		corrector:  c,
		recognizer: rec,
		assembler:  a,
		countPages: CountPages,
		logger:     slog.Default(),
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// NewDefaultBuilder wires the production engines: pdftoppm, tesseract and
// pdfcpu.
func NewDefaultBuilder(eng types.Engines, cfg types.OCRConfig, c PageCorrector, runner engine.Runner, opts ...Option) *Builder {
	dpi := cfg.DPI
	if dpi <= 0 {
		dpi = DefaultDPI
	}
	langs := cfg.Languages
	if len(langs) == 0 {
		langs = DefaultLanguages
	}
	return NewBuilder(eng.Tesseract, dpi,
		NewPdftoppm(eng.Pdftoppm, runner),
		c,
		NewTesseract(eng.Tesseract, eng.TessdataDir, langs, dpi, runner),
		PdfcpuAssembler{},
		opts...,
	)
}

// Build produces the hybrid for src. On error nothing is left on disk.
func (b *Builder) Build(ctx context.Context, src string) (*Hybrid, error) {
	if b.tesseract == "" {
		return nil, engine.Missing(engine.BinTesseract)
	}
	logger := b.logger.With("path", src)

	scratch, err := os.MkdirTemp(b.scratchDir, "docconvert-pages-*")
	if err != nil {
		return nil, fmt.Errorf("creating scratch directory: %w", err)
	}
	defer func() {
		if rerr := os.RemoveAll(scratch); rerr != nil {
			logger.Warn("removing scratch directory", "dir", scratch, "error", rerr)
		}
	}()

	expected, cerr := b.countPages(src)
	if cerr != nil {
		logger.Warn("cannot count source pages, trusting the rasterizer", "error", cerr)
		expected = -1
	}

	var images []string
	if expected != 0 {
		images, err = b.rasterizer.Rasterize(ctx, src, b.dpi, scratch)
		if err != nil {
			return nil, err
		}
	}
	if expected >= 0 && len(images) != expected {
		return nil, &types.ConversionError{
			Stage: "rasterize",
			Err:   fmt.Errorf("rendered %d page images for a %d page document", len(images), expected),
		}
	}
	logger.Info("building OCR sandwich", "pages", len(images), "dpi", b.dpi)

	pages := make([]string, 0, len(images))
	for i, img := range images {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if angle := b.corrector.Correct(ctx, img); angle != 0 {
			logger.Info("page rotated", "page", i+1, "angle", angle)
		}
		base := filepath.Join(scratch, fmt.Sprintf("ocr-%05d", i+1))
		pdf, err := b.recognizer.Recognize(ctx, img, base)
		if err != nil {
			return nil, &types.ConversionError{Stage: "ocr", Page: i + 1, Err: err}
		}
		pages = append(pages, pdf)
	}

	h := &Hybrid{Path: HybridPath(src), Pages: len(pages)}
	done := false
	defer func() {
		// Also runs while a panic from the assembler unwinds.
		if !done {
			if rerr := h.Release(); rerr != nil {
				logger.Warn("removing partial hybrid", "error", rerr)
			}
		}
	}()

	if err := b.assembler.Assemble(pages, h.Path); err != nil {
		return nil, &types.ConversionError{Stage: "assemble", Err: err}
	}
	got, cerr := b.countPages(h.Path)
	if cerr != nil {
		logger.Warn("cannot count hybrid pages", "hybrid", h.Path, "expected", h.Pages, "error", cerr)
		return nil, &types.ConversionError{
			Stage: "assemble",
			Err:   fmt.Errorf("verifying hybrid page count: %w", cerr),
		}
	}
	if got != h.Pages {
		return nil, &types.ConversionError{
			Stage: "assemble",
			Err:   fmt.Errorf("hybrid has %d pages, expected %d", got, h.Pages),
		}
	}
	done = true
	return h, nil
}

// With builds the hybrid for src, hands it to fn and releases it on every
// exit path, including a panic in fn.
func (b *Builder) With(ctx context.Context, src string, fn func(*Hybrid) error) error {
	h, err := b.Build(ctx, src)
	if err != nil {
		return err
	}
	defer func() {
		if rerr := h.Release(); rerr != nil {
			b.logger.Error("hybrid left on disk", "path", h.Path, "error", rerr)
		}
	}()
	return fn(h)
}
