// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sandwich

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/pdiddy/docconvert/internal/engine"
)

// Rasterizer renders every page of a PDF to an image file in dir and
// returns the image paths in page order.
type Rasterizer interface {
	Rasterize(ctx context.Context, pdfPath string, dpi int, dir string) ([]string, error)
}

// Recognizer OCRs one page image into a single-page PDF that combines the
// image with an invisible, positioned text layer. outBase has no
// extension; the returned path is the PDF written.
type Recognizer interface {
	Recognize(ctx context.Context, imagePath, outBase string) (string, error)
}

// Assembler concatenates single-page PDFs, in order, into out.
type Assembler interface {
	Assemble(pages []string, out string) error
}

// Pdftoppm rasterizes with poppler's pdftoppm.
type Pdftoppm struct {
	bin    string
	runner engine.Runner
}

// NewPdftoppm creates a rasterizer for the pdftoppm binary at bin.
func NewPdftoppm(bin string, runner engine.Runner) *Pdftoppm {
	return &Pdftoppm{bin: bin, runner: runner}
}

// Rasterize implements Rasterizer. Failures are environment errors: a
// missing or broken poppler install is the usual cause.
func (p *Pdftoppm) Rasterize(ctx context.Context, pdfPath string, dpi int, dir string) ([]string, error) {
	if p.bin == "" {
		return nil, engine.Missing(engine.BinPdftoppm)
	}
	prefix := filepath.Join(dir, "page")
	// pdftoppm -r 300 -png <in.pdf> <dir/page>
	_, errb, err := p.runner.Run(ctx, p.bin, "-r", strconv.Itoa(dpi), "-png", pdfPath, prefix)
	if err != nil {
		return nil, engine.Failed(engine.BinPdftoppm, fmt.Errorf("%w: %s", err, engine.StderrText(errb)))
	}
	return pageImages(prefix)
}

// pageImages collects prefix-N.png files ordered by N. pdftoppm pads N to
// the width of the page count, so a lexical sort is not enough when the
// padding is absent.
func pageImages(prefix string) ([]string, error) {
	matches, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return nil, err
	}
	type page struct {
		n    int
		path string
	}
	pages := make([]page, 0, len(matches))
	for _, m := range matches {
		num := strings.TrimSuffix(strings.TrimPrefix(m, prefix+"-"), ".png")
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

// Tesseract produces sandwich pages with the tesseract pdf renderer.
type Tesseract struct {
	bin         string
	tessdataDir string
	languages   []string
	dpi         int
	runner      engine.Runner
}

// NewTesseract creates a Recognizer. All languages are recognized
// simultaneously.
func NewTesseract(bin, tessdataDir string, languages []string, dpi int, runner engine.Runner) *Tesseract {
	return &Tesseract{bin: bin, tessdataDir: tessdataDir, languages: languages, dpi: dpi, runner: runner}
}

// Recognize implements Recognizer.
func (t *Tesseract) Recognize(ctx context.Context, imagePath, outBase string) (string, error) {
	// tesseract <img> <outbase> --dpi 300 -l spa+eng pdf
	args := []string{imagePath, outBase, "--dpi", strconv.Itoa(t.dpi), "-l", strings.Join(t.languages, "+")}
	if t.tessdataDir != "" {
		args = append(args, "--tessdata-dir", t.tessdataDir)
	}
	args = append(args, "pdf")

	_, errb, err := t.runner.Run(ctx, t.bin, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, engine.StderrText(errb))
	}
	out := outBase + ".pdf"
	if _, err := os.Stat(out); err != nil {
		return "", fmt.Errorf("tesseract produced no PDF: %w", err)
	}
	return out, nil
}

// PdfcpuAssembler merges pages with pdfcpu.
type PdfcpuAssembler struct{}

// Assemble implements Assembler.
func (PdfcpuAssembler) Assemble(pages []string, out string) error {
	switch len(pages) {
	case 0:
		return os.WriteFile(out, emptyPDF(), 0o644)
	case 1:
		return copyFile(pages[0], out)
	}
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	if err := api.MergeCreateFile(pages, out, false, conf); err != nil {
		return fmt.Errorf("merging %d pages: %w", len(pages), err)
	}
	return nil
}

// CountPages returns the page count of a PDF file.
func CountPages(path string) (int, error) {
	return api.PageCountFile(path)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// emptyPDF returns a valid PDF with an empty page tree.
func emptyPDF() []byte {
	const (
		header  = "%PDF-1.4\n"
		catalog = "1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n"
		pages   = "2 0 obj\n<< /Type /Pages /Kids [] /Count 0 >>\nendobj\n"
	)
	xref := len(header) + len(catalog) + len(pages)
	return fmt.Appendf(nil,
		"%s%s%sxref\n0 3\n0000000000 65535 f \n%010d 00000 n \n%010d 00000 n \ntrailer\n<< /Size 3 /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		header, catalog, pages, len(header), len(header)+len(catalog), xref)
}
