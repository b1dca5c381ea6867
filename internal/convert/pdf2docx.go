// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"os"

	"github.com/pdiddy/docconvert/internal/engine"
	"github.com/pdiddy/docconvert/pkg/types"
)

// Pdf2docxConverter runs the pdf2docx command line tool on the host.
type Pdf2docxConverter struct {
	bin    string
	runner engine.Runner
}

// NewPdf2docxConverter returns a converter for the resolved pdf2docx binary.
func NewPdf2docxConverter(bin string, runner engine.Runner) *Pdf2docxConverter {
	return &Pdf2docxConverter{bin: bin, runner: runner}
}

func (p *Pdf2docxConverter) Convert(ctx context.Context, pdfPath, docxPath string) error {
	if p.bin == "" {
		return engine.Missing(engine.BinPdf2docx)
	}
	_, stderr, err := p.runner.Run(ctx, p.bin, "convert", pdfPath, docxPath)
	if err != nil {
		return &types.ConversionError{Stage: "pdf2docx", Err: withStderr(err, stderr)}
	}
	return requireOutput("pdf2docx", docxPath)
}

func withStderr(err error, stderr []byte) error {
	if msg := engine.StderrText(stderr); msg != "" {
		return fmt.Errorf("%w: %s", err, msg)
	}
	return err
}

func requireOutput(stage, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return &types.ConversionError{Stage: stage, Err: fmt.Errorf("no output written to %s", path)}
	}
	if info.Size() == 0 {
		return &types.ConversionError{Stage: stage, Err: fmt.Errorf("empty output written to %s", path)}
	}
	return nil
}
