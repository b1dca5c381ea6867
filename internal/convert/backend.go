// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/pdiddy/docconvert/internal/container"
	"github.com/pdiddy/docconvert/internal/engine"
	"github.com/pdiddy/docconvert/pkg/types"
)

// detectRuntime is replaced in tests.
var detectRuntime = container.DetectRuntime

// NewConverter builds the structural converter selected by cfg.Backend.
func NewConverter(ctx context.Context, cfg types.ConversionConfig, eng types.Engines, runner engine.Runner, logger *slog.Logger) (Converter, error) {
	switch cfg.Backend {
	case types.BackendPdf2docx, "":
		return NewPdf2docxConverter(eng.Pdf2docx, runner), nil
	case types.BackendLibreOffice:
		return NewLibreOfficeConverter(eng.Soffice, runner, logger), nil
	case types.BackendContainer:
		rt, err := detectRuntime(ctx)
		if err != nil {
			return nil, err
		}
		return NewContainerConverter(ctx, rt, cfg.ContainerImage)
	default:
		return nil, fmt.Errorf("unknown conversion backend %q (want pdf2docx, container or libreoffice)", cfg.Backend)
	}
}
