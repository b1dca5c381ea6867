// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert implements PDF to DOCX conversion. The Dispatcher triages
// each input, sends digital documents straight to a structural Converter and
// routes scanned documents through an OCR sandwich first.
package convert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/docconvert/internal/sandwich"
	"github.com/pdiddy/docconvert/pkg/types"
)

const msgSucceeded = "conversion succeeded"

// Converter turns a PDF into a DOCX. Backends (pdf2docx, container,
// libreoffice) implement this interface.
type Converter interface {
	Convert(ctx context.Context, pdfPath, docxPath string) error
}

// Classifier decides whether a PDF is digital or scanned.
type Classifier interface {
	Classify(ctx context.Context, pdfPath string) types.Classification
}

// HybridBuilder runs fn against a temporary OCR sandwich of src and removes
// the sandwich afterwards. *sandwich.Builder implements it.
type HybridBuilder interface {
	With(ctx context.Context, src string, fn func(*sandwich.Hybrid) error) error
}

// Dispatcher is the single entry point for PDF to DOCX requests.
type Dispatcher struct {
	classifier Classifier
	builder    HybridBuilder
	converter  Converter
	strategy   types.Strategy
	logger     *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithStrategy overrides triage. StrategyAuto (the default) classifies.
func WithStrategy(s types.Strategy) Option {
	return func(d *Dispatcher) { d.strategy = s }
}

// WithLogger sets the dispatcher logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// NewDispatcher wires the classifier, the OCR sandwich builder and the
// structural converter.
func NewDispatcher(c Classifier, b HybridBuilder, conv Converter, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		classifier: c,
		builder:    b,
		converter:  conv,
		strategy:   types.StrategyAuto,
		logger:     slog.Default(),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Convert converts the PDF at in into a DOCX at out. It never returns an
// error or panics; every failure is reported in the outcome.
func (d *Dispatcher) Convert(ctx context.Context, in, out string) (outcome types.ConversionOutcome) {
	start := time.Now()
	outcome = types.ConversionOutcome{Input: in, Output: out}
	logger := d.logger.With("input", in)

	defer func() {
		if r := recover(); r != nil {
			logger.Error("conversion panicked", "panic", r)
			outcome = failed(outcome, fmt.Errorf("unexpected failure: %v", r))
		}
		outcome.Duration = time.Since(start)
	}()

	if err := checkInput(in); err != nil {
		return failed(outcome, err)
	}

	class, err := d.classify(ctx, in)
	if err != nil {
		return failed(outcome, err)
	}
	outcome.Classification = class
	logger.Info("document classified", "classification", class, "strategy", d.strategy)

	if err := ensureDir(out); err != nil {
		return failed(outcome, err)
	}

	switch class {
	case types.ClassDigital:
		err = d.converter.Convert(ctx, in, out)
		outcome.Method = types.MethodNative
	default:
		err = d.builder.With(ctx, in, func(h *sandwich.Hybrid) error {
			logger.Info("converting OCR sandwich", "hybrid", h.Path, "pages", h.Pages)
			return d.converter.Convert(ctx, h.Path, out)
		})
		outcome.Method = types.MethodOCRSandwich
	}
	if err != nil {
		logger.Error("conversion failed", "method", outcome.Method, "error", err)
		return failed(outcome, err)
	}

	outcome.Status = types.StatusOK
	outcome.Message = msgSucceeded
	return outcome
}

func (d *Dispatcher) classify(ctx context.Context, in string) (types.Classification, error) {
	switch d.strategy {
	case types.StrategyNative:
		return types.ClassDigital, nil
	case types.StrategyOCR:
		return types.ClassScanned, nil
	case types.StrategyAuto, "":
		return d.classifier.Classify(ctx, in), nil
	default:
		return "", fmt.Errorf("unknown strategy %q", d.strategy)
	}
}

func checkInput(in string) error {
	info, err := os.Stat(in)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("%w: %s", types.ErrInputNotFound, in)
	}
	if err != nil {
		return fmt.Errorf("reading input %s: %w", in, err)
	}
	if info.IsDir() {
		return fmt.Errorf("input %s is a directory", in)
	}
	return nil
}

func ensureDir(out string) error {
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	return nil
}

func failed(o types.ConversionOutcome, err error) types.ConversionOutcome {
	o.Status = types.StatusError
	o.Method = types.MethodFailed
	o.Message = err.Error()
	return o
}

// OutputPath returns the DOCX path for a PDF input: same stem with a .docx
// extension, in outDir when set, otherwise next to the input.
func OutputPath(in, outDir string) string {
	return outputPath(in, outDir, ".docx")
}

func outputPath(in, outDir, ext string) string {
	base := strings.TrimSuffix(filepath.Base(in), filepath.Ext(in)) + ext
	if outDir != "" {
		return filepath.Join(outDir, base)
	}
	return filepath.Join(filepath.Dir(in), base)
}
