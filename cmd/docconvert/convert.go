// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/docconvert/internal/convert"
	"github.com/pdiddy/docconvert/internal/engine"
	"github.com/pdiddy/docconvert/internal/journal"
	"github.com/pdiddy/docconvert/internal/orient"
	"github.com/pdiddy/docconvert/internal/sandwich"
	"github.com/pdiddy/docconvert/internal/triage"
	"github.com/pdiddy/docconvert/pkg/types"
)

var convertCmd = &cobra.Command{
	Use:   "convert <pdf>...",
	Short: "Convert PDF files to DOCX",
	Long: `Convert turns each PDF into a DOCX. Digital PDFs are converted directly;
scanned PDFs are rasterized at 300 DPI, straightened, OCR'd (Spanish and
English) into a temporary searchable PDF and converted from that.

Outputs are written next to each input unless --out or --out-dir is given.
Existing outputs are skipped unless --overwrite is set.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringP("out", "o", "", "output DOCX path (single input only)")
	convertCmd.Flags().String("out-dir", "", "directory for outputs (default: next to each input)")
	convertCmd.Flags().String("backend", "", "structural converter: pdf2docx, container, or libreoffice")
	convertCmd.Flags().String("strategy", "", "auto (triage), native (skip OCR), or ocr (always OCR)")
	convertCmd.Flags().IntP("workers", "j", 0, "documents converted concurrently")
	convertCmd.Flags().Duration("timeout", 0, "per-document deadline, e.g. 10m (0 means none)")
	convertCmd.Flags().Bool("overwrite", false, "convert even when the output exists")
	convertCmd.Flags().Bool("json", false, "print outcomes as JSON")

	bindFlag(convertCmd, keyOutDir, "out-dir")
	bindFlag(convertCmd, keyBackend, "backend")
	bindFlag(convertCmd, keyStrategy, "strategy")
	bindFlag(convertCmd, keyWorkers, "workers")
	bindFlag(convertCmd, keyTimeout, "timeout")

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(viper.GetViper())
	out, _ := cmd.Flags().GetString("out")
	if out != "" && len(args) > 1 {
		return fmt.Errorf("--out needs exactly one input, got %d", len(args))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	d, err := newDispatcher(ctx, cfg, slog.Default())
	if err != nil {
		return err
	}

	jobs := make([]convert.Job, len(args))
	for i, in := range args {
		jobs[i] = convert.Job{Input: in, Output: convert.OutputPath(in, cfg.Conversion.OutDir)}
	}
	if out != "" {
		jobs[0].Output = out
	}

	overwrite, _ := cmd.Flags().GetBool("overwrite")
	asJSON, _ := cmd.Flags().GetBool("json")
	return runBatch(ctx, cmd.OutOrStdout(), d, jobs, cfg, overwrite, asJSON)
}

// newDispatcher resolves the engines once and wires the conversion pipeline.
func newDispatcher(ctx context.Context, cfg types.Config, logger *slog.Logger) (*convert.Dispatcher, error) {
	eng, err := engine.Discover(cfg.Engines)
	if err != nil {
		return nil, err
	}
	logger.Debug("engines resolved",
		"tesseract", eng.Tesseract, "pdftoppm", eng.Pdftoppm,
		"pdftotext", eng.Pdftotext, "pdf2docx", eng.Pdf2docx, "soffice", eng.Soffice)

	runner := engine.NewExecRunner(logger)
	classifier := triage.NewClassifier(triage.NewPDFSampler(eng.Pdftotext, runner, logger), logger)
	corrector := orient.NewCorrector(orient.NewTesseractDetector(eng.Tesseract, eng.TessdataDir, runner), logger)
	builder := sandwich.NewDefaultBuilder(eng, cfg.OCR, corrector, runner, sandwich.WithLogger(logger))

	conv, err := convert.NewConverter(ctx, cfg.Conversion, eng, runner, logger)
	if err != nil {
		return nil, err
	}
	return convert.NewDispatcher(classifier, builder, conv,
		convert.WithStrategy(cfg.Conversion.Strategy),
		convert.WithLogger(logger),
	), nil
}

// runBatch converts jobs, records each outcome in the journal and reports.
// It returns an error when any document failed.
func runBatch(ctx context.Context, w io.Writer, c convert.DocumentConverter, jobs []convert.Job, cfg types.Config, overwrite, asJSON bool) error {
	opts := convert.BatchOptions{
		Workers:   cfg.Conversion.Workers,
		Overwrite: overwrite,
		Timeout:   cfg.Conversion.Timeout,
	}

	if !cfg.Journal.Disabled {
		store, err := journal.Open(cfg.Journal)
		if err != nil {
			slog.Warn("conversion history unavailable", "error", err)
		} else {
			defer store.Close()
			// Interrupted conversions are still recorded after Ctrl-C.
			recordCtx := context.WithoutCancel(ctx)
			opts.OnOutcome = func(o types.ConversionOutcome) {
				if _, err := store.Record(recordCtx, o); err != nil {
					slog.Warn("recording conversion", "input", o.Input, "error", err)
				}
			}
		}
	}

	progress := w
	if asJSON {
		progress = io.Discard
	}
	res := convert.ConvertBatch(ctx, c, jobs, opts, progress)

	if asJSON {
		outcomes := make([]types.ConversionOutcome, 0, len(res.Results))
		for _, r := range res.Results {
			if !r.Skipped {
				outcomes = append(outcomes, r.Outcome)
			}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(outcomes); err != nil {
			return err
		}
	}

	if res.HasFailures() {
		return fmt.Errorf("%d document(s) failed conversion", res.Failed)
	}
	return nil
}
