// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/docconvert/internal/convert"
	"github.com/pdiddy/docconvert/internal/engine"
	"github.com/pdiddy/docconvert/pkg/types"
)

var topdfCmd = &cobra.Command{
	Use:   "topdf <docx>...",
	Short: "Convert DOCX files to PDF with LibreOffice",
	Long: `Topdf converts word-processor documents to PDF with a headless
LibreOffice (soffice). Outputs are written next to each input unless --out or
--out-dir is given.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runToPDF,
}

func init() {
	topdfCmd.Flags().StringP("out", "o", "", "output PDF path (single input only)")
	topdfCmd.Flags().String("out-dir", "", "directory for outputs (default: next to each input)")
	topdfCmd.Flags().Bool("overwrite", false, "convert even when the output exists")
	topdfCmd.Flags().Bool("json", false, "print outcomes as JSON")

	rootCmd.AddCommand(topdfCmd)
}

func runToPDF(cmd *cobra.Command, args []string) error {
	cfg := loadConfig(viper.GetViper())
	out, _ := cmd.Flags().GetString("out")
	if out != "" && len(args) > 1 {
		return fmt.Errorf("--out needs exactly one input, got %d", len(args))
	}
	outDir, _ := cmd.Flags().GetString("out-dir")
	if outDir == "" {
		outDir = cfg.Conversion.OutDir
	}

	eng, err := engine.Discover(cfg.Engines)
	if err != nil {
		return err
	}
	lo := convert.NewLibreOfficeConverter(eng.Soffice, engine.NewExecRunner(slog.Default()), slog.Default())

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	jobs := make([]convert.Job, len(args))
	for i, in := range args {
		jobs[i] = convert.Job{Input: in, Output: convert.PDFOutputPath(in, outDir)}
	}
	if out != "" {
		jobs[0].Output = out
	}

	c := convert.ConverterFunc(func(ctx context.Context, src, dst string) types.ConversionOutcome {
		return convert.WordToPDF(ctx, lo, src, dst)
	})
	overwrite, _ := cmd.Flags().GetBool("overwrite")
	asJSON, _ := cmd.Flags().GetBool("json")
	return runBatch(ctx, cmd.OutOrStdout(), c, jobs, cfg, overwrite, asJSON)
}
