// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/docconvert/internal/container"
	"github.com/pdiddy/docconvert/internal/engine"
	"github.com/pdiddy/docconvert/pkg/types"
)

var enginesCmd = &cobra.Command{
	Use:   "engines",
	Short: "Show the external engines docconvert will use",
	Long: `Engines resolves every external engine the way convert does (config,
well-known install locations, then PATH) and prints the result together with
the container runtime. It exits non-zero when scanned documents cannot be
processed.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig(viper.GetViper())
		eng, err := engine.Discover(cfg.Engines)
		if err != nil {
			return err
		}
		runtime := "none"
		if rt, err := container.DetectRuntime(cmd.Context()); err == nil {
			runtime = rt.Name()
		}
		printEngines(cmd.OutOrStdout(), eng, runtime)

		if !eng.OCRAvailable() {
			if eng.Tesseract == "" {
				return engine.Missing(engine.BinTesseract)
			}
			return engine.Missing(engine.BinPdftoppm)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(enginesCmd)
}

func printEngines(w io.Writer, eng types.Engines, runtime string) {
	rows := []struct{ name, path string }{
		{engine.BinTesseract, eng.Tesseract},
		{engine.BinPdftoppm, eng.Pdftoppm},
		{engine.BinPdftotext, eng.Pdftotext},
		{engine.BinPdf2docx, eng.Pdf2docx},
		{engine.BinSoffice, eng.Soffice},
	}
	for _, r := range rows {
		path := r.path
		if path == "" {
			path = "(not found)"
		}
		fmt.Fprintf(w, "%-10s  %s\n", r.name, path)
	}
	if eng.TessdataDir != "" {
		fmt.Fprintf(w, "%-10s  %s\n", "tessdata", eng.TessdataDir)
	}
	fmt.Fprintf(w, "%-10s  %s\n", "container", runtime)
}
