// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/docconvert/internal/convert"
	"github.com/pdiddy/docconvert/internal/journal"
	"github.com/pdiddy/docconvert/internal/sandwich"
	"github.com/pdiddy/docconvert/pkg/types"
)

// Viper keys. They mirror the yaml layout of types.Config.
const (
	keyTesseract      = "engines.tesseract"
	keyPdftoppm       = "engines.pdftoppm"
	keyPdftotext      = "engines.pdftotext"
	keyPdf2docx       = "engines.pdf2docx"
	keySoffice        = "engines.soffice"
	keyTessdataDir    = "engines.tessdata_dir"
	keyLanguages      = "ocr.languages"
	keyDPI            = "ocr.dpi"
	keyBackend        = "conversion.backend"
	keyContainerImage = "conversion.container_image"
	keyStrategy       = "conversion.strategy"
	keyWorkers        = "conversion.workers"
	keyOutDir         = "conversion.out_dir"
	keyTimeout        = "conversion.timeout"
	keyJournalPath    = "journal.path"
	keyJournalOff     = "journal.disabled"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault(keyLanguages, sandwich.DefaultLanguages)
	v.SetDefault(keyDPI, sandwich.DefaultDPI)
	v.SetDefault(keyBackend, string(types.BackendPdf2docx))
	v.SetDefault(keyContainerImage, convert.DefaultImage)
	v.SetDefault(keyStrategy, string(types.StrategyAuto))
	v.SetDefault(keyWorkers, 1)
	v.SetDefault(keyJournalPath, journal.DefaultPath)
}

// loadConfig reads the effective configuration from v.
func loadConfig(v *viper.Viper) types.Config {
	return types.Config{
		Engines: types.EngineConfig{
			Tesseract:   v.GetString(keyTesseract),
			Pdftoppm:    v.GetString(keyPdftoppm),
			Pdftotext:   v.GetString(keyPdftotext),
			Pdf2docx:    v.GetString(keyPdf2docx),
			Soffice:     v.GetString(keySoffice),
			TessdataDir: v.GetString(keyTessdataDir),
		},
		OCR: types.OCRConfig{
			Languages: v.GetStringSlice(keyLanguages),
			DPI:       v.GetInt(keyDPI),
		},
		Conversion: types.ConversionConfig{
			Backend:        types.ConversionBackend(v.GetString(keyBackend)),
			ContainerImage: v.GetString(keyContainerImage),
			Strategy:       types.Strategy(v.GetString(keyStrategy)),
			Workers:        v.GetInt(keyWorkers),
			OutDir:         v.GetString(keyOutDir),
			Timeout:        v.GetDuration(keyTimeout),
		},
		Journal: types.JournalConfig{
			Path:     v.GetString(keyJournalPath),
			Disabled: v.GetBool(keyJournalOff),
		},
	}
}

// bindFlag binds a command flag to a viper key; flags win over the config
// file and the environment.
func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
		panic(err)
	}
}

// setupLogging installs the default slog logger. Warnings only unless
// --verbose is set.
func setupLogging(cmd *cobra.Command) error {
	verbose, _ := cmd.Flags().GetBool("verbose")
	asJSON, _ := cmd.Flags().GetBool("log-json")
	slog.SetDefault(newLogger(os.Stderr, verbose, asJSON))
	return nil
}

func newLogger(w io.Writer, verbose, asJSON bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelWarn}
	if verbose {
		opts.Level = slog.LevelDebug
	}
	if asJSON {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
