// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package engine resolves the external engines the converter depends on
// (tesseract, poppler, pdf2docx, LibreOffice) and runs them.
//
// Discovery runs once at startup. For each engine the explicit configured
// value wins, then a fixed list of installation locations, then PATH. The
// resulting types.Engines value is passed to every component explicitly.
package engine

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/pdiddy/docconvert/pkg/types"
)

const (
	BinTesseract = "tesseract"
	BinPdftoppm  = "pdftoppm"
	BinPdftotext = "pdftotext"
	BinPdf2docx  = "pdf2docx"
	BinSoffice   = "soffice"
)

// knownLocations lists install locations checked before PATH.
var knownLocations = map[string][]string{
	BinTesseract: {
		`C:\Program Files\Tesseract-OCR\tesseract.exe`,
		"/usr/bin/tesseract",
		"/usr/local/bin/tesseract",
		"/opt/homebrew/bin/tesseract",
	},
	BinPdftoppm: {
		"/usr/bin/pdftoppm",
		"/usr/local/bin/pdftoppm",
		"/opt/homebrew/bin/pdftoppm",
	},
	BinPdftotext: {
		"/usr/bin/pdftotext",
		"/usr/local/bin/pdftotext",
		"/opt/homebrew/bin/pdftotext",
	},
	BinSoffice: {
		`C:\Program Files\LibreOffice\program\soffice.exe`,
		"/usr/bin/soffice",
		"/usr/local/bin/soffice",
		"/Applications/LibreOffice.app/Contents/MacOS/soffice",
	},
}

// locator abstracts filesystem and PATH lookups for testing.
type locator interface {
	LookPath(file string) (string, error)
	IsFile(path string) bool
}

// osLocator is the production locator.
type osLocator struct{}

func (osLocator) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (osLocator) IsFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Discover resolves every engine. Engines that cannot be found are left
// empty; an explicitly configured path that does not exist is an error.
func Discover(cfg types.EngineConfig) (types.Engines, error) {
	return discover(cfg, osLocator{})
}

func discover(cfg types.EngineConfig, loc locator) (types.Engines, error) {
	var (
		eng types.Engines
		err error
	)
	resolve := func(dst *string, name, explicit string) {
		if err != nil {
			return
		}
		*dst, err = resolveOne(loc, name, explicit)
	}
	resolve(&eng.Tesseract, BinTesseract, cfg.Tesseract)
	resolve(&eng.Pdftoppm, BinPdftoppm, cfg.Pdftoppm)
	resolve(&eng.Pdftotext, BinPdftotext, cfg.Pdftotext)
	resolve(&eng.Pdf2docx, BinPdf2docx, cfg.Pdf2docx)
	resolve(&eng.Soffice, BinSoffice, cfg.Soffice)
	if err != nil {
		return types.Engines{}, err
	}
	eng.TessdataDir = cfg.TessdataDir
	return eng, nil
}

func resolveOne(loc locator, name, explicit string) (string, error) {
	if explicit != "" {
		if loc.IsFile(explicit) {
			return explicit, nil
		}
		// A bare name is looked up on PATH.
		if filepath.Base(explicit) == explicit {
			if p, err := loc.LookPath(explicit); err == nil {
				return p, nil
			}
		}
		return "", &types.EnvironmentError{
			Engine: name,
			Hint:   fmt.Sprintf("configured %s path %q does not exist", name, explicit),
		}
	}
	for _, candidate := range knownLocations[name] {
		if loc.IsFile(candidate) {
			return candidate, nil
		}
	}
	if p, err := loc.LookPath(name); err == nil {
		return p, nil
	}
	return "", nil
}
