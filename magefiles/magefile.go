//go:build mage

// Package main contains Mage build targets for docconvert developer tooling.
package main

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binDir  = "bin"
	binName = "docconvert"
	cmdPkg  = "./cmd/docconvert"
	cfgFile = "docconvert.yaml"
)

// sampleConfig is written by Init when no config file exists.
const sampleConfig = `# docconvert configuration. Empty engine paths are discovered.
engines:
  tesseract: ""
  pdftoppm: ""
  pdftotext: ""
  pdf2docx: ""
  soffice: ""
ocr:
  languages: [spa, eng]
  dpi: 300
conversion:
  backend: pdf2docx
  container_image: pdf2docx:latest
  strategy: auto
  workers: 1
  out_dir: ""
journal:
  path: .docconvert/history.db
  disabled: false
`

// Init creates the journal directory and a sample docconvert.yaml.
func Init() error {
	if err := os.MkdirAll(".docconvert", 0o755); err != nil {
		return fmt.Errorf("creating .docconvert: %w", err)
	}
	if _, err := os.Stat(cfgFile); err == nil {
		fmt.Println("Keeping existing", cfgFile)
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := os.WriteFile(cfgFile, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", cfgFile, err)
	}
	fmt.Println("Wrote", cfgFile)
	return nil
}

// Build compiles the CLI binary into bin/.
func Build() error {
	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", binDir, err)
	}
	out := filepath.Join(binDir, binName)
	if err := sh.RunV("go", "build", "-o", out, cmdPkg); err != nil {
		return fmt.Errorf("go build: %w", err)
	}
	fmt.Printf("Built %s\n", out)
	return nil
}

// Test runs the unit tests with the race detector.
func Test() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Lint runs go vet.
func Lint() error {
	return sh.RunV("go", "vet", "./...")
}

// Engines builds the CLI and reports which external engines it resolves.
func Engines() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binDir, binName), "engines")
}

// Stats prints Go production and test line counts per package directory.
func Stats() error {
	prod := map[string]int{}
	tests := map[string]int{}
	err := filepath.WalkDir(".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if name := d.Name(); path != "." && (strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		n, err := countLines(path)
		if err != nil {
			return err
		}
		if strings.HasSuffix(path, "_test.go") {
			tests[filepath.Dir(path)] += n
		} else {
			prod[filepath.Dir(path)] += n
		}
		return nil
	})
	if err != nil {
		return err
	}

	dirs := make([]string, 0, len(prod))
	for dir := range prod {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	var totalProd, totalTest int
	for _, dir := range dirs {
		fmt.Printf("%-24s %6d %6d\n", dir, prod[dir], tests[dir])
		totalProd += prod[dir]
		totalTest += tests[dir]
	}
	fmt.Printf("%-24s %6d %6d\n", "total", totalProd, totalTest)
	return nil
}

// countLines counts non-blank lines in a file.
func countLines(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", path, err)
	}
	n := 0
	for _, line := range bytes.Split(data, []byte("\n")) {
		if len(bytes.TrimSpace(line)) > 0 {
			n++
		}
	}
	return n, nil
}
