// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/docconvert/internal/convert"
	"github.com/pdiddy/docconvert/internal/journal"
	"github.com/pdiddy/docconvert/pkg/types"
)

func TestLoadConfigDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	cfg := loadConfig(v)

	assert.Equal(t, []string{"spa", "eng"}, cfg.OCR.Languages)
	assert.Equal(t, 300, cfg.OCR.DPI)
	assert.Equal(t, types.BackendPdf2docx, cfg.Conversion.Backend)
	assert.Equal(t, "pdf2docx:latest", cfg.Conversion.ContainerImage)
	assert.Equal(t, types.StrategyAuto, cfg.Conversion.Strategy)
	assert.Equal(t, 1, cfg.Conversion.Workers)
	assert.Equal(t, ".docconvert/history.db", cfg.Journal.Path)
	assert.False(t, cfg.Journal.Disabled)
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docconvert.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
engines:
  tesseract: /opt/tess/bin/tesseract
  tessdata_dir: /opt/tess/share
ocr:
  languages: [deu]
  dpi: 200
conversion:
  backend: libreoffice
  workers: 4
  timeout: 90s
journal:
  disabled: true
`), 0o644))
	t.Setenv("DOCCONVERT_CONVERSION_STRATEGY", "ocr")

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetEnvPrefix("DOCCONVERT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	require.NoError(t, v.ReadInConfig())

	cfg := loadConfig(v)
	assert.Equal(t, "/opt/tess/bin/tesseract", cfg.Engines.Tesseract)
	assert.Equal(t, "/opt/tess/share", cfg.Engines.TessdataDir)
	assert.Equal(t, []string{"deu"}, cfg.OCR.Languages)
	assert.Equal(t, 200, cfg.OCR.DPI)
	assert.Equal(t, types.BackendLibreOffice, cfg.Conversion.Backend)
	assert.Equal(t, types.StrategyOCR, cfg.Conversion.Strategy)
	assert.Equal(t, 4, cfg.Conversion.Workers)
	assert.Equal(t, 90*time.Second, cfg.Conversion.Timeout)
	assert.True(t, cfg.Journal.Disabled)
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	newLogger(&buf, false, false).Info("hidden")
	assert.Empty(t, buf.String())

	newLogger(&buf, true, true).Debug("shown", "page", 2)
	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "shown", rec["msg"])
	assert.Equal(t, float64(2), rec["page"])
}

func TestRunBatchRecordsHistory(t *testing.T) {
	dir := t.TempDir()
	cfg := types.Config{Journal: types.JournalConfig{Path: filepath.Join(dir, "history.db")}}
	c := convert.ConverterFunc(func(_ context.Context, in, out string) types.ConversionOutcome {
		if strings.Contains(in, "missing") {
			return types.ConversionOutcome{Status: types.StatusError, Method: types.MethodFailed, Message: "input file not found: " + in, Input: in}
		}
		return types.ConversionOutcome{Status: types.StatusOK, Method: types.MethodNative, Message: "conversion succeeded", Input: in, Output: out}
	})
	jobs := []convert.Job{
		{Input: filepath.Join(dir, "a.pdf"), Output: filepath.Join(dir, "a.docx")},
		{Input: filepath.Join(dir, "missing.pdf"), Output: filepath.Join(dir, "missing.docx")},
	}

	var out bytes.Buffer
	err := runBatch(context.Background(), &out, c, jobs, cfg, false, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 document(s) failed")
	assert.Contains(t, out.String(), "converted: ")
	assert.Contains(t, out.String(), "failed:  ")

	store, err := journal.Open(cfg.Journal)
	require.NoError(t, err)
	defer store.Close()
	entries, err := store.List(context.Background(), journal.Query{})
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	var hist bytes.Buffer
	sum, err := store.Summarize(context.Background())
	require.NoError(t, err)
	formatHistory(&hist, entries, sum)
	assert.Contains(t, hist.String(), "1 ok, 1 error (all time)")
}

func TestRunBatchRecordsAfterInterrupt(t *testing.T) {
	dir := t.TempDir()
	cfg := types.Config{Journal: types.JournalConfig{Path: filepath.Join(dir, "history.db")}}
	c := convert.ConverterFunc(func(ctx context.Context, in, _ string) types.ConversionOutcome {
		return types.ConversionOutcome{Status: types.StatusError, Method: types.MethodFailed, Message: ctx.Err().Error(), Input: in}
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var out bytes.Buffer
	err := runBatch(ctx, &out, c,
		[]convert.Job{{Input: filepath.Join(dir, "scan.pdf"), Output: filepath.Join(dir, "scan.docx")}}, cfg, false, false)
	require.Error(t, err)

	store, err := journal.Open(cfg.Journal)
	require.NoError(t, err)
	defer store.Close()
	entries, err := store.List(context.Background(), journal.Query{})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "context canceled", entries[0].Message)
}

func TestRunBatchJSON(t *testing.T) {
	dir := t.TempDir()
	cfg := types.Config{Journal: types.JournalConfig{Disabled: true}}
	c := convert.ConverterFunc(func(_ context.Context, in, out string) types.ConversionOutcome {
		return types.ConversionOutcome{Status: types.StatusOK, Method: types.MethodOCRSandwich, Message: "conversion succeeded", Input: in, Output: out}
	})

	var out bytes.Buffer
	require.NoError(t, runBatch(context.Background(), &out, c,
		[]convert.Job{{Input: filepath.Join(dir, "scan.pdf"), Output: filepath.Join(dir, "scan.docx")}}, cfg, false, true))

	var outcomes []types.ConversionOutcome
	require.NoError(t, json.Unmarshal(out.Bytes(), &outcomes))
	require.Len(t, outcomes, 1)
	assert.Equal(t, types.MethodOCRSandwich, outcomes[0].Method)
	assert.NoFileExists(t, filepath.Join(dir, "history.db"))
}

func TestPrintEngines(t *testing.T) {
	var buf bytes.Buffer
	printEngines(&buf, types.Engines{Tesseract: "/usr/bin/tesseract"}, "podman")
	s := buf.String()
	assert.Contains(t, s, "/usr/bin/tesseract")
	assert.Contains(t, s, "pdftoppm    (not found)")
	assert.Contains(t, s, "container   podman")
}
