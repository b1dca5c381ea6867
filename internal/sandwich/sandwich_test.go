// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package sandwich

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/docconvert/pkg/types"
)

// fakeRasterizer writes n placeholder page images.
type fakeRasterizer struct {
	n      int
	err    error
	called bool
}

func (f *fakeRasterizer) Rasterize(_ context.Context, _ string, dpi int, dir string) ([]string, error) {
	f.called = true
	if f.err != nil {
		return nil, f.err
	}
	paths := make([]string, f.n)
	for i := range paths {
		paths[i] = filepath.Join(dir, fmt.Sprintf("page-%d.png", i+1))
		if err := os.WriteFile(paths[i], []byte(fmt.Sprintf("image %d @%d", i+1, dpi)), 0o644); err != nil {
			return nil, err
		}
	}
	return paths, nil
}

// fakeCorrector records the order in which pages are straightened.
type fakeCorrector struct {
	seen []string
}

func (f *fakeCorrector) Correct(_ context.Context, path string) int {
	f.seen = append(f.seen, filepath.Base(path))
	return 0
}

// fakeRecognizer copies the image bytes into the "PDF" so tests can trace
// page order through assembly.
type fakeRecognizer struct {
	failPage int
	calls    int
}

func (f *fakeRecognizer) Recognize(_ context.Context, imagePath, outBase string) (string, error) {
	f.calls++
	if f.calls == f.failPage {
		return "", errors.New("tesseract: exit status 1: Error opening data file spa.traineddata")
	}
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return "", err
	}
	out := outBase + ".pdf"
	return out, os.WriteFile(out, data, 0o644)
}

// lineAssembler joins page contents with newlines.
type lineAssembler struct {
	err error
}

func (a lineAssembler) Assemble(pages []string, out string) error {
	var lines []string
	for _, p := range pages {
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		lines = append(lines, string(data))
	}
	if err := os.WriteFile(out, []byte(strings.Join(lines, "\n")), 0o644); err != nil {
		return err
	}
	return a.err
}

// panickingAssembler writes part of the output, then panics the way a PDF
// library does on malformed input.
type panickingAssembler struct{}

func (panickingAssembler) Assemble(_ []string, out string) error {
	if err := os.WriteFile(out, []byte("%PDF-1.7 partial"), 0o644); err != nil {
		return err
	}
	panic("runtime error: index out of range [3] with length 3")
}

// counter reports n pages for sources and counts lines for hybrids.
func counter(n int) func(string) (int, error) {
	return func(path string) (int, error) {
		if !IsHybridPath(path) {
			return n, nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return 0, err
		}
		if len(data) == 0 {
			return 0, nil
		}
		return strings.Count(string(data), "\n") + 1, nil
	}
}

type harness struct {
	dir        string
	scratch    string
	src        string
	rasterizer *fakeRasterizer
	corrector  *fakeCorrector
	recognizer *fakeRecognizer
}

func newHarness(t *testing.T, pages int) *harness {
	t.Helper()
	h := &harness{
		dir:        t.TempDir(),
		scratch:    t.TempDir(),
		rasterizer: &fakeRasterizer{n: pages},
		corrector:  &fakeCorrector{},
		recognizer: &fakeRecognizer{},
	}
	h.src = filepath.Join(h.dir, "scan_photo.pdf")
	require.NoError(t, os.WriteFile(h.src, []byte("%PDF-1.4"), 0o644))
	return h
}

func (h *harness) builder(tesseract string, pages int, a Assembler) *Builder {
	return h.builderWithCounter(tesseract, a, counter(pages))
}

func (h *harness) builderWithCounter(tesseract string, a Assembler, count func(string) (int, error)) *Builder {
	return NewBuilder(tesseract, 0, h.rasterizer, h.corrector, h.recognizer, a,
		WithPageCounter(count),
		WithScratchDir(h.scratch),
	)
}

// leftovers lists files other than the source in dir and scratch.
func (h *harness) leftovers(t *testing.T) []string {
	t.Helper()
	var out []string
	for _, d := range []string{h.dir, h.scratch} {
		entries, err := os.ReadDir(d)
		require.NoError(t, err)
		for _, e := range entries {
			if filepath.Join(d, e.Name()) != h.src {
				out = append(out, e.Name())
			}
		}
	}
	return out
}

func TestBuild_PageCountAndOrder(t *testing.T) {
	for _, n := range []int{0, 1, 3, 12} {
		t.Run(fmt.Sprintf("%d pages", n), func(t *testing.T) {
			h := newHarness(t, n)
			b := h.builder("/usr/bin/tesseract", n, lineAssembler{})

			hybrid, err := b.Build(context.Background(), h.src)
			require.NoError(t, err)
			defer hybrid.Release()

			assert.Equal(t, n, hybrid.Pages)
			assert.Equal(t, h.dir, filepath.Dir(hybrid.Path))
			assert.True(t, IsHybridPath(hybrid.Path))
			assert.True(t, strings.HasPrefix(filepath.Base(hybrid.Path), "scan_photo_temp_ocr_"))
			assert.Equal(t, n > 0, h.rasterizer.called)

			data, err := os.ReadFile(hybrid.Path)
			require.NoError(t, err)
			var want []string
			for i := 1; i <= n; i++ {
				want = append(want, fmt.Sprintf("image %d @300", i))
			}
			assert.Equal(t, strings.Join(want, "\n"), string(data))
			assert.Len(t, h.corrector.seen, n)

			entries, err := os.ReadDir(h.scratch)
			require.NoError(t, err)
			assert.Empty(t, entries, "scratch pages must be removed")
		})
	}
}

func TestBuild_MissingTesseract(t *testing.T) {
	h := newHarness(t, 2)
	b := h.builder("", 2, lineAssembler{})

	_, err := b.Build(context.Background(), h.src)
	var envErr *types.EnvironmentError
	require.ErrorAs(t, err, &envErr)
	assert.Equal(t, "tesseract", envErr.Engine)
	assert.Contains(t, err.Error(), "Tesseract")
	assert.False(t, h.rasterizer.called)
	assert.Empty(t, h.leftovers(t))
}

func TestBuild_Failures(t *testing.T) {
	tests := []struct {
		name      string
		pages     int
		rastErr   error
		rendered  int
		failPage  int
		assembler Assembler
		count     func(string) (int, error)
		wantStage string
		wantPage  int
		wantEnv   bool
		wantPanic bool
	}{
		{name: "rasterizer broken", pages: 2, rastErr: &types.EnvironmentError{Engine: "pdftoppm"}, wantEnv: true},
		{name: "ocr fails on page 2", pages: 3, rendered: 3, failPage: 2, wantStage: "ocr", wantPage: 2},
		{name: "assembly fails after partial write", pages: 2, rendered: 2, assembler: lineAssembler{err: errors.New("disk full")}, wantStage: "assemble"},
		{name: "rasterizer drops a page", pages: 3, rendered: 2, wantStage: "rasterize"},
		{name: "assembler panics after partial write", pages: 2, rendered: 2, assembler: panickingAssembler{}, wantPanic: true},
		{
			name: "hybrid page count unreadable", pages: 2, rendered: 2,
			count: func(path string) (int, error) {
				if IsHybridPath(path) {
					return 0, errors.New("xref table broken")
				}
				return 2, nil
			},
			wantStage: "assemble",
		},
		{
			name: "page counter panics on hybrid", pages: 2, rendered: 2,
			count: func(path string) (int, error) {
				if IsHybridPath(path) {
					panic("nil dictionary")
				}
				return 2, nil
			},
			wantPanic: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.rendered)
			h.rasterizer.err = tt.rastErr
			h.recognizer.failPage = tt.failPage
			var a Assembler = lineAssembler{}
			if tt.assembler != nil {
				a = tt.assembler
			}
			count := tt.count
			if count == nil {
				count = counter(tt.pages)
			}
			b := h.builderWithCounter("/usr/bin/tesseract", a, count)

			if tt.wantPanic {
				assert.Panics(t, func() { _, _ = b.Build(context.Background(), h.src) })
				assert.Empty(t, h.leftovers(t), "no partial artifacts may remain")
				return
			}
			hybrid, err := b.Build(context.Background(), h.src)
			require.Error(t, err)
			assert.Nil(t, hybrid)

			if tt.wantEnv {
				var envErr *types.EnvironmentError
				assert.ErrorAs(t, err, &envErr)
			} else {
				var convErr *types.ConversionError
				require.ErrorAs(t, err, &convErr)
				assert.Equal(t, tt.wantStage, convErr.Stage)
				assert.Equal(t, tt.wantPage, convErr.Page)
			}
			assert.Empty(t, h.leftovers(t), "no partial artifacts may remain")
		})
	}
}

func TestBuild_UncountableSourceTrustsRasterizer(t *testing.T) {
	h := newHarness(t, 2)
	b := NewBuilder("/usr/bin/tesseract", 0, h.rasterizer, h.corrector, h.recognizer, lineAssembler{},
		WithPageCounter(func(path string) (int, error) {
			if IsHybridPath(path) {
				return 2, nil
			}
			return 0, errors.New("xref damaged")
		}),
		WithScratchDir(h.scratch),
	)

	hybrid, err := b.Build(context.Background(), h.src)
	require.NoError(t, err)
	defer hybrid.Release()
	assert.Equal(t, 2, hybrid.Pages)
}

func TestBuild_Cancelled(t *testing.T) {
	h := newHarness(t, 2)
	b := h.builder("/usr/bin/tesseract", 2, lineAssembler{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := b.Build(ctx, h.src)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, h.leftovers(t))
}

func TestWith_ReleasesOnEveryPath(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		h := newHarness(t, 2)
		b := h.builder("/usr/bin/tesseract", 2, lineAssembler{})
		var seen string
		err := b.With(context.Background(), h.src, func(hy *Hybrid) error {
			seen = hy.Path
			assert.FileExists(t, hy.Path)
			return nil
		})
		require.NoError(t, err)
		assert.NoFileExists(t, seen)
		assert.Empty(t, h.leftovers(t))
	})
	t.Run("consumer error", func(t *testing.T) {
		h := newHarness(t, 2)
		b := h.builder("/usr/bin/tesseract", 2, lineAssembler{})
		err := b.With(context.Background(), h.src, func(*Hybrid) error {
			return errors.New("pdf2docx crashed")
		})
		assert.EqualError(t, err, "pdf2docx crashed")
		assert.Empty(t, h.leftovers(t))
	})
	t.Run("assembler panic", func(t *testing.T) {
		h := newHarness(t, 2)
		b := h.builder("/usr/bin/tesseract", 2, panickingAssembler{})
		called := false
		assert.Panics(t, func() {
			_ = b.With(context.Background(), h.src, func(*Hybrid) error {
				called = true
				return nil
			})
		})
		assert.False(t, called)
		assert.Empty(t, h.leftovers(t))
	})
	t.Run("consumer panic", func(t *testing.T) {
		h := newHarness(t, 2)
		b := h.builder("/usr/bin/tesseract", 2, lineAssembler{})
		assert.Panics(t, func() {
			_ = b.With(context.Background(), h.src, func(*Hybrid) error {
				panic("boom")
			})
		})
		assert.Empty(t, h.leftovers(t))
	})
}

func TestHybridPath(t *testing.T) {
	a := HybridPath("/data/in/Scan 01.pdf")
	b := HybridPath("/data/in/Scan 01.pdf")

	assert.NotEqual(t, a, b)
	assert.Equal(t, "/data/in", filepath.Dir(a))
	assert.True(t, strings.HasPrefix(filepath.Base(a), "Scan 01_temp_ocr_"))
	assert.True(t, strings.HasSuffix(a, ".pdf"))
	assert.True(t, IsHybridPath(a))
	assert.False(t, IsHybridPath("/data/in/Scan 01.pdf"))
}

func TestHybridRelease_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x_temp_ocr_1234abcd.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF"), 0o644))
	h := &Hybrid{Path: path}

	require.NoError(t, h.Release())
	require.NoError(t, h.Release())
	assert.NoFileExists(t, path)
}
