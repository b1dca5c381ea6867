// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package orient

import (
	"context"
	"errors"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	red  = color.NRGBA{R: 255, A: 255}
	blue = color.NRGBA{B: 255, A: 255}
)

// strip returns a 2x1 image: red on the left, blue on the right.
func strip() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, red)
	img.SetNRGBA(1, 0, blue)
	return img
}

func TestRotate(t *testing.T) {
	src := strip()

	t.Run("90 equals 270 counter-clockwise", func(t *testing.T) {
		got := Rotate(src, 90)
		assert.Equal(t, imaging.Rotate270(src), got)
		// Clockwise quarter turn: the left pixel ends on top.
		assert.Equal(t, image.Rect(0, 0, 1, 2), got.Bounds())
		assert.Equal(t, red, got.At(0, 0))
		assert.Equal(t, blue, got.At(0, 1))
	})
	t.Run("180", func(t *testing.T) {
		got := Rotate(src, 180)
		assert.Equal(t, imaging.Rotate180(src), got)
		assert.Equal(t, blue, got.At(0, 0))
		assert.Equal(t, red, got.At(1, 0))
	})
	t.Run("270 equals 90 counter-clockwise", func(t *testing.T) {
		got := Rotate(src, 270)
		assert.Equal(t, imaging.Rotate90(src), got)
		assert.Equal(t, blue, got.At(0, 0))
		assert.Equal(t, red, got.At(0, 1))
	})
	t.Run("0 and unknown angles are identity", func(t *testing.T) {
		assert.Same(t, src, Rotate(src, 0))
		assert.Same(t, src, Rotate(src, 45))
	})
}

func TestParseOSD(t *testing.T) {
	const sample = "Page number: 0\nOrientation in degrees: 270\nRotate: 90\nOrientation confidence: 8.62\nScript: Latin\nScript confidence: 2.16\n"
	angle, err := ParseOSD(sample)
	require.NoError(t, err)
	assert.Equal(t, 90, angle)

	_, err = ParseOSD("Too few characters. Skipping this page\n")
	assert.Error(t, err)

	_, err = ParseOSD("Rotate: 45\n")
	assert.Error(t, err)
}

// fakeDetector returns a fixed angle or error.
type fakeDetector struct {
	angle int
	err   error
}

func (f fakeDetector) DetectOrientation(context.Context, string) (int, error) {
	return f.angle, f.err
}

func writePNG(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "page-1.png")
	require.NoError(t, imaging.Save(strip(), path))
	return path
}

func TestCorrector(t *testing.T) {
	tests := []struct {
		name       string
		detector   fakeDetector
		wantAngle  int
		wantBounds image.Rectangle
	}{
		{name: "upright", detector: fakeDetector{angle: 0}, wantAngle: 0, wantBounds: image.Rect(0, 0, 2, 1)},
		{name: "quarter turn", detector: fakeDetector{angle: 90}, wantAngle: 90, wantBounds: image.Rect(0, 0, 1, 2)},
		{name: "upside down", detector: fakeDetector{angle: 180}, wantAngle: 180, wantBounds: image.Rect(0, 0, 2, 1)},
		{name: "detection fails", detector: fakeDetector{err: errors.New("too few characters")}, wantAngle: 0, wantBounds: image.Rect(0, 0, 2, 1)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writePNG(t)
			c := NewCorrector(tt.detector, nil)

			assert.Equal(t, tt.wantAngle, c.Correct(context.Background(), path))

			img, err := imaging.Open(path)
			require.NoError(t, err)
			assert.Equal(t, tt.wantBounds, img.Bounds())
		})
	}
}

func TestCorrector_UndecodableImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "page-1.png")
	require.NoError(t, os.WriteFile(path, []byte("not a png"), 0o644))

	c := NewCorrector(fakeDetector{angle: 90}, nil)
	assert.Equal(t, 0, c.Correct(context.Background(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "not a png", string(data))
}

// fakeRunner returns canned tesseract output.
type fakeRunner struct {
	out  string
	err  error
	args []string
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	f.args = append([]string{name}, args...)
	return []byte(f.out), []byte("Warning: Invalid resolution 0 dpi"), f.err
}

func TestTesseractDetector(t *testing.T) {
	r := &fakeRunner{out: "Page number: 0\nRotate: 270\n"}
	d := NewTesseractDetector("/usr/bin/tesseract", "/share/tessdata", r)

	angle, err := d.DetectOrientation(context.Background(), "/tmp/p-1.png")
	require.NoError(t, err)
	assert.Equal(t, 270, angle)
	assert.Equal(t, []string{"/usr/bin/tesseract", "/tmp/p-1.png", "stdout", "--psm", "0", "--tessdata-dir", "/share/tessdata"}, r.args)

	r.err = errors.New("exit status 1")
	_, err = d.DetectOrientation(context.Background(), "/tmp/p-1.png")
	assert.ErrorContains(t, err, "tesseract osd")
}
