// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package orient straightens rasterized pages before OCR.
//
// Detection reports the clockwise rotation that makes a page upright. The
// imaging rotation primitives turn counter-clockwise, so a reported 90 is
// applied as Rotate270 and a reported 270 as Rotate90.
package orient

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"regexp"
	"strconv"

	"github.com/disintegration/imaging"

	"github.com/pdiddy/docconvert/internal/engine"
)

// Detector estimates the clockwise rotation, in degrees, needed to make the
// page image at imagePath upright.
type Detector interface {
	DetectOrientation(ctx context.Context, imagePath string) (int, error)
}

// Rotate turns img clockwise by angle degrees. Angles other than 90, 180
// and 270 return img unchanged.
func Rotate(img image.Image, angle int) image.Image {
	switch angle {
	case 90:
		return imaging.Rotate270(img)
	case 180:
		return imaging.Rotate180(img)
	case 270:
		return imaging.Rotate90(img)
	default:
		return img
	}
}

// Corrector applies detected rotations to page image files in place.
type Corrector struct {
	detector Detector
	logger   *slog.Logger
}

// NewCorrector creates a Corrector.
func NewCorrector(d Detector, logger *slog.Logger) *Corrector {
	if logger == nil {
		logger = slog.Default()
	}
	return &Corrector{detector: d, logger: logger}
}

// Correct straightens the image at path and returns the clockwise angle
// applied. It is best effort: blank or noisy pages make detection fail, and
// any failure leaves the file untouched and returns 0.
func (c *Corrector) Correct(ctx context.Context, path string) int {
	angle, err := c.detector.DetectOrientation(ctx, path)
	if err != nil {
		c.logger.Debug("orientation detection failed, leaving page as is", "path", path, "error", err)
		return 0
	}
	if angle == 0 {
		return 0
	}

	img, err := imaging.Open(path)
	if err != nil {
		c.logger.Warn("cannot decode page image for rotation", "path", path, "error", err)
		return 0
	}
	if err := imaging.Save(Rotate(img, angle), path); err != nil {
		c.logger.Warn("cannot write rotated page image", "path", path, "error", err)
		return 0
	}
	c.logger.Debug("page rotated", "path", path, "angle", angle)
	return angle
}

var rotateLine = regexp.MustCompile(`(?m)^Rotate:\s*(\d+)`)

// ParseOSD extracts the Rotate value from tesseract OSD output.
func ParseOSD(out string) (int, error) {
	m := rotateLine.FindStringSubmatch(out)
	if m == nil {
		return 0, fmt.Errorf("no Rotate line in OSD output")
	}
	angle, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, fmt.Errorf("parsing rotate angle %q: %w", m[1], err)
	}
	switch angle {
	case 0, 90, 180, 270:
		return angle, nil
	}
	return 0, fmt.Errorf("unexpected rotate angle %d", angle)
}

// TesseractDetector runs tesseract orientation and script detection.
type TesseractDetector struct {
	bin         string
	tessdataDir string
	runner      engine.Runner
}

// NewTesseractDetector creates a detector using the tesseract binary at bin.
func NewTesseractDetector(bin, tessdataDir string, runner engine.Runner) *TesseractDetector {
	return &TesseractDetector{bin: bin, tessdataDir: tessdataDir, runner: runner}
}

// DetectOrientation implements Detector.
func (d *TesseractDetector) DetectOrientation(ctx context.Context, imagePath string) (int, error) {
	// tesseract <img> stdout --psm 0
	args := []string{imagePath, "stdout", "--psm", "0"}
	if d.tessdataDir != "" {
		args = append(args, "--tessdata-dir", d.tessdataDir)
	}
	out, errb, err := d.runner.Run(ctx, d.bin, args...)
	if err != nil {
		return 0, fmt.Errorf("tesseract osd: %w: %s", err, engine.StderrText(errb))
	}
	return ParseOSD(string(out))
}
