// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package triage decides whether a PDF is digital (selectable text or
// vector drawings) or scanned (flat raster) from a bounded sample of its
// leading pages.
package triage

import (
	"context"
	"log/slog"

	"github.com/pdiddy/docconvert/pkg/types"
)

const (
	// SampleWindow is the maximum number of leading pages inspected.
	SampleWindow = 3
	// TextThreshold is the accumulated character count above which a
	// document is digital.
	TextThreshold = 50
	// DrawingThreshold is the accumulated vector drawing count above which
	// a document with little text is digital (exported plans, charts).
	DrawingThreshold = 5
)

// Classifier performs triage on PDF documents.
type Classifier struct {
	sampler Sampler
	logger  *slog.Logger
}

// NewClassifier creates a Classifier backed by sampler.
func NewClassifier(sampler Sampler, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{sampler: sampler, logger: logger}
}

// Classify returns ClassDigital or ClassScanned. A document that cannot be
// sampled is classified as scanned: the OCR path is the more recoverable
// one, and the converter surfaces the real error if the file is unusable.
func (c *Classifier) Classify(ctx context.Context, pdfPath string) (class types.Classification) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("triage panicked, assuming scanned", "path", pdfPath, "panic", r)
			class = types.ClassScanned
		}
	}()

	samples, err := c.sampler.Sample(ctx, pdfPath, SampleWindow)
	if err != nil {
		c.logger.Warn("triage failed, assuming scanned", "path", pdfPath, "error", err)
		return types.ClassScanned
	}
	class = Decide(samples)
	c.logger.Debug("triage", "path", pdfPath, "pages_sampled", len(samples), "class", class)
	return class
}

// Decide applies the triage rules to page samples. Only the first
// SampleWindow samples are considered.
func Decide(samples []types.PageSample) types.Classification {
	if len(samples) > SampleWindow {
		samples = samples[:SampleWindow]
	}
	var text, drawings int
	for _, s := range samples {
		text += s.TextChars
		drawings += s.Drawings
	}
	if text > TextThreshold {
		return types.ClassDigital
	}
	if drawings > DrawingThreshold {
		return types.ClassDigital
	}
	return types.ClassScanned
}
