// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// Classification is the triage verdict for a PDF.
type Classification string

const (
	// ClassDigital marks a PDF with selectable text or vector drawings.
	ClassDigital Classification = "digital"
	// ClassScanned marks a PDF that is effectively a flat raster image.
	ClassScanned Classification = "scanned"
)

// PageSample holds the triage measurements for one sampled page.
type PageSample struct {
	// Page is the 1-based page number.
	Page int `json:"page" yaml:"page"`

	// TextChars is the number of characters of trimmed extractable text.
	TextChars int `json:"text_chars" yaml:"text_chars"`

	// Drawings is the number of vector path-painting operations.
	Drawings int `json:"drawings" yaml:"drawings"`
}

// OutcomeStatus is the top-level result of a conversion request.
type OutcomeStatus string

const (
	StatusOK    OutcomeStatus = "ok"
	StatusError OutcomeStatus = "error"
)

// Method records which conversion path produced the outcome.
type Method string

const (
	MethodNative      Method = "native"
	MethodOCRSandwich Method = "ocr_sandwich"
	MethodOffice      Method = "office"
	MethodFailed      Method = "failed"
)

// ConversionOutcome is produced exactly once per conversion request. Status,
// Method and Message are the contract; the remaining fields are
// informational.
type ConversionOutcome struct {
	Status  OutcomeStatus `json:"status" yaml:"status"`
	Method  Method        `json:"method" yaml:"method"`
	Message string        `json:"message" yaml:"message"`

	Input          string         `json:"input" yaml:"input"`
	Output         string         `json:"output,omitempty" yaml:"output,omitempty"`
	Classification Classification `json:"classification,omitempty" yaml:"classification,omitempty"`
	Duration       time.Duration  `json:"duration" yaml:"duration"`
}

// OK reports whether the conversion succeeded.
func (o ConversionOutcome) OK() bool {
	return o.Status == StatusOK
}
