// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
)

// ErrInputNotFound is returned when the source document does not exist.
var ErrInputNotFound = errors.New("input file not found")

// EnvironmentError reports a missing or misconfigured external engine. It is
// fatal for the request and carries a remediation hint for the user.
type EnvironmentError struct {
	Engine string
	Hint   string
	Err    error
}

func (e *EnvironmentError) Error() string {
	msg := fmt.Sprintf("%s unavailable", e.Engine)
	if e.Hint != "" {
		msg = e.Hint
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *EnvironmentError) Unwrap() error { return e.Err }

// ConversionError reports a failure of the structural converter or of the
// OCR engine on a specific page. Page is 0 when not page specific.
type ConversionError struct {
	Stage string
	Page  int
	Err   error
}

func (e *ConversionError) Error() string {
	if e.Page > 0 {
		return fmt.Sprintf("%s failed on page %d: %v", e.Stage, e.Page, e.Err)
	}
	return fmt.Sprintf("%s failed: %v", e.Stage, e.Err)
}

func (e *ConversionError) Unwrap() error { return e.Err }
