// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// EngineConfig holds explicit locations for the external engines. An empty
// value means "discover it": well-known install locations first, then PATH.
type EngineConfig struct {
	// Tesseract is the OCR engine used for orientation detection and the
	// sandwich text layer.
	Tesseract string `json:"tesseract" yaml:"tesseract"`

	// Pdftoppm rasterizes PDF pages (poppler).
	Pdftoppm string `json:"pdftoppm" yaml:"pdftoppm"`

	// Pdftotext extracts plain text for triage sampling (poppler).
	Pdftotext string `json:"pdftotext" yaml:"pdftotext"`

	// Pdf2docx is the structural PDF to DOCX converter CLI.
	Pdf2docx string `json:"pdf2docx" yaml:"pdf2docx"`

	// Soffice is the LibreOffice binary used for DOCX to PDF and the
	// libreoffice conversion backend.
	Soffice string `json:"soffice" yaml:"soffice"`

	// TessdataDir overrides the tesseract language data directory.
	TessdataDir string `json:"tessdata_dir,omitempty" yaml:"tessdata_dir,omitempty"`
}

// Engines is the result of engine discovery: absolute paths to every engine
// that could be resolved, empty strings for the ones that could not. It is
// resolved once at startup and passed to the components that need it.
type Engines struct {
	Tesseract   string `json:"tesseract" yaml:"tesseract"`
	Pdftoppm    string `json:"pdftoppm" yaml:"pdftoppm"`
	Pdftotext   string `json:"pdftotext" yaml:"pdftotext"`
	Pdf2docx    string `json:"pdf2docx" yaml:"pdf2docx"`
	Soffice     string `json:"soffice" yaml:"soffice"`
	TessdataDir string `json:"tessdata_dir,omitempty" yaml:"tessdata_dir,omitempty"`
}

// OCRAvailable reports whether scanned documents can be processed.
func (e Engines) OCRAvailable() bool {
	return e.Tesseract != "" && e.Pdftoppm != ""
}

// OCRConfig holds settings for the sandwich builder.
type OCRConfig struct {
	// Languages are recognized simultaneously (joined with "+"), default spa+eng.
	Languages []string `json:"languages" yaml:"languages"`

	// DPI is the rasterization resolution (default 300).
	DPI int `json:"dpi" yaml:"dpi"`
}

// ConversionBackend identifies the structural PDF to DOCX converter.
type ConversionBackend string

const (
	BackendPdf2docx    ConversionBackend = "pdf2docx"
	BackendContainer   ConversionBackend = "container"
	BackendLibreOffice ConversionBackend = "libreoffice"
)

// Strategy selects how the dispatcher picks a conversion path.
type Strategy string

const (
	// StrategyAuto classifies the document and routes accordingly.
	StrategyAuto Strategy = "auto"
	// StrategyNative skips triage and converts the input directly.
	StrategyNative Strategy = "native"
	// StrategyOCR skips triage and always builds the OCR sandwich.
	StrategyOCR Strategy = "ocr"
)

// ConversionConfig holds settings for the conversion stage.
type ConversionConfig struct {
	// Backend selects the structural converter: pdf2docx, container, or libreoffice.
	Backend ConversionBackend `json:"backend" yaml:"backend"`

	// ContainerImage is the image used by the container backend.
	ContainerImage string `json:"container_image" yaml:"container_image"`

	// Strategy is auto, native, or ocr.
	Strategy Strategy `json:"strategy" yaml:"strategy"`

	// Workers bounds the number of documents converted concurrently (default 1).
	Workers int `json:"workers" yaml:"workers"`

	// OutDir receives outputs; empty means next to each input.
	OutDir string `json:"out_dir" yaml:"out_dir"`

	// Timeout is the per-document deadline; zero means none.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// JournalConfig holds settings for the conversion history database.
type JournalConfig struct {
	// Path is the SQLite database file (default .docconvert/history.db).
	Path string `json:"path" yaml:"path"`

	// Disabled turns off recording.
	Disabled bool `json:"disabled" yaml:"disabled"`
}

// Config groups all configuration sections.
type Config struct {
	Engines    EngineConfig     `json:"engines" yaml:"engines"`
	OCR        OCRConfig        `json:"ocr" yaml:"ocr"`
	Conversion ConversionConfig `json:"conversion" yaml:"conversion"`
	Journal    JournalConfig    `json:"journal" yaml:"journal"`
}
