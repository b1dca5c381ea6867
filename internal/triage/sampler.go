// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package triage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	pdftypes "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"

	"github.com/pdiddy/docconvert/internal/engine"
	"github.com/pdiddy/docconvert/pkg/types"
)

// Sampler measures the leading pages of a PDF.
type Sampler interface {
	// Sample returns measurements for the first min(maxPages, pageCount)
	// pages, in page order.
	Sample(ctx context.Context, pdfPath string, maxPages int) ([]types.PageSample, error)
}

// PDFSampler reads page structure with pdfcpu and page text with
// pdftotext. Without a pdftotext engine it falls back to the byte length of
// strings shown by text operators in the content stream.
type PDFSampler struct {
	pdftotext string
	runner    engine.Runner
	logger    *slog.Logger
}

// NewPDFSampler creates a sampler. pdftotext may be empty.
func NewPDFSampler(pdftotext string, runner engine.Runner, logger *slog.Logger) *PDFSampler {
	if logger == nil {
		logger = slog.Default()
	}
	return &PDFSampler{pdftotext: pdftotext, runner: runner, logger: logger}
}

// Sample implements Sampler.
func (s *PDFSampler) Sample(ctx context.Context, pdfPath string, maxPages int) ([]types.PageSample, error) {
	pdfCtx, err := api.ReadContextFile(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", pdfPath, err)
	}

	n := min(maxPages, pdfCtx.PageCount)
	samples := make([]types.PageSample, 0, n)
	for page := 1; page <= n; page++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		stats, err := pageStats(pdfCtx, page)
		if err != nil {
			return nil, fmt.Errorf("reading content of page %d: %w", page, err)
		}
		sample := types.PageSample{Page: page, Drawings: stats.Drawings, TextChars: stats.TextBytes}
		if s.pdftotext != "" && s.runner != nil {
			chars, err := s.pageText(ctx, pdfPath, page)
			if err != nil {
				return nil, err
			}
			sample.TextChars = chars
		}
		samples = append(samples, sample)
	}
	return samples, nil
}

// maxFormDepth bounds Form XObject nesting followed by pageStats.
const maxFormDepth = 8

// pageStats scans the page content stream and every Form XObject it paints,
// recursively, so drawings wrapped in forms count like page-level ones.
func pageStats(pdfCtx *model.Context, page int) (ContentStats, error) {
	r, err := pdfcpu.ExtractPageContent(pdfCtx, page)
	if err != nil {
		return ContentStats{}, err
	}
	if r == nil {
		// Page without a content stream.
		return ContentStats{}, nil
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return ContentStats{}, err
	}
	stats := ScanContent(data)
	if len(stats.XObjects) == 0 {
		return stats, nil
	}

	res, err := pageResources(pdfCtx, page)
	if err != nil {
		return ContentStats{}, err
	}
	f := formScanner{xref: pdfCtx.XRefTable, active: map[int]bool{}}
	total := ContentStats{Drawings: stats.Drawings, TextBytes: stats.TextBytes}
	total.Add(f.scan(res, stats.XObjects, 1))
	return total, nil
}

// pageResources returns the resource dictionary of a page, falling back to
// the resources inherited from the page tree.
func pageResources(pdfCtx *model.Context, page int) (pdftypes.Dict, error) {
	d, _, inh, err := pdfCtx.PageDict(page, false)
	if err != nil {
		return nil, err
	}
	if obj, ok := d.Find("Resources"); ok {
		res, err := pdfCtx.XRefTable.DereferenceDict(obj)
		if err != nil {
			return nil, err
		}
		if res != nil {
			return res, nil
		}
	}
	if inh != nil {
		return inh.Resources, nil
	}
	return nil, nil
}

// formScanner follows Do operators into Form XObjects. Image XObjects
// carry no vector content and are skipped. active holds the forms on the
// current nesting path, so a form that paints itself is not followed again.
type formScanner struct {
	xref   *model.XRefTable
	active map[int]bool
}

func (f *formScanner) scan(res pdftypes.Dict, names []string, depth int) ContentStats {
	var total ContentStats
	if res == nil || depth > maxFormDepth {
		return total
	}
	obj, ok := res.Find("XObject")
	if !ok {
		return total
	}
	xobjects, err := f.xref.DereferenceDict(obj)
	if err != nil || xobjects == nil {
		return total
	}

	for _, name := range names {
		ref, ok := xobjects[name].(pdftypes.IndirectRef)
		if !ok {
			continue
		}
		nr := ref.ObjectNumber.Value()
		if f.active[nr] {
			continue
		}

		sd, _, err := f.xref.DereferenceStreamDict(ref)
		if err != nil || sd == nil {
			continue
		}
		if st := sd.Dict.Subtype(); st == nil || *st != "Form" {
			continue
		}
		if err := sd.Decode(); err != nil {
			continue
		}
		stats := ScanContent(sd.Content)
		total.Add(stats)

		formRes := res
		if o, ok := sd.Dict.Find("Resources"); ok {
			if d, err := f.xref.DereferenceDict(o); err == nil && d != nil {
				formRes = d
			}
		}
		f.active[nr] = true
		total.Add(f.scan(formRes, stats.XObjects, depth+1))
		delete(f.active, nr)
	}
	return total
}

// pageText returns the character count of the trimmed text of one page.
func (s *PDFSampler) pageText(ctx context.Context, pdfPath string, page int) (int, error) {
	p := strconv.Itoa(page)
	out, errb, err := s.runner.Run(ctx, s.pdftotext, "-f", p, "-l", p, "-enc", "UTF-8", pdfPath, "-")
	if err != nil {
		return 0, fmt.Errorf("pdftotext page %d: %w: %s", page, err, engine.StderrText(errb))
	}
	return utf8.RuneCountInString(strings.TrimSpace(string(out))), nil
}
