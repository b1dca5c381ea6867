// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/pdiddy/docconvert/pkg/types"
)

// DocumentConverter converts one document and reports the outcome.
// *Dispatcher implements it; so does the DOCX to PDF path via ConverterFunc.
type DocumentConverter interface {
	Convert(ctx context.Context, in, out string) types.ConversionOutcome
}

// ConverterFunc adapts a function to DocumentConverter.
type ConverterFunc func(ctx context.Context, in, out string) types.ConversionOutcome

func (f ConverterFunc) Convert(ctx context.Context, in, out string) types.ConversionOutcome {
	return f(ctx, in, out)
}

// Job is one input/output pair of a batch.
type Job struct {
	Input  string
	Output string
}

// JobResult pairs a job with its outcome. Skipped jobs carry no outcome.
type JobResult struct {
	Job     Job
	Outcome types.ConversionOutcome
	Skipped bool
}

// BatchOptions controls ConvertBatch.
type BatchOptions struct {
	// Workers bounds the number of documents converted at once. Values
	// below 1 mean 1.
	Workers int

	// Overwrite converts even when the output already exists.
	Overwrite bool

	// Timeout is the per-document deadline; zero means none.
	Timeout time.Duration

	// OnOutcome, when set, is called once per converted document. Calls are
	// serialized.
	OnOutcome func(types.ConversionOutcome)
}

// BatchResult holds the outcome of a batch conversion run.
type BatchResult struct {
	Converted int
	Skipped   int
	Failed    int

	// Results is in job order.
	Results []JobResult
}

// Total returns the total number of documents processed.
func (r BatchResult) Total() int {
	return r.Converted + r.Skipped + r.Failed
}

// HasFailures reports whether any document failed conversion.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// ConvertBatch runs jobs through c, at most opts.Workers at a time, printing
// per-file status to w and returning a summary. A failed document never
// stops the others.
func ConvertBatch(ctx context.Context, c DocumentConverter, jobs []Job, opts BatchOptions, w io.Writer) BatchResult {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	result := BatchResult{Results: make([]JobResult, len(jobs))}

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(workers)

	for i, job := range jobs {
		result.Results[i].Job = job
		if !opts.Overwrite {
			if _, err := os.Stat(job.Output); err == nil {
				// Workers started for earlier jobs may be reporting already.
				mu.Lock()
				result.Results[i].Skipped = true
				result.Skipped++
				fmt.Fprintf(w, "skipped: %s (already exists)\n", job.Output)
				mu.Unlock()
				continue
			}
		}
		g.Go(func() error {
			jctx := ctx
			if opts.Timeout > 0 {
				var cancel context.CancelFunc
				jctx, cancel = context.WithTimeout(ctx, opts.Timeout)
				defer cancel()
			}
			o := c.Convert(jctx, job.Input, job.Output)

			mu.Lock()
			defer mu.Unlock()
			result.Results[i].Outcome = o
			if o.OK() {
				result.Converted++
				fmt.Fprintf(w, "converted: %s -> %s (%s)\n", job.Input, job.Output, o.Method)
			} else {
				result.Failed++
				fmt.Fprintf(w, "failed:  %s (%s)\n", job.Input, o.Message)
			}
			if opts.OnOutcome != nil {
				opts.OnOutcome(o)
			}
			return nil
		})
	}
	_ = g.Wait()

	fmt.Fprintf(w, "\nBatch summary: %d converted, %d skipped, %d failed (total: %d)\n",
		result.Converted, result.Skipped, result.Failed, result.Total())
	return result
}
