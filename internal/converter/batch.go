package converter

import (
	"iter"
	"log/slog"
	"sync"
	"time"

	"github.com/MeKo-Tech/docpipe/internal/backend"
	"github.com/MeKo-Tech/docpipe/internal/document"
)

// chunkify slices a lazy source stream into batches of at most n.
func chunkify(sources iter.Seq[backend.Source], n int) iter.Seq[[]backend.Source] {
	return func(yield func([]backend.Source) bool) {
		batch := make([]backend.Source, 0, n)
		for src := range sources {
			batch = append(batch, src)
			if len(batch) == n {
				if !yield(batch) {
					return
				}
				batch = make([]backend.Source, 0, n)
			}
		}
		if len(batch) > 0 {
			yield(batch)
		}
	}
}

// batchOutput pairs one source's result with its strict-mode error.
type batchOutput struct {
	res *document.ConversionResult
	err error
}

// sourceJob carries one source through the batch worker pool.
type sourceJob struct {
	index int
	src   backend.Source
}

// convertBatch converts one batch, in parallel when configured, and
// returns outputs in submission order.
func (c *Converter) convertBatch(batch []backend.Source, opts ConvertOptions) []batchOutput {
	if opts.BatchConcurrency <= 1 || len(batch) <= 1 {
		return c.convertSequential(batch, opts)
	}

	workers := opts.BatchConcurrency
	if workers > len(batch) {
		workers = len(batch)
	}
	jobs := make(chan sourceJob, len(batch))
	outputs := make([]batchOutput, len(batch))

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				res, err := c.processSource(job.src, opts)
				outputs[job.index] = batchOutput{res: res, err: err}
			}
		}()
	}
	for i, src := range batch {
		jobs <- sourceJob{index: i, src: src}
	}
	close(jobs)
	wg.Wait()
	return outputs
}

func (c *Converter) convertSequential(batch []backend.Source, opts ConvertOptions) []batchOutput {
	outputs := make([]batchOutput, len(batch))
	for i, src := range batch {
		start := time.Now()
		res, err := c.processSource(src, opts)
		outputs[i] = batchOutput{res: res, err: err}
		slog.Info("document converted",
			"file", src.Name, "elapsed", time.Since(start).String())
	}
	return outputs
}
