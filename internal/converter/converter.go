// Package converter dispatches input sources to format-specific
// pipelines and drives batch conversion. It owns the pipeline cache:
// pipelines are expensive to construct and are shared across every
// document with the same options.
package converter

import (
	"io"
	"iter"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/MeKo-Tech/docpipe/internal/backend"
	"github.com/MeKo-Tech/docpipe/internal/document"
	"github.com/MeKo-Tech/docpipe/internal/format"
	"github.com/MeKo-Tech/docpipe/internal/pipeline"
)

// Config selects which formats a converter accepts and how each is
// processed.
type Config struct {
	// AllowedFormats restricts accepted input formats; empty means all.
	AllowedFormats []format.Format

	// FormatOptions overrides the built-in processing route per format.
	FormatOptions map[format.Format]FormatOption
}

// DefaultConfig accepts every known format with default routes.
func DefaultConfig() Config {
	return Config{AllowedFormats: format.All()}
}

// ConvertOptions tunes a single Convert / ConvertAll call.
type ConvertOptions struct {
	// RaiseOnError selects strict semantics: the first failed document
	// aborts the stream with an error. When false every recognized input
	// yields exactly one result whose status reflects its outcome.
	RaiseOnError bool

	Limits document.Limits

	// BatchSize documents are drawn from the source stream at a time;
	// BatchConcurrency > 1 converts a batch on a worker pool. Results
	// keep submission order either way.
	BatchSize        int
	BatchConcurrency int
}

// DefaultConvertOptions is strict with unbounded limits.
func DefaultConvertOptions() ConvertOptions {
	return ConvertOptions{
		RaiseOnError:     true,
		Limits:           document.DefaultLimits(),
		BatchSize:        2,
		BatchConcurrency: 2,
	}
}

// Converter routes sources to pipelines. Safe for concurrent use; the
// pipeline cache is the only shared mutable state.
type Converter struct {
	allowed map[format.Format]bool
	options map[format.Format]FormatOption

	mu        sync.Mutex
	pipelines map[pipelineKey]pipeline.Pipeline
}

// New creates a converter from the config.
func New(cfg Config) *Converter {
	allowed := make(map[format.Format]bool)
	formats := cfg.AllowedFormats
	if len(formats) == 0 {
		formats = format.All()
	}
	for _, f := range formats {
		allowed[f] = true
	}
	return &Converter{
		allowed:   allowed,
		options:   cfg.FormatOptions,
		pipelines: make(map[pipelineKey]pipeline.Pipeline),
	}
}

// Close releases every cached pipeline.
func (c *Converter) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var firstErr error
	for key, p := range c.pipelines {
		if err := p.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(c.pipelines, key)
	}
	return firstErr
}

// resolveOption returns the processing route for a format: the caller
// override when present, the built-in default otherwise.
func (c *Converter) resolveOption(f format.Format) (FormatOption, error) {
	if opt, ok := c.options[f]; ok {
		return opt, nil
	}
	return defaultOption(f)
}

// InitializePipeline constructs (and caches) the pipeline for a format
// ahead of the first document, so model loading cost is paid at startup.
// Unlike lenient conversion, a construction failure always propagates.
func (c *Converter) InitializePipeline(f format.Format) error {
	opt, err := c.resolveOption(f)
	if err != nil {
		return err
	}
	_, err = c.getPipeline(opt)
	return err
}

// Convert converts a single source with the given options.
func (c *Converter) Convert(src backend.Source, opts ConvertOptions) (*document.ConversionResult, error) {
	single := func(yield func(backend.Source) bool) { yield(src) }
	for res, err := range c.ConvertAll(single, opts) {
		return res, err
	}
	return nil, document.NewConversionError(src.Name, "no result produced")
}

// ConvertAll lazily converts a stream of sources. Results are yielded
// in submission order. In strict mode the first failed document (or an
// entirely empty output) terminates the sequence with an error; in
// lenient mode an empty input stream simply yields nothing.
func (c *Converter) ConvertAll(sources iter.Seq[backend.Source], opts ConvertOptions) iter.Seq2[*document.ConversionResult, error] {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 1
	}
	return func(yield func(*document.ConversionResult, error) bool) {
		produced := 0
		for batch := range chunkify(sources, opts.BatchSize) {
			start := time.Now()
			for _, out := range c.convertBatch(batch, opts) {
				if out.err != nil {
					yield(out.res, out.err)
					return
				}
				produced++
				if !yield(out.res, nil) {
					return
				}
			}
			slog.Info("batch converted",
				"documents", len(batch), "elapsed", time.Since(start).String())
		}
		if produced == 0 && opts.RaiseOnError {
			yield(nil, document.NewConversionError("",
				"no input documents with a recognizable and allowed format"))
		}
	}
}

// processSource converts one source end to end: format detection,
// allow-list check, backend construction, pipeline dispatch.
func (c *Converter) processSource(src backend.Source, opts ConvertOptions) (*document.ConversionResult, error) {
	in := c.resolveInput(src, opts.Limits)

	if in.Format == format.Unknown || !c.allowed[in.Format] {
		if opts.RaiseOnError {
			return nil, document.NewConversionError(src.Name,
				"input format %s is not in the allowed set", in.Format)
		}
		res := document.NewConversionResult(in)
		res.Status = document.StatusSkipped
		res.AddError(document.ComponentUserInput, "converter",
			"input format %s is not in the allowed set", in.Format)
		slog.Info("input skipped", "file", src.Name, "format", in.Format.String())
		return res, nil
	}

	opt, err := c.resolveOption(in.Format)
	if err == nil {
		var bk document.Backend
		bk, err = opt.Backend(src)
		if err == nil {
			in.Backend = bk
			in.Valid = bk.IsValid() && in.Valid
		}
	}
	var pipe pipeline.Pipeline
	if err == nil {
		pipe, err = c.getPipeline(opt)
	}
	if err != nil {
		if opts.RaiseOnError {
			return nil, document.NewConversionError(src.Name, "%v", err)
		}
		res := document.NewConversionResult(in)
		res.Status = document.StatusFailure
		res.AddError(document.ComponentPipeline, "converter", "%v", err)
		return res, nil
	}
	defer in.Close()

	return pipe.Execute(in, opts.RaiseOnError)
}

// resolveInput detects the source format and records its size against
// the configured limits. Backend construction happens later, once the
// processing route is known.
func (c *Converter) resolveInput(src backend.Source, limits document.Limits) *document.InputDocument {
	in := &document.InputDocument{
		File:   src.Name,
		Limits: limits,
		Valid:  true,
	}

	var head []byte
	if src.Data != nil {
		in.FileSize = int64(len(src.Data))
		if len(src.Data) > 512 {
			head = src.Data[:512]
		} else {
			head = src.Data
		}
	} else if f, err := os.Open(src.Path); err == nil {
		if st, err := f.Stat(); err == nil {
			in.FileSize = st.Size()
		}
		buf := make([]byte, 512)
		n, _ := io.ReadFull(f, buf)
		head = buf[:n]
		_ = f.Close()
	}

	in.Format = format.Detect(src.Name, head)
	if limits.MaxFileSize > 0 && in.FileSize > limits.MaxFileSize {
		in.Valid = false
	}
	return in
}
