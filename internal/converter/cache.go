package converter

import (
	"encoding/json"
	"fmt"

	"github.com/MeKo-Tech/docpipe/internal/pipeline"
	"github.com/cespare/xxhash/v2"
)

// pipelineKey identifies one cached pipeline: the implementation name
// plus a hash over the canonical JSON serialization of its options.
// Equal option values always produce equal keys.
type pipelineKey struct {
	name string
	hash uint64
}

func keyFor(name string, opts pipeline.Options) (pipelineKey, error) {
	raw, err := json.Marshal(opts)
	if err != nil {
		return pipelineKey{}, fmt.Errorf("serialize %s options: %w", name, err)
	}
	return pipelineKey{name: name, hash: xxhash.Sum64(raw)}, nil
}

// getPipeline returns the cached pipeline for the option, constructing
// it under the cache lock so concurrent workers cause at most one
// construction per key. A construction failure is returned and caches
// nothing, so a later call may retry.
func (c *Converter) getPipeline(opt FormatOption) (pipeline.Pipeline, error) {
	key, err := keyFor(opt.PipelineName, opt.Options)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.pipelines[key]; ok {
		return p, nil
	}
	p, err := opt.New(opt.Options)
	if err != nil {
		return nil, fmt.Errorf("initialize pipeline %s: %w", opt.PipelineName, err)
	}
	c.pipelines[key] = p
	return p, nil
}
