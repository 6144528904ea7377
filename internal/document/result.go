package document

import (
	"fmt"
	"time"
)

// Status is the terminal state of a single document conversion.
type Status string

const (
	StatusPending        Status = "pending"
	StatusSuccess        Status = "success"
	StatusPartialSuccess Status = "partial_success"
	StatusFailure        Status = "failure"
	StatusSkipped        Status = "skipped"
)

// Usable reports whether the conversion produced structured output.
func (s Status) Usable() bool {
	return s == StatusSuccess || s == StatusPartialSuccess
}

// ComponentType attributes an error to the part of the system that
// raised it.
type ComponentType string

const (
	ComponentUserInput ComponentType = "user_input"
	ComponentBackend   ComponentType = "document_backend"
	ComponentModel     ComponentType = "model"
	ComponentPipeline  ComponentType = "pipeline"
)

// ErrorItem is a structured, per-document error record.
type ErrorItem struct {
	Component ComponentType `json:"component_type"`
	Module    string        `json:"module_name"`
	Message   string        `json:"error_message"`
}

// ConversionError aborts a strict-mode conversion stream.
type ConversionError struct {
	File string
	Msg  string
}

func (e *ConversionError) Error() string {
	if e.File == "" {
		return e.Msg
	}
	return fmt.Sprintf("%s: %s", e.File, e.Msg)
}

// NewConversionError builds a ConversionError for the given source.
func NewConversionError(file, format string, args ...any) *ConversionError {
	return &ConversionError{File: file, Msg: fmt.Sprintf(format, args...)}
}

// StageTiming accumulates wall-clock time spent in one named stage.
type StageTiming struct {
	Count int           `json:"count"`
	Total time.Duration `json:"total_ns"`
}

// ConversionResult owns everything produced while converting one input
// document. It is created when processing starts and finalized exactly
// once.
type ConversionResult struct {
	Input      *InputDocument          `json:"-"`
	Status     Status                  `json:"status"`
	Pages      []*Page                 `json:"pages,omitempty"`
	Assembled  AssembledUnit           `json:"assembled,omitempty"`
	Document   *Document               `json:"document,omitempty"`
	Errors     []ErrorItem             `json:"errors,omitempty"`
	Confidence ConfidenceReport        `json:"confidence"`
	Timings    map[string]*StageTiming `json:"timings,omitempty"`
}

// NewConversionResult creates a pending result for the given input.
func NewConversionResult(in *InputDocument) *ConversionResult {
	return &ConversionResult{
		Input:      in,
		Status:     StatusPending,
		Confidence: NewConfidenceReport(),
		Timings:    make(map[string]*StageTiming),
	}
}

// AddError records a structured error item on the result.
func (r *ConversionResult) AddError(component ComponentType, module, format string, args ...any) {
	r.Errors = append(r.Errors, ErrorItem{
		Component: component,
		Module:    module,
		Message:   fmt.Sprintf(format, args...),
	})
}

// RecordStage starts a timer for the named stage and returns the stop
// function. Timings for the same stage accumulate across pages.
func (r *ConversionResult) RecordStage(name string) func() {
	start := time.Now()
	return func() {
		t := r.Timings[name]
		if t == nil {
			t = &StageTiming{}
			r.Timings[name] = t
		}
		t.Count++
		t.Total += time.Since(start)
	}
}

// PageConf returns the per-page confidence record for pageNo, creating
// it on first use.
func (r *ConversionResult) PageConf(pageNo int) *PageConfidence {
	if c, ok := r.Confidence.Pages[pageNo]; ok {
		return c
	}
	c := NewPageConfidence()
	r.Confidence.Pages[pageNo] = c
	return c
}
