// Package ocr implements the adaptive text-recognition engine: per
// region it resolves a reading orientation and script, picks (and
// pools) a matching recognizer profile, and maps recognized lines back
// into page coordinates.
package ocr

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"strings"
	"sync"

	"github.com/otiai10/gosseract/v2"
)

// Line is one recognized text line in the coordinates of the image that
// was handed to the recognizer.
type Line struct {
	Text       string
	Confidence float64 // 0..1
	Box        image.Rectangle
}

// LineRecognizer produces positioned text lines for an image region.
type LineRecognizer interface {
	RecognizeLines(img image.Image) ([]Line, error)
	Close() error
}

// TesseractRecognizer is the gosseract-backed LineRecognizer. A client
// is not safe for concurrent use; the engine serializes access.
type TesseractRecognizer struct {
	mu     sync.Mutex
	client *gosseract.Client
}

// NewTesseractRecognizer creates a recognizer for the given tesseract
// language identifiers; an empty list uses the engine default language.
func NewTesseractRecognizer(langs []string, dataPath string) (*TesseractRecognizer, error) {
	client := gosseract.NewClient()
	if dataPath != "" {
		if err := client.SetTessdataPrefix(dataPath); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("set tessdata prefix: %w", err)
		}
	}
	if len(langs) > 0 {
		if err := client.SetLanguage(langs...); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("set languages %v: %w", langs, err)
		}
	}
	if err := client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("set page segmentation mode: %w", err)
	}
	return &TesseractRecognizer{client: client}, nil
}

// RecognizeLines runs line-level detection and recognition over img.
func (r *TesseractRecognizer) RecognizeLines(img image.Image) ([]Line, error) {
	if img == nil {
		return nil, nil
	}
	data, err := encodePNG(img)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.client.SetImageFromBytes(data); err != nil {
		return nil, fmt.Errorf("set image: %w", err)
	}
	boxes, err := r.client.GetBoundingBoxes(gosseract.RIL_TEXTLINE)
	if err != nil {
		return nil, fmt.Errorf("line detection: %w", err)
	}

	lines := make([]Line, 0, len(boxes))
	for _, b := range boxes {
		lines = append(lines, Line{
			Text:       strings.TrimSpace(b.Word),
			Confidence: b.Confidence / 100.0,
			Box:        b.Box,
		})
	}
	return lines, nil
}

// Close releases the tesseract client.
func (r *TesseractRecognizer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.client.Close()
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode region image: %w", err)
	}
	return buf.Bytes(), nil
}
