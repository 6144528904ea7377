package ocr

import (
	"errors"
	"fmt"
	"image"
	"strings"

	"github.com/pemistahl/lingua-go"
)

// OSDResult is the orientation and script resolved for one region.
type OSDResult struct {
	// Rotation is the detected reading rotation in clockwise degrees,
	// one of 0, 90, 180 or 270.
	Rotation           int
	RotationConfidence float64

	// Script is the tesseract script name, e.g. "Latin" or "Cyrillic".
	Script           string
	ScriptConfidence float64
}

// ErrNoTextDetected is returned when a region contains nothing the
// detector can orient or classify.
var ErrNoTextDetected = errors.New("osd: no text detected in region")

// OSDDetector performs orientation and script detection on a rendered
// region prior to recognition.
type OSDDetector interface {
	Detect(img image.Image) (*OSDResult, error)
	Close() error
}

// CompositeOSD is the default detector: a luminance-profile heuristic
// votes on the rotation, a throwaway recognition pass samples the text,
// and lingua classifies the sample's language to name a script.
type CompositeOSD struct {
	sampler LineRecognizer
	lang    lingua.LanguageDetector
}

// NewCompositeOSD builds the detector around a dedicated sampling
// recognizer instance, separate from the engine's main recognizer.
func NewCompositeOSD(dataPath string) (*CompositeOSD, error) {
	sampler, err := NewTesseractRecognizer(nil, dataPath)
	if err != nil {
		return nil, fmt.Errorf("osd sampler: %w", err)
	}
	return &CompositeOSD{
		sampler: sampler,
		lang:    newScriptLanguageDetector(),
	}, nil
}

// scriptLanguages spans the scripts the engine can route recognizers
// for. One representative language per script keeps lingua's model
// footprint small.
var scriptLanguages = []lingua.Language{
	lingua.English,
	lingua.German,
	lingua.French,
	lingua.Spanish,
	lingua.Italian,
	lingua.Portuguese,
	lingua.Russian,
	lingua.Ukrainian,
	lingua.Greek,
	lingua.Hebrew,
	lingua.Arabic,
	lingua.Hindi,
	lingua.Thai,
	lingua.Japanese,
	lingua.Chinese,
	lingua.Korean,
}

func newScriptLanguageDetector() lingua.LanguageDetector {
	return lingua.NewLanguageDetectorBuilder().
		FromLanguages(scriptLanguages...).
		Build()
}

// Detect resolves rotation and script for the region image. A region
// with no recognizable text fails with ErrNoTextDetected.
func (d *CompositeOSD) Detect(img image.Image) (*OSDResult, error) {
	if img == nil {
		return nil, ErrNoTextDetected
	}
	angle, rotConf := orientationHint(img)

	sampleImg := img
	if angle != 0 {
		sampleImg = rotateExpand(img, angle)
	}
	lines, err := d.sampler.RecognizeLines(sampleImg)
	if err != nil {
		return nil, fmt.Errorf("osd sample recognition: %w", err)
	}
	var sb strings.Builder
	for _, l := range lines {
		if l.Text != "" {
			sb.WriteString(l.Text)
			sb.WriteByte(' ')
		}
	}
	sample := strings.TrimSpace(sb.String())
	if sample == "" {
		return nil, ErrNoTextDetected
	}

	res := &OSDResult{Rotation: angle, RotationConfidence: rotConf}
	values := d.lang.ComputeLanguageConfidenceValues(sample)
	if len(values) == 0 {
		return nil, ErrNoTextDetected
	}
	res.Script = scriptForLanguage(values[0].Language())
	res.ScriptConfidence = values[0].Value()
	return res, nil
}

// Close releases the sampling recognizer.
func (d *CompositeOSD) Close() error {
	return d.sampler.Close()
}

// scriptForLanguage maps a detected language onto the tesseract script
// name used to select a recognition profile.
func scriptForLanguage(lang lingua.Language) string {
	switch lang {
	case lingua.Russian, lingua.Ukrainian:
		return "Cyrillic"
	case lingua.Greek:
		return "Greek"
	case lingua.Hebrew:
		return "Hebrew"
	case lingua.Arabic:
		return "Arabic"
	case lingua.Hindi:
		return "Devanagari"
	case lingua.Thai:
		return "Thai"
	case lingua.Japanese:
		return "Japanese"
	case lingua.Chinese:
		return "HanS"
	case lingua.Korean:
		return "Hangul"
	default:
		return "Latin"
	}
}
