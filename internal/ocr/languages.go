package ocr

import (
	"strings"

	"golang.org/x/text/language"
)

// CanonicalTesseractLang normalizes a user-supplied language code
// ("en", "eng", "en-US", "German") into the three-letter identifier
// tesseract profiles are named by. Unrecognized codes pass through
// lowercased so explicit tesseract profile names keep working.
func CanonicalTesseractLang(code string) string {
	code = strings.TrimSpace(code)
	if code == "" || strings.EqualFold(code, "auto") {
		return "auto"
	}
	tag, err := language.Parse(code)
	if err != nil {
		return strings.ToLower(code)
	}
	base, conf := tag.Base()
	if conf == language.No {
		return strings.ToLower(code)
	}
	return strings.ToLower(base.ISO3())
}

// mapScript normalizes the script names reported by detection onto the
// names tesseract ships recognition profiles under.
func mapScript(script string) string {
	switch script {
	case "Katakana", "Hiragana":
		return "Japanese"
	case "Han":
		return "HanS"
	case "Korean":
		return "Hangul"
	default:
		return script
	}
}
