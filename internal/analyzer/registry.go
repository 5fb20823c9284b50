package analyzer

import (
	"errors"
	"fmt"
)

// ErrUnknownDetector is returned for variants NewDetector does not know.
var ErrUnknownDetector = errors.New("unknown detector variant")

// NewDetector creates a detector for the given variant. OCR is the default.
func NewDetector(variant, language string) (Detector, error) {
	switch variant {
	case "ocr", "":
		return NewOCRDetector(language), nil
	case "contrast":
		return NewContrastDetector(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDetector, variant)
	}
}
