package analyzer

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"log/slog"

	"github.com/otiai10/gosseract/v2"

	applog "github.com/ivlev/infographic2gif/internal/log"
)

// OCRDetector runs Tesseract over the image and groups recognised words into
// text elements.
type OCRDetector struct {
	Language          string
	MinWordConfidence float64
}

// NewOCRDetector returns a detector for the given Tesseract language code.
func NewOCRDetector(language string) *OCRDetector {
	if language == "" {
		language = "eng"
	}
	return &OCRDetector{Language: language, MinWordConfidence: DefaultMinWordConfidence}
}

// Detect returns grouped text elements plus the background element when the
// image has a uniform background.
func (d *OCRDetector) Detect(img image.Image) ([]Element, error) {
	l := applog.WithOperation(applog.WithComponent("analyzer"), "ocr")

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode image for OCR: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(d.Language); err != nil {
		return nil, fmt.Errorf("set OCR language %q: %w", d.Language, err)
	}
	if err := client.SetImageFromBytes(buf.Bytes()); err != nil {
		return nil, fmt.Errorf("load image into OCR: %w", err)
	}
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil {
		return nil, fmt.Errorf("OCR word boxes: %w", err)
	}

	words := make([]Word, 0, len(boxes))
	for _, b := range boxes {
		words = append(words, Word{Text: b.Word, Box: b.Box, Confidence: b.Confidence})
	}
	els := GroupWords(words, MetaOf(img), d.MinWordConfidence)
	l.Debug("ocr finished", slog.Int("words", len(words)), slog.Int("blocks", len(els)))

	return withBackground(img, els), nil
}
