package analyzer

import (
	"image"
	"sort"
	"strings"
)

const (
	// Words below this OCR confidence (0-100) are ignored.
	DefaultMinWordConfidence = 60.0
	// Words start a new block when their top edge is further than this
	// fraction of the image height from the previous word's bottom edge.
	blockGapRatio = 0.05
)

// Word is one OCR word with its box and 0-100 confidence.
type Word struct {
	Text       string
	Box        image.Rectangle
	Confidence float64
}

// GroupWords merges vertically adjacent words into text elements. Block
// confidence is a running average of word confidences, scaled to 0..1.
func GroupWords(words []Word, meta ImageMeta, minConfidence float64) []Element {
	kept := make([]Word, 0, len(words))
	for _, w := range words {
		if w.Confidence > minConfidence && strings.TrimSpace(w.Text) != "" {
			kept = append(kept, w)
		}
	}
	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Box.Min.Y < kept[j].Box.Min.Y })

	gap := float64(meta.Height) * blockGapRatio

	type block struct {
		text  []string
		box   image.Rectangle
		conf  float64
		lastY int
	}
	var blocks []*block
	var cur *block
	for _, w := range kept {
		if cur == nil || absInt(w.Box.Min.Y-cur.lastY) > int(gap) {
			cur = &block{text: []string{strings.TrimSpace(w.Text)}, box: w.Box, conf: w.Confidence, lastY: w.Box.Max.Y}
			blocks = append(blocks, cur)
			continue
		}
		cur.text = append(cur.text, strings.TrimSpace(w.Text))
		cur.conf = (cur.conf + w.Confidence) / 2
		cur.lastY = w.Box.Max.Y
		cur.box = cur.box.Union(w.Box)
	}

	els := make([]Element, 0, len(blocks))
	for _, b := range blocks {
		els = append(els, Element{
			Kind:       KindText,
			Content:    strings.Join(b.text, " "),
			Position:   RectFrom(b.box),
			Confidence: clamp01(b.conf / 100),
		})
	}
	return els
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
