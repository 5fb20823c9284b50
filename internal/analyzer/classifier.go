package analyzer

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"

	applog "github.com/ivlev/infographic2gif/internal/log"
)

const (
	titleBand = 0.25
	ctaBand   = 0.75

	fallbackConfidence = 0.5
	fallbackContent    = "Full infographic"
)

var actionPhrases = []string{"learn more", "sign up", "get started", "click", "buy", "download"}

// Digits with an optional % or $ suffix, or grouped thousands like 12,500.
var statPattern = regexp.MustCompile(`\d{1,3}(?:,\d{3})+|\d+[%$]?`)

// Classify assigns a semantic role from vertical position and text content.
// Background elements keep the background role regardless of position.
func Classify(el Element, meta ImageMeta) Role {
	if el.Kind == KindBackground {
		return RoleBackground
	}

	normY := 0.5
	if meta.Height > 0 {
		normY = float64(el.Position.Y) / float64(meta.Height)
	}
	text := strings.ToLower(el.Content)

	if normY < titleBand {
		return RoleTitle
	}
	if normY > ctaBand || hasActionPhrase(text) {
		return RoleCTA
	}
	if statPattern.MatchString(text) {
		return RoleStat
	}
	return RoleBody
}

func hasActionPhrase(text string) bool {
	for _, p := range actionPhrases {
		if strings.Contains(text, p) {
			return true
		}
	}
	return false
}

// ClassifyElements drops malformed rectangles, sorts top to bottom, assigns
// dense ids 1..N and recomputes every role. The input slice is not modified.
// An empty result is replaced by a single full-image background element.
func ClassifyElements(raw []Element, meta ImageMeta) []Element {
	l := applog.WithOperation(applog.WithComponent("analyzer"), "classify")

	out := make([]Element, 0, len(raw))
	for _, el := range raw {
		if el.Position.Malformed() {
			l.Debug("dropping malformed element", slog.Int("raw_id", el.ID), slog.Any("rect", el.Position))
			continue
		}
		out = append(out, el)
	}
	if len(out) == 0 {
		l.Debug("no usable elements, using full-image fallback")
		return []Element{FallbackElement(meta)}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Position.Y != out[j].Position.Y {
			return out[i].Position.Y < out[j].Position.Y
		}
		return out[i].Position.X < out[j].Position.X
	})

	for i := range out {
		out[i].ID = i + 1
		out[i].Confidence = clamp01(out[i].Confidence)
		if out[i].Kind == "" {
			out[i].Kind = KindVisualOther
		}
		out[i].Role = Classify(out[i], meta)
	}
	return out
}

// FallbackElement covers the whole image when detection produced nothing usable.
func FallbackElement(meta ImageMeta) Element {
	return Element{
		ID:         1,
		Kind:       KindBackground,
		Content:    fallbackContent,
		Position:   Rect{Width: max(meta.Width, 0), Height: max(meta.Height, 0)},
		Role:       RoleBackground,
		Confidence: fallbackConfidence,
	}
}

func clamp01(v float64) float64 {
	if v != v || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
