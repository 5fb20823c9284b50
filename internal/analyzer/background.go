package analyzer

import "image"

const (
	brightChannelMean = 200.0
	darkChannelMean   = 55.0

	backgroundConfidence = 0.8
	backgroundContent    = "Background gradient/color"

	// sampleStep keeps the scan cheap on large posters.
	sampleStep = 4
)

// ChannelMeans returns the mean R, G and B values on a 0..255 scale.
func ChannelMeans(img image.Image) (r, g, b float64) {
	bounds := img.Bounds()
	var sr, sg, sb, n float64
	for y := bounds.Min.Y; y < bounds.Max.Y; y += sampleStep {
		for x := bounds.Min.X; x < bounds.Max.X; x += sampleStep {
			cr, cg, cb, _ := img.At(x, y).RGBA()
			sr += float64(cr >> 8)
			sg += float64(cg >> 8)
			sb += float64(cb >> 8)
			n++
		}
	}
	if n == 0 {
		return 0, 0, 0
	}
	return sr / n, sg / n, sb / n
}

// DetectBackground reports a full-image background element when any colour
// channel is dominated by very light or very dark values.
func DetectBackground(img image.Image) (Element, bool) {
	meta := MetaOf(img)
	if meta.Width == 0 || meta.Height == 0 {
		return Element{}, false
	}
	r, g, b := ChannelMeans(img)
	uniform := false
	for _, m := range []float64{r, g, b} {
		if m > brightChannelMean || m < darkChannelMean {
			uniform = true
			break
		}
	}
	if !uniform {
		return Element{}, false
	}
	return Element{
		Kind:       KindBackground,
		Content:    backgroundContent,
		Position:   Rect{Width: meta.Width, Height: meta.Height},
		Role:       RoleBackground,
		Confidence: backgroundConfidence,
	}, true
}

func withBackground(img image.Image, els []Element) []Element {
	if bg, ok := DetectBackground(img); ok {
		els = append(els, bg)
	}
	return els
}
