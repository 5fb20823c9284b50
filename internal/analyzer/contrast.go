package analyzer

import (
	"image"
	"image/color"
	"math"
)

const visualContent = "Visual region"

// ContrastDetector finds non-text regions (icons, charts, photos) by edge
// density: Sobel gradients, a dilation pass to merge nearby strokes, then
// connected-component bounding boxes.
type ContrastDetector struct {
	MinBlockArea  int     // px², компоненты меньше считаются шумом
	EdgeThreshold float64 // gradient magnitude cut-off
	DilateRadius  int
	Confidence    float64
}

// NewContrastDetector returns a detector tuned for 1080p-class posters.
func NewContrastDetector() *ContrastDetector {
	return &ContrastDetector{
		MinBlockArea:  500,
		EdgeThreshold: 30,
		DilateRadius:  2,
		Confidence:    0.7,
	}
}

// Detect returns one visual-other element per edge cluster plus the
// background element when the image has a uniform background.
func (d *ContrastDetector) Detect(img image.Image) ([]Element, error) {
	lum := luminance(img)
	w, h := img.Bounds().Dx(), img.Bounds().Dy()

	mask := sobelMask(lum, w, h, d.EdgeThreshold)
	// Два прохода дилатации склеивают соседние штрихи иконок и графиков
	for i := 0; i < 2; i++ {
		mask = dilateMask(mask, w, h, d.DilateRadius)
	}

	var els []Element
	for _, r := range components(mask, w, h) {
		if r.Dx()*r.Dy() < d.MinBlockArea {
			continue
		}
		els = append(els, Element{
			Kind:       KindVisualOther,
			Content:    visualContent,
			Position:   RectFrom(r),
			Confidence: d.Confidence,
		})
	}
	return withBackground(img, els), nil
}

// luminance переводит img в построчный 8-битный буфер яркости.
func luminance(img image.Image) []uint8 {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	out := make([]uint8, w*h)
	if g, ok := img.(*image.Gray); ok {
		for y := 0; y < h; y++ {
			copy(out[y*w:(y+1)*w], g.Pix[y*g.Stride:y*g.Stride+w])
		}
		return out
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			out[y*w+x] = color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray).Y
		}
	}
	return out
}

func sobelMask(lum []uint8, w, h int, threshold float64) []bool {
	mask := make([]bool, w*h)
	at := func(x, y int) float64 { return float64(lum[y*w+x]) }
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			gx := -at(x-1, y-1) + at(x+1, y-1) - 2*at(x-1, y) + 2*at(x+1, y) - at(x-1, y+1) + at(x+1, y+1)
			gy := -at(x-1, y-1) - 2*at(x, y-1) - at(x+1, y-1) + at(x-1, y+1) + 2*at(x, y+1) + at(x+1, y+1)
			mask[y*w+x] = math.Hypot(gx, gy) > threshold
		}
	}
	return mask
}

// dilateMask расширяет каждый отмеченный пиксель до квадрата (2r+1)².
func dilateMask(mask []bool, w, h, r int) []bool {
	out := make([]bool, len(mask))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if !mask[y*w+x] {
				continue
			}
			for yy := max(0, y-r); yy <= min(h-1, y+r); yy++ {
				for xx := max(0, x-r); xx <= min(w-1, x+r); xx++ {
					out[yy*w+xx] = true
				}
			}
		}
	}
	return out
}

// components labels 4-connected regions and returns their bounding boxes in
// scan order.
func components(mask []bool, w, h int) []image.Rectangle {
	seen := make([]bool, len(mask))
	var rects []image.Rectangle
	var stack []int
	for start := range mask {
		if !mask[start] || seen[start] {
			continue
		}
		minX, minY := start%w, start/w
		maxX, maxY := minX, minY
		seen[start] = true
		stack = append(stack[:0], start)
		for len(stack) > 0 {
			p := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			x, y := p%w, p/w
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
			for _, n := range [4][2]int{{x + 1, y}, {x - 1, y}, {x, y + 1}, {x, y - 1}} {
				if n[0] < 0 || n[0] >= w || n[1] < 0 || n[1] >= h {
					continue
				}
				q := n[1]*w + n[0]
				if mask[q] && !seen[q] {
					seen[q] = true
					stack = append(stack, q)
				}
			}
		}
		rects = append(rects, image.Rect(minX, minY, maxX+1, maxY+1))
	}
	return rects
}
