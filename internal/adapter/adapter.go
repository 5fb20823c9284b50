package adapter

import (
	"image"
	"image/color"
	"log/slog"
	"math"

	"golang.org/x/image/draw"

	"github.com/ivlev/infographic2gif/internal/analyzer"
	applog "github.com/ivlev/infographic2gif/internal/log"
)

// Strategy is how the source is fitted to the target canvas.
type Strategy string

const (
	ScaleToFit Strategy = "scale-to-fit"
	CropToFill Strategy = "crop-to-fill"
	// Reflow is chosen for busy or off-centre layouts. Elements are not
	// rearranged; it crops around the padded content box.
	Reflow Strategy = "reflow"
)

const (
	fitTolerance      = 0.05
	reflowMismatch    = 0.3
	reflowElements    = 5
	centreTolerance   = 0.3
	contentPadPercent = 0.1
)

// Result is the adapted canvas and its re-projected elements.
type Result struct {
	Image    *image.RGBA
	Elements []analyzer.Element
	Strategy Strategy
	Target   AspectRatio
	// Source region that was mapped onto the canvas.
	Region image.Rectangle
}

// ChooseStrategy decides how to fit a w×h source holding elements to target.
func ChooseStrategy(w, h int, elements []analyzer.Element, target AspectRatio) Strategy {
	mismatch := Mismatch(w, h, target)
	switch {
	case mismatch < fitTolerance:
		return ScaleToFit
	case Centralized(elements, w, h):
		return CropToFill
	case mismatch > reflowMismatch || len(content(elements)) > reflowElements:
		return Reflow
	default:
		return CropToFill
	}
}

// Centralized reports whether the area-weighted centre of the content lies
// within 30% of the width from the image centre.
func Centralized(elements []analyzer.Element, w, h int) bool {
	cx, cy, ok := weightedCentre(elements)
	if !ok {
		return true
	}
	return math.Hypot(cx-float64(w)/2, cy-float64(h)/2) < float64(w)*centreTolerance
}

func weightedCentre(elements []analyzer.Element) (float64, float64, bool) {
	var sx, sy, area float64
	for _, el := range content(elements) {
		a := float64(el.Position.Width * el.Position.Height)
		sx += (float64(el.Position.X) + float64(el.Position.Width)/2) * a
		sy += (float64(el.Position.Y) + float64(el.Position.Height)/2) * a
		area += a
	}
	if area == 0 {
		return 0, 0, false
	}
	return sx / area, sy / area, true
}

// Adapt fits img onto the target canvas and re-projects elements into
// canvas pixels. Elements entirely outside the kept region are dropped.
func Adapt(img image.Image, elements []analyzer.Element, target AspectRatio) Result {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	strategy := ChooseStrategy(w, h, elements, target)
	l := applog.WithOperation(applog.WithComponent("adapter"), "adapt")

	dst := image.NewRGBA(image.Rect(0, 0, target.Width, target.Height))
	res := Result{Image: dst, Strategy: strategy, Target: target}

	if strategy == ScaleToFit {
		s := math.Min(float64(target.Width)/float64(w), float64(target.Height)/float64(h))
		fw, fh := int(math.Round(float64(w)*s)), int(math.Round(float64(h)*s))
		off := image.Pt((target.Width-fw)/2, (target.Height-fh)/2)
		draw.Draw(dst, dst.Bounds(), image.NewUniform(color.White), image.Point{}, draw.Src)
		draw.CatmullRom.Scale(dst, image.Rectangle{Min: off, Max: off.Add(image.Pt(fw, fh))}, img, b, draw.Over, nil)

		res.Region = image.Rect(0, 0, w, h)
		res.Elements = project(elements, res.Region, s, s, off, dst.Bounds())
	} else {
		region := CropRegion(elements, w, h, target)
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, region.Add(b.Min), draw.Src, nil)

		sx := float64(target.Width) / float64(region.Dx())
		sy := float64(target.Height) / float64(region.Dy())
		res.Region = region
		res.Elements = project(elements, region, sx, sy, image.Point{}, dst.Bounds())
	}

	l.Debug("adapted",
		slog.String("strategy", string(strategy)),
		slog.String("target", target.Name),
		slog.Any("region", res.Region),
		slog.Int("elements_in", len(elements)),
		slog.Int("elements_out", len(res.Elements)))
	return res
}

// CropRegion is the target-ratio region to keep: the content box padded by
// 10% of the image, widened to the ratio and clamped to the image. When the
// box is larger than the image allows, the region follows the area-weighted
// centre instead. With no content it is the largest centred region.
func CropRegion(elements []analyzer.Element, w, h int, target AspectRatio) image.Rectangle {
	ratio := target.Ratio()
	box, ok := contentBox(elements)
	if !ok {
		return centerCrop(w, h, ratio)
	}

	padX, padY := float64(w)*contentPadPercent, float64(h)*contentPadPercent
	x0, y0 := float64(box.Min.X)-padX, float64(box.Min.Y)-padY
	x1, y1 := float64(box.Max.X)+padX, float64(box.Max.Y)+padY
	cx, cy := (x0+x1)/2, (y0+y1)/2
	rw, rh := x1-x0, y1-y0

	if rw/rh < ratio {
		rw = rh * ratio
	} else {
		rh = rw / ratio
	}
	if rw > float64(w) || rh > float64(h) {
		// Content does not fit: keep the heaviest part in frame.
		if wx, wy, ok := weightedCentre(elements); ok {
			cx, cy = wx, wy
		}
	}
	if rw > float64(w) {
		rw, rh = float64(w), float64(w)/ratio
	}
	if rh > float64(h) {
		rh, rw = float64(h), float64(h)*ratio
	}

	left := clamp(cx-rw/2, 0, float64(w)-rw)
	top := clamp(cy-rh/2, 0, float64(h)-rh)
	r := image.Rect(int(math.Round(left)), int(math.Round(top)),
		int(math.Round(left+rw)), int(math.Round(top+rh)))
	return r.Intersect(image.Rect(0, 0, w, h))
}

func centerCrop(w, h int, ratio float64) image.Rectangle {
	cw, ch := float64(w), float64(h)
	if cw/ch > ratio {
		cw = ch * ratio
	} else {
		ch = cw / ratio
	}
	x := (float64(w) - cw) / 2
	y := (float64(h) - ch) / 2
	return image.Rect(int(math.Round(x)), int(math.Round(y)), int(math.Round(x+cw)), int(math.Round(y+ch)))
}

// project maps elements from source pixels into the canvas. Background
// elements cover the whole canvas.
func project(elements []analyzer.Element, region image.Rectangle, sx, sy float64, off image.Point, canvas image.Rectangle) []analyzer.Element {
	var out []analyzer.Element
	for _, el := range elements {
		if el.Kind == analyzer.KindBackground || el.Role == analyzer.RoleBackground {
			el.Position = analyzer.RectFrom(canvas)
			out = append(out, el)
			continue
		}
		r := el.Position.Image().Intersect(region)
		if r.Empty() {
			continue
		}
		x0 := off.X + int(math.Round(float64(r.Min.X-region.Min.X)*sx))
		y0 := off.Y + int(math.Round(float64(r.Min.Y-region.Min.Y)*sy))
		x1 := off.X + int(math.Round(float64(r.Max.X-region.Min.X)*sx))
		y1 := off.Y + int(math.Round(float64(r.Max.Y-region.Min.Y)*sy))
		pr := image.Rect(x0, y0, x1, y1).Intersect(canvas)
		if pr.Empty() {
			continue
		}
		el.Position = analyzer.RectFrom(pr)
		out = append(out, el)
	}
	return out
}

func content(elements []analyzer.Element) []analyzer.Element {
	var out []analyzer.Element
	for _, el := range elements {
		if el.Kind != analyzer.KindBackground && el.Role != analyzer.RoleBackground && !el.Position.Malformed() {
			out = append(out, el)
		}
	}
	return out
}

func contentBox(elements []analyzer.Element) (image.Rectangle, bool) {
	var box image.Rectangle
	found := false
	for _, el := range content(elements) {
		r := el.Position.Image()
		if r.Empty() {
			continue
		}
		if !found {
			box, found = r, true
			continue
		}
		box = box.Union(r)
	}
	return box, found
}

func clamp(v, lo, hi float64) float64 {
	if hi < lo {
		return lo
	}
	return math.Max(lo, math.Min(hi, v))
}
