package renderer

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/infographic2gif/internal/analyzer"
	"github.com/ivlev/infographic2gif/internal/director"
	applog "github.com/ivlev/infographic2gif/internal/log"
	"github.com/ivlev/infographic2gif/internal/system"
)

// PlateName is the file name of the static background layer.
const PlateName = "plate.png"

var encoder = png.Encoder{CompressionLevel: png.BestSpeed}

// LayerName is the file name of one element layer.
func LayerName(elementID int) string {
	return fmt.Sprintf("layer_%03d.png", elementID)
}

// AnimatedElements returns the elements that get their own layer: those with
// curves, a non-empty rectangle and a role other than background.
func AnimatedElements(plan *director.Plan) []analyzer.Element {
	var out []analyzer.Element
	for _, el := range plan.Elements {
		if el.Role == analyzer.RoleBackground || el.Position.Width <= 0 || el.Position.Height <= 0 {
			continue
		}
		if len(plan.CurvesFor(el.ID)) == 0 {
			continue
		}
		out = append(out, el)
	}
	return out
}

// ExtractLayers splits the canvas into a plate, where each animated element
// is painted over with its surrounding colour, and one PNG per animated
// element. Layers are written in parallel.
func ExtractLayers(ctx context.Context, canvas image.Image, plan *director.Plan, dir string) (Layers, error) {
	l := applog.WithOperation(applog.WithComponent("renderer"), "extract_layers")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return Layers{}, err
	}

	bounds := canvas.Bounds()
	animated := AnimatedElements(plan)
	plate := BuildPlate(canvas, animated)

	out := Layers{Plate: filepath.Join(dir, PlateName), Elements: make([]Layer, len(animated))}
	if err := WritePNG(out.Plate, plate); err != nil {
		return Layers{}, err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())
	for i, el := range animated {
		i, el := i, el
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r := el.Position.Image().Intersect(plate.Bounds())
			buf := system.GetImage(image.Rect(0, 0, r.Dx(), r.Dy()))
			defer system.PutImage(buf)
			draw.Draw(buf, buf.Bounds(), canvas, r.Min.Add(bounds.Min), draw.Src)

			path := filepath.Join(dir, LayerName(el.ID))
			if err := WritePNG(path, buf); err != nil {
				return err
			}
			out.Elements[i] = Layer{ElementID: el.ID, Path: path, Rect: analyzer.RectFrom(r)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Layers{}, err
	}

	l.Debug("layers written", slog.String("dir", dir), slog.Int("layers", len(out.Elements)))
	return out, nil
}

// BuildPlate copies the canvas to a zero-origin RGBA and fills each element
// rectangle with its surrounding colour.
func BuildPlate(canvas image.Image, animated []analyzer.Element) *image.RGBA {
	bounds := canvas.Bounds()
	plate := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(plate, plate.Bounds(), canvas, bounds.Min, draw.Src)
	for _, el := range animated {
		r := el.Position.Image().Intersect(plate.Bounds())
		draw.Draw(plate, r, image.NewUniform(BorderColor(canvas, r.Add(bounds.Min))), image.Point{}, draw.Src)
	}
	return plate
}

// BorderColor averages the one-pixel ring just outside r, clipped to the
// image. With no ring left it samples r itself.
func BorderColor(img image.Image, r image.Rectangle) color.RGBA {
	b := img.Bounds()
	ring := r.Inset(-1).Intersect(b)

	var sr, sg, sb, n uint64
	add := func(x, y int) {
		cr, cg, cb, _ := img.At(x, y).RGBA()
		sr, sg, sb = sr+uint64(cr>>8), sg+uint64(cg>>8), sb+uint64(cb>>8)
		n++
	}
	for x := ring.Min.X; x < ring.Max.X; x++ {
		for _, y := range []int{ring.Min.Y, ring.Max.Y - 1} {
			if y < r.Min.Y || y >= r.Max.Y {
				add(x, y)
			}
		}
	}
	for y := ring.Min.Y; y < ring.Max.Y; y++ {
		for _, x := range []int{ring.Min.X, ring.Max.X - 1} {
			if (x < r.Min.X || x >= r.Max.X) && y >= r.Min.Y && y < r.Max.Y {
				add(x, y)
			}
		}
	}
	if n == 0 {
		inner := r.Intersect(b)
		for y := inner.Min.Y; y < inner.Max.Y; y++ {
			for x := inner.Min.X; x < inner.Max.X; x++ {
				add(x, y)
			}
		}
	}
	if n == 0 {
		return color.RGBA{255, 255, 255, 255}
	}
	return color.RGBA{uint8(sr / n), uint8(sg / n), uint8(sb / n), 255}
}

// WritePNG сохраняет img в path с быстрым сжатием.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encoder.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
