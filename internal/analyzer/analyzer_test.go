package analyzer

import (
	"errors"
	"image"
	"image/color"
	"os/exec"
	"strings"
	"testing"
)

func fillRect(img *image.RGBA, r image.Rectangle, c color.RGBA) {
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			img.SetRGBA(x, y, c)
		}
	}
}

func TestContrastDetector(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 200, 200))
	fillRect(img, img.Bounds(), color.RGBA{0, 0, 0, 255})
	fillRect(img, image.Rect(70, 70, 130, 130), color.RGBA{255, 255, 255, 255})

	els, err := NewContrastDetector().Detect(img)
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}

	var visual, background int
	for _, el := range els {
		t.Logf("%s %+v conf=%.2f", el.Kind, el.Position, el.Confidence)
		switch el.Kind {
		case KindVisualOther:
			visual++
			if el.Position.Width < 50 || el.Position.Height < 50 {
				t.Errorf("region too small: %+v", el.Position)
			}
		case KindBackground:
			background++
		}
	}
	if visual == 0 {
		t.Fatal("expected at least one visual region")
	}
	if background != 1 {
		t.Errorf("dark poster should carry one background element, got %d", background)
	}
}

func TestDetectorRegistry(t *testing.T) {
	tests := []struct {
		variant string
		wantErr bool
	}{
		{"contrast", false},
		{"ocr", false},
		{"", false},
		{"ai", true},
	}
	for _, tt := range tests {
		t.Run(tt.variant, func(t *testing.T) {
			d, err := NewDetector(tt.variant, "eng")
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownDetector) {
					t.Errorf("expected ErrUnknownDetector, got %v", err)
				}
				return
			}
			if err != nil || d == nil {
				t.Errorf("unexpected result: %v, %v", d, err)
			}
		})
	}
}

func TestOCRDetectorSmoke(t *testing.T) {
	if _, err := exec.LookPath("tesseract"); err != nil {
		t.Skip("tesseract not installed")
	}
	img := image.NewRGBA(image.Rect(0, 0, 120, 80))
	fillRect(img, img.Bounds(), color.RGBA{255, 255, 255, 255})
	if _, err := NewOCRDetector("eng").Detect(img); err != nil {
		t.Fatalf("Detect: %v", err)
	}
}

func TestDetectBackground(t *testing.T) {
	light := image.NewRGBA(image.Rect(0, 0, 40, 40))
	fillRect(light, light.Bounds(), color.RGBA{240, 240, 240, 255})
	if el, ok := DetectBackground(light); !ok || el.Kind != KindBackground || el.Position.Width != 40 {
		t.Errorf("light image: got %+v, %v", el, ok)
	}

	mid := image.NewRGBA(image.Rect(0, 0, 40, 40))
	fillRect(mid, mid.Bounds(), color.RGBA{128, 120, 140, 255})
	if _, ok := DetectBackground(mid); ok {
		t.Error("mid-tone image should not report a background")
	}

	if _, ok := DetectBackground(image.NewRGBA(image.Rect(0, 0, 0, 0))); ok {
		t.Error("empty image should not report a background")
	}
}

func TestGroupWords(t *testing.T) {
	meta := ImageMeta{Width: 1000, Height: 1000}
	words := []Word{
		{Text: "Results", Box: image.Rect(200, 40, 400, 80), Confidence: 90},
		{Text: "Q3", Box: image.Rect(100, 40, 180, 80), Confidence: 94},
		{Text: "noise", Box: image.Rect(10, 60, 50, 70), Confidence: 30},
		{Text: "45%", Box: image.Rect(100, 500, 200, 560), Confidence: 80},
		{Text: "growth", Box: image.Rect(210, 520, 330, 560), Confidence: 70},
	}
	els := GroupWords(words, meta, DefaultMinWordConfidence)
	if len(els) != 2 {
		t.Fatalf("expected 2 blocks, got %d: %+v", len(els), els)
	}
	if els[0].Content != "Results Q3" && els[0].Content != "Q3 Results" {
		t.Errorf("unexpected first block %q", els[0].Content)
	}
	if els[0].Position != (Rect{X: 100, Y: 40, Width: 300, Height: 40}) {
		t.Errorf("unexpected first block box %+v", els[0].Position)
	}
	if els[1].Content != "45% growth" || els[1].Kind != KindText {
		t.Errorf("unexpected second block %+v", els[1])
	}
	if els[1].Confidence != 0.75 {
		t.Errorf("confidence = %v, want 0.75", els[1].Confidence)
	}
}

func TestSummaryAndFormat(t *testing.T) {
	meta := ImageMeta{Width: 1000, Height: 1000}
	els := ClassifyElements([]Element{
		{Kind: KindText, Content: "Quarterly numbers for the whole organisation, region by region", Position: Rect{Y: 50, Width: 500, Height: 80}},
		{Kind: KindText, Content: "45% growth", Position: Rect{Y: 400, Width: 200, Height: 60}},
		{Kind: KindText, Content: "Sign up today", Position: Rect{Y: 900, Width: 200, Height: 60}},
		{Kind: KindBackground, Content: backgroundContent, Position: Rect{Width: 1000, Height: 1000}},
	}, meta)

	got := Summarize(els)
	want := "Infographic with 1 title, 1 stat box, 1 CTA, 1 visual element"
	if got != want {
		t.Errorf("Summarize = %q, want %q", got, want)
	}

	out := FormatAnalysis(els, meta)
	t.Log("\n" + out)
	if !strings.Contains(out, "…") {
		t.Error("long content should be truncated")
	}
	if strings.Index(out, "Background") < strings.Index(out, "CTA Button") {
		t.Error("background rows should come last")
	}
	if !strings.Contains(out, "bottom section") {
		t.Error("CTA row should be in the bottom section")
	}
}
