package analyzer

import (
	"testing"
)

func TestClassifyRules(t *testing.T) {
	meta := ImageMeta{Width: 1000, Height: 1000}
	tests := []struct {
		name string
		el   Element
		want Role
	}{
		{"top band is title", Element{Kind: KindText, Content: "45% off", Position: Rect{Y: 100}}, RoleTitle},
		{"bottom band is cta", Element{Kind: KindText, Content: "plain words", Position: Rect{Y: 800}}, RoleCTA},
		{"action phrase is cta", Element{Kind: KindText, Content: "Download the REPORT", Position: Rect{Y: 500}}, RoleCTA},
		{"percentage is stat", Element{Kind: KindText, Content: "45%", Position: Rect{Y: 500}}, RoleStat},
		{"thousands is stat", Element{Kind: KindText, Content: "12,500 users", Position: Rect{Y: 500}}, RoleStat},
		{"plain text is body", Element{Kind: KindText, Content: "Our team grew", Position: Rect{Y: 500}}, RoleBody},
		{"band edge 0.25 is not title", Element{Kind: KindText, Content: "text", Position: Rect{Y: 250}}, RoleBody},
		{"band edge 0.75 is not cta", Element{Kind: KindText, Content: "text", Position: Rect{Y: 750}}, RoleBody},
		{"background short-circuits", Element{Kind: KindBackground, Content: "Sign up", Position: Rect{Y: 900}}, RoleBackground},
		{"visual in middle is body", Element{Kind: KindVisualOther, Content: visualContent, Position: Rect{Y: 500}}, RoleBody},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.el, meta); got != tt.want {
				t.Errorf("Classify() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestClassifyZeroHeightImage(t *testing.T) {
	got := Classify(Element{Kind: KindText, Content: "hello", Position: Rect{Y: 10}}, ImageMeta{})
	if got != RoleBody {
		t.Errorf("zero-height image should classify by content only, got %s", got)
	}
}

func TestClassifyElementsIDDensity(t *testing.T) {
	meta := ImageMeta{Width: 800, Height: 1000}
	raw := []Element{
		{ID: 7, Kind: KindText, Content: "Learn more", Position: Rect{X: 10, Y: 900, Width: 100, Height: 40}, Confidence: 0.9},
		{ID: 3, Kind: KindText, Content: "Q3 Results", Position: Rect{X: 10, Y: 20, Width: 300, Height: 60}, Confidence: 1.4},
		{ID: 9, Kind: KindText, Content: "120 stores", Position: Rect{X: 400, Y: 500, Width: 100, Height: 40}, Confidence: 0.8},
		{ID: 1, Kind: KindText, Content: "broken", Position: Rect{X: 0, Y: 300, Width: -5, Height: 10}},
		{ID: 4, Kind: KindText, Content: "Stores opened", Position: Rect{X: 10, Y: 500, Width: 100, Height: 40}, Confidence: -1},
	}
	got := ClassifyElements(raw, meta)

	if len(got) != 4 {
		t.Fatalf("expected malformed element dropped, got %d elements", len(got))
	}
	for i, el := range got {
		if el.ID != i+1 {
			t.Errorf("element %d has id %d", i, el.ID)
		}
		if i > 0 && got[i-1].Position.Y > el.Position.Y {
			t.Errorf("ids not in ascending y order at %d", i)
		}
		if el.Confidence < 0 || el.Confidence > 1 {
			t.Errorf("confidence out of range: %v", el.Confidence)
		}
	}

	wantRoles := []Role{RoleTitle, RoleBody, RoleStat, RoleCTA}
	for i, r := range wantRoles {
		if got[i].Role != r {
			t.Errorf("element %d role = %s, want %s (%q)", i+1, got[i].Role, r, got[i].Content)
		}
	}
	if raw[0].ID != 7 {
		t.Error("input slice must not be modified")
	}
}

func TestClassifyElementsFallback(t *testing.T) {
	meta := ImageMeta{Width: 640, Height: 480}
	for name, raw := range map[string][]Element{
		"nil":       nil,
		"malformed": {{Position: Rect{Width: -1, Height: -1}}},
	} {
		t.Run(name, func(t *testing.T) {
			got := ClassifyElements(raw, meta)
			if len(got) != 1 {
				t.Fatalf("expected one fallback element, got %d", len(got))
			}
			el := got[0]
			if el.ID != 1 || el.Role != RoleBackground || el.Confidence != 0.5 {
				t.Errorf("unexpected fallback %+v", el)
			}
			if el.Position != (Rect{Width: 640, Height: 480}) {
				t.Errorf("fallback must cover the image, got %+v", el.Position)
			}
		})
	}
}

func TestClassifyElementsDeterministic(t *testing.T) {
	meta := ImageMeta{Width: 100, Height: 100}
	raw := []Element{
		{Kind: KindText, Content: "b", Position: Rect{X: 50, Y: 40}},
		{Kind: KindText, Content: "a", Position: Rect{X: 10, Y: 40}},
		{Kind: KindText, Content: "c", Position: Rect{X: 10, Y: 10}},
	}
	first := ClassifyElements(raw, meta)
	for i := 0; i < 5; i++ {
		again := ClassifyElements(raw, meta)
		for j := range first {
			if first[j] != again[j] {
				t.Fatalf("run %d differs at %d: %+v vs %+v", i, j, first[j], again[j])
			}
		}
	}
	if first[1].Content != "a" {
		t.Errorf("ties on y should order by x, got %q", first[1].Content)
	}
}
