package easing

import (
	"math"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"easeOut", EaseOut, true},
		{"ease-out", EaseOut, true},
		{"EASE_IN_OUT", EaseInOut, true},
		{" ease out back ", EaseOutBack, true},
		{"easeOutElastic", EaseOutElastic, true},
		{"linear", Linear, true},
		{"", EaseOut, false},
		{"wobbly%%", EaseOut, false},
		{"cubic-bezier(0.1,0.7,1.0,0.1)", EaseOut, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := Normalize(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Normalize(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestApplyEndpoints(t *testing.T) {
	for _, name := range []string{Linear, EaseIn, EaseOut, EaseInOut, EaseOutBack, EaseOutElastic, "garbled"} {
		t.Run(name, func(t *testing.T) {
			if v := Apply(name, 0); v != 0 {
				t.Errorf("Apply(0) = %v", v)
			}
			if v := Apply(name, 1); v != 1 {
				t.Errorf("Apply(1) = %v", v)
			}
			if v := Apply(name, -3); v != 0 {
				t.Errorf("Apply(-3) = %v", v)
			}
			if v := Apply(name, 7); v != 1 {
				t.Errorf("Apply(7) = %v", v)
			}
			if v := Apply(name, 0.5); math.IsNaN(v) {
				t.Error("Apply(0.5) is NaN")
			}
		})
	}
}

func TestApplyShapes(t *testing.T) {
	if v := Apply(EaseOut, 0.5); math.Abs(v-0.875) > 1e-12 {
		t.Errorf("easeOut(0.5) = %v, want 0.875", v)
	}
	if v := Apply(EaseIn, 0.5); math.Abs(v-0.125) > 1e-12 {
		t.Errorf("easeIn(0.5) = %v, want 0.125", v)
	}
	if v := Apply(EaseInOut, 0.5); math.Abs(v-0.5) > 1e-12 {
		t.Errorf("easeInOut(0.5) = %v, want 0.5", v)
	}
	overshoot := false
	for i := 1; i < 100; i++ {
		if Apply(EaseOutBack, float64(i)/100) > 1 {
			overshoot = true
		}
	}
	if !overshoot {
		t.Error("easeOutBack should overshoot 1")
	}
	if Apply("garbled", 0.3) != Apply(EaseOut, 0.3) {
		t.Error("unknown easing should behave like easeOut")
	}
}

func TestExpr(t *testing.T) {
	if got := Expr(Linear, "P"); got != "P" {
		t.Errorf("linear expr = %q", got)
	}
	if got := Expr("unknown", "P"); got != Expr(EaseOut, "P") {
		t.Errorf("unknown expr = %q", got)
	}
	t.Logf("easeOutBack: %s", Expr(EaseOutBack, "P"))
}
