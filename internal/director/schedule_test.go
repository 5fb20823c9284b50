package director

import (
	"testing"

	"github.com/ivlev/infographic2gif/internal/analyzer"
)

func TestScheduleStatsStagger(t *testing.T) {
	windows := Schedule(els(analyzer.RoleStat, analyzer.RoleStat, analyzer.RoleStat), 10)

	want := []TimingWindow{{1.5, 3.5}, {1.8, 3.8}, {2.1, 4.1}}
	for i, w := range want {
		got := windows[i+1]
		if !approx(got.Start, w.Start) || !approx(got.End, w.End) {
			t.Errorf("stat %d: got %+v, want %+v", i+1, got, w)
		}
	}
}

func TestScheduleRolePolicy(t *testing.T) {
	elements := els(
		analyzer.RoleBackground,
		analyzer.RoleTitle,
		analyzer.RoleTitle,
		analyzer.RoleBody,
		analyzer.RoleBody,
		analyzer.RoleStat,
		analyzer.RoleCTA,
	)
	windows := Schedule(elements, 10)

	tests := []struct {
		id   int
		want TimingWindow
	}{
		{1, TimingWindow{0, 10}},
		{2, TimingWindow{0, 2}},
		{3, TimingWindow{0, 2}},
		{4, TimingWindow{3, 5}},
		{5, TimingWindow{3.5, 5.5}},
		{6, TimingWindow{1.5, 3.5}},
		{7, TimingWindow{8, 10}},
	}
	for _, tt := range tests {
		got := windows[tt.id]
		if !approx(got.Start, tt.want.Start) || !approx(got.End, tt.want.End) {
			t.Errorf("element %d (%s): got %+v, want %+v", tt.id, elements[tt.id-1].Role, got, tt.want)
		}
	}
}

func TestScheduleBodyCap(t *testing.T) {
	roles := make([]analyzer.Role, 12)
	for i := range roles {
		roles[i] = analyzer.RoleBody
	}
	windows := Schedule(els(roles...), 10)

	if w := windows[4]; !approx(w.Start, 4.5) || !approx(w.End, 6.5) {
		t.Errorf("body 4: %+v", w)
	}
	if w := windows[5]; !approx(w.Start, 5) || !approx(w.End, 7) {
		t.Errorf("body 5: %+v", w)
	}
	if w := windows[6]; !approx(w.End, 7) {
		t.Errorf("body 6 should be capped at 7s: %+v", w)
	}
	for id, w := range windows {
		if w.Start < 0 || w.End < w.Start || w.End > 7 {
			t.Errorf("body %d window out of bounds: %+v", id, w)
		}
	}
}

func TestScheduleNonNegativity(t *testing.T) {
	all := []analyzer.Role{analyzer.RoleTitle, analyzer.RoleStat, analyzer.RoleBody, analyzer.RoleCTA, analyzer.RoleBackground}
	var roles []analyzer.Role
	for i := 0; i < 30; i++ {
		roles = append(roles, all[i%len(all)])
	}
	elements := els(roles...)

	for _, total := range []float64{10, 5, 1.5, 20, 0, -4} {
		windows := Schedule(elements, total)
		limit := total
		if limit <= 0 {
			limit = 10
		}
		if len(windows) != len(elements) {
			t.Fatalf("total %v: %d windows for %d elements", total, len(windows), len(elements))
		}
		for _, el := range elements {
			w := windows[el.ID]
			if w.Start < 0 || w.End < w.Start {
				t.Errorf("total %v element %d: invalid window %+v", total, el.ID, w)
			}
			if w.End > limit+eps {
				t.Errorf("total %v element %d (%s): end %v beyond duration", total, el.ID, el.Role, w.End)
			}
		}
	}
}

func TestScheduleDeterministic(t *testing.T) {
	elements := els(analyzer.RoleStat, analyzer.RoleBody, analyzer.RoleStat, analyzer.RoleCTA)
	shuffled := []analyzer.Element{elements[3], elements[1], elements[2], elements[0]}

	a := Schedule(elements, 10)
	b := Schedule(shuffled, 10)
	for id, w := range a {
		if b[id] != w {
			t.Errorf("element %d: %+v vs %+v", id, w, b[id])
		}
	}
}
