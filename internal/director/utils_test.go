package director

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ivlev/infographic2gif/internal/analyzer"
)

func TestGeneratePlanPath(t *testing.T) {
	at := time.Date(2026, 2, 13, 1, 2, 3, 0, time.UTC)
	got := GeneratePlanPath("output", at)
	want := filepath.Join("output", "plan_2026-02-13_01-02-03.yaml")
	if got != want {
		t.Errorf("GeneratePlanPath = %s, want %s", got, want)
	}
}

func TestFindLatestPlan(t *testing.T) {
	dir := t.TempDir()
	files := []string{
		"plan_2026-02-12_10-00-00.yaml",
		"plan_2026-02-13_01-00-00.yaml",
		"plan_2026-02-11_15-30-00.yaml",
	}
	base := time.Now().Add(-time.Hour)
	for i, name := range files {
		p := filepath.Join(dir, name)
		if err := os.WriteFile(p, []byte("version: \"1.0\"\n"), 0644); err != nil {
			t.Fatal(err)
		}
		mod := base.Add(time.Duration(i) * time.Minute)
		if err := os.Chtimes(p, mod, mod); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.yaml"), nil, 0644); err != nil {
		t.Fatal(err)
	}

	latest, err := FindLatestPlan(dir)
	if err != nil {
		t.Fatalf("FindLatestPlan: %v", err)
	}
	if filepath.Base(latest) != files[2] {
		t.Errorf("latest = %s, want %s", latest, files[2])
	}

	if _, err := FindLatestPlan(t.TempDir()); err == nil {
		t.Error("expected error for a directory without plans")
	}
}

func samplePlan() *Plan {
	mid := 75
	return &Plan{
		Version:         PlanVersion,
		RunID:           "run-1",
		Mode:            "auto",
		Width:           1080,
		Height:          1080,
		DurationSeconds: 10,
		FPS:             30,
		Elements: []analyzer.Element{
			{ID: 1, Kind: analyzer.KindText, Content: "Q3 Results", Role: analyzer.RoleTitle, Confidence: 0.9, Position: analyzer.Rect{X: 10, Y: 10, Width: 300, Height: 60}},
		},
		Directives: []Directive{newDirective(1, KindPulse, TimingWindow{Start: 2, End: 3})},
		Curves: []Curve{
			{ElementID: 1, Property: PropScale, StartFrame: 60, EndFrame: 75, From: 1, To: 1.05, Easing: "easeInOut", Looping: true, LoopMidFrame: &mid},
			{ElementID: 1, Property: PropScale, StartFrame: 75, EndFrame: 90, From: 1.05, To: 1, Easing: "easeInOut", Looping: true, LoopMidFrame: &mid},
		},
	}
}

func TestWriteReadPlan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	plan := samplePlan()
	if err := WritePlan(plan, path); err != nil {
		t.Fatalf("WritePlan: %v", err)
	}
	got, err := ReadPlan(path)
	if err != nil {
		t.Fatalf("ReadPlan: %v", err)
	}
	if got.TotalFrames() != 300 || len(got.Curves) != 2 || *got.Curves[1].LoopMidFrame != 75 {
		t.Errorf("plan lost data: %+v", got)
	}
	if got.Directives[0].Transform[0].LoopTo == nil {
		t.Error("loop target lost")
	}
}

func TestPlanJSONSchema(t *testing.T) {
	plan := samplePlan()
	data, err := MarshalPlanJSON(plan)
	if err != nil {
		t.Fatalf("valid plan rejected: %v", err)
	}
	if !strings.Contains(string(data), `"isLooping": true`) {
		t.Errorf("unexpected json: %s", data)
	}

	bad := samplePlan()
	bad.Curves[0].StartFrame = -1
	bad.Elements[0].Role = "hero"
	_, err = MarshalPlanJSON(bad)
	if !errors.Is(err, ErrInvalidPlan) {
		t.Fatalf("expected ErrInvalidPlan, got %v", err)
	}
	t.Logf("schema errors: %v", err)

	path := filepath.Join(t.TempDir(), "plan.json")
	if err := WritePlanJSON(plan, path); err != nil {
		t.Fatalf("WritePlanJSON: %v", err)
	}
}
