package system

import (
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestRecommendedWorkers(t *testing.T) {
	if n := RecommendedWorkers(); n < 1 {
		t.Errorf("RecommendedWorkers() = %d", n)
	}
}

func TestListAndFindInputs(t *testing.T) {
	dir := t.TempDir()
	names := []string{"b.png", "a.JPG", "notes.txt", "poster.pdf"}
	base := time.Now().Add(-time.Hour)
	for i, n := range names {
		p := filepath.Join(dir, n)
		if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		mod := base.Add(time.Duration(i) * time.Minute)
		if err := os.Chtimes(p, mod, mod); err != nil {
			t.Fatal(err)
		}
	}

	inputs, err := ListInputs(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(inputs) != 3 || filepath.Base(inputs[0]) != "a.JPG" {
		t.Errorf("ListInputs = %v", inputs)
	}

	latest, err := FindLatestInput(dir)
	if err != nil {
		t.Fatal(err)
	}
	if filepath.Base(latest) != "poster.pdf" {
		t.Errorf("FindLatestInput = %s", latest)
	}

	file := filepath.Join(dir, "b.png")
	if got, _ := FindLatestInput(file); got != file {
		t.Errorf("a file path should be returned unchanged, got %s", got)
	}
	if _, err := FindLatestInput(t.TempDir()); err == nil {
		t.Error("expected error for an empty directory")
	}
}

func TestCheckTool(t *testing.T) {
	if err := CheckTool("definitely-not-a-real-binary-42"); !errors.Is(err, ErrToolMissing) {
		t.Errorf("expected ErrToolMissing, got %v", err)
	}
}

func TestImagePool(t *testing.T) {
	p := NewImagePool()
	r := image.Rect(0, 0, 8, 4)
	img := p.Get(r)
	if img.Rect != r {
		t.Fatalf("bounds = %v", img.Rect)
	}
	p.Put(img)
	p.Put(nil)
	p.Put(image.NewRGBA(image.Rect(0, 0, 1, 1)))
	if again := p.Get(r); again.Rect != r {
		t.Errorf("bounds after reuse = %v", again.Rect)
	}
}
