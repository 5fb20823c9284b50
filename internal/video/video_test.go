package video

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuildRenderArgs(t *testing.T) {
	e := &FFmpegEncoder{}
	args := e.buildRenderArgs(RenderParams{
		Inputs:      []string{"plate.png", "layer_001.png"},
		FilterGraph: "[0:v]null[vout]",
		OutputLabel: "vout",
		FPS:         30,
		Duration:    10,
		Encoder:     "libx264",
	}, "out.mp4")
	joined := strings.Join(args, " ")
	t.Logf("args: %s", joined)

	if strings.Count(joined, "-loop 1 -framerate 30 -t 10.000 -i") != 2 {
		t.Errorf("every input should loop for the full duration: %s", joined)
	}
	for _, want := range []string{"-map [vout]", "-frames:v 300", "-crf 18", "-c:v libx264"} {
		if !strings.Contains(joined, want) {
			t.Errorf("args missing %q", want)
		}
	}
	if args[len(args)-1] != "out.mp4" {
		t.Errorf("output must be last, got %s", args[len(args)-1])
	}
}

func TestEncoderQualityFlags(t *testing.T) {
	e := &FFmpegEncoder{}
	tests := []struct {
		encoder string
		want    string
	}{
		{"h264_videotoolbox", "-b:v 2000k"},
		{"h264_nvenc", "-cq 20"},
		{"libx264", "-crf 20 -preset medium"},
	}
	for _, tt := range tests {
		t.Run(tt.encoder, func(t *testing.T) {
			args := e.buildRenderArgs(RenderParams{FPS: 10, Duration: 1, Encoder: tt.encoder, Quality: 20}, "x.mp4")
			if !strings.Contains(strings.Join(args, " "), tt.want) {
				t.Errorf("args %v missing %q", args, tt.want)
			}
		})
	}
}

func TestGIFArgs(t *testing.T) {
	joined := strings.Join(gifArgs("in.mp4", "out.gif", 15, 540, 128), " ")
	for _, want := range []string{"fps=15", "scale=540:-1", "palettegen=max_colors=128", "paletteuse", "-loop 0"} {
		if !strings.Contains(joined, want) {
			t.Errorf("gif args missing %q: %s", want, joined)
		}
	}
}

func TestReencodeSettings(t *testing.T) {
	tests := []struct {
		target       float64
		colors, fps int
	}{
		{5, 100, 20},
		{1, 32, 10},
		{20, 256, 80},
	}
	for _, tt := range tests {
		c, f := ReencodeSettings(tt.target)
		if c != tt.colors || f != tt.fps {
			t.Errorf("ReencodeSettings(%v) = %d,%d want %d,%d", tt.target, c, f, tt.colors, tt.fps)
		}
	}
}

func TestOptimizeUnderTarget(t *testing.T) {
	path := filepath.Join(t.TempDir(), "small.gif")
	if err := os.WriteFile(path, []byte("GIF89a"), 0644); err != nil {
		t.Fatal(err)
	}
	res, err := (&FFmpegEncoder{}).Optimize(context.Background(), path, 5)
	if err != nil {
		t.Fatal(err)
	}
	if res.Method != "none" || res.SizeAfter != 6 {
		t.Errorf("result = %+v", res)
	}
}

func TestRenderWithoutFFmpeg(t *testing.T) {
	if _, err := exec.LookPath("ffmpeg"); err == nil {
		t.Skip("ffmpeg is installed")
	}
	err := (&FFmpegEncoder{}).Render(context.Background(), RenderParams{FPS: 10, Duration: 1}, "x.mp4")
	if !errors.Is(err, ErrToolMissing) {
		t.Errorf("expected ErrToolMissing, got %v", err)
	}
}
