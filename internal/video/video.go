// Package video drives ffmpeg and gifsicle: layered render to MP4, palette
// GIF conversion and size optimisation.
package video

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"

	applog "github.com/ivlev/infographic2gif/internal/log"
	"github.com/ivlev/infographic2gif/internal/system"
)

// ErrToolMissing is returned when ffmpeg (or another required binary) is
// not installed.
var ErrToolMissing = system.ErrToolMissing

// RenderParams describes one layered render.
type RenderParams struct {
	Inputs      []string // plate first, then element layers
	FilterGraph string
	OutputLabel string
	FPS         int
	Duration    float64
	Encoder     string // empty picks the best available
	Quality     int
}

// GIFParams controls MP4 to GIF conversion.
type GIFParams struct {
	FPS   int
	Width int // 0 keeps the video width
}

// Encoder renders plans to video and GIF.
type Encoder interface {
	Render(ctx context.Context, p RenderParams, mp4Path string) error
	ToGIF(ctx context.Context, mp4Path, gifPath string, p GIFParams) error
	Optimize(ctx context.Context, gifPath string, targetMB float64) (OptimizeResult, error)
}

// OptimizeResult reports what Optimize did.
type OptimizeResult struct {
	Method     string // "none", "gifsicle" or "ffmpeg"
	SizeBefore int64
	SizeAfter  int64
}

// FFmpegEncoder shells out to ffmpeg and, for optimisation, gifsicle.
type FFmpegEncoder struct{}

func (e *FFmpegEncoder) Render(ctx context.Context, p RenderParams, mp4Path string) error {
	if err := system.CheckTool("ffmpeg"); err != nil {
		return err
	}
	for _, f := range []string{"geq", "rotate"} {
		if strings.Contains(p.FilterGraph, f+"=") && !system.CheckFilterSupport(ctx, f) {
			return fmt.Errorf("%w: ffmpeg filter %s", ErrToolMissing, f)
		}
	}
	if p.Encoder == "" {
		p.Encoder = system.BestH264Encoder(ctx)
	}
	if err := run(ctx, "ffmpeg", e.buildRenderArgs(p, mp4Path)); err != nil {
		return err
	}

	// Проверка длительности только предупреждает: ffprobe может отсутствовать
	if system.CheckTool("ffprobe") == nil {
		if got, err := system.MediaDuration(ctx, mp4Path); err == nil && math.Abs(got-p.Duration) > 1/float64(max(p.FPS, 1)) {
			applog.WithOperation(applog.WithComponent("video"), "render").Warn("rendered duration differs",
				slog.Float64("want", p.Duration), slog.Float64("got", got))
		}
	}
	return nil
}

func (e *FFmpegEncoder) buildRenderArgs(p RenderParams, mp4Path string) []string {
	fps := strconv.Itoa(p.FPS)
	dur := strconv.FormatFloat(p.Duration, 'f', 3, 64)
	frames := int(p.Duration*float64(p.FPS) + 1e-9)

	args := []string{"-y", "-hide_banner", "-loglevel", "error"}
	// Каждый слой подаётся как зацикленная картинка на всю длительность
	for _, in := range p.Inputs {
		args = append(args, "-loop", "1", "-framerate", fps, "-t", dur, "-i", in)
	}
	label := p.OutputLabel
	if label == "" {
		label = "vout"
	}
	args = append(args,
		"-filter_complex", p.FilterGraph,
		"-map", "["+label+"]",
		"-frames:v", strconv.Itoa(frames),
		"-r", fps,
		"-pix_fmt", "yuv420p",
		"-c:v", p.Encoder,
	)

	quality := p.Quality
	if quality <= 0 {
		quality = 18
	}
	switch p.Encoder {
	case "h264_videotoolbox":
		args = append(args, "-b:v", fmt.Sprintf("%dk", quality*100))
	case "h264_nvenc":
		args = append(args, "-cq", strconv.Itoa(quality))
	default: // libx264, стандартный CRF
		args = append(args, "-crf", strconv.Itoa(quality), "-preset", "medium")
	}
	return append(args, mp4Path)
}

func (e *FFmpegEncoder) ToGIF(ctx context.Context, mp4Path, gifPath string, p GIFParams) error {
	if err := system.CheckTool("ffmpeg"); err != nil {
		return err
	}
	return run(ctx, "ffmpeg", gifArgs(mp4Path, gifPath, p.FPS, p.Width, 256))
}

func gifArgs(in, out string, fps, width, colors int) []string {
	scale := "scale=iw:-1:flags=lanczos"
	if width > 0 {
		scale = fmt.Sprintf("scale=%d:-1:flags=lanczos", width)
	}
	graph := fmt.Sprintf("[0:v]fps=%d,%s,split[a][b];[a]palettegen=max_colors=%d:stats_mode=diff[p];[b][p]paletteuse=dither=bayer:bayer_scale=5:diff_mode=rectangle",
		fps, scale, colors)
	return []string{"-y", "-hide_banner", "-loglevel", "error", "-i", in, "-filter_complex", graph, "-loop", "0", out}
}

// Optimize shrinks gifPath in place when it is larger than targetMB, with
// gifsicle when installed and an ffmpeg re-encode otherwise.
func (e *FFmpegEncoder) Optimize(ctx context.Context, gifPath string, targetMB float64) (OptimizeResult, error) {
	l := applog.WithOperation(applog.WithComponent("video"), "optimize")
	fi, err := os.Stat(gifPath)
	if err != nil {
		return OptimizeResult{}, err
	}
	res := OptimizeResult{Method: "none", SizeBefore: fi.Size(), SizeAfter: fi.Size()}
	if targetMB <= 0 || float64(fi.Size()) <= targetMB*1024*1024 {
		return res, nil
	}

	// Пишем во временный файл и подменяем оригинал только при успехе
	tmp := gifPath + ".opt.gif"
	defer os.Remove(tmp)

	if system.CheckTool("gifsicle") == nil {
		res.Method = "gifsicle"
		err = run(ctx, "gifsicle", []string{"-O3", "--lossy=80", "-o", tmp, gifPath})
	} else {
		if err := system.CheckTool("ffmpeg"); err != nil {
			return res, err
		}
		res.Method = "ffmpeg"
		colors, fps := ReencodeSettings(targetMB)
		err = run(ctx, "ffmpeg", gifArgs(gifPath, tmp, fps, 0, colors))
	}
	if err != nil {
		return res, err
	}

	if err := os.Rename(tmp, gifPath); err != nil {
		return res, err
	}
	if fi, err = os.Stat(gifPath); err == nil {
		res.SizeAfter = fi.Size()
	}
	l.Info("gif optimized",
		slog.String("method", res.Method),
		slog.Int64("before", res.SizeBefore),
		slog.Int64("after", res.SizeAfter))
	return res, nil
}

// ReencodeSettings уменьшает палитру и частоту кадров ради размера файла.
func ReencodeSettings(targetMB float64) (colors, fps int) {
	colors = min(max(32, int(targetMB*20)), 256)
	fps = max(10, int(targetMB*4))
	return colors, fps
}

func run(ctx context.Context, name string, args []string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, lastLine(out))
	}
	return nil
}

func lastLine(out []byte) string {
	end := len(out)
	for end > 0 && (out[end-1] == '\n' || out[end-1] == '\r') {
		end--
	}
	start := end
	for start > 0 && out[start-1] != '\n' {
		start--
	}
	return string(out[start:end])
}
