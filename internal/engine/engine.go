// Package engine runs the full pipeline: load, detect, adapt, plan, render
// and convert to GIF.
package engine

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/infographic2gif/internal/adapter"
	"github.com/ivlev/infographic2gif/internal/analyzer"
	"github.com/ivlev/infographic2gif/internal/config"
	"github.com/ivlev/infographic2gif/internal/director"
	"github.com/ivlev/infographic2gif/internal/history"
	applog "github.com/ivlev/infographic2gif/internal/log"
	"github.com/ivlev/infographic2gif/internal/preview"
	"github.com/ivlev/infographic2gif/internal/renderer"
	"github.com/ivlev/infographic2gif/internal/source"
	"github.com/ivlev/infographic2gif/internal/system"
	"github.com/ivlev/infographic2gif/internal/video"
)

// Pipeline stages, in order.
const (
	StageLoad     = "load"
	StageDetect   = "detect"
	StageAdapt    = "adapt"
	StagePlan     = "plan"
	StageWrite    = "write"
	StageLayers   = "layers"
	StageRender   = "render"
	StageGIF      = "gif"
	StageOptimize = "optimize"
)

// StageError tags a pipeline failure with the stage it happened in.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s: %v", e.Stage, e.Err) }

func (e *StageError) Unwrap() error { return e.Err }

func stageErr(stage string, err error) error {
	return &StageError{Stage: stage, Err: err}
}

// StageTiming is how long one stage took.
type StageTiming struct {
	Stage    string
	Duration time.Duration
}

// Result describes the files one run produced.
type Result struct {
	RunID        string
	Input        string
	Plan         *director.Plan
	Strategy     adapter.Strategy
	PlanPath     string
	PlanJSONPath string
	PosterPath   string
	VideoPath    string // empty unless KeepVideo
	GIFPath      string
	GIFSize      int64
	Optimize     video.OptimizeResult
	Timings      []StageTiming
	Total        time.Duration
}

// Project is one configured pipeline. Detector, Encoder, History and Preview
// are optional collaborators; nil History or Preview disables them.
type Project struct {
	Config   *config.Config
	Detector analyzer.Detector
	Encoder  video.Encoder
	History  *history.Store
	Preview  *preview.Server

	// Now is the clock used for plan file names.
	Now func() time.Time
}

// NewProject builds a project with the configured detector and the ffmpeg
// encoder.
func NewProject(cfg *config.Config) (*Project, error) {
	det, err := analyzer.NewDetector(cfg.Detector, cfg.OCRLanguage)
	if err != nil {
		return nil, err
	}
	return &Project{Config: cfg, Detector: det, Encoder: &video.FFmpegEncoder{}, Now: time.Now}, nil
}

// Run executes the pipeline for Config.InputPath.
func (p *Project) Run(ctx context.Context) (res *Result, err error) {
	cfg := p.Config
	start := time.Now()
	res = &Result{RunID: uuid.NewString(), Input: cfg.InputPath}
	l := applog.WithOperation(applog.WithComponent("engine"), "run").With(
		slog.String("run_id", res.RunID),
		slog.String("input", cfg.InputPath),
	)

	defer func() {
		res.Total = time.Since(start)
		p.record(ctx, res, err)
		if err != nil {
			l.Error("run failed", slog.Any("err", err))
		}
	}()

	step := func(stage string, fn func() error) error {
		t := time.Now()
		if err := ctx.Err(); err != nil {
			return stageErr(stage, err)
		}
		if err := fn(); err != nil {
			return stageErr(stage, err)
		}
		res.Timings = append(res.Timings, StageTiming{Stage: stage, Duration: time.Since(t)})
		l.Debug("stage done", slog.String("stage", stage), slog.Duration("took", time.Since(t)))
		return nil
	}

	var img image.Image
	if err = step(StageLoad, func() error {
		img, err = source.Load(cfg.InputPath, cfg.DPI)
		return err
	}); err != nil {
		return res, err
	}

	var raw []analyzer.Element
	if err = step(StageDetect, func() error {
		raw = p.detect(img, l)
		return nil
	}); err != nil {
		return res, err
	}

	var adapted adapter.Result
	if err = step(StageAdapt, func() error {
		target, err := adapter.Lookup(cfg.Ratio)
		if err != nil {
			return err
		}
		adapted = adapter.Adapt(img, raw, target)
		res.Strategy = adapted.Strategy
		return nil
	}); err != nil {
		return res, err
	}

	if err = step(StagePlan, func() error {
		plan, err := BuildPlan(adapted.Elements, analyzer.MetaOf(adapted.Image), cfg.Plan)
		if err != nil {
			return err
		}
		plan.RunID, plan.Source = res.RunID, filepath.Base(cfg.InputPath)
		res.Plan = plan
		return nil
	}); err != nil {
		return res, err
	}
	l.Info("plan ready",
		slog.String("strategy", string(res.Strategy)),
		slog.String("summary", analyzer.Summarize(res.Plan.Elements)),
		slog.Int("curves", len(res.Plan.Curves)))

	runDir := p.runDir()
	if err = step(StageWrite, func() error {
		return p.writeArtifacts(res, adapted.Image, runDir)
	}); err != nil {
		return res, err
	}
	if cfg.PlanOnly {
		return res, nil
	}

	// Слои кладём во временную директорию, если промежуточные файлы не нужны
	work := filepath.Join(runDir, "layers")
	if !cfg.KeepVideo {
		tmp, err := os.MkdirTemp("", "infographic2gif_")
		if err != nil {
			return res, stageErr(StageLayers, err)
		}
		defer os.RemoveAll(tmp)
		work = tmp
	}

	var layers renderer.Layers
	if err = step(StageLayers, func() error {
		layers, err = renderer.ExtractLayers(ctx, adapted.Image, res.Plan, work)
		return err
	}); err != nil {
		return res, err
	}

	mp4 := filepath.Join(work, "render.mp4")
	if cfg.KeepVideo {
		mp4 = filepath.Join(runDir, p.baseName()+".mp4")
		res.VideoPath = mp4
	}
	if err = step(StageRender, func() error {
		return p.Encoder.Render(ctx, video.RenderParams{
			Inputs:      layers.Inputs(),
			FilterGraph: renderer.BuildFilterGraph(res.Plan, layers),
			OutputLabel: renderer.OutputLabel,
			FPS:         res.Plan.FPS,
			Duration:    res.Plan.DurationSeconds,
		}, mp4)
	}); err != nil {
		return res, err
	}

	res.GIFPath = filepath.Join(runDir, p.baseName()+".gif")
	if err = step(StageGIF, func() error {
		return p.Encoder.ToGIF(ctx, mp4, res.GIFPath, video.GIFParams{FPS: res.Plan.FPS})
	}); err != nil {
		return res, err
	}

	if err = step(StageOptimize, func() error {
		res.Optimize, err = p.Encoder.Optimize(ctx, res.GIFPath, cfg.TargetGIFMB)
		return err
	}); err != nil {
		return res, err
	}
	res.GIFSize = res.Optimize.SizeAfter

	if p.Preview != nil {
		if err := p.Preview.Publish(res.GIFPath, res.Plan); err != nil {
			l.Warn("preview publish failed", slog.Any("err", err))
		}
	}

	l.Info("run finished", slog.String("gif", res.GIFPath), slog.Int64("bytes", res.GIFSize))
	return res, nil
}

// detect runs the detector. A failing detector degrades to no elements so
// the classifier's full-image fallback takes over.
func (p *Project) detect(img image.Image, l *slog.Logger) []analyzer.Element {
	if p.Detector == nil {
		return nil
	}
	els, err := p.Detector.Detect(img)
	if err != nil {
		l.Warn("detection failed, using fallback element", slog.Any("err", err))
		return nil
	}
	return els
}

func (p *Project) writeArtifacts(res *Result, canvas image.Image, runDir string) error {
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return err
	}
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}

	res.PlanPath = director.GeneratePlanPath(runDir, now())
	if err := director.WritePlan(res.Plan, res.PlanPath); err != nil {
		return err
	}
	res.PlanJSONPath = strings.TrimSuffix(res.PlanPath, ".yaml") + ".json"
	if err := director.WritePlanJSON(res.Plan, res.PlanJSONPath); err != nil {
		return err
	}

	// Постер: последний кадр, когда всё уже на своих местах
	res.PosterPath = filepath.Join(runDir, "poster.png")
	poster := renderer.RenderFrame(canvas, res.Plan, max(res.Plan.TotalFrames()-1, 0))
	return renderer.WritePNG(res.PosterPath, poster)
}

func (p *Project) baseName() string {
	base := filepath.Base(p.Config.InputPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (p *Project) runDir() string {
	return filepath.Join(p.Config.OutputDir, p.baseName())
}

func (p *Project) record(ctx context.Context, res *Result, runErr error) {
	if p.History == nil {
		return
	}
	r := history.Run{
		ID:        res.RunID,
		Input:     res.Input,
		Mode:      p.Config.Plan.Normalized().Mode,
		Ratio:     p.Config.Ratio,
		Output:    res.GIFPath,
		PlanPath:  res.PlanPath,
		SizeBytes: res.GIFSize,
		Duration:  res.Total,
		Status:    "ok",
	}
	if res.Plan != nil {
		r.Elements = len(res.Plan.Elements)
	}
	if runErr != nil {
		r.Status, r.Error = "failed", runErr.Error()
	}
	// Отменённый прогон тоже записываем в историю
	if err := p.History.Record(context.WithoutCancel(ctx), r); err != nil {
		applog.WithComponent("engine").Warn("history record failed", slog.Any("err", err))
	}
}

// RunBatch runs every input with bounded parallelism. Worker count comes from
// cfg.Workers or, when zero, from the machine. A failed input does not stop
// the others; all failures are joined into the returned error. template
// supplies the shared collaborators (detector, encoder, history, preview).
func RunBatch(ctx context.Context, cfg *config.Config, inputs []string, template *Project) ([]*Result, error) {
	workers := cfg.Workers
	if workers <= 0 {
		workers = system.RecommendedWorkers()
	}
	l := applog.WithOperation(applog.WithComponent("engine"), "batch")
	l.Info("batch started", slog.Int("inputs", len(inputs)), slog.Int("workers", workers))

	results := make([]*Result, len(inputs))
	var (
		mu   sync.Mutex
		errs []error
	)

	var g errgroup.Group
	g.SetLimit(workers)
	for i, in := range inputs {
		i, in := i, in
		g.Go(func() error {
			c := *cfg
			c.InputPath = in
			p := &Project{Config: &c, Now: time.Now}
			if template != nil {
				p.Detector, p.Encoder = template.Detector, template.Encoder
				p.History, p.Preview = template.History, template.Preview
				if template.Now != nil {
					p.Now = template.Now
				}
			}
			if p.Encoder == nil {
				p.Encoder = &video.FFmpegEncoder{}
			}
			res, err := p.Run(ctx)
			results[i] = res
			if err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", in, err))
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	l.Info("batch finished", slog.Int("inputs", len(inputs)), slog.Int("failed", len(errs)))
	return results, errors.Join(errs...)
}
