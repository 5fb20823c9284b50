package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/ivlev/infographic2gif/internal/adapter"
	"github.com/ivlev/infographic2gif/internal/analyzer"
	"github.com/ivlev/infographic2gif/internal/config"
	"github.com/ivlev/infographic2gif/internal/director"
	"github.com/ivlev/infographic2gif/internal/engine"
	"github.com/ivlev/infographic2gif/internal/history"
	applog "github.com/ivlev/infographic2gif/internal/log"
	"github.com/ivlev/infographic2gif/internal/preview"
	"github.com/ivlev/infographic2gif/internal/system"
)

func main() {
	system.InitResourceLimits()

	configPtr := flag.String("config", "", "YAML config file (optional)")
	inputPtr := flag.String("input", "", "Image, PDF or directory (default: newest file in input/images)")
	outputPtr := flag.String("output", "", "Output directory")
	ratioPtr := flag.String("ratio", "", "Canvas: 1:1, 16:9, 9:16, 4:5")
	modePtr := flag.String("mode", "", "Planning mode: auto or custom")
	instrPtr := flag.String("instructions", "", "Animation instructions for custom mode, e.g. \"zoom in element 2 slowly, fade in element 1\"")
	durationPtr := flag.Float64("duration", 0, "Animation length in seconds")
	fpsPtr := flag.Int("fps", 0, "Frames per second")
	detectorPtr := flag.String("detector", "", "Element detector: ocr or contrast")
	langPtr := flag.String("lang", "", "OCR language")
	dpiPtr := flag.Int("dpi", 0, "PDF rasterisation DPI")
	targetPtr := flag.Float64("target-mb", 0, "GIF size target in MB (0 disables optimisation)")
	keepPtr := flag.Bool("keep-video", false, "Keep the intermediate MP4 and layers")
	planOnlyPtr := flag.Bool("plan-only", false, "Write the plan and poster, skip rendering")
	batchPtr := flag.Bool("batch", false, "Process every supported file in the -input directory")
	workersPtr := flag.Int("workers", 0, "Parallel runs in batch mode (0 = auto)")
	previewPtr := flag.Bool("preview", false, "Serve the result on a local preview server until interrupted")
	previewAddrPtr := flag.String("preview-addr", "", "Preview server address")
	historyPtr := flag.Bool("history", false, "Print recent runs and exit")
	historyPathPtr := flag.String("history-path", "", "Run history database")
	analyzePtr := flag.Bool("analyze", false, "Print the element table")
	statsPtr := flag.Bool("stats", false, "Print a stage timing report")
	logLevelPtr := flag.String("log-level", "", "Log level: debug, info, warn, error")
	listRatiosPtr := flag.Bool("list-ratios", false, "Print the canvas presets and exit")
	showPlanPtr := flag.String("show-plan", "", "Print the newest plan in a run directory and exit")

	flag.Parse()

	cfg, err := config.Load(*configPtr)
	if err != nil {
		log.Fatalf("[-] Config error: %v", err)
	}

	// Флаги важнее файла и окружения, но только если заданы явно
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			cfg.InputPath = *inputPtr
		case "output":
			cfg.OutputDir = *outputPtr
		case "ratio":
			cfg.Ratio = *ratioPtr
		case "mode":
			cfg.Plan.Mode = *modePtr
		case "instructions":
			cfg.Plan.Instructions = *instrPtr
		case "duration":
			cfg.Plan.TotalDuration = *durationPtr
		case "fps":
			cfg.Plan.FPS = *fpsPtr
		case "detector":
			cfg.Detector = *detectorPtr
		case "lang":
			cfg.OCRLanguage = *langPtr
		case "dpi":
			cfg.DPI = *dpiPtr
		case "target-mb":
			cfg.TargetGIFMB = *targetPtr
		case "keep-video":
			cfg.KeepVideo = *keepPtr
		case "plan-only":
			cfg.PlanOnly = *planOnlyPtr
		case "workers":
			cfg.Workers = *workersPtr
		case "preview-addr":
			cfg.PreviewAddr = *previewAddrPtr
		case "history-path":
			cfg.HistoryPath = *historyPathPtr
		case "log-level":
			cfg.Log.Level = *logLevelPtr
		}
	})
	// Инструкция без явного режима включает режим custom
	if *instrPtr != "" && *modePtr == "" {
		cfg.Plan.Mode = config.ModeCustom
	}

	applog.Init(cfg.Log)
	defer applog.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if *listRatiosPtr {
		for _, r := range adapter.Presets() {
			fmt.Println(r.Describe())
		}
		return
	}
	if *showPlanPtr != "" {
		if err := printPlan(*showPlanPtr); err != nil {
			log.Fatalf("[-] Plan error: %v", err)
		}
		return
	}

	if *historyPtr {
		if err := printHistory(ctx, cfg.HistoryPath); err != nil {
			log.Fatalf("[-] History error: %v", err)
		}
		return
	}

	if err := cfg.Validate(); err != nil {
		log.Fatalf("[-] Invalid configuration: %v", err)
	}

	inputs, err := resolveInputs(cfg.InputPath, *batchPtr)
	if err != nil {
		log.Fatalf("[-] Error: %v. Put an image or PDF into %s", err, cfg.InputPath)
	}

	// Без ffmpeg рендер невозможен, проверяем заранее
	if !cfg.PlanOnly {
		for _, tool := range []string{"ffmpeg"} {
			if err := system.CheckTool(tool); err != nil {
				log.Fatalf("[-] %v", err)
			}
		}
		if system.CheckTool("gifsicle") != nil {
			fmt.Println("[!] gifsicle not found, GIF optimisation falls back to ffmpeg")
		}
	}

	project, err := engine.NewProject(&cfg)
	if err != nil {
		log.Fatalf("[-] %v", err)
	}

	if cfg.HistoryPath != "" {
		store, err := history.Open(cfg.HistoryPath)
		if err != nil {
			fmt.Printf("[!] Run history disabled: %v\n", err)
		} else {
			defer store.Close()
			project.History = store
		}
	}

	if *previewPtr {
		srv := preview.New(cfg.PreviewAddr, cfg.OutputDir)
		url, err := srv.Start()
		if err != nil {
			log.Fatalf("[-] Preview server: %v", err)
		}
		defer func() {
			sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			srv.Shutdown(sctx)
		}()
		project.Preview = srv
		fmt.Printf("[*] Preview: %s\n", url)
	}

	target, _ := adapter.Lookup(cfg.Ratio)
	fmt.Println("--- [INFOGRAPHIC2GIF] ---")
	fmt.Printf("[*] Inputs: %d | Canvas: %s | Mode: %s\n", len(inputs), target.Describe(), cfg.Plan.Normalized().Mode)
	fmt.Printf("[*] Duration: %.1fs @ %d FPS | Detector: %s\n", cfg.Plan.Normalized().TotalDuration, cfg.Plan.Normalized().FPS, cfg.Detector)
	fmt.Println("-------------------------")

	var results []*engine.Result
	if len(inputs) == 1 {
		project.Config.InputPath = inputs[0]
		res, err := project.Run(ctx)
		results = append(results, res)
		if err != nil {
			log.Fatalf("[-] Run failed: %v", err)
		}
	} else {
		results, err = engine.RunBatch(ctx, &cfg, inputs, project)
		if err != nil {
			fmt.Printf("[!] Some inputs failed:\n%v\n", err)
		}
	}

	for _, res := range results {
		if res == nil || res.Plan == nil {
			continue
		}
		report(res, *analyzePtr, *statsPtr)
	}

	if *previewPtr {
		fmt.Println("[*] Preview running, press Ctrl+C to stop")
		<-ctx.Done()
	}
}

func resolveInputs(path string, batch bool) ([]string, error) {
	if batch {
		inputs, err := system.ListInputs(path)
		if err != nil {
			return nil, err
		}
		if len(inputs) == 0 {
			return nil, fmt.Errorf("no images or PDFs found in %s", path)
		}
		return inputs, nil
	}
	latest, err := system.FindLatestInput(path)
	if err != nil {
		return nil, err
	}
	if latest != path {
		fmt.Printf("[*] Selected file: %s\n", latest)
	}
	return []string{latest}, nil
}

func report(res *engine.Result, analyze, stats bool) {
	plan := res.Plan
	fmt.Printf("[*] %s: %s (%s)\n", filepath.Base(res.Input), analyzer.Summarize(plan.Elements), res.Strategy)
	if analyze {
		fmt.Print(analyzer.FormatAnalysis(plan.Elements, analyzer.ImageMeta{Width: plan.Width, Height: plan.Height}))
	}
	fmt.Printf("[+] Plan: %s\n", res.PlanPath)
	if res.GIFPath != "" {
		fmt.Printf("[+++] Success! GIF: %s (%.2f MB, %s)\n", res.GIFPath, float64(res.GIFSize)/(1024*1024), res.Optimize.Method)
	} else {
		fmt.Printf("[+] Poster: %s\n", res.PosterPath)
	}

	if !stats {
		return
	}
	var b strings.Builder
	b.WriteString("--- [PERFORMANCE REPORT] ---\n")
	for _, st := range res.Timings {
		fmt.Fprintf(&b, "%-10s %8.2fs\n", st.Stage, st.Duration.Seconds())
	}
	fmt.Fprintf(&b, "%-10s %8.2fs\n", "total", res.Total.Seconds())
	if used, total, err := system.MemoryStats(); err == nil {
		fmt.Fprintf(&b, "memory     %d/%d MB\n", used, total)
	}
	b.WriteString("----------------------------\n")
	fmt.Print(b.String())
}

func printHistory(ctx context.Context, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		fmt.Println("[*] No runs recorded yet")
		return nil
	}
	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Recent(ctx, 20)
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STARTED\tINPUT\tMODE\tRATIO\tSTATUS\tSIZE\tTOOK")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%.2f MB\t%s\n",
			r.StartedAt.Local().Format("2006-01-02 15:04"), filepath.Base(r.Input), r.Mode, r.Ratio,
			r.Status, float64(r.SizeBytes)/(1024*1024), r.Duration.Round(time.Millisecond))
	}
	return w.Flush()
}

func printPlan(dir string) error {
	path, err := director.FindLatestPlan(dir)
	if err != nil {
		return err
	}
	plan, err := director.ReadPlan(path)
	if err != nil {
		return err
	}
	fmt.Printf("[*] %s: %s mode, %dx%d, %.1fs @ %d fps, %d elements, %d curves\n",
		filepath.Base(path), plan.Mode, plan.Width, plan.Height, plan.DurationSeconds, plan.FPS,
		len(plan.Elements), len(plan.Curves))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ELEMENT\tKIND\tSTART\tEND\tEASING\tLOOP")
	for _, d := range plan.Directives {
		fmt.Fprintf(w, "%d\t%s\t%.2f\t%.2f\t%s\t%v\n", d.ElementID, d.Kind, d.Window.Start, d.Window.End, d.Easing, d.Loop)
	}
	return w.Flush()
}
