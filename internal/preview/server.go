// Package preview serves the latest rendered GIF and its plan over HTTP,
// with a QR code so the animation can be checked on a phone.
package preview

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/skip2/go-qrcode"

	"github.com/ivlev/infographic2gif/internal/director"
	applog "github.com/ivlev/infographic2gif/internal/log"
)

// Server is an explicit preview handle; nothing is shared between instances.
type Server struct {
	addr   string
	dir    string
	router chi.Router
	log    *slog.Logger

	mu       sync.RWMutex
	url      string
	gifPath  string
	planJSON []byte
	plan     *director.Plan
	srv      *http.Server
}

// New builds a server for addr that also exposes dir under /files/.
func New(addr, dir string) *Server {
	s := &Server{
		addr: addr,
		dir:  dir,
		log:  applog.WithComponent("preview"),
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.log))

	r.Get("/", s.handleIndex)
	r.Get("/healthz", s.handleHealth)
	r.Get("/animation.gif", s.handleGIF)
	r.Get("/plan.json", s.handlePlan)
	r.Get("/qr.png", s.handleQR)
	if s.dir != "" {
		r.Handle("/files/*", http.StripPrefix("/files/", http.FileServer(http.Dir(s.dir))))
	}

	s.router = r
}

// Start listens on the configured address and serves in the background. It
// returns the base URL, which reflects the real port when addr used :0.
func (s *Server) Start() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.srv != nil {
		return s.url, errors.New("preview server already started")
	}

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return "", fmt.Errorf("listen %s: %w", s.addr, err)
	}
	s.url = "http://" + ln.Addr().String()
	s.srv = &http.Server{Handler: s, ReadHeaderTimeout: 5 * time.Second}

	go func(srv *http.Server) {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("preview server stopped", slog.Any("err", err))
		}
	}(s.srv)

	s.log.Info("preview server started", slog.String("url", s.url))
	return s.url, nil
}

// URL is the base address, empty before Start.
func (s *Server) URL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.url
}

// Publish makes gifPath and plan the current preview.
func (s *Server) Publish(gifPath string, plan *director.Plan) error {
	if _, err := os.Stat(gifPath); err != nil {
		return fmt.Errorf("publish %s: %w", gifPath, err)
	}
	var data []byte
	if plan != nil {
		var err error
		if data, err = director.MarshalPlanJSON(plan); err != nil {
			return err
		}
	}

	s.mu.Lock()
	s.gifPath, s.planJSON, s.plan = gifPath, data, plan
	s.mu.Unlock()
	s.log.Debug("published", slog.String("gif", gifPath))
	return nil
}

// Shutdown stops the server gracefully. It is a no-op before Start.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.srv = nil
	s.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

var indexTmpl = template.Must(template.New("index").Parse(`<!doctype html>
<html><head><meta charset="utf-8"><title>infographic2gif preview</title>
<style>body{font-family:sans-serif;margin:2rem;background:#f4f4f4}img{max-width:90vw;background:#fff}</style>
</head><body>
{{if .Ready}}<img src="/animation.gif" alt="animation">
<p>{{.Width}}x{{.Height}}, {{.Duration}}s at {{.FPS}} fps, mode {{.Mode}}, {{.Elements}} elements. <a href="/plan.json">plan.json</a></p>
{{else}}<p>Nothing published yet.</p>{{end}}
<img src="/qr.png" alt="qr" width="160">
</body></html>
`))

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	plan, ready := s.plan, s.gifPath != ""
	s.mu.RUnlock()

	data := map[string]any{"Ready": ready}
	if plan != nil {
		data["Width"], data["Height"] = plan.Width, plan.Height
		data["Duration"], data["FPS"] = plan.DurationSeconds, plan.FPS
		data["Mode"], data["Elements"] = plan.Mode, len(plan.Elements)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTmpl.Execute(w, data); err != nil {
		s.log.Warn("render index failed", slog.Any("err", err))
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleGIF(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	path := s.gifPath
	s.mu.RUnlock()
	if path == "" {
		http.Error(w, "no animation published", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "image/gif")
	w.Header().Set("Cache-Control", "no-store")
	http.ServeFile(w, r, path)
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	data := s.planJSON
	s.mu.RUnlock()
	if data == nil {
		http.Error(w, "no plan published", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (s *Server) handleQR(w http.ResponseWriter, r *http.Request) {
	target := s.URL()
	if target == "" {
		target = "http://" + r.Host
	}
	png, err := qrcode.Encode(target, qrcode.Medium, 256)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

func requestLogger(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Debug("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration_ms", time.Since(start).Milliseconds(),
			)
		})
	}
}
