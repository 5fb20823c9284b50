package system

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	applog "github.com/ivlev/infographic2gif/internal/log"
)

// ErrToolMissing is returned when a required external binary is not on PATH.
var ErrToolMissing = errors.New("required tool not found")

// InputExtensions are the file types a pipeline run accepts.
var InputExtensions = []string{".png", ".jpg", ".jpeg", ".webp", ".pdf"}

// Оценка памяти на один прогон: декодированный постер, подложка, слои и
// процесс ffmpeg.
const perRunMemory = 512 << 20

// InitResourceLimits пытается увеличить лимит открытых файлов: пакетный
// рендер держит открытыми много слоёв через ffmpeg.
func InitResourceLimits() {
	l := applog.WithComponent("system")
	var rl syscall.Rlimit
	if err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rl); err != nil {
		l.Warn("read file limit failed", slog.Any("err", err))
		return
	}
	// Пробуем поставить 2048 или максимум, разрешённый системой
	want := uint64(2048)
	if want > rl.Max {
		want = rl.Max
	}
	if rl.Cur >= want {
		return
	}
	rl.Cur = want
	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rl); err != nil {
		l.Warn("raise file limit failed", slog.Any("err", err))
		return
	}
	l.Debug("file limit raised", slog.Uint64("limit", rl.Cur))
}

// RecommendedWorkers sizes batch parallelism from logical CPUs and available
// memory, never returning less than 1.
func RecommendedWorkers() int {
	workers := 1
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		workers = n
	}
	// Не запускаем больше прогонов, чем помещается в свободную память
	if vm, err := mem.VirtualMemory(); err == nil && vm.Available > 0 {
		if byMem := int(vm.Available / perRunMemory); byMem < workers {
			workers = byMem
		}
	}
	return max(workers, 1)
}

// MemoryStats returns used and total memory in MiB for progress output.
func MemoryStats() (usedMB, totalMB uint64, err error) {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return 0, 0, err
	}
	return vm.Used >> 20, vm.Total >> 20, nil
}

// IsInput reports whether path has a supported extension.
func IsInput(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range InputExtensions {
		if e == ext {
			return true
		}
	}
	return false
}

// ListInputs returns the supported files in dir sorted by name.
func ListInputs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() && IsInput(e.Name()) {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(out)
	return out, nil
}

// FindLatestInput ищет самый свежий входной файл: файл возвращается как
// есть, для директории берётся последний изменённый поддерживаемый файл.
func FindLatestInput(path string) (string, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return "", err
	}
	if !fi.IsDir() {
		return path, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return "", err
	}
	var latest string
	var latestTime time.Time
	for _, e := range entries {
		if e.IsDir() || !IsInput(e.Name()) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latest = filepath.Join(path, e.Name())
		}
	}
	if latest == "" {
		return "", fmt.Errorf("no images or PDFs found in %s", path)
	}
	return latest, nil
}

// CheckTool verifies that name is on PATH.
func CheckTool(name string) error {
	if _, err := exec.LookPath(name); err != nil {
		return fmt.Errorf("%w: %s", ErrToolMissing, name)
	}
	return nil
}

// MediaDuration получает длительность контейнера в секундах через ffprobe.
func MediaDuration(ctx context.Context, path string) (float64, error) {
	cmd := exec.CommandContext(ctx, "ffprobe", "-v", "error", "-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1", path)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	var d float64
	if _, err := fmt.Sscanf(strings.TrimSpace(string(out)), "%f", &d); err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", strings.TrimSpace(string(out)), err)
	}
	return d, nil
}

// BestH264Encoder выбирает аппаратный H.264 энкодер, если ffmpeg его
// поддерживает, иначе libx264.
func BestH264Encoder(ctx context.Context) string {
	out, err := exec.CommandContext(ctx, "ffmpeg", "-hide_banner", "-encoders").Output()
	if err != nil {
		return "libx264"
	}
	list := string(out)
	for _, enc := range []string{"h264_videotoolbox", "h264_nvenc"} {
		if strings.Contains(list, enc) {
			return enc
		}
	}
	return "libx264"
}

// CheckFilterSupport reports whether the local ffmpeg build has a filter.
func CheckFilterSupport(ctx context.Context, name string) bool {
	out, err := exec.CommandContext(ctx, "ffmpeg", "-hide_banner", "-filters").Output()
	if err != nil {
		return false
	}
	for _, line := range strings.Split(string(out), "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[1] == name {
			return true
		}
	}
	return false
}
