package director

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// GeneratePlanPath returns a timestamped plan filename inside dir.
func GeneratePlanPath(dir string, now time.Time) string {
	return filepath.Join(dir, fmt.Sprintf("plan_%s.yaml", now.Format("2006-01-02_15-04-05")))
}

// FindLatestPlan returns the most recently modified plan YAML in dir.
func FindLatestPlan(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("read plans directory: %w", err)
	}

	type candidate struct {
		path string
		mod  time.Time
	}
	var plans []candidate
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), "plan_") || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		plans = append(plans, candidate{filepath.Join(dir, e.Name()), info.ModTime()})
	}
	if len(plans) == 0 {
		return "", fmt.Errorf("no plan files found in %s", dir)
	}

	sort.Slice(plans, func(i, j int) bool { return plans[i].mod.After(plans[j].mod) })
	return plans[0].path, nil
}
