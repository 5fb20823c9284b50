package director

import (
	"log/slog"

	"github.com/ivlev/infographic2gif/internal/analyzer"
	"github.com/ivlev/infographic2gif/internal/config"
	applog "github.com/ivlev/infographic2gif/internal/log"
)

// Director turns classified elements into animation directives, either from
// the role policy (auto) or from user instructions (custom).
type Director struct {
	Options config.PlanOptions
}

// NewDirector normalizes opts and returns a Director.
func NewDirector(opts config.PlanOptions) *Director {
	return &Director{Options: opts.Normalized()}
}

// Direct produces exactly one directive per element, except elements a custom
// plan has no time left for. Custom mode without instruction text is rejected.
func (d *Director) Direct(elements []analyzer.Element) ([]Directive, error) {
	if err := d.Options.Validate(); err != nil {
		return nil, err
	}
	l := applog.WithOperation(applog.WithComponent("director"), "direct")

	var out []Directive
	switch d.Options.Mode {
	case config.ModeCustom:
		precursors := Parse(d.Options.Instructions, elements)
		out = CompileCustom(precursors, elements, d.Options.TotalDuration)
	default:
		windows := Schedule(elements, d.Options.TotalDuration)
		out = CompileAuto(elements, windows, d.Options.TotalDuration)
	}

	l.Debug("directives compiled", slog.String("mode", d.Options.Mode), slog.Int("elements", len(elements)), slog.Int("directives", len(out)))
	return out, nil
}
