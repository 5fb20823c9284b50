package director

import (
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ivlev/infographic2gif/internal/analyzer"
	applog "github.com/ivlev/infographic2gif/internal/log"
)

const (
	defaultDuration = 10.0 // seconds, when the caller passes none
	defaultStep     = 2.0  // seconds per instruction without an explicit duration
	oneByOneStagger = 0.5
)

// Character windows around a keyword, relative to the keyword's first byte.
type window struct{ before, after int }

var (
	targetWindow   = window{20, 30}
	simulWindow    = window{30, 50}
	durationWindow = window{0, 50}
	staggerWindow  = window{0, 100}
	speedWindow    = window{0, 50}
	slideWindow    = window{0, 50}
)

// keyword is one entry of the instruction vocabulary. forms are the
// inflections that count as the keyword; other words sharing the stem
// ("popular", "fader") do not.
type keyword struct {
	word  string
	forms []string
	kind  AnimationKind
	re    *regexp.Regexp
}

// Table order is the tie-break when two keywords start at the same offset.
var keywords = []keyword{
	{word: "fade", forms: []string{"fades", "faded", "fading"}, kind: KindFadeIn},
	{word: "zoom", forms: []string{"zooms", "zoomed", "zooming"}, kind: KindZoomIn},
	{word: "slide", forms: []string{"slides", "slid", "sliding"}, kind: KindSlideInTop},
	{word: "pulse", forms: []string{"pulses", "pulsed", "pulsing"}, kind: KindPulse},
	{word: "bounce", forms: []string{"bounces", "bounced", "bouncing"}, kind: KindBounceIn},
	{word: "pop", forms: []string{"pops", "popped", "popping"}, kind: KindPopIn},
	{word: "rotate", forms: []string{"rotates", "rotated", "rotating"}, kind: KindRotateIn},
}

func init() {
	for i, kw := range keywords {
		alts := append([]string{kw.word}, kw.forms...)
		keywords[i].re = regexp.MustCompile(`\b(?:` + strings.Join(alts, "|") + `)\b`)
	}
}

var (
	elementRefRe = regexp.MustCompile(`\belements?\s+(\d+(?:\s*(?:,|&|and)\s*\d+)*)`)
	parenRefRe   = regexp.MustCompile(`\((\d+(?:\s*,\s*\d+)*)\)`)
	numberRe     = regexp.MustCompile(`\d+`)

	durationRe = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:seconds?|secs?|s\b)`)
	staggerRe  = regexp.MustCompile(`stagger(?:ed)?\s+(?:by\s+)?(\d+(?:\.\d+)?)\s*(?:seconds?|secs?|s\b)`)
	speedRe    = regexp.MustCompile(`\b(slow(?:ly|er)?|fast(?:er)?|quick(?:ly|er)?)\b`)

	simultaneityPhrases = []string{"simultaneously", "at the same time", "together", "all at once"}
	oneByOnePhrase      = "one by one"

	slideDirections = []struct {
		re   *regexp.Regexp
		kind AnimationKind
	}{
		{regexp.MustCompile(`\bleft\b`), KindSlideInLeft},
		{regexp.MustCompile(`\bright\b`), KindSlideInRight},
		{regexp.MustCompile(`\b(?:bottom|below|up)\b`), KindSlideInBot},
	}
)

// Precursor is one parsed instruction applied to one element, before the
// compiler places it on the timeline.
type Precursor struct {
	ElementID        int
	Keyword          string
	Kind             AnimationKind
	Duration         float64
	ExplicitDuration bool
	Speed            float64
	Simultaneous     bool
	Stagger          float64
	// Group numbers the keyword occurrence the precursor came from. Precursors
	// of one group share modifiers and are laid out together.
	Group  int
	Offset int
}

// refGroup is one reference match, e.g. "elements 2, 3" at [start, end).
type refGroup struct {
	start, end int
	ids        []int
}

// Parse turns free-form instructions into an ordered list of precursors.
// Keywords are handled in the order they appear in the text. Each keyword
// targets the nearest element reference around it, every reference in the
// text when none is local, or element 1 when the text has none at all. When
// no keyword matches, every non-background element gets a 2s fade-in.
func Parse(text string, elements []analyzer.Element) []Precursor {
	l := applog.WithOperation(applog.WithComponent("director"), "parse")

	lower := strings.ToLower(text)
	refs := findReferences(lower)
	staggerSpans := staggerRe.FindAllStringIndex(lower, -1)

	var out []Precursor
	for g, occ := range findKeywords(lower) {
		targets := localTargets(lower, refs, occ.pos)
		if len(targets) == 0 {
			targets = allIDs(refs)
		}
		if len(targets) == 0 {
			targets = []int{1}
		}

		kind := occ.kw.kind
		if kind == KindSlideInTop {
			kind = slideKind(scan(lower, occ.pos, slideWindow))
		}

		dur, explicit := parseDuration(lower, occ.pos, staggerSpans)
		speed := parseSpeed(scan(lower, occ.pos, speedWindow))
		if !explicit {
			dur = defaultStep / speed
		}
		simul := containsAny(scan(lower, occ.pos, simulWindow), simultaneityPhrases)
		stagger := parseStagger(scan(lower, occ.pos, staggerWindow))

		l.Debug("instruction",
			slog.String("keyword", occ.kw.word),
			slog.Int("offset", occ.pos),
			slog.Any("targets", targets),
			slog.Float64("duration", dur),
			slog.Bool("simultaneous", simul),
			slog.Float64("stagger", stagger))

		for _, id := range targets {
			out = append(out, Precursor{
				ElementID:        id,
				Keyword:          occ.kw.word,
				Kind:             kind,
				Duration:         dur,
				ExplicitDuration: explicit,
				Speed:            speed,
				Simultaneous:     simul,
				Stagger:          stagger,
				Group:            g,
				Offset:           occ.pos,
			})
		}
	}

	if len(out) == 0 {
		out = fallbackPrecursors(elements)
		l.Debug("no animation keywords, fading in all elements", slog.Int("count", len(out)))
	}
	return out
}

// fallbackPrecursors fades in every non-background element in id order, or
// every element when all of them are backgrounds.
func fallbackPrecursors(elements []analyzer.Element) []Precursor {
	ordered := make([]analyzer.Element, len(elements))
	copy(ordered, elements)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	pick := func(skipBackground bool) []Precursor {
		var ps []Precursor
		for _, el := range ordered {
			if skipBackground && el.Role == analyzer.RoleBackground {
				continue
			}
			ps = append(ps, Precursor{
				ElementID: el.ID,
				Kind:      KindFadeIn,
				Duration:  defaultStep,
				Speed:     1,
				Group:     len(ps),
				Offset:    -1,
			})
		}
		return ps
	}
	if ps := pick(true); len(ps) > 0 {
		return ps
	}
	return pick(false)
}

type occurrence struct {
	kw  keyword
	pos int
	idx int
}

func findKeywords(lower string) []occurrence {
	var occs []occurrence
	for i, kw := range keywords {
		for _, m := range kw.re.FindAllStringIndex(lower, -1) {
			occs = append(occs, occurrence{kw: kw, pos: m[0], idx: i})
		}
	}
	sort.SliceStable(occs, func(i, j int) bool {
		if occs[i].pos != occs[j].pos {
			return occs[i].pos < occs[j].pos
		}
		return occs[i].idx < occs[j].idx
	})
	return occs
}

// findReferences returns every element reference in text order.
func findReferences(lower string) []refGroup {
	var groups []refGroup
	for _, re := range []*regexp.Regexp{elementRefRe, parenRefRe} {
		for _, m := range re.FindAllStringSubmatchIndex(lower, -1) {
			var ids []int
			for _, n := range numberRe.FindAllString(lower[m[2]:m[3]], -1) {
				if id, err := strconv.Atoi(n); err == nil {
					ids = append(ids, id)
				}
			}
			if len(ids) > 0 {
				groups = append(groups, refGroup{start: m[0], end: m[1], ids: ids})
			}
		}
	}
	sort.SliceStable(groups, func(i, j int) bool { return groups[i].start < groups[j].start })
	return groups
}

// localTargets picks the reference group nearest to the keyword among the
// groups overlapping the target window. Groups in the keyword's own clause
// are preferred; a group across clause punctuation is used only when the
// clause has none. On a tie the group after the keyword wins. A group after
// the keyword also absorbs following groups joined to it by a comma or
// "and", as in "element 2 and element 3".
func localTargets(lower string, refs []refGroup, pos int) []int {
	best := nearestRef(lower, refs, pos, true)
	if best < 0 {
		best = nearestRef(lower, refs, pos, false)
	}
	if best < 0 {
		return nil
	}

	_, hi := bounds(len(lower), pos, targetWindow)
	ids := append([]int(nil), refs[best].ids...)
	if refs[best].start < pos {
		return ids
	}
	for i := best + 1; i < len(refs); i++ {
		if refs[i].start >= hi || !isJoiner(lower[refs[i-1].end:refs[i].start]) {
			break
		}
		ids = append(ids, refs[i].ids...)
	}
	return dedupe(ids)
}

// nearestRef returns the index of the group closest to pos inside the target
// window, or -1. With sameClause set, groups separated from pos by clause
// punctuation are skipped.
func nearestRef(lower string, refs []refGroup, pos int, sameClause bool) int {
	lo, hi := bounds(len(lower), pos, targetWindow)
	best, bestDist := -1, 0
	for i, g := range refs {
		if g.end <= lo || g.start >= hi {
			continue
		}
		var dist int
		var between string
		after := g.start >= pos
		if after {
			dist, between = g.start-pos, lower[pos:g.start]
		} else {
			dist = max(pos-g.end, 0)
			between = lower[min(g.end, pos):pos]
		}
		if sameClause && strings.ContainsAny(between, clauseBreaks) {
			continue
		}
		if best < 0 || dist < bestDist || (dist == bestDist && after) {
			best, bestDist = i, dist
		}
	}
	return best
}

// A colon binds a label to its action ("element 1: fade in"), so it is not a
// clause break.
const clauseBreaks = ",.;!?\n"

var joinerRe = regexp.MustCompile(`^\s*(?:,|&|and|,\s*and)?\s*$`)

func isJoiner(between string) bool { return joinerRe.MatchString(between) }

func allIDs(refs []refGroup) []int {
	var ids []int
	for _, g := range refs {
		ids = append(ids, g.ids...)
	}
	return dedupe(ids)
}

func dedupe(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func bounds(n, pos int, w window) (int, int) {
	return max(pos-w.before, 0), min(pos+w.after, n)
}

func scan(lower string, pos int, w window) string {
	lo, hi := bounds(len(lower), pos, w)
	return lower[lo:hi]
}

// parseDuration reads the first "<n> sec" in the duration window that is not
// part of a stagger phrase.
func parseDuration(lower string, pos int, staggerSpans [][]int) (float64, bool) {
	lo, hi := bounds(len(lower), pos, durationWindow)
	for _, m := range durationRe.FindAllStringSubmatchIndex(lower[lo:hi], -1) {
		start := lo + m[0]
		if insideAny(start, staggerSpans) {
			continue
		}
		v, err := strconv.ParseFloat(lower[lo+m[2]:lo+m[3]], 64)
		if err != nil || v <= 0 {
			continue
		}
		return v, true
	}
	return defaultStep, false
}

func insideAny(p int, spans [][]int) bool {
	for _, s := range spans {
		if p >= s[0] && p < s[1] {
			return true
		}
	}
	return false
}

func parseStagger(s string) float64 {
	if m := staggerRe.FindStringSubmatch(s); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil && v >= 0 {
			return v
		}
	}
	if strings.Contains(s, oneByOnePhrase) {
		return oneByOneStagger
	}
	return 0
}

// parseSpeed maps "slowly"/"quickly" style adverbs to a playback speed factor.
func parseSpeed(s string) float64 {
	m := speedRe.FindStringSubmatch(s)
	if m == nil {
		return 1
	}
	if strings.HasPrefix(m[1], "slow") {
		return 0.5
	}
	return 2
}

func slideKind(s string) AnimationKind {
	for _, d := range slideDirections {
		if d.re.MatchString(s) {
			return d.kind
		}
	}
	return KindSlideInTop
}

func containsAny(s string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
