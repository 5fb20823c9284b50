package analyzer

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

const contentColumn = 42

var roleLabels = map[Role]string{
	RoleTitle:      "Title",
	RoleStat:       "Stat Box",
	RoleCTA:        "CTA Button",
	RoleBody:       "Text",
	RoleBackground: "Background",
}

// Summarize describes the element mix in one sentence.
func Summarize(els []Element) string {
	var titles, stats, texts, ctas, visuals int
	for _, el := range els {
		switch el.Role {
		case RoleTitle:
			titles++
		case RoleStat:
			stats++
		case RoleCTA:
			ctas++
		case RoleBody:
			if el.Kind == KindText {
				texts++
			}
		}
		if el.Kind != KindText {
			visuals++
		}
	}

	var parts []string
	add := func(n int, one, many string) {
		switch {
		case n == 1:
			parts = append(parts, "1 "+one)
		case n > 1:
			parts = append(parts, fmt.Sprintf("%d %s", n, many))
		}
	}
	add(titles, "title", "titles")
	add(stats, "stat box", "stat boxes")
	add(texts, "text block", "text blocks")
	add(ctas, "CTA", "CTAs")
	add(visuals, "visual element", "visual elements")

	if len(parts) == 0 {
		return "Infographic with visual content"
	}
	return "Infographic with " + strings.Join(parts, ", ")
}

// FormatAnalysis renders the numbered element table shown before a user
// writes custom instructions. Background elements are listed last.
func FormatAnalysis(els []Element, meta ImageMeta) string {
	var b strings.Builder
	b.WriteString("I analyzed your infographic and found these elements:\n\n")
	fmt.Fprintf(&b, "%-4s %-11s %s %-15s %s\n", "#", "ROLE", pad("CONTENT", contentColumn), "SECTION", "CONF")

	var backgrounds []Element
	for _, el := range els {
		if el.Role == RoleBackground {
			backgrounds = append(backgrounds, el)
			continue
		}
		writeRow(&b, el, meta)
	}
	for _, el := range backgrounds {
		writeRow(&b, el, meta)
	}

	b.WriteString("\n")
	b.WriteString(Summarize(els))
	b.WriteString(".\nThese element numbers can be used in custom animation instructions.\n")
	return b.String()
}

func writeRow(b *strings.Builder, el Element, meta ImageMeta) {
	label, ok := roleLabels[el.Role]
	if !ok {
		label = "Element"
	}
	content := strings.Join(strings.Fields(el.Content), " ")
	if el.Kind == KindText {
		content = `"` + content + `"`
	}
	content = runewidth.Truncate(content, contentColumn, "…")
	fmt.Fprintf(b, "%-4d %-11s %s %-15s %.2f\n", el.ID, label, pad(content, contentColumn), Section(el.Position, meta), el.Confidence)
}

// pad right-fills s to width display columns, which keeps CJK and emoji rows aligned.
func pad(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// Section names the vertical third an element's centre falls into.
func Section(r Rect, meta ImageMeta) string {
	if meta.Height <= 0 {
		return "middle section"
	}
	c := (float64(r.Y) + float64(r.Height)/2) / float64(meta.Height)
	switch {
	case c < 0.33:
		return "top section"
	case c < 0.67:
		return "middle section"
	default:
		return "bottom section"
	}
}
