package theme

import (
	"fmt"
	"math"
	"strconv"

	"github.com/charmbracelet/lipgloss"
)

// Palette holds precomputed colors derived from a Theme.
type Palette struct {
	Bg          lipgloss.Color
	BgHighlight lipgloss.Color
	BgSelection lipgloss.Color
	Fg          lipgloss.Color
	FgMuted     lipgloss.Color
	Accent      lipgloss.Color
	Study       lipgloss.Color
	Event       lipgloss.Color
	Today       lipgloss.Color
	Break       lipgloss.Color
	Warning     lipgloss.Color

	StudyBg lipgloss.Color // calendar cells with study time
	EventBg lipgloss.Color // calendar cells with an event

	TextOnAccent lipgloss.Color
	TextOnToday  lipgloss.Color
	TextOnStudy  lipgloss.Color
	TextOnEvent  lipgloss.Color

	theme *Theme
}

// NewPalette derives a Palette from the provided Theme.
func NewPalette(t *Theme) *Palette {
	if t == nil {
		t, _ = Load(DefaultName)
	}

	isLight := isLightTheme(t.Bg)
	return &Palette{
		Bg:          lipgloss.Color(t.Bg),
		BgHighlight: lipgloss.Color(t.BgHighlight),
		BgSelection: lipgloss.Color(t.BgSelection),
		Fg:          lipgloss.Color(t.Fg),
		FgMuted:     lipgloss.Color(t.FgMuted),
		Accent:      lipgloss.Color(t.Accent),
		Study:       lipgloss.Color(t.Study),
		Event:       lipgloss.Color(t.Event),
		Today:       lipgloss.Color(t.Today),
		Break:       lipgloss.Color(t.Break),
		Warning:     lipgloss.Color(t.Warning),

		StudyBg: lipgloss.Color(cellBg(t.Study, t.Bg, isLight)),
		EventBg: lipgloss.Color(cellBg(t.Event, t.Bg, isLight)),

		TextOnAccent: lipgloss.Color(chooseTextColor(t.Accent, t.Bg, t.Fg)),
		TextOnToday:  lipgloss.Color(chooseTextColor(t.Today, t.Bg, t.Fg)),
		TextOnStudy:  lipgloss.Color(chooseTextColor(t.Study, t.Bg, t.Fg)),
		TextOnEvent:  lipgloss.Color(chooseTextColor(t.Event, t.Bg, t.Fg)),

		theme: t,
	}
}

// TextOn returns the theme foreground that reads best on bg, such as a
// subject's own color. Invalid colors get the primary foreground.
func (p *Palette) TextOn(bg string) lipgloss.Color {
	if !IsHexColor(bg) {
		return p.Fg
	}
	return lipgloss.Color(chooseTextColor(bg, p.theme.Bg, p.theme.Fg))
}

func isLightTheme(bg string) bool {
	return relativeLuminance(bg) > 0.55
}

// cellBg tones accent down so it can sit behind text: towards the
// background on light themes, towards black on dark ones.
func cellBg(accent, bg string, isLight bool) string {
	if isLight {
		return blendColors(accent, bg, 0.75)
	}
	return darkenColor(accent, 0.50, 40)
}

// darkenColor scales each channel by factor without going below floor.
func darkenColor(hex string, factor float64, floor int) string {
	r, g, b, ok := rgb(hex)
	if !ok {
		return hex
	}
	scale := func(c int) int { return max(int(float64(c)*factor), floor) }
	return formatHexColor(scale(r), scale(g), scale(b))
}

// IsHexColor reports whether s is a #RGB or #RRGGBB color.
func IsHexColor(s string) bool {
	_, _, _, ok := rgb(s)
	return ok
}

// rgb parses "#RRGGBB". Shorthand "#RGB" is expanded.
func rgb(hex string) (r, g, b int, ok bool) {
	if len(hex) == 4 && hex[0] == '#' {
		hex = string([]byte{'#', hex[1], hex[1], hex[2], hex[2], hex[3], hex[3]})
	}
	if len(hex) != 7 || hex[0] != '#' {
		return 0, 0, 0, false
	}
	v, err := strconv.ParseUint(hex[1:], 16, 32)
	if err != nil {
		return 0, 0, 0, false
	}
	return int(v >> 16 & 0xff), int(v >> 8 & 0xff), int(v & 0xff), true
}

func formatHexColor(r, g, b int) string {
	return fmt.Sprintf("#%02x%02x%02x", r, g, b)
}

func chooseTextColor(bg, lightText, darkText string) string {
	if contrastRatio(bg, lightText) >= contrastRatio(bg, darkText) {
		return lightText
	}
	return darkText
}

func contrastRatio(a, b string) float64 {
	l1 := relativeLuminance(a)
	l2 := relativeLuminance(b)
	if l1 < l2 {
		l1, l2 = l2, l1
	}
	return (l1 + 0.05) / (l2 + 0.05)
}

func relativeLuminance(hex string) float64 {
	r, g, b, ok := rgb(hex)
	if !ok {
		return 0
	}
	return 0.2126*srgbToLinear(r) + 0.7152*srgbToLinear(g) + 0.0722*srgbToLinear(b)
}

func srgbToLinear(c int) float64 {
	v := float64(c) / 255.0
	if v <= 0.04045 {
		return v / 12.92
	}
	return math.Pow((v+0.055)/1.055, 2.4)
}

func blendColors(a, b string, ratio float64) string {
	ar, ag, ab, okA := rgb(a)
	br, bg, bb, okB := rgb(b)
	if !okA || !okB {
		return a
	}
	ratio = min(max(ratio, 0), 1)
	mix := func(x, y int) int { return int(float64(x)*(1-ratio) + float64(y)*ratio) }
	return formatHexColor(mix(ar, br), mix(ag, bg), mix(ab, bb))
}
