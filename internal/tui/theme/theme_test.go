package theme

import (
	"testing"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		themeName string
		wantName  string
	}{
		{"load mocha theme", "mocha", "mocha"},
		{"load macchiato theme", "macchiato", "macchiato"},
		{"load frappe theme", "frappe", "frappe"},
		{"load latte theme", "latte", "latte"},
		{"names are case insensitive", "Latte", "latte"},
		{"empty name defaults to mocha", "", "mocha"},
		{"invalid theme falls back to mocha", "nonexistent", "mocha"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			theme, err := Load(tt.themeName)
			if err != nil {
				t.Fatalf("Load(%q) error = %v", tt.themeName, err)
			}
			if theme.Name != tt.wantName {
				t.Errorf("Load(%q).Name = %q, want %q", tt.themeName, theme.Name, tt.wantName)
			}
		})
	}
}

func TestEmbeddedThemesAreComplete(t *testing.T) {
	for _, name := range Available() {
		t.Run(name, func(t *testing.T) {
			theme, err := Load(name)
			if err != nil {
				t.Fatalf("Load(%q) error = %v", name, err)
			}
			colors := map[string]string{
				"bg": theme.Bg, "bg_highlight": theme.BgHighlight, "bg_selection": theme.BgSelection,
				"fg": theme.Fg, "fg_muted": theme.FgMuted, "accent": theme.Accent,
				"study": theme.Study, "event": theme.Event, "today": theme.Today,
				"break": theme.Break, "warning": theme.Warning,
			}
			for key, value := range colors {
				if _, _, _, ok := rgb(value); !ok {
					t.Errorf("%s = %q, want #RRGGBB", key, value)
				}
			}
		})
	}
}

func TestApplyDefaults(t *testing.T) {
	theme := &Theme{Bg: "#000000", Fg: "#ffffff", Accent: "#ff00ff", Study: "#0000ff", Event: "#ff8800"}
	theme.applyDefaults()

	if theme.BgHighlight != "#000000" || theme.BgSelection != "#000000" {
		t.Errorf("backgrounds not defaulted: %+v", theme)
	}
	if theme.FgMuted != "#ffffff" {
		t.Errorf("FgMuted = %q, want %q", theme.FgMuted, "#ffffff")
	}
	if theme.Today != "#ff00ff" || theme.Break != "#0000ff" || theme.Warning != "#ff8800" {
		t.Errorf("accents not defaulted: %+v", theme)
	}
}

func TestIsAvailable(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"mocha", true},
		{"MACCHIATO", true},
		{"frappe", true},
		{"latte", true},
		{"light", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := IsAvailable(tt.name); got != tt.want {
			t.Errorf("IsAvailable(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
