// Tests for palette lookup fallback, role overrides, and hex parsing.

package theme

import (
	"image/color"
	"testing"
)

func TestLookup(t *testing.T) {
	tests := []struct {
		name   string
		theme  string
		wantOK bool
	}{
		{"dark is known", "dark", true},
		{"light is known", "light", true},
		{"unknown falls back", "neon", false},
		{"empty falls back", "", false},
		{"case sensitive", "Dark", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, ok := Lookup(tt.theme)
			if ok != tt.wantOK {
				t.Errorf("Lookup(%q) ok = %v, want %v", tt.theme, ok, tt.wantOK)
			}
			if !ok {
				dark, _ := Lookup(DefaultName)
				if p != dark {
					t.Errorf("fallback palette = %+v, want dark palette", p)
				}
			}
		})
	}
}

func TestUnknownThemeMatchesDark(t *testing.T) {
	neon, _ := Lookup("neon")
	dark, _ := Lookup("dark")
	if neon != dark {
		t.Errorf("theme %q must resolve to the dark palette", "neon")
	}
}

func TestOverride(t *testing.T) {
	base, _ := Lookup("dark")
	got := base.Override(map[string]string{
		"active":  "#00FF00",
		"text":    "not-a-color", // skipped
		"unknown": "#123456",     // skipped
	})
	if want := (color.NRGBA{G: 255, A: 255}); got.Active != want {
		t.Errorf("Active = %+v, want %+v", got.Active, want)
	}
	if got.Text != base.Text {
		t.Errorf("Text changed by invalid override: %+v", got.Text)
	}
	if got.Background != base.Background {
		t.Errorf("Background changed unexpectedly: %+v", got.Background)
	}
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		in      string
		want    color.NRGBA
		wantErr bool
	}{
		{"#FF693C", color.NRGBA{R: 255, G: 105, B: 60, A: 255}, false},
		{"1C1C1E", color.NRGBA{R: 28, G: 28, B: 30, A: 255}, false},
		{"#fff", color.NRGBA{}, true},
		{"#GGGGGG", color.NRGBA{}, true},
		{"", color.NRGBA{}, true},
	}
	for _, tt := range tests {
		got, err := ParseHex(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseHex(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("ParseHex(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}
