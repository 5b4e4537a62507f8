// Package theme defines the named color palettes a wallpaper can render with.
//
// A [Palette] maps the semantic roles used by the renderer (background,
// active, passed, inactive, weekend, special, text) to concrete colors. Two
// palettes ship built in, "dark" and "light"; any other name silently
// resolves to dark, matching the render path's degrade-never-fail policy.
package theme

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ///////////////////////////////////////////////
// Palette
// ///////////////////////////////////////////////

// Palette holds the colors for one theme, keyed by visual role.
type Palette struct {
	// Background fills the whole canvas.
	Background color.NRGBA
	// Active paints today's cell and the filled part of the progress bar.
	Active color.NRGBA
	// Passed paints cells for days already gone.
	Passed color.NRGBA
	// Inactive paints future cells and the progress bar track.
	Inactive color.NRGBA
	// Weekend paints future Saturday/Sunday cells when weekend
	// highlighting is requested.
	Weekend color.NRGBA
	// Special paints marked dates (and is the fallback when a marked
	// date's pictogram cannot be resolved).
	Special color.NRGBA
	// Text paints the signature line.
	Text color.NRGBA
}

// DefaultName is the palette substituted for unknown theme names.
const DefaultName = "dark"

// palettes holds the built-in themes. Values mirror the original wallpaper
// generator's RGB constants.
var palettes = map[string]Palette{
	"dark": {
		Background: color.NRGBA{R: 28, G: 28, B: 30, A: 255},
		Active:     color.NRGBA{R: 255, G: 105, B: 60, A: 255},
		Passed:     color.NRGBA{R: 255, G: 255, B: 255, A: 255},
		Inactive:   color.NRGBA{R: 68, G: 68, B: 70, A: 255},
		Weekend:    color.NRGBA{R: 142, G: 142, B: 147, A: 255},
		Special:    color.NRGBA{R: 255, G: 215, B: 0, A: 255},
		Text:       color.NRGBA{R: 255, G: 255, B: 255, A: 255},
	},
	"light": {
		Background: color.NRGBA{R: 242, G: 242, B: 247, A: 255},
		Active:     color.NRGBA{R: 255, G: 105, B: 60, A: 255},
		Passed:     color.NRGBA{R: 60, G: 60, B: 67, A: 255},
		Inactive:   color.NRGBA{R: 209, G: 209, B: 214, A: 255},
		Weekend:    color.NRGBA{R: 174, G: 174, B: 178, A: 255},
		Special:    color.NRGBA{R: 255, G: 204, B: 0, A: 255},
		Text:       color.NRGBA{R: 0, G: 0, B: 0, A: 255},
	},
}

// Lookup returns the palette for name and whether the name was known.
// Unknown names return the dark palette with ok=false.
func Lookup(name string) (Palette, bool) {
	if p, ok := palettes[name]; ok {
		return p, true
	}
	return palettes[DefaultName], false
}

// Names returns the built-in theme names in stable order.
func Names() []string {
	return []string{"dark", "light"}
}

// Override returns a copy of p with the given role colors replaced.
// Keys are role names ("background", "active", "passed", "inactive",
// "weekend", "special", "text"); values are "#RRGGBB" strings. Unknown roles
// and unparsable values are skipped, keeping the render path failure-free.
func (p Palette) Override(roles map[string]string) Palette {
	for role, hex := range roles {
		c, err := ParseHex(hex)
		if err != nil {
			continue
		}
		switch role {
		case "background":
			p.Background = c
		case "active":
			p.Active = c
		case "passed":
			p.Passed = c
		case "inactive":
			p.Inactive = c
		case "weekend":
			p.Weekend = c
		case "special":
			p.Special = c
		case "text":
			p.Text = c
		}
	}
	return p
}

// ///////////////////////////////////////////////
// Hex Parsing
// ///////////////////////////////////////////////

// ParseHex parses a "#RRGGBB" hex color string into a color.NRGBA.
// Used by config overrides of individual palette roles.
func ParseHex(hex string) (color.NRGBA, error) {
	hex = strings.TrimPrefix(hex, "#")
	if len(hex) != 6 {
		return color.NRGBA{}, fmt.Errorf("invalid hex color %q: must be 6 hex digits", hex)
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
		if err != nil {
			return color.NRGBA{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
		}
		ch[i] = uint8(v)
	}
	return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: 255}, nil
}
