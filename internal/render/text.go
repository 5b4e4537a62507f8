// Bottom label and signature rendering.

package render

import (
	"fmt"

	"github.com/fogleman/gg"

	"github.com/daygrid/daygrid/internal/theme"
	"github.com/daygrid/daygrid/internal/timerange"
)

// drawLabel renders the "Nd left in <period>" line centered at (centerX, y).
func (r *Renderer) drawLabel(dc *gg.Context, pal theme.Palette, rng timerange.Range, centerX, y float64) {
	dc.SetFontFace(r.fonts.TextFace(labelFontSize))
	dc.SetColor(pal.Active)
	dc.DrawStringAnchored(fmt.Sprintf("%dd left in %s", rng.DaysLeft(), rng.Label), centerX, y, 0.5, 0.5)
}

// drawSignature renders the optional signature line in the decorative face,
// truncated to the configured rune bound. An empty signature draws nothing.
func (r *Renderer) drawSignature(dc *gg.Context, pal theme.Palette, signature string, centerX, y float64) {
	signature = truncateRunes(signature, r.signatureMaxRunes)
	if signature == "" {
		return
	}
	dc.SetFontFace(r.fonts.SignatureFace(signatureFontSize))
	dc.SetColor(pal.Text)
	dc.DrawStringAnchored(signature, centerX, y, 0.5, 0.5)
}

// truncateRunes bounds s to max runes without splitting a code point.
func truncateRunes(s string, max int) string {
	if max <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
