// Package render composes wallpaper images: a grid of day cells, a bottom
// label, a progress bar, and an optional signature line, drawn onto a
// fogleman/gg canvas and encoded as PNG.
//
// The render path never fails a request over bad input. Unknown themes,
// unresolvable pictograms, and missing fonts all degrade to documented
// defaults; the only error [Renderer.Render] can return is a PNG encode
// failure.
package render

import (
	"bytes"
	"fmt"
	"time"

	"github.com/fogleman/gg"

	"github.com/daygrid/daygrid/internal/fontpack"
	"github.com/daygrid/daygrid/internal/layout"
	"github.com/daygrid/daygrid/internal/pictogram"
	"github.com/daygrid/daygrid/internal/theme"
	"github.com/daygrid/daygrid/internal/timerange"
)

// Vertical rhythm of the bottom stack, measured from the grid's lower edge.
const (
	// labelGap is the distance from the grid bottom to the label line.
	labelGap = 80
	// barGap is the distance from the label line to the bar top.
	barGap = 60
	// signatureGap is the distance from the bar top to the signature line.
	signatureGap = 80

	labelFontSize      = 40
	signatureFontSize  = 55
	monthLabelFontSize = 28
)

// defaultSignatureMaxRunes bounds the signature when no limit is configured.
const defaultSignatureMaxRunes = 20

// ///////////////////////////////////////////////
// Renderer
// ///////////////////////////////////////////////

// Date identifies a marked calendar date within the rendered year.
type Date struct {
	Month time.Month
	Day   int
}

// Request carries everything one render call needs. The zero value renders
// the current year on a mobile canvas with the dark theme.
type Request struct {
	Mode timerange.Mode
	// Marked maps dates to their glyphs. An empty glyph marks the date
	// with the special color only.
	Marked            map[Date]string
	Theme             string
	Signature         string
	BarStyle          BarStyle
	HighlightWeekends bool
	Profile           layout.Profile
}

// Options configures a Renderer.
type Options struct {
	// Fonts supplies the text and signature typefaces; nil loads the
	// embedded fallback.
	Fonts *fontpack.Pack
	// Pictograms resolves marked-date glyphs; nil disables pictograms
	// (marked cells fall back to the special color).
	Pictograms *pictogram.Cache
	// SignatureMaxRunes truncates overlong signatures; zero selects the
	// default of 20.
	SignatureMaxRunes int
	// ColorOverrides replaces individual palette roles on every theme.
	ColorOverrides map[string]string
}

// Renderer turns Requests into PNG bytes. Safe for concurrent use; the
// pictogram cache is the only shared mutable state.
type Renderer struct {
	fonts             *fontpack.Pack
	pictograms        *pictogram.Cache
	signatureMaxRunes int
	colorOverrides    map[string]string
}

// New creates a Renderer.
func New(opts Options) *Renderer {
	if opts.Fonts == nil {
		opts.Fonts = fontpack.Load(fontpack.Config{})
	}
	if opts.SignatureMaxRunes <= 0 {
		opts.SignatureMaxRunes = defaultSignatureMaxRunes
	}
	return &Renderer{
		fonts:             opts.Fonts,
		pictograms:        opts.Pictograms,
		signatureMaxRunes: opts.SignatureMaxRunes,
		colorOverrides:    opts.ColorOverrides,
	}
}

// ///////////////////////////////////////////////
// Compositing
// ///////////////////////////////////////////////

// Render draws the wallpaper for req as of now and returns the encoded PNG.
func (r *Renderer) Render(req Request, now time.Time) ([]byte, error) {
	rng := timerange.Resolve(req.Mode, now)
	today := timerange.Midnight(now.In(timerange.Zone))
	pal, _ := theme.Lookup(req.Theme)
	pal = pal.Override(r.colorOverrides)

	w, h := req.Profile.Size()
	dc := gg.NewContext(w, h)
	dc.SetColor(pal.Background)
	dc.Clear()

	var gridBottom float64
	if req.Mode == timerange.ModeSegregatedMonths {
		gridBottom = r.drawSegregatedMonths(dc, pal, req, now, today)
	} else {
		g := layout.For(req.Mode, req.Profile)
		r.drawCells(dc, g, rng, today, pal, req)
		gridBottom = g.OriginY + g.Height()
	}

	centerX := float64(w) / 2
	labelY := gridBottom + labelGap
	r.drawLabel(dc, pal, rng, centerX, labelY)

	barTop := labelY + barGap
	drawBar(dc, pal, req.BarStyle, rng, centerX, barTop, req.Profile.BarWidth())

	r.drawSignature(dc, pal, req.Signature, centerX, barTop+signatureGap)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("encoding PNG: %w", err)
	}
	return buf.Bytes(), nil
}

// drawSegregatedMonths renders twelve month mini-grids and returns the lower
// edge of the deepest one.
func (r *Renderer) drawSegregatedMonths(dc *gg.Context, pal theme.Palette, req Request, now, today time.Time) float64 {
	year := now.In(timerange.Zone).Year()
	blocks := layout.SegregatedMonths(year, req.Profile)

	labelFace := r.fonts.TextFace(monthLabelFontSize)
	var bottom float64
	for _, b := range blocks {
		dc.SetFontFace(labelFace)
		dc.SetColor(pal.Text)
		dc.DrawStringAnchored(b.Month.String()[:3], b.LabelX, b.LabelY, 0.5, 0.5)

		mr := timerange.MonthOf(year, b.Month, now)
		r.drawCells(dc, b.Grid, mr, today, pal, req)

		if edge := b.Grid.OriginY + b.Grid.Height(); edge > bottom {
			bottom = edge
		}
	}
	return bottom
}
