// Day cell painting: the per-day color policy and pictogram placement.

package render

import (
	"image"
	"image/color"
	"time"

	"github.com/fogleman/gg"
	xdraw "golang.org/x/image/draw"

	"github.com/daygrid/daygrid/internal/layout"
	"github.com/daygrid/daygrid/internal/theme"
	"github.com/daygrid/daygrid/internal/timerange"
)

// drawCells walks the range day by day, row-major, painting one cell per day.
// Grid positions past the range's last day stay unpainted. today must be a
// midnight in the range's zone.
func (r *Renderer) drawCells(dc *gg.Context, g layout.Grid, rng timerange.Range, today time.Time, pal theme.Palette, req Request) {
	for i := 0; i < rng.TotalDays; i++ {
		date := rng.Start.AddDate(0, 0, i)
		x, y := g.CellCenter(i)

		glyph, marked := req.Marked[Date{Month: date.Month(), Day: date.Day()}]
		if marked && glyph != "" && r.pictograms != nil {
			if img := r.pictograms.Resolve(glyph); img != nil {
				drawPictogram(dc, img, x, y, g.CellRadius)
				continue
			}
		}

		dc.SetColor(cellColor(pal, date, today, marked, req.HighlightWeekends))
		dc.DrawCircle(x, y, g.CellRadius)
		dc.Fill()
	}
}

// cellColor decides a cell's flat fill by comparing the cell's date against
// today. Precedence, highest first: marked, today, passed, weekend (future
// cells only, when requested), inactive. Comparing dates rather than day
// indexes matters in the segregated view, where a fully-past month's elapsed
// count is clamped to its length and an index test would light its last day.
func cellColor(pal theme.Palette, date, today time.Time, marked, highlightWeekends bool) color.NRGBA {
	switch {
	case marked:
		return pal.Special
	case date.Equal(today):
		return pal.Active
	case date.Before(today):
		return pal.Passed
	case highlightWeekends && isWeekend(date):
		return pal.Weekend
	default:
		return pal.Inactive
	}
}

func isWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// drawPictogram scales img to the cell's diameter and draws it centered on
// the cell.
func drawPictogram(dc *gg.Context, img image.Image, x, y, radius float64) {
	side := int(radius * 2)
	if side < 1 {
		return
	}
	scaled := image.NewRGBA(image.Rect(0, 0, side, side))
	xdraw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, img.Bounds(), xdraw.Over, nil)
	dc.DrawImage(scaled, int(x-radius), int(y-radius))
}
