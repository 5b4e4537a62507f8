// Progress bar rendering in three styles.

package render

import (
	"github.com/fogleman/gg"

	"github.com/daygrid/daygrid/internal/theme"
	"github.com/daygrid/daygrid/internal/timerange"
)

// ///////////////////////////////////////////////
// Bar Style
// ///////////////////////////////////////////////

// BarStyle selects how the progress bar is drawn.
type BarStyle int

const (
	// BarSegmented draws ten discrete blocks, filled left to right.
	BarSegmented BarStyle = iota
	// BarSolid draws a continuous rounded track with a filled portion.
	BarSolid
	// BarMinimal is a thin variant of the solid bar.
	BarMinimal
)

// ParseBarStyle converts a query-string bar_style value to a BarStyle.
// Unrecognized strings fall back to BarSegmented.
func ParseBarStyle(s string) BarStyle {
	switch s {
	case "solid":
		return BarSolid
	case "minimal":
		return BarMinimal
	default:
		return BarSegmented
	}
}

// String returns the query-string form of the style.
func (s BarStyle) String() string {
	switch s {
	case BarSolid:
		return "solid"
	case BarMinimal:
		return "minimal"
	default:
		return "segmented"
	}
}

// ///////////////////////////////////////////////
// Drawing
// ///////////////////////////////////////////////

const (
	solidBarHeight = 20
	solidBarRadius = 10

	minimalBarHeight = 6
	minimalBarRadius = 3

	segmentedBarHeight = 20
	segmentCount       = 10
	segmentGap         = 12
	segmentRadius      = 8
)

// drawBar renders the progress bar centered on centerX with its top edge at
// top.
func drawBar(dc *gg.Context, pal theme.Palette, style BarStyle, rng timerange.Range, centerX, top, width float64) {
	left := centerX - width/2

	switch style {
	case BarSolid:
		drawTrackBar(dc, pal, rng, left, top, width, solidBarHeight, solidBarRadius)
	case BarMinimal:
		drawTrackBar(dc, pal, rng, left, top, width, minimalBarHeight, minimalBarRadius)
	default:
		drawSegmentedBar(dc, pal, rng, left, top, width)
	}
}

// drawTrackBar draws the continuous style: a full-width track in the inactive
// color with the elapsed portion overlaid in the active color.
func drawTrackBar(dc *gg.Context, pal theme.Palette, rng timerange.Range, left, top, width, height, radius float64) {
	dc.SetColor(pal.Inactive)
	dc.DrawRoundedRectangle(left, top, width, height, radius)
	dc.Fill()

	fill, r := trackFillGeometry(width, radius, rng.Ratio())
	if fill <= 0 {
		return
	}
	dc.SetColor(pal.Active)
	dc.DrawRoundedRectangle(left, top, fill, height, r)
	dc.Fill()
}

// trackFillGeometry returns the filled width and corner radius of the
// continuous bar's elapsed portion. The fill width is exactly width*ratio;
// narrow fills shrink the corner radius rather than widening the fill, so
// early progress is never overstated.
func trackFillGeometry(width, radius, ratio float64) (fill, r float64) {
	fill = width * ratio
	r = radius
	if fill < r*2 {
		r = fill / 2
	}
	return fill, r
}

// drawSegmentedBar draws ten blocks. The filled count is floor(ratio*10),
// raised to one as soon as any day has elapsed so progress is visible from
// day one.
func drawSegmentedBar(dc *gg.Context, pal theme.Palette, rng timerange.Range, left, top, width float64) {
	filled := segmentsFilled(rng)

	segW := (width - segmentGap*(segmentCount-1)) / segmentCount
	for i := 0; i < segmentCount; i++ {
		if i < filled {
			dc.SetColor(pal.Active)
		} else {
			dc.SetColor(pal.Inactive)
		}
		x := left + float64(i)*(segW+segmentGap)
		dc.DrawRoundedRectangle(x, top, segW, segmentedBarHeight, segmentRadius)
		dc.Fill()
	}
}

// segmentsFilled returns how many of the ten segments light up.
func segmentsFilled(rng timerange.Range) int {
	filled := int(rng.Ratio() * segmentCount)
	if filled == 0 && rng.ElapsedDays > 0 {
		filled = 1
	}
	if filled > segmentCount {
		filled = segmentCount
	}
	return filled
}
