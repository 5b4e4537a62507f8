// Package layout computes the grid geometry for each view mode and canvas
// profile: how many columns and rows of day cells to draw, how large each
// cell is, and where the grid sits on the canvas.
//
// The per-mode cell sizes are fixed design constants tuned by eye on real
// devices, not derived from the day count. The only hard rule is that
// columns*rows never falls short of the number of days the mode can display,
// so the day walk always fits.
package layout

import (
	"time"

	"github.com/daygrid/daygrid/internal/timerange"
)

// ///////////////////////////////////////////////
// Profile
// ///////////////////////////////////////////////

// Profile is a named canvas size preset.
type Profile int

const (
	// MobilePortrait targets phone lock screens (1170x2532).
	MobilePortrait Profile = iota
	// DesktopLandscape targets desktop wallpapers (2560x1440).
	DesktopLandscape
)

// ParseProfile converts a query-string size value to a Profile.
// Unrecognized strings fall back to MobilePortrait.
func ParseProfile(s string) Profile {
	if s == "desktop" {
		return DesktopLandscape
	}
	return MobilePortrait
}

// Size returns the pixel dimensions of the profile's canvas.
func (p Profile) Size() (width, height int) {
	if p == DesktopLandscape {
		return 2560, 1440
	}
	return 1170, 2532
}

// BarWidth returns the progress bar track width for the profile.
func (p Profile) BarWidth() float64 {
	if p == DesktopLandscape {
		return 800
	}
	return 600
}

// ///////////////////////////////////////////////
// Grid
// ///////////////////////////////////////////////

// Grid describes one rectangular field of day cells.
type Grid struct {
	Columns int
	Rows    int
	// CellRadius is the dot radius in pixels.
	CellRadius float64
	// CellSpacing is the gap between adjacent cell edges.
	CellSpacing float64
	// OriginX, OriginY locate the top-left corner of the first cell.
	OriginX float64
	OriginY float64
}

// Width returns the total pixel width spanned by the grid.
func (g Grid) Width() float64 {
	return float64(g.Columns)*g.CellRadius*2 + float64(g.Columns-1)*g.CellSpacing
}

// Height returns the total pixel height spanned by the grid.
func (g Grid) Height() float64 {
	return float64(g.Rows)*g.CellRadius*2 + float64(g.Rows-1)*g.CellSpacing
}

// CellCenter returns the center point of the cell at index i, counting
// row-major: left-to-right, top-to-bottom.
func (g Grid) CellCenter(i int) (x, y float64) {
	col := i % g.Columns
	row := i / g.Columns
	pitch := g.CellRadius*2 + g.CellSpacing
	x = g.OriginX + float64(col)*pitch + g.CellRadius
	y = g.OriginY + float64(row)*pitch + g.CellRadius
	return x, y
}

// ///////////////////////////////////////////////
// Mode Geometry
// ///////////////////////////////////////////////

// gridShape holds the fixed constants for one (mode, profile) pair.
type gridShape struct {
	cols, rows       int
	radius, spacing  float64
	verticalOffset   float64 // applied after centering; only Year uses it
	verticalFloor    float64 // minimum OriginY to keep the grid on canvas
}

// shapeFor returns the design constants for a mode on a profile.
// Year is shifted downward on phones to clear the lock-screen clock.
func shapeFor(mode timerange.Mode, p Profile) gridShape {
	if p == DesktopLandscape {
		switch mode {
		case timerange.ModeMonth:
			return gridShape{cols: 7, rows: 5, radius: 30, spacing: 35, verticalFloor: 80}
		case timerange.ModeQuarter:
			return gridShape{cols: 14, rows: 7, radius: 22, spacing: 22, verticalFloor: 80}
		case timerange.ModeFortnight:
			return gridShape{cols: 7, rows: 2, radius: 40, spacing: 45, verticalFloor: 80}
		default: // year
			return gridShape{cols: 37, rows: 10, radius: 16, spacing: 14, verticalOffset: 40, verticalFloor: 80}
		}
	}
	switch mode {
	case timerange.ModeMonth:
		return gridShape{cols: 7, rows: 5, radius: 35, spacing: 45, verticalFloor: 200}
	case timerange.ModeQuarter:
		return gridShape{cols: 10, rows: 10, radius: 25, spacing: 25, verticalFloor: 200}
	case timerange.ModeFortnight:
		return gridShape{cols: 7, rows: 2, radius: 45, spacing: 50, verticalFloor: 200}
	default: // year
		return gridShape{cols: 15, rows: 25, radius: 18, spacing: 15, verticalOffset: 150, verticalFloor: 200}
	}
}

// For computes the positioned grid for a mode on a profile. The grid is
// centered horizontally; vertical placement centers around the canvas
// midpoint, then applies the mode's offset and floor.
func For(mode timerange.Mode, p Profile) Grid {
	s := shapeFor(mode, p)
	w, h := p.Size()

	g := Grid{
		Columns:     s.cols,
		Rows:        s.rows,
		CellRadius:  s.radius,
		CellSpacing: s.spacing,
	}
	g.OriginX = (float64(w) - g.Width()) / 2
	g.OriginY = (float64(h)-g.Height())/2 + s.verticalOffset
	if g.OriginY < s.verticalFloor {
		g.OriginY = s.verticalFloor
	}
	return g
}

// ///////////////////////////////////////////////
// Segregated Months
// ///////////////////////////////////////////////

// MonthBlock is one mini-grid in the segregated-months view.
type MonthBlock struct {
	Month time.Month
	// Days is how many cells of the mini-grid get painted.
	Days int
	// LabelX, LabelY is the center point of the month-name label drawn
	// above the mini-grid.
	LabelX float64
	LabelY float64
	Grid   Grid
}

// segShape holds the segregated-view constants for one profile.
type segShape struct {
	blockCols, blockRows int     // arrangement of month blocks
	radius, spacing      float64 // mini-grid cell constants
	gapX, gapY           float64 // gaps between month blocks
	labelGap             float64 // space reserved above each mini-grid
	verticalFloor        float64
}

func segShapeFor(p Profile) segShape {
	if p == DesktopLandscape {
		return segShape{blockCols: 6, blockRows: 2, radius: 15, spacing: 11, gapX: 40, gapY: 50, labelGap: 44, verticalFloor: 80}
	}
	return segShape{blockCols: 3, blockRows: 4, radius: 13, spacing: 10, gapX: 40, gapY: 60, labelGap: 50, verticalFloor: 200}
}

// SegregatedMonths lays out twelve month mini-grids for the given year.
// Each mini-grid is 7 columns wide with enough rows for its month; blocks
// are arranged 3x4 on portrait canvases and 6x2 on landscape ones, walking
// January through December row-major. Block pitch is uniform (sized for a
// five-row month) so the blocks align regardless of month length.
func SegregatedMonths(year int, p Profile) []MonthBlock {
	s := segShapeFor(p)
	w, h := p.Size()

	cell := Grid{Columns: 7, Rows: 5, CellRadius: s.radius, CellSpacing: s.spacing}
	blockW := cell.Width()
	blockH := s.labelGap + cell.Height()

	fieldW := float64(s.blockCols)*blockW + float64(s.blockCols-1)*s.gapX
	fieldH := float64(s.blockRows)*blockH + float64(s.blockRows-1)*s.gapY
	fieldX := (float64(w) - fieldW) / 2
	fieldY := (float64(h) - fieldH) / 2
	if fieldY < s.verticalFloor {
		fieldY = s.verticalFloor
	}

	blocks := make([]MonthBlock, 0, 12)
	for m := time.January; m <= time.December; m++ {
		i := int(m) - 1
		bx := fieldX + float64(i%s.blockCols)*(blockW+s.gapX)
		by := fieldY + float64(i/s.blockCols)*(blockH+s.gapY)

		days := daysIn(year, m)
		g := Grid{
			Columns:     7,
			Rows:        (days + 6) / 7,
			CellRadius:  s.radius,
			CellSpacing: s.spacing,
			OriginX:     bx,
			OriginY:     by + s.labelGap,
		}
		blocks = append(blocks, MonthBlock{
			Month:  m,
			Days:   days,
			LabelX: bx + blockW/2,
			LabelY: by + s.labelGap/2,
			Grid:   g,
		})
	}
	return blocks
}

// daysIn returns the day count of a month; the zeroth day of the following
// month is the last day of this one.
func daysIn(year int, m time.Month) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
