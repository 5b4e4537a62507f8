// Tests for the render package: cell color precedence, progress bar fill
// rules, signature bounding, and full-canvas pixel checks against the known
// geometry.

package render

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/daygrid/daygrid/internal/layout"
	"github.com/daygrid/daygrid/internal/pictogram"
	"github.com/daygrid/daygrid/internal/theme"
	"github.com/daygrid/daygrid/internal/timerange"
)

// testNow is a fixed reference time: Sep 10 2025, mid-month. In month mode
// the range is Sep 1-30, elapsed 10.
var testNow = time.Date(2025, time.September, 10, 12, 0, 0, 0, timerange.Zone)

// newTestRenderer builds a Renderer on the embedded font with no pictogram
// cache, so tests never touch the network.
func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	return New(Options{})
}

// renderImage renders req and decodes the PNG.
func renderImage(t *testing.T, r *Renderer, req Request) image.Image {
	t.Helper()
	data, err := r.Render(req, testNow)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode rendered PNG: %v", err)
	}
	return img
}

// pixelAt returns the NRGBA color at a float cell-center position.
func pixelAt(img image.Image, x, y float64) color.NRGBA {
	return color.NRGBAModel.Convert(img.At(int(x), int(y))).(color.NRGBA)
}

// ///////////////////////////////////////////////
// Cell Color Policy
// ///////////////////////////////////////////////

func TestCellColor(t *testing.T) {
	pal, _ := theme.Lookup("dark")
	day := func(month time.Month, d int) time.Time {
		return time.Date(2025, month, d, 0, 0, 0, 0, timerange.Zone)
	}
	today := day(time.September, 10) // Wednesday

	tests := []struct {
		name              string
		date              time.Time
		marked            bool
		highlightWeekends bool
		want              color.NRGBA
	}{
		{"past day", day(time.September, 4), false, false, pal.Passed},
		{"today", today, false, false, pal.Active},
		{"future day", day(time.September, 21), false, false, pal.Inactive},
		{"future saturday highlighted", day(time.September, 13), false, true, pal.Weekend},
		{"future saturday not highlighted", day(time.September, 13), false, false, pal.Inactive},
		{"past saturday highlighted", day(time.September, 6), false, true, pal.Passed},
		{"marked beats today", today, true, false, pal.Special},
		{"marked beats weekend", day(time.September, 13), true, true, pal.Special},
		// A fully-past month's elapsed count clamps to its length; the
		// month's final day is still just a past day, not today.
		{"last day of a past month", day(time.March, 31), false, false, pal.Passed},
		{"last day of a future month", day(time.December, 31), false, false, pal.Inactive},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := cellColor(pal, tt.date, today, tt.marked, tt.highlightWeekends)
			if got != tt.want {
				t.Errorf("cellColor = %v, want %v", got, tt.want)
			}
		})
	}
}

// ///////////////////////////////////////////////
// Progress Bar
// ///////////////////////////////////////////////

func TestParseBarStyle(t *testing.T) {
	tests := []struct {
		in   string
		want BarStyle
	}{
		{"segmented", BarSegmented},
		{"solid", BarSolid},
		{"minimal", BarMinimal},
		{"", BarSegmented},
		{"fancy", BarSegmented},
	}
	for _, tt := range tests {
		if got := ParseBarStyle(tt.in); got != tt.want {
			t.Errorf("ParseBarStyle(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSegmentsFilled(t *testing.T) {
	tests := []struct {
		name           string
		elapsed, total int
		want           int
	}{
		{"nothing elapsed", 0, 365, 0},
		{"first day lights one segment", 1, 365, 1},
		{"ten percent", 36, 360, 1},
		{"halfway", 180, 360, 5},
		{"complete", 360, 360, 10},
		{"zero-length range", 0, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rng := timerange.Range{TotalDays: tt.total, ElapsedDays: tt.elapsed}
			if got := segmentsFilled(rng); got != tt.want {
				t.Errorf("segmentsFilled = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestTrackFillGeometry(t *testing.T) {
	tests := []struct {
		name     string
		width    float64
		radius   float64
		ratio    float64
		wantFill float64
		wantR    float64
	}{
		{"halfway", 600, 10, 0.5, 300, 10},
		{"complete", 600, 10, 1, 600, 10},
		{"empty", 600, 10, 0, 0, 0},
		// The fill stays exactly width*ratio at tiny ratios; the corner
		// radius shrinks instead.
		{"one day of a year", 600, 10, 1.0 / 365, 600.0 / 365, 600.0 / 365 / 2},
		{"wide fill keeps full radius", 800, 3, 0.25, 200, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fill, r := trackFillGeometry(tt.width, tt.radius, tt.ratio)
			if fill != tt.wantFill || r != tt.wantR {
				t.Errorf("trackFillGeometry = (%v, %v), want (%v, %v)", fill, r, tt.wantFill, tt.wantR)
			}
		})
	}
}

// ///////////////////////////////////////////////
// Signature
// ///////////////////////////////////////////////

func TestTruncateRunes(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 20, "short"},
		{"exactly twenty runes!", 21, "exactly twenty runes!"},
		{"this signature is far too long to keep", 20, "this signature is fa"},
		{"héllo wörld with ünïcödé runes", 10, "héllo wörl"},
		{"unbounded", 0, "unbounded"},
	}
	for _, tt := range tests {
		if got := truncateRunes(tt.in, tt.max); got != tt.want {
			t.Errorf("truncateRunes(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

// ///////////////////////////////////////////////
// Full Renders
// ///////////////////////////////////////////////

func TestRenderCanvasSize(t *testing.T) {
	r := newTestRenderer(t)

	tests := []struct {
		name    string
		profile layout.Profile
		wantW   int
		wantH   int
	}{
		{"mobile", layout.MobilePortrait, 1170, 2532},
		{"desktop", layout.DesktopLandscape, 2560, 1440},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := renderImage(t, r, Request{Mode: timerange.ModeYear, Profile: tt.profile})
			b := img.Bounds()
			if b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Errorf("canvas = %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestRenderDeterministic(t *testing.T) {
	r := newTestRenderer(t)
	req := Request{Mode: timerange.ModeMonth, Signature: "daily check"}

	first, err := r.Render(req, testNow)
	if err != nil {
		t.Fatalf("first Render: %v", err)
	}
	second, err := r.Render(req, testNow)
	if err != nil {
		t.Fatalf("second Render: %v", err)
	}
	if !bytes.Equal(first, second) {
		t.Error("two renders of the same request differ")
	}
}

func TestRenderMonthCells(t *testing.T) {
	r := newTestRenderer(t)
	pal, _ := theme.Lookup("dark")
	g := layout.For(timerange.ModeMonth, layout.MobilePortrait)

	img := renderImage(t, r, Request{Mode: timerange.ModeMonth})

	// Sep 2025: 30 days, elapsed 10 as of testNow.
	tests := []struct {
		name string
		cell int
		want color.NRGBA
	}{
		{"first day passed", 0, pal.Passed},
		{"today active", 9, pal.Active},
		{"last day inactive", 29, pal.Inactive},
		{"cell past month end unpainted", 32, pal.Background},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := g.CellCenter(tt.cell)
			if got := pixelAt(img, x, y); got != tt.want {
				t.Errorf("cell %d pixel = %v, want %v", tt.cell, got, tt.want)
			}
		})
	}
}

func TestRenderMarkedWithoutPictogram(t *testing.T) {
	r := newTestRenderer(t)
	pal, _ := theme.Lookup("dark")
	g := layout.For(timerange.ModeMonth, layout.MobilePortrait)

	img := renderImage(t, r, Request{
		Mode:   timerange.ModeMonth,
		Marked: map[Date]string{{Month: time.September, Day: 5}: "🎂"},
	})

	// No cache is wired, so the marked cell falls back to the special color.
	x, y := g.CellCenter(4)
	if got := pixelAt(img, x, y); got != pal.Special {
		t.Errorf("marked cell pixel = %v, want special %v", got, pal.Special)
	}
}

func TestRenderMarkedUnreachableCDN(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	cache := pictogram.New(pictogram.Options{BaseURL: srv.URL, Timeout: time.Second})
	r := New(Options{Pictograms: cache})
	pal, _ := theme.Lookup("dark")
	g := layout.For(timerange.ModeMonth, layout.MobilePortrait)

	img := renderImage(t, r, Request{
		Mode:   timerange.ModeMonth,
		Marked: map[Date]string{{Month: time.September, Day: 5}: "🎂"},
	})

	x, y := g.CellCenter(4)
	if got := pixelAt(img, x, y); got != pal.Special {
		t.Errorf("marked cell pixel = %v, want special %v", got, pal.Special)
	}
}

func TestRenderMarkedWithPictogram(t *testing.T) {
	asset := solidPNG(t, color.NRGBA{R: 200, G: 30, B: 30, A: 255})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write(asset)
	}))
	defer srv.Close()

	cache := pictogram.New(pictogram.Options{BaseURL: srv.URL, Timeout: time.Second})
	r := New(Options{Pictograms: cache})
	g := layout.For(timerange.ModeMonth, layout.MobilePortrait)

	img := renderImage(t, r, Request{
		Mode:   timerange.ModeMonth,
		Marked: map[Date]string{{Month: time.September, Day: 5}: "🎂"},
	})

	x, y := g.CellCenter(4)
	got := pixelAt(img, x, y)
	want := color.NRGBA{R: 200, G: 30, B: 30, A: 255}
	if got != want {
		t.Errorf("pictogram cell pixel = %v, want %v", got, want)
	}
}

func TestRenderSegregatedMonths(t *testing.T) {
	r := newTestRenderer(t)
	pal, _ := theme.Lookup("dark")
	blocks := layout.SegregatedMonths(2025, layout.MobilePortrait)

	img := renderImage(t, r, Request{Mode: timerange.ModeSegregatedMonths})

	// As of Sep 10 2025: all of March is passed, Dec 31 is future.
	march := blocks[time.March-1]
	x, y := march.Grid.CellCenter(0)
	if got := pixelAt(img, x, y); got != pal.Passed {
		t.Errorf("Mar 1 pixel = %v, want passed %v", got, pal.Passed)
	}
	// The last day of a past month must be passed too, not active: a past
	// month's elapsed count equals its length, and only a date comparison
	// keeps its final cell from lighting up.
	x, y = march.Grid.CellCenter(30)
	if got := pixelAt(img, x, y); got != pal.Passed {
		t.Errorf("Mar 31 pixel = %v, want passed %v", got, pal.Passed)
	}

	september := blocks[time.September-1]
	x, y = september.Grid.CellCenter(9)
	if got := pixelAt(img, x, y); got != pal.Active {
		t.Errorf("Sep 10 pixel = %v, want active %v", got, pal.Active)
	}

	december := blocks[time.December-1]
	x, y = december.Grid.CellCenter(30)
	if got := pixelAt(img, x, y); got != pal.Inactive {
		t.Errorf("Dec 31 pixel = %v, want inactive %v", got, pal.Inactive)
	}
}

func TestRenderLightTheme(t *testing.T) {
	r := newTestRenderer(t)
	pal, _ := theme.Lookup("light")

	img := renderImage(t, r, Request{Mode: timerange.ModeYear, Theme: "light"})

	// Top-left corner is always plain background.
	if got := pixelAt(img, 1, 1); got != pal.Background {
		t.Errorf("background pixel = %v, want %v", got, pal.Background)
	}
}

// solidPNG encodes a small single-color PNG, standing in for a CDN asset.
func solidPNG(t *testing.T, c color.NRGBA) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test PNG: %v", err)
	}
	return buf.Bytes()
}
