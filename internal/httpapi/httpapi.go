// Package httpapi exposes the wallpaper renderer over HTTP: a PNG endpoint,
// a static configuration dashboard, and a health check.
//
// Request parsing is forgiving. Every query parameter has a default and
// malformed values degrade to it; a request never fails over bad input, only
// over an internal encode error.
package httpapi

import (
	_ "embed"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/daygrid/daygrid/internal/layout"
	"github.com/daygrid/daygrid/internal/render"
	"github.com/daygrid/daygrid/internal/timerange"
)

//go:embed dashboard.html
var dashboardHTML []byte

// ///////////////////////////////////////////////
// Server
// ///////////////////////////////////////////////

// Server holds the handlers' shared state. The renderer is swappable at
// runtime so config reloads take effect without dropping in-flight requests.
type Server struct {
	renderer atomic.Pointer[render.Renderer]

	// now is stubbed in tests for deterministic renders.
	now func() time.Time
}

// New creates a Server around an initial renderer.
func New(r *render.Renderer) *Server {
	s := &Server{now: time.Now}
	s.renderer.Store(r)
	return s
}

// SetRenderer swaps the renderer used by subsequent requests.
func (s *Server) SetRenderer(r *render.Renderer) {
	s.renderer.Store(r)
}

// Handler returns the HTTP routing table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("GET /api/image", s.handleImage)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return mux
}

func (s *Server) handleDashboard(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(dashboardHTML)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok\n"))
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	req := parseRequest(r.URL.Query())

	start := time.Now()
	data, err := s.renderer.Load().Render(req, s.now())
	if err != nil {
		slog.Error("render failed", "mode", req.Mode, "error", err)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	slog.Debug("render complete",
		"mode", req.Mode, "theme", req.Theme, "marked", len(req.Marked),
		"ms", time.Since(start).Milliseconds())

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "no-store")
	w.Write(data)
}

// ///////////////////////////////////////////////
// Request Parsing
// ///////////////////////////////////////////////

// parseRequest maps query parameters to a render request. Unknown enum
// values and malformed date tokens fall back to defaults silently.
func parseRequest(q url.Values) render.Request {
	size := q.Get("size")
	if size == "" {
		size = q.Get("platform")
	}
	return render.Request{
		Mode:              timerange.ParseMode(q.Get("mode")),
		Marked:            parseDates(q.Get("dates")),
		Theme:             q.Get("theme"),
		Signature:         q.Get("signature"),
		BarStyle:          render.ParseBarStyle(q.Get("bar_style")),
		HighlightWeekends: q.Get("highlight_weekends") == "true",
		Profile:           layout.ParseProfile(size),
	}
}

// parseDates splits a comma-separated dates parameter into marked dates.
// Each token is "MM-DD" or "MM-DD|glyph"; tokens that do not parse are
// dropped without affecting the rest. An empty parameter yields nil.
func parseDates(param string) map[render.Date]string {
	if param == "" {
		return nil
	}
	marked := make(map[render.Date]string)
	for _, token := range strings.Split(param, ",") {
		if d, glyph, ok := parseDateToken(strings.TrimSpace(token)); ok {
			marked[d] = glyph
		}
	}
	if len(marked) == 0 {
		return nil
	}
	return marked
}

// monthMaxDays holds each month's maximum day count, indexed by month
// number. February admits 29; a Feb 29 mark is valid in leap years and
// matches no rendered day otherwise.
var monthMaxDays = [13]int{0, 31, 29, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// parseDateToken parses one "MM-DD" or "MM-DD|glyph" token. Days beyond the
// month's length (Apr 31, Feb 30) fail the parse.
func parseDateToken(token string) (render.Date, string, bool) {
	datePart, glyph, _ := strings.Cut(token, "|")

	monthStr, dayStr, found := strings.Cut(datePart, "-")
	if !found {
		return render.Date{}, "", false
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil || month < 1 || month > 12 {
		return render.Date{}, "", false
	}
	day, err := strconv.Atoi(dayStr)
	if err != nil || day < 1 || day > monthMaxDays[month] {
		return render.Date{}, "", false
	}
	return render.Date{Month: time.Month(month), Day: day}, glyph, true
}
