// Package fontpack loads the two typefaces a wallpaper uses: the text face
// for labels and the decorative face for the signature line.
//
// Each role resolves through a fallback chain, best first:
//
//  1. a local font file discovered under the configured fonts directory
//     (doublestar glob patterns, e.g. "**/*.ttf")
//  2. a Google Fonts download ("google:FAMILY:WEIGHT" spec), cached on disk
//  3. the Go Regular face embedded in the binary
//
// Loading never fails: a [Pack] always comes back usable, degrading to the
// embedded face when nothing better can be had. Faces are created per call
// because font.Face values are not safe for concurrent use.
package fontpack

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-retryablehttp"
	woff "github.com/tdewolff/font"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"

	"github.com/daygrid/daygrid/internal/atomicfile"
)

// ///////////////////////////////////////////////
// Config
// ///////////////////////////////////////////////

// Config selects the font sources for both roles.
type Config struct {
	// Dir is the local fonts directory searched first; empty skips the
	// local step.
	Dir string
	// TextPatterns and SignaturePatterns are doublestar globs matched
	// against Dir, in order. The first match wins.
	TextPatterns      []string
	SignaturePatterns []string
	// TextSpec and SignatureSpec are "google:FAMILY:WEIGHT" download
	// specs tried when no local file matches; empty skips the fetch.
	TextSpec      string
	SignatureSpec string
	// CacheDir stores downloaded fonts; empty disables the disk cache.
	CacheDir string
}

// ///////////////////////////////////////////////
// Pack
// ///////////////////////////////////////////////

// Pack holds the parsed fonts for one server instance.
type Pack struct {
	text      *opentype.Font
	signature *opentype.Font // nil means "use the text font"
}

// Load resolves both roles through their fallback chains. It always returns
// a usable Pack.
func Load(cfg Config) *Pack {
	p := &Pack{}

	p.text = loadRole("text", cfg.Dir, cfg.TextPatterns, cfg.TextSpec, cfg.CacheDir)
	if p.text == nil {
		p.text = mustEmbedded()
	}

	p.signature = loadRole("signature", cfg.Dir, cfg.SignaturePatterns, cfg.SignatureSpec, cfg.CacheDir)
	return p
}

// TextFace creates a face for the text font at the given point size.
func (p *Pack) TextFace(size float64) font.Face {
	return newFace(p.text, size)
}

// SignatureFace creates a face for the signature font at the given point
// size, substituting the text font when no decorative font loaded.
func (p *Pack) SignatureFace(size float64) font.Face {
	f := p.signature
	if f == nil {
		f = p.text
	}
	return newFace(f, size)
}

// newFace builds a face, falling back to the embedded font on error.
func newFace(f *opentype.Font, size float64) font.Face {
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err == nil {
		return face
	}
	slog.Warn("font face creation failed, using embedded face", "error", err)
	face, err = opentype.NewFace(mustEmbedded(), &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		// goregular always produces a face; reaching this means the
		// embedded data itself is corrupt.
		panic(fmt.Sprintf("fontpack: embedded face: %v", err))
	}
	return face
}

// ///////////////////////////////////////////////
// Resolution Chain
// ///////////////////////////////////////////////

// loadRole walks one role's fallback chain and returns the first font that
// parses, or nil when every source fails.
func loadRole(role, dir string, patterns []string, spec, cacheDir string) *opentype.Font {
	if path := findLocal(dir, patterns); path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if f, parseErr := opentype.Parse(data); parseErr == nil {
				slog.Debug("loaded local font", "role", role, "path", path)
				return f
			}
			slog.Warn("local font does not parse, trying next source", "role", role, "path", path)
		}
	}

	if spec != "" {
		data, err := fetchGoogleFont(spec, cacheDir)
		if err != nil {
			slog.Warn("google font fetch failed", "role", role, "spec", spec, "error", err)
		} else if f, parseErr := opentype.Parse(data); parseErr == nil {
			slog.Debug("loaded google font", "role", role, "spec", spec)
			return f
		} else {
			slog.Warn("fetched font does not parse", "role", role, "spec", spec, "error", parseErr)
		}
	}

	return nil
}

// findLocal returns the first file under dir matching any pattern.
func findLocal(dir string, patterns []string) string {
	if dir == "" {
		return ""
	}
	for _, pat := range patterns {
		matches, err := doublestar.FilepathGlob(filepath.Join(dir, pat))
		if err != nil || len(matches) == 0 {
			continue
		}
		return matches[0]
	}
	return ""
}

// mustEmbedded parses the embedded Go Regular font. The data ships in the
// binary, so a parse failure is a build defect, not a runtime condition.
func mustEmbedded() *opentype.Font {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		panic(fmt.Sprintf("fontpack: parse embedded goregular: %v", err))
	}
	return f
}

// ///////////////////////////////////////////////
// Google Fonts
// ///////////////////////////////////////////////

// fontURLRe extracts the font file URL from the CSS response.
// Matches: url(https://fonts.gstatic.com/s/roboto/v32/xxx.woff2)
var fontURLRe = regexp.MustCompile(`url\((https://fonts\.gstatic\.com/[^)]+)\)`)

// httpClient is shared across all font fetches, initialized lazily.
var (
	httpClient     *retryablehttp.Client
	httpClientOnce sync.Once
)

func getHTTPClient() *retryablehttp.Client {
	httpClientOnce.Do(func() {
		httpClient = retryablehttp.NewClient()
		httpClient.RetryMax = 2
		httpClient.HTTPClient.Timeout = 15 * time.Second
		httpClient.Logger = nil
	})
	return httpClient
}

// parseGoogleFontSpec splits a "google:Family:Weight" spec into its parts.
func parseGoogleFontSpec(spec string) (family, weight string, ok bool) {
	parts := strings.SplitN(spec, ":", 3)
	if len(parts) != 3 || parts[0] != "google" {
		return "", "", false
	}
	return parts[1], parts[2], true
}

// fetchGoogleFont downloads a font via the Google Fonts CSS2 API, converting
// WOFF2 payloads to SFNT and caching the result on disk.
func fetchGoogleFont(spec, cacheDir string) ([]byte, error) {
	family, weight, ok := parseGoogleFontSpec(spec)
	if !ok {
		return nil, fmt.Errorf("invalid font spec %q: expected google:FAMILY:WEIGHT", spec)
	}

	var cacheFile string
	if cacheDir != "" {
		cacheFile = filepath.Join(cacheDir, fmt.Sprintf("%s-%s.ttf", family, weight))
		if data, err := os.ReadFile(cacheFile); err == nil {
			return data, nil
		}
	}

	cssURL := fmt.Sprintf("https://fonts.googleapis.com/css2?family=%s:wght@%s",
		url.QueryEscape(family), weight)

	client := getHTTPClient()
	req, err := retryablehttp.NewRequest("GET", cssURL, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	// A modern UA makes the API hand back WOFF2 URLs, which we can convert.
	req.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching CSS: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("CSS API status %d for %s wght@%s", resp.StatusCode, family, weight)
	}

	cssBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("reading CSS response: %w", err)
	}

	matches := fontURLRe.FindSubmatch(cssBody)
	if matches == nil {
		return nil, fmt.Errorf("no font URL in CSS response for %s wght@%s", family, weight)
	}
	fontURL := string(matches[1])

	fontResp, err := client.Get(fontURL)
	if err != nil {
		return nil, fmt.Errorf("downloading font file: %w", err)
	}
	defer fontResp.Body.Close()
	if fontResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("font download status %d", fontResp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(fontResp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("reading font file: %w", err)
	}

	if isWOFF2(fontURL, data) {
		sfnt, convErr := woff.ToSFNT(data)
		if convErr != nil {
			return nil, fmt.Errorf("converting WOFF2 to SFNT: %w", convErr)
		}
		data = sfnt
	}

	if cacheFile != "" {
		if err := os.MkdirAll(cacheDir, 0o755); err == nil {
			if err := atomicfile.Write(cacheFile, data, 0o644); err != nil {
				slog.Warn("failed to cache font", "path", cacheFile, "error", err)
			}
		}
	}

	return data, nil
}

// isWOFF2 checks for WOFF2 data by URL extension or magic bytes.
func isWOFF2(url string, data []byte) bool {
	if strings.HasSuffix(strings.ToLower(url), ".woff2") {
		return true
	}
	return len(data) >= 4 && data[0] == 'w' && data[1] == 'O' && data[2] == 'F' && data[3] == '2'
}
