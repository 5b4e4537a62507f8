// Package pictogram resolves marked-date glyphs to small bitmap icons
// fetched from a CDN, memoizing results for the life of the process.
//
// A glyph (typically an emoji) maps to a deterministic asset URL derived
// from its Unicode code points. The first resolve for a glyph fetches and
// decodes the image; later resolves are synchronous map lookups. Failures
// are cached too, with a short TTL, so an unreachable CDN cannot stall a
// render loop that references the same glyph in every cell.
//
// The cache is safe for concurrent renders. Fetches happen outside the
// lock; two goroutines missing on the same glyph at once perform a
// redundant fetch, which is harmless.
package pictogram

import (
	"fmt"
	"image"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	// PNG registration for image.Decode; the CDN serves PNG assets.
	_ "image/png"
)

// DefaultBaseURL is the Twemoji 72x72 PNG asset tree.
const DefaultBaseURL = "https://cdn.jsdelivr.net/gh/jdecked/twemoji@latest/assets/72x72"

const (
	defaultTimeout     = 5 * time.Second
	defaultNegativeTTL = 5 * time.Minute
	defaultMaxEntries  = 256

	// maxAssetBytes bounds a single fetched asset (the real files are ~2 KiB).
	maxAssetBytes = 1 << 20
)

// ///////////////////////////////////////////////
// Cache
// ///////////////////////////////////////////////

// Options configures a Cache. Zero values select the defaults above.
type Options struct {
	BaseURL     string
	Timeout     time.Duration
	NegativeTTL time.Duration
	MaxEntries  int
}

// Cache memoizes glyph fetches. Construct with [New] and share one instance
// across all renders; the zero value is not usable.
type Cache struct {
	baseURL     string
	negativeTTL time.Duration
	maxEntries  int

	client *retryablehttp.Client

	mu      sync.Mutex
	entries map[string]*entry

	// now is stubbed in tests to control negative-TTL expiry.
	now func() time.Time
}

// entry is one resolved glyph: either a decoded image or a timestamped
// failure awaiting its retry window.
type entry struct {
	img      image.Image
	failedAt time.Time
	lastUsed time.Time
}

// New creates a Cache with its own retrying HTTP client.
func New(opts Options) *Cache {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.NegativeTTL <= 0 {
		opts.NegativeTTL = defaultNegativeTTL
	}
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = defaultMaxEntries
	}

	client := retryablehttp.NewClient()
	client.RetryMax = 2
	client.HTTPClient.Timeout = opts.Timeout
	client.Logger = nil // suppress retryablehttp's default logging

	return &Cache{
		baseURL:     strings.TrimSuffix(opts.BaseURL, "/"),
		negativeTTL: opts.NegativeTTL,
		maxEntries:  opts.MaxEntries,
		client:      client,
		entries:     make(map[string]*entry),
		now:         time.Now,
	}
}

// Resolve returns the decoded image for glyph, or nil when the glyph cannot
// be resolved (bad glyph, fetch failure, decode failure). A nil return is
// the caller's cue to fall back to the special flat color.
func (c *Cache) Resolve(glyph string) image.Image {
	id := GlyphID(glyph)
	if id == "" {
		return nil
	}

	now := c.now()

	c.mu.Lock()
	if e, ok := c.entries[glyph]; ok {
		if e.img != nil {
			e.lastUsed = now
			c.mu.Unlock()
			return e.img
		}
		if now.Sub(e.failedAt) < c.negativeTTL {
			e.lastUsed = now
			c.mu.Unlock()
			return nil
		}
		// Failure entry expired; fall through and retry the fetch.
	}
	c.mu.Unlock()

	img, err := c.fetch(id)
	if err != nil {
		slog.Debug("pictogram fetch failed", "glyph", glyph, "id", id, "error", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.entries[glyph]; ok && existing.img != nil {
		// A concurrent resolve won the race with a successful fetch.
		existing.lastUsed = now
		return existing.img
	}
	if _, ok := c.entries[glyph]; !ok {
		c.evictIfFull()
	}
	c.entries[glyph] = &entry{img: img, failedAt: failureTime(img, now), lastUsed: now}
	return img
}

// failureTime returns now for a failed fetch and the zero time otherwise.
func failureTime(img image.Image, now time.Time) time.Time {
	if img == nil {
		return now
	}
	return time.Time{}
}

// Len returns the number of cached entries, including failures.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// evictIfFull removes the least recently used entry when the cache is at
// capacity. Called with c.mu held.
func (c *Cache) evictIfFull() {
	if len(c.entries) < c.maxEntries {
		return
	}
	var oldestKey string
	var oldest time.Time
	for k, e := range c.entries {
		if oldestKey == "" || e.lastUsed.Before(oldest) {
			oldestKey = k
			oldest = e.lastUsed
		}
	}
	delete(c.entries, oldestKey)
}

// ///////////////////////////////////////////////
// Fetch
// ///////////////////////////////////////////////

// fetch downloads and decodes the asset for a glyph identifier.
func (c *Cache) fetch(id string) (image.Image, error) {
	url := c.baseURL + "/" + id + ".png"

	resp, err := c.client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
	}

	img, _, err := image.Decode(http.MaxBytesReader(nil, resp.Body, maxAssetBytes))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}
	return img, nil
}

// ///////////////////////////////////////////////
// Glyph Identifiers
// ///////////////////////////////////////////////

// GlyphID derives the stable asset identifier for a glyph: the hyphen-joined
// lowercase hex of its code points, excluding the emoji variation selector
// U+FE0F. Returns "" for an empty or selector-only glyph.
func GlyphID(glyph string) string {
	var parts []string
	for _, r := range glyph {
		if r == 0xFE0F {
			continue
		}
		parts = append(parts, strconv.FormatInt(int64(r), 16))
	}
	return strings.Join(parts, "-")
}
