// Package main implements the daygrid server, which renders time-period
// progress wallpapers as PNG images over HTTP.
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"runtime/debug"
	"strconv"
	"strings"

	rootpkg "github.com/daygrid/daygrid"
	"github.com/daygrid/daygrid/internal/config"
	"github.com/daygrid/daygrid/internal/fontpack"
	"github.com/daygrid/daygrid/internal/httpapi"
	"github.com/daygrid/daygrid/internal/logger"
	"github.com/daygrid/daygrid/internal/paths"
	"github.com/daygrid/daygrid/internal/pictogram"
	"github.com/daygrid/daygrid/internal/render"
)

// ///////////////////////////////////////////////
// Version
// ///////////////////////////////////////////////

// version is stamped by release builds through
// -ldflags "-X main.version=...". Unstamped builds fall back to the VCS
// metadata the Go toolchain embeds on its own.
var version = "dev"

// resolveVersion returns the version string logged at startup: the stamped
// value when present, otherwise a "dev+<hash>" tag derived from the embedded
// VCS revision, with a ".dirty" suffix for uncommitted trees.
func resolveVersion() string {
	if version != "dev" {
		return version
	}
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return version
	}
	tag := version
	for _, s := range info.Settings {
		if s.Key == "vcs.revision" && len(s.Value) >= 7 {
			tag = "dev+" + s.Value[:7]
		}
	}
	if tag == version {
		return version
	}
	for _, s := range info.Settings {
		if s.Key == "vcs.modified" && s.Value == "true" {
			tag += ".dirty"
		}
	}
	return tag
}

// ///////////////////////////////////////////////
// PID Management
// ///////////////////////////////////////////////

// The PID file enforces one server per data directory. Its single line is
// "<pid> <token>": the pid for diagnostics, the token so only the instance
// that wrote the file removes it. Liveness is decided by the advisory lock
// held on the file, never by the pid's existence.

// pidToken generates the random ownership token written into the PID file.
func pidToken() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// writePID opens the PID file, takes the advisory lock, and records this
// instance. The returned handle must stay open for the server's lifetime to
// hold the lock; hand it back to [removePID] on shutdown.
func writePID(dp paths.DataDir, token string) (*os.File, error) {
	f, err := os.OpenFile(dp.PID(), os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open PID file: %w", err)
	}
	if err := lockFile(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("lock PID file: %w", err)
	}
	if err := f.Truncate(0); err != nil {
		_ = unlockFile(f)
		f.Close()
		return nil, fmt.Errorf("truncate PID file: %w", err)
	}
	if _, err := fmt.Fprintf(f, "%d %s\n", os.Getpid(), token); err != nil {
		_ = unlockFile(f)
		f.Close()
		return nil, fmt.Errorf("write PID file: %w", err)
	}
	return f, nil
}

// parsePIDLine splits PID file content into its pid and token fields.
func parsePIDLine(data []byte) (pid int, token string) {
	fields := strings.Fields(string(data))
	if len(fields) >= 1 {
		pid, _ = strconv.Atoi(fields[0])
	}
	if len(fields) >= 2 {
		token = fields[1]
	}
	return pid, token
}

// removePID releases the lock, closes the handle, and deletes the PID file
// when the stored token proves this instance owns it.
func removePID(dp paths.DataDir, token string, f *os.File) {
	if f != nil {
		_ = unlockFile(f)
		f.Close()
	}
	data, err := os.ReadFile(dp.PID())
	if err != nil {
		return
	}
	if _, owner := parsePIDLine(data); owner == token {
		os.Remove(dp.PID())
	}
}

// checkStalePID probes for a running instance by trying the advisory lock.
// A failed lock means another server holds it; a successful one means any
// previous instance died without cleanup, so the leftover file is removed.
func checkStalePID(dp paths.DataDir) (alive bool, pid int) {
	f, err := os.OpenFile(dp.PID(), os.O_RDWR, 0o600)
	if err != nil {
		return false, 0
	}

	if lockErr := lockFile(f); lockErr != nil {
		data, _ := os.ReadFile(dp.PID())
		f.Close()
		pid, _ = parsePIDLine(data)
		return true, pid
	}

	_ = unlockFile(f)
	f.Close()
	os.Remove(dp.PID())
	return false, 0
}

// ///////////////////////////////////////////////
// Renderer Building
// ///////////////////////////////////////////////

// buildRenderer assembles a renderer from the loaded config: fonts through
// the local/download/embedded chain, pictogram cache, and render options.
// Called at startup and again on every config reload.
func buildRenderer(cfg *config.Config, dp paths.DataDir) *render.Renderer {
	fonts := fontpack.Load(fontpack.Config{
		Dir:               dp.Fonts(),
		TextPatterns:      cfg.Fonts.TextPatterns,
		SignaturePatterns: cfg.Fonts.SignaturePatterns,
		TextSpec:          cfg.Fonts.Text,
		SignatureSpec:     cfg.Fonts.Signature,
		CacheDir:          dp.FontCacheDir(),
	})
	pics := pictogram.New(pictogram.Options{
		BaseURL:     cfg.Pictogram.BaseURL,
		Timeout:     cfg.PictogramTimeout(),
		NegativeTTL: cfg.PictogramNegativeTTL(),
		MaxEntries:  cfg.Pictogram.MaxEntries,
	})
	return render.New(render.Options{
		Fonts:             fonts,
		Pictograms:        pics,
		SignatureMaxRunes: cfg.Render.SignatureMaxRunes,
		ColorOverrides:    cfg.Render.Colors,
	})
}

// ///////////////////////////////////////////////
// Default Data Directory
// ///////////////////////////////////////////////

// defaultDataDir returns the platform default directory for daygrid data,
// typically ~/.daygrid. Falls back to ./.daygrid if the home directory
// cannot be determined.
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".daygrid")
	}
	return filepath.Join(home, ".daygrid")
}

// ///////////////////////////////////////////////
// Main
// ///////////////////////////////////////////////

func main() {
	dataDir := flag.String("data-dir", defaultDataDir(), "Data directory for config, fonts, and logs")
	listen := flag.String("listen", "", "Listen address, overriding the config file")
	foreground := flag.Bool("foreground", false, "Also log to stderr")
	flag.Parse()

	dp := paths.DataDir{Root: *dataDir}

	if err := os.MkdirAll(dp.Root, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: create data dir: %v\n", err)
		os.Exit(1)
	}
	if err := os.MkdirAll(dp.Fonts(), 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "warning: create fonts dir: %v\n", err)
	}

	if alive, pid := checkStalePID(dp); alive {
		fmt.Fprintf(os.Stderr, "server already running (pid %d)\n", pid)
		os.Exit(1)
	}

	if _, err := os.Stat(dp.Config()); os.IsNotExist(err) {
		if writeErr := os.WriteFile(dp.Config(), rootpkg.DefaultConfigTOML, 0o644); writeErr != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to write default config: %v\n", writeErr)
		}
	}

	cfg, err := config.Load(dp.Root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fatal: load config: %v\n", err)
		os.Exit(1)
	}
	if *listen != "" {
		cfg.Server.Listen = *listen
	}

	log, logCloser := logger.New(dp.Log(), logger.ParseLevel(cfg.Log.Level), cfg.Log.MaxSizeMB, *foreground)
	defer logCloser.Close()
	slog.SetDefault(log)

	slog.Info("daygrid starting", "version", resolveVersion(), "data_dir", dp.Root)

	token := pidToken()
	pidFile, err := writePID(dp, token)
	if err != nil {
		slog.Error("failed to write PID file", "error", err)
		os.Exit(1)
	}
	defer removePID(dp, token, pidFile)

	api := httpapi.New(buildRenderer(cfg, dp))

	watcher, err := config.NewWatcher(dp.Root)
	if err != nil {
		slog.Warn("config watcher unavailable, edits need a restart", "error", err)
	} else {
		defer watcher.Close()
		if watcher.Polling() {
			slog.Info("using polling mode for config watching")
		}
	}

	srv := &http.Server{Addr: cfg.Server.Listen, Handler: api.Handler()}
	serveErr := make(chan error, 1)
	go func() { serveErr <- srv.ListenAndServe() }()
	slog.Info("listening", "addr", cfg.Server.Listen)

	run(srv, api, watcher, cfg, dp, serveErr)
}

// ///////////////////////////////////////////////
// Event Loop
// ///////////////////////////////////////////////

// run blocks until shutdown, handling OS signals, server failure, and config
// reload events. A reload rebuilds the renderer in place; in-flight requests
// finish on the old one. Listen address changes still need a restart.
func run(srv *http.Server, api *httpapi.Server, watcher *config.Watcher, cfg *config.Config, dp paths.DataDir, serveErr <-chan error) {
	sigCh := signalChannel()

	var reloads <-chan struct{}
	if watcher != nil {
		reloads = watcher.Events()
	}

	for {
		select {
		case <-sigCh:
			slog.Info("received shutdown signal")
			ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout())
			defer cancel()
			if err := srv.Shutdown(ctx); err != nil {
				slog.Warn("graceful shutdown incomplete", "error", err)
			}
			return

		case err := <-serveErr:
			if !errors.Is(err, http.ErrServerClosed) {
				slog.Error("server stopped", "error", err)
				os.Exit(1)
			}
			return

		case <-reloads:
			newCfg, err := config.Load(dp.Root)
			if err != nil {
				slog.Warn("config reload failed, keeping previous settings", "error", err)
				continue
			}
			if newCfg.Server.Listen != cfg.Server.Listen {
				slog.Warn("listen address change requires a restart",
					"current", cfg.Server.Listen, "config", newCfg.Server.Listen)
				newCfg.Server.Listen = cfg.Server.Listen
			}
			api.SetRenderer(buildRenderer(newCfg, dp))
			cfg = newCfg
			slog.Info("config reloaded")
		}
	}
}
