// Package paths centralizes the file and directory names used across the
// daygrid server. All data-directory layout decisions live here.
package paths

import "path/filepath"

// Data directory file and directory names.
const (
	PIDFile    = "daygrid.pid"
	ConfigFile = "config.toml"
	LogFile    = "daygrid.log"
	FontsDir   = "fonts"
	FontCache  = "font-cache"
)

// DataDir provides path construction rooted at a data directory.
type DataDir struct {
	Root string
}

// PID returns the full path to the PID file.
func (d DataDir) PID() string { return filepath.Join(d.Root, PIDFile) }

// Config returns the full path to the config file.
func (d DataDir) Config() string { return filepath.Join(d.Root, ConfigFile) }

// Log returns the full path to the log file.
func (d DataDir) Log() string { return filepath.Join(d.Root, LogFile) }

// Fonts returns the directory users drop local font files into.
func (d DataDir) Fonts() string { return filepath.Join(d.Root, FontsDir) }

// FontCacheDir returns the directory downloaded fonts are cached in.
func (d DataDir) FontCacheDir() string { return filepath.Join(d.Root, FontCache) }
