// Package daygrid provides embedded assets for the daygrid server.
//
// The root package exists solely to embed [config.default.toml] via
// [DefaultConfigTOML]. The server copies this file into the data directory
// on first run so users have a commented template to edit.
package daygrid

import _ "embed"

// DefaultConfigTOML holds the raw bytes of config.default.toml, embedded at
// build time.
//
//go:embed config.default.toml
var DefaultConfigTOML []byte
