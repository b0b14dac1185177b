// Package config holds the options a pack/extract/list run is
// configured with. Options is a plain struct populated directly from
// parsed flags; there is no config-file layer.
package config

import "github.com/hambosto/seclume/internal/codec"

// Options configures a single pack, extract, or list run.
type Options struct {
	// Algorithm selects the compression codec for newly packed archives.
	Algorithm codec.Algorithm
	// Level is the compression level, 0-9.
	Level int
	// Force allows overwriting an existing output archive or file.
	Force bool
	// OutdirHint, when non-empty, is sealed into the archive header so
	// a later extract can default to it.
	OutdirHint string
	// WeakPassword bypasses password strength enforcement.
	WeakPassword bool
	// Verbosity is 0 (silent), 1 (basic), or 2 (debug).
	Verbosity int
}

// Default returns the baseline Options used when no flags override them.
func Default() Options {
	return Options{
		Algorithm: codec.Zlib,
		Level:     6,
	}
}
