package cmd

import (
	"os"

	"github.com/hambosto/seclume/internal/policy"
	"github.com/hambosto/seclume/internal/prompt"
	"github.com/hambosto/seclume/internal/uiprogress"
	"github.com/hambosto/seclume/internal/verbosity"
)

// newLogger maps the -v/-vv flags onto a Logger writing to stderr, so
// progress bars and listings on stdout stay machine-readable.
func newLogger(verbose, debug bool) *verbosity.Logger {
	level := verbosity.Silent
	if verbose {
		level = verbosity.Basic
	}
	if debug {
		level = verbosity.Debug
	}
	return verbosity.New(os.Stderr, level)
}

// getPassword returns the password from the flag value when set,
// otherwise prompting interactively. confirm selects double-entry (for
// archive creation). The strength policy applies to new archives only;
// weak bypasses it.
func getPassword(flagValue string, confirm, enforce, weak bool) ([]byte, error) {
	pw := flagValue
	if pw == "" {
		var err error
		if confirm {
			pw, err = prompt.PasswordWithConfirm("archive password")
		} else {
			pw, err = prompt.Password("archive password")
		}
		if err != nil {
			return nil, err
		}
	}
	if enforce {
		if err := policy.CheckPassword(pw, weak); err != nil {
			return nil, err
		}
	}
	return []byte(pw), nil
}

// progressFor returns a progress sink for size bytes, or nil when the
// run is silent or size is unknown.
func progressFor(size int64, label string, quiet bool) interface{ Add(int64) error } {
	if quiet || size <= 0 {
		return nil
	}
	return uiprogress.New(size, label)
}

// multiFlag collects a repeatable string flag.
type multiFlag []string

func (m *multiFlag) String() string { return "" }

func (m *multiFlag) Set(v string) error {
	*m = append(*m, v)
	return nil
}
