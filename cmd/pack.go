package cmd

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hambosto/seclume/internal/archive"
	"github.com/hambosto/seclume/internal/codec"
	"github.com/hambosto/seclume/internal/collect"
	"github.com/hambosto/seclume/internal/config"
	"github.com/hambosto/seclume/internal/packer"
	"github.com/hambosto/seclume/internal/pathguard"
)

func runPack(args []string) error {
	defaults := config.Default()

	fs := flag.NewFlagSet("pack", flag.ExitOnError)
	force := fs.Bool("f", false, "overwrite an existing archive")
	fs.BoolVar(force, "force", *force, "overwrite an existing archive")
	algoName := fs.String("algo", defaults.Algorithm.String(), "compression algorithm: zlib or lzma")
	level := fs.Int("level", defaults.Level, "compression level, 0-9")
	outdirHint := fs.String("outdir", "", "default extraction directory stored in the archive")
	weak := fs.Bool("weak-password", false, "skip password strength checks")
	password := fs.String("password", "", "archive password (prompted when omitted)")
	var excludes multiFlag
	fs.Var(&excludes, "exclude", "glob pattern to exclude, repeatable")
	verbose := fs.Bool("v", false, "verbose output")
	debug := fs.Bool("vv", false, "debug output")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 2 {
		return errors.New("pack: need an archive path and at least one input")
	}
	archivePath := fs.Arg(0)

	cfg := config.Options{
		Level:        *level,
		Force:        *force,
		OutdirHint:   *outdirHint,
		WeakPassword: *weak,
	}
	switch *algoName {
	case "zlib":
		cfg.Algorithm = codec.Zlib
	case "lzma":
		cfg.Algorithm = codec.LZMA
	default:
		return fmt.Errorf("pack: unknown algorithm %q", *algoName)
	}
	if *verbose {
		cfg.Verbosity = 1
	}
	if *debug {
		cfg.Verbosity = 2
	}

	if cfg.Level < codec.MinLevel || cfg.Level > codec.MaxLevel {
		return fmt.Errorf("pack: level %d out of range [%d, %d]", cfg.Level, codec.MinLevel, codec.MaxLevel)
	}
	if cfg.OutdirHint != "" && pathguard.HasTraversal(cfg.OutdirHint) {
		return fmt.Errorf("pack: outdir %q contains path traversal", cfg.OutdirHint)
	}

	paths, err := collect.Collect(fs.Args()[1:], collect.Options{
		Excludes: excludes,
		MaxFiles: archive.MaxFiles,
	})
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return errors.New("pack: no files to pack after exclusions")
	}

	inputs, totalBytes, err := buildInputs(paths)
	if err != nil {
		return err
	}

	pw, err := getPassword(*password, true, true, cfg.WeakPassword)
	if err != nil {
		return err
	}

	return packer.Pack(archivePath, inputs, pw, packer.Options{
		Algorithm:  cfg.Algorithm,
		Level:      cfg.Level,
		OutdirHint: cfg.OutdirHint,
		Force:      cfg.Force,
		Log:        newLogger(cfg.Verbosity >= 1, cfg.Verbosity >= 2),
		Progress:   progressFor(totalBytes, "packing", cfg.Verbosity == 0),
	})
}

// buildInputs stats each collected path and derives the name stored in
// the archive: the path itself with any leading "./" and volume name
// stripped, normalized to forward slashes.
func buildInputs(paths []string) ([]packer.Input, int64, error) {
	inputs := make([]packer.Input, 0, len(paths))
	var total int64

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, 0, fmt.Errorf("pack: cannot stat %s: %w", path, err)
		}

		name := filepath.ToSlash(filepath.Clean(path))
		name = name[len(filepath.VolumeName(name)):]
		for len(name) > 0 && name[0] == '/' {
			name = name[1:]
		}
		if pathguard.HasTraversal(name) {
			return nil, 0, fmt.Errorf("pack: %q contains path traversal", name)
		}

		inputs = append(inputs, packer.Input{
			Filename: name,
			Path:     path,
			Size:     info.Size(),
			Mode:     uint32(info.Mode().Perm()),
		})
		total += info.Size()
	}
	return inputs, total, nil
}
