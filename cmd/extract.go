package cmd

import (
	"errors"
	"flag"
	"os"

	"github.com/hambosto/seclume/internal/unpacker"
)

func runExtract(args []string) error {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	force := fs.Bool("f", false, "overwrite existing files")
	fs.BoolVar(force, "force", *force, "overwrite existing files")
	outdir := fs.String("outdir", "", "extraction directory (overrides the archive's stored hint)")
	password := fs.String("password", "", "archive password (prompted when omitted)")
	verbose := fs.Bool("v", false, "verbose output")
	debug := fs.Bool("vv", false, "debug output")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() != 1 {
		return errors.New("extract: need exactly one archive path")
	}
	archivePath := fs.Arg(0)

	pw, err := getPassword(*password, false, false, false)
	if err != nil {
		return err
	}

	var size int64
	if info, statErr := os.Stat(archivePath); statErr == nil {
		size = info.Size()
	}

	return unpacker.Extract(archivePath, pw, unpacker.ExtractOptions{
		Outdir: *outdir,
		Force:  *force,
		Log:    newLogger(*verbose, *debug),
		// The bar advances by plaintext bytes, so the archive size is
		// only an estimate of the total; close enough for a counter.
		Progress: progressFor(size, "extracting", !*verbose && !*debug),
	})
}
