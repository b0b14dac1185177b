// Package cmd is the command-line shell over the archive codec: it
// parses flags, gathers inputs and passwords, and hands everything to
// the packer, unpacker, and resilience layers. Run with no arguments
// it drops into an interactive mode instead.
package cmd

import (
	"fmt"
	"os"
)

const usage = `seclume - password-based file archiver

usage:
  seclume pack [-f] [--algo zlib|lzma] [--level 0-9] [--outdir DIR]
               [--exclude GLOB]... [--weak-password] [--password PW]
               [-v|-vv] ARCHIVE INPUT...
  seclume extract [-f] [--outdir DIR] [--password PW] [-v|-vv] ARCHIVE
  seclume list [--password PW] [-v|-vv] ARCHIVE
  seclume shield [-f] ARCHIVE [OUTPUT]
  seclume unshield [-f] SHIELDED [OUTPUT]

Run with no arguments for interactive mode.`

// Execute dispatches the subcommand named in os.Args and exits the
// process with 0 on success and 1 on any failure.
func Execute() {
	args := os.Args[1:]
	if len(args) == 0 {
		if err := runInteractive(); err != nil {
			fail(err)
		}
		return
	}

	var err error
	switch args[0] {
	case "pack":
		err = runPack(args[1:])
	case "extract":
		err = runExtract(args[1:])
	case "list":
		err = runList(args[1:])
	case "shield":
		err = runShield(args[1:])
	case "unshield":
		err = runUnshield(args[1:])
	case "help", "-h", "--help":
		fmt.Println(usage)
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n%s\n", args[0], usage)
		os.Exit(1)
	}
	if err != nil {
		fail(err)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
