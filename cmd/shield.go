package cmd

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/hambosto/seclume/internal/resilience"
)

// shieldSuffix is appended to an archive's name when no explicit
// output path is given.
const shieldSuffix = ".shd"

func runShield(args []string) error {
	fs := flag.NewFlagSet("shield", flag.ExitOnError)
	force := fs.Bool("f", false, "overwrite an existing output file")
	fs.BoolVar(force, "force", *force, "overwrite an existing output file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 1 || fs.NArg() > 2 {
		return errors.New("shield: need an archive path and an optional output path")
	}
	inPath := fs.Arg(0)
	outPath := inPath + shieldSuffix
	if fs.NArg() == 2 {
		outPath = fs.Arg(1)
	}

	if err := refuseExisting(outPath, *force); err != nil {
		return err
	}
	return resilience.Shield(inPath, outPath, resilience.Options{})
}

func runUnshield(args []string) error {
	fs := flag.NewFlagSet("unshield", flag.ExitOnError)
	force := fs.Bool("f", false, "overwrite an existing output file")
	fs.BoolVar(force, "force", *force, "overwrite an existing output file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() < 1 || fs.NArg() > 2 {
		return errors.New("unshield: need a shielded path and an optional output path")
	}
	inPath := fs.Arg(0)
	outPath := strings.TrimSuffix(inPath, shieldSuffix)
	if fs.NArg() == 2 {
		outPath = fs.Arg(1)
	}
	if outPath == inPath {
		return fmt.Errorf("unshield: cannot derive an output path from %s, pass one explicitly", inPath)
	}

	if err := refuseExisting(outPath, *force); err != nil {
		return err
	}
	return resilience.Unshield(inPath, outPath, resilience.Options{})
}

func refuseExisting(path string, force bool) error {
	if force {
		return nil
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists, pass -f to overwrite", path)
	}
	return nil
}
