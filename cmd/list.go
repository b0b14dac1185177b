package cmd

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/hambosto/seclume/internal/unpacker"
)

func runList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	password := fs.String("password", "", "archive password (prompted when omitted)")
	verbose := fs.Bool("v", false, "verbose output")
	debug := fs.Bool("vv", false, "debug output")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if fs.NArg() != 1 {
		return errors.New("list: need exactly one archive path")
	}

	pw, err := getPassword(*password, false, false, false)
	if err != nil {
		return err
	}

	result, err := unpacker.List(fs.Arg(0), pw, newLogger(*verbose, *debug))
	if err != nil {
		return err
	}

	for _, entry := range result.Entries {
		fmt.Printf("%s %10d %s\n", os.FileMode(entry.Mode).Perm(), entry.OriginalSize, entry.Filename)
	}
	if result.ErrorCount > 0 {
		return fmt.Errorf("list: %d entries could not be decoded", result.ErrorCount)
	}
	return nil
}
