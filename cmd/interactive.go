package cmd

import (
	"fmt"
	"os"

	"github.com/hambosto/seclume/internal/prompt"
	"github.com/hambosto/seclume/internal/uiprogress"
	"github.com/hambosto/seclume/internal/unpacker"
)

// runInteractive walks the user through one operation with prompts
// instead of flags.
func runInteractive() error {
	terminal := uiprogress.NewTerminal()
	terminal.Clear()
	terminal.MoveTopLeft()

	operation, err := prompt.SelectOne("What would you like to do?", []string{
		"pack files into an archive",
		"extract an archive",
		"list archive contents",
	})
	if err != nil {
		return err
	}

	switch operation {
	case "pack files into an archive":
		return interactivePack()
	case "extract an archive":
		return interactiveExtract()
	default:
		return interactiveList()
	}
}

func interactivePack() error {
	archivePath, err := prompt.Input("archive to create")
	if err != nil {
		return err
	}
	inputs, err := prompt.Input("file or directory to pack")
	if err != nil {
		return err
	}

	args := []string{"-v"}
	if _, statErr := os.Stat(archivePath); statErr == nil {
		overwrite, err := prompt.Confirm(fmt.Sprintf("%s exists, overwrite?", archivePath))
		if err != nil {
			return err
		}
		if !overwrite {
			return fmt.Errorf("refusing to overwrite %s", archivePath)
		}
		args = append(args, "-f")
	}

	return runPack(append(args, archivePath, inputs))
}

func interactiveExtract() error {
	archivePath, err := prompt.Input("archive to extract")
	if err != nil {
		return err
	}
	return runExtract([]string{"-v", archivePath})
}

func interactiveList() error {
	archivePath, err := prompt.Input("archive to list")
	if err != nil {
		return err
	}
	pw, err := prompt.Password("archive password")
	if err != nil {
		return err
	}

	result, err := unpacker.List(archivePath, []byte(pw), newLogger(false, false))
	if err != nil {
		return err
	}
	for _, entry := range result.Entries {
		fmt.Printf("%s %10d %s\n", os.FileMode(entry.Mode).Perm(), entry.OriginalSize, entry.Filename)
	}
	if result.ErrorCount > 0 {
		return fmt.Errorf("%d entries could not be decoded", result.ErrorCount)
	}
	return nil
}
