package uiprogress

import "github.com/inancgumus/screen"

// Terminal provides screen-clearing helpers for the interactive CLI.
type Terminal struct{}

// NewTerminal returns a Terminal.
func NewTerminal() *Terminal { return &Terminal{} }

// Clear clears the terminal screen.
func (t *Terminal) Clear() { screen.Clear() }

// MoveTopLeft moves the cursor to the top-left corner.
func (t *Terminal) MoveTopLeft() { screen.MoveTopLeft() }
