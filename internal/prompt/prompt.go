// Package prompt gathers interactive input (passwords, confirmations,
// file selection) via charmbracelet/huh, asking a single question at a
// time rather than batching a form.
package prompt

import (
	"errors"
	"fmt"

	"github.com/charmbracelet/huh"
)

// ErrEmptyPassword is returned when the user submits an empty password.
var ErrEmptyPassword = errors.New("prompt: password cannot be empty")

// Password prompts for a password with input masked, requiring a
// non-empty value.
func Password(title string) (string, error) {
	var value string
	field := huh.NewInput().
		Title(title).
		EchoMode(huh.EchoModePassword).
		Validate(func(s string) error {
			if s == "" {
				return ErrEmptyPassword
			}
			return nil
		}).
		Value(&value)

	if err := huh.NewForm(huh.NewGroup(field)).Run(); err != nil {
		return "", fmt.Errorf("prompt: %w", err)
	}
	return value, nil
}

// PasswordWithConfirm prompts for a password twice and ensures the two
// entries match, for archive creation.
func PasswordWithConfirm(title string) (string, error) {
	var value, confirm string

	group := huh.NewGroup(
		huh.NewInput().Title(title).EchoMode(huh.EchoModePassword).Validate(func(s string) error {
			if s == "" {
				return ErrEmptyPassword
			}
			return nil
		}).Value(&value),
		huh.NewInput().Title("confirm "+title).EchoMode(huh.EchoModePassword).Value(&confirm),
	)

	if err := huh.NewForm(group).Run(); err != nil {
		return "", fmt.Errorf("prompt: %w", err)
	}
	if value != confirm {
		return "", errors.New("prompt: passwords do not match")
	}
	return value, nil
}

// Input asks for a single line of text, requiring a non-empty value.
func Input(title string) (string, error) {
	var value string
	field := huh.NewInput().
		Title(title).
		Validate(func(s string) error {
			if s == "" {
				return errors.New("value cannot be empty")
			}
			return nil
		}).
		Value(&value)

	if err := huh.NewForm(huh.NewGroup(field)).Run(); err != nil {
		return "", fmt.Errorf("prompt: %w", err)
	}
	return value, nil
}

// Confirm asks a yes/no question, returning the user's answer.
func Confirm(title string) (bool, error) {
	var answer bool
	field := huh.NewConfirm().
		Title(title).
		Value(&answer)

	if err := huh.NewForm(huh.NewGroup(field)).Run(); err != nil {
		return false, fmt.Errorf("prompt: %w", err)
	}
	return answer, nil
}

// SelectOne asks the user to pick one of options, returning the chosen
// value.
func SelectOne(title string, options []string) (string, error) {
	var choice string
	opts := make([]huh.Option[string], len(options))
	for i, o := range options {
		opts[i] = huh.NewOption(o, o)
	}

	field := huh.NewSelect[string]().
		Title(title).
		Options(opts...).
		Value(&choice)

	if err := huh.NewForm(huh.NewGroup(field)).Run(); err != nil {
		return "", fmt.Errorf("prompt: %w", err)
	}
	return choice, nil
}
