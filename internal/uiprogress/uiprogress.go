// Package uiprogress wraps schollz/progressbar/v3 for the pack and
// extract byte counters, plus the screen-clearing helpers used by the
// interactive entrypoint.
package uiprogress

import "github.com/schollz/progressbar/v3"

// Bar reports progress of a single long-running operation in bytes.
type Bar struct {
	bar *progressbar.ProgressBar
}

// New creates a progress bar of the given total size and label.
func New(size int64, label string) *Bar {
	bar := progressbar.NewOptions64(
		size,
		progressbar.OptionSetDescription(label),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowBytes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionFullWidth(),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return &Bar{bar: bar}
}

// Add advances the bar by n bytes.
func (b *Bar) Add(n int64) error {
	return b.bar.Add64(n)
}

// Finish marks the bar as complete.
func (b *Bar) Finish() error {
	return b.bar.Finish()
}
