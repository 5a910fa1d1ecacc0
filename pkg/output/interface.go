package output

import (
	"context"
	"io"
)

// Formatter renders a report in a specific format.
type Formatter interface {
	// Format renders the report to the given writer.
	Format(ctx context.Context, report *Report, w io.Writer) error

	// Name returns the format name (text, json).
	Name() string
}

// FormatOptions controls formatter behavior.
type FormatOptions struct {
	// Verbose appends run metadata (sources, line counts, duration).
	Verbose bool

	// Quiet produces a minimal summary-only rendering.
	Quiet bool
}
