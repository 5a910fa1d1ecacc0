package parser

import (
	"context"
)

// TraceSource provides an iterator over raw trace lines.
// Implementations must be safe for sequential access (not concurrent).
type TraceSource interface {
	// Next returns the next trace line.
	// Returns io.EOF when no more lines are available.
	Next(ctx context.Context) (*Line, error)

	// Close releases any resources held by the source.
	Close() error
}
