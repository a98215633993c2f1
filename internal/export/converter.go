package export

import "context"

// Handle tracks one running conversion.
type Handle interface {
	// Progress reports conversion progress in [0,1]. Best effort: it may
	// stay at 0 when the source duration is unknown.
	Progress() float64
	// Done yields the terminal result exactly once. A nil error means the
	// output file is complete.
	Done() <-chan error
}

// Converter starts media conversions. Implementations must remove any
// partial output on failure.
type Converter interface {
	Begin(ctx context.Context, src, dst string) (Handle, error)
}
