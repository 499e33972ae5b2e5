// Package brain defines the Brain interface for Luna's text generation.
package brain

import (
	"context"
	"time"
)

// Brain is the opaque text-generation collaborator: prompt in, text out.
// Every call is bounded by an explicit timeout; call sites treat any error
// as degraded mode and fall back to deterministic behavior, so a Brain
// failure never terminates a loop.
type Brain interface {
	// Generate produces text for a prompt within the given timeout.
	Generate(ctx context.Context, prompt string, timeout time.Duration) (string, error)

	// Ping checks generation engine connectivity.
	Ping(ctx context.Context) error
}
