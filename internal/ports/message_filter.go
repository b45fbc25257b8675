package ports

import (
	"context"

	"github.com/phishguard/phishguard/internal/core"
)

// MessageFilter defines the interface for analysis frontends
type MessageFilter interface {
	// Process analyzes a single raw message and returns its verdict
	Process(ctx context.Context, raw string) (*core.Verdict, error)

	// Start starts the frontend
	Start() error

	// Stop stops the frontend
	Stop() error
}
