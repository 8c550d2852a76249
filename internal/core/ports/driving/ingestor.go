// Package driving declares the interfaces outer layers (the CLI) call
// into; internal/core/services provides the concrete implementations.
package driving

import (
	"context"

	"github.com/localsearch/filesearch/internal/core/domain"
)

// Ingestor orchestrates discovery, extraction, hashing, and the three-store
// upsert.
type Ingestor interface {
	Index(ctx context.Context, root string, opts domain.IndexOptions) (domain.IndexReport, error)
	Clear(ctx context.Context) error
}
