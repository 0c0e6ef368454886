package store

import (
	"context"

	"github.com/feral-file/nft-registry/internal/store/schema"
)

// Store defines the interface for snapshot persistence
type Store interface {
	// SaveSnapshot persists one serialized ledger state
	SaveSnapshot(ctx context.Context, version int, payload []byte) error
	// LatestSnapshot retrieves the most recent snapshot, or nil when none exists
	LatestSnapshot(ctx context.Context) (*schema.LedgerSnapshot, error)
}
