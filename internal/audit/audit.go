// Package audit delivers transaction receipts to an external notarization
// sink. Delivery is best effort and at-least-once: ledger state is already
// committed before a record is submitted here, and a failed delivery parks
// the record in a single retry slot instead of surfacing to the caller.
package audit

import (
	"context"

	"github.com/feral-file/nft-registry/internal/domain"
)

// Record is one transaction receipt submitted to the audit sink.
type Record struct {
	Sequence uint64         `json:"sequence"`
	Event    domain.TxEvent `json:"event"`
}

// Publisher defines the interface for sending audit records to the sink
type Publisher interface {
	// Publish sends one audit record to the sink
	Publish(ctx context.Context, record *Record) error
	// Close closes the connection
	Close()
}
