// Package registry exposes the ledger as a single-writer service. Every
// mutation runs under one writer lock, so each operation observes the state
// left by the previous one and commits atomically before the next begins.
package registry

import (
	"slices"
	"strconv"
	"sync"

	"github.com/feral-file/nft-registry/internal/adapter"
	"github.com/feral-file/nft-registry/internal/audit"
	"github.com/feral-file/nft-registry/internal/domain"
	"github.com/feral-file/nft-registry/internal/ledger"
)

// Executor serializes access to the ledger and the collection metadata.
// Committed mutations are forwarded to the audit recorder after the state
// change is applied; audit delivery never affects the outcome.
type Executor struct {
	mu       sync.RWMutex
	ledger   *ledger.Ledger
	metadata domain.CollectionMetadata
	recorder audit.Recorder
	clock    adapter.Clock
}

// NewExecutor creates an executor over an empty ledger with the given
// bootstrap metadata. The recorder may be nil when no audit sink is wired.
func NewExecutor(metadata domain.CollectionMetadata, recorder audit.Recorder, clock adapter.Clock) *Executor {
	if metadata.CreatedAt.IsZero() {
		metadata.CreatedAt = clock.Now()
	}
	metadata.UpgradedAt = clock.Now()

	return &Executor{
		ledger:   ledger.New(clock),
		metadata: metadata,
		recorder: recorder,
		clock:    clock,
	}
}

// Metadata returns a copy of the collection metadata.
func (e *Executor) Metadata() domain.CollectionMetadata {
	e.mu.RLock()
	defer e.mu.RUnlock()
	meta := e.metadata
	meta.Custodians = slices.Clone(meta.Custodians)
	return meta
}

// Custodians returns the current custodian set.
func (e *Executor) Custodians() []domain.Principal {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return slices.Clone(e.metadata.Custodians)
}

// SetName updates the collection name. Custodians only.
func (e *Executor) SetName(caller domain.Principal, name string) error {
	return e.setMetadataField(caller, func(m *domain.CollectionMetadata) {
		m.Name = &name
	})
}

// SetLogo updates the collection logo. Custodians only.
func (e *Executor) SetLogo(caller domain.Principal, logo string) error {
	return e.setMetadataField(caller, func(m *domain.CollectionMetadata) {
		m.Logo = &logo
	})
}

// SetSymbol updates the collection symbol. Custodians only.
func (e *Executor) SetSymbol(caller domain.Principal, symbol string) error {
	return e.setMetadataField(caller, func(m *domain.CollectionMetadata) {
		m.Symbol = &symbol
	})
}

// SetCustodians replaces the custodian set. Custodians only.
func (e *Executor) SetCustodians(caller domain.Principal, custodians []domain.Principal) error {
	return e.setMetadataField(caller, func(m *domain.CollectionMetadata) {
		m.Custodians = slices.Clone(custodians)
	})
}

func (e *Executor) setMetadataField(caller domain.Principal, apply func(*domain.CollectionMetadata)) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.metadata.IsCustodian(caller) {
		return domain.ErrNotCustodian
	}
	apply(&e.metadata)
	return nil
}

// Token returns the record for id.
func (e *Executor) Token(id domain.TokenID) (*domain.TokenRecord, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.Token(id)
}

// OwnerOf returns the current owner of id.
func (e *Executor) OwnerOf(id domain.TokenID) (domain.Principal, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.OwnerOf(id)
}

// OperatorOf returns the current operator of id, or nil when none is set.
func (e *Executor) OperatorOf(id domain.TokenID) (*domain.Principal, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.OperatorOf(id)
}

// BalanceOf returns the number of tokens currently owned by p.
func (e *Executor) BalanceOf(p domain.Principal) (uint64, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.BalanceOf(p)
}

// OwnerTokenIDs returns the identifiers currently owned by p.
func (e *Executor) OwnerTokenIDs(p domain.Principal) ([]domain.TokenID, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.OwnerTokenIDs(p)
}

// OperatorTokenIDs returns the identifiers p is approved to move.
func (e *Executor) OperatorTokenIDs(p domain.Principal) ([]domain.TokenID, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.OperatorTokenIDs(p)
}

// OwnerTokenMetadata returns every record currently owned by p.
func (e *Executor) OwnerTokenMetadata(p domain.Principal) ([]domain.TokenRecord, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.OwnerTokenMetadata(p)
}

// OperatorTokenMetadata returns every record p is approved to move.
func (e *Executor) OperatorTokenMetadata(p domain.Principal) ([]domain.TokenRecord, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.OperatorTokenMetadata(p)
}

// IsApprovedForAll reports whether operator is approved on every token owned
// by owner.
func (e *Executor) IsApprovedForAll(owner, operator domain.Principal) (bool, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.IsApprovedForAll(owner, operator)
}

// TotalSupply returns the count of all records ever minted.
func (e *Executor) TotalSupply() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.TotalSupply()
}

// Stats returns ledger-wide counters.
func (e *Executor) Stats() domain.Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.Stats()
}

// Transaction returns the log entry with the given 1-based sequence number.
func (e *Executor) Transaction(seq uint64) (domain.TxEvent, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.Transaction(seq)
}

// TransactionByID resolves a textual transaction identifier. Identifiers
// that do not parse as sequence numbers behave like unknown transactions.
func (e *Executor) TransactionByID(id string) (domain.TxEvent, error) {
	seq, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return domain.TxEvent{}, domain.ErrTxNotFound
	}
	return e.Transaction(seq)
}

// TotalTransactions returns the number of entries in the transaction log.
func (e *Executor) TotalTransactions() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.TotalTransactions()
}

// Mint creates a new token owned by to. Custodians only.
func (e *Executor) Mint(caller, to domain.Principal, id domain.TokenID, properties []domain.Property) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.metadata.IsCustodian(caller) {
		return 0, domain.ErrNotCustodian
	}
	seq, err := e.ledger.Mint(caller, to, id, properties)
	if err != nil {
		return 0, err
	}
	e.recordTx(seq)
	return seq, nil
}

// Approve makes operator the delegate for id.
func (e *Executor) Approve(caller, operator domain.Principal, id domain.TokenID) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	seq, err := e.ledger.Approve(caller, operator, id)
	if err != nil {
		return 0, err
	}
	e.recordTx(seq)
	return seq, nil
}

// SetApprovalForAll sets or clears operator on every token owned by caller.
func (e *Executor) SetApprovalForAll(caller, operator domain.Principal, approved bool) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	seq, err := e.ledger.SetApprovalForAll(caller, operator, approved)
	if err != nil {
		return 0, err
	}
	e.recordTx(seq)
	return seq, nil
}

// Transfer moves id from caller to to.
func (e *Executor) Transfer(caller, to domain.Principal, id domain.TokenID) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	seq, err := e.ledger.Transfer(caller, to, id)
	if err != nil {
		return 0, err
	}
	e.recordTx(seq)
	return seq, nil
}

// TransferFrom moves id from owner to to on the owner's behalf.
func (e *Executor) TransferFrom(caller, owner, to domain.Principal, id domain.TokenID) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	seq, err := e.ledger.TransferFrom(caller, owner, to, id)
	if err != nil {
		return 0, err
	}
	e.recordTx(seq)
	return seq, nil
}

// Burn irreversibly removes id from active ownership.
func (e *Executor) Burn(caller domain.Principal, id domain.TokenID) (uint64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	seq, err := e.ledger.Burn(caller, id)
	if err != nil {
		return 0, err
	}
	e.recordTx(seq)
	return seq, nil
}

// recordTx forwards one committed log entry to the audit recorder.
// Called with the writer lock held; the recorder hands the record to its
// own worker, so this never blocks on the sink.
func (e *Executor) recordTx(seq uint64) {
	if e.recorder == nil {
		return
	}
	event, err := e.ledger.Transaction(seq)
	if err != nil {
		return
	}
	e.recorder.Record(&audit.Record{
		Sequence: seq,
		Event:    event,
	})
}

// Snapshot exports the full registry state for persistence.
func (e *Executor) Snapshot() ledger.Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.ledger.Snapshot(e.metadata)
}

// Restore replaces the registry state with the snapshot contents and stamps
// the upgrade time.
func (e *Executor) Restore(s ledger.Snapshot) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	meta, err := e.ledger.Restore(s)
	if err != nil {
		return err
	}
	meta.UpgradedAt = e.clock.Now()
	e.metadata = meta
	return nil
}
