package ledger

import (
	"fmt"
	"slices"

	"github.com/feral-file/nft-registry/internal/adapter"
	"github.com/feral-file/nft-registry/internal/domain"
)

// Ledger is the bookkeeping state machine for a universe of uniquely
// identified tokens: the authoritative token store, two reverse-index
// caches derived from it, and an append-only transaction log.
//
// The ledger itself is not safe for concurrent use. Callers must
// serialize operations (the registry executor holds a single-writer
// mutex); each operation then runs to completion with no interleaving.
// Read accessors never mutate ledger state.
type Ledger struct {
	tokens    map[domain.TokenID]*domain.TokenRecord
	owners    index
	operators index
	txRecords []domain.TxEvent
	clock     adapter.Clock
}

// New creates an empty ledger.
func New(clock adapter.Clock) *Ledger {
	return &Ledger{
		tokens:    make(map[domain.TokenID]*domain.TokenRecord),
		owners:    make(index),
		operators: make(index),
		clock:     clock,
	}
}

// Token returns a copy of the record for id.
func (l *Ledger) Token(id domain.TokenID) (*domain.TokenRecord, error) {
	record, ok := l.tokens[id]
	if !ok {
		return nil, domain.ErrTokenNotFound
	}
	return record.Clone(), nil
}

// Exists reports whether a record for id was ever minted.
func (l *Ledger) Exists(id domain.TokenID) bool {
	_, ok := l.tokens[id]
	return ok
}

// OwnerOf returns the current owner of id. A burned token has no owner.
func (l *Ledger) OwnerOf(id domain.TokenID) (domain.Principal, error) {
	record, ok := l.tokens[id]
	if !ok {
		return "", domain.ErrTokenNotFound
	}
	if record.Owner == nil {
		return "", domain.ErrTokenBurned
	}
	return *record.Owner, nil
}

// OperatorOf returns the current operator of id, or nil when none is set.
func (l *Ledger) OperatorOf(id domain.TokenID) (*domain.Principal, error) {
	record, ok := l.tokens[id]
	if !ok {
		return nil, domain.ErrTokenNotFound
	}
	if record.Owner == nil {
		return nil, domain.ErrTokenBurned
	}
	if record.Operator == nil {
		return nil, nil
	}
	operator := *record.Operator
	return &operator, nil
}

// BalanceOf returns the number of tokens currently owned by p.
func (l *Ledger) BalanceOf(p domain.Principal) (uint64, error) {
	set, ok := l.owners[p]
	if !ok {
		return 0, domain.ErrOwnerNotFound
	}
	return uint64(len(set)), nil
}

// OwnerTokenIDs returns the identifiers currently owned by p, sorted.
func (l *Ledger) OwnerTokenIDs(p domain.Principal) ([]domain.TokenID, error) {
	set, ok := l.owners[p]
	if !ok {
		return nil, domain.ErrOwnerNotFound
	}
	return sortedIDs(set), nil
}

// OperatorTokenIDs returns the identifiers p is approved to move, sorted.
func (l *Ledger) OperatorTokenIDs(p domain.Principal) ([]domain.TokenID, error) {
	set, ok := l.operators[p]
	if !ok {
		return nil, domain.ErrOperatorNotFound
	}
	return sortedIDs(set), nil
}

// OwnerTokenMetadata returns copies of every record currently owned by p.
func (l *Ledger) OwnerTokenMetadata(p domain.Principal) ([]domain.TokenRecord, error) {
	ids, err := l.OwnerTokenIDs(p)
	if err != nil {
		return nil, err
	}
	return l.collectRecords(ids)
}

// OperatorTokenMetadata returns copies of every record p is approved to move.
func (l *Ledger) OperatorTokenMetadata(p domain.Principal) ([]domain.TokenRecord, error) {
	ids, err := l.OperatorTokenIDs(p)
	if err != nil {
		return nil, err
	}
	return l.collectRecords(ids)
}

// collectRecords maps index entries through the token store. An index entry
// without a backing record is an invariant violation; it is reported as
// not-found rather than corrupting further state.
func (l *Ledger) collectRecords(ids []domain.TokenID) ([]domain.TokenRecord, error) {
	records := make([]domain.TokenRecord, 0, len(ids))
	for _, id := range ids {
		record, ok := l.tokens[id]
		if !ok {
			return nil, fmt.Errorf("index entry %q has no token record: %w", id, domain.ErrTokenNotFound)
		}
		records = append(records, *record.Clone())
	}
	return records, nil
}

// IsApprovedForAll reports whether operator is approved on every token
// currently owned by owner.
func (l *Ledger) IsApprovedForAll(owner, operator domain.Principal) (bool, error) {
	records, err := l.OwnerTokenMetadata(owner)
	if err != nil {
		return false, err
	}
	for _, record := range records {
		if record.Operator == nil || *record.Operator != operator {
			return false, nil
		}
	}
	return true, nil
}

// TotalSupply returns the count of all records ever minted. Burned tokens
// still count towards the supply.
func (l *Ledger) TotalSupply() uint64 {
	return uint64(len(l.tokens))
}

// TotalUniqueHolders returns the number of principals currently owning at
// least one token.
func (l *Ledger) TotalUniqueHolders() uint64 {
	return uint64(len(l.owners))
}

// Stats returns ledger-wide counters.
func (l *Ledger) Stats() domain.Stats {
	return domain.Stats{
		TotalSupply:        l.TotalSupply(),
		TotalTransactions:  l.TotalTransactions(),
		TotalUniqueHolders: l.TotalUniqueHolders(),
	}
}

// Mint creates a new token record owned by to. The custodian capability
// check happens in the caller context before this is invoked.
func (l *Ledger) Mint(caller, to domain.Principal, id domain.TokenID, properties []domain.Property) (uint64, error) {
	if _, ok := l.tokens[id]; ok {
		return 0, domain.ErrTokenAlreadyExists
	}

	owner := to
	l.tokens[id] = &domain.TokenRecord{
		ID:         id,
		Owner:      &owner,
		Operator:   nil,
		IsBurned:   false,
		Properties: properties,
		MintedAt:   l.clock.Now(),
		MintedBy:   caller,
	}

	updateIndex(l.owners, id, nil, &owner)

	return l.addTx(caller, domain.OpMint, []domain.Property{
		{Name: "to", Value: domain.PrincipalValue(to)},
		{Name: "token_identifier", Value: domain.TextValue(string(id))},
	}), nil
}

// Approve makes operator the single delegate for id. Only the current
// owner may approve, and never itself.
func (l *Ledger) Approve(caller, operator domain.Principal, id domain.TokenID) (uint64, error) {
	if operator == caller {
		return 0, domain.ErrSelfApprove
	}

	record, ok := l.tokens[id]
	if !ok {
		return 0, domain.ErrTokenNotFound
	}
	if record.Owner == nil || *record.Owner != caller {
		return 0, domain.ErrUnauthorizedOwner
	}

	// Capture the old operator before overwriting it; updateIndex needs both.
	oldOperator := record.Operator

	newOperator := operator
	record.Operator = &newOperator
	now := l.clock.Now()
	record.ApprovedAt = &now
	approvedBy := caller
	record.ApprovedBy = &approvedBy

	updateIndex(l.operators, id, oldOperator, &newOperator)

	return l.addTx(caller, domain.OpApprove, []domain.Property{
		{Name: "operator", Value: domain.PrincipalValue(operator)},
		{Name: "token_identifier", Value: domain.TextValue(string(id))},
	}), nil
}

// SetApprovalForAll sets or clears operator on every token currently owned
// by the caller. A single operator per token is supported, so revoking
// clears whatever operator each token has, regardless of the argument.
func (l *Ledger) SetApprovalForAll(caller, operator domain.Principal, approved bool) (uint64, error) {
	if operator == caller {
		return 0, domain.ErrSelfApprove
	}

	ids, err := l.OwnerTokenIDs(caller)
	if err != nil {
		return 0, err
	}

	now := l.clock.Now()
	for _, id := range ids {
		record, ok := l.tokens[id]
		if !ok {
			return 0, fmt.Errorf("index entry %q has no token record: %w", id, domain.ErrTokenNotFound)
		}

		oldOperator := record.Operator

		var newOperator *domain.Principal
		if approved {
			op := operator
			newOperator = &op
		}
		record.Operator = newOperator
		approvedAt := now
		record.ApprovedAt = &approvedAt
		approvedBy := caller
		record.ApprovedBy = &approvedBy

		updateIndex(l.operators, id, oldOperator, newOperator)
	}

	return l.addTx(caller, domain.OpSetApprovalForAll, []domain.Property{
		{Name: "operator", Value: domain.PrincipalValue(operator)},
		{Name: "is_approved", Value: domain.BoolValue(approved)},
	}), nil
}

// Transfer moves id from the caller to to and clears the operator.
func (l *Ledger) Transfer(caller, to domain.Principal, id domain.TokenID) (uint64, error) {
	if to == caller {
		return 0, domain.ErrSelfTransfer
	}

	record, ok := l.tokens[id]
	if !ok {
		return 0, domain.ErrTokenNotFound
	}
	if record.Owner == nil || *record.Owner != caller {
		return 0, domain.ErrUnauthorizedOwner
	}

	l.moveToken(record, caller, to)

	return l.addTx(caller, domain.OpTransfer, []domain.Property{
		{Name: "owner", Value: domain.PrincipalValue(caller)},
		{Name: "to", Value: domain.PrincipalValue(to)},
		{Name: "token_identifier", Value: domain.TextValue(string(id))},
	}), nil
}

// TransferFrom moves id from owner to to on the owner's behalf. The caller
// must be the token's current operator.
func (l *Ledger) TransferFrom(caller, owner, to domain.Principal, id domain.TokenID) (uint64, error) {
	if owner == to {
		return 0, domain.ErrSelfTransfer
	}

	record, ok := l.tokens[id]
	if !ok {
		return 0, domain.ErrTokenNotFound
	}
	if record.Owner == nil || *record.Owner != owner {
		return 0, domain.ErrUnauthorizedOwner
	}
	if record.Operator == nil || *record.Operator != caller {
		return 0, domain.ErrUnauthorizedOperator
	}

	l.moveToken(record, caller, to)

	return l.addTx(caller, domain.OpTransferFrom, []domain.Property{
		{Name: "owner", Value: domain.PrincipalValue(owner)},
		{Name: "to", Value: domain.PrincipalValue(to)},
		{Name: "token_identifier", Value: domain.TextValue(string(id))},
	}), nil
}

// moveToken applies the ownership change shared by Transfer and
// TransferFrom: new owner, operator cleared, both indexes patched.
func (l *Ledger) moveToken(record *domain.TokenRecord, caller, to domain.Principal) {
	// Capture old owner/operator before overwriting either field.
	oldOwner := record.Owner
	oldOperator := record.Operator

	newOwner := to
	record.Owner = &newOwner
	record.Operator = nil
	now := l.clock.Now()
	record.TransferredAt = &now
	transferredBy := caller
	record.TransferredBy = &transferredBy

	updateIndex(l.owners, record.ID, oldOwner, &newOwner)
	updateIndex(l.operators, record.ID, oldOperator, nil)
}

// Burn irreversibly removes id from active ownership. The record stays
// queryable; the terminal state can never be left.
func (l *Ledger) Burn(caller domain.Principal, id domain.TokenID) (uint64, error) {
	record, ok := l.tokens[id]
	if !ok {
		return 0, domain.ErrTokenNotFound
	}
	if record.Owner == nil || *record.Owner != caller {
		return 0, domain.ErrUnauthorizedOwner
	}

	oldOwner := record.Owner
	oldOperator := record.Operator

	record.Owner = nil
	record.Operator = nil
	record.IsBurned = true
	now := l.clock.Now()
	record.BurnedAt = &now
	burnedBy := caller
	record.BurnedBy = &burnedBy

	updateIndex(l.owners, id, oldOwner, nil)
	updateIndex(l.operators, id, oldOperator, nil)

	return l.addTx(caller, domain.OpBurn, []domain.Property{
		{Name: "token_identifier", Value: domain.TextValue(string(id))},
	}), nil
}

func sortedIDs(set tokenSet) []domain.TokenID {
	ids := make([]domain.TokenID, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
