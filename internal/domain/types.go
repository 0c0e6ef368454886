package domain

import (
	"slices"
	"time"
)

// Principal is an opaque identifier for a caller or account identity.
type Principal string

// TokenID is the unique key of a token record. It is stable for the
// token's lifetime, including after burn.
type TokenID string

// TokenRecord is the authoritative record for a single token.
// Owner is nil iff the token is burned; Operator is the single delegate
// authorized to transfer the token and is cleared on every ownership change.
type TokenRecord struct {
	ID            TokenID    `json:"token_identifier"`
	Owner         *Principal `json:"owner"`
	Operator      *Principal `json:"operator"`
	IsBurned      bool       `json:"is_burned"`
	Properties    []Property `json:"properties"`
	MintedAt      time.Time  `json:"minted_at"`
	MintedBy      Principal  `json:"minted_by"`
	TransferredAt *time.Time `json:"transferred_at,omitempty"`
	TransferredBy *Principal `json:"transferred_by,omitempty"`
	ApprovedAt    *time.Time `json:"approved_at,omitempty"`
	ApprovedBy    *Principal `json:"approved_by,omitempty"`
	BurnedAt      *time.Time `json:"burned_at,omitempty"`
	BurnedBy      *Principal `json:"burned_by,omitempty"`
}

// Clone returns a deep copy of the record so callers can hand it out
// without exposing ledger-internal state.
func (r *TokenRecord) Clone() *TokenRecord {
	c := *r
	c.Owner = clonePrincipal(r.Owner)
	c.Operator = clonePrincipal(r.Operator)
	c.TransferredAt = cloneTime(r.TransferredAt)
	c.TransferredBy = clonePrincipal(r.TransferredBy)
	c.ApprovedAt = cloneTime(r.ApprovedAt)
	c.ApprovedBy = clonePrincipal(r.ApprovedBy)
	c.BurnedAt = cloneTime(r.BurnedAt)
	c.BurnedBy = clonePrincipal(r.BurnedBy)
	c.Properties = slices.Clone(r.Properties)
	return &c
}

func clonePrincipal(p *Principal) *Principal {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

// TxEvent is one immutable entry of the append-only transaction log.
// Its identifier is its 1-based position in the log.
type TxEvent struct {
	Time      time.Time  `json:"time"`
	Caller    Principal  `json:"caller"`
	Operation string     `json:"operation"`
	Details   []Property `json:"details"`
}

// Operation names recorded in the transaction log.
const (
	OpMint              = "mint"
	OpApprove           = "approve"
	OpSetApprovalForAll = "setApprovalForAll"
	OpTransfer          = "transfer"
	OpTransferFrom      = "transferFrom"
	OpBurn              = "burn"
)

// CollectionMetadata holds registry-wide configuration: display fields and
// the custodian set with administrative capability.
type CollectionMetadata struct {
	Name       *string     `json:"name,omitempty"`
	Logo       *string     `json:"logo,omitempty"`
	Symbol     *string     `json:"symbol,omitempty"`
	Custodians []Principal `json:"custodians"`
	CreatedAt  time.Time   `json:"created_at"`
	UpgradedAt time.Time   `json:"upgraded_at"`
}

// IsCustodian reports whether p carries the administrative capability.
func (m *CollectionMetadata) IsCustodian(p Principal) bool {
	return slices.Contains(m.Custodians, p)
}

// AddCustodian inserts p into the custodian set if not already present.
func (m *CollectionMetadata) AddCustodian(p Principal) {
	if !m.IsCustodian(p) {
		m.Custodians = append(m.Custodians, p)
	}
}

// Stats summarizes ledger-wide counters.
type Stats struct {
	TotalSupply        uint64 `json:"total_supply"`
	TotalTransactions  uint64 `json:"total_transactions"`
	TotalUniqueHolders uint64 `json:"total_unique_holders"`
}

// SupportedInterface identifies an optional capability group of the registry.
type SupportedInterface string

const (
	InterfaceApproval           SupportedInterface = "Approval"
	InterfaceMint               SupportedInterface = "Mint"
	InterfaceBurn               SupportedInterface = "Burn"
	InterfaceTransactionHistory SupportedInterface = "TransactionHistory"
)

// SupportedInterfaces lists the capability groups this registry implements.
func SupportedInterfaces() []SupportedInterface {
	return []SupportedInterface{
		InterfaceApproval,
		InterfaceMint,
		InterfaceBurn,
		InterfaceTransactionHistory,
	}
}
