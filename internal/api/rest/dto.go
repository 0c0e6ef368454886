package rest

import (
	"github.com/feral-file/nft-registry/internal/domain"
)

// MintRequest is the body of POST /api/v1/tokens
type MintRequest struct {
	To              string            `json:"to" binding:"required"`
	TokenIdentifier string            `json:"token_identifier" binding:"required"`
	Properties      []domain.Property `json:"properties"`
}

// TransferRequest is the body of POST /api/v1/tokens/:id/transfer
type TransferRequest struct {
	To string `json:"to" binding:"required"`
}

// TransferFromRequest is the body of POST /api/v1/tokens/:id/transfer-from
type TransferFromRequest struct {
	Owner string `json:"owner" binding:"required"`
	To    string `json:"to" binding:"required"`
}

// ApproveRequest is the body of POST /api/v1/tokens/:id/approve
type ApproveRequest struct {
	Operator string `json:"operator" binding:"required"`
}

// ApprovalForAllRequest is the body of POST /api/v1/approvals
type ApprovalForAllRequest struct {
	Operator   string `json:"operator" binding:"required"`
	IsApproved *bool  `json:"is_approved" binding:"required"`
}

// UpdateMetadataFieldRequest is the body of PUT /api/v1/metadata/:field
type UpdateMetadataFieldRequest struct {
	Value string `json:"value" binding:"required"`
}

// UpdateCustodiansRequest is the body of PUT /api/v1/custodians
type UpdateCustodiansRequest struct {
	Custodians []string `json:"custodians" binding:"required"`
}

// TxResponse reports the sequence number assigned to a committed mutation.
type TxResponse struct {
	TransactionID uint64 `json:"transaction_id"`
}

// OwnerResponse reports the current owner of a token.
type OwnerResponse struct {
	Owner domain.Principal `json:"owner"`
}

// OperatorResponse reports the current operator of a token, if any.
type OperatorResponse struct {
	Operator *domain.Principal `json:"operator"`
}

// BalanceResponse reports the number of tokens owned by a principal.
type BalanceResponse struct {
	Balance uint64 `json:"balance"`
}

// TokenIDsResponse lists token identifiers.
type TokenIDsResponse struct {
	TokenIdentifiers []domain.TokenID `json:"token_identifiers"`
}

// TokensResponse lists full token records.
type TokensResponse struct {
	Tokens []domain.TokenRecord `json:"tokens"`
}

// ApprovedForAllResponse reports a blanket-approval check.
type ApprovedForAllResponse struct {
	Approved bool `json:"approved"`
}

// SupplyResponse reports the total supply counter.
type SupplyResponse struct {
	TotalSupply uint64 `json:"total_supply"`
}

// TransactionCountResponse reports the transaction log length.
type TransactionCountResponse struct {
	TotalTransactions uint64 `json:"total_transactions"`
}

// InterfacesResponse lists the capability groups the registry implements.
type InterfacesResponse struct {
	Interfaces []domain.SupportedInterface `json:"interfaces"`
}
