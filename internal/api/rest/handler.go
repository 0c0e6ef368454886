package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/feral-file/nft-registry/internal/api/middleware"
	"github.com/feral-file/nft-registry/internal/domain"
	"github.com/feral-file/nft-registry/internal/registry"
)

// Handler defines the interface for REST API handlers
type Handler interface {
	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)

	// GetMetadata returns the collection metadata
	// GET /api/v1/metadata
	GetMetadata(c *gin.Context)

	// UpdateMetadataField updates one of the collection display fields
	// PUT /api/v1/metadata/:field with field in {name, logo, symbol}
	UpdateMetadataField(c *gin.Context)

	// GetCustodians returns the custodian set
	// GET /api/v1/custodians
	GetCustodians(c *gin.Context)

	// UpdateCustodians replaces the custodian set
	// PUT /api/v1/custodians
	UpdateCustodians(c *gin.Context)

	// GetSupply returns the total supply counter
	// GET /api/v1/supply
	GetSupply(c *gin.Context)

	// GetStats returns ledger-wide counters
	// GET /api/v1/stats
	GetStats(c *gin.Context)

	// GetInterfaces lists the capability groups the registry implements
	// GET /api/v1/interfaces
	GetInterfaces(c *gin.Context)

	// GetToken retrieves a single token record
	// GET /api/v1/tokens/:id
	GetToken(c *gin.Context)

	// GetTokenOwner returns the current owner of a token
	// GET /api/v1/tokens/:id/owner
	GetTokenOwner(c *gin.Context)

	// GetTokenOperator returns the current operator of a token
	// GET /api/v1/tokens/:id/operator
	GetTokenOperator(c *gin.Context)

	// GetOwnerBalance returns the number of tokens owned by a principal
	// GET /api/v1/owners/:principal/balance
	GetOwnerBalance(c *gin.Context)

	// GetOwnerTokenIDs lists the identifiers owned by a principal
	// GET /api/v1/owners/:principal/token-ids
	GetOwnerTokenIDs(c *gin.Context)

	// GetOwnerTokens lists the full records owned by a principal
	// GET /api/v1/owners/:principal/tokens
	GetOwnerTokens(c *gin.Context)

	// GetApprovedForAll reports whether an operator is approved on every
	// token of an owner
	// GET /api/v1/owners/:principal/approved-for-all?operator=<principal>
	GetApprovedForAll(c *gin.Context)

	// GetOperatorTokenIDs lists the identifiers a principal may move
	// GET /api/v1/operators/:principal/token-ids
	GetOperatorTokenIDs(c *gin.Context)

	// GetOperatorTokens lists the full records a principal may move
	// GET /api/v1/operators/:principal/tokens
	GetOperatorTokens(c *gin.Context)

	// Mint creates a new token (custodians only)
	// POST /api/v1/tokens
	Mint(c *gin.Context)

	// Transfer moves a token from the caller to a recipient
	// POST /api/v1/tokens/:id/transfer
	Transfer(c *gin.Context)

	// TransferFrom moves a token on the owner's behalf
	// POST /api/v1/tokens/:id/transfer-from
	TransferFrom(c *gin.Context)

	// Approve delegates a token to an operator
	// POST /api/v1/tokens/:id/approve
	Approve(c *gin.Context)

	// Burn irreversibly removes a token from active ownership
	// POST /api/v1/tokens/:id/burn
	Burn(c *gin.Context)

	// SetApprovalForAll sets or clears an operator on every caller-owned token
	// POST /api/v1/approvals
	SetApprovalForAll(c *gin.Context)

	// GetTransaction retrieves one transaction log entry
	// GET /api/v1/transactions/:tx_id
	GetTransaction(c *gin.Context)

	// GetTransactionCount returns the transaction log length
	// GET /api/v1/transactions/count
	GetTransactionCount(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	executor *registry.Executor
}

// NewHandler creates a new REST API handler over the registry executor
func NewHandler(exec *registry.Executor) Handler {
	return &handler{executor: exec}
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// GetMetadata returns the collection metadata
func (h *handler) GetMetadata(c *gin.Context) {
	c.JSON(http.StatusOK, h.executor.Metadata())
}

// UpdateMetadataField updates one of the collection display fields
func (h *handler) UpdateMetadataField(c *gin.Context) {
	caller, ok := middleware.CallerPrincipal(c)
	if !ok {
		respondMissingCaller(c)
		return
	}

	var req UpdateMetadataFieldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	var err error
	switch field := c.Param("field"); field {
	case "name":
		err = h.executor.SetName(caller, req.Value)
	case "logo":
		err = h.executor.SetLogo(caller, req.Value)
	case "symbol":
		err = h.executor.SetSymbol(caller, req.Value)
	default:
		respondBadRequest(c, "Unknown metadata field", field)
		return
	}
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.executor.Metadata())
}

// GetCustodians returns the custodian set
func (h *handler) GetCustodians(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"custodians": h.executor.Custodians()})
}

// UpdateCustodians replaces the custodian set
func (h *handler) UpdateCustodians(c *gin.Context) {
	caller, ok := middleware.CallerPrincipal(c)
	if !ok {
		respondMissingCaller(c)
		return
	}

	var req UpdateCustodiansRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	custodians := make([]domain.Principal, 0, len(req.Custodians))
	for _, custodian := range req.Custodians {
		custodians = append(custodians, domain.Principal(custodian))
	}

	if err := h.executor.SetCustodians(caller, custodians); err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"custodians": h.executor.Custodians()})
}

// GetSupply returns the total supply counter
func (h *handler) GetSupply(c *gin.Context) {
	c.JSON(http.StatusOK, SupplyResponse{TotalSupply: h.executor.TotalSupply()})
}

// GetStats returns ledger-wide counters
func (h *handler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.executor.Stats())
}

// GetInterfaces lists the capability groups the registry implements
func (h *handler) GetInterfaces(c *gin.Context) {
	c.JSON(http.StatusOK, InterfacesResponse{Interfaces: domain.SupportedInterfaces()})
}

// GetToken retrieves a single token record
func (h *handler) GetToken(c *gin.Context) {
	id, ok := tokenIDParam(c)
	if !ok {
		return
	}

	record, err := h.executor.Token(id)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, record)
}

// GetTokenOwner returns the current owner of a token
func (h *handler) GetTokenOwner(c *gin.Context) {
	id, ok := tokenIDParam(c)
	if !ok {
		return
	}

	owner, err := h.executor.OwnerOf(id)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, OwnerResponse{Owner: owner})
}

// GetTokenOperator returns the current operator of a token
func (h *handler) GetTokenOperator(c *gin.Context) {
	id, ok := tokenIDParam(c)
	if !ok {
		return
	}

	operator, err := h.executor.OperatorOf(id)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, OperatorResponse{Operator: operator})
}

// GetOwnerBalance returns the number of tokens owned by a principal
func (h *handler) GetOwnerBalance(c *gin.Context) {
	principal, ok := principalParam(c)
	if !ok {
		return
	}

	balance, err := h.executor.BalanceOf(principal)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, BalanceResponse{Balance: balance})
}

// GetOwnerTokenIDs lists the identifiers owned by a principal
func (h *handler) GetOwnerTokenIDs(c *gin.Context) {
	principal, ok := principalParam(c)
	if !ok {
		return
	}

	ids, err := h.executor.OwnerTokenIDs(principal)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, TokenIDsResponse{TokenIdentifiers: ids})
}

// GetOwnerTokens lists the full records owned by a principal
func (h *handler) GetOwnerTokens(c *gin.Context) {
	principal, ok := principalParam(c)
	if !ok {
		return
	}

	records, err := h.executor.OwnerTokenMetadata(principal)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, TokensResponse{Tokens: records})
}

// GetApprovedForAll reports whether an operator is approved on every token
// of an owner
func (h *handler) GetApprovedForAll(c *gin.Context) {
	principal, ok := principalParam(c)
	if !ok {
		return
	}

	operator := c.Query("operator")
	if operator == "" {
		respondBadRequest(c, "operator query parameter is required")
		return
	}

	approved, err := h.executor.IsApprovedForAll(principal, domain.Principal(operator))
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, ApprovedForAllResponse{Approved: approved})
}

// GetOperatorTokenIDs lists the identifiers a principal may move
func (h *handler) GetOperatorTokenIDs(c *gin.Context) {
	principal, ok := principalParam(c)
	if !ok {
		return
	}

	ids, err := h.executor.OperatorTokenIDs(principal)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, TokenIDsResponse{TokenIdentifiers: ids})
}

// GetOperatorTokens lists the full records a principal may move
func (h *handler) GetOperatorTokens(c *gin.Context) {
	principal, ok := principalParam(c)
	if !ok {
		return
	}

	records, err := h.executor.OperatorTokenMetadata(principal)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, TokensResponse{Tokens: records})
}

// Mint creates a new token
func (h *handler) Mint(c *gin.Context) {
	caller, ok := middleware.CallerPrincipal(c)
	if !ok {
		respondMissingCaller(c)
		return
	}

	var req MintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	seq, err := h.executor.Mint(caller, domain.Principal(req.To), domain.TokenID(req.TokenIdentifier), req.Properties)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, TxResponse{TransactionID: seq})
}

// Transfer moves a token from the caller to a recipient
func (h *handler) Transfer(c *gin.Context) {
	caller, ok := middleware.CallerPrincipal(c)
	if !ok {
		respondMissingCaller(c)
		return
	}
	id, ok := tokenIDParam(c)
	if !ok {
		return
	}

	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	seq, err := h.executor.Transfer(caller, domain.Principal(req.To), id)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, TxResponse{TransactionID: seq})
}

// TransferFrom moves a token on the owner's behalf
func (h *handler) TransferFrom(c *gin.Context) {
	caller, ok := middleware.CallerPrincipal(c)
	if !ok {
		respondMissingCaller(c)
		return
	}
	id, ok := tokenIDParam(c)
	if !ok {
		return
	}

	var req TransferFromRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	seq, err := h.executor.TransferFrom(caller, domain.Principal(req.Owner), domain.Principal(req.To), id)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, TxResponse{TransactionID: seq})
}

// Approve delegates a token to an operator
func (h *handler) Approve(c *gin.Context) {
	caller, ok := middleware.CallerPrincipal(c)
	if !ok {
		respondMissingCaller(c)
		return
	}
	id, ok := tokenIDParam(c)
	if !ok {
		return
	}

	var req ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	seq, err := h.executor.Approve(caller, domain.Principal(req.Operator), id)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, TxResponse{TransactionID: seq})
}

// Burn irreversibly removes a token from active ownership
func (h *handler) Burn(c *gin.Context) {
	caller, ok := middleware.CallerPrincipal(c)
	if !ok {
		respondMissingCaller(c)
		return
	}
	id, ok := tokenIDParam(c)
	if !ok {
		return
	}

	seq, err := h.executor.Burn(caller, id)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, TxResponse{TransactionID: seq})
}

// SetApprovalForAll sets or clears an operator on every caller-owned token
func (h *handler) SetApprovalForAll(c *gin.Context) {
	caller, ok := middleware.CallerPrincipal(c)
	if !ok {
		respondMissingCaller(c)
		return
	}

	var req ApprovalForAllRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "Invalid request body", err.Error())
		return
	}

	seq, err := h.executor.SetApprovalForAll(caller, domain.Principal(req.Operator), *req.IsApproved)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, TxResponse{TransactionID: seq})
}

// GetTransaction retrieves one transaction log entry
func (h *handler) GetTransaction(c *gin.Context) {
	txID := c.Param("tx_id")

	event, err := h.executor.TransactionByID(txID)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	// The identifier is known to parse once the lookup succeeds.
	c.JSON(http.StatusOK, gin.H{
		"transaction_id": txID,
		"transaction":    event,
	})
}

// GetTransactionCount returns the transaction log length
func (h *handler) GetTransactionCount(c *gin.Context) {
	c.JSON(http.StatusOK, TransactionCountResponse{TotalTransactions: h.executor.TotalTransactions()})
}

func tokenIDParam(c *gin.Context) (domain.TokenID, bool) {
	id := c.Param("id")
	if id == "" {
		respondBadRequest(c, "Token identifier is required")
		return "", false
	}
	return domain.TokenID(id), true
}

func principalParam(c *gin.Context) (domain.Principal, bool) {
	principal := c.Param("principal")
	if principal == "" {
		respondBadRequest(c, "Principal is required")
		return "", false
	}
	return domain.Principal(principal), true
}
