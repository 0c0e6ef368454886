package rest

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/nft-registry/internal/adapter"
	"github.com/feral-file/nft-registry/internal/api/middleware"
	"github.com/feral-file/nft-registry/internal/domain"
	"github.com/feral-file/nft-registry/internal/logger"
	"github.com/feral-file/nft-registry/internal/registry"
)

const testAPIKey = "test-api-key"

func TestMain(m *testing.M) {
	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}
	gin.SetMode(gin.TestMode)

	code := m.Run()
	os.Exit(code)
}

func newTestRouter() *gin.Engine {
	exec := registry.NewExecutor(domain.CollectionMetadata{
		Custodians: []domain.Principal{"admin"},
	}, nil, adapter.NewClock())

	router := gin.New()
	SetupRoutes(router, NewHandler(exec), middleware.AuthConfig{APIKeys: []string{testAPIKey}})
	return router
}

type requestOptions struct {
	apiKey bool
	caller string
	body   any
}

func perform(t *testing.T, router *gin.Engine, method, path string, opts requestOptions) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if opts.body != nil {
		payload, err := json.Marshal(opts.body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if opts.apiKey {
		req.Header.Set("Authorization", "APIKey "+testAPIKey)
	}
	if opts.caller != "" {
		req.Header.Set(middleware.CallerPrincipalHeader, opts.caller)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func mintToken(t *testing.T, router *gin.Engine, to, id string) {
	t.Helper()
	resp := perform(t, router, http.MethodPost, "/api/v1/tokens", requestOptions{
		apiKey: true,
		caller: "admin",
		body:   MintRequest{To: to, TokenIdentifier: id},
	})
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
}

func TestHealthCheck(t *testing.T) {
	router := newTestRouter()
	resp := perform(t, router, http.MethodGet, "/health", requestOptions{})
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestMintAndQuery(t *testing.T) {
	router := newTestRouter()
	mintToken(t, router, "bob", "token-1")

	resp := perform(t, router, http.MethodGet, "/api/v1/tokens/token-1/owner", requestOptions{})
	require.Equal(t, http.StatusOK, resp.Code)
	var owner OwnerResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &owner))
	assert.Equal(t, domain.Principal("bob"), owner.Owner)

	resp = perform(t, router, http.MethodGet, "/api/v1/owners/bob/balance", requestOptions{})
	require.Equal(t, http.StatusOK, resp.Code)
	var balance BalanceResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &balance))
	assert.Equal(t, uint64(1), balance.Balance)

	resp = perform(t, router, http.MethodGet, "/api/v1/supply", requestOptions{})
	require.Equal(t, http.StatusOK, resp.Code)
	var supply SupplyResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &supply))
	assert.Equal(t, uint64(1), supply.TotalSupply)
}

func TestMintAuthorization(t *testing.T) {
	router := newTestRouter()

	// No API key at all.
	resp := perform(t, router, http.MethodPost, "/api/v1/tokens", requestOptions{
		caller: "admin",
		body:   MintRequest{To: "bob", TokenIdentifier: "token-1"},
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	// Authenticated but no caller principal.
	resp = perform(t, router, http.MethodPost, "/api/v1/tokens", requestOptions{
		apiKey: true,
		body:   MintRequest{To: "bob", TokenIdentifier: "token-1"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	// Authenticated caller without the custodian capability.
	resp = perform(t, router, http.MethodPost, "/api/v1/tokens", requestOptions{
		apiKey: true,
		caller: "mallory",
		body:   MintRequest{To: "bob", TokenIdentifier: "token-1"},
	})
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestMintDuplicateConflict(t *testing.T) {
	router := newTestRouter()
	mintToken(t, router, "bob", "token-1")

	resp := perform(t, router, http.MethodPost, "/api/v1/tokens", requestOptions{
		apiKey: true,
		caller: "admin",
		body:   MintRequest{To: "carol", TokenIdentifier: "token-1"},
	})
	assert.Equal(t, http.StatusConflict, resp.Code)
}

func TestTransferFlow(t *testing.T) {
	router := newTestRouter()
	mintToken(t, router, "bob", "token-1")

	resp := perform(t, router, http.MethodPost, "/api/v1/tokens/token-1/transfer", requestOptions{
		caller: "bob",
		body:   TransferRequest{To: "carol"},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	var tx TxResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &tx))
	assert.Equal(t, uint64(2), tx.TransactionID)

	resp = perform(t, router, http.MethodGet, "/api/v1/tokens/token-1/owner", requestOptions{})
	require.Equal(t, http.StatusOK, resp.Code)
	var owner OwnerResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &owner))
	assert.Equal(t, domain.Principal("carol"), owner.Owner)
}

func TestTransferErrorsMapping(t *testing.T) {
	router := newTestRouter()
	mintToken(t, router, "bob", "token-1")

	// Self transfer maps to a client error.
	resp := perform(t, router, http.MethodPost, "/api/v1/tokens/token-1/transfer", requestOptions{
		caller: "bob",
		body:   TransferRequest{To: "bob"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	// A caller that does not own the token is forbidden.
	resp = perform(t, router, http.MethodPost, "/api/v1/tokens/token-1/transfer", requestOptions{
		caller: "mallory",
		body:   TransferRequest{To: "carol"},
	})
	assert.Equal(t, http.StatusForbidden, resp.Code)

	// Unknown tokens are not found.
	resp = perform(t, router, http.MethodPost, "/api/v1/tokens/missing/transfer", requestOptions{
		caller: "bob",
		body:   TransferRequest{To: "carol"},
	})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestApprovalEndpoints(t *testing.T) {
	router := newTestRouter()
	mintToken(t, router, "bob", "token-1")
	mintToken(t, router, "bob", "token-2")

	approved := true
	resp := perform(t, router, http.MethodPost, "/api/v1/approvals", requestOptions{
		caller: "bob",
		body:   ApprovalForAllRequest{Operator: "dave", IsApproved: &approved},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = perform(t, router, http.MethodGet, "/api/v1/owners/bob/approved-for-all?operator=dave", requestOptions{})
	require.Equal(t, http.StatusOK, resp.Code)
	var result ApprovedForAllResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &result))
	assert.True(t, result.Approved)

	resp = perform(t, router, http.MethodGet, "/api/v1/operators/dave/token-ids", requestOptions{})
	require.Equal(t, http.StatusOK, resp.Code)
	var ids TokenIDsResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &ids))
	assert.Equal(t, []domain.TokenID{"token-1", "token-2"}, ids.TokenIdentifiers)

	// The operator moves the token on the owner's behalf.
	resp = perform(t, router, http.MethodPost, "/api/v1/tokens/token-1/transfer-from", requestOptions{
		caller: "dave",
		body:   TransferFromRequest{Owner: "bob", To: "carol"},
	})
	assert.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
}

func TestBurnEndpoint(t *testing.T) {
	router := newTestRouter()
	mintToken(t, router, "bob", "token-1")

	resp := perform(t, router, http.MethodPost, "/api/v1/tokens/token-1/burn", requestOptions{
		caller: "bob",
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	// A burned token has no owner to report.
	resp = perform(t, router, http.MethodGet, "/api/v1/tokens/token-1/owner", requestOptions{})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	// The record itself stays queryable.
	resp = perform(t, router, http.MethodGet, "/api/v1/tokens/token-1", requestOptions{})
	require.Equal(t, http.StatusOK, resp.Code)
	var record domain.TokenRecord
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &record))
	assert.True(t, record.IsBurned)
}

func TestMetadataEndpoints(t *testing.T) {
	router := newTestRouter()

	resp := perform(t, router, http.MethodPut, "/api/v1/metadata/name", requestOptions{
		apiKey: true,
		caller: "admin",
		body:   UpdateMetadataFieldRequest{Value: "Art Collection"},
	})
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = perform(t, router, http.MethodGet, "/api/v1/metadata", requestOptions{})
	require.Equal(t, http.StatusOK, resp.Code)
	var meta domain.CollectionMetadata
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &meta))
	require.NotNil(t, meta.Name)
	assert.Equal(t, "Art Collection", *meta.Name)

	resp = perform(t, router, http.MethodPut, "/api/v1/metadata/flavor", requestOptions{
		apiKey: true,
		caller: "admin",
		body:   UpdateMetadataFieldRequest{Value: "x"},
	})
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestTransactionEndpoints(t *testing.T) {
	router := newTestRouter()
	mintToken(t, router, "bob", "token-1")

	resp := perform(t, router, http.MethodGet, "/api/v1/transactions/1", requestOptions{})
	assert.Equal(t, http.StatusOK, resp.Code)

	for _, id := range []string{"2", "0", "abc"} {
		resp := perform(t, router, http.MethodGet, "/api/v1/transactions/"+id, requestOptions{})
		assert.Equal(t, http.StatusNotFound, resp.Code, "id %q", id)
	}

	resp = perform(t, router, http.MethodGet, "/api/v1/transactions/count", requestOptions{})
	require.Equal(t, http.StatusOK, resp.Code)
	var count TransactionCountResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &count))
	assert.Equal(t, uint64(1), count.TotalTransactions)
}

func TestInterfacesEndpoint(t *testing.T) {
	router := newTestRouter()

	resp := perform(t, router, http.MethodGet, "/api/v1/interfaces", requestOptions{})
	require.Equal(t, http.StatusOK, resp.Code)
	var interfaces InterfacesResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &interfaces))
	assert.Contains(t, interfaces.Interfaces, domain.InterfaceApproval)
	assert.Contains(t, interfaces.Interfaces, domain.InterfaceTransactionHistory)
}
