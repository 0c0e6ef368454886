package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/nft-registry/internal/adapter"
	"github.com/feral-file/nft-registry/internal/domain"
)

func testMetadata() domain.CollectionMetadata {
	name := "Test Collection"
	symbol := "TST"
	return domain.CollectionMetadata{
		Name:       &name,
		Symbol:     &symbol,
		Custodians: []domain.Principal{alice},
		CreatedAt:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		UpgradedAt: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	l, _ := newTestLedger()
	mustMint(t, l, alice, bob, "token-1")
	mustMint(t, l, alice, carol, "token-2")
	_, err := l.Approve(bob, dave, "token-1")
	require.NoError(t, err)
	_, err = l.Burn(carol, "token-2")
	require.NoError(t, err)

	js := adapter.NewJSON()
	payload, err := l.Snapshot(testMetadata()).Encode(js)
	require.NoError(t, err)

	decoded, err := DecodeSnapshot(payload, js, time.Now())
	require.NoError(t, err)
	assert.Equal(t, SnapshotVersion, decoded.Version)

	restored, _ := newTestLedger()
	meta, err := restored.Restore(decoded)
	require.NoError(t, err)
	assert.Equal(t, testMetadata(), meta)

	// Full state survives, including the terminal burn and the operator.
	owner, err := restored.OwnerOf("token-1")
	require.NoError(t, err)
	assert.Equal(t, bob, owner)

	operator, err := restored.OperatorOf("token-1")
	require.NoError(t, err)
	require.NotNil(t, operator)
	assert.Equal(t, dave, *operator)

	_, err = restored.OwnerOf("token-2")
	assert.ErrorIs(t, err, domain.ErrTokenBurned)
	assert.Equal(t, uint64(2), restored.TotalSupply())
	assert.Equal(t, uint64(4), restored.TotalTransactions())

	// The indexes are rebuilt, not deserialized.
	ids, err := restored.OperatorTokenIDs(dave)
	require.NoError(t, err)
	assert.Equal(t, []domain.TokenID{"token-1"}, ids)
	_, err = restored.BalanceOf(carol)
	assert.ErrorIs(t, err, domain.ErrOwnerNotFound)
}

func TestRestoreValidation(t *testing.T) {
	owner := bob

	tests := []struct {
		name   string
		tokens []domain.TokenRecord
	}{
		{
			name: "empty identifier",
			tokens: []domain.TokenRecord{
				{ID: "", Owner: &owner},
			},
		},
		{
			name: "duplicate identifier",
			tokens: []domain.TokenRecord{
				{ID: "token-1", Owner: &owner},
				{ID: "token-1", Owner: &owner},
			},
		},
		{
			name: "ownerless token not marked burned",
			tokens: []domain.TokenRecord{
				{ID: "token-1", Owner: nil, IsBurned: false},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _ := newTestLedger()
			_, err := l.Restore(Snapshot{
				Version: SnapshotVersion,
				Tokens:  tt.tokens,
			})
			assert.Error(t, err)
		})
	}
}

func TestDecodeSnapshotUnsupportedVersion(t *testing.T) {
	js := adapter.NewJSON()
	_, err := DecodeSnapshot([]byte(`{"version": 7}`), js, time.Now())
	assert.ErrorContains(t, err, "unsupported snapshot version")
}

func TestDecodeLegacySnapshot(t *testing.T) {
	payload := []byte(`{
		"token": {
			"owner": "legacy-admin",
			"symbol": "LGC",
			"name": "Legacy Collection"
		},
		"ledger": {
			"tokens": {
				"0": {
					"account_identifier": "acc-0",
					"token_identifier": "0",
					"principal": "alice",
					"metadata_desc": [
						{
							"purpose": "Rendered",
							"key_val_data": [
								{"key": "location", "val": {"TextContent": "ipfs://QmLegacy"}},
								{"key": "edition", "val": {"Nat16Content": 7}},
								{"key": "size", "val": {"NatContent": 123456789012345678901234567890}}
							],
							"data": null
						}
					]
				},
				"1": {
					"account_identifier": "acc-1",
					"token_identifier": "1",
					"principal": "bob",
					"metadata_desc": []
				}
			},
			"user_tokens": {
				"alice": [0],
				"bob": [1]
			}
		}
	}`)

	js := adapter.NewJSON()
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	snapshot, err := DecodeSnapshot(payload, js, now)
	require.NoError(t, err)
	assert.Equal(t, SnapshotVersion, snapshot.Version)

	// Collection fields move out of the token-level block; the legacy owner
	// becomes the sole custodian.
	require.NotNil(t, snapshot.Metadata.Name)
	assert.Equal(t, "Legacy Collection", *snapshot.Metadata.Name)
	require.NotNil(t, snapshot.Metadata.Symbol)
	assert.Equal(t, "LGC", *snapshot.Metadata.Symbol)
	assert.Equal(t, []domain.Principal{"legacy-admin"}, snapshot.Metadata.Custodians)

	require.Len(t, snapshot.Tokens, 2)
	first := snapshot.Tokens[0]
	assert.Equal(t, domain.TokenID("0"), first.ID)
	require.NotNil(t, first.Owner)
	assert.Equal(t, alice, *first.Owner)
	assert.Nil(t, first.Operator)
	assert.Equal(t, now, first.MintedAt)

	require.Len(t, first.Properties, 3)
	assert.Equal(t, domain.Property{Name: "location", Value: domain.TextValue("ipfs://QmLegacy")}, first.Properties[0])
	assert.Equal(t, domain.Property{Name: "edition", Value: domain.NatValueFromUint64(7)}, first.Properties[1])
	assert.Equal(t, domain.ValueKindNat, first.Properties[2].Value.Kind)
	assert.Equal(t, "123456789012345678901234567890", first.Properties[2].Value.Nat.String())

	// The log restarts with the new layout.
	assert.Empty(t, snapshot.TxRecords)

	// The migrated snapshot restores cleanly.
	l, _ := newTestLedger()
	_, err = l.Restore(snapshot)
	require.NoError(t, err)
	balance, err := l.BalanceOf(alice)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), balance)
}

func TestDecodeLegacySnapshotWithoutTokenStore(t *testing.T) {
	js := adapter.NewJSON()
	_, err := DecodeSnapshot([]byte(`{"token": {"name": "x"}}`), js, time.Now())
	assert.ErrorContains(t, err, "no token store")
}
