package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/feral-file/nft-registry/internal/domain"
)

func principal(p domain.Principal) *domain.Principal {
	return &p
}

func TestUpdateIndex(t *testing.T) {
	idx := make(index)

	updateIndex(idx, "token-1", nil, principal(alice))
	updateIndex(idx, "token-2", nil, principal(alice))
	assert.Len(t, idx[alice], 2)

	// Moving an entry removes it from the old set first.
	updateIndex(idx, "token-1", principal(alice), principal(bob))
	assert.Len(t, idx[alice], 1)
	assert.Len(t, idx[bob], 1)

	// Removing the last entry drops the key entirely.
	updateIndex(idx, "token-2", principal(alice), nil)
	_, ok := idx[alice]
	assert.False(t, ok)

	// Removing for an absent principal is a no-op.
	updateIndex(idx, "token-1", principal(carol), nil)
	assert.Len(t, idx[bob], 1)
}

func TestRebuildIndexes(t *testing.T) {
	tokens := map[domain.TokenID]*domain.TokenRecord{
		"token-1": {ID: "token-1", Owner: principal(alice), Operator: principal(carol)},
		"token-2": {ID: "token-2", Owner: principal(alice)},
		"token-3": {ID: "token-3", Owner: nil, IsBurned: true},
	}

	owners, operators := rebuildIndexes(tokens)

	assert.Len(t, owners[alice], 2)
	assert.Len(t, operators[carol], 1)

	// Burned tokens appear in neither index.
	for _, idx := range []index{owners, operators} {
		for _, set := range idx {
			_, ok := set["token-3"]
			assert.False(t, ok)
		}
	}
}
