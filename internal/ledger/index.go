package ledger

import (
	"github.com/feral-file/nft-registry/internal/domain"
)

type tokenSet map[domain.TokenID]struct{}

// index is a reverse lookup cache from principal to token identifiers,
// derived from the token store.
type index map[domain.Principal]tokenSet

// updateIndex moves id from oldPrincipal's set to newPrincipal's set.
// All owner/operator index mutation in the ledger goes through this one
// primitive; callers must capture oldPrincipal before overwriting the
// token record field it was read from. Keys with empty sets are removed.
func updateIndex(idx index, id domain.TokenID, oldPrincipal, newPrincipal *domain.Principal) {
	if oldPrincipal != nil {
		if set, ok := idx[*oldPrincipal]; ok {
			delete(set, id)
			if len(set) == 0 {
				delete(idx, *oldPrincipal)
			}
		}
	}

	if newPrincipal != nil {
		set, ok := idx[*newPrincipal]
		if !ok {
			set = make(tokenSet)
			idx[*newPrincipal] = set
		}
		set[id] = struct{}{}
	}
}

// rebuildIndexes derives both reverse indexes from the token store alone.
// This is the canonical recovery procedure after restore or migration.
func rebuildIndexes(tokens map[domain.TokenID]*domain.TokenRecord) (owners, operators index) {
	owners = make(index)
	operators = make(index)
	for id, record := range tokens {
		updateIndex(owners, id, nil, record.Owner)
		updateIndex(operators, id, nil, record.Operator)
	}
	return owners, operators
}
