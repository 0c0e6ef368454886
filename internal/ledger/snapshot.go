package ledger

import (
	"fmt"
	"math/big"
	"slices"
	"strings"
	"time"

	"github.com/feral-file/nft-registry/internal/adapter"
	"github.com/feral-file/nft-registry/internal/domain"
)

// SnapshotVersion is the current serialized layout version.
const SnapshotVersion = 2

// Snapshot is the full serializable state of the registry: collection
// metadata, the authoritative token store, and the transaction log. The
// reverse indexes are deliberately omitted; they are rebuilt from the token
// store on restore, which is also the recovery procedure after any layout
// change.
type Snapshot struct {
	Version   int                       `json:"version"`
	Metadata  domain.CollectionMetadata `json:"metadata"`
	Tokens    []domain.TokenRecord      `json:"tokens"`
	TxRecords []domain.TxEvent          `json:"tx_records"`
}

// Snapshot exports a deep copy of the ledger state together with the
// collection metadata owned by the caller.
func (l *Ledger) Snapshot(meta domain.CollectionMetadata) Snapshot {
	tokens := make([]domain.TokenRecord, 0, len(l.tokens))
	for _, record := range l.tokens {
		tokens = append(tokens, *record.Clone())
	}
	slices.SortFunc(tokens, func(a, b domain.TokenRecord) int {
		return strings.Compare(string(a.ID), string(b.ID))
	})

	meta.Custodians = slices.Clone(meta.Custodians)

	return Snapshot{
		Version:   SnapshotVersion,
		Metadata:  meta,
		Tokens:    tokens,
		TxRecords: slices.Clone(l.txRecords),
	}
}

// Restore replaces the ledger state with the snapshot contents and rebuilds
// both indexes from the token store. It returns the collection metadata
// embedded in the snapshot.
func (l *Ledger) Restore(s Snapshot) (domain.CollectionMetadata, error) {
	tokens := make(map[domain.TokenID]*domain.TokenRecord, len(s.Tokens))
	for i := range s.Tokens {
		record := s.Tokens[i].Clone()
		if record.ID == "" {
			return domain.CollectionMetadata{}, fmt.Errorf("snapshot token %d has empty identifier", i)
		}
		if _, ok := tokens[record.ID]; ok {
			return domain.CollectionMetadata{}, fmt.Errorf("snapshot contains duplicate token %q", record.ID)
		}
		if record.Owner == nil && !record.IsBurned {
			return domain.CollectionMetadata{}, fmt.Errorf("snapshot token %q has no owner but is not burned", record.ID)
		}
		tokens[record.ID] = record
	}

	l.tokens = tokens
	l.owners, l.operators = rebuildIndexes(tokens)
	l.txRecords = slices.Clone(s.TxRecords)

	return s.Metadata, nil
}

// Encode serializes the snapshot.
func (s Snapshot) Encode(js adapter.JSON) ([]byte, error) {
	data, err := js.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses a serialized snapshot. Payloads in the legacy
// single-owner-list layout are transformed into the current shape; now is
// used as the provenance timestamp for migrated records.
func DecodeSnapshot(data []byte, js adapter.JSON, now time.Time) (Snapshot, error) {
	var probe struct {
		Version int `json:"version"`
	}
	if err := js.Unmarshal(data, &probe); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	if probe.Version == 0 {
		return decodeLegacySnapshot(data, js, now)
	}
	if probe.Version != SnapshotVersion {
		return Snapshot{}, fmt.Errorf("unsupported snapshot version %d", probe.Version)
	}

	var s Snapshot
	if err := js.Unmarshal(data, &s); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return s, nil
}

// Legacy layout: token-index keyed records with a single owning principal,
// per-user token lists, and collection fields in a separate token-level
// metadata block. Operator approvals of the legacy layout are discarded for
// safety and the transaction log starts fresh.
type legacySnapshot struct {
	Token  legacyTokenLevelMetadata `json:"token"`
	Ledger legacyLedger             `json:"ledger"`
}

type legacyTokenLevelMetadata struct {
	Owner  *domain.Principal `json:"owner"`
	Symbol string            `json:"symbol"`
	Name   string            `json:"name"`
}

type legacyLedger struct {
	Tokens     map[string]legacyTokenMetadata `json:"tokens"`
	UserTokens map[string][]uint64            `json:"user_tokens"`
}

type legacyTokenMetadata struct {
	AccountIdentifier string             `json:"account_identifier"`
	TokenIdentifier   string             `json:"token_identifier"`
	Principal         domain.Principal   `json:"principal"`
	MetadataDesc      []legacyMetadataPart `json:"metadata_desc"`
}

type legacyMetadataPart struct {
	Purpose    string           `json:"purpose"`
	KeyValData []legacyKeyVal   `json:"key_val_data"`
	Data       []byte           `json:"data"`
}

type legacyKeyVal struct {
	Key string      `json:"key"`
	Val legacyValue `json:"val"`
}

// legacyValue carries exactly one of the legacy width-tagged variants.
type legacyValue struct {
	TextContent  *string  `json:"TextContent,omitempty"`
	BlobContent  []byte   `json:"BlobContent,omitempty"`
	NatContent   *big.Int `json:"NatContent,omitempty"`
	Nat8Content  *uint8   `json:"Nat8Content,omitempty"`
	Nat16Content *uint16  `json:"Nat16Content,omitempty"`
	Nat32Content *uint32  `json:"Nat32Content,omitempty"`
	Nat64Content *uint64  `json:"Nat64Content,omitempty"`
}

func decodeLegacySnapshot(data []byte, js adapter.JSON, now time.Time) (Snapshot, error) {
	var legacy legacySnapshot
	if err := js.Unmarshal(data, &legacy); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode legacy snapshot: %w", err)
	}
	if legacy.Ledger.Tokens == nil {
		return Snapshot{}, fmt.Errorf("legacy snapshot has no token store")
	}
	return migrateLegacySnapshot(legacy, now), nil
}

func migrateLegacySnapshot(legacy legacySnapshot, now time.Time) Snapshot {
	tokens := make([]domain.TokenRecord, 0, len(legacy.Ledger.Tokens))
	for id, old := range legacy.Ledger.Tokens {
		owner := old.Principal
		tokens = append(tokens, domain.TokenRecord{
			ID:    domain.TokenID(id),
			Owner: &owner,
			// Operators are reset for safety; approvals must be re-issued.
			Operator:   nil,
			IsBurned:   false,
			Properties: migrateLegacyProperties(old.MetadataDesc),
			MintedAt:   now,
			MintedBy:   old.Principal,
		})
	}
	slices.SortFunc(tokens, func(a, b domain.TokenRecord) int {
		return strings.Compare(string(a.ID), string(b.ID))
	})

	meta := domain.CollectionMetadata{
		CreatedAt:  now,
		UpgradedAt: now,
	}
	if legacy.Token.Name != "" {
		name := legacy.Token.Name
		meta.Name = &name
	}
	if legacy.Token.Symbol != "" {
		symbol := legacy.Token.Symbol
		meta.Symbol = &symbol
	}
	if legacy.Token.Owner != nil {
		meta.Custodians = []domain.Principal{*legacy.Token.Owner}
	}

	return Snapshot{
		Version:  SnapshotVersion,
		Metadata: meta,
		Tokens:   tokens,
		// The legacy transaction history lives in the external audit sink;
		// sequence numbering restarts with the new layout.
		TxRecords: nil,
	}
}

func migrateLegacyProperties(parts []legacyMetadataPart) []domain.Property {
	var properties []domain.Property
	for _, part := range parts {
		for _, kv := range part.KeyValData {
			properties = append(properties, domain.Property{
				Name:  kv.Key,
				Value: kv.Val.generic(),
			})
		}
	}
	return properties
}

func (v legacyValue) generic() domain.GenericValue {
	switch {
	case v.TextContent != nil:
		return domain.TextValue(*v.TextContent)
	case v.BlobContent != nil:
		return domain.BlobValue(v.BlobContent)
	case v.NatContent != nil:
		return domain.NatValue(v.NatContent)
	case v.Nat8Content != nil:
		return domain.NatValueFromUint64(uint64(*v.Nat8Content))
	case v.Nat16Content != nil:
		return domain.NatValueFromUint64(uint64(*v.Nat16Content))
	case v.Nat32Content != nil:
		return domain.NatValueFromUint64(uint64(*v.Nat32Content))
	case v.Nat64Content != nil:
		return domain.NatValueFromUint64(*v.Nat64Content)
	default:
		return domain.TextValue("")
	}
}
