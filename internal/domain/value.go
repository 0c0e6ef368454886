package domain

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// ValueKind tags the active variant of a GenericValue.
type ValueKind string

const (
	ValueKindBool      ValueKind = "bool"
	ValueKindText      ValueKind = "text"
	ValueKindBlob      ValueKind = "blob"
	ValueKindPrincipal ValueKind = "principal"
	ValueKindNat       ValueKind = "nat"
	ValueKindInt       ValueKind = "int"
	ValueKindFloat     ValueKind = "float"
	ValueKindNested    ValueKind = "nested"
)

// GenericValue is a tagged union carried in token properties and transaction
// details. The ledger never interprets these values. Natural numbers are
// arbitrary precision; the narrow numeric widths of older layouts all decode
// into the nat/int variants.
type GenericValue struct {
	Kind      ValueKind
	Bool      bool
	Text      string
	Blob      []byte
	Principal Principal
	Nat       *big.Int
	Int       int64
	Float     float64
	Nested    []Property
}

// Property is one ordered (name, value) pair of opaque metadata.
type Property struct {
	Name  string       `json:"name"`
	Value GenericValue `json:"value"`
}

func BoolValue(v bool) GenericValue { return GenericValue{Kind: ValueKindBool, Bool: v} }
func TextValue(v string) GenericValue { return GenericValue{Kind: ValueKindText, Text: v} }
func BlobValue(v []byte) GenericValue { return GenericValue{Kind: ValueKindBlob, Blob: v} }
func IntValue(v int64) GenericValue { return GenericValue{Kind: ValueKindInt, Int: v} }
func FloatValue(v float64) GenericValue { return GenericValue{Kind: ValueKindFloat, Float: v} }
func NestedValue(v []Property) GenericValue {
	return GenericValue{Kind: ValueKindNested, Nested: v}
}

func PrincipalValue(p Principal) GenericValue {
	return GenericValue{Kind: ValueKindPrincipal, Principal: p}
}

func NatValue(v *big.Int) GenericValue {
	return GenericValue{Kind: ValueKindNat, Nat: v}
}

func NatValueFromUint64(v uint64) GenericValue {
	return NatValue(new(big.Int).SetUint64(v))
}

// valueEnvelope is the wire shape: a kind tag plus the raw variant payload.
type valueEnvelope struct {
	Kind  ValueKind       `json:"kind"`
	Value json.RawMessage `json:"value"`
}

// MarshalJSON encodes the active variant only.
func (v GenericValue) MarshalJSON() ([]byte, error) {
	var payload any
	switch v.Kind {
	case ValueKindBool:
		payload = v.Bool
	case ValueKindText:
		payload = v.Text
	case ValueKindBlob:
		payload = v.Blob
	case ValueKindPrincipal:
		payload = v.Principal
	case ValueKindNat:
		if v.Nat == nil {
			payload = big.NewInt(0)
		} else {
			payload = v.Nat
		}
	case ValueKindInt:
		payload = v.Int
	case ValueKindFloat:
		payload = v.Float
	case ValueKindNested:
		payload = v.Nested
	default:
		return nil, fmt.Errorf("unknown value kind %q", v.Kind)
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return json.Marshal(valueEnvelope{Kind: v.Kind, Value: raw})
}

// UnmarshalJSON decodes the variant named by the kind tag.
func (v *GenericValue) UnmarshalJSON(data []byte) error {
	var env valueEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}

	out := GenericValue{Kind: env.Kind}
	var err error
	switch env.Kind {
	case ValueKindBool:
		err = json.Unmarshal(env.Value, &out.Bool)
	case ValueKindText:
		err = json.Unmarshal(env.Value, &out.Text)
	case ValueKindBlob:
		err = json.Unmarshal(env.Value, &out.Blob)
	case ValueKindPrincipal:
		err = json.Unmarshal(env.Value, &out.Principal)
	case ValueKindNat:
		out.Nat = new(big.Int)
		err = json.Unmarshal(env.Value, out.Nat)
	case ValueKindInt:
		err = json.Unmarshal(env.Value, &out.Int)
	case ValueKindFloat:
		err = json.Unmarshal(env.Value, &out.Float)
	case ValueKindNested:
		err = json.Unmarshal(env.Value, &out.Nested)
	default:
		return fmt.Errorf("unknown value kind %q", env.Kind)
	}
	if err != nil {
		return err
	}

	*v = out
	return nil
}
