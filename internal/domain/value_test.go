package domain

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenericValueJSON(t *testing.T) {
	tests := []struct {
		name     string
		value    GenericValue
		expected string
	}{
		{
			name:     "bool",
			value:    BoolValue(true),
			expected: `{"kind":"bool","value":true}`,
		},
		{
			name:     "text",
			value:    TextValue("ipfs://QmExample"),
			expected: `{"kind":"text","value":"ipfs://QmExample"}`,
		},
		{
			name:     "blob",
			value:    BlobValue([]byte{0x01, 0x02}),
			expected: `{"kind":"blob","value":"AQI="}`,
		},
		{
			name:     "principal",
			value:    PrincipalValue("alice"),
			expected: `{"kind":"principal","value":"alice"}`,
		},
		{
			name:     "nat beyond uint64",
			value:    NatValue(mustBigInt(t, "123456789012345678901234567890")),
			expected: `{"kind":"nat","value":123456789012345678901234567890}`,
		},
		{
			name:     "int",
			value:    IntValue(-42),
			expected: `{"kind":"int","value":-42}`,
		},
		{
			name:     "float",
			value:    FloatValue(1.5),
			expected: `{"kind":"float","value":1.5}`,
		},
		{
			name: "nested",
			value: NestedValue([]Property{
				{Name: "width", Value: NatValueFromUint64(1920)},
				{Name: "unit", Value: TextValue("px")},
			}),
			expected: `{"kind":"nested","value":[{"name":"width","value":{"kind":"nat","value":1920}},{"name":"unit","value":{"kind":"text","value":"px"}}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.value)
			require.NoError(t, err)
			assert.JSONEq(t, tt.expected, string(data))

			var decoded GenericValue
			require.NoError(t, json.Unmarshal(data, &decoded))
			assert.Equal(t, tt.value, decoded)
		})
	}
}

func TestGenericValueJSONUnknownKind(t *testing.T) {
	_, err := json.Marshal(GenericValue{Kind: "mystery"})
	assert.Error(t, err)

	var decoded GenericValue
	err = json.Unmarshal([]byte(`{"kind":"mystery","value":1}`), &decoded)
	assert.ErrorContains(t, err, "unknown value kind")
}

func mustBigInt(t *testing.T, s string) *big.Int {
	t.Helper()
	n, ok := new(big.Int).SetString(s, 10)
	require.True(t, ok)
	return n
}
