package iceberg

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeJSONPrimitives(t *testing.T) {
	schema := Schema{
		SchemaID: 0,
		Fields: []NestedField{
			{ID: 1, Name: "ok", Required: true, Type: Primitive(KindBoolean)},
			{ID: 2, Name: "amount", Required: true, Type: Decimal(10, 2)},
			{ID: 3, Name: "ts", Required: false, Type: Primitive(KindTimestampTz)},
		},
	}

	data, err := json.Marshal(schema)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"decimal(10, 2)"`)

	decoded := Schema{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, schema, decoded)
}

// Accepts both decimal spellings that appear in metadata files.
func TestTypeDecimalSpellings(t *testing.T) {
	for _, raw := range []string{`"decimal(10, 2)"`, `"decimal(10,2)"`} {
		decoded := new(Type)
		require.NoError(t, json.Unmarshal([]byte(raw), decoded))
		assert.Equal(t, 10, decoded.Precision)
		assert.Equal(t, 2, decoded.Scale)
	}
}

func TestTypeJSONNested(t *testing.T) {
	typ := MapOf(
		18, Primitive(KindInt),
		19, ListOf(20, StructOf(
			NestedField{ID: 13, Name: "c41", Required: true, Type: Primitive(KindInt)},
			NestedField{ID: 14, Name: "c42", Required: true, Type: Primitive(KindString)},
		), true),
		true,
	)

	data, err := json.Marshal(typ)
	require.NoError(t, err)

	decoded := new(Type)
	require.NoError(t, json.Unmarshal(data, decoded))
	assert.Equal(t, typ, decoded)

	// Ids at every level survive the round trip.
	assert.Equal(t, 18, decoded.KeyID)
	assert.Equal(t, 19, decoded.ValueID)
	assert.Equal(t, 20, decoded.Value.ElementID)
	assert.Equal(t, 13, decoded.Value.Element.Fields[0].ID)
}

func TestTypeUnknownComplex(t *testing.T) {
	decoded := new(Type)
	err := json.Unmarshal([]byte(`{"type":"variant"}`), decoded)
	assert.ErrorContains(t, err, "variant")
}
