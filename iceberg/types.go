package iceberg

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Primitive type kinds as they appear in Iceberg metadata JSON.
const (
	KindBoolean     = "boolean"
	KindInt         = "int"
	KindLong        = "long"
	KindFloat       = "float"
	KindDouble      = "double"
	KindDate        = "date"
	KindString      = "string"
	KindBinary      = "binary"
	KindDecimal     = "decimal"
	KindTimestamp   = "timestamp"
	KindTimestampTz = "timestamptz"

	KindList   = "list"
	KindMap    = "map"
	KindStruct = "struct"
)

// Type is the tagged union over Iceberg's type system. Field ids are
// assigned at every nesting level and are the only stable identity a
// column has; they must survive any transformation of the tree.
type Type struct {
	Kind string

	// decimal
	Precision int
	Scale     int

	// list
	ElementID       int
	Element         *Type
	ElementRequired bool

	// map
	KeyID         int
	Key           *Type
	ValueID       int
	Value         *Type
	ValueRequired bool

	// struct
	Fields []NestedField
}

// NestedField is one named, id-tagged member of a struct (or of the
// top-level schema, which is itself a struct).
type NestedField struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Required bool   `json:"required"`
	Type     *Type  `json:"type"`
}

func Primitive(kind string) *Type {
	return &Type{Kind: kind}
}

func Decimal(precision, scale int) *Type {
	return &Type{Kind: KindDecimal, Precision: precision, Scale: scale}
}

func ListOf(elementID int, element *Type, elementRequired bool) *Type {
	return &Type{
		Kind:            KindList,
		ElementID:       elementID,
		Element:         element,
		ElementRequired: elementRequired,
	}
}

func MapOf(keyID int, key *Type, valueID int, value *Type, valueRequired bool) *Type {
	return &Type{
		Kind:          KindMap,
		KeyID:         keyID,
		Key:           key,
		ValueID:       valueID,
		Value:         value,
		ValueRequired: valueRequired,
	}
}

func StructOf(fields ...NestedField) *Type {
	return &Type{Kind: KindStruct, Fields: fields}
}

func (t *Type) IsPrimitive() bool {
	switch t.Kind {
	case KindList, KindMap, KindStruct:
		return false
	}
	return true
}

// String renders the metadata JSON spelling of the type.
func (t *Type) String() string {
	switch t.Kind {
	case KindDecimal:
		return fmt.Sprintf("decimal(%d, %d)", t.Precision, t.Scale)
	case KindList:
		return fmt.Sprintf("list<%s>", t.Element)
	case KindMap:
		return fmt.Sprintf("map<%s, %s>", t.Key, t.Value)
	case KindStruct:
		names := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			names[i] = fmt.Sprintf("%d: %s: %s", f.ID, f.Name, f.Type)
		}
		return fmt.Sprintf("struct<%s>", strings.Join(names, ", "))
	default:
		return t.Kind
	}
}

func (t *Type) MarshalJSON() ([]byte, error) {
	switch t.Kind {
	case KindList:
		return json.Marshal(struct {
			Type            string `json:"type"`
			ElementID       int    `json:"element-id"`
			Element         *Type  `json:"element"`
			ElementRequired bool   `json:"element-required"`
		}{KindList, t.ElementID, t.Element, t.ElementRequired})
	case KindMap:
		return json.Marshal(struct {
			Type          string `json:"type"`
			KeyID         int    `json:"key-id"`
			Key           *Type  `json:"key"`
			ValueID       int    `json:"value-id"`
			Value         *Type  `json:"value"`
			ValueRequired bool   `json:"value-required"`
		}{KindMap, t.KeyID, t.Key, t.ValueID, t.Value, t.ValueRequired})
	case KindStruct:
		return json.Marshal(struct {
			Type   string        `json:"type"`
			Fields []NestedField `json:"fields"`
		}{KindStruct, t.Fields})
	default:
		return json.Marshal(t.String())
	}
}

func (t *Type) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		return t.parsePrimitive(s)
	}

	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}

	switch probe.Type {
	case KindList:
		var v struct {
			ElementID       int   `json:"element-id"`
			Element         *Type `json:"element"`
			ElementRequired bool  `json:"element-required"`
		}
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*t = Type{Kind: KindList, ElementID: v.ElementID, Element: v.Element, ElementRequired: v.ElementRequired}
	case KindMap:
		var v struct {
			KeyID         int   `json:"key-id"`
			Key           *Type `json:"key"`
			ValueID       int   `json:"value-id"`
			Value         *Type `json:"value"`
			ValueRequired bool  `json:"value-required"`
		}
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*t = Type{Kind: KindMap, KeyID: v.KeyID, Key: v.Key, ValueID: v.ValueID, Value: v.Value, ValueRequired: v.ValueRequired}
	case KindStruct:
		var v struct {
			Fields []NestedField `json:"fields"`
		}
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*t = Type{Kind: KindStruct, Fields: v.Fields}
	default:
		return fmt.Errorf("unknown complex type %q", probe.Type)
	}
	return nil
}

func (t *Type) parsePrimitive(s string) error {
	if strings.HasPrefix(s, KindDecimal) {
		var p, sc int
		compact := strings.ReplaceAll(s, " ", "")
		if _, err := fmt.Sscanf(compact, "decimal(%d,%d)", &p, &sc); err != nil {
			return fmt.Errorf("parsing decimal type %q: %w", s, err)
		}
		*t = Type{Kind: KindDecimal, Precision: p, Scale: sc}
		return nil
	}
	*t = Type{Kind: s}
	return nil
}
