package migrate

import (
	"icefloe/iceberg"
	"icefloe/paimon"
)

// MapSchema maps the source table's current schema to the target type
// system, preserving field ids, order and requiredness at every nesting
// level. It also returns the highest field id seen anywhere in the tree.
func MapSchema(schema *iceberg.Schema) ([]paimon.DataField, int, error) {
	fields, err := mapFields(schema.Fields)
	if err != nil {
		return nil, 0, err
	}

	highest := 0
	for _, f := range schema.Fields {
		highest = maxFieldID(highest, f.ID, f.Type)
	}
	return fields, highest, nil
}

func mapFields(fields []iceberg.NestedField) ([]paimon.DataField, error) {
	mapped := make([]paimon.DataField, 0, len(fields))
	for _, f := range fields {
		t, err := mapType(f.Type, f.Required, f.ID)
		if err != nil {
			return nil, err
		}
		mapped = append(mapped, paimon.DataField{
			ID:   f.ID,
			Name: f.Name,
			Type: t,
		})
	}
	return mapped, nil
}

// mapType translates one type node. fieldID is the id of the nearest
// enclosing field, used only for error context.
func mapType(t *iceberg.Type, required bool, fieldID int) (*paimon.DataType, error) {
	nullable := !required

	switch t.Kind {
	case iceberg.KindBoolean:
		return &paimon.DataType{Kind: paimon.TypeBoolean, Nullable: nullable}, nil
	case iceberg.KindInt:
		return &paimon.DataType{Kind: paimon.TypeInt, Nullable: nullable}, nil
	case iceberg.KindLong:
		return &paimon.DataType{Kind: paimon.TypeBigInt, Nullable: nullable}, nil
	case iceberg.KindFloat:
		return &paimon.DataType{Kind: paimon.TypeFloat, Nullable: nullable}, nil
	case iceberg.KindDouble:
		return &paimon.DataType{Kind: paimon.TypeDouble, Nullable: nullable}, nil
	case iceberg.KindDate:
		return &paimon.DataType{Kind: paimon.TypeDate, Nullable: nullable}, nil
	case iceberg.KindString:
		return &paimon.DataType{Kind: paimon.TypeString, Nullable: nullable}, nil
	case iceberg.KindBinary:
		return &paimon.DataType{Kind: paimon.TypeBytes, Nullable: nullable}, nil
	case iceberg.KindDecimal:
		return &paimon.DataType{
			Kind:      paimon.TypeDecimal,
			Precision: t.Precision,
			Scale:     t.Scale,
			Nullable:  nullable,
		}, nil
	case iceberg.KindTimestamp:
		return &paimon.DataType{Kind: paimon.TypeTimestamp, TimePrecision: 6, Nullable: nullable}, nil
	case iceberg.KindTimestampTz:
		return &paimon.DataType{Kind: paimon.TypeTimestampLTZ, TimePrecision: 6, Nullable: nullable}, nil

	case iceberg.KindList:
		element, err := mapType(t.Element, t.ElementRequired, t.ElementID)
		if err != nil {
			return nil, err
		}
		return &paimon.DataType{
			Kind:      paimon.TypeArray,
			ElementID: t.ElementID,
			Element:   element,
			Nullable:  nullable,
		}, nil

	case iceberg.KindMap:
		// Map keys are always required.
		key, err := mapType(t.Key, true, t.KeyID)
		if err != nil {
			return nil, err
		}
		value, err := mapType(t.Value, t.ValueRequired, t.ValueID)
		if err != nil {
			return nil, err
		}
		return &paimon.DataType{
			Kind:     paimon.TypeMap,
			KeyID:    t.KeyID,
			Key:      key,
			ValueID:  t.ValueID,
			Value:    value,
			Nullable: nullable,
		}, nil

	case iceberg.KindStruct:
		fields, err := mapFields(t.Fields)
		if err != nil {
			return nil, err
		}
		return &paimon.DataType{
			Kind:     paimon.TypeRow,
			Fields:   fields,
			Nullable: nullable,
		}, nil

	default:
		return nil, &UnsupportedTypeError{Kind: t.Kind, FieldID: fieldID}
	}
}

// maxFieldID folds the largest id in the subtree rooted at t into acc.
func maxFieldID(acc, id int, t *iceberg.Type) int {
	if id > acc {
		acc = id
	}
	switch t.Kind {
	case iceberg.KindList:
		acc = maxFieldID(acc, t.ElementID, t.Element)
	case iceberg.KindMap:
		acc = maxFieldID(acc, t.KeyID, t.Key)
		acc = maxFieldID(acc, t.ValueID, t.Value)
	case iceberg.KindStruct:
		for _, f := range t.Fields {
			acc = maxFieldID(acc, f.ID, f.Type)
		}
	}
	return acc
}
