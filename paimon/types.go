package paimon

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Paimon type kinds. Primitives serialize as SQL-style strings with an
// optional NOT NULL suffix; ARRAY, MAP and ROW serialize as objects so the
// per-level field ids survive the round trip.
const (
	TypeBoolean      = "BOOLEAN"
	TypeInt          = "INT"
	TypeBigInt       = "BIGINT"
	TypeFloat        = "FLOAT"
	TypeDouble       = "DOUBLE"
	TypeDate         = "DATE"
	TypeString       = "STRING"
	TypeBytes        = "BYTES"
	TypeDecimal      = "DECIMAL"
	TypeTimestamp    = "TIMESTAMP"
	TypeTimestampLTZ = "TIMESTAMP_LTZ"

	TypeArray = "ARRAY"
	TypeMap   = "MAP"
	TypeRow   = "ROW"
)

const defaultTimestampPrecision = 6

type DataType struct {
	Kind     string
	Nullable bool

	// DECIMAL
	Precision int
	Scale     int

	// TIMESTAMP / TIMESTAMP_LTZ
	TimePrecision int

	// ARRAY
	ElementID int
	Element   *DataType

	// MAP
	KeyID   int
	Key     *DataType
	ValueID int
	Value   *DataType

	// ROW
	Fields []DataField
}

// DataField is one id-tagged column of a row type or of a table schema.
// The id is permanent: readers bind physical columns to it, never to the
// name or the position.
type DataField struct {
	ID   int       `json:"id"`
	Name string    `json:"name"`
	Type *DataType `json:"type"`
}

func (t *DataType) String() string {
	var base string
	switch t.Kind {
	case TypeDecimal:
		base = fmt.Sprintf("DECIMAL(%d, %d)", t.Precision, t.Scale)
	case TypeTimestamp:
		base = fmt.Sprintf("TIMESTAMP(%d)", t.timePrecision())
	case TypeTimestampLTZ:
		base = fmt.Sprintf("TIMESTAMP(%d) WITH LOCAL TIME ZONE", t.timePrecision())
	case TypeArray:
		base = fmt.Sprintf("ARRAY<%s>", t.Element)
	case TypeMap:
		base = fmt.Sprintf("MAP<%s, %s>", t.Key, t.Value)
	case TypeRow:
		names := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			names[i] = fmt.Sprintf("%s %s", f.Name, f.Type)
		}
		base = fmt.Sprintf("ROW<%s>", strings.Join(names, ", "))
	default:
		base = t.Kind
	}
	if !t.Nullable {
		base += " NOT NULL"
	}
	return base
}

func (t *DataType) timePrecision() int {
	if t.TimePrecision == 0 {
		return defaultTimestampPrecision
	}
	return t.TimePrecision
}

func (t *DataType) MarshalJSON() ([]byte, error) {
	switch t.Kind {
	case TypeArray:
		return json.Marshal(struct {
			Type      string    `json:"type"`
			ElementID int       `json:"element-id"`
			Element   *DataType `json:"element"`
			Nullable  bool      `json:"nullable"`
		}{TypeArray, t.ElementID, t.Element, t.Nullable})
	case TypeMap:
		return json.Marshal(struct {
			Type     string    `json:"type"`
			KeyID    int       `json:"key-id"`
			Key      *DataType `json:"key"`
			ValueID  int       `json:"value-id"`
			Value    *DataType `json:"value"`
			Nullable bool      `json:"nullable"`
		}{TypeMap, t.KeyID, t.Key, t.ValueID, t.Value, t.Nullable})
	case TypeRow:
		return json.Marshal(struct {
			Type     string      `json:"type"`
			Fields   []DataField `json:"fields"`
			Nullable bool        `json:"nullable"`
		}{TypeRow, t.Fields, t.Nullable})
	default:
		return json.Marshal(t.String())
	}
}

func (t *DataType) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		return t.parse(s)
	}

	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return err
	}

	switch probe.Type {
	case TypeArray:
		var v struct {
			ElementID int       `json:"element-id"`
			Element   *DataType `json:"element"`
			Nullable  bool      `json:"nullable"`
		}
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*t = DataType{Kind: TypeArray, ElementID: v.ElementID, Element: v.Element, Nullable: v.Nullable}
	case TypeMap:
		var v struct {
			KeyID    int       `json:"key-id"`
			Key      *DataType `json:"key"`
			ValueID  int       `json:"value-id"`
			Value    *DataType `json:"value"`
			Nullable bool      `json:"nullable"`
		}
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*t = DataType{Kind: TypeMap, KeyID: v.KeyID, Key: v.Key, ValueID: v.ValueID, Value: v.Value, Nullable: v.Nullable}
	case TypeRow:
		var v struct {
			Fields   []DataField `json:"fields"`
			Nullable bool        `json:"nullable"`
		}
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*t = DataType{Kind: TypeRow, Fields: v.Fields, Nullable: v.Nullable}
	default:
		return fmt.Errorf("unknown complex type %q", probe.Type)
	}
	return nil
}

func (t *DataType) parse(s string) error {
	nullable := true
	if strings.HasSuffix(s, " NOT NULL") {
		nullable = false
		s = strings.TrimSuffix(s, " NOT NULL")
	}

	switch {
	case strings.HasPrefix(s, TypeDecimal):
		var p, sc int
		compact := strings.ReplaceAll(s, " ", "")
		if _, err := fmt.Sscanf(compact, "DECIMAL(%d,%d)", &p, &sc); err != nil {
			return fmt.Errorf("parsing decimal type %q: %w", s, err)
		}
		*t = DataType{Kind: TypeDecimal, Precision: p, Scale: sc, Nullable: nullable}
	case strings.HasPrefix(s, TypeTimestamp):
		var p int
		compact := strings.ReplaceAll(s, " ", "")
		kind := TypeTimestamp
		if strings.HasSuffix(compact, "WITHLOCALTIMEZONE") {
			kind = TypeTimestampLTZ
			compact = strings.TrimSuffix(compact, "WITHLOCALTIMEZONE")
		}
		if _, err := fmt.Sscanf(compact, "TIMESTAMP(%d)", &p); err != nil {
			return fmt.Errorf("parsing timestamp type %q: %w", s, err)
		}
		*t = DataType{Kind: kind, TimePrecision: p, Nullable: nullable}
	default:
		*t = DataType{Kind: s, Nullable: nullable}
	}
	return nil
}
