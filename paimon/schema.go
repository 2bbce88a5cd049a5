package paimon

// TableSchema is the content of a schema/schema-<N> file.
type TableSchema struct {
	ID             int               `json:"id"`
	Fields         []DataField       `json:"fields"`
	HighestFieldID int               `json:"highestFieldId"`
	PartitionKeys  []string          `json:"partitionKeys"`
	PrimaryKeys    []string          `json:"primaryKeys"`
	Options        map[string]string `json:"options"`
	TimeMillis     int64             `json:"timeMillis"`
}

// FieldByID returns the top-level field with the given id, or nil.
func (s *TableSchema) FieldByID(id int) *DataField {
	for i := range s.Fields {
		if s.Fields[i].ID == id {
			return &s.Fields[i]
		}
	}
	return nil
}

// FieldByName returns the top-level field with the given name, or nil.
// Only partition-key resolution uses names; data binding is by id.
func (s *TableSchema) FieldByName(name string) *DataField {
	for i := range s.Fields {
		if s.Fields[i].Name == name {
			return &s.Fields[i]
		}
	}
	return nil
}
