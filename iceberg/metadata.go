package iceberg

type TableMetadata struct {
	FormatVersion     int               `json:"format-version"`
	TableUUID         string            `json:"table-uuid"`
	Location          string            `json:"location"`
	LastUpdated       int64             `json:"last-updated-ms"`
	LastColumnID      int               `json:"last-column-id"`
	CurrentSchemaID   int               `json:"current-schema-id"`
	Schemas           []Schema          `json:"schemas"`
	DefaultSpecID     int               `json:"default-spec-id"`
	PartitionSpecs    []PartitionSpec   `json:"partition-specs"`
	Properties        map[string]string `json:"properties,omitempty"`
	CurrentSnapshotID int64             `json:"current-snapshot-id"`
	Snapshots         []*Snapshot       `json:"snapshots"`
}

type Schema struct {
	SchemaID int           `json:"schema-id"`
	Fields   []NestedField `json:"fields"`
}

type PartitionSpec struct {
	SpecID int              `json:"spec-id"`
	Fields []PartitionField `json:"fields"`
}

type PartitionField struct {
	SourceID  int    `json:"source-id"` // schema field id the value comes from
	FieldID   int    `json:"field-id"`
	Name      string `json:"name"`
	Transform string `json:"transform"` // identity, bucket[N], truncate[W], year, ...
}

type Snapshot struct {
	SnapshotID       int64             `json:"snapshot-id"`
	ParentSnapshotID int64             `json:"parent-snapshot-id,omitempty"`
	SequenceNumber   int64             `json:"sequence-number"`
	TimestampMs      int64             `json:"timestamp-ms"`
	ManifestList     string            `json:"manifest-list"`
	Summary          map[string]string `json:"summary,omitempty"`
}

// SchemaByID returns the schema with the given id, or nil.
func (m *TableMetadata) SchemaByID(id int) *Schema {
	for i := range m.Schemas {
		if m.Schemas[i].SchemaID == id {
			return &m.Schemas[i]
		}
	}
	return nil
}

// SpecByID returns the partition spec with the given id, or nil.
func (m *TableMetadata) SpecByID(id int) *PartitionSpec {
	for i := range m.PartitionSpecs {
		if m.PartitionSpecs[i].SpecID == id {
			return &m.PartitionSpecs[i]
		}
	}
	return nil
}

// FieldByID walks the current schema's top-level fields for id.
func (s *Schema) FieldByID(id int) *NestedField {
	for i := range s.Fields {
		if s.Fields[i].ID == id {
			return &s.Fields[i]
		}
	}
	return nil
}
