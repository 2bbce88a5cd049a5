package iceberg

// Manifest entry status: the last status recorded for a file path across
// the snapshot's manifests decides whether the file is live.
const (
	EntryStatusExisting int32 = 0
	EntryStatusAdded    int32 = 1
	EntryStatusDeleted  int32 = 2
)

// Manifest-level content.
const (
	ManifestContentData    int32 = 0
	ManifestContentDeletes int32 = 1
)

// Data-file-level content.
const (
	FileContentData            int32 = 0
	FileContentPositionDeletes int32 = 1
	FileContentEqualityDeletes int32 = 2
)

// ManifestFileMeta is one entry of a snapshot's manifest list.
type ManifestFileMeta struct {
	ManifestPath      string `json:"manifest_path"`
	ManifestLength    int64  `json:"manifest_length"`
	PartitionSpecID   int    `json:"partition_spec_id"`
	Content           int32  `json:"content"`
	SequenceNumber    int64  `json:"sequence_number"`
	MinSequenceNumber int64  `json:"min_sequence_number"`
	AddedSnapshotID   int64  `json:"added_snapshot_id"`
}

type ManifestEntry struct {
	Status             int32    `json:"status"`
	SnapshotID         int64    `json:"snapshot_id"`
	SequenceNumber     int64    `json:"sequence_number"`
	FileSequenceNumber int64    `json:"file_sequence_number"`
	DataFile           DataFile `json:"data_file"`
}

type DataFile struct {
	Content       int32             `json:"content"`
	FilePath      string            `json:"file_path"`
	FileFormat    string            `json:"file_format"`
	Partition     map[string]string `json:"partition"`
	RecordCount   int64             `json:"record_count"`
	FileSizeBytes int64             `json:"file_size_in_bytes"`
	SchemaID      int               `json:"schema_id"`
	Metrics       FileMetrics       `json:"metrics"`
}

type FileMetrics struct {
	ColumnSizes     map[int]int64  `json:"column_sizes,omitempty"`
	ValueCounts     map[int]int64  `json:"value_counts,omitempty"`
	NullValueCounts map[int]int64  `json:"null_value_counts,omitempty"`
	LowerBounds     map[int][]byte `json:"lower_bounds,omitempty"`
	UpperBounds     map[int][]byte `json:"upper_bounds,omitempty"`
}

// ContentName names a data-file content kind for error messages.
func ContentName(content int32) string {
	switch content {
	case FileContentData:
		return "DATA"
	case FileContentPositionDeletes:
		return "POSITION_DELETES"
	case FileContentEqualityDeletes:
		return "EQUALITY_DELETES"
	default:
		return "UNKNOWN"
	}
}
