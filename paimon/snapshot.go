package paimon

// Snapshot is the content of a snapshot/snapshot-<N> file.
type Snapshot struct {
	Version          int    `json:"version"`
	ID               int64  `json:"id"`
	SchemaID         int    `json:"schemaId"`
	BaseManifestList string `json:"baseManifestList"`
	CommitUser       string `json:"commitUser"`
	CommitIdentifier int64  `json:"commitIdentifier"`
	CommitKind       string `json:"commitKind"`
	TimeMillis       int64  `json:"timeMillis"`
	TotalRecordCount int64  `json:"totalRecordCount"`
	DeltaRecordCount int64  `json:"deltaRecordCount"`
}

const (
	CommitKindAppend = "APPEND"

	snapshotVersion = 3
)

// ManifestFileMeta is one entry of a manifest list file.
type ManifestFileMeta struct {
	FileName      string `json:"fileName"`
	FileSize      int64  `json:"fileSize"`
	NumAddedFiles int64  `json:"numAddedFiles"`
	SchemaID      int    `json:"schemaId"`
}

// Entry kinds in a manifest file.
const (
	EntryKindAdd    = 0
	EntryKindDelete = 1
)

// ManifestEntry records one data file joining (or leaving) the table.
type ManifestEntry struct {
	Kind         int          `json:"kind"`
	Partition    []string     `json:"partition"`
	Bucket       int          `json:"bucket"`
	TotalBuckets int          `json:"totalBuckets"`
	File         DataFileMeta `json:"file"`
}

// DataFileMeta references a physical data file. The path is carried over
// unchanged from whatever wrote the file; the table never owns the bytes
// until it is the only remaining reference.
type DataFileMeta struct {
	FileName     string     `json:"fileName"`
	FileSize     int64      `json:"fileSize"`
	RowCount     int64      `json:"rowCount"`
	Level        int        `json:"level"`
	CreationTime int64      `json:"creationTimeMillis"`
	Stats        *FileStats `json:"stats,omitempty"`
}

// FileStats is per-column metadata keyed by field id, passed through from
// the source format when present.
type FileStats struct {
	ValueCounts map[int]int64  `json:"valueCounts,omitempty"`
	NullCounts  map[int]int64  `json:"nullCounts,omitempty"`
	LowerBounds map[int][]byte `json:"lowerBounds,omitempty"`
	UpperBounds map[int][]byte `json:"upperBounds,omitempty"`
}
