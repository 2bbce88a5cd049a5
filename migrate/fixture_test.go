package migrate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/require"

	"icefloe/iceberg"
	"icefloe/storage"
)

// iceFixture builds a real Iceberg table layout on a local warehouse:
// metadata files, manifest lists, manifests, and genuine Parquet data files
// whose sizes and row counts feed the manifests.
type iceFixture struct {
	t     *testing.T
	store *storage.LocalStorage

	database string
	name     string

	schema  iceberg.Schema
	schemas []iceberg.Schema
	spec    iceberg.PartitionSpec

	entries      []iceberg.ManifestEntry // every entry ever written, manifest order
	manifests    []iceberg.ManifestFileMeta
	snapshots    []*iceberg.Snapshot
	version      int
	seq          int64
	lastColumnID int
}

func defaultIceSchema() iceberg.Schema {
	return iceberg.Schema{
		SchemaID: 0,
		Fields: []iceberg.NestedField{
			{ID: 1, Name: "k", Required: true, Type: iceberg.Primitive(iceberg.KindInt)},
			{ID: 2, Name: "v", Required: true, Type: iceberg.Primitive(iceberg.KindInt)},
			{ID: 3, Name: "dt", Required: true, Type: iceberg.Primitive(iceberg.KindString)},
			{ID: 4, Name: "hh", Required: true, Type: iceberg.Primitive(iceberg.KindString)},
		},
	}
}

func newIceFixture(t *testing.T, root string, partitioned bool) *iceFixture {
	f := &iceFixture{
		t:            t,
		store:        storage.NewLocalStorage(root),
		database:     "ice_db",
		name:         "ice_t",
		schema:       defaultIceSchema(),
		lastColumnID: 4,
	}
	f.schemas = []iceberg.Schema{f.schema}
	f.spec = iceberg.PartitionSpec{SpecID: 0}
	if partitioned {
		f.spec.Fields = []iceberg.PartitionField{
			{SourceID: 3, FieldID: 1000, Name: "dt", Transform: "identity"},
			{SourceID: 4, FieldID: 1001, Name: "hh", Transform: "identity"},
		}
	}
	f.commitMetadata()
	return f
}

func (f *iceFixture) tablePath() string {
	return path.Join(f.database, f.name)
}

// writeData writes the rows as one Parquet file and appends a snapshot
// referencing it.
func (f *iceFixture) writeData(rows []map[string]any, partitionValues ...string) string {
	f.t.Helper()

	buf := new(bytes.Buffer)
	writer := parquet.NewGenericWriter[map[string]any](buf, f.parquetSchema())
	_, err := writer.Write(rows)
	require.NoError(f.t, err)
	require.NoError(f.t, writer.Close())

	filePath := path.Join(f.tablePath(), uuid.New().String()+".parquet")
	require.NoError(f.t, f.store.Write(context.Background(), filePath, bytes.NewReader(buf.Bytes())))

	partition := map[string]string{}
	for i, pf := range f.spec.Fields {
		partition[pf.Name] = partitionValues[i]
	}

	f.appendManifest([]iceberg.ManifestEntry{{
		Status:     iceberg.EntryStatusAdded,
		SnapshotID: int64(len(f.snapshots) + 1),
		DataFile: iceberg.DataFile{
			Content:       iceberg.FileContentData,
			FilePath:      filePath,
			FileFormat:    "PARQUET",
			Partition:     partition,
			RecordCount:   int64(len(rows)),
			FileSizeBytes: int64(buf.Len()),
			SchemaID:      f.schema.SchemaID,
		},
	}}, iceberg.ManifestContentData)
	return filePath
}

// deleteWhere appends a manifest marking every file whose partition value
// for key matches value as DELETED, the way a metadata-only delete does.
func (f *iceFixture) deleteWhere(key, value string) {
	f.t.Helper()

	var deleted []iceberg.ManifestEntry
	for _, entry := range f.entries {
		if entry.Status == iceberg.EntryStatusDeleted {
			continue
		}
		if entry.DataFile.Partition[key] == value {
			entry.Status = iceberg.EntryStatusDeleted
			deleted = append(deleted, entry)
		}
	}
	require.NotEmpty(f.t, deleted, "delete matched no files")
	f.appendManifest(deleted, iceberg.ManifestContentData)
}

// writeDeleteFile appends a delete-content manifest holding an equality
// delete file.
func (f *iceFixture) writeDeleteFile() {
	f.t.Helper()

	filePath := path.Join(f.tablePath(), uuid.New().String()+"-deletes.parquet")
	require.NoError(f.t, f.store.Write(context.Background(), filePath, strings.NewReader("deletes")))

	f.appendManifest([]iceberg.ManifestEntry{{
		Status:     iceberg.EntryStatusAdded,
		SnapshotID: int64(len(f.snapshots) + 1),
		DataFile: iceberg.DataFile{
			Content:       iceberg.FileContentEqualityDeletes,
			FilePath:      filePath,
			FileFormat:    "PARQUET",
			Partition:     map[string]string{},
			RecordCount:   1,
			FileSizeBytes: 7,
		},
	}}, iceberg.ManifestContentDeletes)
}

func (f *iceFixture) appendManifest(entries []iceberg.ManifestEntry, content int32) {
	f.t.Helper()

	f.seq++
	manifestPath := path.Join(f.tablePath(), "metadata", fmt.Sprintf("manifest-%d.json", f.seq))
	buf := storage.NewBuffer()
	require.NoError(f.t, jsonEncode(buf, entries))
	require.NoError(f.t, f.store.Write(context.Background(), manifestPath, buf.Reader()))
	f.entries = append(f.entries, entries...)
	f.manifests = append(f.manifests, iceberg.ManifestFileMeta{
		ManifestPath:    manifestPath,
		ManifestLength:  buf.Size(),
		PartitionSpecID: f.spec.SpecID,
		Content:         content,
		SequenceNumber:  f.seq,
		AddedSnapshotID: int64(len(f.snapshots) + 1),
	})

	listPath := path.Join(f.tablePath(), "metadata", fmt.Sprintf("manifest-list-%d.json", f.seq))
	f.writeJSON(listPath, f.manifests)

	snapshot := &iceberg.Snapshot{
		SnapshotID:     int64(len(f.snapshots) + 1),
		SequenceNumber: f.seq,
		TimestampMs:    time.Now().UnixMilli(),
		ManifestList:   listPath,
	}
	f.snapshots = append(f.snapshots, snapshot)
	f.commitMetadata()
}

// Schema evolution operations. Each bumps the schema id and commits new
// metadata, like an ALTER on the source table.

// cloneFields detaches the working schema from the copies already recorded
// in the metadata's schema history.
func (f *iceFixture) cloneFields() {
	f.schema.Fields = append([]iceberg.NestedField(nil), f.schema.Fields...)
}

// addColumn assigns the next never-used id; a deleted column's id is never
// handed out again.
func (f *iceFixture) addColumn(name string, typ *iceberg.Type) {
	f.cloneFields()
	f.lastColumnID++
	f.schema.Fields = append(f.schema.Fields, iceberg.NestedField{
		ID: f.lastColumnID, Name: name, Required: false, Type: typ,
	})
	f.bumpSchema()
}

func (f *iceFixture) renameColumn(from, to string) {
	f.cloneFields()
	for i := range f.schema.Fields {
		if f.schema.Fields[i].Name == from {
			f.schema.Fields[i].Name = to
		}
	}
	f.bumpSchema()
}

func (f *iceFixture) deleteColumn(name string) {
	f.cloneFields()
	fields := f.schema.Fields[:0]
	for _, fd := range f.schema.Fields {
		if fd.Name != name {
			fields = append(fields, fd)
		}
	}
	f.schema.Fields = fields
	f.bumpSchema()
}

func (f *iceFixture) moveAfter(name, after string) {
	f.cloneFields()
	var moved iceberg.NestedField
	fields := make([]iceberg.NestedField, 0, len(f.schema.Fields))
	for _, fd := range f.schema.Fields {
		if fd.Name == name {
			moved = fd
			continue
		}
		fields = append(fields, fd)
	}
	out := make([]iceberg.NestedField, 0, len(f.schema.Fields))
	for _, fd := range fields {
		out = append(out, fd)
		if fd.Name == after {
			out = append(out, moved)
		}
	}
	f.schema.Fields = out
	f.bumpSchema()
}

func (f *iceFixture) updateColumnType(name string, typ *iceberg.Type) {
	f.cloneFields()
	for i := range f.schema.Fields {
		if f.schema.Fields[i].Name == name {
			f.schema.Fields[i].Type = typ
		}
	}
	f.bumpSchema()
}

func (f *iceFixture) bumpSchema() {
	f.schema.SchemaID = len(f.schemas)
	f.schemas = append(f.schemas, f.schema)
	f.commitMetadata()
}

func (f *iceFixture) setSpec(fields ...iceberg.PartitionField) {
	f.spec.Fields = fields
	f.commitMetadata()
}

func (f *iceFixture) commitMetadata() {
	f.t.Helper()

	f.version++
	currentSnapshotID := int64(0)
	if len(f.snapshots) > 0 {
		currentSnapshotID = f.snapshots[len(f.snapshots)-1].SnapshotID
	}

	metadata := &iceberg.TableMetadata{
		FormatVersion:     2,
		TableUUID:         "0d9f4d6b-0e2f-4a11-8a5c-3e43f8a7b2c1",
		Location:          f.tablePath(),
		LastUpdated:       time.Now().UnixMilli(),
		LastColumnID:      f.lastColumnID,
		CurrentSchemaID:   f.schema.SchemaID,
		Schemas:           f.schemas,
		DefaultSpecID:     f.spec.SpecID,
		PartitionSpecs:    []iceberg.PartitionSpec{f.spec},
		CurrentSnapshotID: currentSnapshotID,
		Snapshots:         f.snapshots,
	}
	f.writeJSON(path.Join(f.tablePath(), "metadata", fmt.Sprintf("v%d.metadata.json", f.version)), metadata)
	require.NoError(f.t, f.store.Write(
		context.Background(),
		path.Join(f.tablePath(), "metadata", "version-hint.text"),
		strings.NewReader(fmt.Sprintf("%d", f.version)),
	))
}

func (f *iceFixture) writeJSON(filepath string, v any) {
	f.t.Helper()

	buf := storage.NewBuffer()
	require.NoError(f.t, jsonEncode(buf, v))
	require.NoError(f.t, f.store.Write(context.Background(), filepath, buf.Reader()))
}

// parquetSchema derives a Parquet layout from the current top-level
// primitive columns; evolution tests only ever add primitives.
func (f *iceFixture) parquetSchema() *parquet.Schema {
	group := make(parquet.Group)
	for _, fd := range f.schema.Fields {
		var node parquet.Node
		switch fd.Type.Kind {
		case iceberg.KindInt:
			node = parquet.Leaf(parquet.Int32Type)
		case iceberg.KindLong:
			node = parquet.Leaf(parquet.Int64Type)
		case iceberg.KindString:
			node = parquet.String()
		default:
			f.t.Fatalf("fixture has no parquet mapping for %s", fd.Type.Kind)
		}
		if !fd.Required {
			node = parquet.Optional(node)
		}
		group[fd.Name] = node
	}
	return parquet.NewSchema("table", group)
}

func (f *iceFixture) loadTable() *iceberg.Table {
	f.t.Helper()
	table, err := iceberg.LoadTable(context.Background(), f.store, f.database, f.name)
	require.NoError(f.t, err)
	return table
}

func row(k, v int32, dt, hh string) map[string]any {
	return map[string]any{"k": k, "v": v, "dt": dt, "hh": hh}
}

func jsonEncode(w io.Writer, v any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
