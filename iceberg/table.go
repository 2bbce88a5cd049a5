package iceberg

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"sort"
	"strconv"
	"strings"

	"icefloe/storage"
)

// Table is a read-only view of an Iceberg table stored in hadoop-catalog
// layout: <warehouse>/<database>/<name>/metadata/v<N>.metadata.json with a
// version-hint.text pointing at the current version. All paths handed out
// are relative to the warehouse root.
type Table struct {
	store    storage.Storage
	Database string
	Name     string
	Metadata *TableMetadata
}

func LoadTable(ctx context.Context, store storage.Storage, database, name string) (*Table, error) {
	t := &Table{store: store, Database: database, Name: name}

	version, err := t.currentVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolving metadata version for %s.%s: %w", database, name, err)
	}

	metadataPath := path.Join(t.metadataDir(), fmt.Sprintf("v%d.metadata.json", version))
	metadata := new(TableMetadata)
	if err := t.readJSON(ctx, metadataPath, metadata); err != nil {
		return nil, fmt.Errorf("reading table metadata: %w", err)
	}
	t.Metadata = metadata

	return t, nil
}

// Location returns the table root relative to the warehouse.
func (t *Table) Location() string {
	return path.Join(t.Database, t.Name)
}

func (t *Table) metadataDir() string {
	return path.Join(t.Location(), "metadata")
}

func (t *Table) currentVersion(ctx context.Context) (int, error) {
	hintPath := path.Join(t.metadataDir(), "version-hint.text")

	ok, err := t.store.Exists(ctx, hintPath)
	if err != nil {
		return 0, err
	}
	if ok {
		r, err := t.store.Read(ctx, hintPath)
		if err != nil {
			return 0, err
		}
		defer r.Close()

		data, err := io.ReadAll(r)
		if err != nil {
			return 0, fmt.Errorf("reading version hint: %w", err)
		}
		return strconv.Atoi(strings.TrimSpace(string(data)))
	}

	// No hint file: fall back to the highest vN.metadata.json present.
	files, err := t.store.List(ctx, t.metadataDir())
	if err != nil {
		return 0, err
	}
	versions := make([]int, 0, len(files))
	for _, f := range files {
		base := path.Base(f)
		if !strings.HasPrefix(base, "v") || !strings.HasSuffix(base, ".metadata.json") {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimPrefix(base, "v"), ".metadata.json"))
		if err != nil {
			continue
		}
		versions = append(versions, n)
	}
	if len(versions) == 0 {
		return 0, fmt.Errorf("no metadata files under %s", t.metadataDir())
	}
	sort.Ints(versions)
	return versions[len(versions)-1], nil
}

// CurrentSnapshot returns the snapshot the metadata points at, or nil for
// an empty table.
func (t *Table) CurrentSnapshot() *Snapshot {
	for _, s := range t.Metadata.Snapshots {
		if s.SnapshotID == t.Metadata.CurrentSnapshotID {
			return s
		}
	}
	return nil
}

// CurrentSchema returns the schema the metadata marks current.
func (t *Table) CurrentSchema() (*Schema, error) {
	s := t.Metadata.SchemaByID(t.Metadata.CurrentSchemaID)
	if s == nil {
		return nil, fmt.Errorf("current schema id %d not found in metadata", t.Metadata.CurrentSchemaID)
	}
	return s, nil
}

// DefaultSpec returns the default partition spec.
func (t *Table) DefaultSpec() (*PartitionSpec, error) {
	s := t.Metadata.SpecByID(t.Metadata.DefaultSpecID)
	if s == nil {
		return nil, fmt.Errorf("default partition spec id %d not found in metadata", t.Metadata.DefaultSpecID)
	}
	return s, nil
}

// ReadManifestList reads the manifest list of a snapshot, in snapshot order.
func (t *Table) ReadManifestList(ctx context.Context, snapshot *Snapshot) ([]ManifestFileMeta, error) {
	var manifests []ManifestFileMeta
	if err := t.readJSON(ctx, snapshot.ManifestList, &manifests); err != nil {
		return nil, fmt.Errorf("reading manifest list %s: %w", snapshot.ManifestList, err)
	}
	return manifests, nil
}

// ReadManifest reads all entries of one manifest file.
func (t *Table) ReadManifest(ctx context.Context, meta ManifestFileMeta) ([]ManifestEntry, error) {
	var entries []ManifestEntry
	if err := t.readJSON(ctx, meta.ManifestPath, &entries); err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", meta.ManifestPath, err)
	}
	return entries, nil
}

// DeleteMetadata removes the table's metadata directory. Data files are
// left in place: after a migration they are owned by whoever still
// references them. Callers must only invoke this once the new referencing
// metadata is durable.
func (t *Table) DeleteMetadata(ctx context.Context) error {
	if err := t.store.RemoveAll(ctx, t.metadataDir()); err != nil {
		return fmt.Errorf("removing metadata of %s.%s: %w", t.Database, t.Name, err)
	}
	return nil
}

func (t *Table) readJSON(ctx context.Context, filepath string, v interface{}) error {
	r, err := t.store.Read(ctx, filepath)
	if err != nil {
		return err
	}
	defer r.Close()

	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("decoding %s: %w", filepath, err)
	}
	return nil
}
