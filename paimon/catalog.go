package paimon

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"icefloe/storage"
)

// Identifier names a table within the catalog.
type Identifier struct {
	Database string
	Table    string
}

func (i Identifier) String() string {
	return i.Database + "." + i.Table
}

// Catalog is a filesystem catalog: each table lives under
// <warehouse>/<database>.db/<table> with schema/, manifest/ and snapshot/
// directories. Commits stage the whole table under a hidden directory and
// publish with a single rename, so a failed commit leaves nothing visible.
type Catalog struct {
	store storage.Storage
}

func NewCatalog(store storage.Storage) *Catalog {
	return &Catalog{store: store}
}

func (c *Catalog) tablePath(id Identifier) string {
	return path.Join(id.Database+".db", id.Table)
}

// TableExists reports whether the catalog has a published table for id.
func (c *Catalog) TableExists(ctx context.Context, id Identifier) (bool, error) {
	return c.store.Exists(ctx, path.Join(c.tablePath(id), "snapshot", "LATEST"))
}

// CommitTable creates the table with its schema and first snapshot in one
// atomic operation. Either the whole table becomes visible or none of it.
func (c *Catalog) CommitTable(ctx context.Context, id Identifier, schema *TableSchema, entries []ManifestEntry) error {
	exists, err := c.TableExists(ctx, id)
	if err != nil {
		return fmt.Errorf("checking table %s: %w", id, err)
	}
	if exists {
		return fmt.Errorf("table %s already exists", id)
	}

	staging := path.Join(id.Database+".db", fmt.Sprintf(".tmp-%s-%s", id.Table, uuid.New().String()))

	if err := c.writeJSON(ctx, path.Join(staging, "schema", fmt.Sprintf("schema-%d", schema.ID)), schema); err != nil {
		return fmt.Errorf("writing schema: %w", err)
	}

	// Stage the manifest in memory first so its byte length can be
	// recorded in the manifest list.
	buf := storage.NewBuffer()
	encoder := json.NewEncoder(buf)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(entries); err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}

	manifestName := fmt.Sprintf("manifest-%s-0", uuid.New().String())
	if err := c.store.Write(ctx, path.Join(staging, "manifest", manifestName), buf.Reader()); err != nil {
		return fmt.Errorf("writing manifest: %w", err)
	}

	var totalRecords int64
	for _, entry := range entries {
		totalRecords += entry.File.RowCount
	}

	listName := fmt.Sprintf("manifest-list-%s-1", uuid.New().String())
	list := []ManifestFileMeta{
		{
			FileName:      manifestName,
			FileSize:      buf.Size(),
			NumAddedFiles: int64(len(entries)),
			SchemaID:      schema.ID,
		},
	}
	if err := c.writeJSON(ctx, path.Join(staging, "manifest", listName), list); err != nil {
		return fmt.Errorf("writing manifest list: %w", err)
	}

	snapshot := &Snapshot{
		Version:          snapshotVersion,
		ID:               1,
		SchemaID:         schema.ID,
		BaseManifestList: listName,
		CommitUser:       uuid.New().String(),
		CommitIdentifier: 1,
		CommitKind:       CommitKindAppend,
		TimeMillis:       time.Now().UnixMilli(),
		TotalRecordCount: totalRecords,
		DeltaRecordCount: totalRecords,
	}
	if err := c.writeJSON(ctx, path.Join(staging, "snapshot", "snapshot-1"), snapshot); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if err := c.store.Write(ctx, path.Join(staging, "snapshot", "LATEST"), strings.NewReader("1")); err != nil {
		return fmt.Errorf("writing snapshot hint: %w", err)
	}

	if err := c.store.Rename(ctx, staging, c.tablePath(id)); err != nil {
		// Best effort: the staging tree is invisible to readers either way.
		_ = c.store.RemoveAll(ctx, staging)
		return fmt.Errorf("publishing table %s: %w", id, err)
	}

	return nil
}

// GetTable loads the latest snapshot and schema of a published table.
func (c *Catalog) GetTable(ctx context.Context, id Identifier) (*Table, error) {
	tablePath := c.tablePath(id)

	hint, err := c.readAll(ctx, path.Join(tablePath, "snapshot", "LATEST"))
	if err != nil {
		return nil, fmt.Errorf("table %s not found: %w", id, err)
	}
	snapshotID, err := strconv.ParseInt(strings.TrimSpace(string(hint)), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parsing snapshot hint for %s: %w", id, err)
	}

	snapshot := new(Snapshot)
	if err := c.readJSON(ctx, path.Join(tablePath, "snapshot", fmt.Sprintf("snapshot-%d", snapshotID)), snapshot); err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	schema := new(TableSchema)
	if err := c.readJSON(ctx, path.Join(tablePath, "schema", fmt.Sprintf("schema-%d", snapshot.SchemaID)), schema); err != nil {
		return nil, fmt.Errorf("reading schema: %w", err)
	}

	return &Table{
		catalog:  c,
		ID:       id,
		Schema:   schema,
		Snapshot: snapshot,
	}, nil
}

// RenameTable moves a published table to a new identifier.
func (c *Catalog) RenameTable(ctx context.Context, from, to Identifier) error {
	exists, err := c.TableExists(ctx, to)
	if err != nil {
		return fmt.Errorf("checking table %s: %w", to, err)
	}
	if exists {
		return fmt.Errorf("table %s already exists", to)
	}

	if err := c.store.Rename(ctx, c.tablePath(from), c.tablePath(to)); err != nil {
		return fmt.Errorf("renaming %s to %s: %w", from, to, err)
	}
	return nil
}

// DropTable removes a table and all of its metadata. Data files referenced
// by path outside the table directory are left alone.
func (c *Catalog) DropTable(ctx context.Context, id Identifier) error {
	if err := c.store.RemoveAll(ctx, c.tablePath(id)); err != nil {
		return fmt.Errorf("dropping table %s: %w", id, err)
	}
	return nil
}

func (c *Catalog) writeJSON(ctx context.Context, filepath string, v interface{}) error {
	buf := storage.NewBuffer()
	encoder := json.NewEncoder(buf)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		return fmt.Errorf("encoding %s: %w", filepath, err)
	}
	return c.store.Write(ctx, filepath, buf.Reader())
}

func (c *Catalog) readJSON(ctx context.Context, filepath string, v interface{}) error {
	r, err := c.store.Read(ctx, filepath)
	if err != nil {
		return err
	}
	defer r.Close()

	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("decoding %s: %w", filepath, err)
	}
	return nil
}

func (c *Catalog) readAll(ctx context.Context, filepath string) ([]byte, error) {
	r, err := c.store.Read(ctx, filepath)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// Table is a published Paimon table.
type Table struct {
	catalog  *Catalog
	ID       Identifier
	Schema   *TableSchema
	Snapshot *Snapshot
}

// ManifestEntries reads every manifest of the table's snapshot.
func (t *Table) ManifestEntries(ctx context.Context) ([]ManifestEntry, error) {
	tablePath := t.catalog.tablePath(t.ID)

	var list []ManifestFileMeta
	if err := t.catalog.readJSON(ctx, path.Join(tablePath, "manifest", t.Snapshot.BaseManifestList), &list); err != nil {
		return nil, fmt.Errorf("reading manifest list: %w", err)
	}

	var entries []ManifestEntry
	for _, meta := range list {
		var chunk []ManifestEntry
		if err := t.catalog.readJSON(ctx, path.Join(tablePath, "manifest", meta.FileName), &chunk); err != nil {
			return nil, fmt.Errorf("reading manifest %s: %w", meta.FileName, err)
		}
		entries = append(entries, chunk...)
	}
	return entries, nil
}
