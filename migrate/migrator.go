package migrate

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"icefloe/iceberg"
	"icefloe/paimon"
	"icefloe/storage"
)

// Source storage option keys.
const (
	OptMetadataStorage = "metadata.iceberg.storage"
	OptWarehouse       = "iceberg_warehouse"

	storageHadoopCatalog = "hadoop-catalog"
)

// Migrator republishes an Iceberg table as a Paimon table without
// rewriting any data file. It is constructed fresh per migration and holds
// no state between calls.
type Migrator struct {
	targetCatalog *paimon.Catalog
	targetID      paimon.Identifier
	sourceDB      string
	sourceTable   string
	sourceStore   storage.Storage
	parallelism   int
	tableOptions  map[string]string
}

// NewMigrator builds the source storage from the options map. Supported:
// hadoop-catalog metadata storage on a local warehouse root. Callers with
// other backends construct the storage themselves and use
// NewMigratorWithStorage.
func NewMigrator(
	targetCatalog *paimon.Catalog,
	targetDatabase, targetTable string,
	sourceDatabase, sourceTable string,
	sourceOptions map[string]string,
	parallelism int,
	tableOptions map[string]string,
) (*Migrator, error) {
	if kind := sourceOptions[OptMetadataStorage]; kind != storageHadoopCatalog {
		return nil, fmt.Errorf("unsupported metadata storage %q: only %q is supported", kind, storageHadoopCatalog)
	}
	warehouse := sourceOptions[OptWarehouse]
	if warehouse == "" {
		return nil, fmt.Errorf("source option %q is required", OptWarehouse)
	}
	if strings.Contains(warehouse, "://") {
		return nil, fmt.Errorf("warehouse %q: non-local warehouses need an injected storage, use NewMigratorWithStorage", warehouse)
	}

	return NewMigratorWithStorage(
		targetCatalog, targetDatabase, targetTable,
		sourceDatabase, sourceTable,
		storage.NewLocalStorage(warehouse),
		parallelism, tableOptions,
	)
}

// NewMigratorWithStorage wires an already-constructed source warehouse
// storage, for object-store warehouses and tests.
func NewMigratorWithStorage(
	targetCatalog *paimon.Catalog,
	targetDatabase, targetTable string,
	sourceDatabase, sourceTable string,
	sourceStore storage.Storage,
	parallelism int,
	tableOptions map[string]string,
) (*Migrator, error) {
	if parallelism < 1 {
		return nil, fmt.Errorf("parallelism must be at least 1, got %d", parallelism)
	}
	return &Migrator{
		targetCatalog: targetCatalog,
		targetID:      paimon.Identifier{Database: targetDatabase, Table: targetTable},
		sourceDB:      sourceDatabase,
		sourceTable:   sourceTable,
		sourceStore:   sourceStore,
		parallelism:   parallelism,
		tableOptions:  tableOptions,
	}, nil
}

// ExecuteMigrate runs the whole migration: build the target schema, resolve
// the live file set, adopt the files, commit the target table, then delete
// the source table's metadata.
//
// Every failure before the catalog commit leaves both tables untouched.
// The metadata deletion runs strictly after the commit succeeds; if only
// the deletion fails, the returned error is a *CleanupError and the target
// table is already valid.
func (m *Migrator) ExecuteMigrate(ctx context.Context) error {
	source, err := iceberg.LoadTable(ctx, m.sourceStore, m.sourceDB, m.sourceTable)
	if err != nil {
		return fmt.Errorf("loading source table %s.%s: %w", m.sourceDB, m.sourceTable, err)
	}

	schema, translator, err := m.buildSchema(source)
	if err != nil {
		return err
	}
	log.Printf("built target schema for %s: %d fields, partition keys %v",
		m.targetID, len(schema.Fields), schema.PartitionKeys)

	live, err := NewResolver(source, m.parallelism).Resolve(ctx)
	if err != nil {
		return err
	}

	adopted, err := NewAdoptionBuilder(translator, m.parallelism).Build(ctx, live)
	if err != nil {
		return err
	}
	log.Printf("resolved %d live data files for %s", len(adopted), m.targetID)

	if err := m.targetCatalog.CommitTable(ctx, m.targetID, schema, adopted); err != nil {
		return &CatalogCommitError{Table: m.targetID.String(), Err: err}
	}
	log.Printf("committed table %s", m.targetID)

	if err := source.DeleteMetadata(ctx); err != nil {
		return &CleanupError{Location: source.Location(), Err: err}
	}
	log.Printf("removed source metadata of %s.%s", m.sourceDB, m.sourceTable)

	return nil
}

// RenameTable renames the migrated table to the source table's original
// database/name pair. It is a separate, explicitly-invoked step after
// ExecuteMigrate. With deleteOriginTable set, a table already published
// under the source name is dropped first to clear the name.
func (m *Migrator) RenameTable(ctx context.Context, deleteOriginTable bool) error {
	originID := paimon.Identifier{Database: m.sourceDB, Table: m.sourceTable}

	if deleteOriginTable {
		exists, err := m.targetCatalog.TableExists(ctx, originID)
		if err != nil {
			return fmt.Errorf("checking table %s: %w", originID, err)
		}
		if exists {
			if err := m.targetCatalog.DropTable(ctx, originID); err != nil {
				return fmt.Errorf("dropping table %s: %w", originID, err)
			}
		}
	}

	if err := m.targetCatalog.RenameTable(ctx, m.targetID, originID); err != nil {
		return &CatalogCommitError{Table: originID.String(), Err: err}
	}
	log.Printf("renamed table %s to %s", m.targetID, originID)
	return nil
}

// buildSchema maps the source's current schema and partition spec. Nothing
// here touches storage beyond the already-loaded metadata.
func (m *Migrator) buildSchema(source *iceberg.Table) (*paimon.TableSchema, *PartitionTranslator, error) {
	currentSchema, err := source.CurrentSchema()
	if err != nil {
		return nil, nil, err
	}
	spec, err := source.DefaultSpec()
	if err != nil {
		return nil, nil, err
	}

	translator, err := NewPartitionTranslator(spec, currentSchema)
	if err != nil {
		return nil, nil, err
	}

	fields, highest, err := MapSchema(currentSchema)
	if err != nil {
		return nil, nil, err
	}

	options := make(map[string]string, len(m.tableOptions))
	for k, v := range m.tableOptions {
		options[k] = v
	}

	return &paimon.TableSchema{
		ID:             0,
		Fields:         fields,
		HighestFieldID: highest,
		PartitionKeys:  translator.Keys(),
		PrimaryKeys:    []string{},
		Options:        options,
		TimeMillis:     time.Now().UnixMilli(),
	}, translator, nil
}
