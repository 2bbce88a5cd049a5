package migrate

import "fmt"

// UnsupportedPartitionTransformError rejects any partition spec that uses a
// non-identity transform. There is no faithful mapping for derived partition
// values, so the migration fails closed before touching anything.
type UnsupportedPartitionTransformError struct {
	Transform string
	FieldName string
}

func (e *UnsupportedPartitionTransformError) Error() string {
	return fmt.Sprintf("unsupported partition transform %q on field %q: only identity transforms can be migrated", e.Transform, e.FieldName)
}

// UnsupportedManifestContentError rejects delete-content manifests and
// delete files. Adopting them would silently resurrect deleted rows.
type UnsupportedManifestContentError struct {
	Content string
	Path    string
}

func (e *UnsupportedManifestContentError) Error() string {
	return fmt.Sprintf("don't support analyzing manifest file with '%s' content: %s", e.Content, e.Path)
}

// UnsupportedTypeError reports a source type with no target mapping.
type UnsupportedTypeError struct {
	Kind    string
	FieldID int
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported source type %q (field id %d)", e.Kind, e.FieldID)
}

// MalformedManifestEntryError reports a manifest entry missing required
// metadata.
type MalformedManifestEntryError struct {
	Path   string
	Reason string
}

func (e *MalformedManifestEntryError) Error() string {
	return fmt.Sprintf("malformed manifest entry %q: %s", e.Path, e.Reason)
}

// CatalogCommitError reports a failed target table creation or rename. When
// it occurs before the commit boundary the source table is untouched.
type CatalogCommitError struct {
	Table string
	Err   error
}

func (e *CatalogCommitError) Error() string {
	return fmt.Sprintf("committing table %s: %v", e.Table, e.Err)
}

func (e *CatalogCommitError) Unwrap() error {
	return e.Err
}

// CleanupError reports that deleting the source metadata failed after a
// successful target commit. The target table is valid and queryable; callers
// should treat this as a warning, not a rollback trigger.
type CleanupError struct {
	Location string
	Err      error
}

func (e *CleanupError) Error() string {
	return fmt.Sprintf("cleaning up source metadata at %s (target table is already committed): %v", e.Location, e.Err)
}

func (e *CleanupError) Unwrap() error {
	return e.Err
}
