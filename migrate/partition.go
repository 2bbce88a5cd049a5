package migrate

import (
	"fmt"

	"icefloe/iceberg"
)

const identityTransform = "identity"

// PartitionTranslator maps an identity-only source partition spec to the
// target's ordered partition key list and extracts per-file partition value
// tuples from manifest entries.
type PartitionTranslator struct {
	specFields []iceberg.PartitionField
	keys       []string
}

// NewPartitionTranslator validates the spec and resolves partition key
// names against the current schema by source field id. The id is the join
// key: a renamed partition column keeps its values, so the target key takes
// the column's current name, not the name recorded when the spec was made.
func NewPartitionTranslator(spec *iceberg.PartitionSpec, schema *iceberg.Schema) (*PartitionTranslator, error) {
	keys := make([]string, 0, len(spec.Fields))
	for _, pf := range spec.Fields {
		if pf.Transform != identityTransform {
			return nil, &UnsupportedPartitionTransformError{Transform: pf.Transform, FieldName: pf.Name}
		}
		source := schema.FieldByID(pf.SourceID)
		if source == nil {
			return nil, fmt.Errorf("partition field %q references unknown source field id %d", pf.Name, pf.SourceID)
		}
		keys = append(keys, source.Name)
	}
	return &PartitionTranslator{specFields: spec.Fields, keys: keys}, nil
}

// Keys returns the target partition key names in spec order. Empty for an
// unpartitioned table.
func (p *PartitionTranslator) Keys() []string {
	return p.keys
}

// Extract reads the partition value tuple already resolved by the source
// manifest. It never recomputes a transform; identity values pass through
// in the manifest's scalar encoding.
func (p *PartitionTranslator) Extract(file iceberg.DataFile) ([]string, error) {
	if len(file.Partition) != len(p.specFields) {
		return nil, &MalformedManifestEntryError{
			Path:   file.FilePath,
			Reason: fmt.Sprintf("partition value count %d does not match spec field count %d", len(file.Partition), len(p.specFields)),
		}
	}

	values := make([]string, 0, len(p.specFields))
	for _, pf := range p.specFields {
		v, ok := file.Partition[pf.Name]
		if !ok {
			return nil, &MalformedManifestEntryError{
				Path:   file.FilePath,
				Reason: fmt.Sprintf("missing partition value for field %q", pf.Name),
			}
		}
		values = append(values, v)
	}
	return values, nil
}
