package migrate

import (
	"context"

	"golang.org/x/sync/errgroup"

	"icefloe/iceberg"
)

// Resolver reconstructs the live data-file set of the source table's
// current snapshot from its manifest chain.
type Resolver struct {
	table       *iceberg.Table
	parallelism int
}

func NewResolver(table *iceberg.Table, parallelism int) *Resolver {
	if parallelism < 1 {
		parallelism = 1
	}
	return &Resolver{table: table, parallelism: parallelism}
}

// Resolve reads every manifest of the current snapshot and folds entries by
// file path, last status wins. Manifests are read concurrently; the fold
// runs only after all reads complete and follows the manifest-list order,
// so the result is the same regardless of worker scheduling.
//
// Any manifest carrying delete content, and any entry describing a delete
// file, fails the whole resolution: adopting data files while dropping
// their delete files would corrupt the table.
func (r *Resolver) Resolve(ctx context.Context) ([]iceberg.ManifestEntry, error) {
	snapshot := r.table.CurrentSnapshot()
	if snapshot == nil {
		return nil, nil
	}

	manifests, err := r.table.ReadManifestList(ctx, snapshot)
	if err != nil {
		return nil, err
	}

	for _, m := range manifests {
		if m.Content != iceberg.ManifestContentData {
			return nil, &UnsupportedManifestContentError{Content: "DELETE", Path: m.ManifestPath}
		}
	}

	// One result slot per manifest keeps the join race-free and preserves
	// manifest-list order for the fold below.
	results := make([][]iceberg.ManifestEntry, len(manifests))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.parallelism)
	for i, m := range manifests {
		i, m := i, m
		g.Go(func() error {
			entries, err := r.table.ReadManifest(gctx, m)
			if err != nil {
				return err
			}
			for _, entry := range entries {
				if entry.DataFile.Content != iceberg.FileContentData {
					return &UnsupportedManifestContentError{
						Content: iceberg.ContentName(entry.DataFile.Content),
						Path:    entry.DataFile.FilePath,
					}
				}
			}
			results[i] = entries
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Fold by path in snapshot-assigned order: the last entry for a path
	// decides, and a file whose final status is DELETED is not live even
	// if an earlier manifest added it.
	latest := make(map[string]iceberg.ManifestEntry)
	order := make([]string, 0)
	for _, entries := range results {
		for _, entry := range entries {
			path := entry.DataFile.FilePath
			if _, seen := latest[path]; !seen {
				order = append(order, path)
			}
			latest[path] = entry
		}
	}

	live := make([]iceberg.ManifestEntry, 0, len(order))
	for _, path := range order {
		entry := latest[path]
		if entry.Status == iceberg.EntryStatusDeleted {
			continue
		}
		live = append(live, entry)
	}
	return live, nil
}
