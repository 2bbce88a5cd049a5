package migrate

import (
	"context"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"icefloe/iceberg"
	"icefloe/paimon"
)

// AdoptionBuilder turns live source manifest entries into target data-file
// descriptors. It only repackages metadata already present in the entries;
// the physical files are never opened.
type AdoptionBuilder struct {
	translator  *PartitionTranslator
	parallelism int
}

func NewAdoptionBuilder(translator *PartitionTranslator, parallelism int) *AdoptionBuilder {
	if parallelism < 1 {
		parallelism = 1
	}
	return &AdoptionBuilder{translator: translator, parallelism: parallelism}
}

// Build adopts every entry in parallel and returns the descriptors grouped
// by partition: files of a partition are contiguous, partitions ordered by
// their value tuple, files within a partition ordered by path. The grouping
// depends only on the input set, not on worker scheduling.
func (b *AdoptionBuilder) Build(ctx context.Context, entries []iceberg.ManifestEntry) ([]paimon.ManifestEntry, error) {
	adopted := make([]paimon.ManifestEntry, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.parallelism)
	for i, entry := range entries {
		i, entry := i, entry
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			result, err := b.adopt(entry)
			if err != nil {
				return err
			}
			adopted[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(adopted, func(i, j int) bool {
		pi := strings.Join(adopted[i].Partition, "\x00")
		pj := strings.Join(adopted[j].Partition, "\x00")
		if pi != pj {
			return pi < pj
		}
		return adopted[i].File.FileName < adopted[j].File.FileName
	})
	return adopted, nil
}

func (b *AdoptionBuilder) adopt(entry iceberg.ManifestEntry) (paimon.ManifestEntry, error) {
	file := entry.DataFile
	if file.FilePath == "" {
		return paimon.ManifestEntry{}, &MalformedManifestEntryError{Path: "<unknown>", Reason: "missing file path"}
	}

	partition, err := b.translator.Extract(file)
	if err != nil {
		return paimon.ManifestEntry{}, err
	}

	return paimon.ManifestEntry{
		Kind:         paimon.EntryKindAdd,
		Partition:    partition,
		Bucket:       0,
		TotalBuckets: 1,
		File: paimon.DataFileMeta{
			FileName:     file.FilePath,
			FileSize:     file.FileSizeBytes,
			RowCount:     file.RecordCount,
			Level:        0,
			CreationTime: time.Now().UnixMilli(),
			Stats:        adoptStats(file.Metrics),
		},
	}, nil
}

// adoptStats passes per-column metrics through keyed by field id. Stats are
// optional; an entry without them adopts cleanly.
func adoptStats(m iceberg.FileMetrics) *paimon.FileStats {
	if m.ValueCounts == nil && m.NullValueCounts == nil && m.LowerBounds == nil && m.UpperBounds == nil {
		return nil
	}
	return &paimon.FileStats{
		ValueCounts: m.ValueCounts,
		NullCounts:  m.NullValueCounts,
		LowerBounds: m.LowerBounds,
		UpperBounds: m.UpperBounds,
	}
}
