package ingest

import (
	"context"

	"github.com/jshaughn618/story-search/core"
	"github.com/jshaughn618/story-search/storage"
)

// Default vector batch bounds. A flush happens whenever adding a record
// would exceed either.
const (
	DefaultBatchMaxRecords = 128
	DefaultBatchMaxBytes   = 4 * 1024 * 1024
)

// vectorBatcher accumulates vector records and flushes them to the index
// in bounded batches. It is touched only by the single driving loop, so
// it carries no locking.
type vectorBatcher struct {
	index      storage.VectorIndex
	maxRecords int
	maxBytes   int

	pending      []core.VectorRecord
	pendingBytes int
}

func newVectorBatcher(index storage.VectorIndex, maxRecords, maxBytes int) *vectorBatcher {
	if maxRecords <= 0 {
		maxRecords = DefaultBatchMaxRecords
	}
	if maxBytes <= 0 {
		maxBytes = DefaultBatchMaxBytes
	}
	return &vectorBatcher{
		index:      index,
		maxRecords: maxRecords,
		maxBytes:   maxBytes,
	}
}

// recordBytes approximates the serialized size of a record.
func recordBytes(rec *core.VectorRecord) int {
	size := len(rec.ID) + len(rec.StoryID) + 4*len(rec.Vector)
	for k, v := range rec.Meta {
		size += len(k) + len(v)
	}
	return size
}

// Add queues a record, flushing first if either bound would be exceeded.
func (b *vectorBatcher) Add(ctx context.Context, rec core.VectorRecord) error {
	size := recordBytes(&rec)
	if len(b.pending) > 0 &&
		(len(b.pending)+1 > b.maxRecords || b.pendingBytes+size > b.maxBytes) {
		if err := b.Flush(ctx); err != nil {
			return err
		}
	}
	b.pending = append(b.pending, rec)
	b.pendingBytes += size
	return nil
}

// Flush writes all pending records to the index.
func (b *vectorBatcher) Flush(ctx context.Context) error {
	if len(b.pending) == 0 {
		return nil
	}
	if err := b.index.Upsert(ctx, b.pending); err != nil {
		return err
	}
	// The index may retain the batch slice; start a fresh one.
	b.pending = nil
	b.pendingBytes = 0
	return nil
}
