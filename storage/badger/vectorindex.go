package badger

import (
	"context"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/jshaughn618/story-search/core"
	"github.com/jshaughn618/story-search/storage"
)

// VectorIndex implements storage.VectorIndex on a BadgerDB backend.
// Records are keyed by their vector id, which embeds the story id, so
// per-story operations are prefix scans.
type VectorIndex struct {
	backend *Backend
}

var _ storage.VectorIndex = (*VectorIndex)(nil)

// NewVectorIndex creates a VectorIndex over the backend.
func NewVectorIndex(backend *Backend) *VectorIndex {
	return &VectorIndex{backend: backend}
}

// Upsert inserts or replaces vector records keyed by their IDs. All
// records in the batch must share one dimensionality.
func (v *VectorIndex) Upsert(ctx context.Context, records []core.VectorRecord) error {
	if v.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	if len(records) == 0 {
		return nil
	}

	dim := len(records[0].Vector)
	for i := range records {
		if len(records[i].Vector) != dim {
			return fmt.Errorf("%w: record %s has %d dimensions, batch has %d",
				storage.ErrDimensionMismatch, records[i].ID, len(records[i].Vector), dim)
		}
	}

	return v.backend.WithTx(func(tx *badger.Txn) error {
		for i := range records {
			key := makeVectorKey(records[i].ID)
			value := storage.MarshalVectorRecord(&records[i])
			if err := tx.Set(key, value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// DeleteByStory removes every vector belonging to a story.
func (v *VectorIndex) DeleteByStory(ctx context.Context, storyID string) error {
	if v.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return v.backend.deletePrefix(makeVectorStoryPrefix(storyID))
}

// DeleteByID removes specific vectors. Absent ids are not an error.
func (v *VectorIndex) DeleteByID(ctx context.Context, ids ...string) error {
	if v.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	return v.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			if err := tx.Delete(makeVectorKey(id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// CountByStory counts the vectors currently stored for a story.
func (v *VectorIndex) CountByStory(ctx context.Context, storyID string) (int, error) {
	if v.backend.IsClosed() {
		return 0, storage.ErrStorageClosed
	}

	var count int
	err := v.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeVectorStoryPrefix(storyID)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Close is a no-op; the shared backend owns the database handle.
func (v *VectorIndex) Close() error {
	return nil
}
