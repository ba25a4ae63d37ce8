package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jshaughn618/story-search/core"
	"github.com/jshaughn618/story-search/storage"
)

func makeTestRecords(storyID string, count, dim int) []core.VectorRecord {
	records := make([]core.VectorRecord, count)
	for i := 0; i < count; i++ {
		vec := make([]float32, dim)
		for j := range vec {
			vec[j] = float32(i*dim + j)
		}
		records[i] = core.VectorRecord{
			ID:         core.VectorID(storyID, i),
			StoryID:    storyID,
			ChunkIndex: i,
			Vector:     vec,
			Meta:       map[string]string{"story_id": storyID},
		}
	}
	return records
}

func TestVectorIndexUpsertAndCount(t *testing.T) {
	_, vectors, backend, err := NewMemoryStores()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	require.NoError(t, vectors.Upsert(ctx, makeTestRecords("storya", 3, 4)))
	require.NoError(t, vectors.Upsert(ctx, makeTestRecords("storyb", 2, 4)))

	count, err := vectors.CountByStory(ctx, "storya")
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	count, err = vectors.CountByStory(ctx, "storyb")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	count, err = vectors.CountByStory(ctx, "storyc")
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestVectorIndexUpsertReplaces(t *testing.T) {
	_, vectors, backend, err := NewMemoryStores()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	require.NoError(t, vectors.Upsert(ctx, makeTestRecords("storya", 2, 4)))
	require.NoError(t, vectors.Upsert(ctx, makeTestRecords("storya", 2, 4)))

	count, err := vectors.CountByStory(ctx, "storya")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestVectorIndexDimensionMismatch(t *testing.T) {
	_, vectors, backend, err := NewMemoryStores()
	require.NoError(t, err)
	defer backend.Close()

	records := makeTestRecords("storya", 2, 4)
	records[1].Vector = []float32{1, 2}

	err = vectors.Upsert(context.Background(), records)
	assert.ErrorIs(t, err, storage.ErrDimensionMismatch)
}

func TestVectorIndexDeleteByStory(t *testing.T) {
	_, vectors, backend, err := NewMemoryStores()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	require.NoError(t, vectors.Upsert(ctx, makeTestRecords("storya", 3, 4)))
	require.NoError(t, vectors.Upsert(ctx, makeTestRecords("storyab", 2, 4)))

	require.NoError(t, vectors.DeleteByStory(ctx, "storya"))

	count, err := vectors.CountByStory(ctx, "storya")
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	// A story whose id extends the deleted one is untouched: the prefix
	// scan includes the id separator.
	count, err = vectors.CountByStory(ctx, "storyab")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestVectorIndexDeleteByID(t *testing.T) {
	_, vectors, backend, err := NewMemoryStores()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	records := makeTestRecords("storya", 3, 4)
	require.NoError(t, vectors.Upsert(ctx, records))

	require.NoError(t, vectors.DeleteByID(ctx, records[1].ID, "storya:99999"))

	count, err := vectors.CountByStory(ctx, "storya")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestVectorIndexEmptyUpsert(t *testing.T) {
	_, vectors, backend, err := NewMemoryStores()
	require.NoError(t, err)
	defer backend.Close()

	assert.NoError(t, vectors.Upsert(context.Background(), nil))
}
