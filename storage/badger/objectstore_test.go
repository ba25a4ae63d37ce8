package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jshaughn618/story-search/storage"
)

func TestObjectStorePutGet(t *testing.T) {
	objects, _, backend, err := NewMemoryStores()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()

	err = objects.Put(ctx, "stories/abc.txt", []byte("once upon a time"))
	require.NoError(t, err)

	data, err := objects.Get(ctx, "stories/abc.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("once upon a time"), data)
}

func TestObjectStoreGetMissing(t *testing.T) {
	objects, _, backend, err := NewMemoryStores()
	require.NoError(t, err)
	defer backend.Close()

	_, err = objects.Get(context.Background(), "stories/missing.txt")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestObjectStorePutReplaces(t *testing.T) {
	objects, _, backend, err := NewMemoryStores()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	require.NoError(t, objects.Put(ctx, "k", []byte("first")))
	require.NoError(t, objects.Put(ctx, "k", []byte("second")))

	data, err := objects.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("second"), data)
}

func TestObjectStoreDelete(t *testing.T) {
	objects, _, backend, err := NewMemoryStores()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	require.NoError(t, objects.Put(ctx, "k", []byte("v")))
	require.NoError(t, objects.Delete(ctx, "k"))

	_, err = objects.Get(ctx, "k")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// Deleting an absent key is not an error.
	assert.NoError(t, objects.Delete(ctx, "k"))
}

func TestObjectStoreDeletePrefix(t *testing.T) {
	objects, _, backend, err := NewMemoryStores()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	require.NoError(t, objects.Put(ctx, "sources/original/abc/one.txt", []byte("1")))
	require.NoError(t, objects.Put(ctx, "sources/original/abc/two.txt", []byte("2")))
	require.NoError(t, objects.Put(ctx, "sources/original/def/one.txt", []byte("3")))

	require.NoError(t, objects.DeletePrefix(ctx, "sources/original/abc/"))

	_, err = objects.Get(ctx, "sources/original/abc/one.txt")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = objects.Get(ctx, "sources/original/abc/two.txt")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	data, err := objects.Get(ctx, "sources/original/def/one.txt")
	require.NoError(t, err)
	assert.Equal(t, []byte("3"), data)
}

func TestObjectStoreClosedBackend(t *testing.T) {
	objects, _, backend, err := NewMemoryStores()
	require.NoError(t, err)
	require.NoError(t, backend.Close())

	ctx := context.Background()
	assert.ErrorIs(t, objects.Put(ctx, "k", []byte("v")), storage.ErrStorageClosed)
	_, err = objects.Get(ctx, "k")
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}
