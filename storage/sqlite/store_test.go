package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jshaughn618/story-search/core"
	"github.com/jshaughn618/story-search/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testStory(id string) *core.Story {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &core.Story{
		ID:           id,
		CanonHash:    id,
		Title:        "The Lighthouse",
		Author:       "M. Shelley",
		SummaryShort: "A keeper alone.",
		SummaryLong:  "A lighthouse keeper weathers a long winter alone.",
		Genre:        "literary fiction",
		Tone:         "melancholy",
		Setting:      "a remote island",
		Themes:       []string{"isolation", "endurance"},
		Tags:         []string{"island", "winter"},
		WordCount:    4200,
		ChunkCount:   3,
		Status:       core.StatusOK,
		SourceCount:  1,
		TextKey:      core.TextObjectKey(id),
		ChunksKey:    core.ChunkMapObjectKey(id),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestStoryUpsertAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	story := testStory("aaaa1111")
	require.NoError(t, store.UpsertStory(ctx, story))

	got, err := store.GetStory(ctx, "aaaa1111")
	require.NoError(t, err)
	assert.Equal(t, story.Title, got.Title)
	assert.Equal(t, story.Themes, got.Themes)
	assert.Equal(t, story.Tags, got.Tags)
	assert.Equal(t, story.Status, got.Status)
	assert.True(t, story.CreatedAt.Equal(got.CreatedAt))

	byHash, err := store.GetStoryByCanonHash(ctx, story.CanonHash)
	require.NoError(t, err)
	assert.Equal(t, got.ID, byHash.ID)
}

func TestStoryGetMissing(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.GetStory(ctx, "nope")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	_, err = store.GetStoryByCanonHash(ctx, "nope")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStoryUpsertUpdates(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	story := testStory("aaaa1111")
	require.NoError(t, store.UpsertStory(ctx, story))

	story.Title = "The Lighthouse, Revised"
	story.Tags = []string{"storm"}
	require.NoError(t, store.UpsertStory(ctx, story))

	got, err := store.GetStory(ctx, "aaaa1111")
	require.NoError(t, err)
	assert.Equal(t, "The Lighthouse, Revised", got.Title)
	assert.Equal(t, []string{"storm"}, got.Tags)

	count, err := store.CountStories(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestDeleteStory(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertStory(ctx, testStory("aaaa1111")))
	require.NoError(t, store.DeleteStory(ctx, "aaaa1111"))

	_, err := store.GetStory(ctx, "aaaa1111")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// Deleting again is not an error.
	assert.NoError(t, store.DeleteStory(ctx, "aaaa1111"))
}

func TestReplaceTags(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.UpsertStory(ctx, testStory("aaaa1111")))
	require.NoError(t, store.ReplaceTags(ctx, "aaaa1111", []string{"zebra", "apple"}))

	got, err := store.GetStory(ctx, "aaaa1111")
	require.NoError(t, err)
	assert.Equal(t, []string{"apple", "zebra"}, got.Tags)

	require.NoError(t, store.ReplaceTags(ctx, "aaaa1111", nil))
	got, err = store.GetStory(ctx, "aaaa1111")
	require.NoError(t, err)
	assert.Empty(t, got.Tags)
}

func TestSourceRecordUpsertAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	record := &core.SourceRecord{
		Path:          "/library/a.txt",
		StoryID:       "aaaa1111",
		RawHash:       "deadbeef",
		ExtractMethod: "text",
		IngestedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, store.UpsertSourceRecord(ctx, record))

	got, err := store.GetSourceRecord(ctx, "/library/a.txt")
	require.NoError(t, err)
	assert.Equal(t, record.StoryID, got.StoryID)
	assert.Equal(t, record.RawHash, got.RawHash)
	assert.True(t, record.IngestedAt.Equal(got.IngestedAt))

	_, err = store.GetSourceRecord(ctx, "/library/missing.txt")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSourceRecordReassignment(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	record := &core.SourceRecord{
		Path:          "/library/a.txt",
		StoryID:       "aaaa1111",
		RawHash:       "deadbeef",
		ExtractMethod: "text",
		IngestedAt:    time.Now().UTC(),
	}
	require.NoError(t, store.UpsertSourceRecord(ctx, record))

	record.StoryID = "bbbb2222"
	record.RawHash = "cafebabe"
	require.NoError(t, store.UpsertSourceRecord(ctx, record))

	got, err := store.GetSourceRecord(ctx, "/library/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "bbbb2222", got.StoryID)

	total, err := store.CountAllSources(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestCountAndRefreshSourceCount(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	story := testStory("aaaa1111")
	story.SourceCount = 0
	require.NoError(t, store.UpsertStory(ctx, story))

	for _, path := range []string{"/lib/a.txt", "/lib/b.txt"} {
		require.NoError(t, store.UpsertSourceRecord(ctx, &core.SourceRecord{
			Path:          path,
			StoryID:       "aaaa1111",
			RawHash:       "hash-" + path,
			ExtractMethod: "text",
			IngestedAt:    time.Now().UTC(),
		}))
	}

	count, err := store.CountSources(ctx, "aaaa1111")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	refreshed, err := store.RefreshSourceCount(ctx, "aaaa1111")
	require.NoError(t, err)
	assert.Equal(t, 2, refreshed)

	got, err := store.GetStory(ctx, "aaaa1111")
	require.NoError(t, err)
	assert.Equal(t, 2, got.SourceCount)
}

func TestStatusCounts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a := testStory("aaaa1111")
	b := testStory("bbbb2222")
	b.CanonHash = "bbbb2222"
	b.Status = core.StatusTooShort
	c := testStory("cccc3333")
	c.CanonHash = "cccc3333"
	c.Status = core.StatusTooShort

	for _, story := range []*core.Story{a, b, c} {
		require.NoError(t, store.UpsertStory(ctx, story))
	}

	counts, err := store.StatusCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[core.StatusOK])
	assert.Equal(t, 2, counts[core.StatusTooShort])
}

func TestSettingsRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	// Fresh database yields zero settings.
	settings, err := store.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, core.Settings{}, settings)
	assert.True(t, settings.Matches("any-model", 768))

	want := core.Settings{
		EmbeddingModel: "nomic-embed-text",
		EmbeddingDim:   768,
		LastIndexedAt:  time.Now().UTC().Truncate(time.Microsecond),
	}
	require.NoError(t, store.PutSettings(ctx, want))

	got, err := store.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, want.EmbeddingModel, got.EmbeddingModel)
	assert.Equal(t, want.EmbeddingDim, got.EmbeddingDim)
	assert.True(t, want.LastIndexedAt.Equal(got.LastIndexedAt))
	assert.False(t, got.Matches("other-model", 768))
}

func TestUpsertStoryValidates(t *testing.T) {
	store := newTestStore(t)

	bad := testStory("aaaa1111")
	bad.ID = ""
	err := store.UpsertStory(context.Background(), bad)
	assert.ErrorIs(t, err, core.ErrEmptyStoryID)
}
